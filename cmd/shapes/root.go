package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Comcast/shapes/match"
	"github.com/Comcast/shapes/util"

	"github.com/jsccast/yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Pretty       bool
	Experimental bool
}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "shapes",
		Short: "Structural pattern matching",
		Long: `Match values against patterns, and run cases (lists of
patterns with guards and actions) against subjects.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			match.SetExperimentalWarnings(opts.Experimental)
			return util.SetLevel(viper.GetString("log-level"))
		},
	}

	cmd.PersistentFlags().String("log-level", "info", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().BoolVar(&opts.Pretty, "pretty", false, "indent JSON output")
	cmd.PersistentFlags().BoolVar(&opts.Experimental, "experimental-warnings", true, "warn when constructing experimental patterns")

	viper.BindPFlag("log-level", cmd.PersistentFlags().Lookup("log-level"))

	// SHAPES_LOG_LEVEL, SHAPES_HTTP_ADDR, ...
	viper.SetEnvPrefix("shapes")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	cmd.AddCommand(NewMatchCommand(opts))
	cmd.AddCommand(NewCaseCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewAnalyzeCommand(opts))
	cmd.AddCommand(NewHTMLCommand(opts))
	cmd.AddCommand(NewDotCommand(opts))
	cmd.AddCommand(NewMermaidCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}

var envKeyReplacer = strings.NewReplacer("-", "_", ".", "_")

// parse reads a value written in YAML (or JSON).
func parse(src string) (interface{}, error) {
	var x interface{}
	if err := yaml.Unmarshal([]byte(src), &x); err != nil {
		return nil, fmt.Errorf("can't parse %q: %w", src, err)
	}
	return x, nil
}

func parseScope(src string) (*match.Bindings, error) {
	if src == "" {
		return nil, nil
	}
	var m map[string]interface{}
	if err := yaml.Unmarshal([]byte(src), &m); err != nil {
		return nil, fmt.Errorf("can't parse scope %q: %w", src, err)
	}
	return match.BindingsFromMap(m), nil
}

// output writes x as a line of JSON.
func (opts *RootOptions) output(w io.Writer, x interface{}) error {
	var (
		js  []byte
		err error
	)
	if opts.Pretty {
		js, err = json.MarshalIndent(x, "", "  ")
	} else {
		js, err = json.Marshal(x)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", js)
	return err
}
