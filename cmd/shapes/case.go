package main

import (
	"context"

	"github.com/Comcast/shapes/core"
	"github.com/Comcast/shapes/interpreters"
	"github.com/Comcast/shapes/tools"

	"github.com/spf13/cobra"
)

type caseOptions struct {
	Filename string
	Scope    string
	Traces   bool
}

// NewCaseCommand creates the case command.
func NewCaseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &caseOptions{}

	cmd := &cobra.Command{
		Use:   "case -f SPEC SUBJECT...",
		Short: "Run a case spec against subjects",
		Long: `Run a case spec against each subject (YAML or JSON) and print
an outcome for each one.

A subject that no clause accepts (when there's no else) gets an
outcome with an error.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCase(rootOpts, opts, cmd, args)
		},
	}

	cmd.Flags().StringVarP(&opts.Filename, "file", "f", "", "case spec filename")
	cmd.Flags().StringVarP(&opts.Scope, "scope", "s", "", "scope (a map)")
	cmd.Flags().BoolVar(&opts.Traces, "traces", false, "include traces")
	cmd.MarkFlagRequired("file")

	return cmd
}

type caseResult struct {
	Subject interface{}   `json:"subject"`
	Outcome *core.Outcome `json:"outcome,omitempty"`
	Error   string        `json:"error,omitempty"`
}

func runCase(rootOpts *RootOptions, opts *caseOptions, cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	spec, err := tools.ReadCaseSpec(opts.Filename)
	if err != nil {
		return err
	}

	scope, err := parseScope(opts.Scope)
	if err != nil {
		return err
	}

	c, err := spec.Compile(ctx, interpreters.Standard(), scope)
	if err != nil {
		return err
	}

	for _, arg := range args {
		subject, err := parse(arg)
		if err != nil {
			return err
		}

		// Each subject gets its own copy of the scope.
		var bs = scope
		if scope != nil {
			bs = scope.Copy()
		}

		o, err := c.Run(ctx, subject, bs)
		r := &caseResult{
			Subject: subject,
			Outcome: o,
		}
		if err != nil {
			r.Error = err.Error()
		}
		if !opts.Traces && o != nil && o.Events != nil {
			o.Events.Traces = nil
		}
		if err = rootOpts.output(cmd.OutOrStdout(), r); err != nil {
			return err
		}
	}

	return nil
}
