package main

import (
	"time"

	"github.com/Comcast/shapes/interpreters"
	"github.com/Comcast/shapes/tools"

	"github.com/spf13/cobra"
)

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		filename string
		examples string
		timeout  time.Duration
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:   "check -f SPEC -e EXAMPLES",
		Short: "Check a case spec against examples",
		Long: `Check a case spec against a file of examples.

Each example has a subject and, optionally, a pattern the value must
match, a guard over the bindings from that match, the clause that
must be chosen, or a requirement that the case fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := tools.ReadCaseSpec(filename)
			if err != nil {
				return err
			}
			s, err := tools.ReadSession(examples)
			if err != nil {
				return err
			}
			s.Interpreters = interpreters.Standard()
			if 0 < timeout {
				s.Timeout = timeout
			}
			s.Verbose = s.Verbose || verbose

			rs, err := s.Run(cmd.Context(), spec)
			for _, r := range rs {
				if r.Problem != "" || verbose {
					if err := rootOpts.output(cmd.OutOrStdout(), r); err != nil {
						return err
					}
				}
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&filename, "file", "f", "", "case spec filename")
	cmd.Flags().StringVarP(&examples, "examples", "e", "", "examples filename")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "timeout for each example")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "print every result")
	cmd.MarkFlagRequired("file")
	cmd.MarkFlagRequired("examples")

	return cmd
}
