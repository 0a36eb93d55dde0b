package main

import (
	"github.com/Comcast/shapes/tools"

	"github.com/spf13/cobra"
)

// NewHTMLCommand creates the html command.
func NewHTMLCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		filename string
		css      []string
	)

	cmd := &cobra.Command{
		Use:   "html -f SPEC",
		Short: "Render a case spec as an HTML page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return tools.ReadAndRenderCasePage(filename, css, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&filename, "file", "f", "", "case spec filename")
	cmd.Flags().StringSliceVar(&css, "css", nil, "stylesheet URLs")
	cmd.MarkFlagRequired("file")

	return cmd
}

// NewDotCommand creates the dot command.
func NewDotCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		filename string
		chosen   int
	)

	cmd := &cobra.Command{
		Use:   "dot -f SPEC",
		Short: "Render a case spec as a Graphviz dot file",
		Long: `Render a case spec as a Graphviz dot file.

    shapes dot -f route.yaml | dot -Tpng > route.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := tools.ReadCaseSpec(filename)
			if err != nil {
				return err
			}
			return tools.Dot(spec, cmd.OutOrStdout(), chosen)
		},
	}

	cmd.Flags().StringVarP(&filename, "file", "f", "", "case spec filename")
	cmd.Flags().IntVar(&chosen, "chosen", -2, "clause to highlight (-1 for the else)")
	cmd.MarkFlagRequired("file")

	return cmd
}

// NewMermaidCommand creates the mermaid command.
func NewMermaidCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		filename string
		opts     = &tools.MermaidOpts{
			ActionFill: "#bcf2db",
			GuardFill:  "#d8e9f5",
		}
	)

	cmd := &cobra.Command{
		Use:   "mermaid -f SPEC",
		Short: "Render a case spec as a Mermaid flowchart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := tools.ReadCaseSpec(filename)
			if err != nil {
				return err
			}
			return tools.Mermaid(spec, cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&filename, "file", "f", "", "case spec filename")
	cmd.Flags().BoolVar(&opts.ShowPatterns, "patterns", true, "label edges with patterns")
	cmd.Flags().BoolVar(&opts.PrettyPatterns, "pretty-patterns", true, "indent long patterns")
	cmd.MarkFlagRequired("file")

	return cmd
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	var filename string

	cmd := &cobra.Command{
		Use:   "analyze -f SPEC",
		Short: "Summarize a case spec and report problems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := tools.ReadCaseSpec(filename)
			if err != nil {
				return err
			}
			a, err := tools.Analyze(spec)
			if err != nil {
				return err
			}
			return rootOpts.output(cmd.OutOrStdout(), a)
		},
	}

	cmd.Flags().StringVarP(&filename, "file", "f", "", "case spec filename")
	cmd.MarkFlagRequired("file")

	return cmd
}
