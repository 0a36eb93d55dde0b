package main

import (
	"errors"
	"time"

	"github.com/Comcast/shapes/match"
	"github.com/Comcast/shapes/util"

	"github.com/spf13/cobra"
)

// ErrNoMatch is returned by the match command when the value doesn't
// match.
var ErrNoMatch = errors.New("no match")

type matchOptions struct {
	Pattern       string
	Value         string
	Scope         string
	Transactional bool
	OnlyEmpty     bool
	Bench         int
}

// NewMatchCommand creates the match command.
func NewMatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &matchOptions{}

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match a value against a pattern document",
		Long: `Match a value against a pattern document and print the bindings.

Both are YAML (or JSON).  Pinned variables in the pattern are
resolved in the optional scope.  Exits with an error when there's
no match.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Pattern, "pattern", "p", "", "pattern document")
	cmd.Flags().StringVarP(&opts.Value, "value", "v", "null", "value")
	cmd.Flags().StringVarP(&opts.Scope, "scope", "s", "", "scope for pinned variables (a map)")
	cmd.Flags().BoolVar(&opts.Transactional, "transactional", false, "discard bindings from failed attempts")
	cmd.Flags().BoolVar(&opts.OnlyEmpty, "empty-hash-matches-only-empty", false, "make {} match only empty mappings")
	cmd.Flags().IntVar(&opts.Bench, "bench", 0, "number of times to run (and report time)")
	cmd.MarkFlagRequired("pattern")

	return cmd
}

type matchResult struct {
	Matched  bool            `json:"matched"`
	Pattern  string          `json:"pattern"`
	Bindings *match.Bindings `json:"bindings,omitempty"`
}

func runMatch(rootOpts *RootOptions, opts *matchOptions, cmd *cobra.Command) error {
	scope, err := parseScope(opts.Scope)
	if err != nil {
		return err
	}

	doc, err := parse(opts.Pattern)
	if err != nil {
		return err
	}
	p, err := match.Compile(doc, scope)
	if err != nil {
		return err
	}

	x, err := parse(opts.Value)
	if err != nil {
		return err
	}

	m := &match.Matcher{
		Transactional:             opts.Transactional,
		EmptyHashMatchesOnlyEmpty: opts.OnlyEmpty,
	}

	if 0 < opts.Bench {
		then := time.Now()
		for i := 0; i < opts.Bench; i++ {
			if _, err := m.Attempt(p, x, match.NewBindings()); err != nil {
				return err
			}
		}
		elapsed := time.Since(then)
		util.Logger.Info().
			Int("n", opts.Bench).
			Dur("elapsed", elapsed).
			Dur("each", elapsed/time.Duration(opts.Bench)).
			Msg("bench")
	}

	bs := match.NewBindings()
	matched, err := m.Attempt(p, x, bs)
	if err != nil {
		return err
	}

	r := &matchResult{
		Matched: matched,
		Pattern: p.String(),
	}
	if matched {
		r.Bindings = bs
	}
	if err = rootOpts.output(cmd.OutOrStdout(), r); err != nil {
		return err
	}
	if !matched {
		return ErrNoMatch
	}
	return nil
}
