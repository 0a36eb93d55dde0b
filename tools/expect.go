package tools

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Comcast/shapes/core"
	"github.com/Comcast/shapes/match"
	"github.com/Comcast/shapes/util"

	"github.com/jsccast/yaml"
)

// Example is a subject and a specification of what a case should do
// with it.
type Example struct {
	// Doc is an opaque documentation string.
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	Subject interface{}            `json:"subject" yaml:"subject"`
	Scope   map[string]interface{} `json:"scope,omitempty" yaml:"scope,omitempty"`

	// Value is an optional pattern document that the case's
	// value must match.
	Value interface{} `json:"value,omitempty" yaml:"value,omitempty"`

	// Guard is an optional guard that's given the bindings from
	// matching Value.
	Guard *core.GuardSource `json:"guard,omitempty" yaml:"guard,omitempty"`

	// Clause, if given, is the index of the clause that should be
	// chosen.  Use -1 for the else.
	Clause *int `json:"clause,omitempty" yaml:"clause,omitempty"`

	// Error, if true, requires that the case returns an error.
	Error bool `json:"error,omitempty" yaml:"error,omitempty"`
}

// Session is a list of Examples for a case.
type Session struct {
	// Doc is an opaque documentation string.
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	Examples []Example `json:"examples" yaml:"examples"`

	// Timeout is the optional timeout for each example.
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// Interpreters are used to compile the case and any example
	// guards.
	Interpreters core.InterpretersMap `json:"-" yaml:"-"`

	Verbose bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

// Result reports what happened with one Example.
type Result struct {
	Example int    `json:"example"`
	Doc     string `json:"doc,omitempty"`

	Outcome *core.Outcome `json:"outcome,omitempty"`
	Err     string        `json:"err,omitempty"`

	// Problem says why the example failed.  Empty if it passed.
	Problem string `json:"problem,omitempty"`
}

// Failed is returned by Session.Run when some examples fail.
type Failed struct {
	Failures int
	Total    int
}

func (e *Failed) Error() string {
	return fmt.Sprintf("%d of %d examples failed", e.Failures, e.Total)
}

// ReadSession reads a Session written in YAML (or JSON).
func ReadSession(filename string) (*Session, error) {
	bs, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var s Session
	if err = yaml.Unmarshal(bs, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Run evaluates the case for each example.
//
// The returned error is a *Failed if any example failed.  Other
// errors are problems with the session itself.
func (s *Session) Run(ctx context.Context, spec *core.CaseSpec) ([]*Result, error) {
	acc := make([]*Result, 0, len(s.Examples))
	failures := 0

	for i, x := range s.Examples {
		r, err := s.run(ctx, spec, i, &x)
		if err != nil {
			return acc, err
		}
		if r.Problem != "" {
			failures++
			util.Logger.Warn().Int("example", i).Str("problem", r.Problem).Msg("example failed")
		} else if s.Verbose {
			util.Logger.Info().Int("example", i).Msg("example passed")
		}
		acc = append(acc, r)
	}

	if 0 < failures {
		return acc, &Failed{failures, len(s.Examples)}
	}
	return acc, nil
}

func (s *Session) run(ctx context.Context, spec *core.CaseSpec, i int, x *Example) (*Result, error) {
	r := &Result{
		Example: i,
		Doc:     x.Doc,
	}

	if 0 < s.Timeout {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	var scope *match.Bindings
	if x.Scope != nil {
		scope = match.BindingsFromMap(x.Scope)
	}

	// Compiled per example since pins are resolved in the scope.
	c, err := spec.Compile(ctx, s.Interpreters, scope)
	if err != nil {
		return nil, err
	}

	o, err := c.Run(ctx, x.Subject, scope)
	r.Outcome = o
	if err != nil {
		r.Err = err.Error()
		if !x.Error {
			r.Problem = "unexpected error: " + err.Error()
		}
		return r, nil
	}
	if x.Error {
		r.Problem = "expected an error"
		return r, nil
	}

	if x.Clause != nil && *x.Clause != o.Clause {
		r.Problem = fmt.Sprintf("chose clause %d, not %d", o.Clause, *x.Clause)
		return r, nil
	}

	if x.Value == nil {
		return r, nil
	}

	p, err := match.Compile(x.Value, nil)
	if err != nil {
		return nil, fmt.Errorf("example %d value: %w", i, err)
	}
	bs, matched, err := match.Match(p, o.Value)
	if err != nil {
		return nil, fmt.Errorf("example %d value: %w", i, err)
	}
	if !matched {
		r.Problem = fmt.Sprintf("value %s doesn't match %s", JS(o.Value), p)
		return r, nil
	}

	if x.Guard != nil {
		g, err := x.Guard.Compile(ctx, s.Interpreters, nil)
		if err != nil {
			return nil, fmt.Errorf("example %d guard: %w", i, err)
		}
		admitted, err := g.Admit(ctx, bs)
		if err != nil {
			r.Problem = "guard error: " + err.Error()
		} else if !admitted {
			r.Problem = "guard rejected " + bs.String()
		}
	}

	return r, nil
}
