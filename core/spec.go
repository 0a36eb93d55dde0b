package core

import (
	"context"

	"github.com/Comcast/shapes/match"

	"github.com/jsccast/yaml"
	"github.com/pkg/errors"
)

// CaseSpec is a Case written as data.
//
// Patterns are pattern documents (see match.Compile).  Guards and
// actions are code for an Interpreter.  A CaseSpec must be Compiled
// before use.
type CaseSpec struct {
	// Name is the name for this case.  Something like
	// "route-command".
	Name string `json:"name,omitempty" yaml:",omitempty"`

	// Version is the version of this case.  Something like "1.2".
	Version string `json:"version,omitempty" yaml:",omitempty"`

	// Doc is general documentation about what this case does.
	// Markdown.
	Doc string `json:"doc,omitempty" yaml:",omitempty"`

	// Clauses are tried in order.
	Clauses []*ClauseSpec `json:"clauses,omitempty" yaml:",omitempty"`

	// Else is an optional fallback.  Its Pattern and Guard are
	// ignored.
	Else *ClauseSpec `json:"else,omitempty" yaml:"else,omitempty"`

	// Transactional and EmptyHashMatchesOnlyEmpty configure the
	// Case's match.Matcher.
	Transactional             bool `json:"transactional,omitempty" yaml:",omitempty"`
	EmptyHashMatchesOnlyEmpty bool `json:"emptyHashMatchesOnlyEmpty,omitempty" yaml:"emptyHashMatchesOnlyEmpty,omitempty"`

	// Props are given to the interpreters for guards and
	// actions.
	Props Props `json:"props,omitempty" yaml:",omitempty"`

	compiled *Case
}

// ClauseSpec is a Clause written as data.
type ClauseSpec struct {
	Doc string `json:"doc,omitempty" yaml:",omitempty"`

	// Pattern is a pattern document.
	Pattern interface{} `json:"pattern,omitempty" yaml:",omitempty"`

	Guard *GuardSource `json:"guard,omitempty" yaml:",omitempty"`

	// Action, if given, is the clause's handler.  Otherwise the
	// handler returns Result.
	Action *ActionSource `json:"action,omitempty" yaml:",omitempty"`

	Result interface{} `json:"result,omitempty" yaml:",omitempty"`
}

// ParseCaseSpec reads a CaseSpec written in YAML (or JSON).
func ParseCaseSpec(src []byte) (*CaseSpec, error) {
	var spec CaseSpec
	if err := yaml.Unmarshal(src, &spec); err != nil {
		return nil, errors.Wrap(err, "case spec")
	}
	return &spec, nil
}

// Copy makes a copy of the CaseSpec, which will need compiling.
//
// The patterns and results aren't copied.
func (spec *CaseSpec) Copy(version string) *CaseSpec {
	if version == "" {
		version = spec.Version
	}
	clauses := make([]*ClauseSpec, len(spec.Clauses))
	for i, c := range spec.Clauses {
		clauses[i] = c.Copy()
	}
	return &CaseSpec{
		Name:                      spec.Name,
		Version:                   version,
		Doc:                       spec.Doc,
		Clauses:                   clauses,
		Else:                      spec.Else.Copy(),
		Transactional:             spec.Transactional,
		EmptyHashMatchesOnlyEmpty: spec.EmptyHashMatchesOnlyEmpty,
		Props:                     spec.Props.Copy(),
	}
}

func (c *ClauseSpec) Copy() *ClauseSpec {
	if c == nil {
		return nil
	}
	return &ClauseSpec{
		Doc:     c.Doc,
		Pattern: c.Pattern,
		Guard:   c.Guard.Copy(),
		Action:  c.Action.Copy(),
		Result:  c.Result,
	}
}

// Compile builds the Case.
//
// Pinned variables in patterns are resolved in scope (which can be
// nil) now.  Guards and actions are compiled with the given
// interpreters, which default to DefaultInterpreters.
func (spec *CaseSpec) Compile(ctx context.Context, interpreters InterpretersMap, scope *match.Bindings) (*Case, error) {
	c := &Case{
		Clauses: make([]*Clause, 0, len(spec.Clauses)),
		Matcher: &match.Matcher{
			Transactional:             spec.Transactional,
			EmptyHashMatchesOnlyEmpty: spec.EmptyHashMatchesOnlyEmpty,
		},
	}

	for i, cs := range spec.Clauses {
		if cs == nil {
			return nil, &BadClause{spec, i, errors.New("missing clause")}
		}
		clause, err := cs.compile(ctx, interpreters, scope, spec.Props)
		if err != nil {
			return nil, &BadClause{spec, i, err}
		}
		c.Clauses = append(c.Clauses, clause)
	}

	if spec.Else != nil {
		h, err := spec.Else.handler(ctx, interpreters, spec.Props)
		if err != nil {
			return nil, &BadClause{spec, ElseClause, err}
		}
		c.Else = h
	}

	spec.compiled = c

	return c, nil
}

// Case returns the Case made by the last Compile.
func (spec *CaseSpec) Case() (*Case, error) {
	if spec.compiled == nil {
		return nil, &CaseNotCompiled{spec}
	}
	return spec.compiled, nil
}

func (cs *ClauseSpec) compile(ctx context.Context, interpreters InterpretersMap, scope *match.Bindings, props Props) (*Clause, error) {
	p, err := match.Compile(cs.Pattern, scope)
	if err != nil {
		return nil, errors.Wrap(err, "pattern")
	}

	clause := &Clause{
		Pattern: p,
	}

	if cs.Guard != nil {
		if clause.Guard, err = cs.Guard.Compile(ctx, interpreters, props); err != nil {
			return nil, errors.Wrap(err, "guard")
		}
	}

	if clause.Handler, err = cs.handler(ctx, interpreters, props); err != nil {
		return nil, err
	}

	return clause, nil
}

func (cs *ClauseSpec) handler(ctx context.Context, interpreters InterpretersMap, props Props) (Handler, error) {
	if cs.Action != nil {
		h, err := cs.Action.Compile(ctx, interpreters, props)
		if err != nil {
			return nil, errors.Wrap(err, "action")
		}
		return h, nil
	}
	result := cs.Result
	return func(ctx context.Context, bs *match.Bindings) (interface{}, error) {
		return result, nil
	}, nil
}
