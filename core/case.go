/* Copyright 2018 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package core

import (
	"context"

	"github.com/Comcast/shapes/match"
)

// ElseClause is the Outcome.Clause of an Else.
const ElseClause = -1

// Handler runs when its clause is chosen.
type Handler func(ctx context.Context, bs *match.Bindings) (interface{}, error)

// Clause is a pattern, an optional Guard, and a Handler.
type Clause struct {
	Pattern match.Pattern
	Guard   *Guard

	// Handler can be nil, in which case the clause's value is
	// nil.
	Handler Handler
}

// Case tries its Clauses in order.  The first Clause whose Pattern
// matches and whose Guard admits is chosen.
type Case struct {
	Clauses []*Clause

	// Else, if not nil, runs when no clause is chosen.  Without
	// an Else, a Case that chooses nothing returns
	// *NoMatchingPattern.
	Else Handler

	// Matcher defaults to match.DefaultMatcher.
	Matcher *match.Matcher
}

// Outcome reports what a Case did.
type Outcome struct {
	// Value is the result of the chosen Handler.
	Value interface{} `json:"value,omitempty"`

	// Clause is the index of the chosen clause (or ElseClause).
	Clause int `json:"clause"`

	// Bindings are the chosen clause's bindings.
	Bindings *match.Bindings `json:"bindings,omitempty"`

	*Events `json:"events,omitempty" yaml:",omitempty"`
}

// Evaluate runs the Case against the subject and returns the chosen
// handler's value.
//
// Each clause is attempted with its own fresh Bindings, so a clause
// that fails leaves nothing behind.  When a clause is chosen, its
// bindings are spliced into the scope (which can be nil), and then
// its Handler runs with the scope.
func (c *Case) Evaluate(ctx context.Context, subject interface{}, scope *match.Bindings) (interface{}, error) {
	o, err := c.Run(ctx, subject, scope)
	if err != nil {
		return nil, err
	}
	return o.Value, nil
}

// Run is Evaluate that also returns an Outcome, which has traces.
//
// Errors from decomposition, guards, and handlers are returned as
// is.  The Outcome is returned even when there's an error.
func (c *Case) Run(ctx context.Context, subject interface{}, scope *match.Bindings) (*Outcome, error) {
	m := c.Matcher
	if m == nil {
		m = match.DefaultMatcher
	}

	o := &Outcome{
		Clause: ElseClause,
		Events: newEvents(),
	}
	ctx = WithEvents(ctx, o.Events)

	for i, cl := range c.Clauses {
		if cl == nil || cl.Pattern == nil {
			err := &BadClause{Index: i, Err: ErrNoPattern}
			o.AddTrace(map[string]interface{}{
				"clause": i,
				"error":  err.Error(),
			})
			return o, err
		}

		bs := match.NewBindings()
		matched, err := m.Attempt(cl.Pattern, subject, bs)

		o.AddTrace(map[string]interface{}{
			"clause":  i,
			"pattern": cl.Pattern.String(),
			"matched": matched,
			"bs":      bs,
		})

		if err != nil {
			o.AddTrace(map[string]interface{}{
				"error": err.Error(),
			})
			return o, err
		}
		if !matched {
			continue
		}

		admitted, err := cl.Guard.Admit(ctx, bs)
		if err != nil {
			o.AddTrace(map[string]interface{}{
				"guard": i,
				"error": err.Error(),
			})
			return o, err
		}
		if !admitted {
			o.AddTrace(map[string]interface{}{
				"guard":    i,
				"admitted": false,
			})
			continue
		}

		o.Clause = i
		o.Bindings = bs

		env := bs
		if scope != nil {
			bs.Splice(scope)
			env = scope
		}

		if cl.Handler != nil {
			o.Value, err = cl.Handler(ctx, env)
		}
		return o, err
	}

	if c.Else == nil {
		o.AddTrace(map[string]interface{}{
			"exhausted": len(c.Clauses),
		})
		return o, &NoMatchingPattern{Subject: subject}
	}

	if scope == nil {
		scope = match.NewBindings()
	}
	var err error
	o.Value, err = c.Else(ctx, scope)
	return o, err
}

// EvaluateCase makes a Case and Evaluates it.  The else handler can
// be nil.
func EvaluateCase(ctx context.Context, subject interface{}, clauses []*Clause, otherwise Handler) (interface{}, error) {
	c := &Case{
		Clauses: clauses,
		Else:    otherwise,
	}
	return c.Evaluate(ctx, subject, nil)
}
