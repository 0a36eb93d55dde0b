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

package tools

import (
	"fmt"
	"sort"

	"github.com/Comcast/shapes/core"
	"github.com/Comcast/shapes/match"
)

// CaseAnalysis is a summary of a CaseSpec and a list of problems.
type CaseAnalysis struct {
	spec *core.CaseSpec

	Errors  []string `json:"errors,omitempty"`
	Clauses int      `json:"clauses"`
	Guards  int      `json:"guards"`
	Actions int      `json:"actions"`
	HasElse bool     `json:"hasElse"`

	// Variables are the names each clause's pattern can bind.
	Variables [][]string `json:"variables"`

	// Unreachable are the clauses that follow an unguarded
	// irrefutable clause.  ElseClause is included when the else
	// can't be reached.
	Unreachable []int `json:"unreachable,omitempty"`

	// Interpreters are the (non-default) interpreters that guards
	// and actions name.
	Interpreters []string `json:"interpreters,omitempty"`
}

// Analyze examines a spec without compiling its guards or actions.
//
// Patterns are compiled without a scope, so a pinned variable is
// reported as an error.
func Analyze(s *core.CaseSpec) (*CaseAnalysis, error) {
	a := CaseAnalysis{
		spec:      s,
		Clauses:   len(s.Clauses),
		HasElse:   s.Else != nil,
		Errors:    make([]string, 0, 8),
		Variables: make([][]string, len(s.Clauses)),
	}

	interpreters := make(map[string]bool)
	note := func(c *core.ClauseSpec) {
		if c.Guard != nil {
			a.Guards++
			if c.Guard.Interpreter != "" {
				interpreters[c.Guard.Interpreter] = true
			}
		}
		if c.Action != nil {
			a.Actions++
			if c.Action.Interpreter != "" {
				interpreters[c.Action.Interpreter] = true
			}
		}
	}

	irrefutable := -1
	for i, c := range s.Clauses {
		if c == nil {
			a.Errors = append(a.Errors, fmt.Sprintf("clause %d is missing", i))
			continue
		}
		note(c)

		if 0 <= irrefutable {
			a.Unreachable = append(a.Unreachable, i)
		}

		p, err := match.Compile(c.Pattern, nil)
		if err != nil {
			a.Errors = append(a.Errors, fmt.Sprintf("clause %d: %s", i, err))
			continue
		}
		a.Variables[i] = match.Variables(p)

		if irrefutable < 0 && c.Guard == nil && isIrrefutable(p) {
			irrefutable = i
		}
	}

	if s.Else != nil {
		note(s.Else)
		if 0 <= irrefutable {
			a.Unreachable = append(a.Unreachable, core.ElseClause)
		}
	}

	a.Interpreters = keysToStringSlice(interpreters)

	return &a, nil
}

// isIrrefutable reports whether the pattern matches everything.
func isIrrefutable(p match.Pattern) bool {
	switch vv := p.(type) {
	case *match.Wildcard:
		return true
	case *match.Bind:
		return isIrrefutable(vv.Inner)
	case *match.Alternative:
		for _, q := range vv.Options {
			if isIrrefutable(q) {
				return true
			}
		}
	}
	return false
}

// keysToStringSlice returns the sorted keys of the map.
func keysToStringSlice(m map[string]bool) []string {
	list := make([]string, 0, len(m))
	for key := range m {
		list = append(list, key)
	}
	sort.Strings(list)
	return list
}
