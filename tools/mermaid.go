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
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Comcast/shapes/core"
)

type MermaidOpts struct {
	// ShowPatterns will result in an edge label that's the JSON
	// representation of the clause's pattern (if any).
	ShowPatterns bool `json:"showPatterns"`

	// ActionFill is the fill color for clauses with actions.
	ActionFill string `json:"actionFill,omitempty"`

	// GuardFill is the fill color for clauses with guards.
	// Actions win.
	GuardFill string `json:"guardFill,omitempty"`

	PrettyPatterns bool `json:"prettyPatterns,omitempty"`
}

// Mermaid makes a Mermaid (https://mermaidjs.github.io/) flowchart
// for the given case.
//
// Like Dot, the clauses are a chain.  A subject that doesn't match a
// clause falls through to the next one.
func Mermaid(spec *core.CaseSpec, w io.Writer, opts *MermaidOpts) error {
	if opts == nil {
		opts = &MermaidOpts{
			ShowPatterns:   true,
			ActionFill:     "#bcf2db",
			GuardFill:      "#d8e9f5",
			PrettyPatterns: true,
		}
	}

	fmt.Fprintf(w, "graph TB\n")

	name := spec.Name
	if name == "" {
		name = "case"
	}
	fmt.Fprintf(w, "  subject((\"%s\"))\n", quote(name))

	node := func(nid, label string, c *core.ClauseSpec) {
		if c.Action != nil {
			fmt.Fprintf(w, "  %s[\"%s\"]\n", nid, label)
			if opts.ActionFill != "" {
				fmt.Fprintf(w, "  style %s fill:%s\n", nid, opts.ActionFill)
			}
			return
		}
		fmt.Fprintf(w, "  %s(\"%s\")\n", nid, label)
		if c.Guard != nil && opts.GuardFill != "" {
			fmt.Fprintf(w, "  style %s fill:%s\n", nid, opts.GuardFill)
		}
	}

	from := "subject"
	for i, c := range spec.Clauses {
		nid := fmt.Sprintf("c%d", i)
		node(nid, fmt.Sprintf("clause %d", i), c)

		var label string
		if opts.ShowPatterns && c.Pattern != nil {
			var (
				bs  []byte
				err error
			)
			if opts.PrettyPatterns {
				bs, err = json.Marshal(c.Pattern)
				if 40 < len(bs) {
					bs, err = json.MarshalIndent(c.Pattern, "", "  ")
				}
			} else {
				bs, err = json.Marshal(c.Pattern)
			}
			if err != nil {
				return err
			}
			label = fmt.Sprintf(`"<pre>%s</pre>"`, quote(string(bs)))
		}

		// Later clauses are reached by falling through.
		var arrow string
		switch {
		case label == "" && i == 0:
			arrow = "-->"
		case label == "":
			arrow = "-.->"
		case i == 0:
			arrow = "-- " + label + " -->"
		default:
			arrow = "-. " + label + " .->"
		}
		fmt.Fprintf(w, "  %s %s %s\n", from, arrow, nid)
		from = nid
	}

	if spec.Else != nil {
		node("otherwise", "else", spec.Else)
	} else {
		fmt.Fprintf(w, "  otherwise{{\"no matching pattern\"}}\n")
	}
	fmt.Fprintf(w, "  %s -.-> otherwise\n", from)

	fmt.Fprintf(w, "\n")

	return nil
}

func quote(s string) string {
	return strings.Replace(s, `"`, `'`, -1)
}
