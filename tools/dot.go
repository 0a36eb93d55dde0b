package tools

// dot -Tpng g.dot > g.png

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/Comcast/shapes/core"
	"github.com/Comcast/shapes/util"

	"gopkg.in/yaml.v2"
)

// Dot writes a Graphviz dot file for the given case.  A really ugly
// dot file.
//
// Clauses are a chain: a subject enters at the top and falls through
// each clause that doesn't match (or whose guard rejects) to the
// next.  Patterns are rendered as YAML.  The optional chosen clause
// (see core.Outcome) is drawn in red.  Use a chosen value less than
// ElseClause for none.
func Dot(spec *core.CaseSpec, w io.Writer, chosen int) error {
	util.Logger.Debug().Int("clauses", len(spec.Clauses)).Msg("dot")

	fmt.Fprintf(w, "digraph G {\n")
	fmt.Fprintf(w, `  graph [ordering=out,rankdir=TB,nodesep=0.3,ranksep=0.6]
  node [shape="record" style="rounded,filled"]
  edge [fontsize = "12"]
`)

	name := spec.Name
	if name == "" {
		name = "case"
	}
	fmt.Fprintf(w, "  subject [shape=\"oval\", style=\"bold\", label=<%s>]\n", escape(name))

	node := func(id string, label string, c *core.ClauseSpec, selected bool) {
		fillcolor := "#99ddc8"
		color := "black"
		shape := "record"
		style := "filled"
		if c.Guard != nil {
			fillcolor = "#2d93ad"
		}
		if c.Doc != "" {
			doc := c.Doc
			if 40 < len(doc) {
				period := strings.Index(doc, ". ")
				if 0 < period {
					doc = doc[0 : period+1]
				}
			}
			label += "<BR/><FONT POINT-SIZE='8'>" + escape(doc) + "</FONT>"
		}
		if c.Action != nil {
			shape = "note"
			label += `<FONT POINT-SIZE="6">` +
				`<BR/>` + lines(source(c.Action.Source)) + `<BR/>` +
				`</FONT>`
		} else if c.Result != nil {
			label += `<BR/><FONT POINT-SIZE="8">` + escape(JS(c.Result)) + `</FONT>`
		}
		if selected {
			color = "red"
			fillcolor = "#f98b8b"
		}
		fmt.Fprintf(w, "  %s [shape=\"%s\", style=\"%s\", color=\"%s\", fillcolor=\"%s\", label=<%s> ]\n",
			id, shape, style, color, fillcolor, label)
	}

	from := "subject"
	for i, c := range spec.Clauses {
		id := fmt.Sprintf("c%d", i)
		node(id, fmt.Sprintf("clause %d", i), c, i == chosen)

		label := "_"
		if c.Pattern != nil {
			bs, err := yaml.Marshal(c.Pattern)
			if err != nil {
				bs = []byte(err.Error())
			}
			label = escape(string(bs))
		}
		label = strings.TrimSuffix(label, "\n")
		label = strings.Replace(label, "\n", `<BR ALIGN="LEFT"/>`, -1) + `<BR ALIGN="LEFT"/>`
		if c.Guard != nil {
			op := "if"
			if c.Guard.Unless {
				op = "unless"
			}
			label += `<FONT POINT-SIZE="6">` + op + `<BR/>` + lines(source(c.Guard.Source)) + `</FONT>`
		}

		color := "black"
		if i == chosen {
			color = "red"
		}
		style := "solid"
		if 0 < i {
			// Fell through.
			style = "dashed"
		}
		fmt.Fprintf(w, "  %s -> %s [ color=\"%s\" style=\"%s\" label = <<FONT POINT-SIZE=\"8\">%s</FONT>> ]\n",
			from, id, color, style, label)

		from = id
	}

	if spec.Else != nil {
		node("otherwise", "else", spec.Else, chosen == core.ElseClause)
	} else {
		fmt.Fprintf(w, "  otherwise [shape=\"octagon\", style=\"filled\", fillcolor=\"#ffcc99\", label=<no matching pattern>]\n")
	}
	color := "black"
	if chosen == core.ElseClause {
		color = "red"
	}
	fmt.Fprintf(w, "  %s -> otherwise [ color=\"%s\" style=\"dashed\" ]\n", from, color)

	fmt.Fprintf(w, "}\n")
	return nil
}

// PNG generates a PNG image based on output from Dot.
//
// This function with write two files: basename.dot and basename.png,
// where the basename is the given string.  Requires 'dot' in the
// PATH.
func PNG(spec *core.CaseSpec, basename string, chosen int) (string, error) {
	dotname := basename + ".dot"
	pngname := basename + ".png"

	dotfile, err := os.Create(dotname)
	if err != nil {
		return pngname, err
	}
	if err = Dot(spec, dotfile, chosen); err != nil {
		dotfile.Close()
		return pngname, err
	}
	if err = dotfile.Close(); err != nil {
		return pngname, err
	}
	if err = exec.Command("dot", "-Tpng", "-o", pngname, dotname).Run(); err != nil {
		return pngname, err
	}
	return pngname, nil
}

func escape(s string) string {
	s = strings.Replace(s, "&", `&amp;`, -1)
	s = strings.Replace(s, "<", `&lt;`, -1)
	s = strings.Replace(s, ">", `&gt;`, -1)
	return s
}

// lines escapes source code and left-aligns its lines.
func lines(src string) string {
	return strings.Replace(escape(src)+"\n", "\n", `<BR ALIGN="LEFT"/>`, -1)
}
