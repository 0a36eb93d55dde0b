package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"

	"github.com/Comcast/shapes/core"
	"github.com/Comcast/shapes/interpreters/noop"

	md "github.com/russross/blackfriday/v2"
)

// RenderCaseHTML writes an HTML fragment that documents the case.
//
// Docs are Markdown.
func RenderCaseHTML(s *core.CaseSpec, out io.Writer) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	f(`<div class="caseDoc doc">%s</div>`, md.Run([]byte(s.Doc)))

	clause := func(label string, c *core.ClauseSpec) {
		f(`<tr class="clause"><td><div class="clauseNum">%s</div></td><td>`, label)
		if c.Doc != "" {
			f(`<div class="clauseDoc doc">%s</div>`, md.Run([]byte(c.Doc)))
		}
		f(`<table>`)
		if c.Pattern != nil {
			f(`<tr><td>pattern</td>`)
			f(`<td><code>%s</code></td></tr>`, html.EscapeString(JS(c.Pattern)))
		}
		if c.Guard != nil {
			op := "guard"
			if c.Guard.Unless {
				op = "unless"
			}
			f(`<tr><td>%s</td>`, op)
			f(`<td><div class="code"><pre>%s</pre></div></td></tr>`, html.EscapeString(source(c.Guard.Source)))
		}
		if c.Action != nil {
			f(`<tr><td>action</td>`)
			f(`<td><div class="code"><pre>%s</pre></div></td></tr>`, html.EscapeString(source(c.Action.Source)))
		} else if c.Result != nil {
			f(`<tr><td>result</td>`)
			f(`<td><code>%s</code></td></tr>`, html.EscapeString(JS(c.Result)))
		}
		f(`</table>`)
		f(`</td></tr>`)
	}

	f(`<div class="clauses"><table>`)
	for i, c := range s.Clauses {
		clause(fmt.Sprintf("%d", i), c)
	}
	if s.Else != nil {
		clause("else", s.Else)
	}
	f(`</table></div>`)

	return nil
}

// RenderCasePage writes a complete HTML page for the case.
func RenderCasePage(s *core.CaseSpec, out io.Writer, cssFiles []string) error {
	if cssFiles == nil {
		cssFiles = []string{"/static/case-html.css"}
	}

	title := html.EscapeString(s.Name)
	if s.Version != "" {
		title += " " + html.EscapeString(s.Version)
	}

	fmt.Fprintf(out, `<!DOCTYPE html>
<meta charset="utf-8">
<html>
  <head>
  <title>%s</title>
`, title)

	for _, cssFile := range cssFiles {
		fmt.Fprintf(out, "  <link href=\"%s\" rel=\"stylesheet\">\n", cssFile)
	}

	fmt.Fprintf(out, `
  </head>
  <body>
    <h1>%s</h1>
`, title)

	if err := RenderCaseHTML(s, out); err != nil {
		return err
	}

	fmt.Fprintf(out, `
  </body>
</html>
`)

	return nil
}

// ReadAndRenderCasePage reads a case spec (with inlines), checks
// that it compiles, and renders it as a page.
//
// Guards and actions are compiled with a silent noop interpreter, so
// only the patterns are really checked.
func ReadAndRenderCasePage(filename string, cssFiles []string, out io.Writer) error {
	spec, err := ReadCaseSpec(filename)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := Analyze(spec)
	if err != nil {
		return err
	}
	if _, err = spec.Compile(ctx, noop.NewInterpreters(a.Interpreters...), nil); err != nil {
		return err
	}

	return RenderCasePage(spec, out, cssFiles)
}

// ReadCaseSpec reads and parses a case spec file after expanding
// its inlines.
func ReadCaseSpec(filename string) (*core.CaseSpec, error) {
	src, err := ReadFileWithInlines(filename)
	if err != nil {
		return nil, err
	}
	return core.ParseCaseSpec(src)
}

// JS renders its argument as JSON or as '%#v'.
func JS(x interface{}) string {
	js, err := json.Marshal(&x)
	if err != nil {
		return fmt.Sprintf("%#v", x)
	}
	return string(js)
}

func source(x interface{}) string {
	if s, is := x.(string); is {
		return s
	}
	return JS(x)
}
