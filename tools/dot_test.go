package tools

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Comcast/shapes/core"
)

func parseRoute(t *testing.T) *core.CaseSpec {
	spec, err := core.ParseCaseSpec([]byte(routeSrc))
	if err != nil {
		t.Fatal(err)
	}
	return spec
}

func TestDot(t *testing.T) {
	out := &bytes.Buffer{}
	if err := Dot(parseRoute(t), out, 1); err != nil {
		t.Fatal(err)
	}
	s := out.String()

	for _, want := range []string{
		"digraph G {",
		"subject -> c0",
		"c2 -> c3",
		"c3 -> otherwise",
		"key: op",
		`color="red"`,
	} {
		if !strings.Contains(s, want) {
			t.Fatalf("missing %q in\n%s", want, s)
		}
	}
	if !strings.HasSuffix(s, "}\n") {
		t.Fatal(s)
	}
}

func TestDotNoElse(t *testing.T) {
	out := &bytes.Buffer{}
	if err := Dot(&core.CaseSpec{}, out, -2); err != nil {
		t.Fatal(err)
	}
	s := out.String()
	if !strings.Contains(s, "subject -> otherwise") || !strings.Contains(s, "no matching pattern") {
		t.Fatal(s)
	}
	if strings.Contains(s, "red") {
		t.Fatal(s)
	}
}

func TestMermaid(t *testing.T) {
	out := &bytes.Buffer{}
	if err := Mermaid(parseRoute(t), out, nil); err != nil {
		t.Fatal(err)
	}
	s := out.String()
	for _, want := range []string{
		"graph TB",
		`subject(("route"))`,
		"style c0 fill:#bcf2db",
		"style c1 fill:#d8e9f5",
		".-> c3",
		"c3 -.-> otherwise",
	} {
		if !strings.Contains(s, want) {
			t.Fatalf("missing %q in\n%s", want, s)
		}
	}
}
