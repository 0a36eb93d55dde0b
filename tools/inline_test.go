package tools

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInline(t *testing.T) {
	input := `
I like %inline("tacos"), and
I also like %inline ("queso").
Both are delicious.
`
	want := `
I like TACOS, and
I also like QUESO.
Both are delicious.
`

	find := func(name string) ([]byte, error) {
		return []byte(strings.ToUpper(name)), nil
	}

	got, err := Inline([]byte(input), find)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != want {
		t.Fatalf("got %s", got)
	}
}

func TestInlineError(t *testing.T) {
	broken := errors.New("broken")
	_, err := Inline([]byte(`%inline("x")`), func(string) ([]byte, error) {
		return nil, broken
	})
	if err != broken {
		t.Fatal(err)
	}
}

func TestReadCaseSpec(t *testing.T) {
	dir := t.TempDir()
	src := `
name: sized
clauses:
  - pattern: {range: [0, 10]}
    action:
      source: %inline("small.js")
`
	if err := os.WriteFile(filepath.Join(dir, "sized.yaml"), []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "small.js"), []byte(`'"small"'`), 0644); err != nil {
		t.Fatal(err)
	}

	spec, err := ReadCaseSpec(filepath.Join(dir, "sized.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if got := spec.Clauses[0].Action.Source; got != `"small"` {
		t.Fatalf("%#v", got)
	}
}
