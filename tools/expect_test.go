package tools

import (
	"context"
	"testing"

	"github.com/Comcast/shapes/core"
	"github.com/Comcast/shapes/match"

	"github.com/jsccast/yaml"
)

// lookup is an interpreter whose code is the name of a variable.
type lookup struct{}

func (lookup) Compile(ctx context.Context, code interface{}) (interface{}, error) {
	return nil, nil
}

func (lookup) Exec(ctx context.Context, bs *match.Bindings, props core.Props, code interface{}, compiled interface{}) (*core.Execution, error) {
	x, _ := bs.Get(code.(string))
	return core.NewExecution(x), nil
}

var sessionSrc = `
doc: Some examples
examples:
  - doc: Moving
    subject: {op: move, to: home}
    value: home
    clause: 0
  - subject: {op: stop, ok: true}
    value: guarded
  - subject: 42
    value: whatever
    clause: 2
  - subject: {op: move, to: work}
    value: {var: where}
    guard:
      source: where
`

func TestSession(t *testing.T) {
	var s Session
	if err := yaml.Unmarshal([]byte(sessionSrc), &s); err != nil {
		t.Fatal(err)
	}
	s.Interpreters = core.InterpretersMap{
		"":           lookup{},
		"ecmascript": lookup{},
	}

	spec := parseRoute(t)
	spec.Clauses[0].Action.Source = "to"

	rs, err := s.Run(context.Background(), spec)
	if err != nil {
		for _, r := range rs {
			t.Logf("%d %s", r.Example, r.Problem)
		}
		t.Fatal(err)
	}
	if len(rs) != 4 {
		t.Fatal(len(rs))
	}
}

func TestSessionFailures(t *testing.T) {
	zero := 0
	s := &Session{
		Interpreters: core.InterpretersMap{
			"":           lookup{},
			"ecmascript": lookup{},
		},
		Examples: []Example{
			{Subject: map[string]interface{}{"op": "move", "to": "home"}, Value: "work"},
			{Subject: 42, Clause: &zero},
			{Subject: 42, Error: true},
			{Subject: map[string]interface{}{"op": "move", "to": "home"}},
		},
	}

	rs, err := s.Run(context.Background(), parseRoute(t))
	failed, is := err.(*Failed)
	if !is {
		t.Fatal(err)
	}
	if failed.Failures != 3 || failed.Total != 4 {
		t.Fatal(failed)
	}
	if rs[3].Problem != "" {
		t.Fatal(rs[3].Problem)
	}
}
