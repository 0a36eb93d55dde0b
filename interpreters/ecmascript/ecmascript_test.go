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

package ecmascript

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Comcast/shapes/core"
	"github.com/Comcast/shapes/match"
	. "github.com/Comcast/shapes/util/testutil"
)

func exec(t *testing.T, i *Interpreter, bs *match.Bindings, props core.Props, code string) (*core.Execution, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	compiled, err := i.Compile(ctx, code)
	if err != nil {
		t.Fatal(err)
	}
	return i.Exec(ctx, bs, props, code, compiled)
}

func TestActionsSimple(t *testing.T) {
	exe, err := exec(t, NewInterpreter(), nil, nil, `return {likes:"chips"};`)
	if err != nil {
		t.Fatal(err)
	}
	m, is := exe.Value.(map[string]interface{})
	if !is {
		t.Fatalf("%#v is a %T", exe.Value, exe.Value)
	}
	if s, is := m["likes"].(string); !is || s != "chips" {
		t.Fatalf("didn't want %#v", m["likes"])
	}
}

func TestExpression(t *testing.T) {
	bs := match.NewBindings().Extend("a", 1).Extend("b", 2)
	for code, want := range map[string]bool{
		`b == 2*a`:                 true,
		`b == 3*a`:                 false,
		`_.bindings.a < _.bindings.b`: true,
	} {
		exe, err := exec(t, NewInterpreter(), bs, nil, code)
		if err != nil {
			t.Fatal(err)
		}
		if got := core.Truthy(exe.Value); got != want {
			t.Fatalf("%s: %#v", code, exe.Value)
		}
	}
}

func TestActionsParam(t *testing.T) {
	props := core.Props{
		"mid": "simpsons",
	}
	exe, err := exec(t, NewInterpreter(), nil, props, `_.props.mid`)
	if err != nil {
		t.Fatal(err)
	}
	if exe.Value != "simpsons" {
		t.Fatalf("didn't want %#v", exe.Value)
	}
}

func TestActionsTimeout(t *testing.T) {
	code := `for (;;) { _.sleep(10); } null;`

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	i := NewInterpreter()
	i.Test = true
	i.Extended = true

	compiled, err := i.Compile(ctx, code)
	if err != nil {
		t.Fatal(err)
	}

	if _, err = i.Exec(ctx, nil, nil, code, compiled); err == nil {
		t.Fatal("didn't timeout")
	}
	msg := err.Error()
	if msg != InterruptedMessage {
		t.Fatalf("surprised by \"%s\"", msg)
	}
}

func TestActionsError(t *testing.T) {
	if _, err := exec(t, NewInterpreter(), nil, nil, `likes + tacos; null;`); err == nil {
		t.Fatal("didn't protest")
	}
}

func TestCompileError(t *testing.T) {
	i := NewInterpreter()
	if _, err := i.Compile(context.Background(), `return (;`); err == nil {
		t.Fatal("compiled")
	}
	if _, err := i.Compile(context.Background(), 42); err == nil {
		t.Fatal("compiled a number")
	}
}

func TestActionsCronNextGood(t *testing.T) {
	i := NewInterpreter()
	i.Extended = true
	exe, err := exec(t, i, nil, nil, fmt.Sprintf(`_.cronNext("%s")`, "* 0 * * *"))
	if err != nil {
		t.Fatal(err)
	}
	s, is := exe.Value.(string)
	if !is {
		t.Fatalf("%#v", exe.Value)
	}
	if _, err = time.Parse(time.RFC3339Nano, s); err != nil {
		t.Fatal(err)
	}
}

func TestActionsCronNextBad(t *testing.T) {
	i := NewInterpreter()
	i.Extended = true
	if _, err := exec(t, i, nil, nil, `_.cronNext("bad")`); err == nil {
		t.Fatal("didn't protest")
	}
}

func TestMatch(t *testing.T) {
	code := `var bs = _.match({array: [{var: "x"}], rest: "*"}, [1, 2]); return bs && bs.x;`
	exe, err := exec(t, NewInterpreter(), nil, nil, code)
	if err != nil {
		t.Fatal(err)
	}
	if exe.Value != int64(1) {
		t.Fatalf("%#v", exe.Value)
	}

	exe, err = exec(t, NewInterpreter(), nil, nil, `_.match({array: []}, [1])`)
	if err != nil {
		t.Fatal(err)
	}
	if exe.Value != nil {
		t.Fatalf("%#v", exe.Value)
	}
}

func TestActionsOut(t *testing.T) {
	exe, err := exec(t, NewInterpreter(), nil, nil, `_.out({to: "home"}); return 1;`)
	if err != nil {
		t.Fatal(err)
	}
	if len(exe.Emitted) != 1 {
		t.Fatal(exe.Emitted)
	}
	if JS(exe.Emitted[0]) != `{"to":"home"}` {
		t.Fatal(JS(exe.Emitted[0]))
	}
}

func TestActionsOutNaN(t *testing.T) {
	if _, err := exec(t, NewInterpreter(), nil, nil, `_.out(NaN); return {};`); err == nil {
		t.Fatal("expected an error")
	}
}

func TestActionsModifyBindingValue(t *testing.T) {
	bs := match.NewBindings().Extend("likes", map[string]interface{}{
		"weekdays": "tacos",
		"weekends": "chips",
	})

	code := `_.bindings.likes.weekends = "queso"; likes.weekends = "queso"; throw "a fit";`

	i := NewInterpreter()
	i.Test = true

	// Ignore the error.  We want to see if the action had a side
	// effect.
	exec(t, i, bs, nil, code)

	x, _ := bs.Get("likes")
	m, is := x.(map[string]interface{})
	if !is {
		t.Fatalf("liked %#v is a %T, not a %T", x, x, m)
	}
	if s := m["weekends"]; s != "chips" {
		t.Fatalf("didn't want %#v", s)
	}
}

func TestCaseSpecWithGuards(t *testing.T) {
	spec := &core.CaseSpec{
		Name: "pairs",
		Clauses: []*core.ClauseSpec{
			{
				Pattern: Dwimjs(`[{"var":"a"},{"var":"b"}]`),
				Guard:   &core.GuardSource{Interpreter: "ecmascript", Source: `b == 2*a`},
				Result:  "double",
			},
			{
				Pattern: Dwimjs(`[{"var":"a"},{"var":"b"}]`),
				Guard:   &core.GuardSource{Interpreter: "ecmascript", Source: `b == 2*a`, Unless: true},
				Action:  &core.ActionSource{Interpreter: "ecmascript", Source: `_.out({sum: a+b}); return a+b;`},
			},
		},
	}

	ctx := context.Background()
	c, err := spec.Compile(ctx, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	x, err := c.Evaluate(ctx, []interface{}{1, 2}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if x != "double" {
		t.Fatal(x)
	}

	o, err := c.Run(ctx, []interface{}{1, 1}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if o.Value != int64(2) || o.Clause != 1 || len(o.Emitted) != 1 {
		t.Fatalf("%#v", o)
	}
}

func benchmarkCompiling(b *testing.B, compiling bool) {

	// We have a lot of code, but we only use a little of it.

	code := `

function radians (num) {
  return num * Math.PI / 180;
}

function haversine (lon1,lat1,lon2,lat2) {
  var R = 6371;
  var dLat = radians(lat2-lat1);
  var dLon = radians(lon2-lon1);
  var a = Math.sin(dLat/2) * Math.sin(dLat/2) + Math.sin(dLon/2) * Math.sin(dLon/2) * Math.cos(radians(lat1)) * Math.cos(radians(lat2));
  var c = 2 * Math.atan2(Math.sqrt(a), Math.sqrt(1-a));
  return R * c;
}

function bar() { return "chips"; }

return {likes:bar(), far:haversine(a, 0, b, 0) > 100};
`

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	i := NewInterpreter()

	var compiled interface{}
	if compiling {
		var err error
		if compiled, err = i.Compile(ctx, code); err != nil {
			b.Fatal(err)
		}
	}

	bs := match.NewBindings().Extend("a", 1).Extend("b", 2)

	b.ResetTimer()

	for n := 0; n < b.N; n++ {
		if _, err := i.Exec(ctx, bs, nil, code, compiled); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkPrecompile(b *testing.B) {
	benchmarkCompiling(b, true)
}

func BenchmarkNoPrecompile(b *testing.B) {
	benchmarkCompiling(b, false)
}
