package core

import (
	"context"
	"errors"
	"testing"

	"github.com/Comcast/shapes/match"

	"github.com/google/go-cmp/cmp"
)

func lit(x interface{}) match.Pattern {
	return match.Literal(x)
}

func returns(x interface{}) Handler {
	return func(ctx context.Context, bs *match.Bindings) (interface{}, error) {
		return x, nil
	}
}

func TestCaseFirstMatchWins(t *testing.T) {
	c := &Case{
		Clauses: []*Clause{
			{Pattern: lit(1), Handler: returns("one")},
			{Pattern: match.TestOf(match.Integer), Handler: returns("integer")},
			{Pattern: match.Any(), Handler: returns("anything")},
		},
	}

	ctx := context.Background()
	for subject, want := range map[interface{}]interface{}{
		1:    "one",
		2:    "integer",
		"x":  "anything",
		3.14: "anything",
	} {
		got, err := c.Evaluate(ctx, subject, nil)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Fatalf("%v: got %v, wanted %v", subject, got, want)
		}
	}
}

func TestCaseExhaustive(t *testing.T) {
	ctx := context.Background()
	clauses := []*Clause{
		{Pattern: lit(1), Handler: returns("one")},
	}

	_, err := EvaluateCase(ctx, 2, clauses, nil)
	var nmp *NoMatchingPattern
	if !errors.As(err, &nmp) {
		t.Fatalf("%T %v", err, err)
	}
	if nmp.Subject != 2 {
		t.Fatal(nmp.Subject)
	}
	if err.Error() != "no matching pattern for 2" {
		t.Fatal(err.Error())
	}

	x, err := EvaluateCase(ctx, 2, clauses, returns("else"))
	if err != nil {
		t.Fatal(err)
	}
	if x != "else" {
		t.Fatal(x)
	}
}

func TestCaseFreshBindings(t *testing.T) {
	// The first clause binds a and then fails.
	first := match.Must(match.NewArray([]match.Pattern{match.Var("a"), lit(9)}, match.NoRest(), nil))
	second := match.Must(match.NewArray([]match.Pattern{match.Var("b"), match.Var("c")}, match.NoRest(), nil))

	var seen *match.Bindings
	c := &Case{
		Clauses: []*Clause{
			{Pattern: first, Handler: returns(1)},
			{Pattern: second, Handler: func(ctx context.Context, bs *match.Bindings) (interface{}, error) {
				seen = bs.Copy()
				return 2, nil
			}},
		},
	}

	scope := match.NewBindings().Extend("b", "old").Extend("z", 26)
	o, err := c.Run(context.Background(), []interface{}{"x", "y"}, scope)
	if err != nil {
		t.Fatal(err)
	}
	if o.Clause != 1 || o.Value != 2 {
		t.Fatal(o.Clause, o.Value)
	}

	if diff := cmp.Diff(map[string]interface{}{"b": "x", "c": "y"}, o.Bindings.Map()); diff != "" {
		t.Fatalf("clause bindings (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]interface{}{"b": "x", "z": 26, "c": "y"}, scope.Map()); diff != "" {
		t.Fatalf("scope (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(scope.Map(), seen.Map()); diff != "" {
		t.Fatalf("handler saw (-want +got):\n%s", diff)
	}
	if scope.Has("a") {
		t.Fatal("failed clause leaked into scope")
	}
}

func TestCaseGuardFiltersThenContinues(t *testing.T) {
	c := &Case{
		Clauses: []*Clause{
			{Pattern: pair(), Guard: If(twice), Handler: returns("twice")},
			{Pattern: pair(), Handler: returns("pair")},
		},
	}
	ctx := context.Background()
	if x, _ := c.Evaluate(ctx, []interface{}{1, 2}, nil); x != "twice" {
		t.Fatal(x)
	}
	if x, _ := c.Evaluate(ctx, []interface{}{1, 3}, nil); x != "pair" {
		t.Fatal(x)
	}
}

type failing struct{}

var errDecompose = errors.New("can't decompose")

func (failing) Deconstruct() ([]interface{}, error) {
	return nil, errDecompose
}

func TestCaseMissingPattern(t *testing.T) {
	ctx := context.Background()

	for _, clauses := range [][]*Clause{
		{{Pattern: lit(1), Handler: returns("one")}, {Handler: returns("two")}},
		{{Pattern: lit(1), Handler: returns("one")}, nil},
	} {
		c := &Case{Clauses: clauses, Else: returns("else")}
		o, err := c.Run(ctx, 2, nil)
		var bad *BadClause
		if !errors.As(err, &bad) {
			t.Fatalf("%T %v", err, err)
		}
		if bad.Index != 1 || !errors.Is(err, ErrNoPattern) {
			t.Fatal(err)
		}
		if err.Error() != "clause 1: clause has no pattern" {
			t.Fatal(err.Error())
		}
		if o == nil || o.Clause != ElseClause {
			t.Fatal(o)
		}

		// An earlier clause that matches still wins.
		if x, err := c.Evaluate(ctx, 1, nil); err != nil || x != "one" {
			t.Fatal(x, err)
		}
	}
}

func TestCaseErrorsPropagate(t *testing.T) {
	ctx := context.Background()

	c := &Case{
		Clauses: []*Clause{
			{Pattern: match.Must(match.NewArray(nil, match.AnonymousRest(), nil)), Handler: returns(1)},
		},
		Else: returns("else"),
	}
	if _, err := c.Evaluate(ctx, failing{}, nil); err != errDecompose {
		t.Fatal(err)
	}

	errGuard := errors.New("guard")
	c = &Case{
		Clauses: []*Clause{
			{
				Pattern: match.Any(),
				Guard: If(ConditionFunc(func(ctx context.Context, bs *match.Bindings) (bool, error) {
					return false, errGuard
				})),
			},
		},
	}
	if _, err := c.Evaluate(ctx, 1, nil); err != errGuard {
		t.Fatal(err)
	}

	errHandler := errors.New("handler")
	c = &Case{
		Clauses: []*Clause{
			{
				Pattern: match.Any(),
				Handler: func(ctx context.Context, bs *match.Bindings) (interface{}, error) {
					return nil, errHandler
				},
			},
		},
	}
	o, err := c.Run(ctx, 1, nil)
	if err != errHandler {
		t.Fatal(err)
	}
	if o.Clause != 0 {
		t.Fatal(o.Clause)
	}
}

func TestCaseTraces(t *testing.T) {
	c := &Case{
		Clauses: []*Clause{
			{Pattern: lit(1)},
			{Pattern: lit(2)},
		},
	}
	o, err := c.Run(context.Background(), 2, nil)
	if err != nil {
		t.Fatal(err)
	}
	if o.Value != nil {
		t.Fatal(o.Value)
	}
	if n := len(o.Traces.Messages); n != 2 {
		t.Fatalf("%d traces", n)
	}

	o, err = c.Run(context.Background(), 3, nil)
	if err == nil {
		t.Fatal("no error")
	}
	if o.Clause != ElseClause {
		t.Fatal(o.Clause)
	}
	if n := len(o.Traces.Messages); n != 3 {
		t.Fatalf("%d traces", n)
	}
}

func TestCaseTransactional(t *testing.T) {
	// Each clause already gets fresh bindings, so a Transactional
	// Matcher changes nothing that a caller can see.
	c := &Case{
		Clauses: []*Clause{
			{Pattern: pair(), Handler: returns("pair")},
		},
		Else:    returns("else"),
		Matcher: &match.Matcher{Transactional: true},
	}
	scope := match.NewBindings()
	x, err := c.Evaluate(context.Background(), []interface{}{1}, scope)
	if err != nil {
		t.Fatal(err)
	}
	if x != "else" || 0 < scope.Len() {
		t.Fatal(x, scope)
	}
}
