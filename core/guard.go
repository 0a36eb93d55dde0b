package core

import (
	"context"
	"math"
	"reflect"

	"github.com/Comcast/shapes/match"
)

// Condition is a boolean test over a clause's bindings.
type Condition interface {
	Eval(ctx context.Context, bs *match.Bindings) (bool, error)
}

// ConditionFunc makes a Condition from a function.
type ConditionFunc func(ctx context.Context, bs *match.Bindings) (bool, error)

func (f ConditionFunc) Eval(ctx context.Context, bs *match.Bindings) (bool, error) {
	return f(ctx, bs)
}

// Guard filters a clause after its pattern has matched.
//
// An "if" guard admits when its Condition is true, and an "unless"
// guard admits when its Condition is false.
type Guard struct {
	Unless    bool
	Condition Condition
}

// If makes a Guard that admits when c is true.
func If(c Condition) *Guard {
	return &Guard{Condition: c}
}

// Unless makes a Guard that admits when c is false.
func Unless(c Condition) *Guard {
	return &Guard{Unless: true, Condition: c}
}

// Admit evaluates the guard.  A nil Guard admits everything.
//
// An error from the Condition is returned as is.
func (g *Guard) Admit(ctx context.Context, bs *match.Bindings) (bool, error) {
	if g == nil || g.Condition == nil {
		return true, nil
	}
	ok, err := g.Condition.Eval(ctx, bs)
	if err != nil {
		return false, err
	}
	return ok != g.Unless, nil
}

// GuardSource can be compiled to a Guard.
type GuardSource struct {
	Interpreter string      `json:"interpreter,omitempty" yaml:",omitempty"`
	Source      interface{} `json:"source"`
	Unless      bool        `json:"unless,omitempty" yaml:",omitempty"`
}

func (s *GuardSource) Copy() *GuardSource {
	if s == nil {
		return nil
	}
	return &GuardSource{
		Interpreter: s.Interpreter,
		Source:      s.Source,
		Unless:      s.Unless,
	}
}

// Compile makes a Guard that runs the source with the given
// interpreter.  The value of the code is tested with Truthy.
func (s *GuardSource) Compile(ctx context.Context, interpreters InterpretersMap, props Props) (*Guard, error) {
	interpreter, err := interpreters.Find(s.Interpreter)
	if err != nil {
		return nil, err
	}

	x, err := interpreter.Compile(ctx, s.Source)
	if err != nil {
		return nil, err
	}

	c := ConditionFunc(func(ctx context.Context, bs *match.Bindings) (bool, error) {
		exe, err := interpreter.Exec(ctx, bs, props, s.Source, x)
		if exe != nil {
			if es := EventsFrom(ctx); es != nil {
				es.AddEvents(exe.Events)
			}
		}
		if err != nil {
			return false, err
		}
		return Truthy(exe.Value), nil
	})

	return &Guard{Unless: s.Unless, Condition: c}, nil
}

// Truthy follows ECMAScript: nil, false, zero, NaN, and "" are false.
// Everything else is true.
func Truthy(x interface{}) bool {
	switch vv := x.(type) {
	case nil:
		return false
	case bool:
		return vv
	case string:
		return vv != ""
	}
	v := reflect.ValueOf(x)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		return f != 0 && !math.IsNaN(f)
	}
	return true
}
