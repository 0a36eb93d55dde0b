package core

import (
	"context"
	"errors"

	"github.com/Comcast/shapes/match"
)

var (
	// InterpreterNotFound occurs when you try to Compile a
	// GuardSource or an ActionSource, and the required
	// interpreter isn't in the given map of interpreters.
	InterpreterNotFound = errors.New("interpreter not found")

	// DefaultInterpreters will be used in ActionSource.Compile
	// and GuardSource.Compile if given nil interpreters.
	DefaultInterpreters = make(InterpretersMap)
)

// Props are read-only parameters that an Interpreter exposes to the
// code it runs.
type Props map[string]interface{}

func (ps Props) Copy() Props {
	acc := make(Props, len(ps))
	for p, v := range ps {
		acc[p] = v
	}
	return acc
}

// Execution is what an Interpreter returns.
type Execution struct {
	// Value is the value of the code.  For a guard, the value's
	// truthiness decides.
	Value interface{}

	*Events
}

func NewExecution(x interface{}) *Execution {
	return &Execution{
		Value:  x,
		Events: newEvents(),
	}
}

// Interpreter can optionally compile and execute code for guards and
// clause actions.
type Interpreter interface {
	// Compile can make something that helps when Exec()ing the
	// code later.
	Compile(ctx context.Context, code interface{}) (interface{}, error)

	// Exec executes the code with the given bindings.  The result
	// of previous Compile() might be provided.
	Exec(ctx context.Context, bs *match.Bindings, props Props, code interface{}, compiled interface{}) (*Execution, error)
}

// InterpretersMap maps interpreter names to Interpreters.
type InterpretersMap map[string]Interpreter

func NewInterpretersMap() InterpretersMap {
	return make(InterpretersMap)
}

// Find returns the named interpreter.
func (m InterpretersMap) Find(name string) (Interpreter, error) {
	if m == nil {
		m = DefaultInterpreters
	}
	i, have := m[name]
	if !have {
		return nil, InterpreterNotFound
	}
	return i, nil
}

type eventsKey struct{}

// WithEvents returns a context that collects what actions emit.
func WithEvents(ctx context.Context, es *Events) context.Context {
	return context.WithValue(ctx, eventsKey{}, es)
}

// EventsFrom returns the Events (if any) given to WithEvents.
func EventsFrom(ctx context.Context) *Events {
	es, _ := ctx.Value(eventsKey{}).(*Events)
	return es
}

// ActionSource can be compiled to a Handler.
type ActionSource struct {
	Interpreter string      `json:"interpreter,omitempty" yaml:",omitempty"`
	Source      interface{} `json:"source"`
}

// Copy makes a shallow copy.
func (a *ActionSource) Copy() *ActionSource {
	if a == nil {
		return nil
	}
	return &ActionSource{
		Interpreter: a.Interpreter,
		Source:      a.Source,
	}
}

// Compile attempts to compile the ActionSource into a Handler using
// the given interpreters, which defaults to DefaultInterpreters.
//
// The Handler returns the Execution's Value.  Emitted messages and
// traces go to the context's Events (see WithEvents).
func (a *ActionSource) Compile(ctx context.Context, interpreters InterpretersMap, props Props) (Handler, error) {
	interpreter, err := interpreters.Find(a.Interpreter)
	if err != nil {
		return nil, err
	}

	x, err := interpreter.Compile(ctx, a.Source)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context, bs *match.Bindings) (interface{}, error) {
		exe, err := interpreter.Exec(ctx, bs, props, a.Source, x)
		if exe != nil {
			if es := EventsFrom(ctx); es != nil {
				es.AddEvents(exe.Events)
			}
		}
		if err != nil {
			return nil, err
		}
		return exe.Value, nil
	}, nil
}
