package noop

import (
	"context"

	"github.com/Comcast/shapes/core"
	"github.com/Comcast/shapes/match"
	"github.com/Comcast/shapes/util"
)

// Interpreter is a core.Interpreter whose code is its own value.
//
// A guard with noop source true always admits, and an action with
// noop source returns that source.
type Interpreter struct {
	// Silent, if false, will log warnings.
	Silent bool
}

func (i *Interpreter) Compile(ctx context.Context, code interface{}) (interface{}, error) {
	if !i.Silent {
		util.Logger.Warn().Msg("using noop interpreter for compilation")
	}
	return nil, nil
}

func (i *Interpreter) Exec(ctx context.Context, bs *match.Bindings, props core.Props, code interface{}, compiled interface{}) (*core.Execution, error) {
	if !i.Silent {
		util.Logger.Warn().Msg("using noop interpreter for execution")
	}
	return core.NewExecution(code), nil
}

func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

// NewInterpreters maps the given names (and "") to a silent noop
// Interpreter.
func NewInterpreters(names ...string) core.InterpretersMap {
	i := &Interpreter{Silent: true}
	is := core.NewInterpretersMap()
	is[""] = i
	for _, name := range names {
		is[name] = i
	}
	return is
}
