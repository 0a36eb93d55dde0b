// Package interpreters collects the standard guard and action
// interpreters.
package interpreters

import (
	"github.com/Comcast/shapes/core"
	"github.com/Comcast/shapes/interpreters/ecmascript"
	"github.com/Comcast/shapes/interpreters/noop"
)

func Standard() core.InterpretersMap {
	is := core.NewInterpretersMap()

	es := ecmascript.NewInterpreter()
	is["ecmascript"] = es
	is["ecmascript-5.1"] = es

	ext := ecmascript.NewInterpreter()
	ext.Extended = true
	is["ecmascript-ext"] = ext
	is["ecmascript-5.1-ext"] = ext
	is["goja"] = ext

	is["noop"] = &noop.Interpreter{Silent: true}

	// The default interpreter for sources that don't name one.
	is[""] = ext

	return is
}
