/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
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

// Package ecmascript provides an ECMAScript-compatible interpreter
// for guards and clause actions.
package ecmascript

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Comcast/shapes/core"
	"github.com/Comcast/shapes/match"
	"github.com/Comcast/shapes/util"

	"github.com/dop251/goja"
	"github.com/gorhill/cronexpr"
)

var (
	// InterruptedMessage is the string value of Interrupted.
	InterruptedMessage = "RuntimeError: timeout"

	// Interrupted is returned by Exec if the execution is
	// interrupted.
	Interrupted = errors.New(InterruptedMessage)
)

// init adds an Interpreter as one of the DefaultInterpreters
func init() {
	core.DefaultInterpreters["ecmascript"] = NewInterpreter()
}

// Interpreter implements core.Intepreter using Goja, which is a
// Go implementation of ECMAScript 5.1+.
//
// See https://github.com/dop251/goja.
type Interpreter struct {

	// Test is used to expose or hide some runtime capabilities.
	Test bool

	// Extended adds some additional properties.
	Extended bool
}

// NewInterpreter makes a new Interpreter.
func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

// wrapExpr makes a function body that returns the value of an
// expression, which is the common case for guards.
func wrapExpr(src string) string {
	return fmt.Sprintf("(function() {\nreturn (\n%s\n);\n}());\n", src)
}

// wrapSrc makes a function body from statements, which should
// "return" something.
func wrapSrc(src string) string {
	return fmt.Sprintf("(function() {\n%s\n}());\n", src)
}

func AsSource(src interface{}) (code string, err error) {
	switch vv := src.(type) {
	case string:
		code = vv
		return
	default:
		err = fmt.Errorf("bad ECMAScript source (%T)", src)
		return
	}
}

// Compile calls goja.Compile.  This step is optional.
//
// The source can be an expression (like "b == 2*a") or a sequence
// of statements that returns a value.
func (i *Interpreter) Compile(ctx context.Context, src interface{}) (interface{}, error) {
	code, err := AsSource(src)
	if err != nil {
		return nil, err
	}

	if obj, err := goja.Compile("", wrapExpr(code), true); err == nil {
		return obj, nil
	}

	wrapped := wrapSrc(code)
	obj, err := goja.Compile("", wrapped, true)
	if err != nil {
		return nil, errors.New(err.Error() + ": " + wrapped)
	}

	return obj, nil
}

func protest(o *goja.Runtime, x interface{}) {
	panic(o.ToValue(x))
}

func export(x interface{}) interface{} {
	if v, is := x.(goja.Value); is {
		return v.Export()
	}
	return x
}

// isIdentifier reports whether a binding name can be a global
// variable.
func isIdentifier(s string) bool {
	if s == "" || s == "_" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_' || c == '$':
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case '0' <= c && c <= '9' && 0 < i:
		default:
			return false
		}
	}
	return true
}

// Exec implements the Interpreter method of the same name.
//
// Each binding whose name is an identifier is a global variable.
// The following properties are available from the runtime at _.
//
//    bindings: the map of the current bindings.
//    props: core.Props
//    out(obj): Add the given object as a message to emit.
//    match(doc, obj): Match the pattern document against obj.  Returns
//      the bindings or null.
//
// Extended properties (enabled by interpreter's Extended property):
//
//    randstr(): generate a random string.
//    cronNext(s): Return a string representing (RFC3999Nano) the
//      next time for the given crontab expression.
//
// Testing properties (enabled by the interpreter's Test property):
//
//    sleep(ms): sleep for the given number of milliseconds.
//    log(x): log x at debug level.
//
func (i *Interpreter) Exec(ctx context.Context, bs *match.Bindings, props core.Props, src interface{}, compiled interface{}) (*core.Execution, error) {
	exe := core.NewExecution(nil)

	var p *goja.Program
	if compiled == nil {
		var err error
		if compiled, err = i.Compile(ctx, src); err != nil {
			return exe, err
		}
	}
	var is bool
	if p, is = compiled.(*goja.Program); !is {
		return exe, fmt.Errorf("ECMAScript bad compilation: %T %#v", compiled, compiled)
	}

	env := map[string]interface{}{}
	if props == nil {
		env["props"] = map[string]interface{}{}
	} else {
		env["props"] = map[string]interface{}(props.Copy())
	}

	o := goja.New()

	// Code can modify values, and we don't want any side
	// effects.  So we give it a copy.
	x, err := core.Canonicalize(bs.Map())
	if err != nil {
		return exe, err
	}
	bsCopy, is := x.(map[string]interface{})
	if !is {
		return exe, fmt.Errorf("internal error: %#v copy failed", bs)
	}
	env["bindings"] = bsCopy
	for name, v := range bsCopy {
		if isIdentifier(name) {
			if err := o.Set(name, v); err != nil {
				return exe, err
			}
		}
	}

	if err := o.Set("_", env); err != nil {
		return exe, err
	}

	// "out" adds the given message to the list of messages to
	// emit.
	env["out"] = func(x interface{}) interface{} {
		x, err := core.Canonicalize(export(x))
		if err != nil {
			// Will end up as a Javascript exception.
			panic(err)
		}
		exe.AddEmitted(x)
		return x
	}

	// "match" invokes the pattern matcher.
	env["match"] = func(doc, x goja.Value) interface{} {
		pat, err := match.Compile(doc.Export(), nil)
		if err != nil {
			protest(o, err.Error())
		}
		found, matched, err := match.Match(pat, x.Export())
		if err != nil {
			protest(o, err.Error())
		}
		if !matched {
			return nil
		}
		return found.Map()
	}

	if i.Extended {
		env["randstr"] = func() interface{} {
			return core.Gensym(32)
		}

		// cronNext parses the given string as a crontab expression
		// using github.com/gorhill/cronexpr.  Returns the next time
		// as a string formatted in time.RFC3339Nano (UTC).
		env["cronNext"] = func(x interface{}) interface{} {
			cronExpr, is := export(x).(string)
			if !is {
				protest(o, "not a string")
			}

			c, err := cronexpr.Parse(cronExpr)
			if err != nil {
				protest(o, err.Error())
			}
			return c.Next(time.Now()).UTC().Format(time.RFC3339Nano)
		}
	}

	if i.Test {
		env["sleep"] = func(n interface{}) interface{} {
			ms, is := export(n).(int64)
			if !is {
				panic(fmt.Sprintf("a %T is not an %T", n, ms))
			}
			time.Sleep(time.Duration(ms) * time.Millisecond)
			return nil
		}

		env["log"] = func(x interface{}) interface{} {
			x = export(x)
			js, err := json.Marshal(&x)
			if err != nil {
				util.Logger.Debug().Err(err).Msg("ecmascript log: can't marshal")
			} else {
				util.Logger.Debug().RawJSON("x", js).Msg("ecmascript log")
			}
			return x
		}
	}

	// We want to make sure that the following goroutine is
	// terminated as soon as possible.
	ictx, cancel := context.WithCancel(ctx)
	go func() {
		<-ictx.Done()
		// If this Exec method calls cancel() after RunProgram
		// returns, then we'll never see this
		// InterruptedMessage, which is actually the behavior
		// we want.  In this case, we weren't actually interrupted.
		o.Interrupt(InterruptedMessage)
	}()

	v, err := RunProgram(o, p)
	cancel()

	if err != nil {
		if _, is := err.(*goja.InterruptedError); is {
			return exe, Interrupted
		}
		return exe, err
	}

	if v != nil {
		exe.Value = v.Export()
	}

	return exe, nil
}

func RunProgram(o *goja.Runtime, p *goja.Program) (v goja.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s", r)
		}
	}()
	return o.RunProgram(p)
}
