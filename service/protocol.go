package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Comcast/shapes/core"
	"github.com/Comcast/shapes/util"

	"github.com/google/uuid"
	"github.com/jsccast/yaml"
)

// Op is a service operation.
//
// Only one of Put, Get, Rem, List, or Eval should have a value.
type Op struct {
	// Id is an optional operation id, which is echoed in the
	// Reply.  If not given, one is generated.
	Id string `json:"id,omitempty" yaml:",omitempty"`

	Put  *core.CaseSpec `json:"put,omitempty" yaml:",omitempty"`
	Get  string         `json:"get,omitempty" yaml:",omitempty"`
	Rem  string         `json:"rem,omitempty" yaml:",omitempty"`
	List bool           `json:"list,omitempty" yaml:",omitempty"`
	Eval *EvalOp        `json:"eval,omitempty" yaml:",omitempty"`
}

// EvalOp asks for a case to be evaluated against a subject.
type EvalOp struct {
	Case    string                 `json:"case" yaml:"case"`
	Subject interface{}            `json:"subject,omitempty" yaml:",omitempty"`
	Scope   map[string]interface{} `json:"scope,omitempty" yaml:",omitempty"`
}

// Reply is the result of an Op.
type Reply struct {
	Id string `json:"id"`

	Value    interface{}            `json:"value,omitempty"`
	Clause   *int                   `json:"clause,omitempty"`
	Bindings map[string]interface{} `json:"bindings,omitempty"`

	// Emitted are messages that guards and actions emitted.
	Emitted []interface{} `json:"emitted,omitempty"`

	Spec  *core.CaseSpec `json:"spec,omitempty"`
	Names []string       `json:"names,omitempty"`

	Error string `json:"error,omitempty"`
}

// ParseOp reads an Op written in JSON (or YAML).
//
// Numbers that look like integers stay integers.
func ParseOp(bs []byte) (*Op, error) {
	var op Op
	if err := yaml.Unmarshal(bs, &op); err != nil {
		return nil, err
	}
	return &op, nil
}

// Do performs the operation.  Errors are reported in the Reply.
func (s *Service) Do(ctx context.Context, op *Op) *Reply {
	r, _ := s.do(ctx, op)
	return r
}

func (s *Service) do(ctx context.Context, op *Op) (*Reply, error) {
	r := &Reply{
		Id: op.Id,
	}
	if r.Id == "" {
		r.Id = uuid.New().String()
	}

	var err error
	switch {
	case op.Put != nil:
		err = s.Put(ctx, op.Put)
	case op.Get != "":
		r.Spec, err = s.Get(ctx, op.Get)
	case op.Rem != "":
		err = s.Rem(ctx, op.Rem)
	case op.List:
		r.Names, err = s.List(ctx)
	case op.Eval != nil:
		var o *core.Outcome
		if o, err = s.Eval(ctx, op.Eval.Case, op.Eval.Subject, op.Eval.Scope); err == nil {
			r.Value = o.Value
			r.Clause = &o.Clause
			r.Bindings = o.Bindings.Map()
			if o.Events != nil {
				r.Emitted = o.Emitted
			}
		}
	default:
		err = fmt.Errorf("not implemented: %s", JS(op))
	}

	if err != nil {
		r.Error = err.Error()
		util.Logger.Warn().Str("op", r.Id).Err(err).Msg("op failed")
	}

	return r, err
}

// JS renders its argument as JSON or as '%#v'.
func JS(x interface{}) string {
	js, err := json.Marshal(&x)
	if err != nil {
		return fmt.Sprintf("%#v", x)
	}
	return string(js)
}
