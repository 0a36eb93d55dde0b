// Package service offers stored cases over HTTP, WebSockets, and
// MQTT.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Comcast/shapes/core"
	"github.com/Comcast/shapes/match"
	"github.com/Comcast/shapes/storage"
	"github.com/Comcast/shapes/util"

	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
)

// CaseNotFound is returned when a named case isn't in Storage.
type CaseNotFound struct {
	Name string
}

func (e *CaseNotFound) Error() string {
	return fmt.Sprintf("case %q not found", e.Name)
}

// BadCase is returned when a case spec won't compile.
type BadCase struct {
	Name string
	Err  error
}

func (e *BadCase) Error() string {
	return fmt.Sprintf("case %q: %s", e.Name, e.Err)
}

func (e *BadCase) Unwrap() error {
	return e.Err
}

// Service stores case specs and evaluates them.
type Service struct {
	Storage      storage.Storage
	Interpreters core.InterpretersMap

	// cases holds compiled cases by name.
	cases *cache.Cache
}

// NewService makes a Service.
//
// Compiled cases are cached for the given TTL, which can be
// cache.NoExpiration.
func NewService(s storage.Storage, interpreters core.InterpretersMap, ttl time.Duration) *Service {
	return &Service{
		Storage:      s,
		Interpreters: interpreters,
		cases:        cache.New(ttl, 2*ttl),
	}
}

// Put compiles the spec (to check it) and then stores it.
//
// Pinned variables get placeholders for the check, and a case with
// pins isn't cached since each eval must supply them.
func (s *Service) Put(ctx context.Context, spec *core.CaseSpec) error {
	if spec == nil || spec.Name == "" {
		return storage.ErrNoName
	}
	placeholders := pinPlaceholders(spec)
	c, err := spec.Compile(ctx, s.Interpreters, placeholders)
	if err != nil {
		return &BadCase{spec.Name, err}
	}
	if err = s.Storage.PutCase(ctx, spec); err != nil {
		return errors.Wrapf(err, "put %s", spec.Name)
	}
	if placeholders == nil {
		s.cases.Set(spec.Name, c, cache.DefaultExpiration)
	} else {
		s.cases.Delete(spec.Name)
	}
	util.Logger.Info().Str("case", spec.Name).Str("version", spec.Version).Msg("put")
	return nil
}

// Get returns the stored spec.
func (s *Service) Get(ctx context.Context, name string) (*core.CaseSpec, error) {
	spec, err := s.Storage.GetCase(ctx, name)
	if err != nil {
		return nil, errors.Wrapf(err, "get %s", name)
	}
	if spec == nil {
		return nil, &CaseNotFound{name}
	}
	return spec, nil
}

func (s *Service) Rem(ctx context.Context, name string) error {
	s.cases.Delete(name)
	if err := s.Storage.RemCase(ctx, name); err != nil {
		return errors.Wrapf(err, "rem %s", name)
	}
	util.Logger.Info().Str("case", name).Msg("rem")
	return nil
}

func (s *Service) List(ctx context.Context) ([]string, error) {
	return s.Storage.ListCases(ctx)
}

// pinPlaceholders returns a scope binding every pinned name to nil,
// or nil when the spec has no pins.
func pinPlaceholders(spec *core.CaseSpec) *match.Bindings {
	var bs *match.Bindings
	for _, cl := range spec.Clauses {
		if cl == nil {
			continue
		}
		for _, name := range match.Pins(cl.Pattern) {
			if bs == nil {
				bs = match.NewBindings()
			}
			bs.Extend(name, nil)
		}
	}
	return bs
}

// compiled finds the named case.
//
// Pinned variables are resolved when a case is compiled, so a case
// evaluated with a scope is compiled against that scope and not
// cached.
func (s *Service) compiled(ctx context.Context, name string, scope *match.Bindings) (*core.Case, error) {
	if scope == nil {
		if x, have := s.cases.Get(name); have {
			return x.(*core.Case), nil
		}
	}

	spec, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	c, err := spec.Compile(ctx, s.Interpreters, scope)
	if err != nil {
		return nil, &BadCase{name, err}
	}

	if scope == nil {
		s.cases.Set(name, c, cache.DefaultExpiration)
	}
	return c, nil
}

// Eval runs the named case against the subject.
//
// The scope can be nil.  When there's no matching clause (and no
// else), the error is a *core.NoMatchingPattern.
func (s *Service) Eval(ctx context.Context, name string, subject interface{}, scope map[string]interface{}) (*core.Outcome, error) {
	var bs *match.Bindings
	if scope != nil {
		bs = match.BindingsFromMap(scope)
	}

	c, err := s.compiled(ctx, name, bs)
	if err != nil {
		return nil, err
	}

	then := time.Now()
	o, err := c.Run(ctx, subject, bs)
	util.Logger.Debug().
		Str("case", name).
		Int("clause", o.Clause).
		Dur("elapsed", time.Since(then)).
		AnErr("err", err).
		Msg("eval")

	return o, err
}
