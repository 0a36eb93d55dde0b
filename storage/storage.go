// Package storage persists named case specs.
package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/Comcast/shapes/core"

	"github.com/pkg/errors"
)

// Storage is a persistence interface for CaseSpecs, which are
// stored by name.
type Storage interface {
	Open(ctx context.Context) error

	Close(ctx context.Context) error

	// PutCase writes the spec, replacing any spec with the same
	// name.
	PutCase(ctx context.Context, spec *core.CaseSpec) error

	// GetCase returns nil (and no error) if there's no spec with
	// that name.
	GetCase(ctx context.Context, name string) (*core.CaseSpec, error)

	RemCase(ctx context.Context, name string) error

	// ListCases returns the names of the stored specs in order.
	ListCases(ctx context.Context) ([]string, error)
}

// ErrNoName is returned when a spec without a name is put.
var ErrNoName = errors.New("case spec has no name")

// MemStorage is an in-memory Storage.
type MemStorage struct {
	sync.RWMutex
	specs map[string]*core.CaseSpec
}

func NewMemStorage() *MemStorage {
	return &MemStorage{
		specs: make(map[string]*core.CaseSpec),
	}
}

func (s *MemStorage) Open(ctx context.Context) error {
	return nil
}

func (s *MemStorage) Close(ctx context.Context) error {
	return nil
}

func (s *MemStorage) PutCase(ctx context.Context, spec *core.CaseSpec) error {
	if spec.Name == "" {
		return ErrNoName
	}
	s.Lock()
	s.specs[spec.Name] = spec.Copy("")
	s.Unlock()
	return nil
}

func (s *MemStorage) GetCase(ctx context.Context, name string) (*core.CaseSpec, error) {
	s.RLock()
	spec, have := s.specs[name]
	s.RUnlock()
	if !have {
		return nil, nil
	}
	return spec.Copy(""), nil
}

func (s *MemStorage) RemCase(ctx context.Context, name string) error {
	s.Lock()
	delete(s.specs, name)
	s.Unlock()
	return nil
}

func (s *MemStorage) ListCases(ctx context.Context) ([]string, error) {
	s.RLock()
	acc := make([]string, 0, len(s.specs))
	for name := range s.specs {
		acc = append(acc, name)
	}
	s.RUnlock()
	sort.Strings(acc)
	return acc, nil
}
