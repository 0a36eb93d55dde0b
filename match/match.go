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

// Package match implements the core pattern matcher.
package match

import (
	"errors"
	"sort"
)

type Matcher struct {
	// Transactional makes a failed Attempt leave the given
	// Bindings as they were before the Attempt.
	//
	// By default, matching is eager: every sub-pattern that
	// succeeds writes its bindings immediately, and those
	// bindings stay even if a later sub-pattern fails.  For
	// example, matching [a, 2] against [1, 3] fails but leaves
	// a=1.  Callers who find that surprising can turn this switch
	// on.  The engine itself is the same; the Bindings are just
	// restored from a snapshot when the Attempt fails.
	Transactional bool

	// EmptyHashMatchesOnlyEmpty is a switch that makes a Hash
	// pattern with no pairs and no rest ("{}") match only empty
	// mappings.
	//
	// Otherwise "{}" is like any other partial hash pattern and
	// matches every mapping.
	EmptyHashMatchesOnlyEmpty bool
}

var DefaultMatcher = &Matcher{}

// ErrNilBindings is returned by Attempt when not given Bindings to
// write to.
var ErrNilBindings = errors.New("nil bindings")

// Attempt tries to match the value x against the pattern p.
//
// Bindings are written to bs as sub-patterns succeed, and they remain
// there even if the attempt fails (unless the Matcher is
// Transactional).
//
// Errors come from Deconstructors, KeyDeconstructors, and patterns
// that aren't really patterns.  They are returned as is.
func (m *Matcher) Attempt(p Pattern, x interface{}, bs *Bindings) (bool, error) {
	if bs == nil {
		return false, ErrNilBindings
	}
	if !m.Transactional {
		return m.attempt(p, x, bs)
	}
	snapshot := bs.Copy()
	matched, err := m.attempt(p, x, bs)
	if !matched || err != nil {
		bs.restore(snapshot)
	}
	return matched, err
}

// Match attempts to match x against p with fresh Bindings.
//
// The Bindings are returned only when the match succeeded.
func (m *Matcher) Match(p Pattern, x interface{}) (*Bindings, bool, error) {
	bs := NewBindings()
	matched, err := m.Attempt(p, x, bs)
	if err != nil || !matched {
		return nil, false, err
	}
	return bs, true, nil
}

func (m *Matcher) attempt(p Pattern, x interface{}, bs *Bindings) (bool, error) {
	switch vv := p.(type) {
	case *Test:
		return vv.Predicate.Test(x), nil

	case *Wildcard:
		bs.Extend("_", x)
		return true, nil

	case *Bind:
		if _, is := vv.Inner.(*Wildcard); !is {
			matched, err := m.attempt(vv.Inner, x, bs)
			if err != nil || !matched {
				return matched, err
			}
		}
		bs.Extend(vv.Name, x)
		return true, nil

	case *Pin:
		return Equals(vv.Value, x), nil

	case *Array:
		return m.array(vv, x, bs)

	case *Find:
		return m.find(vv, x, bs)

	case *Hash:
		return m.hash(vv, x, bs)

	case *Alternative:
		for _, o := range vv.Options {
			matched, err := m.attempt(o, x, bs)
			if err != nil || matched {
				return matched, err
			}
		}
		return false, nil

	case *Constrained:
		if !vv.Class.Test(x) {
			return false, nil
		}
		return m.attempt(vv.Inner, x, bs)

	default:
		return false, &UnknownPatternType{p}
	}
}

// each matches the patterns against the elements pairwise, left to
// right, and stops at the first failure.
func (m *Matcher) each(ps []Pattern, xs []interface{}, bs *Bindings) (bool, error) {
	for i, p := range ps {
		matched, err := m.attempt(p, xs[i], bs)
		if err != nil || !matched {
			return matched, err
		}
	}
	return true, nil
}

func bindRest(r Rest, xs []interface{}, bs *Bindings) {
	if r.Kind != RestNamed {
		return
	}
	rest := make([]interface{}, len(xs))
	copy(rest, xs)
	bs.Extend(r.Name, rest)
}

func (m *Matcher) array(p *Array, x interface{}, bs *Bindings) (bool, error) {
	xs, is, err := toSequence(x)
	if err != nil || !is {
		return false, err
	}

	fixed := len(p.Pre) + len(p.Post)
	if len(xs) < fixed {
		return false, nil
	}
	if p.Rest.Kind == RestNone && len(xs) != fixed {
		return false, nil
	}

	if matched, err := m.each(p.Pre, xs[:len(p.Pre)], bs); err != nil || !matched {
		return matched, err
	}

	// The rest is bound before the post patterns are tried, which
	// is the order in which the pattern reads.
	bindRest(p.Rest, xs[len(p.Pre):len(xs)-len(p.Post)], bs)

	return m.each(p.Post, xs[len(xs)-len(p.Post):], bs)
}

// find searches for the first offset where Pre matches and then for
// the first later offset where Post matches.
//
// Each trial writes to its own scratch Bindings.  Only the trial that
// succeeds is spliced into bs.
func (m *Matcher) find(p *Find, x interface{}, bs *Bindings) (bool, error) {
	xs, is, err := toSequence(x)
	if err != nil || !is {
		return false, err
	}

	var (
		npre  = len(p.Pre)
		npost = len(p.Post)
	)

	if len(xs) < npre+npost {
		return false, nil
	}

	for i := 0; i+npre+npost <= len(xs); i++ {
		pre := NewBindings()
		matched, err := m.each(p.Pre, xs[i:i+npre], pre)
		if err != nil {
			return false, err
		}
		if !matched {
			continue
		}

		for j := i + npre; j+npost <= len(xs); j++ {
			post := NewBindings()
			matched, err := m.each(p.Post, xs[j:j+npost], post)
			if err != nil {
				return false, err
			}
			if !matched {
				continue
			}

			bindRest(p.Before, xs[:i], bs)
			pre.Splice(bs)
			post.Splice(bs)
			bindRest(p.After, xs[j+npost:], bs)
			return true, nil
		}
	}

	return false, nil
}

func (m *Matcher) hash(p *Hash, x interface{}, bs *Bindings) (bool, error) {
	var keys []Symbol
	if !p.Rest.captures() {
		keys = p.Keys()
	}

	h, is, err := toMapping(x, keys)
	if err != nil || !is {
		return false, err
	}

	for _, pair := range p.Pairs {
		if _, have := h[pair.Key]; !have {
			return false, nil
		}
	}

	if p.Rest.Kind == RestNoMoreKeys && len(h) != len(p.Pairs) {
		return false, nil
	}

	if m.EmptyHashMatchesOnlyEmpty && len(p.Pairs) == 0 && p.Rest.Kind == RestNone && 0 < len(h) {
		return false, nil
	}

	for _, pair := range p.Pairs {
		v := h[pair.Key]
		if pair.Pattern == nil {
			bs.Extend(string(pair.Key), v)
			continue
		}
		matched, err := m.attempt(pair.Pattern, v, bs)
		if err != nil || !matched {
			return matched, err
		}
	}

	if p.Rest.Kind == RestNamed {
		rest := make(map[Symbol]interface{}, len(h))
		for k, v := range h {
			rest[k] = v
		}
		for _, pair := range p.Pairs {
			delete(rest, pair.Key)
		}
		bs.Extend(p.Rest.Name, rest)
	}

	return true, nil
}

// Attempt uses DefaultMatcher.
func Attempt(p Pattern, x interface{}, bs *Bindings) (bool, error) {
	return DefaultMatcher.Attempt(p, x, bs)
}

// Match uses DefaultMatcher.
func Match(p Pattern, x interface{}) (*Bindings, bool, error) {
	return DefaultMatcher.Match(p, x)
}

func sortedKeys(m map[string]interface{}) []string {
	acc := make([]string, 0, len(m))
	for k := range m {
		acc = append(acc, k)
	}
	sort.Strings(acc)
	return acc
}
