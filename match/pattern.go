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

package match

import (
	"fmt"
	"strings"
)

// Pattern is a declarative description of a value's shape.
//
// The set of patterns is closed.  See Test, Wildcard, Bind, Pin,
// Array, Find, Hash, Alternative, and Constrained.
type Pattern interface {
	fmt.Stringer
	pattern()
}

// RestKind says what a pattern does with the elements (or keys) that
// its explicit sub-patterns don't mention.
type RestKind int

const (
	RestNone       RestKind = iota // No rest: exact length (arrays only).
	RestNamed                      // *name or **name
	RestAnonymous                  // * or **
	RestNoMoreKeys                 // **nil (hashes only)
)

// Rest is a rest specification for Array, Find, and Hash.
type Rest struct {
	Kind RestKind
	Name string
}

func NoRest() Rest {
	return Rest{Kind: RestNone}
}

func NamedRest(name string) Rest {
	return Rest{Kind: RestNamed, Name: name}
}

func AnonymousRest() Rest {
	return Rest{Kind: RestAnonymous}
}

// NoMoreKeys is the hash rest that requires the mapping to have
// exactly the declared keys.
func NoMoreKeys() Rest {
	return Rest{Kind: RestNoMoreKeys}
}

// captures reports if this rest specification accepts extra
// elements or keys.
func (r Rest) captures() bool {
	return r.Kind == RestNamed || r.Kind == RestAnonymous
}

// Test is a leaf pattern that defers to a Predicate.
type Test struct {
	Predicate Predicate
}

// Wildcard matches anything.  It binds "_".
type Wildcard struct{}

// Bind matches when Inner matches, and then binds Name to the value.
//
// When Inner is a Wildcard, the Bind is a bare variable: only Name
// is bound.
type Bind struct {
	Name  string
	Inner Pattern
}

// Pin matches values equal to Value, which was captured when the Pin
// was built.
type Pin struct {
	Value interface{}

	// Name is the variable that provided the Value (if any).  For
	// rendering only.
	Name string
}

// Array matches sequences.
type Array struct {
	Pre  []Pattern
	Rest Rest
	Post []Pattern
}

// Find matches a sequence that contains Pre at some offset and then,
// at or after the end of Pre, contains Post.
//
// Before and After optionally capture the elements before Pre and
// after Post.
type Find struct {
	Before Rest
	Pre    []Pattern
	Post   []Pattern
	After  Rest

	// Warn records whether experimental warnings were enabled
	// when this pattern was built.
	Warn bool
}

// Pair is a declared key of a Hash pattern.  A nil Pattern is the
// "key:" shorthand, which binds the key's name.
type Pair struct {
	Key     Symbol
	Pattern Pattern
}

// Hash matches mappings with Symbol keys.
type Hash struct {
	Pairs []Pair
	Rest  Rest
}

// Alternative matches if any of its Options matches.
type Alternative struct {
	Options []Pattern
}

// Constrained matches values that satisfy Class and then Inner.
type Constrained struct {
	Class Predicate
	Inner Pattern
}

func (*Test) pattern()        {}
func (*Wildcard) pattern()    {}
func (*Bind) pattern()        {}
func (*Pin) pattern()         {}
func (*Array) pattern()       {}
func (*Find) pattern()        {}
func (*Hash) pattern()        {}
func (*Alternative) pattern() {}
func (*Constrained) pattern() {}

// TestOf makes a Test for the given Predicate.
func TestOf(p Predicate) *Test {
	return &Test{Predicate: p}
}

// Literal makes a Test for the given value.
//
// If the value is already a Predicate, it's used as is.  Otherwise
// the test is equality.
func Literal(x interface{}) *Test {
	if p, is := x.(Predicate); is {
		return TestOf(p)
	}
	return TestOf(Equal(x))
}

// Any returns a Wildcard.
func Any() *Wildcard {
	return &Wildcard{}
}

// NewBind makes a Bind.  A nil inner pattern is a Wildcard.
func NewBind(name string, inner Pattern) *Bind {
	if inner == nil {
		inner = Any()
	}
	return &Bind{Name: name, Inner: inner}
}

// Var makes a bare variable.
func Var(name string) *Bind {
	return NewBind(name, nil)
}

// NewPin captures the given value.
func NewPin(x interface{}) *Pin {
	return &Pin{Value: x}
}

// PinVar resolves name in scope, once, and pins its value.
func PinVar(scope *Bindings, name string) (*Pin, error) {
	x, have := scope.Get(name)
	if !have {
		return nil, &PatternConstructionError{
			Reason: fmt.Sprintf("%s: no such local variable", name),
		}
	}
	return &Pin{Value: x, Name: name}, nil
}

func checkPatterns(what string, ps []Pattern) error {
	for i, p := range ps {
		if p == nil {
			return &PatternConstructionError{
				Reason: fmt.Sprintf("nil %s pattern at %d", what, i),
			}
		}
	}
	return nil
}

func checkSequenceRest(r Rest) error {
	switch r.Kind {
	case RestNone, RestAnonymous:
		return nil
	case RestNamed:
		if r.Name == "" {
			return &PatternConstructionError{Reason: "named rest without a name"}
		}
		return nil
	default:
		return &PatternConstructionError{Reason: "**nil is only allowed in hash patterns"}
	}
}

// NewArray makes an Array pattern.
func NewArray(pre []Pattern, rest Rest, post []Pattern) (*Array, error) {
	if err := checkPatterns("array", pre); err != nil {
		return nil, err
	}
	if err := checkPatterns("array", post); err != nil {
		return nil, err
	}
	if err := checkSequenceRest(rest); err != nil {
		return nil, err
	}
	if rest.Kind == RestNone && 0 < len(post) {
		return nil, &PatternConstructionError{Reason: "array pattern has post elements but no rest"}
	}
	return &Array{Pre: pre, Rest: rest, Post: post}, nil
}

// NewFind makes a Find pattern.
//
// Find patterns are experimental.  If ExperimentalWarnings() is
// true, a warning is logged and the pattern remembers that it was
// built with warnings on.
func NewFind(pre, post []Pattern) (*Find, error) {
	return NewFindCapturing(AnonymousRest(), pre, post, AnonymousRest())
}

// NewFindCapturing is NewFind with rests for the elements before Pre
// and after Post.
func NewFindCapturing(before Rest, pre, post []Pattern, after Rest) (*Find, error) {
	if err := checkPatterns("find", pre); err != nil {
		return nil, err
	}
	if err := checkPatterns("find", post); err != nil {
		return nil, err
	}
	for _, r := range []Rest{before, after} {
		if !r.captures() {
			return nil, &PatternConstructionError{Reason: "find pattern rests must be * or *name"}
		}
		if err := checkSequenceRest(r); err != nil {
			return nil, err
		}
	}
	f := &Find{
		Before: before,
		Pre:    pre,
		Post:   post,
		After:  after,
		Warn:   ExperimentalWarnings(),
	}
	if f.Warn {
		WarnExperimental("find pattern")
	}
	return f, nil
}

// NewHash makes a Hash pattern.
func NewHash(pairs []Pair, rest Rest) (*Hash, error) {
	seen := make(map[Symbol]bool, len(pairs))
	for _, p := range pairs {
		if seen[p.Key] {
			return nil, &PatternConstructionError{
				Reason: fmt.Sprintf("duplicated key name %s", p.Key),
			}
		}
		seen[p.Key] = true
	}
	if rest.Kind == RestNamed && rest.Name == "" {
		return nil, &PatternConstructionError{Reason: "named rest without a name"}
	}
	return &Hash{Pairs: pairs, Rest: rest}, nil
}

// Keys returns the declared keys in declaration order.
func (h *Hash) Keys() []Symbol {
	keys := make([]Symbol, len(h.Pairs))
	for i, p := range h.Pairs {
		keys[i] = p.Key
	}
	return keys
}

// NewAlternative makes an Alternative.
//
// An option can't bind variables other than ones that start with
// "_".  That includes a Bind over a Wildcard: Var("x") is rejected
// even though it can't fail, and Var("_x") is allowed.  Named rests
// follow the same rule.  The restriction is checked here and not at
// match time.
func NewAlternative(options ...Pattern) (*Alternative, error) {
	if err := checkPatterns("alternative", options); err != nil {
		return nil, err
	}
	for _, o := range options {
		if name, bad := illegalBinding(o); bad {
			return nil, &PatternConstructionError{
				Reason:  fmt.Sprintf("illegal variable in alternative pattern (%s)", name),
				Pattern: o,
			}
		}
	}
	return &Alternative{Options: options}, nil
}

// NewConstrained makes a Constrained pattern.  Inner must be an
// Array, Find, or Hash.
func NewConstrained(class Predicate, inner Pattern) (*Constrained, error) {
	if class == nil {
		return nil, &PatternConstructionError{Reason: "constrained pattern without a class"}
	}
	switch inner.(type) {
	case *Array, *Find, *Hash:
	default:
		return nil, &PatternConstructionError{
			Reason:  "constrained pattern needs an array, find, or hash pattern",
			Pattern: inner,
		}
	}
	return &Constrained{Class: class, Inner: inner}, nil
}

// Must panics if err isn't nil.  For patterns known to be good.
func Must(p Pattern, err error) Pattern {
	if err != nil {
		panic(err)
	}
	return p
}

func isUnderscored(name string) bool {
	return strings.HasPrefix(name, "_")
}

func illegalRest(r Rest) (string, bool) {
	if r.Kind == RestNamed && !isUnderscored(r.Name) {
		return r.Name, true
	}
	return "", false
}

func illegalBindings(ps []Pattern) (string, bool) {
	for _, p := range ps {
		if name, bad := illegalBinding(p); bad {
			return name, true
		}
	}
	return "", false
}

// illegalBinding finds a variable that an Alternative option isn't
// allowed to bind.
func illegalBinding(p Pattern) (string, bool) {
	switch vv := p.(type) {
	case *Bind:
		if !isUnderscored(vv.Name) {
			return vv.Name, true
		}
		return illegalBinding(vv.Inner)
	case *Array:
		if name, bad := illegalBindings(vv.Pre); bad {
			return name, true
		}
		if name, bad := illegalRest(vv.Rest); bad {
			return name, true
		}
		return illegalBindings(vv.Post)
	case *Find:
		if name, bad := illegalRest(vv.Before); bad {
			return name, true
		}
		if name, bad := illegalBindings(vv.Pre); bad {
			return name, true
		}
		if name, bad := illegalBindings(vv.Post); bad {
			return name, true
		}
		return illegalRest(vv.After)
	case *Hash:
		for _, pair := range vv.Pairs {
			if pair.Pattern == nil {
				if !isUnderscored(string(pair.Key)) {
					return string(pair.Key), true
				}
				continue
			}
			if name, bad := illegalBinding(pair.Pattern); bad {
				return name, true
			}
		}
		return illegalRest(vv.Rest)
	case *Alternative:
		return illegalBindings(vv.Options)
	case *Constrained:
		return illegalBinding(vv.Inner)
	}
	return "", false
}

// Variables returns the names that a successful match of the
// pattern can bind, in order of first appearance.
func Variables(p Pattern) []string {
	var (
		acc  = make([]string, 0, 4)
		seen = make(map[string]bool)
		add  = func(name string) {
			if !seen[name] {
				seen[name] = true
				acc = append(acc, name)
			}
		}
		rest func(r Rest)
		walk func(p Pattern)
	)
	rest = func(r Rest) {
		if r.Kind == RestNamed {
			add(r.Name)
		}
	}
	walk = func(p Pattern) {
		switch vv := p.(type) {
		case *Wildcard:
			add("_")
		case *Bind:
			add(vv.Name)
			if _, bare := vv.Inner.(*Wildcard); !bare && vv.Inner != nil {
				walk(vv.Inner)
			}
		case *Array:
			for _, q := range vv.Pre {
				walk(q)
			}
			rest(vv.Rest)
			for _, q := range vv.Post {
				walk(q)
			}
		case *Find:
			rest(vv.Before)
			for _, q := range vv.Pre {
				walk(q)
			}
			for _, q := range vv.Post {
				walk(q)
			}
			rest(vv.After)
		case *Hash:
			for _, pair := range vv.Pairs {
				if pair.Pattern == nil {
					add(string(pair.Key))
					continue
				}
				walk(pair.Pattern)
			}
			rest(vv.Rest)
		case *Alternative:
			for _, q := range vv.Options {
				walk(q)
			}
		case *Constrained:
			walk(vv.Inner)
		}
	}
	walk(p)
	return acc
}

func (p *Test) String() string {
	return p.Predicate.String()
}

func (p *Wildcard) String() string {
	return "_"
}

func (p *Bind) String() string {
	if _, is := p.Inner.(*Wildcard); is {
		return p.Name
	}
	return p.Inner.String() + " => " + p.Name
}

func (p *Pin) String() string {
	if p.Name != "" {
		return "^" + p.Name
	}
	return "^(" + literalString(p.Value) + ")"
}

func joinPatterns(ps []Pattern) []string {
	acc := make([]string, 0, len(ps))
	for _, p := range ps {
		acc = append(acc, p.String())
	}
	return acc
}

func (r Rest) sequenceString() string {
	if r.Kind == RestNamed {
		return "*" + r.Name
	}
	return "*"
}

func (p *Array) String() string {
	parts := joinPatterns(p.Pre)
	if p.Rest.Kind != RestNone {
		parts = append(parts, p.Rest.sequenceString())
	}
	parts = append(parts, joinPatterns(p.Post)...)
	return "[" + strings.Join(parts, ", ") + "]"
}

func (p *Find) String() string {
	parts := []string{p.Before.sequenceString()}
	parts = append(parts, joinPatterns(p.Pre)...)
	if 0 < len(p.Post) {
		parts = append(parts, "*")
		parts = append(parts, joinPatterns(p.Post)...)
	}
	parts = append(parts, p.After.sequenceString())
	return "[" + strings.Join(parts, ", ") + "]"
}

func (p *Hash) String() string {
	parts := make([]string, 0, len(p.Pairs)+1)
	for _, pair := range p.Pairs {
		if pair.Pattern == nil {
			parts = append(parts, string(pair.Key)+":")
		} else {
			parts = append(parts, string(pair.Key)+": "+pair.Pattern.String())
		}
	}
	switch p.Rest.Kind {
	case RestNamed:
		parts = append(parts, "**"+p.Rest.Name)
	case RestAnonymous:
		parts = append(parts, "**")
	case RestNoMoreKeys:
		parts = append(parts, "**nil")
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (p *Alternative) String() string {
	return strings.Join(joinPatterns(p.Options), " | ")
}

func (p *Constrained) String() string {
	inner := p.Inner.String()
	return p.Class.String() + "(" + inner[1:len(inner)-1] + ")"
}
