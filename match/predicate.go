package match

import (
	"fmt"
	"math"
	"reflect"
	"strconv"

	"github.com/dlclark/regexp2"
)

// Predicate is the case-equality capability used by Test patterns.
//
// Literals, ranges, classes, and regular expressions are all
// predicates.
type Predicate interface {
	fmt.Stringer
	Test(x interface{}) bool
}

// PredicateFunc makes a Predicate from a function.
type PredicateFunc struct {
	Name string
	F    func(x interface{}) bool
}

func (p *PredicateFunc) Test(x interface{}) bool {
	return p.F(x)
}

func (p *PredicateFunc) String() string {
	if p.Name == "" {
		return "<predicate>"
	}
	return p.Name
}

// Named makes a PredicateFunc.
func Named(name string, f func(x interface{}) bool) *PredicateFunc {
	return &PredicateFunc{Name: name, F: f}
}

type numKind int

const (
	notNumber numKind = iota
	signedNumber
	unsignedNumber
	floatNumber
)

// number holds any Go number without losing integer precision.
type number struct {
	kind numKind
	i    int64
	u    uint64
	f    float64
}

func toNumber(x interface{}) (number, bool) {
	switch vv := x.(type) {
	case float64:
		return number{kind: floatNumber, f: vv}, true
	case float32:
		return number{kind: floatNumber, f: float64(vv)}, true
	case int:
		return number{kind: signedNumber, i: int64(vv)}, true
	case int8:
		return number{kind: signedNumber, i: int64(vv)}, true
	case int16:
		return number{kind: signedNumber, i: int64(vv)}, true
	case int32:
		return number{kind: signedNumber, i: int64(vv)}, true
	case int64:
		return number{kind: signedNumber, i: vv}, true
	case uint:
		return number{kind: unsignedNumber, u: uint64(vv)}, true
	case uint8:
		return number{kind: unsignedNumber, u: uint64(vv)}, true
	case uint16:
		return number{kind: unsignedNumber, u: uint64(vv)}, true
	case uint32:
		return number{kind: unsignedNumber, u: uint64(vv)}, true
	case uint64:
		return number{kind: unsignedNumber, u: vv}, true
	default:
		return number{}, false
	}
}

func (n number) float() float64 {
	switch n.kind {
	case signedNumber:
		return float64(n.i)
	case unsignedNumber:
		return float64(n.u)
	}
	return n.f
}

func order[T int64 | uint64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// compareNumbers orders two numbers.  Integers are compared exactly,
// and only a comparison involving a float goes through float64.
// NaN isn't ordered.
func compareNumbers(a, b number) (int, bool) {
	switch {
	case a.kind == floatNumber || b.kind == floatNumber:
		x, y := a.float(), b.float()
		if math.IsNaN(x) || math.IsNaN(y) {
			return 0, false
		}
		return order(x, y), true
	case a.kind == signedNumber && b.kind == signedNumber:
		return order(a.i, b.i), true
	case a.kind == unsignedNumber && b.kind == unsignedNumber:
		return order(a.u, b.u), true
	case a.kind == signedNumber:
		if a.i < 0 {
			return -1, true
		}
		return order(uint64(a.i), b.u), true
	default:
		if b.i < 0 {
			return 1, true
		}
		return order(a.u, uint64(b.i)), true
	}
}

// Equals is the equality used by literal and pinned patterns.
//
// Numbers are compared by value regardless of their Go types, and
// that rule applies inside sequences and string-keyed maps too, so
// [1] equals [1.0].  Everything else is compared with
// reflect.DeepEqual.
func Equals(x, y interface{}) bool {
	if a, is := toNumber(x); is {
		b, is := toNumber(y)
		if !is {
			return false
		}
		c, ok := compareNumbers(a, b)
		return ok && c == 0
	}
	if xs, is := primitiveSequence(x); is {
		ys, is := primitiveSequence(y)
		if !is || len(xs) != len(ys) {
			return false
		}
		for i := range xs {
			if !Equals(xs[i], ys[i]) {
				return false
			}
		}
		return true
	}
	if xm, is := primitiveMapping(x); is {
		ym, is := primitiveMapping(y)
		if !is || len(xm) != len(ym) {
			return false
		}
		for k, xv := range xm {
			yv, have := ym[k]
			if !have || !Equals(xv, yv) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(x, y)
}

// EqualPredicate tests for equality with Value.
type EqualPredicate struct {
	Value interface{}
}

// Equal makes a predicate that tests for equality with x.
func Equal(x interface{}) *EqualPredicate {
	return &EqualPredicate{Value: x}
}

func (p *EqualPredicate) Test(x interface{}) bool {
	return Equals(p.Value, x)
}

func (p *EqualPredicate) String() string {
	return literalString(p.Value)
}

func literalString(x interface{}) string {
	switch vv := x.(type) {
	case nil:
		return "nil"
	case string:
		return strconv.Quote(vv)
	case Symbol:
		return ":" + string(vv)
	case fmt.Stringer:
		return vv.String()
	default:
		return fmt.Sprintf("%v", x)
	}
}

// Range tests containment.  Min and Max are numbers or strings.  A
// nil bound is open.
type Range struct {
	Min, Max  interface{}
	Exclusive bool
}

func compare(x, y interface{}) (int, bool) {
	if a, is := toNumber(x); is {
		b, is := toNumber(y)
		if !is {
			return 0, false
		}
		return compareNumbers(a, b)
	}
	a, is := stringish(x)
	if !is {
		return 0, false
	}
	b, is := stringish(y)
	if !is {
		return 0, false
	}
	switch {
	case a < b:
		return -1, true
	case a > b:
		return 1, true
	}
	return 0, true
}

func (r *Range) Test(x interface{}) bool {
	if r.Min != nil {
		c, ok := compare(r.Min, x)
		if !ok || 0 < c {
			return false
		}
	}
	if r.Max != nil {
		c, ok := compare(x, r.Max)
		if !ok || 0 < c || (r.Exclusive && c == 0) {
			return false
		}
	}
	return true
}

func (r *Range) String() string {
	dots := ".."
	if r.Exclusive {
		dots = "..."
	}
	s := ""
	if r.Min != nil {
		s = literalString(r.Min)
	}
	s += dots
	if r.Max != nil {
		s += literalString(r.Max)
	}
	return s
}

func stringish(x interface{}) (string, bool) {
	switch vv := x.(type) {
	case string:
		return vv, true
	case Symbol:
		return string(vv), true
	}
	return "", false
}

// Regexp tests strings (and Symbols) against a regular expression.
//
// Uses regexp2, which supports the backreferences and lookarounds
// that people expect from Ruby or Perl expressions.
type Regexp struct {
	Source string
	re     *regexp2.Regexp
}

// NewRegexp compiles the given expression.
func NewRegexp(src string) (*Regexp, error) {
	re, err := regexp2.Compile(src, regexp2.None)
	if err != nil {
		return nil, &PatternConstructionError{Reason: err.Error()}
	}
	return &Regexp{Source: src, re: re}, nil
}

func (r *Regexp) Test(x interface{}) bool {
	s, is := stringish(x)
	if !is {
		return false
	}
	matched, err := r.re.MatchString(s)
	return err == nil && matched
}

func (r *Regexp) String() string {
	return "/" + r.Source + "/"
}

// Kind is a class-membership predicate.
type Kind struct {
	Name string
	f    func(x interface{}) bool
}

func (k *Kind) Test(x interface{}) bool {
	return k.f(x)
}

func (k *Kind) String() string {
	return k.Name
}

var (
	Integer = &Kind{"Integer", func(x interface{}) bool {
		switch x.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return true
		}
		return false
	}}

	Float = &Kind{"Float", func(x interface{}) bool {
		switch x.(type) {
		case float32, float64:
			return true
		}
		return false
	}}

	Numeric = &Kind{"Numeric", func(x interface{}) bool {
		_, is := toNumber(x)
		return is
	}}

	String = &Kind{"String", func(x interface{}) bool {
		_, is := x.(string)
		return is
	}}

	SymbolKind = &Kind{"Symbol", func(x interface{}) bool {
		_, is := x.(Symbol)
		return is
	}}

	Bool = &Kind{"Bool", func(x interface{}) bool {
		_, is := x.(bool)
		return is
	}}

	Nil = &Kind{"nil", func(x interface{}) bool {
		return x == nil
	}}

	Sequence = &Kind{"Array", func(x interface{}) bool {
		if _, is := x.(Deconstructor); is {
			return true
		}
		_, is := primitiveSequence(x)
		return is
	}}

	Mapping = &Kind{"Hash", func(x interface{}) bool {
		if _, is := x.(KeyDeconstructor); is {
			return true
		}
		_, is := primitiveMapping(x)
		return is
	}}
)

// Kinds maps names to class predicates.
//
// Pattern documents find "type" and "class" names here.  Add your
// own.
var Kinds = map[string]Predicate{
	"integer": Integer,
	"float":   Float,
	"numeric": Numeric,
	"string":  String,
	"symbol":  SymbolKind,
	"bool":    Bool,
	"nil":     Nil,
	"array":   Sequence,
	"hash":    Mapping,
}

// TypeOf makes a Kind that tests that a value has the same dynamic
// type as the exemplar.
func TypeOf(exemplar interface{}) *Kind {
	t := reflect.TypeOf(exemplar)
	name := "nil"
	if t != nil {
		name = t.String()
	}
	return &Kind{name, func(x interface{}) bool {
		return reflect.TypeOf(x) == t
	}}
}
