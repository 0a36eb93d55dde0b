package match

import (
	"math"
	"testing"
)

func TestEquals(t *testing.T) {
	tests := []struct {
		x, y interface{}
		want bool
	}{
		{1, 1.0, true},
		{int64(2), uint8(2), true},
		{1, "1", false},
		{"a", "a", true},
		{Symbol("a"), "a", false},
		{nil, nil, true},
		{seq(1, "a"), seq(1, "a"), true},
		{map[string]interface{}{"a": 1}, map[string]interface{}{"a": 1}, true},
		{seq(1), seq(1.0), true},
		{seq(1, seq(2)), []int{1, 2}, false},
		{seq(seq(2)), seq([]float64{2}), true},
		{map[string]interface{}{"a": 1}, map[string]interface{}{"a": 1.0}, true},
		{map[string]interface{}{"a": 1}, map[string]interface{}{"a": 1, "b": 2}, false},
		{map[string]interface{}{"a": 1}, map[string]interface{}{"b": 1}, false},
		{seq(1), map[string]interface{}{"0": 1}, false},
		{int64(9007199254740993), int64(9007199254740992), false},
		{int64(9007199254740993), uint64(9007199254740993), true},
		{uint64(math.MaxUint64), int64(-1), false},
		{int8(-1), uint8(255), false},
		{math.NaN(), math.NaN(), false},
	}
	for _, tc := range tests {
		if got := Equals(tc.x, tc.y); got != tc.want {
			t.Fatalf("Equals(%#v, %#v) = %v", tc.x, tc.y, got)
		}
	}
}

func TestRange(t *testing.T) {
	tests := []struct {
		r    *Range
		x    interface{}
		want bool
	}{
		{&Range{Min: 1, Max: 5}, 5, true},
		{&Range{Min: 1, Max: 5, Exclusive: true}, 5, false},
		{&Range{Min: 1, Max: 5}, 0.5, false},
		{&Range{Min: 1, Max: 5}, "3", false},
		{&Range{Min: 1}, 1000, true},
		{&Range{Max: 0}, -3, true},
		{&Range{Min: "a", Max: "m"}, "fish", true},
		{&Range{Min: "a", Max: "m"}, "zebra", false},
		{&Range{}, "anything", true},
		{&Range{Min: int64(9007199254740993)}, int64(9007199254740992), false},
		{&Range{Max: int64(-1)}, uint64(math.MaxUint64), false},
		{&Range{Min: int64(-1)}, uint64(math.MaxUint64), true},
		{&Range{Min: 1, Max: 2}, math.NaN(), false},
	}
	for _, tc := range tests {
		if got := tc.r.Test(tc.x); got != tc.want {
			t.Fatalf("%s against %#v: %v", tc.r, tc.x, got)
		}
	}
}

func TestRegexp(t *testing.T) {
	re, err := NewRegexp(`^(\w)\w*\1$`)
	if err != nil {
		t.Fatal(err)
	}
	for x, want := range map[interface{}]bool{
		"abca":         true,
		"abc":          false,
		Symbol("xyzx"): true,
		12:             false,
	} {
		if got := re.Test(x); got != want {
			t.Fatalf("%s against %#v: %v", re, x, got)
		}
	}

	if _, err = NewRegexp("(unbalanced"); err == nil {
		t.Fatal("compiled a bad expression")
	}
}

func TestKinds(t *testing.T) {
	tests := []struct {
		k    Predicate
		x    interface{}
		want bool
	}{
		{Integer, 3, true},
		{Integer, 3.0, false},
		{Float, 3.0, true},
		{Numeric, uint16(3), true},
		{String, "s", true},
		{String, Symbol("s"), false},
		{SymbolKind, Symbol("s"), true},
		{Bool, false, true},
		{Nil, nil, true},
		{Sequence, []string{"a"}, true},
		{Sequence, "a", false},
		{Sequence, &point{}, true},
		{Mapping, map[string]int{}, true},
		{Mapping, map[int]int{}, false},
		{TypeOf(point{}), point{}, true},
		{TypeOf(point{}), &point{}, false},
	}
	for _, tc := range tests {
		if got := tc.k.Test(tc.x); got != tc.want {
			t.Fatalf("%s against %#v: %v", tc.k, tc.x, got)
		}
	}
}

func TestNamedPredicate(t *testing.T) {
	even := Named("Even", func(x interface{}) bool {
		n, is := x.(int)
		return is && n%2 == 0
	})
	p := Literal(even)
	if p.String() != "Even" {
		t.Fatal(p.String())
	}
	if !mustAttempt(t, p, 4, NewBindings()) {
		t.Fatal("4 isn't even")
	}
	if mustAttempt(t, p, 3, NewBindings()) {
		t.Fatal("3 is even")
	}
}
