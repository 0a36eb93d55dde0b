package match

// Fuzz subjects and patterns derived from them.  Every derived
// pattern must match its subject with the expected bindings.

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// Fuzz has parameters used to generate random subjects and patterns.
type Fuzz struct {
	MapWidth    int
	ArrayWidth  int
	Alphabet    string
	PropWidth   int
	StringWidth int
	MaxNumber   float64

	Nils    float64
	Strings float64
	Bools   float64
	Numbers float64
	Arrays  float64
	Maps    float64
	Aliens  float64

	// Vars is the probability that a sub-pattern is just a
	// variable.
	Vars float64

	// Rests is the probability that an array or hash pattern
	// has a named rest.
	Rests float64

	// generated counts the number of atomic values generated.
	generated int64

	// vars counts the variables generated.
	vars int
}

// NewFuzz returns a reasonable, general-purpose Fuzz.
func NewFuzz() *Fuzz {
	return &Fuzz{
		MapWidth:    5,
		ArrayWidth:  5,
		Alphabet:    "abcde",
		StringWidth: 4,
		PropWidth:   2,
		MaxNumber:   10,

		Nils:    1,
		Strings: 3,
		Bools:   1,
		Numbers: 4,
		Arrays:  3,
		Maps:    3,
		Aliens:  0.5,

		Vars:  0.3,
		Rests: 0.3,
	}
}

// Gen generates a random subject.
func (f *Fuzz) Gen(r *rand.Rand, d int) interface{} {
	f.generated++

	m := f.Strings + f.Bools + f.Numbers + f.Aliens + f.Nils

	if 0 < d {
		m += f.Arrays + f.Maps
	}

	t := r.Float64() * m
	if t < f.Strings {
		return f.genString(r, f.StringWidth)
	} else if t < f.Strings+f.Bools {
		return f.genBool(r)
	} else if t < f.Strings+f.Bools+f.Numbers {
		return f.genNumber(r)
	} else if t < f.Strings+f.Bools+f.Numbers+f.Aliens {
		return struct{}{}
	} else if t < f.Strings+f.Bools+f.Numbers+f.Aliens+f.Nils {
		return nil
	} else if t < f.Strings+f.Bools+f.Numbers+f.Aliens+f.Nils+f.Arrays {
		return f.genArray(r, d-1)
	} else {
		return f.genMap(r, d-1)
	}
}

func (f *Fuzz) genString(r *rand.Rand, width int) string {
	n := r.Intn(width-1) + 1
	s := make([]byte, n)
	for i := range s {
		s[i] = f.Alphabet[r.Intn(len(f.Alphabet))]
	}
	return string(s)
}

func (f *Fuzz) genBool(r *rand.Rand) interface{} {
	return r.Intn(1024)%2 == 0
}

func (f *Fuzz) genNumber(r *rand.Rand) interface{} {
	return float64(r.Intn(int(f.MaxNumber)))
}

func (f *Fuzz) genArray(r *rand.Rand, d int) interface{} {
	xs := make([]interface{}, r.Intn(f.ArrayWidth))
	for i := range xs {
		xs[i] = f.Gen(r, d)
	}
	return xs
}

func (f *Fuzz) genMap(r *rand.Rand, d int) interface{} {
	n := r.Intn(f.MapWidth)
	m := make(map[string]interface{}, n)
	for i := 0; i < n; i++ {
		m[f.genString(r, f.PropWidth+1)] = f.Gen(r, d)
	}
	return m
}

func (f *Fuzz) genVar() string {
	f.vars++
	return fmt.Sprintf("v%d", f.vars)
}

// Generalize makes a pattern that matches x, and it records the
// bindings that the match should produce.
func (f *Fuzz) Generalize(r *rand.Rand, x interface{}, want map[string]interface{}) Pattern {
	if r.Float64() < f.Vars {
		name := f.genVar()
		want[name] = x
		return Var(name)
	}

	switch vv := x.(type) {
	case []interface{}:
		k := len(vv)
		rest := NoRest()
		if r.Float64() < f.Rests {
			k = r.Intn(len(vv) + 1)
			rest = NamedRest(f.genVar())
			tail := make([]interface{}, len(vv)-k)
			copy(tail, vv[k:])
			want[rest.Name] = tail
		}
		pre := make([]Pattern, k)
		for i := range pre {
			pre[i] = f.Generalize(r, vv[i], want)
		}
		return Must(NewArray(pre, rest, nil))

	case map[string]interface{}:
		var (
			pairs = make([]Pair, 0, len(vv))
			rest  = NoMoreKeys()
			left  = make(map[Symbol]interface{})
		)
		for _, k := range sortedKeys(vv) {
			if r.Intn(3) == 0 {
				left[Symbol(k)] = vv[k]
				continue
			}
			pairs = append(pairs, Pair{Symbol(k), f.Generalize(r, vv[k], want)})
		}
		if 0 < len(left) {
			rest = NoRest()
		}
		if r.Float64() < f.Rests {
			rest = NamedRest(f.genVar())
			want[rest.Name] = left
		}
		return Must(NewHash(pairs, rest))
	}

	return Literal(x)
}

// TestMatchFuzz derives patterns from a bunch of subjects and checks
// that each pattern matches its subject with the expected bindings.
func TestMatchFuzz(t *testing.T) {
	var (
		subjects = 20000

		d = 4
		r = rand.New(rand.NewSource(42))
		f = NewFuzz()

		maxBindings = 0
		misses      = 0
	)

	then := time.Now()
	for i := 0; i < subjects; i++ {
		x := f.Gen(r, d)
		want := make(map[string]interface{})
		p := f.Generalize(r, x, want)

		bs := NewBindings()
		matched, err := Attempt(p, x, bs)
		if err != nil {
			t.Fatalf("%s: %s", p, err)
		}
		if !matched {
			t.Fatalf("%s didn't match %#v", p, x)
		}
		if diff := cmp.Diff(want, bs.Map()); diff != "" {
			t.Fatalf("%s against %#v (-want +got):\n%s", p, x, diff)
		}
		if maxBindings < bs.Len() {
			maxBindings = bs.Len()
		}

		// A whole-array pattern that's one element too long never
		// matches.
		if xs, is := x.([]interface{}); is {
			ps := make([]Pattern, len(xs)+1)
			for i := range ps {
				ps[i] = Any()
			}
			if mustAttempt(t, Must(NewArray(ps, NoRest(), nil)), x, NewBindings()) {
				t.Fatalf("%d wildcards matched %#v", len(ps), x)
			}
			misses++
		}
	}
	elapsed := time.Now().Sub(then)

	t.Logf(`fuzzed      %d
misses      %d
elapsed     %fms
maxBindings %d
generated   %d
`,
		subjects,
		misses,
		elapsed.Seconds()*1000,
		maxBindings,
		f.generated)
}
