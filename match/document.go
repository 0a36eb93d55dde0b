package match

import (
	"fmt"
	"strings"

	"github.com/jsccast/yaml"
	"github.com/pkg/errors"
)

// Pattern documents are patterns written as data (JSON or YAML).
//
// A document that isn't a map is a literal, and a list is an Array
// pattern without a rest.  A map has exactly one of these tags:
//
//	{lit: V}                                 literal V
//	{any: true}                              _
//	{var: x}                                 x
//	{bind: x, pattern: P}                    P => x
//	{pin: x}                                 ^x (resolved from scope when compiled)
//	{type: integer}                          a name from Kinds
//	{range: [1, 5], exclusive: false}        1..5 (null for an open end)
//	{regexp: "^a"}                           /^a/
//	{array: [P...], rest: r, post: [P...]}   [P..., *r, P...] (r is "*" or a name)
//	{find: [P...], post: [P...]}             [*, P..., *, P..., *] (optional before, after)
//	{hash: [{key: k, pattern: P}, {key: k}], rest: r}
//	                                         {k: P, k:, **r} (r is "*", "nil", or a name)
//	{alt: [P...]}                            P | P
//	{class: name, pattern: P}                Name(P)
var documentTags = []string{
	"lit", "any", "var", "bind", "pin", "type", "range", "regexp",
	"array", "find", "hash", "alt", "class",
}

// Compile builds a Pattern from a pattern document.
//
// Pinned variables are looked up in scope now, once.
func Compile(doc interface{}, scope *Bindings) (Pattern, error) {
	m, is := asMap(doc)
	if !is {
		if xs, is := doc.([]interface{}); is {
			pre, err := compileList(xs, scope)
			if err != nil {
				return nil, err
			}
			return NewArray(pre, NoRest(), nil)
		}
		return Literal(doc), nil
	}

	var tag string
	for _, t := range documentTags {
		if _, have := m[t]; have {
			if tag != "" {
				return nil, fmt.Errorf("pattern document has both %q and %q", tag, t)
			}
			tag = t
		}
	}

	switch tag {
	case "lit":
		return Literal(m["lit"]), nil

	case "any":
		return Any(), nil

	case "var":
		name, err := stringProp(m, "var")
		if err != nil {
			return nil, err
		}
		return Var(name), nil

	case "bind":
		name, err := stringProp(m, "bind")
		if err != nil {
			return nil, err
		}
		var inner Pattern
		if x, have := m["pattern"]; have {
			if inner, err = Compile(x, scope); err != nil {
				return nil, errors.Wrapf(err, "bind %s", name)
			}
		}
		return NewBind(name, inner), nil

	case "pin":
		name, err := stringProp(m, "pin")
		if err != nil {
			return nil, err
		}
		return PinVar(scope, name)

	case "type":
		name, err := stringProp(m, "type")
		if err != nil {
			return nil, err
		}
		kind, err := kindNamed(name)
		if err != nil {
			return nil, err
		}
		return TestOf(kind), nil

	case "range":
		bounds, is := m["range"].([]interface{})
		if !is || len(bounds) != 2 {
			return nil, errors.New("range needs [min, max]")
		}
		exclusive, _ := m["exclusive"].(bool)
		return TestOf(&Range{Min: bounds[0], Max: bounds[1], Exclusive: exclusive}), nil

	case "regexp":
		src, err := stringProp(m, "regexp")
		if err != nil {
			return nil, err
		}
		re, err := NewRegexp(src)
		if err != nil {
			return nil, err
		}
		return TestOf(re), nil

	case "array":
		return compileArray(m, scope)

	case "find":
		return compileFind(m, scope)

	case "hash":
		return compileHash(m, scope)

	case "alt":
		xs, is := m["alt"].([]interface{})
		if !is {
			return nil, errors.New("alt needs a list")
		}
		options, err := compileList(xs, scope)
		if err != nil {
			return nil, errors.Wrap(err, "alt")
		}
		return NewAlternative(options...)

	case "class":
		name, err := stringProp(m, "class")
		if err != nil {
			return nil, err
		}
		kind, err := kindNamed(name)
		if err != nil {
			return nil, err
		}
		inner, err := Compile(m["pattern"], scope)
		if err != nil {
			return nil, errors.Wrapf(err, "class %s", name)
		}
		return NewConstrained(kind, inner)

	default:
		return nil, fmt.Errorf("pattern document needs one of %s", strings.Join(documentTags, ", "))
	}
}

// Parse reads a pattern document written in YAML (or JSON) and
// compiles it.
func Parse(src []byte, scope *Bindings) (Pattern, error) {
	var doc interface{}
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, errors.Wrap(err, "pattern document")
	}
	return Compile(doc, scope)
}

func kindNamed(name string) (Predicate, error) {
	kind, have := Kinds[strings.ToLower(name)]
	if !have {
		return nil, fmt.Errorf("unknown type %q", name)
	}
	return kind, nil
}

func compileList(xs []interface{}, scope *Bindings) ([]Pattern, error) {
	acc := make([]Pattern, 0, len(xs))
	for i, x := range xs {
		p, err := Compile(x, scope)
		if err != nil {
			return nil, errors.Wrapf(err, "element %d", i)
		}
		acc = append(acc, p)
	}
	return acc, nil
}

func listProp(m map[string]interface{}, p string, scope *Bindings) ([]Pattern, error) {
	x, have := m[p]
	if !have || x == nil {
		return nil, nil
	}
	xs, is := x.([]interface{})
	if !is {
		return nil, fmt.Errorf("%s needs a list", p)
	}
	ps, err := compileList(xs, scope)
	if err != nil {
		return nil, errors.Wrap(err, p)
	}
	return ps, nil
}

// restProp reads a rest: "*" is anonymous, "nil" is no more keys (if
// allowed), and anything else is a name.
func restProp(m map[string]interface{}, p string, def Rest) (Rest, error) {
	x, have := m[p]
	if !have {
		return def, nil
	}
	if x == nil {
		return NoMoreKeys(), nil
	}
	s, is := x.(string)
	if !is {
		return def, fmt.Errorf("%s needs a string", p)
	}
	switch s {
	case "*", "**":
		return AnonymousRest(), nil
	case "nil":
		return NoMoreKeys(), nil
	}
	return NamedRest(s), nil
}

func compileArray(m map[string]interface{}, scope *Bindings) (Pattern, error) {
	pre, err := listProp(m, "array", scope)
	if err != nil {
		return nil, err
	}
	post, err := listProp(m, "post", scope)
	if err != nil {
		return nil, err
	}
	rest, err := restProp(m, "rest", NoRest())
	if err != nil {
		return nil, err
	}
	return NewArray(pre, rest, post)
}

func compileFind(m map[string]interface{}, scope *Bindings) (Pattern, error) {
	pre, err := listProp(m, "find", scope)
	if err != nil {
		return nil, err
	}
	post, err := listProp(m, "post", scope)
	if err != nil {
		return nil, err
	}
	before, err := restProp(m, "before", AnonymousRest())
	if err != nil {
		return nil, err
	}
	after, err := restProp(m, "after", AnonymousRest())
	if err != nil {
		return nil, err
	}
	return NewFindCapturing(before, pre, post, after)
}

func compileHash(m map[string]interface{}, scope *Bindings) (Pattern, error) {
	xs, is := m["hash"].([]interface{})
	if !is && m["hash"] != nil {
		return nil, errors.New("hash needs a list of {key, pattern}")
	}
	pairs := make([]Pair, 0, len(xs))
	for i, x := range xs {
		pm, is := asMap(x)
		if !is {
			return nil, fmt.Errorf("hash entry %d isn't a map", i)
		}
		key, err := stringProp(pm, "key")
		if err != nil {
			return nil, errors.Wrapf(err, "hash entry %d", i)
		}
		pair := Pair{Key: Symbol(key)}
		if px, have := pm["pattern"]; have {
			if pair.Pattern, err = Compile(px, scope); err != nil {
				return nil, errors.Wrapf(err, "hash key %s", key)
			}
		}
		pairs = append(pairs, pair)
	}
	rest, err := restProp(m, "rest", NoRest())
	if err != nil {
		return nil, err
	}
	return NewHash(pairs, rest)
}

func stringProp(m map[string]interface{}, p string) (string, error) {
	s, is := m[p].(string)
	if !is || s == "" {
		return "", fmt.Errorf("%s needs a string", p)
	}
	return s, nil
}

// asMap accepts both map[string]interface{} and the
// map[interface{}]interface{} that some YAML parsers make.
// Pins returns the names pinned in a pattern document, in order of
// first appearance.  Literals aren't searched.
func Pins(doc interface{}) []string {
	var (
		acc  []string
		seen = make(map[string]bool)
		walk func(x interface{})
	)
	walk = func(x interface{}) {
		if xs, is := x.([]interface{}); is {
			for _, x := range xs {
				walk(x)
			}
			return
		}
		m, is := asMap(x)
		if !is {
			return
		}
		if _, have := m["lit"]; have {
			return
		}
		if name, is := m["pin"].(string); is && !seen[name] {
			seen[name] = true
			acc = append(acc, name)
		}
		for _, k := range []string{"pattern", "array", "find", "post", "hash", "alt"} {
			walk(m[k])
		}
	}
	walk(doc)
	return acc
}

func asMap(x interface{}) (map[string]interface{}, bool) {
	switch vv := x.(type) {
	case map[string]interface{}:
		return vv, true
	case map[interface{}]interface{}:
		acc := make(map[string]interface{}, len(vv))
		for k, v := range vv {
			s, is := k.(string)
			if !is {
				return nil, false
			}
			acc[s] = v
		}
		return acc, true
	}
	return nil, false
}
