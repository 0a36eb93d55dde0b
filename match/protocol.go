package match

import (
	"reflect"
)

// Symbol is the type of hash-pattern keys.
type Symbol string

// Deconstructor is implemented by values that can be matched by
// Array and Find patterns.
type Deconstructor interface {
	Deconstruct() ([]interface{}, error)
}

// KeyDeconstructor is implemented by values that can be matched by
// Hash patterns.
//
// When the pattern has a rest capture (**rest or **), keys is nil,
// and the implementation should return every key it can.  Otherwise
// keys are the pattern's declared keys (in declaration order), and
// the implementation may return only those.  Returning extra keys is
// fine, but with **nil they make the match fail.
//
// The matcher does not cache results.  This method is called once per
// Hash pattern per attempt, so it can be called several times as a
// Case tries its clauses.
type KeyDeconstructor interface {
	DeconstructKeys(keys []Symbol) (map[Symbol]interface{}, error)
}

var bytesType = reflect.TypeOf([]byte(nil))

// primitiveSequence returns the elements of Go slices and arrays.
//
// Strings and byte slices aren't sequences.
func primitiveSequence(x interface{}) ([]interface{}, bool) {
	switch vv := x.(type) {
	case []interface{}:
		return vv, true
	case nil, string, []byte:
		return nil, false
	}
	v := reflect.ValueOf(x)
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		if v.Type() == bytesType {
			return nil, false
		}
		acc := make([]interface{}, v.Len())
		for i := range acc {
			acc[i] = v.Index(i).Interface()
		}
		return acc, true
	}
	return nil, false
}

// primitiveMapping returns the entries of Go maps with string-kinded
// keys.
func primitiveMapping(x interface{}) (map[Symbol]interface{}, bool) {
	switch vv := x.(type) {
	case map[Symbol]interface{}:
		return vv, true
	case map[string]interface{}:
		acc := make(map[Symbol]interface{}, len(vv))
		for k, v := range vv {
			acc[Symbol(k)] = v
		}
		return acc, true
	case nil:
		return nil, false
	}
	v := reflect.ValueOf(x)
	if v.Kind() != reflect.Map || v.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	acc := make(map[Symbol]interface{}, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		acc[Symbol(iter.Key().String())] = iter.Value().Interface()
	}
	return acc, true
}

// toSequence gets the elements of x for an Array or Find pattern.
//
// Returns false (and no error) if x isn't a sequence.  Errors from a
// Deconstructor are returned as is.
func toSequence(x interface{}) ([]interface{}, bool, error) {
	if xs, is := x.([]interface{}); is {
		return xs, true, nil
	}
	if d, is := x.(Deconstructor); is {
		xs, err := d.Deconstruct()
		if err != nil {
			return nil, false, err
		}
		return xs, true, nil
	}
	xs, is := primitiveSequence(x)
	return xs, is, nil
}

// toMapping gets the entries of x for a Hash pattern.
//
// Returns false (and no error) if x isn't a mapping.  Errors from a
// KeyDeconstructor are returned as is.
func toMapping(x interface{}, keys []Symbol) (map[Symbol]interface{}, bool, error) {
	if d, is := x.(KeyDeconstructor); is {
		m, err := d.DeconstructKeys(keys)
		if err != nil {
			return nil, false, err
		}
		if m == nil {
			m = map[Symbol]interface{}{}
		}
		return m, true, nil
	}
	m, is := primitiveMapping(x)
	return m, is, nil
}
