package match

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Bindings is a map from variables to their values, ordered by first
// write.
//
// A *Bindings is shared by reference during an attempt, and matching
// writes to it eagerly.  It's not safe for concurrent use.
type Bindings struct {
	names []string
	vals  map[string]interface{}
}

func NewBindings() *Bindings {
	return &Bindings{
		names: make([]string, 0, 8),
		vals:  make(map[string]interface{}, 8),
	}
}

// Extend adds the property; modifies and returns the Bindings.
//
// Rebinding a variable keeps its original position.
func (bs *Bindings) Extend(p string, v interface{}) *Bindings {
	if bs.vals == nil {
		bs.vals = make(map[string]interface{}, 8)
	}
	if _, have := bs.vals[p]; !have {
		bs.names = append(bs.names, p)
	}
	bs.vals[p] = v
	return bs
}

// Extendm adds the properties; modifies and returns the Bindings.
func (bs *Bindings) Extendm(pairs ...interface{}) (*Bindings, error) {
	for i := 0; i < len(pairs); i += 2 {
		x := pairs[i]
		p, is := x.(string)
		if !is {
			return nil, errors.New("Bindings.Extendm given a non-string key")
		}
		if len(pairs) <= i+1 {
			return nil, errors.New("odd args to Bindings.Extendm")
		}
		bs.Extend(p, pairs[i+1])
	}
	return bs, nil
}

// Get returns the binding for p (if any).
func (bs *Bindings) Get(p string) (interface{}, bool) {
	if bs == nil {
		return nil, false
	}
	x, have := bs.vals[p]
	return x, have
}

func (bs *Bindings) Has(p string) bool {
	_, have := bs.Get(p)
	return have
}

func (bs *Bindings) Len() int {
	if bs == nil {
		return 0
	}
	return len(bs.names)
}

// Names returns the bound variables in order.
func (bs *Bindings) Names() []string {
	if bs == nil {
		return nil
	}
	acc := make([]string, len(bs.names))
	copy(acc, bs.names)
	return acc
}

// Each calls f for each binding in order.
func (bs *Bindings) Each(f func(p string, v interface{})) {
	if bs == nil {
		return
	}
	for _, p := range bs.names {
		f(p, bs.vals[p])
	}
}

// Remove removes the given keys.
//
// The Bindings are modified.
func (bs *Bindings) Remove(ps ...string) *Bindings {
	for _, p := range ps {
		if _, have := bs.vals[p]; !have {
			continue
		}
		delete(bs.vals, p)
		for i, name := range bs.names {
			if name == p {
				bs.names = append(bs.names[:i], bs.names[i+1:]...)
				break
			}
		}
	}
	return bs
}

// DeleteExcept removes all but the given properties.
//
// Does not copy.
func (bs *Bindings) DeleteExcept(keeps ...string) *Bindings {
	var rems []string
REM:
	for _, p := range bs.names {
		for _, keep := range keeps {
			if keep == p {
				continue REM
			}
		}
		rems = append(rems, p)
	}
	return bs.Remove(rems...)
}

// Copy makes a shallow copy of the Bindings.
func (bs *Bindings) Copy() *Bindings {
	acc := &Bindings{
		names: make([]string, 0, bs.Len()),
		vals:  make(map[string]interface{}, bs.Len()),
	}
	bs.Each(func(p string, v interface{}) {
		acc.Extend(p, v)
	})
	return acc
}

// Splice writes these bindings, in order, into the given scope.
func (bs *Bindings) Splice(into *Bindings) {
	bs.Each(func(p string, v interface{}) {
		into.Extend(p, v)
	})
}

// restore makes these Bindings the same as the snapshot.
func (bs *Bindings) restore(snapshot *Bindings) {
	*bs = *snapshot.Copy()
}

// Map returns an unordered copy.
func (bs *Bindings) Map() map[string]interface{} {
	acc := make(map[string]interface{}, bs.Len())
	bs.Each(func(p string, v interface{}) {
		acc[p] = v
	})
	return acc
}

// BindingsFromMap makes Bindings from a map.  Since maps aren't
// ordered, the names are sorted.
func BindingsFromMap(m map[string]interface{}) *Bindings {
	bs := NewBindings()
	for _, p := range sortedKeys(m) {
		bs.Extend(p, m[p])
	}
	return bs
}

// MarshalJSON renders the Bindings as a JSON object in order.
func (bs *Bindings) MarshalJSON() ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.WriteByte('{')
	for i, p := range bs.Names() {
		if 0 < i {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(p)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(bs.vals[p])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object and keeps the order of its
// properties.
func (bs *Bindings) UnmarshalJSON(js []byte) error {
	dec := json.NewDecoder(bytes.NewReader(js))
	t, err := dec.Token()
	if err != nil {
		return err
	}
	if d, is := t.(json.Delim); !is || d != '{' {
		return fmt.Errorf("bindings must be a JSON object, not %v", t)
	}
	*bs = *NewBindings()
	for dec.More() {
		t, err := dec.Token()
		if err != nil {
			return err
		}
		p, is := t.(string)
		if !is {
			return fmt.Errorf("bad bindings key %v", t)
		}
		var v interface{}
		if err := dec.Decode(&v); err != nil {
			return err
		}
		bs.Extend(p, v)
	}
	_, err = dec.Token()
	return err
}

func (bs *Bindings) String() string {
	js, err := bs.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("%v", bs.Map())
	}
	return string(js)
}
