package match

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBindingsOrder(t *testing.T) {
	bs := NewBindings().Extend("b", 1).Extend("a", 2).Extend("b", 3)
	if got, want := bs.Names(), []string{"b", "a"}; !cmp.Equal(got, want) {
		t.Fatalf("got %v, wanted %v", got, want)
	}
	if x, _ := bs.Get("b"); x != 3 {
		t.Fatal(x)
	}

	js, err := json.Marshal(bs)
	if err != nil {
		t.Fatal(err)
	}
	if string(js) != `{"b":3,"a":2}` {
		t.Fatal(string(js))
	}

	var back Bindings
	if err = json.Unmarshal([]byte(`{"z":1,"y":[2]}`), &back); err != nil {
		t.Fatal(err)
	}
	if got, want := back.Names(), []string{"z", "y"}; !cmp.Equal(got, want) {
		t.Fatalf("got %v, wanted %v", got, want)
	}
	if err = json.Unmarshal([]byte(`[1]`), &back); err == nil {
		t.Fatal("unmarshalled an array")
	}
}

func TestBindingsCopy(t *testing.T) {
	bs := NewBindings().Extend("a", 1)
	c := bs.Copy()
	c.Extend("b", 2)
	if bs.Has("b") {
		t.Fatal("copy wasn't a copy")
	}

	bs.restore(c)
	if !bs.Has("b") {
		t.Fatal("restore didn't restore")
	}
}

func TestBindingsSplice(t *testing.T) {
	scope := NewBindings().Extend("x", 0).Extend("y", 0)
	NewBindings().Extend("z", 1).Extend("x", 2).Splice(scope)
	if got, want := scope.Names(), []string{"x", "y", "z"}; !cmp.Equal(got, want) {
		t.Fatalf("got %v, wanted %v", got, want)
	}
	checkBindings(t, scope, map[string]interface{}{"x": 2, "y": 0, "z": 1})
}

func TestBindingsRemove(t *testing.T) {
	bs := NewBindings().Extend("a", 1).Extend("b", 2).Extend("c", 3)
	bs.Remove("b", "nope")
	if got, want := bs.Names(), []string{"a", "c"}; !cmp.Equal(got, want) {
		t.Fatalf("got %v, wanted %v", got, want)
	}
	bs.DeleteExcept("c")
	if got, want := bs.Names(), []string{"c"}; !cmp.Equal(got, want) {
		t.Fatalf("got %v, wanted %v", got, want)
	}
}

func TestBindingsExtendm(t *testing.T) {
	bs, err := NewBindings().Extendm("a", 1, "b", 2)
	if err != nil {
		t.Fatal(err)
	}
	checkBindings(t, bs, map[string]interface{}{"a": 1, "b": 2})

	if _, err = NewBindings().Extendm("a"); err == nil {
		t.Fatal("odd")
	}
	if _, err = NewBindings().Extendm(1, 2); err == nil {
		t.Fatal("non-string")
	}
}

func TestBindingsFromMap(t *testing.T) {
	bs := BindingsFromMap(map[string]interface{}{"b": 1, "a": 2})
	if got, want := bs.Names(), []string{"a", "b"}; !cmp.Equal(got, want) {
		t.Fatalf("got %v, wanted %v", got, want)
	}
}

func TestNilBindings(t *testing.T) {
	var bs *Bindings
	if bs.Has("a") || bs.Len() != 0 || bs.Names() != nil {
		t.Fatal("nil Bindings aren't empty")
	}
}
