package collection

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/bzczb/wut/plan"
)

// GetAttr implements index.Context: a direct/computed read of obj's current
// value for name, never memory-backed. Indexes call this during Add/Remove/
// Refresh/MakeVal, when the object itself (not a memorised snapshot) is the
// only correct source of truth. The executor's own attribute resolution
// (attrValue, in exec.go) is the one place that substitutes a memorised
// value instead, per spec.md §4.6.
func (c *Collection[T]) GetAttr(obj any, name string) (any, error) {
	o, ok := obj.(T)
	if !ok {
		return nil, fmt.Errorf("collection: GetAttr given a %T, expected %T", obj, o)
	}
	return c.getAttr(o, name)
}

func (c *Collection[T]) getAttr(obj T, name string) (any, error) {
	if strings.HasPrefix(name, "`") {
		fn, ok := c.attrs[name]
		if !ok {
			return nil, fmt.Errorf("collection: no computed attribute %s registered", name)
		}
		return fn(obj), nil
	}
	return readAttr(obj, name)
}

// readAttr resolves a direct attribute by name: a map[string]any key, or a
// struct field (dereferencing any number of pointer levels first).
func readAttr(obj any, name string) (any, error) {
	if m, ok := obj.(map[string]any); ok {
		v, ok := m[name]
		if !ok {
			return nil, fmt.Errorf("collection: no attribute %q", name)
		}
		return v, nil
	}

	v := reflect.ValueOf(obj)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, fmt.Errorf("collection: nil pointer reading attribute %q", name)
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("collection: cannot read attribute %q from %T", name, obj)
	}
	f := v.FieldByName(name)
	if !f.IsValid() {
		return nil, fmt.Errorf("collection: no field %q on %T", name, obj)
	}
	return f.Interface(), nil
}

// Indexes implements optimize.Context: every index bound to name, in
// declaration order, so UseIndex tries them in the order spec.md §9 calls
// significant.
func (c *Collection[T]) Indexes(name string) []plan.Index {
	return c.indexesByName[name]
}
