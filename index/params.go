package index

import "strings"

// Params describes one index entity, matching spec.md §3's Index entity.
type Params struct {
	// Name is the attribute name this index is bound to. A name beginning
	// with a back-tick denotes a computed attribute, resolved through a
	// caller-supplied function map instead of direct field access.
	Name string

	// KeyType selects the ordered-map flavour backing this index.
	KeyType KeyType

	// NoneAllowed permits null keys, stored in a separate set instead of
	// the keyed bucket table.
	NoneAllowed bool

	// Unique rejects adding a second object under an already-occupied key.
	Unique bool

	// Memorize keeps a copy of this index's extracted value on each
	// object's box so refresh can diff old vs. new without re-reading the
	// attribute, and so remove never needs to re-extract from a
	// possibly-already-mutated object. Non-memorising indexes re-extract
	// on every remove and are skipped entirely by Collection.Refresh.
	Memorize bool

	// Compare orders two keys for a KeyObj-keyed RangeIndex. Required when
	// KeyType is KeyObj and the index supports range queries; unused
	// otherwise (KeyInt/KeyUint order numerically, and KeyObj hash-only
	// indexes only ever need equality).
	Compare CompareFunc
}

// Computed reports whether Name denotes a computed attribute.
func (p Params) Computed() bool { return strings.HasPrefix(p.Name, "`") }

// DefaultParams returns Params for name with the common defaults: obj keys,
// nulls disallowed, not unique, memorised.
func DefaultParams(name string) Params {
	return Params{Name: name, KeyType: KeyObj, Memorize: true}
}

func (p Params) compareFunc() CompareFunc {
	switch p.KeyType {
	case KeyInt:
		return intCompare
	case KeyUint:
		return uintCompare
	default:
		if p.Compare != nil {
			return p.Compare
		}
		return defaultObjCompare
	}
}
