package index

// Context is the read-only view of the owning collection that an index
// needs in order to extract attribute values. It mirrors
// utwutwb.context.Context: getattr resolves direct or computed attributes;
// indexes never mutate it. Implemented by the collection package.
type Context interface {
	// GetAttr returns the current value of the named attribute on obj,
	// resolving computed attributes (names starting with a back-tick)
	// through the caller-supplied function map.
	GetAttr(obj any, name string) (any, error)
}
