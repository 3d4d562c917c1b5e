package collection

// box is the per-object wrapper described in spec.md §3: the object
// reference, its row-id (pk), and the memorised index-value tuple used to
// remove/refresh without re-reading attributes. Each slot of indexMem holds
// one memorising index's keys (as returned by index.Index.Add/Refresh): a
// single-element slice for a scalar index, or one element per collection
// item for an inverted index. Equality and hashing of the original
// reference-counted box reduce, in Go, to simply using pk (an int64) as the
// map key everywhere a box needs to be found or compared.
type box[T any] struct {
	obj      T
	pk       int64
	indexMem [][]any
}
