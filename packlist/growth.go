package packlist

// growthPath identifies what a push has to do to its buffer before writing a record
type growthPath uint32

const (
	// growthNone means the record fits in the current block
	growthNone growthPath = iota
	// growthFresh means there is no block yet and one must be allocated
	growthFresh
	// growthInPlace means the block is too small and is reallocated at the same alignment
	growthInPlace
	// growthRealign means the buffer's alignment went up, so a new block is allocated at the new
	// alignment, the old bytes are copied to the same offsets, and the old block is freed
	growthRealign
)

var growthPathMapping = map[growthPath]string{
	growthNone:    "None",
	growthFresh:   "Fresh",
	growthInPlace: "InPlace",
	growthRealign: "Realign",
}

func (p growthPath) String() string {
	return growthPathMapping[p]
}

// planGrowth picks the growth path for a push. A missing block takes priority over an
// alignment change, which takes priority over running out of capacity.
func planGrowth(hasBlock, alignChanged, overCapacity bool) growthPath {
	switch {
	case !alignChanged && !overCapacity:
		return growthNone
	case !hasBlock:
		return growthFresh
	case alignChanged:
		return growthRealign
	default:
		return growthInPlace
	}
}
