package heap

import "github.com/cockroachdb/errors"

var (
	// ErrOutOfMemory is returned when an allocation would take a TrackingAllocator past its byte limit
	ErrOutOfMemory = errors.New("out of memory")
	// ErrUnknownBlock is returned when a block passed to Reallocate or Free is not live in the allocator,
	// usually because it was already freed
	ErrUnknownBlock = errors.New("block is not live in this allocator")
	// ErrMemoryCorrupted is returned when the debug margin after a block has been overwritten
	ErrMemoryCorrupted = errors.New("memory corruption detected")
)
