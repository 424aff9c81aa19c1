package heap

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/packlist/memutils"
)

//go:generate mockgen -package mocks -destination mocks/allocator.go . Allocator

// Allocator hands out aligned blocks of memory. It is the only way a packed list acquires
// or releases its buffer, which lets a consumer meter, limit or audit that memory.
type Allocator interface {
	// Allocate returns a zeroed block of exactly size bytes whose first byte is a multiple of
	// align. align must be a power of two and size must be positive.
	Allocate(size int, align uint) (Block, error)
	// Reallocate grows block to newSize bytes with the same alignment. Bytes already in the
	// block keep their offsets; the returned block replaces the one passed in, which must not
	// be used or freed afterward.
	Reallocate(block Block, newSize int) (Block, error)
	// Free releases a block. Freeing the nil block is a no-op.
	Free(block Block) error
}

// RuntimeAllocator serves blocks straight from the Go heap. It keeps no bookkeeping, so Free
// only drops the reference and the garbage collector reclaims the memory. The zero value is
// ready to use and safe for concurrent use.
type RuntimeAllocator struct{}

var _ Allocator = RuntimeAllocator{}

func validateRequest(size int, align uint) error {
	if size <= 0 {
		return errors.Newf("block size must be positive but was %d", size)
	}
	return memutils.CheckPow2(align, "align")
}

func (RuntimeAllocator) Allocate(size int, align uint) (Block, error) {
	if err := validateRequest(size, align); err != nil {
		return Block{}, err
	}

	return Block{data: alignedBytes(size, align), align: align}, nil
}

func (a RuntimeAllocator) Reallocate(block Block, newSize int) (Block, error) {
	if block.IsNil() {
		return Block{}, errors.New("attempted to reallocate the nil block")
	}
	if newSize < block.Size() {
		return Block{}, errors.Newf("cannot shrink a block from %d to %d bytes", block.Size(), newSize)
	}

	grown, err := a.Allocate(newSize, block.align)
	if err != nil {
		return Block{}, err
	}
	copy(grown.data, block.data)
	return grown, nil
}

func (RuntimeAllocator) Free(block Block) error {
	return nil
}
