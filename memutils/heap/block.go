package heap

import (
	"unsafe"

	"github.com/vkngwrapper/packlist/memutils"
)

// Block is a single contiguous run of Go heap memory whose first byte honors the alignment it
// was allocated with. The zero value is the nil block.
type Block struct {
	data  []byte
	align uint
}

// Bytes returns the block's memory. The slice's length and capacity are both the block size.
func (b Block) Bytes() []byte { return b.data }

// Size returns the size of the block in bytes
func (b Block) Size() int { return len(b.data) }

// Align returns the alignment the block was allocated with
func (b Block) Align() uint { return b.align }

// IsNil returns true for the zero Block
func (b Block) IsNil() bool { return b.data == nil }

// Pointer returns the address of the first byte of the block, or nil for the nil block
func (b Block) Pointer() unsafe.Pointer {
	if b.data == nil {
		return nil
	}
	return unsafe.Pointer(unsafe.SliceData(b.data))
}

func (b Block) address() uintptr {
	return uintptr(b.Pointer())
}

// alignedBytes returns size bytes of zeroed Go heap memory starting at a multiple of align.
// Word-aligned requests are served from a []uint64 so nothing is wasted; larger alignments
// over-allocate by align-1 bytes and slice into the first aligned address. The Go heap does
// not move objects, so the address stays aligned for the lifetime of the slice.
func alignedBytes(size int, align uint) []byte {
	if align <= uint(unsafe.Alignof(uint64(0))) {
		words := make([]uint64, (size+7)/8)
		return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(words))), size)
	}

	raw := make([]byte, size+int(align)-1)
	base := uintptr(unsafe.Pointer(unsafe.SliceData(raw)))
	offset := int(memutils.AlignUp(base, uintptr(align)) - base)
	return raw[offset : offset+size : offset+size]
}
