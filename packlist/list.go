// Package packlist provides List, a growable buffer that packs values of varying byte size back
// to back, each behind its own length prefix, and View and ViewMut, zero-copy cursors that walk
// those records head first.
//
// A List has a single owner and is not safe for concurrent use. Any number of Views may read a
// buffer at once, but a ViewMut must be the only view of its bytes while it is in use, and no
// view may be used across a Push that grows the buffer.
package packlist

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/packlist/memutils"
	"github.com/vkngwrapper/packlist/memutils/heap"
)

// List owns a single block of memory holding a sequence of records written by Kind K. V is the
// type pushed into the list and R is the reference type K reads back out. The zero List is not
// usable: create lists with NewList or one of its variants.
type List[V, R any, K Kind[V, R]] struct {
	allocator heap.Allocator
	block     heap.Block
	length    int
	align     int
	header    int
}

func (l *List[V, R, K]) region() []byte {
	return l.block.Bytes()[:l.length:l.length]
}

// Push copies the current bytes of value into a new record at the end of the list. It panics
// if the allocator fails, or if value asks for an alignment that is not a power of two or is
// larger than its Kind allows.
func (l *List[V, R, K]) Push(value V) {
	if l.header == 0 {
		panic(errors.New("packlist: list was not created with NewList"))
	}

	var kind K
	data, size, align := kind.Raw(&value)
	if err := memutils.CheckPow2(align, "align"); err != nil {
		panic(errors.Wrap(err, "packlist: invalid value alignment"))
	}
	if align > l.header {
		panic(errors.Newf("packlist: value alignment %d exceeds the kind's limit of %d", align, l.header))
	}

	oldAlign := l.align
	l.align = max(l.align, align)
	aligned := memutils.AlignUp(l.length, l.header)
	required := aligned + l.header + size

	path := planGrowth(!l.block.IsNil(), oldAlign != l.align, required > l.block.Size())
	if err := l.grow(path, required); err != nil {
		panic(errors.Wrapf(err, "packlist: failed to grow list buffer along path %s", path))
	}

	var payload []byte
	if size > 0 {
		payload = unsafe.Slice((*byte)(data), size)
	}
	l.length = writeRecord(l.block.Bytes(), aligned, l.header, payload)

	memutils.DebugValidate(l)
}

func (l *List[V, R, K]) grow(path growthPath, required int) error {
	switch path {
	case growthNone:
		return nil
	case growthFresh:
		block, err := l.allocator.Allocate(2*required, uint(l.align))
		if err != nil {
			return err
		}
		l.block = block
	case growthInPlace:
		block, err := l.allocator.Reallocate(l.block, 2*required)
		if err != nil {
			return err
		}
		l.block = block
	case growthRealign:
		block, err := l.allocator.Allocate(2*required, uint(l.align))
		if err != nil {
			return err
		}
		copy(block.Bytes(), l.block.Bytes()[:l.length])

		old := l.block
		l.block = block
		if err := l.allocator.Free(old); err != nil {
			return errors.Wrap(err, "failed to free the block being realigned")
		}
	default:
		return errors.Newf("unknown growth path %d", path)
	}
	return nil
}

// Destroy releases the list's buffer back to its allocator and leaves the list empty. Calling it
// again, or on a list that never allocated, does nothing.
func (l *List[V, R, K]) Destroy() error {
	if l.block.IsNil() {
		return nil
	}

	block := l.block
	l.block = heap.Block{}
	l.length = 0
	l.align = defaultAlign

	return l.allocator.Free(block)
}

// View returns a shared view over every record in the list
func (l *List[V, R, K]) View() View[R, K] {
	return View[R, K]{data: l.region(), align: l.align, header: l.header}
}

// ViewMut returns an exclusive view over every record in the list
func (l *List[V, R, K]) ViewMut() ViewMut[R, K] {
	return ViewMut[R, K]{data: l.region(), align: l.align, header: l.header}
}

// Head returns the first value in the list, or false if the list is empty
func (l *List[V, R, K]) Head() (R, bool) {
	return l.View().Head()
}

// Tail returns a view of every record after the first, or false if there are none
func (l *List[V, R, K]) Tail() (View[R, K], bool) {
	return l.View().Tail()
}

// HeadMut returns the first value in the list for modification
func (l *List[V, R, K]) HeadMut() (R, bool) {
	view := l.ViewMut()
	return view.HeadMut()
}

// TailMut returns an exclusive view of every record after the first
func (l *List[V, R, K]) TailMut() (ViewMut[R, K], bool) {
	view := l.ViewMut()
	return view.TailMut()
}

// HeadTailMut returns the first value and an exclusive view of the records after it.
// See ViewMut.HeadTailMut.
func (l *List[V, R, K]) HeadTailMut() (R, ViewMut[R, K], bool) {
	view := l.ViewMut()
	return view.HeadTailMut()
}

// IsEmpty returns true if no records have been pushed
func (l *List[V, R, K]) IsEmpty() bool { return l.length == 0 }

// Len returns the number of bytes in use, including length prefixes and padding
func (l *List[V, R, K]) Len() int { return l.length }

// Cap returns the size in bytes of the list's current block
func (l *List[V, R, K]) Cap() int { return l.block.Size() }

// Align returns the largest alignment of any value pushed so far, or the pointer width if
// that is larger. The list's block is always allocated at this alignment.
func (l *List[V, R, K]) Align() int { return l.align }

// Bytes returns the list's raw records. It is only valid until the next Push.
func (l *List[V, R, K]) Bytes() []byte { return l.region() }

func (l *List[V, R, K]) String() string {
	return formatBytes("List", l.region())
}
