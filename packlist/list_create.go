package packlist

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/packlist/memutils/heap"
)

// CreateOptions contains optional settings when creating a List
type CreateOptions struct {
	// Allocator supplies the list's buffer. If nil, a heap.RuntimeAllocator is used and the
	// buffer is left to the garbage collector when the list is dropped without Destroy.
	Allocator heap.Allocator
}

// NewList creates an empty list of kind K. It panics if K stores values that are not
// byte-copyable.
func NewList[V, R any, K Kind[V, R]](options CreateOptions) *List[V, R, K] {
	var kind K
	if checked, ok := any(kind).(byteCopyableKind); ok {
		if err := checked.checkByteCopyable(); err != nil {
			panic(errors.Wrap(err, "packlist: cannot create list"))
		}
	}

	allocator := options.Allocator
	if allocator == nil {
		allocator = heap.RuntimeAllocator{}
	}

	return &List[V, R, K]{
		allocator: allocator,
		align:     defaultAlign,
		header:    headerWidth(kind.Align()),
	}
}

// NewUnsafeList creates an empty list that accepts any V. Records can only be read back with
// HeadUnsafe and its variants, and the caller is responsible for V holding no Go pointers
// that the list would hide from the garbage collector.
func NewUnsafeList[V, R any](options CreateOptions) *List[V, R, Opaque[V, R]] {
	return NewList[V, R, Opaque[V, R]](options)
}

// NewValueList creates an empty list of fixed-size T values
func NewValueList[T any]() *List[T, *T, Value[T]] {
	return NewList[T, *T, Value[T]](CreateOptions{})
}

// NewSliceList creates an empty list of []E values
func NewSliceList[E any]() *List[[]E, []E, Slice[E]] {
	return NewList[[]E, []E, Slice[E]](CreateOptions{})
}

// NewTextList creates an empty list of UTF-8 strings
func NewTextList() *List[string, string, Text] {
	return NewList[string, string, Text](CreateOptions{})
}

// NewOSTextList creates an empty list of platform-native strings
func NewOSTextList() *List[string, string, OSText] {
	return NewList[string, string, OSText](CreateOptions{})
}

// NewPathList creates an empty list of filesystem paths
func NewPathList() *List[string, string, Path] {
	return NewList[string, string, Path](CreateOptions{})
}

// NewCStrList creates an empty list of nul-terminated byte strings
func NewCStrList() *List[[]byte, CString, CStr] {
	return NewList[[]byte, CString, CStr](CreateOptions{})
}

// NewBlobList creates an empty list of individually aligned byte payloads. Every record is
// laid out for the largest alignment Blob allows, so each one costs at least 128 bytes
// (prefix, padding and payload rounded up to MaxBlobAlign) whatever its own alignment.
func NewBlobList() *List[AlignedBytes, []byte, Blob] {
	return NewList[AlignedBytes, []byte, Blob](CreateOptions{})
}
