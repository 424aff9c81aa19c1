package packlist

import (
	"reflect"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/packlist/memutils"
)

// Viewer reconstructs a typed reference from a run of bytes inside a list's buffer. There is no
// type tag in the buffer: the Viewer chosen at the call site is trusted to match the Kind that
// wrote the record.
type Viewer[R any] interface {
	// Ref returns a reference over the size bytes at data. data is nil when size is 0.
	Ref(data unsafe.Pointer, size int) R
	// Align returns the largest alignment any value of this kind may require
	Align() int
}

// Kind extends Viewer with the write side: where the bytes of one value live, how many there are,
// and what alignment they need.
type Kind[V, R any] interface {
	Viewer[R]
	Raw(value *V) (data unsafe.Pointer, size int, align int)
}

// byteCopyableKind is implemented by kinds whose element type has to be checked before use
type byteCopyableKind interface {
	checkByteCopyable() error
}

// Value stores fixed-size values of T and hands back pointers into the buffer. T must not
// contain Go pointers.
type Value[T any] struct{}

func (Value[T]) Ref(data unsafe.Pointer, size int) *T {
	var value T
	memutils.DebugCheckEqual(size, int(unsafe.Sizeof(value)), "value size")
	if data == nil {
		return new(T)
	}
	return (*T)(data)
}

func (Value[T]) Raw(value *T) (unsafe.Pointer, int, int) {
	return unsafe.Pointer(value), int(unsafe.Sizeof(*value)), int(unsafe.Alignof(*value))
}

func (Value[T]) Align() int {
	var value T
	return int(unsafe.Alignof(value))
}

func (Value[T]) checkByteCopyable() error {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if !memutils.IsByteCopyable(t) {
		return errors.Newf("%s is not byte-copyable", t)
	}
	return nil
}

// Slice stores variable-length slices of E. E must not contain Go pointers and must have a
// non-zero size.
type Slice[E any] struct{}

func (Slice[E]) Ref(data unsafe.Pointer, size int) []E {
	var elem E
	memutils.DebugCheckMultiple(size, int(unsafe.Sizeof(elem)), "slice payload size")
	if data == nil {
		return []E{}
	}
	return unsafe.Slice((*E)(data), size/int(unsafe.Sizeof(elem)))
}

func (Slice[E]) Raw(value *[]E) (unsafe.Pointer, int, int) {
	var elem E
	return unsafe.Pointer(unsafe.SliceData(*value)), len(*value) * int(unsafe.Sizeof(elem)), int(unsafe.Alignof(elem))
}

func (Slice[E]) Align() int {
	var elem E
	return int(unsafe.Alignof(elem))
}

func (Slice[E]) checkByteCopyable() error {
	t := reflect.TypeOf((*E)(nil)).Elem()
	if t.Size() == 0 {
		return errors.Newf("slice element %s has zero size", t)
	}
	if !memutils.IsByteCopyable(t) {
		return errors.Newf("slice element %s is not byte-copyable", t)
	}
	return nil
}

func stringRef(data unsafe.Pointer, size int) string {
	if data == nil {
		return ""
	}
	return unsafe.String((*byte)(data), size)
}

func stringRaw(value *string) (unsafe.Pointer, int, int) {
	return unsafe.Pointer(unsafe.StringData(*value)), len(*value), 1
}

// Text stores UTF-8 strings. The bytes are not re-validated when read back.
type Text struct{}

func (Text) Ref(data unsafe.Pointer, size int) string { return stringRef(data, size) }

func (Text) Raw(value *string) (unsafe.Pointer, int, int) { return stringRaw(value) }

func (Text) Align() int { return 1 }

// OSText stores strings in the platform's native encoding, such as command line arguments,
// environment variables or file names, which are not guaranteed to be valid UTF-8.
type OSText struct{}

func (OSText) Ref(data unsafe.Pointer, size int) string { return stringRef(data, size) }

func (OSText) Raw(value *string) (unsafe.Pointer, int, int) { return stringRaw(value) }

func (OSText) Align() int { return 1 }

// Path stores filesystem paths byte for byte. Paths are not cleaned on the way in or out.
type Path struct{}

func (Path) Ref(data unsafe.Pointer, size int) string { return stringRef(data, size) }

func (Path) Raw(value *string) (unsafe.Pointer, int, int) { return stringRaw(value) }

func (Path) Align() int { return 1 }

// CString is a byte string whose final byte is a nul terminator
type CString []byte

// Bytes returns the string without its terminator
func (s CString) Bytes() []byte {
	if len(s) == 0 {
		return s
	}
	return s[:len(s)-1]
}

func (s CString) String() string {
	return string(s.Bytes())
}

// MakeCString copies s into a new nul-terminated byte string
func MakeCString(s string) []byte {
	terminated := make([]byte, len(s)+1)
	copy(terminated, s)
	return terminated
}

// CStr stores nul-terminated byte strings. Pushed values must already end in a nul byte; the
// terminator is stored with the string and is not searched for when read back.
type CStr struct{}

func (CStr) Ref(data unsafe.Pointer, size int) CString {
	if data == nil {
		return CString{}
	}
	return CString(unsafe.Slice((*byte)(data), size))
}

func (CStr) Raw(value *[]byte) (unsafe.Pointer, int, int) {
	return unsafe.Pointer(unsafe.SliceData(*value)), len(*value), 1
}

func (CStr) Align() int { return 1 }

// MaxBlobAlign is the largest alignment an AlignedBytes value may ask for
const MaxBlobAlign = 64

// AlignedBytes is a byte payload that must be stored at a multiple of Align, such as data
// handed to SIMD routines or kept on its own cache line. An Align of 0 means 1.
type AlignedBytes struct {
	Data  []byte
	Align int
}

// Blob stores AlignedBytes. It is the one kind whose alignment varies from value to value,
// so a push can raise the alignment of a buffer that already holds records. Records keep the
// same layout whatever the buffer's alignment: each one starts at a multiple of MaxBlobAlign
// and its payload sits MaxBlobAlign bytes after that, so a record takes at least 128 bytes
// even at Align 1.
type Blob struct{}

func (Blob) Ref(data unsafe.Pointer, size int) []byte {
	if data == nil {
		return []byte{}
	}
	return unsafe.Slice((*byte)(data), size)
}

func (Blob) Raw(value *AlignedBytes) (unsafe.Pointer, int, int) {
	align := value.Align
	if align == 0 {
		align = 1
	}
	return unsafe.Pointer(unsafe.SliceData(value.Data)), len(value.Data), align
}

func (Blob) Align() int { return MaxBlobAlign }

// Opaque stores any V by its raw representation: the backing array of a slice, the bytes of a
// string, or the value itself for everything else. It has no way to rebuild a reference, so Ref
// panics and records can only be read back through the HeadUnsafe family.
type Opaque[V, R any] struct{}

func (Opaque[V, R]) Ref(data unsafe.Pointer, size int) R {
	panic("packlist: Opaque kinds cannot construct references; read them with HeadUnsafe")
}

func (Opaque[V, R]) Raw(value *V) (unsafe.Pointer, int, int) {
	v := reflect.ValueOf(value).Elem()
	switch v.Kind() {
	case reflect.Slice:
		elem := v.Type().Elem()
		return v.UnsafePointer(), v.Len() * int(elem.Size()), elem.Align()
	case reflect.String:
		s := v.String()
		return unsafe.Pointer(unsafe.StringData(s)), len(s), 1
	default:
		return unsafe.Pointer(value), int(v.Type().Size()), v.Type().Align()
	}
}

func (Opaque[V, R]) Align() int {
	t := reflect.TypeOf((*V)(nil)).Elem()
	switch t.Kind() {
	case reflect.Slice:
		return t.Elem().Align()
	case reflect.String:
		return 1
	default:
		return t.Align()
	}
}
