package packlist

import (
	"fmt"
	"reflect"
	"unsafe"
)

// sliceHeader mirrors the runtime representation of a slice
type sliceHeader struct {
	Data unsafe.Pointer
	Len  int
	Cap  int
}

// assembleRef builds an R that points at data. Pointer-shaped R gets data itself; string- and
// slice-shaped R also get count as their length. Any other shape panics.
func assembleRef[R any](data unsafe.Pointer, count int) R {
	var ref R
	switch kind := reflect.TypeOf((*R)(nil)).Elem().Kind(); kind {
	case reflect.Pointer, reflect.UnsafePointer:
		*(*unsafe.Pointer)(unsafe.Pointer(&ref)) = data
	case reflect.String:
		*(*string)(unsafe.Pointer(&ref)) = unsafe.String((*byte)(data), count)
	case reflect.Slice:
		*(*sliceHeader)(unsafe.Pointer(&ref)) = sliceHeader{Data: data, Len: count, Cap: count}
	default:
		panic(fmt.Sprintf("packlist: cannot assemble a reference of kind %s", kind))
	}
	return ref
}

func unsafeHead[R any](data []byte, header int, n int) (R, bool) {
	if n <= 0 {
		panic(fmt.Sprintf("packlist: unsafe divisor must be positive but was %d", n))
	}

	r, ok := readRecord(data, header)
	if !ok {
		var zero R
		return zero, false
	}

	return assembleRef[R](payloadPointer(data, r), r.size/n), true
}

// HeadUnsafe returns the first value in the view without going through K, by pointing an R at
// the payload with a length of payload bytes / n. It works for kinds such as Opaque that cannot
// construct references themselves.
//
// The caller must guarantee that R is the pointer, string or slice type whose length is counted
// in units of n bytes, and that the record was written from a value with that exact layout.
// Only the shape of R is checked.
func (v View[R, K]) HeadUnsafe(n int) (R, bool) {
	return unsafeHead[R](v.data, v.header, n)
}

// HeadMutUnsafe is HeadUnsafe for exclusive views. See View.HeadUnsafe for the caller's
// obligations.
func (v *ViewMut[R, K]) HeadMutUnsafe(n int) (R, bool) {
	return unsafeHead[R](v.data, v.header, n)
}

// HeadTailMutUnsafe is HeadTailMut built on HeadMutUnsafe. See View.HeadUnsafe for the caller's
// obligations.
func (v *ViewMut[R, K]) HeadTailMutUnsafe(n int) (head R, tail ViewMut[R, K], ok bool) {
	head, ok = unsafeHead[R](v.data, v.header, n)
	if !ok {
		return head, tail, false
	}

	r, _ := readRecord(v.data, v.header)
	tail, _ = v.after(r)
	return head, tail, true
}

// HeadUnsafe returns the first value in the list. See View.HeadUnsafe.
func (l *List[V, R, K]) HeadUnsafe(n int) (R, bool) {
	return l.View().HeadUnsafe(n)
}
