package packlist

import (
	"strconv"
	"strings"
)

// View is a shared, read-only cursor over a run of records. It borrows its bytes from a List or
// from another view and never allocates. The zero View is empty.
type View[R any, K Viewer[R]] struct {
	data   []byte
	align  int
	header int
}

// ViewOf returns a View over data, which must start at a record boundary of a buffer written
// by a List whose Kind reads with K, such as the result of List.Bytes. align is that list's Align.
// Nothing about data is checked: a buffer with a malformed length prefix or written by a
// different Kind produces garbage references.
func ViewOf[R any, K Viewer[R]](data []byte, align int) View[R, K] {
	var kind K
	return View[R, K]{
		data:   data[:len(data):len(data)],
		align:  align,
		header: headerWidth(kind.Align()),
	}
}

// Head returns the first value in the view, or false if the view holds no complete record
func (v View[R, K]) Head() (R, bool) {
	r, ok := readRecord(v.data, v.header)
	if !ok {
		var zero R
		return zero, false
	}

	var kind K
	return kind.Ref(payloadPointer(v.data, r), r.size), true
}

// Tail returns a view of every record after the first, or false if the first record is the last.
// A record that ends exactly at the end of the view is the last one: Tail never returns an
// empty view with ok set.
func (v View[R, K]) Tail() (View[R, K], bool) {
	r, ok := readRecord(v.data, v.header)
	if !ok {
		return View[R, K]{}, false
	}

	next, ok := nextRecord(r, v.header, len(v.data))
	if !ok {
		return View[R, K]{}, false
	}

	return View[R, K]{data: v.data[next:], align: v.align, header: v.header}, true
}

// IsEmpty returns true if the view has no bytes left
func (v View[R, K]) IsEmpty() bool { return len(v.data) == 0 }

// Len returns the number of bytes in the view
func (v View[R, K]) Len() int { return len(v.data) }

// Align returns the alignment of the buffer the view was taken from
func (v View[R, K]) Align() int { return v.align }

// Bytes returns the raw bytes under the view
func (v View[R, K]) Bytes() []byte { return v.data }

func (v View[R, K]) String() string {
	return formatBytes("View", v.data)
}

// formatBytes lists every byte in data as a decimal number. The output is meant for debugging
// and is not a stable format.
func formatBytes(name string, data []byte) string {
	var builder strings.Builder
	builder.WriteString(name)
	builder.WriteString("(&[ ")
	for _, b := range data {
		builder.WriteString(strconv.Itoa(int(b)))
		builder.WriteByte(' ')
	}
	builder.WriteString("])")
	return builder.String()
}
