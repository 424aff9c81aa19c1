package packlist

// ViewMut is an exclusive cursor over a run of records. References it returns may be used to
// modify the records in place. While a ViewMut or any reference from it is in use, no other view
// of the same bytes may be used. The zero ViewMut is empty.
type ViewMut[R any, K Viewer[R]] struct {
	data   []byte
	align  int
	header int
}

// HeadMut returns the first value in the view for modification, or false if the view holds no
// complete record
func (v *ViewMut[R, K]) HeadMut() (R, bool) {
	r, ok := readRecord(v.data, v.header)
	if !ok {
		var zero R
		return zero, false
	}

	var kind K
	return kind.Ref(payloadPointer(v.data, r), r.size), true
}

// TailMut returns an exclusive view of every record after the first, or false if the first
// record is the last. As with View.Tail, a record ending exactly at the end of the view is
// the last one.
func (v *ViewMut[R, K]) TailMut() (ViewMut[R, K], bool) {
	r, ok := readRecord(v.data, v.header)
	if !ok {
		return ViewMut[R, K]{}, false
	}

	return v.after(r)
}

func (v *ViewMut[R, K]) after(r record) (ViewMut[R, K], bool) {
	next, ok := nextRecord(r, v.header, len(v.data))
	if !ok {
		return ViewMut[R, K]{}, false
	}

	return ViewMut[R, K]{data: v.data[next:], align: v.align, header: v.header}, true
}

// HeadTailMut returns the first value and an exclusive view of the records after it, decoding
// the first record only once. ok is false if the view holds no complete record. When the first
// record is the last, tail is the zero ViewMut.
func (v *ViewMut[R, K]) HeadTailMut() (head R, tail ViewMut[R, K], ok bool) {
	r, ok := readRecord(v.data, v.header)
	if !ok {
		return head, tail, false
	}

	var kind K
	head = kind.Ref(payloadPointer(v.data, r), r.size)
	tail, _ = v.after(r)
	return head, tail, true
}

// View returns a shared view of the same bytes. The ViewMut must not be used while the View is.
func (v *ViewMut[R, K]) View() View[R, K] {
	return View[R, K]{data: v.data, align: v.align, header: v.header}
}

// IsEmpty returns true if the view has no bytes left
func (v *ViewMut[R, K]) IsEmpty() bool { return len(v.data) == 0 }

// Len returns the number of bytes in the view
func (v *ViewMut[R, K]) Len() int { return len(v.data) }

func (v *ViewMut[R, K]) String() string {
	return formatBytes("ViewMut", v.data)
}
