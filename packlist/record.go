package packlist

import (
	"encoding/binary"
	"unsafe"

	"github.com/vkngwrapper/packlist/memutils"
)

// lengthPrefixSize is the width of the native-endian byte count at the start of every record
const lengthPrefixSize = 8

// defaultAlign is the alignment of an empty list's buffer
const defaultAlign = int(unsafe.Sizeof(uintptr(0)))

// headerWidth returns the distance from the start of a record to its payload. Records also
// start at multiples of this width, so it stays fixed for the lifetime of a list even when
// the buffer's alignment grows.
func headerWidth(kindAlign int) int {
	return max(lengthPrefixSize, kindAlign)
}

type record struct {
	payload int
	size    int
}

func (r record) end() int {
	return r.payload + r.size
}

// readRecord decodes the record at the start of data. It reports false when data is too short
// to hold a length prefix or the payload the prefix announces.
func readRecord(data []byte, header int) (record, bool) {
	if len(data) < lengthPrefixSize {
		return record{}, false
	}

	size := binary.NativeEndian.Uint64(data[:lengthPrefixSize])
	if header > len(data) || size > uint64(len(data)-header) {
		return record{}, false
	}

	return record{payload: header, size: int(size)}, true
}

// nextRecord returns the offset of the record after r in a region of regionLen bytes, or false
// if r is the last one
func nextRecord(r record, header int, regionLen int) (int, bool) {
	next := memutils.AlignUp(r.end(), header)
	return next, next < regionLen
}

func payloadPointer(data []byte, r record) unsafe.Pointer {
	if r.size == 0 {
		return nil
	}
	return unsafe.Pointer(&data[r.payload])
}

// writeRecord writes a record at offset and returns the offset just past its payload. dst must
// have room for header+len(payload) bytes at offset.
func writeRecord(dst []byte, offset int, header int, payload []byte) int {
	binary.NativeEndian.PutUint64(dst[offset:offset+lengthPrefixSize], uint64(len(payload)))
	copy(dst[offset+header:], payload)
	return offset + header + len(payload)
}

// visitRecords calls visit with the start offset of every record in data, in order, and returns
// the offset just past the last payload. It stops early at the first malformed record.
func visitRecords(data []byte, header int, visit func(start int, r record) error) (int, error) {
	start, end := 0, 0
	for start < len(data) {
		r, ok := readRecord(data[start:], header)
		if !ok {
			break
		}
		if err := visit(start, r); err != nil {
			return end, err
		}
		end = start + r.end()

		next, ok := nextRecord(r, header, len(data)-start)
		if !ok {
			break
		}
		start += next
	}
	return end, nil
}
