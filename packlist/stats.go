package packlist

import (
	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/packlist/memutils"
)

// Validate walks every record and checks the list's layout invariants. When the list is working
// correctly it is not possible for this method to return an error. It is run after every Push
// when built with the debug_mem_utils tag.
func (l *List[V, R, K]) Validate() error {
	if err := memutils.CheckPow2(l.align, "align"); err != nil {
		return err
	}
	if l.align > l.header {
		return errors.Newf("buffer alignment %d exceeds header width %d", l.align, l.header)
	}
	if l.length > l.block.Size() {
		return errors.Newf("length %d exceeds capacity %d", l.length, l.block.Size())
	}

	if l.block.IsNil() {
		if l.length != 0 {
			return errors.Newf("list has no block but a length of %d", l.length)
		}
		return nil
	}

	if int(l.block.Align()) != l.align {
		return errors.Newf("block alignment %d does not match buffer alignment %d", l.block.Align(), l.align)
	}
	if err := memutils.CheckAligned(uintptr(l.block.Pointer()), uintptr(l.align), "block address"); err != nil {
		return err
	}

	end, err := visitRecords(l.region(), l.header, func(start int, r record) error {
		return memutils.CheckAligned(start, l.header, "record offset")
	})
	if err != nil {
		return err
	}
	if end != l.length {
		return errors.Newf("records end at %d but the list length is %d", end, l.length)
	}

	return nil
}

// AddDetailedStatistics sums the list's footprint into stats. The list's block counts as one
// block and every record payload as one allocation. The bytes in front of each payload (padding
// and length prefix) count as one unused range, as does any spare capacity at the end.
func (l *List[V, R, K]) AddDetailedStatistics(stats *memutils.DetailedStatistics) {
	if l.block.IsNil() {
		return
	}

	stats.AddBlock(l.block.Size())

	previousEnd := 0
	_, _ = visitRecords(l.region(), l.header, func(start int, r record) error {
		stats.AddAllocation(r.size)
		stats.AddUnusedRange(start + r.payload - previousEnd)
		previousEnd = start + r.end()
		return nil
	})

	if spare := l.block.Size() - l.length; spare > 0 {
		stats.AddUnusedRange(spare)
	}
}

// BuildStatsString writes a json object describing the list's buffer and each of its records
func (l *List[V, R, K]) BuildStatsString(writer *jwriter.Writer) {
	obj := writer.Object()
	defer obj.End()

	obj.Name("Align").Int(l.align)
	obj.Name("HeaderWidth").Int(l.header)
	obj.Name("Length").Int(l.length)
	obj.Name("Capacity").Int(l.block.Size())

	records := obj.Name("Records").Array()
	defer records.End()

	_, _ = visitRecords(l.region(), l.header, func(start int, r record) error {
		recordObj := records.Object()
		recordObj.Name("Offset").Int(start)
		recordObj.Name("PayloadOffset").Int(start + r.payload)
		recordObj.Name("Size").Int(r.size)
		recordObj.End()
		return nil
	})
}

var _ memutils.Validatable = (*List[uint64, *uint64, Value[uint64]])(nil)

