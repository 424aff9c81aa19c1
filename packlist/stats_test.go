package packlist_test

import (
	"testing"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/packlist/memutils"
	"github.com/vkngwrapper/packlist/packlist"
)

func TestListDetailedStatistics(t *testing.T) {
	require64Bit(t)

	list := packlist.NewSliceList[uint16]()

	var stats memutils.DetailedStatistics
	stats.Clear()
	list.AddDetailedStatistics(&stats)
	require.Equal(t, 0, stats.BlockCount)

	list.Push([]uint16{0, 1})
	list.Push([]uint16{2, 3})

	stats.Clear()
	list.AddDetailedStatistics(&stats)
	require.Equal(t, memutils.DetailedStatistics{
		Statistics: memutils.Statistics{
			BlockCount:      1,
			BlockBytes:      56,
			AllocationCount: 2,
			AllocationBytes: 8,
		},
		UnusedRangeCount:   3,
		AllocationSizeMin:  4,
		AllocationSizeMax:  4,
		UnusedRangeSizeMin: 8,
		UnusedRangeSizeMax: 28,
	}, stats)
}

func TestListBuildStatsString(t *testing.T) {
	require64Bit(t)

	list := packlist.NewSliceList[uint16]()
	list.Push([]uint16{0, 1})
	list.Push([]uint16{2, 3})

	writer := jwriter.NewWriter()
	list.BuildStatsString(&writer)
	require.NoError(t, writer.Error())
	require.JSONEq(t, `{
		"Align": 8,
		"HeaderWidth": 8,
		"Length": 28,
		"Capacity": 56,
		"Records": [
			{"Offset": 0, "PayloadOffset": 8, "Size": 4},
			{"Offset": 16, "PayloadOffset": 24, "Size": 4}
		]
	}`, string(writer.Bytes()))
}
