package packlist_test

import (
	"encoding/binary"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/packlist/packlist"
)

// panicError runs fn, requires it to panic with an error, and returns that error
func panicError(t *testing.T, fn func()) (err error) {
	t.Helper()
	defer func() {
		recovered := recover()
		require.NotNil(t, recovered, "expected a panic")

		var ok bool
		err, ok = recovered.(error)
		require.True(t, ok, "panicked with %T, not an error", recovered)
	}()

	fn()
	return nil
}

func collect[R any, K packlist.Viewer[R]](view packlist.View[R, K]) []R {
	var values []R
	for {
		head, ok := view.Head()
		if !ok {
			return values
		}
		values = append(values, head)

		view, ok = view.Tail()
		if !ok {
			return values
		}
	}
}

func TestSliceListHeadTail(t *testing.T) {
	list := packlist.NewSliceList[uint16]()
	list.Push([]uint16{0, 1})
	list.Push([]uint16{2, 3})

	head, ok := list.Head()
	require.True(t, ok)
	require.Equal(t, []uint16{0, 1}, head)

	tail, ok := list.Tail()
	require.True(t, ok)
	head, ok = tail.Head()
	require.True(t, ok)
	require.Equal(t, []uint16{2, 3}, head)

	_, ok = tail.Tail()
	require.False(t, ok)

	require.NoError(t, list.Validate())
}

func TestTextListHeadTail(t *testing.T) {
	list := packlist.NewTextList()
	list.Push("testing")
	list.Push("testing 2")

	head, ok := list.Head()
	require.True(t, ok)
	require.Equal(t, "testing", head)

	tail, ok := list.Tail()
	require.True(t, ok)
	head, ok = tail.Head()
	require.True(t, ok)
	require.Equal(t, "testing 2", head)

	require.NoError(t, list.Validate())
}

func TestEmptyList(t *testing.T) {
	list := packlist.NewTextList()

	require.True(t, list.IsEmpty())
	require.Equal(t, 0, list.Len())
	require.Equal(t, 0, list.Cap())
	require.Equal(t, int(unsafe.Sizeof(uintptr(0))), list.Align())

	_, ok := list.Head()
	require.False(t, ok)

	tail, ok := list.Tail()
	require.False(t, ok)
	_, ok = tail.Head()
	require.False(t, ok)

	require.Equal(t, "List(&[ ])", list.String())
	require.NoError(t, list.Validate())
}

func TestSingleElementTail(t *testing.T) {
	for _, value := range []string{"", "a", "exactly8", "more than eight bytes"} {
		list := packlist.NewTextList()
		list.Push(value)

		head, ok := list.Head()
		require.True(t, ok)
		require.Equal(t, value, head)

		tail, ok := list.Tail()
		require.False(t, ok, "value %q", value)
		_, ok = tail.Head()
		require.False(t, ok, "value %q", value)
	}
}

func TestTailAtExactBoundary(t *testing.T) {
	list := packlist.NewValueList[uint64]()
	list.Push(7)
	require.Equal(t, 16, list.Len())

	_, ok := list.Tail()
	require.False(t, ok)

	_, ok = list.TailMut()
	require.False(t, ok)

	head, tail, ok := list.HeadTailMut()
	require.True(t, ok)
	require.Equal(t, uint64(7), *head)
	require.True(t, tail.IsEmpty())
	_, ok = tail.HeadMut()
	require.False(t, ok)
}

func TestZeroListPanics(t *testing.T) {
	var list packlist.List[string, string, packlist.Text]

	err := panicError(t, func() { list.Push("value") })
	require.Contains(t, err.Error(), "NewList")
	require.True(t, list.IsEmpty())
}

func TestTraversalCount(t *testing.T) {
	list := packlist.NewSliceList[uint32]()
	const count = 25
	for i := 0; i < count; i++ {
		list.Push(make([]uint32, i%4))
	}

	view := list.View()
	heads := 0
	for {
		_, ok := view.Head()
		require.True(t, ok)
		heads++

		view, ok = view.Tail()
		if !ok {
			break
		}
	}
	require.Equal(t, count, heads)
}

func TestPushCopiesValue(t *testing.T) {
	list := packlist.NewSliceList[byte]()
	source := []byte("original")
	list.Push(source)
	copy(source, "mutated!")

	head, ok := list.Head()
	require.True(t, ok)
	require.Equal(t, []byte("original"), head)
}

func TestRoundTripRandomSlices(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	list := packlist.NewSliceList[uint32]()

	var pushed [][]uint32
	for i := 0; i < 500; i++ {
		value := make([]uint32, rng.Intn(20))
		for j := range value {
			value[j] = rng.Uint32()
		}
		pushed = append(pushed, value)
		list.Push(value)
	}

	values := collect(list.View())
	require.Len(t, values, len(pushed))
	for i := range pushed {
		require.Equal(t, pushed[i], values[i], "record %d", i)
	}
	require.NoError(t, list.Validate())
}

func TestGrowthPreservesRecords(t *testing.T) {
	list := packlist.NewTextList()

	var expected []string
	for i := 0; i < 300; i++ {
		before := append([]byte{}, list.Bytes()...)
		capBefore := list.Cap()

		value := strings.Repeat("x", i%17) + strconv.Itoa(i)
		list.Push(value)
		expected = append(expected, value)

		require.Equal(t, before, list.Bytes()[:len(before)], "push %d moved existing bytes", i)
		require.GreaterOrEqual(t, list.Cap(), list.Len())
		if list.Cap() != capBefore {
			require.NoError(t, list.Validate())
			require.Equal(t, expected, collect(list.View()))
		}
	}

	require.Equal(t, expected, collect(list.View()))
}

type point struct {
	X, Y int32
	Z    float64
}

func TestValueListByteIdentity(t *testing.T) {
	list := packlist.NewValueList[point]()

	source := point{X: 1, Y: -2, Z: 3.5}
	list.Push(source)
	list.Push(point{X: 4})
	source.X = 100

	head, ok := list.Head()
	require.True(t, ok)
	require.Equal(t, point{X: 1, Y: -2, Z: 3.5}, *head)
	require.Zero(t, uintptr(unsafe.Pointer(head))%unsafe.Alignof(point{}))

	tail, ok := list.Tail()
	require.True(t, ok)
	next, ok := tail.Head()
	require.True(t, ok)
	require.Equal(t, point{X: 4}, *next)
}

func TestValueListHeadMut(t *testing.T) {
	list := packlist.NewValueList[uint64]()
	list.Push(1)
	list.Push(2)

	head, ok := list.HeadMut()
	require.True(t, ok)
	*head = 10

	tail, ok := list.TailMut()
	require.True(t, ok)
	next, ok := tail.HeadMut()
	require.True(t, ok)
	*next = 20

	values := collect(list.View())
	require.Len(t, values, 2)
	require.Equal(t, uint64(10), *values[0])
	require.Equal(t, uint64(20), *values[1])
}

func TestHeadTailMut(t *testing.T) {
	list := packlist.NewSliceList[uint32]()
	list.Push([]uint32{1, 2})
	list.Push([]uint32{3})

	head, tail, ok := list.HeadTailMut()
	require.True(t, ok)
	require.False(t, tail.IsEmpty())
	head[1] = 22

	last, rest, ok := tail.HeadTailMut()
	require.True(t, ok)
	require.True(t, rest.IsEmpty())
	last[0] = 33

	_, _, ok = rest.HeadTailMut()
	require.False(t, ok)

	require.Equal(t, [][]uint32{{1, 22}, {33}}, collect(list.View()))
}

func TestAlignmentInvariant(t *testing.T) {
	list := packlist.NewValueList[uint64]()
	for i := uint64(0); i < 100; i++ {
		list.Push(i)
		require.Equal(t, max(int(unsafe.Alignof(uint64(0))), int(unsafe.Sizeof(uintptr(0)))), list.Align())
		require.Zero(t, uintptr(unsafe.Pointer(unsafe.SliceData(list.Bytes())))%uintptr(list.Align()))
	}

	for i, value := range collect(list.View()) {
		require.Equal(t, uint64(i), *value)
		require.Zero(t, uintptr(unsafe.Pointer(value))%unsafe.Alignof(uint64(0)))
	}
	require.NoError(t, list.Validate())
}

func TestAlignmentIncreasePreservesRecords(t *testing.T) {
	list := packlist.NewBlobList()

	first := make([]byte, 8)
	binary.NativeEndian.PutUint64(first, 0xdeadbeef)
	list.Push(packlist.AlignedBytes{Data: first, Align: 8})
	require.Equal(t, max(8, int(unsafe.Sizeof(uintptr(0)))), list.Align())

	original := list.View()

	wide := make([]byte, 32)
	for i := range wide {
		wide[i] = byte(i)
	}
	list.Push(packlist.AlignedBytes{Data: wide, Align: 64})
	require.Equal(t, 64, list.Align())

	head, ok := original.Head()
	require.True(t, ok)
	require.Equal(t, first, head)

	values := collect(list.View())
	require.Equal(t, [][]byte{first, wide}, values)
	require.Zero(t, uintptr(unsafe.Pointer(unsafe.SliceData(values[1])))%64)
	require.Zero(t, uintptr(unsafe.Pointer(unsafe.SliceData(list.Bytes())))%64)
	require.NoError(t, list.Validate())

	list.Push(packlist.AlignedBytes{Data: []byte{9}})
	require.Equal(t, [][]byte{first, wide, {9}}, collect(list.View()))
}

func TestBlobRejectsBadAlignment(t *testing.T) {
	list := packlist.NewBlobList()

	err := panicError(t, func() {
		list.Push(packlist.AlignedBytes{Data: []byte{1}, Align: 3})
	})
	require.Contains(t, err.Error(), "align is 3")
	require.Panics(t, func() {
		list.Push(packlist.AlignedBytes{Data: []byte{1}, Align: 2 * packlist.MaxBlobAlign})
	})
	require.True(t, list.IsEmpty())
}

func TestBlobRecordFootprint(t *testing.T) {
	list := packlist.NewBlobList()

	list.Push(packlist.AlignedBytes{Data: []byte{1}, Align: 1})
	require.Equal(t, packlist.MaxBlobAlign+1, list.Len())

	// the second record starts at the next multiple of MaxBlobAlign
	list.Push(packlist.AlignedBytes{Data: []byte{2}, Align: 1})
	require.Equal(t, 3*packlist.MaxBlobAlign+1, list.Len())
	require.Equal(t, 8, list.Align())

	require.Equal(t, [][]byte{{1}, {2}}, collect(list.View()))
	require.NoError(t, list.Validate())
}

func TestListString(t *testing.T) {
	list := packlist.NewSliceList[uint8]()
	list.Push([]uint8{1, 2})

	prefix := make([]byte, 8)
	binary.NativeEndian.PutUint64(prefix, 2)

	var expected strings.Builder
	expected.WriteString("List(&[ ")
	for _, b := range append(prefix, 1, 2) {
		fmt.Fprintf(&expected, "%d ", b)
	}
	expected.WriteString("])")

	require.Equal(t, expected.String(), list.String())
	require.Equal(t, strings.Replace(expected.String(), "List", "View", 1), list.View().String())
}

func TestViewOf(t *testing.T) {
	list := packlist.NewPathList()
	list.Push("/usr/local/bin")
	list.Push("relative/dir/../file")

	view := packlist.ViewOf[string, packlist.Path](list.Bytes(), list.Align())
	require.Equal(t, []string{"/usr/local/bin", "relative/dir/../file"}, collect(view))
	require.Equal(t, list.Align(), view.Align())
	require.Equal(t, list.Len(), view.Len())
}

func TestZeroView(t *testing.T) {
	var view packlist.View[string, packlist.Text]
	_, ok := view.Head()
	require.False(t, ok)
	_, ok = view.Tail()
	require.False(t, ok)
	require.True(t, view.IsEmpty())

	var viewMut packlist.ViewMut[string, packlist.Text]
	_, ok = viewMut.HeadMut()
	require.False(t, ok)
	_, ok = viewMut.TailMut()
	require.False(t, ok)
}

func TestTruncatedViewIsAbsent(t *testing.T) {
	list := packlist.NewTextList()
	list.Push("truncate me")

	data := list.Bytes()
	for _, cut := range []int{0, 4, 7, 8, len(data) - 1} {
		view := packlist.ViewOf[string, packlist.Text](data[:cut], list.Align())
		_, ok := view.Head()
		require.False(t, ok, "cut at %d", cut)
		_, ok = view.Tail()
		require.False(t, ok, "cut at %d", cut)
	}
}
