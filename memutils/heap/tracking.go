package heap

import (
	"context"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/packlist/internal/utils"
	"github.com/vkngwrapper/packlist/memutils"
	"golang.org/x/exp/slices"
	"golang.org/x/exp/slog"
)

type trackedBlock struct {
	id    int
	size  int
	align uint
	data  unsafe.Pointer
}

// TrackingAllocator serves blocks from the Go heap and keeps a record of every live block. It
// enforces an optional byte limit, detects double frees, writes corruption-detection margins
// when built with the debug_mem_utils tag, and reports anything not freed by Destroy.
type TrackingAllocator struct {
	logger    *slog.Logger
	mutex     utils.OptionalRWMutex
	byteLimit int

	live      *swiss.Map[uintptr, trackedBlock]
	nextID    int
	liveBytes int
	peakBytes int
}

var _ Allocator = &TrackingAllocator{}

func (a *TrackingAllocator) reserve(size int) error {
	if a.byteLimit > 0 && a.liveBytes+size > a.byteLimit {
		return errors.Wrapf(ErrOutOfMemory, "requested %d bytes with %d of %d bytes in use", size, a.liveBytes, a.byteLimit)
	}

	a.liveBytes += size
	if a.liveBytes > a.peakBytes {
		a.peakBytes = a.liveBytes
	}
	return nil
}

func (a *TrackingAllocator) newBlock(size int, align uint) (Block, trackedBlock) {
	raw := alignedBytes(size+memutils.DebugMargin, align)
	block := Block{data: raw[:size:size], align: align}
	memutils.WriteMagicValue(block.Pointer(), size)

	tracked := trackedBlock{
		id:    a.nextID,
		size:  size,
		align: align,
		data:  block.Pointer(),
	}
	a.nextID++
	a.live.Put(block.address(), tracked)

	return block, tracked
}

func (a *TrackingAllocator) lookup(block Block) (trackedBlock, error) {
	if block.IsNil() {
		return trackedBlock{}, errors.Wrap(ErrUnknownBlock, "nil block")
	}

	tracked, ok := a.live.Get(block.address())
	if !ok || tracked.size != block.Size() {
		return trackedBlock{}, errors.Wrapf(ErrUnknownBlock, "block at %#x of %d bytes", block.address(), block.Size())
	}

	if !memutils.ValidateMagicValue(tracked.data, tracked.size) {
		a.logger.LogAttrs(context.Background(), slog.LevelError, "[CORRUPTED MEMORY] debug margin overwritten",
			slog.Int("id", tracked.id),
			slog.Int("size", tracked.size),
		)
		return trackedBlock{}, errors.Wrapf(ErrMemoryCorrupted, "block %d", tracked.id)
	}

	return tracked, nil
}

func (a *TrackingAllocator) Allocate(size int, align uint) (Block, error) {
	if err := validateRequest(size, align); err != nil {
		return Block{}, err
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	if err := a.reserve(size); err != nil {
		return Block{}, err
	}

	block, tracked := a.newBlock(size, align)
	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "allocated block",
		slog.Int("id", tracked.id),
		slog.Int("size", size),
		slog.Uint64("align", uint64(align)),
	)
	return block, nil
}

func (a *TrackingAllocator) Reallocate(block Block, newSize int) (Block, error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	old, err := a.lookup(block)
	if err != nil {
		return Block{}, err
	}
	if newSize < old.size {
		return Block{}, errors.Newf("cannot shrink block %d from %d to %d bytes", old.id, old.size, newSize)
	}

	err = a.reserve(newSize - old.size)
	if err != nil {
		return Block{}, err
	}

	grown, tracked := a.newBlock(newSize, old.align)
	copy(grown.data, block.data)
	a.live.Delete(block.address())

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "reallocated block",
		slog.Int("oldId", old.id),
		slog.Int("id", tracked.id),
		slog.Int("oldSize", old.size),
		slog.Int("size", newSize),
	)
	return grown, nil
}

func (a *TrackingAllocator) Free(block Block) error {
	if block.IsNil() {
		return nil
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	tracked, err := a.lookup(block)
	if err != nil {
		return err
	}

	a.live.Delete(block.address())
	a.liveBytes -= tracked.size

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "freed block",
		slog.Int("id", tracked.id),
		slog.Int("size", tracked.size),
	)
	return nil
}

// LiveBlocks returns the number of blocks that have been allocated and not yet freed
func (a *TrackingAllocator) LiveBlocks() int {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	return a.live.Count()
}

// LiveBytes returns the total size of all live blocks
func (a *TrackingAllocator) LiveBytes() int {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	return a.liveBytes
}

// AddStatistics sums this allocator's live blocks into stats. Every block is a single allocation.
func (a *TrackingAllocator) AddStatistics(stats *memutils.Statistics) {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	stats.BlockCount += a.live.Count()
	stats.BlockBytes += a.liveBytes
	stats.AllocationCount += a.live.Count()
	stats.AllocationBytes += a.liveBytes
}

func (a *TrackingAllocator) sortedBlocks() []trackedBlock {
	blocks := make([]trackedBlock, 0, a.live.Count())
	a.live.Iter(func(_ uintptr, tracked trackedBlock) bool {
		blocks = append(blocks, tracked)
		return false
	})
	slices.SortFunc(blocks, func(left, right trackedBlock) int {
		return left.id - right.id
	})
	return blocks
}

// BuildStatsString writes a json object describing the allocator and each live block
func (a *TrackingAllocator) BuildStatsString(writer *jwriter.Writer) {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	obj := writer.Object()
	defer obj.End()

	obj.Name("LiveBytes").Int(a.liveBytes)
	obj.Name("PeakBytes").Int(a.peakBytes)
	obj.Name("ByteLimit").Int(a.byteLimit)

	blocks := obj.Name("Blocks").Array()
	defer blocks.End()

	for _, tracked := range a.sortedBlocks() {
		blockObj := blocks.Object()
		blockObj.Name("Id").Int(tracked.id)
		blockObj.Name("Size").Int(tracked.size)
		blockObj.Name("Align").Int(int(tracked.align))
		blockObj.End()
	}
}

// CheckCorruption verifies the debug margin after every live block. It always returns nil unless
// built with the debug_mem_utils tag.
func (a *TrackingAllocator) CheckCorruption() error {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	for _, tracked := range a.sortedBlocks() {
		if !memutils.ValidateMagicValue(tracked.data, tracked.size) {
			return errors.Wrapf(ErrMemoryCorrupted, "block %d", tracked.id)
		}
	}
	return nil
}

// Destroy logs every block that is still live and returns an error if there were any.
// The allocator's bookkeeping is cleared either way.
func (a *TrackingAllocator) Destroy() error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	remaining := a.sortedBlocks()
	for _, tracked := range remaining {
		a.logger.LogAttrs(context.Background(), slog.LevelError, "[UNRELEASED MEMORY] unfreed block",
			slog.Int("id", tracked.id),
			slog.Int("size", tracked.size),
			slog.Uint64("align", uint64(tracked.align)),
		)
	}

	a.live = swiss.NewMap[uintptr, trackedBlock](16)
	a.liveBytes = 0

	if len(remaining) > 0 {
		return errors.Newf("%d blocks were not freed before the destruction of this allocator", len(remaining))
	}
	return nil
}
