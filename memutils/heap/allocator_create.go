package heap

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/packlist/internal/utils"
	"golang.org/x/exp/slog"
)

// CreateFlags indicate specific allocator behaviors to activate or deactivate
type CreateFlags int32

const (
	// CreateExternallySynchronized ensures that this allocator will not be synchronized internally.
	// The consumer must guarantee it is used from only one goroutine at a time or is synchronized
	// by some other mechanism.
	CreateExternallySynchronized CreateFlags = 1 << iota
)

var createFlagsMapping = map[CreateFlags]string{
	CreateExternallySynchronized: "CreateExternallySynchronized",
}

func (f CreateFlags) String() string {
	if f == 0 {
		return "None"
	}

	var names []string
	for bit := CreateFlags(1); bit != 0 && bit <= f; bit <<= 1 {
		if f&bit == 0 {
			continue
		}
		name, ok := createFlagsMapping[bit]
		if !ok {
			name = "Unknown"
		}
		names = append(names, name)
	}
	return strings.Join(names, "|")
}

// CreateOptions contains optional settings when creating a TrackingAllocator
type CreateOptions struct {
	// Flags indicates specific allocator behaviors to activate or deactivate
	Flags CreateFlags
	// ByteLimit is the maximum number of bytes that may be live in the allocator at once. Requests
	// that would exceed it fail with ErrOutOfMemory. 0 means no limit.
	ByteLimit int
}

// New creates a TrackingAllocator. The logger receives a debug record for every block operation
// and an error record for every block still live when Destroy is called.
func New(logger *slog.Logger, options CreateOptions) (*TrackingAllocator, error) {
	if logger == nil {
		return nil, errors.New("heap.New requires a logger")
	}
	if options.ByteLimit < 0 {
		return nil, errors.Newf("heap.CreateOptions.ByteLimit must not be negative but was %d", options.ByteLimit)
	}

	return &TrackingAllocator{
		logger:    logger,
		mutex:     utils.OptionalRWMutex{UseMutex: options.Flags&CreateExternallySynchronized == 0},
		byteLimit: options.ByteLimit,
		live:      swiss.NewMap[uintptr, trackedBlock](16),
	}, nil
}
