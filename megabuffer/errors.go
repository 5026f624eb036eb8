package megabuffer

import "github.com/cockroachdb/errors"

var (
	// ErrOutOfSpace is returned when no single free range can hold a requested region. It is
	// never retried internally: callers may Defragment or fail the operation that needed the
	// space.
	ErrOutOfSpace = errors.New("no free range is large enough")
	// ErrRegionTooSmall is returned when data written to a region exceeds its size
	ErrRegionTooSmall = errors.New("data does not fit in region")
	// ErrForeignRegion is returned when a region is passed to a megabuffer that did not
	// allocate it
	ErrForeignRegion = errors.New("region does not belong to this megabuffer")
	// ErrRegionReleased is returned when a region is used after it was deallocated, including
	// a second deallocation
	ErrRegionReleased = errors.New("region has already been released")
	// ErrInvalidSize is returned for zero or negative sizes and for suballocations that would
	// consume the whole parent region
	ErrInvalidSize = errors.New("invalid region size")
	// ErrNotAdjacent is returned when merging regions that do not share an edge
	ErrNotAdjacent = errors.New("regions are not adjacent")
	// ErrUploadInFlight is returned when a megabuffer is destroyed while one of its uploads is
	// still queued on or executing in the transfer context
	ErrUploadInFlight = errors.New("megabuffer has an upload in flight")
	// ErrMegabufferDestroyed is returned when a region's megabuffer no longer exists
	ErrMegabufferDestroyed = errors.New("megabuffer has been destroyed")
)
