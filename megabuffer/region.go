package megabuffer

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/quartermaster/memutils"
	"golang.org/x/exp/slog"
)

// Region is a lease on a byte range of a megabuffer. It is exclusively owned by whoever
// allocated it and must be released exactly once. A released region reports a size of 0.
type Region struct {
	registry *Registry
	owner    ID
	offset   int
	size     int
}

// Offset returns the region's byte offset within its megabuffer
func (r *Region) Offset() int { return r.offset }

// Size returns the region's size in bytes, or 0 once it has been released
func (r *Region) Size() int { return r.size }

// Owner returns the ID of the megabuffer the region was carved from
func (r *Region) Owner() ID { return r.owner }

// Released reports whether the region was deallocated or merged into another region
func (r *Region) Released() bool { return r.size == 0 }

// Megabuffer resolves the region's owner through its registry
func (r *Region) Megabuffer() (*Megabuffer, error) {
	if r.registry == nil {
		return nil, errors.New("region was not allocated from a megabuffer")
	}

	megabuffer, ok := r.registry.Get(r.owner)
	if !ok {
		return nil, errors.Wrapf(ErrMegabufferDestroyed, "megabuffer %d", r.owner)
	}
	return megabuffer, nil
}

// Release returns the region to its megabuffer
func (r *Region) Release() error {
	megabuffer, err := r.Megabuffer()
	if err != nil {
		return err
	}
	return megabuffer.DeallocateRegion(r)
}

// Write stages data at the start of the region
func (r *Region) Write(data []byte) error {
	megabuffer, err := r.Megabuffer()
	if err != nil {
		return err
	}
	return megabuffer.Write(r, data)
}

// Suballocate carves size bytes, rounded up to the megabuffer's alignment, from the end of this
// region and returns them as a new region. This region shrinks accordingly. Suballocation never
// searches the free list. It fails with ErrInvalidSize if size is not positive or the rounded
// size would consume the whole region.
func (r *Region) Suballocate(size int) (*Region, error) {
	megabuffer, err := r.Megabuffer()
	if err != nil {
		return nil, err
	}

	megabuffer.mutex.Lock()
	defer megabuffer.mutex.Unlock()

	err = megabuffer.checkRegion(r)
	if err != nil {
		return nil, err
	}

	if size <= 0 {
		return nil, errors.Wrapf(ErrInvalidSize, "cannot suballocate %d bytes", size)
	}

	if size >= r.size {
		return nil, errors.Wrapf(ErrInvalidSize, "cannot suballocate %d bytes from a region of %d bytes", size, r.size)
	}

	alignedSize := memutils.AlignUp(size, megabuffer.alignment)
	if alignedSize >= r.size {
		return nil, errors.Wrapf(ErrInvalidSize, "cannot suballocate %d bytes from a region of %d bytes", alignedSize, r.size)
	}

	megabuffer.logger.Debug("Region::Suballocate",
		slog.Int("ParentOffset", r.offset),
		slog.Int("ParentSize", r.size),
		slog.Int("Size", alignedSize),
	)

	child := &Region{
		registry: r.registry,
		owner:    r.owner,
		offset:   r.offset + r.size - alignedSize,
		size:     alignedSize,
	}
	r.size -= alignedSize

	megabuffer.liveRegions.Put(child, struct{}{})
	memutils.DebugValidate(megabuffer)
	return child, nil
}

// Merge absorbs other into this region. Both regions must be live, come from the same
// megabuffer and share an edge, in either order. other is released by the merge.
func (r *Region) Merge(other *Region) error {
	if other == nil || other == r {
		return errors.New("a region cannot be merged with itself or nil")
	}
	if other.owner != r.owner || other.registry != r.registry {
		return errors.Wrap(ErrForeignRegion, "merged regions come from different megabuffers")
	}

	megabuffer, err := r.Megabuffer()
	if err != nil {
		return err
	}

	megabuffer.mutex.Lock()
	defer megabuffer.mutex.Unlock()

	err = megabuffer.checkRegion(r)
	if err != nil {
		return err
	}
	err = megabuffer.checkRegion(other)
	if err != nil {
		return err
	}

	switch {
	case r.offset+r.size == other.offset:
		r.size += other.size
	case other.offset+other.size == r.offset:
		r.offset = other.offset
		r.size += other.size
	default:
		return errors.Wrapf(ErrNotAdjacent, "[%d, %d) and [%d, %d)", r.offset, r.offset+r.size, other.offset, other.offset+other.size)
	}

	megabuffer.logger.Debug("Region::Merge", slog.Int("Offset", r.offset), slog.Int("Size", r.size))

	megabuffer.liveRegions.Delete(other)
	other.size = 0

	memutils.DebugValidate(megabuffer)
	return nil
}
