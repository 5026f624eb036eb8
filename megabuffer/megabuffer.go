package megabuffer

import (
	"context"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/quartermaster/device"
	"github.com/vkngwrapper/quartermaster/internal/utils"
	"github.com/vkngwrapper/quartermaster/memutils"
	"golang.org/x/exp/slices"
	"golang.org/x/exp/slog"
)

type freeRegion struct {
	offset int
	size   int
}

func (r freeRegion) end() int {
	return r.offset + r.size
}

// Megabuffer sub-allocates regions of one device-local buffer. Data reaches the device in two
// phases: Write copies into a host-visible staging buffer of the same size, and Upload copies
// the written ranges to the device buffer through the registry's transfer context.
//
// Every region offset and size is a multiple of the alignment, and the live regions and free
// ranges partition [0, capacity) at all times.
type Megabuffer struct {
	logger *slog.Logger
	mutex  utils.OptionalMutex

	registry *Registry
	id       ID
	name     string

	deviceBuffer  device.Buffer
	stagingBuffer device.HostBuffer
	capacity      int
	alignment     int

	freeRegions []freeRegion
	liveRegions *swiss.Map[*Region, struct{}]
	dirty       []Range
	uploads     int
	destroyed   bool
}

func newMegabuffer(registry *Registry, id ID, info CreateInfo, deviceBuffer device.Buffer, stagingBuffer device.HostBuffer) *Megabuffer {
	return &Megabuffer{
		logger:        registry.logger.With(slog.String("Megabuffer", info.Name)),
		mutex:         utils.OptionalMutex{UseMutex: registry.useMutex},
		registry:      registry,
		id:            id,
		name:          info.Name,
		deviceBuffer:  deviceBuffer,
		stagingBuffer: stagingBuffer,
		capacity:      info.Capacity,
		alignment:     info.Alignment,
		freeRegions:   []freeRegion{{offset: 0, size: info.Capacity}},
		liveRegions:   swiss.NewMap[*Region, struct{}](64),
	}
}

// ID returns the identifier the registry assigned to this megabuffer
func (m *Megabuffer) ID() ID { return m.id }

// Name returns the debug name from the megabuffer's CreateInfo
func (m *Megabuffer) Name() string { return m.name }

// Capacity returns the size in bytes of both the device and staging buffers
func (m *Megabuffer) Capacity() int { return m.capacity }

// Alignment returns the granularity every region offset and size is rounded to
func (m *Megabuffer) Alignment() int { return m.alignment }

// DeviceBuffer returns the device-local buffer that draws bind
func (m *Megabuffer) DeviceBuffer() device.Buffer { return m.deviceBuffer }

// StagingBuffer returns the host-visible buffer that Write copies into
func (m *Megabuffer) StagingBuffer() device.Buffer { return m.stagingBuffer }

// AllocateRegion rounds size up to the alignment and carves it from the first free range, in
// free-list order, that can hold it. It fails with ErrOutOfSpace when no single free range is
// large enough, even if the total free space would be.
func (m *Megabuffer) AllocateRegion(size int) (*Region, error) {
	if size <= 0 {
		return nil, errors.Wrapf(ErrInvalidSize, "cannot allocate a region of %d bytes", size)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.destroyed {
		return nil, ErrMegabufferDestroyed
	}

	if size > m.capacity {
		return nil, errors.Wrapf(ErrOutOfSpace, "megabuffer %q: requested %d bytes, capacity is %d bytes",
			m.name, size, m.capacity)
	}

	// capacity is a multiple of the alignment, so rounding a size no larger than it cannot overflow
	memutils.DebugCheckPow2(m.alignment, "alignment")
	alignedSize := memutils.AlignUp(size, m.alignment)

	m.logger.Debug("Megabuffer::AllocateRegion",
		slog.Int("Size", size),
		slog.Int("AlignedSize", alignedSize),
	)

	for index, free := range m.freeRegions {
		if free.size < alignedSize {
			continue
		}

		region := &Region{registry: m.registry, owner: m.id, offset: free.offset, size: alignedSize}

		if free.size == alignedSize {
			m.freeRegions = slices.Delete(m.freeRegions, index, index+1)
		} else {
			m.freeRegions[index] = freeRegion{offset: free.offset + alignedSize, size: free.size - alignedSize}
		}

		m.liveRegions.Put(region, struct{}{})
		memutils.DebugValidate(m)
		return region, nil
	}

	return nil, errors.Wrapf(ErrOutOfSpace, "megabuffer %q: requested %d bytes, largest free range is %d bytes",
		m.name, alignedSize, m.largestFreeRange())
}

func (m *Megabuffer) largestFreeRange() int {
	largest := 0
	for _, free := range m.freeRegions {
		if free.size > largest {
			largest = free.size
		}
	}
	return largest
}

// checkRegion must be called with the mutex held
func (m *Megabuffer) checkRegion(region *Region) error {
	if region == nil {
		return errors.New("region is nil")
	}
	if region.owner != m.id || region.registry != m.registry {
		return errors.Wrapf(ErrForeignRegion, "megabuffer %q", m.name)
	}
	if region.size == 0 {
		return ErrRegionReleased
	}
	if !m.liveRegions.Has(region) {
		return errors.Wrapf(ErrForeignRegion, "megabuffer %q does not track region at offset %d", m.name, region.offset)
	}
	return nil
}

// DeallocateRegion returns a region's range to the free list, merging it with the free ranges
// that end where it begins and begin where it ends. The region's size is zeroed, so releasing
// it a second time fails with ErrRegionReleased.
func (m *Megabuffer) DeallocateRegion(region *Region) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	err := m.checkRegion(region)
	if err != nil {
		return err
	}

	m.logger.Debug("Megabuffer::DeallocateRegion",
		slog.Int("Offset", region.offset),
		slog.Int("Size", region.size),
	)

	m.insertFree(freeRegion{offset: region.offset, size: region.size})
	m.dropDirty(region.offset, region.offset+region.size)

	m.liveRegions.Delete(region)
	region.size = 0

	memutils.DebugValidate(m)
	return nil
}

func (m *Megabuffer) insertFree(released freeRegion) {
	prevIndex := -1
	nextIndex := -1

	for index, free := range m.freeRegions {
		if free.end() == released.offset {
			prevIndex = index
		} else if released.end() == free.offset {
			nextIndex = index
		}
	}

	switch {
	case prevIndex >= 0 && nextIndex >= 0:
		m.freeRegions[prevIndex].size += released.size + m.freeRegions[nextIndex].size
		m.freeRegions = slices.Delete(m.freeRegions, nextIndex, nextIndex+1)
	case prevIndex >= 0:
		m.freeRegions[prevIndex].size += released.size
	case nextIndex >= 0:
		m.freeRegions[nextIndex].offset = released.offset
		m.freeRegions[nextIndex].size += released.size
	default:
		insertAt := slices.IndexFunc(m.freeRegions, func(free freeRegion) bool {
			return free.offset > released.offset
		})
		if insertAt < 0 {
			insertAt = len(m.freeRegions)
		}
		m.freeRegions = slices.Insert(m.freeRegions, insertAt, released)
	}
}

// Defragment sorts the free list by offset and merges adjacent free ranges that eager
// coalescing missed. Live regions never move. It returns the number of merges performed.
func (m *Megabuffer) Defragment() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if len(m.freeRegions) < 2 {
		return 0
	}

	sort.Slice(m.freeRegions, func(i, j int) bool {
		return m.freeRegions[i].offset < m.freeRegions[j].offset
	})

	merged := m.freeRegions[:1]
	merges := 0
	for _, free := range m.freeRegions[1:] {
		last := &merged[len(merged)-1]
		if last.end() == free.offset {
			last.size += free.size
			merges++
			continue
		}
		merged = append(merged, free)
	}
	m.freeRegions = merged

	m.logger.Debug("Megabuffer::Defragment", slog.Int("Merges", merges), slog.Int("FreeRanges", len(merged)))

	memutils.DebugValidate(m)
	return merges
}

// Destroy frees the device and staging buffers and removes the megabuffer from its registry.
// If any region is still outstanding, each one is logged, nothing is freed, and an error is
// returned. It fails with ErrUploadInFlight while an Upload or UploadRanges call is copying
// from this megabuffer's buffers.
func (m *Megabuffer) Destroy() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.destroyed {
		return nil
	}

	if m.uploads > 0 {
		return errors.Wrapf(ErrUploadInFlight, "megabuffer %q has %d uploads in flight", m.name, m.uploads)
	}

	if m.liveRegions.Count() > 0 {
		m.logUnreleasedRegions()
		return errors.Newf("megabuffer %q has %d unreleased regions", m.name, m.liveRegions.Count())
	}

	m.deviceBuffer.Destroy()
	m.stagingBuffer.Destroy()
	m.freeRegions = nil
	m.dirty = nil
	m.destroyed = true

	m.registry.unregister(m.id)
	return nil
}

func (m *Megabuffer) logUnreleasedRegions() {
	for _, region := range m.sortedRegions() {
		m.logger.LogAttrs(context.Background(), slog.LevelError, "[UNRELEASED REGION] region was not released before its megabuffer was destroyed",
			slog.Int("Offset", region.offset),
			slog.Int("Size", region.size),
		)
	}
}

func (m *Megabuffer) sortedRegions() []*Region {
	regions := make([]*Region, 0, m.liveRegions.Count())
	m.liveRegions.Iter(func(region *Region, _ struct{}) bool {
		regions = append(regions, region)
		return false
	})
	sort.Slice(regions, func(i, j int) bool {
		return regions[i].offset < regions[j].offset
	})
	return regions
}

// Validate checks that the live regions and free ranges exactly partition the buffer and that
// every offset and size honors the alignment. It is called after every mutation when built
// with the debug_mem_utils tag. The caller must hold the mutex, or call ValidateLocked.
func (m *Megabuffer) Validate() error {
	type span struct {
		offset int
		size   int
		free   bool
	}

	spans := make([]span, 0, len(m.freeRegions)+m.liveRegions.Count())
	for _, free := range m.freeRegions {
		spans = append(spans, span{offset: free.offset, size: free.size, free: true})
	}
	m.liveRegions.Iter(func(region *Region, _ struct{}) bool {
		spans = append(spans, span{offset: region.offset, size: region.size})
		return false
	})

	sort.Slice(spans, func(i, j int) bool {
		return spans[i].offset < spans[j].offset
	})

	cursor := 0
	for _, s := range spans {
		if s.size <= 0 {
			return errors.Newf("megabuffer %q has an empty span at offset %d (free: %t)", m.name, s.offset, s.free)
		}
		if !memutils.IsAligned(s.offset, m.alignment) || !memutils.IsAligned(s.size, m.alignment) {
			return errors.Newf("megabuffer %q has a misaligned span [%d, %d) (free: %t)", m.name, s.offset, s.offset+s.size, s.free)
		}
		if s.offset < cursor {
			return errors.Newf("megabuffer %q has overlapping spans at offset %d", m.name, s.offset)
		}
		if s.offset > cursor {
			return errors.Newf("megabuffer %q has an untracked gap [%d, %d)", m.name, cursor, s.offset)
		}
		cursor = s.offset + s.size
	}

	if cursor != m.capacity {
		return errors.Newf("megabuffer %q spans end at %d but capacity is %d", m.name, cursor, m.capacity)
	}

	return nil
}

// ValidateLocked acquires the mutex and calls Validate
func (m *Megabuffer) ValidateLocked() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return m.Validate()
}

// AddDetailedStatistics adds this megabuffer's occupancy to stats
func (m *Megabuffer) AddDetailedStatistics(stats *memutils.DetailedStatistics) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	stats.BufferCount++
	stats.CapacityBytes += m.capacity

	m.liveRegions.Iter(func(region *Region, _ struct{}) bool {
		stats.AddRegion(region.size)
		return false
	})
	for _, free := range m.freeRegions {
		stats.AddFreeRange(free.size)
	}
}

// Statistics returns the occupancy of this megabuffer
func (m *Megabuffer) Statistics() memutils.DetailedStatistics {
	var stats memutils.DetailedStatistics
	stats.Clear()
	m.AddDetailedStatistics(&stats)
	return stats
}

func (m *Megabuffer) printDetailedMap(json *jwriter.ObjectState, detailedMap bool) {
	stats := m.Statistics()

	m.mutex.Lock()
	defer m.mutex.Unlock()

	json.Name("Name").String(m.name)
	json.Name("Alignment").Int(m.alignment)
	json.Name("DirtyRanges").Int(len(m.dirty))
	printDetailedStatistics(json, &stats)

	if !detailedMap {
		return
	}

	type entry struct {
		offset int
		size   int
		free   bool
	}
	entries := make([]entry, 0, len(m.freeRegions)+m.liveRegions.Count())
	for _, free := range m.freeRegions {
		entries = append(entries, entry{offset: free.offset, size: free.size, free: true})
	}
	for _, region := range m.sortedRegions() {
		entries = append(entries, entry{offset: region.offset, size: region.size})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].offset < entries[j].offset
	})

	arrayState := json.Name("Ranges").Array()
	defer arrayState.End()

	for _, e := range entries {
		obj := arrayState.Object()
		obj.Name("Offset").Int(e.offset)
		obj.Name("Size").Int(e.size)
		if e.free {
			obj.Name("Type").String("FREE")
		} else {
			obj.Name("Type").String("REGION")
		}
		obj.End()
	}
}
