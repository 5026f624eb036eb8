package megabuffer

import (
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/quartermaster/device"
	"golang.org/x/exp/slog"
)

// Range is a byte range [Offset, Offset+Size) of a megabuffer
type Range struct {
	Offset int
	Size   int
}

// End returns the offset one past the last byte of the range
func (r Range) End() int {
	return r.Offset + r.Size
}

// coalesceRanges sorts ranges by offset and merges the ones that overlap or touch
func coalesceRanges(ranges []Range) []Range {
	if len(ranges) < 2 {
		return ranges
	}

	sorted := append([]Range(nil), ranges...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})

	merged := sorted[:1]
	for _, r := range sorted[1:] {
		last := &merged[len(merged)-1]
		if r.Offset <= last.End() {
			if r.End() > last.End() {
				last.Size = r.End() - last.Offset
			}
			continue
		}
		merged = append(merged, r)
	}

	return merged
}

// Write copies data into the staging buffer at the region's offset and marks the range dirty
// for the next Upload
func (m *Megabuffer) Write(region *Region, data []byte) error {
	return m.WriteAt(region, 0, data)
}

// WriteAt copies data into the staging buffer at offset bytes into the region. It fails with
// ErrRegionTooSmall if the data would extend past the end of the region.
func (m *Megabuffer) WriteAt(region *Region, offset int, data []byte) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	err := m.checkRegion(region)
	if err != nil {
		return err
	}

	if offset < 0 || offset > region.size-len(data) {
		return errors.Wrapf(ErrRegionTooSmall, "writing %d bytes at offset %d of a %d byte region", len(data), offset, region.size)
	}
	if len(data) == 0 {
		return nil
	}

	start := region.offset + offset
	copy(m.stagingBuffer.Bytes()[start:start+len(data)], data)
	m.dirty = append(m.dirty, Range{Offset: start, Size: len(data)})

	return nil
}

// dropDirty discards the parts of dirty ranges that fall inside [start, end). It must be
// called with the mutex held.
func (m *Megabuffer) dropDirty(start, end int) {
	kept := make([]Range, 0, len(m.dirty))
	for _, r := range m.dirty {
		if r.End() <= start || r.Offset >= end {
			kept = append(kept, r)
			continue
		}
		if r.Offset < start {
			kept = append(kept, Range{Offset: r.Offset, Size: start - r.Offset})
		}
		if r.End() > end {
			kept = append(kept, Range{Offset: end, Size: r.End() - end})
		}
	}
	m.dirty = kept
}

// DirtyRanges returns the coalesced ranges written since the last successful upload
func (m *Megabuffer) DirtyRanges() []Range {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.dirty = coalesceRanges(m.dirty)
	return append([]Range(nil), m.dirty...)
}

// Upload copies every range written since the last successful upload from the staging buffer
// to the device buffer, with one copy command per coalesced range inside a single immediate
// submission. The megabuffer's lock is only held to take and, on failure, restore the dirty
// list, so writes may continue while the device copy is in flight. Ranges written during the
// copy stay dirty for the next upload. Destroy is refused until the copy completes.
func (m *Megabuffer) Upload() (common.VkResult, error) {
	m.mutex.Lock()
	if m.destroyed {
		m.mutex.Unlock()
		return core1_0.VKErrorUnknown, ErrMegabufferDestroyed
	}
	pending := coalesceRanges(m.dirty)
	m.dirty = nil
	if len(pending) == 0 {
		m.mutex.Unlock()
		return core1_0.VKSuccess, nil
	}
	m.uploads++
	m.mutex.Unlock()

	res, err := m.copyToDevice(pending)

	m.mutex.Lock()
	m.uploads--
	m.mutex.Unlock()

	if err != nil {
		m.mutex.Lock()
		m.dirty = append(pending, m.dirty...)
		m.mutex.Unlock()
		return res, err
	}

	return res, nil
}

// UploadRanges copies explicit ranges from the staging buffer to the device buffer. It does not
// consult or modify the dirty list.
func (m *Megabuffer) UploadRanges(ranges []Range) (common.VkResult, error) {
	for _, r := range ranges {
		if r.Offset < 0 || r.Size <= 0 || r.Offset > m.capacity-r.Size {
			return core1_0.VKErrorUnknown, errors.Newf("megabuffer %q: range at offset %d of %d bytes is out of bounds", m.name, r.Offset, r.Size)
		}
	}

	if len(ranges) == 0 {
		return core1_0.VKSuccess, nil
	}

	m.mutex.Lock()
	if m.destroyed {
		m.mutex.Unlock()
		return core1_0.VKErrorUnknown, ErrMegabufferDestroyed
	}
	m.uploads++
	m.mutex.Unlock()

	defer func() {
		m.mutex.Lock()
		m.uploads--
		m.mutex.Unlock()
	}()

	return m.copyToDevice(coalesceRanges(ranges))
}

func (m *Megabuffer) copyToDevice(ranges []Range) (common.VkResult, error) {
	copies := make([]core1_0.BufferCopy, 0, len(ranges))
	totalBytes := 0
	for _, r := range ranges {
		res, err := m.stagingBuffer.Flush(r.Offset, r.Size)
		if err != nil {
			return res, errors.Wrapf(err, "megabuffer %q: failed to flush staging range", m.name)
		}

		copies = append(copies, core1_0.BufferCopy{SrcOffset: r.Offset, DstOffset: r.Offset, Size: r.Size})
		totalBytes += r.Size
	}

	m.logger.Debug("Megabuffer::Upload", slog.Int("Ranges", len(copies)), slog.Int("Bytes", totalBytes))

	res, err := m.registry.transfer.ImmediateSubmit(func(commandBuffer device.CommandBuffer) error {
		return commandBuffer.CmdCopyBuffer(m.stagingBuffer, m.deviceBuffer, copies)
	})
	if err != nil {
		return res, errors.Wrapf(err, "megabuffer %q: upload failed", m.name)
	}

	return res, nil
}
