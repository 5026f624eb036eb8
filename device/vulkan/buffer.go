package vulkan

import (
	"math"
	"math/bits"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/quartermaster/device"
	"github.com/vkngwrapper/quartermaster/memutils"
	"golang.org/x/exp/slog"
)

type memoryPreferences struct {
	required     core1_0.MemoryPropertyFlags
	preferred    core1_0.MemoryPropertyFlags
	notPreferred core1_0.MemoryPropertyFlags
}

var (
	deviceLocalPreferences = memoryPreferences{
		required:     core1_0.MemoryPropertyDeviceLocal,
		notPreferred: core1_0.MemoryPropertyHostVisible,
	}
	stagingPreferences = memoryPreferences{
		required:     core1_0.MemoryPropertyHostVisible,
		preferred:    core1_0.MemoryPropertyHostCoherent,
		notPreferred: core1_0.MemoryPropertyDeviceLocal,
	}
)

// findMemoryTypeIndex picks the allowed memory type that has every required flag and the fewest
// preference mismatches
func (d *Device) findMemoryTypeIndex(memoryTypeBits uint32, preferences memoryPreferences) (int, common.VkResult, error) {
	bestMemoryTypeIndex := -1
	minCost := math.MaxInt

	for memTypeIndex, memType := range d.memoryProperties.MemoryTypes {
		if uint32(1<<memTypeIndex)&memoryTypeBits == 0 {
			continue
		}

		flags := memType.PropertyFlags
		if preferences.required&flags != preferences.required {
			continue
		}

		missingPreferredFlags := preferences.preferred & ^flags
		presentNotPreferredFlags := preferences.notPreferred & flags
		cost := bits.OnesCount32(uint32(missingPreferredFlags)) + bits.OnesCount32(uint32(presentNotPreferredFlags))
		if cost == 0 {
			return memTypeIndex, core1_0.VKSuccess, nil
		} else if cost < minCost {
			bestMemoryTypeIndex = memTypeIndex
			minCost = cost
		}
	}

	if bestMemoryTypeIndex < 0 {
		return -1, core1_0.VKErrorFeatureNotPresent, core1_0.VKErrorFeatureNotPresent.ToError()
	}

	return bestMemoryTypeIndex, core1_0.VKSuccess, nil
}

func (d *Device) createBuffer(size int, usage core1_0.BufferUsageFlags, preferences memoryPreferences) (*buffer, common.VkResult, error) {
	nativeBuffer, res, err := d.device.CreateBuffer(d.allocationCallbacks, core1_0.BufferCreateInfo{
		Size:        size,
		Usage:       usage,
		SharingMode: core1_0.SharingModeExclusive,
	})
	if err != nil {
		return nil, res, err
	}

	requirements := nativeBuffer.MemoryRequirements()
	memoryTypeIndex, res, err := d.findMemoryTypeIndex(requirements.MemoryTypeBits, preferences)
	if err != nil {
		nativeBuffer.Destroy(d.allocationCallbacks)
		return nil, res, err
	}

	memory, res, err := d.device.AllocateMemory(d.allocationCallbacks, core1_0.MemoryAllocateInfo{
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: memoryTypeIndex,
	})
	if err != nil {
		nativeBuffer.Destroy(d.allocationCallbacks)
		return nil, res, err
	}

	res, err = nativeBuffer.BindBufferMemory(memory, 0)
	if err != nil {
		nativeBuffer.Destroy(d.allocationCallbacks)
		memory.Free(d.allocationCallbacks)
		return nil, res, err
	}

	d.logger.Debug("Device::CreateBuffer",
		slog.Int("Size", size),
		slog.Int("AllocationSize", requirements.Size),
		slog.Int("MemoryTypeIndex", memoryTypeIndex),
	)

	return &buffer{
		device:        d,
		buffer:        nativeBuffer,
		memory:        memory,
		size:          size,
		propertyFlags: d.memoryProperties.MemoryTypes[memoryTypeIndex].PropertyFlags,
	}, core1_0.VKSuccess, nil
}

func (d *Device) CreateDeviceBuffer(size int, usage core1_0.BufferUsageFlags) (device.Buffer, common.VkResult, error) {
	created, res, err := d.createBuffer(size, usage, deviceLocalPreferences)
	if err != nil {
		return nil, res, err
	}
	return created, res, nil
}

func (d *Device) CreateHostBuffer(size int, usage core1_0.BufferUsageFlags) (device.HostBuffer, common.VkResult, error) {
	created, res, err := d.createBuffer(size, usage, stagingPreferences)
	if err != nil {
		return nil, res, err
	}

	ptr, res, err := created.memory.Map(0, size, 0)
	if err != nil {
		created.Destroy()
		return nil, res, err
	}
	created.mapped = unsafe.Slice((*byte)(ptr), size)

	return created, core1_0.VKSuccess, nil
}

type buffer struct {
	device        *Device
	buffer        core1_0.Buffer
	memory        core1_0.DeviceMemory
	size          int
	propertyFlags core1_0.MemoryPropertyFlags
	mapped        []byte
}

func (b *buffer) Size() int {
	return b.size
}

func (b *buffer) Bytes() []byte {
	return b.mapped
}

func (b *buffer) Flush(offset, size int) (common.VkResult, error) {
	if b.propertyFlags&core1_0.MemoryPropertyHostCoherent != 0 || size == 0 {
		return core1_0.VKSuccess, nil
	}

	atom := b.device.nonCoherentAtomSize
	start := memutils.AlignDown(offset, atom)
	end := memutils.AlignUp(offset+size, atom)
	flushSize := end - start
	if end >= b.size {
		flushSize = -1
	}

	return b.device.device.FlushMappedMemoryRanges([]core1_0.MappedMemoryRange{
		{
			Memory: b.memory,
			Offset: start,
			Size:   flushSize,
		},
	})
}

func (b *buffer) Destroy() {
	if b.mapped != nil {
		b.memory.Unmap()
		b.mapped = nil
	}
	b.buffer.Destroy(b.device.allocationCallbacks)
	b.memory.Free(b.device.allocationCallbacks)
}

func unwrapBuffer(buf device.Buffer) (core1_0.Buffer, error) {
	wrapped, ok := buf.(*buffer)
	if !ok {
		return nil, errors.Newf("buffer %T was not created by this adapter", buf)
	}
	return wrapped.buffer, nil
}
