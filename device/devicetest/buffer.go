package devicetest

import (
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
)

type Buffer struct {
	device *Device
	data   []byte
	usage  core1_0.BufferUsageFlags
	host   bool

	// Flushed records every range passed to Flush
	Flushed [][2]int
}

func (b *Buffer) Size() int {
	return len(b.data)
}

func (b *Buffer) Usage() core1_0.BufferUsageFlags {
	return b.usage
}

// Bytes returns the buffer contents. For device buffers this stands in for a device-side
// readback.
func (b *Buffer) Bytes() []byte {
	return b.data
}

func (b *Buffer) Flush(offset, size int) (common.VkResult, error) {
	b.Flushed = append(b.Flushed, [2]int{offset, size})
	return core1_0.VKSuccess, nil
}

func (b *Buffer) Destroy() {
	b.device.destroyed(KindBuffer, 1)
	b.data = nil
}
