package device

import (
	"time"

	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
)

//go:generate mockgen -destination mocks/mocks.go -package mocks github.com/vkngwrapper/quartermaster/device Device,CommandPool,CommandBuffer,Fence,Queue

// Device is the subset of a logical device that the resource layer drives. Every method that
// reaches the driver returns the raw VkResult alongside any error so that callers can classify
// failures with Classify.
type Device interface {
	CreateCommandPool(family QueueFamily, flags core1_0.CommandPoolCreateFlags) (CommandPool, common.VkResult, error)
	CreateFence(signaled bool) (Fence, common.VkResult, error)

	// CreateDeviceBuffer creates a buffer bound to device-local memory of at least size bytes
	CreateDeviceBuffer(size int, usage core1_0.BufferUsageFlags) (Buffer, common.VkResult, error)
	// CreateHostBuffer creates a buffer bound to persistently-mapped host-visible memory
	CreateHostBuffer(size int, usage core1_0.BufferUsageFlags) (HostBuffer, common.VkResult, error)

	CreateDescriptorSetLayout(info DescriptorSetLayoutInfo) (DescriptorSetLayout, common.VkResult, error)
	CreateDescriptorPool(info DescriptorPoolInfo) (DescriptorPool, common.VkResult, error)
	CreatePipelineLayout(setLayouts []DescriptorSetLayout, pushConstants []core1_0.PushConstantRange) (PipelineLayout, common.VkResult, error)
	UpdateDescriptorSets(writes []DescriptorWrite) error

	WaitIdle() (common.VkResult, error)
}

type CommandPool interface {
	Family() QueueFamily
	AllocateCommandBuffers(level core1_0.CommandBufferLevel, count int) ([]CommandBuffer, common.VkResult, error)
	FreeCommandBuffers(buffers []CommandBuffer)
	Reset(flags core1_0.CommandPoolResetFlags) (common.VkResult, error)
	Destroy()
}

type CommandBuffer interface {
	Begin(flags core1_0.CommandBufferUsageFlags) (common.VkResult, error)
	End() (common.VkResult, error)
	Reset(flags core1_0.CommandBufferResetFlags) (common.VkResult, error)

	CmdCopyBuffer(src Buffer, dst Buffer, regions []core1_0.BufferCopy) error
	CmdBindDescriptorSets(bindPoint core1_0.PipelineBindPoint, layout PipelineLayout, firstSet int, sets []DescriptorSet)
	CmdPushConstants(layout PipelineLayout, stages core1_0.ShaderStageFlags, offset int, data []byte)
}

type Fence interface {
	Wait(timeout time.Duration) (common.VkResult, error)
	Reset() (common.VkResult, error)
	Destroy()
}

type Buffer interface {
	Size() int
	Destroy()
}

// HostBuffer is a Buffer whose memory stays mapped for its whole lifetime
type HostBuffer interface {
	Buffer
	// Bytes returns the mapped memory. The slice is invalid after Destroy.
	Bytes() []byte
	// Flush makes host writes in [offset, offset+size) visible to the device. It is a
	// no-op for host-coherent memory.
	Flush(offset, size int) (common.VkResult, error)
}

type ImageView interface {
	Destroy()
}

type Sampler interface {
	Destroy()
}

type PipelineLayout interface {
	Destroy()
}
