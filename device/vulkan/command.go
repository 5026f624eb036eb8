package vulkan

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/quartermaster/device"
)

type commandPool struct {
	device *Device
	family device.QueueFamily
	pool   core1_0.CommandPool
}

func (p *commandPool) Family() device.QueueFamily {
	return p.family
}

func (p *commandPool) AllocateCommandBuffers(level core1_0.CommandBufferLevel, count int) ([]device.CommandBuffer, common.VkResult, error) {
	buffers, res, err := p.device.device.AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		CommandPool:        p.pool,
		Level:              level,
		CommandBufferCount: count,
	})
	if err != nil {
		return nil, res, err
	}

	wrapped := make([]device.CommandBuffer, 0, len(buffers))
	for _, buffer := range buffers {
		wrapped = append(wrapped, &commandBuffer{buffer: buffer})
	}
	return wrapped, res, nil
}

func (p *commandPool) FreeCommandBuffers(buffers []device.CommandBuffer) {
	if len(buffers) == 0 {
		return
	}

	native := make([]core1_0.CommandBuffer, 0, len(buffers))
	for _, buffer := range buffers {
		native = append(native, buffer.(*commandBuffer).buffer)
	}
	p.device.device.FreeCommandBuffers(native)
}

func (p *commandPool) Reset(flags core1_0.CommandPoolResetFlags) (common.VkResult, error) {
	return p.pool.Reset(flags)
}

func (p *commandPool) Destroy() {
	p.pool.Destroy(p.device.allocationCallbacks)
}

type commandBuffer struct {
	buffer core1_0.CommandBuffer
}

func (c *commandBuffer) Begin(flags core1_0.CommandBufferUsageFlags) (common.VkResult, error) {
	return c.buffer.Begin(core1_0.CommandBufferBeginInfo{Flags: flags})
}

func (c *commandBuffer) End() (common.VkResult, error) {
	return c.buffer.End()
}

func (c *commandBuffer) Reset(flags core1_0.CommandBufferResetFlags) (common.VkResult, error) {
	return c.buffer.Reset(flags)
}

func (c *commandBuffer) CmdCopyBuffer(src device.Buffer, dst device.Buffer, regions []core1_0.BufferCopy) error {
	srcBuffer, err := unwrapBuffer(src)
	if err != nil {
		return err
	}
	dstBuffer, err := unwrapBuffer(dst)
	if err != nil {
		return err
	}

	return c.buffer.CmdCopyBuffer(srcBuffer, dstBuffer, regions)
}

func (c *commandBuffer) CmdBindDescriptorSets(bindPoint core1_0.PipelineBindPoint, layout device.PipelineLayout, firstSet int, sets []device.DescriptorSet) {
	nativeLayout, err := unwrapPipelineLayout(layout)
	if err != nil {
		panic(err)
	}

	nativeSets := make([]core1_0.DescriptorSet, 0, len(sets))
	for _, set := range sets {
		nativeSet, err := unwrapSet(set)
		if err != nil {
			panic(err)
		}
		nativeSets = append(nativeSets, nativeSet)
	}

	c.buffer.CmdBindDescriptorSets(bindPoint, nativeLayout, firstSet, nativeSets, nil)
}

func (c *commandBuffer) CmdPushConstants(layout device.PipelineLayout, stages core1_0.ShaderStageFlags, offset int, data []byte) {
	nativeLayout, err := unwrapPipelineLayout(layout)
	if err != nil {
		panic(errors.Wrap(err, "push constants"))
	}

	c.buffer.CmdPushConstants(nativeLayout, stages, offset, data)
}
