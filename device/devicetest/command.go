package devicetest

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/quartermaster/device"
)

type CommandPool struct {
	device  *Device
	family  device.QueueFamily
	flags   core1_0.CommandPoolCreateFlags
	buffers map[*CommandBuffer]struct{}

	// ResetCount is the number of times Reset was called
	ResetCount int
}

func (p *CommandPool) Family() device.QueueFamily {
	return p.family
}

func (p *CommandPool) Flags() core1_0.CommandPoolCreateFlags {
	return p.flags
}

// Outstanding returns the number of command buffers allocated from this pool and not freed
func (p *CommandPool) Outstanding() int {
	return len(p.buffers)
}

func (p *CommandPool) AllocateCommandBuffers(level core1_0.CommandBufferLevel, count int) ([]device.CommandBuffer, common.VkResult, error) {
	res, err := p.device.injected(OpAllocateCommandBuffers)
	if err != nil {
		return nil, res, err
	}

	buffers := make([]device.CommandBuffer, 0, count)
	for i := 0; i < count; i++ {
		buffer := &CommandBuffer{pool: p, level: level}
		p.buffers[buffer] = struct{}{}
		buffers = append(buffers, buffer)
	}

	p.device.created(KindCommandBuffer, count)
	return buffers, core1_0.VKSuccess, nil
}

func (p *CommandPool) FreeCommandBuffers(buffers []device.CommandBuffer) {
	for _, buffer := range buffers {
		fake := buffer.(*CommandBuffer)
		if _, owned := p.buffers[fake]; !owned {
			panic(errors.AssertionFailedf("command buffer freed to a pool that does not own it"))
		}
		delete(p.buffers, fake)
		p.device.destroyed(KindCommandBuffer, 1)
	}
}

func (p *CommandPool) Reset(flags core1_0.CommandPoolResetFlags) (common.VkResult, error) {
	p.ResetCount++
	for buffer := range p.buffers {
		buffer.recording = false
		buffer.Commands = nil
	}
	return core1_0.VKSuccess, nil
}

// Destroy panics if buffers allocated from the pool are still outstanding, so that tests catch
// any pool torn down underneath live command buffers
func (p *CommandPool) Destroy() {
	if len(p.buffers) > 0 {
		panic(errors.AssertionFailedf("command pool for family %d destroyed with %d outstanding buffers", p.family.Index, len(p.buffers)))
	}
	p.device.destroyed(KindCommandPool, 1)
}

// CopyCommand is a recorded CmdCopyBuffer
type CopyCommand struct {
	Src     *Buffer
	Dst     *Buffer
	Regions []core1_0.BufferCopy
}

// BindCommand is a recorded CmdBindDescriptorSets
type BindCommand struct {
	BindPoint core1_0.PipelineBindPoint
	Layout    device.PipelineLayout
	FirstSet  int
	Sets      []device.DescriptorSet
}

// PushCommand is a recorded CmdPushConstants
type PushCommand struct {
	Layout device.PipelineLayout
	Stages core1_0.ShaderStageFlags
	Offset int
	Data   []byte
}

type CommandBuffer struct {
	pool      *CommandPool
	level     core1_0.CommandBufferLevel
	recording bool

	// Commands holds the commands recorded since the last Begin: *CopyCommand, *BindCommand or
	// *PushCommand values
	Commands []any
}

func (c *CommandBuffer) Recording() bool {
	return c.recording
}

func (c *CommandBuffer) Pool() *CommandPool {
	return c.pool
}

func (c *CommandBuffer) Begin(flags core1_0.CommandBufferUsageFlags) (common.VkResult, error) {
	res, err := c.pool.device.injected(OpBegin)
	if err != nil {
		return res, err
	}

	if c.recording {
		return core1_0.VKErrorUnknown, errors.New("command buffer is already recording")
	}
	c.recording = true
	c.Commands = nil
	return core1_0.VKSuccess, nil
}

func (c *CommandBuffer) End() (common.VkResult, error) {
	if !c.recording {
		return core1_0.VKErrorUnknown, errors.New("command buffer is not recording")
	}
	c.recording = false
	return core1_0.VKSuccess, nil
}

func (c *CommandBuffer) Reset(flags core1_0.CommandBufferResetFlags) (common.VkResult, error) {
	c.recording = false
	c.Commands = nil
	return core1_0.VKSuccess, nil
}

func (c *CommandBuffer) CmdCopyBuffer(src device.Buffer, dst device.Buffer, regions []core1_0.BufferCopy) error {
	if !c.recording {
		return errors.New("command recorded outside of Begin/End")
	}

	srcBuffer, srcOK := src.(*Buffer)
	dstBuffer, dstOK := dst.(*Buffer)
	if !srcOK || !dstOK {
		return errors.New("buffers were not created by this device")
	}

	for _, region := range regions {
		if region.SrcOffset+region.Size > srcBuffer.Size() || region.DstOffset+region.Size > dstBuffer.Size() {
			return errors.Newf("copy region %+v is out of bounds", region)
		}
	}

	c.Commands = append(c.Commands, &CopyCommand{Src: srcBuffer, Dst: dstBuffer, Regions: append([]core1_0.BufferCopy(nil), regions...)})
	return nil
}

func (c *CommandBuffer) CmdBindDescriptorSets(bindPoint core1_0.PipelineBindPoint, layout device.PipelineLayout, firstSet int, sets []device.DescriptorSet) {
	c.Commands = append(c.Commands, &BindCommand{BindPoint: bindPoint, Layout: layout, FirstSet: firstSet, Sets: sets})
}

func (c *CommandBuffer) CmdPushConstants(layout device.PipelineLayout, stages core1_0.ShaderStageFlags, offset int, data []byte) {
	c.Commands = append(c.Commands, &PushCommand{Layout: layout, Stages: stages, Offset: offset, Data: append([]byte(nil), data...)})
}

// Copies returns the recorded copy commands
func (c *CommandBuffer) Copies() []*CopyCommand {
	var copies []*CopyCommand
	for _, command := range c.Commands {
		if copyCommand, ok := command.(*CopyCommand); ok {
			copies = append(copies, copyCommand)
		}
	}
	return copies
}

func (c *CommandBuffer) execute() {
	for _, copyCommand := range c.Copies() {
		for _, region := range copyCommand.Regions {
			copy(copyCommand.Dst.data[region.DstOffset:region.DstOffset+region.Size],
				copyCommand.Src.data[region.SrcOffset:region.SrcOffset+region.Size])
		}
	}
}
