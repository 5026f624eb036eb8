package vulkan

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/quartermaster/device"
)

type queue struct {
	family device.QueueFamily
	queue  core1_0.Queue
}

func (q *queue) Family() device.QueueFamily {
	return q.family
}

func (q *queue) Submit(fence device.Fence, commandBuffers []device.CommandBuffer) (common.VkResult, error) {
	buffers := make([]core1_0.CommandBuffer, 0, len(commandBuffers))
	for _, buffer := range commandBuffers {
		wrapped, ok := buffer.(*commandBuffer)
		if !ok {
			return core1_0.VKErrorUnknown, errors.Newf("command buffer %T was not created by this adapter", buffer)
		}
		buffers = append(buffers, wrapped.buffer)
	}

	var nativeFence core1_0.Fence
	if fence != nil {
		wrapped, ok := fence.(*syncFence)
		if !ok {
			return core1_0.VKErrorUnknown, errors.Newf("fence %T was not created by this adapter", fence)
		}
		nativeFence = wrapped.fence
	}

	return q.queue.Submit(nativeFence, []core1_0.SubmitInfo{
		{CommandBuffers: buffers},
	})
}

func (q *queue) WaitIdle() (common.VkResult, error) {
	return q.queue.WaitIdle()
}

type syncFence struct {
	device *Device
	fence  core1_0.Fence
}

func (f *syncFence) Wait(timeout time.Duration) (common.VkResult, error) {
	return f.device.device.WaitForFences(true, timeout, []core1_0.Fence{f.fence})
}

func (f *syncFence) Reset() (common.VkResult, error) {
	return f.device.device.ResetFences([]core1_0.Fence{f.fence})
}

func (f *syncFence) Destroy() {
	f.fence.Destroy(f.device.allocationCallbacks)
}
