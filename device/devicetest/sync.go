package devicetest

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/quartermaster/device"
)

type Fence struct {
	device   *Device
	signaled bool

	// LastTimeout is the timeout passed to the most recent Wait
	LastTimeout time.Duration
}

func (f *Fence) Signaled() bool {
	return f.signaled
}

func (f *Fence) Wait(timeout time.Duration) (common.VkResult, error) {
	f.LastTimeout = timeout
	res, err := f.device.injected(OpWait)
	if err != nil {
		return res, err
	}

	if !f.signaled {
		return core1_0.VKTimeout, nil
	}
	return core1_0.VKSuccess, nil
}

func (f *Fence) Reset() (common.VkResult, error) {
	f.signaled = false
	return core1_0.VKSuccess, nil
}

func (f *Fence) Destroy() {
	f.device.destroyed(KindFence, 1)
}

// Queue executes submitted command buffers synchronously on the host
type Queue struct {
	device *Device
	family device.QueueFamily
}

var _ device.Queue = &Queue{}

func NewQueue(dev *Device, family device.QueueFamily) *Queue {
	return &Queue{device: dev, family: family}
}

func (q *Queue) Family() device.QueueFamily {
	return q.family
}

func (q *Queue) Submit(fence device.Fence, commandBuffers []device.CommandBuffer) (common.VkResult, error) {
	res, err := q.device.injected(OpSubmit)
	if err != nil {
		return res, err
	}

	for _, commandBuffer := range commandBuffers {
		fake, ok := commandBuffer.(*CommandBuffer)
		if !ok {
			return core1_0.VKErrorUnknown, errors.Newf("command buffer %T was not created by this device", commandBuffer)
		}
		if fake.recording {
			return core1_0.VKErrorUnknown, errors.New("submitted a command buffer that is still recording")
		}
		if fake.pool.family.Index != q.family.Index {
			return core1_0.VKErrorUnknown, errors.Newf("command buffer from family %d submitted to family %d", fake.pool.family.Index, q.family.Index)
		}
		fake.execute()
	}

	if fence != nil {
		fence.(*Fence).signaled = true
	}

	q.device.mutex.Lock()
	q.device.SubmitCount++
	q.device.mutex.Unlock()

	return core1_0.VKSuccess, nil
}

func (q *Queue) WaitIdle() (common.VkResult, error) {
	return core1_0.VKSuccess, nil
}
