package transfer

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/quartermaster/device"
	"github.com/vkngwrapper/quartermaster/internal/utils"
	"golang.org/x/exp/slog"
)

// DefaultFenceTimeout bounds the fence wait inside ImmediateSubmit when CreateOptions does not
// provide one
const DefaultFenceTimeout = 9999999999 * time.Nanosecond

// ErrContextLost is returned by every ImmediateSubmit after a previous submission timed out,
// reported device loss, or failed after the device accepted it. It is additionally marked with
// device.ErrDeviceLost when the cause was a sync-class result.
var ErrContextLost = errors.New("transfer context is unusable after a failed submission")

var ErrContextDestroyed = errors.New("transfer context has been destroyed")

type CreateOptions struct {
	// FenceTimeout bounds the wait for a submission to complete. Exceeding it is treated as
	// device loss.
	FenceTimeout time.Duration
	// ExternallySynchronized removes the internal mutex. The consumer must guarantee that only
	// one goroutine submits at a time.
	ExternallySynchronized bool
}

// RecordFunc records commands into the context's command buffer. Returning an error aborts the
// submission.
type RecordFunc func(commandBuffer device.CommandBuffer) error

// Context owns a command buffer and fence dedicated to synchronous out-of-band submissions.
// Concurrent callers of ImmediateSubmit queue up on the context's mutex.
type Context struct {
	logger *slog.Logger
	mutex  utils.OptionalMutex

	queue         device.Queue
	pool          device.CommandPool
	commandBuffer device.CommandBuffer
	fence         device.Fence
	timeout       time.Duration

	lost       bool
	deviceLost bool
}

// New creates a transfer context that submits to queue
func New(logger *slog.Logger, dev device.Device, queue device.Queue, options CreateOptions) (*Context, common.VkResult, error) {
	if logger == nil {
		return nil, core1_0.VKErrorUnknown, errors.New("attempted to create a transfer context without a logger")
	}
	if queue == nil {
		return nil, core1_0.VKErrorUnknown, errors.New("attempted to create a transfer context without a queue")
	}

	timeout := options.FenceTimeout
	if timeout <= 0 {
		timeout = DefaultFenceTimeout
	}

	pool, res, err := dev.CreateCommandPool(queue.Family(), core1_0.CommandPoolCreateResetBuffer)
	if err != nil {
		return nil, res, errors.Wrap(err, "failed to create transfer command pool")
	}

	buffers, res, err := pool.AllocateCommandBuffers(core1_0.CommandBufferLevelPrimary, 1)
	if err != nil {
		pool.Destroy()
		return nil, res, errors.Wrap(err, "failed to allocate transfer command buffer")
	}

	fence, res, err := dev.CreateFence(false)
	if err != nil {
		pool.FreeCommandBuffers(buffers)
		pool.Destroy()
		return nil, res, errors.Wrap(err, "failed to create transfer fence")
	}

	return &Context{
		logger:        logger,
		mutex:         utils.OptionalMutex{UseMutex: !options.ExternallySynchronized},
		queue:         queue,
		pool:          pool,
		commandBuffer: buffers[0],
		fence:         fence,
		timeout:       timeout,
	}, core1_0.VKSuccess, nil
}

func (c *Context) Queue() device.Queue {
	return c.queue
}

// ImmediateSubmit records commands with record, submits them and blocks until the device
// signals completion. The command pool is reset before it returns whether or not recording
// succeeded. Once the queue has accepted the submission, any failure to wait on or reset the
// fence leaves the fence and command buffer in an unknown state, so the context refuses
// further work. A fence wait that times out or reports device loss is additionally marked
// with device.ErrDeviceLost.
func (c *Context) ImmediateSubmit(record RecordFunc) (common.VkResult, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.logger.Debug("TransferContext::ImmediateSubmit", slog.Int("QueueFamily", c.queue.Family().Index))

	if c.lost {
		if c.deviceLost {
			return core1_0.VKErrorDeviceLost, errors.Mark(ErrContextLost, device.ErrDeviceLost)
		}
		return core1_0.VKErrorUnknown, ErrContextLost
	}
	if c.commandBuffer == nil {
		return core1_0.VKErrorUnknown, ErrContextDestroyed
	}

	res, err := c.commandBuffer.Begin(core1_0.CommandBufferUsageOneTimeSubmit)
	if err != nil {
		return res, c.fail(res, errors.Wrap(err, "failed to begin transfer command buffer"))
	}

	recordErr := record(c.commandBuffer)

	res, err = c.commandBuffer.End()
	if recordErr != nil {
		c.resetPool()
		return core1_0.VKErrorUnknown, errors.Wrap(recordErr, "failed to record transfer commands")
	}
	if err != nil {
		c.resetPool()
		return res, c.fail(res, errors.Wrap(err, "failed to end transfer command buffer"))
	}

	res, err = c.queue.Submit(c.fence, []device.CommandBuffer{c.commandBuffer})
	if err != nil {
		c.resetPool()
		return res, c.fail(res, errors.Wrap(err, "failed to submit transfer commands"))
	}

	res, err = c.fence.Wait(c.timeout)
	if err == nil && res == core1_0.VKTimeout {
		err = errors.Newf("fence wait returned %v", res)
	}
	if err != nil {
		return res, c.abandon(res, errors.Wrapf(err, "transfer fence did not signal within %s", c.timeout))
	}

	res, err = c.fence.Reset()
	if err != nil {
		return res, c.abandon(res, errors.Wrap(err, "failed to reset transfer fence"))
	}

	res, err = c.pool.Reset(0)
	if err != nil {
		return res, c.abandon(res, errors.Wrap(err, "failed to reset transfer command pool"))
	}

	return core1_0.VKSuccess, nil
}

func (c *Context) resetPool() {
	_, err := c.pool.Reset(0)
	if err != nil {
		c.logger.Error("failed to reset transfer command pool", slog.Any("error", err))
	}
}

// fail marks the context lost if res is a sync-class result
func (c *Context) fail(res common.VkResult, err error) error {
	if device.Classify(res) != device.ClassSync {
		return err
	}

	c.lost = true
	c.deviceLost = true
	c.logger.Error("[TRANSFER DEVICE LOST]",
		slog.Int("QueueFamily", c.queue.Family().Index),
		slog.Duration("Timeout", c.timeout),
		slog.Any("error", err),
	)
	return errors.Mark(err, device.ErrDeviceLost)
}

// abandon handles a failure after the queue accepted the submission. The fence may still be
// signaled and the command buffer may still be pending, so neither can be reused.
func (c *Context) abandon(res common.VkResult, err error) error {
	if device.Classify(res) == device.ClassSync {
		return c.fail(res, err)
	}

	c.lost = true
	c.logger.Error("[TRANSFER CONTEXT ABANDONED]",
		slog.Int("QueueFamily", c.queue.Family().Index),
		slog.Any("Result", res),
		slog.Any("error", err),
	)
	return err
}

// Destroy frees the command buffer, pool and fence. The caller must ensure no ImmediateSubmit
// is in progress. Calling it again has no effect.
func (c *Context) Destroy() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.commandBuffer == nil {
		return
	}

	c.pool.FreeCommandBuffers([]device.CommandBuffer{c.commandBuffer})
	c.pool.Destroy()
	c.fence.Destroy()
	c.commandBuffer = nil
}
