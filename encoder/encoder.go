package encoder

import (
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/quartermaster/device"
	"golang.org/x/exp/slog"
)

// Encoder is a recording context around one command buffer. It moves from idle to recording
// with Begin and back with End. An Encoder is owned by a single caller and is not safe for
// concurrent use.
type Encoder struct {
	allocator *Allocator
	logger    *slog.Logger

	queue         device.Queue
	commandBuffer device.CommandBuffer
	recording     bool
	freed         bool
}

func (e *Encoder) Queue() device.Queue {
	return e.queue
}

// CommandBuffer returns the underlying command buffer, or nil once the encoder has been freed
func (e *Encoder) CommandBuffer() device.CommandBuffer {
	return e.commandBuffer
}

func (e *Encoder) Recording() bool {
	return e.recording
}

func (e *Encoder) Freed() bool {
	return e.freed
}

// Begin starts recording. It fails with ErrAlreadyRecording if the encoder is recording.
func (e *Encoder) Begin(flags core1_0.CommandBufferUsageFlags) (common.VkResult, error) {
	if e.freed {
		return core1_0.VKErrorUnknown, ErrEncoderFreed
	}
	if e.recording {
		return core1_0.VKErrorUnknown, ErrAlreadyRecording
	}

	res, err := e.commandBuffer.Begin(flags)
	if err != nil {
		return res, err
	}

	e.recording = true
	return res, nil
}

// End finishes recording. It fails with ErrNotRecording if the encoder is idle.
func (e *Encoder) End() (common.VkResult, error) {
	if e.freed {
		return core1_0.VKErrorUnknown, ErrEncoderFreed
	}
	if !e.recording {
		return core1_0.VKErrorUnknown, ErrNotRecording
	}

	res, err := e.commandBuffer.End()
	e.recording = false
	return res, err
}

// Reset discards recorded commands and returns the encoder to idle
func (e *Encoder) Reset() (common.VkResult, error) {
	if e.freed {
		return core1_0.VKErrorUnknown, ErrEncoderFreed
	}

	e.recording = false
	return e.commandBuffer.Reset(0)
}

// Submit submits the recorded commands to the encoder's queue, signaling fence on completion.
// fence may be nil.
func (e *Encoder) Submit(fence device.Fence) (common.VkResult, error) {
	if e.freed {
		return core1_0.VKErrorUnknown, ErrEncoderFreed
	}
	if e.recording {
		return core1_0.VKErrorUnknown, ErrAlreadyRecording
	}

	e.logger.Debug("Encoder::Submit", slog.Int("QueueFamily", e.queue.Family().Index))
	return e.queue.Submit(fence, []device.CommandBuffer{e.commandBuffer})
}
