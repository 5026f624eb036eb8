package encoder

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/quartermaster/device"
	"github.com/vkngwrapper/quartermaster/internal/utils"
	"golang.org/x/exp/slog"
)

var (
	ErrAlreadyRecording   = errors.New("encoder is already recording")
	ErrNotRecording       = errors.New("encoder is not recording")
	ErrEncoderFreed       = errors.New("encoder has already been freed")
	ErrForeignEncoder     = errors.New("encoder was not allocated by this allocator")
	ErrAllocatorDestroyed = errors.New("encoder allocator has been destroyed")
)

type CreateOptions struct {
	// ExternallySynchronized removes the internal mutex. The consumer must guarantee that the
	// allocator is used from one goroutine at a time.
	ExternallySynchronized bool
	// PoolFlags are added to the flags of every command pool. Pools are always created with
	// core1_0.CommandPoolCreateResetBuffer so that encoders can be reset individually.
	PoolFlags core1_0.CommandPoolCreateFlags
}

type familyPool struct {
	family      device.QueueFamily
	pool        device.CommandPool
	outstanding *swiss.Map[*Encoder, struct{}]
}

// Allocator owns one command pool per queue family. Pools are created the first time an
// encoder is allocated for their family and live until Destroy.
type Allocator struct {
	logger *slog.Logger
	mutex  utils.OptionalMutex

	device    device.Device
	poolFlags core1_0.CommandPoolCreateFlags
	pools     *swiss.Map[int, *familyPool]
	destroyed bool
}

func New(logger *slog.Logger, dev device.Device, options CreateOptions) (*Allocator, error) {
	if logger == nil {
		return nil, errors.New("attempted to create an encoder allocator without a logger")
	}
	if dev == nil {
		return nil, errors.New("attempted to create an encoder allocator without a device")
	}

	return &Allocator{
		logger:    logger,
		mutex:     utils.OptionalMutex{UseMutex: !options.ExternallySynchronized},
		device:    dev,
		poolFlags: options.PoolFlags | core1_0.CommandPoolCreateResetBuffer,
		pools:     swiss.NewMap[int, *familyPool](4),
	}, nil
}

func (a *Allocator) poolForFamily(family device.QueueFamily) (*familyPool, common.VkResult, error) {
	pool, ok := a.pools.Get(family.Index)
	if ok {
		return pool, core1_0.VKSuccess, nil
	}

	commandPool, res, err := a.device.CreateCommandPool(family, a.poolFlags)
	if err != nil {
		return nil, res, errors.Wrapf(err, "failed to create command pool for queue family %d", family.Index)
	}

	a.logger.Debug("EncoderAllocator::CreatePool", slog.Int("QueueFamily", family.Index))

	pool = &familyPool{
		family:      family,
		pool:        commandPool,
		outstanding: swiss.NewMap[*Encoder, struct{}](8),
	}
	a.pools.Put(family.Index, pool)
	return pool, core1_0.VKSuccess, nil
}

// Allocate creates a primary command buffer from the pool belonging to queue's family and
// wraps it in an idle Encoder
func (a *Allocator) Allocate(queue device.Queue) (*Encoder, common.VkResult, error) {
	if queue == nil {
		return nil, core1_0.VKErrorUnknown, errors.New("attempted to allocate an encoder without a queue")
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	if a.destroyed {
		return nil, core1_0.VKErrorUnknown, ErrAllocatorDestroyed
	}

	family := queue.Family()
	a.logger.Debug("EncoderAllocator::Allocate", slog.Int("QueueFamily", family.Index))

	pool, res, err := a.poolForFamily(family)
	if err != nil {
		return nil, res, err
	}

	buffers, res, err := pool.pool.AllocateCommandBuffers(core1_0.CommandBufferLevelPrimary, 1)
	if err != nil {
		return nil, res, errors.Wrapf(err, "failed to allocate command buffer for queue family %d", family.Index)
	}

	encoder := &Encoder{
		allocator:     a,
		logger:        a.logger,
		queue:         queue,
		commandBuffer: buffers[0],
	}
	pool.outstanding.Put(encoder, struct{}{})

	return encoder, core1_0.VKSuccess, nil
}

// Free returns the encoder's command buffer to its pool. Freeing an encoder that is still
// recording is a caller defect: it is logged and the buffer is freed anyway.
func (a *Allocator) Free(encoder *Encoder) error {
	if encoder == nil {
		return errors.New("attempted to free a nil encoder")
	}
	if encoder.allocator != a {
		return ErrForeignEncoder
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	if encoder.freed {
		return ErrEncoderFreed
	}

	family := encoder.queue.Family()
	pool, ok := a.pools.Get(family.Index)
	if !ok || !pool.outstanding.Has(encoder) {
		return errors.AssertionFailedf("encoder for queue family %d is not tracked as outstanding", family.Index)
	}

	a.logger.Debug("EncoderAllocator::Free", slog.Int("QueueFamily", family.Index))
	a.release(pool, encoder)
	return nil
}

func (a *Allocator) release(pool *familyPool, encoder *Encoder) {
	if encoder.recording {
		a.logger.LogAttrs(context.Background(), slog.LevelWarn, "[ENCODER STILL RECORDING] encoder freed while recording",
			slog.Int("QueueFamily", pool.family.Index),
		)
	}

	pool.pool.FreeCommandBuffers([]device.CommandBuffer{encoder.commandBuffer})
	pool.outstanding.Delete(encoder)

	encoder.freed = true
	encoder.recording = false
	encoder.commandBuffer = nil
}

// Outstanding returns the number of encoders allocated for a queue family and not yet freed
func (a *Allocator) Outstanding(familyIndex int) int {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	pool, ok := a.pools.Get(familyIndex)
	if !ok {
		return 0
	}
	return pool.outstanding.Count()
}

// PoolCount returns the number of command pools the allocator has created
func (a *Allocator) PoolCount() int {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.pools.Count()
}

// Destroy force-frees every outstanding encoder and then destroys every command pool. No pool
// is destroyed while it still owns command buffers.
func (a *Allocator) Destroy() {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	if a.destroyed {
		return
	}

	a.pools.Iter(func(familyIndex int, pool *familyPool) bool {
		if count := pool.outstanding.Count(); count > 0 {
			a.logger.LogAttrs(context.Background(), slog.LevelWarn, "[UNRELEASED ENCODERS] force-freeing encoders at shutdown",
				slog.Int("QueueFamily", familyIndex),
				slog.Int("Count", count),
			)
		}

		var encoders []*Encoder
		pool.outstanding.Iter(func(encoder *Encoder, _ struct{}) bool {
			encoders = append(encoders, encoder)
			return false
		})
		for _, encoder := range encoders {
			a.release(pool, encoder)
		}

		pool.pool.Destroy()
		return false
	})

	a.pools.Clear()
	a.destroyed = true
}
