package encoder

import (
	"bytes"
	"io"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/quartermaster/device"
	"github.com/vkngwrapper/quartermaster/device/devicetest"
	"github.com/vkngwrapper/quartermaster/device/mocks"
	"go.uber.org/mock/gomock"
	"golang.org/x/exp/slog"
)

var (
	graphicsFamily = device.QueueFamily{Index: 0, Flags: core1_0.QueueGraphics | core1_0.QueueCompute | core1_0.QueueTransfer, QueueCount: 1}
	computeFamily  = device.QueueFamily{Index: 2, Flags: core1_0.QueueCompute, QueueCount: 1}
)

func readyAllocator(t *testing.T, output io.Writer) (*devicetest.Device, *Allocator) {
	dev := devicetest.NewDevice()
	logger := slog.New(slog.NewJSONHandler(output, nil))

	allocator, err := New(logger, dev, CreateOptions{})
	require.NoError(t, err)

	return dev, allocator
}

func TestPoolsCreatedLazily(t *testing.T) {
	dev, allocator := readyAllocator(t, io.Discard)
	graphics := devicetest.NewQueue(dev, graphicsFamily)

	require.Equal(t, 0, allocator.PoolCount())
	require.Equal(t, 0, dev.Live(devicetest.KindCommandPool))

	first, _, err := allocator.Allocate(graphics)
	require.NoError(t, err)
	second, _, err := allocator.Allocate(graphics)
	require.NoError(t, err)

	require.Equal(t, 1, allocator.PoolCount())
	require.Equal(t, 2, allocator.Outstanding(graphicsFamily.Index))
	require.Same(t, first.CommandBuffer().(*devicetest.CommandBuffer).Pool(), second.CommandBuffer().(*devicetest.CommandBuffer).Pool())
	require.NotZero(t, first.CommandBuffer().(*devicetest.CommandBuffer).Pool().Flags()&core1_0.CommandPoolCreateResetBuffer)

	require.NoError(t, allocator.Free(first))
	require.NoError(t, allocator.Free(second))
	require.Equal(t, 0, allocator.Outstanding(graphicsFamily.Index))

	allocator.Destroy()
	require.Equal(t, 0, dev.LiveObjects())
}

func TestPoolCleanupAcrossFamilies(t *testing.T) {
	dev, allocator := readyAllocator(t, io.Discard)
	graphics := devicetest.NewQueue(dev, graphicsFamily)
	compute := devicetest.NewQueue(dev, computeFamily)

	var kept []*Encoder
	for i := 0; i < 10; i++ {
		queue := graphics
		if i%2 == 1 {
			queue = compute
		}

		encoder, _, err := allocator.Allocate(queue)
		require.NoError(t, err)

		if i%3 == 0 {
			require.NoError(t, allocator.Free(encoder))
		} else {
			kept = append(kept, encoder)
		}
	}

	require.Equal(t, 2, dev.Live(devicetest.KindCommandPool))
	require.Equal(t, len(kept), dev.Live(devicetest.KindCommandBuffer))
	require.Equal(t, len(kept), allocator.Outstanding(graphicsFamily.Index)+allocator.Outstanding(computeFamily.Index))

	// The fake pool panics if destroyed while it still owns buffers
	require.NotPanics(t, allocator.Destroy)
	require.Equal(t, 0, dev.LiveObjects())

	for _, encoder := range kept {
		require.True(t, encoder.Freed())
		require.True(t, errors.Is(allocator.Free(encoder), ErrEncoderFreed))
	}

	_, _, err := allocator.Allocate(graphics)
	require.True(t, errors.Is(err, ErrAllocatorDestroyed))
}

func TestDestroyFreesBeforeDestroyingPool(t *testing.T) {
	ctrl := gomock.NewController(t)

	dev := mocks.NewMockDevice(ctrl)
	queue := mocks.NewMockQueue(ctrl)
	pool := mocks.NewMockCommandPool(ctrl)
	commandBuffer := mocks.NewMockCommandBuffer(ctrl)

	queue.EXPECT().Family().Return(graphicsFamily).AnyTimes()
	dev.EXPECT().CreateCommandPool(graphicsFamily, core1_0.CommandPoolCreateResetBuffer).Return(pool, core1_0.VKSuccess, nil).Times(1)
	pool.EXPECT().AllocateCommandBuffers(core1_0.CommandBufferLevelPrimary, 1).Return([]device.CommandBuffer{commandBuffer}, core1_0.VKSuccess, nil)

	allocator, err := New(slog.New(slog.NewJSONHandler(io.Discard, nil)), dev, CreateOptions{})
	require.NoError(t, err)

	_, _, err = allocator.Allocate(queue)
	require.NoError(t, err)

	gomock.InOrder(
		pool.EXPECT().FreeCommandBuffers([]device.CommandBuffer{commandBuffer}),
		pool.EXPECT().Destroy(),
	)
	allocator.Destroy()

	// Destroy is idempotent
	allocator.Destroy()
}

func TestAllocatePoolCreationFailure(t *testing.T) {
	dev, allocator := readyAllocator(t, io.Discard)
	graphics := devicetest.NewQueue(dev, graphicsFamily)

	dev.FailNext(devicetest.OpCreateCommandPool, core1_0.VKErrorOutOfHostMemory)
	_, res, err := allocator.Allocate(graphics)
	require.Error(t, err)
	require.Equal(t, core1_0.VKErrorOutOfHostMemory, res)
	require.Equal(t, device.ClassDevice, device.Classify(res))
	require.Equal(t, 0, allocator.PoolCount())

	encoder, _, err := allocator.Allocate(graphics)
	require.NoError(t, err)
	require.NoError(t, allocator.Free(encoder))
	allocator.Destroy()
}

func TestFreeForeignEncoder(t *testing.T) {
	dev, first := readyAllocator(t, io.Discard)
	second, err := New(slog.New(slog.NewJSONHandler(io.Discard, nil)), dev, CreateOptions{})
	require.NoError(t, err)

	encoder, _, err := first.Allocate(devicetest.NewQueue(dev, graphicsFamily))
	require.NoError(t, err)

	require.True(t, errors.Is(second.Free(encoder), ErrForeignEncoder))
	require.Equal(t, 1, first.Outstanding(graphicsFamily.Index))

	first.Destroy()
	second.Destroy()
	require.Equal(t, 0, dev.LiveObjects())
}

func TestFreeWhileRecordingIsLogged(t *testing.T) {
	var logs bytes.Buffer
	dev, allocator := readyAllocator(t, &logs)

	encoder, _, err := allocator.Allocate(devicetest.NewQueue(dev, graphicsFamily))
	require.NoError(t, err)

	_, err = encoder.Begin(core1_0.CommandBufferUsageOneTimeSubmit)
	require.NoError(t, err)

	require.NoError(t, allocator.Free(encoder))
	require.Contains(t, logs.String(), "[ENCODER STILL RECORDING]")
	require.False(t, encoder.Recording())

	allocator.Destroy()
	require.Equal(t, 0, dev.LiveObjects())
}
