package megabuffer

import (
	"bytes"
	"io"
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/quartermaster/device"
	"github.com/vkngwrapper/quartermaster/device/devicetest"
	"github.com/vkngwrapper/quartermaster/memutils"
	"github.com/vkngwrapper/quartermaster/transfer"
	"golang.org/x/exp/slog"
)

var transferFamily = device.QueueFamily{Index: 0, Flags: core1_0.QueueGraphics | core1_0.QueueTransfer, QueueCount: 1}

type testSetup struct {
	Device   *devicetest.Device
	Transfer *transfer.Context
	Registry *Registry
}

func readyRegistry(t *testing.T, output io.Writer) *testSetup {
	dev := devicetest.NewDevice()
	logger := slog.New(slog.NewJSONHandler(output, nil))

	transferContext, _, err := transfer.New(logger, dev, devicetest.NewQueue(dev, transferFamily), transfer.CreateOptions{})
	require.NoError(t, err)

	registry, err := NewRegistry(logger, dev, transferContext, RegistryOptions{})
	require.NoError(t, err)

	return &testSetup{Device: dev, Transfer: transferContext, Registry: registry}
}

func (s *testSetup) create(t *testing.T, capacity, alignment int) *Megabuffer {
	megabuffer, _, err := s.Registry.Create(CreateInfo{Name: "Test", Capacity: capacity, Alignment: alignment})
	require.NoError(t, err)
	return megabuffer
}

func (s *testSetup) teardown(t *testing.T) {
	require.NoError(t, s.Registry.Destroy())
	s.Transfer.Destroy()
	require.Equal(t, 0, s.Device.LiveObjects())
}

func freeList(m *Megabuffer) []freeRegion {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return append([]freeRegion(nil), m.freeRegions...)
}

func TestAllocateRegionAlignment(t *testing.T) {
	testCases := map[string]struct {
		Alignment int
		Sizes     []int
		Offsets   []int
		Sizes2    []int
	}{
		"AlignmentOne": {
			Alignment: 1,
			Sizes:     []int{3, 5, 7},
			Offsets:   []int{0, 3, 8},
			Sizes2:    []int{3, 5, 7},
		},
		"AlignmentSixteen": {
			Alignment: 16,
			Sizes:     []int{1, 16, 17},
			Offsets:   []int{0, 16, 32},
			Sizes2:    []int{16, 16, 32},
		},
		"AlignmentTwoFiftySix": {
			Alignment: 256,
			Sizes:     []int{100, 300},
			Offsets:   []int{0, 256},
			Sizes2:    []int{256, 512},
		},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			setup := readyRegistry(t, io.Discard)
			megabuffer := setup.create(t, 4096, testCase.Alignment)

			var regions []*Region
			for i, size := range testCase.Sizes {
				region, err := megabuffer.AllocateRegion(size)
				require.NoError(t, err)
				require.Equal(t, testCase.Offsets[i], region.Offset())
				require.Equal(t, testCase.Sizes2[i], region.Size())
				require.Zero(t, region.Offset()%testCase.Alignment)
				regions = append(regions, region)
			}

			for _, region := range regions {
				require.NoError(t, region.Release())
			}
			setup.teardown(t)
		})
	}
}

func TestAllocateRegionInvalidSize(t *testing.T) {
	setup := readyRegistry(t, io.Discard)
	megabuffer := setup.create(t, 64, 4)

	_, err := megabuffer.AllocateRegion(0)
	require.True(t, errors.Is(err, ErrInvalidSize))
	_, err = megabuffer.AllocateRegion(-4)
	require.True(t, errors.Is(err, ErrInvalidSize))

	setup.teardown(t)
}

func TestAllocateRegionLargerThanCapacity(t *testing.T) {
	testCases := map[string]int{
		"JustOverCapacity": 1025,
		"RoundsPastMaxInt": math.MaxInt - 4,
		"MaxInt":           math.MaxInt,
	}

	for name, size := range testCases {
		t.Run(name, func(t *testing.T) {
			setup := readyRegistry(t, io.Discard)
			megabuffer := setup.create(t, 1024, 16)

			region, err := megabuffer.AllocateRegion(size)
			require.Nil(t, region)
			require.True(t, errors.Is(err, ErrOutOfSpace))
			require.Equal(t, []freeRegion{{offset: 0, size: 1024}}, freeList(megabuffer))
			require.NoError(t, megabuffer.ValidateLocked())

			setup.teardown(t)
		})
	}
}

func TestNoOverlapUnderRandomChurn(t *testing.T) {
	setup := readyRegistry(t, io.Discard)
	megabuffer := setup.create(t, 1<<16, 16)

	random := rand.New(rand.NewSource(1))
	var live []*Region

	for step := 0; step < 2000; step++ {
		if len(live) > 0 && random.Intn(3) == 0 {
			index := random.Intn(len(live))
			require.NoError(t, megabuffer.DeallocateRegion(live[index]))
			live = append(live[:index], live[index+1:]...)
		} else {
			region, err := megabuffer.AllocateRegion(1 + random.Intn(2048))
			if err != nil {
				require.True(t, errors.Is(err, ErrOutOfSpace))
			} else {
				require.Zero(t, region.Offset()%16)
				live = append(live, region)
			}
		}

		require.NoError(t, megabuffer.ValidateLocked())
	}

	for _, region := range live {
		require.NoError(t, region.Release())
	}
	require.Equal(t, []freeRegion{{offset: 0, size: 1 << 16}}, freeList(megabuffer))

	setup.teardown(t)
}

func TestCoalescing(t *testing.T) {
	setup := readyRegistry(t, io.Discard)
	megabuffer := setup.create(t, 96, 1)

	a, err := megabuffer.AllocateRegion(32)
	require.NoError(t, err)
	b, err := megabuffer.AllocateRegion(32)
	require.NoError(t, err)
	c, err := megabuffer.AllocateRegion(32)
	require.NoError(t, err)
	require.Empty(t, freeList(megabuffer))

	require.NoError(t, megabuffer.DeallocateRegion(b))
	require.Equal(t, []freeRegion{{offset: 32, size: 32}}, freeList(megabuffer))

	require.NoError(t, megabuffer.DeallocateRegion(a))
	require.Equal(t, []freeRegion{{offset: 0, size: 64}}, freeList(megabuffer))

	require.NoError(t, megabuffer.DeallocateRegion(c))
	require.Equal(t, []freeRegion{{offset: 0, size: 96}}, freeList(megabuffer))

	setup.teardown(t)
}

func TestCoalescingBothNeighbors(t *testing.T) {
	setup := readyRegistry(t, io.Discard)
	megabuffer := setup.create(t, 96, 1)

	a, _ := megabuffer.AllocateRegion(32)
	b, _ := megabuffer.AllocateRegion(32)
	c, _ := megabuffer.AllocateRegion(32)

	require.NoError(t, a.Release())
	require.NoError(t, c.Release())
	require.Equal(t, []freeRegion{{offset: 0, size: 32}, {offset: 64, size: 32}}, freeList(megabuffer))

	require.NoError(t, b.Release())
	require.Equal(t, []freeRegion{{offset: 0, size: 96}}, freeList(megabuffer))

	setup.teardown(t)
}

func TestFragmentationBoundary(t *testing.T) {
	setup := readyRegistry(t, io.Discard)
	megabuffer := setup.create(t, 100, 1)

	first, err := megabuffer.AllocateRegion(40)
	require.NoError(t, err)
	second, err := megabuffer.AllocateRegion(40)
	require.NoError(t, err)
	third, err := megabuffer.AllocateRegion(20)
	require.NoError(t, err)

	require.NoError(t, first.Release())
	require.NoError(t, third.Release())

	stats := megabuffer.Statistics()
	require.Equal(t, 60, stats.FreeBytes())

	_, err = megabuffer.AllocateRegion(50)
	require.True(t, errors.Is(err, ErrOutOfSpace))

	// A failed allocation leaves the free list untouched
	require.Equal(t, []freeRegion{{offset: 0, size: 40}, {offset: 80, size: 20}}, freeList(megabuffer))

	require.NoError(t, second.Release())
	setup.teardown(t)
}

func TestFirstFitOrder(t *testing.T) {
	setup := readyRegistry(t, io.Discard)
	megabuffer := setup.create(t, 100, 1)

	a, _ := megabuffer.AllocateRegion(10)
	b, _ := megabuffer.AllocateRegion(30)
	c, _ := megabuffer.AllocateRegion(60)

	require.NoError(t, a.Release())
	require.NoError(t, c.Release())

	// Both free ranges can hold 8 bytes; the first in list order wins even though the second
	// would be a worse fit
	region, err := megabuffer.AllocateRegion(8)
	require.NoError(t, err)
	require.Equal(t, 0, region.Offset())
	require.Equal(t, []freeRegion{{offset: 8, size: 2}, {offset: 40, size: 60}}, freeList(megabuffer))

	require.NoError(t, region.Release())
	require.NoError(t, b.Release())
	setup.teardown(t)
}

func TestDoubleFreeRejected(t *testing.T) {
	setup := readyRegistry(t, io.Discard)
	megabuffer := setup.create(t, 64, 4)

	region, err := megabuffer.AllocateRegion(16)
	require.NoError(t, err)
	other, err := megabuffer.AllocateRegion(16)
	require.NoError(t, err)

	require.NoError(t, megabuffer.DeallocateRegion(region))
	require.True(t, region.Released())

	before := freeList(megabuffer)
	err = megabuffer.DeallocateRegion(region)
	require.True(t, errors.Is(err, ErrRegionReleased))
	require.Equal(t, before, freeList(megabuffer))
	require.NoError(t, megabuffer.ValidateLocked())

	require.NoError(t, other.Release())
	setup.teardown(t)
}

func TestForeignRegionRejected(t *testing.T) {
	setup := readyRegistry(t, io.Discard)
	first := setup.create(t, 64, 4)
	second := setup.create(t, 64, 4)

	region, err := first.AllocateRegion(16)
	require.NoError(t, err)

	err = second.DeallocateRegion(region)
	require.True(t, errors.Is(err, ErrForeignRegion))
	err = second.Write(region, []byte{1})
	require.True(t, errors.Is(err, ErrForeignRegion))

	require.NoError(t, first.DeallocateRegion(region))
	setup.teardown(t)
}

func TestDefragmentMergesMissedNeighbors(t *testing.T) {
	setup := readyRegistry(t, io.Discard)
	megabuffer := setup.create(t, 64, 4)

	region, err := megabuffer.AllocateRegion(64)
	require.NoError(t, err)
	require.NoError(t, region.Release())

	megabuffer.mutex.Lock()
	megabuffer.freeRegions = []freeRegion{{offset: 32, size: 16}, {offset: 0, size: 16}, {offset: 48, size: 16}, {offset: 16, size: 16}}
	megabuffer.mutex.Unlock()

	require.Equal(t, 3, megabuffer.Defragment())
	require.Equal(t, []freeRegion{{offset: 0, size: 64}}, freeList(megabuffer))
	require.Equal(t, 0, megabuffer.Defragment())

	setup.teardown(t)
}

func TestDestroyWithOutstandingRegions(t *testing.T) {
	var logs bytes.Buffer
	setup := readyRegistry(t, &logs)
	megabuffer := setup.create(t, 64, 4)

	region, err := megabuffer.AllocateRegion(8)
	require.NoError(t, err)

	require.Error(t, megabuffer.Destroy())
	require.Contains(t, logs.String(), "[UNRELEASED REGION]")
	require.Equal(t, 2, setup.Device.Live(devicetest.KindBuffer))

	_, ok := setup.Registry.Get(megabuffer.ID())
	require.True(t, ok)

	require.NoError(t, region.Release())
	require.NoError(t, megabuffer.Destroy())

	_, ok = setup.Registry.Get(megabuffer.ID())
	require.False(t, ok)
	require.True(t, errors.Is(region.Release(), ErrMegabufferDestroyed))

	_, err = megabuffer.AllocateRegion(4)
	require.True(t, errors.Is(err, ErrMegabufferDestroyed))

	setup.teardown(t)
}

func TestConcurrentAllocation(t *testing.T) {
	setup := readyRegistry(t, io.Discard)
	megabuffer := setup.create(t, 1<<20, 16)

	var wg sync.WaitGroup
	for worker := 0; worker < 8; worker++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			random := rand.New(rand.NewSource(seed))

			for i := 0; i < 200; i++ {
				region, err := megabuffer.AllocateRegion(1 + random.Intn(1024))
				if err != nil {
					continue
				}
				_ = megabuffer.Write(region, []byte{byte(seed)})
				_ = region.Release()
			}
		}(int64(worker))
	}
	wg.Wait()

	require.NoError(t, megabuffer.ValidateLocked())
	require.Equal(t, 0, megabuffer.Statistics().RegionCount)
	setup.teardown(t)
}

func TestStatistics(t *testing.T) {
	setup := readyRegistry(t, io.Discard)
	megabuffer := setup.create(t, 100, 1)

	a, _ := megabuffer.AllocateRegion(10)
	b, _ := megabuffer.AllocateRegion(20)

	stats := megabuffer.Statistics()
	require.Equal(t, 1, stats.BufferCount)
	require.Equal(t, 2, stats.RegionCount)
	require.Equal(t, 30, stats.RegionBytes)
	require.Equal(t, 10, stats.RegionSizeMin)
	require.Equal(t, 20, stats.RegionSizeMax)
	require.Equal(t, 1, stats.FreeRangeCount)
	require.Equal(t, 70, stats.LargestFreeRange())

	var total memutils.DetailedStatistics
	setup.Registry.CalculateStatistics(&total)
	require.Equal(t, stats, total)

	require.NoError(t, a.Release())
	require.NoError(t, b.Release())
	setup.teardown(t)
}
