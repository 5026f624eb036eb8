package megabuffer

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/quartermaster/device/devicetest"
	"github.com/vkngwrapper/quartermaster/memutils"
)

func TestRegistrySequentialIDs(t *testing.T) {
	setup := readyRegistry(t, io.Discard)

	first := setup.create(t, 64, 4)
	second := setup.create(t, 64, 4)
	require.Equal(t, ID(1), first.ID())
	require.Equal(t, ID(2), second.ID())

	require.NoError(t, first.Destroy())
	third := setup.create(t, 64, 4)
	require.Equal(t, ID(3), third.ID())
	require.Equal(t, 2, setup.Registry.Count())

	found, ok := setup.Registry.Get(second.ID())
	require.True(t, ok)
	require.Same(t, second, found)

	_, ok = setup.Registry.Get(first.ID())
	require.False(t, ok)

	setup.teardown(t)
}

func TestRegistryDestroyReportsLeaks(t *testing.T) {
	setup := readyRegistry(t, io.Discard)
	clean := setup.create(t, 64, 4)
	leaky := setup.create(t, 64, 4)

	region, err := leaky.AllocateRegion(4)
	require.NoError(t, err)

	require.Error(t, setup.Registry.Destroy())
	_, ok := setup.Registry.Get(clean.ID())
	require.False(t, ok)
	_, ok = setup.Registry.Get(leaky.ID())
	require.True(t, ok)

	require.NoError(t, region.Release())
	setup.teardown(t)
}

func TestCreateInfoValidate(t *testing.T) {
	testCases := map[string]struct {
		Info    CreateInfo
		Pow2Err bool
		Valid   bool
	}{
		"Valid":             {Info: CreateInfo{Capacity: 1024, Alignment: 16}, Valid: true},
		"DefaultVertex":     {Info: VertexCreateInfo(), Valid: true},
		"DefaultIndex":      {Info: IndexCreateInfo(), Valid: true},
		"ZeroCapacity":      {Info: CreateInfo{Capacity: 0, Alignment: 16}},
		"NonPow2Alignment":  {Info: CreateInfo{Capacity: 1200, Alignment: 12}, Pow2Err: true},
		"ZeroAlignment":     {Info: CreateInfo{Capacity: 1024, Alignment: 0}, Pow2Err: true},
		"UnalignedCapacity": {Info: CreateInfo{Capacity: 1000, Alignment: 16}},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			err := testCase.Info.Validate()
			if testCase.Valid {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			require.Equal(t, testCase.Pow2Err, errors.Is(err, memutils.PowerOfTwoError))
		})
	}
}

func TestCreateFailureLeavesNothingBehind(t *testing.T) {
	setup := readyRegistry(t, io.Discard)
	live := setup.Device.LiveObjects()

	setup.Device.FailNext(devicetest.OpCreateBuffer, core1_0.VKSuccess)
	setup.Device.FailNext(devicetest.OpCreateBuffer, core1_0.VKErrorOutOfDeviceMemory)

	// The first queued result is a success, so the device buffer is created and the staging
	// buffer fails
	_, res, err := setup.Registry.Create(CreateInfo{Name: "Fails", Capacity: 64, Alignment: 4})
	require.Error(t, err)
	require.Equal(t, core1_0.VKErrorOutOfDeviceMemory, res)
	require.Equal(t, live, setup.Device.LiveObjects())
	require.Equal(t, 0, setup.Registry.Count())

	_, _, err = setup.Registry.Create(CreateInfo{Name: "Invalid", Capacity: 64, Alignment: 3})
	require.True(t, errors.Is(err, memutils.PowerOfTwoError))

	setup.teardown(t)
}

func TestBuildStatsString(t *testing.T) {
	setup := readyRegistry(t, io.Discard)
	megabuffer := setup.create(t, 100, 1)

	region, err := megabuffer.AllocateRegion(40)
	require.NoError(t, err)

	var stats struct {
		Total struct {
			BufferCount   int
			RegionCount   int
			CapacityBytes int
			RegionBytes   int
		}
		Megabuffers map[string]struct {
			Name   string
			Ranges []struct {
				Offset int
				Size   int
				Type   string
			}
		}
	}
	require.NoError(t, json.Unmarshal([]byte(setup.Registry.BuildStatsString(true)), &stats))

	require.Equal(t, 1, stats.Total.BufferCount)
	require.Equal(t, 1, stats.Total.RegionCount)
	require.Equal(t, 100, stats.Total.CapacityBytes)
	require.Equal(t, 40, stats.Total.RegionBytes)

	entry, ok := stats.Megabuffers["1"]
	require.True(t, ok)
	require.Equal(t, "Test", entry.Name)
	require.Len(t, entry.Ranges, 2)
	require.Equal(t, "REGION", entry.Ranges[0].Type)
	require.Equal(t, "FREE", entry.Ranges[1].Type)
	require.Equal(t, 40, entry.Ranges[1].Offset)

	require.NoError(t, region.Release())
	setup.teardown(t)
}
