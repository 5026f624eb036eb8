package device

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/core1_1"
)

func TestQueueFamilyCapabilities(t *testing.T) {
	graphics := QueueFamily{Index: 0, Flags: core1_0.QueueGraphics | core1_0.QueueCompute | core1_0.QueueTransfer, SupportsPresent: true}
	transfer := QueueFamily{Index: 1, Flags: core1_0.QueueTransfer | core1_0.QueueSparseBinding}
	compute := QueueFamily{Index: 2, Flags: core1_0.QueueCompute}

	require.True(t, graphics.SupportsGraphics())
	require.True(t, graphics.SupportsTransfer())
	require.False(t, graphics.IsDedicatedTransfer())

	require.False(t, transfer.SupportsGraphics())
	require.True(t, transfer.SupportsSparseBinding())
	require.True(t, transfer.IsDedicatedTransfer())

	require.True(t, compute.SupportsTransfer())
	require.False(t, compute.SupportsPresent)
}

func TestSelectFamily(t *testing.T) {
	families := []QueueFamily{
		{Index: 0, Flags: core1_0.QueueGraphics | core1_0.QueueCompute | core1_0.QueueTransfer},
		{Index: 1, Flags: core1_0.QueueCompute | core1_0.QueueTransfer},
		{Index: 2, Flags: core1_0.QueueTransfer},
	}

	testCases := map[string]struct {
		Families []QueueFamily
		Role     QueueRole
		Index    int
		Found    bool
	}{
		"GraphicsFirst":       {Families: families, Role: QueueRoleGraphics, Index: 0, Found: true},
		"DedicatedCompute":    {Families: families, Role: QueueRoleCompute, Index: 1, Found: true},
		"DedicatedTransfer":   {Families: families, Role: QueueRoleTransfer, Index: 2, Found: true},
		"TransferFallback":    {Families: families[:1], Role: QueueRoleTransfer, Index: 0, Found: true},
		"NoGraphicsAvailable": {Families: families[1:], Role: QueueRoleGraphics, Found: false},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			family, found := SelectFamily(testCase.Families, testCase.Role)
			require.Equal(t, testCase.Found, found)
			if found {
				require.Equal(t, testCase.Index, family.Index)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	require.Equal(t, ClassSuccess, Classify(core1_0.VKSuccess))
	require.Equal(t, ClassDevice, Classify(core1_0.VKErrorOutOfDeviceMemory))
	require.Equal(t, ClassDevice, Classify(core1_1.VkErrorOutOfPoolMemory))
	require.Equal(t, ClassSync, Classify(core1_0.VKTimeout))
	require.Equal(t, ClassOther, Classify(core1_0.VKErrorInitializationFailed))

	require.True(t, IsPoolExhausted(core1_0.VKErrorFragmentedPool))
	require.True(t, IsPoolExhausted(core1_1.VkErrorOutOfPoolMemory))
	require.False(t, IsPoolExhausted(core1_0.VKErrorOutOfHostMemory))

	require.NoError(t, ResultError(core1_0.VKSuccess))
	require.True(t, errors.Is(ResultError(core1_0.VKTimeout), ErrDeviceLost))
	require.False(t, errors.Is(ResultError(core1_0.VKErrorOutOfHostMemory), ErrDeviceLost))
}
