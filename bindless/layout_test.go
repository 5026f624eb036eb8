package bindless

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/core1_2"
)

func TestDefaultLayoutBuild(t *testing.T) {
	layout, err := DefaultLayoutConfig().Build()
	require.NoError(t, err)

	require.Len(t, layout.Tables(), 5)
	require.Equal(t, DefaultSetsPerPool, layout.setsPerPool)
	require.Equal(t, DefaultInitialVariableCount, layout.initialVariableCount)
	require.Equal(t, PerDrawDataSize, layout.PushConstantSize())
	require.Equal(t, TextureBinding, layout.variableBinding)

	require.Equal(t, DefaultBufferCapacity, layout.Capacity(UniformBuffer))
	require.Equal(t, DefaultBufferCapacity, layout.Capacity(StorageBuffer))
	require.Equal(t, DefaultSamplerCapacity, layout.Capacity(Sampler))
	require.Equal(t, DefaultSampledImageCapacity, layout.Capacity(SampledImage))
	require.Equal(t, 0, layout.Capacity(StorageImage))

	info := layout.setLayoutInfo()
	require.Equal(t, core1_2.DescriptorSetLayoutCreateUpdateAfterBindPool, info.Flags)
	for _, binding := range info.Bindings {
		require.Equal(t, core1_0.StageAll, binding.Stages)
		require.NotZero(t, binding.Flags&core1_2.DescriptorBindingPartiallyBound)
		require.NotZero(t, binding.Flags&core1_2.DescriptorBindingUpdateAfterBind)

		variable := binding.Flags&core1_2.DescriptorBindingVariableDescriptorCount != 0
		require.Equal(t, binding.Binding == TextureBinding, variable)
	}

	ranges := layout.pushConstantRanges()
	require.Equal(t, []core1_0.PushConstantRange{{StageFlags: core1_0.StageAll, Offset: 0, Size: 12}}, ranges)
}

func TestLayoutBuildSortsAndCaps(t *testing.T) {
	layout, err := LayoutConfig{
		Tables: []TableConfig{
			{Binding: 7, Kind: SampledImage, Capacity: 100},
			{Binding: 2, Kind: StorageImage, Stages: core1_0.StageFragment},
			{Binding: 0, Kind: Sampler},
		},
		SetsPerPool:          2,
		InitialVariableCount: 500,
	}.Build()
	require.NoError(t, err)

	tables := layout.Tables()
	require.Equal(t, 0, tables[0].Binding)
	require.Equal(t, 2, tables[1].Binding)
	require.Equal(t, core1_0.StageFragment, tables[1].Stages)
	require.Equal(t, 7, tables[2].Binding)
	require.Equal(t, 100, layout.initialVariableCount)

	poolInfo := layout.poolInfo()
	require.Equal(t, 2, poolInfo.MaxSets)
	require.Equal(t, core1_2.DescriptorPoolCreateUpdateAfterBind, poolInfo.Flags)
	require.Equal(t, []core1_0.DescriptorPoolSize{
		{Type: core1_0.DescriptorTypeSampler, DescriptorCount: 2 * DefaultSamplerCapacity},
		{Type: core1_0.DescriptorTypeStorageImage, DescriptorCount: 2 * DefaultStorageImageCapacity},
		{Type: core1_0.DescriptorTypeSampledImage, DescriptorCount: 200},
	}, poolInfo.PoolSizes)
}

func TestLayoutBuildRejects(t *testing.T) {
	testCases := map[string]LayoutConfig{
		"NoTables": {},
		"DuplicateBinding": {Tables: []TableConfig{
			{Binding: 1, Kind: UniformBuffer},
			{Binding: 1, Kind: StorageBuffer},
		}},
		"NegativeBinding":  {Tables: []TableConfig{{Binding: -1, Kind: UniformBuffer}}},
		"UnknownKind":      {Tables: []TableConfig{{Binding: 0, Kind: ResourceKind(42)}}},
		"NegativeCapacity": {Tables: []TableConfig{{Binding: 0, Kind: UniformBuffer, Capacity: -4}}},
		"MismatchedCapacity": {Tables: []TableConfig{
			{Binding: 0, Kind: StorageBuffer, Capacity: 64},
			{Binding: 1, Kind: StorageBuffer, Capacity: 128},
		}},
		"TwoVariableTables": {Tables: []TableConfig{
			{Binding: 0, Kind: SampledImage},
			{Binding: 1, Kind: SampledImage},
		}},
		"VariableTableNotLast": {Tables: []TableConfig{
			{Binding: 0, Kind: SampledImage},
			{Binding: 1, Kind: Sampler},
		}},
		"PushConstantNotMultipleOfFour": {Tables: []TableConfig{{Binding: 0, Kind: Sampler}}, PushConstantSize: 10},
		"PushConstantTooLarge":          {Tables: []TableConfig{{Binding: 0, Kind: Sampler}}, PushConstantSize: 132},
		"NegativeSetsPerPool":           {Tables: []TableConfig{{Binding: 0, Kind: Sampler}}, SetsPerPool: -1},
		"NegativeVariableCount":         {Tables: []TableConfig{{Binding: 0, Kind: Sampler}}, InitialVariableCount: -1},
	}

	for name, config := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := config.Build()
			require.True(t, errors.Is(err, ErrInvalidLayout), "unexpected error %v", err)
		})
	}
}

func TestPerDrawDataBytes(t *testing.T) {
	data := PerDrawData{ObjectIndex: 1, MaterialIndex: 0x0203, VertexOffset: 0x04050607}
	require.Equal(t, []byte{
		1, 0, 0, 0,
		3, 2, 0, 0,
		7, 6, 5, 4,
	}, data.Bytes())
}
