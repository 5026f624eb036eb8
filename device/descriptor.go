package device

import (
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/core1_2"
)

type DescriptorBinding struct {
	Binding int
	Type    core1_0.DescriptorType
	Count   int
	Stages  core1_0.ShaderStageFlags
	Flags   core1_2.DescriptorBindingFlags
}

type DescriptorSetLayoutInfo struct {
	Flags    core1_0.DescriptorSetLayoutCreateFlags
	Bindings []DescriptorBinding
}

type DescriptorPoolInfo struct {
	Flags     core1_0.DescriptorPoolCreateFlags
	MaxSets   int
	PoolSizes []core1_0.DescriptorPoolSize
}

type DescriptorSetLayout interface {
	Destroy()
}

type DescriptorPool interface {
	// AllocateSet allocates one set from the pool. variableCount is the descriptor count of the
	// layout's variable-count binding, or 0 if the layout has none.
	AllocateSet(layout DescriptorSetLayout, variableCount int) (DescriptorSet, common.VkResult, error)
	Destroy()
}

type DescriptorSet interface {
	Pool() DescriptorPool
}

// DescriptorWrite updates one array element of one binding. Exactly one of Buffer, ImageView or
// Sampler is expected to be set, matching Type.
type DescriptorWrite struct {
	Set          DescriptorSet
	Binding      int
	ArrayElement int
	Type         core1_0.DescriptorType

	Buffer Buffer
	Offset int
	Range  int

	ImageView   ImageView
	ImageLayout core1_0.ImageLayout

	Sampler Sampler
}
