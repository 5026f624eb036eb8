package bindless

import (
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/core1_2"
)

// ResourceKind identifies which descriptor table a Handle indexes into
type ResourceKind int

const (
	UniformBuffer ResourceKind = iota
	StorageBuffer
	StorageImage
	SampledImage
	Sampler

	resourceKindCount
)

const (
	DefaultBufferCapacity       = 1024
	DefaultStorageImageCapacity = 1024
	DefaultSamplerCapacity      = 16
	DefaultSampledImageCapacity = 1024
)

var resourceKindNames = map[ResourceKind]string{
	UniformBuffer: "UniformBuffer",
	StorageBuffer: "StorageBuffer",
	StorageImage:  "StorageImage",
	SampledImage:  "SampledImage",
	Sampler:       "Sampler",
}

func (k ResourceKind) String() string {
	name, ok := resourceKindNames[k]
	if !ok {
		return "Unknown"
	}
	return name
}

func (k ResourceKind) valid() bool {
	return k >= UniformBuffer && k < resourceKindCount
}

func (k ResourceKind) DescriptorType() core1_0.DescriptorType {
	switch k {
	case UniformBuffer:
		return core1_0.DescriptorTypeUniformBuffer
	case StorageBuffer:
		return core1_0.DescriptorTypeStorageBuffer
	case StorageImage:
		return core1_0.DescriptorTypeStorageImage
	case SampledImage:
		return core1_0.DescriptorTypeSampledImage
	case Sampler:
		return core1_0.DescriptorTypeSampler
	}

	return core1_0.DescriptorTypeUniformBuffer
}

// DefaultCapacity is the number of table slots used for this kind when a TableConfig leaves
// Capacity at 0
func (k ResourceKind) DefaultCapacity() int {
	switch k {
	case StorageImage:
		return DefaultStorageImageCapacity
	case SampledImage:
		return DefaultSampledImageCapacity
	case Sampler:
		return DefaultSamplerCapacity
	}

	return DefaultBufferCapacity
}

// VariableCount reports whether tables of this kind are allocated with a variable descriptor
// count. Only sampled images are, since texture counts vary the most.
func (k ResourceKind) VariableCount() bool {
	return k == SampledImage
}

// BindingFlags returns the descriptor binding flags for a table of this kind. Every table is
// partially bound and may be updated after it is bound.
func (k ResourceKind) BindingFlags() core1_2.DescriptorBindingFlags {
	flags := core1_2.DescriptorBindingPartiallyBound | core1_2.DescriptorBindingUpdateAfterBind
	if k.VariableCount() {
		flags |= core1_2.DescriptorBindingVariableDescriptorCount
	}
	return flags
}

func (k ResourceKind) isBuffer() bool {
	return k == UniformBuffer || k == StorageBuffer
}

func (k ResourceKind) isImage() bool {
	return k == StorageImage || k == SampledImage
}

// Handle is a slot in a bindless table. Index is the value shaders use to reach the resource.
type Handle struct {
	Index uint32
	Kind  ResourceKind
}
