package devicetest

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/core1_1"
	"github.com/vkngwrapper/core/v2/core1_2"
	"github.com/vkngwrapper/quartermaster/device"
)

type DescriptorSetLayout struct {
	device *Device
	Info   device.DescriptorSetLayoutInfo
}

func (l *DescriptorSetLayout) Destroy() {
	l.device.destroyed(KindDescriptorSetLayout, 1)
}

func (l *DescriptorSetLayout) binding(index int) (device.DescriptorBinding, bool) {
	for _, binding := range l.Info.Bindings {
		if binding.Binding == index {
			return binding, true
		}
	}
	return device.DescriptorBinding{}, false
}

// DescriptorPool enforces its MaxSets and per-type descriptor budgets and returns
// VkErrorOutOfPoolMemory once either is exhausted
type DescriptorPool struct {
	device        *Device
	Info          device.DescriptorPoolInfo
	remainingSets int
	remaining     map[core1_0.DescriptorType]int

	Sets []*DescriptorSet
}

func (p *DescriptorPool) AllocateSet(layout device.DescriptorSetLayout, variableCount int) (device.DescriptorSet, common.VkResult, error) {
	res, err := p.device.injected(OpAllocateSet)
	if err != nil {
		return nil, res, err
	}

	fakeLayout := layout.(*DescriptorSetLayout)
	if p.remainingSets <= 0 {
		return nil, core1_1.VkErrorOutOfPoolMemory, core1_1.VkErrorOutOfPoolMemory.ToError()
	}

	counts := make(map[int]int)
	needed := make(map[core1_0.DescriptorType]int)
	for _, binding := range fakeLayout.Info.Bindings {
		count := binding.Count
		if binding.Flags&core1_2.DescriptorBindingVariableDescriptorCount != 0 {
			if variableCount > binding.Count {
				return nil, core1_0.VKErrorUnknown, errors.Newf("variable count %d exceeds binding maximum %d", variableCount, binding.Count)
			}
			count = variableCount
		}
		counts[binding.Binding] = count
		needed[binding.Type] += count
	}

	for descriptorType, count := range needed {
		if p.remaining[descriptorType] < count {
			return nil, core1_1.VkErrorOutOfPoolMemory, core1_1.VkErrorOutOfPoolMemory.ToError()
		}
	}

	for descriptorType, count := range needed {
		p.remaining[descriptorType] -= count
	}
	p.remainingSets--

	set := &DescriptorSet{pool: p, layout: fakeLayout, counts: counts, Writes: make(map[[2]int]device.DescriptorWrite)}
	p.Sets = append(p.Sets, set)
	return set, core1_0.VKSuccess, nil
}

func (p *DescriptorPool) Destroy() {
	p.device.destroyed(KindDescriptorPool, 1)
}

type DescriptorSet struct {
	pool   *DescriptorPool
	layout *DescriptorSetLayout
	counts map[int]int

	// Writes holds the latest write for each {binding, array element}
	Writes map[[2]int]device.DescriptorWrite
}

func (s *DescriptorSet) Pool() device.DescriptorPool {
	return s.pool
}

// Count returns the number of descriptors allocated for a binding
func (s *DescriptorSet) Count(binding int) int {
	return s.counts[binding]
}

func (s *DescriptorSet) write(write device.DescriptorWrite) error {
	binding, ok := s.layout.binding(write.Binding)
	if !ok {
		return errors.Newf("binding %d is not in the set layout", write.Binding)
	}
	if binding.Type != write.Type {
		return errors.Newf("binding %d has type %v, write has type %v", write.Binding, binding.Type, write.Type)
	}
	if write.ArrayElement < 0 || write.ArrayElement >= s.counts[write.Binding] {
		return errors.Newf("array element %d is out of range for binding %d", write.ArrayElement, write.Binding)
	}

	s.Writes[[2]int{write.Binding, write.ArrayElement}] = write
	return nil
}
