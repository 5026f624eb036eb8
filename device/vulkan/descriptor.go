package vulkan

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/core1_2"
	"github.com/vkngwrapper/quartermaster/device"
)

type descriptorSetLayout struct {
	device *Device
	layout core1_0.DescriptorSetLayout
}

func (l *descriptorSetLayout) Destroy() {
	l.layout.Destroy(l.device.allocationCallbacks)
}

func unwrapSetLayout(layout device.DescriptorSetLayout) (core1_0.DescriptorSetLayout, error) {
	wrapped, ok := layout.(*descriptorSetLayout)
	if !ok {
		return nil, errors.Newf("descriptor set layout %T was not created by this adapter", layout)
	}
	return wrapped.layout, nil
}

type descriptorPool struct {
	device *Device
	pool   core1_0.DescriptorPool
}

func (p *descriptorPool) AllocateSet(layout device.DescriptorSetLayout, variableCount int) (device.DescriptorSet, common.VkResult, error) {
	nativeLayout, err := unwrapSetLayout(layout)
	if err != nil {
		return nil, core1_0.VKErrorUnknown, err
	}

	allocateInfo := core1_0.DescriptorSetAllocateInfo{
		DescriptorPool: p.pool,
		SetLayouts:     []core1_0.DescriptorSetLayout{nativeLayout},
	}
	if variableCount > 0 {
		allocateInfo.NextOptions = common.NextOptions{Next: core1_2.DescriptorSetVariableDescriptorCountAllocateInfo{
			DescriptorCounts: []int{variableCount},
		}}
	}

	sets, res, err := p.device.device.AllocateDescriptorSets(allocateInfo)
	if err != nil {
		return nil, res, err
	}

	return &descriptorSet{pool: p, set: sets[0]}, res, nil
}

func (p *descriptorPool) Destroy() {
	p.pool.Destroy(p.device.allocationCallbacks)
}

type descriptorSet struct {
	pool *descriptorPool
	set  core1_0.DescriptorSet
}

func (s *descriptorSet) Pool() device.DescriptorPool {
	return s.pool
}

func unwrapSet(set device.DescriptorSet) (core1_0.DescriptorSet, error) {
	wrapped, ok := set.(*descriptorSet)
	if !ok {
		return nil, errors.Newf("descriptor set %T was not created by this adapter", set)
	}
	return wrapped.set, nil
}

// ImageView adapts an image view owned by the caller so it can be written into a bindless table
type ImageView struct {
	device *Device
	View   core1_0.ImageView
}

func (d *Device) WrapImageView(view core1_0.ImageView) *ImageView {
	return &ImageView{device: d, View: view}
}

func (v *ImageView) Destroy() {
	v.View.Destroy(v.device.allocationCallbacks)
}

// Sampler adapts a sampler owned by the caller so it can be written into a bindless table
type Sampler struct {
	device  *Device
	Sampler core1_0.Sampler
}

func (d *Device) WrapSampler(sampler core1_0.Sampler) *Sampler {
	return &Sampler{device: d, Sampler: sampler}
}

func (s *Sampler) Destroy() {
	s.Sampler.Destroy(s.device.allocationCallbacks)
}

func (d *Device) UpdateDescriptorSets(writes []device.DescriptorWrite) error {
	nativeWrites := make([]core1_0.WriteDescriptorSet, 0, len(writes))

	for _, write := range writes {
		set, err := unwrapSet(write.Set)
		if err != nil {
			return err
		}

		nativeWrite := core1_0.WriteDescriptorSet{
			DstSet:          set,
			DstBinding:      write.Binding,
			DstArrayElement: write.ArrayElement,
			DescriptorType:  write.Type,
		}

		switch {
		case write.Buffer != nil:
			nativeBuffer, err := unwrapBuffer(write.Buffer)
			if err != nil {
				return err
			}
			nativeWrite.BufferInfo = []core1_0.DescriptorBufferInfo{
				{Buffer: nativeBuffer, Offset: write.Offset, Range: write.Range},
			}
		case write.ImageView != nil:
			view, ok := write.ImageView.(*ImageView)
			if !ok {
				return errors.Newf("image view %T was not wrapped by this adapter", write.ImageView)
			}
			nativeWrite.ImageInfo = []core1_0.DescriptorImageInfo{
				{ImageView: view.View, ImageLayout: write.ImageLayout},
			}
		case write.Sampler != nil:
			sampler, ok := write.Sampler.(*Sampler)
			if !ok {
				return errors.Newf("sampler %T was not wrapped by this adapter", write.Sampler)
			}
			nativeWrite.ImageInfo = []core1_0.DescriptorImageInfo{
				{Sampler: sampler.Sampler},
			}
		default:
			return errors.Newf("descriptor write for binding %d has no resource", write.Binding)
		}

		nativeWrites = append(nativeWrites, nativeWrite)
	}

	return d.device.UpdateDescriptorSets(nativeWrites, nil)
}
