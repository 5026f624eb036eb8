// Package vulkan implements the device contracts on top of vkngwrapper core 1.0/1.2 objects
package vulkan

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/core1_2"
	"github.com/vkngwrapper/core/v2/driver"
	"github.com/vkngwrapper/quartermaster/device"
	"github.com/vkngwrapper/quartermaster/memutils"
	"golang.org/x/exp/slog"
)

type Device struct {
	logger              *slog.Logger
	device              core1_0.Device
	allocationCallbacks *driver.AllocationCallbacks

	memoryProperties    *core1_0.PhysicalDeviceMemoryProperties
	nonCoherentAtomSize int
}

var _ device.Device = &Device{}

// New wraps a logical device. allocationCallbacks may be nil.
func New(logger *slog.Logger, physicalDevice core1_0.PhysicalDevice, logicalDevice core1_0.Device, allocationCallbacks *driver.AllocationCallbacks) (*Device, error) {
	if logger == nil {
		return nil, errors.New("attempted to create a device adapter without a logger")
	}

	properties, err := physicalDevice.Properties()
	if err != nil {
		return nil, err
	}

	err = memutils.CheckPow2(properties.Limits.NonCoherentAtomSize, "device nonCoherentAtomSize")
	if err != nil {
		return nil, err
	}

	return &Device{
		logger:              logger,
		device:              logicalDevice,
		allocationCallbacks: allocationCallbacks,
		memoryProperties:    physicalDevice.MemoryProperties(),
		nonCoherentAtomSize: properties.Limits.NonCoherentAtomSize,
	}, nil
}

// QueueFamilies lists the physical device's queue families. presentSupport may be nil, in which
// case no family reports present support.
func QueueFamilies(physicalDevice core1_0.PhysicalDevice, presentSupport func(familyIndex int) bool) []device.QueueFamily {
	properties := physicalDevice.QueueFamilyProperties()
	families := make([]device.QueueFamily, 0, len(properties))

	for index, family := range properties {
		families = append(families, device.QueueFamily{
			Index:           index,
			Flags:           family.QueueFlags,
			QueueCount:      family.QueueCount,
			SupportsPresent: presentSupport != nil && presentSupport(index),
		})
	}

	return families
}

// Queue retrieves queue queueIndex of family
func (d *Device) Queue(family device.QueueFamily, queueIndex int) device.Queue {
	return &queue{family: family, queue: d.device.GetQueue(family.Index, queueIndex)}
}

func (d *Device) WaitIdle() (common.VkResult, error) {
	return d.device.WaitIdle()
}

func (d *Device) CreateCommandPool(family device.QueueFamily, flags core1_0.CommandPoolCreateFlags) (device.CommandPool, common.VkResult, error) {
	pool, res, err := d.device.CreateCommandPool(d.allocationCallbacks, core1_0.CommandPoolCreateInfo{
		Flags:            flags,
		QueueFamilyIndex: family.Index,
	})
	if err != nil {
		return nil, res, err
	}

	return &commandPool{device: d, family: family, pool: pool}, res, nil
}

func (d *Device) CreateFence(signaled bool) (device.Fence, common.VkResult, error) {
	var flags core1_0.FenceCreateFlags
	if signaled {
		flags = core1_0.FenceCreateSignaled
	}

	fence, res, err := d.device.CreateFence(d.allocationCallbacks, core1_0.FenceCreateInfo{Flags: flags})
	if err != nil {
		return nil, res, err
	}

	return &syncFence{device: d, fence: fence}, res, nil
}

func (d *Device) CreateDescriptorSetLayout(info device.DescriptorSetLayoutInfo) (device.DescriptorSetLayout, common.VkResult, error) {
	bindings := make([]core1_0.DescriptorSetLayoutBinding, 0, len(info.Bindings))
	bindingFlags := make([]core1_2.DescriptorBindingFlags, 0, len(info.Bindings))
	hasFlags := false

	for _, binding := range info.Bindings {
		bindings = append(bindings, core1_0.DescriptorSetLayoutBinding{
			Binding:         binding.Binding,
			DescriptorType:  binding.Type,
			DescriptorCount: binding.Count,
			StageFlags:      binding.Stages,
		})
		bindingFlags = append(bindingFlags, binding.Flags)
		hasFlags = hasFlags || binding.Flags != 0
	}

	createInfo := core1_0.DescriptorSetLayoutCreateInfo{
		Flags:    info.Flags,
		Bindings: bindings,
	}
	if hasFlags {
		createInfo.NextOptions = common.NextOptions{Next: core1_2.DescriptorSetLayoutBindingFlagsCreateInfo{
			BindingFlags: bindingFlags,
		}}
	}

	layout, res, err := d.device.CreateDescriptorSetLayout(d.allocationCallbacks, createInfo)
	if err != nil {
		return nil, res, err
	}

	return &descriptorSetLayout{device: d, layout: layout}, res, nil
}

func (d *Device) CreateDescriptorPool(info device.DescriptorPoolInfo) (device.DescriptorPool, common.VkResult, error) {
	pool, res, err := d.device.CreateDescriptorPool(d.allocationCallbacks, core1_0.DescriptorPoolCreateInfo{
		Flags:     info.Flags,
		MaxSets:   info.MaxSets,
		PoolSizes: info.PoolSizes,
	})
	if err != nil {
		return nil, res, err
	}

	return &descriptorPool{device: d, pool: pool}, res, nil
}

func (d *Device) CreatePipelineLayout(setLayouts []device.DescriptorSetLayout, pushConstants []core1_0.PushConstantRange) (device.PipelineLayout, common.VkResult, error) {
	layouts := make([]core1_0.DescriptorSetLayout, 0, len(setLayouts))
	for _, setLayout := range setLayouts {
		unwrapped, err := unwrapSetLayout(setLayout)
		if err != nil {
			return nil, core1_0.VKErrorUnknown, err
		}
		layouts = append(layouts, unwrapped)
	}

	layout, res, err := d.device.CreatePipelineLayout(d.allocationCallbacks, core1_0.PipelineLayoutCreateInfo{
		SetLayouts:         layouts,
		PushConstantRanges: pushConstants,
	})
	if err != nil {
		return nil, res, err
	}

	return &pipelineLayout{device: d, layout: layout}, res, nil
}

type pipelineLayout struct {
	device *Device
	layout core1_0.PipelineLayout
}

func (l *pipelineLayout) Destroy() {
	l.layout.Destroy(l.device.allocationCallbacks)
}

func unwrapPipelineLayout(layout device.PipelineLayout) (core1_0.PipelineLayout, error) {
	wrapped, ok := layout.(*pipelineLayout)
	if !ok {
		return nil, errors.Newf("pipeline layout %T was not created by this adapter", layout)
	}
	return wrapped.layout, nil
}
