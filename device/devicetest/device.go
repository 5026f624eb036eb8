// Package devicetest provides an in-memory implementation of the device contracts. Buffers are
// backed by byte slices, submitted copies are executed on the host, and every created object is
// counted so tests can assert that nothing leaks.
package devicetest

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/quartermaster/device"
)

type ObjectKind string

const (
	KindCommandPool         ObjectKind = "CommandPool"
	KindCommandBuffer       ObjectKind = "CommandBuffer"
	KindFence               ObjectKind = "Fence"
	KindBuffer              ObjectKind = "Buffer"
	KindDescriptorSetLayout ObjectKind = "DescriptorSetLayout"
	KindDescriptorPool      ObjectKind = "DescriptorPool"
	KindPipelineLayout      ObjectKind = "PipelineLayout"
	KindImageView           ObjectKind = "ImageView"
	KindSampler             ObjectKind = "Sampler"
)

// Operation names accepted by FailNext
const (
	OpCreateCommandPool      = "CreateCommandPool"
	OpAllocateCommandBuffers = "AllocateCommandBuffers"
	OpCreateFence            = "CreateFence"
	OpCreateBuffer           = "CreateBuffer"
	OpCreateDescriptorPool   = "CreateDescriptorPool"
	OpAllocateSet            = "AllocateSet"
	OpSubmit                 = "Submit"
	OpWait                   = "Wait"
	OpBegin                  = "Begin"
)

type Device struct {
	mutex    sync.Mutex
	live     map[ObjectKind]int
	failures map[string][]common.VkResult

	// SubmitCount is the number of successful queue submissions
	SubmitCount int
	// Pools holds every descriptor pool created, in creation order
	Pools []*DescriptorPool
}

var _ device.Device = &Device{}

func NewDevice() *Device {
	return &Device{
		live:     make(map[ObjectKind]int),
		failures: make(map[string][]common.VkResult),
	}
}

// FailNext queues res as the result of the next call of op. Queued results are consumed in
// order, and VKSuccess lets a call through.
func (d *Device) FailNext(op string, res common.VkResult) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.failures[op] = append(d.failures[op], res)
}

func (d *Device) injected(op string) (common.VkResult, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	queued := d.failures[op]
	if len(queued) == 0 {
		return core1_0.VKSuccess, nil
	}

	res := queued[0]
	d.failures[op] = queued[1:]
	if res == core1_0.VKSuccess {
		return res, nil
	}
	return res, res.ToError()
}

func (d *Device) created(kind ObjectKind, count int) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.live[kind] += count
}

func (d *Device) destroyed(kind ObjectKind, count int) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.live[kind] -= count
	if d.live[kind] < 0 {
		panic(errors.AssertionFailedf("%s destroyed more times than it was created", kind))
	}
}

// Live returns the number of objects of the given kind that have been created and not destroyed
func (d *Device) Live(kind ObjectKind) int {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	return d.live[kind]
}

// LiveObjects returns the total number of objects that have not been destroyed
func (d *Device) LiveObjects() int {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	total := 0
	for _, count := range d.live {
		total += count
	}
	return total
}

func (d *Device) CreateCommandPool(family device.QueueFamily, flags core1_0.CommandPoolCreateFlags) (device.CommandPool, common.VkResult, error) {
	res, err := d.injected(OpCreateCommandPool)
	if err != nil {
		return nil, res, err
	}

	d.created(KindCommandPool, 1)
	return &CommandPool{device: d, family: family, flags: flags, buffers: make(map[*CommandBuffer]struct{})}, core1_0.VKSuccess, nil
}

func (d *Device) CreateFence(signaled bool) (device.Fence, common.VkResult, error) {
	res, err := d.injected(OpCreateFence)
	if err != nil {
		return nil, res, err
	}

	d.created(KindFence, 1)
	return &Fence{device: d, signaled: signaled}, core1_0.VKSuccess, nil
}

func (d *Device) createBuffer(size int, usage core1_0.BufferUsageFlags, host bool) (*Buffer, common.VkResult, error) {
	res, err := d.injected(OpCreateBuffer)
	if err != nil {
		return nil, res, err
	}

	d.created(KindBuffer, 1)
	return &Buffer{device: d, data: make([]byte, size), usage: usage, host: host}, core1_0.VKSuccess, nil
}

func (d *Device) CreateDeviceBuffer(size int, usage core1_0.BufferUsageFlags) (device.Buffer, common.VkResult, error) {
	buffer, res, err := d.createBuffer(size, usage, false)
	if err != nil {
		return nil, res, err
	}
	return buffer, res, nil
}

func (d *Device) CreateHostBuffer(size int, usage core1_0.BufferUsageFlags) (device.HostBuffer, common.VkResult, error) {
	buffer, res, err := d.createBuffer(size, usage, true)
	if err != nil {
		return nil, res, err
	}
	return buffer, res, nil
}

func (d *Device) CreateDescriptorSetLayout(info device.DescriptorSetLayoutInfo) (device.DescriptorSetLayout, common.VkResult, error) {
	d.created(KindDescriptorSetLayout, 1)
	return &DescriptorSetLayout{device: d, Info: info}, core1_0.VKSuccess, nil
}

func (d *Device) CreateDescriptorPool(info device.DescriptorPoolInfo) (device.DescriptorPool, common.VkResult, error) {
	res, err := d.injected(OpCreateDescriptorPool)
	if err != nil {
		return nil, res, err
	}

	remaining := make(map[core1_0.DescriptorType]int)
	for _, size := range info.PoolSizes {
		remaining[size.Type] += size.DescriptorCount
	}

	pool := &DescriptorPool{device: d, Info: info, remainingSets: info.MaxSets, remaining: remaining}

	d.created(KindDescriptorPool, 1)
	d.mutex.Lock()
	d.Pools = append(d.Pools, pool)
	d.mutex.Unlock()

	return pool, core1_0.VKSuccess, nil
}

func (d *Device) CreatePipelineLayout(setLayouts []device.DescriptorSetLayout, pushConstants []core1_0.PushConstantRange) (device.PipelineLayout, common.VkResult, error) {
	d.created(KindPipelineLayout, 1)
	return &PipelineLayout{device: d, SetLayouts: setLayouts, PushConstantRanges: pushConstants}, core1_0.VKSuccess, nil
}

func (d *Device) UpdateDescriptorSets(writes []device.DescriptorWrite) error {
	for _, write := range writes {
		set, ok := write.Set.(*DescriptorSet)
		if !ok {
			return errors.Newf("descriptor set %T was not created by this device", write.Set)
		}

		if err := set.write(write); err != nil {
			return err
		}
	}

	return nil
}

func (d *Device) WaitIdle() (common.VkResult, error) {
	return core1_0.VKSuccess, nil
}

// NewImageView creates a counted image view for bindless tests
func (d *Device) NewImageView() *ImageView {
	d.created(KindImageView, 1)
	return &ImageView{device: d}
}

// NewSampler creates a counted sampler for bindless tests
func (d *Device) NewSampler() *Sampler {
	d.created(KindSampler, 1)
	return &Sampler{device: d}
}

type ImageView struct {
	device *Device
}

func (v *ImageView) Destroy() {
	v.device.destroyed(KindImageView, 1)
}

type Sampler struct {
	device *Device
}

func (s *Sampler) Destroy() {
	s.device.destroyed(KindSampler, 1)
}

type PipelineLayout struct {
	device             *Device
	SetLayouts         []device.DescriptorSetLayout
	PushConstantRanges []core1_0.PushConstantRange
}

func (l *PipelineLayout) Destroy() {
	l.device.destroyed(KindPipelineLayout, 1)
}
