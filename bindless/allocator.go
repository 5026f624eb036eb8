package bindless

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/quartermaster/device"
	"github.com/vkngwrapper/quartermaster/internal/utils"
	"golang.org/x/exp/slog"
)

var (
	ErrTableFull          = errors.New("bindless table is full")
	ErrHandleNotLive      = errors.New("bindless handle is not live")
	ErrNoTable            = errors.New("layout has no table for the resource")
	ErrWrongKind          = errors.New("resource does not match the table kind")
	ErrAllocatorDestroyed = errors.New("bindless allocator has been destroyed")
)

type CreateOptions struct {
	// ExternallySynchronized removes the internal mutex. The consumer must guarantee that the
	// allocator is used from one goroutine at a time.
	ExternallySynchronized bool
}

type slotKey struct {
	binding int
	index   uint32
}

// Allocator owns the bindless descriptor set, the pools it is allocated from and the pipeline
// layout shared by every material. Resources are written into table slots and addressed in
// shaders by Handle.Index.
//
// The sampled image table is allocated with a variable descriptor count. When a slot beyond the
// current count is handed out, a larger set is allocated, every live descriptor is rewritten
// into it, and it replaces the current set. Replaced sets stay valid until Destroy so that
// command buffers already recorded against them can still execute. Callers should call
// BindTables again for each frame.
type Allocator struct {
	logger *slog.Logger
	mutex  utils.OptionalMutex

	device         device.Device
	layout         Layout
	setLayout      device.DescriptorSetLayout
	pipelineLayout device.PipelineLayout

	pools         []device.DescriptorPool
	set           device.DescriptorSet
	replacedSets  int
	variableCount int

	slots     [resourceKindCount]*slotTable
	writes    *swiss.Map[slotKey, device.DescriptorWrite]
	destroyed bool
}

func New(logger *slog.Logger, dev device.Device, config LayoutConfig, options CreateOptions) (*Allocator, common.VkResult, error) {
	if logger == nil {
		return nil, core1_0.VKErrorUnknown, errors.New("attempted to create a bindless allocator without a logger")
	}
	if dev == nil {
		return nil, core1_0.VKErrorUnknown, errors.New("attempted to create a bindless allocator without a device")
	}

	layout, err := config.Build()
	if err != nil {
		return nil, core1_0.VKErrorUnknown, err
	}

	allocator := &Allocator{
		logger:        logger,
		mutex:         utils.OptionalMutex{UseMutex: !options.ExternallySynchronized},
		device:        dev,
		layout:        layout,
		variableCount: layout.initialVariableCount,
		writes:        swiss.NewMap[slotKey, device.DescriptorWrite](256),
	}
	for kind := UniformBuffer; kind < resourceKindCount; kind++ {
		capacity := layout.Capacity(kind)
		if capacity > 0 {
			allocator.slots[kind] = newSlotTable(kind, capacity)
		}
	}

	var res common.VkResult
	allocator.setLayout, res, err = dev.CreateDescriptorSetLayout(layout.setLayoutInfo())
	if err != nil {
		return nil, res, errors.Wrap(err, "failed to create the bindless set layout")
	}

	res, err = allocator.createObjects()
	if err != nil {
		allocator.destroyObjects()
		return nil, res, err
	}

	logger.Debug("BindlessAllocator::New",
		slog.Int("Tables", len(layout.tables)),
		slog.Int("SetsPerPool", layout.setsPerPool),
		slog.Int("VariableCount", allocator.variableCount),
	)

	return allocator, core1_0.VKSuccess, nil
}

func (a *Allocator) createObjects() (common.VkResult, error) {
	var err error
	var res common.VkResult
	a.pipelineLayout, res, err = a.device.CreatePipelineLayout([]device.DescriptorSetLayout{a.setLayout}, a.layout.pushConstantRanges())
	if err != nil {
		return res, errors.Wrap(err, "failed to create the bindless pipeline layout")
	}

	a.set, res, err = a.allocateSet(a.variableCount)
	if err != nil {
		return res, err
	}

	return core1_0.VKSuccess, nil
}

func (a *Allocator) createPool() (device.DescriptorPool, common.VkResult, error) {
	pool, res, err := a.device.CreateDescriptorPool(a.layout.poolInfo())
	if err != nil {
		return nil, res, errors.Wrap(err, "failed to create a bindless descriptor pool")
	}

	a.pools = append(a.pools, pool)
	a.logger.Debug("BindlessAllocator::CreatePool", slog.Int("PoolCount", len(a.pools)))
	return pool, res, nil
}

// allocateSet allocates a set from the newest pool and creates another pool when that one is
// exhausted. Any other failure is returned without retrying.
func (a *Allocator) allocateSet(variableCount int) (device.DescriptorSet, common.VkResult, error) {
	if len(a.pools) > 0 {
		set, res, err := a.pools[len(a.pools)-1].AllocateSet(a.setLayout, variableCount)
		if err == nil {
			return set, res, nil
		}
		if !device.IsPoolExhausted(res) {
			return nil, res, errors.Wrap(err, "failed to allocate the bindless set")
		}
	}

	pool, res, err := a.createPool()
	if err != nil {
		return nil, res, err
	}

	set, res, err := pool.AllocateSet(a.setLayout, variableCount)
	if err != nil {
		return nil, res, errors.Wrap(err, "failed to allocate the bindless set from a new pool")
	}
	return set, res, nil
}

// grow replaces the current set with one whose variable-count table holds at least needed
// descriptors
func (a *Allocator) grow(needed int) (common.VkResult, error) {
	capacity := a.layout.Capacity(SampledImage)
	newCount := a.variableCount * 2
	if newCount < needed {
		newCount = needed
	}
	if newCount > capacity {
		newCount = capacity
	}

	set, res, err := a.allocateSet(newCount)
	if err != nil {
		return res, err
	}

	writes := make([]device.DescriptorWrite, 0, a.writes.Count())
	a.writes.Iter(func(key slotKey, write device.DescriptorWrite) bool {
		write.Set = set
		writes = append(writes, write)
		return false
	})

	err = a.device.UpdateDescriptorSets(writes)
	if err != nil {
		return core1_0.VKErrorUnknown, errors.Wrap(err, "failed to copy descriptors into the grown bindless set")
	}

	for _, write := range writes {
		a.writes.Put(slotKey{binding: write.Binding, index: uint32(write.ArrayElement)}, write)
	}

	a.logger.Debug("BindlessAllocator::Grow",
		slog.Int("OldCount", a.variableCount),
		slog.Int("NewCount", newCount),
		slog.Int("Descriptors", len(writes)),
	)

	a.set = set
	a.variableCount = newCount
	a.replacedSets++
	return res, nil
}

func (a *Allocator) acquire(kind ResourceKind) (Handle, common.VkResult, error) {
	if a.destroyed {
		return Handle{}, core1_0.VKErrorUnknown, ErrAllocatorDestroyed
	}
	if !kind.valid() || a.slots[kind] == nil {
		return Handle{}, core1_0.VKErrorUnknown, errors.Wrapf(ErrNoTable, "%s", kind)
	}

	table := a.slots[kind]
	index, err := table.acquire()
	if err != nil {
		return Handle{}, core1_0.VKErrorUnknown, err
	}

	if kind.VariableCount() && int(index) >= a.variableCount {
		res, err := a.grow(int(index) + 1)
		if err != nil {
			_ = table.release(index)
			return Handle{}, res, err
		}
	}

	return Handle{Index: index, Kind: kind}, core1_0.VKSuccess, nil
}

// Allocate reserves a slot of the given kind without writing a descriptor into it
func (a *Allocator) Allocate(kind ResourceKind) (Handle, common.VkResult, error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	handle, res, err := a.acquire(kind)
	if err != nil {
		return handle, res, err
	}

	a.logger.Debug("BindlessAllocator::Allocate", slog.String("Kind", kind.String()), slog.Int("Index", int(handle.Index)))
	return handle, res, nil
}

func (a *Allocator) tableFor(binding int, accept func(kind ResourceKind) bool) (TableConfig, error) {
	table, ok := a.layout.Table(binding)
	if !ok {
		return table, errors.Wrapf(ErrNoTable, "binding %d", binding)
	}
	if !accept(table.Kind) {
		return table, errors.Wrapf(ErrWrongKind, "binding %d holds %s descriptors", binding, table.Kind)
	}
	return table, nil
}

func (a *Allocator) bind(binding int, accept func(kind ResourceKind) bool, write device.DescriptorWrite) (Handle, common.VkResult, error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	table, err := a.tableFor(binding, accept)
	if err != nil {
		return Handle{}, core1_0.VKErrorUnknown, err
	}

	handle, res, err := a.acquire(table.Kind)
	if err != nil {
		return handle, res, err
	}

	write.Set = a.set
	write.Binding = binding
	write.ArrayElement = int(handle.Index)
	write.Type = table.Kind.DescriptorType()

	err = a.device.UpdateDescriptorSets([]device.DescriptorWrite{write})
	if err != nil {
		_ = a.slots[handle.Kind].release(handle.Index)
		return Handle{}, core1_0.VKErrorUnknown, errors.Wrapf(err, "failed to write %s slot %d", table.Kind, handle.Index)
	}
	a.writes.Put(slotKey{binding: binding, index: handle.Index}, write)

	a.logger.Debug("BindlessAllocator::Bind",
		slog.String("Kind", table.Kind.String()),
		slog.Int("Binding", binding),
		slog.Int("Index", int(handle.Index)),
	)
	return handle, core1_0.VKSuccess, nil
}

// BindBuffer writes [offset, offset+size) of buffer into a new slot of the uniform or storage
// buffer table at binding
func (a *Allocator) BindBuffer(binding int, buffer device.Buffer, offset, size int) (Handle, common.VkResult, error) {
	if buffer == nil {
		return Handle{}, core1_0.VKErrorUnknown, errors.New("attempted to bind a nil buffer")
	}
	if offset < 0 || size <= 0 || offset+size > buffer.Size() {
		return Handle{}, core1_0.VKErrorUnknown, errors.Newf("range [%d, %d) is outside a buffer of %d bytes", offset, offset+size, buffer.Size())
	}

	return a.bind(binding, ResourceKind.isBuffer, device.DescriptorWrite{
		Buffer: buffer,
		Offset: offset,
		Range:  size,
	})
}

// BindImage writes view into a new slot of the sampled or storage image table at binding
func (a *Allocator) BindImage(binding int, view device.ImageView, layout core1_0.ImageLayout) (Handle, common.VkResult, error) {
	if view == nil {
		return Handle{}, core1_0.VKErrorUnknown, errors.New("attempted to bind a nil image view")
	}

	return a.bind(binding, ResourceKind.isImage, device.DescriptorWrite{
		ImageView:   view,
		ImageLayout: layout,
	})
}

// BindSampler writes sampler into a new slot of the sampler table at binding
func (a *Allocator) BindSampler(binding int, sampler device.Sampler) (Handle, common.VkResult, error) {
	if sampler == nil {
		return Handle{}, core1_0.VKErrorUnknown, errors.New("attempted to bind a nil sampler")
	}

	return a.bind(binding, func(kind ResourceKind) bool { return kind == Sampler }, device.DescriptorWrite{
		Sampler: sampler,
	})
}

// Retire returns a handle's slot for reuse. The descriptor is left in place since every table
// is partially bound, so shaders must stop reading the slot before it is handed out again.
func (a *Allocator) Retire(handle Handle) error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	if a.destroyed {
		return ErrAllocatorDestroyed
	}
	if !handle.Kind.valid() || a.slots[handle.Kind] == nil {
		return errors.Wrapf(ErrNoTable, "%s", handle.Kind)
	}

	err := a.slots[handle.Kind].release(handle.Index)
	if err != nil {
		return err
	}

	for _, table := range a.layout.tables {
		if table.Kind == handle.Kind {
			a.writes.Delete(slotKey{binding: table.Binding, index: handle.Index})
		}
	}

	a.logger.Debug("BindlessAllocator::Retire", slog.String("Kind", handle.Kind.String()), slog.Int("Index", int(handle.Index)))
	return nil
}

// Live returns the number of live handles of a kind
func (a *Allocator) Live(kind ResourceKind) int {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	if !kind.valid() || a.slots[kind] == nil {
		return 0
	}
	return a.slots[kind].liveCount()
}

func (a *Allocator) Layout() Layout {
	return a.layout
}

func (a *Allocator) PipelineLayout() device.PipelineLayout {
	return a.pipelineLayout
}

// Set returns the current bindless set. It changes when the sampled image table grows.
func (a *Allocator) Set() device.DescriptorSet {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.set
}

// PoolCount returns the number of descriptor pools created so far
func (a *Allocator) PoolCount() int {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return len(a.pools)
}

// BindTables records the bind of the current bindless set as set 0 of the shared pipeline layout
func (a *Allocator) BindTables(cmd device.CommandBuffer, bindPoint core1_0.PipelineBindPoint) error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	if a.destroyed {
		return ErrAllocatorDestroyed
	}

	cmd.CmdBindDescriptorSets(bindPoint, a.pipelineLayout, 0, []device.DescriptorSet{a.set})
	return nil
}

// PushDrawData records the per-draw push constant block
func (a *Allocator) PushDrawData(cmd device.CommandBuffer, data PerDrawData) error {
	if a.layout.pushConstantSize < PerDrawDataSize {
		return errors.Newf("push constant block of %d bytes cannot hold per-draw data", a.layout.pushConstantSize)
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	if a.destroyed {
		return ErrAllocatorDestroyed
	}

	cmd.CmdPushConstants(a.pipelineLayout, core1_0.StageAll, 0, data.Bytes())
	return nil
}

// BuildStatsString returns a json document describing every table and the pools behind them
func (a *Allocator) BuildStatsString() string {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	writer := jwriter.NewWriter()
	rootObj := writer.Object()

	rootObj.Name("PoolCount").Int(len(a.pools))
	rootObj.Name("ReplacedSets").Int(a.replacedSets)
	rootObj.Name("VariableCount").Int(a.variableCount)

	kindsObj := rootObj.Name("Kinds").Object()
	for kind := UniformBuffer; kind < resourceKindCount; kind++ {
		table := a.slots[kind]
		if table == nil {
			continue
		}

		kindObj := kindsObj.Name(kind.String()).Object()
		kindObj.Name("Capacity").Int(table.capacity)
		kindObj.Name("Live").Int(table.liveCount())
		kindObj.Name("Recycled").Int(len(table.free))
		kindObj.Name("HighWater").Int(table.highWater())
		kindObj.End()
	}
	kindsObj.End()

	written := make(map[int]int)
	a.writes.Iter(func(key slotKey, _ device.DescriptorWrite) bool {
		written[key.binding]++
		return false
	})

	tablesArr := rootObj.Name("Tables").Array()
	for _, table := range a.layout.tables {
		tableObj := tablesArr.Object()
		tableObj.Name("Binding").Int(table.Binding)
		tableObj.Name("Kind").String(table.Kind.String())
		tableObj.Name("Capacity").Int(table.Capacity)
		tableObj.Name("Written").Int(written[table.Binding])
		tableObj.End()
	}
	tablesArr.End()

	rootObj.End()
	return string(writer.Bytes())
}

func (a *Allocator) destroyObjects() {
	if a.pipelineLayout != nil {
		a.pipelineLayout.Destroy()
		a.pipelineLayout = nil
	}
	for _, pool := range a.pools {
		pool.Destroy()
	}
	a.pools = nil
	a.set = nil
	if a.setLayout != nil {
		a.setLayout.Destroy()
		a.setLayout = nil
	}
}

// Destroy destroys the pipeline layout, every descriptor pool and the set layout. Handles that
// are still live are logged; the resources they point at are owned by the caller and are not
// touched.
func (a *Allocator) Destroy() {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	if a.destroyed {
		return
	}

	for _, table := range a.slots {
		if table == nil || table.liveCount() == 0 {
			continue
		}

		a.logger.LogAttrs(context.Background(), slog.LevelError, "[UNRELEASED HANDLES] bindless handles were still live when the allocator was destroyed",
			slog.String("Kind", table.kind.String()),
			slog.Int("Count", table.liveCount()),
		)
	}

	a.destroyObjects()
	a.writes.Clear()
	a.destroyed = true
}
