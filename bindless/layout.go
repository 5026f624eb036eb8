package bindless

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/core1_2"
	"github.com/vkngwrapper/quartermaster/device"
	"golang.org/x/exp/slices"
)

var ErrInvalidLayout = errors.New("invalid bindless layout")

const (
	// DefaultSetsPerPool is the number of sets each descriptor pool is sized for. A new pool
	// is created whenever the current one is exhausted.
	DefaultSetsPerPool = 16
	// DefaultInitialVariableCount is the number of descriptors the variable-count table is
	// allocated with before it first grows
	DefaultInitialVariableCount = 256
	// maxPushConstantSize is the smallest maxPushConstantsSize a conforming device reports
	maxPushConstantSize = 128
)

// Default binding numbers of the tables in DefaultLayoutConfig
const (
	FrameBinding    = 0
	MaterialBinding = 1
	ObjectBinding   = 2
	SamplerBinding  = 3
	TextureBinding  = 4
)

// TableConfig describes one binding of the bindless set
type TableConfig struct {
	Binding int
	Kind    ResourceKind
	// Capacity is the number of slots in the table. If 0, Kind.DefaultCapacity() is used.
	Capacity int
	// Stages are the shader stages that can read the table. If 0, every stage can.
	Stages core1_0.ShaderStageFlags
}

// LayoutConfig describes the bindless set layout and the pipeline layout built around it.
// Call Build to validate it and fill in defaults.
type LayoutConfig struct {
	Tables []TableConfig

	// SetsPerPool is the number of bindless sets a descriptor pool holds. If 0,
	// DefaultSetsPerPool is used.
	SetsPerPool int
	// InitialVariableCount is the number of descriptors allocated for the sampled image table
	// before it grows. If 0, DefaultInitialVariableCount is used, capped at the table capacity.
	InitialVariableCount int
	// PushConstantSize is the size of the push constant block shared by every stage. If 0,
	// PerDrawDataSize is used.
	PushConstantSize int
}

// DefaultLayoutConfig returns the layout used by the renderer: one uniform buffer table for
// per-frame data, storage buffer tables for materials and per-object data, a sampler table and
// a sampled image table
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		Tables: []TableConfig{
			{Binding: FrameBinding, Kind: UniformBuffer},
			{Binding: MaterialBinding, Kind: StorageBuffer},
			{Binding: ObjectBinding, Kind: StorageBuffer},
			{Binding: SamplerBinding, Kind: Sampler},
			{Binding: TextureBinding, Kind: SampledImage},
		},
	}
}

// Layout is a validated LayoutConfig with every default applied
type Layout struct {
	tables               []TableConfig
	setsPerPool          int
	initialVariableCount int
	pushConstantSize     int

	// variableBinding is the binding of the variable-count table, or -1
	variableBinding int
	capacities      [resourceKindCount]int
}

// Build validates the config. Tables are sorted by binding; every table of the same kind shares
// one index space and so must have the same capacity. At most one sampled image table may exist,
// and it must have the highest binding number since its descriptor count varies.
func (c LayoutConfig) Build() (Layout, error) {
	if len(c.Tables) == 0 {
		return Layout{}, errors.Wrap(ErrInvalidLayout, "no tables were provided")
	}
	if c.SetsPerPool < 0 {
		return Layout{}, errors.Wrapf(ErrInvalidLayout, "sets per pool must not be negative, got %d", c.SetsPerPool)
	}
	if c.InitialVariableCount < 0 {
		return Layout{}, errors.Wrapf(ErrInvalidLayout, "initial variable count must not be negative, got %d", c.InitialVariableCount)
	}

	layout := Layout{
		tables:           make([]TableConfig, 0, len(c.Tables)),
		setsPerPool:      c.SetsPerPool,
		pushConstantSize: c.PushConstantSize,
		variableBinding:  -1,
	}
	if layout.setsPerPool == 0 {
		layout.setsPerPool = DefaultSetsPerPool
	}
	if layout.pushConstantSize == 0 {
		layout.pushConstantSize = PerDrawDataSize
	}
	if layout.pushConstantSize < 0 || layout.pushConstantSize%4 != 0 || layout.pushConstantSize > maxPushConstantSize {
		return Layout{}, errors.Wrapf(ErrInvalidLayout, "push constant size must be a multiple of 4 no larger than %d, got %d", maxPushConstantSize, layout.pushConstantSize)
	}

	for _, table := range c.Tables {
		if !table.Kind.valid() {
			return Layout{}, errors.Wrapf(ErrInvalidLayout, "binding %d has unknown resource kind %d", table.Binding, table.Kind)
		}
		if table.Binding < 0 {
			return Layout{}, errors.Wrapf(ErrInvalidLayout, "binding numbers must not be negative, got %d", table.Binding)
		}
		if table.Capacity < 0 {
			return Layout{}, errors.Wrapf(ErrInvalidLayout, "binding %d has negative capacity %d", table.Binding, table.Capacity)
		}
		if table.Capacity == 0 {
			table.Capacity = table.Kind.DefaultCapacity()
		}
		if table.Stages == 0 {
			table.Stages = core1_0.StageAll
		}

		existing := layout.capacities[table.Kind]
		if existing != 0 && existing != table.Capacity {
			return Layout{}, errors.Wrapf(ErrInvalidLayout, "%s tables must share a capacity, got %d and %d", table.Kind, existing, table.Capacity)
		}
		layout.capacities[table.Kind] = table.Capacity

		if table.Kind.VariableCount() {
			if layout.variableBinding >= 0 {
				return Layout{}, errors.Wrapf(ErrInvalidLayout, "only one %s table is permitted", table.Kind)
			}
			layout.variableBinding = table.Binding
		}

		layout.tables = append(layout.tables, table)
	}

	slices.SortFunc(layout.tables, func(left, right TableConfig) int {
		return left.Binding - right.Binding
	})
	for i := 1; i < len(layout.tables); i++ {
		if layout.tables[i].Binding == layout.tables[i-1].Binding {
			return Layout{}, errors.Wrapf(ErrInvalidLayout, "binding %d is used more than once", layout.tables[i].Binding)
		}
	}

	if layout.variableBinding >= 0 {
		last := layout.tables[len(layout.tables)-1]
		if last.Binding != layout.variableBinding {
			return Layout{}, errors.Wrapf(ErrInvalidLayout, "variable-count binding %d must be the highest binding, but %d is higher", layout.variableBinding, last.Binding)
		}

		layout.initialVariableCount = c.InitialVariableCount
		if layout.initialVariableCount == 0 {
			layout.initialVariableCount = DefaultInitialVariableCount
		}
		if layout.initialVariableCount > last.Capacity {
			layout.initialVariableCount = last.Capacity
		}
	}

	return layout, nil
}

// Table returns the config of the table at binding
func (l Layout) Table(binding int) (TableConfig, bool) {
	for _, table := range l.tables {
		if table.Binding == binding {
			return table, true
		}
	}
	return TableConfig{}, false
}

func (l Layout) Tables() []TableConfig {
	return append([]TableConfig(nil), l.tables...)
}

// Capacity returns the number of slots available for a kind, or 0 if the layout has no table of
// that kind
func (l Layout) Capacity(kind ResourceKind) int {
	if !kind.valid() {
		return 0
	}
	return l.capacities[kind]
}

func (l Layout) PushConstantSize() int {
	return l.pushConstantSize
}

func (l Layout) setLayoutInfo() device.DescriptorSetLayoutInfo {
	info := device.DescriptorSetLayoutInfo{
		Flags:    core1_2.DescriptorSetLayoutCreateUpdateAfterBindPool,
		Bindings: make([]device.DescriptorBinding, 0, len(l.tables)),
	}
	for _, table := range l.tables {
		info.Bindings = append(info.Bindings, device.DescriptorBinding{
			Binding: table.Binding,
			Type:    table.Kind.DescriptorType(),
			Count:   table.Capacity,
			Stages:  table.Stages,
			Flags:   table.Kind.BindingFlags(),
		})
	}
	return info
}

// poolInfo sizes a pool for setsPerPool complete sets. Variable-count tables are budgeted at
// full capacity so that a grown set always fits in a fresh pool.
func (l Layout) poolInfo() device.DescriptorPoolInfo {
	counts := make(map[core1_0.DescriptorType]int)
	var types []core1_0.DescriptorType
	for _, table := range l.tables {
		descriptorType := table.Kind.DescriptorType()
		if _, ok := counts[descriptorType]; !ok {
			types = append(types, descriptorType)
		}
		counts[descriptorType] += table.Capacity * l.setsPerPool
	}

	info := device.DescriptorPoolInfo{
		Flags:   core1_2.DescriptorPoolCreateUpdateAfterBind,
		MaxSets: l.setsPerPool,
	}
	for _, descriptorType := range types {
		info.PoolSizes = append(info.PoolSizes, core1_0.DescriptorPoolSize{
			Type:            descriptorType,
			DescriptorCount: counts[descriptorType],
		})
	}
	return info
}

func (l Layout) pushConstantRanges() []core1_0.PushConstantRange {
	return []core1_0.PushConstantRange{
		{
			StageFlags: core1_0.StageAll,
			Offset:     0,
			Size:       l.pushConstantSize,
		},
	}
}
