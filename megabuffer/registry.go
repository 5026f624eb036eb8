package megabuffer

import (
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/quartermaster/device"
	"github.com/vkngwrapper/quartermaster/internal/utils"
	"github.com/vkngwrapper/quartermaster/memutils"
	"github.com/vkngwrapper/quartermaster/transfer"
	"golang.org/x/exp/slices"
	"golang.org/x/exp/slog"
)

// ID identifies a megabuffer within its Registry. IDs are assigned sequentially from 1 and are
// never reused by the same Registry.
type ID uint32

// Registry owns every megabuffer created through it. Regions refer back to their megabuffer by
// ID and all region mutation is routed through the owning megabuffer's lock.
type Registry struct {
	logger *slog.Logger
	mutex  utils.OptionalRWMutex

	device      device.Device
	transfer    *transfer.Context
	useMutex    bool
	nextID      ID
	megabuffers *swiss.Map[ID, *Megabuffer]
}

// RegistryOptions configures a Registry and every megabuffer it creates
type RegistryOptions struct {
	// ExternallySynchronized removes the registry's and every megabuffer's internal mutex
	ExternallySynchronized bool
}

func NewRegistry(logger *slog.Logger, dev device.Device, transferContext *transfer.Context, options RegistryOptions) (*Registry, error) {
	if logger == nil {
		return nil, errors.New("attempted to create a megabuffer registry without a logger")
	}
	if dev == nil || transferContext == nil {
		return nil, errors.New("attempted to create a megabuffer registry without a device and transfer context")
	}

	return &Registry{
		logger:      logger,
		mutex:       utils.OptionalRWMutex{UseMutex: !options.ExternallySynchronized},
		device:      dev,
		transfer:    transferContext,
		useMutex:    !options.ExternallySynchronized,
		nextID:      1,
		megabuffers: swiss.NewMap[ID, *Megabuffer](4),
	}, nil
}

// Create allocates the device and staging buffers for a new megabuffer and registers it
func (r *Registry) Create(info CreateInfo) (*Megabuffer, common.VkResult, error) {
	err := info.Validate()
	if err != nil {
		return nil, core1_0.VKErrorUnknown, err
	}

	deviceBuffer, res, err := r.device.CreateDeviceBuffer(info.Capacity, info.Usage|core1_0.BufferUsageTransferDst)
	if err != nil {
		return nil, res, errors.Wrapf(err, "megabuffer %q: failed to create device buffer", info.Name)
	}

	stagingBuffer, res, err := r.device.CreateHostBuffer(info.Capacity, core1_0.BufferUsageTransferSrc)
	if err != nil {
		deviceBuffer.Destroy()
		return nil, res, errors.Wrapf(err, "megabuffer %q: failed to create staging buffer", info.Name)
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	id := r.nextID
	r.nextID++

	megabuffer := newMegabuffer(r, id, info, deviceBuffer, stagingBuffer)
	r.megabuffers.Put(id, megabuffer)

	r.logger.Debug("Registry::Create",
		slog.String("Name", info.Name),
		slog.Int("ID", int(id)),
		slog.Int("Capacity", info.Capacity),
		slog.Int("Alignment", info.Alignment),
	)

	return megabuffer, core1_0.VKSuccess, nil
}

// Get returns the live megabuffer with the given ID
func (r *Registry) Get(id ID) (*Megabuffer, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.megabuffers.Get(id)
}

func (r *Registry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.megabuffers.Count()
}

func (r *Registry) unregister(id ID) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.megabuffers.Delete(id)
}

// sorted returns the live megabuffers in ID order
func (r *Registry) sorted() []*Megabuffer {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	megabuffers := make([]*Megabuffer, 0, r.megabuffers.Count())
	r.megabuffers.Iter(func(_ ID, megabuffer *Megabuffer) bool {
		megabuffers = append(megabuffers, megabuffer)
		return false
	})
	slices.SortFunc(megabuffers, func(left, right *Megabuffer) int {
		return int(left.id) - int(right.id)
	})

	return megabuffers
}

// Destroy destroys every registered megabuffer. Megabuffers with outstanding regions are
// logged and left alive, and the combined error is returned.
func (r *Registry) Destroy() error {
	var result error
	for _, megabuffer := range r.sorted() {
		err := megabuffer.Destroy()
		if err != nil {
			result = errors.CombineErrors(result, err)
		}
	}
	return result
}

// CalculateStatistics sums the statistics of every registered megabuffer
func (r *Registry) CalculateStatistics(stats *memutils.DetailedStatistics) {
	stats.Clear()
	for _, megabuffer := range r.sorted() {
		megabuffer.AddDetailedStatistics(stats)
	}
}

// BuildStatsString returns a json document describing every registered megabuffer. If
// detailedMap is true, every region and free range is listed.
func (r *Registry) BuildStatsString(detailedMap bool) string {
	writer := jwriter.NewWriter()

	rootObj := writer.Object()

	var total memutils.DetailedStatistics
	r.CalculateStatistics(&total)
	totalObj := rootObj.Name("Total").Object()
	printDetailedStatistics(&totalObj, &total)
	totalObj.End()

	buffersObj := rootObj.Name("Megabuffers").Object()
	for _, megabuffer := range r.sorted() {
		megabufferObj := buffersObj.Name(strconv.Itoa(int(megabuffer.id))).Object()
		megabuffer.printDetailedMap(&megabufferObj, detailedMap)
		megabufferObj.End()
	}
	buffersObj.End()

	rootObj.End()

	return string(writer.Bytes())
}

func printDetailedStatistics(json *jwriter.ObjectState, stats *memutils.DetailedStatistics) {
	json.Name("BufferCount").Int(stats.BufferCount)
	json.Name("RegionCount").Int(stats.RegionCount)
	json.Name("CapacityBytes").Int(stats.CapacityBytes)
	json.Name("RegionBytes").Int(stats.RegionBytes)
	json.Name("FreeRangeCount").Int(stats.FreeRangeCount)

	if stats.RegionCount > 0 {
		json.Name("RegionSizeMin").Int(stats.RegionSizeMin)
		json.Name("RegionSizeMax").Int(stats.RegionSizeMax)
	}
	if stats.FreeRangeCount > 0 {
		json.Name("FreeRangeSizeMin").Int(stats.FreeRangeSizeMin)
		json.Name("FreeRangeSizeMax").Int(stats.FreeRangeSizeMax)
	}
}
