package device

import (
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
)

// QueueFamily describes a command-submission channel selected at device creation. It is
// immutable once selected.
type QueueFamily struct {
	Index           int
	Flags           core1_0.QueueFlags
	QueueCount      int
	SupportsPresent bool
}

func (f QueueFamily) SupportsGraphics() bool {
	return f.Flags&core1_0.QueueGraphics != 0
}

func (f QueueFamily) SupportsCompute() bool {
	return f.Flags&core1_0.QueueCompute != 0
}

// SupportsTransfer reports whether transfer commands may be recorded for this family. Graphics
// and compute families support transfer implicitly.
func (f QueueFamily) SupportsTransfer() bool {
	return f.Flags&(core1_0.QueueTransfer|core1_0.QueueGraphics|core1_0.QueueCompute) != 0
}

func (f QueueFamily) SupportsSparseBinding() bool {
	return f.Flags&core1_0.QueueSparseBinding != 0
}

// IsDedicatedTransfer reports whether the family supports transfer but neither graphics nor compute
func (f QueueFamily) IsDedicatedTransfer() bool {
	return f.Flags&core1_0.QueueTransfer != 0 && f.Flags&(core1_0.QueueGraphics|core1_0.QueueCompute) == 0
}

// Queue is a single queue handle retrieved from a QueueFamily
type Queue interface {
	Family() QueueFamily
	Submit(fence Fence, commandBuffers []CommandBuffer) (common.VkResult, error)
	WaitIdle() (common.VkResult, error)
}

// QueueRole names the job a queue was selected for during bootstrap
type QueueRole int

const (
	QueueRoleGraphics QueueRole = iota
	QueueRoleCompute
	QueueRoleTransfer
)

var queueRoleNames = map[QueueRole]string{
	QueueRoleGraphics: "Graphics",
	QueueRoleCompute:  "Compute",
	QueueRoleTransfer: "Transfer",
}

func (r QueueRole) String() string {
	return queueRoleNames[r]
}

// SelectFamily picks the most specialized family that can serve role: a dedicated transfer
// family for QueueRoleTransfer, a compute family without graphics for QueueRoleCompute, and the
// first graphics family for QueueRoleGraphics. It falls back to any capable family and returns
// false if none is capable.
func SelectFamily(families []QueueFamily, role QueueRole) (QueueFamily, bool) {
	var capable func(QueueFamily) bool
	var preferred func(QueueFamily) bool

	switch role {
	case QueueRoleTransfer:
		capable = QueueFamily.SupportsTransfer
		preferred = QueueFamily.IsDedicatedTransfer
	case QueueRoleCompute:
		capable = QueueFamily.SupportsCompute
		preferred = func(f QueueFamily) bool { return !f.SupportsGraphics() }
	default:
		capable = QueueFamily.SupportsGraphics
		preferred = capable
	}

	fallback := -1
	for i, family := range families {
		if !capable(family) {
			continue
		}
		if preferred(family) {
			return family, true
		}
		if fallback < 0 {
			fallback = i
		}
	}

	if fallback < 0 {
		return QueueFamily{}, false
	}
	return families[fallback], true
}
