package resources

import (
	"time"

	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/quartermaster/bindless"
	"github.com/vkngwrapper/quartermaster/device"
	"github.com/vkngwrapper/quartermaster/megabuffer"
)

// CreateFlags indicate specific context behaviors to activate or deactivate
type CreateFlags int32

var createFlagsMapping = common.NewFlagStringMapping[CreateFlags]()

func (f CreateFlags) Register(str string) {
	createFlagsMapping.Register(f, str)
}
func (f CreateFlags) String() string {
	return createFlagsMapping.FlagsToString(f)
}

const (
	// CreateExternallySynchronized removes the internal mutexes of every component owned by the
	// context. The consumer must guarantee that the context is used from one goroutine at a time.
	CreateExternallySynchronized CreateFlags = 1 << iota
	// CreateSkipIndexBuffer creates only the vertex megabuffer, for renderers that draw
	// non-indexed geometry
	CreateSkipIndexBuffer
)

func init() {
	CreateExternallySynchronized.Register("CreateExternallySynchronized")
	CreateSkipIndexBuffer.Register("CreateSkipIndexBuffer")
}

// Queues holds the queue selected for each role at device creation. Compute and Transfer may be
// left nil, in which case the graphics queue serves them.
type Queues struct {
	Graphics device.Queue
	Compute  device.Queue
	Transfer device.Queue
}

// Role returns the queue serving role
func (q Queues) Role(role device.QueueRole) device.Queue {
	switch role {
	case device.QueueRoleCompute:
		if q.Compute != nil {
			return q.Compute
		}
	case device.QueueRoleTransfer:
		if q.Transfer != nil {
			return q.Transfer
		}
	}

	return q.Graphics
}

// CreateOptions contains optional settings when creating a Context. It is valid to leave every
// field blank.
type CreateOptions struct {
	Flags CreateFlags

	// VertexBuffer describes the vertex megabuffer. If Capacity is 0,
	// megabuffer.VertexCreateInfo() is used.
	VertexBuffer megabuffer.CreateInfo
	// IndexBuffer describes the index megabuffer. If Capacity is 0,
	// megabuffer.IndexCreateInfo() is used.
	IndexBuffer megabuffer.CreateInfo

	// Layout describes the bindless tables. If it has no tables,
	// bindless.DefaultLayoutConfig() is used with its other fields kept.
	Layout bindless.LayoutConfig

	// FenceTimeout bounds immediate submissions. If 0, transfer.DefaultFenceTimeout is used.
	FenceTimeout time.Duration
}
