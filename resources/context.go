package resources

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/quartermaster/bindless"
	"github.com/vkngwrapper/quartermaster/device"
	"github.com/vkngwrapper/quartermaster/encoder"
	"github.com/vkngwrapper/quartermaster/megabuffer"
	"github.com/vkngwrapper/quartermaster/transfer"
	"golang.org/x/exp/slog"
)

// Context owns the resource layer of a device: the transfer context used for uploads, the
// per-family command encoder pools, the vertex and index megabuffers and the bindless tables
type Context struct {
	logger *slog.Logger
	flags  CreateFlags

	device device.Device
	queues Queues

	transfer *transfer.Context
	encoders *encoder.Allocator
	registry *megabuffer.Registry
	vertices *megabuffer.Megabuffer
	indices  *megabuffer.Megabuffer
	bindless *bindless.Allocator
}

// New builds every component in dependency order. If any of them fails, the ones already
// built are destroyed before returning.
func New(logger *slog.Logger, dev device.Device, queues Queues, options CreateOptions) (*Context, common.VkResult, error) {
	if logger == nil {
		return nil, core1_0.VKErrorUnknown, errors.New("attempted to create a resource context without a logger")
	}
	if dev == nil {
		return nil, core1_0.VKErrorUnknown, errors.New("attempted to create a resource context without a device")
	}
	if queues.Graphics == nil {
		return nil, core1_0.VKErrorUnknown, errors.New("attempted to create a resource context without a graphics queue")
	}

	externallySynchronized := options.Flags&CreateExternallySynchronized != 0
	ctx := &Context{
		logger: logger,
		flags:  options.Flags,
		device: dev,
		queues: queues,
	}

	res, err := ctx.build(options, externallySynchronized)
	if err != nil {
		ctx.teardown()
		return nil, res, err
	}

	logger.Debug("ResourceContext::New",
		slog.String("Flags", options.Flags.String()),
		slog.Int("TransferFamily", queues.Role(device.QueueRoleTransfer).Family().Index),
	)

	return ctx, core1_0.VKSuccess, nil
}

func (c *Context) build(options CreateOptions, externallySynchronized bool) (common.VkResult, error) {
	var err error
	var res common.VkResult

	c.transfer, res, err = transfer.New(c.logger, c.device, c.queues.Role(device.QueueRoleTransfer), transfer.CreateOptions{
		FenceTimeout:           options.FenceTimeout,
		ExternallySynchronized: externallySynchronized,
	})
	if err != nil {
		return res, err
	}

	c.encoders, err = encoder.New(c.logger, c.device, encoder.CreateOptions{ExternallySynchronized: externallySynchronized})
	if err != nil {
		return core1_0.VKErrorUnknown, err
	}

	c.registry, err = megabuffer.NewRegistry(c.logger, c.device, c.transfer, megabuffer.RegistryOptions{ExternallySynchronized: externallySynchronized})
	if err != nil {
		return core1_0.VKErrorUnknown, err
	}

	vertexInfo := options.VertexBuffer
	if vertexInfo.Capacity == 0 {
		vertexInfo = megabuffer.VertexCreateInfo()
	}
	c.vertices, res, err = c.registry.Create(vertexInfo)
	if err != nil {
		return res, err
	}

	if options.Flags&CreateSkipIndexBuffer == 0 {
		indexInfo := options.IndexBuffer
		if indexInfo.Capacity == 0 {
			indexInfo = megabuffer.IndexCreateInfo()
		}
		if indexInfo.Alignment%IndexSize != 0 {
			return core1_0.VKErrorUnknown, errors.Newf("index megabuffer alignment %d is not a multiple of the %d-byte index size", indexInfo.Alignment, IndexSize)
		}
		c.indices, res, err = c.registry.Create(indexInfo)
		if err != nil {
			return res, err
		}
	}

	layout := options.Layout
	if len(layout.Tables) == 0 {
		layout.Tables = bindless.DefaultLayoutConfig().Tables
	}
	c.bindless, res, err = bindless.New(c.logger, c.device, layout, bindless.CreateOptions{ExternallySynchronized: externallySynchronized})
	if err != nil {
		return res, err
	}

	return core1_0.VKSuccess, nil
}

func (c *Context) Flags() CreateFlags {
	return c.flags
}

func (c *Context) Queues() Queues {
	return c.queues
}

func (c *Context) Transfer() *transfer.Context {
	return c.transfer
}

func (c *Context) Encoders() *encoder.Allocator {
	return c.encoders
}

func (c *Context) Megabuffers() *megabuffer.Registry {
	return c.registry
}

func (c *Context) VertexBuffer() *megabuffer.Megabuffer {
	return c.vertices
}

// IndexBuffer returns the index megabuffer, or nil if the context was created with
// CreateSkipIndexBuffer
func (c *Context) IndexBuffer() *megabuffer.Megabuffer {
	return c.indices
}

func (c *Context) Bindless() *bindless.Allocator {
	return c.bindless
}

// AllocateEncoder allocates a command encoder for the queue serving role
func (c *Context) AllocateEncoder(role device.QueueRole) (*encoder.Encoder, common.VkResult, error) {
	return c.encoders.Allocate(c.queues.Role(role))
}

func (c *Context) teardown() error {
	var result error

	if c.bindless != nil {
		c.bindless.Destroy()
	}
	if c.registry != nil {
		err := c.registry.Destroy()
		if err != nil {
			result = errors.CombineErrors(result, err)
		}
	}
	if c.encoders != nil {
		c.encoders.Destroy()
	}
	if c.transfer != nil {
		c.transfer.Destroy()
	}

	return result
}

// Destroy waits for the device to go idle and destroys every component. Megabuffers that still
// have live regions are logged and reported in the returned error.
func (c *Context) Destroy() error {
	var result error
	_, err := c.device.WaitIdle()
	if err != nil {
		result = errors.Wrap(err, "failed to wait for the device before destroying the resource context")
	}

	return errors.CombineErrors(result, c.teardown())
}
