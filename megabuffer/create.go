package megabuffer

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/quartermaster/memutils"
)

const (
	// DefaultVertexCapacity is the capacity of the engine's vertex megabuffer, 256MiB
	DefaultVertexCapacity int = 256 * 1024 * 1024
	// DefaultIndexCapacity is the capacity of the engine's index megabuffer, 64MiB
	DefaultIndexCapacity int = 64 * 1024 * 1024

	DefaultVertexAlignment  int = 16
	DefaultIndexAlignment   int = 4
	DefaultStorageAlignment int = 16
	DefaultUniformAlignment int = 256
)

// CreateInfo describes a megabuffer. Capacity is fixed for the lifetime of the megabuffer.
type CreateInfo struct {
	// Name is used in logs and statistics
	Name string
	// Capacity is the size in bytes of both the device and staging buffers. It must be a
	// multiple of Alignment.
	Capacity int
	// Alignment is the granularity of every region offset and size. It must be a power of two.
	Alignment int
	// Usage is the usage of the device buffer. core1_0.BufferUsageTransferDst is always added.
	Usage core1_0.BufferUsageFlags
}

// Validate fails if the CreateInfo cannot describe a megabuffer
func (i CreateInfo) Validate() error {
	if i.Capacity <= 0 {
		return errors.Newf("megabuffer %q: capacity must be positive, got %d", i.Name, i.Capacity)
	}

	err := memutils.CheckPow2(i.Alignment, "megabuffer alignment")
	if err != nil {
		return errors.Wrapf(err, "megabuffer %q", i.Name)
	}

	if i.Capacity%i.Alignment != 0 {
		return errors.Newf("megabuffer %q: capacity %d is not a multiple of alignment %d", i.Name, i.Capacity, i.Alignment)
	}

	return nil
}

// VertexCreateInfo describes the engine's default vertex megabuffer
func VertexCreateInfo() CreateInfo {
	return CreateInfo{
		Name:      "Vertex",
		Capacity:  DefaultVertexCapacity,
		Alignment: DefaultVertexAlignment,
		Usage:     core1_0.BufferUsageVertexBuffer | core1_0.BufferUsageStorageBuffer,
	}
}

// IndexCreateInfo describes the engine's default index megabuffer
func IndexCreateInfo() CreateInfo {
	return CreateInfo{
		Name:      "Index",
		Capacity:  DefaultIndexCapacity,
		Alignment: DefaultIndexAlignment,
		Usage:     core1_0.BufferUsageIndexBuffer,
	}
}
