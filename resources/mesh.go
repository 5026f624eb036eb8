package resources

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/quartermaster/bindless"
	"github.com/vkngwrapper/quartermaster/megabuffer"
	"golang.org/x/exp/slog"
)

// IndexSize is the size of one index. Meshes use 32-bit indices.
const IndexSize = 4

var ErrNoIndexBuffer = errors.New("resource context was created without an index buffer")

// MeshAllocation holds the regions a mesh was uploaded into. Release must be called once the
// mesh is no longer drawn.
type MeshAllocation struct {
	Vertices *megabuffer.Region
	// Indices is nil for non-indexed meshes
	Indices *megabuffer.Region

	// VertexOffset is the byte offset of the mesh in the vertex megabuffer
	VertexOffset uint32
	// FirstIndex is the position of the mesh's first index in the index megabuffer
	FirstIndex uint32
	IndexCount uint32
}

// DrawData returns the push constant block that draws this mesh with the given object and
// material slots
func (m *MeshAllocation) DrawData(object, material bindless.Handle) bindless.PerDrawData {
	return bindless.PerDrawData{
		ObjectIndex:   object.Index,
		MaterialIndex: material.Index,
		VertexOffset:  m.VertexOffset,
	}
}

// Release returns both regions to their megabuffers
func (m *MeshAllocation) Release() error {
	var result error
	if m.Vertices != nil {
		result = errors.CombineErrors(result, m.Vertices.Release())
	}
	if m.Indices != nil {
		result = errors.CombineErrors(result, m.Indices.Release())
	}
	return result
}

// UploadMesh allocates vertex and index regions, writes the mesh into them and uploads both
// megabuffers. indices may be empty for non-indexed meshes. If any step fails, every region
// allocated by the call is released before returning.
func (c *Context) UploadMesh(vertices, indices []byte) (*MeshAllocation, common.VkResult, error) {
	if len(vertices) == 0 {
		return nil, core1_0.VKErrorUnknown, errors.New("attempted to upload a mesh without vertices")
	}
	if len(indices)%IndexSize != 0 {
		return nil, core1_0.VKErrorUnknown, errors.Newf("index data of %d bytes is not a whole number of %d-byte indices", len(indices), IndexSize)
	}
	if len(indices) > 0 && c.indices == nil {
		return nil, core1_0.VKErrorUnknown, ErrNoIndexBuffer
	}

	mesh := &MeshAllocation{}
	res, err := c.uploadMesh(mesh, vertices, indices)
	if err != nil {
		releaseErr := mesh.Release()
		if releaseErr != nil {
			c.logger.Error("failed to release mesh regions after a failed upload", slog.Any("error", releaseErr))
		}
		return nil, res, err
	}

	c.logger.Debug("ResourceContext::UploadMesh",
		slog.Int("VertexOffset", int(mesh.VertexOffset)),
		slog.Int("VertexBytes", len(vertices)),
		slog.Int("IndexCount", int(mesh.IndexCount)),
	)

	return mesh, res, nil
}

func (c *Context) uploadMesh(mesh *MeshAllocation, vertices, indices []byte) (common.VkResult, error) {
	var err error
	mesh.Vertices, err = c.vertices.AllocateRegion(len(vertices))
	if err != nil {
		return core1_0.VKErrorUnknown, errors.Wrap(err, "failed to allocate vertex region")
	}
	mesh.VertexOffset = uint32(mesh.Vertices.Offset())

	err = mesh.Vertices.Write(vertices)
	if err != nil {
		return core1_0.VKErrorUnknown, err
	}

	if len(indices) > 0 {
		mesh.Indices, err = c.indices.AllocateRegion(len(indices))
		if err != nil {
			return core1_0.VKErrorUnknown, errors.Wrap(err, "failed to allocate index region")
		}
		mesh.FirstIndex = uint32(mesh.Indices.Offset() / IndexSize)
		mesh.IndexCount = uint32(len(indices) / IndexSize)

		err = mesh.Indices.Write(indices)
		if err != nil {
			return core1_0.VKErrorUnknown, err
		}
	}

	res, err := c.vertices.Upload()
	if err != nil {
		return res, err
	}

	if mesh.Indices != nil {
		res, err = c.indices.Upload()
		if err != nil {
			return res, err
		}
	}

	return res, nil
}
