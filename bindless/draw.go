package bindless

import "encoding/binary"

// PerDrawDataSize is the size in bytes of an encoded PerDrawData
const PerDrawDataSize = 12

// PerDrawData is the push constant block that identifies a draw. Shaders use ObjectIndex and
// MaterialIndex to index the storage buffer tables and VertexOffset to pull vertices from the
// vertex megabuffer.
type PerDrawData struct {
	ObjectIndex   uint32
	MaterialIndex uint32
	VertexOffset  uint32
}

// Bytes encodes the block in the little-endian layout shaders expect
func (d PerDrawData) Bytes() []byte {
	data := make([]byte, PerDrawDataSize)
	binary.LittleEndian.PutUint32(data[0:], d.ObjectIndex)
	binary.LittleEndian.PutUint32(data[4:], d.MaterialIndex)
	binary.LittleEndian.PutUint32(data[8:], d.VertexOffset)
	return data
}
