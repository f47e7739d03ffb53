package model

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-rendergraph/engine/device"
)

// GPUVertex is the interleaved vertex of lit and unlit meshes.
// Size: 32 bytes. Attribute locations match the built-in vertex shaders.
type GPUVertex struct {
	Position [3]float32 // offset  0, location 0
	TexCoord [2]float32 // offset 12, location 1
	Normal   [3]float32 // offset 20, location 2
}

// GPUVertexLayout is the attribute layout of GPUVertex.
var GPUVertexLayout = device.VertexLayout{
	Stride: 32,
	Attributes: []device.VertexAttribute{
		{Location: 0, Components: 3, Offset: 0},
		{Location: 1, Components: 2, Offset: 12},
		{Location: 2, Components: 3, Offset: 20},
	},
}

// Size returns the size of the GPUVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload.
func (g *GPUVertex) Marshal() []byte {
	buf := make([]byte, 32)
	putFloats(buf[0:12], g.Position[:])
	putFloats(buf[12:20], g.TexCoord[:])
	putFloats(buf[20:32], g.Normal[:])
	return buf
}

// GPUColorVertex is the interleaved vertex of immediate-mode geometry.
// Size: 36 bytes.
type GPUColorVertex struct {
	Position [3]float32 // offset  0, location 0
	TexCoord [2]float32 // offset 12, location 1
	Color    [4]float32 // offset 20, location 2
}

// GPUColorVertexLayout is the attribute layout of GPUColorVertex.
var GPUColorVertexLayout = device.VertexLayout{
	Stride: 36,
	Attributes: []device.VertexAttribute{
		{Location: 0, Components: 3, Offset: 0},
		{Location: 1, Components: 2, Offset: 12},
		{Location: 2, Components: 4, Offset: 20},
	},
}

// Size returns the size of the GPUColorVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUColorVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUColorVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 36-byte buffer ready for GPU upload.
func (g *GPUColorVertex) Marshal() []byte {
	buf := make([]byte, 36)
	putFloats(buf[0:12], g.Position[:])
	putFloats(buf[12:20], g.TexCoord[:])
	putFloats(buf[20:36], g.Color[:])
	return buf
}

func putFloats(dst []byte, v []float32) {
	for i, f := range v {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(f))
	}
}

// marshalIndices packs indices as uint16 or uint32 little endian.
func marshalIndices(indices []uint32, wide bool) []byte {
	if wide {
		buf := make([]byte, len(indices)*4)
		for i, idx := range indices {
			binary.LittleEndian.PutUint32(buf[i*4:], idx)
		}
		return buf
	}
	buf := make([]byte, len(indices)*2)
	for i, idx := range indices {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(idx))
	}
	return buf
}
