package camera

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUClusterTile is one cluster's view-space bounding box as written by the cluster
// build pass. Matches the GLSL ClusterTile struct (32 bytes, std430).
type GPUClusterTile struct {
	MinPoint [4]float32 // offset  0: min corner, w unused
	MaxPoint [4]float32 // offset 16: max corner, w unused
}

// Size returns the size of the GPUClusterTile struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (32)
func (g *GPUClusterTile) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUClusterTile struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUClusterTile) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.MinPoint[i]))
		binary.LittleEndian.PutUint32(buf[16+i*4:], math.Float32bits(g.MaxPoint[i]))
	}
	return buf
}

// GPUClusterTileData holds the light and probe index ranges of one cluster as written
// by the cluster cull pass. Matches the GLSL ClusterTileData struct (16 bytes, std430).
type GPUClusterTileData struct {
	LightOffset uint32 // offset  0
	LightCount  uint32 // offset  4
	ProbeOffset uint32 // offset  8
	ProbeCount  uint32 // offset 12
}

// Size returns the size of the GPUClusterTileData struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (16)
func (g *GPUClusterTileData) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUClusterTileData struct into a byte buffer.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUClusterTileData) Marshal() []byte {
	buf := make([]byte, g.Size())
	binary.LittleEndian.PutUint32(buf[0:], g.LightOffset)
	binary.LittleEndian.PutUint32(buf[4:], g.LightCount)
	binary.LittleEndian.PutUint32(buf[8:], g.ProbeOffset)
	binary.LittleEndian.PutUint32(buf[12:], g.ProbeCount)
	return buf
}
