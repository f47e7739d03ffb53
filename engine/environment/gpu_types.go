package environment

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUProbe is the cluster representation of a light probe.
// Matches the GLSL ClusterProbe struct (32 bytes, std430).
type GPUProbe struct {
	Position [3]float32 // offset  0: world-space center
	Radius   float32    // offset 12: influence radius
	Enabled  uint32     // offset 16: 1 if the slot holds a probe
	_pad     [3]uint32  // offset 20: padding to 32 bytes
}

// GPUProbeSize is the byte size of one GPUProbe element.
const GPUProbeSize = 32

// Size returns the size of the GPUProbe struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (32)
func (g *GPUProbe) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUProbe struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUProbe) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Position[i]))
	}
	binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(g.Radius))
	binary.LittleEndian.PutUint32(buf[16:], g.Enabled)
	return buf
}
