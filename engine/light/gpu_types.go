package light

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// GPULight is the std430 layout of one entry of the cluster lights storage buffer.
// Size: 64 bytes.
type GPULight struct {
	Position  [3]float32 // offset  0: world-space position (point/spot)
	Range     float32    // offset 12: attenuation cutoff distance
	Color     [3]float32 // offset 16: RGB color
	Intensity float32    // offset 28: scalar multiplier
	Direction [3]float32 // offset 32: normalized direction (directional/spot)
	LightType uint32     // offset 44: 0 = directional, 1 = point, 2 = spot
	InnerCone float32    // offset 48: cos(inner half-angle) for spot
	OuterCone float32    // offset 52: cos(outer half-angle) for spot
	Enabled   uint32     // offset 56: 0 marks a free or disabled slot
	_pad      uint32     // offset 60
}

// GPULightSize is the byte stride of GPULight entries in the lights buffer.
const GPULightSize = 64

// Size returns the size of the GPULight struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (g *GPULight) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPULight struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload
func (g *GPULight) Marshal() []byte {
	buf := make([]byte, GPULightSize)
	putVec3 := func(off int, v [3]float32) {
		for i := 0; i < 3; i++ {
			binary.LittleEndian.PutUint32(buf[off+i*4:], math.Float32bits(v[i]))
		}
	}
	putVec3(0, g.Position)
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.Range))
	putVec3(16, g.Color)
	binary.LittleEndian.PutUint32(buf[28:32], math.Float32bits(g.Intensity))
	putVec3(32, g.Direction)
	binary.LittleEndian.PutUint32(buf[44:48], g.LightType)
	binary.LittleEndian.PutUint32(buf[48:52], math.Float32bits(g.InnerCone))
	binary.LittleEndian.PutUint32(buf[52:56], math.Float32bits(g.OuterCone))
	binary.LittleEndian.PutUint32(buf[56:60], g.Enabled)
	return buf
}

// ToGPULight converts a Light into its storage buffer representation.
//
// Parameters:
//   - l: the Light to convert
//
// Returns:
//   - GPULight: the GPU-aligned representation
func ToGPULight(l Light) GPULight {
	enabled := uint32(0)
	if l.Enabled() {
		enabled = 1
	}
	return GPULight{
		Position:  l.Position(),
		Range:     l.Range(),
		Color:     l.Color(),
		Intensity: l.Intensity(),
		Direction: l.Direction(),
		LightType: uint32(l.Type()),
		InnerCone: l.InnerCone(),
		OuterCone: l.OuterCone(),
		Enabled:   enabled,
	}
}

// EmptyGPULight is the representation of a free slot.
var EmptyGPULight = GPULight{}
