package material

import (
	"fmt"
	"math/bits"
)

// UniformName enumerates every uniform a material program may declare.
// Names up to MaxAuto are filled in from the camera and scene environment at compile time.
type UniformName uint8

const (
	UniformViewProjMatrix UniformName = iota
	UniformModelViewProjMatrix
	UniformModelMatrix
	UniformPrevStableMatrix
	UniformCurStableMatrix
	UniformStableProjMatrix
	UniformStableViewMatrix
	UniformEyePos
	UniformAmbientColor
	UniformViewportSize
	UniformTime
	UniformDt
	UniformRealDt
	UniformClusterCfg
	UniformOutputMask
	UniformImmCameraIdx

	UniformMainColor
	UniformSpecularColor
	UniformShininess
	UniformEmissiveFactor
	UniformRoughness
	UniformMetalness
	UniformMipLevel
	UniformStrength
	UniformThreshold
	UniformGridPos
	UniformGridStep
	UniformGridColor

	UniformMax
)

// UniformMaxAuto is the last automatic uniform.
const UniformMaxAuto = UniformImmCameraIdx

var uniformNames = [UniformMax]string{
	"ViewProjMatrix", "ModelViewProjMatrix", "ModelMatrix", "PrevStableMatrix",
	"CurStableMatrix", "StableProjMatrix", "StableViewMatrix", "EyePos",
	"AmbientColor", "ViewportSize", "Time", "Dt", "RealDt", "ClusterCfg",
	"OutputMask", "ImmCameraIdx",
	"MainColor", "SpecularColor", "Shininess", "EmissiveFactor", "Roughness",
	"Metalness", "MipLevel", "Strength", "Threshold", "GridPos", "GridStep", "GridColor",
}

// String returns the name without prefix.
func (u UniformName) String() string {
	if u < UniformMax {
		return uniformNames[u]
	}
	return fmt.Sprintf("UniformName(%d)", u)
}

// GLSLName returns the identifier programs use for the uniform.
func (u UniformName) GLSLName() string {
	return "u" + u.String()
}

// IsAuto reports whether the uniform is derived from camera/environment state.
func (u UniformName) IsAuto() bool {
	return u <= UniformMaxAuto
}

// SamplerName enumerates the texture slots a material program may declare.
type SamplerName uint8

const (
	SamplerMain SamplerName = iota
	SamplerNormal
	SamplerSpecular
	SamplerNoise
	SamplerRoughness
	SamplerMetalness
	SamplerAO
	SamplerEmissive
	SamplerIrradiance
	SamplerSpecularCM
	SamplerSpecularLUT
	SamplerPrev
	SamplerDepth
	SamplerShadowCSM

	SamplerMax
)

var samplerNames = [SamplerMax]string{
	"Main", "Normal", "Specular", "Noise", "Roughness", "Metalness", "AO", "Emissive",
	"Irradiance", "SpecularCM", "SpecularLUT", "Prev", "Depth", "ShadowCSM",
}

func (s SamplerName) String() string {
	if s < SamplerMax {
		return samplerNames[s]
	}
	return fmt.Sprintf("SamplerName(%d)", s)
}

// StorageBufferName enumerates the storage blocks a program may declare.
// The block binding index equals the enum value.
type StorageBufferName uint8

const (
	StorageClusterTiles StorageBufferName = iota
	StorageClusterTileData
	StorageClusterLightIndices
	StorageClusterLights
	StorageClusterProbeIndices
	StorageClusterProbes
	StorageShadowCSM

	StorageMax
)

var storageNames = [StorageMax]string{
	"ClusterTiles", "ClusterTileData", "ClusterLightIndices", "ClusterLights",
	"ClusterProbeIndices", "ClusterProbes", "ShadowCSM",
}

func (s StorageBufferName) String() string {
	if s < StorageMax {
		return storageNames[s]
	}
	return fmt.Sprintf("StorageBufferName(%d)", s)
}

// Index returns the storage block binding index.
func (s StorageBufferName) Index() uint32 {
	return uint32(s)
}

// UniformSet is a set of uniform names.
type UniformSet uint64

func NewUniformSet(names ...UniformName) UniformSet {
	var s UniformSet
	for _, n := range names {
		s |= 1 << n
	}
	return s
}

func (s UniformSet) Has(n UniformName) bool { return s&(1<<n) != 0 }

func (s UniformSet) Len() int { return bits.OnesCount64(uint64(s)) }

// SamplerSet is a set of sampler names.
type SamplerSet uint32

func NewSamplerSet(names ...SamplerName) SamplerSet {
	var s SamplerSet
	for _, n := range names {
		s |= 1 << n
	}
	return s
}

func (s SamplerSet) Has(n SamplerName) bool { return s&(1<<n) != 0 }

// Names returns the members in enum order, which is also texture unit order.
func (s SamplerSet) Names() []SamplerName {
	var out []SamplerName
	for n := SamplerName(0); n < SamplerMax; n++ {
		if s.Has(n) {
			out = append(out, n)
		}
	}
	return out
}

// StorageSet is a set of storage buffer names.
type StorageSet uint16

func NewStorageSet(names ...StorageBufferName) StorageSet {
	var s StorageSet
	for _, n := range names {
		s |= 1 << n
	}
	return s
}

func (s StorageSet) Has(n StorageBufferName) bool { return s&(1<<n) != 0 }

// Names returns the members in enum order.
func (s StorageSet) Names() []StorageBufferName {
	var out []StorageBufferName
	for n := StorageBufferName(0); n < StorageMax; n++ {
		if s.Has(n) {
			out = append(out, n)
		}
	}
	return out
}

// OutputSet is the set of fragment output indices a program writes.
type OutputSet uint8

func NewOutputSet(outputs ...int) OutputSet {
	var s OutputSet
	for _, o := range outputs {
		s |= 1 << o
	}
	return s
}

func (s OutputSet) Has(n int) bool { return n >= 0 && n < 8 && s&(1<<n) != 0 }

func (s OutputSet) Len() int { return bits.OnesCount8(uint8(s)) }
