package material

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-rendergraph/engine/device"
)

// TypeName identifies a material type (a shader program plus its declared interface).
type TypeName uint8

const (
	TypeBasic TypeName = iota
	TypeUnlit
	TypeImm
	TypeSkyBox
	TypeClusterBuild
	TypeClusterCull
	TypePrepass1
	TypePrepass2
	TypePrepassWS

	TypeMax
)

var typeNames = [TypeMax]string{
	"Basic", "Unlit", "Imm", "SkyBox", "ClusterBuild", "ClusterCull", "Prepass1", "Prepass2", "PrepassWS",
}

func (t TypeName) String() string {
	if t < TypeMax {
		return typeNames[t]
	}
	return fmt.Sprintf("TypeName(%d)", t)
}

// TypeSpec describes a material type to register: its program sources and the
// uniforms, samplers, storage blocks and fragment outputs the program declares.
type TypeSpec struct {
	Name           TypeName
	Source         device.ShaderSource
	Uniforms       UniformSet
	Samplers       SamplerSet
	StorageBuffers StorageSet
	Outputs        OutputSet
}

// materialType is the implementation of the MaterialType interface.
type materialType struct {
	mu *sync.Mutex

	spec      TypeSpec
	program   *device.Program
	ready     bool
	locations [UniformMax]int32
	defaults  MaterialParams
}

// MaterialType is a linked program together with the interface it declares.
//
// The render graph only touches what a type declares: automatic uniforms are
// computed only for names in Uniforms, textures are bound only for Samplers and
// storage buffers only for StorageBuffers.
type MaterialType interface {
	// Name returns the type name.
	//
	// Returns:
	//   - TypeName: the type name
	Name() TypeName

	// Key returns the identity key used to order material types in the render graph.
	//
	// Returns:
	//   - uint64: the program key
	Key() uint64

	// Program returns the device program.
	//
	// Returns:
	//   - *device.Program: the program handle
	Program() *device.Program

	// IsCompute reports whether the type is a compute program.
	//
	// Returns:
	//   - bool: true for compute programs
	IsCompute() bool

	// Ready reports whether the last link succeeded. Materials of a type that is
	// not ready are never drawn.
	//
	// Returns:
	//   - bool: true if the program is usable
	Ready() bool

	// Uniforms returns the declared uniform set.
	Uniforms() UniformSet

	// HasUniform reports whether the program declares name.
	HasUniform(name UniformName) bool

	// UniformLocation returns the location of name, or -1 when it is not declared.
	UniformLocation(name UniformName) int32

	// Samplers returns the declared samplers. Texture units follow enum order.
	Samplers() SamplerSet

	// SamplerUnit returns the texture unit of a declared sampler, or -1.
	SamplerUnit(name SamplerName) int

	// StorageBuffers returns the declared storage blocks.
	StorageBuffers() StorageSet

	// Outputs returns the fragment outputs the program writes.
	Outputs() OutputSet

	// SetDefaultUniform sets a value copied into the params of every material created afterwards.
	//
	// Parameters:
	//   - name: the uniform, must be declared and not automatic
	//   - v: the default value
	SetDefaultUniform(name UniformName, v device.UniformValue)

	// DefaultParams returns a copy of the default uniform values.
	DefaultParams() MaterialParams
}

var _ MaterialType = &materialType{}

func newMaterialType(spec TypeSpec) *materialType {
	mt := &materialType{
		mu:      &sync.Mutex{},
		spec:    spec,
		program: device.NewProgram(),
	}
	for i := range mt.locations {
		mt.locations[i] = -1
	}
	return mt
}

// link compiles the program on dev and resolves declared uniform locations.
func (mt *materialType) link(dev device.Device, src device.ShaderSource) error {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	if err := dev.CompileProgram(mt.program, src); err != nil {
		mt.ready = false
		return err
	}
	for n := UniformName(0); n < UniformMax; n++ {
		mt.locations[n] = -1
		if mt.spec.Uniforms.Has(n) {
			mt.locations[n] = dev.UniformLocation(mt.program, n.GLSLName())
		}
	}
	mt.ready = true
	return nil
}

func (mt *materialType) Name() TypeName {
	return mt.spec.Name
}

func (mt *materialType) Key() uint64 {
	return mt.program.Key()
}

func (mt *materialType) Program() *device.Program {
	return mt.program
}

func (mt *materialType) IsCompute() bool {
	return mt.spec.Source.IsCompute()
}

func (mt *materialType) Ready() bool {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	return mt.ready
}

func (mt *materialType) Uniforms() UniformSet {
	return mt.spec.Uniforms
}

func (mt *materialType) HasUniform(name UniformName) bool {
	return mt.spec.Uniforms.Has(name)
}

func (mt *materialType) UniformLocation(name UniformName) int32 {
	if name >= UniformMax {
		return -1
	}
	mt.mu.Lock()
	defer mt.mu.Unlock()
	return mt.locations[name]
}

func (mt *materialType) Samplers() SamplerSet {
	return mt.spec.Samplers
}

func (mt *materialType) SamplerUnit(name SamplerName) int {
	for unit, n := range mt.spec.Samplers.Names() {
		if n == name {
			return unit
		}
	}
	return -1
}

func (mt *materialType) StorageBuffers() StorageSet {
	return mt.spec.StorageBuffers
}

func (mt *materialType) Outputs() OutputSet {
	return mt.spec.Outputs
}

func (mt *materialType) SetDefaultUniform(name UniformName, v device.UniformValue) {
	if name.IsAuto() || !mt.spec.Uniforms.Has(name) {
		return
	}
	mt.mu.Lock()
	mt.defaults.Set(name, v)
	mt.mu.Unlock()
}

func (mt *materialType) DefaultParams() MaterialParams {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	return mt.defaults.Clone()
}
