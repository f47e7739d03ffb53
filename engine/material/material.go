package material

import (
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-rendergraph/engine/device"
	"github.com/gogpu/gputypes"
)

var materialCount atomic.Uint64

// material is the implementation of the Material interface.
type material struct {
	mu *sync.Mutex

	name       string
	key        uint64
	typ        MaterialType
	registry   Registry
	params     MaterialParams
	textures   [SamplerMax]device.TextureBinding
	blending   device.BlendingParams
	depthTest  bool
	depthWrite bool
	depthFunc  gputypes.CompareFunction
	cullFace   gputypes.CullMode
}

// Material is an instance of a MaterialType carrying author-set uniforms, textures
// and fixed-function state (blending, depth, culling).
//
// A material belongs to the Registry that created it. Registry returns that owner as
// a plain reference; the registry is the only strong owner.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// Key retrieves the identity key of the material.
	//
	// Returns:
	//   - uint64: a process-unique key
	Key() uint64

	// Type retrieves the material type the material instantiates.
	//
	// Returns:
	//   - MaterialType: the material type
	Type() MaterialType

	// Registry retrieves the registry owning the material.
	//
	// Returns:
	//   - Registry: the owning registry, nil for materials built outside one
	Registry() Registry

	// Params returns a snapshot of the material-owned uniform values.
	//
	// Returns:
	//   - MaterialParams: an independent copy
	Params() MaterialParams

	// SetParam sets a material-owned uniform. Automatic uniforms are ignored.
	//
	// Parameters:
	//   - name: the uniform
	//   - v: the value
	SetParam(name UniformName, v device.UniformValue)

	// Texture retrieves the texture bound to a sampler slot.
	//
	// Parameters:
	//   - name: the sampler slot
	//
	// Returns:
	//   - device.TextureBinding: the binding, with a nil texture when unset
	Texture(name SamplerName) device.TextureBinding

	// SetTexture binds a texture and sampler to a slot.
	//
	// Parameters:
	//   - name: the sampler slot
	//   - tex: the texture, nil to clear
	//   - sampler: the sampler parameters
	SetTexture(name SamplerName, tex *device.Texture, sampler device.SamplerParams)

	// Blending retrieves the blending parameters.
	//
	// Returns:
	//   - device.BlendingParams: the blending parameters
	Blending() device.BlendingParams

	// SetBlending sets the blending parameters.
	//
	// Parameters:
	//   - b: the blending parameters
	SetBlending(b device.BlendingParams)

	// DepthTest reports whether depth testing is enabled.
	DepthTest() bool

	// SetDepthTest enables or disables depth testing.
	SetDepthTest(enabled bool)

	// DepthWrite reports whether depth writes are enabled.
	DepthWrite() bool

	// SetDepthWrite enables or disables depth writes.
	SetDepthWrite(enabled bool)

	// DepthFunc retrieves the depth compare function.
	DepthFunc() gputypes.CompareFunction

	// SetDepthFunc sets the depth compare function.
	SetDepthFunc(fn gputypes.CompareFunction)

	// CullFace retrieves the face culling mode.
	CullFace() gputypes.CullMode

	// SetCullFace sets the face culling mode.
	SetCullFace(mode gputypes.CullMode)

	// IsSkyBox reports whether the material draws the sky box.
	IsSkyBox() bool
}

var _ Material = &material{}

// NewMaterial creates a material of type mt outside any registry.
//
// Parameters:
//   - name: the material identifier
//   - mt: the material type
//   - options: variadic list of MaterialBuilderOption functions
//
// Returns:
//   - Material: the new material
func NewMaterial(name string, mt MaterialType, options ...MaterialBuilderOption) Material {
	return newMaterial(name, mt, nil, options...)
}

func newMaterial(name string, mt MaterialType, reg Registry, options ...MaterialBuilderOption) *material {
	m := &material{
		mu:         &sync.Mutex{},
		name:       name,
		key:        materialCount.Add(1),
		typ:        mt,
		registry:   reg,
		params:     mt.DefaultParams(),
		depthTest:  true,
		depthWrite: true,
		depthFunc:  gputypes.CompareFunctionLessEqual,
		cullFace:   gputypes.CullModeBack,
	}
	if mt.Name() == TypeSkyBox {
		m.depthWrite = false
		m.cullFace = gputypes.CullModeNone
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) Key() uint64 {
	return m.key
}

func (m *material) Type() MaterialType {
	return m.typ
}

func (m *material) Registry() Registry {
	return m.registry
}

func (m *material) Params() MaterialParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.params.Clone()
}

func (m *material) SetParam(name UniformName, v device.UniformValue) {
	if name.IsAuto() {
		return
	}
	m.mu.Lock()
	m.params.Set(name, v)
	m.mu.Unlock()
}

func (m *material) Texture(name SamplerName) device.TextureBinding {
	if name >= SamplerMax {
		return device.TextureBinding{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.textures[name]
}

func (m *material) SetTexture(name SamplerName, tex *device.Texture, sampler device.SamplerParams) {
	if name >= SamplerMax {
		return
	}
	m.mu.Lock()
	m.textures[name] = device.TextureBinding{Texture: tex, Sampler: sampler}
	m.mu.Unlock()
}

func (m *material) Blending() device.BlendingParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.blending
}

func (m *material) SetBlending(b device.BlendingParams) {
	m.mu.Lock()
	m.blending = b
	m.mu.Unlock()
}

func (m *material) DepthTest() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.depthTest
}

func (m *material) SetDepthTest(enabled bool) {
	m.mu.Lock()
	m.depthTest = enabled
	m.mu.Unlock()
}

func (m *material) DepthWrite() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.depthWrite
}

func (m *material) SetDepthWrite(enabled bool) {
	m.mu.Lock()
	m.depthWrite = enabled
	m.mu.Unlock()
}

func (m *material) DepthFunc() gputypes.CompareFunction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.depthFunc
}

func (m *material) SetDepthFunc(fn gputypes.CompareFunction) {
	m.mu.Lock()
	m.depthFunc = fn
	m.mu.Unlock()
}

func (m *material) CullFace() gputypes.CullMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cullFace
}

func (m *material) SetCullFace(mode gputypes.CullMode) {
	m.mu.Lock()
	m.cullFace = mode
	m.mu.Unlock()
}

func (m *material) IsSkyBox() bool {
	return m.typ.Name() == TypeSkyBox
}
