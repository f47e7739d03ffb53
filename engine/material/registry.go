package material

import (
	"embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-rendergraph/engine/config"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/device"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/logger"
	"github.com/gogpu/gputypes"
)

//go:embed assets/*
var assets embed.FS

var (
	// ErrUnknownMaterialType is returned when a material type has not been registered.
	ErrUnknownMaterialType = errors.New("unknown material type")
	// ErrDuplicateMaterial is returned when a material name is already taken.
	ErrDuplicateMaterial = errors.New("material already exists")
)

// registry is the implementation of the Registry interface.
type registry struct {
	mu *sync.Mutex

	settings  config.Settings
	header    string
	types     [TypeMax]*materialType
	materials map[string]Material
	immutable [TypeMax]Material
}

// Registry owns material types and named materials.
// Materials keep a plain back-reference to their registry; the registry is the only owner.
type Registry interface {
	// Settings returns the settings the shader header was generated from.
	Settings() config.Settings

	// RegisterType links a program for spec and records the type. A link failure
	// leaves the type registered but not ready and returns the wrapped error.
	//
	// Parameters:
	//   - dev: the device to compile on
	//   - spec: the type description
	//
	// Returns:
	//   - MaterialType: the registered type, also on failure
	//   - error: the link error, if any
	RegisterType(dev device.Device, spec TypeSpec) (MaterialType, error)

	// RegisterBuiltins registers every built-in material type.
	//
	// Parameters:
	//   - dev: the device to compile on
	//
	// Returns:
	//   - error: every link failure joined together
	RegisterBuiltins(dev device.Device) error

	// Type returns a registered material type.
	//
	// Parameters:
	//   - name: the type name
	//
	// Returns:
	//   - MaterialType: the type
	//   - bool: false if the type is not registered
	Type(name TypeName) (MaterialType, bool)

	// CreateMaterial creates and stores a named material. An empty name produces an
	// unnamed material that is not stored.
	//
	// Parameters:
	//   - name: the unique material name
	//   - typeName: the material type
	//   - options: variadic list of MaterialBuilderOption functions
	//
	// Returns:
	//   - Material: the new material
	//   - error: ErrUnknownMaterialType or ErrDuplicateMaterial
	CreateMaterial(name string, typeName TypeName, options ...MaterialBuilderOption) (Material, error)

	// Material looks up a named material.
	Material(name string) (Material, bool)

	// RemoveMaterial drops a named material.
	RemoveMaterial(name string) bool

	// Immutable returns the shared, unnamed material of a type used for internal passes
	// (pre-pass variants and cluster compute). It is created on first use.
	//
	// Parameters:
	//   - typeName: the material type
	//
	// Returns:
	//   - Material: the shared material
	//   - error: ErrUnknownMaterialType if the type is not registered
	Immutable(typeName TypeName) (Material, error)
}

var _ Registry = &registry{}

// NewRegistry creates an empty registry. Shader sources registered through it are
// prefixed with a GLSL header defining the cluster grid and capacity constants from settings.
//
// Parameters:
//   - settings: engine settings
//
// Returns:
//   - Registry: the registry
func NewRegistry(settings config.Settings) Registry {
	return &registry{
		mu:        &sync.Mutex{},
		settings:  settings,
		header:    shaderHeader(settings),
		materials: make(map[string]Material),
	}
}

func shaderHeader(s config.Settings) string {
	var b strings.Builder
	b.WriteString("#version 430 core\n")
	c := s.Cluster
	axes := [3]string{"X", "Y", "Z"}
	for i, axis := range axes {
		fmt.Fprintf(&b, "#define CLUSTER_GRID_%s %du\n", axis, c.GridSize[i])
	}
	for i, axis := range axes {
		local := uint32(1)
		if c.CullNumGroups[i] > 0 {
			local = c.GridSize[i] / c.CullNumGroups[i]
		}
		fmt.Fprintf(&b, "#define CLUSTER_CULL_%s %d\n", axis, local)
	}
	fmt.Fprintf(&b, "#define MAX_LIGHTS %du\n", c.MaxLights)
	fmt.Fprintf(&b, "#define MAX_LIGHTS_PER_TILE %du\n", c.MaxLightsPerTile)
	fmt.Fprintf(&b, "#define MAX_PROBES %du\n", c.MaxProbes)
	fmt.Fprintf(&b, "#define MAX_PROBES_PER_TILE %du\n", c.MaxProbesPerTile)
	common, _ := assets.ReadFile("assets/common.glsl")
	b.Write(common)
	b.WriteString("\n")
	return b.String()
}

func (r *registry) Settings() config.Settings {
	return r.settings
}

func (r *registry) RegisterType(dev device.Device, spec TypeSpec) (MaterialType, error) {
	if spec.Name >= TypeMax {
		return nil, fmt.Errorf("register %v: %w", spec.Name, ErrUnknownMaterialType)
	}
	src := make(device.ShaderSource, len(spec.Source))
	for stage, code := range spec.Source {
		src[stage] = r.header + code
	}

	r.mu.Lock()
	mt := r.types[spec.Name]
	if mt == nil {
		mt = newMaterialType(spec)
		r.types[spec.Name] = mt
	}
	r.mu.Unlock()

	if err := mt.link(dev, src); err != nil {
		logger.For("Material").Warn("material type not usable", "type", spec.Name.String(), "error", err)
		return mt, fmt.Errorf("link material type %v: %w", spec.Name, err)
	}
	logger.For("Material").Debug("material type registered", "type", spec.Name.String(),
		"uniforms", spec.Uniforms.Len(), "compute", mt.IsCompute())
	return mt, nil
}

func (r *registry) RegisterBuiltins(dev device.Device) error {
	var errs []error
	for _, spec := range BuiltinTypes() {
		if _, err := r.RegisterType(dev, spec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *registry) Type(name TypeName) (MaterialType, bool) {
	if name >= TypeMax {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	mt := r.types[name]
	if mt == nil {
		return nil, false
	}
	return mt, true
}

func (r *registry) CreateMaterial(name string, typeName TypeName, options ...MaterialBuilderOption) (Material, error) {
	mt, ok := r.Type(typeName)
	if !ok {
		return nil, fmt.Errorf("create material %q: %v: %w", name, typeName, ErrUnknownMaterialType)
	}
	m := newMaterial(name, mt, r, options...)
	if name == "" {
		return m, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.materials[name]; exists {
		return nil, fmt.Errorf("create material %q: %w", name, ErrDuplicateMaterial)
	}
	r.materials[name] = m
	return m, nil
}

func (r *registry) Material(name string) (Material, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.materials[name]
	return m, ok
}

func (r *registry) RemoveMaterial(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.materials[name]; !ok {
		return false
	}
	delete(r.materials, name)
	return true
}

func (r *registry) Immutable(typeName TypeName) (Material, error) {
	if typeName >= TypeMax {
		return nil, fmt.Errorf("immutable material %v: %w", typeName, ErrUnknownMaterialType)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if m := r.immutable[typeName]; m != nil {
		return m, nil
	}
	mt := r.types[typeName]
	if mt == nil {
		return nil, fmt.Errorf("immutable material %v: %w", typeName, ErrUnknownMaterialType)
	}
	m := newMaterial("", mt, r)
	r.immutable[typeName] = m
	return m, nil
}

func mustAsset(name string) string {
	data, err := assets.ReadFile("assets/" + name)
	if err != nil {
		panic(fmt.Sprintf("material: missing embedded shader %s: %v", name, err))
	}
	return string(data)
}

func graphics(vert, frag string) device.ShaderSource {
	return device.ShaderSource{
		gputypes.ShaderStageVertex:   mustAsset(vert),
		gputypes.ShaderStageFragment: mustAsset(frag),
	}
}

func compute(comp string) device.ShaderSource {
	return device.ShaderSource{gputypes.ShaderStageCompute: mustAsset(comp)}
}

// BuiltinTypes returns the descriptions of every built-in material type.
//
// Returns:
//   - []TypeSpec: one spec per built-in type, in TypeName order
func BuiltinTypes() []TypeSpec {
	return []TypeSpec{
		{
			Name:   TypeBasic,
			Source: graphics("basic.vert", "basic.frag"),
			Uniforms: NewUniformSet(UniformViewProjMatrix, UniformModelMatrix, UniformStableViewMatrix,
				UniformAmbientColor, UniformMainColor, UniformViewportSize, UniformClusterCfg, UniformOutputMask),
			Samplers:       NewSamplerSet(SamplerMain),
			StorageBuffers: NewStorageSet(StorageClusterTileData, StorageClusterLightIndices, StorageClusterLights),
			Outputs:        NewOutputSet(0, 1),
		},
		{
			Name:     TypeUnlit,
			Source:   graphics("unlit.vert", "unlit.frag"),
			Uniforms: NewUniformSet(UniformModelViewProjMatrix, UniformMainColor),
			Samplers: NewSamplerSet(SamplerMain),
			Outputs:  NewOutputSet(0),
		},
		{
			Name:     TypeImm,
			Source:   graphics("imm.vert", "imm.frag"),
			Uniforms: NewUniformSet(UniformViewProjMatrix),
			Samplers: NewSamplerSet(SamplerMain),
			Outputs:  NewOutputSet(0),
		},
		{
			Name:     TypeSkyBox,
			Source:   graphics("skybox.vert", "skybox.frag"),
			Uniforms: NewUniformSet(UniformStableProjMatrix, UniformStableViewMatrix),
			Samplers: NewSamplerSet(SamplerMain),
			Outputs:  NewOutputSet(0),
		},
		{
			Name:           TypeClusterBuild,
			Source:         compute("cluster_build.comp"),
			Uniforms:       NewUniformSet(UniformStableProjMatrix, UniformViewportSize, UniformClusterCfg),
			StorageBuffers: NewStorageSet(StorageClusterTiles),
		},
		{
			Name:     TypeClusterCull,
			Source:   compute("cluster_cull.comp"),
			Uniforms: NewUniformSet(UniformStableViewMatrix),
			StorageBuffers: NewStorageSet(StorageClusterTiles, StorageClusterTileData, StorageClusterLightIndices,
				StorageClusterLights, StorageClusterProbeIndices, StorageClusterProbes),
		},
		{
			Name:     TypePrepass1,
			Source:   graphics("prepass1.vert", "prepass.frag"),
			Uniforms: NewUniformSet(UniformModelViewProjMatrix, UniformStableViewMatrix, UniformModelMatrix),
			Outputs:  NewOutputSet(0),
		},
		{
			Name:     TypePrepass2,
			Source:   graphics("prepass2.vert", "prepass.frag"),
			Uniforms: NewUniformSet(UniformViewProjMatrix, UniformStableViewMatrix, UniformModelMatrix),
			Outputs:  NewOutputSet(0),
		},
		{
			Name:     TypePrepassWS,
			Source:   graphics("prepass_ws.vert", "prepass.frag"),
			Uniforms: NewUniformSet(UniformViewProjMatrix, UniformStableViewMatrix),
			Outputs:  NewOutputSet(0),
		},
	}
}
