// Package renderlist collects one camera's draw submissions for a frame and compiles
// them into a render graph.
package renderlist

import (
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/oxy-rendergraph/common"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/camera"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/device"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/environment"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/internal/assert"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/light"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/logger"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/material"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/renderer/rendernode"
	"github.com/gogpu/gputypes"
)

// Synthetic and regular pass indices. Lower passes are applied first.
const (
	PassClusterBuild = -2
	PassClusterCull  = -1
	PassPrepass      = 0
	PassOpaque       = 1
	PassSkyBox       = 2
	PassBlended      = 3
)

// renderList is the implementation of the RenderList interface.
type renderList struct {
	mu *sync.Mutex

	cam      camera.Camera
	env      environment.Environment
	registry material.Registry

	geometry []Geometry
	lights   []light.Light
	compiled bool
}

// RenderList is the per-frame, per-camera accumulation buffer of draw and light
// submissions. It owns no device state and is discarded after Compile.
type RenderList interface {
	// AddGeometry appends a draw submission. The value is stored as given.
	//
	// Parameters:
	//   - g: the submission
	AddGeometry(g Geometry)

	// AddGeometryNoTransform appends a draw with identity model matrices, for geometry
	// already in world space.
	//
	// Parameters:
	//   - mat: the material
	//   - va: the vertex range
	//   - topology: the primitive topology
	//   - depth: the in-pass order value
	//   - scissor: the optional scissor rectangle
	AddGeometryNoTransform(mat material.Material, va device.VertexArraySlice, topology gputypes.PrimitiveTopology, depth float32, scissor common.ScissorParams)

	// AddLight appends a light submission.
	//
	// Parameters:
	//   - l: the light
	AddLight(l light.Light)

	// Lights returns the submitted lights in submission order.
	//
	// Returns:
	//   - []light.Light: the lights
	Lights() []light.Light

	// NumGeometry returns the number of draw submissions.
	//
	// Returns:
	//   - int: the count
	NumGeometry() int

	// Camera returns the camera the list renders.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// Environment returns the scene environment.
	//
	// Returns:
	//   - environment.Environment: the environment
	Environment() environment.Environment

	// Compile builds the render graph of the list. It may be called once.
	//
	// Cluster buffers are allocated or resized when any draw reads them, a cluster build
	// dispatch is added when the camera projection changed since the last build, and a
	// cluster cull dispatch is always added. Under pre-pass mode, opaque geometry is first
	// drawn through the matching pre-pass material. Draws whose material type is not
	// usable are skipped.
	//
	// Returns:
	//   - *rendernode.Node: the root of the graph
	Compile() *rendernode.Node
}

var _ RenderList = &renderList{}

// NewRenderList creates an empty list for one camera view.
//
// Parameters:
//   - cam: the camera
//   - env: the scene environment
//   - registry: the material registry providing pre-pass and cluster types
//
// Returns:
//   - RenderList: the list
func NewRenderList(cam camera.Camera, env environment.Environment, registry material.Registry) RenderList {
	return &renderList{
		mu:       &sync.Mutex{},
		cam:      cam,
		env:      env,
		registry: registry,
	}
}

func (r *renderList) AddGeometry(g Geometry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.geometry = append(r.geometry, g)
}

func (r *renderList) AddGeometryNoTransform(mat material.Material, va device.VertexArraySlice, topology gputypes.PrimitiveTopology, depth float32, scissor common.ScissorParams) {
	identity := common.Identity4()
	r.AddGeometry(Geometry{
		ModelMatrix:     identity,
		PrevModelMatrix: identity,
		Material:        mat,
		VA:              va,
		Topology:        topology,
		Depth:           depth,
		Scissor:         scissor,
	})
}

func (r *renderList) AddLight(l light.Light) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lights = append(r.lights, l)
}

func (r *renderList) Lights() []light.Light {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]light.Light, len(r.lights))
	copy(out, r.lights)
	return out
}

func (r *renderList) NumGeometry() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.geometry)
}

func (r *renderList) Camera() camera.Camera {
	return r.cam
}

func (r *renderList) Environment() environment.Environment {
	return r.env
}

func (r *renderList) Compile() *rendernode.Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	assert.That(!r.compiled, "render list compiled twice")
	r.compiled = true

	log := logger.For("RenderList")
	settings := r.registry.Settings()
	auto := newAutoContext(r.cam, r.env, settings)
	root := rendernode.NewRoot(r.cam.Viewport(), r.cam.ClearMask(), r.cam.ClearColors(), r.cam.RenderTarget())

	usable := make([]bool, len(r.geometry))
	clusters := false
	for i, g := range r.geometry {
		usable[i] = r.usable(g, log)
		if usable[i] && usesClusters(g.Material.Type()) {
			clusters = true
		}
	}

	if clusters {
		r.addClusterPasses(root, auto, settings.Cluster.GridSize, settings.Cluster.CullNumGroups)
	}

	prepassed := make([]bool, len(r.geometry))
	if r.cam.Prepass() {
		for i, g := range r.geometry {
			if usable[i] {
				prepassed[i] = r.addPrepass(root, auto, g)
			}
		}
	}

	missing := 0
	for i, g := range r.geometry {
		if !usable[i] {
			continue
		}
		if r.addMain(root, auto, g, prepassed[i]) {
			missing++
		}
	}
	if missing > 0 {
		log.Warn("draws with missing textures", "count", missing)
	}

	log.Debug("render list compiled", "geometry", len(r.geometry), "draws", root.NumDraws(), "clusters", clusters)
	return root
}

// usable reports whether g can be drawn: its material type linked and is a graphics type.
func (r *renderList) usable(g Geometry, log *slog.Logger) bool {
	if g.Material == nil {
		log.Warn("geometry without material skipped")
		return false
	}
	mt := g.Material.Type()
	if mt == nil || !mt.Ready() {
		log.Warn("material not usable, skipped", "material", g.Material.Name())
		return false
	}
	if mt.IsCompute() {
		log.Warn("compute material submitted as geometry, skipped", "material", g.Material.Name())
		return false
	}
	return true
}

// addClusterPasses makes sure the camera's cluster buffers exist and adds the build and
// cull dispatches. The build dispatch is only added when the projection changed.
func (r *renderList) addClusterPasses(root *rendernode.Node, auto *autoContext, grid, cullGroups [3]uint32) {
	log := logger.For("RenderList")
	cd := r.cam.ClusterData()
	if cd.Ensure(r.registry.Settings().Cluster, r.env.Scheduler()) {
		log.Debug("cluster buffers allocated", "tiles", r.registry.Settings().Cluster.NumTiles())
	}

	if cd.UpdateProjection(r.cam.StableProjectionMatrix()) {
		if mt, ok := r.computeType(material.TypeClusterBuild); ok {
			log.Debug("cluster build scheduled")
			root.AddCompute(r.computeParams(auto, mt, PassClusterBuild, grid))
		}
	}
	if mt, ok := r.computeType(material.TypeClusterCull); ok {
		root.AddCompute(r.computeParams(auto, mt, PassClusterCull, cullGroups))
	}
}

func (r *renderList) computeType(name material.TypeName) (material.MaterialType, bool) {
	mt, ok := r.registry.Type(name)
	if !ok || !mt.Ready() {
		logger.For("RenderList").Warn("cluster pass not usable", "type", name.String())
		return nil, false
	}
	return mt, true
}

func (r *renderList) computeParams(auto *autoContext, mt material.MaterialType, pass int, groups [3]uint32) rendernode.ComputeParams {
	identity := common.Identity4()
	c := rendernode.ComputeParams{
		Pass:    pass,
		Type:    mt,
		Storage: auto.storage(mt),
		Groups:  groups,
		Params:  mt.DefaultParams(),
	}
	auto.setAutoParams(&c.AutoParams, mt, identity, identity, 0)
	return c
}

// prepassType picks the pre-pass variant by the uniforms the source type declares:
// ModelViewProjMatrix, then ModelMatrix, then the world-space variant.
func prepassType(mt material.MaterialType) material.TypeName {
	switch {
	case mt.HasUniform(material.UniformModelViewProjMatrix):
		return material.TypePrepass1
	case mt.HasUniform(material.UniformModelMatrix):
		return material.TypePrepass2
	default:
		return material.TypePrepassWS
	}
}

// prepassDrawBuffers restricts the camera's draw buffers to the normal attachment.
// A camera that restricts its draw buffers but has no normal attachment gets depth only.
func prepassDrawBuffers(cam common.AttachmentPoints, outputs material.OutputSet) rendernode.DrawBufferBinding {
	if cam.Empty() {
		return rendernode.DrawBufferBinding{NumBuffers: -1}
	}
	points := cam.Intersect(common.NewAttachmentPoints(common.AttachmentNormal))
	if points.Empty() {
		return rendernode.DrawBufferBinding{NumBuffers: 0, Buffers: []common.AttachmentPoint{}}
	}
	return rendernode.NewDrawBufferBinding(points, outputs)
}

// addPrepass adds the pre-pass draw of g when g is opaque. It reports whether a draw was added.
func (r *renderList) addPrepass(root *rendernode.Node, auto *autoContext, g Geometry) bool {
	mat := g.Material
	if mat.IsSkyBox() || mat.Blending().Enabled {
		return false
	}
	pm, err := r.registry.Immutable(prepassType(mat.Type()))
	if err != nil || !pm.Type().Ready() {
		logger.For("RenderList").Warn("pre-pass material not usable", "material", mat.Name(), "error", err)
		return false
	}
	mt := pm.Type()

	d := rendernode.DrawParams{
		Pass:        PassPrepass,
		DepthTest:   mat.DepthTest(),
		DepthFunc:   mat.DepthFunc(),
		Depth:       g.Depth,
		Blending:    device.BlendingDisabled,
		CullFace:    mat.CullFace(),
		FlipCull:    g.FlipCull,
		Type:        mt,
		VA:          g.VA,
		Topology:    g.Topology,
		DrawBuffers: prepassDrawBuffers(r.cam.DrawBuffers(), mt.Outputs()),
		Scissor:     g.Scissor,
		DepthWrite:  true,
		Params:      pm.Params(),
	}
	auto.setAutoParams(&d.AutoParams, mt, g.ModelMatrix, g.PrevModelMatrix, d.DrawBuffers.Mask)
	root.Add(d)
	return true
}

// mainPass returns the pass and depth function of a main draw. Under pre-pass mode
// blended draws test against the pre-pass depth with LessEqual, and opaque draws that
// were drawn in the pre-pass only pass where their depth is Equal.
func mainPass(mat material.Material, prepass, prepassed bool) (int, gputypes.CompareFunction) {
	switch {
	case mat.IsSkyBox():
		return PassSkyBox, mat.DepthFunc()
	case mat.Blending().Enabled:
		if prepass {
			return PassBlended, gputypes.CompareFunctionLessEqual
		}
		return PassBlended, mat.DepthFunc()
	case prepassed:
		return PassOpaque, gputypes.CompareFunctionEqual
	default:
		return PassOpaque, mat.DepthFunc()
	}
}

// addMain adds the main draw of g. It reports whether a texture was missing.
func (r *renderList) addMain(root *rendernode.Node, auto *autoContext, g Geometry, prepassed bool) bool {
	mat := g.Material
	mt := mat.Type()
	pass, depthFunc := mainPass(mat, r.cam.Prepass(), prepassed)
	textures, missing := auto.textures(mat, mt)

	d := rendernode.DrawParams{
		Pass:        pass,
		DepthTest:   mat.DepthTest(),
		DepthFunc:   depthFunc,
		Depth:       g.Depth,
		Blending:    mat.Blending(),
		CullFace:    mat.CullFace(),
		FlipCull:    g.FlipCull,
		Type:        mt,
		Textures:    textures,
		VA:          g.VA,
		Storage:     auto.storage(mt),
		Topology:    g.Topology,
		DrawBuffers: rendernode.NewDrawBufferBinding(r.cam.DrawBuffers(), mt.Outputs()),
		Scissor:     g.Scissor,
		DepthWrite:  mat.DepthWrite(),
		Params:      mat.Params(),
	}
	auto.setAutoParams(&d.AutoParams, mt, g.ModelMatrix, g.PrevModelMatrix, d.DrawBuffers.Mask)
	root.Add(d)
	return missing
}
