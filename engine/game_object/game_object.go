package game_object

import (
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-rendergraph/common"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/light"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/material"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/model"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/renderer/renderlist"
)

type gameObject struct {
	mu *sync.Mutex

	id            uint64
	enabled       atomic.Bool
	mdl           model.Model
	mat           material.Material
	attachedLight light.Light

	position      [3]float32
	scale         [3]float32
	rotation      [3]float32
	rotationSpeed [3]float32
	layer         float32

	prevModel common.Mat4
	hasPrev   bool
}

// GameObject is a scene entity: a transform plus the model and material it is drawn with.
// The previous frame's model matrix is kept for motion vectors.
type GameObject interface {
	// ID returns the object's unique identifier.
	//
	// Returns:
	//   - uint64: the object ID
	ID() uint64

	// Enabled returns whether this object is enabled for rendering.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// Model returns the Model associated with this object, or nil if not set.
	//
	// Returns:
	//   - model.Model: the associated model or nil
	Model() model.Model

	// Material returns the Material the object is drawn with, or nil if not set.
	//
	// Returns:
	//   - material.Material: the material or nil
	Material() material.Material

	// Position returns the world-space position.
	//
	// Returns:
	//   - [3]float32: the position
	Position() [3]float32

	// Rotation returns the Euler rotation in radians.
	//
	// Returns:
	//   - [3]float32: the rotation angles
	Rotation() [3]float32

	// RotationSpeed returns the rotation applied per second by Update.
	//
	// Returns:
	//   - [3]float32: radians per second around each axis
	RotationSpeed() [3]float32

	// Layer returns the depth key submitted with the object's geometry. Draws on a
	// lower layer are applied first among otherwise equal passes. Defaults to 0.
	//
	// Returns:
	//   - float32: the layer
	Layer() float32

	// SetLayer sets the depth key submitted with the object's geometry. Objects that
	// share a layer batch by state regardless of their distance to the camera.
	//
	// Parameters:
	//   - layer: the new layer
	SetLayer(layer float32)

	// Scale returns the scale factors.
	//
	// Returns:
	//   - [3]float32: the scale
	Scale() [3]float32

	// SetID sets the object's unique identifier.
	//
	// Parameters:
	//   - id: the ID to assign
	SetID(id uint64)

	// SetEnabled sets whether the object is enabled for rendering.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// SetModel assigns a Model to this object.
	//
	// Parameters:
	//   - m: the Model to associate
	SetModel(m model.Model)

	// SetMaterial assigns the Material the object is drawn with.
	//
	// Parameters:
	//   - mat: the material
	SetMaterial(mat material.Material)

	// SetPosition updates the world-space position.
	//
	// Parameters:
	//   - x, y, z: new position components
	SetPosition(x, y, z float32)

	// SetRotation updates the Euler rotation.
	//
	// Parameters:
	//   - rx, ry, rz: new rotation angles in radians
	SetRotation(rx, ry, rz float32)

	// SetRotationSpeed updates the rotation applied per second by Update.
	//
	// Parameters:
	//   - rx, ry, rz: radians per second
	SetRotationSpeed(rx, ry, rz float32)

	// SetScale updates the scale. A negative product of the factors mirrors the object
	// and flips its face culling.
	//
	// Parameters:
	//   - sx, sy, sz: new scale factors
	SetScale(sx, sy, sz float32)

	// Update advances the rotation by RotationSpeed and moves the attached light to the
	// object's position.
	//
	// Parameters:
	//   - dt: frame delta in seconds
	Update(dt float32)

	// ModelMatrix builds the object-to-world matrix from the current transform.
	//
	// Returns:
	//   - common.Mat4: the matrix
	ModelMatrix() common.Mat4

	// PrevModelMatrix returns the matrix saved by the last EndFrame. Before the first
	// EndFrame it equals ModelMatrix.
	//
	// Returns:
	//   - common.Mat4: the matrix
	PrevModelMatrix() common.Mat4

	// WorldBounds returns the model bounds transformed to world space.
	//
	// Returns:
	//   - common.AABB: the box, zero without a model
	WorldBounds() common.AABB

	// Geometry builds the draw submission for this object. Its Depth is the layer.
	//
	// Returns:
	//   - renderlist.Geometry: the submission
	//   - bool: false when the object has no model or material
	Geometry() (renderlist.Geometry, bool)

	// EndFrame saves the current model matrix as next frame's previous matrix.
	EndFrame()

	// Light returns the Light attached to this object, or nil if none is set.
	//
	// Returns:
	//   - light.Light: the attached light or nil
	Light() light.Light

	// SetLight attaches a Light to this object. Update moves it to the object's
	// position. Pass nil to detach.
	//
	// Parameters:
	//   - l: the Light to attach, or nil to detach
	SetLight(l light.Light)
}

var _ GameObject = &gameObject{}

// NewGameObject creates a new GameObject configured with the given options.
// Objects are enabled by default.
//
// Parameters:
//   - options: functional options to configure the object
//
// Returns:
//   - GameObject: the newly created object
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	obj := &gameObject{
		mu:    &sync.Mutex{},
		scale: [3]float32{1, 1, 1},
	}
	obj.enabled.Store(true)
	for _, option := range options {
		option(obj)
	}
	return obj
}

func (g *gameObject) ID() uint64 {
	return g.id
}

func (g *gameObject) Enabled() bool {
	return g.enabled.Load()
}

func (g *gameObject) Model() model.Model {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mdl
}

func (g *gameObject) Material() material.Material {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mat
}

func (g *gameObject) Position() [3]float32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.position
}

func (g *gameObject) Rotation() [3]float32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rotation
}

func (g *gameObject) RotationSpeed() [3]float32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rotationSpeed
}

func (g *gameObject) Layer() float32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.layer
}

func (g *gameObject) SetLayer(layer float32) {
	g.mu.Lock()
	g.layer = layer
	g.mu.Unlock()
}

func (g *gameObject) Scale() [3]float32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.scale
}

func (g *gameObject) SetID(id uint64) {
	g.id = id
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}

func (g *gameObject) SetModel(m model.Model) {
	g.mu.Lock()
	g.mdl = m
	g.mu.Unlock()
}

func (g *gameObject) SetMaterial(mat material.Material) {
	g.mu.Lock()
	g.mat = mat
	g.mu.Unlock()
}

func (g *gameObject) SetPosition(x, y, z float32) {
	g.mu.Lock()
	g.position = [3]float32{x, y, z}
	g.mu.Unlock()
}

func (g *gameObject) SetRotation(rx, ry, rz float32) {
	g.mu.Lock()
	g.rotation = [3]float32{rx, ry, rz}
	g.mu.Unlock()
}

func (g *gameObject) SetRotationSpeed(rx, ry, rz float32) {
	g.mu.Lock()
	g.rotationSpeed = [3]float32{rx, ry, rz}
	g.mu.Unlock()
}

func (g *gameObject) SetScale(sx, sy, sz float32) {
	g.mu.Lock()
	g.scale = [3]float32{sx, sy, sz}
	g.mu.Unlock()
}

func (g *gameObject) Update(dt float32) {
	g.mu.Lock()
	for i := range 3 {
		g.rotation[i] += g.rotationSpeed[i] * dt
	}
	pos, l := g.position, g.attachedLight
	g.mu.Unlock()

	if l != nil {
		l.SetPosition(pos[0], pos[1], pos[2])
	}
}

func (g *gameObject) modelMatrix() common.Mat4 {
	return common.BuildModelMatrix(g.position, g.rotation, g.scale)
}

func (g *gameObject) ModelMatrix() common.Mat4 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.modelMatrix()
}

func (g *gameObject) PrevModelMatrix() common.Mat4 {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.hasPrev {
		return g.modelMatrix()
	}
	return g.prevModel
}

func (g *gameObject) WorldBounds() common.AABB {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.mdl == nil {
		return common.AABB{}
	}
	return common.TransformAABB(g.modelMatrix(), g.mdl.Bounds())
}

func (g *gameObject) Geometry() (renderlist.Geometry, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.mdl == nil || g.mat == nil {
		return renderlist.Geometry{}, false
	}
	m := g.modelMatrix()
	prev := m
	if g.hasPrev {
		prev = g.prevModel
	}
	return renderlist.Geometry{
		ModelMatrix:     m,
		PrevModelMatrix: prev,
		Bounds:          common.TransformAABB(m, g.mdl.Bounds()),
		Material:        g.mat,
		VA:              g.mdl.Slice(),
		Topology:        g.mdl.Topology(),
		Depth:           g.layer,
		FlipCull:        common.Determinant3(m) < 0,
	}, true
}

func (g *gameObject) EndFrame() {
	g.mu.Lock()
	g.prevModel = g.modelMatrix()
	g.hasPrev = true
	g.mu.Unlock()
}

func (g *gameObject) Light() light.Light {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.attachedLight
}

func (g *gameObject) SetLight(l light.Light) {
	g.mu.Lock()
	g.attachedLight = l
	g.mu.Unlock()
}
