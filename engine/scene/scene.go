// Package scene holds the objects, cameras and lights of one view of the world and
// turns them into per-camera render lists each frame.
package scene

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-rendergraph/common"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/camera"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/device"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/environment"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/game_object"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/internal/assert"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/light"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/logger"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/material"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/renderer/renderlist"
	"github.com/gogpu/gputypes"
	"github.com/google/btree"
)

// Stats counts what the last BuildLists call did, summed over cameras.
type Stats struct {
	Objects   int
	Submitted int
	Culled    int
	Immediate int
}

// immediate is a one-frame draw without a model transform.
type immediate struct {
	mat      material.Material
	va       device.VertexArraySlice
	topology gputypes.PrimitiveTopology
	depth    float32
	scissor  common.ScissorParams
}

// Scene manages a set of GameObjects (ordered by ID), the cameras that view them and the
// lights they are lit by. Scenes can be hot-swapped via the Active flag.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// Active returns whether this scene is currently active for rendering.
	Active() bool

	// SetActive sets whether this scene is active for rendering.
	SetActive(active bool)

	// Environment returns the environment shared by the scene's render lists.
	Environment() environment.Environment

	// Registry returns the material registry the scene's lists resolve types against.
	Registry() material.Registry

	// Cameras returns the scene's cameras in the order they were added.
	Cameras() []camera.Camera

	// AddCamera appends a camera. Each camera gets its own render list per frame.
	//
	// Parameters:
	//   - cam: the camera
	AddCamera(cam camera.Camera)

	// RemoveCamera removes a camera by reference.
	//
	// Parameters:
	//   - cam: the camera
	RemoveCamera(cam camera.Camera)

	// Count returns the number of GameObjects in the scene.
	//
	// Returns:
	//   - int: object count
	Count() int

	// Add adds a GameObject, assigning an ID when it has none. The object's model upload
	// is scheduled and its attached light is registered with the environment.
	//
	// Parameters:
	//   - obj: the GameObject to add
	//
	// Returns:
	//   - uint64: the assigned object ID
	Add(obj game_object.GameObject) uint64

	// Get retrieves a GameObject by its ID. Returns nil if not found.
	//
	// Parameters:
	//   - id: the object's unique ID
	//
	// Returns:
	//   - game_object.GameObject: the object or nil
	Get(id uint64) game_object.GameObject

	// Remove removes a GameObject by ID and releases its attached light.
	//
	// Parameters:
	//   - id: the object's unique ID
	Remove(id uint64)

	// Clear removes all objects and their attached lights.
	Clear()

	// AddLight adds a free-standing light source.
	//
	// Parameters:
	//   - l: the Light to add
	AddLight(l light.Light)

	// RemoveLight removes a light source by reference.
	//
	// Parameters:
	//   - l: the Light to remove
	RemoveLight(l light.Light)

	// Lights returns every light in the scene, attached ones included.
	//
	// Returns:
	//   - []light.Light: the scene's light list
	Lights() []light.Light

	// DrawImmediate queues a draw without a model transform for the next BuildLists only.
	//
	// Parameters:
	//   - mat: the material
	//   - va: the vertex range
	//   - topology: the primitive topology
	//   - depth: ordering key within the pass
	//   - scissor: scissor rectangle, disabled when Enabled is false
	DrawImmediate(mat material.Material, va device.VertexArraySlice, topology gputypes.PrimitiveTopology, depth float32, scissor common.ScissorParams)

	// CullingDisabled returns whether frustum culling is disabled for this scene.
	CullingDisabled() bool

	// SetCullingDisabled enables or disables frustum culling.
	//
	// Parameters:
	//   - disabled: true to submit every object regardless of visibility
	SetCullingDisabled(disabled bool)

	// Update advances the environment clock, every camera and every enabled object.
	//
	// Parameters:
	//   - dt: scaled frame delta in seconds
	//   - realDt: unscaled frame delta in seconds
	Update(dt, realDt float32)

	// BuildLists traverses the scene once per camera and returns the uncompiled lists.
	// Disabled objects and objects outside a camera's frustum are skipped. Sky boxes are
	// never culled.
	//
	// Returns:
	//   - []renderlist.RenderList: one list per camera, in camera order
	BuildLists() []renderlist.RenderList

	// EndFrame stores every object's model matrix for next frame's motion vectors and
	// drops queued immediate draws.
	EndFrame()

	// Stats returns the counters of the last BuildLists call.
	Stats() Stats
}

type scene struct {
	mu *sync.RWMutex

	name   string
	active bool

	env environment.Environment
	reg material.Registry

	objects *btree.BTreeG[game_object.GameObject]
	nextID  uint64

	cameras []camera.Camera

	lights       []light.Light
	lightObjects map[uint64]light.Light

	immediates      []immediate
	cullingDisabled bool
	stats           Stats
}

var _ Scene = &scene{}

// NewScene creates a scene drawing through env and reg.
//
// Parameters:
//   - env: the environment shared by the scene's lists
//   - reg: the material registry
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(env environment.Environment, reg material.Registry, options ...SceneBuilderOption) Scene {
	assert.That(env != nil && reg != nil, "scene: environment and registry are required")
	s := &scene{
		mu:     &sync.RWMutex{},
		active: true,
		env:    env,
		reg:    reg,
		objects: btree.NewG(8, func(a, b game_object.GameObject) bool {
			return a.ID() < b.ID()
		}),
		nextID:       1,
		lightObjects: make(map[uint64]light.Light),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	s.name = name
	s.mu.Unlock()
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	s.active = active
	s.mu.Unlock()
}

func (s *scene) Environment() environment.Environment {
	return s.env
}

func (s *scene) Registry() material.Registry {
	return s.reg
}

func (s *scene) Cameras() []camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]camera.Camera(nil), s.cameras...)
}

func (s *scene) AddCamera(cam camera.Camera) {
	s.mu.Lock()
	s.cameras = append(s.cameras, cam)
	s.mu.Unlock()
}

func (s *scene) RemoveCamera(cam camera.Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.cameras {
		if c == cam {
			s.cameras = append(s.cameras[:i], s.cameras[i+1:]...)
			return
		}
	}
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.objects.Len()
}

func (s *scene) Add(obj game_object.GameObject) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(obj)
}

// add inserts obj. Caller holds s.mu.
func (s *scene) add(obj game_object.GameObject) uint64 {
	if obj.ID() == 0 {
		obj.SetID(s.nextID)
	}
	s.nextID = max(s.nextID, obj.ID()+1)

	if old, ok := s.objects.ReplaceOrInsert(obj); ok && old != obj {
		s.detach(old)
	}
	if m := obj.Model(); m != nil {
		m.Upload(s.env.Scheduler())
	}
	if l := obj.Light(); l != nil {
		if s.env.AddLight(l) < 0 {
			logger.For("Scene").Warn("light capacity exhausted", "object", obj.ID())
		}
		s.lightObjects[obj.ID()] = l
	}
	return obj.ID()
}

// detach releases the light attached to obj. Caller holds s.mu.
func (s *scene) detach(obj game_object.GameObject) {
	if l, ok := s.lightObjects[obj.ID()]; ok {
		s.env.RemoveLight(l)
		delete(s.lightObjects, obj.ID())
	}
}

func (s *scene) Get(id uint64) game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, _ := s.objects.Get(lookupKey(id))
	return obj
}

func (s *scene) Remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if obj, ok := s.objects.Delete(lookupKey(id)); ok {
		s.detach(obj)
	}
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects.Ascend(func(obj game_object.GameObject) bool {
		s.detach(obj)
		return true
	})
	s.objects.Clear(false)
}

func (s *scene) AddLight(l light.Light) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.env.AddLight(l) < 0 {
		logger.For("Scene").Warn("light capacity exhausted")
	}
	s.lights = append(s.lights, l)
}

func (s *scene) RemoveLight(l light.Light) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.lights {
		if existing == l {
			s.lights = append(s.lights[:i], s.lights[i+1:]...)
			s.env.RemoveLight(l)
			return
		}
	}
}

func (s *scene) Lights() []light.Light {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.allLights()
}

// allLights returns free lights followed by attached lights in object order.
// Caller holds s.mu.
func (s *scene) allLights() []light.Light {
	out := append([]light.Light(nil), s.lights...)
	s.objects.Ascend(func(obj game_object.GameObject) bool {
		if l, ok := s.lightObjects[obj.ID()]; ok {
			out = append(out, l)
		}
		return true
	})
	return out
}

func (s *scene) DrawImmediate(mat material.Material, va device.VertexArraySlice, topology gputypes.PrimitiveTopology, depth float32, scissor common.ScissorParams) {
	s.mu.Lock()
	s.immediates = append(s.immediates, immediate{mat: mat, va: va, topology: topology, depth: depth, scissor: scissor})
	s.mu.Unlock()
}

func (s *scene) CullingDisabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cullingDisabled
}

func (s *scene) SetCullingDisabled(disabled bool) {
	s.mu.Lock()
	s.cullingDisabled = disabled
	s.mu.Unlock()
}

func (s *scene) Update(dt, realDt float32) {
	s.env.Update(dt, realDt)

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, cam := range s.cameras {
		cam.Update()
	}
	s.objects.Ascend(func(obj game_object.GameObject) bool {
		if obj.Enabled() {
			obj.Update(dt)
		}
		return true
	})
}

func (s *scene) BuildLists() []renderlist.RenderList {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{Objects: s.objects.Len()}
	lights := s.allLights()
	lists := make([]renderlist.RenderList, 0, len(s.cameras))
	for _, cam := range s.cameras {
		list := renderlist.NewRenderList(cam, s.env, s.reg)
		frustum := cam.Frustum()

		s.objects.Ascend(func(obj game_object.GameObject) bool {
			if !obj.Enabled() {
				return true
			}
			g, ok := obj.Geometry()
			if !ok {
				return true
			}
			if !s.cullingDisabled && !g.Material.IsSkyBox() && !frustum.IntersectsAABB(g.Bounds) {
				stats.Culled++
				return true
			}
			list.AddGeometry(g)
			stats.Submitted++
			return true
		})
		for _, im := range s.immediates {
			list.AddGeometryNoTransform(im.mat, im.va, im.topology, im.depth, im.scissor)
			stats.Immediate++
		}
		for _, l := range lights {
			if l.Enabled() {
				list.AddLight(l)
			}
		}
		lists = append(lists, list)
	}
	s.stats = stats
	return lists
}

func (s *scene) EndFrame() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects.Ascend(func(obj game_object.GameObject) bool {
		obj.EndFrame()
		return true
	})
	s.immediates = s.immediates[:0]
}

func (s *scene) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// lookupKey is a lookup key for the object tree.
func lookupKey(id uint64) game_object.GameObject {
	return game_object.NewGameObject(game_object.WithID(id))
}
