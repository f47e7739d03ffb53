package environment

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-rendergraph/engine/config"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/device"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/light"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/logger"
)

type environmentImpl struct {
	mu *sync.Mutex

	settings config.Settings
	sched    device.Scheduler

	time   float32
	dt     float32
	realDt float32

	irradiance  *device.Texture
	specularCM  *device.Texture
	specularLUT *device.Texture

	lightsBuffer    *device.Buffer
	lightsAllocated bool
	lights          map[light.Light]uint64
	lightsFree      *freeList
	lightsRemoved   map[int]struct{}

	probesBuffer    *device.Buffer
	probesAllocated bool
	globalProbe     *Probe
	probes          map[*Probe]struct{}
	probesFree      *freeList
	probesDirty     bool

	immCameras map[uint64]int
}

// Environment is the scene-wide state shared by every camera's render list: frame time,
// global light-probe textures and the lights/probes storage buffers read by the
// cluster passes. Buffer contents are uploaded through scheduled hardware operations
// in PreSwap.
type Environment interface {
	// Update advances frame time and resets per-frame imm camera slots.
	//
	// Parameters:
	//   - dt: scaled frame delta in seconds
	//   - realDt: unscaled frame delta in seconds
	Update(dt, realDt float32)

	// Time returns the accumulated scaled time in seconds.
	Time() float32

	// Dt returns the last scaled frame delta.
	Dt() float32

	// RealDt returns the last unscaled frame delta.
	RealDt() float32

	// Irradiance returns the global irradiance probe texture.
	Irradiance() *device.Texture

	// SpecularCM returns the global specular cube map.
	SpecularCM() *device.Texture

	// SpecularLUT returns the BRDF lookup texture.
	SpecularLUT() *device.Texture

	// SetProbeTextures replaces the global probe textures. Nil arguments keep the current texture.
	SetProbeTextures(irradiance, specularCM, specularLUT *device.Texture)

	// LightsBuffer returns the cluster lights storage buffer.
	LightsBuffer() *device.Buffer

	// ProbesBuffer returns the cluster probes storage buffer.
	ProbesBuffer() *device.Buffer

	// AddLight registers a light and assigns it the lowest free slot.
	//
	// Parameters:
	//   - l: the light
	//
	// Returns:
	//   - int: the slot, or -1 when every slot is taken
	AddLight(l light.Light) int

	// RemoveLight releases a light's slot.
	RemoveLight(l light.Light)

	// NumLights returns the number of registered lights.
	NumLights() int

	// AddProbe registers a probe. The global probe takes slot 0; other probes take
	// the lowest free slot from 1.
	//
	// Returns:
	//   - int: the slot, or -1 when every slot is taken
	AddProbe(p *Probe) int

	// RemoveProbe releases a probe's slot.
	RemoveProbe(p *Probe)

	// AllocImmCameraIdx returns the imm camera slot of a camera for this frame,
	// allocating one if needed. Slot 0 is shared by cameras without a slot.
	//
	// Parameters:
	//   - cookie: a per-camera identity
	//
	// Returns:
	//   - int: the slot, or -1 when the per-frame capacity is exhausted
	AllocImmCameraIdx(cookie uint64) int

	// ImmCameraIdx returns the slot allocated to cookie this frame, or -1 if none was.
	// Cookie 0 always owns slot 0.
	ImmCameraIdx(cookie uint64) int

	// PreSwap schedules uploads of changed lights and probes. Call once per frame
	// before handing the compiled plan to the renderer.
	PreSwap()

	// Scheduler returns the scheduler hardware operations are queued on.
	Scheduler() device.Scheduler
}

var _ Environment = &environmentImpl{}

// NewEnvironment creates a scene environment.
//
// Parameters:
//   - settings: capacities for lights, probes and imm cameras
//   - sched: where buffer uploads are scheduled
//
// Returns:
//   - Environment: the environment
func NewEnvironment(settings config.Settings, sched device.Scheduler) Environment {
	lp := settings.LightProbe
	e := &environmentImpl{
		mu:            &sync.Mutex{},
		settings:      settings,
		sched:         sched,
		irradiance:    device.NewTexture(int32(lp.IrradianceResolution), int32(lp.IrradianceResolution)),
		specularCM:    device.NewTexture(int32(lp.SpecularResolution), int32(lp.SpecularResolution)),
		specularLUT:   device.NewTexture(512, 512),
		lightsBuffer:  device.NewBuffer(),
		lights:        make(map[light.Light]uint64),
		lightsFree:    newFreeList(0, int(settings.Cluster.MaxLights)),
		lightsRemoved: make(map[int]struct{}),
		probesBuffer:  device.NewBuffer(),
		probes:        make(map[*Probe]struct{}),
		probesFree:    newFreeList(1, int(settings.Cluster.MaxProbes)),
		probesDirty:   true,
		immCameras:    map[uint64]int{0: 0},
	}
	e.irradiance.Cube = true
	e.specularCM.Cube = true
	return e
}

func (e *environmentImpl) Update(dt, realDt float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dt = dt
	e.realDt = realDt
	e.time += dt
	clear(e.immCameras)
	e.immCameras[0] = 0
}

func (e *environmentImpl) Time() float32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.time
}

func (e *environmentImpl) Dt() float32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dt
}

func (e *environmentImpl) RealDt() float32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.realDt
}

func (e *environmentImpl) Irradiance() *device.Texture {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.irradiance
}

func (e *environmentImpl) SpecularCM() *device.Texture {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.specularCM
}

func (e *environmentImpl) SpecularLUT() *device.Texture {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.specularLUT
}

func (e *environmentImpl) SetProbeTextures(irradiance, specularCM, specularLUT *device.Texture) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if irradiance != nil {
		e.irradiance = irradiance
	}
	if specularCM != nil {
		e.specularCM = specularCM
	}
	if specularLUT != nil {
		e.specularLUT = specularLUT
	}
}

func (e *environmentImpl) LightsBuffer() *device.Buffer {
	return e.lightsBuffer
}

func (e *environmentImpl) ProbesBuffer() *device.Buffer {
	return e.probesBuffer
}

func (e *environmentImpl) Scheduler() device.Scheduler {
	return e.sched
}

func (e *environmentImpl) AddLight(l light.Light) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.lights[l]; ok {
		return l.Index()
	}
	idx := e.lightsFree.take()
	if idx < 0 {
		logger.For("Environment").Warn("too many lights", "max", e.settings.Cluster.MaxLights)
		return -1
	}
	delete(e.lightsRemoved, idx)
	// version 0 never matches a light's version, so the first PreSwap uploads it
	e.lights[l] = 0
	l.SetIndex(idx)
	return idx
}

func (e *environmentImpl) RemoveLight(l light.Light) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.lights[l]; !ok {
		return
	}
	delete(e.lights, l)
	idx := l.Index()
	e.lightsFree.put(idx)
	e.lightsRemoved[idx] = struct{}{}
	l.SetIndex(-1)
}

func (e *environmentImpl) NumLights() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.lights)
}

func (e *environmentImpl) AddProbe(p *Probe) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if p.Global() {
		e.globalProbe = p
		e.probesDirty = true
		p.setIndex(0)
		return 0
	}
	if _, ok := e.probes[p]; ok {
		return p.Index()
	}
	idx := e.probesFree.take()
	if idx < 0 {
		logger.For("Environment").Warn("too many probes", "max", e.settings.Cluster.MaxProbes)
		return -1
	}
	e.probes[p] = struct{}{}
	e.probesDirty = true
	p.setIndex(idx)
	return idx
}

func (e *environmentImpl) RemoveProbe(p *Probe) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if p == e.globalProbe {
		e.globalProbe = nil
		e.probesDirty = true
		p.setIndex(-1)
		return
	}
	if _, ok := e.probes[p]; !ok {
		return
	}
	delete(e.probes, p)
	e.probesFree.put(p.Index())
	e.probesDirty = true
	p.setIndex(-1)
}

func (e *environmentImpl) AllocImmCameraIdx(cookie uint64) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if idx, ok := e.immCameras[cookie]; ok {
		return idx
	}
	if uint32(len(e.immCameras)) >= e.settings.MaxImmCameras+1 {
		logger.For("Environment").Warn("too many imm cameras", "max", e.settings.MaxImmCameras)
		return -1
	}
	idx := len(e.immCameras)
	e.immCameras[cookie] = idx
	return idx
}

func (e *environmentImpl) ImmCameraIdx(cookie uint64) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if idx, ok := e.immCameras[cookie]; ok {
		return idx
	}
	return -1
}

type lightUpload struct {
	index int
	data  []byte
}

func (e *environmentImpl) PreSwap() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.preSwapLights()
	e.preSwapProbes()
}

// preSwapLights uploads lights whose version changed and clears removed slots.
// Caller must hold the mutex.
func (e *environmentImpl) preSwapLights() {
	recreate := !e.lightsAllocated
	var uploads []lightUpload
	for l, seen := range e.lights {
		v := l.Version()
		if v == seen && !recreate {
			continue
		}
		e.lights[l] = v
		g := light.ToGPULight(l)
		uploads = append(uploads, lightUpload{index: l.Index(), data: g.Marshal()})
	}
	empty := light.EmptyGPULight
	for idx := range e.lightsRemoved {
		uploads = append(uploads, lightUpload{index: idx, data: empty.Marshal()})
	}
	clear(e.lightsRemoved)
	if len(uploads) == 0 && !recreate {
		return
	}
	e.lightsAllocated = true

	buf := e.lightsBuffer
	size := int(e.settings.Cluster.MaxLights) * light.GPULightSize
	e.sched.ScheduleHwOp(func(dev device.Device) {
		if recreate {
			dev.AllocBuffer(buf, size)
		}
		for _, u := range uploads {
			dev.UploadBuffer(buf, u.index*light.GPULightSize, u.data)
		}
	})
}

// preSwapProbes rewrites the whole probes buffer when any probe changed.
// Caller must hold the mutex.
func (e *environmentImpl) preSwapProbes() {
	dirty := e.probesDirty
	e.probesDirty = false
	if e.globalProbe != nil && e.globalProbe.resetDirty() {
		dirty = true
	}
	for p := range e.probes {
		if p.resetDirty() {
			dirty = true
		}
	}
	recreate := !e.probesAllocated
	if !dirty && !recreate {
		return
	}
	e.probesAllocated = true

	data := make([]byte, int(e.settings.Cluster.MaxProbes)*GPUProbeSize)
	if e.globalProbe != nil {
		g := e.globalProbe.toGPU()
		copy(data, g.Marshal())
	}
	for p := range e.probes {
		g := p.toGPU()
		copy(data[p.Index()*GPUProbeSize:], g.Marshal())
	}

	buf := e.probesBuffer
	e.sched.ScheduleHwOp(func(dev device.Device) {
		if recreate {
			dev.AllocBuffer(buf, len(data))
		}
		dev.UploadBuffer(buf, 0, data)
	})
}
