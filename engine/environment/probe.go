package environment

import "sync"

// Probe is a light probe placed in the scene. The global probe covers everything
// and always occupies slot 0 of the probes buffer.
type Probe struct {
	mu *sync.Mutex

	position [3]float32
	radius   float32
	global   bool
	index    int
	dirty    bool
}

// NewProbe creates a local probe with an influence sphere.
func NewProbe(position [3]float32, radius float32) *Probe {
	return &Probe{mu: &sync.Mutex{}, position: position, radius: radius, index: -1, dirty: true}
}

// NewGlobalProbe creates the scene-wide probe.
func NewGlobalProbe() *Probe {
	return &Probe{mu: &sync.Mutex{}, global: true, index: -1, dirty: true}
}

func (p *Probe) Global() bool {
	return p.global
}

// Index returns the probe slot, -1 when the probe is not registered.
func (p *Probe) Index() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.index
}

func (p *Probe) setIndex(idx int) {
	p.mu.Lock()
	p.index = idx
	p.dirty = true
	p.mu.Unlock()
}

// SetSphere moves the probe's influence sphere.
func (p *Probe) SetSphere(position [3]float32, radius float32) {
	p.mu.Lock()
	p.position = position
	p.radius = radius
	p.dirty = true
	p.mu.Unlock()
}

func (p *Probe) resetDirty() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	d := p.dirty
	p.dirty = false
	return d
}

func (p *Probe) toGPU() GPUProbe {
	p.mu.Lock()
	defer p.mu.Unlock()
	return GPUProbe{Position: p.position, Radius: p.radius, Enabled: 1}
}
