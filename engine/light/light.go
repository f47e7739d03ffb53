package light

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-rendergraph/common"
)

// LightType identifies the kind of light source.
type LightType int

const (
	// LightTypeDirectional represents a light with no position, only direction.
	// Affects all fragments uniformly with no distance attenuation.
	LightTypeDirectional LightType = iota

	// LightTypePoint represents a light that emits in all directions from a position
	// and attenuates with distance up to its range.
	LightTypePoint

	// LightTypeSpot represents a light that emits in a cone along a direction.
	// Attenuates with both distance and angle from the cone axis.
	LightTypeSpot
)

var lightTypeNames = [...]string{
	LightTypeDirectional: "Directional",
	LightTypePoint:       "Point",
	LightTypeSpot:        "Spot",
}

// String returns the light type name.
func (t LightType) String() string {
	if t >= 0 && int(t) < len(lightTypeNames) {
		return lightTypeNames[t]
	}
	return "Unknown"
}

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	mu *sync.Mutex

	lightType    LightType
	position     [3]float32
	direction    [3]float32
	color        [3]float32
	intensity    float32
	lightRange   float32
	innerCone    float32 // stored as cos(angle in radians)
	outerCone    float32 // stored as cos(angle in radians)
	enabled      bool
	castsShadows bool

	index   int
	version uint64
}

// Light defines the interface for a light source submitted to a RenderList.
//
// The render graph never interprets lights itself: the scene environment assigns
// each registered light a slot in the cluster lights storage buffer and uploads
// its GPU representation whenever the light changes. Setters bump Version so the
// environment can detect stale slots.
type Light interface {
	// Type returns the kind of light source.
	//
	// Returns:
	//   - LightType: the light type (directional, point, or spot)
	Type() LightType

	// Position returns the world-space position of the light.
	// Meaningless for directional lights.
	//
	// Returns:
	//   - [3]float32: position as (x, y, z)
	Position() [3]float32

	// Direction returns the normalized direction of the light.
	// For spot lights this is the cone axis. Meaningless for point lights.
	//
	// Returns:
	//   - [3]float32: normalized direction as (x, y, z)
	Direction() [3]float32

	// Color returns the RGB color of the light.
	//
	// Returns:
	//   - [3]float32: color as (r, g, b)
	Color() [3]float32

	// Intensity returns the scalar intensity multiplier for the light.
	//
	// Returns:
	//   - float32: the intensity value
	Intensity() float32

	// Range returns the maximum attenuation distance for point and spot lights.
	//
	// Returns:
	//   - float32: the range value
	Range() float32

	// InnerCone returns the cosine of the inner cone half-angle for spot lights.
	//
	// Returns:
	//   - float32: cos(inner half-angle)
	InnerCone() float32

	// OuterCone returns the cosine of the outer cone half-angle for spot lights.
	//
	// Returns:
	//   - float32: cos(outer half-angle)
	OuterCone() float32

	// Enabled returns whether this light contributes to lighting.
	//
	// Returns:
	//   - bool: true if the light is enabled
	Enabled() bool

	// CastsShadows returns whether this light is eligible for shadow map generation.
	//
	// Returns:
	//   - bool: true if the light casts shadows
	CastsShadows() bool

	// Bounds returns the world-space box the light can affect.
	// Directional lights report an inverted (empty) box.
	//
	// Returns:
	//   - common.AABB: the bounding box
	Bounds() common.AABB

	// Index returns the cluster lights buffer slot, or -1 when the light is not registered.
	//
	// Returns:
	//   - int: the slot index
	Index() int

	// SetIndex records the cluster lights buffer slot. Called by the scene environment.
	//
	// Parameters:
	//   - index: the slot, or -1 to mark the light unregistered
	SetIndex(index int)

	// Version returns a counter incremented by every setter.
	//
	// Returns:
	//   - uint64: the modification counter
	Version() uint64

	// SetPosition sets the world-space position of the light.
	SetPosition(x, y, z float32)

	// SetDirection sets and normalizes the direction of the light.
	SetDirection(x, y, z float32)

	// SetColor sets the RGB color of the light.
	SetColor(r, g, b float32)

	// SetIntensity sets the scalar intensity multiplier.
	SetIntensity(intensity float32)

	// SetRange sets the attenuation cutoff distance.
	SetRange(lightRange float32)

	// SetSpotCone sets the inner and outer cone half-angles in degrees.
	SetSpotCone(innerDeg, outerDeg float32)

	// SetEnabled toggles the light.
	SetEnabled(enabled bool)
}

var _ Light = &lightImpl{}

// NewLight creates a new Light of the specified type with sensible defaults and
// any provided options applied.
//
// Parameters:
//   - lightType: the kind of light to create (directional, point, or spot)
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		mu:         &sync.Mutex{},
		lightType:  lightType,
		direction:  [3]float32{0, -1, 0},
		color:      [3]float32{1, 1, 1},
		intensity:  1.0,
		lightRange: 10.0,
		innerCone:  0.9063, // cos(25°)
		outerCone:  0.8192, // cos(35°)
		enabled:    true,
		index:      -1,
		version:    1,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Position() [3]float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.position
}

func (l *lightImpl) Direction() [3]float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.direction
}

func (l *lightImpl) Color() [3]float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.intensity
}

func (l *lightImpl) Range() float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lightRange
}

func (l *lightImpl) InnerCone() float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.innerCone
}

func (l *lightImpl) OuterCone() float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.outerCone
}

func (l *lightImpl) Enabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enabled
}

func (l *lightImpl) CastsShadows() bool {
	return l.castsShadows
}

func (l *lightImpl) Bounds() common.AABB {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.lightType == LightTypeDirectional {
		return common.AABB{
			Min: [3]float32{1, 1, 1},
			Max: [3]float32{-1, -1, -1},
		}
	}
	r, p := l.lightRange, l.position
	return common.AABB{
		Min: [3]float32{p[0] - r, p[1] - r, p[2] - r},
		Max: [3]float32{p[0] + r, p[1] + r, p[2] + r},
	}
}

func (l *lightImpl) Index() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.index
}

func (l *lightImpl) SetIndex(index int) {
	l.mu.Lock()
	l.index = index
	l.mu.Unlock()
}

func (l *lightImpl) Version() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.version
}

// update applies fn under the lock and bumps the version.
func (l *lightImpl) update(fn func()) {
	l.mu.Lock()
	fn()
	l.version++
	l.mu.Unlock()
}

func (l *lightImpl) SetPosition(x, y, z float32) {
	l.update(func() { l.position = [3]float32{x, y, z} })
}

func (l *lightImpl) SetDirection(x, y, z float32) {
	l.update(func() { l.direction = normalize3(x, y, z) })
}

func (l *lightImpl) SetColor(r, g, b float32) {
	l.update(func() { l.color = [3]float32{r, g, b} })
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.update(func() { l.intensity = intensity })
}

func (l *lightImpl) SetRange(lightRange float32) {
	l.update(func() { l.lightRange = lightRange })
}

func (l *lightImpl) SetSpotCone(innerDeg, outerDeg float32) {
	l.update(func() {
		l.innerCone = cosDeg(innerDeg)
		l.outerCone = cosDeg(outerDeg)
	})
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.update(func() { l.enabled = enabled })
}
