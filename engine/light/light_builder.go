package light

import "github.com/chewxy/math32"

// LightBuilderOption is a function that configures a Light instance during construction.
type LightBuilderOption func(*lightImpl)

// WithPosition is an option builder that places the light in world space.
// Directional lights ignore it.
//
// Parameters:
//   - x, y, z: world-space coordinates
//
// Returns:
//   - LightBuilderOption: applies the position to the light
func WithPosition(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.position = [3]float32{x, y, z}
	}
}

// WithDirection is an option builder that points the light. The vector is
// normalized; a zero vector stays zero.
//
// Parameters:
//   - x, y, z: direction components, any length
//
// Returns:
//   - LightBuilderOption: applies the direction to the light
func WithDirection(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.direction = normalize3(x, y, z)
	}
}

// WithColor is an option builder that sets the linear RGB color of the light.
//
// Parameters:
//   - r, g, b: color channels
//
// Returns:
//   - LightBuilderOption: applies the color to the light
func WithColor(r, g, b float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.color = [3]float32{r, g, b}
	}
}

// WithIntensity is an option builder that sets the multiplier applied to the color.
//
// Parameters:
//   - intensity: scalar multiplier
//
// Returns:
//   - LightBuilderOption: applies the intensity to the light
func WithIntensity(intensity float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.intensity = intensity
	}
}

// WithRange is an option builder that sets the attenuation cutoff of point and spot
// lights. It is packed into the light's GPU record.
//
// Parameters:
//   - lightRange: cutoff distance in world units
//
// Returns:
//   - LightBuilderOption: applies the range to the light
func WithRange(lightRange float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.lightRange = lightRange
	}
}

// WithSpotCone is an option builder that sets the inner and outer cone half-angles of
// a spot light. Angles are stored as cosines, the form the cluster shaders read.
//
// Parameters:
//   - innerDeg: inner cone half-angle in degrees
//   - outerDeg: outer cone half-angle in degrees
//
// Returns:
//   - LightBuilderOption: applies the cone to the light
func WithSpotCone(innerDeg, outerDeg float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.innerCone = cosDeg(innerDeg)
		l.outerCone = cosDeg(outerDeg)
	}
}

// WithEnabled is an option builder that sets whether render lists pick up the light.
//
// Parameters:
//   - enabled: false to leave the light out of lighting
//
// Returns:
//   - LightBuilderOption: applies the enabled state to the light
func WithEnabled(enabled bool) LightBuilderOption {
	return func(l *lightImpl) {
		l.enabled = enabled
	}
}

// WithCastsShadows is an option builder that marks the light as a shadow caster.
//
// Parameters:
//   - castsShadows: true to make the light eligible for shadow maps
//
// Returns:
//   - LightBuilderOption: applies the flag to the light
func WithCastsShadows(castsShadows bool) LightBuilderOption {
	return func(l *lightImpl) {
		l.castsShadows = castsShadows
	}
}

func normalize3(x, y, z float32) [3]float32 {
	length := math32.Sqrt(x*x + y*y + z*z)
	if length == 0 {
		return [3]float32{0, 0, 0}
	}
	return [3]float32{x / length, y / length, z / length}
}

func cosDeg(deg float32) float32 {
	return math32.Cos(deg * math32.Pi / 180.0)
}
