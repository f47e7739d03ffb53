package material

import (
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/device"
	"github.com/gogpu/gputypes"
)

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithParam is an option builder that sets a material-owned uniform value.
//
// Parameters:
//   - name: the uniform, automatic uniforms are ignored
//   - v: the value
//
// Returns:
//   - MaterialBuilderOption: a function that applies the uniform option to a material
func WithParam(name UniformName, v device.UniformValue) MaterialBuilderOption {
	return func(m *material) {
		if !name.IsAuto() {
			m.params.Set(name, v)
		}
	}
}

// WithMainColor is an option builder that sets the MainColor uniform.
//
// Parameters:
//   - color: the RGBA color
//
// Returns:
//   - MaterialBuilderOption: a function that applies the color option to a material
func WithMainColor(color [4]float32) MaterialBuilderOption {
	return WithParam(UniformMainColor, device.Vec4(color))
}

// WithTexture is an option builder that binds a texture to a sampler slot.
//
// Parameters:
//   - name: the sampler slot
//   - tex: the texture
//   - sampler: the sampler parameters
//
// Returns:
//   - MaterialBuilderOption: a function that applies the texture option to a material
func WithTexture(name SamplerName, tex *device.Texture, sampler device.SamplerParams) MaterialBuilderOption {
	return func(m *material) {
		if name < SamplerMax {
			m.textures[name] = device.TextureBinding{Texture: tex, Sampler: sampler}
		}
	}
}

// WithBlending is an option builder that sets the blending parameters.
//
// Parameters:
//   - b: the blending parameters
//
// Returns:
//   - MaterialBuilderOption: a function that applies the blending option to a material
func WithBlending(b device.BlendingParams) MaterialBuilderOption {
	return func(m *material) {
		m.blending = b
	}
}

// WithDepthTest is an option builder that enables or disables depth testing.
func WithDepthTest(enabled bool) MaterialBuilderOption {
	return func(m *material) {
		m.depthTest = enabled
	}
}

// WithDepthWrite is an option builder that enables or disables depth writes.
func WithDepthWrite(enabled bool) MaterialBuilderOption {
	return func(m *material) {
		m.depthWrite = enabled
	}
}

// WithDepthFunc is an option builder that sets the depth compare function.
func WithDepthFunc(fn gputypes.CompareFunction) MaterialBuilderOption {
	return func(m *material) {
		m.depthFunc = fn
	}
}

// WithCullFace is an option builder that sets the face culling mode.
func WithCullFace(mode gputypes.CullMode) MaterialBuilderOption {
	return func(m *material) {
		m.cullFace = mode
	}
}
