package device

import (
	"cmp"

	"github.com/gogpu/gputypes"
)

// BlendingParams is the fixed-function blend state of a material.
type BlendingParams struct {
	Enabled bool
	State   gputypes.BlendState
}

// BlendingDisabled is the zero blend state.
var BlendingDisabled = BlendingParams{}

// BlendingAlpha is standard non-premultiplied alpha blending.
var BlendingAlpha = BlendingParams{Enabled: true, State: gputypes.BlendStateAlpha()}

// Compare orders blend states: disabled first, then by factors and operations.
func (b BlendingParams) Compare(o BlendingParams) int {
	if b.Enabled != o.Enabled {
		if !b.Enabled {
			return -1
		}
		return 1
	}
	if !b.Enabled {
		return 0
	}
	return cmp.Or(
		cmp.Compare(b.State.Color.SrcFactor, o.State.Color.SrcFactor),
		cmp.Compare(b.State.Color.DstFactor, o.State.Color.DstFactor),
		cmp.Compare(b.State.Alpha.SrcFactor, o.State.Alpha.SrcFactor),
		cmp.Compare(b.State.Alpha.DstFactor, o.State.Alpha.DstFactor),
		cmp.Compare(b.State.Color.Operation, o.State.Color.Operation),
		cmp.Compare(b.State.Alpha.Operation, o.State.Alpha.Operation),
	)
}

// SamplerParams is the sampling state bound alongside a texture.
type SamplerParams struct {
	MinFilter gputypes.FilterMode
	MagFilter gputypes.FilterMode
	Mipmap    gputypes.MipmapFilterMode
	WrapU     gputypes.AddressMode
	WrapV     gputypes.AddressMode
}

// SamplerNearest is the sampler used for fallback textures.
var SamplerNearest = SamplerParams{
	MinFilter: gputypes.FilterModeNearest,
	MagFilter: gputypes.FilterModeNearest,
	WrapU:     gputypes.AddressModeClampToEdge,
	WrapV:     gputypes.AddressModeClampToEdge,
}

// SamplerLinear is trilinear repeat sampling.
var SamplerLinear = SamplerParams{
	MinFilter: gputypes.FilterModeLinear,
	MagFilter: gputypes.FilterModeLinear,
	Mipmap:    gputypes.MipmapFilterModeLinear,
	WrapU:     gputypes.AddressModeRepeat,
	WrapV:     gputypes.AddressModeRepeat,
}

// Compare orders sampler states field by field.
func (s SamplerParams) Compare(o SamplerParams) int {
	return cmp.Or(
		cmp.Compare(s.MinFilter, o.MinFilter),
		cmp.Compare(s.MagFilter, o.MagFilter),
		cmp.Compare(s.Mipmap, o.Mipmap),
		cmp.Compare(s.WrapU, o.WrapU),
		cmp.Compare(s.WrapV, o.WrapV),
	)
}

// TextureBinding is a texture bound to the texture unit matching its index in a binding list.
// A nil Texture binds the white 1x1 fallback.
type TextureBinding struct {
	Texture *Texture
	Sampler SamplerParams
}

// StorageBinding binds a buffer to a shader storage block index.
type StorageBinding struct {
	Index  uint32
	Buffer *Buffer
}

// ShaderSource holds the source of each stage of a program.
type ShaderSource map[gputypes.ShaderStage]string

// IsCompute reports whether the source describes a compute program.
func (s ShaderSource) IsCompute() bool {
	_, ok := s[gputypes.ShaderStageCompute]
	return ok
}
