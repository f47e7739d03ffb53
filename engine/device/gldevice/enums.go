package gldevice

import (
	"github.com/Carmen-Shannon/oxy-rendergraph/common"
	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/gogpu/gputypes"
)

func compareFunc(fn gputypes.CompareFunction) uint32 {
	switch fn {
	case gputypes.CompareFunctionNever:
		return gl.NEVER
	case gputypes.CompareFunctionEqual:
		return gl.EQUAL
	case gputypes.CompareFunctionLessEqual:
		return gl.LEQUAL
	case gputypes.CompareFunctionGreater:
		return gl.GREATER
	case gputypes.CompareFunctionNotEqual:
		return gl.NOTEQUAL
	case gputypes.CompareFunctionGreaterEqual:
		return gl.GEQUAL
	case gputypes.CompareFunctionAlways:
		return gl.ALWAYS
	default:
		return gl.LESS
	}
}

func blendFactor(f gputypes.BlendFactor) uint32 {
	switch f {
	case gputypes.BlendFactorZero:
		return gl.ZERO
	case gputypes.BlendFactorSrc:
		return gl.SRC_COLOR
	case gputypes.BlendFactorOneMinusSrc:
		return gl.ONE_MINUS_SRC_COLOR
	case gputypes.BlendFactorSrcAlpha:
		return gl.SRC_ALPHA
	case gputypes.BlendFactorOneMinusSrcAlpha:
		return gl.ONE_MINUS_SRC_ALPHA
	case gputypes.BlendFactorDst:
		return gl.DST_COLOR
	case gputypes.BlendFactorOneMinusDst:
		return gl.ONE_MINUS_DST_COLOR
	case gputypes.BlendFactorDstAlpha:
		return gl.DST_ALPHA
	case gputypes.BlendFactorOneMinusDstAlpha:
		return gl.ONE_MINUS_DST_ALPHA
	case gputypes.BlendFactorSrcAlphaSaturated:
		return gl.SRC_ALPHA_SATURATE
	case gputypes.BlendFactorConstant:
		return gl.CONSTANT_COLOR
	case gputypes.BlendFactorOneMinusConstant:
		return gl.ONE_MINUS_CONSTANT_COLOR
	default:
		return gl.ONE
	}
}

func blendOp(op gputypes.BlendOperation) uint32 {
	switch op {
	case gputypes.BlendOperationSubtract:
		return gl.FUNC_SUBTRACT
	case gputypes.BlendOperationReverseSubtract:
		return gl.FUNC_REVERSE_SUBTRACT
	case gputypes.BlendOperationMin:
		return gl.MIN
	case gputypes.BlendOperationMax:
		return gl.MAX
	default:
		return gl.FUNC_ADD
	}
}

func primitiveMode(t gputypes.PrimitiveTopology) uint32 {
	switch t {
	case gputypes.PrimitiveTopologyPointList:
		return gl.POINTS
	case gputypes.PrimitiveTopologyLineList:
		return gl.LINES
	case gputypes.PrimitiveTopologyLineStrip:
		return gl.LINE_STRIP
	case gputypes.PrimitiveTopologyTriangleStrip:
		return gl.TRIANGLE_STRIP
	default:
		return gl.TRIANGLES
	}
}

func indexType(f gputypes.IndexFormat) uint32 {
	if f == gputypes.IndexFormatUint32 {
		return gl.UNSIGNED_INT
	}
	return gl.UNSIGNED_SHORT
}

func cullFace(mode gputypes.CullMode) uint32 {
	if mode == gputypes.CullModeFront {
		return gl.FRONT
	}
	return gl.BACK
}

// minFilter combines the minification and mipmap filters.
func minFilter(f gputypes.FilterMode, mip gputypes.MipmapFilterMode) int32 {
	linear := f == gputypes.FilterModeLinear
	switch mip {
	case gputypes.MipmapFilterModeNearest:
		if linear {
			return gl.LINEAR_MIPMAP_NEAREST
		}
		return gl.NEAREST_MIPMAP_NEAREST
	case gputypes.MipmapFilterModeLinear:
		if linear {
			return gl.LINEAR_MIPMAP_LINEAR
		}
		return gl.NEAREST_MIPMAP_LINEAR
	}
	if linear {
		return gl.LINEAR
	}
	return gl.NEAREST
}

func magFilter(f gputypes.FilterMode) int32 {
	if f == gputypes.FilterModeLinear {
		return gl.LINEAR
	}
	return gl.NEAREST
}

func wrapMode(m gputypes.AddressMode) int32 {
	switch m {
	case gputypes.AddressModeRepeat:
		return gl.REPEAT
	case gputypes.AddressModeMirrorRepeat:
		return gl.MIRRORED_REPEAT
	default:
		return gl.CLAMP_TO_EDGE
	}
}

func shaderType(stage gputypes.ShaderStage) (uint32, bool) {
	switch stage {
	case gputypes.ShaderStageVertex:
		return gl.VERTEX_SHADER, true
	case gputypes.ShaderStageFragment:
		return gl.FRAGMENT_SHADER, true
	case gputypes.ShaderStageCompute:
		return gl.COMPUTE_SHADER, true
	}
	return 0, false
}

// attachment returns the framebuffer attachment enum of p.
func attachment(p common.AttachmentPoint) uint32 {
	switch {
	case p.IsColor():
		return gl.COLOR_ATTACHMENT0 + uint32(p)
	case p == common.AttachmentDepth:
		return gl.DEPTH_ATTACHMENT
	default:
		return gl.STENCIL_ATTACHMENT
	}
}

// drawBuffer returns the draw buffer enum routing an output to p. The default
// framebuffer only has the back buffer.
func drawBuffer(p common.AttachmentPoint, offscreen bool) uint32 {
	if !p.IsColor() {
		return gl.NONE
	}
	if offscreen {
		return gl.COLOR_ATTACHMENT0 + uint32(p)
	}
	if p == common.AttachmentColor0 {
		return gl.BACK_LEFT
	}
	return gl.NONE
}
