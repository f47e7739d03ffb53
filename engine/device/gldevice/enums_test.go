package gldevice

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-rendergraph/common"
	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
)

func TestCompareFunc(t *testing.T) {
	tests := []struct {
		in   gputypes.CompareFunction
		want uint32
	}{
		{gputypes.CompareFunctionUndefined, gl.LESS},
		{gputypes.CompareFunctionLess, gl.LESS},
		{gputypes.CompareFunctionEqual, gl.EQUAL},
		{gputypes.CompareFunctionLessEqual, gl.LEQUAL},
		{gputypes.CompareFunctionAlways, gl.ALWAYS},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, compareFunc(tt.in), "%v", tt.in)
	}
}

func TestMinFilter(t *testing.T) {
	assert.Equal(t, int32(gl.NEAREST), minFilter(gputypes.FilterModeNearest, gputypes.MipmapFilterModeUndefined))
	assert.Equal(t, int32(gl.LINEAR_MIPMAP_LINEAR), minFilter(gputypes.FilterModeLinear, gputypes.MipmapFilterModeLinear))
	assert.Equal(t, int32(gl.NEAREST_MIPMAP_LINEAR), minFilter(gputypes.FilterModeNearest, gputypes.MipmapFilterModeLinear))
	assert.Equal(t, int32(gl.LINEAR_MIPMAP_NEAREST), minFilter(gputypes.FilterModeLinear, gputypes.MipmapFilterModeNearest))
}

func TestAttachmentAndDrawBuffer(t *testing.T) {
	assert.Equal(t, uint32(gl.COLOR_ATTACHMENT1), attachment(common.AttachmentNormal))
	assert.Equal(t, uint32(gl.DEPTH_ATTACHMENT), attachment(common.AttachmentDepth))
	assert.Equal(t, uint32(gl.STENCIL_ATTACHMENT), attachment(common.AttachmentStencil))

	assert.Equal(t, uint32(gl.BACK_LEFT), drawBuffer(common.AttachmentColor0, false))
	assert.Equal(t, uint32(gl.NONE), drawBuffer(common.AttachmentColor1, false))
	assert.Equal(t, uint32(gl.COLOR_ATTACHMENT1), drawBuffer(common.AttachmentColor1, true))
	assert.Equal(t, uint32(gl.NONE), drawBuffer(common.AttachmentDepth, true))
}

func TestEnumDefaults(t *testing.T) {
	assert.Equal(t, uint32(gl.TRIANGLES), primitiveMode(gputypes.PrimitiveTopologyTriangleList))
	assert.Equal(t, uint32(gl.LINE_STRIP), primitiveMode(gputypes.PrimitiveTopologyLineStrip))
	assert.Equal(t, uint32(gl.UNSIGNED_SHORT), indexType(gputypes.IndexFormatUint16))
	assert.Equal(t, uint32(gl.UNSIGNED_INT), indexType(gputypes.IndexFormatUint32))
	assert.Equal(t, uint32(gl.FRONT), cullFace(gputypes.CullModeFront))
	assert.Equal(t, uint32(gl.ONE), blendFactor(gputypes.BlendFactorOne))
	assert.Equal(t, uint32(gl.ONE_MINUS_SRC_ALPHA), blendFactor(gputypes.BlendFactorOneMinusSrcAlpha))
	assert.Equal(t, uint32(gl.FUNC_ADD), blendOp(gputypes.BlendOperationUndefined))
	assert.Equal(t, int32(gl.REPEAT), wrapMode(gputypes.AddressModeRepeat))

	_, ok := shaderType(gputypes.ShaderStageNone)
	assert.False(t, ok)
	st, ok := shaderType(gputypes.ShaderStageCompute)
	assert.True(t, ok)
	assert.Equal(t, uint32(gl.COMPUTE_SHADER), st)
}
