package device

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-rendergraph/common"
	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpString(t *testing.T) {
	tests := []struct {
		op   Op
		want string
	}{
		{OpSetRenderTarget, "SetRenderTarget"},
		{OpUseProgram, "UseProgram"},
		{OpDrawElementsBaseVertex, "DrawElementsBaseVertex"},
		{OpCreateTexture, "CreateTexture"},
		{OpCreateVertexArray, "CreateVertexArray"},
		{Op(200), "Op(200)"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.op.String())
		})
	}
}

func TestOpIsDraw(t *testing.T) {
	assert.True(t, OpDrawArrays.IsDraw())
	assert.True(t, OpDispatchCompute.IsDraw())
	assert.False(t, OpUseProgram.IsDraw())
}

func TestHandleKeysAreUnique(t *testing.T) {
	a, b := NewProgram(), NewProgram()
	assert.NotEqual(t, a.Key(), b.Key())
	assert.Less(t, a.Key(), b.Key())

	var nilTex *Texture
	assert.Equal(t, uint64(0), nilTex.Key())
}

func TestRenderTargetPoints(t *testing.T) {
	rt := NewRenderTarget(map[common.AttachmentPoint]*Texture{
		common.AttachmentColor0: NewTexture(4, 4),
		common.AttachmentDepth:  NewTexture(4, 4),
	})
	assert.Equal(t, common.NewAttachmentPoints(common.AttachmentColor0, common.AttachmentDepth), rt.Points())

	var def *RenderTarget
	assert.True(t, def.Points().Empty())
}

func TestBlendingParamsCompare(t *testing.T) {
	assert.Equal(t, 0, BlendingDisabled.Compare(BlendingParams{State: gputypes.BlendStateAlpha()}))
	assert.Equal(t, -1, BlendingDisabled.Compare(BlendingAlpha))
	assert.Equal(t, 1, BlendingAlpha.Compare(BlendingDisabled))

	additive := BlendingParams{Enabled: true, State: gputypes.BlendState{
		Color: gputypes.BlendComponent{SrcFactor: gputypes.BlendFactorOne, DstFactor: gputypes.BlendFactorOne},
		Alpha: gputypes.BlendComponent{SrcFactor: gputypes.BlendFactorOne, DstFactor: gputypes.BlendFactorOne},
	}}
	assert.Equal(t, -1, additive.Compare(BlendingAlpha))
	assert.Equal(t, 0, additive.Compare(additive))
}

func TestSamplerParamsCompare(t *testing.T) {
	assert.Equal(t, 0, SamplerLinear.Compare(SamplerLinear))
	assert.Equal(t, -1, SamplerNearest.Compare(SamplerLinear))
	assert.Equal(t, 1, SamplerLinear.Compare(SamplerNearest))
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	p := NewProgram()
	require.NoError(t, r.CompileProgram(p, ShaderSource{gputypes.ShaderStageCompute: "void main() {}"}))
	assert.NotZero(t, p.Name)

	r.UseProgram(p)
	r.DrawArrays(gputypes.PrimitiveTopologyTriangleList, 0, 3)
	r.DrawArrays(gputypes.PrimitiveTopologyTriangleList, 3, 3)

	assert.Equal(t, []Op{OpCompileProgram, OpUseProgram, OpDrawArrays, OpDrawArrays}, r.Ops())
	assert.Equal(t, 2, r.Count(OpDrawArrays))
	assert.Len(t, r.Filter(OpUseProgram, OpCompileProgram), 2)
	assert.Contains(t, r.Dump(), "DrawArrays(TriangleList, 3, 3)")

	assert.Equal(t, int32(0), r.UniformLocation(p, "ModelMatrix"))
	assert.Equal(t, int32(1), r.UniformLocation(p, "EyePos"))
	assert.Equal(t, int32(0), r.UniformLocation(p, "ModelMatrix"))

	r.Reset()
	assert.Empty(t, r.Calls())

	r.CompileErr = errors.New("link failed")
	assert.Error(t, r.CompileProgram(NewProgram(), nil))
}

func TestRecorderAllocBuffer(t *testing.T) {
	r := NewRecorder()
	b := NewBuffer()
	r.AllocBuffer(b, 256)
	name := b.Name
	assert.Equal(t, 256, b.Size)
	r.AllocBuffer(b, 512)
	assert.Equal(t, name, b.Name)
	assert.Equal(t, 512, b.Size)
}

func TestRecorderCreateVertexArray(t *testing.T) {
	r := NewRecorder()
	va := NewIndexedVertexArray(gputypes.IndexFormatUint16, 6)
	layout := VertexLayout{Stride: 12, Attributes: []VertexAttribute{{Location: 0, Components: 3}}}
	r.CreateVertexArray(va, layout, make([]byte, 48), make([]byte, 12))

	calls := r.Filter(OpCreateVertexArray)
	require.Len(t, calls, 1)
	assert.Equal(t, []any{va.Key(), int32(12), 48, 12}, calls[0].Args)
	assert.NotZero(t, va.Name)
}

func TestUniformValueString(t *testing.T) {
	assert.Equal(t, "int(3)", Int(3).String())
	assert.Equal(t, "vec2[1 2]", Vec2(1, 2).String())
	assert.Equal(t, "mat4", Mat4(common.Identity4()).Type.String())
}
