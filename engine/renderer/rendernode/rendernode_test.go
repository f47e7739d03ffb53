package rendernode

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-rendergraph/common"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/config"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/device"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/material"
	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	rec     *device.Recorder
	reg     material.Registry
	unlit   material.MaterialType
	imm     material.MaterialType
	cluster material.MaterialType
	va      *device.VertexArray
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	rec := device.NewRecorder()
	reg := material.NewRegistry(config.Default())
	require.NoError(t, reg.RegisterBuiltins(rec))
	rec.Reset()
	f := &fixture{rec: rec, reg: reg, va: device.NewVertexArray()}
	f.unlit, _ = reg.Type(material.TypeUnlit)
	f.imm, _ = reg.Type(material.TypeImm)
	f.cluster, _ = reg.Type(material.TypeClusterBuild)
	return f
}

func (f *fixture) draw(pass int, mt material.MaterialType, start int32) DrawParams {
	return DrawParams{
		Pass:        pass,
		DepthTest:   true,
		DepthFunc:   gputypes.CompareFunctionLessEqual,
		Type:        mt,
		VA:          device.VertexArraySlice{VA: f.va, Start: start, Count: 3},
		Topology:    gputypes.PrimitiveTopologyTriangleList,
		DepthWrite:  true,
		DrawBuffers: DrawBufferBinding{NumBuffers: -1},
	}
}

func newTestRoot() *Node {
	return NewRoot(common.Viewport{Width: 64, Height: 64}, 0, common.AttachmentColors{}, nil)
}

func drawStarts(rec *device.Recorder) []int32 {
	var out []int32
	for _, c := range rec.Filter(device.OpDrawArrays) {
		out = append(out, c.Args[1].(int32))
	}
	return out
}

func TestComparators(t *testing.T) {
	assert.Equal(t, -1, ComparePass(-2, 1))
	assert.Equal(t, 0, ComparePass(3, 3))

	assert.Equal(t, -1, CompareDepthTest(true, gputypes.CompareFunctionAlways, false, gputypes.CompareFunctionNever))
	assert.Equal(t, 1, CompareDepthTest(false, 0, true, gputypes.CompareFunctionLess))
	assert.Equal(t, -1, CompareDepthTest(true, gputypes.CompareFunctionLess, true, gputypes.CompareFunctionEqual))
	assert.Equal(t, 0, CompareDepthTest(true, gputypes.CompareFunctionEqual, true, gputypes.CompareFunctionEqual))

	assert.Equal(t, -1, CompareDepth(0.1, 0.2))
	assert.Equal(t, -1, CompareBlending(device.BlendingDisabled, device.BlendingAlpha))
	assert.Equal(t, 0, CompareBlending(device.BlendingAlpha, device.BlendingAlpha))
	assert.Equal(t, -1, CompareCullFace(gputypes.CullModeNone, gputypes.CullModeBack))
	assert.Equal(t, 1, CompareDraw(5, 2))
}

func TestCompareMaterialType(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, 0, CompareMaterialType(f.unlit, f.unlit))
	assert.Equal(t, -CompareMaterialType(f.imm, f.unlit), CompareMaterialType(f.unlit, f.imm))
	assert.NotEqual(t, 0, CompareMaterialType(f.unlit, f.imm))
	assert.Equal(t, -1, CompareMaterialType(nil, f.unlit))
}

func TestCompareTexturesByIdentity(t *testing.T) {
	a := device.NewTexture(4, 4)
	b := device.NewTexture(4, 4)
	ta := []device.TextureBinding{{Texture: a, Sampler: device.SamplerLinear}}
	tb := []device.TextureBinding{{Texture: b, Sampler: device.SamplerLinear}}
	taNearest := []device.TextureBinding{{Texture: a, Sampler: device.SamplerNearest}}

	assert.Equal(t, -1, CompareTextures(ta, tb))
	assert.Equal(t, 1, CompareTextures(tb, ta))
	assert.Equal(t, 0, CompareTextures(ta, []device.TextureBinding{{Texture: a, Sampler: device.SamplerLinear}}))
	assert.NotEqual(t, 0, CompareTextures(ta, taNearest))
	assert.Equal(t, -1, CompareTextures(nil, ta))
	assert.Equal(t, -1, CompareTextures([]device.TextureBinding{{}}, ta))
}

func TestCompareVertexArray(t *testing.T) {
	va1 := device.NewVertexArray()
	va2 := device.NewVertexArray()
	buf1 := device.NewBuffer()
	buf2 := device.NewBuffer()
	s1 := []device.StorageBinding{{Index: 1, Buffer: buf1}}
	s2 := []device.StorageBinding{{Index: 1, Buffer: buf2}}

	assert.Equal(t, -1, CompareVertexArray(va1, s2, va2, s1))
	assert.Equal(t, -1, CompareVertexArray(va1, s1, va1, s2))
	assert.Equal(t, 0, CompareVertexArray(va1, s1, va1, []device.StorageBinding{{Index: 1, Buffer: buf1}}))
	assert.Equal(t, -1, CompareVertexArray(nil, nil, va1, nil))
	assert.Equal(t, -1, CompareStorage([]device.StorageBinding{{Index: 0, Buffer: buf2}}, s1))
}

func TestDrawBufferBinding(t *testing.T) {
	color01 := common.NewAttachmentPoints(common.AttachmentColor0, common.AttachmentNormal)

	tests := []struct {
		name    string
		buffers common.AttachmentPoints
		outputs material.OutputSet
		num     int
		points  []common.AttachmentPoint
		mask    uint32
	}{
		{"unrestricted", 0, material.NewOutputSet(0, 1), -1, nil, 0},
		{"all outputs", color01, material.NewOutputSet(0, 1), 2, []common.AttachmentPoint{common.AttachmentColor0, common.AttachmentNormal}, 0b11},
		{"first output only", color01, material.NewOutputSet(0), 1, []common.AttachmentPoint{common.AttachmentColor0}, 0b01},
		{"second output only", color01, material.NewOutputSet(1), 1, []common.AttachmentPoint{common.AttachmentNormal}, 0b10},
		{"normal attachment", common.NewAttachmentPoints(common.AttachmentNormal), material.NewOutputSet(0), 1, []common.AttachmentPoint{common.AttachmentNormal}, 0b01},
		{"no outputs", color01, 0, 0, []common.AttachmentPoint{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewDrawBufferBinding(tt.buffers, tt.outputs)
			assert.Equal(t, tt.num, b.NumBuffers)
			assert.Equal(t, tt.points, b.Buffers)
			assert.Equal(t, tt.mask, b.Mask)
		})
	}
}

func TestSharedStateEmittedOnce(t *testing.T) {
	f := newFixture(t)
	root := newTestRoot()
	root.Add(f.draw(1, f.unlit, 0))
	root.Add(f.draw(1, f.unlit, 3))
	assert.Equal(t, 2, root.NumDraws())

	root.Apply(f.rec)
	assert.Equal(t, 1, f.rec.Count(device.OpEnableDepthTest))
	assert.Equal(t, 1, f.rec.Count(device.OpDisableBlending))
	assert.Equal(t, 1, f.rec.Count(device.OpDisableCullFace))
	assert.Equal(t, 1, f.rec.Count(device.OpUseProgram))
	assert.Equal(t, 2, f.rec.Count(device.OpBindVertexArray))
	assert.Equal(t, 2, f.rec.Count(device.OpDrawArrays))
	assert.Equal(t, []int32{0, 3}, drawStarts(f.rec))

	ops := f.rec.Ops()
	assert.Equal(t, device.OpBindVertexArray, ops[len(ops)-1])
}

func TestDistinctStateSplits(t *testing.T) {
	f := newFixture(t)
	root := newTestRoot()
	a := f.draw(1, f.unlit, 0)
	b := f.draw(1, f.imm, 3)
	b.Blending = device.BlendingAlpha
	root.Add(a)
	root.Add(b)
	root.Apply(f.rec)

	assert.Equal(t, 1, f.rec.Count(device.OpEnableDepthTest))
	assert.Equal(t, 1, f.rec.Count(device.OpDisableBlending))
	assert.Equal(t, 1, f.rec.Count(device.OpEnableBlending))
	assert.Equal(t, 2, f.rec.Count(device.OpUseProgram))
	assert.Equal(t, []int32{0, 3}, drawStarts(f.rec))
}

func TestTieBreakBySubmission(t *testing.T) {
	f := newFixture(t)
	root := newTestRoot()
	for i := int32(0); i < 5; i++ {
		root.Add(f.draw(1, f.unlit, i*3))
	}
	root.Apply(f.rec)
	assert.Equal(t, []int32{0, 3, 6, 9, 12}, drawStarts(f.rec))
}

func TestPassOrderOverridesSubmission(t *testing.T) {
	f := newFixture(t)
	root := newTestRoot()
	root.Add(f.draw(2, f.unlit, 200))
	root.Add(f.draw(3, f.unlit, 300))
	root.Add(f.draw(1, f.unlit, 100))
	root.Apply(f.rec)
	assert.Equal(t, []int32{100, 200, 300}, drawStarts(f.rec))
}

func TestDepthOrdersWithinPass(t *testing.T) {
	f := newFixture(t)
	root := newTestRoot()
	far := f.draw(1, f.unlit, 10)
	far.Depth = 5
	near := f.draw(1, f.unlit, 20)
	near.Depth = 1
	root.Add(far)
	root.Add(near)
	root.Apply(f.rec)
	assert.Equal(t, []int32{20, 10}, drawStarts(f.rec))
}

func TestDeterministicApply(t *testing.T) {
	f := newFixture(t)
	build := func() string {
		root := newTestRoot()
		tex := []device.TextureBinding{{}}
		for i := int32(0); i < 6; i++ {
			d := f.draw(int(i%3)+1, f.unlit, i)
			if i%2 == 0 {
				d.Type = f.imm
				d.Blending = device.BlendingAlpha
			}
			d.Textures = tex
			root.Add(d)
		}
		f.rec.Reset()
		root.Apply(f.rec)
		return f.rec.Dump()
	}
	first := build()
	assert.Equal(t, first, build())
	assert.NotEmpty(t, first)
}

func TestFlipCull(t *testing.T) {
	f := newFixture(t)
	root := newTestRoot()
	d := f.draw(1, f.unlit, 0)
	d.CullFace = gputypes.CullModeBack
	d.FlipCull = true
	root.Add(d)
	root.Apply(f.rec)
	calls := f.rec.Filter(device.OpEnableCullFace)
	require.Len(t, calls, 1)
	assert.Equal(t, gputypes.CullModeFront, calls[0].Args[0])
}

func TestRootClearDefaultFramebuffer(t *testing.T) {
	f := newFixture(t)
	vp := common.Viewport{Width: 32, Height: 16}
	var colors common.AttachmentColors
	colors[common.AttachmentColor0] = common.Color{0.5, 0, 0, 1}
	root := NewRoot(vp, common.NewAttachmentPoints(common.AttachmentColor0, common.AttachmentDepth), colors, nil)
	root.Apply(f.rec)

	assert.Equal(t, []device.Op{
		device.OpSetRenderTarget, device.OpViewport, device.OpClear, device.OpClearColor,
	}, f.rec.Ops())
	calls := f.rec.Calls()
	assert.Equal(t, vp, calls[1].Args[0])
	assert.Equal(t, []any{true, false}, calls[2].Args)
	assert.Equal(t, colors[common.AttachmentColor0], calls[3].Args[0])
}

func TestRootClearRenderTarget(t *testing.T) {
	f := newFixture(t)
	rt := device.NewRenderTarget(map[common.AttachmentPoint]*device.Texture{
		common.AttachmentColor0: device.NewTexture(8, 8),
		common.AttachmentNormal: device.NewTexture(8, 8),
	})
	mask := common.NewAttachmentPoints(common.AttachmentColor0, common.AttachmentNormal)
	root := NewRoot(common.Viewport{Width: 8, Height: 8}, mask, common.AttachmentColors{}, rt)
	root.Apply(f.rec)

	assert.Equal(t, []device.Op{
		device.OpSetRenderTarget, device.OpViewport,
		device.OpSetDrawBuffers, device.OpClearColor,
		device.OpSetDrawBuffers, device.OpClearColor,
	}, f.rec.Ops())
	db := f.rec.Filter(device.OpSetDrawBuffers)
	assert.Equal(t, []common.AttachmentPoint{common.AttachmentNormal}, db[1].Args[0])
}

func TestRootClearColor1WithoutTargetPanics(t *testing.T) {
	f := newFixture(t)
	root := NewRoot(common.Viewport{}, common.NewAttachmentPoints(common.AttachmentColor1), common.AttachmentColors{}, nil)
	assert.Panics(t, func() { root.Apply(f.rec) })
}

func TestMissingTextureFallsBackToWhite(t *testing.T) {
	f := newFixture(t)
	tex := device.NewTexture(2, 2)
	root := newTestRoot()
	d := f.draw(1, f.unlit, 0)
	d.Textures = []device.TextureBinding{{}, {Texture: tex, Sampler: device.SamplerLinear}}
	root.Add(d)
	root.Apply(f.rec)

	binds := f.rec.Filter(device.OpBindTexture)
	require.Len(t, binds, 2)
	assert.Equal(t, []any{uint32(0), f.rec.White1x1().Key(), device.SamplerNearest}, binds[0].Args)
	assert.Equal(t, []any{uint32(1), tex.Key(), device.SamplerLinear}, binds[1].Args)
}

func TestDrawVariants(t *testing.T) {
	f := newFixture(t)
	indexed := device.NewIndexedVertexArray(gputypes.IndexFormatUint32, 36)

	t.Run("indexed whole buffer", func(t *testing.T) {
		f.rec.Reset()
		root := newTestRoot()
		d := f.draw(1, f.unlit, 2)
		d.VA = device.VertexArraySlice{VA: indexed, Start: 2}
		root.Add(d)
		root.Apply(f.rec)
		calls := f.rec.Filter(device.OpDrawElements)
		require.Len(t, calls, 1)
		assert.Equal(t, []any{gputypes.PrimitiveTopologyTriangleList, gputypes.IndexFormatUint32, int32(36), int32(8)}, calls[0].Args)
	})

	t.Run("indexed range", func(t *testing.T) {
		f.rec.Reset()
		root := newTestRoot()
		d := f.draw(1, f.unlit, 0)
		d.VA = device.VertexArraySlice{VA: indexed, Start: 6, Count: 12, BaseVertex: 4}
		root.Add(d)
		root.Apply(f.rec)
		calls := f.rec.Filter(device.OpDrawElementsBaseVertex)
		require.Len(t, calls, 1)
		assert.Equal(t, []any{gputypes.PrimitiveTopologyTriangleList, gputypes.IndexFormatUint32, int32(12), int32(24), int32(4)}, calls[0].Args)
	})

	t.Run("empty non-indexed", func(t *testing.T) {
		f.rec.Reset()
		root := newTestRoot()
		d := f.draw(1, f.unlit, 0)
		d.VA.Count = 0
		root.Add(d)
		root.Apply(f.rec)
		for _, op := range f.rec.Ops() {
			assert.False(t, op.IsDraw(), op.String())
		}
	})

	t.Run("depth write off and scissor", func(t *testing.T) {
		f.rec.Reset()
		root := newTestRoot()
		d := f.draw(1, f.unlit, 0)
		d.DepthWrite = false
		d.Scissor = common.ScissorParams{Enabled: true, Rect: common.Viewport{X: 1, Y: 2, Width: 3, Height: 4}}
		d.DrawBuffers = NewDrawBufferBinding(common.NewAttachmentPoints(common.AttachmentColor0), material.NewOutputSet(0))
		root.Add(d)
		root.Apply(f.rec)

		var tail []device.Op
		for _, op := range f.rec.Ops() {
			switch op {
			case device.OpEnableScissor, device.OpDepthMask, device.OpSetDrawBuffers, device.OpDrawArrays, device.OpDisableScissor:
				tail = append(tail, op)
			}
		}
		assert.Equal(t, []device.Op{
			device.OpEnableScissor, device.OpDepthMask, device.OpSetDrawBuffers,
			device.OpDrawArrays, device.OpDepthMask, device.OpDisableScissor,
		}, tail)
		masks := f.rec.Filter(device.OpDepthMask)
		assert.Equal(t, false, masks[0].Args[0])
		assert.Equal(t, true, masks[1].Args[0])
	})
}

func TestParamsAppliedAutoFirst(t *testing.T) {
	f := newFixture(t)
	root := newTestRoot()
	d := f.draw(1, f.unlit, 0)
	d.AutoParams.Set(material.UniformModelViewProjMatrix, device.Mat4(common.Identity4()))
	d.Params.Set(material.UniformMainColor, device.Vec4([4]float32{1, 0, 0, 1}))
	d.Params.Set(material.UniformTime, device.Float(1))
	root.Add(d)
	root.Apply(f.rec)

	uniforms := f.rec.Filter(device.OpSetUniform)
	require.Len(t, uniforms, 2)
	assert.Equal(t, f.unlit.UniformLocation(material.UniformModelViewProjMatrix), uniforms[0].Args[0])
	assert.Equal(t, f.unlit.UniformLocation(material.UniformMainColor), uniforms[1].Args[0])
}

func TestComputeDispatch(t *testing.T) {
	f := newFixture(t)
	buf := device.NewBuffer()
	root := newTestRoot()
	root.Add(f.draw(1, f.unlit, 0))
	root.AddCompute(ComputeParams{
		Pass:    -2,
		Type:    f.cluster,
		Storage: []device.StorageBinding{{Index: 0, Buffer: buf}},
		Groups:  [3]uint32{16, 8, 24},
	})
	assert.Equal(t, 2, root.NumDraws())
	root.Apply(f.rec)

	ops := f.rec.Ops()
	dispatch := indexOf(ops, device.OpDispatchCompute)
	draw := indexOf(ops, device.OpDrawArrays)
	require.GreaterOrEqual(t, dispatch, 0)
	assert.Less(t, dispatch, draw)
	assert.Equal(t, device.OpMemoryBarrier, ops[dispatch+1])
	assert.Equal(t, device.OpDisableDepthTest, ops[2])

	calls := f.rec.Filter(device.OpDispatchCompute)
	assert.Equal(t, []any{uint32(16), uint32(8), uint32(24)}, calls[0].Args)
	sb := f.rec.Filter(device.OpBindStorageBuffer)
	require.Len(t, sb, 1)
	assert.Equal(t, []any{uint32(0), buf.Key()}, sb[0].Args)
}

func indexOf(ops []device.Op, op device.Op) int {
	for i, o := range ops {
		if o == op {
			return i
		}
	}
	return -1
}

func TestMisuseAsserts(t *testing.T) {
	f := newFixture(t)
	root := newTestRoot()
	root.Add(f.draw(1, f.unlit, 0))
	pass := root.Children()[0]
	assert.Equal(t, DimPass, pass.Dimension())
	assert.Panics(t, func() { pass.Add(f.draw(1, f.unlit, 0)) })
	assert.Panics(t, func() { root.Add(f.draw(1, f.cluster, 0)) })
	assert.Panics(t, func() { root.AddCompute(ComputeParams{Type: f.unlit}) })
	assert.Panics(t, func() { pass.insertDraw(0) })
}

func TestStringDump(t *testing.T) {
	f := newFixture(t)
	root := newTestRoot()
	root.Add(f.draw(1, f.unlit, 0))
	s := root.String()
	assert.Contains(t, s, "Root(draws=1")
	assert.Contains(t, s, "  Pass(1)")
	assert.Contains(t, s, "MaterialType(Unlit)")
	assert.Contains(t, s, "Draw(#0")
	assert.Equal(t, "Dimension(42)", Dimension(42).String())
}
