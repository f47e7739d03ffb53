package material

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-rendergraph/engine/config"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/device"
	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) (Registry, *device.Recorder) {
	t.Helper()
	rec := device.NewRecorder()
	reg := NewRegistry(config.Default())
	require.NoError(t, reg.RegisterBuiltins(rec))
	return reg, rec
}

func TestUniformNames(t *testing.T) {
	assert.Equal(t, "uModelViewProjMatrix", UniformModelViewProjMatrix.GLSLName())
	assert.True(t, UniformImmCameraIdx.IsAuto())
	assert.False(t, UniformMainColor.IsAuto())
	assert.Equal(t, "UniformName(200)", UniformName(200).String())
}

func TestSets(t *testing.T) {
	s := NewSamplerSet(SamplerSpecularLUT, SamplerMain, SamplerIrradiance)
	assert.Equal(t, []SamplerName{SamplerMain, SamplerIrradiance, SamplerSpecularLUT}, s.Names())

	u := NewUniformSet(UniformModelMatrix, UniformMainColor)
	assert.True(t, u.Has(UniformMainColor))
	assert.False(t, u.Has(UniformViewProjMatrix))
	assert.Equal(t, 2, u.Len())

	o := NewOutputSet(0, 1)
	assert.True(t, o.Has(1))
	assert.False(t, o.Has(2))
	assert.False(t, o.Has(-1))

	assert.Equal(t, uint32(3), StorageClusterLights.Index())
}

func TestMaterialParams(t *testing.T) {
	var p MaterialParams
	p.Set(UniformMainColor, device.Vec4([4]float32{1, 0, 0, 1}))
	p.Set(UniformModelMatrix, device.Float(1))
	p.Set(UniformMainColor, device.Vec4([4]float32{0, 1, 0, 1}))

	assert.Equal(t, 2, p.Len())
	assert.Equal(t, []UniformName{UniformModelMatrix, UniformMainColor}, p.Names())
	v, ok := p.Get(UniformMainColor)
	require.True(t, ok)
	assert.Equal(t, []float32{0, 1, 0, 1}, v.F)

	c := p.Clone()
	c.Set(UniformShininess, device.Float(8))
	assert.Equal(t, 2, p.Len())
	assert.Equal(t, 3, c.Len())
}

func TestShaderHeader(t *testing.T) {
	h := shaderHeader(config.Default())
	assert.Contains(t, h, "#version 430 core\n")
	assert.Contains(t, h, "#define CLUSTER_GRID_X 16u")
	assert.Contains(t, h, "#define CLUSTER_CULL_Z 6")
	assert.Contains(t, h, "#define MAX_LIGHTS_PER_TILE 64u")
	assert.Contains(t, h, "struct ClusterTile")
}

func TestRegisterBuiltins(t *testing.T) {
	reg, rec := newTestRegistry(t)
	assert.Equal(t, int(TypeMax), rec.Count(device.OpCompileProgram))

	for name := TypeName(0); name < TypeMax; name++ {
		mt, ok := reg.Type(name)
		require.True(t, ok, name.String())
		assert.True(t, mt.Ready(), name.String())
		assert.NotZero(t, mt.Key())
	}

	build, _ := reg.Type(TypeClusterBuild)
	assert.True(t, build.IsCompute())
	basic, _ := reg.Type(TypeBasic)
	assert.False(t, basic.IsCompute())
	assert.GreaterOrEqual(t, basic.UniformLocation(UniformMainColor), int32(0))
	assert.Equal(t, int32(-1), basic.UniformLocation(UniformTime))
	assert.Equal(t, 0, basic.SamplerUnit(SamplerMain))
	assert.Equal(t, -1, basic.SamplerUnit(SamplerNormal))
}

func TestRegisterTypeFailure(t *testing.T) {
	rec := device.NewRecorder()
	linkErr := errors.New("link failed")
	rec.CompileErr = linkErr
	reg := NewRegistry(config.Default())

	mt, err := reg.RegisterType(rec, BuiltinTypes()[TypeUnlit])
	require.Error(t, err)
	assert.ErrorIs(t, err, linkErr)
	require.NotNil(t, mt)
	assert.False(t, mt.Ready())

	err = reg.RegisterBuiltins(rec)
	assert.ErrorIs(t, err, linkErr)

	rec.CompileErr = nil
	_, err = reg.RegisterType(rec, BuiltinTypes()[TypeUnlit])
	require.NoError(t, err)
	assert.True(t, mt.Ready())
}

func TestCreateMaterial(t *testing.T) {
	reg, _ := newTestRegistry(t)
	unlit, _ := reg.Type(TypeUnlit)
	unlit.SetDefaultUniform(UniformMainColor, device.Vec4([4]float32{1, 1, 1, 1}))
	unlit.SetDefaultUniform(UniformModelViewProjMatrix, device.Float(0))

	m, err := reg.CreateMaterial("red", TypeUnlit,
		WithMainColor([4]float32{1, 0, 0, 1}),
		WithBlending(device.BlendingAlpha),
		WithCullFace(gputypes.CullModeNone),
	)
	require.NoError(t, err)
	assert.Equal(t, "red", m.Name())
	assert.Same(t, reg, m.Registry())
	assert.True(t, m.Blending().Enabled)
	assert.Equal(t, gputypes.CullModeNone, m.CullFace())
	assert.Equal(t, gputypes.CompareFunctionLessEqual, m.DepthFunc())
	assert.True(t, m.DepthTest())
	assert.True(t, m.DepthWrite())

	params := m.Params()
	assert.Equal(t, 1, params.Len())
	v, _ := params.Get(UniformMainColor)
	assert.Equal(t, []float32{1, 0, 0, 1}, v.F)

	got, ok := reg.Material("red")
	require.True(t, ok)
	assert.Same(t, m, got)

	_, err = reg.CreateMaterial("red", TypeUnlit)
	assert.ErrorIs(t, err, ErrDuplicateMaterial)

	assert.True(t, reg.RemoveMaterial("red"))
	assert.False(t, reg.RemoveMaterial("red"))
	_, ok = reg.Material("red")
	assert.False(t, ok)
}

func TestCreateMaterialUnknownType(t *testing.T) {
	reg := NewRegistry(config.Default())
	_, err := reg.CreateMaterial("m", TypeBasic)
	assert.ErrorIs(t, err, ErrUnknownMaterialType)
	_, err = reg.Immutable(TypePrepass1)
	assert.ErrorIs(t, err, ErrUnknownMaterialType)
}

func TestMaterialSetters(t *testing.T) {
	reg, _ := newTestRegistry(t)
	sky, err := reg.CreateMaterial("", TypeSkyBox)
	require.NoError(t, err)
	assert.True(t, sky.IsSkyBox())
	assert.False(t, sky.DepthWrite())
	_, ok := reg.Material("")
	assert.False(t, ok)

	tex := device.NewTexture(4, 4)
	sky.SetTexture(SamplerMain, tex, device.SamplerLinear)
	assert.Same(t, tex, sky.Texture(SamplerMain).Texture)
	assert.Nil(t, sky.Texture(SamplerNormal).Texture)

	sky.SetParam(UniformTime, device.Float(1))
	p := sky.Params()
	assert.Equal(t, 0, p.Len())

	sky.SetDepthFunc(gputypes.CompareFunctionAlways)
	sky.SetDepthTest(false)
	sky.SetDepthWrite(true)
	assert.Equal(t, gputypes.CompareFunctionAlways, sky.DepthFunc())
	assert.False(t, sky.DepthTest())
	assert.True(t, sky.DepthWrite())
}

func TestImmutable(t *testing.T) {
	reg, _ := newTestRegistry(t)
	a, err := reg.Immutable(TypePrepass2)
	require.NoError(t, err)
	b, err := reg.Immutable(TypePrepass2)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, TypePrepass2, a.Type().Name())
}

func TestParamsApply(t *testing.T) {
	reg, rec := newTestRegistry(t)
	unlit, _ := reg.Type(TypeUnlit)
	var p MaterialParams
	p.Set(UniformMainColor, device.Vec4([4]float32{1, 2, 3, 4}))
	p.Set(UniformTime, device.Float(3))

	rec.Reset()
	p.Apply(rec, unlit)
	assert.Equal(t, 1, rec.Count(device.OpSetUniform))
}
