package environment

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-rendergraph/engine/config"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/device"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/light"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEnv(t *testing.T, mutate func(*config.Settings)) (Environment, *device.Recorder) {
	t.Helper()
	s := config.Default()
	if mutate != nil {
		mutate(&s)
	}
	rec := device.NewRecorder()
	return NewEnvironment(s, device.ImmediateScheduler{Dev: rec}), rec
}

func TestUpdateTime(t *testing.T) {
	env, _ := newTestEnv(t, nil)
	env.Update(0.5, 0.25)
	env.Update(0.5, 0.25)
	assert.Equal(t, float32(1), env.Time())
	assert.Equal(t, float32(0.5), env.Dt())
	assert.Equal(t, float32(0.25), env.RealDt())
}

func TestProbeTextures(t *testing.T) {
	env, _ := newTestEnv(t, nil)
	assert.NotNil(t, env.Irradiance())
	assert.True(t, env.Irradiance().Cube)
	lut := env.SpecularLUT()

	irr := device.NewTexture(8, 8)
	env.SetProbeTextures(irr, nil, nil)
	assert.Same(t, irr, env.Irradiance())
	assert.Same(t, lut, env.SpecularLUT())
}

func TestLightSlots(t *testing.T) {
	env, _ := newTestEnv(t, func(s *config.Settings) { s.Cluster.MaxLights = 2 })
	a := light.NewLight(light.LightTypePoint)
	b := light.NewLight(light.LightTypePoint)
	c := light.NewLight(light.LightTypePoint)

	assert.Equal(t, 0, env.AddLight(a))
	assert.Equal(t, 1, env.AddLight(b))
	assert.Equal(t, -1, env.AddLight(c))
	assert.Equal(t, -1, c.Index())
	assert.Equal(t, 0, env.AddLight(a))

	env.RemoveLight(a)
	assert.Equal(t, -1, a.Index())
	assert.Equal(t, 0, env.AddLight(c))
	assert.Equal(t, 2, env.NumLights())
}

func TestPreSwapLights(t *testing.T) {
	env, rec := newTestEnv(t, nil)
	a := light.NewLight(light.LightTypePoint)
	b := light.NewLight(light.LightTypeSpot)
	env.AddLight(a)
	env.AddLight(b)

	env.PreSwap()
	allocs := rec.Filter(device.OpAllocBuffer)
	require.Len(t, allocs, 2)
	assert.Equal(t, env.LightsBuffer().Key(), allocs[0].Args[0])
	assert.Equal(t, int(config.Default().Cluster.MaxLights)*light.GPULightSize, env.LightsBuffer().Size)
	assert.Equal(t, 3, rec.Count(device.OpUploadBuffer))

	rec.Reset()
	env.PreSwap()
	assert.Empty(t, rec.Calls())

	a.SetIntensity(3)
	env.PreSwap()
	uploads := rec.Filter(device.OpUploadBuffer)
	require.Len(t, uploads, 1)
	assert.Equal(t, 0, uploads[0].Args[1])

	rec.Reset()
	env.RemoveLight(b)
	env.PreSwap()
	uploads = rec.Filter(device.OpUploadBuffer)
	require.Len(t, uploads, 1)
	assert.Equal(t, light.GPULightSize, uploads[0].Args[1])
}

func TestProbeSlots(t *testing.T) {
	env, rec := newTestEnv(t, func(s *config.Settings) { s.Cluster.MaxProbes = 3 })
	g := NewGlobalProbe()
	p1 := NewProbe([3]float32{1, 0, 0}, 2)
	p2 := NewProbe([3]float32{2, 0, 0}, 2)
	p3 := NewProbe([3]float32{3, 0, 0}, 2)

	assert.Equal(t, 0, env.AddProbe(g))
	assert.Equal(t, 1, env.AddProbe(p1))
	assert.Equal(t, 2, env.AddProbe(p2))
	assert.Equal(t, -1, env.AddProbe(p3))

	env.PreSwap()
	uploads := rec.Filter(device.OpUploadBuffer)
	require.NotEmpty(t, uploads)
	assert.Equal(t, env.ProbesBuffer().Key(), uploads[len(uploads)-1].Args[0])

	rec.Reset()
	env.PreSwap()
	assert.Zero(t, rec.Count(device.OpUploadBuffer))

	p1.SetSphere([3]float32{0, 1, 0}, 4)
	env.PreSwap()
	assert.Equal(t, 1, rec.Count(device.OpUploadBuffer))

	env.RemoveProbe(p1)
	assert.Equal(t, -1, p1.Index())
	assert.Equal(t, 1, env.AddProbe(p3))
	env.RemoveProbe(g)
	assert.Equal(t, -1, g.Index())
}

func TestImmCameraSlots(t *testing.T) {
	env, _ := newTestEnv(t, func(s *config.Settings) { s.MaxImmCameras = 2 })
	assert.Equal(t, 0, env.ImmCameraIdx(0))
	assert.Equal(t, -1, env.ImmCameraIdx(42))
	assert.Equal(t, 1, env.AllocImmCameraIdx(42))
	assert.Equal(t, 1, env.AllocImmCameraIdx(42))
	assert.Equal(t, 2, env.AllocImmCameraIdx(43))
	assert.Equal(t, -1, env.AllocImmCameraIdx(44))
	assert.Equal(t, 2, env.ImmCameraIdx(43))

	env.Update(0.016, 0.016)
	assert.Equal(t, -1, env.ImmCameraIdx(42))
	assert.Equal(t, 0, env.ImmCameraIdx(0))
	assert.Equal(t, 1, env.AllocImmCameraIdx(44))
}

func TestGPUProbeLayout(t *testing.T) {
	g := GPUProbe{Position: [3]float32{1, 2, 3}, Radius: 4, Enabled: 1}
	assert.Equal(t, GPUProbeSize, g.Size())
	buf := g.Marshal()
	assert.Len(t, buf, GPUProbeSize)
	assert.Equal(t, byte(1), buf[16])
}
