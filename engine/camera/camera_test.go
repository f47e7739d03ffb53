package camera

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-rendergraph/common"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/config"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/device"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCameraDefaults(t *testing.T) {
	c := NewCamera()
	assert.True(t, c.ClearMask().Has(common.AttachmentColor0))
	assert.True(t, c.ClearMask().Has(common.AttachmentDepth))
	assert.True(t, c.DrawBuffers().Empty())
	assert.Nil(t, c.RenderTarget())
	assert.False(t, c.Prepass())
	assert.NotNil(t, c.ClusterData())
	assert.Equal(t, c.StableViewProjectionMatrix(), c.PrevStableViewProjectionMatrix())
	assert.Equal(t, c.StableViewProjectionMatrix(), c.ViewProjectionMatrix())
}

func TestCameraOptions(t *testing.T) {
	rt := device.NewRenderTarget(nil)
	c := NewCamera(
		WithViewport(common.Viewport{Width: 640, Height: 480}),
		WithNearFar(0.5, 200),
		WithClear(common.NewAttachmentPoints(common.AttachmentColor0, common.AttachmentColor1), common.Color{1, 0, 0, 1}),
		WithRenderTarget(rt),
		WithDrawBuffers(common.NewAttachmentPoints(common.AttachmentColor0, common.AttachmentNormal)),
		WithPrepass(true),
		WithAmbientColor(common.ColorWhite),
	)
	assert.Equal(t, float32(0.5), c.Near())
	assert.Equal(t, float32(200), c.Far())
	assert.Equal(t, common.Color{1, 0, 0, 1}, c.ClearColors()[common.AttachmentColor1])
	assert.Equal(t, common.Color{}, c.ClearColors()[common.AttachmentColor2])
	assert.Same(t, rt, c.RenderTarget())
	assert.True(t, c.Prepass())
	assert.Equal(t, common.ColorWhite, c.AmbientColor())
	assert.Equal(t, 2, c.DrawBuffers().Len())
}

func TestCameraJitter(t *testing.T) {
	c := NewCamera(WithViewport(common.Viewport{Width: 100, Height: 50}))
	c.SetJitter(0.5, -0.25)
	c.Update()

	stable := c.StableProjectionMatrix()
	proj := c.ProjectionMatrix()
	assert.InDelta(t, 0.01, proj[8]-stable[8], 1e-6)
	assert.InDelta(t, -0.01, proj[9]-stable[9], 1e-6)
	assert.NotEqual(t, c.StableViewProjectionMatrix(), c.ViewProjectionMatrix())
	assert.Equal(t, c.StableViewMatrix(), c.ViewMatrix())
}

func TestCameraUpdateTracksPrevious(t *testing.T) {
	c := NewCamera(WithLookAt([3]float32{0, 0, 5}, [3]float32{}))
	first := c.StableViewProjectionMatrix()

	c.LookAt([3]float32{3, 0, 5}, [3]float32{})
	c.Update()
	assert.Equal(t, first, c.PrevStableViewProjectionMatrix())
	assert.NotEqual(t, first, c.StableViewProjectionMatrix())
}

func TestCameraController(t *testing.T) {
	ctrl := NewCameraController(WithRadius(10), WithElevation(0), WithAzimuth(0))
	ctrlPos := ctrl.Position()
	assert.InDeltaSlice(t, []float32{0, 0, 10}, ctrlPos[:], 1e-5)

	c := NewCamera(WithController(ctrl))
	camPos := c.Position()
	assert.InDeltaSlice(t, []float32{0, 0, 10}, camPos[:], 1e-5)

	ctrl.Zoom(4)
	assert.InDelta(t, 6, ctrl.Radius(), 1e-5)
	ctrl.Zoom(100)
	assert.InDelta(t, 0.5, ctrl.Radius(), 1e-5)

	ctrl.SetTarget([3]float32{1, 0, 0})
	ctrl.Orbit(0, 10)
	c.Update()
	pos := c.Position()
	assert.Greater(t, pos[1], float32(0.4))
	assert.Equal(t, [3]float32{1, 0, 0}, ctrl.Target())
}

func TestCameraFrustum(t *testing.T) {
	c := NewCamera(WithLookAt([3]float32{0, 0, 5}, [3]float32{}))
	f := c.Frustum()
	assert.True(t, f.IntersectsAABB(common.AABB{Min: [3]float32{-1, -1, -1}, Max: [3]float32{1, 1, 1}}))
	assert.False(t, f.IntersectsAABB(common.AABB{Min: [3]float32{-1, -1, 10}, Max: [3]float32{1, 1, 12}}))
}

func TestClusterDataEnsure(t *testing.T) {
	rec := device.NewRecorder()
	sched := device.ImmediateScheduler{Dev: rec}
	cfg := config.Default().Cluster
	cd := &ClusterData{}

	require.True(t, cd.Ensure(cfg, sched))
	assert.True(t, cd.Allocated())
	assert.Equal(t, 4, rec.Count(device.OpAllocBuffer))
	tiles, tileData, lightIdx, probeIdx := Sizes(cfg)
	assert.Equal(t, tiles, cd.Tiles.Size)
	assert.Equal(t, tileData, cd.TileData.Size)
	assert.Equal(t, lightIdx, cd.LightIndices.Size)
	assert.Equal(t, probeIdx, cd.ProbeIndices.Size)
	assert.Equal(t, int(cfg.NumTiles())*32, tiles)

	assert.False(t, cd.Ensure(cfg, sched))
	assert.Equal(t, 4, rec.Count(device.OpAllocBuffer))

	tilesBuf := cd.Tiles
	cfg.MaxLightsPerTile *= 2
	assert.True(t, cd.Ensure(cfg, sched))
	assert.Same(t, tilesBuf, cd.Tiles)
	assert.Equal(t, 8, rec.Count(device.OpAllocBuffer))
	assert.Equal(t, cfg, cd.Capacity())
}

func TestClusterDataProjectionCache(t *testing.T) {
	cd := &ClusterData{}
	p := common.Perspective(1, 1, 0.1, 100)
	assert.True(t, cd.UpdateProjection(p))
	assert.False(t, cd.UpdateProjection(p))
	p[0] += 0.1
	assert.True(t, cd.UpdateProjection(p))

	cd.Ensure(config.Default().Cluster, device.ImmediateScheduler{Dev: device.NewRecorder()})
	assert.True(t, cd.UpdateProjection(p))
}

func TestGPUClusterSizes(t *testing.T) {
	assert.Equal(t, 32, (&GPUClusterTile{}).Size())
	assert.Equal(t, 16, (&GPUClusterTileData{}).Size())
	assert.Len(t, (&GPUClusterTileData{LightCount: 3}).Marshal(), 16)
}
