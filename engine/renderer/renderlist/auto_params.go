package renderlist

import (
	"github.com/Carmen-Shannon/oxy-rendergraph/common"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/camera"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/config"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/device"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/environment"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/material"
	"github.com/chewxy/math32"
)

// ClusterConfig returns the depth slicing factors of the cluster grid:
// (gridZ / ln(far/near), -gridZ * ln(near) / ln(far/near), near, far).
// A view depth z falls into slice floor(ln(z) * x + y).
//
// Parameters:
//   - gridZ: number of depth slices
//   - near: camera near plane
//   - far: camera far plane
//
// Returns:
//   - [4]float32: the factors as uploaded to uClusterCfg
func ClusterConfig(gridZ uint32, near, far float32) [4]float32 {
	logRatio := math32.Log(far / near)
	z := float32(gridZ)
	return [4]float32{
		z / logRatio,
		-z * math32.Log(near) / logRatio,
		near,
		far,
	}
}

// autoContext holds the per-compile inputs of setAutoParams.
type autoContext struct {
	cam      camera.Camera
	env      environment.Environment
	settings config.Settings

	viewProj       common.Mat4
	stableViewProj common.Mat4
	prevViewProj   common.Mat4
	clusterCfg     [4]float32
}

func newAutoContext(cam camera.Camera, env environment.Environment, settings config.Settings) *autoContext {
	return &autoContext{
		cam:            cam,
		env:            env,
		settings:       settings,
		viewProj:       cam.ViewProjectionMatrix(),
		stableViewProj: cam.StableViewProjectionMatrix(),
		prevViewProj:   cam.PrevStableViewProjectionMatrix(),
		clusterCfg:     ClusterConfig(settings.Cluster.GridSize[2], cam.Near(), cam.Far()),
	}
}

// setAutoParams fills the automatic uniforms mt declares. Undeclared names are not computed.
func (a *autoContext) setAutoParams(params *material.MaterialParams, mt material.MaterialType, model, prevModel common.Mat4, outputMask uint32) {
	uniforms := mt.Uniforms()
	for name := material.UniformName(0); name <= material.UniformMaxAuto; name++ {
		if !uniforms.Has(name) {
			continue
		}
		switch name {
		case material.UniformViewProjMatrix:
			params.Set(name, device.Mat4(a.viewProj))
		case material.UniformModelViewProjMatrix:
			params.Set(name, device.Mat4(common.Mul4(a.viewProj, model)))
		case material.UniformModelMatrix:
			params.Set(name, device.Mat4(model))
		case material.UniformPrevStableMatrix:
			params.Set(name, device.Mat4(common.Mul4(a.prevViewProj, prevModel)))
		case material.UniformCurStableMatrix:
			params.Set(name, device.Mat4(common.Mul4(a.stableViewProj, model)))
		case material.UniformStableProjMatrix:
			params.Set(name, device.Mat4(a.cam.StableProjectionMatrix()))
		case material.UniformStableViewMatrix:
			params.Set(name, device.Mat4(a.cam.StableViewMatrix()))
		case material.UniformEyePos:
			params.Set(name, device.Vec3(a.cam.Position()))
		case material.UniformAmbientColor:
			params.Set(name, device.Vec4(a.cam.AmbientColor()))
		case material.UniformViewportSize:
			vp := a.cam.Viewport()
			params.Set(name, device.Vec2(float32(vp.Width), float32(vp.Height)))
		case material.UniformTime:
			params.Set(name, device.Float(a.env.Time()))
		case material.UniformDt:
			params.Set(name, device.Float(a.env.Dt()))
		case material.UniformRealDt:
			params.Set(name, device.Float(a.env.RealDt()))
		case material.UniformClusterCfg:
			params.Set(name, device.Vec4(a.clusterCfg))
		case material.UniformOutputMask:
			params.Set(name, device.Uint(outputMask))
		case material.UniformImmCameraIdx:
			params.Set(name, device.Int(int32(a.cam.ImmCameraIdx())))
		}
	}
}

// textures resolves one binding per sampler mt declares, in unit order. Unset probe
// samplers fall back to the environment's global probe textures. missing reports
// whether any other sampler is left unset.
func (a *autoContext) textures(mat material.Material, mt material.MaterialType) (bindings []device.TextureBinding, missing bool) {
	names := mt.Samplers().Names()
	if len(names) == 0 {
		return nil, false
	}
	bindings = make([]device.TextureBinding, len(names))
	for unit, name := range names {
		tb := mat.Texture(name)
		if tb.Texture == nil {
			switch name {
			case material.SamplerIrradiance:
				tb = device.TextureBinding{Texture: a.env.Irradiance(), Sampler: device.SamplerLinear}
			case material.SamplerSpecularCM:
				tb = device.TextureBinding{Texture: a.env.SpecularCM(), Sampler: device.SamplerLinear}
			case material.SamplerSpecularLUT:
				tb = device.TextureBinding{Texture: a.env.SpecularLUT(), Sampler: device.SamplerLinear}
			default:
				missing = true
			}
		}
		bindings[unit] = tb
	}
	return bindings, missing
}

// storage resolves the storage buffers mt declares. Names without a backing buffer
// are left out.
func (a *autoContext) storage(mt material.MaterialType) []device.StorageBinding {
	names := mt.StorageBuffers().Names()
	if len(names) == 0 {
		return nil
	}
	cd := a.cam.ClusterData()
	out := make([]device.StorageBinding, 0, len(names))
	for _, name := range names {
		var buf *device.Buffer
		switch name {
		case material.StorageClusterTiles:
			buf = cd.Tiles
		case material.StorageClusterTileData:
			buf = cd.TileData
		case material.StorageClusterLightIndices:
			buf = cd.LightIndices
		case material.StorageClusterProbeIndices:
			buf = cd.ProbeIndices
		case material.StorageClusterLights:
			buf = a.env.LightsBuffer()
		case material.StorageClusterProbes:
			buf = a.env.ProbesBuffer()
		}
		if buf == nil {
			continue
		}
		out = append(out, device.StorageBinding{Index: name.Index(), Buffer: buf})
	}
	return out
}

// usesClusters reports whether mt reads any of the per-camera cluster buffers.
func usesClusters(mt material.MaterialType) bool {
	s := mt.StorageBuffers()
	return s.Has(material.StorageClusterTiles) ||
		s.Has(material.StorageClusterTileData) ||
		s.Has(material.StorageClusterLightIndices) ||
		s.Has(material.StorageClusterProbeIndices)
}
