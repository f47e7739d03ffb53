package game_object

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-rendergraph/common"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/config"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/device"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/light"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/material"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unlit(t *testing.T) material.Material {
	t.Helper()
	reg := material.NewRegistry(config.Default())
	require.NoError(t, reg.RegisterBuiltins(device.NewRecorder()))
	mat, err := reg.CreateMaterial("unlit", material.TypeUnlit)
	require.NoError(t, err)
	return mat
}

func TestDefaults(t *testing.T) {
	obj := NewGameObject(WithID(7))
	assert.Equal(t, uint64(7), obj.ID())
	assert.True(t, obj.Enabled())
	assert.Equal(t, [3]float32{1, 1, 1}, obj.Scale())
	assert.Equal(t, common.Identity4(), obj.ModelMatrix())
	assert.Equal(t, common.AABB{}, obj.WorldBounds())

	assert.Zero(t, obj.Layer())
	_, ok := obj.Geometry()
	assert.False(t, ok)
}

func TestGeometry(t *testing.T) {
	mat := unlit(t)
	cube := model.NewCube(2)
	obj := NewGameObject(WithModel(cube), WithMaterial(mat), WithPosition(5, 0, 0), WithLayer(3))

	g, ok := obj.Geometry()
	require.True(t, ok)
	assert.Equal(t, common.Translation(5, 0, 0), g.ModelMatrix)
	assert.Equal(t, g.ModelMatrix, g.PrevModelMatrix)
	assert.Equal(t, [3]float32{4, -1, -1}, g.Bounds.Min)
	assert.Equal(t, [3]float32{6, 1, 1}, g.Bounds.Max)
	assert.Same(t, mat, g.Material)
	assert.Equal(t, cube.Slice(), g.VA)
	assert.Equal(t, cube.Topology(), g.Topology)
	assert.Equal(t, float32(3), g.Depth)
	assert.False(t, g.FlipCull)

	obj.SetLayer(1)
	g, _ = obj.Geometry()
	assert.Equal(t, float32(1), g.Depth)
}

func TestMirroredScaleFlipsCull(t *testing.T) {
	obj := NewGameObject(WithModel(model.NewCube(1)), WithMaterial(unlit(t)), WithScale(-1, 1, 1))
	g, ok := obj.Geometry()
	require.True(t, ok)
	assert.True(t, g.FlipCull)

	obj.SetScale(-1, -1, 1)
	g, _ = obj.Geometry()
	assert.False(t, g.FlipCull)
}

func TestPrevModelMatrix(t *testing.T) {
	obj := NewGameObject(WithModel(model.NewCube(1)), WithMaterial(unlit(t)))
	obj.EndFrame()
	obj.SetPosition(0, 2, 0)

	assert.Equal(t, common.Identity4(), obj.PrevModelMatrix())
	g, _ := obj.Geometry()
	assert.Equal(t, common.Identity4(), g.PrevModelMatrix)
	assert.Equal(t, common.Translation(0, 2, 0), g.ModelMatrix)

	obj.EndFrame()
	assert.Equal(t, common.Translation(0, 2, 0), obj.PrevModelMatrix())
}

func TestUpdate(t *testing.T) {
	l := light.NewLight(light.LightTypePoint)
	obj := NewGameObject(WithRotationSpeed(0, 2, 0), WithPosition(1, 2, 3), WithLight(l))
	obj.Update(0.5)

	assert.InDelta(t, 1, obj.Rotation()[1], 1e-6)
	assert.Equal(t, [3]float32{1, 2, 3}, l.Position())

	obj.SetLight(nil)
	obj.SetPosition(9, 9, 9)
	obj.Update(0.5)
	assert.Equal(t, [3]float32{1, 2, 3}, l.Position())
}

func TestDisable(t *testing.T) {
	obj := NewGameObject(WithEnabled(false))
	assert.False(t, obj.Enabled())
	obj.SetEnabled(true)
	assert.True(t, obj.Enabled())
}
