package light

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLightDefaults(t *testing.T) {
	l := NewLight(LightTypePoint, WithPosition(1, 2, 3), WithRange(5))
	assert.Equal(t, LightTypePoint, l.Type())
	assert.Equal(t, [3]float32{1, 2, 3}, l.Position())
	assert.Equal(t, -1, l.Index())
	assert.True(t, l.Enabled())
	assert.Equal(t, "Point", l.Type().String())
}

func TestSettersBumpVersion(t *testing.T) {
	l := NewLight(LightTypeSpot)
	v := l.Version()
	l.SetColor(1, 0, 0)
	l.SetSpotCone(10, 20)
	assert.Equal(t, v+2, l.Version())

	l.SetIndex(4)
	assert.Equal(t, v+2, l.Version())
	assert.Equal(t, 4, l.Index())
}

func TestDirectionIsNormalized(t *testing.T) {
	l := NewLight(LightTypeDirectional, WithDirection(0, -2, 0))
	assert.Equal(t, [3]float32{0, -1, 0}, l.Direction())
}

func TestBounds(t *testing.T) {
	l := NewLight(LightTypePoint, WithPosition(1, 1, 1), WithRange(2))
	b := l.Bounds()
	assert.Equal(t, [3]float32{-1, -1, -1}, b.Min)
	assert.Equal(t, [3]float32{3, 3, 3}, b.Max)

	d := NewLight(LightTypeDirectional).Bounds()
	assert.Greater(t, d.Min[0], d.Max[0])
}

func TestGPULightMarshal(t *testing.T) {
	l := NewLight(LightTypeSpot, WithPosition(1, 2, 3), WithRange(7), WithIntensity(2))
	g := ToGPULight(l)
	assert.Equal(t, GPULightSize, g.Size())

	buf := g.Marshal()
	assert.Len(t, buf, GPULightSize)
	assert.Equal(t, float32(2), math.Float32frombits(binary.LittleEndian.Uint32(buf[4:8])))
	assert.Equal(t, float32(7), math.Float32frombits(binary.LittleEndian.Uint32(buf[12:16])))
	assert.Equal(t, uint32(LightTypeSpot), binary.LittleEndian.Uint32(buf[44:48]))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(buf[56:60]))

	l.SetEnabled(false)
	assert.Equal(t, uint32(0), ToGPULight(l).Enabled)
}
