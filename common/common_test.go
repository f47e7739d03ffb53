package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMul4Identity(t *testing.T) {
	m := BuildModelMatrix([3]float32{1, 2, 3}, [3]float32{0.3, 0.2, 0.1}, [3]float32{2, 2, 2})
	assert.Equal(t, m, Mul4(Identity4(), m))
	assert.Equal(t, m, Mul4(m, Identity4()))
}

func TestInvert4(t *testing.T) {
	m := Translation(4, -2, 7)
	inv, ok := Invert4(m)
	require.True(t, ok)
	assert.Equal(t, Translation(-4, 2, -7), inv)

	_, ok = Invert4(Mat4{})
	assert.False(t, ok)
}

func TestLookAtMovesEyeToOrigin(t *testing.T) {
	view := LookAt([3]float32{0, 0, 5}, [3]float32{0, 0, 0}, [3]float32{0, 1, 0})
	assert.InDelta(t, -5, view[14], 1e-6)
	assert.InDelta(t, 1, view[0], 1e-6)
	assert.InDelta(t, 1, view[5], 1e-6)
}

func TestFrustumAABB(t *testing.T) {
	proj := Perspective(1.0, 1.0, 0.1, 100)
	view := LookAt([3]float32{0, 0, 10}, [3]float32{0, 0, 0}, [3]float32{0, 1, 0})
	f := ExtractFrustum(Mul4(proj, view))

	assert.True(t, f.IntersectsAABB(AABB{Min: [3]float32{-1, -1, -1}, Max: [3]float32{1, 1, 1}}))
	assert.False(t, f.IntersectsAABB(AABB{Min: [3]float32{-1, -1, 20}, Max: [3]float32{1, 1, 22}}))
	assert.False(t, f.IntersectsAABB(AABB{Min: [3]float32{500, -1, -1}, Max: [3]float32{501, 1, 1}}))
}

func TestAttachmentPoints(t *testing.T) {
	s := NewAttachmentPoints(AttachmentColor0, AttachmentDepth)
	assert.True(t, s.Has(AttachmentColor0))
	assert.False(t, s.Has(AttachmentNormal))
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 1, s.Without(AttachmentDepth).Len())
	assert.True(t, AttachmentPoints(0).Empty())
	assert.Equal(t, "Depth", AttachmentDepth.String())
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, 3, Coalesce(0, 0, 3, 4))
	assert.Equal(t, "", Coalesce[string]())
}

func TestAttachmentPointsOrder(t *testing.T) {
	s := NewAttachmentPoints(AttachmentDepth, AttachmentColor2, AttachmentColor0)
	assert.Equal(t, []AttachmentPoint{AttachmentColor0, AttachmentColor2, AttachmentDepth}, s.Points())
}

func TestTransformAABB(t *testing.T) {
	box := AABB{Min: [3]float32{-1, -1, -1}, Max: [3]float32{1, 1, 1}}
	m := BuildModelMatrix([3]float32{10, 0, 0}, [3]float32{}, [3]float32{2, 3, 1})
	out := TransformAABB(m, box)
	assert.Equal(t, [3]float32{8, -3, -1}, out.Min)
	assert.Equal(t, [3]float32{12, 3, 1}, out.Max)
}

func TestDeterminant3(t *testing.T) {
	assert.InDelta(t, 1, Determinant3(Identity4()), 1e-6)
	mirrored := BuildModelMatrix([3]float32{}, [3]float32{}, [3]float32{-1, 1, 1})
	assert.Less(t, Determinant3(mirrored), float32(0))
	assert.InDelta(t, 8, Determinant3(BuildModelMatrix([3]float32{}, [3]float32{}, [3]float32{2, 2, 2})), 1e-5)
}
