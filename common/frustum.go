package common

import "github.com/chewxy/math32"

// Plane represents a plane in 3D space using the equation: ax + by + cz + d = 0
// where (a, b, c) is the normal and d is the distance from origin.
type Plane struct {
	Normal   [3]float32
	Distance float32
}

// Frustum holds the six planes of a view volume, oriented so the positive half-space is inside.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
	FrustumFar
)

// ExtractFrustum builds the frustum of a column-major view-projection matrix (Gribb/Hartmann).
//
// Parameters:
//   - viewProj: the combined projection * view matrix
//
// Returns:
//   - Frustum: the six normalized planes
func ExtractFrustum(viewProj [16]float32) Frustum {
	var f Frustum
	// row r of a column-major matrix is (m[r], m[4+r], m[8+r], m[12+r])
	row := func(r int) [4]float32 {
		return [4]float32{viewProj[r], viewProj[4+r], viewProj[8+r], viewProj[12+r]}
	}
	w := row(3)
	for i := 0; i < 6; i++ {
		axis := row(i / 2)
		sign := float32(1)
		if i%2 == 1 {
			sign = -1
		}
		p := &f.Planes[i]
		p.Normal = [3]float32{w[0] + sign*axis[0], w[1] + sign*axis[1], w[2] + sign*axis[2]}
		p.Distance = w[3] + sign*axis[3]

		length := math32.Sqrt(p.Normal[0]*p.Normal[0] + p.Normal[1]*p.Normal[1] + p.Normal[2]*p.Normal[2])
		if length > 0 {
			p.Normal[0] /= length
			p.Normal[1] /= length
			p.Normal[2] /= length
			p.Distance /= length
		}
	}
	return f
}

// IntersectsAABB reports whether any part of the box lies inside the frustum.
// It tests the box corner furthest along each plane normal, so it may return
// true for boxes that are just outside a frustum edge.
func (f Frustum) IntersectsAABB(box AABB) bool {
	for _, p := range f.Planes {
		var v [3]float32
		for k := 0; k < 3; k++ {
			if p.Normal[k] >= 0 {
				v[k] = box.Max[k]
			} else {
				v[k] = box.Min[k]
			}
		}
		if p.Normal[0]*v[0]+p.Normal[1]*v[1]+p.Normal[2]*v[2]+p.Distance < 0 {
			return false
		}
	}
	return true
}
