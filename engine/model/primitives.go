package model

// cubeFaces lists normal, tangent u and tangent v for each cube face.
var cubeFaces = [6][3][3]float32{
	{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}},
	{{0, 0, -1}, {-1, 0, 0}, {0, 1, 0}},
	{{1, 0, 0}, {0, 0, -1}, {0, 1, 0}},
	{{-1, 0, 0}, {0, 0, 1}, {0, 1, 0}},
	{{0, 1, 0}, {1, 0, 0}, {0, 0, -1}},
	{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}},
}

// NewCube builds an indexed cube centred on the origin with per-face normals.
//
// Parameters:
//   - size: edge length
//   - options: extra options, applied after the geometry
//
// Returns:
//   - Model: the cube
func NewCube(size float32, options ...ModelBuilderOption) Model {
	h := size / 2
	vertices := make([]GPUVertex, 0, 24)
	indices := make([]uint32, 0, 36)
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	for _, face := range cubeFaces {
		n, u, v := face[0], face[1], face[2]
		base := uint32(len(vertices))
		for _, c := range corners {
			var p [3]float32
			for i := range 3 {
				p[i] = (n[i] + c[0]*u[i] + c[1]*v[i]) * h
			}
			vertices = append(vertices, GPUVertex{
				Position: p,
				TexCoord: [2]float32{(c[0] + 1) / 2, (c[1] + 1) / 2},
				Normal:   n,
			})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	opts := append([]ModelBuilderOption{WithName("cube"), WithVertices(vertices), WithIndices(indices)}, options...)
	return NewModel(opts...)
}

// NewPlane builds an indexed square in the XZ plane facing +Y.
//
// Parameters:
//   - size: edge length
//   - options: extra options, applied after the geometry
//
// Returns:
//   - Model: the plane
func NewPlane(size float32, options ...ModelBuilderOption) Model {
	h := size / 2
	up := [3]float32{0, 1, 0}
	vertices := []GPUVertex{
		{Position: [3]float32{-h, 0, h}, TexCoord: [2]float32{0, 0}, Normal: up},
		{Position: [3]float32{h, 0, h}, TexCoord: [2]float32{1, 0}, Normal: up},
		{Position: [3]float32{h, 0, -h}, TexCoord: [2]float32{1, 1}, Normal: up},
		{Position: [3]float32{-h, 0, -h}, TexCoord: [2]float32{0, 1}, Normal: up},
	}
	opts := append([]ModelBuilderOption{
		WithName("plane"),
		WithVertices(vertices),
		WithIndices([]uint32{0, 1, 2, 0, 2, 3}),
	}, options...)
	return NewModel(opts...)
}
