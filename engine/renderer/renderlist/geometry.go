package renderlist

import (
	"github.com/Carmen-Shannon/oxy-rendergraph/common"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/device"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/material"
	"github.com/gogpu/gputypes"
)

// Geometry is one draw submission. It is stored as given and read once by Compile.
type Geometry struct {
	// ModelMatrix is the object-to-world transform.
	ModelMatrix common.Mat4
	// PrevModelMatrix is last frame's ModelMatrix, used for motion vectors.
	PrevModelMatrix common.Mat4
	// Bounds is the world-space bounding box.
	Bounds common.AABB

	Material material.Material
	VA       device.VertexArraySlice
	Topology gputypes.PrimitiveTopology

	// Depth orders draws of equal state within a pass. It is not a visibility sort.
	Depth   float32
	Scissor common.ScissorParams
	// FlipCull swaps front and back face culling for mirrored transforms.
	FlipCull bool
}
