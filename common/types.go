// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import "math/bits"

// Viewport is a pixel rectangle on the active render target.
type Viewport struct {
	X, Y          int32
	Width, Height int32
}

// Aspect returns width / height, or 1 for a degenerate viewport.
func (v Viewport) Aspect() float32 {
	if v.Height == 0 {
		return 1
	}
	return float32(v.Width) / float32(v.Height)
}

// ScissorParams describes an optional scissor rectangle for a single draw.
type ScissorParams struct {
	// Enabled toggles the scissor test around the draw call.
	Enabled bool
	// Rect is the scissor rectangle in framebuffer pixels.
	Rect Viewport
}

// AABB is an axis-aligned bounding box in world space.
type AABB struct {
	Min, Max [3]float32
}

// Color is an RGBA color with components in [0, 1].
type Color [4]float32

// ColorBlack and ColorWhite are the common clear colors.
var (
	ColorBlack = Color{0, 0, 0, 1}
	ColorWhite = Color{1, 1, 1, 1}
)

// AttachmentPoint identifies a framebuffer attachment.
type AttachmentPoint uint8

const (
	AttachmentColor0 AttachmentPoint = iota
	AttachmentColor1
	AttachmentColor2
	AttachmentColor3
	AttachmentDepth
	AttachmentStencil
	AttachmentMax
)

// AttachmentNormal is the color attachment the depth/normal pre-pass writes normals to.
const AttachmentNormal = AttachmentColor1

// AttachmentColorMax is one past the last color attachment.
const AttachmentColorMax = AttachmentDepth

var attachmentNames = [AttachmentMax]string{
	"Color0", "Color1", "Color2", "Color3", "Depth", "Stencil",
}

// String returns a human-readable name for the attachment point.
func (a AttachmentPoint) String() string {
	if a < AttachmentMax {
		return attachmentNames[a]
	}
	return "Unknown"
}

// IsColor reports whether the attachment is one of the color attachments.
func (a AttachmentPoint) IsColor() bool {
	return a < AttachmentColorMax
}

// AttachmentPoints is a set of attachment points.
type AttachmentPoints uint8

// NewAttachmentPoints builds a set from the given points.
func NewAttachmentPoints(points ...AttachmentPoint) AttachmentPoints {
	var s AttachmentPoints
	for _, p := range points {
		s = s.With(p)
	}
	return s
}

// Has reports whether p is in the set.
func (s AttachmentPoints) Has(p AttachmentPoint) bool {
	return s&(1<<p) != 0
}

// With returns the set with p added.
func (s AttachmentPoints) With(p AttachmentPoint) AttachmentPoints {
	return s | (1 << p)
}

// Without returns the set with p removed.
func (s AttachmentPoints) Without(p AttachmentPoint) AttachmentPoints {
	return s &^ (1 << p)
}

// Intersect returns the points present in both sets.
func (s AttachmentPoints) Intersect(o AttachmentPoints) AttachmentPoints {
	return s & o
}

// Empty reports whether the set has no points.
func (s AttachmentPoints) Empty() bool {
	return s == 0
}

// Len returns the number of points in the set.
func (s AttachmentPoints) Len() int {
	return bits.OnesCount8(uint8(s))
}

// Points returns the members of the set in attachment order.
func (s AttachmentPoints) Points() []AttachmentPoint {
	out := make([]AttachmentPoint, 0, s.Len())
	for p := AttachmentColor0; p < AttachmentMax; p++ {
		if s.Has(p) {
			out = append(out, p)
		}
	}
	return out
}

// AttachmentColors holds one clear color per attachment point.
type AttachmentColors [AttachmentMax]Color
