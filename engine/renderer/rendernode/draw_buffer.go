package rendernode

import (
	"github.com/Carmen-Shannon/oxy-rendergraph/common"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/material"
)

// DrawBufferBinding routes a program's fragment outputs onto the attachments of the
// bound render target.
//
// NumBuffers is -1 when the camera does not restrict draw buffers; the device draw
// buffer state is then left alone. Mask has bit n set when fragment output n is
// routed to an attachment.
type DrawBufferBinding struct {
	NumBuffers int
	Buffers    []common.AttachmentPoint
	Mask       uint32
}

// NewDrawBufferBinding maps outputs onto drawBuffers. The n-th color attachment in
// drawBuffers receives output n when the program writes it.
//
// Parameters:
//   - drawBuffers: the camera's draw buffer attachments
//   - outputs: the fragment outputs the program writes
//
// Returns:
//   - DrawBufferBinding: the binding
func NewDrawBufferBinding(drawBuffers common.AttachmentPoints, outputs material.OutputSet) DrawBufferBinding {
	if drawBuffers.Empty() {
		return DrawBufferBinding{NumBuffers: -1}
	}
	b := DrawBufferBinding{Buffers: []common.AttachmentPoint{}}
	n := 0
	for p := common.AttachmentColor0; p < common.AttachmentColorMax && b.NumBuffers < outputs.Len(); p++ {
		if !drawBuffers.Has(p) {
			continue
		}
		if outputs.Has(n) {
			b.Buffers = append(b.Buffers, p)
			b.Mask |= 1 << n
			b.NumBuffers++
		}
		n++
	}
	return b
}
