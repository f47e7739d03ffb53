package device

import (
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-rendergraph/common"
	"github.com/gogpu/gputypes"
)

// resourceCount hands out identity keys for every device resource handle.
// Keys only increase so comparisons between handles are stable for the lifetime of the process.
var resourceCount atomic.Uint64

func nextKey() uint64 {
	return resourceCount.Add(1)
}

// Program is a linked shader program.
// Key is fixed at creation; Name is the device object and is filled in on the device thread.
type Program struct {
	key  uint64
	Name uint32
}

// NewProgram allocates a program handle with a fresh identity key.
func NewProgram() *Program {
	return &Program{key: nextKey()}
}

// Key returns the identity key used for ordering.
func (p *Program) Key() uint64 {
	if p == nil {
		return 0
	}
	return p.key
}

// Texture is a 2D texture or cube map.
type Texture struct {
	key    uint64
	Name   uint32
	Width  int32
	Height int32
	Cube   bool
}

// NewTexture allocates a texture handle with a fresh identity key.
func NewTexture(width, height int32) *Texture {
	return &Texture{key: nextKey(), Width: width, Height: height}
}

// Key returns the identity key used for ordering. A nil texture has key 0.
func (t *Texture) Key() uint64 {
	if t == nil {
		return 0
	}
	return t.key
}

// Buffer is a storage or vertex/index buffer.
type Buffer struct {
	key  uint64
	Name uint32
	// Size is the allocated size in bytes.
	Size int
}

// NewBuffer allocates a buffer handle with a fresh identity key. No device memory is reserved
// until the buffer is passed to Device.AllocBuffer.
func NewBuffer() *Buffer {
	return &Buffer{key: nextKey()}
}

// Key returns the identity key used for ordering.
func (b *Buffer) Key() uint64 {
	if b == nil {
		return 0
	}
	return b.key
}

// VertexArray is a vertex array object with an optional element buffer.
type VertexArray struct {
	key  uint64
	Name uint32
	// Indexed is true when the vertex array has an element buffer.
	Indexed bool
	// IndexFormat is the element type of the element buffer.
	IndexFormat gputypes.IndexFormat
	// IndexCount is the number of elements in the element buffer.
	IndexCount int32
}

// NewVertexArray allocates a vertex array handle with a fresh identity key.
func NewVertexArray() *VertexArray {
	return &VertexArray{key: nextKey()}
}

// NewIndexedVertexArray allocates a vertex array handle with an element buffer description.
func NewIndexedVertexArray(format gputypes.IndexFormat, count int32) *VertexArray {
	return &VertexArray{key: nextKey(), Indexed: true, IndexFormat: format, IndexCount: count}
}

// Key returns the identity key used for ordering.
func (v *VertexArray) Key() uint64 {
	if v == nil {
		return 0
	}
	return v.key
}

// VertexAttribute is one float attribute of an interleaved vertex.
type VertexAttribute struct {
	Location   uint32
	Components int32
	Offset     int
}

// VertexLayout describes an interleaved vertex buffer.
type VertexLayout struct {
	Stride     int32
	Attributes []VertexAttribute
}

// VertexArraySlice selects a range of a vertex array for one draw.
// For indexed arrays Start and Count address the element buffer.
type VertexArraySlice struct {
	VA         *VertexArray
	Start      int32
	Count      int32
	BaseVertex int32
}

// RenderTarget is a set of textures bound as framebuffer attachments.
// A nil *RenderTarget selects the default framebuffer.
type RenderTarget struct {
	key         uint64
	Name        uint32
	Attachments [common.AttachmentMax]*Texture
}

// NewRenderTarget allocates a render target with the given attachments.
func NewRenderTarget(attachments map[common.AttachmentPoint]*Texture) *RenderTarget {
	rt := &RenderTarget{key: nextKey()}
	for p, t := range attachments {
		rt.Attachments[p] = t
	}
	return rt
}

// Key returns the identity key used for ordering.
func (r *RenderTarget) Key() uint64 {
	if r == nil {
		return 0
	}
	return r.key
}

// Points returns the attachment points that have a texture.
func (r *RenderTarget) Points() common.AttachmentPoints {
	var s common.AttachmentPoints
	if r == nil {
		return s
	}
	for i, t := range r.Attachments {
		if t != nil {
			s = s.With(common.AttachmentPoint(i))
		}
	}
	return s
}
