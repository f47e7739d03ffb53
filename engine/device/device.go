// Package device defines the immediate-mode graphics device the render graph is replayed against,
// the resource handles it operates on, and a recording implementation for inspection and tests.
package device

import (
	"github.com/Carmen-Shannon/oxy-rendergraph/common"
	"github.com/gogpu/gputypes"
)

// Device is a stateful graphics device. All methods must be called from the device thread.
//
// The first group of methods is emitted by the render graph while a plan is applied.
// The resource group is only called from hardware operations scheduled on the renderer,
// between plans.
type Device interface {
	// SetRenderTarget binds the framebuffer of rt, or the default framebuffer when rt is nil.
	//
	// Parameters:
	//   - rt: the render target to bind
	//
	// Returns:
	//   - bool: true if an offscreen framebuffer was bound
	SetRenderTarget(rt *RenderTarget) bool

	// Viewport sets the viewport rectangle.
	Viewport(vp common.Viewport)

	// Clear clears the depth and/or stencil buffers of the bound framebuffer.
	//
	// Parameters:
	//   - depth: clear the depth buffer
	//   - stencil: clear the stencil buffer
	Clear(depth, stencil bool)

	// SetDrawBuffers routes fragment outputs to the given attachments, in output order.
	SetDrawBuffers(points []common.AttachmentPoint)

	// ClearColor clears the current color draw buffers to c.
	ClearColor(c common.Color)

	// EnableDepthTest enables depth testing with the given compare function.
	EnableDepthTest(fn gputypes.CompareFunction)

	// DisableDepthTest disables depth testing.
	DisableDepthTest()

	// EnableBlending enables blending with the given factors and operations.
	EnableBlending(state gputypes.BlendState)

	// DisableBlending disables blending.
	DisableBlending()

	// EnableCullFace enables face culling of the given faces.
	EnableCullFace(mode gputypes.CullMode)

	// DisableCullFace disables face culling.
	DisableCullFace()

	// DepthMask toggles depth buffer writes.
	DepthMask(write bool)

	// EnableScissor enables the scissor test with the given rectangle.
	EnableScissor(rect common.Viewport)

	// DisableScissor disables the scissor test.
	DisableScissor()

	// UseProgram binds a shader program.
	UseProgram(p *Program)

	// BindTexture binds tex with the given sampling state to a texture unit.
	//
	// Parameters:
	//   - unit: the texture unit
	//   - tex: the texture, never nil
	//   - sampler: the sampler state
	BindTexture(unit uint32, tex *Texture, sampler SamplerParams)

	// BindVertexArray binds a vertex array, or unbinds when va is nil.
	BindVertexArray(va *VertexArray)

	// BindStorageBuffer binds buf to a shader storage block index.
	BindStorageBuffer(index uint32, buf *Buffer)

	// SetUniform writes a uniform of the bound program.
	//
	// Parameters:
	//   - location: the uniform location from UniformLocation
	//   - v: the value
	SetUniform(location int32, v UniformValue)

	// DrawArrays draws count vertices starting at first.
	DrawArrays(topology gputypes.PrimitiveTopology, first, count int32)

	// DrawElements draws count indices starting at byte offset of the bound element buffer.
	DrawElements(topology gputypes.PrimitiveTopology, format gputypes.IndexFormat, count, offset int32)

	// DrawElementsBaseVertex draws count indices starting at byte offset, adding baseVertex to each index.
	DrawElementsBaseVertex(topology gputypes.PrimitiveTopology, format gputypes.IndexFormat, count, offset, baseVertex int32)

	// DispatchCompute launches the bound compute program.
	DispatchCompute(x, y, z uint32)

	// MemoryBarrier orders storage buffer writes before subsequent reads.
	MemoryBarrier()

	// CompileProgram compiles and links src into p.
	//
	// Parameters:
	//   - p: the program handle to fill in
	//   - src: the stage sources
	//
	// Returns:
	//   - error: compile or link failure
	CompileProgram(p *Program, src ShaderSource) error

	// UniformLocation returns the location of a uniform in p, or -1 if p does not use it.
	UniformLocation(p *Program, name string) int32

	// AllocBuffer creates buf or resizes it to size bytes. Contents are undefined afterwards.
	AllocBuffer(buf *Buffer, size int)

	// UploadBuffer writes data at offset into buf.
	UploadBuffer(buf *Buffer, offset int, data []byte)

	// CreateTexture uploads RGBA8 pixels into t, sized by t.Width and t.Height.
	CreateTexture(t *Texture, pixels []byte)

	// CreateVertexArray uploads interleaved vertices and, for indexed arrays, the element
	// buffer of va. Attribute pointers follow layout.
	CreateVertexArray(va *VertexArray, layout VertexLayout, vertices, indices []byte)

	// White1x1 returns the opaque white texture bound in place of missing textures.
	White1x1() *Texture
}
