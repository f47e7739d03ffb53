// Package gldevice implements device.Device on OpenGL 4.3 core. Every call must happen on
// the thread the context is current on.
package gldevice

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-rendergraph/common"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/device"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/logger"
	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/gogpu/gputypes"
)

// vertexArrayBuffers are the buffer objects owned by a vertex array object.
type vertexArrayBuffers struct {
	vbo, ebo uint32
}

// Device is an OpenGL 4.3 core device.
type Device struct {
	white *device.Texture

	offscreen bool
	samplers  map[device.SamplerParams]uint32
	locations map[uint32]map[string]int32
	vaBuffers map[uint32]vertexArrayBuffers

	textures     []uint32
	buffers      []uint32
	programs     []uint32
	framebuffers []uint32
}

var _ device.Device = &Device{}

// New loads the OpenGL entry points of the current context and creates the fallback texture.
//
// Returns:
//   - *Device: the device
//   - error: error if the entry points could not be loaded
func New() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("init gl: %w", err)
	}
	d := &Device{
		samplers:  make(map[device.SamplerParams]uint32),
		locations: make(map[uint32]map[string]int32),
		vaBuffers: make(map[uint32]vertexArrayBuffers),
	}
	d.white = device.NewTexture(1, 1)
	d.CreateTexture(d.white, []byte{255, 255, 255, 255})

	logger.For("GLDevice").Info("device ready",
		"version", gl.GoStr(gl.GetString(gl.VERSION)),
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)),
	)
	return d, nil
}

// Release deletes every object the device created.
func (d *Device) Release() {
	for vao, bufs := range d.vaBuffers {
		gl.DeleteVertexArrays(1, &vao)
		if bufs.vbo != 0 {
			gl.DeleteBuffers(1, &bufs.vbo)
		}
		if bufs.ebo != 0 {
			gl.DeleteBuffers(1, &bufs.ebo)
		}
	}
	for _, s := range d.samplers {
		gl.DeleteSamplers(1, &s)
	}
	if len(d.textures) > 0 {
		gl.DeleteTextures(int32(len(d.textures)), &d.textures[0])
	}
	if len(d.buffers) > 0 {
		gl.DeleteBuffers(int32(len(d.buffers)), &d.buffers[0])
	}
	if len(d.framebuffers) > 0 {
		gl.DeleteFramebuffers(int32(len(d.framebuffers)), &d.framebuffers[0])
	}
	for _, p := range d.programs {
		gl.DeleteProgram(p)
	}
	clear(d.vaBuffers)
	clear(d.samplers)
	clear(d.locations)
	d.textures, d.buffers, d.framebuffers, d.programs = nil, nil, nil, nil
}

func (d *Device) SetRenderTarget(rt *device.RenderTarget) bool {
	if rt == nil {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		d.offscreen = false
		return false
	}
	if rt.Name == 0 {
		d.createFramebuffer(rt)
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, rt.Name)
	d.offscreen = true
	return true
}

func (d *Device) Viewport(vp common.Viewport) {
	gl.Viewport(vp.X, vp.Y, vp.Width, vp.Height)
}

func (d *Device) Clear(depth, stencil bool) {
	var mask uint32
	if depth {
		// clears honour the depth mask
		gl.DepthMask(true)
		mask |= gl.DEPTH_BUFFER_BIT
	}
	if stencil {
		mask |= gl.STENCIL_BUFFER_BIT
	}
	if mask != 0 {
		gl.Clear(mask)
	}
}

func (d *Device) SetDrawBuffers(points []common.AttachmentPoint) {
	if len(points) == 0 {
		gl.DrawBuffer(gl.NONE)
		return
	}
	bufs := make([]uint32, len(points))
	for i, p := range points {
		bufs[i] = drawBuffer(p, d.offscreen)
	}
	gl.DrawBuffers(int32(len(bufs)), &bufs[0])
}

func (d *Device) ClearColor(c common.Color) {
	gl.ClearColor(c[0], c[1], c[2], c[3])
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

func (d *Device) EnableDepthTest(fn gputypes.CompareFunction) {
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(compareFunc(fn))
}

func (d *Device) DisableDepthTest() {
	gl.Disable(gl.DEPTH_TEST)
}

func (d *Device) EnableBlending(state gputypes.BlendState) {
	gl.Enable(gl.BLEND)
	gl.BlendFuncSeparate(
		blendFactor(state.Color.SrcFactor), blendFactor(state.Color.DstFactor),
		blendFactor(state.Alpha.SrcFactor), blendFactor(state.Alpha.DstFactor),
	)
	gl.BlendEquationSeparate(blendOp(state.Color.Operation), blendOp(state.Alpha.Operation))
}

func (d *Device) DisableBlending() {
	gl.Disable(gl.BLEND)
}

func (d *Device) EnableCullFace(mode gputypes.CullMode) {
	if mode == gputypes.CullModeNone {
		gl.Disable(gl.CULL_FACE)
		return
	}
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(cullFace(mode))
}

func (d *Device) DisableCullFace() {
	gl.Disable(gl.CULL_FACE)
}

func (d *Device) DepthMask(write bool) {
	gl.DepthMask(write)
}

func (d *Device) EnableScissor(rect common.Viewport) {
	gl.Enable(gl.SCISSOR_TEST)
	gl.Scissor(rect.X, rect.Y, rect.Width, rect.Height)
}

func (d *Device) DisableScissor() {
	gl.Disable(gl.SCISSOR_TEST)
}

func (d *Device) UseProgram(p *device.Program) {
	if p == nil {
		gl.UseProgram(0)
		return
	}
	gl.UseProgram(p.Name)
}

func (d *Device) BindTexture(unit uint32, tex *device.Texture, sampler device.SamplerParams) {
	if tex == nil || tex.Name == 0 {
		tex = d.white
	}
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(textureTarget(tex), tex.Name)
	gl.BindSampler(unit, d.sampler(sampler))
}

func (d *Device) BindVertexArray(va *device.VertexArray) {
	if va == nil {
		gl.BindVertexArray(0)
		return
	}
	gl.BindVertexArray(va.Name)
}

func (d *Device) BindStorageBuffer(index uint32, buf *device.Buffer) {
	var name uint32
	if buf != nil {
		name = buf.Name
	}
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, index, name)
}

func (d *Device) SetUniform(location int32, v device.UniformValue) {
	if location < 0 {
		return
	}
	switch v.Type {
	case device.UniformFloat:
		gl.Uniform1f(location, v.F[0])
	case device.UniformVec2:
		gl.Uniform2f(location, v.F[0], v.F[1])
	case device.UniformVec3:
		gl.Uniform3f(location, v.F[0], v.F[1], v.F[2])
	case device.UniformVec4:
		gl.Uniform4f(location, v.F[0], v.F[1], v.F[2], v.F[3])
	case device.UniformMat4:
		gl.UniformMatrix4fv(location, 1, false, &v.F[0])
	case device.UniformInt:
		gl.Uniform1i(location, v.I)
	case device.UniformUint:
		gl.Uniform1ui(location, uint32(v.I))
	case device.UniformFloatArray:
		if len(v.F) > 0 {
			gl.Uniform1fv(location, int32(len(v.F)), &v.F[0])
		}
	}
}

func (d *Device) DrawArrays(topology gputypes.PrimitiveTopology, first, count int32) {
	gl.DrawArrays(primitiveMode(topology), first, count)
}

func (d *Device) DrawElements(topology gputypes.PrimitiveTopology, format gputypes.IndexFormat, count, offset int32) {
	gl.DrawElements(primitiveMode(topology), count, indexType(format), gl.PtrOffset(int(offset)))
}

func (d *Device) DrawElementsBaseVertex(topology gputypes.PrimitiveTopology, format gputypes.IndexFormat, count, offset, baseVertex int32) {
	gl.DrawElementsBaseVertex(primitiveMode(topology), count, indexType(format), gl.PtrOffset(int(offset)), baseVertex)
}

func (d *Device) DispatchCompute(x, y, z uint32) {
	gl.DispatchCompute(x, y, z)
}

func (d *Device) MemoryBarrier() {
	gl.MemoryBarrier(gl.SHADER_STORAGE_BARRIER_BIT)
}

func (d *Device) White1x1() *device.Texture {
	return d.white
}

// infoLog reads a shader or program log of length n with get.
func infoLog(n int32, get func(int32, *int32, *uint8)) string {
	if n <= 0 {
		return ""
	}
	buf := strings.Repeat("\x00", int(n))
	get(n, nil, gl.Str(buf))
	return strings.TrimRight(buf, "\x00")
}
