package gldevice

import (
	"errors"
	"fmt"
	"sort"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-rendergraph/common"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/device"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/logger"
	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/gogpu/gputypes"
)

// ErrIncompleteFramebuffer is logged when a render target's attachments cannot be combined.
var ErrIncompleteFramebuffer = errors.New("incomplete framebuffer")

func textureTarget(t *device.Texture) uint32 {
	if t.Cube {
		return gl.TEXTURE_CUBE_MAP
	}
	return gl.TEXTURE_2D
}

func (d *Device) sampler(p device.SamplerParams) uint32 {
	if s, ok := d.samplers[p]; ok {
		return s
	}
	var s uint32
	gl.GenSamplers(1, &s)
	gl.SamplerParameteri(s, gl.TEXTURE_MIN_FILTER, minFilter(p.MinFilter, p.Mipmap))
	gl.SamplerParameteri(s, gl.TEXTURE_MAG_FILTER, magFilter(p.MagFilter))
	gl.SamplerParameteri(s, gl.TEXTURE_WRAP_S, wrapMode(p.WrapU))
	gl.SamplerParameteri(s, gl.TEXTURE_WRAP_T, wrapMode(p.WrapV))
	d.samplers[p] = s
	return s
}

func (d *Device) CompileProgram(p *device.Program, src device.ShaderSource) error {
	stages := make([]gputypes.ShaderStage, 0, len(src))
	for stage := range src {
		stages = append(stages, stage)
	}
	sort.Slice(stages, func(i, j int) bool { return stages[i] < stages[j] })

	prog := gl.CreateProgram()
	shaders := make([]uint32, 0, len(stages))
	defer func() {
		for _, sh := range shaders {
			gl.DetachShader(prog, sh)
			gl.DeleteShader(sh)
		}
	}()

	for _, stage := range stages {
		typ, ok := shaderType(stage)
		if !ok {
			gl.DeleteProgram(prog)
			return fmt.Errorf("compile program: unsupported stage %v", stage)
		}
		sh, err := compileShader(typ, src[stage])
		if err != nil {
			gl.DeleteProgram(prog)
			return fmt.Errorf("compile program: stage %v: %w", stage, err)
		}
		gl.AttachShader(prog, sh)
		shaders = append(shaders, sh)
	}

	gl.LinkProgram(prog)
	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var n int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &n)
		msg := infoLog(n, func(n int32, l *int32, buf *uint8) { gl.GetProgramInfoLog(prog, n, l, buf) })
		gl.DeleteProgram(prog)
		return fmt.Errorf("link program: %s", msg)
	}

	if p.Name != 0 {
		gl.DeleteProgram(p.Name)
		delete(d.locations, p.Name)
	}
	p.Name = prog
	d.programs = append(d.programs, prog)
	return nil
}

func compileShader(typ uint32, src string) (uint32, error) {
	sh := gl.CreateShader(typ)
	csrc, free := gl.Strs(src + "\x00")
	defer free()
	gl.ShaderSource(sh, 1, csrc, nil)
	gl.CompileShader(sh)

	var status int32
	gl.GetShaderiv(sh, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var n int32
		gl.GetShaderiv(sh, gl.INFO_LOG_LENGTH, &n)
		msg := infoLog(n, func(n int32, l *int32, buf *uint8) { gl.GetShaderInfoLog(sh, n, l, buf) })
		gl.DeleteShader(sh)
		return 0, fmt.Errorf("shader compile error: %s", msg)
	}
	return sh, nil
}

func (d *Device) UniformLocation(p *device.Program, name string) int32 {
	if p == nil || p.Name == 0 {
		return -1
	}
	locs, ok := d.locations[p.Name]
	if !ok {
		locs = make(map[string]int32)
		d.locations[p.Name] = locs
	}
	if loc, ok := locs[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(p.Name, gl.Str(name+"\x00"))
	locs[name] = loc
	return loc
}

func (d *Device) AllocBuffer(buf *device.Buffer, size int) {
	if buf.Name == 0 {
		gl.GenBuffers(1, &buf.Name)
		d.buffers = append(d.buffers, buf.Name)
	}
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, buf.Name)
	gl.BufferData(gl.SHADER_STORAGE_BUFFER, size, nil, gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, 0)
	buf.Size = size
}

func (d *Device) UploadBuffer(buf *device.Buffer, offset int, data []byte) {
	if len(data) == 0 || buf.Name == 0 {
		return
	}
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, buf.Name)
	gl.BufferSubData(gl.SHADER_STORAGE_BUFFER, offset, len(data), gl.Ptr(data))
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, 0)
}

// CreateTexture uploads RGBA8 pixels. Cube maps take six faces of Width*Height*4 bytes in
// +X, -X, +Y, -Y, +Z, -Z order. Nil pixels allocate storage only.
func (d *Device) CreateTexture(t *device.Texture, pixels []byte) {
	if t.Name == 0 {
		gl.GenTextures(1, &t.Name)
		d.textures = append(d.textures, t.Name)
	}
	target := textureTarget(t)
	gl.BindTexture(target, t.Name)

	if !t.Cube {
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, t.Width, t.Height, 0, gl.RGBA, gl.UNSIGNED_BYTE, ptrOrNil(pixels))
	} else {
		face := int(t.Width * t.Height * 4)
		for i := range 6 {
			var data []byte
			if len(pixels) >= (i+1)*face {
				data = pixels[i*face : (i+1)*face]
			}
			gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(i), 0, gl.RGBA8, t.Width, t.Height, 0, gl.RGBA, gl.UNSIGNED_BYTE, ptrOrNil(data))
		}
	}
	if pixels != nil {
		gl.GenerateMipmap(target)
	}
	gl.BindTexture(target, 0)
}

func (d *Device) CreateVertexArray(va *device.VertexArray, layout device.VertexLayout, vertices, indices []byte) {
	var bufs vertexArrayBuffers
	if va.Name == 0 {
		gl.GenVertexArrays(1, &va.Name)
	} else {
		bufs = d.vaBuffers[va.Name]
	}
	gl.BindVertexArray(va.Name)

	if bufs.vbo == 0 {
		gl.GenBuffers(1, &bufs.vbo)
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, bufs.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices), ptrOrNil(vertices), gl.STATIC_DRAW)
	for _, attr := range layout.Attributes {
		gl.EnableVertexAttribArray(attr.Location)
		gl.VertexAttribPointer(attr.Location, attr.Components, gl.FLOAT, false, layout.Stride, gl.PtrOffset(attr.Offset))
	}

	if va.Indexed {
		if bufs.ebo == 0 {
			gl.GenBuffers(1, &bufs.ebo)
		}
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, bufs.ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices), ptrOrNil(indices), gl.STATIC_DRAW)
	}

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	d.vaBuffers[va.Name] = bufs
}

// createFramebuffer builds the framebuffer of rt. Attachment textures that were never
// created get storage sized like the first created attachment.
func (d *Device) createFramebuffer(rt *device.RenderTarget) {
	gl.GenFramebuffers(1, &rt.Name)
	d.framebuffers = append(d.framebuffers, rt.Name)
	gl.BindFramebuffer(gl.FRAMEBUFFER, rt.Name)

	for _, p := range rt.Points().Points() {
		tex := rt.Attachments[p]
		if tex.Name == 0 {
			d.createAttachmentTexture(p, tex)
		}
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, attachment(p), gl.TEXTURE_2D, tex.Name, 0)
	}

	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		logger.For("GLDevice").Warn("render target unusable",
			"error", fmt.Errorf("render target %d: status 0x%x: %w", rt.Key(), status, ErrIncompleteFramebuffer))
	}
}

func (d *Device) createAttachmentTexture(p common.AttachmentPoint, t *device.Texture) {
	gl.GenTextures(1, &t.Name)
	d.textures = append(d.textures, t.Name)
	gl.BindTexture(gl.TEXTURE_2D, t.Name)
	switch p {
	case common.AttachmentDepth:
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT32F, t.Width, t.Height, 0, gl.DEPTH_COMPONENT, gl.FLOAT, nil)
	case common.AttachmentStencil:
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.STENCIL_INDEX8, t.Width, t.Height, 0, gl.STENCIL_INDEX, gl.UNSIGNED_BYTE, nil)
	default:
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, t.Width, t.Height, 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

func ptrOrNil(b []byte) unsafe.Pointer {
	if len(b) == 0 {
		return nil
	}
	return gl.Ptr(b)
}
