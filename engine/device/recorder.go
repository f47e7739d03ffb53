package device

import (
	"fmt"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-rendergraph/common"
	"github.com/gogpu/gputypes"
)

// Op identifies a recorded device call.
type Op uint8

const (
	// Frame commands
	OpSetRenderTarget Op = iota
	OpViewport
	OpClear
	OpSetDrawBuffers
	OpClearColor

	// State commands
	OpEnableDepthTest
	OpDisableDepthTest
	OpEnableBlending
	OpDisableBlending
	OpEnableCullFace
	OpDisableCullFace
	OpDepthMask
	OpEnableScissor
	OpDisableScissor

	// Binding commands
	OpUseProgram
	OpBindTexture
	OpBindVertexArray
	OpBindStorageBuffer
	OpSetUniform

	// Draw commands
	OpDrawArrays
	OpDrawElements
	OpDrawElementsBaseVertex
	OpDispatchCompute
	OpMemoryBarrier

	// Resource commands
	OpCompileProgram
	OpAllocBuffer
	OpUploadBuffer
	OpCreateTexture
	OpCreateVertexArray
)

var opNames = [...]string{
	OpSetRenderTarget:        "SetRenderTarget",
	OpViewport:               "Viewport",
	OpClear:                  "Clear",
	OpSetDrawBuffers:         "SetDrawBuffers",
	OpClearColor:             "ClearColor",
	OpEnableDepthTest:        "EnableDepthTest",
	OpDisableDepthTest:       "DisableDepthTest",
	OpEnableBlending:         "EnableBlending",
	OpDisableBlending:        "DisableBlending",
	OpEnableCullFace:         "EnableCullFace",
	OpDisableCullFace:        "DisableCullFace",
	OpDepthMask:              "DepthMask",
	OpEnableScissor:          "EnableScissor",
	OpDisableScissor:         "DisableScissor",
	OpUseProgram:             "UseProgram",
	OpBindTexture:            "BindTexture",
	OpBindVertexArray:        "BindVertexArray",
	OpBindStorageBuffer:      "BindStorageBuffer",
	OpSetUniform:             "SetUniform",
	OpDrawArrays:             "DrawArrays",
	OpDrawElements:           "DrawElements",
	OpDrawElementsBaseVertex: "DrawElementsBaseVertex",
	OpDispatchCompute:        "DispatchCompute",
	OpMemoryBarrier:          "MemoryBarrier",
	OpCompileProgram:         "CompileProgram",
	OpAllocBuffer:            "AllocBuffer",
	OpUploadBuffer:           "UploadBuffer",
	OpCreateTexture:          "CreateTexture",
	OpCreateVertexArray:      "CreateVertexArray",
}

// String returns the device call name.
func (o Op) String() string {
	if int(o) < len(opNames) && opNames[o] != "" {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", o)
}

// IsDraw reports whether the op produces fragments or dispatches compute work.
func (o Op) IsDraw() bool {
	switch o {
	case OpDrawArrays, OpDrawElements, OpDrawElementsBaseVertex, OpDispatchCompute:
		return true
	}
	return false
}

// Call is one recorded device call. Resource handles are recorded by identity key.
type Call struct {
	Op   Op
	Args []any
}

// String formats the call as Op(arg, arg, ...).
func (c Call) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = fmt.Sprint(a)
	}
	return c.Op.String() + "(" + strings.Join(parts, ", ") + ")"
}

// Recorder is a Device that records every call instead of talking to a GPU.
// It is safe for concurrent use.
type Recorder struct {
	mu *sync.Mutex

	calls     []Call
	white     *Texture
	locations map[uint64]map[string]int32
	nextName  uint32

	// CompileErr, when set, makes CompileProgram fail with this error.
	CompileErr error
}

var _ Device = &Recorder{}

// NewRecorder creates an empty recording device.
func NewRecorder() *Recorder {
	return &Recorder{
		mu:        &sync.Mutex{},
		white:     NewTexture(1, 1),
		locations: make(map[uint64]map[string]int32),
	}
}

func (r *Recorder) record(op Op, args ...any) {
	r.mu.Lock()
	r.calls = append(r.calls, Call{Op: op, Args: args})
	r.mu.Unlock()
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Ops returns the recorded call ops in order.
func (r *Recorder) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Op, len(r.calls))
	for i, c := range r.calls {
		out[i] = c.Op
	}
	return out
}

// Count returns how many times op was recorded.
func (r *Recorder) Count(op Op) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Filter returns the recorded calls whose op is one of ops.
func (r *Recorder) Filter(ops ...Op) []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Call
	for _, c := range r.calls {
		for _, op := range ops {
			if c.Op == op {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// Reset discards recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.calls = nil
	r.mu.Unlock()
}

// Dump returns one line per recorded call.
func (r *Recorder) Dump() string {
	var sb strings.Builder
	for _, c := range r.Calls() {
		sb.WriteString(c.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (r *Recorder) SetRenderTarget(rt *RenderTarget) bool {
	r.record(OpSetRenderTarget, rt.Key())
	return rt != nil
}

func (r *Recorder) Viewport(vp common.Viewport) {
	r.record(OpViewport, vp)
}

func (r *Recorder) Clear(depth, stencil bool) {
	r.record(OpClear, depth, stencil)
}

func (r *Recorder) SetDrawBuffers(points []common.AttachmentPoint) {
	r.record(OpSetDrawBuffers, append([]common.AttachmentPoint(nil), points...))
}

func (r *Recorder) ClearColor(c common.Color) {
	r.record(OpClearColor, c)
}

func (r *Recorder) EnableDepthTest(fn gputypes.CompareFunction) {
	r.record(OpEnableDepthTest, fn)
}

func (r *Recorder) DisableDepthTest() {
	r.record(OpDisableDepthTest)
}

func (r *Recorder) EnableBlending(state gputypes.BlendState) {
	r.record(OpEnableBlending, state)
}

func (r *Recorder) DisableBlending() {
	r.record(OpDisableBlending)
}

func (r *Recorder) EnableCullFace(mode gputypes.CullMode) {
	r.record(OpEnableCullFace, mode)
}

func (r *Recorder) DisableCullFace() {
	r.record(OpDisableCullFace)
}

func (r *Recorder) DepthMask(write bool) {
	r.record(OpDepthMask, write)
}

func (r *Recorder) EnableScissor(rect common.Viewport) {
	r.record(OpEnableScissor, rect)
}

func (r *Recorder) DisableScissor() {
	r.record(OpDisableScissor)
}

func (r *Recorder) UseProgram(p *Program) {
	r.record(OpUseProgram, p.Key())
}

func (r *Recorder) BindTexture(unit uint32, tex *Texture, sampler SamplerParams) {
	r.record(OpBindTexture, unit, tex.Key(), sampler)
}

func (r *Recorder) BindVertexArray(va *VertexArray) {
	r.record(OpBindVertexArray, va.Key())
}

func (r *Recorder) BindStorageBuffer(index uint32, buf *Buffer) {
	r.record(OpBindStorageBuffer, index, buf.Key())
}

func (r *Recorder) SetUniform(location int32, v UniformValue) {
	r.record(OpSetUniform, location, v)
}

func (r *Recorder) DrawArrays(topology gputypes.PrimitiveTopology, first, count int32) {
	r.record(OpDrawArrays, topology, first, count)
}

func (r *Recorder) DrawElements(topology gputypes.PrimitiveTopology, format gputypes.IndexFormat, count, offset int32) {
	r.record(OpDrawElements, topology, format, count, offset)
}

func (r *Recorder) DrawElementsBaseVertex(topology gputypes.PrimitiveTopology, format gputypes.IndexFormat, count, offset, baseVertex int32) {
	r.record(OpDrawElementsBaseVertex, topology, format, count, offset, baseVertex)
}

func (r *Recorder) DispatchCompute(x, y, z uint32) {
	r.record(OpDispatchCompute, x, y, z)
}

func (r *Recorder) MemoryBarrier() {
	r.record(OpMemoryBarrier)
}

func (r *Recorder) CompileProgram(p *Program, src ShaderSource) error {
	r.record(OpCompileProgram, p.Key())
	if r.CompileErr != nil {
		return r.CompileErr
	}
	r.mu.Lock()
	r.nextName++
	p.Name = r.nextName
	r.mu.Unlock()
	return nil
}

// UniformLocation assigns locations in first-query order per program.
func (r *Recorder) UniformLocation(p *Program, name string) int32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	locs, ok := r.locations[p.Key()]
	if !ok {
		locs = make(map[string]int32)
		r.locations[p.Key()] = locs
	}
	loc, ok := locs[name]
	if !ok {
		loc = int32(len(locs))
		locs[name] = loc
	}
	return loc
}

func (r *Recorder) AllocBuffer(buf *Buffer, size int) {
	r.record(OpAllocBuffer, buf.Key(), size)
	r.mu.Lock()
	if buf.Name == 0 {
		r.nextName++
		buf.Name = r.nextName
	}
	buf.Size = size
	r.mu.Unlock()
}

func (r *Recorder) UploadBuffer(buf *Buffer, offset int, data []byte) {
	r.record(OpUploadBuffer, buf.Key(), offset, len(data))
}

func (r *Recorder) CreateTexture(t *Texture, pixels []byte) {
	r.record(OpCreateTexture, t.Key(), t.Width, t.Height)
}

func (r *Recorder) CreateVertexArray(va *VertexArray, layout VertexLayout, vertices, indices []byte) {
	r.record(OpCreateVertexArray, va.Key(), layout.Stride, len(vertices), len(indices))
	r.mu.Lock()
	if va.Name == 0 {
		r.nextName++
		va.Name = r.nextName
	}
	r.mu.Unlock()
}

func (r *Recorder) White1x1() *Texture {
	return r.white
}
