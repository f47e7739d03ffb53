// Package rendernode implements the per-frame render graph: a tree whose levels each
// hold one kind of device state, so applying it emits a state change only where the
// state actually differs between consecutive draws.
package rendernode

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-rendergraph/common"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/device"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/internal/assert"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/material"
	"github.com/gogpu/gputypes"
	"github.com/google/btree"
)

// Dimension is the kind of state a node holds. Every non-root node's parent holds the
// dimension immediately before its own.
type Dimension uint8

const (
	DimRoot Dimension = iota
	DimPass
	DimDepthTest
	DimDepth
	DimBlending
	DimCullFace
	DimMaterialType
	DimTextures
	DimVertexArray
	DimDraw
)

var dimNames = [...]string{
	DimRoot:         "Root",
	DimPass:         "Pass",
	DimDepthTest:    "DepthTest",
	DimDepth:        "Depth",
	DimBlending:     "Blending",
	DimCullFace:     "CullFace",
	DimMaterialType: "MaterialType",
	DimTextures:     "Textures",
	DimVertexArray:  "VertexArray",
	DimDraw:         "Draw",
}

func (d Dimension) String() string {
	if int(d) < len(dimNames) {
		return dimNames[d]
	}
	return fmt.Sprintf("Dimension(%d)", d)
}

const btreeDegree = 8

// DrawParams is one fully resolved draw submission.
type DrawParams struct {
	Pass      int
	DepthTest bool
	DepthFunc gputypes.CompareFunction
	Depth     float32
	Blending  device.BlendingParams
	CullFace  gputypes.CullMode
	// FlipCull swaps front and back face culling, for mirrored transforms.
	FlipCull bool

	Type     material.MaterialType
	Textures []device.TextureBinding
	VA       device.VertexArraySlice
	Storage  []device.StorageBinding

	Topology    gputypes.PrimitiveTopology
	DrawBuffers DrawBufferBinding
	Scissor     common.ScissorParams
	DepthWrite  bool

	AutoParams material.MaterialParams
	Params     material.MaterialParams
}

// ComputeParams is one compute dispatch.
type ComputeParams struct {
	Pass       int
	Type       material.MaterialType
	Storage    []device.StorageBinding
	Groups     [3]uint32
	AutoParams material.MaterialParams
	Params     material.MaterialParams
}

type rootParams struct {
	viewport    common.Viewport
	clearMask   common.AttachmentPoints
	clearColors common.AttachmentColors
	target      *device.RenderTarget
}

type drawParams struct {
	index      int
	typ        material.MaterialType
	slice      device.VertexArraySlice
	topology   gputypes.PrimitiveTopology
	buffers    DrawBufferBinding
	scissor    common.ScissorParams
	depthWrite bool
	compute    bool
	groups     [3]uint32
	autoParams material.MaterialParams
	params     material.MaterialParams
}

// Node is one node of the render graph. Only the fields of its dimension are meaningful.
type Node struct {
	dim      Dimension
	children *btree.BTreeG[*Node]
	numDraws int

	root         rootParams
	pass         int
	depthTest    bool
	depthFunc    gputypes.CompareFunction
	depth        float32
	blending     device.BlendingParams
	cullFace     gputypes.CullMode
	materialType material.MaterialType
	textures     []device.TextureBinding
	va           *device.VertexArray
	storage      []device.StorageBinding
	draw         drawParams
}

// NewRoot creates the root of a render graph for one camera view.
//
// Parameters:
//   - viewport: the viewport set before drawing
//   - clearMask: attachments cleared before drawing
//   - clearColors: clear color per attachment
//   - target: the render target, nil for the default framebuffer
//
// Returns:
//   - *Node: the root node
func NewRoot(viewport common.Viewport, clearMask common.AttachmentPoints, clearColors common.AttachmentColors, target *device.RenderTarget) *Node {
	return &Node{
		dim: DimRoot,
		root: rootParams{
			viewport:    viewport,
			clearMask:   clearMask,
			clearColors: clearColors,
			target:      target,
		},
	}
}

// Dimension returns the node's dimension.
func (n *Node) Dimension() Dimension {
	return n.dim
}

// NumDraws returns the number of draws and dispatches added to a root.
func (n *Node) NumDraws() int {
	return n.numDraws
}

// Children returns the children in apply order.
func (n *Node) Children() []*Node {
	if n.children == nil {
		return nil
	}
	out := make([]*Node, 0, n.children.Len())
	n.children.Ascend(func(c *Node) bool {
		out = append(out, c)
		return true
	})
	return out
}

// Add inserts a draw. Nodes whose state equals an existing sibling are shared.
//
// Parameters:
//   - d: the resolved draw
func (n *Node) Add(d DrawParams) {
	assert.That(n.dim == DimRoot, "Add on %v node", n.dim)
	assert.That(d.Type != nil && !d.Type.IsCompute(), "Add needs a graphics material type")

	cull := d.CullFace
	if d.FlipCull {
		switch cull {
		case gputypes.CullModeFront:
			cull = gputypes.CullModeBack
		case gputypes.CullModeBack:
			cull = gputypes.CullModeFront
		}
	}

	node := n.insertPass(d.Pass)
	node = node.insertDepthTest(d.DepthTest, d.DepthFunc)
	node = node.insertDepth(d.Depth)
	node = node.insertBlending(d.Blending)
	node = node.insertCullFace(cull)
	node = node.insertMaterialType(d.Type)
	node = node.insertTextures(d.Textures)
	node = node.insertVertexArray(d.VA.VA, d.Storage)
	node = node.insertDraw(n.numDraws)
	n.numDraws++

	node.draw.typ = d.Type
	node.draw.slice = d.VA
	node.draw.topology = d.Topology
	node.draw.buffers = d.DrawBuffers
	node.draw.scissor = d.Scissor
	node.draw.depthWrite = d.DepthWrite
	node.draw.autoParams = d.AutoParams
	node.draw.params = d.Params
}

// AddCompute inserts a compute dispatch. Compute nodes use disabled depth test,
// depth 0, disabled blending, no culling, no textures and no vertex array.
//
// Parameters:
//   - c: the dispatch
func (n *Node) AddCompute(c ComputeParams) {
	assert.That(n.dim == DimRoot, "AddCompute on %v node", n.dim)
	assert.That(c.Type != nil && c.Type.IsCompute(), "AddCompute needs a compute material type")

	node := n.insertPass(c.Pass)
	node = node.insertDepthTest(false, 0)
	node = node.insertDepth(0)
	node = node.insertBlending(device.BlendingDisabled)
	node = node.insertCullFace(gputypes.CullModeNone)
	node = node.insertMaterialType(c.Type)
	node = node.insertTextures(nil)
	node = node.insertVertexArray(nil, c.Storage)
	node = node.insertDraw(n.numDraws)
	n.numDraws++

	node.draw.typ = c.Type
	node.draw.compute = true
	node.draw.groups = c.Groups
	node.draw.autoParams = c.AutoParams
	node.draw.params = c.Params
}

func (n *Node) insertPass(pass int) *Node {
	return n.insert(&Node{dim: DimPass, pass: pass})
}

func (n *Node) insertDepthTest(enabled bool, fn gputypes.CompareFunction) *Node {
	return n.insert(&Node{dim: DimDepthTest, depthTest: enabled, depthFunc: fn})
}

func (n *Node) insertDepth(depth float32) *Node {
	return n.insert(&Node{dim: DimDepth, depth: depth})
}

func (n *Node) insertBlending(b device.BlendingParams) *Node {
	return n.insert(&Node{dim: DimBlending, blending: b})
}

func (n *Node) insertCullFace(mode gputypes.CullMode) *Node {
	return n.insert(&Node{dim: DimCullFace, cullFace: mode})
}

func (n *Node) insertMaterialType(mt material.MaterialType) *Node {
	return n.insert(&Node{dim: DimMaterialType, materialType: mt})
}

func (n *Node) insertTextures(textures []device.TextureBinding) *Node {
	return n.insert(&Node{dim: DimTextures, textures: textures})
}

func (n *Node) insertVertexArray(va *device.VertexArray, storage []device.StorageBinding) *Node {
	return n.insert(&Node{dim: DimVertexArray, va: va, storage: storage})
}

func (n *Node) insertDraw(index int) *Node {
	return n.insert(&Node{dim: DimDraw, draw: drawParams{index: index}})
}

// insert adds tmp as a child, or returns the existing child comparing equal to it.
func (n *Node) insert(tmp *Node) *Node {
	assert.That(tmp.dim == n.dim+1, "%v node under %v node", tmp.dim, n.dim)
	if n.children == nil {
		n.children = btree.NewG(btreeDegree, func(a, b *Node) bool {
			return compareNodes(a, b) < 0
		})
	}
	if existing, ok := n.children.Get(tmp); ok {
		return existing
	}
	n.children.ReplaceOrInsert(tmp)
	return tmp
}

// Apply walks the tree depth-first and issues the device calls of every node it
// enters. Siblings sharing a parent share that parent's state calls.
//
// Parameters:
//   - dev: the device to issue calls on
func (n *Node) Apply(dev device.Device) {
	switch n.dim {
	case DimRoot:
		n.applyRoot(dev)
	case DimPass, DimDepth:
	case DimDepthTest:
		if n.depthTest {
			dev.EnableDepthTest(n.depthFunc)
		} else {
			dev.DisableDepthTest()
		}
	case DimBlending:
		if n.blending.Enabled {
			dev.EnableBlending(n.blending.State)
		} else {
			dev.DisableBlending()
		}
	case DimCullFace:
		if n.cullFace != gputypes.CullModeNone {
			dev.EnableCullFace(n.cullFace)
		} else {
			dev.DisableCullFace()
		}
	case DimMaterialType:
		dev.UseProgram(n.materialType.Program())
	case DimTextures:
		n.applyTextures(dev)
	case DimVertexArray:
		dev.BindVertexArray(n.va)
		for _, sb := range n.storage {
			dev.BindStorageBuffer(sb.Index, sb.Buffer)
		}
	case DimDraw:
		n.applyDraw(dev)
	default:
		assert.That(false, "apply on %v node", n.dim)
	}

	if n.children != nil {
		n.children.Ascend(func(c *Node) bool {
			c.Apply(dev)
			return true
		})
	}

	if n.dim == DimVertexArray {
		dev.BindVertexArray(nil)
	}
}

func (n *Node) applyRoot(dev device.Device) {
	r := n.root
	haveFB := dev.SetRenderTarget(r.target)
	dev.Viewport(r.viewport)

	depth := r.clearMask.Has(common.AttachmentDepth)
	stencil := r.clearMask.Has(common.AttachmentStencil)
	if depth || stencil {
		dev.Clear(depth, stencil)
	}
	for _, p := range r.clearMask.Points() {
		if !p.IsColor() {
			continue
		}
		if haveFB {
			dev.SetDrawBuffers([]common.AttachmentPoint{p})
		} else {
			assert.That(p == common.AttachmentColor0, "clear of %v on the default framebuffer", p)
		}
		dev.ClearColor(r.clearColors[p])
	}
}

func (n *Node) applyTextures(dev device.Device) {
	for unit, tb := range n.textures {
		if tb.Texture == nil {
			dev.BindTexture(uint32(unit), dev.White1x1(), device.SamplerNearest)
			continue
		}
		dev.BindTexture(uint32(unit), tb.Texture, tb.Sampler)
	}
}

func (n *Node) applyDraw(dev device.Device) {
	d := &n.draw
	d.autoParams.Apply(dev, d.typ)
	d.params.Apply(dev, d.typ)

	if d.compute {
		dev.DispatchCompute(d.groups[0], d.groups[1], d.groups[2])
		dev.MemoryBarrier()
		return
	}

	if d.scissor.Enabled {
		dev.EnableScissor(d.scissor.Rect)
	}
	if !d.depthWrite {
		dev.DepthMask(false)
	}
	if d.buffers.NumBuffers >= 0 {
		dev.SetDrawBuffers(d.buffers.Buffers)
	}

	va := d.slice.VA
	switch {
	case d.slice.Count == 0 && va != nil && va.Indexed:
		dev.DrawElements(d.topology, va.IndexFormat, va.IndexCount, indexOffset(va, d.slice.Start))
	case d.slice.Count == 0:
		// empty draw
	case va != nil && va.Indexed:
		dev.DrawElementsBaseVertex(d.topology, va.IndexFormat, d.slice.Count, indexOffset(va, d.slice.Start), d.slice.BaseVertex)
	default:
		dev.DrawArrays(d.topology, d.slice.Start, d.slice.Count)
	}

	if !d.depthWrite {
		dev.DepthMask(true)
	}
	if d.scissor.Enabled {
		dev.DisableScissor()
	}
}

func indexOffset(va *device.VertexArray, start int32) int32 {
	return int32(va.IndexFormat.Size()) * start
}

// String dumps the tree, one node per line.
func (n *Node) String() string {
	var b strings.Builder
	n.dump(&b, 0)
	return b.String()
}

func (n *Node) dump(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	switch n.dim {
	case DimRoot:
		fmt.Fprintf(b, "Root(draws=%d, viewport=%v, clear=%08b)", n.numDraws, n.root.viewport, n.root.clearMask)
	case DimPass:
		fmt.Fprintf(b, "Pass(%d)", n.pass)
	case DimDepthTest:
		if n.depthTest {
			fmt.Fprintf(b, "DepthTest(%v)", n.depthFunc)
		} else {
			b.WriteString("DepthTest(off)")
		}
	case DimDepth:
		fmt.Fprintf(b, "Depth(%g)", n.depth)
	case DimBlending:
		fmt.Fprintf(b, "Blending(%t)", n.blending.Enabled)
	case DimCullFace:
		fmt.Fprintf(b, "CullFace(%v)", n.cullFace)
	case DimMaterialType:
		fmt.Fprintf(b, "MaterialType(%v)", n.materialType.Name())
	case DimTextures:
		fmt.Fprintf(b, "Textures(%d)", len(n.textures))
	case DimVertexArray:
		fmt.Fprintf(b, "VertexArray(%d, storage=%d)", n.va.Key(), len(n.storage))
	case DimDraw:
		if n.draw.compute {
			fmt.Fprintf(b, "Dispatch(#%d, %v)", n.draw.index, n.draw.groups)
		} else {
			fmt.Fprintf(b, "Draw(#%d, %v, start=%d, count=%d)", n.draw.index, n.draw.topology, n.draw.slice.Start, n.draw.slice.Count)
		}
	}
	b.WriteString("\n")
	if n.children != nil {
		n.children.Ascend(func(c *Node) bool {
			c.dump(b, depth+1)
			return true
		})
	}
}
