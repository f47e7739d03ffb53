package rendernode

import (
	"cmp"

	"github.com/Carmen-Shannon/oxy-rendergraph/engine/device"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/material"
	"github.com/gogpu/gputypes"
)

// ComparePass orders passes ascending.
func ComparePass(a, b int) int {
	return cmp.Compare(a, b)
}

// CompareDepthTest puts enabled depth tests first, then orders by compare function.
func CompareDepthTest(aEnabled bool, aFn gputypes.CompareFunction, bEnabled bool, bFn gputypes.CompareFunction) int {
	if aEnabled != bEnabled {
		if aEnabled {
			return -1
		}
		return 1
	}
	return cmp.Compare(aFn, bFn)
}

// CompareDepth orders by the submitted depth value.
func CompareDepth(a, b float32) int {
	return cmp.Compare(a, b)
}

// CompareBlending puts disabled blending first, then orders by factors and operations.
func CompareBlending(a, b device.BlendingParams) int {
	return a.Compare(b)
}

// CompareCullFace orders by cull mode value.
func CompareCullFace(a, b gputypes.CullMode) int {
	return cmp.Compare(a, b)
}

// CompareMaterialType orders by program identity key. A nil type sorts first.
func CompareMaterialType(a, b material.MaterialType) int {
	return cmp.Compare(typeKey(a), typeKey(b))
}

func typeKey(mt material.MaterialType) uint64 {
	if mt == nil {
		return 0
	}
	return mt.Key()
}

// CompareTextures orders texture unit lists lexicographically by
// (texture identity, sampler parameters); a list that is a prefix of another sorts first.
// Textures compare by identity, never by contents.
func CompareTextures(a, b []device.TextureBinding) int {
	for i := 0; i < min(len(a), len(b)); i++ {
		if c := cmp.Compare(a[i].Texture.Key(), b[i].Texture.Key()); c != 0 {
			return c
		}
		if c := a[i].Sampler.Compare(b[i].Sampler); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}

// CompareStorage orders storage bindings lexicographically by (binding index, buffer identity).
func CompareStorage(a, b []device.StorageBinding) int {
	for i := 0; i < min(len(a), len(b)); i++ {
		if c := cmp.Or(
			cmp.Compare(a[i].Index, b[i].Index),
			cmp.Compare(a[i].Buffer.Key(), b[i].Buffer.Key()),
		); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}

// CompareVertexArray orders by vertex array identity, then by storage bindings.
func CompareVertexArray(aVA *device.VertexArray, aStorage []device.StorageBinding, bVA *device.VertexArray, bStorage []device.StorageBinding) int {
	if c := cmp.Compare(aVA.Key(), bVA.Key()); c != 0 {
		return c
	}
	return CompareStorage(aStorage, bStorage)
}

// CompareDraw orders draws by submission index.
func CompareDraw(a, b int) int {
	return cmp.Compare(a, b)
}

// compareNodes dispatches to the comparator of a's dimension. Both nodes must share it.
func compareNodes(a, b *Node) int {
	switch a.dim {
	case DimPass:
		return ComparePass(a.pass, b.pass)
	case DimDepthTest:
		return CompareDepthTest(a.depthTest, a.depthFunc, b.depthTest, b.depthFunc)
	case DimDepth:
		return CompareDepth(a.depth, b.depth)
	case DimBlending:
		return CompareBlending(a.blending, b.blending)
	case DimCullFace:
		return CompareCullFace(a.cullFace, b.cullFace)
	case DimMaterialType:
		return CompareMaterialType(a.materialType, b.materialType)
	case DimTextures:
		return CompareTextures(a.textures, b.textures)
	case DimVertexArray:
		return CompareVertexArray(a.va, a.storage, b.va, b.storage)
	case DimDraw:
		return CompareDraw(a.draw.index, b.draw.index)
	default:
		panic("rendernode: compare on " + a.dim.String())
	}
}
