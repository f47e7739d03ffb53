// Package loader imports static glTF 2.0 geometry (.gltf and .glb) as engine models.
package loader

import (
	"fmt"
	"io"
	"sync"

	"github.com/Carmen-Shannon/oxy-rendergraph/common"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/device"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/logger"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/model"
	"github.com/chewxy/math32"
	"github.com/gogpu/gputypes"
)

// Mesh is one glTF primitive converted to a model, with the material factors a
// flat-shaded material can reproduce.
type Mesh struct {
	// Name is "<mesh name>/<primitive index>", with "mesh<index>" for unnamed meshes.
	Name  string
	Model model.Model

	// BaseColor is the PBR base color factor, white when absent.
	BaseColor   [4]float32
	Blend       bool
	DoubleSided bool
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	sched           device.Scheduler
	generateNormals bool

	cache map[string][]Mesh
}

// Loader loads glTF assets and caches the resulting meshes by path or name.
type Loader interface {
	// Load imports a .gltf or .glb file, or returns the cached meshes for path.
	//
	// Parameters:
	//   - path: the file path to the asset
	//
	// Returns:
	//   - []Mesh: one mesh per primitive, in document order
	//   - error: error if the file cannot be read or is not valid glTF 2.0
	Load(path string) ([]Mesh, error)

	// LoadReader imports an asset from r and caches it under name. Buffers with a file
	// URI are resolved against baseDir.
	//
	// Parameters:
	//   - name: the cache key
	//   - r: the reader providing the asset
	//   - isGLB: true if r provides a GLB container
	//   - baseDir: directory for external buffers
	//
	// Returns:
	//   - []Mesh: one mesh per primitive, in document order
	//   - error: error if parsing fails
	LoadReader(name string, r io.Reader, isGLB bool, baseDir string) ([]Mesh, error)

	// Get retrieves cached meshes by key. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - []Mesh: the cached meshes or nil
	Get(name string) []Mesh

	// Models returns a copy of the cache.
	//
	// Returns:
	//   - map[string][]Mesh: all cached meshes keyed by name
	Models() map[string][]Mesh

	// Evict drops a cache entry.
	//
	// Parameters:
	//   - name: the cache key
	//
	// Returns:
	//   - bool: true if the entry existed
	Evict(name string) bool
}

var _ Loader = &loader{}

// NewLoader creates a Loader with the given options applied.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: the new loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		generateNormals: true,
		cache:           make(map[string][]Mesh),
	}
	for _, option := range options {
		option(l)
	}
	return l
}

func (l *loader) Load(path string) ([]Mesh, error) {
	if cached := l.Get(path); cached != nil {
		return cached, nil
	}
	p, err := parseFile(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return l.store(path, p)
}

func (l *loader) LoadReader(name string, r io.Reader, isGLB bool, baseDir string) ([]Mesh, error) {
	if cached := l.Get(name); cached != nil {
		return cached, nil
	}
	p, err := parseReader(r, isGLB, baseDir)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return l.store(name, p)
}

func (l *loader) store(key string, p *gltfParser) ([]Mesh, error) {
	meshes, err := l.convert(p)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	if l.sched != nil {
		for _, m := range meshes {
			m.Model.Upload(l.sched)
		}
	}

	l.mu.Lock()
	l.cache[key] = meshes
	l.mu.Unlock()
	logger.For("Loader").Debug("asset loaded", "name", key, "meshes", len(meshes))
	return meshes, nil
}

func (l *loader) Get(name string) []Mesh {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cache[name]
}

func (l *loader) Models() map[string][]Mesh {
	l.mu.RLock()
	defer l.mu.RUnlock()
	cp := make(map[string][]Mesh, len(l.cache))
	for k, v := range l.cache {
		cp[k] = v
	}
	return cp
}

func (l *loader) Evict(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.cache[name]
	delete(l.cache, name)
	return ok
}

// convert turns every primitive of the document into a Mesh.
func (l *loader) convert(p *gltfParser) ([]Mesh, error) {
	var meshes []Mesh
	for mi, mesh := range p.document.Meshes {
		for pi, prim := range mesh.Primitives {
			m, err := l.convertPrimitive(p, prim)
			if err != nil {
				return nil, fmt.Errorf("mesh %d primitive %d: %w", mi, pi, err)
			}
			name := fmt.Sprintf("%s/%d", common.Coalesce(mesh.Name, fmt.Sprintf("mesh%d", mi)), pi)
			m.Name = name
			m.Model = model.NewModel(append(m.opts, model.WithName(name))...)
			meshes = append(meshes, m.Mesh)
		}
	}
	return meshes, nil
}

type convertedPrimitive struct {
	Mesh
	opts []model.ModelBuilderOption
}

func (l *loader) convertPrimitive(p *gltfParser, prim gltfPrimitive) (convertedPrimitive, error) {
	out := convertedPrimitive{Mesh: Mesh{BaseColor: [4]float32{1, 1, 1, 1}}}

	posIdx, ok := prim.Attributes[gltfAttributePosition]
	if !ok {
		return out, fmt.Errorf("%w: primitive without POSITION", ErrInvalidAccessor)
	}
	positions, err := p.readFloats(posIdx, gltfAccessorTypeVec3)
	if err != nil {
		return out, err
	}
	count := len(positions) / 3

	var normals, texCoords []float32
	if idx, ok := prim.Attributes[gltfAttributeNormal]; ok {
		if normals, err = p.readFloats(idx, gltfAccessorTypeVec3); err != nil {
			return out, err
		}
	}
	if idx, ok := prim.Attributes[gltfAttributeTexCoord0]; ok {
		if texCoords, err = p.readFloats(idx, gltfAccessorTypeVec2); err != nil {
			return out, err
		}
	}
	if (normals != nil && len(normals) != count*3) || (texCoords != nil && len(texCoords) != count*2) {
		return out, fmt.Errorf("%w: attribute counts differ", ErrInvalidAccessor)
	}

	var indices []uint32
	if prim.Indices != nil {
		if indices, err = p.readIndices(*prim.Indices); err != nil {
			return out, err
		}
		for _, i := range indices {
			if int(i) >= count {
				return out, fmt.Errorf("%w: index %d out of %d vertices", ErrInvalidAccessor, i, count)
			}
		}
	}

	mode := gltfPrimitiveModeTriangles
	if prim.Mode != nil {
		mode = *prim.Mode
	}
	topology, indices, err := convertMode(mode, indices, count)
	if err != nil {
		return out, err
	}

	if normals == nil && l.generateNormals && topology == gputypes.PrimitiveTopologyTriangleList {
		normals = smoothNormals(positions, indices)
	}

	vertices := make([]model.GPUVertex, count)
	for i := range vertices {
		v := &vertices[i]
		copy(v.Position[:], positions[i*3:i*3+3])
		if normals != nil {
			copy(v.Normal[:], normals[i*3:i*3+3])
		}
		if texCoords != nil {
			copy(v.TexCoord[:], texCoords[i*2:i*2+2])
		}
	}

	out.opts = []model.ModelBuilderOption{model.WithVertices(vertices), model.WithTopology(topology)}
	if indices != nil {
		out.opts = append(out.opts, model.WithIndices(indices))
	}

	if prim.Material != nil {
		if *prim.Material < 0 || *prim.Material >= len(p.document.Materials) {
			return out, fmt.Errorf("%w: material %d", ErrInvalidGLTF, *prim.Material)
		}
		mat := p.document.Materials[*prim.Material]
		if mat.PbrMetallicRoughness != nil && mat.PbrMetallicRoughness.BaseColorFactor != nil {
			out.BaseColor = *mat.PbrMetallicRoughness.BaseColorFactor
		}
		out.Blend = mat.AlphaMode == "BLEND"
		out.DoubleSided = mat.DoubleSided
	}
	return out, nil
}

// convertMode maps a glTF primitive mode to a topology. Line loops and triangle fans
// have no topology of their own and are rewritten as indexed lists.
func convertMode(mode int, indices []uint32, count int) (gputypes.PrimitiveTopology, []uint32, error) {
	switch mode {
	case gltfPrimitiveModePoints:
		return gputypes.PrimitiveTopologyPointList, indices, nil
	case gltfPrimitiveModeLines:
		return gputypes.PrimitiveTopologyLineList, indices, nil
	case gltfPrimitiveModeLineStrip:
		return gputypes.PrimitiveTopologyLineStrip, indices, nil
	case gltfPrimitiveModeTriangles:
		return gputypes.PrimitiveTopologyTriangleList, indices, nil
	case gltfPrimitiveModeTriangleStrip:
		return gputypes.PrimitiveTopologyTriangleStrip, indices, nil
	case gltfPrimitiveModeLineLoop:
		seq := sequence(indices, count)
		if len(seq) < 2 {
			return gputypes.PrimitiveTopologyLineList, nil, nil
		}
		out := make([]uint32, 0, len(seq)*2)
		for i := range seq {
			out = append(out, seq[i], seq[(i+1)%len(seq)])
		}
		return gputypes.PrimitiveTopologyLineList, out, nil
	case gltfPrimitiveModeTriangleFan:
		seq := sequence(indices, count)
		var out []uint32
		for i := 1; i+1 < len(seq); i++ {
			out = append(out, seq[0], seq[i], seq[i+1])
		}
		return gputypes.PrimitiveTopologyTriangleList, out, nil
	default:
		return 0, nil, fmt.Errorf("%w: primitive mode %d", ErrInvalidGLTF, mode)
	}
}

// sequence returns indices, or 0..count-1 for non-indexed primitives.
func sequence(indices []uint32, count int) []uint32 {
	if indices != nil {
		return indices
	}
	seq := make([]uint32, count)
	for i := range seq {
		seq[i] = uint32(i)
	}
	return seq
}

// smoothNormals averages the face normals of a triangle list at each vertex.
func smoothNormals(positions []float32, indices []uint32) []float32 {
	normals := make([]float32, len(positions))
	tris := sequence(indices, len(positions)/3)
	for t := 0; t+2 < len(tris); t += 3 {
		a, b, c := tris[t]*3, tris[t+1]*3, tris[t+2]*3
		e1 := [3]float32{positions[b] - positions[a], positions[b+1] - positions[a+1], positions[b+2] - positions[a+2]}
		e2 := [3]float32{positions[c] - positions[a], positions[c+1] - positions[a+1], positions[c+2] - positions[a+2]}
		n := [3]float32{
			e1[1]*e2[2] - e1[2]*e2[1],
			e1[2]*e2[0] - e1[0]*e2[2],
			e1[0]*e2[1] - e1[1]*e2[0],
		}
		for _, v := range [3]uint32{a, b, c} {
			normals[v] += n[0]
			normals[v+1] += n[1]
			normals[v+2] += n[2]
		}
	}
	for i := 0; i < len(normals); i += 3 {
		l := math32.Sqrt(normals[i]*normals[i] + normals[i+1]*normals[i+1] + normals[i+2]*normals[i+2])
		if l > 0 {
			normals[i] /= l
			normals[i+1] /= l
			normals[i+2] /= l
		}
	}
	return normals
}
