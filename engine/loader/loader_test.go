package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-rendergraph/common"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/device"
	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// triangleBin holds three VEC3 positions followed by three uint16 indices and padding.
func triangleBin() []byte {
	var buf bytes.Buffer
	for _, f := range []float32{0, 0, 0, 1, 0, 0, 0, 1, 0} {
		_ = binary.Write(&buf, binary.LittleEndian, f)
	}
	for _, i := range []uint16{0, 1, 2, 0} {
		_ = binary.Write(&buf, binary.LittleEndian, i)
	}
	return buf.Bytes()
}

// triangleDoc describes one indexed triangle. An empty uri refers to the GLB chunk.
func triangleDoc(t *testing.T, uri string, edit func(doc map[string]any)) []byte {
	t.Helper()
	buffer := map[string]any{"byteLength": 44}
	if uri != "" {
		buffer["uri"] = uri
	}
	doc := map[string]any{
		"asset":   map[string]any{"version": "2.0"},
		"buffers": []any{buffer},
		"bufferViews": []any{
			map[string]any{"buffer": 0, "byteOffset": 0, "byteLength": 36},
			map[string]any{"buffer": 0, "byteOffset": 36, "byteLength": 6},
		},
		"accessors": []any{
			map[string]any{"bufferView": 0, "componentType": gltfComponentTypeFloat, "count": 3, "type": "VEC3"},
			map[string]any{"bufferView": 1, "componentType": gltfComponentTypeUnsignedShort, "count": 3, "type": "SCALAR"},
		},
		"meshes": []any{map[string]any{
			"name": "tri",
			"primitives": []any{map[string]any{
				"attributes": map[string]any{"POSITION": 0},
				"indices":    1,
				"material":   0,
			}},
		}},
		"materials": []any{map[string]any{
			"pbrMetallicRoughness": map[string]any{"baseColorFactor": []float32{1, 0, 0, 1}},
			"alphaMode":            "BLEND",
		}},
	}
	if edit != nil {
		edit(doc)
	}
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	return data
}

func dataURI(data []byte) string {
	return "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(data)
}

func buildGLB(jsonChunk, binChunk []byte) []byte {
	for len(jsonChunk)%4 != 0 {
		jsonChunk = append(jsonChunk, ' ')
	}
	var buf bytes.Buffer
	total := 12 + 8 + len(jsonChunk) + 8 + len(binChunk)
	_ = binary.Write(&buf, binary.LittleEndian, gltfGLBHeader{Magic: gltfGLBMagic, Version: gltfGLBVersion, Length: uint32(total)})
	_ = binary.Write(&buf, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(jsonChunk)), ChunkType: gltfGLBChunkJSON})
	buf.Write(jsonChunk)
	_ = binary.Write(&buf, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(binChunk)), ChunkType: gltfGLBChunkBIN})
	buf.Write(binChunk)
	return buf.Bytes()
}

func assertTriangle(t *testing.T, meshes []Mesh) {
	t.Helper()
	require.Len(t, meshes, 1)
	m := meshes[0]
	assert.Equal(t, "tri/0", m.Name)
	assert.Equal(t, "tri/0", m.Model.Name())
	assert.Equal(t, int32(3), m.Model.VertexCount())
	assert.Equal(t, int32(3), m.Model.IndexCount())
	assert.Equal(t, gputypes.PrimitiveTopologyTriangleList, m.Model.Topology())
	assert.Equal(t, common.AABB{Min: [3]float32{0, 0, 0}, Max: [3]float32{1, 1, 0}}, m.Model.Bounds())
	assert.Equal(t, [4]float32{1, 0, 0, 1}, m.BaseColor)
	assert.True(t, m.Blend)
	assert.False(t, m.DoubleSided)
}

func TestLoadReaderDataURI(t *testing.T) {
	l := NewLoader()
	meshes, err := l.LoadReader("tri", bytes.NewReader(triangleDoc(t, dataURI(triangleBin()), nil)), false, "")
	require.NoError(t, err)
	assertTriangle(t, meshes)
}

func TestLoadReaderGLBAndCache(t *testing.T) {
	l := NewLoader()
	glb := buildGLB(triangleDoc(t, "", nil), triangleBin())
	meshes, err := l.LoadReader("tri.glb", bytes.NewReader(glb), true, "")
	require.NoError(t, err)
	assertTriangle(t, meshes)

	again, err := l.LoadReader("tri.glb", strings.NewReader("not read"), true, "")
	require.NoError(t, err)
	assert.Same(t, meshes[0].Model, again[0].Model)
}

func TestLoadFileWithExternalBuffer(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tri.bin"), triangleBin(), 0o600))
	path := filepath.Join(dir, "tri.gltf")
	require.NoError(t, os.WriteFile(path, triangleDoc(t, "tri.bin", nil), 0o600))

	l := NewLoader()
	meshes, err := l.Load(path)
	require.NoError(t, err)
	assertTriangle(t, meshes)
	assert.Equal(t, meshes, l.Get(path))
	assert.Len(t, l.Models(), 1)

	assert.True(t, l.Evict(path))
	assert.False(t, l.Evict(path))
	assert.Nil(t, l.Get(path))
}

func TestLoadGLBFileDetectedByMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tri.bin.asset")
	require.NoError(t, os.WriteFile(path, buildGLB(triangleDoc(t, "", nil), triangleBin()), 0o600))

	meshes, err := NewLoader().Load(path)
	require.NoError(t, err)
	assertTriangle(t, meshes)
}

func TestLoadErrors(t *testing.T) {
	uri := dataURI(triangleBin())
	tests := []struct {
		name string
		edit func(doc map[string]any)
		want error
	}{
		{
			name: "version",
			edit: func(doc map[string]any) { doc["asset"] = map[string]any{"version": "1.0"} },
			want: ErrInvalidGLTF,
		},
		{
			name: "index out of range",
			edit: func(doc map[string]any) {
				doc["accessors"].([]any)[0].(map[string]any)["count"] = 2
				doc["bufferViews"].([]any)[0].(map[string]any)["byteLength"] = 24
			},
			want: ErrInvalidAccessor,
		},
		{
			name: "accessor overruns view",
			edit: func(doc map[string]any) { doc["accessors"].([]any)[0].(map[string]any)["count"] = 4 },
			want: ErrInvalidAccessor,
		},
		{
			name: "positions not float",
			edit: func(doc map[string]any) {
				doc["accessors"].([]any)[0].(map[string]any)["componentType"] = gltfComponentTypeUnsignedInt
			},
			want: ErrInvalidAccessor,
		},
		{
			name: "unknown mode",
			edit: func(doc map[string]any) {
				prims := doc["meshes"].([]any)[0].(map[string]any)["primitives"].([]any)
				prims[0].(map[string]any)["mode"] = 9
			},
			want: ErrInvalidGLTF,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLoader().LoadReader(tc.name, bytes.NewReader(triangleDoc(t, uri, tc.edit)), false, "")
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err := NewLoader().LoadReader("bad glb", bytes.NewReader([]byte("glTFxxxxxxxx")), true, "")
	assert.ErrorIs(t, err, ErrInvalidGLTF)
}

func TestConvertMode(t *testing.T) {
	topo, idx, err := convertMode(gltfPrimitiveModeTriangleFan, nil, 4)
	require.NoError(t, err)
	assert.Equal(t, gputypes.PrimitiveTopologyTriangleList, topo)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, idx)

	topo, idx, err = convertMode(gltfPrimitiveModeLineLoop, []uint32{4, 5, 6}, 7)
	require.NoError(t, err)
	assert.Equal(t, gputypes.PrimitiveTopologyLineList, topo)
	assert.Equal(t, []uint32{4, 5, 5, 6, 6, 4}, idx)

	topo, idx, err = convertMode(gltfPrimitiveModeTriangleStrip, nil, 4)
	require.NoError(t, err)
	assert.Equal(t, gputypes.PrimitiveTopologyTriangleStrip, topo)
	assert.Nil(t, idx)
}

func TestSmoothNormals(t *testing.T) {
	// two triangles of a unit quad in the XY plane, counter-clockwise
	positions := []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}
	normals := smoothNormals(positions, []uint32{0, 1, 2, 0, 2, 3})
	for i := 0; i < 4; i++ {
		assert.InDeltaSlice(t, []float32{0, 0, 1}, normals[i*3:i*3+3], 1e-6)
	}
}

func TestUploadThroughScheduler(t *testing.T) {
	rec := device.NewRecorder()
	l := NewLoader(WithScheduler(device.ImmediateScheduler{Dev: rec}), WithGenerateNormals(false))
	meshes, err := l.LoadReader("tri", bytes.NewReader(triangleDoc(t, dataURI(triangleBin()), nil)), false, "")
	require.NoError(t, err)
	assert.True(t, meshes[0].Model.Uploaded())
	assert.Equal(t, 1, rec.Count(device.OpCreateVertexArray))
}

func TestUnnamedMesh(t *testing.T) {
	doc := triangleDoc(t, dataURI(triangleBin()), func(doc map[string]any) {
		delete(doc["meshes"].([]any)[0].(map[string]any), "name")
	})
	meshes, err := NewLoader().LoadReader("anon", bytes.NewReader(doc), false, "")
	require.NoError(t, err)
	assert.Equal(t, "mesh0/0", meshes[0].Name)
}

func TestPrepopulatedCache(t *testing.T) {
	m := Mesh{Name: "custom"}
	l := NewLoader(WithMeshes("custom", m))
	meshes, err := l.Load("custom")
	require.NoError(t, err)
	assert.Equal(t, []Mesh{m}, meshes)
}
