package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrInvalidGLTF is returned for documents that are not glTF 2.0.
	ErrInvalidGLTF = errors.New("invalid glTF document")
	// ErrInvalidAccessor is returned when an accessor does not match its use or
	// points outside its buffer.
	ErrInvalidAccessor = errors.New("invalid glTF accessor")
)

// gltfParser decodes a glTF or GLB document and reads typed accessor data from it.
type gltfParser struct {
	baseDir  string
	document *gltfDocument
	glbBin   []byte
}

// parseFile loads a .gltf or .glb file. Relative buffer URIs resolve against the file's
// directory.
func parseFile(path string) (*gltfParser, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	isGLB := strings.EqualFold(filepath.Ext(path), ".glb") ||
		(len(data) >= 4 && binary.LittleEndian.Uint32(data[:4]) == gltfGLBMagic)
	return parseBytes(data, isGLB, filepath.Dir(path))
}

// parseReader decodes a document from r. External buffer URIs resolve against baseDir.
func parseReader(r io.Reader, isGLB bool, baseDir string) (*gltfParser, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read glTF data: %w", err)
	}
	return parseBytes(data, isGLB, baseDir)
}

func parseBytes(data []byte, isGLB bool, baseDir string) (*gltfParser, error) {
	p := &gltfParser{baseDir: baseDir}
	jsonData := data
	if isGLB {
		var err error
		if jsonData, p.glbBin, err = splitGLB(data); err != nil {
			return nil, err
		}
	}

	var doc gltfDocument
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGLTF, err)
	}
	if !strings.HasPrefix(doc.Asset.Version, "2.") {
		return nil, fmt.Errorf("%w: version %q", ErrInvalidGLTF, doc.Asset.Version)
	}
	p.document = &doc

	if err := p.loadBuffers(); err != nil {
		return nil, err
	}
	return p, nil
}

// splitGLB returns the JSON and BIN chunks of a GLB container.
func splitGLB(data []byte) (jsonChunk, binChunk []byte, err error) {
	r := bytes.NewReader(data)
	var header gltfGLBHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, nil, fmt.Errorf("%w: GLB header: %v", ErrInvalidGLTF, err)
	}
	if header.Magic != gltfGLBMagic || header.Version != gltfGLBVersion {
		return nil, nil, fmt.Errorf("%w: GLB magic %#x version %d", ErrInvalidGLTF, header.Magic, header.Version)
	}

	for {
		var chunk gltfGLBChunkHeader
		if err := binary.Read(r, binary.LittleEndian, &chunk); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, nil, fmt.Errorf("%w: GLB chunk header: %v", ErrInvalidGLTF, err)
		}
		body := make([]byte, chunk.ChunkLength)
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, nil, fmt.Errorf("%w: GLB chunk: %v", ErrInvalidGLTF, err)
		}
		switch chunk.ChunkType {
		case gltfGLBChunkJSON:
			jsonChunk = body
		case gltfGLBChunkBIN:
			binChunk = body
		}
	}
	if jsonChunk == nil {
		return nil, nil, fmt.Errorf("%w: GLB without JSON chunk", ErrInvalidGLTF)
	}
	return jsonChunk, binChunk, nil
}

// loadBuffers resolves every buffer from a data URI, a file or the GLB binary chunk.
func (p *gltfParser) loadBuffers() error {
	for i := range p.document.Buffers {
		buf := &p.document.Buffers[i]
		switch {
		case buf.URI == "" && i == 0 && p.glbBin != nil:
			buf.data = p.glbBin
		case buf.URI == "":
			return fmt.Errorf("%w: buffer %d has no data", ErrInvalidGLTF, i)
		case strings.HasPrefix(buf.URI, "data:"):
			data, err := decodeDataURI(buf.URI)
			if err != nil {
				return fmt.Errorf("buffer %d: %w", i, err)
			}
			buf.data = data
		default:
			data, err := os.ReadFile(filepath.Join(p.baseDir, buf.URI))
			if err != nil {
				return fmt.Errorf("buffer %d: %w", i, err)
			}
			buf.data = data
		}
		if len(buf.data) < buf.ByteLength {
			return fmt.Errorf("%w: buffer %d holds %d bytes, want %d", ErrInvalidGLTF, i, len(buf.data), buf.ByteLength)
		}
	}
	return nil
}

// decodeDataURI decodes data:[<mediatype>];base64,<data>.
func decodeDataURI(uri string) ([]byte, error) {
	header, payload, ok := strings.Cut(uri[len("data:"):], ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("%w: unsupported data URI", ErrInvalidGLTF)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGLTF, err)
	}
	return data, nil
}

// accessor returns the accessor at index with its elements packed tightly.
func (p *gltfParser) accessor(index int) (*gltfAccessor, []byte, error) {
	doc := p.document
	if index < 0 || index >= len(doc.Accessors) {
		return nil, nil, fmt.Errorf("%w: index %d out of range", ErrInvalidAccessor, index)
	}
	acc := &doc.Accessors[index]
	if acc.Sparse != nil {
		return nil, nil, fmt.Errorf("%w: sparse accessor %d", ErrInvalidAccessor, index)
	}
	if acc.BufferView == nil || *acc.BufferView < 0 || *acc.BufferView >= len(doc.BufferViews) {
		return nil, nil, fmt.Errorf("%w: accessor %d has no buffer view", ErrInvalidAccessor, index)
	}
	bv := &doc.BufferViews[*acc.BufferView]
	if bv.Buffer < 0 || bv.Buffer >= len(doc.Buffers) {
		return nil, nil, fmt.Errorf("%w: buffer view %d has no buffer", ErrInvalidAccessor, *acc.BufferView)
	}
	src := doc.Buffers[bv.Buffer].data

	elemSize := gltfComponentTypeSize(acc.ComponentType) * gltfAccessorTypeComponentCount(acc.Type)
	if elemSize == 0 {
		return nil, nil, fmt.Errorf("%w: accessor %d has type %s/%d", ErrInvalidAccessor, index, acc.Type, acc.ComponentType)
	}
	stride := elemSize
	if bv.ByteStride != nil && *bv.ByteStride > 0 {
		stride = *bv.ByteStride
	}

	start := bv.ByteOffset + acc.ByteOffset
	if acc.Count > 0 {
		end := start + (acc.Count-1)*stride + elemSize
		if end > bv.ByteOffset+bv.ByteLength || end > len(src) {
			return nil, nil, fmt.Errorf("%w: accessor %d overruns its buffer view", ErrInvalidAccessor, index)
		}
	}

	out := make([]byte, acc.Count*elemSize)
	for i := 0; i < acc.Count; i++ {
		off := start + i*stride
		copy(out[i*elemSize:(i+1)*elemSize], src[off:off+elemSize])
	}
	return acc, out, nil
}

// readFloats reads a FLOAT accessor of the given type as a flat slice.
func (p *gltfParser) readFloats(index int, accessorType string) ([]float32, error) {
	acc, data, err := p.accessor(index)
	if err != nil {
		return nil, err
	}
	if acc.Type != accessorType || acc.ComponentType != gltfComponentTypeFloat {
		return nil, fmt.Errorf("%w: accessor %d is %s/%d, want %s FLOAT", ErrInvalidAccessor, index, acc.Type, acc.ComponentType, accessorType)
	}
	out := make([]float32, len(data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return out, nil
}

// readIndices reads an unsigned SCALAR accessor widened to uint32.
func (p *gltfParser) readIndices(index int) ([]uint32, error) {
	acc, data, err := p.accessor(index)
	if err != nil {
		return nil, err
	}
	if acc.Type != gltfAccessorTypeScalar {
		return nil, fmt.Errorf("%w: index accessor %d is %s", ErrInvalidAccessor, index, acc.Type)
	}

	out := make([]uint32, acc.Count)
	switch acc.ComponentType {
	case gltfComponentTypeUnsignedByte:
		for i := range out {
			out[i] = uint32(data[i])
		}
	case gltfComponentTypeUnsignedShort:
		for i := range out {
			out[i] = uint32(binary.LittleEndian.Uint16(data[i*2:]))
		}
	case gltfComponentTypeUnsignedInt:
		for i := range out {
			out[i] = binary.LittleEndian.Uint32(data[i*4:])
		}
	default:
		return nil, fmt.Errorf("%w: index component type %d", ErrInvalidAccessor, acc.ComponentType)
	}
	return out, nil
}
