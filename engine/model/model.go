// Package model holds mesh data and its vertex array. Upload to the device is scheduled
// as a hardware operation.
package model

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-rendergraph/common"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/device"
	"github.com/gogpu/gputypes"
)

// model is the implementation of the Model interface.
type model struct {
	mu *sync.Mutex

	name        string
	layout      device.VertexLayout
	vertexData  []byte
	vertexCount int32
	indices     []uint32
	topology    gputypes.PrimitiveTopology
	bounds      common.AABB

	va       *device.VertexArray
	uploaded bool
}

// Model is a mesh: interleaved vertices, optional indices and the vertex array they are
// uploaded into.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// VertexArray returns the vertex array handle. It is valid for ordering before upload.
	//
	// Returns:
	//   - *device.VertexArray: the handle
	VertexArray() *device.VertexArray

	// Slice returns the vertex range covering the whole mesh. For indexed meshes Count is
	// 0, which draws the whole element buffer.
	//
	// Returns:
	//   - device.VertexArraySlice: the range
	Slice() device.VertexArraySlice

	// Topology returns the primitive topology.
	//
	// Returns:
	//   - gputypes.PrimitiveTopology: the topology
	Topology() gputypes.PrimitiveTopology

	// Bounds returns the model-space bounding box.
	//
	// Returns:
	//   - common.AABB: the box
	Bounds() common.AABB

	// Layout returns the vertex layout.
	//
	// Returns:
	//   - device.VertexLayout: the layout
	Layout() device.VertexLayout

	// VertexCount returns the number of vertices.
	//
	// Returns:
	//   - int32: the count
	VertexCount() int32

	// IndexCount returns the number of indices, 0 for non-indexed meshes.
	//
	// Returns:
	//   - int32: the count
	IndexCount() int32

	// Upload schedules creation of the vertex array on the device. Later calls do nothing.
	//
	// Parameters:
	//   - sched: where the device operation runs
	//
	// Returns:
	//   - bool: true if the upload was scheduled by this call
	Upload(sched device.Scheduler) bool

	// Uploaded reports whether Upload was called.
	//
	// Returns:
	//   - bool: true once scheduled
	Uploaded() bool
}

var _ Model = &model{}

// NewModel creates a model from the given options. Without vertices the model is empty.
//
// Parameters:
//   - options: functional options to configure the model
//
// Returns:
//   - Model: the model
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{
		mu:       &sync.Mutex{},
		layout:   GPUVertexLayout,
		topology: gputypes.PrimitiveTopologyTriangleList,
	}
	for _, option := range options {
		option(m)
	}
	if len(m.indices) > 0 {
		m.va = device.NewIndexedVertexArray(m.indexFormat(), int32(len(m.indices)))
	} else {
		m.va = device.NewVertexArray()
	}
	return m
}

func (m *model) indexFormat() gputypes.IndexFormat {
	if m.vertexCount > 0xFFFF {
		return gputypes.IndexFormatUint32
	}
	return gputypes.IndexFormatUint16
}

func (m *model) Name() string {
	return m.name
}

func (m *model) VertexArray() *device.VertexArray {
	return m.va
}

func (m *model) Slice() device.VertexArraySlice {
	if m.va.Indexed {
		return device.VertexArraySlice{VA: m.va}
	}
	return device.VertexArraySlice{VA: m.va, Count: m.vertexCount}
}

func (m *model) Topology() gputypes.PrimitiveTopology {
	return m.topology
}

func (m *model) Bounds() common.AABB {
	return m.bounds
}

func (m *model) Layout() device.VertexLayout {
	return m.layout
}

func (m *model) VertexCount() int32 {
	return m.vertexCount
}

func (m *model) IndexCount() int32 {
	return int32(len(m.indices))
}

func (m *model) Upload(sched device.Scheduler) bool {
	m.mu.Lock()
	if m.uploaded {
		m.mu.Unlock()
		return false
	}
	m.uploaded = true
	va, layout, vertices := m.va, m.layout, m.vertexData
	var indices []byte
	if va.Indexed {
		indices = marshalIndices(m.indices, va.IndexFormat == gputypes.IndexFormatUint32)
	}
	m.mu.Unlock()

	sched.ScheduleHwOp(func(dev device.Device) {
		dev.CreateVertexArray(va, layout, vertices, indices)
	})
	return true
}

func (m *model) Uploaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.uploaded
}

// boundsOf returns the box around positions.
func boundsOf(positions [][3]float32) common.AABB {
	if len(positions) == 0 {
		return common.AABB{}
	}
	box := common.AABB{Min: positions[0], Max: positions[0]}
	for _, p := range positions[1:] {
		for i := range 3 {
			box.Min[i] = min(box.Min[i], p[i])
			box.Max[i] = max(box.Max[i], p[i])
		}
	}
	return box
}
