package model

import "github.com/gogpu/gputypes"

// ModelBuilderOption is a functional option for configuring a Model via NewModel.
type ModelBuilderOption func(*model)

// WithName is an option builder that sets the name of the Model.
//
// Parameters:
//   - name: the model identifier
//
// Returns:
//   - ModelBuilderOption: a function that applies the name option to a model
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithVertices sets lit vertices and computes the bounds from their positions.
//
// Parameters:
//   - vertices: the vertices
//
// Returns:
//   - ModelBuilderOption: a function that applies the vertices option to a model
func WithVertices(vertices []GPUVertex) ModelBuilderOption {
	return func(m *model) {
		m.layout = GPUVertexLayout
		m.vertexCount = int32(len(vertices))
		m.vertexData = make([]byte, 0, len(vertices)*int(GPUVertexLayout.Stride))
		positions := make([][3]float32, len(vertices))
		for i := range vertices {
			m.vertexData = append(m.vertexData, vertices[i].Marshal()...)
			positions[i] = vertices[i].Position
		}
		m.bounds = boundsOf(positions)
	}
}

// WithColorVertices sets immediate-mode vertices and computes the bounds from their positions.
//
// Parameters:
//   - vertices: the vertices
//
// Returns:
//   - ModelBuilderOption: a function that applies the vertices option to a model
func WithColorVertices(vertices []GPUColorVertex) ModelBuilderOption {
	return func(m *model) {
		m.layout = GPUColorVertexLayout
		m.vertexCount = int32(len(vertices))
		m.vertexData = make([]byte, 0, len(vertices)*int(GPUColorVertexLayout.Stride))
		positions := make([][3]float32, len(vertices))
		for i := range vertices {
			m.vertexData = append(m.vertexData, vertices[i].Marshal()...)
			positions[i] = vertices[i].Position
		}
		m.bounds = boundsOf(positions)
	}
}

// WithIndices makes the model indexed. The element format is uint16 unless the vertex
// count needs uint32.
//
// Parameters:
//   - indices: the element indices
//
// Returns:
//   - ModelBuilderOption: a function that applies the indices option to a model
func WithIndices(indices []uint32) ModelBuilderOption {
	return func(m *model) {
		m.indices = indices
	}
}

// WithTopology sets the primitive topology. Defaults to triangle lists.
//
// Parameters:
//   - topology: the topology
//
// Returns:
//   - ModelBuilderOption: a function that applies the topology option to a model
func WithTopology(topology gputypes.PrimitiveTopology) ModelBuilderOption {
	return func(m *model) {
		m.topology = topology
	}
}
