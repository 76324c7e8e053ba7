package simplify

// Mesh references caller-owned buffers for the duration of a single call.
// The handler never copies or retains them.
type Mesh struct {
	// Indices is the triangle list, three entries per triangle.
	Indices []uint32

	// Positions holds 3 floats per vertex at PositionStride byte
	// intervals, allowing interleaved vertex formats.
	Positions      []float32
	VertexCount    int
	PositionStride int

	// UVs is optional; nil means the mesh carries no UV channel.
	UVs      []float32
	UVStride int
}

func (m *Mesh) hasUVs() bool {
	return m.UVs != nil
}
