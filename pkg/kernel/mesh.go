package kernel

// Mesh is the triangle soup a kernel produces. Vertices holds x,y,z per
// vertex; Indices holds three vertex indices per triangle.
type Mesh struct {
	Vertices []float64
	Indices  []int
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}
