package interchange

import (
	"slices"

	vec3d "github.com/flywave/go3d/float64/vec3"
)

// Mesh is a polygon mesh in flat-array form.
//
// Faces is a run of variable-arity records: an arity tag followed by that
// many indices into the vertex triples. Tags 0 and 1 are the legacy
// triangle/quad shorthand for 3 and 4; see FaceArity.
//
// Colors, when present, holds one packed ARGB value per vertex triple.
// TextureCoordinates holds u,v pairs. A mesh whose TextureCoordinatesCount
// differs from VerticesCount maps UVs per face corner rather than per vertex;
// see package topology.
type Mesh struct {
	Base
	Vertices           []float64 `json:"vertices"`
	Faces              []int     `json:"faces"`
	Colors             []int32   `json:"colors,omitempty"`
	TextureCoordinates []float64 `json:"textureCoordinates,omitempty"`
	Bbox               *Box      `json:"bbox,omitempty"`
}

// Box is an axis aligned bounding box.
type Box struct {
	Min [3]float64 `json:"min"`
	Max [3]float64 `json:"max"`
}

func (*Mesh) Kind() Kind { return KindMesh }

// MinFaceCorners is the smallest corner count of a well-formed face record.
// Tags decoding to fewer corners are malformed and end any face scan.
const MinFaceCorners = 3

// FaceArity decodes a face record tag into its corner count. Negative tags
// decode below MinFaceCorners.
func FaceArity(tag int) int {
	if tag < 3 {
		return tag + 3
	}
	return tag
}

// VerticesCount returns the number of x,y,z triples.
func (m *Mesh) VerticesCount() int {
	return len(m.Vertices) / 3
}

// TextureCoordinatesCount returns the number of u,v pairs.
func (m *Mesh) TextureCoordinatesCount() int {
	return len(m.TextureCoordinates) / 2
}

// HasColors reports whether the mesh carries vertex colors.
func (m *Mesh) HasColors() bool {
	return len(m.Colors) > 0
}

// PointAt returns vertex i as a point in the mesh's units.
func (m *Mesh) PointAt(i int) *Point {
	j := i * 3
	return NewPoint(m.Vertices[j], m.Vertices[j+1], m.Vertices[j+2], m.Units)
}

// TextureCoordinateAt returns the i-th u,v pair.
func (m *Mesh) TextureCoordinateAt(i int) (u, v float64) {
	return m.TextureCoordinates[i*2], m.TextureCoordinates[i*2+1]
}

// FaceCount walks the face list and returns the number of complete records.
func (m *Mesh) FaceCount() int {
	count := 0
	for i := 0; i < len(m.Faces); {
		n := FaceArity(m.Faces[i])
		if n < MinFaceCorners || i+n >= len(m.Faces) {
			break
		}
		count++
		i += n + 1
	}
	return count
}

// UpdateBounds recomputes Bbox from the vertex list. An empty mesh has no box.
func (m *Mesh) UpdateBounds() {
	if m.VerticesCount() == 0 {
		m.Bbox = nil
		return
	}
	bbox := vec3d.MinBox
	for i := 0; i < m.VerticesCount(); i++ {
		v := vec3d.T{m.Vertices[i*3], m.Vertices[i*3+1], m.Vertices[i*3+2]}
		bbox.Extend(&v)
	}
	m.Bbox = &Box{
		Min: [3]float64{bbox.Min[0], bbox.Min[1], bbox.Min[2]},
		Max: [3]float64{bbox.Max[0], bbox.Max[1], bbox.Max[2]},
	}
}

// Clone returns a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		Base:               m.Base.clone(),
		Vertices:           slices.Clone(m.Vertices),
		Faces:              slices.Clone(m.Faces),
		Colors:             slices.Clone(m.Colors),
		TextureCoordinates: slices.Clone(m.TextureCoordinates),
	}
	if m.Bbox != nil {
		b := *m.Bbox
		c.Bbox = &b
	}
	return c
}

// CopyHeader returns a mesh sharing nothing with m but its header and
// texture coordinates; geometry arrays are left empty for the caller to fill.
func (m *Mesh) CopyHeader() *Mesh {
	return &Mesh{
		Base:               m.Base.clone(),
		TextureCoordinates: slices.Clone(m.TextureCoordinates),
	}
}
