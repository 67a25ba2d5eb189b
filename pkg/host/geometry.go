package host

import (
	"github.com/chazu/blockbridge/pkg/kernel"
	"github.com/go-gl/mathgl/mgl64"
)

// Point is a point object.
type Point struct {
	Location mgl64.Vec3
}

func (*Point) GeometryKind() GeometryKind { return KindPoint }

// Polyline is an open or closed run of points.
type Polyline struct {
	Points []mgl64.Vec3
	Closed bool
}

func (*Polyline) GeometryKind() GeometryKind { return KindPolyline }

// Face is a mesh face. Triangles repeat their third index: C == D.
type Face struct {
	A, B, C, D int
}

// Triangle returns a three-corner face.
func Triangle(a, b, c int) Face {
	return Face{A: a, B: b, C: c, D: c}
}

// Quad returns a four-corner face.
func Quad(a, b, c, d int) Face {
	return Face{A: a, B: b, C: c, D: d}
}

// IsQuad reports whether the face has four distinct corners.
func (f Face) IsQuad() bool {
	return f.C != f.D
}

// Indices returns the corner indices in winding order.
func (f Face) Indices() []int {
	if f.IsQuad() {
		return []int{f.A, f.B, f.C, f.D}
	}
	return []int{f.A, f.B, f.C}
}

// Mesh is the host polygon mesh. The host indexes texture coordinates and
// colors by vertex, so when present they have one entry per vertex.
type Mesh struct {
	Vertices           []mgl64.Vec3
	Faces              []Face
	TextureCoordinates []mgl64.Vec2
	VertexColors       []int32
}

func (*Mesh) GeometryKind() GeometryKind { return KindMesh }

// Solid is a closed volume held by a geometry kernel.
type Solid struct {
	Shape kernel.Solid
}

func (*Solid) GeometryKind() GeometryKind { return KindSolid }

// InstanceReference places an instance definition. As a top-level document
// object it is an instance object; inside a definition it is a nested block.
type InstanceReference struct {
	DefinitionIndex int
	Xform           Transform
}

func (*InstanceReference) GeometryKind() GeometryKind { return KindInstanceReference }

// InsertionPoint returns the placement origin.
func (r *InstanceReference) InsertionPoint() mgl64.Vec3 {
	return r.Xform.Origin()
}
