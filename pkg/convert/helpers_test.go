package convert

import (
	"github.com/chazu/blockbridge/pkg/host"
	"github.com/chazu/blockbridge/pkg/host/memdoc"
	"github.com/chazu/blockbridge/pkg/interchange"
	"github.com/chazu/blockbridge/pkg/kernel"
	"github.com/chazu/blockbridge/pkg/units"
	"github.com/google/uuid"
)

// stubSolid and stubKernel stand in for a real geometry kernel.
type stubSolid struct{}

func (stubSolid) BoundingBox() (min, max [3]float64) {
	return [3]float64{}, [3]float64{1, 1, 1}
}

type stubKernel struct{}

func (stubKernel) Box(x, y, z float64) kernel.Solid { return stubSolid{} }
func (stubKernel) Cylinder(height, radius float64) kernel.Solid { return stubSolid{} }
func (stubKernel) Union(a, b kernel.Solid) kernel.Solid { return stubSolid{} }
func (stubKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid { return s }
func (stubKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid { return s }

// ToMesh returns a tetrahedron.
func (stubKernel) ToMesh(kernel.Solid) (*kernel.Mesh, error) {
	return &kernel.Mesh{
		Vertices: []float64{0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 1},
		Indices:  []int{0, 2, 1, 0, 1, 3, 1, 2, 3, 0, 3, 2},
	}, nil
}

// unsupportedGeometry has a kind no converter is registered for.
type unsupportedGeometry struct{}

func (unsupportedGeometry) GeometryKind() host.GeometryKind { return host.GeometryKind(99) }

// rejectingDoc refuses to place instances.
type rejectingDoc struct {
	*memdoc.Document
}

func (d rejectingDoc) Objects() host.ObjectTable {
	return rejectingObjects{d.Document.Objects()}
}

type rejectingObjects struct {
	host.ObjectTable
}

func (rejectingObjects) AddInstance(int, host.Transform) uuid.UUID { return uuid.Nil }

func newTestContext(doc host.Document, commit string) *Context {
	return NewContext(doc, commit, units.Millimeters)
}

// chairDefinition is an interchange definition with a point on a tagged
// layer and a polyline without a layer.
func chairDefinition() *interchange.BlockDefinition {
	p := interchange.NewPoint(1, 2, 3, units.Millimeters)
	p.Set(interchange.LayerAttr, "Furniture::Legs")
	pl := &interchange.Polyline{Value: []float64{0, 0, 0, 10, 0, 0}}
	pl.Units = units.Millimeters
	return &interchange.BlockDefinition{
		Name:      "Chair",
		BasePoint: interchange.NewPoint(0, 0, 0, units.Millimeters),
		Geometry:  []interchange.Object{p, pl},
	}
}
