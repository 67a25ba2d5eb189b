package interchange

import "github.com/chazu/blockbridge/pkg/units"

// Point is a location in space.
type Point struct {
	Base
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// NewPoint returns a point in the given units.
func NewPoint(x, y, z float64, u units.Unit) *Point {
	return &Point{Base: Base{Units: u}, X: x, Y: y, Z: z}
}

func (*Point) Kind() Kind { return KindPoint }

// Array returns the coordinates as a fixed array.
func (p *Point) Array() [3]float64 {
	return [3]float64{p.X, p.Y, p.Z}
}

// Polyline is an ordered run of points stored flat as x,y,z triples.
type Polyline struct {
	Base
	Value  []float64 `json:"value"`
	Closed bool      `json:"closed"`
}

func (*Polyline) Kind() Kind { return KindPolyline }

// PointCount returns the number of points in the polyline.
func (p *Polyline) PointCount() int {
	return len(p.Value) / 3
}

// PointAt returns the i-th point.
func (p *Polyline) PointAt(i int) *Point {
	j := i * 3
	return NewPoint(p.Value[j], p.Value[j+1], p.Value[j+2], p.Units)
}
