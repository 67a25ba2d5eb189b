package convert

import (
	"fmt"

	"github.com/chazu/blockbridge/pkg/host"
	"github.com/chazu/blockbridge/pkg/interchange"
	"github.com/chazu/blockbridge/pkg/kernel"
	"github.com/go-gl/mathgl/mgl64"
)

func pointToInterchange(ctx *Context, g host.Geometry) (interchange.Object, error) {
	p := g.(*host.Point)
	return vecToPoint(ctx, p.Location), nil
}

func vecToPoint(ctx *Context, v mgl64.Vec3) *interchange.Point {
	return interchange.NewPoint(v.X(), v.Y(), v.Z(), ctx.ModelUnits)
}

func pointToHost(ctx *Context, o interchange.Object) (host.Geometry, error) {
	return &host.Point{Location: pointToVec(ctx, o.(*interchange.Point))}, nil
}

// pointToVec returns p in host coordinates.
func pointToVec(ctx *Context, p *interchange.Point) mgl64.Vec3 {
	return ctx.vecToNative(p.X, p.Y, p.Z, p.Units)
}

func polylineToInterchange(ctx *Context, g host.Geometry) (interchange.Object, error) {
	pl := g.(*host.Polyline)
	if len(pl.Points) < 2 {
		return nil, fmt.Errorf("%w: polyline has %d points", ErrEmptyResult, len(pl.Points))
	}
	out := &interchange.Polyline{
		Value:  make([]float64, 0, len(pl.Points)*3),
		Closed: pl.Closed,
	}
	out.Units = ctx.ModelUnits
	for _, p := range pl.Points {
		out.Value = append(out.Value, p.X(), p.Y(), p.Z())
	}
	return out, nil
}

func polylineToHost(ctx *Context, o interchange.Object) (host.Geometry, error) {
	pl := o.(*interchange.Polyline)
	if pl.PointCount() < 2 {
		return nil, fmt.Errorf("%w: polyline has %d points", ErrEmptyResult, pl.PointCount())
	}
	out := &host.Polyline{
		Points: make([]mgl64.Vec3, pl.PointCount()),
		Closed: pl.Closed,
	}
	for i := range out.Points {
		j := i * 3
		out.Points[i] = ctx.vecToNative(pl.Value[j], pl.Value[j+1], pl.Value[j+2], pl.Units)
	}
	return out, nil
}

// solidToInterchange exports solids as triangle meshes tessellated by k.
func solidToInterchange(k kernel.Kernel) ToInterchangeFunc {
	return func(ctx *Context, g host.Geometry) (interchange.Object, error) {
		s := g.(*host.Solid)
		if s.Shape == nil {
			return nil, fmt.Errorf("%w: solid has no shape", ErrEmptyResult)
		}
		km, err := k.ToMesh(s.Shape)
		if err != nil {
			return nil, fmt.Errorf("convert: tessellate solid: %w", err)
		}
		if km.IsEmpty() {
			return nil, fmt.Errorf("%w: solid tessellated to nothing", ErrEmptyResult)
		}

		m := &interchange.Mesh{
			Vertices: km.Vertices,
			Faces:    make([]int, 0, km.TriangleCount()*4),
		}
		m.Units = ctx.ModelUnits
		for t := 0; t < km.TriangleCount(); t++ {
			i := t * 3
			m.Faces = append(m.Faces, 3, km.Indices[i], km.Indices[i+1], km.Indices[i+2])
		}
		m.UpdateBounds()
		return m, nil
	}
}
