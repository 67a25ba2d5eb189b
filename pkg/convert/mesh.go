package convert

import (
	"fmt"

	"github.com/chazu/blockbridge/pkg/host"
	"github.com/chazu/blockbridge/pkg/interchange"
	"github.com/chazu/blockbridge/pkg/topology"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// meshToInterchange writes faces with literal arities. Host texture
// coordinates and colors are per vertex, so the result is already aligned.
func meshToInterchange(ctx *Context, g host.Geometry) (interchange.Object, error) {
	hm := g.(*host.Mesh)
	if len(hm.Vertices) == 0 || len(hm.Faces) == 0 {
		return nil, fmt.Errorf("%w: mesh has no faces", ErrEmptyResult)
	}

	m := &interchange.Mesh{
		Vertices: make([]float64, 0, len(hm.Vertices)*3),
		Faces:    make([]int, 0, len(hm.Faces)*5),
	}
	m.Units = ctx.ModelUnits

	for _, v := range hm.Vertices {
		m.Vertices = append(m.Vertices, v.X(), v.Y(), v.Z())
	}
	for _, f := range hm.Faces {
		idx := f.Indices()
		m.Faces = append(m.Faces, len(idx))
		m.Faces = append(m.Faces, idx...)
	}
	if len(hm.TextureCoordinates) == len(hm.Vertices) {
		m.TextureCoordinates = make([]float64, 0, len(hm.TextureCoordinates)*2)
		for _, uv := range hm.TextureCoordinates {
			m.TextureCoordinates = append(m.TextureCoordinates, uv.X(), uv.Y())
		}
	}
	if len(hm.VertexColors) == len(hm.Vertices) {
		m.Colors = append([]int32(nil), hm.VertexColors...)
	}
	m.UpdateBounds()
	return m, nil
}

// meshToHost aligns vertices with texture coordinates before indexing
// them. Faces with more than four corners are split into a triangle fan.
func meshToHost(ctx *Context, o interchange.Object) (host.Geometry, error) {
	m, rep := topology.Normalize(o.(*interchange.Mesh))
	if w, ok := rep.Warning(); ok {
		ctx.log().Warn("mesh face list truncated",
			zap.String("applicationId", m.ApplicationID),
			zap.Int("offset", rep.Offset),
			zap.Int("discarded", rep.Discarded),
			zap.String("detail", w.Message),
		)
	}

	vc := m.VerticesCount()
	hm := &host.Mesh{Vertices: make([]mgl64.Vec3, vc)}
	for i := range hm.Vertices {
		j := i * 3
		hm.Vertices[i] = ctx.vecToNative(m.Vertices[j], m.Vertices[j+1], m.Vertices[j+2], m.Units)
	}

	for i := 0; i < len(m.Faces); {
		n := interchange.FaceArity(m.Faces[i])
		if n < interchange.MinFaceCorners {
			ctx.log().Debug("dropping malformed face record", zap.Int("offset", i), zap.Int("tag", m.Faces[i]))
			break
		}
		if i+n >= len(m.Faces) {
			ctx.log().Debug("dropping overrunning face record", zap.Int("offset", i))
			break
		}
		corners := m.Faces[i+1 : i+1+n]
		i += n + 1
		if !inRange(corners, vc) {
			ctx.log().Debug("dropping face with out of range index", zap.Ints("corners", corners))
			continue
		}
		switch n {
		case 3:
			hm.Faces = append(hm.Faces, host.Triangle(corners[0], corners[1], corners[2]))
		case 4:
			hm.Faces = append(hm.Faces, host.Quad(corners[0], corners[1], corners[2], corners[3]))
		default:
			for k := 1; k+1 < n; k++ {
				hm.Faces = append(hm.Faces, host.Triangle(corners[0], corners[k], corners[k+1]))
			}
		}
	}
	if len(hm.Faces) == 0 {
		return nil, fmt.Errorf("%w: mesh has no usable faces", ErrEmptyResult)
	}

	// A truncated scan leaves more texture coordinates than vertices; the
	// leading ones still belong to the corners that were kept.
	if tc := m.TextureCoordinatesCount(); tc >= vc && tc > 0 {
		hm.TextureCoordinates = make([]mgl64.Vec2, vc)
		for i := range hm.TextureCoordinates {
			u, v := m.TextureCoordinateAt(i)
			hm.TextureCoordinates[i] = mgl64.Vec2{u, v}
		}
	} else if tc > 0 {
		ctx.log().Debug("dropping texture coordinates", zap.Int("uvs", tc), zap.Int("vertices", vc))
	}
	if len(m.Colors) == vc {
		hm.VertexColors = append([]int32(nil), m.Colors...)
	}
	return hm, nil
}

func inRange(corners []int, n int) bool {
	for _, c := range corners {
		if c < 0 || c >= n {
			return false
		}
	}
	return true
}
