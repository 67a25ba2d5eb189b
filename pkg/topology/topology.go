// Package topology converts meshes between the shared-vertex convention,
// where several face corners reference one vertex, and the per-corner
// convention, where every corner owns its vertex record. Hosts that index
// texture coordinates by vertex need the per-corner form whenever an
// incoming mesh carries one UV per face corner.
package topology

import (
	"fmt"

	"github.com/chazu/blockbridge/pkg/interchange"
)

// Report describes how much of the input face list was consumed.
type Report struct {
	Truncated bool   // a malformed record stopped the scan
	Offset    int    // index in Faces of the record that stopped the scan
	Discarded int    // face list entries left unread
	Reason    string // why the record was rejected
}

// Warning renders a truncated report as a validation warning. ok is false
// when nothing was truncated.
func (r Report) Warning() (w interchange.ValidationWarning, ok bool) {
	if !r.Truncated {
		return w, false
	}
	return interchange.ValidationWarning{
		Kind:    interchange.KindMesh,
		Message: fmt.Sprintf("face list truncated at %d (%d values discarded): %s", r.Offset, r.Discarded, r.Reason),
	}, true
}

// NeedsAlignment reports whether m carries texture coordinates that are not
// aligned 1:1 with its vertices.
func NeedsAlignment(m *interchange.Mesh) bool {
	tc := m.TextureCoordinatesCount()
	return tc != 0 && tc != m.VerticesCount()
}

// Normalize returns m in per-corner form: each face corner gets a fresh
// vertex record, in face order, so that corner k of the output lines up with
// texture coordinate k. Colors follow their vertices.
//
// Meshes without texture coordinates, or whose texture coordinates already
// match the vertex count, are returned as is. Otherwise a new mesh is
// returned and m is left untouched; its texture coordinates are copied
// over unchanged.
//
// A face record whose tag decodes to fewer than three corners, that declares
// more corners than remain in the face list, or that references a vertex
// outside the vertex list, ends the scan. Records
// read so far are kept and the rest of the list is dropped; the returned
// Report says where.
func Normalize(m *interchange.Mesh) (*interchange.Mesh, Report) {
	var rep Report
	if !NeedsAlignment(m) {
		return m, rep
	}

	tc := m.TextureCoordinatesCount()
	vc := m.VerticesCount()
	hasColors := m.HasColors()

	out := m.CopyHeader()
	out.Faces = make([]int, 0, len(m.Faces))
	out.Vertices = make([]float64, 0, tc*3)
	if hasColors {
		out.Colors = make([]int32, 0, tc)
	}

	stop := func(at int, reason string) {
		rep = Report{
			Truncated: true,
			Offset:    at,
			Discarded: len(m.Faces) - at,
			Reason:    reason,
		}
	}

	cursor := 0
scan:
	for cursor < len(m.Faces) {
		n := interchange.FaceArity(m.Faces[cursor])
		if n < interchange.MinFaceCorners {
			stop(cursor, fmt.Sprintf("record tag %d decodes to %d corners", m.Faces[cursor], n))
			break
		}
		if cursor+n >= len(m.Faces) {
			stop(cursor, fmt.Sprintf("record declares %d corners, %d values remain", n, len(m.Faces)-cursor-1))
			break
		}

		corners := m.Faces[cursor+1 : cursor+n+1]
		for _, idx := range corners {
			if idx < 0 || idx >= vc || (hasColors && idx >= len(m.Colors)) {
				stop(cursor, fmt.Sprintf("corner references vertex %d of %d", idx, vc))
				break scan
			}
		}

		out.Faces = append(out.Faces, n)
		for _, idx := range corners {
			next := len(out.Vertices) / 3
			x := idx * 3
			out.Vertices = append(out.Vertices, m.Vertices[x], m.Vertices[x+1], m.Vertices[x+2])
			if hasColors {
				out.Colors = append(out.Colors, m.Colors[idx])
			}
			out.Faces = append(out.Faces, next)
		}

		cursor += n + 1
	}

	if m.Bbox != nil {
		out.UpdateBounds()
	}
	return out, rep
}
