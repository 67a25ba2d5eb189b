// Package tessellate flattens host objects into world-space triangle meshes.
// Instance references are expanded through their definitions, so a block
// placed twice yields its meshes twice. One mesh is produced per mesh or
// solid object; points and polylines carry no surface and are skipped.
package tessellate

import (
	"fmt"
	"slices"
	"strings"

	"github.com/chazu/blockbridge/pkg/host"
	"github.com/chazu/blockbridge/pkg/kernel"
	"github.com/go-gl/mathgl/mgl64"
)

// Part is one flattened mesh.
type Part struct {
	// Name is the chain of definition names the mesh was reached through,
	// joined by "/", followed by the object name when it has one.
	Name  string
	Layer int
	Mesh  *kernel.Mesh
}

// transformStack accumulates instance placements during traversal.
type transformStack struct {
	xforms []host.Transform
	defs   []int
	names  []string
}

func (ts *transformStack) push(defIndex int, name string, x host.Transform) {
	ts.xforms = append(ts.xforms, x)
	ts.defs = append(ts.defs, defIndex)
	ts.names = append(ts.names, name)
}

func (ts *transformStack) pop() {
	if n := len(ts.xforms); n > 0 {
		ts.xforms = ts.xforms[:n-1]
		ts.defs = ts.defs[:n-1]
		ts.names = ts.names[:n-1]
	}
}

// accumulated returns the outermost placement times every inner one.
func (ts *transformStack) accumulated() host.Transform {
	acc := host.Identity()
	for _, x := range ts.xforms {
		acc = acc.Mul(x)
	}
	return acc
}

func (ts *transformStack) entered(defIndex int) bool {
	return slices.Contains(ts.defs, defIndex)
}

// Tessellate flattens objs, resolving instance references against doc.
// Solids are meshed with k; a nil k makes any solid an error. The
// tessellator is read-only and never mutates the document.
func Tessellate(doc host.Document, objs []*host.Object, k kernel.Kernel) ([]Part, error) {
	var parts []Part
	ts := &transformStack{}

	for _, obj := range objs {
		collected, err := walkObject(doc, k, obj, ts)
		if err != nil {
			return nil, fmt.Errorf("tessellate: object %s: %w", shortID(obj), err)
		}
		parts = append(parts, collected...)
	}
	return parts, nil
}

// walkObject dispatches on the geometry kind of obj.
func walkObject(doc host.Document, k kernel.Kernel, obj *host.Object, ts *transformStack) ([]Part, error) {
	switch g := obj.Geometry.(type) {
	case *host.Mesh:
		return []Part{{Name: partName(obj, ts), Layer: obj.Attributes.LayerIndex, Mesh: hostMesh(g, ts.accumulated())}}, nil

	case *host.Solid:
		return handleSolid(k, obj, g, ts)

	case *host.InstanceReference:
		return handleInstance(doc, k, g, ts)

	case *host.Point, *host.Polyline:
		return nil, nil

	default:
		return nil, fmt.Errorf("unsupported geometry %T", obj.Geometry)
	}
}

func handleSolid(k kernel.Kernel, obj *host.Object, s *host.Solid, ts *transformStack) ([]Part, error) {
	if k == nil {
		return nil, fmt.Errorf("solid without a geometry kernel")
	}
	m, err := k.ToMesh(s.Shape)
	if err != nil {
		return nil, fmt.Errorf("ToMesh failed: %w", err)
	}
	applyTransform(m, ts.accumulated())
	return []Part{{Name: partName(obj, ts), Layer: obj.Attributes.LayerIndex, Mesh: m}}, nil
}

// handleInstance pushes the placement, recurses into the definition, then pops.
func handleInstance(doc host.Document, k kernel.Kernel, ref *host.InstanceReference, ts *transformStack) ([]Part, error) {
	def, ok := doc.Definitions().Get(ref.DefinitionIndex)
	if !ok {
		return nil, fmt.Errorf("definition %d not found", ref.DefinitionIndex)
	}
	if ts.entered(def.Index) {
		return nil, fmt.Errorf("definition %q contains itself", def.Name)
	}

	ts.push(def.Index, def.Name, ref.Xform)
	defer ts.pop()

	var parts []Part
	for _, child := range def.Objects {
		collected, err := walkObject(doc, k, child, ts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", def.Name, err)
		}
		parts = append(parts, collected...)
	}
	return parts, nil
}

// hostMesh triangulates a host mesh: quads split along the A-C diagonal.
func hostMesh(m *host.Mesh, xf host.Transform) *kernel.Mesh {
	out := &kernel.Mesh{
		Vertices: make([]float64, 0, len(m.Vertices)*3),
		Indices:  make([]int, 0, len(m.Faces)*6),
	}
	for _, v := range m.Vertices {
		out.Vertices = append(out.Vertices, v.X(), v.Y(), v.Z())
	}
	for _, f := range m.Faces {
		out.Indices = append(out.Indices, f.A, f.B, f.C)
		if f.IsQuad() {
			out.Indices = append(out.Indices, f.A, f.C, f.D)
		}
	}
	applyTransform(out, xf)
	return out
}

func applyTransform(m *kernel.Mesh, xf host.Transform) {
	if xf.IsIdentity() {
		return
	}
	for i := 0; i+2 < len(m.Vertices); i += 3 {
		p := xf.Apply(mgl64.Vec3{m.Vertices[i], m.Vertices[i+1], m.Vertices[i+2]})
		m.Vertices[i], m.Vertices[i+1], m.Vertices[i+2] = p.X(), p.Y(), p.Z()
	}
}

// partName prefers the definition chain plus the object name, falling back
// to the short object ID.
func partName(obj *host.Object, ts *transformStack) string {
	names := slices.Clone(ts.names)
	if obj.Attributes.Name != "" {
		names = append(names, obj.Attributes.Name)
	}
	if len(names) == 0 {
		return shortID(obj)
	}
	return strings.Join(names, "/")
}

func shortID(obj *host.Object) string {
	return obj.ID.String()[:8]
}
