package engine

import (
	"fmt"
	"math"

	"github.com/chazu/blockbridge/pkg/host"
	"github.com/chazu/blockbridge/pkg/host/memdoc"
	"github.com/chazu/blockbridge/pkg/kernel"
	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// scene is the state one evaluation builds up.
type scene struct {
	doc    *memdoc.Document
	kernel kernel.Kernel

	// created holds geometry values in creation order; used marks the ones
	// that were added to the document or to a block.
	created []*sexpGeometry
	used    map[*sexpGeometry]bool
}

func newScene(doc *memdoc.Document, k kernel.Kernel) *scene {
	return &scene{doc: doc, kernel: k, used: make(map[*sexpGeometry]bool)}
}

func (s *scene) track(g host.Geometry, attrs host.ObjectAttributes) *sexpGeometry {
	sg := &sexpGeometry{geom: g, attrs: attrs}
	s.created = append(s.created, sg)
	return sg
}

func (s *scene) warnings() []EvalWarning {
	var out []EvalWarning
	for i, g := range s.created {
		if !s.used[g] {
			out = append(out, EvalWarning{
				Message: fmt.Sprintf("%s value #%d was never added to the document or a block", g.geom.GeometryKind(), i+1),
			})
		}
	}
	return out
}

// layerAttrs resolves the :layer keyword, defaulting to the stock layer.
func (s *scene) layerAttrs(fn string, pa kwArgs) (host.ObjectAttributes, error) {
	attrs := host.ObjectAttributes{LayerIndex: host.DefaultLayerIndex}
	if v, ok := pa.kw["name"]; ok {
		name, err := toString(v)
		if err != nil {
			return attrs, fmt.Errorf("%s: name: %w", fn, err)
		}
		attrs.Name = name
	}
	v, ok := pa.kw["layer"]
	if !ok {
		return attrs, nil
	}
	path, err := toString(v)
	if err != nil {
		return attrs, fmt.Errorf("%s: layer: %w", fn, err)
	}
	idx, err := s.doc.Layers().FindOrCreate(path)
	if err != nil {
		return attrs, fmt.Errorf("%s: layer: %w", fn, err)
	}
	attrs.LayerIndex = idx
	return attrs, nil
}

// block resolves a block argument given by name or by a defblock result.
func (s *scene) block(v zygo.Sexp) (*host.InstanceDefinition, error) {
	if b, ok := v.(*sexpBlock); ok {
		def, found := s.doc.Definitions().Get(b.index)
		if !found {
			return nil, fmt.Errorf("no block at index %d", b.index)
		}
		return def, nil
	}
	name, err := toString(v)
	if err != nil {
		return nil, err
	}
	def, ok := s.doc.Definitions().Find(name)
	if !ok {
		return nil, fmt.Errorf("no block named %q", name)
	}
	return def, nil
}

// placement builds an instance transform from :at, :rotate-z (degrees) and
// :scale. Scale applies first, then rotation, then translation.
func placement(fn string, pa kwArgs) (host.Transform, error) {
	xf := host.Identity()
	if v, ok := pa.kw["scale"]; ok {
		f, err := toFloat64(v)
		if err != nil {
			return xf, fmt.Errorf("%s: scale: %w", fn, err)
		}
		if f == 0 {
			return xf, fmt.Errorf("%s: scale must be non-zero", fn)
		}
		xf = host.Scaling(f)
	}
	if v, ok := pa.kw["rotate-z"]; ok {
		f, err := toFloat64(v)
		if err != nil {
			return xf, fmt.Errorf("%s: rotate-z: %w", fn, err)
		}
		xf = host.RotationZ(f * math.Pi / 180).Mul(xf)
	}
	if v, ok := pa.kw["at"]; ok {
		at, err := toVec3(v)
		if err != nil {
			return xf, fmt.Errorf("%s: at: %w", fn, err)
		}
		xf = host.Translation(at.X(), at.Y(), at.Z()).Mul(xf)
	}
	return xf, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the scene builtins into a zygomys environment.
// The builtins operate on the scene's document, populating it during
// evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, s *scene) {

	// (vec3 1 2 3)
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var v mgl64.Vec3
		for i, axis := range []string{"x", "y", "z"} {
			f, err := toFloat64(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %s: %w", axis, err)
			}
			v[i] = f
		}
		return &sexpVec3{vec: v}, nil
	})

	// (layer "Site::Walls")
	env.AddFunction("layer", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("layer requires a path argument")
		}
		path, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("layer: %w", err)
		}
		if _, err := s.doc.Layers().FindOrCreate(path); err != nil {
			return zygo.SexpNull, fmt.Errorf("layer: %w", err)
		}
		return &zygo.SexpStr{S: path}, nil
	})

	// (point (vec3 0 0 0) :layer "Survey")
	env.AddFunction("point", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("point requires a location")
		}
		loc, err := toVec3(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("point: %w", err)
		}
		attrs, err := s.layerAttrs("point", pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		return s.track(&host.Point{Location: loc}, attrs), nil
	})

	// (polyline (list (vec3 0 0 0) (vec3 1 0 0)) :closed true)
	env.AddFunction("polyline", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("polyline requires a list of points")
		}
		pts, err := toVec3List(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("polyline: %w", err)
		}
		if len(pts) < 2 {
			return zygo.SexpNull, fmt.Errorf("polyline: need at least 2 points, got %d", len(pts))
		}
		pl := &host.Polyline{Points: pts}
		if v, ok := pa.kw["closed"]; ok {
			if pl.Closed, err = toBool(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("polyline: closed: %w", err)
			}
		}
		attrs, err := s.layerAttrs("polyline", pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		return s.track(pl, attrs), nil
	})

	// (mesh :vertices (list (vec3 ..) ..) :faces (list (list 0 1 2) ..)
	//       :uvs (list 0 0 1 0 ..) :colors (list ..))
	env.AddFunction("mesh", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		m, err := buildMesh(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("mesh: %w", err)
		}
		attrs, err := s.layerAttrs("mesh", pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		return s.track(m, attrs), nil
	})

	// (box :size (vec3 10 20 30) :at (vec3 0 0 0) :rotate (vec3 0 0 45))
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if s.kernel == nil {
			return zygo.SexpNull, fmt.Errorf("box: no geometry kernel configured")
		}
		pa := parseArgs(args)
		v, ok := pa.kw["size"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("box requires :size")
		}
		size, err := toVec3(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: size: %w", err)
		}
		if size.X() <= 0 || size.Y() <= 0 || size.Z() <= 0 {
			return zygo.SexpNull, fmt.Errorf("box: size must be positive, got %v", size)
		}
		solid, err := s.orient("box", s.kernel.Box(size.X(), size.Y(), size.Z()), pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		attrs, err := s.layerAttrs("box", pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		return s.track(&host.Solid{Shape: solid}, attrs), nil
	})

	// (cylinder :height 50 :radius 10 :at (vec3 0 0 0))
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if s.kernel == nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: no geometry kernel configured")
		}
		pa := parseArgs(args)
		var h, r float64
		for _, p := range []struct {
			kw  string
			dst *float64
		}{{"height", &h}, {"radius", &r}} {
			v, ok := pa.kw[p.kw]
			if !ok {
				return zygo.SexpNull, fmt.Errorf("cylinder requires :%s", p.kw)
			}
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: %s: %w", p.kw, err)
			}
			if f <= 0 {
				return zygo.SexpNull, fmt.Errorf("cylinder: %s must be positive", p.kw)
			}
			*p.dst = f
		}
		solid, err := s.orient("cylinder", s.kernel.Cylinder(h, r), pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		attrs, err := s.layerAttrs("cylinder", pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		return s.track(&host.Solid{Shape: solid}, attrs), nil
	})

	// (union a b ...) merges solids; the result takes the first one's layer.
	env.AddFunction("union", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if s.kernel == nil {
			return zygo.SexpNull, fmt.Errorf("union: no geometry kernel configured")
		}
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("union requires at least 2 solids")
		}
		var acc kernel.Solid
		var attrs host.ObjectAttributes
		for i, a := range args {
			g, err := toGeometry(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("union: argument %d: %w", i+1, err)
			}
			sol, ok := g.geom.(*host.Solid)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("union: argument %d is a %s, not a solid", i+1, g.geom.GeometryKind())
			}
			s.used[g] = true
			if acc == nil {
				acc, attrs = sol.Shape, g.attrs
				continue
			}
			acc = s.kernel.Union(acc, sol.Shape)
		}
		return s.track(&host.Solid{Shape: acc}, attrs), nil
	})

	// (add g1 g2 ...) places geometry values in the document.
	env.AddFunction("add", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		var last zygo.Sexp = zygo.SexpNull
		for i, a := range args {
			g, err := toGeometry(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("add: argument %d: %w", i+1, err)
			}
			id := s.doc.Objects().Add(g.geom, g.attrs)
			if id == uuid.Nil {
				return zygo.SexpNull, fmt.Errorf("add: document rejected %s", g.geom.GeometryKind())
			}
			s.used[g] = true
			last = &sexpObject{id: id, kind: g.geom.GeometryKind()}
		}
		return last, nil
	})

	// (defblock "name" g1 g2 ... :base (vec3 ..) :description "..")
	env.AddFunction("defblock", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 2 {
			return zygo.SexpNull, fmt.Errorf("defblock requires a name and at least one geometry value")
		}
		blockName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defblock: name: %w", err)
		}

		var base mgl64.Vec3
		if v, ok := pa.kw["base"]; ok {
			if base, err = toVec3(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("defblock: base: %w", err)
			}
		}
		var desc string
		if v, ok := pa.kw["description"]; ok {
			if desc, err = toString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("defblock: description: %w", err)
			}
		}

		members := make([]*sexpGeometry, 0, len(pa.positional)-1)
		geometry := make([]host.Geometry, 0, len(pa.positional)-1)
		attrs := make([]host.ObjectAttributes, 0, len(pa.positional)-1)
		for i, a := range pa.positional[1:] {
			g, err := toGeometry(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("defblock: member %d: %w", i+1, err)
			}
			members = append(members, g)
			geometry = append(geometry, g.geom)
			attrs = append(attrs, g.attrs)
		}

		idx := s.doc.Definitions().Add(blockName, desc, base, geometry, attrs)
		if idx < 0 {
			return zygo.SexpNull, fmt.Errorf("defblock: document rejected block %q (duplicate name?)", blockName)
		}
		for _, g := range members {
			s.used[g] = true
		}
		return &sexpBlock{index: idx, name: blockName}, nil
	})

	// (block-ref "name" :at (vec3 ..) :rotate-z 90 :scale 2) is a nested
	// instance for use inside defblock.
	env.AddFunction("block_ref", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("block-ref requires a block")
		}
		def, err := s.block(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("block-ref: %w", err)
		}
		xf, err := placement("block-ref", pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		attrs, err := s.layerAttrs("block-ref", pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		return s.track(&host.InstanceReference{DefinitionIndex: def.Index, Xform: xf}, attrs), nil
	})

	// (insert-block "name" :at (vec3 ..) :rotate-z 90 :scale 2 :layer "..")
	env.AddFunction("insert_block", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("insert-block requires a block")
		}
		def, err := s.block(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("insert-block: %w", err)
		}
		xf, err := placement("insert-block", pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		attrs, err := s.layerAttrs("insert-block", pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		id := s.doc.Objects().Add(&host.InstanceReference{DefinitionIndex: def.Index, Xform: xf}, attrs)
		if id == uuid.Nil {
			return zygo.SexpNull, fmt.Errorf("insert-block: document rejected instance of %q", def.Name)
		}
		return &sexpObject{id: id, kind: host.KindInstanceReference}, nil
	})
}

// orient applies :rotate (degrees about x, y, z) and then :at to a solid.
func (s *scene) orient(fn string, solid kernel.Solid, pa kwArgs) (kernel.Solid, error) {
	if v, ok := pa.kw["rotate"]; ok {
		r, err := toVec3(v)
		if err != nil {
			return nil, fmt.Errorf("%s: rotate: %w", fn, err)
		}
		solid = s.kernel.Rotate(solid, r.X(), r.Y(), r.Z())
	}
	if v, ok := pa.kw["at"]; ok {
		at, err := toVec3(v)
		if err != nil {
			return nil, fmt.Errorf("%s: at: %w", fn, err)
		}
		solid = s.kernel.Translate(solid, at.X(), at.Y(), at.Z())
	}
	return solid, nil
}

// buildMesh reads the mesh keywords. Faces are lists of three or four
// vertex indices.
func buildMesh(pa kwArgs) (*host.Mesh, error) {
	v, ok := pa.kw["vertices"]
	if !ok {
		return nil, fmt.Errorf("requires :vertices")
	}
	verts, err := toVec3List(v)
	if err != nil {
		return nil, fmt.Errorf("vertices: %w", err)
	}
	f, ok := pa.kw["faces"]
	if !ok {
		return nil, fmt.Errorf("requires :faces")
	}
	rawFaces, err := sexpListToSlice(f)
	if err != nil {
		return nil, fmt.Errorf("faces: %w", err)
	}

	m := &host.Mesh{Vertices: verts}
	for i, rf := range rawFaces {
		idx, err := toIntList(rf)
		if err != nil {
			return nil, fmt.Errorf("face %d: %w", i, err)
		}
		for _, c := range idx {
			if c < 0 || c >= len(verts) {
				return nil, fmt.Errorf("face %d: index %d out of range", i, c)
			}
		}
		switch len(idx) {
		case 3:
			m.Faces = append(m.Faces, host.Triangle(idx[0], idx[1], idx[2]))
		case 4:
			m.Faces = append(m.Faces, host.Quad(idx[0], idx[1], idx[2], idx[3]))
		default:
			return nil, fmt.Errorf("face %d: want 3 or 4 corners, got %d", i, len(idx))
		}
	}
	if len(m.Faces) == 0 {
		return nil, fmt.Errorf("no faces")
	}

	if uv, ok := pa.kw["uvs"]; ok {
		flat, err := toFloatList(uv)
		if err != nil {
			return nil, fmt.Errorf("uvs: %w", err)
		}
		if len(flat) != len(verts)*2 {
			return nil, fmt.Errorf("uvs: want %d values (one pair per vertex), got %d", len(verts)*2, len(flat))
		}
		m.TextureCoordinates = make([]mgl64.Vec2, len(verts))
		for i := range m.TextureCoordinates {
			m.TextureCoordinates[i] = mgl64.Vec2{flat[i*2], flat[i*2+1]}
		}
	}
	if c, ok := pa.kw["colors"]; ok {
		colors, err := toIntList(c)
		if err != nil {
			return nil, fmt.Errorf("colors: %w", err)
		}
		if len(colors) != len(verts) {
			return nil, fmt.Errorf("colors: want %d, got %d", len(verts), len(colors))
		}
		m.VertexColors = make([]int32, len(colors))
		for i, c := range colors {
			m.VertexColors[i] = int32(c)
		}
	}
	return m, nil
}
