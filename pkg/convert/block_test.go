package convert

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/blockbridge/pkg/host"
	"github.com/chazu/blockbridge/pkg/host/memdoc"
	"github.com/chazu/blockbridge/pkg/interchange"
	"github.com/chazu/blockbridge/pkg/units"
	"github.com/go-gl/mathgl/mgl64"
)

func TestTransformRoundTrip(t *testing.T) {
	doc := memdoc.New()
	ctx := newTestContext(doc, "c1")
	reg := DefaultRegistry(nil)

	values := []float64{
		0.5, -0.25, 0.125, 1.5,
		0.75, 2, 0, 2.5,
		0, 0.3, 1, 3.5,
		0, 0, 0, 1,
	}
	bi := interchange.NewBlockInstance(chairDefinition(), values, units.Meters)

	obj, err := reg.InstanceToHost(ctx, bi)
	if err != nil {
		t.Fatalf("InstanceToHost: %v", err)
	}
	back, err := reg.InstanceToInterchange(ctx, obj)
	if err != nil {
		t.Fatalf("InstanceToInterchange: %v", err)
	}

	if len(back.Transform) != interchange.TransformSize {
		t.Fatalf("transform has %d entries", len(back.Transform))
	}
	for i, want := range values {
		got := back.Transform[i]
		switch i {
		case 3, 7, 11:
			if math.Abs(got-want*1000) > 1e-9 {
				t.Errorf("translation entry %d = %v, want %v", i, got, want*1000)
			}
		default:
			if got != want {
				t.Errorf("entry %d = %v, want exactly %v", i, got, want)
			}
		}
	}

	ip := back.InsertionPoint
	if ip == nil || ip.X != 1500 || ip.Y != 2500 || ip.Z != 3500 {
		t.Errorf("insertion point = %+v, want (1500, 2500, 3500)", ip)
	}
	if back.Units != units.Millimeters {
		t.Errorf("units = %q, want mm", back.Units)
	}
}

func TestTransformToInterchangeRowMajor(t *testing.T) {
	got := TransformToInterchange(host.Translation(4, 5, 6))
	want := interchange.TranslationTransform(4, 5, 6)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d = %v, want %v (got %v)", i, got[i], want[i], got)
		}
	}
}

func TestTransformToHostUnitlessNotScaled(t *testing.T) {
	xf, err := TransformToHost(interchange.TranslationTransform(1, 2, 3), units.None, units.Millimeters)
	if err != nil {
		t.Fatal(err)
	}
	if o := xf.Origin(); o != (mgl64.Vec3{1, 2, 3}) {
		t.Errorf("origin = %v, want [1 2 3]", o)
	}
}

func TestInstanceTransformShape(t *testing.T) {
	tests := []struct {
		name string
		n    int
	}{
		{"fifteen", 15},
		{"seventeen", 17},
		{"empty", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := memdoc.New()
			ctx := newTestContext(doc, "c1")
			bi := &interchange.BlockInstance{
				Transform:       make([]float64, tt.n),
				BlockDefinition: chairDefinition(),
			}
			obj, err := DefaultRegistry(nil).InstanceToHost(ctx, bi)
			if !errors.Is(err, ErrTransformShape) {
				t.Fatalf("err = %v, want ErrTransformShape", err)
			}
			if obj != nil {
				t.Errorf("obj = %v, want nil", obj)
			}
			if n := len(doc.Objects().Instances()); n != 0 {
				t.Errorf("%d instances placed, want 0", n)
			}
		})
	}
}

func TestDefinitionDedup(t *testing.T) {
	doc := memdoc.New()
	reg := DefaultRegistry(nil)
	ctx := newTestContext(doc, "commit-a")

	first, err := reg.DefinitionToHost(ctx, chairDefinition())
	if err != nil {
		t.Fatalf("first import: %v", err)
	}
	second, err := reg.DefinitionToHost(ctx, chairDefinition())
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if first.Index != second.Index {
		t.Errorf("same commit gave indices %d and %d", first.Index, second.Index)
	}
	if first.Name != "commit-a - Chair" {
		t.Errorf("name = %q, want %q", first.Name, "commit-a - Chair")
	}

	other, err := reg.DefinitionToHost(ctx.WithCommit("commit-b"), chairDefinition())
	if err != nil {
		t.Fatalf("other commit: %v", err)
	}
	if other.Index == first.Index {
		t.Errorf("different commits share definition %d", other.Index)
	}
	if n := len(doc.Definitions().All()); n != 2 {
		t.Errorf("%d definitions, want 2", n)
	}
}

func TestDefinitionToHostLayers(t *testing.T) {
	doc := memdoc.New()
	ctx := newTestContext(doc, "c1")

	def, err := DefaultRegistry(nil).DefinitionToHost(ctx, chairDefinition())
	if err != nil {
		t.Fatal(err)
	}
	if len(def.Objects) != 2 {
		t.Fatalf("%d objects, want 2", len(def.Objects))
	}

	want, ok := doc.Layers().Find("c1 - Chair::Furniture::Legs")
	if !ok {
		t.Fatal("nested layer was not created")
	}
	if got := def.Objects[0].Attributes.LayerIndex; got != want {
		t.Errorf("tagged object layer = %d, want %d", got, want)
	}
	if got := def.Objects[1].Attributes.LayerIndex; got != host.DefaultLayerIndex {
		t.Errorf("untagged object layer = %d, want %d", got, host.DefaultLayerIndex)
	}

	p, ok := def.Objects[0].Geometry.(*host.Point)
	if !ok {
		t.Fatalf("first object is %T", def.Objects[0].Geometry)
	}
	if p.Location != (mgl64.Vec3{1, 2, 3}) {
		t.Errorf("point = %v, want [1 2 3]", p.Location)
	}
}

func TestDefinitionToHostUnresolvableLayer(t *testing.T) {
	doc := memdoc.New()
	ctx := newTestContext(doc, "c1")
	layers := doc.LayerCount()

	in := chairDefinition()
	in.Geometry[0].Meta().Set(interchange.LayerAttr, "A::::B")

	def, err := DefaultRegistry(nil).DefinitionToHost(ctx, in)
	if err != nil {
		t.Fatal(err)
	}
	if got := def.Objects[0].Attributes.LayerIndex; got != host.DefaultLayerIndex {
		t.Errorf("object with empty layer segment on layer %d, want %d", got, host.DefaultLayerIndex)
	}
	if got := doc.LayerCount(); got != layers {
		t.Errorf("layer count = %d, want %d (nothing created)", got, layers)
	}
}

func TestDefinitionToHostScalesGeometry(t *testing.T) {
	doc := memdoc.New()
	ctx := newTestContext(doc, "c1")
	def := &interchange.BlockDefinition{
		Name:      "Post",
		BasePoint: interchange.NewPoint(1, 0, 0, units.Meters),
		Geometry:  []interchange.Object{interchange.NewPoint(0, 0, 2, units.Meters)},
	}

	got, err := DefaultRegistry(nil).DefinitionToHost(ctx, def)
	if err != nil {
		t.Fatal(err)
	}
	if got.BasePoint != (mgl64.Vec3{1000, 0, 0}) {
		t.Errorf("base point = %v", got.BasePoint)
	}
	if loc := got.Objects[0].Geometry.(*host.Point).Location; loc != (mgl64.Vec3{0, 0, 2000}) {
		t.Errorf("point = %v", loc)
	}
}

func TestDefinitionRejected(t *testing.T) {
	doc := memdoc.New()
	ctx := newTestContext(doc, "c1")
	def := &interchange.BlockDefinition{
		Name: "Empty",
		Geometry: []interchange.Object{
			&interchange.BlockDefinition{Name: "loose"},
			&interchange.Polyline{Value: []float64{1, 2, 3}},
		},
	}

	_, err := DefaultRegistry(nil).DefinitionToHost(ctx, def)
	if !errors.Is(err, ErrDefinitionRejected) {
		t.Fatalf("err = %v, want ErrDefinitionRejected", err)
	}

	bi := interchange.NewBlockInstance(def, interchange.IdentityTransform(), units.Millimeters)
	if _, err := DefaultRegistry(nil).InstanceToHost(ctx, bi); !errors.Is(err, ErrDefinitionRejected) {
		t.Errorf("instance err = %v, want ErrDefinitionRejected", err)
	}
}

func TestInstanceRejected(t *testing.T) {
	doc := rejectingDoc{memdoc.New()}
	ctx := newTestContext(doc, "c1")
	bi := interchange.NewBlockInstance(chairDefinition(), interchange.IdentityTransform(), units.Millimeters)

	obj, err := DefaultRegistry(nil).InstanceToHost(ctx, bi)
	if !errors.Is(err, ErrInstanceRejected) {
		t.Fatalf("err = %v, want ErrInstanceRejected", err)
	}
	if obj != nil {
		t.Errorf("obj = %v, want nil", obj)
	}
}

func TestDefinitionToInterchange(t *testing.T) {
	doc := memdoc.New()
	walls, err := doc.Layers().FindOrCreate("Walls")
	if err != nil {
		t.Fatal(err)
	}
	mesh := &host.Mesh{
		Vertices: []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}},
		Faces:    []host.Face{host.Triangle(0, 1, 2)},
	}
	idx := doc.Definitions().Add("Wall", "", mgl64.Vec3{5, 5, 5},
		[]host.Geometry{&host.Point{Location: mgl64.Vec3{1, 2, 3}}, mesh, &host.Solid{Shape: stubSolid{}}, unsupportedGeometry{}},
		[]host.ObjectAttributes{{LayerIndex: walls}, {LayerIndex: 0}, {LayerIndex: walls}, {LayerIndex: walls}},
	)
	if idx < 0 {
		t.Fatal("definition rejected")
	}
	def, _ := doc.Definitions().Get(idx)

	got, err := DefaultRegistry(stubKernel{}).DefinitionToInterchange(newTestContext(doc, "c1"), def)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Wall" {
		t.Errorf("name = %q", got.Name)
	}
	if got.BasePoint.Array() != [3]float64{} {
		t.Errorf("base point = %v, want origin", got.BasePoint.Array())
	}
	if got.Units != units.Millimeters {
		t.Errorf("units = %q", got.Units)
	}
	if len(got.Geometry) != 3 {
		t.Fatalf("%d geometry entries, want 3", len(got.Geometry))
	}

	wantKinds := []interchange.Kind{interchange.KindPoint, interchange.KindMesh, interchange.KindMesh}
	wantLayers := []string{"Walls", "Default", "Walls"}
	for i, g := range got.Geometry {
		if g.Kind() != wantKinds[i] {
			t.Errorf("geometry %d kind = %s, want %s", i, g.Kind(), wantKinds[i])
		}
		if l := g.Meta().Attr(interchange.LayerAttr); l != wantLayers[i] {
			t.Errorf("geometry %d layer = %q, want %q", i, l, wantLayers[i])
		}
	}
}

func TestDefinitionToInterchangeWithoutKernel(t *testing.T) {
	doc := memdoc.New()
	idx := doc.Definitions().Add("Solid", "", mgl64.Vec3{},
		[]host.Geometry{&host.Solid{Shape: stubSolid{}}},
		[]host.ObjectAttributes{{}},
	)
	def, _ := doc.Definitions().Get(idx)

	got, err := DefaultRegistry(nil).DefinitionToInterchange(newTestContext(doc, "c1"), def)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Geometry) != 0 {
		t.Errorf("%d geometry entries, want 0", len(got.Geometry))
	}
}

func TestNestedInstancesRoundTrip(t *testing.T) {
	doc := memdoc.New()
	ctx := newTestContext(doc, "c1")
	reg := DefaultRegistry(nil)

	leg := &interchange.BlockDefinition{
		Name:     "Leg",
		Geometry: []interchange.Object{interchange.NewPoint(0, 0, 0, units.Millimeters)},
	}
	table := &interchange.BlockDefinition{
		Name: "Table",
		Geometry: []interchange.Object{
			interchange.NewBlockInstance(leg, interchange.TranslationTransform(10, 0, 0), units.Millimeters),
			interchange.NewBlockInstance(leg, interchange.TranslationTransform(-10, 0, 0), units.Millimeters),
		},
	}

	obj, err := reg.InstanceToHost(ctx, interchange.NewBlockInstance(table, interchange.IdentityTransform(), units.Millimeters))
	if err != nil {
		t.Fatal(err)
	}

	legDef, ok := doc.Definitions().Find("c1 - Leg")
	if !ok {
		t.Fatal("nested definition not created")
	}
	tableDef, ok := doc.Definitions().Find("c1 - Table")
	if !ok {
		t.Fatal("outer definition not created")
	}
	if n := len(doc.Definitions().All()); n != 2 {
		t.Errorf("%d definitions, want 2", n)
	}
	for i, o := range tableDef.Objects {
		ref, ok := o.Instance()
		if !ok {
			t.Fatalf("table object %d is %T", i, o.Geometry)
		}
		if ref.DefinitionIndex != legDef.Index {
			t.Errorf("table object %d references %d, want %d", i, ref.DefinitionIndex, legDef.Index)
		}
	}

	back, err := reg.InstanceToInterchange(ctx, obj)
	if err != nil {
		t.Fatal(err)
	}
	if len(back.BlockDefinition.Geometry) != 2 {
		t.Fatalf("%d nested entries, want 2", len(back.BlockDefinition.Geometry))
	}
	nested, ok := back.BlockDefinition.Geometry[1].(*interchange.BlockInstance)
	if !ok {
		t.Fatalf("nested entry is %T", back.BlockDefinition.Geometry[1])
	}
	if nested.BlockDefinition.Name != "c1 - Leg" {
		t.Errorf("nested definition = %q", nested.BlockDefinition.Name)
	}
	if nested.InsertionPoint.X != -10 {
		t.Errorf("nested insertion x = %v, want -10", nested.InsertionPoint.X)
	}
}

func TestInstanceToInterchangeErrors(t *testing.T) {
	doc := memdoc.New()
	ctx := newTestContext(doc, "c1")
	reg := DefaultRegistry(nil)

	_, err := reg.InstanceToInterchange(ctx, &host.Object{Geometry: &host.Point{}})
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("point object: err = %v, want ErrUnsupported", err)
	}

	dangling := &host.Object{Geometry: &host.InstanceReference{DefinitionIndex: 7, Xform: host.Identity()}}
	_, err = reg.InstanceToInterchange(ctx, dangling)
	if !errors.Is(err, ErrDefinitionNotFound) {
		t.Errorf("dangling reference: err = %v, want ErrDefinitionNotFound", err)
	}
}
