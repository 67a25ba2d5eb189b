package convert

import (
	"errors"
	"slices"
	"testing"

	"github.com/chazu/blockbridge/pkg/host"
	"github.com/chazu/blockbridge/pkg/host/memdoc"
	"github.com/chazu/blockbridge/pkg/interchange"
	"github.com/chazu/blockbridge/pkg/units"
	"github.com/go-gl/mathgl/mgl64"
)

func TestMeshToHostAlignsTextureCoordinates(t *testing.T) {
	ctx := newTestContext(memdoc.New(), "c1")
	in := &interchange.Mesh{
		Vertices:           []float64{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0},
		Faces:              []int{0, 0, 1, 2, 0, 1, 3, 2},
		Colors:             []int32{10, 11, 12, 13},
		TextureCoordinates: []float64{0, 0, 1, 0, 1, 1, 0.5, 0, 0.5, 1, 0, 0.5},
	}
	in.Units = units.Meters

	g, err := meshToHost(ctx, in)
	if err != nil {
		t.Fatal(err)
	}
	hm := g.(*host.Mesh)
	if len(hm.Vertices) != 6 {
		t.Fatalf("%d vertices, want 6", len(hm.Vertices))
	}
	if len(hm.TextureCoordinates) != 6 {
		t.Errorf("%d texture coordinates, want 6", len(hm.TextureCoordinates))
	}
	wantFaces := []host.Face{host.Triangle(0, 1, 2), host.Triangle(3, 4, 5)}
	if !slices.Equal(hm.Faces, wantFaces) {
		t.Errorf("faces = %v, want %v", hm.Faces, wantFaces)
	}
	if !slices.Equal(hm.VertexColors, []int32{10, 11, 12, 11, 13, 12}) {
		t.Errorf("colors = %v", hm.VertexColors)
	}
	if hm.Vertices[5] != (mgl64.Vec3{1000, 1000, 0}) {
		t.Errorf("vertex 5 = %v, want [1000 1000 0]", hm.Vertices[5])
	}
	if hm.TextureCoordinates[3] != (mgl64.Vec2{0.5, 0}) {
		t.Errorf("uv 3 = %v", hm.TextureCoordinates[3])
	}
	if len(in.Vertices) != 12 {
		t.Error("input mesh was modified")
	}
}

func TestMeshToHostFaces(t *testing.T) {
	tests := []struct {
		name  string
		faces []int
		want  []host.Face
	}{
		{
			name:  "shorthand quad",
			faces: []int{1, 0, 1, 2, 3},
			want:  []host.Face{host.Quad(0, 1, 2, 3)},
		},
		{
			name:  "pentagon fan",
			faces: []int{5, 0, 1, 2, 3, 4},
			want:  []host.Face{host.Triangle(0, 1, 2), host.Triangle(0, 2, 3), host.Triangle(0, 3, 4)},
		},
		{
			name:  "overrunning tail dropped",
			faces: []int{3, 0, 1, 2, 4, 0, 1},
			want:  []host.Face{host.Triangle(0, 1, 2)},
		},
		{
			name:  "zero-corner tag ends scan",
			faces: []int{3, 0, 1, 2, -3, 2, 3, 4},
			want:  []host.Face{host.Triangle(0, 1, 2)},
		},
		{
			name:  "negative-corner tag ends scan",
			faces: []int{3, 0, 1, 2, -4, 2, 3, 4, -5, 0, 1},
			want:  []host.Face{host.Triangle(0, 1, 2)},
		},
		{
			name:  "out of range face skipped",
			faces: []int{3, 0, 1, 9, 3, 2, 3, 4},
			want:  []host.Face{host.Triangle(2, 3, 4)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newTestContext(memdoc.New(), "c1")
			in := &interchange.Mesh{
				Vertices: make([]float64, 15),
				Faces:    tt.faces,
			}
			g, err := meshToHost(ctx, in)
			if err != nil {
				t.Fatal(err)
			}
			if got := g.(*host.Mesh).Faces; !slices.Equal(got, tt.want) {
				t.Errorf("faces = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMeshToHostEmpty(t *testing.T) {
	ctx := newTestContext(memdoc.New(), "c1")
	_, err := meshToHost(ctx, &interchange.Mesh{Vertices: []float64{0, 0, 0}, Faces: []int{5, 0, 1}})
	if !errors.Is(err, ErrEmptyResult) {
		t.Errorf("err = %v, want ErrEmptyResult", err)
	}
}

func TestMeshToInterchange(t *testing.T) {
	ctx := newTestContext(memdoc.New(), "c1")
	hm := &host.Mesh{
		Vertices: []mgl64.Vec3{{0, 0, 0}, {2, 0, 0}, {2, 2, 0}, {0, 2, 0}, {1, 3, 1}},
		Faces:    []host.Face{host.Quad(0, 1, 2, 3), host.Triangle(3, 2, 4)},
		TextureCoordinates: []mgl64.Vec2{
			{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0.5, 1},
		},
		VertexColors: []int32{1, 2, 3, 4, 5},
	}

	o, err := meshToInterchange(ctx, hm)
	if err != nil {
		t.Fatal(err)
	}
	m := o.(*interchange.Mesh)
	if want := []int{4, 0, 1, 2, 3, 3, 3, 2, 4}; !slices.Equal(m.Faces, want) {
		t.Errorf("faces = %v, want %v", m.Faces, want)
	}
	if m.TextureCoordinatesCount() != m.VerticesCount() {
		t.Errorf("uvs %d != vertices %d", m.TextureCoordinatesCount(), m.VerticesCount())
	}
	if !slices.Equal(m.Colors, hm.VertexColors) {
		t.Errorf("colors = %v", m.Colors)
	}
	if m.Bbox == nil || m.Bbox.Min != [3]float64{0, 0, 0} || m.Bbox.Max != [3]float64{2, 3, 1} {
		t.Errorf("bbox = %+v", m.Bbox)
	}
	if m.Units != units.Millimeters {
		t.Errorf("units = %q", m.Units)
	}
}

func TestMeshRoundTripKeepsPerVertexData(t *testing.T) {
	ctx := newTestContext(memdoc.New(), "c1")
	hm := &host.Mesh{
		Vertices:           []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Faces:              []host.Face{host.Triangle(0, 1, 2)},
		TextureCoordinates: []mgl64.Vec2{{0, 0}, {1, 0}, {0, 1}},
	}
	o, err := meshToInterchange(ctx, hm)
	if err != nil {
		t.Fatal(err)
	}
	g, err := meshToHost(ctx, o)
	if err != nil {
		t.Fatal(err)
	}
	back := g.(*host.Mesh)
	if !slices.Equal(back.Vertices, hm.Vertices) || !slices.Equal(back.Faces, hm.Faces) ||
		!slices.Equal(back.TextureCoordinates, hm.TextureCoordinates) {
		t.Errorf("round trip = %+v, want %+v", back, hm)
	}
}

func TestSolidToInterchange(t *testing.T) {
	ctx := newTestContext(memdoc.New(), "c1")
	o, err := DefaultRegistry(stubKernel{}).ConvertToInterchange(ctx, &host.Solid{Shape: stubSolid{}})
	if err != nil {
		t.Fatal(err)
	}
	m := o.(*interchange.Mesh)
	if m.VerticesCount() != 4 || m.FaceCount() != 4 {
		t.Errorf("got %d vertices, %d faces; want 4, 4", m.VerticesCount(), m.FaceCount())
	}
	if m.Faces[0] != 3 {
		t.Errorf("first arity = %d, want 3", m.Faces[0])
	}
	if m.Bbox == nil || m.Bbox.Max != [3]float64{1, 1, 1} {
		t.Errorf("bbox = %+v", m.Bbox)
	}

	if _, err := DefaultRegistry(stubKernel{}).ConvertToInterchange(ctx, &host.Solid{}); !errors.Is(err, ErrEmptyResult) {
		t.Errorf("empty solid: err = %v, want ErrEmptyResult", err)
	}
}
