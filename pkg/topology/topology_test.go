package topology

import (
	"slices"
	"strings"
	"testing"

	"github.com/chazu/blockbridge/pkg/interchange"
)

// twoTriangles returns a unit quad split along its diagonal into two
// triangles that share vertices 1 and 2, with one UV per face corner.
func twoTriangles() *interchange.Mesh {
	return &interchange.Mesh{
		Vertices: []float64{
			0, 0, 0, // 0
			1, 0, 0, // 1
			0, 1, 0, // 2
			1, 1, 0, // 3
		},
		Faces: []int{
			0, 0, 1, 2,
			0, 1, 3, 2,
		},
		TextureCoordinates: []float64{
			0, 0, 1, 0, 0, 1, // first triangle
			0.5, 0, 1, 1, 0, 0.5, // second triangle
		},
	}
}

func TestNormalizeNoTextureCoordinates(t *testing.T) {
	m := &interchange.Mesh{
		Vertices: []float64{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Faces:    []int{0, 0, 1, 2},
	}
	got, rep := Normalize(m)
	if got != m {
		t.Error("mesh without UVs should be returned unchanged")
	}
	if rep.Truncated {
		t.Error("no-op should not report truncation")
	}
}

func TestNormalizeAlreadyAligned(t *testing.T) {
	m := &interchange.Mesh{
		Vertices:           []float64{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Faces:              []int{3, 0, 1, 2},
		TextureCoordinates: []float64{0, 0, 1, 0, 0, 1},
	}
	got, _ := Normalize(m)
	if got != m {
		t.Error("aligned mesh should be returned unchanged")
	}
	if NeedsAlignment(m) {
		t.Error("NeedsAlignment() = true for aligned mesh")
	}
}

func TestNormalizeSharedEdge(t *testing.T) {
	in := twoTriangles()
	orig := in.Clone()

	out, rep := Normalize(in)
	if rep.Truncated {
		t.Fatalf("unexpected truncation: %+v", rep)
	}
	if out == in {
		t.Fatal("expected a new mesh")
	}
	if got := out.VerticesCount(); got != 6 {
		t.Fatalf("VerticesCount() = %d, want 6", got)
	}
	if out.VerticesCount() != out.TextureCoordinatesCount() {
		t.Errorf("vertices %d != uvs %d", out.VerticesCount(), out.TextureCoordinatesCount())
	}

	wantFaces := []int{3, 0, 1, 2, 3, 3, 4, 5}
	if !slices.Equal(out.Faces, wantFaces) {
		t.Errorf("Faces = %v, want %v", out.Faces, wantFaces)
	}
	if out.FaceCount() != 2 {
		t.Errorf("FaceCount() = %d, want 2", out.FaceCount())
	}

	// Corner positions follow the original indices in face order.
	wantPositions := [][3]float64{
		{0, 0, 0}, {1, 0, 0}, {0, 1, 0},
		{1, 0, 0}, {1, 1, 0}, {0, 1, 0},
	}
	for i, want := range wantPositions {
		if got := out.PointAt(i).Array(); got != want {
			t.Errorf("vertex %d = %v, want %v", i, got, want)
		}
	}

	// Shared host vertex 1 now has two records with distinct UVs.
	u0, v0 := out.TextureCoordinateAt(1)
	u1, v1 := out.TextureCoordinateAt(3)
	if u0 == u1 && v0 == v1 {
		t.Error("corners sharing a position should keep distinct UVs")
	}

	if !slices.Equal(in.Vertices, orig.Vertices) || !slices.Equal(in.Faces, orig.Faces) {
		t.Error("Normalize mutated its input")
	}
	if !slices.Equal(out.TextureCoordinates, orig.TextureCoordinates) {
		t.Error("texture coordinates should be carried over unchanged")
	}
}

func TestNormalizeColorsStayAligned(t *testing.T) {
	in := twoTriangles()
	in.Colors = []int32{10, 11, 12, 13}
	if len(in.Colors) != in.VerticesCount() {
		t.Fatal("fixture colors are not aligned")
	}

	out, _ := Normalize(in)
	if len(out.Colors) != out.VerticesCount() {
		t.Fatalf("colors %d != vertices %d", len(out.Colors), out.VerticesCount())
	}
	want := []int32{10, 11, 12, 11, 13, 12}
	if !slices.Equal(out.Colors, want) {
		t.Errorf("Colors = %v, want %v", out.Colors, want)
	}
}

func TestNormalizeWithoutColorsLeavesColorsEmpty(t *testing.T) {
	out, _ := Normalize(twoTriangles())
	if len(out.Colors) != 0 {
		t.Errorf("expected no colors, got %v", out.Colors)
	}
}

func TestNormalizeTruncatesOverrunningRecord(t *testing.T) {
	m := &interchange.Mesh{
		Vertices:           []float64{0, 0, 0, 1, 0, 0},
		Faces:              []int{5, 0, 1},
		TextureCoordinates: []float64{0, 0, 1, 0, 1, 1},
	}
	out, rep := Normalize(m)
	if !rep.Truncated {
		t.Fatal("expected truncation")
	}
	if rep.Offset != 0 || rep.Discarded != 3 {
		t.Errorf("report = %+v, want offset 0 discarded 3", rep)
	}
	if len(out.Faces) != 0 || len(out.Vertices) != 0 {
		t.Errorf("expected empty output, got faces %v vertices %v", out.Faces, out.Vertices)
	}

	w, ok := rep.Warning()
	if !ok {
		t.Fatal("Warning() should report truncation")
	}
	if !strings.Contains(w.Message, "truncated at 0") {
		t.Errorf("warning message %q", w.Message)
	}
}

func TestNormalizeKeepsRecordsBeforeMalformedTail(t *testing.T) {
	in := twoTriangles()
	in.Faces = append(in.Faces, 1, 0, 1)
	out, rep := Normalize(in)
	if !rep.Truncated || rep.Offset != 8 {
		t.Fatalf("report = %+v, want truncation at 8", rep)
	}
	if out.VerticesCount() != 6 {
		t.Errorf("VerticesCount() = %d, want 6", out.VerticesCount())
	}
}

func TestNormalizeMalformedTag(t *testing.T) {
	for _, tag := range []int{-3, -4, -5} {
		m := &interchange.Mesh{
			Vertices:           []float64{0, 0, 0, 1, 0, 0, 0, 1, 0},
			Faces:              []int{0, 0, 1, 2, tag, 0, 1, 2},
			TextureCoordinates: []float64{0, 0, 1, 0},
		}
		out, rep := Normalize(m)
		if !rep.Truncated || rep.Offset != 4 || rep.Discarded != 4 {
			t.Errorf("tag %d: report = %+v, want truncation at 4 discarding 4", tag, rep)
		}
		if want := []int{3, 0, 1, 2}; !slices.Equal(out.Faces, want) {
			t.Errorf("tag %d: faces = %v, want %v", tag, out.Faces, want)
		}
		if out.VerticesCount() != 3 {
			t.Errorf("tag %d: VerticesCount() = %d, want 3", tag, out.VerticesCount())
		}
		if !strings.Contains(rep.Reason, "decodes to") {
			t.Errorf("tag %d: reason %q", tag, rep.Reason)
		}
	}
}

func TestNormalizeBadVertexIndex(t *testing.T) {
	m := &interchange.Mesh{
		Vertices:           []float64{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Faces:              []int{0, 0, 1, 7},
		TextureCoordinates: []float64{0, 0, 1, 0, 1, 1, 0, 1},
	}
	out, rep := Normalize(m)
	if !rep.Truncated {
		t.Fatal("expected out-of-range index to stop the scan")
	}
	if len(out.Vertices) != 0 {
		t.Errorf("partial record should not be emitted, got %v", out.Vertices)
	}
}

func TestNormalizeQuadAndNgon(t *testing.T) {
	m := &interchange.Mesh{
		Vertices: []float64{
			0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0, 0.5, 1.5, 0,
		},
		Faces:              []int{1, 0, 1, 2, 3, 5, 0, 1, 2, 4, 3},
		TextureCoordinates: make([]float64, 18),
	}
	out, rep := Normalize(m)
	if rep.Truncated {
		t.Fatalf("unexpected truncation %+v", rep)
	}
	if out.VerticesCount() != 9 {
		t.Errorf("VerticesCount() = %d, want 9", out.VerticesCount())
	}
	want := []int{4, 0, 1, 2, 3, 5, 4, 5, 6, 7, 8}
	if !slices.Equal(out.Faces, want) {
		t.Errorf("Faces = %v, want %v", out.Faces, want)
	}
}

func TestReportWarningWhenClean(t *testing.T) {
	if _, ok := (Report{}).Warning(); ok {
		t.Error("clean report should not produce a warning")
	}
}
