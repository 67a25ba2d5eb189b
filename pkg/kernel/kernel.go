// Package kernel defines the solid modeling backend behind host solids.
// Host documents hold kernel solids as opaque handles; converters ask the
// kernel for a triangle mesh when a solid has to leave the host.
package kernel

// Solid is an opaque handle to a kernel solid.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel builds solids and tessellates them.
type Kernel interface {
	Box(x, y, z float64) Solid
	Cylinder(height, radius float64) Solid
	Union(a, b Solid) Solid

	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	ToMesh(s Solid) (*Mesh, error)
}
