// Package host defines the native document model of the CAD host that
// interchange objects are converted into and out of: a layer table, a table
// of instance (block) definitions, and a table of placed objects.
//
// The interfaces here are the only surface the converters depend on; the
// memdoc subpackage provides an in-memory implementation.
package host

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// DefaultLayerIndex is the layer objects fall back to when their layer
// cannot be resolved.
const DefaultLayerIndex = 1

// GeometryKind tags the concrete type of host geometry.
type GeometryKind int

const (
	KindPoint GeometryKind = iota
	KindPolyline
	KindMesh
	KindSolid
	KindInstanceReference
)

func (k GeometryKind) String() string {
	switch k {
	case KindPoint:
		return "point"
	case KindPolyline:
		return "polyline"
	case KindMesh:
		return "mesh"
	case KindSolid:
		return "solid"
	case KindInstanceReference:
		return "instance-reference"
	default:
		return "unknown"
	}
}

// Geometry is implemented by every host geometry type.
type Geometry interface {
	GeometryKind() GeometryKind
}

// ObjectAttributes carries the per-object document state that is not
// geometry.
type ObjectAttributes struct {
	LayerIndex int
	Name       string
}

// Object is a geometry record owned by the document or by a definition.
type Object struct {
	ID         uuid.UUID
	Geometry   Geometry
	Attributes ObjectAttributes
}

// Instance returns the instance reference of an instance object.
func (o *Object) Instance() (*InstanceReference, bool) {
	ref, ok := o.Geometry.(*InstanceReference)
	return ref, ok
}

// InstanceDefinition is a named block of geometry in the definition table.
type InstanceDefinition struct {
	Index       int
	Name        string
	Description string
	BasePoint   mgl64.Vec3
	Objects     []*Object
}

// Document is the set of host services conversions read and mutate.
type Document interface {
	Layers() LayerTable
	Definitions() DefinitionTable
	Objects() ObjectTable
}

// LayerTable resolves layers by full path.
type LayerTable interface {
	// PathSeparator separates parent and child names in a full path.
	PathSeparator() string
	// Find returns the index of the layer with the given full path.
	Find(path string) (int, bool)
	// FindOrCreate returns the index of path, creating it and any missing
	// parents.
	FindOrCreate(path string) (int, error)
	// FullPath returns the full path of the layer at index.
	FullPath(index int) (string, bool)
}

// DefinitionTable stores instance definitions.
type DefinitionTable interface {
	Find(name string) (*InstanceDefinition, bool)
	Get(index int) (*InstanceDefinition, bool)
	// Add registers a new definition and returns its index, or a negative
	// value if the host rejects it.
	Add(name, description string, basePoint mgl64.Vec3, geometry []Geometry, attributes []ObjectAttributes) int
	All() []*InstanceDefinition
}

// ObjectTable stores objects placed in the document.
type ObjectTable interface {
	// Add places geometry and returns its id, or uuid.Nil on failure.
	Add(g Geometry, attrs ObjectAttributes) uuid.UUID
	// AddInstance places an instance of the definition at definitionIndex
	// and returns its id, or uuid.Nil on failure.
	AddInstance(definitionIndex int, xform Transform) uuid.UUID
	FindID(id uuid.UUID) (*Object, bool)
	// Instances returns every placed instance object in insertion order.
	Instances() []*Object
}
