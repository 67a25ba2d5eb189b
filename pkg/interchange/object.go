package interchange

import (
	"maps"

	"github.com/chazu/blockbridge/pkg/units"
)

// LayerAttr is the attribute key under which converters record the full
// layer path an object was authored on.
const LayerAttr = "Layer"

// Kind tags the concrete type of an interchange object.
type Kind int

const (
	KindPoint Kind = iota
	KindPolyline
	KindMesh
	KindBlockDefinition
	KindBlockInstance
)

func (k Kind) String() string {
	switch k {
	case KindPoint:
		return "point"
	case KindPolyline:
		return "polyline"
	case KindMesh:
		return "mesh"
	case KindBlockDefinition:
		return "block-definition"
	case KindBlockInstance:
		return "block-instance"
	default:
		return "unknown"
	}
}

// Object is implemented by every interchange type.
type Object interface {
	Kind() Kind
	// Meta returns the shared header of the object.
	Meta() *Base
}

// Base is the header shared by all interchange objects.
type Base struct {
	ID            string     `json:"id,omitempty"`
	ApplicationID string     `json:"applicationId,omitempty"`
	Units         units.Unit `json:"units,omitempty"`

	attrs map[string]any
}

// Meta returns b itself so that embedding types satisfy Object.
func (b *Base) Meta() *Base {
	return b
}

// Set stores a dynamic attribute.
func (b *Base) Set(key string, value any) {
	if b.attrs == nil {
		b.attrs = make(map[string]any)
	}
	b.attrs[key] = value
}

// Get returns a dynamic attribute.
func (b *Base) Get(key string) (any, bool) {
	v, ok := b.attrs[key]
	return v, ok
}

// Attr returns a string attribute, or "" if it is absent or not a string.
func (b *Base) Attr(key string) string {
	s, _ := b.attrs[key].(string)
	return s
}

// Attrs returns a copy of the dynamic attributes.
func (b *Base) Attrs() map[string]any {
	return maps.Clone(b.attrs)
}

// clone copies the header including attributes.
func (b Base) clone() Base {
	b.attrs = maps.Clone(b.attrs)
	return b
}
