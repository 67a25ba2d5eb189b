package convert

import (
	"fmt"

	"github.com/chazu/blockbridge/pkg/host"
	"github.com/chazu/blockbridge/pkg/interchange"
	"github.com/chazu/blockbridge/pkg/kernel"
)

// ToInterchangeFunc converts one piece of host geometry.
type ToInterchangeFunc func(ctx *Context, g host.Geometry) (interchange.Object, error)

// ToHostFunc converts one interchange object into host geometry.
type ToHostFunc func(ctx *Context, o interchange.Object) (host.Geometry, error)

// Registry maps object kinds to converters in both directions.
type Registry struct {
	toInterchange map[host.GeometryKind]ToInterchangeFunc
	toHost        map[interchange.Kind]ToHostFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		toInterchange: make(map[host.GeometryKind]ToInterchangeFunc),
		toHost:        make(map[interchange.Kind]ToHostFunc),
	}
}

// DefaultRegistry registers the point, polyline, mesh and block instance
// converters. Solids are exported through k; a nil kernel leaves solids
// unsupported.
func DefaultRegistry(k kernel.Kernel) *Registry {
	r := NewRegistry()

	r.RegisterToInterchange(host.KindPoint, pointToInterchange)
	r.RegisterToInterchange(host.KindPolyline, polylineToInterchange)
	r.RegisterToInterchange(host.KindMesh, meshToInterchange)
	r.RegisterToInterchange(host.KindInstanceReference, func(ctx *Context, g host.Geometry) (interchange.Object, error) {
		return r.referenceToInterchange(ctx, g.(*host.InstanceReference))
	})
	if k != nil {
		r.RegisterToInterchange(host.KindSolid, solidToInterchange(k))
	}

	r.RegisterToHost(interchange.KindPoint, pointToHost)
	r.RegisterToHost(interchange.KindPolyline, polylineToHost)
	r.RegisterToHost(interchange.KindMesh, meshToHost)
	r.RegisterToHost(interchange.KindBlockInstance, func(ctx *Context, o interchange.Object) (host.Geometry, error) {
		idx, xform, err := r.placement(ctx, o.(*interchange.BlockInstance))
		if err != nil {
			return nil, err
		}
		return &host.InstanceReference{DefinitionIndex: idx, Xform: xform}, nil
	})

	return r
}

// RegisterToInterchange sets the converter for a host geometry kind,
// replacing any previous one.
func (r *Registry) RegisterToInterchange(k host.GeometryKind, fn ToInterchangeFunc) {
	r.toInterchange[k] = fn
}

// RegisterToHost sets the converter for an interchange kind, replacing any
// previous one.
func (r *Registry) RegisterToHost(k interchange.Kind, fn ToHostFunc) {
	r.toHost[k] = fn
}

// CanConvertToInterchange reports whether a converter exists for g.
func (r *Registry) CanConvertToInterchange(g host.Geometry) bool {
	if g == nil {
		return false
	}
	_, ok := r.toInterchange[g.GeometryKind()]
	return ok
}

// CanConvertToHost reports whether a converter exists for o.
func (r *Registry) CanConvertToHost(o interchange.Object) bool {
	if o == nil {
		return false
	}
	_, ok := r.toHost[o.Kind()]
	return ok
}

// ConvertToInterchange converts g with the converter registered for its
// kind.
func (r *Registry) ConvertToInterchange(ctx *Context, g host.Geometry) (interchange.Object, error) {
	if !r.CanConvertToInterchange(g) {
		return nil, fmt.Errorf("%w: host %s", ErrUnsupported, kindOf(g))
	}
	out, err := r.toInterchange[g.GeometryKind()](ctx, g)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("%w: host %s", ErrEmptyResult, g.GeometryKind())
	}
	return out, nil
}

// ConvertToHost converts o with the converter registered for its kind.
func (r *Registry) ConvertToHost(ctx *Context, o interchange.Object) (host.Geometry, error) {
	if !r.CanConvertToHost(o) {
		return nil, fmt.Errorf("%w: interchange %s", ErrUnsupported, interchangeKindOf(o))
	}
	out, err := r.toHost[o.Kind()](ctx, o)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("%w: interchange %s", ErrEmptyResult, o.Kind())
	}
	return out, nil
}

func kindOf(g host.Geometry) string {
	if g == nil {
		return "<nil>"
	}
	return g.GeometryKind().String()
}

func interchangeKindOf(o interchange.Object) string {
	if o == nil {
		return "<nil>"
	}
	return o.Kind().String()
}
