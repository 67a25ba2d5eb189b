package convert

import (
	"errors"
	"fmt"

	"github.com/chazu/blockbridge/pkg/host"
	"github.com/chazu/blockbridge/pkg/interchange"
	"github.com/chazu/blockbridge/pkg/units"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefinitionToInterchange converts every object of def the registry
// supports, tagging each with the full path of its layer. Objects that are
// unsupported or fail to convert are left out. The base point is the world
// origin.
func (r *Registry) DefinitionToInterchange(ctx *Context, def *host.InstanceDefinition) (*interchange.BlockDefinition, error) {
	if def == nil {
		return nil, fmt.Errorf("%w: nil definition", ErrDefinitionNotFound)
	}

	out := &interchange.BlockDefinition{
		Name:      def.Name,
		BasePoint: vecToPoint(ctx, mgl64.Vec3{}),
		Geometry:  make([]interchange.Object, 0, len(def.Objects)),
	}
	out.Units = ctx.ModelUnits

	for _, obj := range def.Objects {
		if !r.CanConvertToInterchange(obj.Geometry) {
			ctx.log().Debug("skipping unsupported definition object",
				zap.String("definition", def.Name),
				zap.String("kind", kindOf(obj.Geometry)),
			)
			continue
		}
		conv, err := r.ConvertToInterchange(ctx, obj.Geometry)
		if err != nil {
			ctx.log().Debug("skipping definition object",
				zap.String("definition", def.Name),
				zap.Stringer("id", obj.ID),
				zap.Error(err),
			)
			continue
		}
		if path, ok := ctx.Doc.Layers().FullPath(obj.Attributes.LayerIndex); ok {
			conv.Meta().Set(interchange.LayerAttr, path)
		}
		out.Geometry = append(out.Geometry, conv)
	}
	return out, nil
}

// DefinitionToHost returns the host definition for def, creating it under
// the derived name if it does not exist yet. An existing definition with
// that name is returned untouched.
func (r *Registry) DefinitionToHost(ctx *Context, def *interchange.BlockDefinition) (*host.InstanceDefinition, error) {
	if def == nil {
		return nil, fmt.Errorf("%w: nil definition", ErrDefinitionRejected)
	}

	name := ctx.DerivedName(def.Name)
	defs := ctx.Doc.Definitions()
	if existing, ok := defs.Find(name); ok {
		return existing, nil
	}

	var base mgl64.Vec3
	if def.BasePoint != nil {
		base = pointToVec(ctx, def.BasePoint)
	}

	geometry := make([]host.Geometry, 0, len(def.Geometry))
	attributes := make([]host.ObjectAttributes, 0, len(def.Geometry))
	for _, obj := range def.Geometry {
		if !r.CanConvertToHost(obj) {
			ctx.log().Debug("skipping unsupported definition geometry",
				zap.String("definition", name),
				zap.String("kind", interchangeKindOf(obj)),
			)
			continue
		}
		g, err := r.ConvertToHost(ctx, obj)
		if err != nil {
			ctx.log().Debug("skipping definition geometry",
				zap.String("definition", name),
				zap.Error(err),
			)
			continue
		}
		geometry = append(geometry, g)
		attributes = append(attributes, host.ObjectAttributes{
			LayerIndex: definitionLayer(ctx, name, obj.Meta().Attr(interchange.LayerAttr)),
		})
	}

	idx := defs.Add(name, "", base, geometry, attributes)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q with %d objects", ErrDefinitionRejected, name, len(geometry))
	}
	created, ok := defs.Get(idx)
	if !ok {
		return nil, fmt.Errorf("%w: %q at index %d", ErrDefinitionNotFound, name, idx)
	}
	ctx.log().Debug("created block definition",
		zap.String("definition", name),
		zap.Int("index", idx),
		zap.Int("objects", len(geometry)),
	)
	return created, nil
}

// definitionLayer resolves the layer for a piece of imported definition
// geometry, nested under the definition's name.
func definitionLayer(ctx *Context, definition, tag string) int {
	if tag == "" {
		return host.DefaultLayerIndex
	}
	layers := ctx.Doc.Layers()
	idx, err := layers.FindOrCreate(definition + layers.PathSeparator() + tag)
	if err != nil {
		ctx.log().Debug("falling back to default layer", zap.String("layer", tag), zap.Error(err))
		return host.DefaultLayerIndex
	}
	return idx
}

// InstanceToInterchange converts a placed instance object. The transform is
// written row by row in host order, translation in entries 3, 7 and 11.
func (r *Registry) InstanceToInterchange(ctx *Context, obj *host.Object) (*interchange.BlockInstance, error) {
	ref, ok := obj.Instance()
	if !ok {
		return nil, fmt.Errorf("%w: host %s is not an instance", ErrUnsupported, kindOf(obj.Geometry))
	}
	return r.referenceToInterchange(ctx, ref)
}

func (r *Registry) referenceToInterchange(ctx *Context, ref *host.InstanceReference) (*interchange.BlockInstance, error) {
	def, ok := ctx.Doc.Definitions().Get(ref.DefinitionIndex)
	if !ok {
		return nil, fmt.Errorf("%w: index %d", ErrDefinitionNotFound, ref.DefinitionIndex)
	}
	bd, err := r.DefinitionToInterchange(ctx, def)
	if err != nil {
		return nil, err
	}
	return interchange.NewBlockInstance(bd, TransformToInterchange(ref.Xform), ctx.ModelUnits), nil
}

// InstanceToHost places bi in the host document and returns the new
// instance object. Its definition is converted first and may already exist.
func (r *Registry) InstanceToHost(ctx *Context, bi *interchange.BlockInstance) (*host.Object, error) {
	idx, xform, err := r.placement(ctx, bi)
	if err != nil {
		return nil, err
	}
	objects := ctx.Doc.Objects()
	id := objects.AddInstance(idx, xform)
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: definition %d", ErrInstanceRejected, idx)
	}
	obj, ok := objects.FindID(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInstanceNotFound, id)
	}
	return obj, nil
}

// placement resolves the definition index and host transform of bi.
func (r *Registry) placement(ctx *Context, bi *interchange.BlockInstance) (int, host.Transform, error) {
	if len(bi.Transform) != interchange.TransformSize {
		return -1, host.Transform{}, fmt.Errorf("%w: got %d", ErrTransformShape, len(bi.Transform))
	}
	def, err := r.DefinitionToHost(ctx, bi.BlockDefinition)
	xform, terr := TransformToHost(bi.Transform, bi.Units, ctx.ModelUnits)
	if err != nil {
		return -1, host.Transform{}, fmt.Errorf("convert: instance definition: %w", err)
	}
	if terr != nil {
		return -1, host.Transform{}, terr
	}
	return def.Index, xform, nil
}

// TransformToInterchange linearizes t row by row.
func TransformToInterchange(t host.Transform) []float64 {
	out := make([]float64, interchange.TransformSize)
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			out[row*4+col] = t.At(row, col)
		}
	}
	return out
}

// TransformToHost builds a host transform from 16 row-major values.
// Translation entries (last column, first three rows) are lengths and are
// scaled from into native; every other entry is copied as is.
func TransformToHost(values []float64, from, native units.Unit) (host.Transform, error) {
	if len(values) != interchange.TransformSize {
		return host.Transform{}, fmt.Errorf("%w: got %d", ErrTransformShape, len(values))
	}
	t := host.Identity()
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			v := values[row*4+col]
			if col == 3 && row != 3 {
				v = units.ScaleToNative(v, from, native)
			}
			t.Set(row, col, v)
		}
	}
	return t, nil
}

// IsSkippable reports whether err marks an object a batch conversion should
// step over rather than treat as a fault of the document.
func IsSkippable(err error) bool {
	return errors.Is(err, ErrUnsupported) || errors.Is(err, ErrEmptyResult)
}
