package convert

import (
	"fmt"
	"sync"

	"github.com/chazu/blockbridge/pkg/host"
	"github.com/chazu/blockbridge/pkg/interchange"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Converter is the single owner of conversions against one document. Every
// exported method holds the converter lock for its whole run, so the
// find-then-create steps on the layer and definition tables never
// interleave between callers.
type Converter struct {
	mu  sync.Mutex
	reg *Registry
	ctx Context
}

// NewConverter returns a converter over reg. ctx is copied.
func NewConverter(reg *Registry, ctx *Context) *Converter {
	c := &Converter{reg: reg, ctx: *ctx}
	if c.ctx.Logger == nil {
		c.ctx.Logger = zap.NewNop()
	}
	if c.ctx.NameSeparator == "" {
		c.ctx.NameSeparator = DefaultNameSeparator
	}
	return c
}

// Registry returns the registry the converter dispatches through.
func (c *Converter) Registry() *Registry {
	return c.reg
}

// Context returns a copy of the conversion context.
func (c *Converter) Context() Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctx
}

// SetCommitInfo changes the identifier used to derive definition names for
// later imports.
func (c *Converter) SetCommitInfo(commitInfo string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ctx.CommitInfo = commitInfo
}

// DefinitionToInterchange converts a host definition.
func (c *Converter) DefinitionToInterchange(def *host.InstanceDefinition) (*interchange.BlockDefinition, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reg.DefinitionToInterchange(&c.ctx, def)
}

// DefinitionToHost finds or creates the host definition for def.
func (c *Converter) DefinitionToHost(def *interchange.BlockDefinition) (*host.InstanceDefinition, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reg.DefinitionToHost(&c.ctx, def)
}

// InstanceToInterchange converts a placed instance object.
func (c *Converter) InstanceToInterchange(obj *host.Object) (*interchange.BlockInstance, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reg.InstanceToInterchange(&c.ctx, obj)
}

// InstanceToHost places an interchange instance in the document.
func (c *Converter) InstanceToHost(bi *interchange.BlockInstance) (*host.Object, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reg.InstanceToHost(&c.ctx, bi)
}

// ToInterchange converts any top-level document object.
func (c *Converter) ToInterchange(obj *host.Object) (interchange.Object, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.toInterchange(&c.ctx, obj)
}

// ToHost adds any interchange object to the document and returns the
// created object.
func (c *Converter) ToHost(o interchange.Object) (*host.Object, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.toHost(&c.ctx, o)
}

// ConvertAllToInterchange converts objs, skipping the ones that fail. The
// failures are returned combined.
func (c *Converter) ConvertAllToInterchange(objs []*host.Object) ([]interchange.Object, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]interchange.Object, 0, len(objs))
	var errs error
	for _, obj := range objs {
		conv, err := c.toInterchange(&c.ctx, obj)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("object %s: %w", obj.ID, err))
			continue
		}
		out = append(out, conv)
	}
	return out, errs
}

// ImportAll adds objs to the document under commitInfo, skipping the ones
// that fail. The failures are returned combined, one *ObjectError each.
func (c *Converter) ImportAll(commitInfo string, objs []interchange.Object) ([]*host.Object, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx := c.ctx.WithCommit(commitInfo)
	out := make([]*host.Object, 0, len(objs))
	var errs error
	for i, o := range objs {
		created, err := c.toHost(ctx, o)
		if err != nil {
			errs = multierr.Append(errs, &ObjectError{Index: i, Kind: interchangeKindOf(o), Err: err})
			continue
		}
		out = append(out, created)
	}
	if errs != nil {
		ctx.log().Warn("import finished with failures",
			zap.String("commit", commitInfo),
			zap.Int("imported", len(out)),
			zap.Int("failed", len(multierr.Errors(errs))),
		)
	}
	return out, errs
}

func (c *Converter) toInterchange(ctx *Context, obj *host.Object) (interchange.Object, error) {
	if obj == nil {
		return nil, fmt.Errorf("%w: nil object", ErrUnsupported)
	}
	if ref, ok := obj.Instance(); ok {
		return c.reg.referenceToInterchange(ctx, ref)
	}
	conv, err := c.reg.ConvertToInterchange(ctx, obj.Geometry)
	if err != nil {
		return nil, err
	}
	if path, ok := ctx.Doc.Layers().FullPath(obj.Attributes.LayerIndex); ok {
		conv.Meta().Set(interchange.LayerAttr, path)
	}
	return conv, nil
}

func (c *Converter) toHost(ctx *Context, o interchange.Object) (*host.Object, error) {
	switch v := o.(type) {
	case *interchange.BlockInstance:
		return c.reg.InstanceToHost(ctx, v)
	case *interchange.BlockDefinition:
		return nil, fmt.Errorf("%w: definitions are imported through their instances", ErrUnsupported)
	}

	g, err := c.reg.ConvertToHost(ctx, o)
	if err != nil {
		return nil, err
	}
	attrs := host.ObjectAttributes{LayerIndex: host.DefaultLayerIndex}
	if tag := o.Meta().Attr(interchange.LayerAttr); tag != "" {
		if idx, err := ctx.Doc.Layers().FindOrCreate(tag); err == nil {
			attrs.LayerIndex = idx
		}
	}
	objects := ctx.Doc.Objects()
	id := objects.Add(g, attrs)
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: host refused %s", ErrEmptyResult, o.Kind())
	}
	created, ok := objects.FindID(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInstanceNotFound, id)
	}
	return created, nil
}
