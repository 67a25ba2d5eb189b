package convert

import (
	"github.com/chazu/blockbridge/pkg/host"
	"github.com/chazu/blockbridge/pkg/units"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// DefaultNameSeparator joins the commit identifier and a definition name.
const DefaultNameSeparator = " - "

// Context is the state a conversion runs against.
type Context struct {
	Doc host.Document

	// CommitInfo identifies the import. It prefixes every definition name
	// created in the host, so two imports of the same commit share
	// definitions and two different commits do not.
	CommitInfo string

	// ModelUnits is the host's working unit.
	ModelUnits units.Unit

	// NameSeparator joins CommitInfo and a definition name. Empty means
	// DefaultNameSeparator.
	NameSeparator string

	Logger *zap.Logger
}

// NewContext returns a context with the default separator and a no-op
// logger.
func NewContext(doc host.Document, commitInfo string, modelUnits units.Unit) *Context {
	return &Context{
		Doc:           doc,
		CommitInfo:    commitInfo,
		ModelUnits:    modelUnits,
		NameSeparator: DefaultNameSeparator,
		Logger:        zap.NewNop(),
	}
}

// WithCommit returns a copy of c importing under commitInfo.
func (c *Context) WithCommit(commitInfo string) *Context {
	cp := *c
	cp.CommitInfo = commitInfo
	return &cp
}

// DerivedName returns the host name used for an imported definition.
func (c *Context) DerivedName(name string) string {
	sep := c.NameSeparator
	if sep == "" {
		sep = DefaultNameSeparator
	}
	return c.CommitInfo + sep + name
}

func (c *Context) log() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// vecToNative scales a position expressed in from into the model unit.
func (c *Context) vecToNative(x, y, z float64, from units.Unit) mgl64.Vec3 {
	s := units.Scale(from, c.ModelUnits)
	return mgl64.Vec3{x * s, y * s, z * s}
}
