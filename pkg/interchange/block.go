package interchange

import (
	"fmt"

	"github.com/chazu/blockbridge/pkg/units"
)

// TransformSize is the number of entries in a block instance transform.
const TransformSize = 16

// BlockDefinition is a named, reusable template of geometry. It owns its
// geometry; nothing in it is shared with instances.
type BlockDefinition struct {
	Base
	Name      string   `json:"name"`
	BasePoint *Point   `json:"basePoint"`
	Geometry  []Object `json:"geometry"`
}

func (*BlockDefinition) Kind() Kind { return KindBlockDefinition }

// BlockInstance places a block definition. Transform is a 4x4 homogeneous
// matrix linearized row by row (M00..M03, M10..M13, ...). The definition is
// embedded by value.
type BlockInstance struct {
	Base
	InsertionPoint  *Point           `json:"insertionPoint"`
	Transform       []float64        `json:"transform"`
	BlockDefinition *BlockDefinition `json:"blockDefinition"`
}

func (*BlockInstance) Kind() Kind { return KindBlockInstance }

// IdentityTransform returns a row-major 4x4 identity.
func IdentityTransform() []float64 {
	return []float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// TranslationTransform returns a row-major 4x4 translation by (x, y, z).
func TranslationTransform(x, y, z float64) []float64 {
	t := IdentityTransform()
	t[3], t[7], t[11] = x, y, z
	return t
}

// NewBlockInstance returns an instance of def placed by transform.
func NewBlockInstance(def *BlockDefinition, transform []float64, u units.Unit) *BlockInstance {
	bi := &BlockInstance{
		Base:            Base{Units: u},
		Transform:       transform,
		BlockDefinition: def,
	}
	if len(transform) == TransformSize {
		bi.InsertionPoint = NewPoint(transform[3], transform[7], transform[11], u)
	}
	return bi
}

// TransformAt returns the matrix entry at row, col.
func (bi *BlockInstance) TransformAt(row, col int) (float64, error) {
	if len(bi.Transform) != TransformSize {
		return 0, fmt.Errorf("interchange: transform has %d entries, want %d", len(bi.Transform), TransformSize)
	}
	return bi.Transform[row*4+col], nil
}
