// Package memdoc is an in-memory host.Document. Every table operation runs
// under the document lock, so a single find-or-create call is atomic; a
// sequence of calls is not, and callers that need one must serialize.
package memdoc

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/chazu/blockbridge/pkg/host"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// PathSeparator separates layer names in a full layer path.
const PathSeparator = "::"

// Document is an in-memory host document.
type Document struct {
	mu sync.Mutex

	layers     []string
	layerIndex map[string]int

	definitions []*host.InstanceDefinition
	defIndex    map[string]int

	objects []*host.Object
	byID    map[uuid.UUID]*host.Object
}

// Compile-time interface check.
var _ host.Document = (*Document)(nil)

// New returns a document holding the two stock layers, "Default" at index 0
// and "Layer 01" at index host.DefaultLayerIndex.
func New() *Document {
	d := &Document{
		layerIndex: make(map[string]int),
		defIndex:   make(map[string]int),
		byID:       make(map[uuid.UUID]*host.Object),
	}
	d.addLayerLocked("Default")
	d.addLayerLocked("Layer 01")
	return d
}

func (d *Document) Layers() host.LayerTable           { return layerTable{d} }
func (d *Document) Definitions() host.DefinitionTable { return definitionTable{d} }
func (d *Document) Objects() host.ObjectTable         { return objectTable{d} }

func (d *Document) addLayerLocked(path string) int {
	idx := len(d.layers)
	d.layers = append(d.layers, path)
	d.layerIndex[path] = idx
	return idx
}

// ---------------------------------------------------------------------------
// Layers
// ---------------------------------------------------------------------------

type layerTable struct{ d *Document }

func (layerTable) PathSeparator() string { return PathSeparator }

func (t layerTable) Find(path string) (int, bool) {
	t.d.mu.Lock()
	defer t.d.mu.Unlock()
	idx, ok := t.d.layerIndex[path]
	return idx, ok
}

func (t layerTable) FindOrCreate(path string) (int, error) {
	names := strings.Split(path, PathSeparator)
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			return -1, fmt.Errorf("memdoc: invalid layer path %q", path)
		}
	}

	t.d.mu.Lock()
	defer t.d.mu.Unlock()

	idx := -1
	for i := range names {
		full := strings.Join(names[:i+1], PathSeparator)
		if existing, ok := t.d.layerIndex[full]; ok {
			idx = existing
			continue
		}
		idx = t.d.addLayerLocked(full)
	}
	return idx, nil
}

func (t layerTable) FullPath(index int) (string, bool) {
	t.d.mu.Lock()
	defer t.d.mu.Unlock()
	if index < 0 || index >= len(t.d.layers) {
		return "", false
	}
	return t.d.layers[index], true
}

// ---------------------------------------------------------------------------
// Definitions
// ---------------------------------------------------------------------------

type definitionTable struct{ d *Document }

func (t definitionTable) Find(name string) (*host.InstanceDefinition, bool) {
	t.d.mu.Lock()
	defer t.d.mu.Unlock()
	idx, ok := t.d.defIndex[name]
	if !ok {
		return nil, false
	}
	return t.d.definitions[idx], true
}

func (t definitionTable) Get(index int) (*host.InstanceDefinition, bool) {
	t.d.mu.Lock()
	defer t.d.mu.Unlock()
	if index < 0 || index >= len(t.d.definitions) {
		return nil, false
	}
	return t.d.definitions[index], true
}

// Add rejects empty names, names already in use, empty geometry lists and
// attribute lists that do not match the geometry.
func (t definitionTable) Add(name, description string, basePoint mgl64.Vec3, geometry []host.Geometry, attributes []host.ObjectAttributes) int {
	if name == "" || len(geometry) == 0 || len(geometry) != len(attributes) {
		return -1
	}

	t.d.mu.Lock()
	defer t.d.mu.Unlock()

	if _, exists := t.d.defIndex[name]; exists {
		return -1
	}
	for _, g := range geometry {
		if ref, ok := g.(*host.InstanceReference); ok {
			if ref.DefinitionIndex < 0 || ref.DefinitionIndex >= len(t.d.definitions) {
				return -1
			}
		}
	}

	def := &host.InstanceDefinition{
		Index:       len(t.d.definitions),
		Name:        name,
		Description: description,
		BasePoint:   basePoint,
		Objects:     make([]*host.Object, len(geometry)),
	}
	for i, g := range geometry {
		def.Objects[i] = &host.Object{
			ID:         uuid.New(),
			Geometry:   g,
			Attributes: attributes[i],
		}
	}
	t.d.definitions = append(t.d.definitions, def)
	t.d.defIndex[name] = def.Index
	return def.Index
}

func (t definitionTable) All() []*host.InstanceDefinition {
	t.d.mu.Lock()
	defer t.d.mu.Unlock()
	return slices.Clone(t.d.definitions)
}

// ---------------------------------------------------------------------------
// Objects
// ---------------------------------------------------------------------------

type objectTable struct{ d *Document }

func (t objectTable) Add(g host.Geometry, attrs host.ObjectAttributes) uuid.UUID {
	if g == nil {
		return uuid.Nil
	}
	t.d.mu.Lock()
	defer t.d.mu.Unlock()
	if ref, ok := g.(*host.InstanceReference); ok && !t.d.hasDefinitionLocked(ref.DefinitionIndex) {
		return uuid.Nil
	}
	if attrs.LayerIndex < 0 || attrs.LayerIndex >= len(t.d.layers) {
		attrs.LayerIndex = 0
	}
	return t.d.addObjectLocked(g, attrs)
}

func (t objectTable) AddInstance(definitionIndex int, xform host.Transform) uuid.UUID {
	t.d.mu.Lock()
	defer t.d.mu.Unlock()
	if !t.d.hasDefinitionLocked(definitionIndex) {
		return uuid.Nil
	}
	ref := &host.InstanceReference{DefinitionIndex: definitionIndex, Xform: xform}
	return t.d.addObjectLocked(ref, host.ObjectAttributes{})
}

func (t objectTable) FindID(id uuid.UUID) (*host.Object, bool) {
	t.d.mu.Lock()
	defer t.d.mu.Unlock()
	o, ok := t.d.byID[id]
	return o, ok
}

func (t objectTable) Instances() []*host.Object {
	t.d.mu.Lock()
	defer t.d.mu.Unlock()
	return lo.Filter(t.d.objects, func(o *host.Object, _ int) bool {
		_, ok := o.Instance()
		return ok
	})
}

func (d *Document) hasDefinitionLocked(index int) bool {
	return index >= 0 && index < len(d.definitions)
}

func (d *Document) addObjectLocked(g host.Geometry, attrs host.ObjectAttributes) uuid.UUID {
	o := &host.Object{ID: uuid.New(), Geometry: g, Attributes: attrs}
	d.objects = append(d.objects, o)
	d.byID[o.ID] = o
	return o.ID
}

// ObjectCount returns the number of top-level objects in the document.
func (d *Document) ObjectCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.objects)
}

// AllObjects returns every top-level object in insertion order.
func (d *Document) AllObjects() []*host.Object {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.objects)
}

// LayerCount returns the number of layers in the document.
func (d *Document) LayerCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.layers)
}
