// Package scene holds the data the renderer draws: entities, node trees,
// materials, lights and the scene container, plus loaders for YAML scene
// descriptions and glTF prefabs.
package scene

import (
	"errors"

	"github.com/google/uuid"
)

// ErrUnknownEntityType is returned when a scene description names an entity type that does not exist.
var ErrUnknownEntityType = errors.New("unknown entity type")

// Entity is a top-level scene object. The set of implementations is closed:
// *PrefabEntity and *LightEntity.
type Entity interface {
	ID() uuid.UUID
	Name() string
	Visible() bool
	SetVisible(v bool)
	// Accept calls the Visitor method matching the concrete entity.
	Accept(v Visitor)

	entity()
}

// Visitor dispatches over entity kinds.
type Visitor interface {
	VisitPrefab(p *PrefabEntity)
	VisitLight(l *LightEntity)
}

// VisitorFuncs adapts optional functions to a Visitor. Nil fields are skipped.
type VisitorFuncs struct {
	Prefab func(*PrefabEntity)
	Light  func(*LightEntity)
}

func (f VisitorFuncs) VisitPrefab(p *PrefabEntity) {
	if f.Prefab != nil {
		f.Prefab(p)
	}
}

func (f VisitorFuncs) VisitLight(l *LightEntity) {
	if f.Light != nil {
		f.Light(l)
	}
}

type entityBase struct {
	id      uuid.UUID
	name    string
	visible bool
}

func newBase(name string) entityBase {
	return entityBase{id: uuid.New(), name: name, visible: true}
}

func (e *entityBase) ID() uuid.UUID     { return e.id }
func (e *entityBase) Name() string      { return e.name }
func (e *entityBase) Visible() bool     { return e.visible }
func (e *entityBase) SetVisible(v bool) { e.visible = v }
func (e *entityBase) entity()           {}

// PrefabEntity places a node tree in the scene.
type PrefabEntity struct {
	entityBase
	Root     *Node
	Filename string // source asset, empty for procedural prefabs
}

// NewPrefab creates a visible prefab entity around root.
func NewPrefab(name string, root *Node) *PrefabEntity {
	return &PrefabEntity{entityBase: newBase(name), Root: root}
}

func (p *PrefabEntity) Accept(v Visitor) { v.VisitPrefab(p) }

// LightEntity places a light in the scene.
type LightEntity struct {
	entityBase
	Light *Light
}

// NewLightEntity creates a visible light entity.
func NewLightEntity(name string, l *Light) *LightEntity {
	return &LightEntity{entityBase: newBase(name), Light: l}
}

func (l *LightEntity) Accept(v Visitor) { v.VisitLight(l) }
