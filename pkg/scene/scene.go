package scene

import (
	"github.com/google/uuid"

	"github.com/taigrr/lumen/pkg/gfx"
	"github.com/taigrr/lumen/pkg/math3d"
)

// Scene is the entity list plus global environment settings.
type Scene struct {
	Entities   []Entity
	Background math3d.Vec3
	Ambient    math3d.Vec3
	Skybox     gfx.Texture // equirectangular, optional
}

// New returns an empty scene with a dark background.
func New() *Scene {
	return &Scene{
		Background: math3d.V3(0.1, 0.1, 0.12),
		Ambient:    math3d.V3(0.15, 0.15, 0.15),
	}
}

// Add appends entities in order.
func (s *Scene) Add(e ...Entity) {
	s.Entities = append(s.Entities, e...)
}

// Remove deletes the entity with the given ID and reports whether it existed.
func (s *Scene) Remove(id uuid.UUID) bool {
	for i, e := range s.Entities {
		if e.ID() == id {
			s.Entities = append(s.Entities[:i], s.Entities[i+1:]...)
			return true
		}
	}
	return false
}

// Find returns the first entity with the given name.
func (s *Scene) Find(name string) Entity {
	for _, e := range s.Entities {
		if e.Name() == name {
			return e
		}
	}
	return nil
}

// Visit dispatches every entity to v in scene order.
func (s *Scene) Visit(v Visitor) {
	for _, e := range s.Entities {
		e.Accept(v)
	}
}

// Lights returns every light in scene order, visible or not.
func (s *Scene) Lights() []*Light {
	var out []*Light
	s.Visit(VisitorFuncs{Light: func(l *LightEntity) {
		out = append(out, l.Light)
	}})
	return out
}
