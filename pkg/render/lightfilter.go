package render

import (
	"github.com/taigrr/lumen/pkg/math3d"
	"github.com/taigrr/lumen/pkg/scene"
)

// LightAffects reports whether l can light the world-space box. Directional
// lights reach everything, point and spot lights reach boxes their
// maxDistance sphere overlaps.
func LightAffects(l *scene.Light, box math3d.Box) bool {
	switch l.Type {
	case scene.LightDirectional:
		return true
	case scene.LightPoint, scene.LightSpot:
		return BoxSphereOverlap(box, l.Position(), l.MaxDistance)
	}
	return false
}

// FilterLights appends the lights affecting box to dst and returns it.
func FilterLights(dst []*scene.Light, lights []*scene.Light, box math3d.Box) []*scene.Light {
	for _, l := range lights {
		if LightAffects(l, box) {
			dst = append(dst, l)
		}
	}
	return dst
}
