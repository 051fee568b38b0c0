package render

import (
	"github.com/taigrr/lumen/pkg/gfx"
	"github.com/taigrr/lumen/pkg/scene"
)

// FlatStrategy draws unlit, untextured geometry. Blended materials are
// skipped. The shadow pass uses it to fill depth maps.
type FlatStrategy struct{}

func (FlatStrategy) Draw(f *Frame, req *DrawRequest) {
	if req.Material != nil && req.Material.AlphaMode == scene.AlphaBlend {
		return
	}
	d, ok := begin(f, req, ProgramFlat)
	if !ok {
		return
	}
	defer d.end()
	req.Mesh.Render(gfx.Triangles)
}
