package render

import "github.com/taigrr/lumen/pkg/gfx"

// TexturedStrategy draws albedo × base colour with alpha testing, no lighting.
type TexturedStrategy struct{}

func (TexturedStrategy) Draw(f *Frame, req *DrawRequest) {
	d, ok := begin(f, req, ProgramTexture)
	if !ok {
		return
	}
	defer d.end()
	uploadMaterial(f, d.shader, req.Material, "u_texture")
	req.Mesh.Render(gfx.Triangles)
}
