package soft

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/taigrr/lumen/pkg/math3d"
)

// Framebuffer holds colour and depth planes. Depth lies in [0,1] with 1 at
// the far plane. Depth-only buffers have a nil Color plane.
type Framebuffer struct {
	Width  int
	Height int
	Color  []math3d.Vec4 // Row-major, unclamped linear colour
	Depth  []float64     // Row-major
}

// NewFramebuffer creates a colour+depth framebuffer.
// For terminal output the height should be 2x the terminal rows (half-blocks).
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Color:  make([]math3d.Vec4, width*height),
		Depth:  make([]float64, width*height),
	}
}

// NewDepthBuffer creates a depth-only framebuffer.
func NewDepthBuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Depth:  make([]float64, width*height),
	}
}

// Clear fills colour with c (alpha 1) and depth with 1.
func (fb *Framebuffer) Clear(c math3d.Vec3) {
	fill(fb.Depth, 1.0)
	fill(fb.Color, math3d.V4FromV3(c, 1))
}

// fill uses copy-doubling for faster clearing.
func fill[T any](s []T, v T) {
	if len(s) == 0 {
		return
	}
	s[0] = v
	for i := 1; i < len(s); i *= 2 {
		copy(s[i:], s[:i])
	}
}

// SetPixel sets a pixel at (x, y) to the given color.
func (fb *Framebuffer) SetPixel(x, y int, c math3d.Vec4) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height || fb.Color == nil {
		return
	}
	fb.Color[y*fb.Width+x] = c
}

// GetPixel returns the color at (x, y).
// Returns transparent black if out of bounds.
func (fb *Framebuffer) GetPixel(x, y int) math3d.Vec4 {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height || fb.Color == nil {
		return math3d.Vec4{}
	}
	return fb.Color[y*fb.Width+x]
}

// GetDepth returns the depth at (x, y), or 1 if out of bounds.
func (fb *Framebuffer) GetDepth(x, y int) float64 {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return 1
	}
	return fb.Depth[y*fb.Width+x]
}

// RGBA returns the clamped 8-bit colour at (x, y).
func (fb *Framebuffer) RGBA(x, y int) color.RGBA {
	return toRGBA(fb.GetPixel(x, y))
}

// lineFunc visits each pixel of a Bresenham line with its parameter t in [0,1].
func lineFunc(x0, y0, x1, y1 int, visit func(x, y int, t float64)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	steps := max(dx, -dy)
	step := 0

	for {
		t := 0.0
		if steps > 0 {
			t = float64(step) / float64(steps)
		}
		visit(x0, y0, t)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
		step++
	}
}

// DrawLine draws an undepth-tested line from (x0, y0) to (x1, y1).
func (fb *Framebuffer) DrawLine(x0, y0, x1, y1 int, c math3d.Vec4) {
	lineFunc(x0, y0, x1, y1, func(x, y int, _ float64) {
		fb.SetPixel(x, y, c)
	})
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func toRGBA(c math3d.Vec4) color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(c.X)*255 + 0.5),
		G: uint8(clamp01(c.Y)*255 + 0.5),
		B: uint8(clamp01(c.Z)*255 + 0.5),
		A: uint8(clamp01(c.W)*255 + 0.5),
	}
}

func clamp01(v float64) float64 {
	if v != v || v < 0 { // NaN or negative
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ToImage converts the framebuffer to a standard Go image.RGBA.
// Depth-only buffers are converted to grayscale.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := range fb.Height {
		for x := range fb.Width {
			if fb.Color == nil {
				d := fb.Depth[y*fb.Width+x]
				img.SetRGBA(x, y, toRGBA(math3d.V4(d, d, d, 1)))
				continue
			}
			img.SetRGBA(x, y, fb.RGBA(x, y))
		}
	}
	return img
}

// SavePNG saves the framebuffer as a PNG file.
func (fb *Framebuffer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, fb.ToImage()); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
