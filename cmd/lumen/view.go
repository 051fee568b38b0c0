package main

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/taigrr/lumen/pkg/gfx/soft"
	"github.com/taigrr/lumen/pkg/math3d"
	"github.com/taigrr/lumen/pkg/render"
	"github.com/taigrr/lumen/pkg/scene"
)

const (
	keyOrbitStep = 0.15 // radians per key press
	dragScale    = 0.03 // radians per cell dragged
	zoomStep     = 1.15
)

func newViewCmd(opts *options) *cobra.Command {
	var (
		fps   int
		watch bool
	)
	cmd := &cobra.Command{
		Use:   "view <scene.yaml|model.glb>",
		Short: "View a scene interactively in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return view(ctx, opts, args[0], fps, watch)
		},
	}
	f := cmd.Flags()
	f.IntVar(&fps, "fps", 30, "target frames per second")
	f.BoolVarP(&watch, "watch", "w", false, "reload when the scene or config file changes")
	return cmd
}

// viewer is the interactive terminal session.
type viewer struct {
	opts *options
	path string
	term *uv.Terminal

	dev      *soft.Device
	renderer *render.Renderer
	scene    *scene.Scene
	cam      *render.Camera
	orbit    *Orbit
	hud      *hud

	width, height int // terminal cells
	fps           int

	mouseDown    bool
	lastX, lastY int
	showHUD      bool
}

func view(ctx context.Context, opts *options, path string, fps int, watch bool) error {
	if fps <= 0 {
		return fmt.Errorf("fps must be positive, got %d", fps)
	}

	term := uv.DefaultTerminal()
	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	v := &viewer{
		opts:   opts,
		path:   path,
		term:   term,
		width:  width,
		height: height,
		fps:    fps,
		hud:    newHUD(filepath.Base(path)),
	}
	if err := v.load(); err != nil {
		return err
	}

	var changed <-chan struct{}
	if watch {
		paths := []string{path}
		if opts.configPath != "" {
			paths = append(paths, opts.configPath)
		}
		if changed, err = watchFiles(ctx, paths...); err != nil {
			return err
		}
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	// Enable mouse mode
	fmt.Fprint(os.Stdout, "\x1b[?1003h") // Enable any-event mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // Enable SGR extended mouse mode

	defer func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}()

	return v.loop(ctx, changed)
}

// load (re)builds the device, renderer and scene. On reload the shading
// mode and camera orbit carry over.
func (v *viewer) load() error {
	dev, r, s, err := setup(v.opts, v.path, v.width, v.height*2)
	if err != nil {
		return err
	}
	if v.renderer != nil {
		r.SetMode(v.renderer.Mode())
	}

	cam := render.NewCamera()
	cam.Aspect = aspect(v.width, v.height)
	dist := frame(s, cam)
	if v.orbit == nil {
		v.orbit = NewOrbit(v.fps, math3d.Radians(30), math3d.Radians(20), dist)
	}

	v.dev, v.renderer, v.scene, v.cam = dev, r, s, cam
	v.hud.verts = vertexCount(s)
	return nil
}

// aspect of the half-block framebuffer, whose pixels are roughly square.
func aspect(cols, rows int) float64 {
	if rows == 0 {
		return 1
	}
	return float64(cols) / float64(rows*2)
}

func (v *viewer) loop(ctx context.Context, changed <-chan struct{}) error {
	events := v.term.Events()
	tick := time.NewTicker(time.Second / time.Duration(v.fps))
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok || v.handle(ev) {
				return nil
			}
		case <-changed:
			if err := v.load(); err != nil {
				// keep showing the last good scene
				render.Logger().Warn("reload failed", zap.String("path", v.path), zap.Error(err))
				continue
			}
			render.Logger().Info("reloaded", zap.String("path", v.path))
		case <-tick.C:
			if err := v.draw(); err != nil {
				return err
			}
		}
	}
}

// handle applies one input event and reports whether the viewer should quit.
func (v *viewer) handle(ev uv.Event) bool {
	switch ev := ev.(type) {
	case uv.WindowSizeEvent:
		v.width, v.height = ev.Width, ev.Height
		v.term.Erase()
		v.term.Resize(v.width, v.height)
		v.dev.Resize(v.width, v.height*2)
		v.cam.Aspect = aspect(v.width, v.height)

	case uv.KeyPressEvent:
		switch {
		case ev.MatchString("escape", "ctrl+c"):
			return true
		case ev.MatchString("w", "up"):
			v.orbit.Rotate(0, keyOrbitStep)
		case ev.MatchString("s", "down"):
			v.orbit.Rotate(0, -keyOrbitStep)
		case ev.MatchString("a", "left"):
			v.orbit.Rotate(-keyOrbitStep, 0)
		case ev.MatchString("d", "right"):
			v.orbit.Rotate(keyOrbitStep, 0)
		case ev.MatchString("+", "="):
			v.orbit.Zoom(1 / zoomStep)
		case ev.MatchString("-", "_"):
			v.orbit.Zoom(zoomStep)
		case ev.MatchString("r"):
			v.orbit.Reset()
		case ev.MatchString("m"):
			v.renderer.CycleMode()
		case ev.MatchString("1"):
			v.renderer.SetMode(render.ModeFlat)
		case ev.MatchString("2"):
			v.renderer.SetMode(render.ModeTextured)
		case ev.MatchString("3"):
			v.renderer.SetMode(render.ModeMultiPass)
		case ev.MatchString("4"):
			v.renderer.SetMode(render.ModeSinglePass)
		case ev.MatchString("x"):
			v.renderer.ToggleWireframe()
		case ev.MatchString("b"):
			v.renderer.ToggleBoundaries()
		case ev.MatchString("p"):
			v.renderer.ToggleShadowMaps()
		case ev.MatchString("g"):
			v.renderer.ToggleSpecular()
		case ev.MatchString("?", "shift+/"):
			v.showHUD = !v.showHUD
		}

	case uv.MouseClickEvent:
		v.mouseDown = true
		v.lastX, v.lastY = ev.X, ev.Y

	case uv.MouseReleaseEvent:
		v.mouseDown = false

	case uv.MouseMotionEvent:
		if v.mouseDown {
			v.orbit.Rotate(float64(ev.X-v.lastX)*dragScale, float64(ev.Y-v.lastY)*dragScale)
			v.lastX, v.lastY = ev.X, ev.Y
		}

	case uv.MouseWheelEvent:
		switch ev.Button {
		case uv.MouseWheelUp:
			v.orbit.Zoom(1 / zoomStep)
		case uv.MouseWheelDown:
			v.orbit.Zoom(zoomStep)
		}
	}
	return false
}

func (v *viewer) draw() error {
	v.orbit.Update()
	v.orbit.Apply(v.cam)
	v.renderer.RenderScene(v.scene, v.cam)

	v.dev.Screen().Draw(v.term, uv.Rect(0, 0, v.width, v.height))
	v.hud.UpdateFPS()
	if v.showHUD {
		v.hud.Draw(v.term, v.width, v.height, v.renderer.Config())
	}
	if err := v.term.Display(); err != nil {
		return fmt.Errorf("display: %w", err)
	}
	return nil
}

// hud is a two-line status overlay.
type hud struct {
	filename  string
	verts     int
	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

func newHUD(filename string) *hud {
	return &hud{filename: filename, fpsTime: time.Now()}
}

// UpdateFPS updates the FPS counter (call once per frame)
func (h *hud) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

var (
	hudFg = color.RGBA{255, 255, 255, 255}
	hudBg = color.RGBA{0, 0, 0, 255}
)

// Draw writes the overlay into the top and bottom rows of scr.
func (h *hud) Draw(scr uv.Screen, width, height int, cfg render.Config) {
	top := fmt.Sprintf(" %.0f FPS  %s  %d verts ", h.fps, h.filename, h.verts)
	bottom := fmt.Sprintf(" %s %s wire %s bounds %s shadows %s specular ",
		cfg.Mode, check(cfg.Wireframe), check(cfg.Boundaries), check(cfg.ShowShadowMaps), check(cfg.ShowSpecular))
	writeLine(scr, 0, width, top)
	writeLine(scr, height-1, width, bottom)
}

func check(on bool) string {
	if on {
		return "[✓]"
	}
	return "[ ]"
}

func writeLine(scr uv.Screen, row, width int, s string) {
	col := 0
	for _, r := range s {
		if col >= width {
			return
		}
		scr.SetCell(col, row, &uv.Cell{
			Content: string(r),
			Width:   1,
			Style:   uv.Style{Fg: hudFg, Bg: hudBg},
		})
		col++
	}
}

// vertexCount totals the vertices of every mesh node in s.
func vertexCount(s *scene.Scene) int {
	n := 0
	s.Visit(scene.VisitorFuncs{Prefab: func(p *scene.PrefabEntity) {
		if p.Root == nil {
			return
		}
		p.Root.Walk(func(node *scene.Node) {
			if node.Mesh != nil {
				n += node.Mesh.VertexCount()
			}
		})
	}})
	return n
}
