package gfx_test

import (
	"testing"

	"github.com/taigrr/lumen/pkg/gfx"
	"github.com/taigrr/lumen/pkg/gfx/gfxtest"
)

func TestStateGuardRestores(t *testing.T) {
	dev := gfxtest.NewRecorder(8, 8)
	before := dev.State()

	func() {
		g := gfx.SaveState(dev)
		defer g.Restore()

		g.Set(before.Additive())
		g.Update(func(s *gfx.State) {
			s.DepthFunc = gfx.DepthLessEqual
			s.Fill = gfx.FillLine
			s.CullFace = false
		})

		got := dev.State()
		if !got.Blend || got.BlendDst != gfx.BlendOne || got.DepthFunc != gfx.DepthLessEqual || got.Fill != gfx.FillLine {
			t.Fatalf("state inside guard = %+v", got)
		}
		if g.Saved() != before {
			t.Errorf("Saved() = %+v, want %+v", g.Saved(), before)
		}
	}()

	if got := dev.State(); got != before {
		t.Errorf("state after Restore = %+v, want %+v", got, before)
	}
}

func TestStateGuardNesting(t *testing.T) {
	dev := gfxtest.NewRecorder(8, 8)
	outer := gfx.SaveState(dev)
	outer.Set(dev.State().AlphaBlend())
	blended := dev.State()

	inner := gfx.SaveState(dev)
	inner.Update(func(s *gfx.State) { s.DepthTest = false })
	inner.Restore()

	if dev.State() != blended {
		t.Errorf("inner restore = %+v, want %+v", dev.State(), blended)
	}
	outer.Restore()
	if dev.State() != gfx.DefaultState() {
		t.Errorf("outer restore = %+v, want default", dev.State())
	}
}

func TestBlendPresets(t *testing.T) {
	tests := []struct {
		name     string
		state    gfx.State
		src, dst gfx.BlendFactor
	}{
		{"alpha", gfx.DefaultState().AlphaBlend(), gfx.BlendSrcAlpha, gfx.BlendOneMinusSrcAlpha},
		{"additive", gfx.DefaultState().Additive(), gfx.BlendSrcAlpha, gfx.BlendOne},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if !tc.state.Blend || tc.state.BlendSrc != tc.src || tc.state.BlendDst != tc.dst {
				t.Errorf("got %+v", tc.state)
			}
		})
	}

	if gfx.DefaultState().Blend {
		t.Error("default state should not blend")
	}
}
