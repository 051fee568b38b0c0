package gfx

// BlendFactor is a blend equation coefficient.
type BlendFactor int

const (
	BlendOne BlendFactor = iota
	BlendZero
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
)

// DepthFunc is the depth comparison.
type DepthFunc int

const (
	DepthLess DepthFunc = iota
	DepthLessEqual
	DepthAlways
)

// FillMode selects polygon rasterization.
type FillMode int

const (
	FillSolid FillMode = iota
	FillLine
)

// State is the ambient fixed-function state a strategy may change.
type State struct {
	Blend     bool
	BlendSrc  BlendFactor
	BlendDst  BlendFactor
	CullFace  bool
	DepthTest bool
	DepthFunc DepthFunc
	Fill      FillMode
}

// DefaultState is the state every frame starts from: opaque, back-face
// culled, depth tested with LESS, solid fill.
func DefaultState() State {
	return State{
		BlendSrc:  BlendSrcAlpha,
		BlendDst:  BlendOneMinusSrcAlpha,
		CullFace:  true,
		DepthTest: true,
		DepthFunc: DepthLess,
		Fill:      FillSolid,
	}
}

// AlphaBlend enables src-alpha / one-minus-src-alpha blending.
func (s State) AlphaBlend() State {
	s.Blend = true
	s.BlendSrc, s.BlendDst = BlendSrcAlpha, BlendOneMinusSrcAlpha
	return s
}

// Additive enables src-alpha / one blending.
func (s State) Additive() State {
	s.Blend = true
	s.BlendSrc, s.BlendDst = BlendSrcAlpha, BlendOne
	return s
}

// StateGuard captures device state on creation and puts it back on Restore.
//
//	g := gfx.SaveState(dev)
//	defer g.Restore()
type StateGuard struct {
	dev   Device
	saved State
}

// SaveState snapshots the current state of dev.
func SaveState(dev Device) *StateGuard {
	return &StateGuard{dev: dev, saved: dev.State()}
}

// Saved returns the captured state.
func (g *StateGuard) Saved() State {
	return g.saved
}

// Set applies s to the device. The snapshot is unchanged.
func (g *StateGuard) Set(s State) {
	g.dev.SetState(s)
}

// Update applies fn to the current device state.
func (g *StateGuard) Update(fn func(*State)) {
	s := g.dev.State()
	fn(&s)
	g.dev.SetState(s)
}

// Restore puts the captured state back.
func (g *StateGuard) Restore() {
	g.dev.SetState(g.saved)
}
