package scene

import (
	"errors"
	"testing"

	"github.com/taigrr/lumen/pkg/math3d"
)

func TestGlobalMatrix(t *testing.T) {
	root := NewNode("root")
	root.Local = math3d.Translate(math3d.V3(1, 0, 0))
	mid := NewNode("mid")
	mid.Local = math3d.Scale(math3d.Splat3(2))
	leaf := NewNode("leaf")
	leaf.Local = math3d.Translate(math3d.V3(0, 1, 0))
	root.AddChild(mid)
	mid.AddChild(leaf)

	got := leaf.GlobalMatrix().Translation()
	want := math3d.V3(1, 2, 0)
	if got.Distance(want) > 1e-12 {
		t.Errorf("leaf translation = %v, want %v", got, want)
	}
	if leaf.Parent() != mid || mid.Parent() != root || root.Parent() != nil {
		t.Error("parent links wrong")
	}
}

func TestAddChildReparents(t *testing.T) {
	a, b, c := NewNode("a"), NewNode("b"), NewNode("c")
	a.AddChild(c)
	b.AddChild(c)

	if len(a.Children()) != 0 {
		t.Errorf("old parent still has %d children", len(a.Children()))
	}
	if len(b.Children()) != 1 || c.Parent() != b {
		t.Error("child not moved to new parent")
	}
}

func TestWalkOrder(t *testing.T) {
	root := NewNode("r")
	a, b := NewNode("a"), NewNode("b")
	root.AddChild(a)
	root.AddChild(b)
	a.AddChild(NewNode("a1"))

	var got []string
	root.Walk(func(n *Node) { got = append(got, n.Name) })
	want := []string{"r", "a", "a1", "b"}
	if len(got) != len(want) {
		t.Fatalf("walk = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("walk = %v, want %v", got, want)
		}
	}
}

func TestVisitorDispatch(t *testing.T) {
	s := New()
	s.Add(
		NewPrefab("box", NewNode("box")),
		NewLightEntity("sun", NewLight(LightDirectional)),
		NewPrefab("ball", NewNode("ball")),
	)

	var prefabs, lights int
	s.Visit(VisitorFuncs{
		Prefab: func(*PrefabEntity) { prefabs++ },
		Light:  func(*LightEntity) { lights++ },
	})
	if prefabs != 2 || lights != 1 {
		t.Errorf("prefabs=%d lights=%d, want 2 and 1", prefabs, lights)
	}
	// nil callbacks are skipped
	s.Visit(VisitorFuncs{})

	if len(s.Lights()) != 1 {
		t.Errorf("Lights() = %d entries", len(s.Lights()))
	}
}

func TestSceneFindRemove(t *testing.T) {
	s := New()
	box := NewPrefab("box", NewNode("box"))
	s.Add(box, NewPrefab("other", NewNode("other")))

	if s.Find("box") != box {
		t.Fatal("Find did not return the box")
	}
	if s.Find("missing") != nil {
		t.Error("Find returned an entity for a missing name")
	}
	if !s.Remove(box.ID()) {
		t.Fatal("Remove reported false")
	}
	if s.Remove(box.ID()) {
		t.Error("second Remove reported true")
	}
	if len(s.Entities) != 1 {
		t.Errorf("entities = %d, want 1", len(s.Entities))
	}
}

func TestEntityIDsUnique(t *testing.T) {
	seen := map[string]bool{}
	for range 100 {
		id := NewPrefab("p", nil).ID().String()
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestParseLightType(t *testing.T) {
	tests := []struct {
		in   string
		want LightType
		code int
	}{
		{"none", LightNone, 0},
		{"point", LightPoint, 1},
		{"Spot", LightSpot, 2},
		{"DIRECTIONAL", LightDirectional, 3},
	}
	for _, tt := range tests {
		got, err := ParseLightType(tt.in)
		if err != nil {
			t.Fatalf("ParseLightType(%q): %v", tt.in, err)
		}
		if got != tt.want || int(got) != tt.code {
			t.Errorf("ParseLightType(%q) = %v (%d), want %v (%d)", tt.in, got, int(got), tt.want, tt.code)
		}
		if got.String() != tt.want.String() {
			t.Errorf("String mismatch for %q", tt.in)
		}
	}

	if _, err := ParseLightType("area"); !errors.Is(err, ErrUnknownLightType) {
		t.Errorf("unknown type err = %v", err)
	}
}

func TestParseAlphaMode(t *testing.T) {
	tests := []struct {
		in      string
		want    AlphaMode
		wantErr bool
	}{
		{"", AlphaOpaque, false},
		{"opaque", AlphaOpaque, false},
		{"MASK", AlphaMask, false},
		{"blend", AlphaBlend, false},
		{"additive", AlphaOpaque, true},
	}
	for _, tt := range tests {
		got, err := ParseAlphaMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseAlphaMode(%q) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAlphaMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLightForward(t *testing.T) {
	l := NewLight(LightSpot)
	if f := l.Forward(); f.Distance(math3d.V3(0, 0, 1)) > 1e-12 {
		t.Errorf("identity forward = %v", f)
	}

	l.Model = math3d.TRS(math3d.V3(0, 5, 0), math3d.EulerDegrees(math3d.V3(90, 0, 0)), math3d.Splat3(1))
	if f := l.Forward(); f.Distance(math3d.V3(0, -1, 0)) > 1e-9 {
		t.Errorf("rotated forward = %v, want straight down", f)
	}
	if p := l.Position(); p.Distance(math3d.V3(0, 5, 0)) > 1e-12 {
		t.Errorf("position = %v", p)
	}
}

func TestLightValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Light)
		wantErr bool
	}{
		{"defaults", func(*Light) {}, false},
		{"negative intensity", func(l *Light) { l.Intensity = -1 }, true},
		{"max below near", func(l *Light) { l.NearDistance, l.MaxDistance = 5, 1 }, true},
		{"inner above outer", func(l *Light) { l.ConeAngles = math3d.V2(40, 30) }, true},
		{"outer above 180", func(l *Light) { l.ConeAngles = math3d.V2(10, 200) }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLight(LightSpot)
			tt.mutate(l)
			if err := l.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMaterialTexture(t *testing.T) {
	m := NewMaterial("m")
	if m.Texture(ChannelAlbedo) != nil {
		t.Error("fresh material has an albedo texture")
	}
	if m.Texture(NumChannels) != nil || m.Texture(-1) != nil {
		t.Error("out of range channel returned a texture")
	}
	if m.AlphaCutoff != 0.5 || m.Color != math3d.V4(1, 1, 1, 1) {
		t.Errorf("defaults = cutoff %v color %v", m.AlphaCutoff, m.Color)
	}
}
