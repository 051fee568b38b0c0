package render

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/lumen/pkg/scene"
)

func material(mode scene.AlphaMode) *scene.Material {
	m := scene.NewMaterial(mode.String())
	m.AlphaMode = mode
	return m
}

func TestSortRequests(t *testing.T) {
	opaque, mask, blend := material(scene.AlphaOpaque), material(scene.AlphaMask), material(scene.AlphaBlend)

	tests := []struct {
		name string
		in   []DrawRequest
		want []float64 // distances in expected order
	}{
		{
			name: "opaque far first then blend",
			in: []DrawRequest{
				{Material: opaque, Distance: 5},
				{Material: opaque, Distance: 1},
				{Material: blend, Distance: 2},
			},
			want: []float64{5, 1, 2},
		},
		{
			name: "blend after near opaque",
			in: []DrawRequest{
				{Material: blend, Distance: 0.5},
				{Material: opaque, Distance: 1},
				{Material: blend, Distance: 9},
				{Material: mask, Distance: 3},
			},
			want: []float64{3, 1, 9, 0.5},
		},
		{
			name: "empty",
			in:   nil,
			want: nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			SortRequests(tc.in)
			var got []float64
			for _, r := range tc.in {
				got = append(got, r.Distance)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSortRequestsStable(t *testing.T) {
	a, b := material(scene.AlphaOpaque), material(scene.AlphaMask)
	reqs := []DrawRequest{
		{Material: a, Distance: 4},
		{Material: b, Distance: 4},
		{Material: a, Distance: 7},
	}
	SortRequests(reqs)
	assert.Same(t, a, reqs[1].Material)
	assert.Same(t, b, reqs[2].Material)
}

func TestSortRequestsOrdering(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	modes := []*scene.Material{material(scene.AlphaOpaque), material(scene.AlphaMask), material(scene.AlphaBlend)}

	for range 50 {
		reqs := make([]DrawRequest, rng.IntN(40))
		for i := range reqs {
			reqs[i] = DrawRequest{Material: modes[rng.IntN(len(modes))], Distance: rng.Float64() * 100}
		}
		SortRequests(reqs)

		for i := 1; i < len(reqs); i++ {
			prev, cur := reqs[i-1], reqs[i]
			require.LessOrEqual(t, blendClass(prev), blendClass(cur), "blend before opaque at %d", i)
			if blendClass(prev) == blendClass(cur) {
				require.GreaterOrEqual(t, prev.Distance, cur.Distance, "distance order at %d", i)
			}
		}
	}
}
