package render

import (
	"cmp"
	"slices"

	"github.com/taigrr/lumen/pkg/scene"
)

// SortRequests orders requests for drawing: non-blended before blended,
// then farthest first within each class. Equal keys keep collection order.
func SortRequests(reqs []DrawRequest) {
	slices.SortStableFunc(reqs, compareRequests)
}

func compareRequests(a, b DrawRequest) int {
	if c := cmp.Compare(blendClass(a), blendClass(b)); c != 0 {
		return c
	}
	return cmp.Compare(b.Distance, a.Distance)
}

func blendClass(r DrawRequest) int {
	if r.Material != nil && r.Material.AlphaMode == scene.AlphaBlend {
		return 1
	}
	return 0
}
