// Package narrator composes turn narration from fragment pools without
// repeating a fragment until its pool runs dry.
package narrator

import (
	"github.com/tatianab/pips-pilgrimage/internal/models"
	"github.com/tatianab/pips-pilgrimage/internal/rng"
)

// Draw is the result of picking one fragment from a pool.
type Draw struct {
	Index    int
	Value    string
	DidReset bool // every index was already used; the window restarts
}

// PickUnused draws uniformly among the pool indices not in used. When none
// are left it draws among all indices and reports a reset.
// An empty pool is a content error and panics.
func PickUnused(src rng.Source, pool []string, used []int) Draw {
	if len(pool) == 0 {
		panic("narrator: empty fragment pool")
	}
	seen := make(map[int]bool, len(used))
	for _, i := range used {
		seen[i] = true
	}
	available := make([]int, 0, len(pool))
	for i := range pool {
		if !seen[i] {
			available = append(available, i)
		}
	}
	if len(available) == 0 {
		i := src.IntN(len(pool))
		return Draw{Index: i, Value: pool[i], DidReset: true}
	}
	i := available[src.IntN(len(available))]
	return Draw{Index: i, Value: pool[i]}
}

// Record applies d to category c of h in place.
func Record(h models.NarrativeHistory, c models.Category, d Draw) {
	if d.DidReset {
		h[c] = []int{d.Index}
		return
	}
	h[c] = append(h[c], d.Index)
}
