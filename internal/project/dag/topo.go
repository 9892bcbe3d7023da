package dag

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// Topo is the result of a Kahn sort over a Graph.
type Topo struct {
	Order   []TemplateID   // only present templates, parents first
	Batches [][]TemplateID // inheritance levels: level 0 extends nothing present
	Cyclic  bool
	Cycles  []TemplateID // present templates left with a pending parent
}

// ToposortKahn peels the graph level by level. Each batch holds the
// templates whose present parent was placed in an earlier batch; ids in
// a batch are ascending so the order is stable across runs.
func ToposortKahn(g Graph) *Topo {
	pending := slices.Clone(g.Indeg)
	topo := &Topo{}

	level := presentWhere(g, func(i int) bool { return pending[i] == 0 })
	for len(level) > 0 {
		topo.Batches = append(topo.Batches, level)
		topo.Order = append(topo.Order, level...)

		var next []TemplateID
		for _, parent := range level {
			for _, child := range g.Edges[parent] {
				if !g.Present[child] {
					continue
				}
				if pending[child]--; pending[child] == 0 {
					next = append(next, child)
				}
			}
		}
		slices.Sort(next)
		level = next
	}

	topo.Cycles = presentWhere(g, func(i int) bool { return pending[i] > 0 })
	topo.Cyclic = len(topo.Cycles) > 0
	return topo
}

// presentWhere returns the ascending ids of present templates matching keep.
func presentWhere(g Graph, keep func(int) bool) []TemplateID {
	var out []TemplateID
	for i, present := range g.Present {
		if present && keep(i) {
			out = append(out, templateID(i))
		}
	}
	return out
}

func templateID(i int) TemplateID {
	id, err := safecast.Conv[TemplateID](i)
	if err != nil {
		panic(fmt.Errorf("template id overflow: %w", err))
	}
	return id
}
