package pipeline

import (
	"context"

	"twigblock/internal/diag"
	"twigblock/internal/project/dag"
)

// GraphResult is the inheritance order of the targets.
type GraphResult struct {
	Targets []string `json:"targets" yaml:"targets"`
	// Levels lists templates wave by wave, parents before children.
	Levels  [][]string        `json:"levels" yaml:"levels"`
	Parents map[string]string `json:"parents,omitempty" yaml:"parents,omitempty"`
	Cycles  []string          `json:"cycles,omitempty" yaml:"cycles,omitempty"`
	Bag     *diag.Bag         `json:"-" yaml:"-"`
}

// Graph orders the targets along their extends edges.
func Graph(ctx context.Context, req *Request) (*GraphResult, error) {
	s, err := Prepare(ctx, req)
	res := &GraphResult{Parents: make(map[string]string)}
	if s != nil {
		res.Targets, res.Bag = s.Targets, s.Bag
	}
	if err != nil {
		return res, err
	}
	rep := diag.BagReporter{Bag: res.Bag}

	nodes := make([]dag.TemplateNode, 0, len(s.Targets))
	for _, name := range s.Targets {
		node := dag.TemplateNode{Name: name, Reporter: rep}
		if t, err := s.Loader.Load(name); err == nil {
			node.Parent = t.Parent()
			node.ParentLine = t.Module.ParentLine
			if node.Parent != "" {
				res.Parents[name] = node.Parent
			}
		}
		nodes = append(nodes, node)
	}
	idx := dag.BuildIndex(nodes)
	graph, slots := dag.BuildGraph(idx, nodes)
	topo := dag.ToposortKahn(graph)
	dag.ReportCycles(idx, slots, topo)

	for _, batch := range topo.Batches {
		res.Levels = append(res.Levels, dag.Names(idx, batch))
	}
	res.Cycles = dag.Names(idx, topo.Cycles)
	return res, nil
}
