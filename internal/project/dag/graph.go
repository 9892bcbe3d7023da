// Package dag orders templates along their extends edges, parents before
// children, and reports inheritance cycles.
package dag

import (
	"fmt"
	"slices"
	"strings"

	"twigblock/internal/diag"
)

type Graph struct {
	Edges   [][]TemplateID // Edges[parent] = []child
	Indeg   []int          // входящие степени для Kahn (учитывает только присутствующие шаблоны)
	Present []bool         // шаблон загружен, а не только упомянут в extends
}

type TemplateNode struct {
	Name       string
	Parent     string
	ParentLine int
	Reporter   diag.Reporter
}

type TemplateSlot struct {
	Node    TemplateNode
	Present bool
}

func BuildGraph(idx TemplateIndex, nodes []TemplateNode) (Graph, []TemplateSlot) {
	nodeCount := len(idx.IDToName)
	g := Graph{
		Edges:   make([][]TemplateID, nodeCount),
		Indeg:   make([]int, nodeCount),
		Present: make([]bool, nodeCount),
	}
	slots := make([]TemplateSlot, nodeCount)
	for i, name := range idx.IDToName {
		slots[i].Node.Name = name
	}

	for _, node := range nodes {
		id, ok := idx.NameToID[node.Name]
		if !ok || node.Name == "" {
			continue
		}
		slot := &slots[int(id)]
		if slot.Present {
			continue
		}
		slot.Node = node
		slot.Present = true
		g.Present[int(id)] = true
	}

	for child := range slots {
		slot := &slots[child]
		if !slot.Present || slot.Node.Parent == "" {
			continue
		}
		parentID := idx.NameToID[slot.Node.Parent]
		if TemplateID(child) == parentID {
			if slot.Node.Reporter != nil {
				slot.Node.Reporter.Report(
					diag.ResCycle,
					diag.SevError,
					slot.Node.Name,
					slot.Node.ParentLine,
					fmt.Sprintf("template %q extends itself", slot.Node.Name),
					nil,
				)
			}
			continue
		}
		g.Edges[int(parentID)] = append(g.Edges[int(parentID)], TemplateID(child))
		if g.Present[int(parentID)] {
			g.Indeg[child]++
		}
	}
	for i := range g.Edges {
		if len(g.Edges[i]) > 1 {
			slices.Sort(g.Edges[i])
		}
	}

	return g, slots
}

// CycleSummary joins the names of templates stuck in a cycle.
func CycleSummary(idx TemplateIndex, topo *Topo) string {
	names := make([]string, 0, len(topo.Cycles))
	for _, id := range topo.Cycles {
		names = append(names, idx.IDToName[int(id)])
	}
	return strings.Join(names, " -> ")
}

func ReportCycles(idx TemplateIndex, slots []TemplateSlot, topo *Topo) {
	if !topo.Cyclic || len(topo.Cycles) == 0 {
		return
	}
	summary := CycleSummary(idx, topo)

	for _, id := range topo.Cycles {
		slot := slots[int(id)]
		if !slot.Present || slot.Node.Reporter == nil {
			continue
		}
		msg := fmt.Sprintf("template %q participates in an inheritance cycle: %s", slot.Node.Name, summary)
		slot.Node.Reporter.Report(diag.ResCycle, diag.SevError, slot.Node.Name, slot.Node.ParentLine, msg, nil)
	}
}

// Names maps ids back to template names.
func Names(idx TemplateIndex, ids []TemplateID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = idx.IDToName[int(id)]
	}
	return out
}
