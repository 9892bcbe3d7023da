package dag

import (
	"maps"
	"slices"
)

type TemplateID uint32

// TemplateIndex numbers every template name seen, including parents that
// are only referenced by an extends tag.
type TemplateIndex struct {
	NameToID map[string]TemplateID
	IDToName []string
}

// BuildIndex assigns ids in name order so graphs are reproducible.
func BuildIndex(nodes []TemplateNode) TemplateIndex {
	seen := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		for _, name := range [...]string{n.Name, n.Parent} {
			if name != "" {
				seen[name] = struct{}{}
			}
		}
	}
	idx := TemplateIndex{
		IDToName: slices.Sorted(maps.Keys(seen)),
		NameToID: make(map[string]TemplateID, len(seen)),
	}
	for i, name := range idx.IDToName {
		idx.NameToID[name] = templateID(i)
	}
	return idx
}
