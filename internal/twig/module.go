package twig

// NodeKind classifies entries of Module.Nodes.
type NodeKind uint8

const (
	NodeComment NodeKind = iota + 1
	NodeBlockEnter
	NodeBlockLeave
)

func (k NodeKind) String() string {
	switch k {
	case NodeComment:
		return "comment"
	case NodeBlockEnter:
		return "enter"
	case NodeBlockLeave:
		return "leave"
	}
	return "unknown"
}

// Node is one document-ordered event. For block nodes Block indexes
// Module.Blocks; for comments Text holds the comment body.
type Node struct {
	Kind    NodeKind `msgpack:"k"`
	Line    int      `msgpack:"l"`
	EndLine int      `msgpack:"e"`
	Text    string   `msgpack:"t,omitempty"`
	Block   int      `msgpack:"b"`
}

// BlockNode is one entry of a template's block table.
type BlockNode struct {
	Name   string `msgpack:"n"`
	Start  int    `msgpack:"s"` // line of the block tag
	End    int    `msgpack:"e"` // line of the endblock tag
	Level  int    `msgpack:"l"`
	Inline bool   `msgpack:"i,omitempty"`
	Expr   string `msgpack:"x,omitempty"` // shorthand body of inline blocks
}

// Module is the parsed, immutable view of one template.
type Module struct {
	Name       string      `msgpack:"name"`
	Parent     string      `msgpack:"parent"`
	ParentLine int         `msgpack:"parent_line"`
	Nodes      []Node      `msgpack:"nodes"`
	Blocks     []BlockNode `msgpack:"blocks"`

	index map[string]int
}

// Lookup returns the block declared under name.
func (m *Module) Lookup(name string) (BlockNode, bool) {
	if m == nil {
		return BlockNode{}, false
	}
	if m.index == nil {
		for _, b := range m.Blocks {
			if b.Name == name {
				return b, true
			}
		}
		return BlockNode{}, false
	}
	idx, ok := m.index[name]
	if !ok {
		return BlockNode{}, false
	}
	return m.Blocks[idx], true
}

// Declares reports whether the template declares block name.
func (m *Module) Declares(name string) bool {
	_, ok := m.Lookup(name)
	return ok
}

// Comments returns the comment nodes in document order.
func (m *Module) Comments() []Node {
	var out []Node
	for _, n := range m.Nodes {
		if n.Kind == NodeComment {
			out = append(out, n)
		}
	}
	return out
}

// Reindex rebuilds the name lookup table; call it once after decoding a
// module that did not come from Parse.
func (m *Module) Reindex() {
	m.index = make(map[string]int, len(m.Blocks))
	for i, b := range m.Blocks {
		m.index[b.Name] = i
	}
}
