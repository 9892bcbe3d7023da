package block

import (
	"fmt"

	"twigblock/internal/loader"
	"twigblock/internal/twig"
)

// LineRange is an inclusive 1-based line span.
type LineRange struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

func (r LineRange) String() string {
	if r.Start == r.End {
		return fmt.Sprintf("%d", r.Start)
	}
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// Block is one block declaration. Lines hold for the text read at load time.
type Block struct {
	Template       string    `json:"template" yaml:"template"`
	ParentTemplate string    `json:"parent_template,omitempty" yaml:"parent_template,omitempty"`
	Name           string    `json:"name" yaml:"name"`
	Lines          LineRange `json:"lines" yaml:"lines"`
	Level          int       `json:"level" yaml:"level"`
	Inline         bool      `json:"inline,omitempty" yaml:"inline,omitempty"`
}

func (b Block) String() string {
	return b.Template + "#" + b.Name
}

// FromNode lifts a parsed block of t into a Block.
func FromNode(t *loader.Template, n twig.BlockNode) Block {
	return Block{
		Template:       t.Name,
		ParentTemplate: t.Parent(),
		Name:           n.Name,
		Lines:          LineRange{Start: n.Start, End: n.End},
		Level:          n.Level,
		Inline:         n.Inline,
	}
}

// Blocks returns every block of t in declaration order.
func Blocks(t *loader.Template) []Block {
	out := make([]Block, 0, len(t.Module.Blocks))
	for _, n := range t.Module.Blocks {
		out = append(out, FromNode(t, n))
	}
	return out
}

// Comment is an annotation comment sitting directly above a block.
type Comment struct {
	Template       string    `json:"template" yaml:"template"`
	ParentTemplate string    `json:"parent_template,omitempty" yaml:"parent_template,omitempty"`
	Block          string    `json:"block" yaml:"block"`
	Lines          LineRange `json:"lines" yaml:"lines"`
	Line           int       `json:"line" yaml:"line"`
	Text           string    `json:"text" yaml:"text"`
	Hash           string    `json:"hash" yaml:"hash"`
	Version        string    `json:"version,omitempty" yaml:"version,omitempty"`
	Parsed         bool      `json:"parsed" yaml:"parsed"`
	Attached       bool      `json:"attached" yaml:"attached"`
}
