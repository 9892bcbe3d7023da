package block

import (
	"twigblock/internal/annotation"
	"twigblock/internal/loader"
	"twigblock/internal/twig"
)

// Collect returns the comments attached to blocks of t: a single-line
// comment on the line right above the block start. A comment that carries
// no valid payload is still attached, with Parsed == false. Comments
// are buffered between block boundaries and the buffer is dropped at each
// enter and leave.
func Collect(t *loader.Template, defaultVersion string) []Comment {
	attached, _ := collect(t, defaultVersion)
	return attached
}

// CollectAll is Collect plus annotation-shaped comments that are not
// attached to any block (Attached == false), in line order.
func CollectAll(t *loader.Template, defaultVersion string) []Comment {
	attached, loose := collect(t, defaultVersion)
	out := make([]Comment, 0, len(attached)+len(loose))
	i, j := 0, 0
	for i < len(attached) || j < len(loose) {
		if j >= len(loose) || (i < len(attached) && attached[i].Line <= loose[j].Line) {
			out = append(out, attached[i])
			i++
		} else {
			out = append(out, loose[j])
			j++
		}
	}
	return out
}

func collect(t *loader.Template, defaultVersion string) (attached, loose []Comment) {
	if t == nil || t.Module == nil {
		return nil, nil
	}
	var pending []twig.Node
	flush := func(used int) {
		for i, n := range pending {
			if i != used && annotation.IsAnnotation(n.Text) {
				loose = append(loose, newComment(t, n, nil, defaultVersion))
			}
		}
		pending = pending[:0]
	}

	for _, n := range t.Module.Nodes {
		switch n.Kind {
		case twig.NodeComment:
			pending = append(pending, n)
		case twig.NodeBlockEnter:
			b := t.Module.Blocks[n.Block]
			used := -1
			for i := len(pending) - 1; i >= 0; i-- {
				c := pending[i]
				if c.Line == c.EndLine && c.Line == b.Start-1 {
					used = i
					break
				}
			}
			if used >= 0 {
				attached = append(attached, newComment(t, pending[used], &b, defaultVersion))
			}
			flush(used)
		case twig.NodeBlockLeave:
			flush(-1)
		}
	}
	flush(-1)
	return attached, loose
}

func newComment(t *loader.Template, n twig.Node, b *twig.BlockNode, defaultVersion string) Comment {
	c := Comment{
		Template:       t.Name,
		ParentTemplate: t.Parent(),
		Line:           n.Line,
		Text:           n.Text,
		Version:        defaultVersion,
	}
	if b != nil {
		c.Block = b.Name
		c.Lines = LineRange{Start: b.Start, End: b.End}
		c.Attached = true
	}
	if p, err := annotation.Parse(n.Text); err == nil {
		c.Hash = p.Hash
		c.Parsed = true
		if p.Version != "" {
			c.Version = p.Version
		}
	}
	return c
}
