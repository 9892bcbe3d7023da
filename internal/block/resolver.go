package block

import (
	"errors"
	"fmt"

	"twigblock/internal/loader"
)

// Source is the part of the loader the resolver and extractor need.
type Source interface {
	Load(name string) (*loader.Template, error)
}

// Resolver finds the origin of overridden blocks.
type Resolver struct {
	src Source
}

func NewResolver(src Source) *Resolver {
	return &Resolver{src: src}
}

// ResolveOrigin walks the extends chain of template and returns the
// top-most ancestor declaring name. ok is false when that is template
// itself.
func (r *Resolver) ResolveOrigin(template, name string) (Block, bool, error) {
	if r == nil || r.src == nil {
		return Block{}, false, errors.New("resolver: nil template source")
	}
	if template == "" || name == "" {
		return Block{}, false, errors.New("resolver: empty template or block name")
	}

	var (
		origin  Block
		found   bool
		chain   []string
		visited = make(map[string]struct{})
	)
	for cur := template; cur != ""; {
		if _, seen := visited[cur]; seen {
			return Block{}, false, &CycleError{Chain: append(chain, cur)}
		}
		visited[cur] = struct{}{}
		chain = append(chain, cur)

		t, err := r.src.Load(cur)
		if err != nil {
			return Block{}, false, fmt.Errorf("resolve %s#%s: %w", template, name, err)
		}
		if n, ok := t.Module.Lookup(name); ok {
			origin, found = FromNode(t, n), true
		}
		cur = t.Parent()
	}

	if !found || origin.Template == template {
		return Block{}, false, nil
	}
	return origin, true, nil
}

// Chain returns template and its ancestors, nearest first.
func (r *Resolver) Chain(template string) ([]string, error) {
	var chain []string
	visited := make(map[string]struct{})
	for cur := template; cur != ""; {
		if _, seen := visited[cur]; seen {
			return chain, &CycleError{Chain: append(chain, cur)}
		}
		visited[cur] = struct{}{}
		chain = append(chain, cur)
		t, err := r.src.Load(cur)
		if err != nil {
			return chain, err
		}
		cur = t.Parent()
	}
	return chain, nil
}
