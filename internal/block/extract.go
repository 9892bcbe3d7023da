package block

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"twigblock/internal/annotation"
	"twigblock/internal/loader"
	"twigblock/internal/twig"
)

// Markers builds the block start/end patterns for one delimiter set.
type Markers struct {
	d twig.Delimiters
}

func NewMarkers(d twig.Delimiters) Markers {
	return Markers{d: d}
}

// Start matches `{% block name ... %}`; group 1 is the optional shorthand body.
func (m Markers) Start(name string) *regexp.Regexp {
	return regexp.MustCompile(regexp.QuoteMeta(m.d.BlockStart) + `[-~]?\s*block\s+` + regexp.QuoteMeta(name) +
		`(?:\s+(.*?))?\s*[-~]?` + regexp.QuoteMeta(m.d.BlockEnd))
}

// tags matches any block or endblock tag; group 1 is the keyword, group 2
// the arguments.
func (m Markers) tags() *regexp.Regexp {
	return regexp.MustCompile(regexp.QuoteMeta(m.d.BlockStart) + `[-~]?\s*(block|endblock)\b(.*?)[-~]?` + regexp.QuoteMeta(m.d.BlockEnd))
}

// closing finds the endblock that balances a block opened just before
// lines[0][from:]. It returns the line index and the column of that tag.
func (m Markers) closing(lines []string, from int) (int, int, bool) {
	re := m.tags()
	depth := 1
	for i, line := range lines {
		off := 0
		if i == 0 {
			off = from
		}
		for _, loc := range re.FindAllStringSubmatchIndex(line[off:], -1) {
			switch line[off+loc[2] : off+loc[3]] {
			case "block":
				// shorthand blocks carry a body and never open a scope
				if len(strings.Fields(line[off+loc[4]:off+loc[5]])) < 2 {
					depth++
				}
			case "endblock":
				depth--
			}
			if depth == 0 {
				return i, off + loc[0], true
			}
		}
	}
	return 0, 0, false
}

// SliceContent cuts the body of b out of lines, markers excluded.
func SliceContent(lines []string, b Block, m Markers) (string, error) {
	if b.Lines.Start < 1 || b.Lines.End < b.Lines.Start || b.Lines.End > len(lines) {
		return "", &SyntaxError{Template: b.Template, Block: b.Name, Line: b.Lines.Start, Marker: "line range"}
	}
	first := lines[b.Lines.Start-1]
	startLoc := m.Start(b.Name).FindStringSubmatchIndex(first)
	if startLoc == nil {
		return "", &SyntaxError{Template: b.Template, Block: b.Name, Line: b.Lines.Start, Marker: "start"}
	}
	if b.Inline {
		if startLoc[2] < 0 {
			return "", nil
		}
		return first[startLoc[2]:startLoc[3]], nil
	}

	at, endAt, ok := m.closing(lines[b.Lines.Start-1:b.Lines.End], startLoc[1])
	if !ok || at != b.Lines.End-b.Lines.Start {
		return "", &SyntaxError{Template: b.Template, Block: b.Name, Line: b.Lines.End, Marker: "end"}
	}
	last := lines[b.Lines.End-1]

	if b.Lines.Start == b.Lines.End {
		return first[startLoc[1]:endAt], nil
	}
	parts := make([]string, 0, b.Lines.End-b.Lines.Start+1)
	parts = append(parts, first[startLoc[1]:])
	parts = append(parts, lines[b.Lines.Start:b.Lines.End-1]...)
	parts = append(parts, last[:endAt])
	return strings.Join(parts, "\n"), nil
}

// memoSource is implemented by loaders that can cache derived values.
type memoSource interface {
	Memo(kind, name string, fn func() (any, error)) (any, error)
}

type hashSet struct {
	mu sync.Mutex
	m  map[string]string
}

// Extractor reads block text from the current template source.
type Extractor struct {
	src     Source
	markers Markers
}

func NewExtractor(src Source, d twig.Delimiters) *Extractor {
	return &Extractor{src: src, markers: NewMarkers(d)}
}

// Extract returns the content of b as the template currently reads.
func (e *Extractor) Extract(b Block) (string, error) {
	t, err := e.src.Load(b.Template)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", b, err)
	}
	return SliceContent(t.Lines(), b, e.markers)
}

// Hash returns the fingerprint of b, memoized per template when the
// source supports it.
func (e *Extractor) Hash(b Block) (string, error) {
	ms, ok := e.src.(memoSource)
	if !ok {
		return e.hash(b)
	}
	v, err := ms.Memo(loader.KindHash, b.Template, func() (any, error) {
		return &hashSet{m: make(map[string]string)}, nil
	})
	if err != nil {
		return e.hash(b)
	}
	set := v.(*hashSet)
	set.mu.Lock()
	defer set.mu.Unlock()
	if h, ok := set.m[b.Name]; ok {
		return h, nil
	}
	h, err := e.hash(b)
	if err != nil {
		return "", err
	}
	set.m[b.Name] = h
	return h, nil
}

func (e *Extractor) hash(b Block) (string, error) {
	content, err := e.Extract(b)
	if err != nil {
		return "", err
	}
	return annotation.Hash(content), nil
}
