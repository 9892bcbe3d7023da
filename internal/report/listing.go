package report

import (
	"fmt"
	"strings"

	"twigblock/internal/block"
	"twigblock/internal/diag"
	"twigblock/internal/pipeline"
)

// Inspect prints every collected annotation comment.
func (p *Printer) Inspect(res *pipeline.InspectResult) error {
	comments := res.Comments
	if comments == nil {
		comments = []block.Comment{}
	}
	summary := map[string]int{"templates": len(res.Targets), "comments": len(comments)}
	if ok, err := p.emit(p.document("inspect", summary, comments, res.Bag)); ok {
		return err
	}

	t := &table{header: []string{"LOCATION", "BLOCK", "HASH", "VERSION", "STATE"}}
	for _, c := range comments {
		state := colored("attached", okColor)
		switch {
		case !c.Parsed:
			state = colored("unparseable", badColor)
		case !c.Attached:
			state = colored("detached", warnColor)
		}
		name := c.Block
		if name == "" {
			name = "-"
		}
		t.add(plain(fmt.Sprintf("%s:%d", c.Template, c.Line)), plain(name),
			plain(shortHash(c.Hash)), plain(c.Version), state)
	}
	if len(t.rows) > 0 {
		if err := t.render(p.w, p.opts.Color); err != nil {
			return err
		}
	}
	fmt.Fprintf(p.w, "%d annotations in %d templates\n", len(comments), len(res.Targets))
	p.timings()
	return nil
}

// Blocks prints the block table of one template.
func (p *Printer) Blocks(template string, rows []pipeline.BlockRow, bag *diag.Bag) error {
	if rows == nil {
		rows = []pipeline.BlockRow{}
	}
	if ok, err := p.emit(p.document("blocks", map[string]string{"template": template}, rows, bag)); ok {
		return err
	}

	t := &table{header: []string{"BLOCK", "LINES", "ORIGIN", "HASH"}}
	for _, r := range rows {
		name := strings.Repeat("  ", r.Block.Level) + r.Block.Name
		origin := colored("-", dimColor)
		switch {
		case r.Error != "":
			origin = colored(r.Error, badColor)
		case r.Origin != nil:
			origin = plain(fmt.Sprintf("%s:%s", r.Origin.Template, r.Origin.Lines))
		}
		t.add(plain(name), plain(r.Block.Lines.String()), origin, plain(shortHash(r.Hash)))
	}
	fmt.Fprintln(p.w, template)
	if err := t.render(p.w, p.opts.Color); err != nil {
		return err
	}
	return p.Diagnostics(bag)
}

// Graph prints the inheritance order, one level per line.
func (p *Printer) Graph(res *pipeline.GraphResult) error {
	if ok, err := p.emit(p.document("graph", map[string]int{"levels": len(res.Levels), "cyclic": len(res.Cycles)}, res, res.Bag)); ok {
		return err
	}
	for i, level := range res.Levels {
		fmt.Fprintf(p.w, "level %d:\n", i)
		for _, name := range level {
			if parent, ok := res.Parents[name]; ok {
				fmt.Fprintf(p.w, "  %s -> %s\n", name, parent)
			} else {
				fmt.Fprintf(p.w, "  %s\n", name)
			}
		}
	}
	if len(res.Cycles) > 0 {
		head := "cycle:"
		if p.opts.Color {
			head = badColor.Sprint(head)
		}
		fmt.Fprintf(p.w, "%s %s\n", head, strings.Join(res.Cycles, ", "))
	}
	return p.Diagnostics(res.Bag)
}
