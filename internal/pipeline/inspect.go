package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/sahilm/fuzzy"

	"twigblock/internal/block"
	"twigblock/internal/diag"
	"twigblock/internal/loader"
)

// InspectResult lists annotation comments without checking them.
type InspectResult struct {
	Targets  []string
	Comments []block.Comment
	Bag      *diag.Bag
}

// Inspect collects every annotation-shaped comment of the targets,
// attached to a block or not.
func Inspect(ctx context.Context, req *Request) (*InspectResult, error) {
	s, err := Prepare(ctx, req)
	res := &InspectResult{}
	if s != nil {
		res.Targets, res.Bag = s.Targets, s.Bag
	}
	if err != nil {
		return res, err
	}
	rep := diag.BagReporter{Bag: res.Bag}
	phase := beginPhase(req.Timer, "inspect")
	for _, name := range s.Targets {
		if ctx.Err() != nil {
			break
		}
		t, err := s.Loader.Load(name)
		if err != nil {
			code, _, line := block.Classify(err)
			diag.ReportError(rep, code, name, line, err.Error()).Emit()
			emit(req.Progress, Event{File: name, Stage: StageInspect, Status: StatusError, Err: err})
			continue
		}
		for _, c := range block.CollectAll(t, req.Version) {
			if !c.Attached {
				diag.ReportInfo(rep, diag.AnnDetached, name, c.Line, "annotation is not directly above a block").Emit()
			}
			res.Comments = append(res.Comments, c)
		}
		emit(req.Progress, Event{File: name, Stage: StageInspect, Status: StatusDone})
	}
	endPhase(req.Timer, phase, fmt.Sprintf("%d comments", len(res.Comments)))
	return res, nil
}

// BlockRow is one entry of a template's block table with its origin.
type BlockRow struct {
	Block  block.Block  `json:"block" yaml:"block"`
	Origin *block.Block `json:"origin,omitempty" yaml:"origin,omitempty"`
	Hash   string       `json:"hash,omitempty" yaml:"hash,omitempty"`
	Error  string       `json:"error,omitempty" yaml:"error,omitempty"`
}

// Blocks returns the block table of template, resolved against its
// ancestors. A non-empty filter keeps blocks whose name fuzzy-matches it,
// best matches first.
func Blocks(ctx context.Context, req *Request, template, filter string) ([]BlockRow, *diag.Bag, error) {
	s, err := Prepare(ctx, req)
	if err != nil && !errors.Is(err, ErrNoTargets) {
		return nil, nil, err
	}
	t, err := s.Loader.Load(template)
	if err != nil {
		return nil, s.Bag, fmt.Errorf("load %s: %w", template, err)
	}
	blocks := block.Blocks(t)
	if filter != "" {
		blocks = filterBlocks(blocks, filter)
	}

	resolver := block.NewResolver(s.Loader)
	extractor := block.NewExtractor(s.Loader, s.Loader.Delimiters())
	rows := make([]BlockRow, 0, len(blocks))
	for _, b := range blocks {
		row := BlockRow{Block: b}
		origin, ok, err := resolver.ResolveOrigin(b.Template, b.Name)
		switch {
		case err != nil:
			row.Error = err.Error()
		case ok:
			row.Origin = &origin
			if h, err := extractor.Hash(origin); err == nil {
				row.Hash = h
			} else {
				row.Error = err.Error()
			}
		}
		rows = append(rows, row)
	}
	return rows, s.Bag, nil
}

type blockNames []block.Block

func (b blockNames) String(i int) string { return b[i].Name }
func (b blockNames) Len() int            { return len(b) }

func filterBlocks(blocks []block.Block, pattern string) []block.Block {
	matches := fuzzy.FindFrom(pattern, blockNames(blocks))
	out := make([]block.Block, 0, len(matches))
	for _, m := range matches {
		out = append(out, blocks[m.Index])
	}
	return out
}

var _ block.Source = (*loader.Loader)(nil)
