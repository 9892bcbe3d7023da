package block

import (
	"errors"
	"io/fs"

	"twigblock/internal/diag"
	"twigblock/internal/loader"
	"twigblock/internal/twig"
)

// Classify maps a load/resolve/extract error to a diagnostic code and
// severity. line is the best known location, 0 if none.
func Classify(err error) (code diag.Code, sev diag.Severity, line int) {
	var (
		cycle *CycleError
		drift *SyntaxError
		syn   *twig.SyntaxError
		pathE *fs.PathError
	)
	switch {
	case errors.As(err, &cycle):
		return diag.ResCycle, diag.SevError, 0
	case errors.As(err, &drift):
		if drift.Marker == "line range" {
			return diag.SynLineOutOfRange, diag.SevError, drift.Line
		}
		return diag.SynMarkerNotFound, diag.SevError, drift.Line
	case errors.As(err, &syn):
		return syn.Code, diag.SevError, syn.Line
	case errors.Is(err, loader.ErrTemplateNotFound):
		return diag.LoadTemplateNotFound, diag.SevWarning, 0
	case errors.Is(err, loader.ErrInvalidName):
		return diag.LoadInvalidName, diag.SevError, 0
	case errors.As(err, &pathE):
		return diag.IORead, diag.SevError, 0
	}
	return diag.LoadEngine, diag.SevError, 0
}

// AncestryCause strips the block from a ResolveOrigin error whose cause
// lies in the extends chain (missing ancestor, cycle, unparseable
// ancestor). Such a cause is identical for every block of the template.
func AncestryCause(err error) (error, bool) {
	var (
		cycle *CycleError
		syn   *twig.SyntaxError
	)
	switch {
	case errors.As(err, &cycle):
		return cycle, true
	case errors.As(err, &syn):
		return syn, true
	case errors.Is(err, loader.ErrTemplateNotFound):
		if inner := errors.Unwrap(err); inner != nil {
			return inner, true
		}
		return err, true
	}
	return nil, false
}
