package twig

import (
	"fmt"

	"twigblock/internal/diag"
)

// SyntaxError reports malformed template source.
type SyntaxError struct {
	Template string
	Line     int
	Code     diag.Code
	Msg      string
}

func (e *SyntaxError) Error() string {
	if e.Template == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("%s:%d: %s", e.Template, e.Line, e.Msg)
}

func syntaxErrorf(line int, code diag.Code, format string, args ...any) *SyntaxError {
	return &SyntaxError{Line: line, Code: code, Msg: fmt.Sprintf(format, args...)}
}
