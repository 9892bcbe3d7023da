package block

import (
	"fmt"
	"strings"
)

// CycleError reports an extends chain that revisits a template.
type CycleError struct {
	Chain []string
}

func (e *CycleError) Error() string {
	return "recursion detected: " + strings.Join(e.Chain, " -> ")
}

// SyntaxError reports a block marker missing from the current source.
type SyntaxError struct {
	Template string
	Block    string
	Line     int
	Marker   string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %s marker of block %q not found", e.Template, e.Line, e.Marker, e.Block)
}
