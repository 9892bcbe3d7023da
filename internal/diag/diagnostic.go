package diag

import "fmt"

type Note struct {
	Template string
	Line     int
	Msg      string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Template string
	Path     string
	Line     int
	Notes    []Note
}

// Location renders "template:line" (or just the template) for messages.
func (d Diagnostic) Location() string {
	name := d.Template
	if name == "" {
		name = d.Path
	}
	if d.Line > 0 {
		return fmt.Sprintf("%s:%d", name, d.Line)
	}
	return name
}

func (d Diagnostic) String() string {
	loc := d.Location()
	if loc == "" {
		return fmt.Sprintf("%s %s: %s", d.Severity, d.Code.ID(), d.Message)
	}
	return fmt.Sprintf("%s %s %s: %s", loc, d.Severity, d.Code.ID(), d.Message)
}
