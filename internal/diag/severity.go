package diag

import (
	"fmt"
	"strings"
)

// Severity orders diagnostics: info < warning < error.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

var severityNames = [...]string{"INFO", "WARNING", "ERROR"}

func (s Severity) String() string {
	if int(s) < len(severityNames) {
		return severityNames[s]
	}
	return "UNKNOWN"
}

// ParseSeverity reads a --min-severity value. "warn" is accepted for warning.
func ParseSeverity(s string) (Severity, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	if v == "WARN" {
		return SevWarning, nil
	}
	for i, name := range severityNames {
		if name == v {
			return Severity(i), nil
		}
	}
	return SevInfo, fmt.Errorf("unknown severity %q (want info, warning or error)", s)
}
