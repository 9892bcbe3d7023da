package trace

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

// Format is the output encoding of trace events.
type Format uint8

const (
	FormatAuto   Format = iota // chosen from the output path
	FormatText                 // one aligned line per event
	FormatNDJSON               // one JSON object per line
)

// ParseFormat converts a flag value to Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	}
	return FormatAuto, fmt.Errorf("invalid trace format: %q (expected: auto|text|ndjson)", s)
}

// formatFor picks NDJSON for .ndjson/.jsonl outputs and text otherwise.
func formatFor(f Format, path string) Format {
	if f != FormatAuto {
		return f
	}
	if strings.HasSuffix(path, ".ndjson") || strings.HasSuffix(path, ".jsonl") {
		return FormatNDJSON
	}
	return FormatText
}

// appendEvent encodes ev as one newline-terminated line.
func appendEvent(dst []byte, ev *Event, format Format) []byte {
	if format == FormatNDJSON {
		return appendNDJSON(dst, ev)
	}
	return appendText(dst, ev)
}

type eventJSON struct {
	Time     string            `json:"time"`
	Seq      uint64            `json:"seq"`
	Kind     string            `json:"kind"`
	Scope    string            `json:"scope"`
	SpanID   uint64            `json:"span,omitempty"`
	ParentID uint64            `json:"parent,omitempty"`
	Name     string            `json:"name,omitempty"`
	Template string            `json:"template,omitempty"`
	Block    string            `json:"block,omitempty"`
	Detail   string            `json:"detail,omitempty"`
	DurUS    int64             `json:"dur_us,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
}

func appendNDJSON(dst []byte, ev *Event) []byte {
	data, err := json.Marshal(eventJSON{
		Time:     ev.Time.UTC().Format(time.RFC3339Nano),
		Seq:      ev.Seq,
		Kind:     ev.Kind.String(),
		Scope:    ev.Scope.String(),
		SpanID:   ev.SpanID,
		ParentID: ev.ParentID,
		Name:     ev.Name,
		Template: ev.Template,
		Block:    ev.Block,
		Detail:   ev.Detail,
		DurUS:    ev.Dur.Microseconds(),
		Extra:    ev.Extra,
	})
	if err != nil {
		return dst
	}
	dst = append(dst, data...)
	return append(dst, '\n')
}

// appendText renders
//
//	15:04:05.000 template + @Storefront/base.html.twig
//	15:04:05.002 block    . @Storefront/base.html.twig#content updated
//	15:04:05.003 template - @Storefront/base.html.twig 1.2ms comments=3
func appendText(dst []byte, ev *Event) []byte {
	dst = ev.Time.AppendFormat(dst, "15:04:05.000")
	dst = append(dst, ' ')
	dst = fmt.Appendf(dst, "%-8s ", ev.Scope)
	dst = append(dst, ev.Kind.marker(), ' ')
	dst = append(dst, ev.Subject()...)
	if ev.Template != "" && ev.Name != "" && ev.Name != "template" && ev.Block == "" {
		dst = append(dst, " ["...)
		dst = append(dst, ev.Name...)
		dst = append(dst, ']')
	}
	if ev.Detail != "" {
		dst = append(dst, ' ')
		dst = append(dst, ev.Detail...)
	}
	if ev.Kind == KindSpanEnd {
		dst = append(dst, ' ')
		dst = append(dst, ev.Dur.Round(time.Microsecond).String()...)
	}
	for _, k := range slices.Sorted(maps.Keys(ev.Extra)) {
		dst = append(dst, ' ')
		dst = append(dst, k...)
		dst = append(dst, '=')
		dst = append(dst, ev.Extra[k]...)
	}
	return append(dst, '\n')
}
