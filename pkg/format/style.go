package format

import (
	"fmt"
	"strings"
)

// PrintStyle is the configured presentation style.
type PrintStyle string

const (
	// PrintPretty selects the human-readable envelope with pretty fields.
	PrintPretty PrintStyle = "pretty"
	// PrintPlain selects the human-readable envelope with compact fields.
	PrintPlain PrintStyle = "plain"
	// PrintJSON selects the structured single-line envelope.
	PrintJSON PrintStyle = "json"
)

// ParsePrintStyle parses a PRINT_STYLE value. The empty string selects
// PrintPretty.
func ParsePrintStyle(s string) (PrintStyle, error) {
	switch PrintStyle(strings.ToLower(strings.TrimSpace(s))) {
	case PrintPretty, "":
		return PrintPretty, nil
	case PrintPlain:
		return PrintPlain, nil
	case PrintJSON:
		return PrintJSON, nil
	default:
		return "", fmt.Errorf("unknown print style %q (expected pretty, plain or json)", s)
	}
}

// Structured reports whether the style uses the JSON envelope.
func (p PrintStyle) Structured() bool {
	return p == PrintJSON
}

// PrettyFieldsDefault reports whether nested fields are pretty-printed when
// the pretty-fields option is not set explicitly.
func (p PrintStyle) PrettyFieldsDefault() bool {
	return p == PrintPretty
}

// Options controls how events are rendered. It is built once at startup and
// shared read-only by every request.
type Options struct {
	// Structured selects the single-line JSON envelope.
	Structured bool

	// PrettyFields pretty-prints body, headers and query.
	PrettyFields bool

	// DecodeGzip logs gzip-encoded bodies in decompressed form.
	DecodeGzip bool

	// MaxBodyBytes truncates logged bodies. Zero means unlimited.
	MaxBodyBytes int

	// RedactHeaders lists header names whose values are hidden in logs.
	RedactHeaders []string
}

// NewOptions returns the default options for a print style.
func NewOptions(style PrintStyle) Options {
	return Options{
		Structured:   style.Structured(),
		PrettyFields: style.PrettyFieldsDefault(),
		DecodeGzip:   true,
	}
}
