package diagnostic

import (
	"errors"
	"fmt"
	"strings"

	"option-tagger/internal/common"
)

// Diagnostic codes.
const (
	CodeConflict           = "conflict"
	CodeMalformedTypeShape = "malformed_type_shape"
	CodeMalformedTag       = "malformed_tag"
	CodeUnknownMarker      = "unknown_marker"
	CodeSharedTag          = "shared_tag"
	CodeOverlayType        = "overlay_unknown_type"
	CodeOverlayField       = "overlay_unknown_field"
	CodeOverlayVersion     = "overlay_version"
)

// Diagnostics holds all diagnostic information from a run.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity DiagnosticSeverity `json:"severity" yaml:"severity"`
	// Code is a unique identifier for this type of diagnostic.
	Code string `json:"code" yaml:"code"`
	// Message is the human-readable description.
	Message string `json:"message" yaml:"message"`
	// TypeName identifies the struct this relates to (if any).
	TypeName string `json:"type,omitempty" yaml:"type,omitempty"`
	// FieldPath identifies which field this relates to (if any).
	FieldPath string `json:"field,omitempty" yaml:"field,omitempty"`
	// Position is "file:line:col" of the field, when known.
	Position string `json:"position,omitempty" yaml:"position,omitempty"`
	// Suggestions are potential fixes or alternatives.
	Suggestions []string `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
}

// DiagnosticSeverity represents the severity level of a diagnostic.
type DiagnosticSeverity int

const (
	DiagnosticWarning DiagnosticSeverity = iota
	DiagnosticError
)

// String returns a human-readable severity name.
func (s DiagnosticSeverity) String() string {
	switch s {
	case DiagnosticWarning:
		return "warning"
	case DiagnosticError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// MarshalText renders the severity by name in JSON and YAML output.
func (s DiagnosticSeverity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(code, message, typeName, fieldPath string) {
	d.Add(Diagnostic{
		Severity:  DiagnosticError,
		Code:      code,
		Message:   message,
		TypeName:  typeName,
		FieldPath: fieldPath,
	})
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, message, typeName, fieldPath string) {
	d.Add(Diagnostic{
		Severity:  DiagnosticWarning,
		Code:      code,
		Message:   message,
		TypeName:  typeName,
		FieldPath: fieldPath,
	})
}

// Add adds a fully populated diagnostic according to its severity.
func (d *Diagnostics) Add(diag Diagnostic) {
	if diag.Severity == DiagnosticError {
		d.Errors = append(d.Errors, diag)
		return
	}

	d.Warnings = append(d.Warnings, diag)
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// Len returns the number of diagnostics of all severities.
func (d *Diagnostics) Len() int {
	return len(d.Errors) + len(d.Warnings)
}

// Merge merges another Diagnostics instance into this one.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
}

// IsValid returns true if there are no errors.
func (d *Diagnostics) IsValid() bool {
	return len(d.Errors) == 0
}

// Error returns a combined error from all error diagnostics, or nil if valid.
func (d *Diagnostics) Error() error {
	if d.IsValid() {
		return nil
	}

	var parts []string
	for _, e := range d.Errors {
		parts = append(parts, e.String())
	}

	return errors.New(strings.Join(parts, "; "))
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	var prefix []string
	if d.Position != "" {
		prefix = append(prefix, d.Position+":")
	}

	if d.FieldPath != "" {
		prefix = append(prefix, d.FieldPath)
	} else if d.TypeName != "" {
		prefix = append(prefix, "["+d.TypeName+"]")
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if len(d.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(quoteAll(d.Suggestions), " or "))
	}

	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + ": " + msg
	}

	return msg
}

func quoteAll(items []string) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = fmt.Sprintf("%q", s)
	}

	return out
}
