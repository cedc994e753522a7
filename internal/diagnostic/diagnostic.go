// Package diagnostic accumulates non-fatal problems encountered while
// building a shader: struct pool exhaustion, registry lookup failures
// surfaced during testing, and pointer alias-analysis rejections.
//
// The generation pipeline is total by construction (expected conditions
// like depth exhaustion or UB never produce an error return); Diagnostics
// exists for the handful of places that need to report more than one
// accumulated problem at once, not as a substitute for normal error
// returns elsewhere in the pipeline.
package diagnostic

import (
	"fmt"
	"strings"
)

// Severity represents the severity level of a diagnostic.
type Severity uint8

const (
	// Error is a problem that made the requested output unavailable.
	Error Severity = iota
	// Warning is a non-blocking issue the caller may want to know about.
	Warning
	// Note provides additional context for another diagnostic.
	Note
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Note:
		return "note"
	default:
		return "unknown"
	}
}

// Diagnostic is a single accumulated message, tagged with the component
// that raised it (e.g. "registry", "alias", "struct-pool") rather than a
// source position, since the core never parses external WGSL text.
type Diagnostic struct {
	Severity  Severity
	Code      Code
	Component string
	Message   string
}

// Error returns a formatted error string.
func (d *Diagnostic) Error() string {
	if d.Component != "" {
		return fmt.Sprintf("%s: %s: %s", d.Component, d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Severity, d.Message)
}

// List collects diagnostics raised while generating a single module.
type List struct {
	diagnostics []Diagnostic
	hasErrors   bool
}

// NewList creates an empty diagnostic list.
func NewList() *List {
	return &List{}
}

// Add adds a diagnostic to the list.
func (l *List) Add(d Diagnostic) {
	l.diagnostics = append(l.diagnostics, d)
	if d.Severity == Error {
		l.hasErrors = true
	}
}

// AddError adds an error-level diagnostic for the given component.
func (l *List) AddError(component string, code Code, message string) {
	l.Add(Diagnostic{Severity: Error, Code: code, Component: component, Message: message})
}

// AddWarning adds a warning-level diagnostic for the given component.
func (l *List) AddWarning(component string, code Code, message string) {
	l.Add(Diagnostic{Severity: Warning, Code: code, Component: component, Message: message})
}

// AddNote adds a note-level diagnostic for the given component.
func (l *List) AddNote(component string, message string) {
	l.Add(Diagnostic{Severity: Note, Component: component, Message: message})
}

// HasErrors returns true if there are any error-level diagnostics.
func (l *List) HasErrors() bool {
	return l.hasErrors
}

// Diagnostics returns all collected diagnostics in report order.
func (l *List) Diagnostics() []Diagnostic {
	return l.diagnostics
}

// Errors returns only error-level diagnostics.
func (l *List) Errors() []Diagnostic {
	var out []Diagnostic
	for _, d := range l.diagnostics {
		if d.Severity == Error {
			out = append(out, d)
		}
	}
	return out
}

// Warnings returns only warning-level diagnostics.
func (l *List) Warnings() []Diagnostic {
	var out []Diagnostic
	for _, d := range l.diagnostics {
		if d.Severity == Warning {
			out = append(out, d)
		}
	}
	return out
}

// Count returns the total number of diagnostics.
func (l *List) Count() int {
	return len(l.diagnostics)
}

// ErrorCount returns the number of error-level diagnostics.
func (l *List) ErrorCount() int {
	count := 0
	for _, d := range l.diagnostics {
		if d.Severity == Error {
			count++
		}
	}
	return count
}

// Format formats all diagnostics as a human-readable, one-line-per-entry
// string suitable for cmd/shadefuzz's stderr output.
func (l *List) Format() string {
	if len(l.diagnostics) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, d := range l.diagnostics {
		sb.WriteString(d.Error())
		if d.Code != "" {
			fmt.Fprintf(&sb, " [%s]", d.Code)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Clear removes all diagnostics.
func (l *List) Clear() {
	l.diagnostics = l.diagnostics[:0]
	l.hasErrors = false
}

// Code identifies the kind of problem a diagnostic reports.
type Code string

const (
	// CodeStructPoolExhausted: the struct registry ran out of candidates
	// for the requested filter (e.g. host-shareable members) before
	// reaching MinStructs.
	CodeStructPoolExhausted Code = "struct-pool-exhausted"
	// CodeRegistryLookupFailed: a type or function lookup against
	// TypeRegistry/FnRegistry found no match for the requested filter.
	CodeRegistryLookupFailed Code = "registry-lookup-failed"
	// CodeAliasRejected: alias analysis rejected a candidate pointer
	// parameter binding as potentially aliasing.
	CodeAliasRejected Code = "alias-rejected"
	// CodeReconditionFallback: the reconditioner substituted a default
	// value because a wrapper could not make an expression safe.
	CodeReconditionFallback Code = "recondition-fallback"
	// CodeOptionRejected: a requested generator option or preset value
	// was out of range and fell back to its default.
	CodeOptionRejected Code = "option-rejected"
)
