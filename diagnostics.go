package heimer

import (
	"fmt"
	"path/filepath"
	"strings"
)

type DiagnosticKind int

const (
	StructuralError DiagnosticKind = iota + 1
	FieldSyntaxError
	TypeError
	NameConflict
	RepetitionError
)

func (k DiagnosticKind) String() string {
	switch k {
	case StructuralError:
		return "StructuralError"
	case FieldSyntaxError:
		return "FieldSyntaxError"
	case TypeError:
		return "TypeError"
	case NameConflict:
		return "NameConflict"
	case RepetitionError:
		return "RepetitionError"
	}
	return "?"
}

// Diagnostic is one problem found in a format specification. Lines are
// 1-based; Text holds the raw source line for each entry of Lines.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Message string         `json:"message"`
	Lines   []int          `json:"lines,omitempty"`
	Text    []string       `json:"text,omitempty"`
}

func (d *Diagnostic) String() string {
	var b strings.Builder
	b.WriteString("Error: ")
	b.WriteString(d.Message)
	for i, line := range d.Lines {
		fmt.Fprintf(&b, "\n    at line %d:\t%q", line, d.Text[i])
	}
	return b.String()
}

// Diagnostics accumulates everything wrong with one specification, so that a
// single run reports all of it.
type Diagnostics struct {
	Path    string
	source  []string
	Entries []*Diagnostic
	cause   error
}

func newDiagnostics(path string, source []string) *Diagnostics {
	return &Diagnostics{Path: path, source: source}
}

// Add records a diagnostic. Line markers are 0-based indices into the source.
func (ds *Diagnostics) Add(kind DiagnosticKind, msg string, lineMarkers ...int) *Diagnostic {
	d := &Diagnostic{Kind: kind, Message: msg}
	for _, marker := range lineMarkers {
		d.Lines = append(d.Lines, marker+1)
		text := ""
		if marker >= 0 && marker < len(ds.source) {
			text = ds.source[marker]
		}
		d.Text = append(d.Text, text)
	}
	Debug("diagnostic", "kind", kind.String(), "message", msg, "lines", d.Lines)
	ds.Entries = append(ds.Entries, d)
	return d
}

func (ds *Diagnostics) Addf(kind DiagnosticKind, lineMarkers []int, format string, args ...interface{}) *Diagnostic {
	return ds.Add(kind, fmt.Sprintf(format, args...), lineMarkers...)
}

func (ds *Diagnostics) HasErrors() bool {
	return ds != nil && len(ds.Entries) > 0
}

// Has reports whether any entry is of the given kind.
func (ds *Diagnostics) Has(kind DiagnosticKind) bool {
	if ds == nil {
		return false
	}
	for _, d := range ds.Entries {
		if d.Kind == kind {
			return true
		}
	}
	return false
}

func (ds *Diagnostics) Error() string {
	msgs := make([]string, 0, len(ds.Entries))
	for _, d := range ds.Entries {
		msgs = append(msgs, d.String())
	}
	return strings.Join(msgs, "\n\n")
}

// Unwrap returns the I/O error that stopped the specification from being
// read at all, if any.
func (ds *Diagnostics) Unwrap() error {
	return ds.cause
}

// Annotate renders every diagnostic with a window of surrounding source lines,
// the offending line highlighted in color.
func (ds *Diagnostics) Annotate(color string, contextSize int) string {
	var b strings.Builder
	for _, d := range ds.Entries {
		b.WriteString(formattedAnnotation(ds.Path, ds.source, "*** ", d, color, contextSize))
	}
	return b.String()
}

func formattedAnnotation(filename string, lines []string, prefix string, d *Diagnostic, color string, contextSize int) string {
	highlight := color + "\033[1m"
	restore := BLACK + "\033[0m"
	name := ""
	if filename != "" {
		name = filepath.Base(filename) + ":"
	}
	if len(d.Lines) == 0 {
		return fmt.Sprintf("%s%s %s%s%s\n", prefix, name, highlight, d.Message, restore)
	}
	line := d.Lines[len(d.Lines)-1] - 1
	if contextSize < 0 || line >= len(lines) {
		return fmt.Sprintf("%s%s%d: %s\n", prefix, name, line+1, d.Message)
	}
	begin := max(0, line-contextSize)
	end := min(len(lines), line+contextSize+1)
	tmp := ""
	for i, l := range lines[begin:end] {
		if i+begin == line {
			tmp += fmt.Sprintf("%3d\t%s%v%s\n", i+begin+1, highlight, l, restore)
		} else {
			tmp += fmt.Sprintf("%3d\t%v\n", i+begin+1, l)
		}
	}
	return fmt.Sprintf("%s%s%d: %s%s%s\n%s", prefix, name, line+1, highlight, d.Message, restore, tmp)
}
