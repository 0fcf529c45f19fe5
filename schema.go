package heimer

import (
	"strconv"
)

const (
	HeadTag     = "head"
	OptionsTag  = "options"
	ObjectsTag  = "objects"
	SingleTag   = "single"
	MultipleTag = "multiple"
	BodyTag     = "body"
)

// Tags lists the recognized tag names. Each appears as "<name>" alone on a line.
var Tags = []string{
	HeadTag,
	OptionsTag,
	ObjectsTag,
	SingleTag,
	MultipleTag,
	BodyTag,
}

const (
	DefaultLineDelimiter = " "
	BodyName             = "Body"
	OneOrMoreSymbol      = "+"
	ZeroOrMoreSymbol     = "*"
	BlankSeparatorSymbol = "!"
	InlineComment        = '#'
)

// CommandLineOption binds a generated parser's command line flag to a variable.
type CommandLineOption struct {
	Flag     string     `json:"flag"`
	Variable string     `json:"variable"`
	Type     ScalarKind `json:"type"`
	Line     int        `json:"line"`
}

// FieldDeclaration is a field as written, before its type and repetition are resolved.
type FieldDeclaration struct {
	Name                      string `json:"name"`
	Type                      string `json:"type"`
	Repetition                string `json:"repetition,omitempty"`
	SeparatedByBlankLine      bool   `json:"separatedByBlankLine,omitempty"`
	NewlinesAfterLastInstance int    `json:"newlinesAfterLastInstance,omitempty"`
	Line                      int    `json:"line"`
}

func (f *FieldDeclaration) String() string {
	s := f.Name + ":" + f.Type
	if f.Repetition != "" {
		s += ":" + f.Repetition
		if f.SeparatedByBlankLine {
			s += BlankSeparatorSymbol
		}
	}
	return s
}

// LineDeclaration is one line of a record as written. A line without fields
// denotes a required blank line in the data.
type LineDeclaration struct {
	Line   int                 `json:"line"`
	Fields []*FieldDeclaration `json:"fields"`
}

// RecordDeclaration is a user record, or the body, as written.
type RecordDeclaration struct {
	Name  string             `json:"name"`
	Line  int                `json:"line"`
	Lines []*LineDeclaration `json:"lines"`
}

func (rd *RecordDeclaration) AddFieldsAsLine(line int, fields []*FieldDeclaration) {
	if fields == nil {
		fields = []*FieldDeclaration{}
	}
	rd.Lines = append(rd.Lines, &LineDeclaration{Line: line, Fields: fields})
}

// Schema is the raw result of scanning a format specification.
type Schema struct {
	Name          string               `json:"name,omitempty"`
	LineDelimiter string               `json:"delimiter"`
	Options       []*CommandLineOption `json:"options,omitempty"`
	Records       []*RecordDeclaration `json:"records,omitempty"`
	Body          *RecordDeclaration   `json:"body"`
}

func NewSchema() *Schema {
	return &Schema{
		LineDelimiter: DefaultLineDelimiter,
		Body:          &RecordDeclaration{Name: BodyName},
	}
}

type RepetitionKind int

const (
	NoRepetition RepetitionKind = iota
	FixedRepetition
	VariableRepetition
	OneOrMore
	ZeroOrMore
)

func (k RepetitionKind) String() string {
	switch k {
	case NoRepetition:
		return "none"
	case FixedRepetition:
		return "fixed"
	case VariableRepetition:
		return "variable"
	case OneOrMore:
		return "one-or-more"
	case ZeroOrMore:
		return "zero-or-more"
	}
	return "?"
}

// Repetition says how many times a field's single-instance read is repeated.
type Repetition struct {
	Kind     RepetitionKind
	Count    int
	Variable string
}

func (r Repetition) IsRepeated() bool {
	return r.Kind != NoRepetition
}

// Optional reports whether the repetition may match zero instances.
func (r Repetition) Optional() bool {
	switch r.Kind {
	case ZeroOrMore, VariableRepetition:
		return true
	case FixedRepetition:
		return r.Count == 0
	}
	return false
}

func (r Repetition) String() string {
	switch r.Kind {
	case FixedRepetition:
		return strconv.Itoa(r.Count)
	case VariableRepetition:
		return r.Variable
	case OneOrMore:
		return OneOrMoreSymbol
	case ZeroOrMore:
		return ZeroOrMoreSymbol
	}
	return ""
}

// parseRepetitionSymbol classifies a raw repetition symbol. Variable names are
// returned unresolved.
func parseRepetitionSymbol(sym string) Repetition {
	switch sym {
	case "":
		return Repetition{}
	case OneOrMoreSymbol:
		return Repetition{Kind: OneOrMore}
	case ZeroOrMoreSymbol:
		return Repetition{Kind: ZeroOrMore}
	}
	if n, err := strconv.Atoi(sym); err == nil && n >= 0 {
		return Repetition{Kind: FixedRepetition, Count: n}
	}
	return Repetition{Kind: VariableRepetition, Variable: sym}
}
