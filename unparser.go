package heimer

import (
	"strconv"
	"strings"
	"text/template"
)

// specTemplate writes the canonical form of a specification: every section in
// a fixed order, the head only when the delimiter is not the default, and
// records in the objects section.
const specTemplate = `{{if ne .LineDelimiter " "}}<head>
delimiter {{quote .LineDelimiter}}

{{end}}{{with .CommandLineOptions}}<options>
{{range .}}{{.Flag}} {{.Variable}} {{.Type}}
{{end}}
{{end}}{{with .Records}}<objects>
{{range .}}{{.Name}}
{{lines .Lines}}
{{end}}{{end}}<body>
{{lines .Body.Lines}}`

type specEmitter struct{}

func (specEmitter) Name() string         { return "heimer" }
func (specEmitter) Extensions() []string { return []string{".heimer"} }

func (specEmitter) Emit(model *Model, conf *Data) (string, error) {
	return Unparse(model)
}

func init() {
	RegisterEmitter(specEmitter{})
}

// Unparse renders a model back into specification source. Parsing the result
// yields the same model, apart from source line numbers.
func Unparse(model *Model) (string, error) {
	gen := &Generator{}
	funcMap := template.FuncMap{
		"quote": quoteDelimiter,
		"lines": unparseLines,
	}
	gen.Begin()
	gen.EmitTemplate("spec", specTemplate, model, funcMap)
	s := gen.End()
	return s, gen.Err
}

// quoteDelimiter quotes a delimiter so that comment stripping leaves it
// intact: '#' is written as "\#".
func quoteDelimiter(s string) string {
	return strings.ReplaceAll(strconv.Quote(s), "#", `\#`)
}

func unparseLines(lines []*Line) string {
	var b strings.Builder
	for _, line := range lines {
		for i, f := range line.Fields {
			if i > 0 {
				b.WriteString(" ")
			}
			b.WriteString(unparseField(f))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func unparseField(f *Field) string {
	s := f.Name + ":" + f.Type.String()
	if f.Repetition.IsRepeated() {
		s += ":" + f.Repetition.String()
		if f.SeparatedByBlankLine {
			s += BlankSeparatorSymbol
		}
	}
	return s
}
