package graphql

import (
	"fmt"
	"strings"

	"github.com/heimer-format/heimer"
)

func init() {
	heimer.RegisterEmitter(&Emitter{})
}

// Emitter renders a model as a GraphQL schema describing the values a
// conforming parser produces.
type Emitter struct{}

func (e *Emitter) Name() string {
	return "graphql"
}

func (e *Emitter) Extensions() []string {
	return []string{".graphql", ".gql"}
}

func (e *Emitter) Emit(model *heimer.Model, conf *heimer.Data) (string, error) {
	return FromModel(model, conf)
}

// FromModel renders the model and checks the result by parsing it back.
func FromModel(model *heimer.Model, conf *heimer.Data) (string, error) {
	w := &Writer{model: model}
	w.Config = conf
	w.query = w.GetConfigString("graphql-query-type", heimer.BodyName)
	w.Begin()
	w.EmitOptions()
	for _, rec := range model.Records() {
		w.EmitRecord(rec.Name, rec)
	}
	w.EmitRecord(w.query, model.Body())
	w.Emitf("schema {\n  query: %s\n}\n", w.query)
	s := w.End()
	if w.Err != nil {
		return "", w.Err
	}
	if err := Check(s, model, w.query); err != nil {
		return "", err
	}
	return s, nil
}

type Writer struct {
	heimer.Generator
	model *heimer.Model
	query string
}

func (w *Writer) EmitOptions() {
	opts := w.model.CommandLineOptions()
	if len(opts) == 0 {
		return
	}
	w.Emit("# Command line options:\n")
	for _, opt := range opts {
		w.Emitf("#   -%s %s: %s\n", opt.Flag, opt.Variable, opt.Type)
	}
	w.Emit("\n")
}

func (w *Writer) EmitRecord(name string, rec *heimer.Record) {
	fields := rec.Fields()
	if name == w.query && w.model.LineDelimiter() != heimer.DefaultLineDelimiter {
		w.Emit(w.FormatComment("", "# ", fmt.Sprintf("Fields sharing a line are separated by %q.", w.model.LineDelimiter()), 80))
	}
	w.Emitf("type %s {\n", name)
	if len(fields) == 0 {
		w.Emit("  \"The record has no fields.\"\n  _empty: Boolean\n")
	}
	for _, f := range fields {
		if d := description(f); d != "" {
			w.Emitf("  %q\n", d)
		}
		w.Emitf("  %s: %s\n", f.Name, w.typeRef(f))
	}
	w.Emit("}\n\n")
}

func (w *Writer) typeRef(f *heimer.Field) string {
	var t string
	switch f.Type.Kind {
	case heimer.ListTypeKind:
		t = "[" + scalarType(f.Type.Scalar) + "!]!"
	case heimer.RecordTypeKind:
		t = f.Type.Record + "!"
	default:
		t = scalarType(f.Type.Scalar) + "!"
	}
	if f.Repetition.IsRepeated() {
		t = "[" + t + "]!"
	}
	return t
}

func scalarType(k heimer.ScalarKind) string {
	switch k {
	case heimer.Int:
		return "Int"
	case heimer.Float:
		return "Float"
	case heimer.Bool:
		return "Boolean"
	}
	return "String"
}

func description(f *heimer.Field) string {
	var parts []string
	r := f.Repetition
	switch r.Kind {
	case heimer.FixedRepetition:
		parts = append(parts, fmt.Sprintf("exactly %d instances", r.Count))
	case heimer.VariableRepetition:
		parts = append(parts, fmt.Sprintf("'%s' instances", r.Variable))
	case heimer.OneOrMore:
		parts = append(parts, "one or more instances")
	case heimer.ZeroOrMore:
		parts = append(parts, "zero or more instances")
	}
	if f.SeparatedByBlankLine {
		parts = append(parts, "separated by a blank line")
	}
	if len(parts) == 0 {
		return ""
	}
	return heimer.Capitalize(strings.Join(parts, ", ")) + "."
}
