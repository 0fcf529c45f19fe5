package heimer

import (
	"encoding/json"
	"strings"
)

type LineKind int

const (
	EmptyLine LineKind = iota
	ScalarLine
	ListLine
	RecordLine
	MultiLine
)

func (k LineKind) String() string {
	switch k {
	case EmptyLine:
		return "empty"
	case ScalarLine:
		return "scalar"
	case ListLine:
		return "list"
	case RecordLine:
		return "record"
	case MultiLine:
		return "multi"
	}
	return "?"
}

func (k LineKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (r Repetition) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// Field is a resolved field declaration. Parent is the name of the enclosing
// record (BodyName for the body).
type Field struct {
	Name                      string       `json:"name"`
	Type                      ResolvedType `json:"type"`
	Repetition                Repetition   `json:"repetition"`
	SeparatedByBlankLine      bool         `json:"separatedByBlankLine,omitempty"`
	NewlinesAfterLastInstance int          `json:"newlinesAfterLastInstance,omitempty"`
	Line                      int          `json:"line"`
	Parent                    string       `json:"parent"`
	children                  []*Line
}

// Children returns the lines of the referenced record for a record-typed
// field, and nil otherwise. The lines are shared with Model.Record, which
// keeps recursive records finite.
func (f *Field) Children() []*Line {
	return f.children
}

// Line is one line of a resolved record, classified by how a generated parser
// reads it.
type Line struct {
	Kind         LineKind `json:"kind"`
	Fields       []*Field `json:"fields,omitempty"`
	TrailingList bool     `json:"trailingList,omitempty"`
	SourceLine   int      `json:"line"`
}

// Field returns the only field of a single-field line.
func (l *Line) Field() *Field {
	if len(l.Fields) == 1 {
		return l.Fields[0]
	}
	return nil
}

func (l *Line) Repetition() Repetition {
	if f := l.Field(); f != nil {
		return f.Repetition
	}
	return Repetition{}
}

type Record struct {
	Name  string  `json:"name"`
	Line  int     `json:"line"`
	Lines []*Line `json:"lines"`
	index map[string]*Field
}

func (r *Record) FindField(name string) *Field {
	return r.index[name]
}

// Fields returns every field of the record in declaration order.
func (r *Record) Fields() []*Field {
	var fields []*Field
	for _, line := range r.Lines {
		fields = append(fields, line.Fields...)
	}
	return fields
}

// Model is the validated, fully resolved form of a format specification.
// Emitters must treat it as read-only.
type Model struct {
	Name          string
	lineDelimiter string
	options       []*CommandLineOption
	records       []*Record
	recordIndex   map[string]*Record
	body          *Record
	contract      ContractOptions
}

func (model *Model) LineDelimiter() string {
	return model.lineDelimiter
}

func (model *Model) CommandLineOptions() []*CommandLineOption {
	return append([]*CommandLineOption(nil), model.options...)
}

// Records returns the user records in declaration order.
func (model *Model) Records() []*Record {
	return append([]*Record(nil), model.records...)
}

func (model *Model) Record(name string) *Record {
	return model.recordIndex[name]
}

func (model *Model) Body() *Record {
	return model.body
}

func (model *Model) Contract() ContractOptions {
	return model.contract
}

func (model *Model) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Name      string               `json:"name,omitempty"`
		Delimiter string               `json:"delimiter"`
		Options   []*CommandLineOption `json:"options,omitempty"`
		Records   []*Record            `json:"records,omitempty"`
		Body      *Record              `json:"body"`
		Contract  ContractOptions      `json:"contract"`
	}{
		Name:      model.Name,
		Delimiter: model.lineDelimiter,
		Options:   model.options,
		Records:   model.records,
		Body:      model.body,
		Contract:  model.contract,
	})
}

// NewModel resolves a schema on its own, for callers that built the schema
// themselves.
func NewModel(schema *Schema, contract ContractOptions) (*Model, error) {
	diags := newDiagnostics(schema.Name, nil)
	model := buildModel(schema, contract, diags)
	if diags.HasErrors() {
		return nil, diags
	}
	return model, nil
}

//----------------

type modelBuilder struct {
	schema   *Schema
	diags    *Diagnostics
	model    *Model
	declared map[string]*RecordDeclaration
}

// buildModel declares every record name first and resolves bodies second, so
// records may reference records declared after them. Problems go to diags.
func buildModel(schema *Schema, contract ContractOptions, diags *Diagnostics) *Model {
	b := &modelBuilder{
		schema:   schema,
		diags:    diags,
		declared: make(map[string]*RecordDeclaration),
		model: &Model{
			Name:          schema.Name,
			lineDelimiter: schema.LineDelimiter,
			options:       schema.Options,
			recordIndex:   make(map[string]*Record),
			contract:      contract,
		},
	}
	var unique []*RecordDeclaration
	for _, rd := range schema.Records {
		if b.declareRecord(rd) {
			unique = append(unique, rd)
		}
	}
	for _, rd := range unique {
		rec := b.resolveRecord(rd)
		b.model.records = append(b.model.records, rec)
		b.model.recordIndex[rec.Name] = rec
	}
	b.model.body = b.resolveRecord(schema.Body)
	b.linkChildren()
	b.checkCycles()
	return b.model
}

func (b *modelBuilder) isRecord(name string) bool {
	_, ok := b.declared[name]
	return ok
}

func (b *modelBuilder) declareRecord(rd *RecordDeclaration) bool {
	marker := rd.Line - 1
	switch {
	case IsPrimitive(rd.Name) || rd.Name == ListType:
		b.diags.Addf(NameConflict, []int{marker}, "Name conflict: '%s' is a primitive type and cannot be used as the name of a user defined record.", rd.Name)
		return false
	case rd.Name == BodyName:
		b.diags.Addf(NameConflict, []int{marker}, "Name conflict: '%s' is reserved for the body and cannot be used as the name of a user defined record.", rd.Name)
		return false
	}
	if prev, ok := b.declared[rd.Name]; ok {
		b.diags.Addf(NameConflict, []int{prev.Line - 1, marker}, "Name conflict: user defined records must have unique names, the name '%s' is used more than once.", rd.Name)
		return false
	}
	b.declared[rd.Name] = rd
	return true
}

func (b *modelBuilder) resolveRecord(rd *RecordDeclaration) *Record {
	rec := &Record{
		Name:  rd.Name,
		Line:  rd.Line,
		index: make(map[string]*Field),
	}
	for _, ld := range rd.Lines {
		line := &Line{SourceLine: ld.Line}
		for i, fd := range ld.Fields {
			f := b.resolveField(rec, fd, i, len(ld.Fields))
			line.Fields = append(line.Fields, f)
		}
		classifyLine(line)
		rec.Lines = append(rec.Lines, line)
	}
	return rec
}

func (b *modelBuilder) resolveField(rec *Record, fd *FieldDeclaration, position, count int) *Field {
	marker := fd.Line - 1
	f := &Field{
		Name:                      fd.Name,
		SeparatedByBlankLine:      fd.SeparatedByBlankLine,
		NewlinesAfterLastInstance: fd.NewlinesAfterLastInstance,
		Line:                      fd.Line,
		Parent:                    rec.Name,
	}
	register := true
	switch {
	case IsPrimitive(fd.Name) || fd.Name == ListType:
		b.diags.Addf(NameConflict, []int{marker}, "Name conflict: '%s' is a primitive type and cannot be used as the name of a field.", fd.Name)
		register = false
	case b.isRecord(fd.Name):
		b.diags.Addf(NameConflict, []int{marker}, "Name conflict: field '%s' in '%s' has the same name as a user defined record.", fd.Name, rec.Name)
		register = false
	default:
		if prev, ok := rec.index[fd.Name]; ok {
			b.diags.Addf(NameConflict, []int{prev.Line - 1, marker}, "Name conflict: field names must be unique, the name '%s' is used more than once in '%s'.", fd.Name, rec.Name)
			register = false
		}
	}

	t, msg := ParseTypeReference(fd.Type, b.isRecord)
	if msg != "" {
		b.diags.Add(TypeError, "Format error in '"+rec.Name+"': "+msg+".", marker)
	}
	f.Type = t
	if t.IsRecord() && count > 1 {
		b.diags.Addf(TypeError, []int{marker}, "Format error in '%s': record-typed field '%s' of type '%s' must be the only field on its line.", rec.Name, fd.Name, t.Record)
	}
	if t.IsList() && position < count-1 {
		b.diags.Addf(TypeError, []int{marker}, "Format error in '%s': list field '%s' can only be the last field on a line.", rec.Name, fd.Name)
	}

	f.Repetition = b.resolveRepetition(rec, fd, count)
	if register {
		rec.index[fd.Name] = f
	}
	return f
}

// resolveRepetition accepts an integer, '+', '*', or the name of an int field
// declared on an earlier line of the same record.
func (b *modelBuilder) resolveRepetition(rec *Record, fd *FieldDeclaration, count int) Repetition {
	r := parseRepetitionSymbol(fd.Repetition)
	if !r.IsRepeated() {
		return r
	}
	marker := fd.Line - 1
	if count > 1 {
		b.diags.Addf(RepetitionError, []int{marker}, "Repetition '%s' on field '%s' is only allowed when the field is alone on its line.", fd.Repetition, fd.Name)
		return Repetition{}
	}
	if r.Kind == VariableRepetition {
		v := rec.index[r.Variable]
		if v == nil || v.Type != ScalarOf(Int) || v.Repetition.IsRepeated() {
			b.diags.Addf(RepetitionError, []int{marker}, "Unknown repetition mode '%s': it must be either an integer, the symbol '+' or '*', or an int field already declared in '%s'.", r.Variable, rec.Name)
			return Repetition{}
		}
	}
	return r
}

func classifyLine(line *Line) {
	switch len(line.Fields) {
	case 0:
		line.Kind = EmptyLine
	case 1:
		switch line.Fields[0].Type.Kind {
		case ListTypeKind:
			line.Kind = ListLine
		case RecordTypeKind:
			line.Kind = RecordLine
		default:
			line.Kind = ScalarLine
		}
	default:
		line.Kind = MultiLine
		line.TrailingList = line.Fields[len(line.Fields)-1].Type.IsList()
	}
}

func (b *modelBuilder) linkChildren() {
	link := func(rec *Record) {
		for _, f := range rec.Fields() {
			if f.Type.IsRecord() {
				if target := b.model.recordIndex[f.Type.Record]; target != nil {
					f.children = target.Lines
				}
			}
		}
	}
	for _, rec := range b.model.records {
		link(rec)
	}
	link(b.model.body)
}

// checkCycles rejects records that require themselves. An edge only counts
// when the reference cannot match zero instances.
func (b *modelBuilder) checkCycles() {
	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int)
	reported := make(map[string]bool)
	var stack []string
	var visit func(name string)
	visit = func(name string) {
		color[name] = gray
		stack = append(stack, name)
		rec := b.model.recordIndex[name]
		for _, f := range rec.Fields() {
			if !f.Type.IsRecord() || f.Repetition.Optional() {
				continue
			}
			next := f.Type.Record
			if b.model.recordIndex[next] == nil {
				continue
			}
			switch color[next] {
			case white:
				visit(next)
			case gray:
				b.reportCycle(stack, next, reported)
			}
		}
		stack = stack[:len(stack)-1]
		color[name] = black
	}
	for _, rec := range b.model.records {
		if color[rec.Name] == white {
			visit(rec.Name)
		}
	}
}

func (b *modelBuilder) reportCycle(stack []string, start string, reported map[string]bool) {
	i := len(stack) - 1
	for i > 0 && stack[i] != start {
		i--
	}
	path := append(append([]string(nil), stack[i:]...), start)
	if reported[start] {
		return
	}
	for _, name := range path {
		reported[name] = true
	}
	rec := b.model.recordIndex[start]
	b.diags.Addf(TypeError, []int{rec.Line - 1}, "Record '%s' requires itself through %s, so it can never be completely parsed.", start, strings.Join(path, " -> "))
}
