package heimer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strconv"
)

var (
	delimiterPattern = regexp.MustCompile(`^delimiter\s+"(.+)"$`)
	optionPattern    = regexp.MustCompile(`^(\w+)\s+(\w+)\s+(\w+)$`)
)

// ParseFile reads, validates and resolves a format specification. On failure
// the error is a *Diagnostics holding everything that was found.
func ParseFile(path string, conf *Data) (*Model, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		diags := newDiagnostics(path, nil)
		diags.cause = err
		reason := err
		var perr *fs.PathError
		if errors.As(err, &perr) {
			reason = perr.Err
		}
		diags.Addf(StructuralError, nil, "Could not read file %s: %v.", path, reason)
		return nil, diags
	}
	p, err := newParser(path, string(b), conf)
	if err != nil {
		return nil, err
	}
	return p.Parse()
}

func ParseString(src string, conf *Data) (*Model, error) {
	p, err := newParser("", src, conf)
	if err != nil {
		return nil, err
	}
	return p.Parse()
}

//----------------

type Parser struct {
	path     string
	conf     *Data
	scanner  *Scanner
	tags     *TagIntervals
	schema   *Schema
	contract ContractOptions
	diags    *Diagnostics
}

func newParser(path, src string, conf *Data) (*Parser, error) {
	contract, err := ContractOptionsFromData(conf)
	if err != nil {
		return nil, err
	}
	scanner := NewScanner(src)
	return &Parser{
		path:     path,
		conf:     conf,
		scanner:  scanner,
		schema:   NewSchema(),
		contract: contract,
		diags:    newDiagnostics(path, scanner.Lines),
	}, nil
}

func (p *Parser) Schema() *Schema {
	return p.schema
}

func (p *Parser) Diagnostics() *Diagnostics {
	return p.diags
}

// Parse scans and validates the whole specification. Structural errors stop
// it immediately; all other problems are collected and returned together.
func (p *Parser) Parse() (*Model, error) {
	if err := p.ParseNoValidate(); err != nil {
		return nil, err
	}
	return p.Validate()
}

// ParseNoValidate scans tags and collects raw declarations into the schema.
func (p *Parser) ParseNoValidate() error {
	if p.path != "" {
		p.schema.Name = BaseFileName(p.path)
	}
	tags, ok := p.scanner.ScanTags(p.diags)
	p.tags = tags
	if !ok || p.diags.HasErrors() {
		return p.diags
	}
	if !tags.Has(BodyTag) {
		p.diags.Add(StructuralError, "Input file requires a body tag.")
		return p.diags
	}
	for _, ti := range tags.Order {
		switch ti.Name {
		case HeadTag:
			p.parseHeadTag(ti)
		case OptionsTag:
			p.parseOptionsTag(ti)
		case ObjectsTag, SingleTag, MultipleTag:
			p.parseRecordSection(ti)
		case BodyTag:
			p.parseBodyTag(ti)
		}
	}
	if d := p.conf.GetString("delimiter"); d != "" {
		p.schema.LineDelimiter = d
	}
	return nil
}

// Validate resolves the collected schema into a model.
func (p *Parser) Validate() (*Model, error) {
	model := buildModel(p.schema, p.contract, p.diags)
	if p.diags.HasErrors() {
		return nil, p.diags
	}
	return model, nil
}

func (p *Parser) parseHeadTag(ti *TagInterval) {
	begin, end := ti.Contents()
	seen := -1
	for marker := begin; marker < end; marker++ {
		line := p.scanner.Stripped[marker]
		if line == "" {
			continue
		}
		m := delimiterPattern.FindStringSubmatch(line)
		if m == nil {
			p.diags.Add(FieldSyntaxError, "Expected delimiter declaration.", marker)
			continue
		}
		if seen >= 0 {
			p.diags.Add(FieldSyntaxError, "Duplicate delimiter declaration.", seen, marker)
			continue
		}
		seen = marker
		p.schema.LineDelimiter = unquoteDelimiter(m[1])
		Debug("delimiter", "value", p.schema.LineDelimiter)
	}
}

// unquoteDelimiter interprets Go string escapes such as "\t" when the literal
// is a valid quoted string, and otherwise keeps the text as written.
func unquoteDelimiter(lit string) string {
	if s, err := strconv.Unquote(`"` + lit + `"`); err == nil && s != "" {
		return s
	}
	return lit
}

func (p *Parser) parseOptionsTag(ti *TagInterval) {
	begin, end := ti.Contents()
	flags := make(map[string]int)
	variables := make(map[string]int)
	for marker := begin; marker < end; marker++ {
		line := p.scanner.Stripped[marker]
		if line == "" {
			continue
		}
		m := optionPattern.FindStringSubmatch(line)
		if m == nil {
			p.diags.Add(FieldSyntaxError, "Expected command line option.", marker)
			continue
		}
		kind, ok := ScalarKindOf(m[3])
		if !ok {
			p.diags.Addf(TypeError, []int{marker}, "Command line option '%s' must have a primitive type, not '%s'.", m[2], m[3])
			continue
		}
		if prev, ok := flags[m[1]]; ok {
			p.diags.Addf(NameConflict, []int{prev, marker}, "Command line flag '%s' is declared more than once.", m[1])
			continue
		}
		if prev, ok := variables[m[2]]; ok {
			p.diags.Addf(NameConflict, []int{prev, marker}, "Command line option variable '%s' is declared more than once.", m[2])
			continue
		}
		flags[m[1]] = marker
		variables[m[2]] = marker
		p.schema.Options = append(p.schema.Options, &CommandLineOption{
			Flag:     m[1],
			Variable: m[2],
			Type:     kind,
			Line:     marker + 1,
		})
	}
}

func (p *Parser) parseRecordSection(ti *TagInterval) {
	begin, end := ti.Contents()
	var lc *lineCollector
	finish := func() {
		if lc != nil {
			lc.finish()
			p.schema.Records = append(p.schema.Records, lc.rd)
		}
	}
	for marker := begin; marker < end; marker++ {
		line := p.scanner.Stripped[marker]
		if line == "" {
			if lc != nil && p.scanner.IsBlank(marker) {
				lc.blank(marker)
			}
			continue
		}
		if IsIdentifier(line) {
			finish()
			lc = &lineCollector{rd: &RecordDeclaration{Name: line, Line: marker + 1}}
			Debug("record", "name", line, "line", marker+1)
			continue
		}
		if lc == nil {
			p.diags.Add(FieldSyntaxError, "Expected record declaration.", marker)
			continue
		}
		fields := FieldDeclarationsFromLine(line)
		if len(fields) == 0 {
			p.diags.Add(FieldSyntaxError, fmt.Sprintf("Expected field declaration for %q.", lc.rd.Name), lc.rd.Line-1, marker)
			continue
		}
		lc.fields(marker, fields)
	}
	finish()
}

func (p *Parser) parseBodyTag(ti *TagInterval) {
	begin, end := ti.Contents()
	lc := &lineCollector{rd: p.schema.Body}
	lc.rd.Line = ti.Begin + 1
	for marker := begin; marker < end; marker++ {
		line := p.scanner.Stripped[marker]
		if line == "" {
			if p.scanner.IsBlank(marker) {
				lc.blank(marker)
			}
			continue
		}
		fields := FieldDeclarationsFromLine(line)
		if len(fields) == 0 {
			p.diags.Add(FieldSyntaxError, "Expected field declaration for body.", marker)
			continue
		}
		lc.fields(marker, fields)
	}
	lc.finish()
}

// lineCollector accumulates the lines of one record. Blank lines between
// field lines become explicit empty lines; blank lines before the first or
// after the last field line are formatting only.
type lineCollector struct {
	rd       *RecordDeclaration
	pending  []int
	previous *FieldDeclaration
}

func (lc *lineCollector) blank(marker int) {
	if lc.previous == nil {
		return
	}
	lc.pending = append(lc.pending, marker)
	lc.previous.NewlinesAfterLastInstance++
}

func (lc *lineCollector) fields(marker int, fields []*FieldDeclaration) {
	for _, m := range lc.pending {
		lc.rd.AddFieldsAsLine(m+1, nil)
	}
	lc.pending = nil
	for _, f := range fields {
		f.Line = marker + 1
	}
	lc.rd.AddFieldsAsLine(marker+1, fields)
	lc.previous = fields[len(fields)-1]
}

func (lc *lineCollector) finish() {
	if lc.previous != nil {
		lc.previous.NewlinesAfterLastInstance = 0
	}
	lc.pending = nil
}
