package contract

import (
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/heimer-format/heimer"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Cursor is a read position in the input: the byte offset of the next
// unread line and the number of lines consumed so far. Cursors are values, so
// a saved cursor is a complete snapshot.
type Cursor struct {
	Offset int
	Line   int
}

// Reader reads data files conforming to a model, following the parsing
// contract exactly. It has no mutable state and may be shared.
type Reader struct {
	model     *heimer.Model
	delimiter string
	opts      heimer.ContractOptions
}

// NewReader returns a reader for the model, using the contract options the
// model was built with.
func NewReader(model *heimer.Model) *Reader {
	return NewReaderWithOptions(model, model.Contract())
}

func NewReaderWithOptions(model *heimer.Model, opts heimer.ContractOptions) *Reader {
	return &Reader{
		model:     model,
		delimiter: model.LineDelimiter(),
		opts:      opts,
	}
}

// Parse reads the body from input. Records become objects, repeated records
// become tuples, and lists or repeated scalars become lists.
func (r *Reader) Parse(input string) (cty.Value, error) {
	src := &source{text: input, reader: r}
	val, cur, err := src.readLines(r.model.Body().Lines, Cursor{})
	if err != nil {
		return cty.NilVal, err
	}
	if err := src.expectEnd(cur); err != nil {
		return cty.NilVal, err
	}
	return val, nil
}

func (r *Reader) ParseReader(rd io.Reader) (cty.Value, error) {
	b, err := io.ReadAll(rd)
	if err != nil {
		return cty.NilVal, err
	}
	return r.Parse(string(b))
}

// ParseJSON parses input and renders the result as JSON.
func (r *Reader) ParseJSON(input string) ([]byte, error) {
	val, err := r.Parse(input)
	if err != nil {
		return nil, err
	}
	return ctyjson.Marshal(val, val.Type())
}

//----------------

type source struct {
	text   string
	reader *Reader
	active map[entry]bool
}

// entry identifies a record read in progress.
type entry struct {
	record string
	offset int
}

// readLine returns the next line without its terminator and without
// surrounding whitespace.
func (src *source) readLine(cur Cursor) (string, Cursor, error) {
	if cur.Offset >= len(src.text) {
		return "", cur, eofError(cur.Line + 1)
	}
	rest := src.text[cur.Offset:]
	end := strings.IndexByte(rest, '\n')
	next := Cursor{Line: cur.Line + 1}
	if end < 0 {
		end = len(rest)
		next.Offset = len(src.text)
	} else {
		next.Offset = cur.Offset + end + 1
	}
	return strings.TrimSpace(rest[:end]), next, nil
}

func (src *source) readBlank(cur Cursor) (Cursor, error) {
	text, next, err := src.readLine(cur)
	if err != nil {
		return cur, err
	}
	if text != "" {
		return cur, blankLineError(next.Line)
	}
	return next, nil
}

func (src *source) expectEnd(cur Cursor) error {
	for cur.Offset < len(src.text) {
		text, next, err := src.readLine(cur)
		if err != nil {
			return err
		}
		if text != "" {
			return trailingContentError(next.Line)
		}
		cur = next
	}
	return nil
}

// readLines reads one record, line by line, into an object.
func (src *source) readLines(lines []*heimer.Line, cur Cursor) (cty.Value, Cursor, error) {
	attrs := make(map[string]cty.Value)
	var err error
	for _, line := range lines {
		switch line.Kind {
		case heimer.EmptyLine:
			cur, err = src.readBlank(cur)
		case heimer.MultiLine:
			cur, err = src.readMulti(line, attrs, cur)
		default:
			f := line.Field()
			var val cty.Value
			if f.Repetition.IsRepeated() {
				val, cur, err = src.readRepeated(f, attrs, cur)
			} else {
				val, cur, err = src.readInstance(f, cur)
			}
			if err == nil {
				attrs[f.Name] = val
			}
		}
		if err != nil {
			return cty.NilVal, cur, err
		}
	}
	return cty.ObjectVal(attrs), cur, nil
}

// readInstance reads a single instance of a field that is alone on its line.
func (src *source) readInstance(f *heimer.Field, cur Cursor) (cty.Value, Cursor, error) {
	if f.Type.IsRecord() {
		heimer.Debug("record", "field", f.Name, "type", f.Type.Record, "line", cur.Line+1)
		key := entry{record: f.Type.Record, offset: cur.Offset}
		if src.active[key] {
			return cty.NilVal, cur, reentryError(cur.Line+1, f.Type.Record)
		}
		if src.active == nil {
			src.active = make(map[entry]bool)
		}
		src.active[key] = true
		defer delete(src.active, key)
		return src.readLines(f.Children(), cur)
	}
	text, next, err := src.readLine(cur)
	if err != nil {
		return cty.NilVal, cur, err
	}
	var val cty.Value
	if f.Type.IsList() {
		val, err = src.list(f.Type.Scalar, src.tokens(text), src.reader.opts.MinListTokens, next.Line)
	} else {
		val, err = convert(f.Type.Scalar, text, next.Line)
	}
	if err != nil {
		return cty.NilVal, cur, err
	}
	return val, next, nil
}

func (src *source) readMulti(line *heimer.Line, attrs map[string]cty.Value, cur Cursor) (Cursor, error) {
	text, next, err := src.readLine(cur)
	if err != nil {
		return cur, err
	}
	toks := src.tokens(text)
	n := len(line.Fields)
	scalars := n
	if line.TrailingList {
		scalars = n - 1
		minimum := n
		if src.reader.opts.TrailingListMinimum == heimer.PrecedingFields {
			minimum = n - 1
		}
		if len(toks) < minimum {
			return cur, fieldCountError(next.Line, minimum, len(toks), true)
		}
	} else if len(toks) != n {
		return cur, fieldCountError(next.Line, n, len(toks), false)
	}
	for i, f := range line.Fields[:scalars] {
		val, err := convert(f.Type.Scalar, toks[i], next.Line)
		if err != nil {
			return cur, err
		}
		attrs[f.Name] = val
	}
	if line.TrailingList {
		f := line.Fields[n-1]
		val, err := src.list(f.Type.Scalar, toks[scalars:], 0, next.Line)
		if err != nil {
			return cur, err
		}
		attrs[f.Name] = val
	}
	return next, nil
}

func (src *source) readRepeated(f *heimer.Field, attrs map[string]cty.Value, cur Cursor) (cty.Value, Cursor, error) {
	var vals []cty.Value
	var err error
	separated := func(i int) bool {
		return f.SeparatedByBlankLine && (i > 0 || src.reader.opts.SeparatorBeforeFirst)
	}
	switch f.Repetition.Kind {
	case heimer.FixedRepetition, heimer.VariableRepetition:
		count := int64(f.Repetition.Count)
		if f.Repetition.Kind == heimer.VariableRepetition {
			if count, err = countOf(attrs[f.Repetition.Variable]); err != nil {
				return cty.NilVal, cur, err
			}
			if count < 0 {
				return cty.NilVal, cur, invalidCountError(cur.Line, f.Repetition.Variable, count)
			}
		}
		for i := 0; int64(i) < count; i++ {
			if separated(i) {
				if cur, err = src.readBlank(cur); err != nil {
					return cty.NilVal, cur, err
				}
			}
			var val cty.Value
			if val, cur, err = src.readInstance(f, cur); err != nil {
				return cty.NilVal, cur, err
			}
			vals = append(vals, val)
		}
	case heimer.ZeroOrMore, heimer.OneOrMore:
		for {
			snapshot := cur
			next := cur
			if separated(len(vals)) {
				if next, err = src.readBlank(next); err != nil {
					break
				}
			}
			var val cty.Value
			if val, next, err = src.readInstance(f, next); err != nil {
				break
			}
			if next.Offset == snapshot.Offset {
				break
			}
			vals = append(vals, val)
			cur = next
		}
		heimer.Debug("repetition", "field", f.Name, "instances", len(vals), "line", cur.Line)
		if f.Repetition.Kind == heimer.OneOrMore && len(vals) == 0 {
			return cty.NilVal, cur, tooFewInstancesError(cur.Line+1, 0)
		}
	}
	return collect(f.Type, vals), cur, nil
}

// tokens splits a line on the delimiter. A delimiter made of whitespace
// treats runs of it as one separator.
func (src *source) tokens(text string) []string {
	if text == "" {
		return nil
	}
	delim := src.reader.delimiter
	if strings.TrimSpace(delim) == "" {
		var toks []string
		for _, tok := range strings.Split(text, delim) {
			if tok = strings.TrimSpace(tok); tok != "" {
				toks = append(toks, tok)
			}
		}
		return toks
	}
	toks := strings.Split(text, delim)
	for i, tok := range toks {
		toks[i] = strings.TrimSpace(tok)
	}
	return toks
}

func (src *source) list(kind heimer.ScalarKind, toks []string, minimum int, line int) (cty.Value, error) {
	if len(toks) < minimum {
		return cty.NilVal, emptyListError(line, minimum, len(toks))
	}
	vals := make([]cty.Value, 0, len(toks))
	for _, tok := range toks {
		val, err := convert(kind, tok, line)
		if err != nil {
			return cty.NilVal, err
		}
		vals = append(vals, val)
	}
	if len(vals) == 0 {
		return cty.ListValEmpty(ctyType(kind)), nil
	}
	return cty.ListVal(vals), nil
}

func convert(kind heimer.ScalarKind, text string, line int) (cty.Value, error) {
	switch kind {
	case heimer.Int:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return cty.NilVal, conversionError(line, text, heimer.IntType)
		}
		return cty.NumberIntVal(n), nil
	case heimer.Float:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return cty.NilVal, conversionError(line, text, heimer.FloatType)
		}
		return cty.NumberFloatVal(f), nil
	case heimer.Bool:
		switch strings.ToLower(text) {
		case "1", "true":
			return cty.True, nil
		case "0", "false":
			return cty.False, nil
		}
		return cty.NilVal, conversionError(line, text, heimer.BoolType)
	}
	return cty.StringVal(text), nil
}

func ctyType(kind heimer.ScalarKind) cty.Type {
	switch kind {
	case heimer.Int, heimer.Float:
		return cty.Number
	case heimer.Bool:
		return cty.Bool
	}
	return cty.String
}

// collect builds the value of a repeated field. Instances of a record may
// differ in type when they hold repeated records themselves, so they are
// kept in a tuple.
func collect(t heimer.ResolvedType, vals []cty.Value) cty.Value {
	if t.IsRecord() {
		if len(vals) == 0 {
			return cty.EmptyTupleVal
		}
		return cty.TupleVal(vals)
	}
	if len(vals) == 0 {
		elem := ctyType(t.Scalar)
		if t.IsList() {
			elem = cty.List(elem)
		}
		return cty.ListValEmpty(elem)
	}
	return cty.ListVal(vals)
}

func countOf(val cty.Value) (int64, error) {
	var n int64
	if err := gocty.FromCtyValue(val, &n); err != nil {
		return 0, err
	}
	return n, nil
}
