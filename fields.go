package heimer

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Whitespace is kept as a token so that "name:type" cannot be written with
// spaces around the colons; only the list parentheses may contain blanks.
var fieldLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t]+`},
	{Name: "Ident", Pattern: `\w+`},
	{Name: "Punct", Pattern: `[:()+*!]`},
})

type fieldLine struct {
	Fields []*fieldNode `( @@ Whitespace? )*`
}

// name:type[:repetition[!]]
type fieldNode struct {
	Name       string          `@Ident ":"`
	Type       *typeNode       `@@`
	Repetition *repetitionNode `( ":" @@ )?`
}

type typeNode struct {
	Element string `  "list" Whitespace? "(" Whitespace? @Ident Whitespace? ")"`
	Name    string `| @Ident`
}

type repetitionNode struct {
	Symbol string `@( Ident | "+" | "*" )`
	Blank  bool   `@"!"?`
}

var fieldParser = participle.MustBuild[fieldLine](
	participle.Lexer(fieldLexer),
	participle.UseLookahead(8),
)

func (t *typeNode) raw() string {
	if t.Element != "" {
		return ListType + "(" + t.Element + ")"
	}
	return t.Name
}

// FieldDeclarationsFromLine matches every field declaration on a stripped
// line. Unidentified text anywhere on the line invalidates the whole line, in
// which case the result is empty.
func FieldDeclarationsFromLine(line string) []*FieldDeclaration {
	if line == "" {
		return nil
	}
	parsed, err := fieldParser.ParseString("", line)
	if err != nil {
		Debug("field declaration rejected", "line", line, "error", err)
		return nil
	}
	fields := make([]*FieldDeclaration, 0, len(parsed.Fields))
	for _, node := range parsed.Fields {
		field := &FieldDeclaration{
			Name: node.Name,
			Type: node.Type.raw(),
		}
		if node.Repetition != nil {
			field.Repetition = node.Repetition.Symbol
			field.SeparatedByBlankLine = node.Repetition.Blank
		}
		fields = append(fields, field)
	}
	return fields
}
