package graphql

import (
	"fmt"

	"github.com/heimer-format/heimer"

	gql_ast "github.com/graphql-go/graphql/language/ast"
	gql_parser "github.com/graphql-go/graphql/language/parser"
	gql_source "github.com/graphql-go/graphql/language/source"
)

// Check parses sdl and verifies that it declares one object type per record,
// plus the query type for the body, each with the record's fields in order.
func Check(sdl string, model *heimer.Model, query string) error {
	doc, err := gql_parser.Parse(gql_parser.ParseParams{
		Source: &gql_source.Source{
			Body: []byte(sdl),
			Name: "GraphQL",
		},
		Options: gql_parser.ParseOptions{
			NoLocation: true,
		},
	})
	if err != nil {
		return fmt.Errorf("Cannot parse generated GraphQL: %v", err)
	}
	objects := make(map[string]*gql_ast.ObjectDefinition)
	schemaQuery := ""
	for _, def := range doc.Definitions {
		switch tdef := def.(type) {
		case *gql_ast.ObjectDefinition:
			if _, ok := objects[tdef.Name.Value]; ok {
				return fmt.Errorf("GraphQL type '%s' is defined more than once", tdef.Name.Value)
			}
			objects[tdef.Name.Value] = tdef
		case *gql_ast.SchemaDefinition:
			for _, op := range tdef.OperationTypes {
				if op.Operation == "query" {
					schemaQuery = op.Type.Name.Value
				}
			}
		}
	}
	if schemaQuery != query {
		return fmt.Errorf("GraphQL query type is '%s', expected '%s'", schemaQuery, query)
	}
	for _, rec := range model.Records() {
		if err := checkObject(objects[rec.Name], rec.Name, rec); err != nil {
			return err
		}
	}
	return checkObject(objects[query], query, model.Body())
}

func checkObject(def *gql_ast.ObjectDefinition, name string, rec *heimer.Record) error {
	if def == nil {
		return fmt.Errorf("GraphQL type '%s' is missing", name)
	}
	fields := rec.Fields()
	if len(fields) == 0 {
		return nil
	}
	if len(def.Fields) != len(fields) {
		return fmt.Errorf("GraphQL type '%s' has %d fields, expected %d", name, len(def.Fields), len(fields))
	}
	for i, f := range fields {
		if got := def.Fields[i].Name.Value; got != f.Name {
			return fmt.Errorf("GraphQL type '%s' has field '%s' where '%s' was expected", name, got, f.Name)
		}
		if got, want := typeName(def.Fields[i].Type), f.Type.String(); f.Type.IsRecord() && got != want {
			return fmt.Errorf("GraphQL field '%s.%s' refers to '%s', expected '%s'", name, f.Name, got, want)
		}
	}
	return nil
}

// typeName unwraps list and non-null wrappers down to the named type.
func typeName(t gql_ast.Type) string {
	switch tt := t.(type) {
	case *gql_ast.Named:
		return tt.Name.Value
	case *gql_ast.List:
		return typeName(tt.Type)
	case *gql_ast.NonNull:
		return typeName(tt.Type)
	}
	return ""
}
