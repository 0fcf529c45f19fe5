package graphql

import (
	"testing"

	"github.com/heimer-format/heimer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pointsSpec = `
<options>
f inputFile string

<objects>
Point
x:float y:float
label:string

<body>
count:int
points:Point:count!
tags:list(string):*
`

func testModel(test *testing.T, src string) *heimer.Model {
	model, err := heimer.ParseString(src, nil)
	require.NoError(test, err)
	return model
}

func TestEmitGraphQL(test *testing.T) {
	model := testModel(test, pointsSpec)
	s, err := FromModel(model, nil)
	require.NoError(test, err)
	assert.Contains(test, s, "#   -f inputFile: string\n")
	assert.Contains(test, s, "type Point {\n  x: Float!\n  y: Float!\n  label: String!\n}\n")
	assert.Contains(test, s, "  count: Int!\n")
	assert.Contains(test, s, "  \"'count' instances, separated by a blank line.\"\n  points: [Point!]!\n")
	assert.Contains(test, s, "  tags: [[String!]!]!\n")
	assert.Contains(test, s, "schema {\n  query: Body\n}\n")
}

func TestEmitterRegistered(test *testing.T) {
	e := heimer.FindEmitter("graphql")
	require.NotNil(test, e)
	assert.Equal(test, e, heimer.EmitterForFile("out/format.GQL"))
}

func TestQueryTypeName(test *testing.T) {
	conf := heimer.NewData()
	conf.Put("graphql-query-type", "Document")
	s, err := FromModel(testModel(test, pointsSpec), conf)
	require.NoError(test, err)
	assert.Contains(test, s, "type Document {\n")
	assert.NotContains(test, s, "type Body")
}

func TestCheck(test *testing.T) {
	model := testModel(test, "<objects>\nPair\na:int b:int\n<body>\np:Pair\n")
	good := "type Pair {\n  a: Int!\n  b: Int!\n}\ntype Body {\n  p: Pair!\n}\nschema {\n  query: Body\n}\n"
	require.NoError(test, Check(good, model, "Body"))

	missing := "type Body {\n  p: Pair!\n}\nschema {\n  query: Body\n}\n"
	assert.EqualError(test, Check(missing, model, "Body"), "GraphQL type 'Pair' is missing")

	renamed := "type Pair {\n  a: Int!\n  c: Int!\n}\ntype Body {\n  p: Pair!\n}\nschema {\n  query: Body\n}\n"
	assert.Error(test, Check(renamed, model, "Body"))

	assert.Error(test, Check("type Pair {", model, "Body"))
}
