package heimer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const canonicalPolygonSpec = `<head>
delimiter ","

<options>
f inputFile string
n count int

<objects>
Point
x:float y:float

Polygon
name:string
size:int
points:Point:size!

<body>
polygons:Polygon:+
`

func TestUnparse(test *testing.T) {
	s, err := Unparse(testModel(test, polygonSpec))
	require.NoError(test, err)
	if diff := cmp.Diff(canonicalPolygonSpec, s); diff != "" {
		test.Errorf("canonical form mismatch (-want +got):\n%s", diff)
	}
}

func TestUnparseRoundTrip(test *testing.T) {
	sources := []string{
		polygonSpec,
		"<body>\na:int\n\n\nb:list(string):*!\n",
		"<head>\ndelimiter \"\\t\"\n<body>\nid:int rest:list(bool)\n",
		"<single>\nA\nnext:A:*\n\nv:float\n<body>\nroot:A:3\n",
		"<head>\ndelimiter \"\\#\"\n<body>\na:int b:int\n",
		"<head>\ndelimiter \"\\\\\\#\"\n<body>\na:int b:int\n",
	}
	for _, src := range sources {
		m1 := testModel(test, src)
		s1, err := Unparse(m1)
		require.NoError(test, err)
		m2 := testModel(test, s1)
		s2, err := Unparse(m2)
		require.NoError(test, err)
		assert.Equal(test, s1, s2, src)
		assert.Equal(test, m1.LineDelimiter(), m2.LineDelimiter())
		assert.Equal(test, len(m1.Body().Lines), len(m2.Body().Lines), src)
	}
	assert.Equal(test, "heimer", EmitterForFile("copy.heimer").Name())
}

func TestUnparseHashDelimiter(test *testing.T) {
	model := testModel(test, "<head>\ndelimiter \"\\#\" # fields split on hashes\n<body>\na:int b:int\n")
	require.Equal(test, "#", model.LineDelimiter())
	s, err := Unparse(model)
	require.NoError(test, err)
	assert.Contains(test, s, "delimiter \"\\#\"\n")
	assert.Equal(test, "#", testModel(test, s).LineDelimiter())

	assert.Equal(test, `"\\\#"`, quoteDelimiter(`\#`))
	assert.Equal(test, `"\t"`, quoteDelimiter("\t"))
}
