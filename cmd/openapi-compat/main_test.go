package main

import (
	"testing"

	"craftnexus/docs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseDoc = `
paths:
  /news:
    get:
      responses:
        "200": {}
  /news/{slug}:
    get:
      responses:
        "200": {}
        "404": {}
`

func TestCompare_DetectsRemovals(t *testing.T) {
	base, err := parse([]byte(baseDoc))
	require.NoError(t, err)

	revision, err := parse([]byte(`{"paths": {"/news/{slug}": {"get": {"responses": {"200": {}}}}}}`))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"removed path: /news",
		"removed response code: GET /news/{slug} -> 404",
	}, compare(base, revision))
}

func TestCompare_IgnoresAdditions(t *testing.T) {
	base, err := parse([]byte(baseDoc))
	require.NoError(t, err)
	assert.Empty(t, compare(base, base))

	bigger, err := parse([]byte(baseDoc + "  /ticker:\n    get:\n      responses:\n        \"200\": {}\n"))
	require.NoError(t, err)
	assert.Empty(t, compare(base, bigger))
}

func TestParse_MissingPaths(t *testing.T) {
	_, err := parse([]byte("info: {}\n"))
	assert.Error(t, err)
}

func TestGeneratedDocParses(t *testing.T) {
	s, err := parse([]byte(docs.SwaggerInfo.ReadDoc()))
	require.NoError(t, err)
	assert.Contains(t, s, "/weapon-analysis")
	assert.True(t, s["/news/{slug}"]["get"]["404"])
}
