package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestParseJSONPlainObject(t *testing.T) {
	got, err := ParseJSON[sample](`{"name": "knee", "count": 5}`)
	require.NoError(t, err)
	assert.Equal(t, sample{Name: "knee", Count: 5}, got)
}

func TestParseJSONTrimsSurroundingProse(t *testing.T) {
	response := "Sure! Here is your JSON:\n```json\n{\"name\": \"knee\", \"count\": 5}\n```\nLet me know if you need more."
	got, err := ParseJSON[sample](response)
	require.NoError(t, err)
	assert.Equal(t, "knee", got.Name)
}

func TestParseJSONNoObject(t *testing.T) {
	_, err := ParseJSON[sample]("no braces here")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no JSON object found")
}

func TestParseJSONMalformedBody(t *testing.T) {
	_, err := ParseJSON[sample](`{"name": knee}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal JSON")
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, "plain text", StripCodeFence("plain text"))
	assert.Equal(t, "line one\nline two", StripCodeFence("```\nline one\nline two\n```"))
	assert.Equal(t, "body", StripCodeFence("```markdown\nbody\n```"))
}
