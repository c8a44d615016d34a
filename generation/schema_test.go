package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestSchema(t *testing.T) {
	schema := Schema()
	require.NotNil(t, schema)
	assert.Equal(t, "object", schema.Type)

	var keys []string
	for pair := schema.Properties.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	assert.Equal(t, []string{
		"temperature",
		"max_tokens",
		"top_k",
		"top_p",
		"frequency_penalty",
		"presence_penalty",
		"stop_sequences",
	}, keys)
}

func TestInspectPatch(t *testing.T) {
	t.Run("splits known and unknown keys", func(t *testing.T) {
		report := InspectPatch(gjson.Parse(`{"temperature":0.3,"volume":11,"top_p":0.5}`))
		assert.Equal(t, []string{"temperature", "top_p"}, report.Known)
		assert.Equal(t, []string{"volume"}, report.Unknown)
	})

	t.Run("empty patch", func(t *testing.T) {
		report := InspectPatch(gjson.Parse(`{}`))
		assert.Empty(t, report.Known)
		assert.Empty(t, report.Unknown)
	})
}
