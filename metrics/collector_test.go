package metrics

import (
	"context"
	"testing"

	"github.com/casualjim/myna/pkg/uuidx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompositeCollector(t *testing.T) {
	t.Run("fans out to every collector in order", func(t *testing.T) {
		first := &recordingCollector{}
		second := &recordingCollector{}
		composite := NewCompositeCollector(first, second)

		rec := Record{SessionID: uuidx.New(), TurnID: uuidx.New(), Model: "gpt-4o-mini"}
		composite.Collect(context.Background(), rec)

		require.Len(t, first.records, 1)
		require.Len(t, second.records, 1)
		assert.Equal(t, rec.TurnID, first.records[0].TurnID)
		assert.Equal(t, rec.TurnID, second.records[0].TurnID)
	})

	t.Run("empty composite is a no-op", func(t *testing.T) {
		composite := NewCompositeCollector()
		assert.NotPanics(t, func() {
			composite.Collect(context.Background(), Record{})
		})
	})
}

func TestLogCollector(t *testing.T) {
	rec := Record{
		SessionID:        uuidx.New(),
		TurnID:           uuidx.New(),
		Model:            "command-r-plus-08-2024",
		PromptTokens:     12,
		CompletionTokens: 5,
		TotalTokens:      17,
	}

	assert.NotPanics(t, func() {
		LogCollector{}.Collect(context.Background(), rec)
		LogCollector{}.Collect(context.Background(), Record{Unavailable: true})
	})
}
