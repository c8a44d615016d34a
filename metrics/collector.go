package metrics

import (
	"context"
	"log/slog"
	"slices"
)

// Collector receives the Record of every closed Window.
type Collector interface {
	Collect(ctx context.Context, rec Record)
}

// LogCollector writes every record to slog at info level.
type LogCollector struct{}

func (LogCollector) Collect(ctx context.Context, rec Record) {
	if rec.Unavailable {
		slog.InfoContext(ctx, "inference metrics unavailable",
			"session_id", rec.SessionID,
			"turn_id", rec.TurnID,
			"model", rec.Model,
			"duration", rec.Duration,
		)
		return
	}
	slog.InfoContext(ctx, "inference metrics",
		"session_id", rec.SessionID,
		"turn_id", rec.TurnID,
		"model", rec.Model,
		"prompt_tokens", rec.PromptTokens,
		"completion_tokens", rec.CompletionTokens,
		"total_tokens", rec.TotalTokens,
		"duration", rec.Duration,
		"time_to_first_token", rec.TimeToFirstToken,
	)
}

// CompositeCollector fans a record out to several collectors in order.
type CompositeCollector struct {
	collectors []Collector
}

func NewCompositeCollector(collectors ...Collector) *CompositeCollector {
	return &CompositeCollector{collectors: slices.Clone(collectors)}
}

func (c *CompositeCollector) Collect(ctx context.Context, rec Record) {
	for collector := range slices.Values(c.collectors) {
		collector.Collect(ctx, rec)
	}
}
