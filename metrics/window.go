// Package metrics tracks per-call token usage and latency. Every inference
// call opens a Window before its first delta and closes it on every exit
// path; the closed window emits exactly one Record to a Collector. Records
// without a usage sample are flagged unavailable instead of reporting silent
// zeros.
package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
)

// Record is the accounting result of one inference call.
type Record struct {
	SessionID        uuid.UUID       `json:"session_id"`
	TurnID           uuid.UUID       `json:"turn_id"`
	Model            string          `json:"model"`
	PromptTokens     int64           `json:"prompt_tokens"`
	CompletionTokens int64           `json:"completion_tokens"`
	TotalTokens      int64           `json:"total_tokens"`
	Unavailable      bool            `json:"unavailable,omitempty"`
	StartedAt        strfmt.DateTime `json:"started_at"`
	Duration         time.Duration   `json:"duration"`
	TimeToFirstToken time.Duration   `json:"time_to_first_token,omitempty"`
}

// Window measures one inference call. Open it before the first delta is
// emitted, feed it the provider's usage sample when one arrives, and Stop it
// on the way out. Stop is idempotent; calling it from both a defer and an
// explicit path emits a single Record.
type Window struct {
	sessionID uuid.UUID
	turnID    uuid.UUID
	model     string
	collector Collector
	startedAt time.Time

	mu       sync.Mutex
	firstTok time.Duration
	sample   *usageSample

	stopOnce sync.Once
}

type usageSample struct {
	prompt     int64
	completion int64
}

// Open starts the accounting window for one call. A nil collector is valid
// and makes Stop a measurement-only no-op.
func Open(sessionID, turnID uuid.UUID, model string, collector Collector) *Window {
	return &Window{
		sessionID: sessionID,
		turnID:    turnID,
		model:     model,
		collector: collector,
		startedAt: time.Now(),
	}
}

// MarkFirstToken records the time to first token. Only the first call
// counts.
func (w *Window) MarkFirstToken() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.firstTok == 0 {
		w.firstTok = time.Since(w.startedAt)
	}
}

// Report stores the provider's terminal usage sample. Later calls overwrite
// earlier ones; in practice a stream carries at most one.
func (w *Window) Report(prompt, completion int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sample = &usageSample{prompt: prompt, completion: completion}
}

// Stop closes the window and emits the Record exactly once. When no usage
// sample was reported the record carries the unavailable flag.
func (w *Window) Stop(ctx context.Context) {
	w.stopOnce.Do(func() {
		rec := Record{
			SessionID: w.sessionID,
			TurnID:    w.turnID,
			Model:     w.model,
			StartedAt: strfmt.DateTime(w.startedAt),
			Duration:  time.Since(w.startedAt),
		}

		w.mu.Lock()
		rec.TimeToFirstToken = w.firstTok
		if w.sample != nil {
			rec.PromptTokens = w.sample.prompt
			rec.CompletionTokens = w.sample.completion
			rec.TotalTokens = w.sample.prompt + w.sample.completion
		} else {
			rec.Unavailable = true
		}
		w.mu.Unlock()

		if w.collector != nil {
			w.collector.Collect(ctx, rec)
		}
	})
}
