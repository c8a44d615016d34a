package frames

import (
	"context"
	"log/slog"
	"slices"

	"github.com/casualjim/myna/pkg/slogx"
	json "github.com/goccy/go-json"
)

// Hook is the contract for frame consumers. There is one callback per frame
// variant and deliberately no no-op base implementation: a subscriber has to
// decide, per variant, whether it reacts or explicitly ignores it. When a new
// frame variant is added every implementation breaks at compile time, which
// is the point.
//
// Callbacks for one subscription are invoked sequentially, in publish order.
// A speech or rendering consumer can rely on OnStart/OnEnd as utterance
// boundaries for a turn and must tolerate a turn with zero OnDelta calls.
type Hook interface {
	OnContext(context.Context, Context)

	OnSettings(context.Context, Settings)

	OnStart(context.Context, Start)

	OnDelta(context.Context, Delta)

	OnEnd(context.Context, End)

	OnUsage(context.Context, Usage)

	OnError(context.Context, Error)
}

// LoggingHook returns a hook that logs every frame it sees. Deltas are logged
// at debug level, they arrive at speech cadence.
func LoggingHook() Hook {
	return &loggingHook{}
}

type loggingHook struct{}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}

func (loggingHook) OnContext(ctx context.Context, frame Context) {
	slog.InfoContext(ctx, "context frame", "frame", mustJSON(frame))
}

func (loggingHook) OnSettings(ctx context.Context, frame Settings) {
	slog.InfoContext(ctx, "settings frame", "frame", mustJSON(frame))
}

func (loggingHook) OnStart(ctx context.Context, frame Start) {
	slog.InfoContext(ctx, "response start", "frame", mustJSON(frame))
}

func (loggingHook) OnDelta(ctx context.Context, frame Delta) {
	slog.DebugContext(ctx, "response delta", "frame", mustJSON(frame))
}

func (loggingHook) OnEnd(ctx context.Context, frame End) {
	slog.InfoContext(ctx, "response end", "frame", mustJSON(frame))
}

func (loggingHook) OnUsage(ctx context.Context, frame Usage) {
	slog.InfoContext(ctx, "usage frame", "frame", mustJSON(frame))
}

func (loggingHook) OnError(ctx context.Context, frame Error) {
	slog.ErrorContext(ctx, "error frame", slogx.Error(frame.Err))
}

// NewCompositeHook combines multiple hooks into one that fans every frame out
// in order.
func NewCompositeHook(hooks ...Hook) Hook {
	return CompositeHook(hooks)
}

// CompositeHook allows combining multiple hooks into a single hook
// implementation. It is a utility for fan-out, not a way around implementing
// the full interface.
type CompositeHook []Hook

func (c CompositeHook) OnContext(ctx context.Context, frame Context) {
	for h := range slices.Values(c) {
		h.OnContext(ctx, frame)
	}
}

func (c CompositeHook) OnSettings(ctx context.Context, frame Settings) {
	for h := range slices.Values(c) {
		h.OnSettings(ctx, frame)
	}
}

func (c CompositeHook) OnStart(ctx context.Context, frame Start) {
	for h := range slices.Values(c) {
		h.OnStart(ctx, frame)
	}
}

func (c CompositeHook) OnDelta(ctx context.Context, frame Delta) {
	for h := range slices.Values(c) {
		h.OnDelta(ctx, frame)
	}
}

func (c CompositeHook) OnEnd(ctx context.Context, frame End) {
	for h := range slices.Values(c) {
		h.OnEnd(ctx, frame)
	}
}

func (c CompositeHook) OnUsage(ctx context.Context, frame Usage) {
	for h := range slices.Values(c) {
		h.OnUsage(ctx, frame)
	}
}

func (c CompositeHook) OnError(ctx context.Context, frame Error) {
	for h := range slices.Values(c) {
		h.OnError(ctx, frame)
	}
}
