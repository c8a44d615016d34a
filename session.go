package myna

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/casualjim/myna/frames"
	"github.com/casualjim/myna/generation"
	"github.com/casualjim/myna/internal/transcript"
	"github.com/casualjim/myna/messages"
	"github.com/casualjim/myna/metrics"
	"github.com/casualjim/myna/pkg/slogx"
	"github.com/casualjim/myna/pkg/uuidx"
	"github.com/casualjim/myna/provider"
	"github.com/fogfish/opts"
	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
)

// Publisher receives the frames a session emits. broker topics satisfy it,
// as does anything else that can carry a frame downstream.
type Publisher interface {
	Publish(context.Context, frames.Frame) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, frames.Frame) error { return nil }

// Session answers one conversation. It owns the generation settings, the
// transcript, and the usage ledger, and emits every response as a
// Start/Delta/End frame sequence on its publisher.
//
// Turns are strictly serialized: a new context is not answered until the
// previous turn has published its End frame.
type Session struct {
	id           uuid.UUID
	name         string
	model        provider.Model
	instructions string
	params       generation.Params
	publisher    Publisher
	collectors   []metrics.Collector

	store      *generation.Store
	transcript *transcript.Log
	ledger     *metrics.Ledger
	collector  metrics.Collector

	runMu sync.Mutex
}

// New builds a session. A model is required; everything else has defaults.
// Invalid options or generation settings out of range panic, like any other
// construction-time misuse.
func New(options ...opts.Option[Session]) *Session {
	s := &Session{
		id:        uuidx.New(),
		name:      "myna",
		params:    generation.Defaults(),
		publisher: nopPublisher{},
	}
	if err := opts.Apply(s, options); err != nil {
		panic(err)
	}
	if s.model == nil {
		panic("myna: a session requires a model")
	}

	store, err := generation.NewStore(s.params)
	if err != nil {
		panic(fmt.Errorf("myna: %w", err))
	}
	s.store = store
	s.transcript = transcript.New(s.id)
	s.ledger = metrics.NewLedger()

	all := append([]metrics.Collector{metrics.LogCollector{}, s.ledger}, s.collectors...)
	s.collector = metrics.NewCompositeCollector(all...)

	if s.instructions != "" {
		s.transcript.AddInstructions(messages.New().WithSender(s.name).Instructions(s.instructions))
	}
	return s
}

func (s *Session) ID() uuid.UUID { return s.id }

func (s *Session) Name() string { return s.name }

func (s *Session) Model() provider.Model { return s.model }

// Ledger exposes the session's usage records, for summaries at shutdown.
func (s *Session) Ledger() *metrics.Ledger { return s.ledger }

// Params returns the current generation settings snapshot.
func (s *Session) Params() generation.Params { return s.store.Snapshot() }

// ProcessFrame dispatches one frame. Context frames run a response turn,
// Settings frames patch the generation settings, and response-plane frames
// are ignored since they are this session's own output.
func (s *Session) ProcessFrame(ctx context.Context, frame frames.Frame) {
	switch frame := frame.(type) {
	case frames.Context:
		s.respond(ctx, frame)
	case frames.Settings:
		s.applySettings(ctx, frame)
	default:
	}
}

// Prompt appends a user turn to the session transcript and answers it. The
// reply streams out as Start, Delta and End frames on the publisher.
func (s *Session) Prompt(ctx context.Context, text string) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	s.transcript.AddUserPrompt(messages.New().WithSender("user").UserPrompt(text))
	s.completeTurn(ctx, s.transcript.TurnID(), s.transcript.Messages())
}

// RunInference makes one non-streaming call against the current transcript
// and settings snapshot. It publishes no frames and opens no usage window;
// the completed text comes back directly, "" when there is nothing to say.
func (s *Session) RunInference(ctx context.Context) (string, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	events, err := s.model.Provider().ChatCompletion(ctx, provider.CompletionParams{
		SessionID: s.id,
		TurnID:    s.transcript.TurnID(),
		Messages:  s.transcript.Messages(),
		Params:    s.store.Snapshot(),
		Model:     s.model,
		Stream:    false,
	})
	if err != nil {
		if errors.Is(err, provider.ErrNoMessages) {
			return "", nil
		}
		return "", err
	}

	var reply strings.Builder
	for event := range events {
		switch event := event.(type) {
		case provider.Chunk:
			reply.WriteString(event.Text)
		case provider.Usage:
		case provider.Done:
		case provider.Error:
			return "", event.Err
		default:
			panic(fmt.Sprintf("unknown stream event type %T", event))
		}
	}
	return reply.String(), nil
}

func (s *Session) respond(ctx context.Context, frame frames.Context) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	s.transcript.Adopt(frame)
	s.completeTurn(ctx, s.transcript.TurnID(), s.transcript.Messages())
}

// completeTurn runs one streaming inference call and narrates it as frames.
// The caller holds the run mutex.
func (s *Session) completeTurn(ctx context.Context, turnID uuid.UUID, msgs []messages.Message[messages.ModelMessage]) {
	// Closing frames must still go out when the call context dies
	// mid-stream, so emission uses a context that survives cancellation.
	emitCtx := context.WithoutCancel(ctx)

	events, err := s.model.Provider().ChatCompletion(ctx, provider.CompletionParams{
		SessionID: s.id,
		TurnID:    turnID,
		Messages:  msgs,
		Params:    s.store.Snapshot(),
		Model:     s.model,
		Stream:    true,
	})
	if err != nil {
		if errors.Is(err, provider.ErrNoMessages) {
			// Nothing to answer; the turn produces no frames at all.
			return
		}
		s.publish(emitCtx, frames.Error{
			SessionID: s.id,
			TurnID:    turnID,
			Err:       err,
			Sender:    s.name,
			Timestamp: strfmt.DateTime(time.Now()),
		})
		return
	}

	s.publish(emitCtx, frames.Start{
		SessionID: s.id,
		TurnID:    turnID,
		Sender:    s.name,
		Timestamp: strfmt.DateTime(time.Now()),
	})

	window := metrics.Open(s.id, turnID, s.model.Name(), s.collector)
	defer window.Stop(emitCtx)

	var (
		reply     strings.Builder
		usage     *provider.Usage
		completed bool
	)

loop:
	for {
		select {
		case event, hasMore := <-events:
			if !hasMore {
				break loop
			}
			switch event := event.(type) {
			case provider.Chunk:
				window.MarkFirstToken()
				reply.WriteString(event.Text)
				s.publish(emitCtx, frames.Delta{
					SessionID: s.id,
					TurnID:    turnID,
					Text:      event.Text,
					Sender:    s.name,
					Timestamp: event.Timestamp,
				})
			case provider.Usage:
				usage = &event
				window.Report(event.PromptTokens, event.CompletionTokens)
			case provider.Done:
				completed = true
				break loop
			case provider.Error:
				if !errors.Is(event.Err, context.Canceled) && !errors.Is(event.Err, context.DeadlineExceeded) {
					// The turn speaks its failure; the pipeline stays up.
					s.publish(emitCtx, frames.Delta{
						SessionID: s.id,
						TurnID:    turnID,
						Text:      "Error: " + event.Err.Error(),
						Sender:    s.name,
						Timestamp: strfmt.DateTime(time.Now()),
					})
				}
				break loop
			default:
				panic(fmt.Sprintf("unknown stream event type %T", event))
			}
		case <-ctx.Done():
			break loop
		}
	}

	s.publish(emitCtx, frames.End{
		SessionID: s.id,
		TurnID:    turnID,
		Sender:    s.name,
		Timestamp: strfmt.DateTime(time.Now()),
	})

	if !completed {
		return
	}

	uf := frames.Usage{
		SessionID: s.id,
		TurnID:    turnID,
		Model:     s.model.Name(),
		Sender:    s.name,
		Timestamp: strfmt.DateTime(time.Now()),
	}
	if usage != nil {
		uf.PromptTokens = usage.PromptTokens
		uf.CompletionTokens = usage.CompletionTokens
		uf.TotalTokens = usage.PromptTokens + usage.CompletionTokens
	} else {
		uf.Unavailable = true
	}
	s.publish(emitCtx, uf)

	if reply.Len() > 0 {
		s.transcript.AddAssistantMessage(messages.New().WithSender(s.name).AssistantMessage(reply.String()))
	}
}

func (s *Session) applySettings(ctx context.Context, frame frames.Settings) {
	report := generation.InspectPatch(frame.Patch)
	if len(report.Unknown) > 0 {
		slog.InfoContext(ctx, "ignoring unknown settings keys", "keys", report.Unknown)
	}
	if err := s.store.Update(frame.Patch); err != nil {
		slog.ErrorContext(ctx, "failed to apply settings patch", slogx.Error(err))
		return
	}
	if len(report.Known) > 0 {
		slog.InfoContext(ctx, "applied settings patch", "keys", report.Known)
	}
}

func (s *Session) publish(ctx context.Context, frame frames.Frame) {
	if err := s.publisher.Publish(ctx, frame); err != nil {
		slog.ErrorContext(ctx, "failed to publish frame", slogx.Error(err))
	}
}
