// Package transcript keeps the running conversation log of one session. It
// sits upstream of the inference session: speech recognition results and
// completed assistant turns are appended here, and each user turn is turned
// into a read-only context frame for the model to answer.
package transcript

import (
	"iter"
	"slices"
	"time"

	"github.com/casualjim/myna/frames"
	"github.com/casualjim/myna/messages"
	"github.com/casualjim/myna/pkg/uuidx"
	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
)

// Log represents the ordered conversation history of a single session.
// It is owned by the pipeline goroutine that feeds the session and is not
// safe for concurrent mutation; readers get copies.
type Log struct {
	sessionID uuid.UUID
	turnID    uuid.UUID
	messages  []messages.Message[messages.ModelMessage]
}

// New creates an empty conversation log for the given session. A nil session
// id gets a fresh one.
func New(sessionID uuid.UUID) *Log {
	if sessionID == uuid.Nil {
		sessionID = uuidx.New()
	}
	return &Log{
		sessionID: sessionID,
		turnID:    uuidx.New(),
		messages:  make([]messages.Message[messages.ModelMessage], 0),
	}
}

// SessionID returns the session this log belongs to.
func (l *Log) SessionID() uuid.UUID {
	return l.sessionID
}

// TurnID returns the identifier of the current conversational turn.
func (l *Log) TurnID() uuid.UUID {
	return l.turnID
}

// Len returns the number of messages in the log.
func (l *Log) Len() int {
	return len(l.messages)
}

// Messages returns a copy of the conversation so far. Mutating the returned
// slice does not affect the log.
func (l *Log) Messages() []messages.Message[messages.ModelMessage] {
	return slices.Clone(l.messages)
}

// MessagesIter iterates the conversation in order without copying it.
func (l *Log) MessagesIter() iter.Seq[messages.Message[messages.ModelMessage]] {
	return slices.Values(l.messages)
}

// AddInstructions appends the system instructions. There is normally exactly
// one of these, at the head of the conversation.
func (l *Log) AddInstructions(m messages.Message[messages.InstructionsMessage]) {
	l.add(eraseType(m))
}

// AddUserPrompt appends a user turn and rotates the turn identifier: every
// user prompt opens a new conversational turn.
func (l *Log) AddUserPrompt(m messages.Message[messages.UserMessage]) {
	l.turnID = uuidx.New()
	l.add(eraseType(m))
}

// AddAssistantMessage appends a completed model turn. Partial deltas never
// land here, only the full accumulated response.
func (l *Log) AddAssistantMessage(m messages.Message[messages.AssistantMessage]) {
	l.add(eraseType(m))
}

// Adopt replaces the log's contents with the snapshot carried by a context
// frame, making the frame's turn the current one. Sessions driven by an
// external aggregator use this to keep their own log in step with the frames
// they answer.
func (l *Log) Adopt(frame frames.Context) {
	if frame.TurnID != uuid.Nil {
		l.turnID = frame.TurnID
	} else {
		l.turnID = uuidx.New()
	}
	l.messages = slices.Clone(frame.Messages)
}

// ContextFrame snapshots the conversation into the frame the inference
// session answers. The snapshot is independent of later appends.
func (l *Log) ContextFrame() frames.Context {
	return frames.Context{
		SessionID: l.sessionID,
		TurnID:    l.turnID,
		Messages:  slices.Clone(l.messages),
		Timestamp: strfmt.DateTime(time.Now()),
	}
}

func (l *Log) add(m messages.Message[messages.ModelMessage]) {
	m.SessionID = l.sessionID
	if m.TurnID == uuid.Nil {
		m.TurnID = l.turnID
	}
	l.messages = append(l.messages, m)
}

// eraseType converts a Message[T] to Message[ModelMessage] while preserving
// all fields. Safe because T is constrained to ModelMessage.
func eraseType[T messages.ModelMessage](m messages.Message[T]) messages.Message[messages.ModelMessage] {
	return messages.Message[messages.ModelMessage]{
		SessionID: m.SessionID,
		TurnID:    m.TurnID,
		Payload:   m.Payload,
		Sender:    m.Sender,
		Timestamp: m.Timestamp,
		Meta:      m.Meta,
	}
}
