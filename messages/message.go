package messages

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var (
	instructionsJSON = []byte(`{"type":"instructions"}`)
	userJSON         = []byte(`{"type":"user"}`)
	assistantJSON    = []byte(`{"type":"assistant"}`)
)

// ModelMessage is the constraint for every payload that can travel inside a
// Message envelope. The marker method keeps the set closed.
type ModelMessage interface {
	message()
}

// Request marks payloads that flow towards the model.
type Request interface {
	ModelMessage
	request()
}

// Response marks payloads that flow back from the model.
type Response interface {
	ModelMessage
	response()
}

// InstructionsMessage carries the system instructions for a conversation.
type InstructionsMessage struct {
	Content string `json:"content"`
}

func (InstructionsMessage) message() {}

// UserMessage is one user turn.
type UserMessage struct {
	Content string `json:"content"`
}

func (UserMessage) message() {}
func (UserMessage) request() {}

// AssistantMessage is one model turn. Content and Refusal are mutually
// exclusive on the wire.
type AssistantMessage struct {
	Content string `json:"content,omitempty"`
	Refusal string `json:"refusal,omitempty"`
}

func (AssistantMessage) message()  {}
func (AssistantMessage) response() {}

// Message is the envelope around a conversation payload. SessionID and TurnID
// tie the message to the conversation that produced it; Meta carries
// free-form JSON that travels untouched.
type Message[T ModelMessage] struct {
	SessionID uuid.UUID       `json:"session_id"`
	TurnID    uuid.UUID       `json:"turn_id"`
	Sender    string          `json:"sender,omitempty"`
	Timestamp strfmt.DateTime `json:"timestamp,omitempty"`
	Meta      gjson.Result    `json:"meta,omitempty"`
	Payload   T               `json:"-"`
}

// New starts a message builder stamped with the current time.
func New() messageBuilder {
	return messageBuilder{timestamp: strfmt.DateTime(time.Now())}
}

type messageBuilder struct {
	sender    string
	timestamp strfmt.DateTime
	metadata  gjson.Result
}

// WithSender sets the sender recorded on the built message.
func (b messageBuilder) WithSender(sender string) messageBuilder {
	b.sender = sender
	return b
}

// WithTimestamp overrides the timestamp recorded on the built message.
func (b messageBuilder) WithTimestamp(ts strfmt.DateTime) messageBuilder {
	b.timestamp = ts
	return b
}

// WithMetadata attaches free-form JSON metadata to the built message.
func (b messageBuilder) WithMetadata(meta gjson.Result) messageBuilder {
	b.metadata = meta
	return b
}

// Instructions builds a system instructions message.
func (b messageBuilder) Instructions(content string) Message[InstructionsMessage] {
	return Message[InstructionsMessage]{
		Sender:    b.sender,
		Timestamp: b.timestamp,
		Meta:      b.metadata,
		Payload:   InstructionsMessage{Content: content},
	}
}

// UserPrompt builds a user turn.
func (b messageBuilder) UserPrompt(content string) Message[UserMessage] {
	return Message[UserMessage]{
		Sender:    b.sender,
		Timestamp: b.timestamp,
		Meta:      b.metadata,
		Payload:   UserMessage{Content: content},
	}
}

// AssistantMessage builds a model turn with text content.
func (b messageBuilder) AssistantMessage(content string) Message[AssistantMessage] {
	return Message[AssistantMessage]{
		Sender:    b.sender,
		Timestamp: b.timestamp,
		Meta:      b.metadata,
		Payload:   AssistantMessage{Content: content},
	}
}

// AssistantRefusal builds a model turn that declined to answer.
func (b messageBuilder) AssistantRefusal(refusal string) Message[AssistantMessage] {
	return Message[AssistantMessage]{
		Sender:    b.sender,
		Timestamp: b.timestamp,
		Meta:      b.metadata,
		Payload:   AssistantMessage{Refusal: refusal},
	}
}

// MarshalJSON implements custom JSON marshaling for Message[T]. The payload
// fields sit flat next to the envelope fields under a "type" tag.
func (m Message[T]) MarshalJSON() ([]byte, error) {
	var result []byte
	var err error

	switch payload := any(m.Payload).(type) {
	case InstructionsMessage:
		result, err = sjson.SetBytes(instructionsJSON, "content", payload.Content)
	case UserMessage:
		result, err = sjson.SetBytes(userJSON, "content", payload.Content)
	case AssistantMessage:
		result = assistantJSON
		if payload.Content != "" {
			result, err = sjson.SetBytes(result, "content", payload.Content)
		}
		if err == nil && payload.Refusal != "" {
			result, err = sjson.SetBytes(result, "refusal", payload.Refusal)
		}
	default:
		return nil, fmt.Errorf("unknown message payload: %T", m.Payload)
	}
	if err != nil {
		return nil, err
	}

	result, err = sjson.SetBytes(result, "session_id", m.SessionID.String())
	if err != nil {
		return nil, err
	}

	result, err = sjson.SetBytes(result, "turn_id", m.TurnID.String())
	if err != nil {
		return nil, err
	}

	if m.Sender != "" {
		result, err = sjson.SetBytes(result, "sender", m.Sender)
		if err != nil {
			return nil, err
		}
	}

	if !time.Time(m.Timestamp).IsZero() {
		result, err = sjson.SetBytes(result, "timestamp", m.Timestamp.String())
		if err != nil {
			return nil, err
		}
	}

	if m.Meta.Exists() {
		result, err = sjson.SetRawBytes(result, "meta", []byte(m.Meta.Raw))
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

// UnmarshalJSON implements custom JSON unmarshaling for Message[T]. When T is
// the ModelMessage interface the payload is selected by the "type" tag; for a
// concrete T the tag has to match.
func (m *Message[T]) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid json: %s", data)
	}

	msgType := gjson.GetBytes(data, "type")
	if !msgType.Exists() {
		return errors.New("missing required field 'type'")
	}

	var payload ModelMessage
	switch msgType.String() {
	case "instructions":
		content := gjson.GetBytes(data, "content")
		if !content.Exists() {
			return errors.New("missing required field 'content'")
		}
		payload = InstructionsMessage{Content: content.String()}
	case "user":
		content := gjson.GetBytes(data, "content")
		if !content.Exists() {
			return errors.New("missing required field 'content'")
		}
		payload = UserMessage{Content: content.String()}
	case "assistant":
		content := gjson.GetBytes(data, "content")
		refusal := gjson.GetBytes(data, "refusal")
		if content.Exists() && refusal.Exists() {
			return errors.New("both 'content' and 'refusal' cannot be present")
		}
		payload = AssistantMessage{Content: content.String(), Refusal: refusal.String()}
	default:
		return fmt.Errorf("unknown message type: %s", msgType.String())
	}

	typed, ok := payload.(T)
	if !ok {
		return fmt.Errorf("message type %q does not assign to %T", msgType.String(), m.Payload)
	}
	m.Payload = typed

	if sessionID := gjson.GetBytes(data, "session_id"); sessionID.Exists() {
		if err := m.SessionID.UnmarshalText([]byte(sessionID.String())); err != nil {
			return fmt.Errorf("invalid session_id: %w", err)
		}
	}

	if turnID := gjson.GetBytes(data, "turn_id"); turnID.Exists() {
		if err := m.TurnID.UnmarshalText([]byte(turnID.String())); err != nil {
			return fmt.Errorf("invalid turn_id: %w", err)
		}
	}

	if sender := gjson.GetBytes(data, "sender"); sender.Exists() {
		m.Sender = sender.String()
	}

	if timestamp := gjson.GetBytes(data, "timestamp"); timestamp.Exists() {
		if err := m.Timestamp.UnmarshalText([]byte(timestamp.String())); err != nil {
			return fmt.Errorf("invalid timestamp: %w", err)
		}
	}

	if meta := gjson.GetBytes(data, "meta"); meta.Exists() {
		m.Meta = meta
	}

	return nil
}
