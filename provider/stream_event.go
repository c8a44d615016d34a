package provider

import (
	"errors"
	"fmt"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var (
	chunkJSON = []byte(`{"type":"chunk"}`)
	usageJSON = []byte(`{"type":"usage"}`)
	doneJSON  = []byte(`{"type":"done"}`)
	errorJSON = []byte(`{"type":"error"}`)
)

// StreamEvent is the closed set of events a completion stream can yield.
// Implementations live in this package only.
type StreamEvent interface {
	streamEvent()
}

// Chunk is an incremental fragment of the model's response text. Providers
// never emit empty chunks; wire events without text are dropped at the source.
type Chunk struct {
	SessionID uuid.UUID       `json:"session_id"`
	TurnID    uuid.UUID       `json:"turn_id"`
	Text      string          `json:"text"`
	Timestamp strfmt.DateTime `json:"timestamp,omitempty"`
	Meta      gjson.Result    `json:"meta,omitempty"`
}

func (Chunk) streamEvent() {}

// Usage carries the token accounting sample reported at the end of a
// completion. At most one per stream; absence means the provider did not
// report usage for this call.
type Usage struct {
	SessionID        uuid.UUID       `json:"session_id"`
	TurnID           uuid.UUID       `json:"turn_id"`
	PromptTokens     int64           `json:"prompt_tokens"`
	CompletionTokens int64           `json:"completion_tokens"`
	Timestamp        strfmt.DateTime `json:"timestamp,omitempty"`
	Meta             gjson.Result    `json:"meta,omitempty"`
}

func (Usage) streamEvent() {}

// Done terminates a successful stream. Reason is the provider's finish
// reason, e.g. "stop" or "COMPLETE".
type Done struct {
	SessionID uuid.UUID       `json:"session_id"`
	TurnID    uuid.UUID       `json:"turn_id"`
	Reason    string          `json:"reason"`
	Timestamp strfmt.DateTime `json:"timestamp,omitempty"`
	Meta      gjson.Result    `json:"meta,omitempty"`
}

func (Done) streamEvent() {}

// Error terminates a failed stream. No events follow it.
type Error struct {
	SessionID uuid.UUID       `json:"session_id"`
	TurnID    uuid.UUID       `json:"turn_id"`
	Err       error           `json:"error"`
	Timestamp strfmt.DateTime `json:"timestamp,omitempty"`
	Meta      gjson.Result    `json:"meta,omitempty"`
}

func (Error) streamEvent() {}

func (e Error) Error() string {
	return fmt.Sprintf("session_id: %s, turn_id: %s, timestamp: %s, error: %v", e.SessionID, e.TurnID, e.Timestamp, e.Err)
}

// MarshalJSON implements custom JSON marshaling for Chunk
func (c Chunk) MarshalJSON() ([]byte, error) {
	result := chunkJSON

	var err error
	result, err = sjson.SetBytes(result, "session_id", c.SessionID.String())
	if err != nil {
		return nil, err
	}

	result, err = sjson.SetBytes(result, "turn_id", c.TurnID.String())
	if err != nil {
		return nil, err
	}

	result, err = sjson.SetBytes(result, "text", c.Text)
	if err != nil {
		return nil, err
	}

	if !c.Timestamp.IsZero() {
		result, err = sjson.SetBytes(result, "timestamp", c.Timestamp.String())
		if err != nil {
			return nil, err
		}
	}

	if c.Meta.Exists() {
		result, err = sjson.SetRawBytes(result, "meta", []byte(c.Meta.Raw))
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

// UnmarshalJSON implements custom JSON unmarshaling for Chunk
func (c *Chunk) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid json: %s", data)
	}

	msgType := gjson.GetBytes(data, "type")
	if !msgType.Exists() || msgType.String() != "chunk" {
		return fmt.Errorf("missing or invalid type, expected 'chunk'")
	}

	sessionID := gjson.GetBytes(data, "session_id")
	if !sessionID.Exists() {
		return fmt.Errorf("missing required field 'session_id'")
	}
	if err := c.SessionID.UnmarshalText([]byte(sessionID.String())); err != nil {
		return fmt.Errorf("invalid session_id: %w", err)
	}

	turnID := gjson.GetBytes(data, "turn_id")
	if !turnID.Exists() {
		return fmt.Errorf("missing required field 'turn_id'")
	}
	if err := c.TurnID.UnmarshalText([]byte(turnID.String())); err != nil {
		return fmt.Errorf("invalid turn_id: %w", err)
	}

	text := gjson.GetBytes(data, "text")
	if !text.Exists() {
		return errors.New("missing required field 'text'")
	}
	if text.String() == "" {
		return errors.New("field 'text' cannot be empty")
	}
	c.Text = text.String()

	if timestamp := gjson.GetBytes(data, "timestamp"); timestamp.Exists() {
		if err := c.Timestamp.UnmarshalText([]byte(timestamp.String())); err != nil {
			return fmt.Errorf("invalid timestamp: %w", err)
		}
	}

	if meta := gjson.GetBytes(data, "meta"); meta.Exists() {
		c.Meta = meta
	}

	return nil
}

// MarshalJSON implements custom JSON marshaling for Usage
func (u Usage) MarshalJSON() ([]byte, error) {
	result := usageJSON

	var err error
	result, err = sjson.SetBytes(result, "session_id", u.SessionID.String())
	if err != nil {
		return nil, err
	}

	result, err = sjson.SetBytes(result, "turn_id", u.TurnID.String())
	if err != nil {
		return nil, err
	}

	result, err = sjson.SetBytes(result, "prompt_tokens", u.PromptTokens)
	if err != nil {
		return nil, err
	}

	result, err = sjson.SetBytes(result, "completion_tokens", u.CompletionTokens)
	if err != nil {
		return nil, err
	}

	if !u.Timestamp.IsZero() {
		result, err = sjson.SetBytes(result, "timestamp", u.Timestamp.String())
		if err != nil {
			return nil, err
		}
	}

	if u.Meta.Exists() {
		result, err = sjson.SetRawBytes(result, "meta", []byte(u.Meta.Raw))
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

// UnmarshalJSON implements custom JSON unmarshaling for Usage
func (u *Usage) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid json: %s", data)
	}

	msgType := gjson.GetBytes(data, "type")
	if !msgType.Exists() || msgType.String() != "usage" {
		return fmt.Errorf("missing or invalid type, expected 'usage'")
	}

	sessionID := gjson.GetBytes(data, "session_id")
	if !sessionID.Exists() {
		return fmt.Errorf("missing required field 'session_id'")
	}
	if err := u.SessionID.UnmarshalText([]byte(sessionID.String())); err != nil {
		return fmt.Errorf("invalid session_id: %w", err)
	}

	turnID := gjson.GetBytes(data, "turn_id")
	if !turnID.Exists() {
		return fmt.Errorf("missing required field 'turn_id'")
	}
	if err := u.TurnID.UnmarshalText([]byte(turnID.String())); err != nil {
		return fmt.Errorf("invalid turn_id: %w", err)
	}

	promptTokens := gjson.GetBytes(data, "prompt_tokens")
	if !promptTokens.Exists() {
		return errors.New("missing required field 'prompt_tokens'")
	}
	u.PromptTokens = promptTokens.Int()

	completionTokens := gjson.GetBytes(data, "completion_tokens")
	if !completionTokens.Exists() {
		return errors.New("missing required field 'completion_tokens'")
	}
	u.CompletionTokens = completionTokens.Int()

	if timestamp := gjson.GetBytes(data, "timestamp"); timestamp.Exists() {
		if err := u.Timestamp.UnmarshalText([]byte(timestamp.String())); err != nil {
			return fmt.Errorf("invalid timestamp: %w", err)
		}
	}

	if meta := gjson.GetBytes(data, "meta"); meta.Exists() {
		u.Meta = meta
	}

	return nil
}

// MarshalJSON implements custom JSON marshaling for Done
func (d Done) MarshalJSON() ([]byte, error) {
	result := doneJSON

	var err error
	result, err = sjson.SetBytes(result, "session_id", d.SessionID.String())
	if err != nil {
		return nil, err
	}

	result, err = sjson.SetBytes(result, "turn_id", d.TurnID.String())
	if err != nil {
		return nil, err
	}

	result, err = sjson.SetBytes(result, "reason", d.Reason)
	if err != nil {
		return nil, err
	}

	if !d.Timestamp.IsZero() {
		result, err = sjson.SetBytes(result, "timestamp", d.Timestamp.String())
		if err != nil {
			return nil, err
		}
	}

	if d.Meta.Exists() {
		result, err = sjson.SetRawBytes(result, "meta", []byte(d.Meta.Raw))
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

// UnmarshalJSON implements custom JSON unmarshaling for Done
func (d *Done) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid json: %s", data)
	}

	msgType := gjson.GetBytes(data, "type")
	if !msgType.Exists() || msgType.String() != "done" {
		return fmt.Errorf("missing or invalid type, expected 'done'")
	}

	sessionID := gjson.GetBytes(data, "session_id")
	if !sessionID.Exists() {
		return fmt.Errorf("missing required field 'session_id'")
	}
	if err := d.SessionID.UnmarshalText([]byte(sessionID.String())); err != nil {
		return fmt.Errorf("invalid session_id: %w", err)
	}

	turnID := gjson.GetBytes(data, "turn_id")
	if !turnID.Exists() {
		return fmt.Errorf("missing required field 'turn_id'")
	}
	if err := d.TurnID.UnmarshalText([]byte(turnID.String())); err != nil {
		return fmt.Errorf("invalid turn_id: %w", err)
	}

	reason := gjson.GetBytes(data, "reason")
	if !reason.Exists() {
		return errors.New("missing required field 'reason'")
	}
	d.Reason = reason.String()

	if timestamp := gjson.GetBytes(data, "timestamp"); timestamp.Exists() {
		if err := d.Timestamp.UnmarshalText([]byte(timestamp.String())); err != nil {
			return fmt.Errorf("invalid timestamp: %w", err)
		}
	}

	if meta := gjson.GetBytes(data, "meta"); meta.Exists() {
		d.Meta = meta
	}

	return nil
}

// MarshalJSON implements custom JSON marshaling for Error
func (e Error) MarshalJSON() ([]byte, error) {
	result := errorJSON

	var err error
	result, err = sjson.SetBytes(result, "session_id", e.SessionID.String())
	if err != nil {
		return nil, err
	}

	result, err = sjson.SetBytes(result, "turn_id", e.TurnID.String())
	if err != nil {
		return nil, err
	}

	if e.Err != nil {
		result, err = sjson.SetBytes(result, "error", e.Err.Error())
		if err != nil {
			return nil, err
		}
	}

	if !e.Timestamp.IsZero() {
		result, err = sjson.SetBytes(result, "timestamp", e.Timestamp.String())
		if err != nil {
			return nil, err
		}
	}

	if e.Meta.Exists() {
		result, err = sjson.SetRawBytes(result, "meta", []byte(e.Meta.Raw))
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

// UnmarshalJSON implements custom JSON unmarshaling for Error
func (e *Error) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid json: %s", data)
	}

	msgType := gjson.GetBytes(data, "type")
	if !msgType.Exists() || msgType.String() != "error" {
		return fmt.Errorf("missing or invalid type, expected 'error'")
	}

	sessionID := gjson.GetBytes(data, "session_id")
	if !sessionID.Exists() {
		return fmt.Errorf("missing required field 'session_id'")
	}
	if err := e.SessionID.UnmarshalText([]byte(sessionID.String())); err != nil {
		return fmt.Errorf("invalid session_id: %w", err)
	}

	turnID := gjson.GetBytes(data, "turn_id")
	if !turnID.Exists() {
		return fmt.Errorf("missing required field 'turn_id'")
	}
	if err := e.TurnID.UnmarshalText([]byte(turnID.String())); err != nil {
		return fmt.Errorf("invalid turn_id: %w", err)
	}

	errMsg := gjson.GetBytes(data, "error")
	if !errMsg.Exists() {
		return errors.New("missing required field 'error'")
	}
	e.Err = errors.New(errMsg.String())

	if timestamp := gjson.GetBytes(data, "timestamp"); timestamp.Exists() {
		if err := e.Timestamp.UnmarshalText([]byte(timestamp.String())); err != nil {
			return fmt.Errorf("invalid timestamp: %w", err)
		}
	}

	if meta := gjson.GetBytes(data, "meta"); meta.Exists() {
		e.Meta = meta
	}

	return nil
}
