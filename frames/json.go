package frames

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/casualjim/myna/messages"
	"github.com/go-openapi/strfmt"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var (
	contextJSON  = []byte(`{"type":"context"}`)
	settingsJSON = []byte(`{"type":"settings"}`)
	startJSON    = []byte(`{"type":"start"}`)
	deltaJSON    = []byte(`{"type":"delta"}`)
	endJSON      = []byte(`{"type":"end"}`)
	usageJSON    = []byte(`{"type":"usage"}`)
	errorJSON    = []byte(`{"type":"error"}`)
)

// ToJSON serializes a frame for transport. The result carries a "type" tag
// that FromJSON dispatches on.
func ToJSON(f Frame) ([]byte, error) {
	if f == nil {
		return nil, errors.New("cannot serialize a nil frame")
	}
	return json.Marshal(f)
}

// FromJSON decodes a type-tagged frame. Unknown tags are an error, not a
// fallthrough.
func FromJSON(data []byte) (Frame, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid json: %s", data)
	}

	frameType := gjson.GetBytes(data, "type")
	if !frameType.Exists() {
		return nil, errors.New("missing required field 'type'")
	}

	switch frameType.String() {
	case "context":
		var f Context
		if err := f.UnmarshalJSON(data); err != nil {
			return nil, err
		}
		return f, nil
	case "settings":
		var f Settings
		if err := f.UnmarshalJSON(data); err != nil {
			return nil, err
		}
		return f, nil
	case "start":
		var f Start
		if err := f.UnmarshalJSON(data); err != nil {
			return nil, err
		}
		return f, nil
	case "delta":
		var f Delta
		if err := f.UnmarshalJSON(data); err != nil {
			return nil, err
		}
		return f, nil
	case "end":
		var f End
		if err := f.UnmarshalJSON(data); err != nil {
			return nil, err
		}
		return f, nil
	case "usage":
		var f Usage
		if err := f.UnmarshalJSON(data); err != nil {
			return nil, err
		}
		return f, nil
	case "error":
		var f Error
		if err := f.UnmarshalJSON(data); err != nil {
			return nil, err
		}
		return f, nil
	default:
		return nil, fmt.Errorf("unknown frame type: %s", frameType.String())
	}
}

func setEnvelope(result []byte, sessionID, turnID uuid.UUID, sender string, ts strfmt.DateTime) ([]byte, error) {
	result, err := sjson.SetBytes(result, "session_id", sessionID.String())
	if err != nil {
		return nil, err
	}

	result, err = sjson.SetBytes(result, "turn_id", turnID.String())
	if err != nil {
		return nil, err
	}

	if sender != "" {
		result, err = sjson.SetBytes(result, "sender", sender)
		if err != nil {
			return nil, err
		}
	}

	if !ts.IsZero() {
		result, err = sjson.SetBytes(result, "timestamp", ts.String())
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

func readEnvelope(data []byte, frameType string, sessionID, turnID *uuid.UUID, sender *string, ts *strfmt.DateTime) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid json: %s", data)
	}

	tag := gjson.GetBytes(data, "type")
	if !tag.Exists() || tag.String() != frameType {
		return fmt.Errorf("missing or invalid type, expected '%s'", frameType)
	}

	sid := gjson.GetBytes(data, "session_id")
	if !sid.Exists() {
		return errors.New("missing required field 'session_id'")
	}
	if err := sessionID.UnmarshalText([]byte(sid.String())); err != nil {
		return fmt.Errorf("invalid session_id: %w", err)
	}

	tid := gjson.GetBytes(data, "turn_id")
	if !tid.Exists() {
		return errors.New("missing required field 'turn_id'")
	}
	if err := turnID.UnmarshalText([]byte(tid.String())); err != nil {
		return fmt.Errorf("invalid turn_id: %w", err)
	}

	if snd := gjson.GetBytes(data, "sender"); snd.Exists() {
		*sender = snd.String()
	}

	if timestamp := gjson.GetBytes(data, "timestamp"); timestamp.Exists() {
		if err := ts.UnmarshalText([]byte(timestamp.String())); err != nil {
			return fmt.Errorf("invalid timestamp: %w", err)
		}
	}

	return nil
}

// MarshalJSON implements custom JSON marshaling for Context
func (c Context) MarshalJSON() ([]byte, error) {
	msgs := []byte(`[]`)
	for i, msg := range c.Messages {
		mb, err := json.Marshal(msg)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal context message %d: %w", i, err)
		}
		msgs, err = sjson.SetRawBytes(msgs, strconv.Itoa(i), mb)
		if err != nil {
			return nil, err
		}
	}

	result, err := sjson.SetRawBytes(contextJSON, "messages", msgs)
	if err != nil {
		return nil, err
	}

	result, err = setEnvelope(result, c.SessionID, c.TurnID, c.Sender, c.Timestamp)
	if err != nil {
		return nil, err
	}

	if c.Meta.Exists() {
		result, err = sjson.SetRawBytes(result, "meta", []byte(c.Meta.Raw))
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

// UnmarshalJSON implements custom JSON unmarshaling for Context
func (c *Context) UnmarshalJSON(data []byte) error {
	if err := readEnvelope(data, "context", &c.SessionID, &c.TurnID, &c.Sender, &c.Timestamp); err != nil {
		return err
	}

	msgs := gjson.GetBytes(data, "messages")
	if !msgs.Exists() {
		return errors.New("missing required field 'messages'")
	}
	if !msgs.IsArray() {
		return errors.New("'messages' must be an array")
	}

	elements := msgs.Array()
	c.Messages = make([]messages.Message[messages.ModelMessage], 0, len(elements))
	for i, element := range elements {
		var msg messages.Message[messages.ModelMessage]
		if err := json.Unmarshal([]byte(element.Raw), &msg); err != nil {
			return fmt.Errorf("invalid message at index %d: %w", i, err)
		}
		c.Messages = append(c.Messages, msg)
	}

	if meta := gjson.GetBytes(data, "meta"); meta.Exists() {
		c.Meta = meta
	}

	return nil
}

// MarshalJSON implements custom JSON marshaling for Settings
func (s Settings) MarshalJSON() ([]byte, error) {
	if !s.Patch.Exists() || !s.Patch.IsObject() {
		return nil, errors.New("settings patch must be a JSON object")
	}

	result, err := sjson.SetRawBytes(settingsJSON, "settings", []byte(s.Patch.Raw))
	if err != nil {
		return nil, err
	}

	result, err = sjson.SetBytes(result, "session_id", s.SessionID.String())
	if err != nil {
		return nil, err
	}

	if s.Sender != "" {
		result, err = sjson.SetBytes(result, "sender", s.Sender)
		if err != nil {
			return nil, err
		}
	}

	if !s.Timestamp.IsZero() {
		result, err = sjson.SetBytes(result, "timestamp", s.Timestamp.String())
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

// UnmarshalJSON implements custom JSON unmarshaling for Settings
func (s *Settings) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid json: %s", data)
	}

	frameType := gjson.GetBytes(data, "type")
	if !frameType.Exists() || frameType.String() != "settings" {
		return errors.New("missing or invalid type, expected 'settings'")
	}

	sessionID := gjson.GetBytes(data, "session_id")
	if !sessionID.Exists() {
		return errors.New("missing required field 'session_id'")
	}
	if err := s.SessionID.UnmarshalText([]byte(sessionID.String())); err != nil {
		return fmt.Errorf("invalid session_id: %w", err)
	}

	patch := gjson.GetBytes(data, "settings")
	if !patch.Exists() {
		return errors.New("missing required field 'settings'")
	}
	if !patch.IsObject() {
		return errors.New("'settings' must be an object")
	}
	s.Patch = patch

	if sender := gjson.GetBytes(data, "sender"); sender.Exists() {
		s.Sender = sender.String()
	}

	if timestamp := gjson.GetBytes(data, "timestamp"); timestamp.Exists() {
		if err := s.Timestamp.UnmarshalText([]byte(timestamp.String())); err != nil {
			return fmt.Errorf("invalid timestamp: %w", err)
		}
	}

	return nil
}

// MarshalJSON implements custom JSON marshaling for Start
func (s Start) MarshalJSON() ([]byte, error) {
	return setEnvelope(startJSON, s.SessionID, s.TurnID, s.Sender, s.Timestamp)
}

// UnmarshalJSON implements custom JSON unmarshaling for Start
func (s *Start) UnmarshalJSON(data []byte) error {
	return readEnvelope(data, "start", &s.SessionID, &s.TurnID, &s.Sender, &s.Timestamp)
}

// MarshalJSON implements custom JSON marshaling for Delta
func (d Delta) MarshalJSON() ([]byte, error) {
	result, err := sjson.SetBytes(deltaJSON, "text", d.Text)
	if err != nil {
		return nil, err
	}
	return setEnvelope(result, d.SessionID, d.TurnID, d.Sender, d.Timestamp)
}

// UnmarshalJSON implements custom JSON unmarshaling for Delta
func (d *Delta) UnmarshalJSON(data []byte) error {
	if err := readEnvelope(data, "delta", &d.SessionID, &d.TurnID, &d.Sender, &d.Timestamp); err != nil {
		return err
	}

	text := gjson.GetBytes(data, "text")
	if !text.Exists() {
		return errors.New("missing required field 'text'")
	}
	if text.String() == "" {
		return errors.New("field 'text' cannot be empty")
	}
	d.Text = text.String()

	return nil
}

// MarshalJSON implements custom JSON marshaling for End
func (e End) MarshalJSON() ([]byte, error) {
	return setEnvelope(endJSON, e.SessionID, e.TurnID, e.Sender, e.Timestamp)
}

// UnmarshalJSON implements custom JSON unmarshaling for End
func (e *End) UnmarshalJSON(data []byte) error {
	return readEnvelope(data, "end", &e.SessionID, &e.TurnID, &e.Sender, &e.Timestamp)
}

// MarshalJSON implements custom JSON marshaling for Usage
func (u Usage) MarshalJSON() ([]byte, error) {
	result, err := sjson.SetBytes(usageJSON, "model", u.Model)
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

	result, err = sjson.SetBytes(result, "total_tokens", u.TotalTokens)
	if err != nil {
		return nil, err
	}

	if u.Unavailable {
		result, err = sjson.SetBytes(result, "unavailable", true)
		if err != nil {
			return nil, err
		}
	}

	return setEnvelope(result, u.SessionID, u.TurnID, u.Sender, u.Timestamp)
}

// UnmarshalJSON implements custom JSON unmarshaling for Usage
func (u *Usage) UnmarshalJSON(data []byte) error {
	if err := readEnvelope(data, "usage", &u.SessionID, &u.TurnID, &u.Sender, &u.Timestamp); err != nil {
		return err
	}

	model := gjson.GetBytes(data, "model")
	if !model.Exists() {
		return errors.New("missing required field 'model'")
	}
	u.Model = model.String()

	u.PromptTokens = gjson.GetBytes(data, "prompt_tokens").Int()
	u.CompletionTokens = gjson.GetBytes(data, "completion_tokens").Int()
	u.TotalTokens = gjson.GetBytes(data, "total_tokens").Int()
	u.Unavailable = gjson.GetBytes(data, "unavailable").Bool()

	return nil
}

// MarshalJSON implements custom JSON marshaling for Error
func (e Error) MarshalJSON() ([]byte, error) {
	if e.Err == nil {
		return nil, errors.New("error frame requires a non-nil error")
	}

	result, err := sjson.SetBytes(errorJSON, "error", e.Err.Error())
	if err != nil {
		return nil, err
	}
	return setEnvelope(result, e.SessionID, e.TurnID, e.Sender, e.Timestamp)
}

// UnmarshalJSON implements custom JSON unmarshaling for Error
func (e *Error) UnmarshalJSON(data []byte) error {
	if err := readEnvelope(data, "error", &e.SessionID, &e.TurnID, &e.Sender, &e.Timestamp); err != nil {
		return err
	}

	errMsg := gjson.GetBytes(data, "error")
	if !errMsg.Exists() {
		return errors.New("missing required field 'error'")
	}
	e.Err = errors.New(errMsg.String())

	return nil
}
