package frames

import (
	"github.com/casualjim/myna/messages"
	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// Frame is the closed union of everything that can travel through the
// pipeline. The marker method keeps the set closed to this package.
type Frame interface {
	frame()
}

// Context carries one conversational turn: the ordered message snapshot the
// inference call should answer. It is produced by the transcript aggregator
// and is read-only to the session.
type Context struct {
	SessionID uuid.UUID                                 `json:"session_id"`
	TurnID    uuid.UUID                                 `json:"turn_id"`
	Messages  []messages.Message[messages.ModelMessage] `json:"messages"`
	Sender    string                                    `json:"sender,omitempty"`
	Timestamp strfmt.DateTime                           `json:"timestamp,omitempty"`
	Meta      gjson.Result                              `json:"meta,omitempty"`
}

func (Context) frame() {}

// Settings carries a partial generation-settings update as a raw JSON object.
// Only the keys present in the patch are applied; everything else keeps its
// current value.
type Settings struct {
	SessionID uuid.UUID       `json:"session_id"`
	Patch     gjson.Result    `json:"settings"`
	Sender    string          `json:"sender,omitempty"`
	Timestamp strfmt.DateTime `json:"timestamp,omitempty"`
}

func (Settings) frame() {}

// Start opens one response turn.
type Start struct {
	SessionID uuid.UUID       `json:"session_id"`
	TurnID    uuid.UUID       `json:"turn_id"`
	Sender    string          `json:"sender,omitempty"`
	Timestamp strfmt.DateTime `json:"timestamp,omitempty"`
}

func (Start) frame() {}

// Delta carries one verbatim text fragment of the streamed response. Text is
// never empty.
type Delta struct {
	SessionID uuid.UUID       `json:"session_id"`
	TurnID    uuid.UUID       `json:"turn_id"`
	Text      string          `json:"text"`
	Sender    string          `json:"sender,omitempty"`
	Timestamp strfmt.DateTime `json:"timestamp,omitempty"`
}

func (Delta) frame() {}

// End closes one response turn. It is published on every exit path,
// including provider failures and cancellation.
type End struct {
	SessionID uuid.UUID       `json:"session_id"`
	TurnID    uuid.UUID       `json:"turn_id"`
	Sender    string          `json:"sender,omitempty"`
	Timestamp strfmt.DateTime `json:"timestamp,omitempty"`
}

func (End) frame() {}

// Usage reports the token accounting of one closed inference call. When the
// provider never reported a sample the frame is flagged Unavailable instead
// of carrying zeros.
type Usage struct {
	SessionID        uuid.UUID       `json:"session_id"`
	TurnID           uuid.UUID       `json:"turn_id"`
	Model            string          `json:"model"`
	PromptTokens     int64           `json:"prompt_tokens"`
	CompletionTokens int64           `json:"completion_tokens"`
	TotalTokens      int64           `json:"total_tokens"`
	Unavailable      bool            `json:"unavailable,omitempty"`
	Sender           string          `json:"sender,omitempty"`
	Timestamp        strfmt.DateTime `json:"timestamp,omitempty"`
}

func (Usage) frame() {}

// Error reports a pipeline-level failure. This is distinct from the in-band
// "Error: …" delta a session speaks when a provider call fails mid-turn.
type Error struct {
	SessionID uuid.UUID       `json:"session_id"`
	TurnID    uuid.UUID       `json:"turn_id"`
	Err       error           `json:"error"`
	Sender    string          `json:"sender,omitempty"`
	Timestamp strfmt.DateTime `json:"timestamp,omitempty"`
}

func (Error) frame() {}
