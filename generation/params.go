package generation

import (
	"errors"
	"fmt"
	"slices"

	"github.com/go-openapi/swag"
)

// Params are the sampling settings for one inference call. Nil means unset;
// unset knobs are left out of the provider request.
type Params struct {
	Temperature      *float64 `json:"temperature,omitempty" jsonschema:"minimum=0,maximum=1,description=Sampling temperature"`
	MaxTokens        *int64   `json:"max_tokens,omitempty" jsonschema:"minimum=1,description=Completion token budget"`
	TopK             *int64   `json:"top_k,omitempty" jsonschema:"minimum=0,description=Top-k sampling cutoff"`
	TopP             *float64 `json:"top_p,omitempty" jsonschema:"minimum=0,maximum=1,description=Nucleus sampling cutoff"`
	FrequencyPenalty *float64 `json:"frequency_penalty,omitempty" jsonschema:"minimum=0,maximum=1,description=Penalty on token frequency"`
	PresencePenalty  *float64 `json:"presence_penalty,omitempty" jsonschema:"minimum=0,maximum=1,description=Penalty on token presence"`
	StopSequences    []string `json:"stop_sequences,omitempty" jsonschema:"description=Sequences that terminate the completion"`
}

// Defaults returns the settings a session starts with.
func Defaults() Params {
	return Params{
		Temperature:      swag.Float64(0.7),
		MaxTokens:        swag.Int64(1000),
		TopK:             swag.Int64(0),
		TopP:             swag.Float64(0.9),
		FrequencyPenalty: swag.Float64(0.0),
		PresencePenalty:  swag.Float64(0.0),
	}
}

// Validate checks every set knob against its declared range. Unset knobs
// pass.
func (p Params) Validate() error {
	var err error

	if p.Temperature != nil && (*p.Temperature < 0 || *p.Temperature > 1) {
		err = errors.Join(err, fmt.Errorf("temperature %v outside [0, 1]", *p.Temperature))
	}
	if p.MaxTokens != nil && *p.MaxTokens < 1 {
		err = errors.Join(err, fmt.Errorf("max_tokens %d must be at least 1", *p.MaxTokens))
	}
	if p.TopK != nil && *p.TopK < 0 {
		err = errors.Join(err, fmt.Errorf("top_k %d must not be negative", *p.TopK))
	}
	if p.TopP != nil && (*p.TopP < 0 || *p.TopP > 1) {
		err = errors.Join(err, fmt.Errorf("top_p %v outside [0, 1]", *p.TopP))
	}
	if p.FrequencyPenalty != nil && (*p.FrequencyPenalty < 0 || *p.FrequencyPenalty > 1) {
		err = errors.Join(err, fmt.Errorf("frequency_penalty %v outside [0, 1]", *p.FrequencyPenalty))
	}
	if p.PresencePenalty != nil && (*p.PresencePenalty < 0 || *p.PresencePenalty > 1) {
		err = errors.Join(err, fmt.Errorf("presence_penalty %v outside [0, 1]", *p.PresencePenalty))
	}

	return err
}

// Clone returns a deep copy. Pointer knobs are re-pointed at fresh values so
// callers can hold the copy across concurrent updates.
func (p Params) Clone() Params {
	clone := Params{
		StopSequences: slices.Clone(p.StopSequences),
	}
	if p.Temperature != nil {
		clone.Temperature = swag.Float64(*p.Temperature)
	}
	if p.MaxTokens != nil {
		clone.MaxTokens = swag.Int64(*p.MaxTokens)
	}
	if p.TopK != nil {
		clone.TopK = swag.Int64(*p.TopK)
	}
	if p.TopP != nil {
		clone.TopP = swag.Float64(*p.TopP)
	}
	if p.FrequencyPenalty != nil {
		clone.FrequencyPenalty = swag.Float64(*p.FrequencyPenalty)
	}
	if p.PresencePenalty != nil {
		clone.PresencePenalty = swag.Float64(*p.PresencePenalty)
	}
	return clone
}
