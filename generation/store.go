package generation

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/go-openapi/swag"
	"github.com/tidwall/gjson"
)

// Store owns the settings of one session. Snapshot never blocks and always
// returns a complete value; Update swaps the whole value under a writer lock
// so concurrent snapshots see either the old settings or the new ones, never
// a mix.
type Store struct {
	writeMu sync.Mutex
	current atomic.Pointer[Params]
}

// NewStore validates the initial settings and seeds the store with them.
func NewStore(params Params) (*Store, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid generation settings: %w", err)
	}

	s := &Store{}
	seed := params.Clone()
	s.current.Store(&seed)
	return s, nil
}

// Snapshot returns an independent copy of the current settings. An inference
// call takes one snapshot at call start and keeps it for the whole call.
func (s *Store) Snapshot() Params {
	return s.current.Load().Clone()
}

// Update applies a partial JSON patch. Keys present in the patch overwrite
// the current value, a JSON null unsets the knob, and keys the schema does
// not know are ignored. Patch values are not range-checked; use InspectPatch
// when the caller wants to report what a patch would touch.
func (s *Store) Update(patch gjson.Result) error {
	if !patch.Exists() || !patch.IsObject() {
		return errors.New("settings patch must be a JSON object")
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next := s.current.Load().Clone()
	patch.ForEach(func(key, value gjson.Result) bool {
		applyKnob(&next, key.String(), value)
		return true
	})
	s.current.Store(&next)
	return nil
}

func applyKnob(p *Params, key string, value gjson.Result) {
	unset := value.Type == gjson.Null

	switch key {
	case "temperature":
		p.Temperature = floatKnob(value, unset)
	case "max_tokens":
		p.MaxTokens = intKnob(value, unset)
	case "top_k":
		p.TopK = intKnob(value, unset)
	case "top_p":
		p.TopP = floatKnob(value, unset)
	case "frequency_penalty":
		p.FrequencyPenalty = floatKnob(value, unset)
	case "presence_penalty":
		p.PresencePenalty = floatKnob(value, unset)
	case "stop_sequences":
		if unset || !value.IsArray() {
			p.StopSequences = nil
			return
		}
		elements := value.Array()
		sequences := make([]string, 0, len(elements))
		for _, element := range elements {
			sequences = append(sequences, element.String())
		}
		p.StopSequences = sequences
	}
}

func floatKnob(value gjson.Result, unset bool) *float64 {
	if unset {
		return nil
	}
	return swag.Float64(value.Float())
}

func intKnob(value gjson.Result, unset bool) *int64 {
	if unset {
		return nil
	}
	return swag.Int64(value.Int())
}
