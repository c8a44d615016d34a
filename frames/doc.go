// Package frames defines the units of work that travel through the voice
// pipeline. A frame is one of a closed set of variants: control-plane frames
// that feed the inference session (a conversational context, a settings
// patch) and response-plane frames the session emits back (start, text
// deltas, end, usage, errors).
//
// Design decisions:
//   - Closed set: every variant carries an unexported marker method so a
//     switch over frames is exhaustive by construction
//   - Wire-first: each variant owns a type-tagged JSON codec; ToJSON and
//     FromJSON dispatch on the tag so frames can cross process boundaries
//   - Strict decode: required fields are validated up front and unknown tags
//     are rejected rather than probed around
//   - Explicit consumption: the Hook interface has one callback per variant
//     and no no-op base, so subscribers decide frame by frame what they do
//
// Response framing contract: for every conversational turn the session
// publishes exactly one Start, zero or more Delta frames and exactly one End,
// in that order, never interleaved with another turn of the same session.
// Consumers that synthesize speech or render text can rely on Start/End as
// utterance boundaries and must tolerate a turn with no deltas at all.
package frames
