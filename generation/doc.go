// Package generation holds the sampling settings for inference calls and the
// store that owns them for the lifetime of a session.
//
// Params uses pointer fields so an unset knob is distinguishable from a zero
// value; unset knobs are omitted from provider requests entirely. Ranges are
// enforced once, when a store is constructed. Updates arrive as partial JSON
// patches: keys present in the patch overwrite the current value, keys the
// schema does not know are ignored, and patch values are not revalidated.
//
// The Store hands out value snapshots from an atomic pointer, so readers
// never block and never observe a half-applied patch. An inference call that
// snapshotted its settings keeps them for the whole call even if an update
// lands mid-stream.
package generation
