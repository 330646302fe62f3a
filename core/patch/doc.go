// Package patch applies a mod's declarative edits to resources in the store.
//
// A Batch is an ordered list of named patches plus an error policy. Each patch names one
// operation (set_key, add_section, delete, merge, replace, set_palette and a few finer-grained
// key and section edits), a target resource and, optionally, a condition that must hold for the
// patch to run. A false condition skips the patch without counting as a failure.
//
// # Error policy
//
// With on_error = "continue" every patch writes straight to the store. A failing patch is logged
// and recorded in the Result, and the remaining patches still run.
//
// With on_error = "abort" the batch runs against a shadow overlay: writes and deletes are staged
// in the overlay and reads consult it before falling through to the store. If every patch
// succeeds the overlay is committed to the store in a single step; the first failure discards it
// and the store is left exactly as it was.
//
// Two batches touching the same resource concurrently are not isolated from each other; callers
// that run batches in parallel must keep their targets disjoint.
package patch
