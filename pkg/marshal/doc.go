// Package marshal converts between labeled, unit-tagged state and the
// plain numeric arrays a component's kernel consumes.
//
// The forward path ([GetRawArrays]) takes a state and an input property
// schema and produces raw arrays shaped, ordered, and unit-converted
// exactly as each kernel declares, flattening wildcard-matched axes into
// a single combined axis. [InitRawArrays] allocates zero-filled output
// arrays from an already-marshalled raw input. The reverse path
// ([RestoreDataArrays]) lifts the kernel's raw outputs back into labeled
// arrays consistent with the input state, re-expanding the wildcard axis
// into its named constituents.
//
// Dimension-length tables and the shared wildcard name list are
// recomputed per call and never cached. Quantities are scanned in sorted
// name order, so the wildcard axis ordering is deterministic for a given
// state and schema.
package marshal
