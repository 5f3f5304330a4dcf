// Package tracer maintains a registry of tracer quantities and packs
// them into a single stacked array for kernels that advect arbitrary
// passive species. Components opt in by constructing a Packer against a
// registry; tracers registered later are picked up by live packers
// automatically, and registration fails if a new tracer's name collides
// with a quantity a live packer's owner already produces.
package tracer
