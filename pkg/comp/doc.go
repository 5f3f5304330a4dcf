// Package comp defines the component contract the marshalling engine
// serves: a component declares property schemas for what it consumes
// and produces, and exposes a raw-array kernel. The call wrappers here
// run the full path for one invocation: forward-marshal the caller's
// state, invoke the kernel, verify the kernel produced exactly what it
// declared, and restore the results to labeled arrays.
//
// Components carry an explicit role tag rather than being probed for
// capabilities: a component is a tendency producer, a diagnostic
// producer, or a stepper, and the engine dispatches on that tag.
package comp
