// Package schema defines the declarative property contract between model
// components: for every quantity a component consumes or produces, its
// expected dimensions, units, raw-array alias, and tracer/dtype flags.
//
// The dims list may contain a single wildcard token "*" meaning "every
// axis of the quantity not named explicitly, flattened into one axis".
// Wildcard resolution itself lives in package marshal; this package owns
// the contract types, their validation, and the rules for merging the
// schemas of several components into one ([CombineDims],
// [CombineProperties]).
package schema
