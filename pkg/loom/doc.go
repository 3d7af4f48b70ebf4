// Package loom is the reactive state core: cells, a coalescing
// notification scheduler, static watch bindings, and dynamic
// dependency-tracked derivations.
//
// A Cell holds one value and a subscriber list. Writes that pass the
// shallow-equality check schedule a notification; the Scheduler collapses
// repeated same-turn writes into a single flush carrying the final value.
// Watch binds a callback to explicitly named source cells; Derive discovers
// its dependencies by recording which cells are read while its expression
// evaluates, and re-subscribes to exactly that set after every recompute.
//
// The core is single-writer per turn by convention, not enforcement: any
// holder of a cell reference may write to it. Callers that need a
// single-writer discipline should expose only derived cells downstream.
package loom
