// Package bind attaches reactive cells to the live DOM tree: text
// content, attributes, class token sets, style maps, and keyed child
// regions.
//
// Every binder applies the cell's current value synchronously once, then
// subscribes for changes; updates arrive coalesced through the cell's
// scheduler. Each binder returns an idempotent release function. Regions
// are bounded by marker nodes and reconciled against keyed item lists
// with node identity preserved for retained keys.
package bind
