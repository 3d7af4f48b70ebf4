// Package dom is a live, mutable document model: elements with ordered
// attributes, class token sets and style maps, text nodes, and
// non-rendering marker nodes that bound reactive child regions.
//
// Every mutation can be observed by an optional Recorder as a stream of
// Patch operations with stable node IDs. The binders in package bind
// mutate this tree; the live server replays the recorded patches to a
// connected client.
package dom
