// Package protocol defines the wire format between a live session and
// its client: a one-byte frame type followed by a msgpack payload.
//
// Patches flow server to client, one batch per scheduler turn with a
// monotonically increasing sequence number. Events flow client to server
// and name a handler plus an optional target node and value.
package protocol
