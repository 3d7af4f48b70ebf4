// Package client embeds the thin browser runtime served at
// /static/loom.js.
package client

import _ "embed"

// LoomJS is the thin client script: it opens the session WebSocket,
// renders the bootstrap snapshot, refreshes on later turns via resync,
// and forwards data-event clicks to the server.
//
//go:embed loom.js
var LoomJS []byte
