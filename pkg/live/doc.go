// Package live runs the server-driven session loop: each connected
// client gets its own document, scheduler, and patch recorder. Client
// events dispatch to registered handlers, the scheduler turn flushes, and
// every mutation recorded during the turn streams back as one patch
// frame.
package live
