package loom

import (
	"runtime"
	"sync"
)

// readScope records the cells read while a derivation's expression
// evaluates. Reads are deduplicated by cell ID: reading the same cell
// twice in one pass records a single dependency edge.
type readScope struct {
	reads map[uint64]Source

	// mute disables recording without popping the scope.
	// Used by Untracked so inner scopes still nest correctly.
	mute bool
}

func newReadScope() *readScope {
	return &readScope{reads: make(map[uint64]Source)}
}

// trackingContext holds the recording-scope stack for a goroutine.
// A stack (rather than a single slot) is what makes nested derivations
// work: a derive whose expression reads another derive's cell records
// into the inner scope while the outer scope waits underneath.
type trackingContext struct {
	scopes []*readScope
}

// trackingContexts stores per-goroutine tracking contexts.
var trackingContexts sync.Map

// goroutineID extracts the current goroutine's ID from the runtime stack
// header. Implementation detail, never exposed.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	// Stack begins "goroutine <id> ".
	var id uint64
	for i := 10; i < n; i++ {
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

func currentTracking() *trackingContext {
	gid := goroutineID()
	if ctx, ok := trackingContexts.Load(gid); ok {
		return ctx.(*trackingContext)
	}
	ctx := &trackingContext{}
	trackingContexts.Store(gid, ctx)
	return ctx
}

// pushScope begins a fresh recording scope and returns it.
// The caller must pair it with popScope, normally via defer, so the
// previous scope is restored even when evaluation panics.
func pushScope() *readScope {
	ctx := currentTracking()
	s := newReadScope()
	ctx.scopes = append(ctx.scopes, s)
	return s
}

// popScope removes the given scope from the stack, restoring whatever was
// active before it. If evaluation panicked past intermediate scopes, all
// scopes above the expected one are discarded with it, so a failure in one
// derivation cannot corrupt tracking for unrelated ones.
func popScope(expected *readScope) {
	ctx := currentTracking()
	for i := len(ctx.scopes) - 1; i >= 0; i-- {
		if ctx.scopes[i] == expected {
			ctx.scopes = ctx.scopes[:i]
			return
		}
	}
}

// recordRead registers a cell read with the active recording scope, if any.
func recordRead(src Source) {
	ctx := currentTracking()
	if len(ctx.scopes) == 0 {
		return
	}
	top := ctx.scopes[len(ctx.scopes)-1]
	if top.mute {
		return
	}
	top.reads[src.ID()] = src
}

// Untracked runs fn with dependency recording suspended. Cell reads inside
// fn do not register with the surrounding derivation.
//
// For a single read, Cell.Peek is the clearer choice.
func Untracked(fn func()) {
	ctx := currentTracking()
	s := &readScope{mute: true}
	ctx.scopes = append(ctx.scopes, s)
	defer popScope(s)
	fn()
}
