package bind

import (
	"fmt"

	"github.com/loomui-dev/loom/pkg/dom"
)

// Item is one keyed entry of a reconciled list. Build is invoked at most
// once per key, the first time the key appears; the resulting node keeps
// its identity across reorders.
type Item struct {
	Key   string
	Build func() dom.Node
}

// Region is a reactive child span bounded by two marker nodes, plus the
// key -> node map of its current children.
type Region struct {
	parent *dom.Element
	start  *dom.Marker
	end    *dom.Marker
	nodes  map[string]dom.Node
}

// NewRegion appends a fresh marker pair to parent and returns the region
// between them.
func NewRegion(d *dom.Document, parent *dom.Element) *Region {
	r := &Region{
		parent: parent,
		start:  d.Marker(),
		end:    d.Marker(),
		nodes:  make(map[string]dom.Node),
	}
	parent.AppendChild(r.start)
	parent.AppendChild(r.end)
	return r
}

// Node returns the rendered node for a key, if present.
func (r *Region) Node(key string) (dom.Node, bool) {
	n, ok := r.nodes[key]
	return n, ok
}

// Len reports the number of keyed children.
func (r *Region) Len() int {
	return len(r.nodes)
}

// Reconcile patches the region to match items, preserving node identity
// for retained keys with O(n) moves:
//
//  1. keys no longer present are detached and dropped
//  2. the remaining keys are walked in reverse, keeping an anchor that
//     starts at the end marker: each node is reused or built, inserted
//     before the anchor only when it is not already there, and becomes
//     the new anchor
//
// Duplicate keys are rejected with an error before any mutation. An empty
// items list removes everything between the markers.
func (r *Region) Reconcile(items []Item) error {
	keep := make(map[string]bool, len(items))
	for _, it := range items {
		if keep[it.Key] {
			return fmt.Errorf("bind: duplicate key %q in reconcile", it.Key)
		}
		keep[it.Key] = true
	}

	for key, node := range r.nodes {
		if !keep[key] {
			r.parent.RemoveChild(node)
			delete(r.nodes, key)
		}
	}

	var anchor dom.Node = r.end
	for i := len(items) - 1; i >= 0; i-- {
		it := items[i]
		node, ok := r.nodes[it.Key]
		if !ok {
			node = it.Build()
			r.nodes[it.Key] = node
		}
		if node.Parent() != r.parent || r.parent.NextSibling(node) != anchor {
			r.parent.InsertBefore(node, anchor)
		}
		anchor = node
	}
	return nil
}

// Clear removes every keyed child.
func (r *Region) Clear() {
	_ = r.Reconcile(nil)
}
