package bind

import (
	"log/slog"

	"github.com/loomui-dev/loom/pkg/dom"
	"github.com/loomui-dev/loom/pkg/loom"
)

// List wires a cell of items to a region: one immediate reconciliation,
// then one per coalesced change. Key extracts each item's reconciliation
// key; build renders a fresh node for a key's first appearance.
//
// A duplicate key is a programmer error: the reconcile pass is skipped
// and logged, leaving the previous children in place.
func List[T any](r *Region, c *loom.Cell[[]T], key func(T) string, build func(T) dom.Node) func() {
	apply := func(v any) {
		values, _ := v.([]T)
		items := make([]Item, len(values))
		for i, val := range values {
			val := val
			items[i] = Item{
				Key:   key(val),
				Build: func() dom.Node { return build(val) },
			}
		}
		if err := r.Reconcile(items); err != nil {
			slog.Error("list reconcile skipped", "error", err)
		}
	}
	apply(c.AnyValue())
	return c.SubscribeAny(apply)
}
