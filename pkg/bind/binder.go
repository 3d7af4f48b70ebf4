package bind

import (
	"fmt"
	"strings"

	"github.com/loomui-dev/loom/pkg/dom"
	"github.com/loomui-dev/loom/pkg/loom"
)

// Text binds a cell to a text node's content. A nil format renders with
// the default string conversion.
func Text(n *dom.Text, src loom.Source, format func(any) string) func() {
	apply := func(v any) {
		if format != nil {
			n.SetText(format(v))
			return
		}
		n.SetText(stringify(v))
	}
	apply(src.AnyValue())
	return src.SubscribeAny(apply)
}

// Attr binds a cell to an attribute. Boolean values follow HTML presence
// semantics: true sets the bare attribute, false removes it; nil removes
// it.
func Attr(el *dom.Element, name string, src loom.Source) func() {
	apply := func(v any) {
		switch x := v.(type) {
		case nil:
			el.RemoveAttribute(name)
		case bool:
			if x {
				el.SetAttribute(name, "")
			} else {
				el.RemoveAttribute(name)
			}
		default:
			el.SetAttribute(name, stringify(v))
		}
	}
	apply(src.AnyValue())
	return src.SubscribeAny(apply)
}

// Class binds a cell holding a space-separated class string. The binding
// diffs tokens rather than replacing the attribute: only tokens it added
// previously and that are absent from the new value are removed, and only
// newly present tokens are added, so class tokens set by unrelated code
// survive every update.
func Class(el *dom.Element, src loom.Source) func() {
	var bound []string
	apply := func(v any) {
		next := strings.Fields(stringify(v))
		present := make(map[string]bool, len(next))
		for _, tok := range next {
			present[tok] = true
		}
		for _, tok := range bound {
			if !present[tok] {
				el.RemoveClass(tok)
			}
		}
		for _, tok := range next {
			el.AddClass(tok)
		}
		bound = next
	}
	apply(src.AnyValue())
	return src.SubscribeAny(apply)
}

// Style binds a cell holding a whole style map (prop -> value). Each
// update diffs against the previously bound map: properties absent from
// the new map are removed, the rest set. Properties set by unrelated code
// are untouched.
func Style(el *dom.Element, src loom.Source) func() {
	var bound map[string]string
	apply := func(v any) {
		next, _ := v.(map[string]string)
		for prop := range bound {
			if _, ok := next[prop]; !ok {
				el.RemoveStyle(prop)
			}
		}
		for prop, val := range next {
			el.SetStyle(prop, val)
		}
		bound = make(map[string]string, len(next))
		for prop, val := range next {
			bound[prop] = val
		}
	}
	apply(src.AnyValue())
	return src.SubscribeAny(apply)
}

// StyleProps applies a mixed style object: plain string values are set
// once, cell values each get their own independent subscription updating
// just that property. The returned release drops every subscription.
func StyleProps(el *dom.Element, props map[string]any) func() {
	var releases []func()
	for prop, v := range props {
		switch x := v.(type) {
		case loom.Source:
			prop := prop
			apply := func(val any) {
				el.SetStyle(prop, stringify(val))
			}
			apply(x.AnyValue())
			releases = append(releases, x.SubscribeAny(apply))
		default:
			el.SetStyle(prop, stringify(v))
		}
	}
	return func() {
		for _, rel := range releases {
			rel()
		}
	}
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprintf("%v", x)
	}
}
