package dom

import (
	"html"
	"strings"
)

// Attr is one ordered attribute entry.
type Attr struct {
	Key   string
	Value string
}

// styleEntry is one ordered style property.
type styleEntry struct {
	prop  string
	value string
}

// Element is a live element node. The class token set and the style map
// are held separately from plain attributes so they can be diffed
// token-by-token and property-by-property; the rendered "class" and
// "style" attributes are derived from them.
type Element struct {
	id     uint64
	doc    *Document
	tag    string
	parent *Element

	attrs    []Attr
	classes  []string
	styles   []styleEntry
	children []Node
}

// Kind implements Node.
func (e *Element) Kind() NodeKind { return KindElement }

// ID implements Node.
func (e *Element) ID() uint64 { return e.id }

// Parent implements Node.
func (e *Element) Parent() *Element { return e.parent }

func (e *Element) setParent(p *Element) { e.parent = p }

// Tag returns the element's tag name.
func (e *Element) Tag() string { return e.tag }

// Children returns the child list. The slice is the element's own;
// callers must not mutate it.
func (e *Element) Children() []Node { return e.children }

// AppendChild inserts n as the last child, detaching it from any previous
// parent first.
func (e *Element) AppendChild(n Node) {
	e.InsertBefore(n, nil)
}

// InsertBefore inserts n immediately before ref, or as the last child when
// ref is nil. A node already in the tree is moved, preserving its
// identity. If ref is not a child of e the node is appended.
func (e *Element) InsertBefore(n Node, ref Node) {
	wasConnected := e.doc.connected(n)
	if n.Parent() != nil {
		n.Parent().detach(n)
	}

	idx := len(e.children)
	if ref != nil {
		if i := e.indexOf(ref); i >= 0 {
			idx = i
		}
	}
	e.children = append(e.children, nil)
	copy(e.children[idx+1:], e.children[idx:])
	e.children[idx] = n
	n.setParent(e)

	var before uint64
	if ref != nil && ref.Parent() == e {
		before = ref.ID()
	}
	switch {
	case e.doc.connected(e) && wasConnected:
		e.doc.record(Patch{Op: PatchMoveNode, Node: n.ID(), Parent: e.id, Before: before})
	case e.doc.connected(e):
		e.doc.record(Patch{Op: PatchInsertNode, Node: n.ID(), Parent: e.id, Before: before, Value: OuterHTML(n)})
	case wasConnected:
		// Re-parented out of the live tree: gone from the client's view.
		e.doc.record(Patch{Op: PatchRemoveNode, Node: n.ID()})
	}
}

// RemoveChild detaches n. Removing a node that is not a child is a no-op.
func (e *Element) RemoveChild(n Node) {
	if n.Parent() != e {
		return
	}
	connected := e.doc.connected(e)
	e.detach(n)
	if connected {
		e.doc.record(Patch{Op: PatchRemoveNode, Node: n.ID()})
	}
}

// recordSelf records a mutation of this element only when it is part of
// the live tree.
func (e *Element) recordSelf(p Patch) {
	if e.doc.connected(e) {
		e.doc.record(p)
	}
}

// detach unlinks n without recording; used internally for moves.
func (e *Element) detach(n Node) {
	if i := e.indexOf(n); i >= 0 {
		e.children = append(e.children[:i], e.children[i+1:]...)
		n.setParent(nil)
	}
}

// NextSibling returns the child immediately after n, or nil when n is the
// last child or not a child at all.
func (e *Element) NextSibling(n Node) Node {
	i := e.indexOf(n)
	if i < 0 || i+1 >= len(e.children) {
		return nil
	}
	return e.children[i+1]
}

func (e *Element) indexOf(n Node) int {
	for i, c := range e.children {
		if c == n {
			return i
		}
	}
	return -1
}

// Attribute returns the attribute value and whether it is present.
// "class" and "style" report their derived forms.
func (e *Element) Attribute(key string) (string, bool) {
	switch key {
	case "class":
		if len(e.classes) == 0 {
			return "", false
		}
		return strings.Join(e.classes, " "), true
	case "style":
		if len(e.styles) == 0 {
			return "", false
		}
		return e.styleString(), true
	}
	for _, a := range e.attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttribute sets an attribute. Setting "class" replaces the whole token
// set; setting "style" parses and replaces the style map. No-op when the
// value is unchanged.
func (e *Element) SetAttribute(key, value string) {
	switch key {
	case "class":
		e.setClassList(strings.Fields(value))
		return
	case "style":
		e.setStyleString(value)
		return
	}
	for i, a := range e.attrs {
		if a.Key == key {
			if a.Value == value {
				return
			}
			e.attrs[i].Value = value
			e.recordSelf(Patch{Op: PatchSetAttr, Node: e.id, Key: key, Value: value})
			return
		}
	}
	e.attrs = append(e.attrs, Attr{Key: key, Value: value})
	e.recordSelf(Patch{Op: PatchSetAttr, Node: e.id, Key: key, Value: value})
}

// RemoveAttribute removes an attribute. No-op when absent.
func (e *Element) RemoveAttribute(key string) {
	for i, a := range e.attrs {
		if a.Key == key {
			e.attrs = append(e.attrs[:i], e.attrs[i+1:]...)
			e.recordSelf(Patch{Op: PatchRemoveAttr, Node: e.id, Key: key})
			return
		}
	}
}

// HasClass reports whether the token is present.
func (e *Element) HasClass(token string) bool {
	for _, c := range e.classes {
		if c == token {
			return true
		}
	}
	return false
}

// AddClass adds a token, preserving insertion order. No-op when present.
func (e *Element) AddClass(token string) {
	if token == "" || e.HasClass(token) {
		return
	}
	e.classes = append(e.classes, token)
	e.recordSelf(Patch{Op: PatchAddClass, Node: e.id, Key: token})
}

// RemoveClass removes a token. No-op when absent.
func (e *Element) RemoveClass(token string) {
	for i, c := range e.classes {
		if c == token {
			e.classes = append(e.classes[:i], e.classes[i+1:]...)
			e.recordSelf(Patch{Op: PatchRemoveClass, Node: e.id, Key: token})
			return
		}
	}
}

// ClassList returns the tokens in insertion order.
func (e *Element) ClassList() []string {
	out := make([]string, len(e.classes))
	copy(out, e.classes)
	return out
}

func (e *Element) setClassList(tokens []string) {
	// Token diff rather than replacement, so the patch stream stays
	// minimal and observers see only real changes.
	next := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		next[tok] = true
	}
	for _, c := range e.ClassList() {
		if !next[c] {
			e.RemoveClass(c)
		}
	}
	for _, tok := range tokens {
		e.AddClass(tok)
	}
}

// Style returns one style property's value and whether it is set.
func (e *Element) Style(prop string) (string, bool) {
	for _, s := range e.styles {
		if s.prop == prop {
			return s.value, true
		}
	}
	return "", false
}

// SetStyle sets one style property. No-op when unchanged.
func (e *Element) SetStyle(prop, value string) {
	for i, s := range e.styles {
		if s.prop == prop {
			if s.value == value {
				return
			}
			e.styles[i].value = value
			e.recordSelf(Patch{Op: PatchSetStyle, Node: e.id, Key: prop, Value: value})
			return
		}
	}
	e.styles = append(e.styles, styleEntry{prop: prop, value: value})
	e.recordSelf(Patch{Op: PatchSetStyle, Node: e.id, Key: prop, Value: value})
}

// RemoveStyle removes one style property. No-op when absent.
func (e *Element) RemoveStyle(prop string) {
	for i, s := range e.styles {
		if s.prop == prop {
			e.styles = append(e.styles[:i], e.styles[i+1:]...)
			e.recordSelf(Patch{Op: PatchRemoveStyle, Node: e.id, Key: prop})
			return
		}
	}
}

// StyleProps returns the style map as prop -> value.
func (e *Element) StyleProps() map[string]string {
	out := make(map[string]string, len(e.styles))
	for _, s := range e.styles {
		out[s.prop] = s.value
	}
	return out
}

func (e *Element) setStyleString(value string) {
	props := make([]styleEntry, 0)
	seen := make(map[string]bool)
	for _, decl := range strings.Split(value, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		v = strings.TrimSpace(v)
		if k == "" {
			continue
		}
		props = append(props, styleEntry{prop: k, value: v})
		seen[k] = true
	}
	for _, s := range append([]styleEntry(nil), e.styles...) {
		if !seen[s.prop] {
			e.RemoveStyle(s.prop)
		}
	}
	for _, p := range props {
		e.SetStyle(p.prop, p.value)
	}
}

func (e *Element) styleString() string {
	var b strings.Builder
	for i, s := range e.styles {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(s.prop)
		b.WriteString(": ")
		b.WriteString(s.value)
	}
	return b.String()
}

// voidElements render without a closing tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

func (e *Element) appendHTML(b *strings.Builder) {
	b.WriteByte('<')
	b.WriteString(e.tag)
	for _, a := range e.attrs {
		b.WriteByte(' ')
		b.WriteString(a.Key)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(a.Value))
		b.WriteByte('"')
	}
	if len(e.classes) > 0 {
		b.WriteString(` class="`)
		b.WriteString(html.EscapeString(strings.Join(e.classes, " ")))
		b.WriteByte('"')
	}
	if len(e.styles) > 0 {
		b.WriteString(` style="`)
		b.WriteString(html.EscapeString(e.styleString()))
		b.WriteByte('"')
	}
	b.WriteByte('>')
	if voidElements[e.tag] {
		return
	}
	for _, c := range e.children {
		c.appendHTML(b)
	}
	b.WriteString("</")
	b.WriteString(e.tag)
	b.WriteByte('>')
}

// OuterHTML serializes a node subtree.
func OuterHTML(n Node) string {
	var b strings.Builder
	n.appendHTML(&b)
	return b.String()
}

// HTML serializes the whole document from its root.
func (d *Document) HTML() string {
	return OuterHTML(d.root)
}
