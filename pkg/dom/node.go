package dom

import (
	"html"
	"strings"
)

// NodeKind is the node type discriminator.
type NodeKind uint8

const (
	KindElement NodeKind = iota // <div>, <button>, etc.
	KindText                    // plain text
	KindMarker                  // non-rendering region boundary
)

// String returns the string representation of the NodeKind.
func (k NodeKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindMarker:
		return "Marker"
	default:
		return "Unknown"
	}
}

// Node is anything that can sit in the tree.
type Node interface {
	Kind() NodeKind
	ID() uint64
	Parent() *Element

	setParent(p *Element)
	appendHTML(b *strings.Builder)
}

// Text is a text node.
type Text struct {
	id     uint64
	doc    *Document
	parent *Element
	text   string
}

// Kind implements Node.
func (t *Text) Kind() NodeKind { return KindText }

// ID implements Node.
func (t *Text) ID() uint64 { return t.id }

// Parent implements Node.
func (t *Text) Parent() *Element { return t.parent }

func (t *Text) setParent(p *Element) { t.parent = p }

// Text returns the current content.
func (t *Text) Text() string { return t.text }

// SetText replaces the content. No-op when unchanged.
func (t *Text) SetText(s string) {
	if t.text == s {
		return
	}
	t.text = s
	if t.doc.connected(t) {
		t.doc.record(Patch{Op: PatchSetText, Node: t.id, Value: s})
	}
}

func (t *Text) appendHTML(b *strings.Builder) {
	b.WriteString(html.EscapeString(t.text))
}

// Marker is a placeholder bounding a reactive child region. It renders as
// an empty comment so it occupies a child position without producing
// visible output.
type Marker struct {
	id     uint64
	doc    *Document
	parent *Element
}

// Kind implements Node.
func (m *Marker) Kind() NodeKind { return KindMarker }

// ID implements Node.
func (m *Marker) ID() uint64 { return m.id }

// Parent implements Node.
func (m *Marker) Parent() *Element { return m.parent }

func (m *Marker) setParent(p *Element) { m.parent = p }

func (m *Marker) appendHTML(b *strings.Builder) {
	b.WriteString("<!---->")
}
