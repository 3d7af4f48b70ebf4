package dom

// Document owns node identity and the optional mutation recorder. All
// nodes of a tree are created through the same Document so their IDs are
// unique within it.
type Document struct {
	nextID uint64
	rec    Recorder
	root   *Element
}

// NewDocument creates a document with a root <div> element.
func NewDocument() *Document {
	d := &Document{}
	d.root = d.Element("div")
	return d
}

// Root returns the root element.
func (d *Document) Root() *Element {
	return d.root
}

// SetRecorder attaches a mutation recorder. Mutations made while no
// recorder is attached are not replayed later; the caller snapshots the
// tree with HTML() first.
func (d *Document) SetRecorder(rec Recorder) {
	d.rec = rec
}

// Element creates a detached element.
func (d *Document) Element(tag string) *Element {
	return &Element{id: d.allocID(), doc: d, tag: tag}
}

// Text creates a detached text node.
func (d *Document) Text(s string) *Text {
	return &Text{id: d.allocID(), doc: d, text: s}
}

// Marker creates a detached marker node.
func (d *Document) Marker() *Marker {
	return &Marker{id: d.allocID(), doc: d}
}

func (d *Document) allocID() uint64 {
	d.nextID++
	return d.nextID
}

func (d *Document) record(p Patch) {
	if d.rec != nil {
		d.rec.Record(p)
	}
}

// connected reports whether n is reachable from the document root.
// Mutations inside detached subtrees are not recorded: the serialized
// InsertNode patch carries them when the subtree attaches.
func (d *Document) connected(n Node) bool {
	if n == nil {
		return false
	}
	if e, ok := n.(*Element); ok && e == d.root {
		return true
	}
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p == d.root {
			return true
		}
	}
	return false
}
