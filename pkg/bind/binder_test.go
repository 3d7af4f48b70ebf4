package bind

import (
	"fmt"
	"strings"
	"testing"

	"github.com/loomui-dev/loom/pkg/dom"
	"github.com/loomui-dev/loom/pkg/loom"
)

func TestTextBinding(t *testing.T) {
	s := loom.NewScheduler(nil)
	d := dom.NewDocument()
	txt := d.Text("")
	d.Root().AppendChild(txt)

	c := loom.NewOn(s, "hello")
	release := Text(txt, c, nil)

	// Immediate synchronous application.
	if txt.Text() != "hello" {
		t.Errorf("initial text = %q, want hello", txt.Text())
	}

	s.Turn(func() { c.Set("world") })
	if txt.Text() != "world" {
		t.Errorf("text = %q, want world", txt.Text())
	}

	release()
	release() // idempotent
	s.Turn(func() { c.Set("gone") })
	if txt.Text() != "world" {
		t.Errorf("released binding still applied; text = %q", txt.Text())
	}
}

func TestTextBindingFormatter(t *testing.T) {
	s := loom.NewScheduler(nil)
	d := dom.NewDocument()
	txt := d.Text("")
	d.Root().AppendChild(txt)

	c := loom.NewOn(s, 42)
	Text(txt, c, func(v any) string { return fmt.Sprintf("n=%d", v) })

	if txt.Text() != "n=42" {
		t.Errorf("formatted text = %q, want n=42", txt.Text())
	}
}

func TestAttrBinding(t *testing.T) {
	s := loom.NewScheduler(nil)
	d := dom.NewDocument()
	el := d.Element("input")
	d.Root().AppendChild(el)

	c := loom.NewOn(s, any("text"))
	Attr(el, "type", c)
	if v, _ := el.Attribute("type"); v != "text" {
		t.Errorf("type = %q, want text", v)
	}

	// Boolean presence semantics.
	disabled := loom.NewOn(s, any(true))
	Attr(el, "disabled", disabled)
	if v, ok := el.Attribute("disabled"); !ok || v != "" {
		t.Errorf("disabled = %q, %v; want bare attribute", v, ok)
	}

	s.Turn(func() { disabled.Set(any(false)) })
	if _, ok := el.Attribute("disabled"); ok {
		t.Error("false should remove the attribute")
	}
}

func TestClassBindingTokenDiff(t *testing.T) {
	s := loom.NewScheduler(nil)
	d := dom.NewDocument()
	el := d.Element("div")
	d.Root().AppendChild(el)

	// Class added by unrelated code before the binding.
	el.AddClass("x")

	c := loom.NewOn(s, "a b")
	Class(el, c)

	if got := strings.Join(el.ClassList(), " "); got != "x a b" {
		t.Fatalf("classes = %q, want \"x a b\"", got)
	}

	s.Turn(func() { c.Set("b c") })

	// Exactly: external token preserved first, then retained b, new c.
	if got := strings.Join(el.ClassList(), " "); got != "x b c" {
		t.Errorf("classes = %q, want \"x b c\"", got)
	}
}

func TestClassBindingDoesNotRemoveExternalTokens(t *testing.T) {
	s := loom.NewScheduler(nil)
	d := dom.NewDocument()
	el := d.Element("div")
	d.Root().AppendChild(el)

	c := loom.NewOn(s, "a")
	Class(el, c)

	// Unrelated code adds a token the binding has never seen.
	el.AddClass("ext")

	s.Turn(func() { c.Set("") })
	if !el.HasClass("ext") {
		t.Error("binding removed a token it did not add")
	}
	if el.HasClass("a") {
		t.Error("binding failed to remove its own stale token")
	}
}

func TestStyleBindingWholeMap(t *testing.T) {
	s := loom.NewScheduler(nil)
	d := dom.NewDocument()
	el := d.Element("div")
	d.Root().AppendChild(el)

	// A property set by unrelated code.
	el.SetStyle("margin", "1px")

	c := loom.NewOn(s, map[string]string{"color": "red", "width": "10px"})
	Style(el, c)

	if v, _ := el.Style("color"); v != "red" {
		t.Errorf("color = %q, want red", v)
	}

	s.Turn(func() { c.Set(map[string]string{"color": "blue"}) })
	if v, _ := el.Style("color"); v != "blue" {
		t.Errorf("color = %q, want blue", v)
	}
	if _, ok := el.Style("width"); ok {
		t.Error("stale bound property should be removed")
	}
	if v, _ := el.Style("margin"); v != "1px" {
		t.Error("unrelated property clobbered by style binding")
	}
}

func TestStylePropsMixed(t *testing.T) {
	s := loom.NewScheduler(nil)
	d := dom.NewDocument()
	el := d.Element("div")
	d.Root().AppendChild(el)

	width := loom.NewOn(s, any("10px"))
	release := StyleProps(el, map[string]any{
		"color": "red",
		"width": width,
	})

	if v, _ := el.Style("color"); v != "red" {
		t.Errorf("static color = %q, want red", v)
	}
	if v, _ := el.Style("width"); v != "10px" {
		t.Errorf("reactive width = %q, want 10px", v)
	}

	s.Turn(func() { width.Set(any("20px")) })
	if v, _ := el.Style("width"); v != "20px" {
		t.Errorf("width = %q, want 20px", v)
	}
	if v, _ := el.Style("color"); v != "red" {
		t.Error("static property disturbed by reactive update")
	}

	release()
	release()
	s.Turn(func() { width.Set(any("30px")) })
	if v, _ := el.Style("width"); v != "20px" {
		t.Errorf("released binding still applied; width = %q", v)
	}
}
