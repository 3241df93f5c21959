// Package scene implements the chart scene graph on top of x/net/html nodes.
package scene

import (
	"bytes"
	"io"
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/bobmcallan/strata/internal/interfaces"
)

type listener struct {
	target *html.Node
	event  string
	fn     interfaces.EventHandler
}

// Document owns a node tree plus the datum bindings and listeners attached to it.
// It is not safe for concurrent use; callers serialise access.
type Document struct {
	body      *html.Node
	data      map[*html.Node]any
	listeners map[interfaces.ListenerID]listener
	nextID    interfaces.ListenerID
}

var _ interfaces.SceneGraph = (*Document)(nil)

// NewDocument creates an empty document with a body element.
func NewDocument() *Document {
	return &Document{
		body:      &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body},
		data:      make(map[*html.Node]any),
		listeners: make(map[interfaces.ListenerID]listener),
	}
}

// Body returns the document root element.
func (d *Document) Body() *html.Node {
	return d.body
}

// Mount creates a div with the given id under the body and returns it.
func (d *Document) Mount(id string) *html.Node {
	n := d.CreateElement("div")
	if id != "" {
		d.SetAttribute(n, "id", id)
	}
	d.AppendChild(d.body, n)
	return n
}

// CreateElement returns a detached element node.
func (d *Document) CreateElement(tag string) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
}

// AppendChild appends child to parent, moving it if it is already attached.
func (d *Document) AppendChild(parent, child *html.Node) {
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	parent.AppendChild(child)
}

// SetAttribute sets or replaces an attribute.
func (d *Document) SetAttribute(n *html.Node, name, value string) {
	for i := range n.Attr {
		if n.Attr[i].Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

// Attribute returns an attribute value.
func (d *Document) Attribute(n *html.Node, name string) (string, bool) {
	return Attr(n, name)
}

// BindDatum associates datum with n.
func (d *Document) BindDatum(n *html.Node, datum any) {
	d.data[n] = datum
}

// Datum returns the datum bound to n.
func (d *Document) Datum(n *html.Node) any {
	return d.data[n]
}

// SetText replaces the children of n with one text node.
func (d *Document) SetText(n *html.Node, text string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		d.forget(c)
		n.RemoveChild(c)
		c = next
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// Detach removes n from its parent and forgets data bound within its subtree.
func (d *Document) Detach(n *html.Node) {
	if n == nil {
		return
	}
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
	d.forget(n)
}

func (d *Document) forget(n *html.Node) {
	delete(d.data, n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.forget(c)
	}
}

// Listen registers fn for events of type event on n.
func (d *Document) Listen(n *html.Node, event string, fn interfaces.EventHandler) interfaces.ListenerID {
	d.nextID++
	d.listeners[d.nextID] = listener{target: n, event: event, fn: fn}
	return d.nextID
}

// Unlisten removes a listener.
func (d *Document) Unlisten(id interfaces.ListenerID) {
	delete(d.listeners, id)
}

// ListenerCount returns the number of registered listeners.
func (d *Document) ListenerCount() int {
	return len(d.listeners)
}

// Dispatch delivers evt to every listener registered on target for evt.Type,
// in registration order. It returns the number of handlers invoked.
func (d *Document) Dispatch(target *html.Node, evt interfaces.Event) int {
	evt.Target = target
	var ids []interfaces.ListenerID
	for id, l := range d.listeners {
		if l.target == target && l.event == evt.Type {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		// a handler may unlisten later ones
		if l, ok := d.listeners[id]; ok {
			l.fn(evt)
		}
	}
	return len(ids)
}

// Render writes n and its subtree as HTML.
func (d *Document) Render(w io.Writer, n *html.Node) error {
	return html.Render(w, n)
}

// InnerHTML returns the rendered children of n.
func (d *Document) InnerHTML(n *html.Node) (string, error) {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// Attr returns an attribute of n.
func Attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// Text returns the concatenated text content of n.
func Text(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		for k := c.FirstChild; k != nil; k = k.NextSibling {
			walk(k)
		}
	}
	walk(n)
	return sb.String()
}

// HasClass reports whether n's class attribute contains class.
func HasClass(n *html.Node, class string) bool {
	v, ok := Attr(n, "class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}
