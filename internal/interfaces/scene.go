package interfaces

import "golang.org/x/net/html"

// ListenerID identifies a registered scene listener.
type ListenerID int

// Event is delivered to scene listeners.
type Event struct {
	Type   string
	Target *html.Node
	X      float64 // pointer x in plot coordinates, for pointer events
	On     bool    // requested state, for toggle events
}

// EventHandler receives dispatched scene events.
type EventHandler func(Event)

// SceneGraph is the retained presentation tree the chart core draws into.
// The core relies on the five primitives (create, append, set attribute,
// bind datum, select) plus detach, text and listener bookkeeping.
type SceneGraph interface {
	CreateElement(tag string) *html.Node
	AppendChild(parent, child *html.Node)
	SetAttribute(n *html.Node, name, value string)
	BindDatum(n *html.Node, datum any)
	SelectAll(root *html.Node, selector string) []*html.Node

	// Datum returns the value bound to n, or nil.
	Datum(n *html.Node) any

	// Attribute returns the value of an attribute and whether it is set.
	Attribute(n *html.Node, name string) (string, bool)

	// SetText replaces the children of n with a single text node.
	SetText(n *html.Node, text string)

	// Detach removes n (and its subtree) from its parent and drops bound data.
	Detach(n *html.Node)

	// Listen registers fn for events of the given type targeting n.
	Listen(n *html.Node, event string, fn EventHandler) ListenerID

	// Unlisten removes a listener. Unknown ids are ignored.
	Unlisten(id ListenerID)
}
