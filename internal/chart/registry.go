package chart

import (
	"golang.org/x/net/html"

	"github.com/bobmcallan/strata/internal/interfaces"
)

// registry retains the element drawn for each mark key under one parent and
// reconciles it against a freshly computed mark list.
type registry struct {
	scene  interfaces.SceneGraph
	parent *html.Node
	nodes  map[MarkKey]*html.Node
}

func newRegistry(scene interfaces.SceneGraph, parent *html.Node) *registry {
	return &registry{scene: scene, parent: parent, nodes: make(map[MarkKey]*html.Node)}
}

// reconcileStats counts what a reconcile pass did.
type reconcileStats struct {
	Created int
	Updated int
	Removed int
}

// reconcile creates, updates and removes elements so the parent holds
// exactly one element per mark, in mark order. Elements are matched by key,
// never by position.
func (r *registry) reconcile(marks []Mark) reconcileStats {
	var stats reconcileStats
	wanted := make(map[MarkKey]bool, len(marks))

	for _, m := range marks {
		wanted[m.Key] = true
		n, ok := r.nodes[m.Key]
		if ok && n.Data != m.Tag() {
			r.scene.Detach(n)
			ok = false
			stats.Removed++
		}
		if ok {
			stats.Updated++
		} else {
			n = r.scene.CreateElement(m.Tag())
			r.nodes[m.Key] = n
			stats.Created++
		}
		r.scene.SetAttribute(n, "class", m.Class())
		for _, a := range m.Attrs() {
			r.scene.SetAttribute(n, a.Name, a.Value)
		}
		r.scene.BindDatum(n, m.Point)
		// appending an attached node moves it, which also restores mark order
		r.scene.AppendChild(r.parent, n)
	}

	for key, n := range r.nodes {
		if !wanted[key] {
			r.scene.Detach(n)
			delete(r.nodes, key)
			stats.Removed++
		}
	}
	return stats
}

// node returns the element drawn for key.
func (r *registry) node(key MarkKey) (*html.Node, bool) {
	n, ok := r.nodes[key]
	return n, ok
}

// clear detaches every element.
func (r *registry) clear() {
	for key, n := range r.nodes {
		r.scene.Detach(n)
		delete(r.nodes, key)
	}
}
