package scene

import (
	"strings"

	"golang.org/x/net/html"
)

// compound is one whitespace-separated step of a selector: tag, #id and .classes.
type compound struct {
	tag     string
	id      string
	classes []string
}

func (c compound) matches(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if c.tag != "" && c.tag != "*" && c.tag != n.Data {
		return false
	}
	if c.id != "" {
		if v, _ := Attr(n, "id"); v != c.id {
			return false
		}
	}
	for _, class := range c.classes {
		if !HasClass(n, class) {
			return false
		}
	}
	return true
}

// parseSelector supports tag, .class, #id, their compounds (rect.bar) and
// the descendant combinator. Anything else matches nothing.
func parseSelector(sel string) []compound {
	var out []compound
	for _, part := range strings.Fields(sel) {
		var c compound
		rest := part
		// leading tag
		if i := strings.IndexAny(rest, ".#"); i != 0 {
			if i < 0 {
				c.tag, rest = rest, ""
			} else {
				c.tag, rest = rest[:i], rest[i:]
			}
		}
		for rest != "" {
			kind := rest[0]
			rest = rest[1:]
			end := strings.IndexAny(rest, ".#")
			if end < 0 {
				end = len(rest)
			}
			name := rest[:end]
			rest = rest[end:]
			if name == "" {
				return nil
			}
			if kind == '.' {
				c.classes = append(c.classes, name)
			} else {
				c.id = name
			}
		}
		out = append(out, c)
	}
	return out
}

// SelectAll returns the descendants of root matching selector, in document order.
// Ancestor steps may match nodes above root, as with querySelectorAll.
func (d *Document) SelectAll(root *html.Node, selector string) []*html.Node {
	steps := parseSelector(selector)
	if len(steps) == 0 || root == nil {
		return nil
	}
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if matchPath(c, steps) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(root)
	return out
}

// Select returns the first match, or nil.
func (d *Document) Select(root *html.Node, selector string) *html.Node {
	if all := d.SelectAll(root, selector); len(all) > 0 {
		return all[0]
	}
	return nil
}

func matchPath(n *html.Node, steps []compound) bool {
	last := len(steps) - 1
	if !steps[last].matches(n) {
		return false
	}
	i := last - 1
	for p := n.Parent; p != nil && i >= 0; p = p.Parent {
		if steps[i].matches(p) {
			i--
		}
	}
	return i < 0
}
