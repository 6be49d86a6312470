// Package browsertest provides an in-memory browser runtime whose pages are
// plain Go values, for exercising code that drives the browser port.
package browsertest

import (
	"strings"

	"formcheck/internal/browser"
)

// Node is one element of a fake page.
type Node struct {
	Role     string
	Name     string
	Text     string
	CSS      string
	Value    string
	Attached bool
	Hidden   bool
	Disabled bool
	// RevealAfter keeps an attached node invisible for this many
	// visibility checks, simulating a transition.
	RevealAfter int

	OnClick func(p *Page, n *Node)
}

func (n *Node) matches(loc browser.Locator) bool {
	switch {
	case loc.Role != "":
		if !strings.EqualFold(n.Role, loc.Role) {
			return false
		}
		return loc.Name == "" || loc.Matches(n.Name, loc.Name)
	case loc.Text != "":
		return n.Text != "" && loc.Matches(n.Text, loc.Text)
	case loc.CSS != "":
		return n.CSS == loc.CSS
	}
	return false
}

// Page is a fake document. Update runs after every fill or click so the
// page can recompute derived state.
type Page struct {
	URL    string
	Title  string
	Nodes  []*Node
	Update func(p *Page)
}

// Add appends nodes and returns the first one for convenience.
func (p *Page) Add(nodes ...*Node) *Node {
	p.Nodes = append(p.Nodes, nodes...)
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

// Lookup returns the first attached node matching loc.
func (p *Page) Lookup(loc browser.Locator) *Node {
	for _, n := range p.Nodes {
		if n.Attached && n.matches(loc) {
			return n
		}
	}
	return nil
}

func (p *Page) changed() {
	if p.Update != nil {
		p.Update(p)
	}
}
