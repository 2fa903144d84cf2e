package datastore

import "strings"

// Fake is an in-memory Datastore for tests: a flat, ordered list of nodes
// that Walk filters to those at-or-beneath root.
type Fake struct {
	nodes []Node
}

// NewFake builds a Fake seeded with nodes, in the order given — Walk
// preserves that order, which config-sync tests rely on for seq ordering.
func NewFake(nodes ...Node) *Fake {
	return &Fake{nodes: nodes}
}

// Add appends a node to the fake tree.
func (f *Fake) Add(n Node) {
	f.nodes = append(f.nodes, n)
}

func (f *Fake) Walk(root string) ([]Node, error) {
	if root == "" || root == "/" {
		out := make([]Node, len(f.nodes))
		copy(out, f.nodes)
		return out, nil
	}
	var out []Node
	prefix := strings.TrimSuffix(root, "/")
	for _, n := range f.nodes {
		if n.XPath == root || strings.HasPrefix(n.XPath, prefix+"/") {
			out = append(out, n)
		}
	}
	return out, nil
}
