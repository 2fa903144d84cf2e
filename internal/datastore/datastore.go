// Package datastore defines the DS collaborator: the out-of-scope
// configuration datastore and its tree-diff iterator. The adapter core only
// needs to walk a subtree and read each node's path, schema node name and
// serialized value; everything else about how the datastore stores or diffs
// configuration is out of scope.
package datastore

// Node is one (xpath, node, schema-node) triple yielded by a subtree walk.
type Node struct {
	// XPath is the node's full instance path, in the same glob-compatible
	// shape internal/xpath resolves against.
	XPath string

	// SchemaNode names the YANG schema node this instance corresponds to.
	SchemaNode string

	// Value is the node's serialized value, opaque to the adapter core.
	Value []byte
}

// Datastore yields configuration nodes under a subtree root, in walk order.
// Walk is out-of-scope for how it's implemented (a real implementation
// would stream from an editable configuration tree); the core only
// consumes the sequence it returns.
type Datastore interface {
	// Walk returns every node at or beneath root, in a stable walk order.
	// root is typically "/" for a full config-sync pass.
	Walk(root string) ([]Node, error)
}
