// Package configsync implements the config-sync driver: on a newly
// attached client, it walks the datastore once, filters each node through
// the subscription map, and produces an ordered, de-duplicated
// change set for the adapter to drain to the client as CFG_DATA_REQ batches
// followed by a terminating CFG_APPLY_REQ.
package configsync

import (
	"fmt"

	"github.com/mgmtd/beadapter/internal/clientid"
	"github.com/mgmtd/beadapter/internal/datastore"
	"github.com/mgmtd/beadapter/internal/subscr"
)

// ChangeKind names the kind of config-change record. Only "created" is
// produced by the initial sync walk today; the type exists so a future
// incremental-diff source (out of scope here) has somewhere to put
// "modified"/"deleted" without changing the shape callers consume.
type ChangeKind int

const (
	ChangeCreated ChangeKind = iota
	ChangeModified
	ChangeDeleted
)

// Change is one config-change record keyed by path.
type Change struct {
	Kind  ChangeKind
	Path  string
	Seq   uint64
	Value []byte
}

// ChangeSet is an ordered, de-duplicated-by-path collection of Changes.
// Re-adding a path already present replaces that entry in place, keeping
// its original position — the underlying container is keyed by path.
type ChangeSet struct {
	items  []Change
	byPath map[string]int
}

// NewChangeSet constructs an empty ChangeSet.
func NewChangeSet() *ChangeSet {
	return &ChangeSet{byPath: make(map[string]int)}
}

// Add inserts or replaces the entry for c.Path, preserving first-seen order.
func (cs *ChangeSet) Add(c Change) {
	if idx, ok := cs.byPath[c.Path]; ok {
		cs.items[idx] = c
		return
	}
	cs.byPath[c.Path] = len(cs.items)
	cs.items = append(cs.items, c)
}

// Items returns the change set in insertion (seq) order.
func (cs *ChangeSet) Items() []Change {
	out := make([]Change, len(cs.items))
	copy(out, cs.items)
	return out
}

// Len reports how many distinct paths are in the change set.
func (cs *ChangeSet) Len() int {
	return len(cs.items)
}

// Empty reports whether the change set has no entries.
func (cs *ChangeSet) Empty() bool {
	return len(cs.items) == 0
}

// AdapterView is the subset of a client-adapter's state the sync driver
// needs: its resolved client identity, and a place to cache the change set
// so a repeat call is at-most-once per adapter (internal/beadapter.Adapter
// satisfies this).
type AdapterView interface {
	ID() clientid.ID
	CachedChanges() *ChangeSet
	SetCachedChanges(*ChangeSet)
}

// GetAdapterConfig is the driver's entry point. If adapter already has a
// cached change set (non-empty, from a prior call) it is returned as-is —
// the sync happens at most once per adapter. Otherwise it walks ds from
// "/", resolves each node's subscribers via subs, and emits a "created"
// change for every node adapter is subscribed to, with a strictly
// increasing, path-unique seq number.
func GetAdapterConfig(adapter AdapterView, ds datastore.Datastore, subs *subscr.Map) (*ChangeSet, error) {
	if cached := adapter.CachedChanges(); cached != nil && !cached.Empty() {
		return cached, nil
	}

	nodes, err := ds.Walk("/")
	if err != nil {
		return nil, fmt.Errorf("configsync: walk datastore: %w", err)
	}

	cs := NewChangeSet()
	var seq uint64
	for _, node := range nodes {
		caps := subs.Resolve(node.XPath)
		if _, subscribed := caps[adapter.ID()]; !subscribed {
			continue
		}
		seq++
		cs.Add(Change{
			Kind:  ChangeCreated,
			Path:  node.XPath,
			Seq:   seq,
			Value: node.Value,
		})
	}

	adapter.SetCachedChanges(cs)
	return cs, nil
}
