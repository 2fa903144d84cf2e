// Package registry implements the adapter registry: the process-wide
// collection of live client-adapters, indexed by client-id and searchable
// by name or file descriptor.
//
// The core is single-threaded and cooperative, so unlike a typical
// concurrent registry this carries no mutex — there is never a concurrent
// caller to guard against, and the adapter's own reference counting (not
// locking) governs lifetime.
package registry

import (
	"github.com/mgmtd/beadapter/internal/clientid"
	"github.com/mgmtd/beadapter/internal/framer"
)

// Adapter is the subset of a client-adapter's state the registry needs to
// index and enumerate it. internal/beadapter.Adapter satisfies this.
type Adapter interface {
	FD() int
	Name() string
	ID() clientid.ID
	RefCount() int
	Counters() framer.Counters
}

// Registry holds every live adapter, appended on insertion and unlinked on
// removal. by-id is a direct array indexed by clientid.ID; it never holds a
// stale entry once an adapter is removed.
type Registry struct {
	adapters []Adapter
	byID     [clientid.MAX]Adapter
}

// New constructs an empty Registry.
func New() *Registry {
	return &Registry{}
}

// Insert appends a newly-created adapter to the registry. It does not
// index it by id — that happens separately via IndexByID once the
// adapter's identity is resolved via SUBSCR_REQ.
func (r *Registry) Insert(a Adapter) {
	r.adapters = append(r.adapters, a)
}

// Remove unlinks a from the live collection and, if it was indexed by id,
// from the by-id table too. Removing an adapter not present is a no-op —
// this makes disconnect's unlink step idempotent.
func (r *Registry) Remove(a Adapter) {
	for i, cur := range r.adapters {
		if cur == a {
			r.adapters = append(r.adapters[:i], r.adapters[i+1:]...)
			break
		}
	}
	if id := a.ID(); id.Valid() && r.byID[id] == a {
		r.byID[id] = nil
	}
}

// IndexByID records a as the adapter for id, displacing whatever adapter
// (if any) previously held that slot. The caller is responsible for
// disconnecting the displaced adapter (internal/beadapter's SUBSCR_REQ
// handler does this) — the registry itself only tracks the mapping.
func (r *Registry) IndexByID(id clientid.ID, a Adapter) (displaced Adapter) {
	if !id.Valid() {
		return nil
	}
	displaced = r.byID[id]
	r.byID[id] = a
	return displaced
}

// ByID returns the adapter currently indexed under id, or nil.
func (r *Registry) ByID(id clientid.ID) Adapter {
	if !id.Valid() {
		return nil
	}
	return r.byID[id]
}

// ByFD linearly scans for the adapter with the given fd, or nil.
func (r *Registry) ByFD(fd int) Adapter {
	for _, a := range r.adapters {
		if a.FD() == fd {
			return a
		}
	}
	return nil
}

// ByName linearly scans for the adapter with the given name, or nil. Per
// the "at most one adapter per name" invariant, this is unambiguous for
// any name an adapter has actually claimed via SUBSCR_REQ.
func (r *Registry) ByName(name string) Adapter {
	for _, a := range r.adapters {
		if a.Name() == name {
			return a
		}
	}
	return nil
}

// OthersWithName returns every adapter other than except whose name
// equals name — used to sweep and disconnect stale connections when a
// client reconnects before its old socket's half-close is detected.
func (r *Registry) OthersWithName(name string, except Adapter) []Adapter {
	var out []Adapter
	for _, a := range r.adapters {
		if a != except && a.Name() == name {
			out = append(out, a)
		}
	}
	return out
}

// All returns a snapshot of every live adapter, for the status operator
// dump.
func (r *Registry) All() []Adapter {
	out := make([]Adapter, len(r.adapters))
	copy(out, r.adapters)
	return out
}

// Len reports how many adapters are currently registered.
func (r *Registry) Len() int {
	return len(r.adapters)
}
