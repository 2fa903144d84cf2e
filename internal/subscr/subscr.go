// Package subscr implements the static subscription map: a fixed
// registry of glob patterns, each naming the backend clients subscribed to
// the configuration subtree it describes, resolved against instance paths
// via the longest-match rules in internal/xpath.
package subscr

import (
	"fmt"

	"github.com/mgmtd/beadapter/internal/clientid"
	"github.com/mgmtd/beadapter/internal/xpath"
)

// Capabilities is the per-(pattern, client) record of what a subscriber is
// notified about. Absence of a record means the client is not subscribed.
type Capabilities struct {
	ValidateConfig bool
	NotifyConfig   bool
	OwnOperData    bool
}

// Merge OR-merges other into c, used when the same client is reached by
// more than one equally-maximal pattern.
func (c Capabilities) Merge(other Capabilities) Capabilities {
	return Capabilities{
		ValidateConfig: c.ValidateConfig || other.ValidateConfig,
		NotifyConfig:   c.NotifyConfig || other.NotifyConfig,
		OwnOperData:    c.OwnOperData || other.OwnOperData,
	}
}

// AllBits is the capability triple the static registry grants: all three
// bits set. The data model keeps the bits independent because the design
// anticipates a future registry source that sets them individually; today's
// static registry does not, so every entry gets the full triple.
var AllBits = Capabilities{ValidateConfig: true, NotifyConfig: true, OwnOperData: true}

// Entry is one registered pattern and its subscriber set.
type Entry struct {
	Pattern     string
	Subscribers map[clientid.ID]Capabilities
}

// Map is the process-wide subscription map: a fixed set of entries,
// immutable after construction.
type Map struct {
	entries []Entry
	maxLen  int
}

// New builds a Map from entries, rejecting more than maxPatterns entries.
// maxPatterns <= 0 means unbounded.
func New(entries []Entry, maxPatterns int) (*Map, error) {
	if maxPatterns > 0 && len(entries) > maxPatterns {
		return nil, fmt.Errorf("subscr: %d patterns exceeds configured maximum %d", len(entries), maxPatterns)
	}
	m := &Map{entries: make([]Entry, len(entries))}
	copy(m.entries, entries)
	m.maxLen = maxPatterns
	return m, nil
}

// Resolve computes, for xpath, the union of subscribers of every pattern
// achieving the maximum positive match length (or of every pattern, for a
// root-scope path). Per-capability fields are OR-merged across patterns
// when a client is reached by more than one.
func (m *Map) Resolve(xp string) map[clientid.ID]Capabilities {
	result := make(map[clientid.ID]Capabilities)

	if xpath.RootScope(xp) {
		for _, e := range m.entries {
			mergeInto(result, e.Subscribers)
		}
		return result
	}

	best := 0
	var winners []Entry
	for _, e := range m.entries {
		ml := xpath.MatchLength(e.Pattern, xp)
		if ml == 0 {
			continue
		}
		switch {
		case ml > best:
			best = ml
			winners = winners[:0]
			winners = append(winners, e)
		case ml == best:
			winners = append(winners, e)
		}
	}
	for _, e := range winners {
		mergeInto(result, e.Subscribers)
	}
	return result
}

func mergeInto(dst map[clientid.ID]Capabilities, src map[clientid.ID]Capabilities) {
	for id, caps := range src {
		if existing, ok := dst[id]; ok {
			dst[id] = existing.Merge(caps)
		} else {
			dst[id] = caps
		}
	}
}

// Entries returns a copy of the registered pattern list, for the operator
// surface's xpath-register dump.
func (m *Map) Entries() []Entry {
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Len reports how many patterns are registered.
func (m *Map) Len() int {
	return len(m.entries)
}

// SeedEntries is the hard-coded, compiled-in default registry: the three
// patterns the static-route daemon subscribes to. This is the
// "re-initialized only at startup, no dynamic rediscovery" seed content;
// pkg/config's static-registry loader falls back to this when no override
// file is supplied.
func SeedEntries() []Entry {
	return []Entry{
		{
			Pattern: "/frr-vrf:lib/*",
			Subscribers: map[clientid.ID]Capabilities{
				clientid.STATICD: AllBits,
			},
		},
		{
			Pattern: "/frr-interface:lib/*",
			Subscribers: map[clientid.ID]Capabilities{
				clientid.STATICD: AllBits,
			},
		},
		{
			Pattern: "/frr-routing:routing/control-plane-protocols/control-plane-protocol[type='frr-staticd:staticd'][name='staticd'][vrf='default']/frr-staticd:staticd/*",
			Subscribers: map[clientid.ID]Capabilities{
				clientid.STATICD: AllBits,
			},
		},
	}
}

// NewSeedMap builds the compiled-in default Map from SeedEntries.
func NewSeedMap() *Map {
	m, err := New(SeedEntries(), 0)
	if err != nil {
		// SeedEntries is fixed and small; this can't happen with maxPatterns
		// unbounded, but panic rather than silently drop the seed registry.
		panic(err)
	}
	return m
}
