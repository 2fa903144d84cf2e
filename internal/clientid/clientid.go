// Package clientid defines the closed set of known backend clients.
package clientid

import "fmt"

// ID identifies a known backend client. The zero value is STATICD; use MAX
// to denote "unknown / unassigned".
type ID int

const (
	// STATICD is the static-route management daemon.
	STATICD ID = iota

	// MAX is the sentinel past the last known client and also denotes
	// "unknown / unassigned" for an adapter that hasn't identified itself yet.
	MAX
)

var names = map[ID]string{
	STATICD: "staticd",
}

var byName = func() map[string]ID {
	m := make(map[string]ID, len(names))
	for id, name := range names {
		m[name] = id
	}
	return m
}()

// String returns the human-readable name for id, or "unknown" for MAX
// and any value outside the known range.
func (id ID) String() string {
	if name, ok := names[id]; ok {
		return name
	}
	return "unknown"
}

// Lookup resolves a client name to its ID. The second return value is
// false if name does not match any known client.
func Lookup(name string) (ID, bool) {
	id, ok := byName[name]
	return id, ok
}

// Valid reports whether id names a known client (i.e. id < MAX).
func (id ID) Valid() bool {
	return id >= 0 && id < MAX
}

// All returns every known client ID in a stable order.
func All() []ID {
	ids := make([]ID, 0, len(names))
	for id := range names {
		ids = append(ids, id)
	}
	// Stable, deterministic order for status dumps and tests.
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j] < ids[j-1]; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
	return ids
}

// GoString supports %#v and makes test failures legible.
func (id ID) GoString() string {
	return fmt.Sprintf("clientid.ID(%d /* %s */)", int(id), id.String())
}
