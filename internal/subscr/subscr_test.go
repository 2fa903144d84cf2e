package subscr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgmtd/beadapter/internal/clientid"
)

func TestResolveLongestMatch(t *testing.T) {
	staticd := map[clientid.ID]Capabilities{clientid.STATICD: AllBits}
	other := clientid.ID(99) // not a real client, just a distinct marker for this test
	m, err := New([]Entry{
		{Pattern: "/a/*", Subscribers: map[clientid.ID]Capabilities{other: AllBits}},
		{Pattern: "/a/b/*", Subscribers: staticd},
	}, 0)
	require.NoError(t, err)

	got := m.Resolve("/a/b/c")
	assert.Equal(t, staticd, got, "longest match /a/b/* should win outright")

	got = m.Resolve("/a/x")
	assert.Equal(t, map[clientid.ID]Capabilities{other: AllBits}, got, "only /a/* should match /a/x")
}

func TestResolveRootScope(t *testing.T) {
	m := NewSeedMap()

	for _, path := range []string{"/", "/*"} {
		got := m.Resolve(path)
		require.Contains(t, got, clientid.STATICD)
		assert.Equal(t, AllBits, got[clientid.STATICD])
	}
}

func TestResolveKeyBracketWildcard(t *testing.T) {
	m := NewSeedMap()
	path := "/frr-routing:routing/control-plane-protocols/control-plane-protocol[type='frr-staticd:staticd'][name='staticd'][vrf='default']/frr-staticd:staticd/route-list[prefix='10.0.0.0/24']"

	got := m.Resolve(path)
	require.Contains(t, got, clientid.STATICD)
	assert.Equal(t, AllBits, got[clientid.STATICD])
}

func TestNewRejectsOversizedRegistry(t *testing.T) {
	_, err := New(SeedEntries(), 1)
	assert.Error(t, err)
}

func TestCapabilitiesMerge(t *testing.T) {
	a := Capabilities{ValidateConfig: true}
	b := Capabilities{NotifyConfig: true}
	assert.Equal(t, Capabilities{ValidateConfig: true, NotifyConfig: true}, a.Merge(b))
}
