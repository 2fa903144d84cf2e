package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgmtd/beadapter/internal/clientid"
	"github.com/mgmtd/beadapter/internal/framer"
)

type stubAdapter struct {
	fd       int
	name     string
	id       clientid.ID
	refcount int
	counters framer.Counters
}

func (s *stubAdapter) FD() int                   { return s.fd }
func (s *stubAdapter) Name() string              { return s.name }
func (s *stubAdapter) ID() clientid.ID           { return s.id }
func (s *stubAdapter) RefCount() int             { return s.refcount }
func (s *stubAdapter) Counters() framer.Counters { return s.counters }

func TestInsertAndLookups(t *testing.T) {
	r := New()
	a := &stubAdapter{fd: 7, name: "Unknown-FD-7", id: clientid.MAX}
	r.Insert(a)

	assert.Equal(t, a, r.ByFD(7))
	assert.Equal(t, a, r.ByName("Unknown-FD-7"))
	assert.Nil(t, r.ByFD(99))
	assert.Equal(t, 1, r.Len())
}

func TestIndexByIDDisplacesPriorHolder(t *testing.T) {
	r := New()
	a1 := &stubAdapter{fd: 7, name: "staticd", id: clientid.STATICD}
	a2 := &stubAdapter{fd: 9, name: "staticd", id: clientid.STATICD}
	r.Insert(a1)
	r.Insert(a2)

	displaced := r.IndexByID(clientid.STATICD, a1)
	assert.Nil(t, displaced)
	assert.Equal(t, a1, r.ByID(clientid.STATICD))

	displaced = r.IndexByID(clientid.STATICD, a2)
	require.Equal(t, a1, displaced)
	assert.Equal(t, a2, r.ByID(clientid.STATICD))
}

func TestRemoveUnlinksFromBothIndices(t *testing.T) {
	r := New()
	a := &stubAdapter{fd: 7, name: "staticd", id: clientid.STATICD}
	r.Insert(a)
	r.IndexByID(clientid.STATICD, a)

	r.Remove(a)
	assert.Nil(t, r.ByFD(7))
	assert.Nil(t, r.ByID(clientid.STATICD))
	assert.Equal(t, 0, r.Len())
}

func TestRemoveIsIdempotent(t *testing.T) {
	r := New()
	a := &stubAdapter{fd: 7, name: "staticd", id: clientid.STATICD}
	r.Insert(a)
	r.Remove(a)
	assert.NotPanics(t, func() { r.Remove(a) })
}

func TestOthersWithNameExcludesSelf(t *testing.T) {
	r := New()
	a1 := &stubAdapter{fd: 7, name: "staticd", id: clientid.MAX}
	a2 := &stubAdapter{fd: 9, name: "staticd", id: clientid.MAX}
	r.Insert(a1)
	r.Insert(a2)

	others := r.OthersWithName("staticd", a2)
	require.Len(t, others, 1)
	assert.Equal(t, a1, others[0])
}
