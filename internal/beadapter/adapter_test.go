package beadapter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgmtd/beadapter/internal/clientid"
	"github.com/mgmtd/beadapter/internal/configsync"
	"github.com/mgmtd/beadapter/internal/datastore"
	"github.com/mgmtd/beadapter/internal/eventloop"
	"github.com/mgmtd/beadapter/internal/framer"
	"github.com/mgmtd/beadapter/internal/metrics"
	"github.com/mgmtd/beadapter/internal/registry"
	"github.com/mgmtd/beadapter/internal/subscr"
	"github.com/mgmtd/beadapter/internal/txn"
	"github.com/mgmtd/beadapter/internal/wire"
	"github.com/mgmtd/beadapter/pkg/bufpool"
	"github.com/mgmtd/beadapter/pkg/config"
)

// fakeConn is an in-memory Conn: reads come from a queue of pre-encoded
// frames, writes are captured, and both sides can be told to block
// (ErrWouldBlock) the way a non-blocking socket with nothing ready would.
type fakeConn struct {
	readQueue    [][]byte
	writeBlocked bool
	writeErr     error
	written      [][]byte
	closed       bool
}

func (c *fakeConn) Read(p []byte) (int, error) {
	if len(c.readQueue) == 0 {
		return 0, framer.ErrWouldBlock
	}
	next := c.readQueue[0]
	c.readQueue = c.readQueue[1:]
	n := copy(p, next)
	if n < len(next) {
		panic("fakeConn: read buffer too small for queued frame")
	}
	return n, nil
}

func (c *fakeConn) Write(p []byte) (int, error) {
	if c.writeBlocked {
		return 0, framer.ErrWouldBlock
	}
	if c.writeErr != nil {
		return 0, c.writeErr
	}
	buf := make([]byte, len(p))
	copy(buf, p)
	c.written = append(c.written, buf)
	return len(p), nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func testTunables() config.TunablesConfig {
	return config.TunablesConfig{
		SendBufferSize:        4096,
		RecvBufferSize:        4096,
		InboundQueueCap:       64,
		OutboundQueueCap:      64,
		OutboundHighWaterMark: 64,
		OutboundLowWaterMark:  16,
		MaxMessageLen:         1 << 16,
		ReadChunkSize:         4096,
		ConnInitRetryDelay:    10 * time.Millisecond,
		ProcMsgDelay:          time.Millisecond,
		WritesOnDelay:         10 * time.Millisecond,
		ProcMsgBatchCap:       16,
		SyncBatchSize:         2,
	}
}

type harness struct {
	reg      *registry.Registry
	loop     *eventloop.Fake
	txn      *txn.Fake
	subs     *subscr.Map
	ds       *datastore.Fake
	tunables config.TunablesConfig
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	subs, err := subscr.New(subscr.SeedEntries(), 0)
	require.NoError(t, err)
	return &harness{
		reg:      registry.New(),
		loop:     eventloop.NewFake(),
		txn:      txn.NewFake(),
		subs:     subs,
		ds:       datastore.NewFake(),
		tunables: testTunables(),
	}
}

func (h *harness) deps() *Deps {
	return &Deps{
		Registry:      h.reg,
		Txn:           h.txn,
		EventLoop:     h.loop,
		Subscriptions: h.subs,
		Datastore:     h.ds,
		Metrics:       metrics.New(),
		BufPool:       bufpool.NewPool(nil),
	}
}

func (h *harness) create(fd int, peer string, conn Conn) *Adapter {
	return Create(fd, peer, conn, h.deps(), h.tunables)
}

func subscrReqFrame(t *testing.T, clientName string) []byte {
	t.Helper()
	payload, err := wire.Encode(wire.Message{
		Kind:    wire.KindSubscrReq,
		Payload: wire.SubscrReq{ClientName: clientName, SubscribeXPaths: false},
	})
	require.NoError(t, err)
	frame := make([]byte, 4+len(payload))
	frame[0] = byte(len(payload) >> 24)
	frame[1] = byte(len(payload) >> 16)
	frame[2] = byte(len(payload) >> 8)
	frame[3] = byte(len(payload))
	frame[0] |= 0x80
	copy(frame[4:], payload)
	return frame
}

func identify(t *testing.T, h *harness, a *Adapter, clientName string) {
	t.Helper()
	conn := a.conn.(*fakeConn)
	conn.readQueue = append(conn.readQueue, subscrReqFrame(t, clientName))
	h.loop.FireRead(a.fd)
	h.loop.RunImmediate()
}

func TestCreateRegistersAndArmsInitialEvents(t *testing.T) {
	h := newHarness(t)
	conn := &fakeConn{}
	a := h.create(7, "127.0.0.1:1234", conn)

	assert.Equal(t, StateUnidentified, a.State())
	assert.Equal(t, 3, a.RefCount(), "registry membership + armed CONN_READ + armed CONN_INIT")
	assert.True(t, h.loop.HasRead(7))
	assert.Same(t, registry.Adapter(a), h.reg.ByFD(7))
}

func TestSubscrReqIdentifiesAdapter(t *testing.T) {
	h := newHarness(t)
	conn := &fakeConn{}
	a := h.create(7, "peer", conn)

	identify(t, h, a, "staticd")

	assert.Equal(t, StateIdentified, a.State())
	assert.Equal(t, clientid.STATICD, a.ID())
	assert.Same(t, registry.Adapter(a), h.reg.ByID(clientid.STATICD))
}

func TestSubscrReqUnknownClientDisconnects(t *testing.T) {
	h := newHarness(t)
	conn := &fakeConn{}
	a := h.create(7, "peer", conn)

	identify(t, h, a, "not-a-real-client")

	assert.Equal(t, StateDisconnected, a.State())
	assert.True(t, conn.closed)
}

// Reconnect displaces: a second adapter identifying with the same client
// name takes over the by-id slot and the first adapter is torn down.
func TestReconnectDisplacesPreviousAdapter(t *testing.T) {
	h := newHarness(t)
	conn1 := &fakeConn{}
	a1 := h.create(7, "peer-1", conn1)
	identify(t, h, a1, "staticd")
	require.Equal(t, StateIdentified, a1.State())

	conn2 := &fakeConn{}
	a2 := h.create(9, "peer-2", conn2)
	identify(t, h, a2, "staticd")

	assert.Equal(t, StateDisconnected, a1.State())
	assert.True(t, conn1.closed, "displaced adapter's connection must be closed")
	assert.Same(t, registry.Adapter(a2), h.reg.ByID(clientid.STATICD))
	assert.Nil(t, h.reg.ByFD(7), "displaced adapter must be unlinked from the registry")
}

// Backpressure: enqueuing past the high-water mark flips WRITES_OFF, and no
// write is armed again until the WRITES_ON timer fires and the queue drains.
func TestBackpressureWritesOff(t *testing.T) {
	h := newHarness(t)
	h.tunables.OutboundHighWaterMark = 8
	conn := &fakeConn{writeBlocked: true}
	a := h.create(7, "peer", conn)

	n, err := a.SendCfgApplyReq(1)
	require.NoError(t, err)
	require.Positive(t, n)
	assert.True(t, h.loop.HasWrite(7))

	// The peer never drains anything: the attempted write blocks outright,
	// so the queued byte count stays above the high-water mark.
	h.loop.FireWrite(7)

	assert.True(t, a.Flags()&FlagWritesOff != 0, "queue above high-water mark must set WRITES_OFF")
	assert.False(t, h.loop.HasWrite(7), "no write event may be armed while WRITES_OFF")

	conn.writeBlocked = false
	h.loop.Advance(h.tunables.WritesOnDelay)

	assert.True(t, a.Flags()&FlagWritesOff == 0, "WRITES_ON timer must clear WRITES_OFF")
	assert.True(t, h.loop.HasWrite(7), "queued bytes still outstanding, write must be re-armed")

	h.loop.FireWrite(7)
	assert.Len(t, conn.written, 1, "the queued message eventually drains once the peer accepts writes")
}

func TestArmWriteEventPanicsWhileWritesOff(t *testing.T) {
	h := newHarness(t)
	conn := &fakeConn{}
	a := h.create(7, "peer", conn)
	a.flags |= FlagWritesOff

	assert.Panics(t, func() { a.armWriteEvent() })
}

// Config-sync gating: CONN_INIT must not call Txn.Connect while a
// transaction is in progress or before the adapter has identified itself;
// once both conditions clear, it drives the full sync-then-steady sequence.
func TestConnInitGatesOnIdentityAndTxnInProgress(t *testing.T) {
	h := newHarness(t)
	h.ds.Add(datastore.Node{XPath: "/frr-vrf:lib/vrf[name='default']", SchemaNode: "vrf", Value: []byte("v")})
	h.ds.Add(datastore.Node{XPath: "/frr-interface:lib/interface[name='eth0']", SchemaNode: "interface", Value: []byte("i")})
	h.ds.Add(datastore.Node{XPath: "/not-subscribed:thing", SchemaNode: "thing", Value: []byte("x")})
	h.tunables.SyncBatchSize = 1
	h.txn.InProgress = true
	h.txn.ConnectTxnID = 42

	conn := &fakeConn{}
	a := h.create(7, "peer", conn)

	// Not yet identified: CONN_INIT must reschedule without touching TXN.
	h.loop.Advance(0)
	assert.Empty(t, h.txn.Connects)
	assert.Equal(t, StateUnidentified, a.State())

	identify(t, h, a, "staticd")
	require.Equal(t, StateIdentified, a.State())

	// Identified but a transaction is in progress: still must not connect.
	h.loop.Advance(h.tunables.ConnInitRetryDelay)
	assert.Empty(t, h.txn.Connects)
	assert.Equal(t, StateIdentified, a.State())

	h.txn.InProgress = false
	h.loop.Advance(h.tunables.ConnInitRetryDelay)

	require.Len(t, h.txn.Connects, 1)
	assert.Equal(t, "staticd", h.txn.Connects[0].AdapterName)
	assert.Equal(t, StateSteady, a.State())

	h.loop.FireWrite(7)
	require.Len(t, conn.written, 3, "two sync-batch CFG_DATA_REQ frames (batch size 1) plus CFG_APPLY_REQ")

	var seenPaths []string
	for _, frame := range conn.written[:2] {
		msg, err := wire.Decode(frame[4:])
		require.NoError(t, err)
		require.Equal(t, wire.KindCfgDataReq, msg.Kind)
		req := msg.Payload.(wire.CfgDataReq)
		require.Equal(t, uint64(42), req.TxnID)
		for _, item := range req.DataReq {
			seenPaths = append(seenPaths, item.XPath)
		}
	}
	assert.ElementsMatch(t, []string{
		"/frr-vrf:lib/vrf[name='default']",
		"/frr-interface:lib/interface[name='eth0']",
	}, seenPaths, "only subscribed subtrees are drained, each exactly once")

	last, err := wire.Decode(conn.written[2][4:])
	require.NoError(t, err)
	assert.Equal(t, wire.KindCfgApplyReq, last.Kind)
}

func TestDisconnectIsIdempotent(t *testing.T) {
	h := newHarness(t)
	conn := &fakeConn{}
	a := h.create(7, "peer", conn)
	identify(t, h, a, "staticd")

	before := a.RefCount()
	a.disconnect(DisconnectShutdown)
	assert.Equal(t, StateDestroyed, a.State(), "refcount must reach zero once every event and registry membership clears")
	assert.Less(t, a.RefCount(), before)

	require.NotPanics(t, func() { a.disconnect(DisconnectShutdown) })
	assert.Len(t, h.txn.Disconnects, 1, "a second disconnect call must not renotify TXN")
}

func TestClearEventOnUnarmedKindIsNoop(t *testing.T) {
	h := newHarness(t)
	conn := &fakeConn{}
	a := h.create(7, "peer", conn)

	before := a.RefCount()
	a.clearEvent(eventloop.EventWritesOn)
	assert.Equal(t, before, a.RefCount())
}

func TestMaybeDestroyPanicsOnNegativeRefcount(t *testing.T) {
	h := newHarness(t)
	conn := &fakeConn{}
	a := h.create(7, "peer", conn)
	a.refcount = -1

	assert.Panics(t, func() { a.maybeDestroy() })
}

func TestGetAdapterConfigCachesChangeSet(t *testing.T) {
	h := newHarness(t)
	h.ds.Add(datastore.Node{XPath: "/frr-vrf:lib/vrf[name='default']", SchemaNode: "vrf", Value: []byte("v")})

	conn := &fakeConn{}
	a := h.create(7, "peer", conn)
	identify(t, h, a, "staticd")

	cs, err := configsync.GetAdapterConfig(a, h.ds, h.subs)
	require.NoError(t, err)
	require.Equal(t, 1, cs.Len())

	h.ds.Add(datastore.Node{XPath: "/frr-vrf:lib/vrf[name='second']", SchemaNode: "vrf", Value: []byte("v2")})
	again, err := configsync.GetAdapterConfig(a, h.ds, h.subs)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Len(), "a cached, non-empty change set is returned as-is")
}
