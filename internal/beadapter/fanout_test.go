package beadapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgmtd/beadapter/internal/wire"
)

// These exercise the package-level transaction fan-out wrappers TXN calls
// against a live adapter, rather than the adapter's own SendTxnReq method
// directly.

func TestCreateTxnSendsOpeningTxnReq(t *testing.T) {
	h := newHarness(t)
	conn := &fakeConn{}
	a := h.create(7, "peer", conn)
	identify(t, h, a, "staticd")

	n, err := CreateTxn(a, 42)
	require.NoError(t, err)
	require.Positive(t, n)

	h.loop.FireWrite(7)
	require.Len(t, conn.written, 1)
	msg, err := wire.Decode(conn.written[0][4:])
	require.NoError(t, err)
	require.Equal(t, wire.KindTxnReq, msg.Kind)

	req := msg.Payload.(wire.TxnReq)
	assert.Equal(t, uint64(42), req.TxnID)
	assert.True(t, req.Create)
}

func TestDestroyTxnSendsClosingTxnReq(t *testing.T) {
	h := newHarness(t)
	conn := &fakeConn{}
	a := h.create(7, "peer", conn)
	identify(t, h, a, "staticd")

	n, err := DestroyTxn(a, 42)
	require.NoError(t, err)
	require.Positive(t, n)

	h.loop.FireWrite(7)
	require.Len(t, conn.written, 1)
	msg, err := wire.Decode(conn.written[0][4:])
	require.NoError(t, err)
	require.Equal(t, wire.KindTxnReq, msg.Kind)

	req := msg.Payload.(wire.TxnReq)
	assert.Equal(t, uint64(42), req.TxnID)
	assert.False(t, req.Create)
}

// Once the adapter's connection is gone, both wrappers must surface the
// closed-adapter status instead of writing to a dead socket.
func TestCreateAndDestroyTxnAfterDisconnectReturnClosed(t *testing.T) {
	h := newHarness(t)
	conn := &fakeConn{}
	a := h.create(7, "peer", conn)
	identify(t, h, a, "staticd")
	a.disconnect(DisconnectShutdown)

	n, err := CreateTxn(a, 1)
	assert.Negative(t, n)
	assert.ErrorIs(t, err, ErrAdapterClosed)

	n, err = DestroyTxn(a, 1)
	assert.Negative(t, n)
	assert.ErrorIs(t, err, ErrAdapterClosed)
}

func TestSendCfgDataCreateReqAndApplyReqViaFanout(t *testing.T) {
	h := newHarness(t)
	conn := &fakeConn{}
	a := h.create(7, "peer", conn)
	identify(t, h, a, "staticd")

	items := []wire.DataItem{{XPath: "/frr-vrf:lib/vrf[name='default']", Value: []byte("v")}}
	n, err := SendCfgDataCreateReq(a, 7, 1, items, true)
	require.NoError(t, err)
	require.Positive(t, n)

	n, err = SendCfgApplyReq(a, 7)
	require.NoError(t, err)
	require.Positive(t, n)

	h.loop.FireWrite(7)
	require.Len(t, conn.written, 2)

	dataMsg, err := wire.Decode(conn.written[0][4:])
	require.NoError(t, err)
	require.Equal(t, wire.KindCfgDataReq, dataMsg.Kind)
	dataReq := dataMsg.Payload.(wire.CfgDataReq)
	assert.Equal(t, uint64(7), dataReq.TxnID)
	assert.Equal(t, uint64(1), dataReq.BatchID)
	assert.True(t, dataReq.EndOfData)

	applyMsg, err := wire.Decode(conn.written[1][4:])
	require.NoError(t, err)
	require.Equal(t, wire.KindCfgApplyReq, applyMsg.Kind)
	assert.Equal(t, uint64(7), applyMsg.Payload.(wire.CfgApplyReq).TxnID)
}
