package beadapter

import (
	"errors"
	"fmt"

	"github.com/mgmtd/beadapter/internal/eventloop"
	"github.com/mgmtd/beadapter/internal/logger"
	"github.com/mgmtd/beadapter/internal/wire"
)

// ErrAdapterClosed is returned by the outbound builders once the
// connection has already been torn down; the caller (TXN, in a full
// system) should drop this adapter from the transaction's participants.
var ErrAdapterClosed = errors.New("beadapter: adapter is closed")

// send encodes msg, enqueues it via the framer, and ensures a write event
// is armed. It returns the number of bytes queued, or a negative status
// wrapping ErrAdapterClosed once the connection is gone — the outbound
// "negative indicates drop this adapter from the txn" signal.
func (a *Adapter) send(msg wire.Message) (int, error) {
	payload, err := wire.Encode(msg)
	if err != nil {
		return -1, fmt.Errorf("beadapter: encode %v: %w", msg.Kind, err)
	}

	n := a.fr.Enqueue(payload)
	if n < 0 {
		return -1, ErrAdapterClosed
	}

	if a.flags&FlagWritesOff == 0 {
		a.armWriteEvent()
	}
	return n, nil
}

// SendTxnReq builds and sends a TXN_REQ opening (create) or closing a
// transaction.
func (a *Adapter) SendTxnReq(txnID uint64, create bool) (int, error) {
	return a.send(wire.Message{Kind: wire.KindTxnReq, Payload: wire.TxnReq{TxnID: txnID, Create: create}})
}

// SendCfgDataCreateReq builds and sends one batch of a transaction's
// config-data push.
func (a *Adapter) SendCfgDataCreateReq(txnID, batchID uint64, items []wire.DataItem, endOfData bool) (int, error) {
	return a.send(wire.Message{Kind: wire.KindCfgDataReq, Payload: wire.CfgDataReq{
		TxnID:     txnID,
		BatchID:   batchID,
		DataReq:   items,
		EndOfData: endOfData,
	}})
}

// SendCfgApplyReq builds and sends a CFG_APPLY_REQ, committing a
// transaction's pushed config-data.
func (a *Adapter) SendCfgApplyReq(txnID uint64) (int, error) {
	return a.send(wire.Message{Kind: wire.KindCfgApplyReq, Payload: wire.CfgApplyReq{TxnID: txnID}})
}

// disconnect is the sole cancellation primitive: it closes fd, notifies
// TXN so any in-flight transaction can remove this participant, unlinks
// from the registry and by-id index, clears every armed event, and drops
// the registry's own reference. Idempotent: a second call on an
// already-disconnected adapter is a no-op.
func (a *Adapter) disconnect(reason DisconnectReason) {
	if a.state == StateDisconnected || a.state == StateDestroyed {
		return
	}

	logger.Info("adapter disconnecting", logger.AdapterName(a.name), logger.AdapterFD(a.fd), logger.DisconnectReason(reason))

	a.state = StateDisconnected
	a.fr.Close()
	_ = a.conn.Close()
	a.fd = -1

	a.deps.Txn.Disconnect(a.name, int(a.id))
	a.deps.Registry.Remove(a)
	if a.deps.Metrics != nil {
		a.deps.Metrics.ObserveDisconnect(reason.String())
	}

	for _, kind := range []eventloop.EventKind{
		eventloop.EventConnInit,
		eventloop.EventConnRead,
		eventloop.EventConnWrite,
		eventloop.EventProcMsg,
		eventloop.EventWritesOn,
	} {
		a.clearEvent(kind)
	}

	// Registry membership held one reference outside the event-handle
	// bookkeeping above; drop it now that Remove has unlinked this adapter.
	a.refcount--
	a.maybeDestroy()
}
