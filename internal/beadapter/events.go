package beadapter

import (
	"github.com/mgmtd/beadapter/internal/clientid"
	"github.com/mgmtd/beadapter/internal/configsync"
	"github.com/mgmtd/beadapter/internal/eventloop"
	"github.com/mgmtd/beadapter/internal/framer"
	"github.com/mgmtd/beadapter/internal/logger"
	"github.com/mgmtd/beadapter/internal/registry"
	"github.com/mgmtd/beadapter/internal/wire"
)

// onConnInit runs at connection start and on every retry. It does not
// proceed until the adapter has resolved its identity (SUBSCR_REQ landed)
// and no configuration transaction holds the exclusive lock elsewhere;
// both conditions reschedule rather than fail.
func (a *Adapter) onConnInit() {
	if a.state == StateDisconnected || a.state == StateDestroyed {
		return
	}
	if a.state != StateIdentified {
		a.scheduleConnInit(a.tunables.ConnInitRetryDelay)
		return
	}
	if a.deps.Txn.TxnInProgress() {
		a.scheduleConnInit(a.tunables.ConnInitRetryDelay)
		return
	}

	txnID, err := a.deps.Txn.Connect(a.name, int(a.id))
	if err != nil {
		logger.Error("adapter connect failed", logger.AdapterName(a.name), logger.Err(err))
		a.disconnect(DisconnectProtocolError)
		return
	}

	a.clearEvent(eventloop.EventConnInit)
	a.state = StateSyncing
	a.driveInitialSync(txnID)
}

// driveInitialSync walks the config-sync driver's change set for this
// adapter and drains it through the outbound builders as CFG_DATA_REQ
// batches followed by a terminating CFG_APPLY_REQ, then moves the adapter
// to STEADY. TXN itself is out of scope, so the adapter carries out its own
// side of the exchange against the txn id TXN.Connect already allocated.
func (a *Adapter) driveInitialSync(txnID uint64) {
	cs, err := configsync.GetAdapterConfig(a, a.deps.Datastore, a.deps.Subscriptions)
	if err != nil {
		logger.Error("config sync walk failed", logger.AdapterName(a.name), logger.Err(err))
		a.disconnect(DisconnectProtocolError)
		return
	}

	items := cs.Items()
	batchCap := a.tunables.SyncBatchSize
	if batchCap <= 0 {
		batchCap = len(items)
		if batchCap == 0 {
			batchCap = 1
		}
	}

	var batchID uint64
	for i := 0; i < len(items); i += batchCap {
		end := i + batchCap
		if end > len(items) {
			end = len(items)
		}
		batchID++
		req := make([]wire.DataItem, 0, end-i)
		for _, c := range items[i:end] {
			req = append(req, wire.DataItem{XPath: c.Path, Value: c.Value})
		}
		if _, err := a.SendCfgDataCreateReq(txnID, batchID, req, end == len(items)); err != nil {
			logger.Warn("send cfg-data-req failed", logger.AdapterName(a.name), logger.TxnID(int64(txnID)), logger.Err(err))
			return
		}
	}
	if len(items) == 0 {
		if _, err := a.SendCfgDataCreateReq(txnID, 1, nil, true); err != nil {
			logger.Warn("send cfg-data-req failed", logger.AdapterName(a.name), logger.TxnID(int64(txnID)), logger.Err(err))
			return
		}
	}

	if _, err := a.SendCfgApplyReq(txnID); err != nil {
		logger.Warn("send cfg-apply-req failed", logger.AdapterName(a.name), logger.TxnID(int64(txnID)), logger.Err(err))
		return
	}

	a.state = StateSteady
}

// onConnRead runs whenever the adapter's fd is readable.
func (a *Adapter) onConnRead() {
	outcome, err := a.fr.Read(a.conn)
	switch outcome {
	case framer.ReadDisconnect:
		if err != nil {
			logger.Warn("read error", logger.AdapterName(a.name), logger.Err(err))
		}
		a.disconnect(DisconnectIOError)
		return
	case framer.ReadNeedProcess:
		a.scheduleProcMsg(true)
	}
	a.armReadEvent()
}

// onProcMsg decodes and dispatches every complete buffered frame, up to the
// configured batch cap, and reschedules itself if frames remain.
func (a *Adapter) onProcMsg() {
	a.clearEvent(eventloop.EventProcMsg)
	if a.state == StateDisconnected || a.state == StateDestroyed {
		return
	}

	more, err := a.fr.Process(a.tunables.ProcMsgBatchCap, a.dispatchMessage)
	if err != nil {
		logger.Warn("frame processing error", logger.AdapterName(a.name), logger.Err(err))
	}
	if more {
		a.scheduleProcMsg(false)
	}
}

// onConnWrite runs whenever the adapter's fd is writable.
func (a *Adapter) onConnWrite() {
	outcome, err := a.fr.Write(a.conn)
	switch outcome {
	case framer.WriteMore:
		a.armWriteEvent()
	case framer.WriteWritesOff:
		a.clearEvent(eventloop.EventConnWrite)
		a.flags |= FlagWritesOff
		a.scheduleWritesOn()
	case framer.WriteDisconnect:
		if err != nil {
			logger.Warn("write error", logger.AdapterName(a.name), logger.Err(err))
		}
		a.disconnect(DisconnectIOError)
	case framer.WriteNone:
		a.clearEvent(eventloop.EventConnWrite)
	}
}

// onWritesOn runs once the fixed WRITES_ON delay expires: it clears
// WRITES_OFF and resumes writes if anything is still queued.
func (a *Adapter) onWritesOn() {
	a.flags &^= FlagWritesOff
	if a.fr.OutboundQueueLen() > 0 {
		a.armWriteEvent()
	}
}

// dispatchMessage decodes one frame and routes it by kind. It never
// returns a transport error for an undecodable frame — that is the
// protocol-error taxonomy's "log, drop the frame, continue" case — but does
// propagate the decode error to the caller for logging.
func (a *Adapter) dispatchMessage(frame []byte) error {
	msg, err := wire.Decode(frame)
	if err != nil {
		logger.Warn("undecodable frame dropped", logger.AdapterName(a.name), logger.FrameLen(len(frame)), logger.Err(err))
		return err
	}

	switch payload := msg.Payload.(type) {
	case wire.SubscrReq:
		a.handleSubscrReq(payload)
	case wire.TxnReply:
		a.deps.Txn.OnTxnReply(int(a.id), payload.TxnID, payload.Create, payload.Success)
	case wire.CfgDataReply:
		a.deps.Txn.OnCfgDataReply(int(a.id), payload.TxnID, payload.BatchID, payload.Success, payload.ErrorText)
	case wire.CfgApplyReply:
		a.deps.Txn.OnCfgApplyReply(int(a.id), payload.TxnID, payload.Success, payload.BatchIDs, payload.ErrorText)
	case wire.GetReply, wire.CfgCmdReply, wire.ShowCmdReply, wire.NotifyData:
		logger.Debug("accepted reserved message kind, no-op", logger.AdapterName(a.name), logger.MsgKind(uint32(msg.Kind)))
	default:
		logger.Debug("ignoring unexpected message kind", logger.AdapterName(a.name), logger.MsgKind(uint32(msg.Kind)))
	}
	return nil
}

// handleSubscrReq resolves the adapter's identity from a SUBSCR_REQ: an
// unknown client name is a protocol-taxonomy identity error (log,
// disconnect); a known name installs this adapter in the by-id index,
// displacing and sweeping any adapter that previously held that name or id.
func (a *Adapter) handleSubscrReq(req wire.SubscrReq) {
	a.name = req.ClientName

	id, ok := clientid.Lookup(req.ClientName)
	if !ok {
		logger.Error("unknown client name in SUBSCR_REQ", logger.AdapterName(req.ClientName), logger.AdapterFD(a.fd))
		a.disconnect(DisconnectProtocolError)
		return
	}
	a.id = id
	a.state = StateIdentified

	if displaced := a.deps.Registry.IndexByID(id, a); displaced != nil && displaced != registry.Adapter(a) {
		if d, ok := displaced.(*Adapter); ok {
			d.disconnect(DisconnectNameClash)
		}
	}
	for _, other := range a.deps.Registry.OthersWithName(a.name, a) {
		if d, ok := other.(*Adapter); ok {
			d.disconnect(DisconnectNameClash)
		}
	}

	if req.SubscribeXPaths && len(req.XPathReg) > 0 {
		logger.Debug("client-supplied xpath registrations noted, static map is immutable at runtime",
			logger.AdapterName(a.name), logger.Changes(len(req.XPathReg)))
	}
}
