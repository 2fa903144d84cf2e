package beadapter

import "github.com/mgmtd/beadapter/internal/wire"

// This file is the transaction fan-out API: thin, package-level
// wrappers over the adapter's outbound builders, named the way TXN would
// call them rather than the way the adapter implements them. Every
// function returns a negative status wrapping ErrAdapterClosed when the
// connection is already gone, signaling the caller to drop adapter from
// the transaction's participants.

// CreateTxn opens a transaction on adapter.
func CreateTxn(adapter *Adapter, txnID uint64) (int, error) {
	return adapter.SendTxnReq(txnID, true)
}

// DestroyTxn closes a transaction on adapter.
func DestroyTxn(adapter *Adapter, txnID uint64) (int, error) {
	return adapter.SendTxnReq(txnID, false)
}

// SendCfgDataCreateReq pushes one batch of config-data to adapter.
func SendCfgDataCreateReq(adapter *Adapter, txnID, batchID uint64, items []wire.DataItem, endOfData bool) (int, error) {
	return adapter.SendCfgDataCreateReq(txnID, batchID, items, endOfData)
}

// SendCfgApplyReq requests adapter commit a transaction's pushed config-data.
func SendCfgApplyReq(adapter *Adapter, txnID uint64) (int, error) {
	return adapter.SendCfgApplyReq(txnID)
}
