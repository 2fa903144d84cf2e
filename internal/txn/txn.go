// Package txn defines the TXN collaborator: the out-of-scope transaction
// manager that owns transaction identifiers and correlates multi-client
// responses. The adapter core notifies it of connect/disconnect and of
// every client reply; TXN itself decides rollback, batching strategy and
// when a transaction is done.
package txn

// Manager is the subset of the transaction manager's behavior the adapter
// core depends on. A real implementation owns txn-id allocation and
// cross-client correlation; this interface only names the notification
// surface the core calls into.
type Manager interface {
	// Connect is called once a client-adapter has been identified (its
	// SUBSCR_REQ resolved), or — per the exclusivity rule — may be deferred
	// by the caller (internal/beadapter's CONN_INIT handler) until no
	// config transaction is in progress. It returns the transaction id the
	// adapter should use for its initial config-sync batch.
	Connect(adapterName string, adapterID int) (txnID uint64, err error)

	// Disconnect notifies TXN that an adapter is gone, so any in-flight
	// transaction can remove this participant. Idempotent from the core's
	// perspective: the core only calls it once per disconnect, but TXN must
	// tolerate redundant notification gracefully if a real implementation
	// chooses to call it more than once.
	Disconnect(adapterName string, adapterID int)

	// TxnInProgress reports whether a configuration transaction currently
	// holds the exclusive config lock; CONN_INIT polls this to decide
	// whether to proceed or reschedule.
	TxnInProgress() bool

	// OnTxnReply forwards a decoded TXN_REPLY.
	OnTxnReply(adapterID int, txnID uint64, create bool, success bool)

	// OnCfgDataReply forwards a decoded CFG_DATA_REPLY.
	OnCfgDataReply(adapterID int, txnID, batchID uint64, success bool, errText string)

	// OnCfgApplyReply forwards a decoded CFG_APPLY_REPLY.
	OnCfgApplyReply(adapterID int, txnID uint64, success bool, batchIDs []uint64, errText string)
}
