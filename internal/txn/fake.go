package txn

// ConnectCall records one Manager.Connect invocation observed by Fake.
type ConnectCall struct {
	AdapterName string
	AdapterID   int
}

// DisconnectCall records one Manager.Disconnect invocation observed by Fake.
type DisconnectCall struct {
	AdapterName string
	AdapterID   int
}

// TxnReplyCall records one Manager.OnTxnReply invocation.
type TxnReplyCall struct {
	AdapterID int
	TxnID     uint64
	Create    bool
	Success   bool
}

// CfgDataReplyCall records one Manager.OnCfgDataReply invocation.
type CfgDataReplyCall struct {
	AdapterID int
	TxnID     uint64
	BatchID   uint64
	Success   bool
	ErrText   string
}

// CfgApplyReplyCall records one Manager.OnCfgApplyReply invocation.
type CfgApplyReplyCall struct {
	AdapterID int
	TxnID     uint64
	Success   bool
	BatchIDs  []uint64
	ErrText   string
}

// Fake is an in-memory Manager for tests: it records every call it
// observes and lets the test script its TxnInProgress/Connect behavior.
type Fake struct {
	InProgress bool
	ConnectErr error
	// ConnectTxnID is the txn id Connect returns on success. Tests that
	// care about distinct ids per call can instead pop from ConnectTxnIDs.
	ConnectTxnID  uint64
	ConnectTxnIDs []uint64

	Connects     []ConnectCall
	Disconnects  []DisconnectCall
	TxnReplies   []TxnReplyCall
	CfgDataReplies  []CfgDataReplyCall
	CfgApplyReplies []CfgApplyReplyCall
}

// NewFake constructs an idle Fake (no transaction in progress).
func NewFake() *Fake {
	return &Fake{}
}

func (f *Fake) Connect(adapterName string, adapterID int) (uint64, error) {
	f.Connects = append(f.Connects, ConnectCall{AdapterName: adapterName, AdapterID: adapterID})
	if f.ConnectErr != nil {
		return 0, f.ConnectErr
	}
	if len(f.ConnectTxnIDs) > 0 {
		id := f.ConnectTxnIDs[0]
		f.ConnectTxnIDs = f.ConnectTxnIDs[1:]
		return id, nil
	}
	return f.ConnectTxnID, nil
}

func (f *Fake) Disconnect(adapterName string, adapterID int) {
	f.Disconnects = append(f.Disconnects, DisconnectCall{AdapterName: adapterName, AdapterID: adapterID})
}

func (f *Fake) TxnInProgress() bool {
	return f.InProgress
}

func (f *Fake) OnTxnReply(adapterID int, txnID uint64, create bool, success bool) {
	f.TxnReplies = append(f.TxnReplies, TxnReplyCall{AdapterID: adapterID, TxnID: txnID, Create: create, Success: success})
}

func (f *Fake) OnCfgDataReply(adapterID int, txnID, batchID uint64, success bool, errText string) {
	f.CfgDataReplies = append(f.CfgDataReplies, CfgDataReplyCall{
		AdapterID: adapterID, TxnID: txnID, BatchID: batchID, Success: success, ErrText: errText,
	})
}

func (f *Fake) OnCfgApplyReply(adapterID int, txnID uint64, success bool, batchIDs []uint64, errText string) {
	f.CfgApplyReplies = append(f.CfgApplyReplies, CfgApplyReplyCall{
		AdapterID: adapterID, TxnID: txnID, Success: success, BatchIDs: batchIDs, ErrText: errText,
	})
}
