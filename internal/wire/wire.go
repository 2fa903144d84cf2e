// Package wire defines the discriminated-union wire messages exchanged
// between the adapter core and a backend client, and the codec that
// marshals them. Integers are fixed-width and strings are length-prefixed
// UTF-8, via github.com/rasky/go-xdr's reflection-based XDR implementation.
//
// Framing (the length-prefixed record boundary a frame lives inside) is
// internal/framer's concern; this package only knows how to turn one
// logical message into bytes and back.
package wire

import (
	"bytes"
	"fmt"

	xdr "github.com/rasky/go-xdr/xdr2"
)

// Kind discriminates the wire message union. The zero value is not a valid
// kind.
type Kind uint32

const (
	KindSubscrReq Kind = iota + 1
	KindSubscrReply
	KindTxnReq
	KindTxnReply
	KindCfgDataReq
	KindCfgDataReply
	KindCfgApplyReq
	KindCfgApplyReply
	KindGetReq
	KindGetReply
	KindCfgCmdReq
	KindCfgCmdReply
	KindShowCmdReq
	KindShowCmdReply
	KindNotifyData

	kindMax
)

func (k Kind) String() string {
	switch k {
	case KindSubscrReq:
		return "SUBSCR_REQ"
	case KindSubscrReply:
		return "SUBSCR_REPLY"
	case KindTxnReq:
		return "TXN_REQ"
	case KindTxnReply:
		return "TXN_REPLY"
	case KindCfgDataReq:
		return "CFG_DATA_REQ"
	case KindCfgDataReply:
		return "CFG_DATA_REPLY"
	case KindCfgApplyReq:
		return "CFG_APPLY_REQ"
	case KindCfgApplyReply:
		return "CFG_APPLY_REPLY"
	case KindGetReq:
		return "GET_REQ"
	case KindGetReply:
		return "GET_REPLY"
	case KindCfgCmdReq:
		return "CFG_CMD_REQ"
	case KindCfgCmdReply:
		return "CFG_CMD_REPLY"
	case KindShowCmdReq:
		return "SHOW_CMD_REQ"
	case KindShowCmdReply:
		return "SHOW_CMD_REPLY"
	case KindNotifyData:
		return "NOTIFY_DATA"
	default:
		return fmt.Sprintf("Kind(%d)", uint32(k))
	}
}

// Valid reports whether k is a known, non-zero kind.
func (k Kind) Valid() bool {
	return k > 0 && k < kindMax
}

// XPathReg is one entry of a SUBSCR_REQ's xpath_reg list: a pattern this
// client wants the core to register (beyond the compiled-in static set),
// expressed in the same glob shape internal/xpath understands.
type XPathReg struct {
	Pattern string
}

// SubscrReq is client→server: identifies the connecting client by name and
// optionally carries xpaths to subscribe to / register.
type SubscrReq struct {
	ClientName      string
	SubscribeXPaths bool
	XPathReg        []XPathReg
}

// TxnReq is server→client: open (Create) or close a transaction.
type TxnReq struct {
	TxnID  uint64
	Create bool
}

// TxnReply is client→server: acknowledges a TxnReq.
type TxnReply struct {
	TxnID   uint64
	Create  bool
	Success bool
}

// DataItem is one config-data item of a CFG_DATA_REQ: a path and its
// serialized value, as produced by the config-sync driver's datastore walk.
type DataItem struct {
	XPath string
	Value []byte
}

// CfgDataReq is server→client: one batch of a transaction's config-data push.
type CfgDataReq struct {
	TxnID     uint64
	BatchID   uint64
	DataReq   []DataItem
	EndOfData bool
}

// CfgDataReply is client→server: acknowledges a CfgDataReq batch.
type CfgDataReply struct {
	TxnID     uint64
	BatchID   uint64
	Success   bool
	HasError  bool
	ErrorText string
}

// CfgApplyReq is server→client: commit a transaction's pushed config-data.
type CfgApplyReq struct {
	TxnID uint64
}

// CfgApplyReply is client→server: acknowledges a CfgApplyReq.
type CfgApplyReply struct {
	TxnID     uint64
	Success   bool
	BatchIDs  []uint64
	HasError  bool
	ErrorText string
}

// GetReq/GetReply, CfgCmdReq/CfgCmdReply, ShowCmdReq/ShowCmdReply and
// NotifyData are reserved/future message kinds: the core decodes their
// envelope but does not act on their payload (see dispatchMessage in
// internal/beadapter).
type GetReq struct{ Raw []byte }
type GetReply struct{ Raw []byte }
type CfgCmdReq struct{ Raw []byte }
type CfgCmdReply struct{ Raw []byte }
type ShowCmdReq struct{ Raw []byte }
type ShowCmdReply struct{ Raw []byte }
type NotifyData struct{ Raw []byte }

// Message pairs a Kind with its decoded payload.
type Message struct {
	Kind    Kind
	Payload any
}

// Encode marshals msg.Payload via XDR and returns the kind-tagged bytes:
// a 4-byte big-endian Kind followed by the XDR encoding of the payload.
func Encode(msg Message) ([]byte, error) {
	if !msg.Kind.Valid() {
		return nil, fmt.Errorf("wire: encode: invalid kind %v", msg.Kind)
	}
	var buf bytes.Buffer
	if _, err := xdr.Marshal(&buf, uint32(msg.Kind)); err != nil {
		return nil, fmt.Errorf("wire: encode kind %v: %w", msg.Kind, err)
	}
	if _, err := xdr.Marshal(&buf, msg.Payload); err != nil {
		return nil, fmt.Errorf("wire: encode payload for kind %v: %w", msg.Kind, err)
	}
	return buf.Bytes(), nil
}

// ErrUnknownKind is returned by Decode when the leading kind tag does not
// name a known message kind.
var ErrUnknownKind = fmt.Errorf("wire: unknown message kind")

// Decode reads a kind-tagged, XDR-encoded frame and returns the decoded
// Message. Decode never returns a Payload of the wrong Go type for its Kind.
func Decode(frame []byte) (Message, error) {
	r := bytes.NewReader(frame)

	var rawKind uint32
	if _, err := xdr.Unmarshal(r, &rawKind); err != nil {
		return Message{}, fmt.Errorf("wire: decode kind: %w", err)
	}
	kind := Kind(rawKind)
	if !kind.Valid() {
		return Message{}, fmt.Errorf("%w: %d", ErrUnknownKind, rawKind)
	}

	payload := newPayload(kind)
	if _, err := xdr.Unmarshal(r, payload); err != nil {
		return Message{}, fmt.Errorf("wire: decode payload for kind %v: %w", kind, err)
	}
	return Message{Kind: kind, Payload: derefPayload(payload)}, nil
}

func newPayload(kind Kind) any {
	switch kind {
	case KindSubscrReq:
		return &SubscrReq{}
	case KindSubscrReply:
		return &struct{}{}
	case KindTxnReq:
		return &TxnReq{}
	case KindTxnReply:
		return &TxnReply{}
	case KindCfgDataReq:
		return &CfgDataReq{}
	case KindCfgDataReply:
		return &CfgDataReply{}
	case KindCfgApplyReq:
		return &CfgApplyReq{}
	case KindCfgApplyReply:
		return &CfgApplyReply{}
	case KindGetReq:
		return &GetReq{}
	case KindGetReply:
		return &GetReply{}
	case KindCfgCmdReq:
		return &CfgCmdReq{}
	case KindCfgCmdReply:
		return &CfgCmdReply{}
	case KindShowCmdReq:
		return &ShowCmdReq{}
	case KindShowCmdReply:
		return &ShowCmdReply{}
	case KindNotifyData:
		return &NotifyData{}
	default:
		return &struct{}{}
	}
}

func derefPayload(p any) any {
	switch v := p.(type) {
	case *SubscrReq:
		return *v
	case *TxnReq:
		return *v
	case *TxnReply:
		return *v
	case *CfgDataReq:
		return *v
	case *CfgDataReply:
		return *v
	case *CfgApplyReq:
		return *v
	case *CfgApplyReply:
		return *v
	case *GetReq:
		return *v
	case *GetReply:
		return *v
	case *CfgCmdReq:
		return *v
	case *CfgCmdReply:
		return *v
	case *ShowCmdReq:
		return *v
	case *ShowCmdReply:
		return *v
	case *NotifyData:
		return *v
	default:
		return p
	}
}
