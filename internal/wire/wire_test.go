package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTripSubscrReq(t *testing.T) {
	req := SubscrReq{
		ClientName:      "staticd",
		SubscribeXPaths: true,
		XPathReg:        []XPathReg{{Pattern: "/frr-vrf:lib/*"}},
	}
	encoded, err := Encode(Message{Kind: KindSubscrReq, Payload: req})
	require.NoError(t, err)

	decoded, err := Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, KindSubscrReq, decoded.Kind)
	assert.Equal(t, req, decoded.Payload)
}

func TestRoundTripCfgDataReq(t *testing.T) {
	req := CfgDataReq{
		TxnID:   42,
		BatchID: 7,
		DataReq: []DataItem{
			{XPath: "/frr-vrf:lib/vrf[name='default']", Value: []byte("payload")},
		},
		EndOfData: true,
	}
	encoded, err := Encode(Message{Kind: KindCfgDataReq, Payload: req})
	require.NoError(t, err)

	decoded, err := Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, KindCfgDataReq, decoded.Kind)
	assert.Equal(t, req, decoded.Payload)
}

func TestRoundTripCfgApplyReply(t *testing.T) {
	reply := CfgApplyReply{
		TxnID:     1,
		Success:   false,
		BatchIDs:  []uint64{1, 2, 3},
		HasError:  true,
		ErrorText: "validation failed",
	}
	encoded, err := Encode(Message{Kind: KindCfgApplyReply, Payload: reply})
	require.NoError(t, err)

	decoded, err := Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, reply, decoded.Payload)
}

func TestDecodeUnknownKind(t *testing.T) {
	_, err := Decode([]byte{0, 0, 0, 0})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "SUBSCR_REQ", KindSubscrReq.String())
	assert.Equal(t, "TXN_REPLY", KindTxnReply.String())
}
