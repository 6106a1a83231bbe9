package net

import (
	"encoding/binary"
	"testing"

	"github.com/fenrir-exchange/fenrir/internal/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildNewOrderFrame(pairID, userID uint32, side byte, limitPrice, quantity string) []byte {
	buf := make([]byte, 2, 32)
	binary.BigEndian.PutUint16(buf[0:2], uint16(NewOrder))

	body := make([]byte, 9)
	binary.BigEndian.PutUint32(body[0:4], pairID)
	binary.BigEndian.PutUint32(body[4:8], userID)
	body[8] = side
	buf = append(buf, body...)

	buf = appendLenPrefixedString(buf, limitPrice)
	buf = appendLenPrefixedString(buf, quantity)
	return buf
}

func TestParseMessage_NewOrder_Limit(t *testing.T) {
	frame := buildNewOrderFrame(1, 7, byte(order.Bid), "10.5", "3")

	msg, err := parseMessage(frame)
	require.NoError(t, err)

	newOrder, ok := msg.(NewOrderMessage)
	require.True(t, ok)
	assert.EqualValues(t, 1, newOrder.PairID)
	assert.EqualValues(t, 7, newOrder.UserID)
	assert.Equal(t, order.Bid, newOrder.Side)
	assert.Equal(t, "10.5", newOrder.LimitPrice)
	assert.Equal(t, "3", newOrder.Quantity)

	req, err := newOrder.Request()
	require.NoError(t, err)
	require.NotNil(t, req.LimitPrice)
	assert.Equal(t, "10.5", req.LimitPrice.String())
}

func TestParseMessage_NewOrder_Market(t *testing.T) {
	frame := buildNewOrderFrame(1, 7, byte(order.Ask), "", "100")

	msg, err := parseMessage(frame)
	require.NoError(t, err)

	newOrder := msg.(NewOrderMessage)
	req, err := newOrder.Request()
	require.NoError(t, err)
	assert.Nil(t, req.LimitPrice)
}

func TestParseMessage_TooShort_ReturnsError(t *testing.T) {
	_, err := parseMessage([]byte{0})
	assert.ErrorIs(t, err, ErrMessageTooShort)
}

func TestParseMessage_UnknownType_ReturnsError(t *testing.T) {
	buf := make([]byte, 2)
	binary.BigEndian.PutUint16(buf, 999)
	_, err := parseMessage(buf)
	assert.ErrorIs(t, err, ErrInvalidMessageType)
}

func TestParseCancelOrderMessage(t *testing.T) {
	buf := make([]byte, 2+4+8)
	binary.BigEndian.PutUint16(buf[0:2], uint16(CancelOrder))
	binary.BigEndian.PutUint32(buf[2:6], 42)
	binary.BigEndian.PutUint64(buf[6:14], 9001)

	msg, err := parseMessage(buf)
	require.NoError(t, err)

	cancel, ok := msg.(CancelOrderMessage)
	require.True(t, ok)
	assert.EqualValues(t, 42, cancel.PairID)
	assert.EqualValues(t, 9001, cancel.OrderID)
}

func TestReportSerialize_RoundTripsFixedFields(t *testing.T) {
	r := Report{
		MessageType: ExecutionReport,
		PairID:      1,
		OrderID:     2,
		TradeID:     3,
		Side:        byte(order.Bid),
		Price:       "10",
		Quantity:    "5",
	}

	buf := r.Serialize()
	assert.Equal(t, byte(ExecutionReport), buf[0])
	assert.EqualValues(t, 1, binary.BigEndian.Uint32(buf[1:5]))
	assert.EqualValues(t, 2, binary.BigEndian.Uint64(buf[5:13]))
	assert.EqualValues(t, 3, binary.BigEndian.Uint64(buf[13:21]))
}
