// Package net adapts the engine's rpc.Service to a length-prefixed TCP
// binary protocol, grounded on the exchange skeleton's internal/net
// wire format (messages.go/server.go) but carrying this domain's
// pair/order/decimal fields instead of ticker/float64 ones.
package net

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/fenrir-exchange/fenrir/internal/balance"
	fdecimal "github.com/fenrir-exchange/fenrir/internal/decimal"
	"github.com/fenrir-exchange/fenrir/internal/market"
	"github.com/fenrir-exchange/fenrir/internal/order"
	"github.com/fenrir-exchange/fenrir/internal/rpc"
)

var (
	ErrInvalidMessageType = errors.New("invalid message type")
	ErrMessageTooShort     = errors.New("message too short")
)

// MessageType identifies the request frames a client may send.
type MessageType uint16

const (
	Heartbeat MessageType = iota
	NewOrder
	CancelOrder
	GetOrderbook
	Deposit
	Withdraw
)

// ReportMessageType identifies the response frames the server sends.
type ReportMessageType byte

const (
	ExecutionReport ReportMessageType = iota
	OrderbookReport
	BalanceReport
	ErrorReport
)

// Message is any parsed request frame.
type Message interface {
	GetType() MessageType
}

// BaseMessage carries the 2-byte type header common to every frame.
type BaseMessage struct {
	TypeOf MessageType
}

func (m BaseMessage) GetType() MessageType { return m.TypeOf }

const baseHeaderLen = 2

// parseMessage strips the common header and dispatches to the
// type-specific parser.
func parseMessage(msg []byte) (Message, error) {
	if len(msg) < baseHeaderLen {
		return nil, ErrMessageTooShort
	}

	typeOf := MessageType(binary.BigEndian.Uint16(msg[0:2]))
	body := msg[2:]

	switch typeOf {
	case Heartbeat:
		return BaseMessage{TypeOf: Heartbeat}, nil
	case NewOrder:
		return parseNewOrderMessage(body)
	case CancelOrder:
		return parseCancelOrderMessage(body)
	case GetOrderbook:
		return parseGetOrderbookMessage(body)
	case Deposit:
		return parseDepositMessage(body)
	case Withdraw:
		return parseWithdrawMessage(body)
	default:
		return nil, ErrInvalidMessageType
	}
}

// readLenPrefixedString reads a uint16-length-prefixed ASCII string
// starting at offset, returning the string and the offset just past it.
func readLenPrefixedString(msg []byte, offset int) (string, int, error) {
	if len(msg) < offset+2 {
		return "", 0, ErrMessageTooShort
	}
	n := int(binary.BigEndian.Uint16(msg[offset : offset+2]))
	offset += 2
	if len(msg) < offset+n {
		return "", 0, ErrMessageTooShort
	}
	return string(msg[offset : offset+n]), offset + n, nil
}

// NewOrderMessage requests a new order on a pair. LimitPrice is the
// empty string for a market order.
type NewOrderMessage struct {
	BaseMessage
	PairID     market.PairID
	UserID     balance.UserID
	Side       order.Side
	LimitPrice string
	Quantity   string
}

const newOrderFixedLen = 4 + 4 + 1 // PairID + UserID + Side

func parseNewOrderMessage(msg []byte) (NewOrderMessage, error) {
	if len(msg) < newOrderFixedLen {
		return NewOrderMessage{}, ErrMessageTooShort
	}

	m := NewOrderMessage{BaseMessage: BaseMessage{TypeOf: NewOrder}}
	m.PairID = binary.BigEndian.Uint32(msg[0:4])
	m.UserID = binary.BigEndian.Uint32(msg[4:8])
	m.Side = order.Side(msg[8])

	offset := newOrderFixedLen
	limitPrice, offset, err := readLenPrefixedString(msg, offset)
	if err != nil {
		return NewOrderMessage{}, err
	}
	m.LimitPrice = limitPrice

	quantity, _, err := readLenPrefixedString(msg, offset)
	if err != nil {
		return NewOrderMessage{}, err
	}
	m.Quantity = quantity

	return m, nil
}

// Request decodes m into an rpc.PlaceOrderRequest.
func (m NewOrderMessage) Request() (rpc.PlaceOrderRequest, error) {
	quantity, err := fdecimal.NewFromString(m.Quantity)
	if err != nil {
		return rpc.PlaceOrderRequest{}, fmt.Errorf("invalid quantity: %w", err)
	}

	req := rpc.PlaceOrderRequest{
		PairID:   m.PairID,
		UserID:   m.UserID,
		Side:     m.Side,
		Quantity: quantity,
	}

	if m.LimitPrice != "" {
		limitPrice, err := fdecimal.NewFromString(m.LimitPrice)
		if err != nil {
			return rpc.PlaceOrderRequest{}, fmt.Errorf("invalid limit price: %w", err)
		}
		req.LimitPrice = &limitPrice
	}

	return req, nil
}

// CancelOrderMessage requests cancellation of a resting order.
type CancelOrderMessage struct {
	BaseMessage
	PairID  market.PairID
	OrderID order.ID
}

const cancelOrderMessageLen = 4 + 8

func parseCancelOrderMessage(msg []byte) (CancelOrderMessage, error) {
	if len(msg) < cancelOrderMessageLen {
		return CancelOrderMessage{}, ErrMessageTooShort
	}
	return CancelOrderMessage{
		BaseMessage: BaseMessage{TypeOf: CancelOrder},
		PairID:      binary.BigEndian.Uint32(msg[0:4]),
		OrderID:     binary.BigEndian.Uint64(msg[4:12]),
	}, nil
}

// GetOrderbookMessage requests a depth snapshot for a pair.
type GetOrderbookMessage struct {
	BaseMessage
	PairID market.PairID
}

const getOrderbookMessageLen = 4

func parseGetOrderbookMessage(msg []byte) (GetOrderbookMessage, error) {
	if len(msg) < getOrderbookMessageLen {
		return GetOrderbookMessage{}, ErrMessageTooShort
	}
	return GetOrderbookMessage{
		BaseMessage: BaseMessage{TypeOf: GetOrderbook},
		PairID:      binary.BigEndian.Uint32(msg[0:4]),
	}, nil
}

// DepositMessage and WithdrawMessage move funds between a user's wallet
// and their Available balance.
type DepositMessage struct {
	BaseMessage
	UserID  balance.UserID
	AssetID balance.AssetID
	Amount  string
}

type WithdrawMessage struct {
	BaseMessage
	UserID  balance.UserID
	AssetID balance.AssetID
	Amount  string
}

const balanceMoveFixedLen = 4 + 4

func parseDepositMessage(msg []byte) (DepositMessage, error) {
	if len(msg) < balanceMoveFixedLen {
		return DepositMessage{}, ErrMessageTooShort
	}
	amount, _, err := readLenPrefixedString(msg, balanceMoveFixedLen)
	if err != nil {
		return DepositMessage{}, err
	}
	return DepositMessage{
		BaseMessage: BaseMessage{TypeOf: Deposit},
		UserID:      binary.BigEndian.Uint32(msg[0:4]),
		AssetID:     binary.BigEndian.Uint32(msg[4:8]),
		Amount:      amount,
	}, nil
}

func parseWithdrawMessage(msg []byte) (WithdrawMessage, error) {
	if len(msg) < balanceMoveFixedLen {
		return WithdrawMessage{}, ErrMessageTooShort
	}
	amount, _, err := readLenPrefixedString(msg, balanceMoveFixedLen)
	if err != nil {
		return WithdrawMessage{}, err
	}
	return WithdrawMessage{
		BaseMessage: BaseMessage{TypeOf: Withdraw},
		UserID:      binary.BigEndian.Uint32(msg[0:4]),
		AssetID:     binary.BigEndian.Uint32(msg[4:8]),
		Amount:      amount,
	}, nil
}

// Report is a server→client response frame. Serialize packs it onto
// the wire; fields unused by a given MessageType are left zero.
type Report struct {
	MessageType ReportMessageType
	PairID      market.PairID
	OrderID     order.ID
	TradeID     uint64
	Side        byte
	Price       string
	Quantity    string
	Err         string
}

// Serialize converts the report to its wire form: a 1-byte type, fixed
// numeric fields, then three length-prefixed strings (price, quantity,
// err) in that order.
func (r *Report) Serialize() []byte {
	const fixedLen = 1 + 4 + 8 + 8 + 1

	buf := make([]byte, fixedLen)
	buf[0] = byte(r.MessageType)
	binary.BigEndian.PutUint32(buf[1:5], r.PairID)
	binary.BigEndian.PutUint64(buf[5:13], r.OrderID)
	binary.BigEndian.PutUint64(buf[13:21], r.TradeID)
	buf[21] = r.Side

	buf = appendLenPrefixedString(buf, r.Price)
	buf = appendLenPrefixedString(buf, r.Quantity)
	buf = appendLenPrefixedString(buf, r.Err)

	return buf
}

func appendLenPrefixedString(buf []byte, s string) []byte {
	lenBuf := make([]byte, 2)
	binary.BigEndian.PutUint16(lenBuf, uint16(len(s)))
	buf = append(buf, lenBuf...)
	buf = append(buf, s...)
	return buf
}

// tradeExecutionReports builds one ExecutionReport per side of a trade,
// addressed to the taker and the maker respectively.
func tradeExecutionReports(pairID market.PairID, tradeID uint64, takerOrderID, makerOrderID order.ID, side order.Side, price, quantity fdecimal.Decimal) (Report, Report) {
	taker := Report{
		MessageType: ExecutionReport,
		PairID:      pairID,
		OrderID:     takerOrderID,
		TradeID:     tradeID,
		Side:        byte(side),
		Price:       price.String(),
		Quantity:    quantity.String(),
	}
	maker := Report{
		MessageType: ExecutionReport,
		PairID:      pairID,
		OrderID:     makerOrderID,
		TradeID:     tradeID,
		Side:        byte(side.Opposite()),
		Price:       price.String(),
		Quantity:    quantity.String(),
	}
	return taker, maker
}

func errorReport(err error) Report {
	return Report{MessageType: ErrorReport, Err: err.Error()}
}
