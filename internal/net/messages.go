package net

import (
	"encoding/binary"
	"errors"

	"skoll/internal/book"
)

var (
	ErrInvalidMessageType = errors.New("invalid message type")
	ErrMessageTooShort    = errors.New("message too short")
)

// MessageType identifies a client command on the wire.
type MessageType uint16

const (
	Heartbeat MessageType = iota
	NewOrder
	ModifyOrder
	CancelOrder
	SnapshotRequest
)

// ReportMessageType identifies a server-to-client report.
type ReportMessageType uint8

const (
	ExecutionReport ReportMessageType = iota
	ErrorReport
	SnapshotReport
)

// Message format constants.
const (
	baseHeaderLen     = 2
	orderPayloadLen   = 8 + 1 + 1 + 4 + 4
	cancelPayloadLen  = 8
	snapshotHeaderLen = 1 + 2 + 2
	snapshotLevelLen  = 4 + 4 + 2
	executionLen      = 1 + 8 + 4 + 8 + 4 + 4
	errorHeaderLen    = 1 + 4
)

type Message interface {
	GetType() MessageType
}

// BaseMessage carries the two-byte type header shared by every command.
type BaseMessage struct {
	TypeOf MessageType
}

func (m BaseMessage) GetType() MessageType {
	return m.TypeOf
}

// ParseMessage decodes one client command from a raw frame.
func ParseMessage(msg []byte) (Message, error) {
	if len(msg) < baseHeaderLen {
		return nil, ErrMessageTooShort
	}

	typeOf := MessageType(binary.BigEndian.Uint16(msg[0:2]))
	payload := msg[2:]
	switch typeOf {
	case Heartbeat:
		return BaseMessage{TypeOf: Heartbeat}, nil
	case NewOrder, ModifyOrder:
		return parseOrderMessage(typeOf, payload)
	case CancelOrder:
		return parseCancelOrder(payload)
	case SnapshotRequest:
		return BaseMessage{TypeOf: SnapshotRequest}, nil
	default:
		return nil, ErrInvalidMessageType
	}
}

// OrderMessage carries the parameters for a new or modified order.
type OrderMessage struct {
	BaseMessage
	OrderID  book.OrderID  // 8 bytes
	Side     book.Side     // 1 byte
	Duration book.Duration // 1 byte
	Price    book.Price    // 4 bytes
	Quantity book.Quantity // 4 bytes
}

// Order builds the validated engine order for a NewOrder command.
func (m *OrderMessage) Order() (*book.Order, error) {
	return book.NewOrder(m.OrderID, m.Side, m.Duration, m.Price, m.Quantity)
}

// Modifier builds the engine modifier for a ModifyOrder command.
func (m *OrderMessage) Modifier() book.Modifier {
	return book.Modifier{
		ID:       m.OrderID,
		Side:     m.Side,
		Price:    m.Price,
		Quantity: m.Quantity,
	}
}

func parseOrderMessage(typeOf MessageType, msg []byte) (*OrderMessage, error) {
	if len(msg) < orderPayloadLen {
		return nil, ErrMessageTooShort
	}
	m := &OrderMessage{BaseMessage: BaseMessage{TypeOf: typeOf}}
	m.OrderID = binary.BigEndian.Uint64(msg[0:8])
	m.Side = book.Side(msg[8])
	m.Duration = book.Duration(msg[9])
	m.Price = int32(binary.BigEndian.Uint32(msg[10:14]))
	m.Quantity = binary.BigEndian.Uint32(msg[14:18])
	return m, nil
}

// CancelMessage asks for the removal of one resting order.
type CancelMessage struct {
	BaseMessage
	OrderID book.OrderID // 8 bytes
}

func parseCancelOrder(msg []byte) (*CancelMessage, error) {
	if len(msg) < cancelPayloadLen {
		return nil, ErrMessageTooShort
	}
	return &CancelMessage{
		BaseMessage: BaseMessage{TypeOf: CancelOrder},
		OrderID:     binary.BigEndian.Uint64(msg[0:8]),
	}, nil
}

// SerializeOrder packs a NewOrder or ModifyOrder command frame. Used by test
// clients and kept symmetric with parseOrderMessage.
func SerializeOrder(typeOf MessageType, id book.OrderID, side book.Side, duration book.Duration, price book.Price, quantity book.Quantity) []byte {
	buf := make([]byte, baseHeaderLen+orderPayloadLen)
	binary.BigEndian.PutUint16(buf[0:2], uint16(typeOf))
	binary.BigEndian.PutUint64(buf[2:10], id)
	buf[10] = byte(side)
	buf[11] = byte(duration)
	binary.BigEndian.PutUint32(buf[12:16], uint32(price))
	binary.BigEndian.PutUint32(buf[16:20], quantity)
	return buf
}

// SerializeCancel packs a CancelOrder command frame.
func SerializeCancel(id book.OrderID) []byte {
	buf := make([]byte, baseHeaderLen+cancelPayloadLen)
	binary.BigEndian.PutUint16(buf[0:2], uint16(CancelOrder))
	binary.BigEndian.PutUint64(buf[2:10], id)
	return buf
}

// SerializeTrade packs a trade report for the wire. Both halves carry their
// own resting price; the quantity is shared.
func SerializeTrade(trade book.Trade) []byte {
	buf := make([]byte, executionLen)
	buf[0] = byte(ExecutionReport)
	binary.BigEndian.PutUint64(buf[1:9], trade.Bid.OrderID)
	binary.BigEndian.PutUint32(buf[9:13], uint32(trade.Bid.Price))
	binary.BigEndian.PutUint64(buf[13:21], trade.Ask.OrderID)
	binary.BigEndian.PutUint32(buf[21:25], uint32(trade.Ask.Price))
	binary.BigEndian.PutUint32(buf[25:29], trade.Bid.Quantity)
	return buf
}

// SerializeError packs an error report for the wire.
func SerializeError(err error) []byte {
	msg := err.Error()
	buf := make([]byte, errorHeaderLen+len(msg))
	buf[0] = byte(ErrorReport)
	binary.BigEndian.PutUint32(buf[1:5], uint32(len(msg)))
	copy(buf[5:], msg)
	return buf
}

// SerializeSnapshot packs an aggregated book view, truncated to depth levels
// per side.
func SerializeSnapshot(snap book.Snapshot, depth int) []byte {
	bids := snap.Bids
	if len(bids) > depth {
		bids = bids[:depth]
	}
	asks := snap.Asks
	if len(asks) > depth {
		asks = asks[:depth]
	}

	buf := make([]byte, snapshotHeaderLen+(len(bids)+len(asks))*snapshotLevelLen)
	buf[0] = byte(SnapshotReport)
	binary.BigEndian.PutUint16(buf[1:3], uint16(len(bids)))
	binary.BigEndian.PutUint16(buf[3:5], uint16(len(asks)))

	offset := snapshotHeaderLen
	writeLevel := func(lvl book.Level) {
		binary.BigEndian.PutUint32(buf[offset:offset+4], uint32(lvl.Price))
		binary.BigEndian.PutUint32(buf[offset+4:offset+8], lvl.Quantity)
		binary.BigEndian.PutUint16(buf[offset+8:offset+10], uint16(lvl.Orders))
		offset += snapshotLevelLen
	}
	for _, lvl := range bids {
		writeLevel(lvl)
	}
	for _, lvl := range asks {
		writeLevel(lvl)
	}
	return buf
}
