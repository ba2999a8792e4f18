package net

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skoll/internal/book"
)

func TestParseMessage_NewOrder(t *testing.T) {
	frame := SerializeOrder(NewOrder, 42, book.Sell, book.FOK, 105, 7)

	msg, err := ParseMessage(frame)
	require.NoError(t, err)

	order, ok := msg.(*OrderMessage)
	require.True(t, ok)
	assert.Equal(t, NewOrder, order.GetType())
	assert.Equal(t, book.OrderID(42), order.OrderID)
	assert.Equal(t, book.Sell, order.Side)
	assert.Equal(t, book.FOK, order.Duration)
	assert.Equal(t, book.Price(105), order.Price)
	assert.Equal(t, book.Quantity(7), order.Quantity)

	built, err := order.Order()
	require.NoError(t, err)
	assert.Equal(t, book.Quantity(7), built.Remaining)
}

func TestParseMessage_Cancel(t *testing.T) {
	msg, err := ParseMessage(SerializeCancel(99))
	require.NoError(t, err)

	cancel, ok := msg.(*CancelMessage)
	require.True(t, ok)
	assert.Equal(t, book.OrderID(99), cancel.OrderID)
}

func TestParseMessage_Truncated(t *testing.T) {
	_, err := ParseMessage([]byte{0x00})
	assert.ErrorIs(t, err, ErrMessageTooShort)

	frame := SerializeOrder(NewOrder, 1, book.Buy, book.GTC, 10, 1)
	_, err = ParseMessage(frame[:6])
	assert.ErrorIs(t, err, ErrMessageTooShort)
}

func TestParseMessage_UnknownType(t *testing.T) {
	frame := make([]byte, 2)
	binary.BigEndian.PutUint16(frame, 0xffff)
	_, err := ParseMessage(frame)
	assert.ErrorIs(t, err, ErrInvalidMessageType)
}

func TestSerializeTrade(t *testing.T) {
	frame := SerializeTrade(book.Trade{
		Bid: book.TradeInfo{OrderID: 1, Price: 101, Quantity: 4},
		Ask: book.TradeInfo{OrderID: 2, Price: 100, Quantity: 4},
	})

	require.Len(t, frame, executionLen)
	assert.Equal(t, byte(ExecutionReport), frame[0])
	assert.Equal(t, uint64(1), binary.BigEndian.Uint64(frame[1:9]))
	assert.Equal(t, uint32(101), binary.BigEndian.Uint32(frame[9:13]))
	assert.Equal(t, uint64(2), binary.BigEndian.Uint64(frame[13:21]))
	assert.Equal(t, uint32(100), binary.BigEndian.Uint32(frame[21:25]))
	assert.Equal(t, uint32(4), binary.BigEndian.Uint32(frame[25:29]))
}

func TestSerializeSnapshot_TruncatesToDepth(t *testing.T) {
	b := book.New()
	for i, price := range []book.Price{100, 99, 98} {
		order, err := book.NewOrder(book.OrderID(i+1), book.Buy, book.GTC, price, 10)
		require.NoError(t, err)
		_, err = b.Submit(order)
		require.NoError(t, err)
	}

	frame := SerializeSnapshot(b.Snapshot(), 2)
	assert.Equal(t, byte(SnapshotReport), frame[0])
	assert.Equal(t, uint16(2), binary.BigEndian.Uint16(frame[1:3]))
	assert.Equal(t, uint16(0), binary.BigEndian.Uint16(frame[3:5]))

	// Best bid first.
	assert.Equal(t, uint32(100), binary.BigEndian.Uint32(frame[5:9]))
	assert.Equal(t, uint32(10), binary.BigEndian.Uint32(frame[9:13]))
}
