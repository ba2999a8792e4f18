package book

import (
	"container/list"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/btree"
)

// priceLevel owns the FIFO of orders resting at one price on one side. The
// front of the list is the oldest order; new submissions append at the back.
// A list keeps cursors stable across unrelated inserts and erases.
type priceLevel struct {
	price  Price
	orders *list.List // of *Order
}

func newPriceLevel(price Price) *priceLevel {
	return &priceLevel{price: price, orders: list.New()}
}

// quantity sums the remaining quantity across the level's FIFO.
func (lvl *priceLevel) quantity() Quantity {
	var total Quantity
	for e := lvl.orders.Front(); e != nil; e = e.Next() {
		total += e.Value.(*Order).Remaining
	}
	return total
}

type priceLevels = btree.BTreeG[*priceLevel]

// orderEntry links an order to its exact position in its level's FIFO, so a
// cancel never has to walk the queue.
type orderEntry struct {
	order *Order
	level *priceLevel
	elem  *list.Element
}

// Book is a single-instrument limit order book with price-time priority
// matching. It is not safe for concurrent use; callers that need concurrency
// must serialize commands onto one goroutine.
type Book struct {
	// Price levels, each holding orders sorted by time of arrival.
	bids *priceLevels
	asks *priceLevels

	// Fast lookup from order id to its order and queue position.
	orders map[OrderID]orderEntry
}

func New() *Book {
	// Sorted greatest first.
	bids := btree.NewBTreeG(func(a, b *priceLevel) bool {
		return a.price > b.price
	})
	// Sorted least first.
	asks := btree.NewBTreeG(func(a, b *priceLevel) bool {
		return a.price < b.price
	})
	return &Book{
		bids:   bids,
		asks:   asks,
		orders: make(map[OrderID]orderEntry),
	}
}

// Size returns the number of live orders across both sides.
func (b *Book) Size() int {
	return len(b.orders)
}

// Exists reports whether an order with the given id is resting in the book.
func (b *Book) Exists(id OrderID) bool {
	_, ok := b.orders[id]
	return ok
}

// side returns the ladder a resting order of the given side belongs to.
func (b *Book) side(side Side) *priceLevels {
	if side == Buy {
		return b.bids
	}
	return b.asks
}

// canMatch reports whether an order at the given side and price could cross
// the top of the opposing ladder. This is the FOK admission pre-check: it is
// necessary but not sufficient, since the top level may hold less volume than
// the order wants.
func (b *Book) canMatch(side Side, price Price) bool {
	if side == Buy {
		bestAsk, ok := b.asks.Min()
		return ok && price >= bestAsk.price
	}
	bestBid, ok := b.bids.Min()
	return ok && price <= bestBid.price
}

// Submit adds an order to the book and runs matching. It returns the trades
// the submission generated, possibly none. Duplicate ids and FOK orders that
// cannot cross at all are rejected without touching the book.
func (b *Book) Submit(order *Order) ([]Trade, error) {
	if _, ok := b.orders[order.ID]; ok {
		log.Debug().Uint64("id", order.ID).Msg("duplicate order id rejected")
		return nil, nil
	}
	if order.Duration == FOK && !b.canMatch(order.Side, order.Price) {
		log.Debug().
			Uint64("id", order.ID).
			Stringer("side", order.Side).
			Int32("price", order.Price).
			Msg("fok order cannot cross, rejected")
		return nil, nil
	}

	levels := b.side(order.Side)
	level, ok := levels.GetMut(&priceLevel{price: order.Price})
	if !ok {
		level = newPriceLevel(order.Price)
		levels.Set(level)
	}
	elem := level.orders.PushBack(order)
	b.orders[order.ID] = orderEntry{order: order, level: level, elem: elem}

	log.Debug().
		Uint64("id", order.ID).
		Stringer("side", order.Side).
		Stringer("duration", order.Duration).
		Int32("price", order.Price).
		Uint32("quantity", order.Remaining).
		Msg("order resting, matching")
	return b.match()
}

// Cancel removes the identified order from the book. Unknown ids are a
// silent no-op.
func (b *Book) Cancel(id OrderID) {
	entry, ok := b.orders[id]
	if !ok {
		return
	}
	delete(b.orders, id)

	entry.level.orders.Remove(entry.elem)
	if entry.level.orders.Len() == 0 {
		b.side(entry.order.Side).Delete(entry.level)
	}

	log.Debug().
		Uint64("id", id).
		Int32("price", entry.order.Price).
		Uint32("remaining", entry.order.Remaining).
		Msg("order cancelled")
}

// Modify replaces an existing order with new side, price, and quantity,
// preserving the original order's duration. The replacement joins the back of
// its new level, so time priority is forfeit. Unknown ids return no trades.
func (b *Book) Modify(mod Modifier) ([]Trade, error) {
	entry, ok := b.orders[mod.ID]
	if !ok {
		return nil, nil
	}

	duration := entry.order.Duration
	b.Cancel(mod.ID)

	replacement, err := NewOrder(mod.ID, mod.Side, duration, mod.Price, mod.Quantity)
	if err != nil {
		return nil, err
	}
	return b.Submit(replacement)
}
