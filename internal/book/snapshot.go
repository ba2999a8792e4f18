package book

// Level is one aggregated price level in a snapshot.
type Level struct {
	Price    Price
	Quantity Quantity
	Orders   int
}

// Snapshot is an aggregated view of the book at a point in time. Bids are in
// descending price order, asks ascending. The snapshot owns its slices and is
// unaffected by later mutation of the book.
type Snapshot struct {
	Bids []Level
	Asks []Level
}

// Snapshot walks both ladders in their natural order and sums the remaining
// quantity per level.
func (b *Book) Snapshot() Snapshot {
	flatten := func(levels *priceLevels) []Level {
		out := make([]Level, 0, levels.Len())
		levels.Scan(func(lvl *priceLevel) bool {
			out = append(out, Level{
				Price:    lvl.price,
				Quantity: lvl.quantity(),
				Orders:   lvl.orders.Len(),
			})
			return true
		})
		return out
	}
	return Snapshot{
		Bids: flatten(b.bids),
		Asks: flatten(b.asks),
	}
}

// BestBid returns the highest resting bid price.
func (b *Book) BestBid() (Price, bool) {
	lvl, ok := b.bids.Min()
	if !ok {
		return 0, false
	}
	return lvl.price, true
}

// BestAsk returns the lowest resting ask price.
func (b *Book) BestAsk() (Price, bool) {
	lvl, ok := b.asks.Min()
	if !ok {
		return 0, false
	}
	return lvl.price, true
}
