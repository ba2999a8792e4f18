package book

import "github.com/rs/zerolog/log"

// match consumes crossing liquidity until the best bid no longer reaches the
// best ask or one side empties. Matching always works the ladders directly:
// the freshly submitted order is just the newest entry at its level, so the
// loop needs no special case for it.
//
// Within a crossing pair of levels, fills go oldest-first on both sides and
// each pairing executes min(bid remaining, ask remaining). Both halves of the
// emitted trade carry their own resting price, which may differ.
func (b *Book) match() ([]Trade, error) {
	var trades []Trade

	for {
		bestBid, bidOk := b.bids.MinMut()
		bestAsk, askOk := b.asks.MinMut()

		// If either side is empty, or prices don't cross, we are done.
		if !bidOk || !askOk || bestBid.price < bestAsk.price {
			break
		}

		for bestBid.orders.Len() > 0 && bestAsk.orders.Len() > 0 {
			bid := bestBid.orders.Front().Value.(*Order)
			ask := bestAsk.orders.Front().Value.(*Order)

			quantity := min(bid.Remaining, ask.Remaining)
			if err := bid.Fill(quantity); err != nil {
				return trades, err
			}
			if err := ask.Fill(quantity); err != nil {
				return trades, err
			}

			trades = append(trades, Trade{
				Bid: TradeInfo{OrderID: bid.ID, Price: bid.Price, Quantity: quantity},
				Ask: TradeInfo{OrderID: ask.ID, Price: ask.Price, Quantity: quantity},
			})
			log.Debug().
				Uint64("bid", bid.ID).
				Uint64("ask", ask.ID).
				Uint32("quantity", quantity).
				Msg("trade")

			if bid.IsFilled() {
				bestBid.orders.Remove(bestBid.orders.Front())
				delete(b.orders, bid.ID)
			}
			if ask.IsFilled() {
				bestAsk.orders.Remove(bestAsk.orders.Front())
				delete(b.orders, ask.ID)
			}
		}

		// Drop fully consumed levels and re-enter the loop on the next pair.
		if bestBid.orders.Len() == 0 {
			b.bids.Delete(bestBid)
		}
		if bestAsk.orders.Len() == 0 {
			b.asks.Delete(bestAsk)
		}
	}

	b.cancelRestingFOK()
	return trades, nil
}

// cancelRestingFOK removes any FOK order left resting after matching. The
// admission pre-check only inspects the top of the opposing ladder, so a FOK
// that outsizes the available volume partially fills and leaves a residual
// here. Ids are collected first and cancelled after the scan, so ladder
// iteration is never invalidated mid-walk.
func (b *Book) cancelRestingFOK() {
	var residuals []OrderID
	collect := func(level *priceLevel) bool {
		for e := level.orders.Front(); e != nil; e = e.Next() {
			order := e.Value.(*Order)
			if order.Duration == FOK && !order.IsFilled() {
				residuals = append(residuals, order.ID)
			}
		}
		return true
	}
	b.bids.Scan(collect)
	b.asks.Scan(collect)

	for _, id := range residuals {
		log.Debug().Uint64("id", id).Msg("cancelling fok residual")
		b.Cancel(id)
	}
}
