package book

import "fmt"

// TradeInfo is one side's view of an execution. Price is the resting order's
// limit price, so the two halves of a trade may report different prices.
type TradeInfo struct {
	OrderID  OrderID
	Price    Price
	Quantity Quantity
}

// Trade is a single execution between a bid and an ask. Both halves carry the
// same quantity.
type Trade struct {
	Bid TradeInfo
	Ask TradeInfo
}

func (t Trade) String() string {
	return fmt.Sprintf("bid %d@%d x%d / ask %d@%d x%d",
		t.Bid.OrderID, t.Bid.Price, t.Bid.Quantity,
		t.Ask.OrderID, t.Ask.Price, t.Ask.Quantity)
}
