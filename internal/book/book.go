package book

import (
	"github.com/yanun0323/logs"

	"tradecore/internal/model"
	"tradecore/internal/model/enum"
)

// OrderBook is the two-sided book façade consumed by the matching engine.
type OrderBook struct {
	InstrumentID model.InstrumentId
	BookType     enum.BookType
	Bids         *Ladder
	Asks         *Ladder
	Sequence     uint64
	TsLastNs     int64
	UpdateCount  uint64
}

// NewOrderBook creates an empty book.
func NewOrderBook(instrumentID model.InstrumentId, bookType enum.BookType) *OrderBook {
	return &OrderBook{
		InstrumentID: instrumentID,
		BookType:     bookType,
		Bids:         NewLadder(enum.OrderSideBuy, bookType),
		Asks:         NewLadder(enum.OrderSideSell, bookType),
	}
}

// ApplyDelta applies one book mutation.
func (b *OrderBook) ApplyDelta(delta model.OrderBookDelta) {
	switch delta.Action {
	case enum.BookActionAdd:
		b.ladder(delta.Order.Side).Add(delta.Order)
	case enum.BookActionUpdate:
		b.ladder(delta.Order.Side).Update(delta.Order)
	case enum.BookActionDelete:
		b.ladder(delta.Order.Side).Delete(delta.Order)
	case enum.BookActionClear:
		b.Clear()
	default:
		logs.Warnf("order book delta ignored: unknown action %d", delta.Action)
		return
	}
	b.Sequence = delta.Sequence
	b.TsLastNs = delta.TsEventNs
	b.UpdateCount++
}

// ApplyDeltas applies a batch of deltas in order.
func (b *OrderBook) ApplyDeltas(deltas model.OrderBookDeltas) {
	for _, d := range deltas.Deltas {
		b.ApplyDelta(d)
	}
}

// ApplyQuote updates an L1 book from a top-of-book quote.
func (b *OrderBook) ApplyQuote(quote model.QuoteTick) {
	if b.BookType != enum.BookTypeL1 {
		logs.Warnf("quote ignored for %s book %s", b.BookType, b.InstrumentID)
		return
	}
	b.Bids.Add(model.BookOrder{
		Side:    enum.OrderSideBuy,
		Price:   quote.BidPrice,
		Size:    quote.BidSize,
		OrderID: model.L1OrderID(enum.OrderSideBuy),
	})
	b.Asks.Add(model.BookOrder{
		Side:    enum.OrderSideSell,
		Price:   quote.AskPrice,
		Size:    quote.AskSize,
		OrderID: model.L1OrderID(enum.OrderSideSell),
	})
	b.TsLastNs = quote.TsEventNs
	b.UpdateCount++
}

// ApplyTrade updates an L1 book from a trade print, collapsing both sides
// onto the traded price.
func (b *OrderBook) ApplyTrade(trade model.TradeTick) {
	if b.BookType != enum.BookTypeL1 {
		logs.Warnf("trade ignored for %s book %s", b.BookType, b.InstrumentID)
		return
	}
	b.Bids.Add(model.BookOrder{
		Side:    enum.OrderSideBuy,
		Price:   trade.Price,
		Size:    trade.Size,
		OrderID: model.L1OrderID(enum.OrderSideBuy),
	})
	b.Asks.Add(model.BookOrder{
		Side:    enum.OrderSideSell,
		Price:   trade.Price,
		Size:    trade.Size,
		OrderID: model.L1OrderID(enum.OrderSideSell),
	})
	b.TsLastNs = trade.TsEventNs
	b.UpdateCount++
}

// Clear empties both sides.
func (b *OrderBook) Clear() {
	b.Bids.Clear()
	b.Asks.Clear()
}

// BestBidPrice returns the best bid, if any.
func (b *OrderBook) BestBidPrice() (model.Price, bool) {
	if top := b.Bids.Top(); top != nil {
		return top.Price.Value, true
	}
	return model.Price{}, false
}

// BestAskPrice returns the best ask, if any.
func (b *OrderBook) BestAskPrice() (model.Price, bool) {
	if top := b.Asks.Top(); top != nil {
		return top.Price.Value, true
	}
	return model.Price{}, false
}

// BestBidSize returns the size resting at the best bid.
func (b *OrderBook) BestBidSize() (model.Quantity, bool) {
	if top := b.Bids.Top(); top != nil {
		return top.SizeTotal(), true
	}
	return model.Quantity{}, false
}

// BestAskSize returns the size resting at the best ask.
func (b *OrderBook) BestAskSize() (model.Quantity, bool) {
	if top := b.Asks.Top(); top != nil {
		return top.SizeTotal(), true
	}
	return model.Quantity{}, false
}

// Midpoint returns the mid price when both sides are present.
func (b *OrderBook) Midpoint() (model.Price, bool) {
	bid, okBid := b.BestBidPrice()
	ask, okAsk := b.BestAskPrice()
	if !okBid || !okAsk {
		return model.Price{}, false
	}
	return model.Price{Raw: (bid.Raw + ask.Raw) / 2, Precision: bid.Precision}, true
}

// SimulateFills simulates an aggressive order against the opposite ladder.
func (b *OrderBook) SimulateFills(order model.BookOrder) []Fill {
	switch order.Side {
	case enum.OrderSideBuy:
		return b.Asks.SimulateFills(order)
	case enum.OrderSideSell:
		return b.Bids.SimulateFills(order)
	default:
		return nil
	}
}

// HasOppositeLiquidity reports whether a market order of the given side
// would find any resting liquidity.
func (b *OrderBook) HasOppositeLiquidity(side enum.OrderSide) bool {
	switch side {
	case enum.OrderSideBuy:
		return !b.Asks.IsEmpty()
	case enum.OrderSideSell:
		return !b.Bids.IsEmpty()
	default:
		return false
	}
}

func (b *OrderBook) ladder(side enum.OrderSide) *Ladder {
	if side == enum.OrderSideBuy {
		return b.Bids
	}
	return b.Asks
}
