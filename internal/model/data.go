package model

import "tradecore/internal/model/enum"

// BookOrder is a single resting order (or synthetic level) in a book.
// For L1 feeds the OrderID is a side constant, for L2 it is derived from
// the price, for L3 it is venue-supplied.
type BookOrder struct {
	Side    enum.OrderSide
	Price   Price
	Size    Quantity
	OrderID uint64
}

// L1OrderID returns the virtual order id used for top-of-book feeds.
func L1OrderID(side enum.OrderSide) uint64 {
	return uint64(side)
}

// L2OrderID derives the synthetic order id for a price-aggregated level.
func L2OrderID(price Price) uint64 {
	return uint64(price.Raw)
}

// OrderBookDelta is one mutation of an order book.
type OrderBookDelta struct {
	InstrumentID InstrumentId
	Action       enum.BookAction
	Order        BookOrder
	Flags        uint8
	Sequence     uint64
	TsEventNs    int64
	TsInitNs     int64
}

// OrderBookDeltas is a batch of deltas sharing an instrument.
type OrderBookDeltas struct {
	InstrumentID InstrumentId
	Deltas       []OrderBookDelta
}

// QuoteTick is a top-of-book update.
type QuoteTick struct {
	InstrumentID InstrumentId
	BidPrice     Price
	AskPrice     Price
	BidSize      Quantity
	AskSize      Quantity
	TsEventNs    int64
	TsInitNs     int64
}

// ExtractPrice returns the quote price for the given price type.
func (q QuoteTick) ExtractPrice(pt enum.PriceType) Price {
	switch pt {
	case enum.PriceTypeBid:
		return q.BidPrice
	case enum.PriceTypeAsk:
		return q.AskPrice
	default:
		mid := (q.BidPrice.Raw + q.AskPrice.Raw) / 2
		return Price{Raw: mid, Precision: q.BidPrice.Precision}
	}
}

// TradeTick is a single market trade.
type TradeTick struct {
	InstrumentID  InstrumentId
	Price         Price
	Size          Quantity
	AggressorSide enum.AggressorSide
	TradeID       TradeId
	TsEventNs     int64
	TsInitNs      int64
}

// BarType identifies a bar series for an instrument.
type BarType struct {
	InstrumentID InstrumentId
	StepNs       int64
	PriceType    enum.PriceType
}

// Bar is an aggregated OHLCV record.
type Bar struct {
	Type      BarType
	Open      Price
	High      Price
	Low       Price
	Close     Price
	Volume    Quantity
	TsEventNs int64
	TsInitNs  int64
}

// InstrumentStatus is a venue market-status action for an instrument.
type InstrumentStatus struct {
	InstrumentID InstrumentId
	Action       enum.MarketStatusAction
	TsEventNs    int64
	TsInitNs     int64
}
