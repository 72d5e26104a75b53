package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradecore/internal/model"
	"tradecore/internal/model/enum"
)

var testInstrument = model.NewInstrumentId("BTCUSDT", "SIM")

func TestApplyQuoteUpdatesBothSides(t *testing.T) {
	b := NewOrderBook(testInstrument, enum.BookTypeL1)

	b.ApplyQuote(model.QuoteTick{
		InstrumentID: testInstrument,
		BidPrice:     px(100.00),
		AskPrice:     px(100.10),
		BidSize:      qty(5),
		AskSize:      qty(7),
		TsEventNs:    1,
	})

	bid, ok := b.BestBidPrice()
	require.True(t, ok)
	assert.Equal(t, px(100.00), bid)
	ask, ok := b.BestAskPrice()
	require.True(t, ok)
	assert.Equal(t, px(100.10), ask)

	// A moved quote must fully replace the old top of book.
	b.ApplyQuote(model.QuoteTick{
		InstrumentID: testInstrument,
		BidPrice:     px(101.00),
		AskPrice:     px(101.10),
		BidSize:      qty(3),
		AskSize:      qty(4),
		TsEventNs:    2,
	})

	assert.Equal(t, 1, b.Bids.Len())
	assert.Equal(t, 1, b.Asks.Len())
	bid, _ = b.BestBidPrice()
	assert.Equal(t, px(101.00), bid)
}

func TestApplyTradeCollapsesBook(t *testing.T) {
	b := NewOrderBook(testInstrument, enum.BookTypeL1)

	b.ApplyTrade(model.TradeTick{
		InstrumentID: testInstrument,
		Price:        px(100.05),
		Size:         qty(2),
		TsEventNs:    1,
	})

	bid, _ := b.BestBidPrice()
	ask, _ := b.BestAskPrice()
	assert.Equal(t, px(100.05), bid)
	assert.Equal(t, px(100.05), ask)
}

func TestApplyDeltasL2(t *testing.T) {
	b := NewOrderBook(testInstrument, enum.BookTypeL2)

	add := func(side enum.OrderSide, price float64, size float64) model.OrderBookDelta {
		p := px(price)
		return model.OrderBookDelta{
			InstrumentID: testInstrument,
			Action:       enum.BookActionAdd,
			Order: model.BookOrder{
				Side: side, Price: p, Size: model.QuantityFromFloat(size, 0),
				OrderID: model.L2OrderID(p),
			},
		}
	}

	b.ApplyDeltas(model.OrderBookDeltas{
		InstrumentID: testInstrument,
		Deltas: []model.OrderBookDelta{
			add(enum.OrderSideBuy, 100.00, 10),
			add(enum.OrderSideBuy, 99.00, 10),
			add(enum.OrderSideSell, 100.10, 10),
		},
	})

	assert.Equal(t, 2, b.Bids.Len())
	assert.Equal(t, 1, b.Asks.Len())

	mid, ok := b.Midpoint()
	require.True(t, ok)
	assert.Equal(t, px(100.05), mid)
}

func TestSimulateFillsUsesOppositeLadder(t *testing.T) {
	b := NewOrderBook(testInstrument, enum.BookTypeL2)
	askPx := px(100.10)
	b.Asks.Add(model.BookOrder{
		Side: enum.OrderSideSell, Price: askPx, Size: qty(10), OrderID: model.L2OrderID(askPx),
	})

	fills := b.SimulateFills(model.BookOrder{
		Side: enum.OrderSideBuy, Price: model.PriceMax(2), Size: qty(4), OrderID: 99,
	})

	require.Len(t, fills, 1)
	assert.Equal(t, askPx, fills[0].Price)
	assert.Equal(t, qty(4), fills[0].Size)
	assert.True(t, b.HasOppositeLiquidity(enum.OrderSideBuy))
	assert.False(t, b.HasOppositeLiquidity(enum.OrderSideSell))
}
