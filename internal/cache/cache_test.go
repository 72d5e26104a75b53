package cache

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradecore/internal/model"
	"tradecore/internal/model/enum"
	"tradecore/internal/order"
)

var instrument = model.NewInstrumentId("ETHUSDT", "SIM")

func newOrder(id model.ClientOrderId, side enum.OrderSide) *order.Order {
	return order.NewBuilder(enum.OrderTypeLimit).
		Strategy("S-001").
		Instrument(instrument).
		ClientOrderID(id).
		Side(side).
		Quantity(model.QuantityFromFloat(1, 0)).
		Price(model.PriceFromFloat(100.00, 2)).
		Build()
}

func accept(t *testing.T, o *order.Order, venueID model.VenueOrderId) {
	t.Helper()
	common := order.Common{
		EventID:       uuid.New(),
		StrategyID:    o.StrategyID,
		InstrumentID:  o.InstrumentID,
		ClientOrderID: o.ClientOrderID,
		VenueOrderID:  venueID,
	}
	require.NoError(t, o.Apply(order.Submitted{Common: common}))
	require.NoError(t, o.Apply(order.Accepted{Common: common}))
}

func TestOrderLookupAndIndexes(t *testing.T) {
	c := New()
	o := newOrder("O-1", enum.OrderSideBuy)
	c.AddOrder(o)

	got, ok := c.Order("O-1")
	require.True(t, ok)
	assert.Same(t, o, got)

	accept(t, o, "V-1")
	c.UpdateOrder(o)

	byVenue, ok := c.OrderForVenueID("V-1")
	require.True(t, ok)
	assert.Same(t, o, byVenue)

	assert.Len(t, c.Orders(instrument), 1)
	assert.Len(t, c.Orders(model.InstrumentId{}), 1)
	assert.Len(t, c.OrdersForStrategy("S-001"), 1)
	assert.Empty(t, c.Orders(model.NewInstrumentId("BTCUSDT", "SIM")))
}

func TestOrdersOpenFiltersBySide(t *testing.T) {
	c := New()
	buy := newOrder("O-1", enum.OrderSideBuy)
	sell := newOrder("O-2", enum.OrderSideSell)
	c.AddOrder(buy)
	c.AddOrder(sell)
	accept(t, buy, "V-1")
	accept(t, sell, "V-2")

	assert.Len(t, c.OrdersOpen(instrument, enum.NoOrderSide), 2)
	open := c.OrdersOpen(instrument, enum.OrderSideBuy)
	require.Len(t, open, 1)
	assert.Equal(t, model.ClientOrderId("O-1"), open[0].ClientOrderID)
}

func TestOrdersEmulated(t *testing.T) {
	c := New()
	o := order.NewBuilder(enum.OrderTypeStopMarket).
		Strategy("S-001").
		Instrument(instrument).
		ClientOrderID("O-3").
		Side(enum.OrderSideBuy).
		Quantity(model.QuantityFromFloat(1, 0)).
		TriggerPrice(model.PriceFromFloat(110.00, 2)).
		EmulationTrigger(enum.TriggerTypeBidAsk).
		Build()
	c.AddOrder(o)
	require.NoError(t, o.Apply(order.Emulated{Common: order.Common{EventID: uuid.New()}}))

	emulated := c.OrdersEmulated()
	require.Len(t, emulated, 1)
	assert.Equal(t, model.ClientOrderId("O-3"), emulated[0].ClientOrderID)
}

func TestNettingPositionAndExposure(t *testing.T) {
	c := New()
	c.AddPosition(model.Position{
		ID:           "P-1",
		InstrumentID: instrument,
		StrategyID:   "S-001",
		Side:         enum.PositionSideLong,
		Quantity:     model.QuantityFromFloat(5, 0),
	})

	p, ok := c.NettingPosition(instrument, "S-001")
	require.True(t, ok)
	assert.Equal(t, model.PositionId("P-1"), p.ID)

	_, ok = c.NettingPosition(instrument, "S-002")
	assert.False(t, ok)

	assert.True(t, c.IsNetLong(instrument))
	assert.False(t, c.IsNetShort(instrument))

	c.AddPosition(model.Position{
		ID:           "P-2",
		InstrumentID: instrument,
		StrategyID:   "S-002",
		Side:         enum.PositionSideShort,
		Quantity:     model.QuantityFromFloat(8, 0),
	})
	assert.True(t, c.IsNetShort(instrument))
}

func TestLatestMarketData(t *testing.T) {
	c := New()
	c.AddQuote(model.QuoteTick{
		InstrumentID: instrument,
		BidPrice:     model.PriceFromFloat(99.00, 2),
		AskPrice:     model.PriceFromFloat(101.00, 2),
	})
	c.AddTrade(model.TradeTick{
		InstrumentID: instrument,
		Price:        model.PriceFromFloat(100.00, 2),
	})

	bid, ok := c.Price(instrument, enum.PriceTypeBid)
	require.True(t, ok)
	assert.Equal(t, int64(9900), bid.Raw)

	mid, ok := c.Price(instrument, enum.PriceTypeMid)
	require.True(t, ok)
	assert.Equal(t, int64(10000), mid.Raw)

	last, ok := c.Price(instrument, enum.PriceTypeLast)
	require.True(t, ok)
	assert.Equal(t, int64(10000), last.Raw)

	_, ok = c.Price(model.NewInstrumentId("BTCUSDT", "SIM"), enum.PriceTypeLast)
	assert.False(t, ok)
}

func TestAccountAndInstrument(t *testing.T) {
	c := New()
	_, ok := c.Instrument(instrument)
	assert.False(t, ok)

	c.AddInstrument(model.Instrument{ID: instrument})
	inst, ok := c.Instrument(instrument)
	require.True(t, ok)
	assert.Equal(t, instrument, inst.ID)

	acct := model.NewAccount("SIM-001", "SIM", enum.AccountTypeCash, model.AccountBalance{
		Currency: "USDT",
		Total:    decimal.New(1000, 0),
		Free:     decimal.New(1000, 0),
	})
	c.AddAccount(acct)
	got, ok := c.Account("SIM")
	require.True(t, ok)
	assert.Same(t, acct, got)
}
