package emulator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradecore/internal/bus"
	"tradecore/internal/cache"
	"tradecore/internal/clock"
	"tradecore/internal/command"
	"tradecore/internal/model"
	"tradecore/internal/model/enum"
	"tradecore/internal/order"
)

var instrument = model.NewInstrumentId("ETHUSDT", "SIM")

type harness struct {
	emulator *Emulator
	cache    *cache.Cache
	bus      *bus.Bus
	clock    *clock.TestClock

	execCommands []command.Command
	riskCommands []command.Command
	orderEvents  []order.Event
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		cache: cache.New(),
		bus:   bus.New(),
		clock: clock.NewTestClock(1_000_000),
	}
	h.cache.AddInstrument(model.Instrument{
		ID:             instrument,
		PricePrecision: 2,
		SizePrecision:  0,
		PriceIncrement: model.PriceFromFloat(0.01, 2),
	})
	h.bus.Register(EndpointExecExecute, func(msg any) {
		h.execCommands = append(h.execCommands, msg.(command.Command))
	})
	h.bus.Register(EndpointRiskExecute, func(msg any) {
		h.riskCommands = append(h.riskCommands, msg.(command.Command))
	})
	h.bus.Register(EndpointExecProcess, func(any) {})
	h.bus.Subscribe("events.order.*", func(msg any) {
		h.orderEvents = append(h.orderEvents, msg.(order.Event))
	})
	h.emulator = New(h.clock, h.cache, h.bus)
	h.emulator.Start()
	return h
}

func (h *harness) submit(o *order.Order) command.SubmitOrder {
	cmd := command.SubmitOrder{
		Common: command.New(o.TraderID, o.StrategyID, o.InstrumentID, h.clock.TimestampNs()),
		Order:  o,
	}
	h.bus.Send(EndpointEmulatorExecute, command.Command(cmd))
	return cmd
}

func (h *harness) eventKinds() []order.Kind {
	kinds := make([]order.Kind, 0, len(h.orderEvents))
	for _, ev := range h.orderEvents {
		kinds = append(kinds, ev.Kind())
	}
	return kinds
}

func stopMarket(id model.ClientOrderId, side enum.OrderSide, trigger float64) *order.Order {
	return order.NewBuilder(enum.OrderTypeStopMarket).
		Strategy("S-001").
		Instrument(instrument).
		ClientOrderID(id).
		Side(side).
		Quantity(model.QuantityFromFloat(1, 0)).
		TriggerPrice(model.PriceFromFloat(trigger, 2)).
		TriggerType(enum.TriggerTypeBidAsk).
		EmulationTrigger(enum.TriggerTypeBidAsk).
		Build()
}

func quote(bid, ask float64) model.QuoteTick {
	return model.QuoteTick{
		InstrumentID: instrument,
		BidPrice:     model.PriceFromFloat(bid, 2),
		AskPrice:     model.PriceFromFloat(ask, 2),
		BidSize:      model.QuantityFromFloat(10, 0),
		AskSize:      model.QuantityFromFloat(10, 0),
	}
}

func TestSubmitHoldsAndEmulates(t *testing.T) {
	h := newHarness(t)
	o := stopMarket("O-1", enum.OrderSideBuy, 110.00)
	h.submit(o)

	assert.Equal(t, enum.OrderStatusEmulated, o.Status)
	assert.Equal(t, []order.Kind{order.KindEmulated}, h.eventKinds())
	assert.Empty(t, h.execCommands)

	core, ok := h.emulator.Core(instrument)
	require.True(t, ok)
	assert.True(t, core.OrderExists("O-1"))
	assert.Equal(t, 1, h.emulator.Manager().SubmitCommandCount())
}

func TestBuyStopTriggersOnAskAndReleasesMarket(t *testing.T) {
	h := newHarness(t)
	o := stopMarket("O-1", enum.OrderSideBuy, 110.00)
	h.submit(o)

	// below the trigger, nothing happens
	h.emulator.OnQuote(quote(109.00, 109.50))
	assert.Empty(t, h.execCommands)

	// ask reaches the trigger
	h.emulator.OnQuote(quote(109.90, 110.00))

	require.Len(t, h.execCommands, 1)
	released := h.execCommands[0].(command.SubmitOrder)
	assert.Equal(t, enum.OrderTypeMarket, released.Order.Type)
	assert.Equal(t, model.ClientOrderId("O-1"), released.Order.ClientOrderID)
	assert.Equal(t, enum.OrderStatusReleased, released.Order.Status)

	kinds := h.eventKinds()
	require.Len(t, kinds, 2)
	assert.Equal(t, order.KindEmulated, kinds[0])
	assert.Equal(t, order.KindReleased, kinds[1])
	rel := h.orderEvents[1].(order.Released)
	assert.Equal(t, int64(11000), rel.ReleasedPrice.Raw)

	// the held order is gone and the submit command consumed
	core, _ := h.emulator.Core(instrument)
	assert.False(t, core.OrderExists("O-1"))
	assert.Equal(t, 0, h.emulator.Manager().SubmitCommandCount())

	cached, ok := h.cache.Order("O-1")
	require.True(t, ok)
	assert.Same(t, released.Order, cached)
}

func TestEmulatedLimitReleasesAsMarketWhenMarketable(t *testing.T) {
	h := newHarness(t)
	o := order.NewBuilder(enum.OrderTypeLimit).
		Strategy("S-001").
		Instrument(instrument).
		ClientOrderID("L-1").
		Side(enum.OrderSideBuy).
		Quantity(model.QuantityFromFloat(1, 0)).
		Price(model.PriceFromFloat(100.00, 2)).
		EmulationTrigger(enum.TriggerTypeBidAsk).
		Build()
	h.submit(o)

	h.emulator.OnQuote(quote(99.00, 99.50))
	require.Len(t, h.execCommands, 1)
	released := h.execCommands[0].(command.SubmitOrder)
	assert.Equal(t, enum.OrderTypeMarket, released.Order.Type)
}

func TestStopLimitReleasesLimitLeg(t *testing.T) {
	h := newHarness(t)
	o := order.NewBuilder(enum.OrderTypeStopLimit).
		Strategy("S-001").
		Instrument(instrument).
		ClientOrderID("SL-1").
		Side(enum.OrderSideSell).
		Quantity(model.QuantityFromFloat(1, 0)).
		Price(model.PriceFromFloat(94.00, 2)).
		TriggerPrice(model.PriceFromFloat(95.00, 2)).
		EmulationTrigger(enum.TriggerTypeBidAsk).
		Build()
	h.submit(o)

	// bid falls to the trigger
	h.emulator.OnQuote(quote(95.00, 95.50))

	require.Len(t, h.execCommands, 1)
	released := h.execCommands[0].(command.SubmitOrder)
	assert.Equal(t, enum.OrderTypeLimit, released.Order.Type)
	require.NotNil(t, released.Order.Price)
	assert.Equal(t, int64(9400), released.Order.Price.Raw)
}

func TestUnsupportedEmulationTriggerCanceled(t *testing.T) {
	h := newHarness(t)
	o := stopMarket("O-1", enum.OrderSideBuy, 110.00)
	o.EmulationTrigger = enum.TriggerTypeMidPoint
	h.submit(o)

	assert.Equal(t, enum.OrderStatusCanceled, o.Status)
	assert.Equal(t, []order.Kind{order.KindCanceled}, h.eventKinds())
	assert.Empty(t, h.execCommands)
	assert.Equal(t, 0, h.emulator.Manager().SubmitCommandCount())
}

func TestReleasedPriceTracksCrossingAsk(t *testing.T) {
	h := newHarness(t)
	o := stopMarket("O-1", enum.OrderSideBuy, 110.00)
	h.submit(o)

	// the market gaps through the trigger
	h.emulator.OnQuote(quote(110.40, 110.50))

	require.Len(t, h.execCommands, 1)
	rel := h.orderEvents[len(h.orderEvents)-1].(order.Released)
	assert.Equal(t, int64(11050), rel.ReleasedPrice.Raw)
}

func TestReleaseWaitsForOppositeSidePrice(t *testing.T) {
	h := newHarness(t)
	o := stopMarket("O-1", enum.OrderSideBuy, 110.00)
	h.submit(o)

	// nothing on the ask side yet, so there is nothing to price against
	h.emulator.fillMarketOrder(o)
	assert.Empty(t, h.execCommands)
	assert.Equal(t, enum.OrderStatusEmulated, o.Status)
	assert.Equal(t, 1, h.emulator.Manager().SubmitCommandCount())

	// the next quote completes the release
	h.emulator.OnQuote(quote(110.40, 110.50))
	require.Len(t, h.execCommands, 1)
	assert.Equal(t, 0, h.emulator.Manager().SubmitCommandCount())
}

func TestMarketableOnArrivalReleasesWithoutHolding(t *testing.T) {
	h := newHarness(t)
	h.emulator.ensureCore(instrument)
	h.emulator.OnQuote(quote(119.90, 120.00))

	o := stopMarket("O-1", enum.OrderSideBuy, 110.00)
	h.submit(o)

	require.Len(t, h.execCommands, 1)
	assert.Equal(t, []order.Kind{order.KindReleased}, h.eventKinds())
	rel := h.orderEvents[0].(order.Released)
	assert.Equal(t, int64(12000), rel.ReleasedPrice.Raw)

	core, _ := h.emulator.Core(instrument)
	assert.False(t, core.OrderExists("O-1"))
	assert.Equal(t, 0, h.emulator.Manager().SubmitCommandCount())
}

func TestCancelHeldOrder(t *testing.T) {
	h := newHarness(t)
	o := stopMarket("O-1", enum.OrderSideBuy, 110.00)
	h.submit(o)

	h.emulator.Execute(command.CancelOrder{
		Common:        command.New(o.TraderID, o.StrategyID, instrument, h.clock.TimestampNs()),
		ClientOrderID: "O-1",
	})

	assert.Equal(t, enum.OrderStatusCanceled, o.Status)
	core, _ := h.emulator.Core(instrument)
	assert.False(t, core.OrderExists("O-1"))
	assert.Equal(t, 0, h.emulator.Manager().SubmitCommandCount())

	// triggering afterwards does nothing
	h.emulator.OnQuote(quote(109.90, 110.00))
	assert.Empty(t, h.execCommands)
}

func TestModifyHeldOrderTrigger(t *testing.T) {
	h := newHarness(t)
	o := stopMarket("O-1", enum.OrderSideBuy, 110.00)
	h.submit(o)

	newTrigger := model.PriceFromFloat(112.00, 2)
	h.emulator.Execute(command.ModifyOrder{
		Common:        command.New(o.TraderID, o.StrategyID, instrument, h.clock.TimestampNs()),
		ClientOrderID: "O-1",
		TriggerPrice:  &newTrigger,
	})

	require.NotNil(t, o.TriggerPrice)
	assert.Equal(t, int64(11200), o.TriggerPrice.Raw)

	// old trigger level no longer fires
	h.emulator.OnQuote(quote(109.90, 110.00))
	assert.Empty(t, h.execCommands)

	h.emulator.OnQuote(quote(111.90, 112.00))
	assert.Len(t, h.execCommands, 1)
}

func TestTrailingStopRatchetsThenTriggers(t *testing.T) {
	h := newHarness(t)
	o := order.NewBuilder(enum.OrderTypeTrailingStopMarket).
		Strategy("S-001").
		Instrument(instrument).
		ClientOrderID("T-1").
		Side(enum.OrderSideSell).
		Quantity(model.QuantityFromFloat(1, 0)).
		TriggerType(enum.TriggerTypeBidAsk).
		TrailingOffset(decimal.New(2, 0), enum.TrailingOffsetTypePrice).
		EmulationTrigger(enum.TriggerTypeBidAsk).
		Build()

	// market first, so the submit can seed the trail 2 below the bid
	h.emulator.ensureCore(instrument)
	h.emulator.OnQuote(quote(100.00, 100.50))
	h.submit(o)
	require.NotNil(t, o.TriggerPrice)
	assert.Equal(t, int64(9800), o.TriggerPrice.Raw)

	// rally ratchets the trail up
	h.emulator.OnQuote(quote(105.00, 105.50))
	assert.Equal(t, int64(10300), o.TriggerPrice.Raw)

	// pullback does not loosen it
	h.emulator.OnQuote(quote(104.00, 104.50))
	assert.Equal(t, int64(10300), o.TriggerPrice.Raw)

	// bid falls to the trail, order releases as market
	h.emulator.OnQuote(quote(103.00, 103.50))
	require.Len(t, h.execCommands, 1)
	assert.Equal(t, enum.OrderTypeMarket, h.execCommands[0].(command.SubmitOrder).Order.Type)
}

func TestTrailingSubmitWithoutMarketCanceled(t *testing.T) {
	h := newHarness(t)
	o := order.NewBuilder(enum.OrderTypeTrailingStopMarket).
		Strategy("S-001").
		Instrument(instrument).
		ClientOrderID("T-1").
		Side(enum.OrderSideSell).
		Quantity(model.QuantityFromFloat(1, 0)).
		TriggerType(enum.TriggerTypeBidAsk).
		TrailingOffset(decimal.New(2, 0), enum.TrailingOffsetTypePrice).
		EmulationTrigger(enum.TriggerTypeBidAsk).
		Build()
	h.submit(o)

	// no market to compute the initial trigger from
	assert.Equal(t, enum.OrderStatusCanceled, o.Status)
	assert.Empty(t, h.execCommands)
	assert.Equal(t, 0, h.emulator.Manager().SubmitCommandCount())
	core, _ := h.emulator.Core(instrument)
	assert.False(t, core.OrderExists("T-1"))
}

func TestOtoChildReleasedAfterParentFill(t *testing.T) {
	h := newHarness(t)
	parent := order.NewBuilder(enum.OrderTypeLimit).
		Strategy("S-001").
		Instrument(instrument).
		ClientOrderID("P-1").
		Side(enum.OrderSideBuy).
		Quantity(model.QuantityFromFloat(1, 0)).
		Price(model.PriceFromFloat(100.00, 2)).
		Contingency(enum.ContingencyOTO).
		LinkedOrders("C-1").
		Build()
	child := order.NewBuilder(enum.OrderTypeLimit).
		Strategy("S-001").
		Instrument(instrument).
		ClientOrderID("C-1").
		Side(enum.OrderSideSell).
		Quantity(model.QuantityFromFloat(1, 0)).
		Price(model.PriceFromFloat(105.00, 2)).
		Contingency(enum.ContingencyOTO).
		ParentOrder("P-1").
		Build()
	h.cache.AddOrder(parent)

	h.emulator.Execute(command.SubmitOrderList{
		Common: command.New(parent.TraderID, parent.StrategyID, instrument, h.clock.TimestampNs()),
		List: order.List{
			ID:     "OL-1",
			Orders: []*order.Order{child},
		},
	})
	// child is held, not routed anywhere
	assert.Empty(t, h.riskCommands)
	assert.Equal(t, 1, h.emulator.Manager().SubmitCommandCount())

	// parent fills at the venue
	common := order.Common{
		StrategyID:    parent.StrategyID,
		InstrumentID:  instrument,
		ClientOrderID: "P-1",
	}
	require.NoError(t, parent.Apply(order.Submitted{Common: common}))
	require.NoError(t, parent.Apply(order.Accepted{Common: common}))
	h.emulator.HandleEvent(order.Filled{
		Common:  common,
		TradeID: "TR-1",
		Side:    enum.OrderSideBuy,
		LastQty: model.QuantityFromFloat(1, 0),
		LastPx:  model.PriceFromFloat(100.00, 2),
	})

	// child goes out through pre-trade risk
	require.Len(t, h.riskCommands, 1)
	assert.Equal(t, model.ClientOrderId("C-1"),
		h.riskCommands[0].(command.SubmitOrder).Order.ClientOrderID)
	assert.Equal(t, 0, h.emulator.Manager().SubmitCommandCount())
}

func TestOcoSiblingCanceledOnFill(t *testing.T) {
	h := newHarness(t)
	stop := stopMarket("S-1", enum.OrderSideSell, 95.00)
	stop.ContingencyType = enum.ContingencyOCO
	stop.LinkedOrderIDs = []model.ClientOrderId{"L-1"}
	limit := order.NewBuilder(enum.OrderTypeLimit).
		Strategy("S-001").
		Instrument(instrument).
		ClientOrderID("L-1").
		Side(enum.OrderSideSell).
		Quantity(model.QuantityFromFloat(1, 0)).
		Price(model.PriceFromFloat(105.00, 2)).
		EmulationTrigger(enum.TriggerTypeBidAsk).
		Contingency(enum.ContingencyOCO).
		LinkedOrders("S-1").
		Build()

	h.submit(stop)
	h.submit(limit)

	// stop triggers first: bid falls to 95
	h.emulator.OnQuote(quote(95.00, 95.50))
	require.Len(t, h.execCommands, 1)

	// venue fills the released stop
	released := h.execCommands[0].(command.SubmitOrder).Order
	common := order.Common{
		StrategyID:    released.StrategyID,
		InstrumentID:  instrument,
		ClientOrderID: released.ClientOrderID,
	}
	require.NoError(t, released.Apply(order.Submitted{Common: common}))
	require.NoError(t, released.Apply(order.Accepted{Common: common}))
	h.emulator.HandleEvent(order.Filled{
		Common:  common,
		TradeID: "TR-1",
		Side:    enum.OrderSideSell,
		LastQty: model.QuantityFromFloat(1, 0),
		LastPx:  model.PriceFromFloat(95.00, 2),
	})

	// the linked emulated limit is canceled and dropped from the core
	assert.Equal(t, enum.OrderStatusCanceled, limit.Status)
	core, _ := h.emulator.Core(instrument)
	assert.False(t, core.OrderExists("L-1"))
}

func TestOuoSiblingShrinksOnPartialFill(t *testing.T) {
	h := newHarness(t)
	working := order.NewBuilder(enum.OrderTypeLimit).
		Strategy("S-001").
		Instrument(instrument).
		ClientOrderID("W-1").
		Side(enum.OrderSideSell).
		Quantity(model.QuantityFromFloat(10, 0)).
		Price(model.PriceFromFloat(105.00, 2)).
		Contingency(enum.ContingencyOUO).
		LinkedOrders("H-1").
		Build()
	held := stopMarket("H-1", enum.OrderSideSell, 95.00)
	held.Quantity = model.QuantityFromFloat(10, 0)
	held.ContingencyType = enum.ContingencyOUO
	held.LinkedOrderIDs = []model.ClientOrderId{"W-1"}

	h.cache.AddOrder(working)
	h.submit(held)

	common := order.Common{
		StrategyID:    working.StrategyID,
		InstrumentID:  instrument,
		ClientOrderID: "W-1",
	}
	require.NoError(t, working.Apply(order.Submitted{Common: common}))
	require.NoError(t, working.Apply(order.Accepted{Common: common}))
	h.emulator.HandleEvent(order.Filled{
		Common:    common,
		TradeID:   "TR-1",
		Side:      enum.OrderSideSell,
		LastQty:   model.QuantityFromFloat(4, 0),
		LastPx:    model.PriceFromFloat(105.00, 2),
		LeavesQty: model.QuantityFromFloat(6, 0),
	})

	// the held sibling shrinks to the working order's remaining size
	assert.Equal(t, uint64(6), held.Quantity.Raw)
	assert.Equal(t, enum.OrderStatusEmulated, held.Status)
}

func TestRecoveryRebuildsCores(t *testing.T) {
	h := newHarness(t)
	o := stopMarket("O-1", enum.OrderSideBuy, 110.00)
	h.submit(o)

	// a fresh emulator over the same cache picks the held order back up
	restarted := New(h.clock, h.cache, h.bus)
	restarted.Start()

	core, ok := restarted.Core(instrument)
	require.True(t, ok)
	assert.True(t, core.OrderExists("O-1"))
}
