package venue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradecore/internal/bus"
	"tradecore/internal/command"
	"tradecore/internal/model"
	"tradecore/internal/model/enum"
	"tradecore/internal/order"
)

func TestExchangeSeedsVenueAccount(t *testing.T) {
	h := newHarness(t, defaultConfig(), testInstrument())

	acc, ok := h.cache.Account("SIM")
	require.True(t, ok)
	assert.Equal(t, model.AccountId("SIM-001"), acc.ID)
	assert.Equal(t, enum.AccountTypeMargin, acc.Type)
	assert.Equal(t, 1, h.exchange.InstrumentCount())
}

func TestExchangeRejectsUnlistedInstrument(t *testing.T) {
	h := newHarness(t, defaultConfig(), testInstrument())

	other := model.NewInstrumentId("BTCUSDT", "SIM")
	o := order.NewBuilder(enum.OrderTypeMarket).
		Trader("TRADER-001").
		Strategy("S-001").
		Instrument(other).
		ClientOrderID("O-X").
		Side(enum.OrderSideBuy).
		Quantity(model.QuantityFromFloat(1, 0)).
		Build()
	h.cache.AddOrder(o)
	h.bus.Send(bus.EndpointExecExecute, command.SubmitOrder{
		Common: command.New("TRADER-001", "S-001", other, h.clock.TimestampNs()),
		Order:  o,
	})

	assert.Equal(t, enum.OrderStatusRejected, o.Status)
	require.Len(t, h.rejections(), 1)
	assert.Contains(t, h.rejections()[0].Reason, "no such instrument")
}

func TestExchangeRoutesOrderList(t *testing.T) {
	h := newHarness(t, defaultConfig(), testInstrument())
	h.quote(100.00, 100.10, 100)

	first := limitOrder("OL-1", enum.OrderSideBuy, 2, 99.00)
	second := limitOrder("OL-2", enum.OrderSideBuy, 2, 98.00)
	h.cache.AddOrder(first)
	h.cache.AddOrder(second)
	h.bus.Send(bus.EndpointExecExecute, command.SubmitOrderList{
		Common: command.New("TRADER-001", "S-001", instrumentID, h.clock.TimestampNs()),
		List:   order.List{ID: "OL-A", Orders: []*order.Order{first, second}},
	})

	assert.Equal(t, enum.OrderStatusAccepted, first.Status)
	assert.Equal(t, enum.OrderStatusAccepted, second.Status)
	assert.Equal(t, 2, h.engine.Core().OrderCount())
}

func TestExchangeBatchCancel(t *testing.T) {
	h := newHarness(t, defaultConfig(), testInstrument())
	h.quote(100.00, 100.10, 100)

	first := limitOrder("OB-1", enum.OrderSideBuy, 2, 99.00)
	second := limitOrder("OB-2", enum.OrderSideBuy, 2, 98.00)
	h.submit(first)
	h.submit(second)

	common := command.New("TRADER-001", "S-001", instrumentID, h.clock.TimestampNs())
	h.bus.Send(bus.EndpointExecExecute, command.BatchCancelOrders{
		Common: common,
		Cancels: []command.CancelOrder{
			{Common: common, ClientOrderID: "OB-1"},
			{Common: common, ClientOrderID: "OB-2"},
		},
	})

	assert.Equal(t, enum.OrderStatusCanceled, first.Status)
	assert.Equal(t, enum.OrderStatusCanceled, second.Status)
	assert.Equal(t, 0, h.engine.Core().OrderCount())
}
