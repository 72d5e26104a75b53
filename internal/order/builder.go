package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tradecore/internal/model"
	"tradecore/internal/model/enum"
)

// Builder assembles an Initialized event and the order born from it.
// Used by wiring code and tests.
type Builder struct {
	init Initialized
}

// NewBuilder starts an order definition.
func NewBuilder(orderType enum.OrderType) *Builder {
	return &Builder{init: Initialized{
		Common: Common{
			EventID:  uuid.New(),
			TraderID: "TRADER-001",
		},
		OrderType:   orderType,
		TimeInForce: enum.TimeInForceGTC,
	}}
}

func (b *Builder) Trader(id model.TraderId) *Builder {
	b.init.TraderID = id
	return b
}

func (b *Builder) Strategy(id model.StrategyId) *Builder {
	b.init.StrategyID = id
	return b
}

func (b *Builder) Instrument(id model.InstrumentId) *Builder {
	b.init.InstrumentID = id
	return b
}

func (b *Builder) ClientOrderID(id model.ClientOrderId) *Builder {
	b.init.ClientOrderID = id
	return b
}

func (b *Builder) Side(side enum.OrderSide) *Builder {
	b.init.Side = side
	return b
}

func (b *Builder) Quantity(q model.Quantity) *Builder {
	b.init.Quantity = q
	return b
}

func (b *Builder) Price(p model.Price) *Builder {
	b.init.Price = &p
	return b
}

func (b *Builder) TriggerPrice(p model.Price) *Builder {
	b.init.TriggerPrice = &p
	return b
}

func (b *Builder) TriggerType(t enum.TriggerType) *Builder {
	b.init.TriggerType = t
	return b
}

func (b *Builder) ActivationPrice(p model.Price) *Builder {
	b.init.ActivationPrice = &p
	return b
}

func (b *Builder) TrailingOffset(offset decimal.Decimal, offsetType enum.TrailingOffsetType) *Builder {
	b.init.TrailingOffset = offset
	b.init.TrailingOffsetType = offsetType
	return b
}

func (b *Builder) LimitOffset(offset decimal.Decimal) *Builder {
	b.init.LimitOffset = offset
	return b
}

func (b *Builder) TimeInForce(tif enum.TimeInForce) *Builder {
	b.init.TimeInForce = tif
	return b
}

func (b *Builder) ExpireTime(tsNs int64) *Builder {
	b.init.ExpireTimeNs = tsNs
	return b
}

func (b *Builder) PostOnly(v bool) *Builder {
	b.init.PostOnly = v
	return b
}

func (b *Builder) ReduceOnly(v bool) *Builder {
	b.init.ReduceOnly = v
	return b
}

func (b *Builder) QuoteQuantity(v bool) *Builder {
	b.init.QuoteQuantity = v
	return b
}

func (b *Builder) EmulationTrigger(t enum.TriggerType) *Builder {
	b.init.EmulationTrigger = t
	return b
}

func (b *Builder) TriggerInstrument(id model.InstrumentId) *Builder {
	b.init.TriggerInstrument = &id
	return b
}

func (b *Builder) Contingency(c enum.ContingencyType) *Builder {
	b.init.ContingencyType = c
	return b
}

func (b *Builder) OrderList(id model.OrderListId) *Builder {
	b.init.OrderListID = id
	return b
}

func (b *Builder) LinkedOrders(ids ...model.ClientOrderId) *Builder {
	b.init.LinkedOrderIDs = ids
	return b
}

func (b *Builder) ParentOrder(id model.ClientOrderId) *Builder {
	b.init.ParentOrderID = id
	return b
}

func (b *Builder) ExecAlgorithm(id model.ExecAlgorithmId) *Builder {
	b.init.ExecAlgorithmID = id
	return b
}

func (b *Builder) Tags(tags ...string) *Builder {
	b.init.Tags = tags
	return b
}

func (b *Builder) TsInit(tsNs int64) *Builder {
	b.init.TsInitNs = tsNs
	b.init.TsEventNs = tsNs
	return b
}

// Build creates the order from the accumulated Initialized event.
func (b *Builder) Build() *Order {
	return NewOrder(b.init)
}
