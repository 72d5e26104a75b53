package command

import (
	"github.com/google/uuid"

	"tradecore/internal/model"
	"tradecore/internal/model/enum"
	"tradecore/internal/order"
)

// Command is a trading instruction routed over the message bus.
type Command interface {
	ID() uuid.UUID
	TsInit() int64
	isCommand()
}

// Common carries the identity shared by every trading command.
type Common struct {
	CommandID    uuid.UUID
	TraderID     model.TraderId
	StrategyID   model.StrategyId
	InstrumentID model.InstrumentId
	TsInitNs     int64
}

func (c Common) ID() uuid.UUID { return c.CommandID }
func (c Common) TsInit() int64 { return c.TsInitNs }
func (c Common) isCommand()    {}

// SubmitOrder submits a single order for execution. PositionID targets an
// existing position under hedging OMS.
type SubmitOrder struct {
	Common
	Order      *order.Order
	PositionID model.PositionId
}

// SubmitOrderList atomically submits a contingent order list.
type SubmitOrderList struct {
	Common
	List       order.List
	PositionID model.PositionId
}

// ModifyOrder amends quantity, price or trigger price of a working order.
// Nil pointers and zero quantity mean "unchanged".
type ModifyOrder struct {
	Common
	ClientOrderID model.ClientOrderId
	VenueOrderID  model.VenueOrderId
	Quantity      model.Quantity
	Price         *model.Price
	TriggerPrice  *model.Price
}

// CancelOrder cancels a single working order.
type CancelOrder struct {
	Common
	ClientOrderID model.ClientOrderId
	VenueOrderID  model.VenueOrderId
}

// CancelAllOrders cancels every working order for the instrument, optionally
// filtered by side.
type CancelAllOrders struct {
	Common
	Side enum.OrderSide
}

// BatchCancelOrders cancels a batch of orders in one instruction.
type BatchCancelOrders struct {
	Common
	Cancels []CancelOrder
}

// QueryOrder requests a status report for one order.
type QueryOrder struct {
	Common
	ClientOrderID model.ClientOrderId
	VenueOrderID  model.VenueOrderId
}

// New builds the shared command identity.
func New(trader model.TraderId, strategy model.StrategyId, instrument model.InstrumentId, tsNs int64) Common {
	return Common{
		CommandID:    uuid.New(),
		TraderID:     trader,
		StrategyID:   strategy,
		InstrumentID: instrument,
		TsInitNs:     tsNs,
	}
}
