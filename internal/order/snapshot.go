package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tradecore/internal/model"
	"tradecore/internal/model/enum"
)

// Snapshot is the point-in-time materialization of an order: the union of
// fields required to recover its status.
type Snapshot struct {
	TraderID      model.TraderId      `json:"trader_id"`
	StrategyID    model.StrategyId    `json:"strategy_id"`
	InstrumentID  model.InstrumentId  `json:"instrument_id"`
	ClientOrderID model.ClientOrderId `json:"client_order_id"`
	VenueOrderID  model.VenueOrderId  `json:"venue_order_id,omitempty"`
	AccountID     model.AccountId     `json:"account_id,omitempty"`
	PositionID    model.PositionId    `json:"position_id,omitempty"`

	Side        enum.OrderSide   `json:"side"`
	OrderType   enum.OrderType   `json:"order_type"`
	Quantity    model.Quantity   `json:"quantity"`
	FilledQty   model.Quantity   `json:"filled_qty"`
	TimeInForce enum.TimeInForce `json:"time_in_force"`

	Price              *model.Price            `json:"price,omitempty"`
	TriggerPrice       *model.Price            `json:"trigger_price,omitempty"`
	TriggerType        enum.TriggerType        `json:"trigger_type"`
	LimitOffset        decimal.Decimal         `json:"limit_offset"`
	TrailingOffset     decimal.Decimal         `json:"trailing_offset"`
	TrailingOffsetType enum.TrailingOffsetType `json:"trailing_offset_type"`
	ExpireTimeNs       int64                   `json:"expire_time_ns,omitempty"`
	DisplayQty         *model.Quantity         `json:"display_qty,omitempty"`

	AvgPx         decimal.Decimal            `json:"avg_px"`
	Slippage      decimal.Decimal            `json:"slippage"`
	Commissions   map[string]decimal.Decimal `json:"commissions,omitempty"`
	LiquiditySide enum.LiquiditySide         `json:"liquidity_side"`

	Status        enum.OrderStatus    `json:"status"`
	PostOnly      bool                `json:"post_only"`
	ReduceOnly    bool                `json:"reduce_only"`
	QuoteQuantity bool                `json:"quote_quantity"`
	IsActivated   bool                `json:"is_activated"`
	IsTriggered   bool                `json:"is_triggered"`

	EmulationTrigger  enum.TriggerType     `json:"emulation_trigger"`
	TriggerInstrument *model.InstrumentId  `json:"trigger_instrument,omitempty"`
	ContingencyType   enum.ContingencyType `json:"contingency_type"`
	OrderListID       model.OrderListId    `json:"order_list_id,omitempty"`
	LinkedOrderIDs    []model.ClientOrderId `json:"linked_order_ids,omitempty"`
	ParentOrderID     model.ClientOrderId  `json:"parent_order_id,omitempty"`

	ExecAlgorithmID model.ExecAlgorithmId `json:"exec_algorithm_id,omitempty"`
	Tags            []string              `json:"tags,omitempty"`

	InitID   uuid.UUID `json:"init_id"`
	TsInitNs int64     `json:"ts_init"`
	TsLastNs int64     `json:"ts_last"`
}

// Snapshot materializes the order's current state.
func (o *Order) Snapshot() Snapshot {
	return Snapshot{
		TraderID:           o.TraderID,
		StrategyID:         o.StrategyID,
		InstrumentID:       o.InstrumentID,
		ClientOrderID:      o.ClientOrderID,
		VenueOrderID:       o.VenueOrderID,
		AccountID:          o.AccountID,
		PositionID:         o.PositionID,
		Side:               o.Side,
		OrderType:          o.Type,
		Quantity:           o.Quantity,
		FilledQty:          o.FilledQty,
		TimeInForce:        o.TimeInForce,
		Price:              o.Price,
		TriggerPrice:       o.TriggerPrice,
		TriggerType:        o.TriggerType,
		LimitOffset:        o.LimitOffset,
		TrailingOffset:     o.TrailingOffset,
		TrailingOffsetType: o.TrailingOffsetType,
		ExpireTimeNs:       o.ExpireTimeNs,
		DisplayQty:         o.DisplayQty,
		AvgPx:              o.AvgPx,
		Slippage:           o.Slippage,
		Commissions:        o.Commissions,
		LiquiditySide:      o.LiquiditySide,
		Status:             o.Status,
		PostOnly:           o.PostOnly,
		ReduceOnly:         o.ReduceOnly,
		QuoteQuantity:      o.QuoteQuantity,
		IsActivated:        o.IsActivated,
		IsTriggered:        o.IsTriggered,
		EmulationTrigger:   o.EmulationTrigger,
		TriggerInstrument:  o.TriggerInstrument,
		ContingencyType:    o.ContingencyType,
		OrderListID:        o.OrderListID,
		LinkedOrderIDs:     o.LinkedOrderIDs,
		ParentOrderID:      o.ParentOrderID,
		ExecAlgorithmID:    o.ExecAlgorithmID,
		Tags:               o.Tags,
		InitID:             o.InitID,
		TsInitNs:           o.TsInitNs,
		TsLastNs:           o.TsLastNs,
	}
}

// List is a contingent order list submitted atomically.
type List struct {
	ID       model.OrderListId
	Orders   []*Order
	TsInitNs int64
}
