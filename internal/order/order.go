package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"

	"tradecore/internal/model"
	"tradecore/internal/model/enum"
)

var ErrNoEvents = errors.New("order has no events")

// Order is the polymorphic order model: one struct covering every variant,
// discriminated by Type. Mutation happens only through Apply; the event log
// is append-only.
type Order struct {
	TraderID      model.TraderId
	StrategyID    model.StrategyId
	InstrumentID  model.InstrumentId
	ClientOrderID model.ClientOrderId
	VenueOrderID  model.VenueOrderId
	AccountID     model.AccountId
	PositionID    model.PositionId

	Side        enum.OrderSide
	Type        enum.OrderType
	Quantity    model.Quantity
	FilledQty   model.Quantity
	TimeInForce enum.TimeInForce

	Price              *model.Price
	TriggerPrice       *model.Price
	TriggerType        enum.TriggerType
	ActivationPrice    *model.Price
	IsActivated        bool // trailing offset tracking engaged
	IsTriggered        bool // stop trigger price has been hit
	LimitOffset        decimal.Decimal
	TrailingOffset     decimal.Decimal
	TrailingOffsetType enum.TrailingOffsetType
	ExpireTimeNs       int64
	DisplayQty         *model.Quantity

	PostOnly      bool
	ReduceOnly    bool
	QuoteQuantity bool

	EmulationTrigger  enum.TriggerType
	TriggerInstrument *model.InstrumentId

	ContingencyType enum.ContingencyType
	OrderListID     model.OrderListId
	LinkedOrderIDs  []model.ClientOrderId
	ParentOrderID   model.ClientOrderId

	ExecAlgorithmID     model.ExecAlgorithmId
	ExecAlgorithmParams map[string]string
	ExecSpawnID         model.ClientOrderId
	Tags                []string

	Status        enum.OrderStatus
	InitID        uuid.UUID
	TsInitNs      int64
	TsLastNs      int64
	AvgPx         decimal.Decimal
	Slippage      decimal.Decimal
	LastTradeID   model.TradeId
	LiquiditySide enum.LiquiditySide
	Commissions   map[string]decimal.Decimal

	events         []Event
	venueOrderIDs  []model.VenueOrderId
}

// NewOrder builds an order from its Initialized event.
func NewOrder(init Initialized) *Order {
	o := &Order{
		TraderID:            init.TraderID,
		StrategyID:          init.StrategyID,
		InstrumentID:        init.InstrumentID,
		ClientOrderID:       init.ClientOrderID,
		Side:                init.Side,
		Type:                init.OrderType,
		Quantity:            init.Quantity,
		FilledQty:           model.Quantity{Precision: init.Quantity.Precision},
		TimeInForce:         init.TimeInForce,
		Price:               init.Price,
		TriggerPrice:        init.TriggerPrice,
		TriggerType:         init.TriggerType,
		ActivationPrice:     init.ActivationPrice,
		LimitOffset:         init.LimitOffset,
		TrailingOffset:      init.TrailingOffset,
		TrailingOffsetType:  init.TrailingOffsetType,
		ExpireTimeNs:        init.ExpireTimeNs,
		DisplayQty:          init.DisplayQty,
		PostOnly:            init.PostOnly,
		ReduceOnly:          init.ReduceOnly,
		QuoteQuantity:       init.QuoteQuantity,
		EmulationTrigger:    init.EmulationTrigger,
		TriggerInstrument:   init.TriggerInstrument,
		ContingencyType:     init.ContingencyType,
		OrderListID:         init.OrderListID,
		LinkedOrderIDs:      init.LinkedOrderIDs,
		ParentOrderID:       init.ParentOrderID,
		ExecAlgorithmID:     init.ExecAlgorithmID,
		ExecAlgorithmParams: init.ExecAlgorithmParams,
		ExecSpawnID:         init.ExecSpawnID,
		Tags:                init.Tags,
		Status:              enum.OrderStatusInitialized,
		InitID:              init.EventID,
		TsInitNs:            init.TsInitNs,
		TsLastNs:            init.TsEventNs,
		Commissions:         make(map[string]decimal.Decimal),
		events:              []Event{init},
	}
	return o
}

// Apply validates the event against the status machine, appends it to the
// log and mutates the order. Invalid transitions leave the order untouched.
func (o *Order) Apply(ev Event) error {
	target, changes := o.targetStatus(ev)
	if changes && !TransitionAllowed(o.Status, target) {
		return errors.Wrap(ErrInvalidTransition,
			string(o.ClientOrderID)+": "+o.Status.String()+" -> "+target.String())
	}

	o.events = append(o.events, ev)
	common := ev.Base()
	if common.VenueOrderID != "" {
		o.setVenueOrderID(common.VenueOrderID)
	}
	if common.AccountID != "" {
		o.AccountID = common.AccountID
	}
	o.TsLastNs = common.TsEventNs

	switch e := ev.(type) {
	case Updated:
		if e.Quantity.IsPositive() {
			o.Quantity = e.Quantity
		}
		if e.Price != nil {
			o.Price = e.Price
		}
		if e.TriggerPrice != nil {
			o.TriggerPrice = e.TriggerPrice
		}
	case Filled:
		o.fill(e)
	case Triggered:
		o.IsTriggered = true
	}

	if changes {
		o.Status = target
	}
	return nil
}

func (o *Order) targetStatus(ev Event) (enum.OrderStatus, bool) {
	switch ev.Kind() {
	case KindDenied:
		return enum.OrderStatusDenied, true
	case KindEmulated:
		return enum.OrderStatusEmulated, true
	case KindReleased:
		return enum.OrderStatusReleased, true
	case KindSubmitted:
		return enum.OrderStatusSubmitted, true
	case KindAccepted:
		return enum.OrderStatusAccepted, true
	case KindRejected:
		return enum.OrderStatusRejected, true
	case KindCanceled:
		return enum.OrderStatusCanceled, true
	case KindExpired:
		return enum.OrderStatusExpired, true
	case KindTriggered:
		return enum.OrderStatusTriggered, true
	case KindPendingUpdate:
		return enum.OrderStatusPendingUpdate, true
	case KindPendingCancel:
		return enum.OrderStatusPendingCancel, true
	case KindPartiallyFilled, KindFilled:
		return ev.Kind().ResolveStatus(), true
	case KindUpdated:
		// A modify ack completes a pending update; otherwise values change
		// in place without a status move.
		if o.Status == enum.OrderStatusPendingUpdate {
			return enum.OrderStatusAccepted, true
		}
		return o.Status, false
	case KindModifyRejected:
		if o.Status == enum.OrderStatusPendingUpdate {
			return enum.OrderStatusAccepted, true
		}
		return o.Status, false
	case KindCancelRejected:
		if o.Status == enum.OrderStatusPendingCancel {
			return enum.OrderStatusRejected, true
		}
		return o.Status, false
	default:
		return o.Status, false
	}
}

// ResolveStatus maps a fill kind onto its order status.
func (k Kind) ResolveStatus() enum.OrderStatus {
	if k == KindPartiallyFilled {
		return enum.OrderStatusPartiallyFilled
	}
	return enum.OrderStatusFilled
}

func (o *Order) fill(e Filled) {
	prevFilled := o.FilledQty.Decimal()
	o.FilledQty = o.FilledQty.Add(e.LastQty)
	o.LastTradeID = e.TradeID
	o.LiquiditySide = e.LiquiditySide
	if e.PositionID != "" {
		o.PositionID = e.PositionID
	}

	lastQty := e.LastQty.Decimal()
	lastPx := e.LastPx.Decimal()
	total := prevFilled.Add(lastQty)
	if total.IsPositive() {
		o.AvgPx = o.AvgPx.Mul(prevFilled).Add(lastPx.Mul(lastQty)).Div(total)
	}
	if o.Price != nil && !o.Price.IsSentinel() {
		limit := o.Price.Decimal()
		if o.Side == enum.OrderSideBuy {
			o.Slippage = o.AvgPx.Sub(limit)
		} else {
			o.Slippage = limit.Sub(o.AvgPx)
		}
	}
	if e.Commission.Currency != "" {
		o.Commissions[e.Commission.Currency] =
			o.Commissions[e.Commission.Currency].Add(e.Commission.Amount)
	}
}

func (o *Order) setVenueOrderID(id model.VenueOrderId) {
	if o.VenueOrderID == id {
		return
	}
	if o.VenueOrderID != "" {
		o.venueOrderIDs = append(o.venueOrderIDs, o.VenueOrderID)
	}
	o.VenueOrderID = id
}

// Events returns the applied event log in order.
func (o *Order) Events() []Event {
	return o.events
}

// HasEvent reports whether an event with the given id is already in the log.
// Locally generated events reach the process endpoint after they were
// applied at the origin; this keeps the second delivery idempotent.
func (o *Order) HasEvent(id uuid.UUID) bool {
	for _, ev := range o.events {
		if ev.Base().EventID == id {
			return true
		}
	}
	return false
}

// LastEvent returns the most recently applied event.
func (o *Order) LastEvent() (Event, error) {
	if len(o.events) == 0 {
		return nil, ErrNoEvents
	}
	return o.events[len(o.events)-1], nil
}

// EventCount returns the number of applied events.
func (o *Order) EventCount() int {
	return len(o.events)
}

// LeavesQty returns the unfilled remainder.
func (o *Order) LeavesQty() model.Quantity {
	return o.Quantity.Sub(o.FilledQty)
}

// IsOpen reports whether the order is working (venue-side or emulated).
func (o *Order) IsOpen() bool {
	switch o.Status {
	case enum.OrderStatusAccepted, enum.OrderStatusTriggered,
		enum.OrderStatusPendingUpdate, enum.OrderStatusPendingCancel,
		enum.OrderStatusPartiallyFilled:
		return true
	default:
		return false
	}
}

// IsClosed reports whether the order reached a terminal status.
func (o *Order) IsClosed() bool {
	return o.Status.IsClosed()
}

// IsInflight reports whether a command for the order awaits venue response.
func (o *Order) IsInflight() bool {
	switch o.Status {
	case enum.OrderStatusSubmitted, enum.OrderStatusPendingUpdate,
		enum.OrderStatusPendingCancel:
		return true
	default:
		return false
	}
}

// IsEmulated reports whether the order is held by the local emulator.
func (o *Order) IsEmulated() bool {
	return o.EmulationTrigger != enum.NoTrigger
}

// IsBuy reports the order side.
func (o *Order) IsBuy() bool { return o.Side == enum.OrderSideBuy }

// IsSell reports the order side.
func (o *Order) IsSell() bool { return o.Side == enum.OrderSideSell }

// IsPassive reports whether the order rests or waits for a trigger.
func (o *Order) IsPassive() bool {
	return o.Type != enum.OrderTypeMarket
}

// WouldReduce reports whether filling the remaining quantity against the
// given position would not increase its absolute size.
func (o *Order) WouldReduce(pos model.Position) bool {
	return pos.WouldReduce(o.Side, o.LeavesQty())
}

// TriggerInstrumentID resolves the instrument the emulation trigger watches.
func (o *Order) TriggerInstrumentID() model.InstrumentId {
	if o.TriggerInstrument != nil {
		return *o.TriggerInstrument
	}
	return o.InstrumentID
}

// TransformToMarket rebuilds the order as a plain market order, preserving
// the applied event log.
func (o *Order) TransformToMarket() *Order {
	out := *o
	out.Type = enum.OrderTypeMarket
	out.Price = nil
	out.TriggerPrice = nil
	out.EmulationTrigger = enum.NoTrigger
	out.events = append([]Event(nil), o.events...)
	out.Commissions = o.Commissions
	return &out
}

// TransformToLimit rebuilds the order as a plain limit order at the given
// price, preserving the applied event log.
func (o *Order) TransformToLimit(price model.Price) *Order {
	out := *o
	out.Type = enum.OrderTypeLimit
	out.Price = &price
	out.TriggerPrice = nil
	out.EmulationTrigger = enum.NoTrigger
	out.events = append([]Event(nil), o.events...)
	out.Commissions = o.Commissions
	return &out
}
