package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tradecore/internal/model"
	"tradecore/internal/model/enum"
)

// Kind discriminates order event payloads; persisted as the journal's
// discriminator column.
type Kind uint8

const (
	KindInitialized Kind = iota + 1
	KindDenied
	KindEmulated
	KindReleased
	KindSubmitted
	KindAccepted
	KindRejected
	KindCanceled
	KindExpired
	KindTriggered
	KindPendingUpdate
	KindPendingCancel
	KindPartiallyFilled
	KindFilled
	KindUpdated
	KindModifyRejected
	KindCancelRejected
)

func (k Kind) String() string {
	switch k {
	case KindInitialized:
		return "Initialized"
	case KindDenied:
		return "Denied"
	case KindEmulated:
		return "Emulated"
	case KindReleased:
		return "Released"
	case KindSubmitted:
		return "Submitted"
	case KindAccepted:
		return "Accepted"
	case KindRejected:
		return "Rejected"
	case KindCanceled:
		return "Canceled"
	case KindExpired:
		return "Expired"
	case KindTriggered:
		return "Triggered"
	case KindPendingUpdate:
		return "PendingUpdate"
	case KindPendingCancel:
		return "PendingCancel"
	case KindPartiallyFilled:
		return "PartiallyFilled"
	case KindFilled:
		return "Filled"
	case KindUpdated:
		return "Updated"
	case KindModifyRejected:
		return "ModifyRejected"
	case KindCancelRejected:
		return "CancelRejected"
	default:
		return "Unknown"
	}
}

// Common carries the fields every order event shares.
type Common struct {
	EventID        uuid.UUID           `json:"event_id"`
	TraderID       model.TraderId      `json:"trader_id"`
	StrategyID     model.StrategyId    `json:"strategy_id"`
	InstrumentID   model.InstrumentId  `json:"instrument_id"`
	ClientOrderID  model.ClientOrderId `json:"client_order_id"`
	VenueOrderID   model.VenueOrderId  `json:"venue_order_id,omitempty"`
	AccountID      model.AccountId     `json:"account_id,omitempty"`
	TsEventNs      int64               `json:"ts_event"`
	TsInitNs       int64               `json:"ts_init"`
	Reconciliation bool                `json:"reconciliation,omitempty"`
}

// Base returns the shared fields.
func (c Common) Base() Common { return c }

// Event is any order lifecycle event.
type Event interface {
	Kind() Kind
	Base() Common
}

// Initialized carries the full order definition; every order is born from
// one.
type Initialized struct {
	Common
	Side               enum.OrderSide
	OrderType          enum.OrderType
	Quantity           model.Quantity
	TimeInForce        enum.TimeInForce
	Price              *model.Price
	TriggerPrice       *model.Price
	TriggerType        enum.TriggerType
	ActivationPrice    *model.Price
	LimitOffset        decimal.Decimal
	TrailingOffset     decimal.Decimal
	TrailingOffsetType enum.TrailingOffsetType
	ExpireTimeNs       int64
	DisplayQty         *model.Quantity
	PostOnly           bool
	ReduceOnly         bool
	QuoteQuantity      bool
	EmulationTrigger   enum.TriggerType
	TriggerInstrument  *model.InstrumentId
	ContingencyType    enum.ContingencyType
	OrderListID        model.OrderListId
	LinkedOrderIDs     []model.ClientOrderId
	ParentOrderID      model.ClientOrderId
	ExecAlgorithmID    model.ExecAlgorithmId
	ExecAlgorithmParams map[string]string
	ExecSpawnID        model.ClientOrderId
	Tags               []string
}

func (Initialized) Kind() Kind { return KindInitialized }

// Denied is a terminal risk-engine refusal.
type Denied struct {
	Common
	Reason string
}

func (Denied) Kind() Kind { return KindDenied }

// Emulated marks an order held by the local emulator.
type Emulated struct {
	Common
}

func (Emulated) Kind() Kind { return KindEmulated }

// Released marks an emulated order released to the venue, carrying the
// price that satisfied the trigger.
type Released struct {
	Common
	ReleasedPrice model.Price
}

func (Released) Kind() Kind { return KindReleased }

// Submitted marks a command forwarded to the venue.
type Submitted struct {
	Common
}

func (Submitted) Kind() Kind { return KindSubmitted }

// Accepted marks venue acknowledgment.
type Accepted struct {
	Common
}

func (Accepted) Kind() Kind { return KindAccepted }

// Rejected is a terminal venue refusal.
type Rejected struct {
	Common
	Reason string
}

func (Rejected) Kind() Kind { return KindRejected }

// Canceled is a terminal cancellation.
type Canceled struct {
	Common
}

func (Canceled) Kind() Kind { return KindCanceled }

// Expired is a terminal TIF expiry.
type Expired struct {
	Common
}

func (Expired) Kind() Kind { return KindExpired }

// Triggered marks a stop trigger crossing at the venue.
type Triggered struct {
	Common
}

func (Triggered) Kind() Kind { return KindTriggered }

// PendingUpdate marks an in-flight modify.
type PendingUpdate struct {
	Common
}

func (PendingUpdate) Kind() Kind { return KindPendingUpdate }

// PendingCancel marks an in-flight cancel.
type PendingCancel struct {
	Common
}

func (PendingCancel) Kind() Kind { return KindPendingCancel }

// Updated carries the acknowledged replacement values.
type Updated struct {
	Common
	Quantity     model.Quantity
	Price        *model.Price
	TriggerPrice *model.Price
}

func (Updated) Kind() Kind { return KindUpdated }

// Filled is one execution. Kind resolves to PartiallyFilled while leaves
// remain so the journal row matches the resulting status.
type Filled struct {
	Common
	TradeID       model.TradeId
	PositionID    model.PositionId
	Side          enum.OrderSide
	LastQty       model.Quantity
	LastPx        model.Price
	LeavesQty     model.Quantity
	Currency      string
	Commission    model.Money
	LiquiditySide enum.LiquiditySide
}

func (f Filled) Kind() Kind {
	if f.LeavesQty.IsPositive() {
		return KindPartiallyFilled
	}
	return KindFilled
}

// ModifyRejected is a refused modify command.
type ModifyRejected struct {
	Common
	Reason string
}

func (ModifyRejected) Kind() Kind { return KindModifyRejected }

// CancelRejected is a refused cancel command.
type CancelRejected struct {
	Common
	Reason string
}

func (CancelRejected) Kind() Kind { return KindCancelRejected }
