package enum

// OrderSide describes order direction.
type OrderSide uint8

const (
	NoOrderSide OrderSide = iota
	OrderSideBuy
	OrderSideSell
)

func (s OrderSide) String() string {
	switch s {
	case OrderSideBuy:
		return "BUY"
	case OrderSideSell:
		return "SELL"
	default:
		return "NO_ORDER_SIDE"
	}
}

// Opposite returns the other side of the book.
func (s OrderSide) Opposite() OrderSide {
	switch s {
	case OrderSideBuy:
		return OrderSideSell
	case OrderSideSell:
		return OrderSideBuy
	default:
		return NoOrderSide
	}
}

// OrderType describes the order variant.
type OrderType uint8

const (
	OrderTypeUnknown OrderType = iota
	OrderTypeMarket
	OrderTypeLimit
	OrderTypeStopMarket
	OrderTypeStopLimit
	OrderTypeMarketToLimit
	OrderTypeMarketIfTouched
	OrderTypeLimitIfTouched
	OrderTypeTrailingStopMarket
	OrderTypeTrailingStopLimit
)

func (t OrderType) String() string {
	switch t {
	case OrderTypeMarket:
		return "MARKET"
	case OrderTypeLimit:
		return "LIMIT"
	case OrderTypeStopMarket:
		return "STOP_MARKET"
	case OrderTypeStopLimit:
		return "STOP_LIMIT"
	case OrderTypeMarketToLimit:
		return "MARKET_TO_LIMIT"
	case OrderTypeMarketIfTouched:
		return "MARKET_IF_TOUCHED"
	case OrderTypeLimitIfTouched:
		return "LIMIT_IF_TOUCHED"
	case OrderTypeTrailingStopMarket:
		return "TRAILING_STOP_MARKET"
	case OrderTypeTrailingStopLimit:
		return "TRAILING_STOP_LIMIT"
	default:
		return "UNKNOWN"
	}
}

// IsTrailing reports whether the type trails the market.
func (t OrderType) IsTrailing() bool {
	return t == OrderTypeTrailingStopMarket || t == OrderTypeTrailingStopLimit
}

// HasTrigger reports whether the type carries a trigger price.
func (t OrderType) HasTrigger() bool {
	switch t {
	case OrderTypeStopMarket, OrderTypeStopLimit, OrderTypeMarketIfTouched,
		OrderTypeLimitIfTouched, OrderTypeTrailingStopMarket, OrderTypeTrailingStopLimit:
		return true
	default:
		return false
	}
}

// HasLimit reports whether the type carries a limit price once working.
func (t OrderType) HasLimit() bool {
	switch t {
	case OrderTypeLimit, OrderTypeStopLimit, OrderTypeMarketToLimit,
		OrderTypeLimitIfTouched, OrderTypeTrailingStopLimit:
		return true
	default:
		return false
	}
}

// OrderStatus tracks the lifecycle of an order.
type OrderStatus uint8

const (
	OrderStatusInitialized OrderStatus = iota
	OrderStatusDenied
	OrderStatusEmulated
	OrderStatusReleased
	OrderStatusSubmitted
	OrderStatusAccepted
	OrderStatusRejected
	OrderStatusCanceled
	OrderStatusExpired
	OrderStatusTriggered
	OrderStatusPendingUpdate
	OrderStatusPendingCancel
	OrderStatusPartiallyFilled
	OrderStatusFilled
)

func (s OrderStatus) String() string {
	switch s {
	case OrderStatusInitialized:
		return "INITIALIZED"
	case OrderStatusDenied:
		return "DENIED"
	case OrderStatusEmulated:
		return "EMULATED"
	case OrderStatusReleased:
		return "RELEASED"
	case OrderStatusSubmitted:
		return "SUBMITTED"
	case OrderStatusAccepted:
		return "ACCEPTED"
	case OrderStatusRejected:
		return "REJECTED"
	case OrderStatusCanceled:
		return "CANCELED"
	case OrderStatusExpired:
		return "EXPIRED"
	case OrderStatusTriggered:
		return "TRIGGERED"
	case OrderStatusPendingUpdate:
		return "PENDING_UPDATE"
	case OrderStatusPendingCancel:
		return "PENDING_CANCEL"
	case OrderStatusPartiallyFilled:
		return "PARTIALLY_FILLED"
	case OrderStatusFilled:
		return "FILLED"
	default:
		return "UNKNOWN"
	}
}

// IsClosed reports whether the status is terminal.
func (s OrderStatus) IsClosed() bool {
	switch s {
	case OrderStatusDenied, OrderStatusRejected, OrderStatusCanceled,
		OrderStatusExpired, OrderStatusFilled:
		return true
	default:
		return false
	}
}

// IsCancellable reports whether a bulk cancel may target the status.
// PendingCancel is excluded to prevent duplicate cancels.
func (s OrderStatus) IsCancellable() bool {
	switch s {
	case OrderStatusAccepted, OrderStatusTriggered, OrderStatusPendingUpdate,
		OrderStatusPartiallyFilled:
		return true
	default:
		return false
	}
}

// TimeInForce describes order time-in-force.
type TimeInForce uint8

const (
	TimeInForceGTC TimeInForce = iota
	TimeInForceIOC
	TimeInForceFOK
	TimeInForceGTD
	TimeInForceDay
	TimeInForceAtTheOpen
	TimeInForceAtTheClose
)

func (t TimeInForce) String() string {
	switch t {
	case TimeInForceGTC:
		return "GTC"
	case TimeInForceIOC:
		return "IOC"
	case TimeInForceFOK:
		return "FOK"
	case TimeInForceGTD:
		return "GTD"
	case TimeInForceDay:
		return "DAY"
	case TimeInForceAtTheOpen:
		return "AT_THE_OPEN"
	case TimeInForceAtTheClose:
		return "AT_THE_CLOSE"
	default:
		return "UNKNOWN"
	}
}

// TriggerType selects the reference price for conditional orders.
type TriggerType uint8

const (
	NoTrigger TriggerType = iota
	TriggerTypeDefault
	TriggerTypeBidAsk
	TriggerTypeLastPrice
	TriggerTypeMidPoint
	TriggerTypeMarkPrice
)

func (t TriggerType) String() string {
	switch t {
	case TriggerTypeDefault:
		return "DEFAULT"
	case TriggerTypeBidAsk:
		return "BID_ASK"
	case TriggerTypeLastPrice:
		return "LAST_PRICE"
	case TriggerTypeMidPoint:
		return "MID_POINT"
	case TriggerTypeMarkPrice:
		return "MARK_PRICE"
	default:
		return "NO_TRIGGER"
	}
}

// TrailingOffsetType describes the unit of a trailing offset.
type TrailingOffsetType uint8

const (
	NoTrailingOffset TrailingOffsetType = iota
	TrailingOffsetTypePrice
	TrailingOffsetTypeBasisPoints
	TrailingOffsetTypeTicks
	TrailingOffsetTypePriceTier
)

func (t TrailingOffsetType) String() string {
	switch t {
	case TrailingOffsetTypePrice:
		return "PRICE"
	case TrailingOffsetTypeBasisPoints:
		return "BASIS_POINTS"
	case TrailingOffsetTypeTicks:
		return "TICKS"
	case TrailingOffsetTypePriceTier:
		return "PRICE_TIER"
	default:
		return "NO_TRAILING_OFFSET"
	}
}

// ContingencyType describes linkage between orders.
type ContingencyType uint8

const (
	NoContingency ContingencyType = iota
	ContingencyOCO
	ContingencyOTO
	ContingencyOUO
)

func (c ContingencyType) String() string {
	switch c {
	case ContingencyOCO:
		return "OCO"
	case ContingencyOTO:
		return "OTO"
	case ContingencyOUO:
		return "OUO"
	default:
		return "NONE"
	}
}

// LiquiditySide describes whether a fill rested or crossed.
type LiquiditySide uint8

const (
	NoLiquiditySide LiquiditySide = iota
	LiquiditySideMaker
	LiquiditySideTaker
)

func (l LiquiditySide) String() string {
	switch l {
	case LiquiditySideMaker:
		return "MAKER"
	case LiquiditySideTaker:
		return "TAKER"
	default:
		return "NO_LIQUIDITY_SIDE"
	}
}
