package enum

// BookType describes order book depth granularity.
type BookType uint8

const (
	BookTypeL1 BookType = iota + 1 // top-of-book, one virtual order per side
	BookTypeL2                     // price-aggregated
	BookTypeL3                     // per-order
)

func (b BookType) String() string {
	switch b {
	case BookTypeL1:
		return "L1_MBP"
	case BookTypeL2:
		return "L2_MBP"
	case BookTypeL3:
		return "L3_MBO"
	default:
		return "UNKNOWN"
	}
}

// BookAction describes an order book delta operation.
type BookAction uint8

const (
	BookActionAdd BookAction = iota + 1
	BookActionUpdate
	BookActionDelete
	BookActionClear
)

// AggressorSide describes which party crossed the spread.
type AggressorSide uint8

const (
	NoAggressor AggressorSide = iota
	AggressorBuyer
	AggressorSeller
)

// PriceType describes the price series a bar aggregates.
type PriceType uint8

const (
	PriceTypeLast PriceType = iota
	PriceTypeBid
	PriceTypeAsk
	PriceTypeMid
)

// MarketStatus is the venue-level trading state of an instrument.
type MarketStatus uint8

const (
	MarketStatusOpen MarketStatus = iota
	MarketStatusPreOpen
	MarketStatusPaused
	MarketStatusSuspended
	MarketStatusHalted
	MarketStatusClosed
)

func (m MarketStatus) String() string {
	switch m {
	case MarketStatusOpen:
		return "OPEN"
	case MarketStatusPreOpen:
		return "PRE_OPEN"
	case MarketStatusPaused:
		return "PAUSED"
	case MarketStatusSuspended:
		return "SUSPENDED"
	case MarketStatusHalted:
		return "HALTED"
	case MarketStatusClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// MarketStatusAction is a venue instruction changing the market status.
type MarketStatusAction uint8

const (
	MarketActionTrading MarketStatusAction = iota + 1
	MarketActionPreOpen
	MarketActionPause
	MarketActionSuspend
	MarketActionHalt
	MarketActionClose
)

// OmsType describes how positions aggregate at the venue.
type OmsType uint8

const (
	OmsNetting OmsType = iota + 1 // one aggregated position per instrument
	OmsHedging                    // multiple concurrent positions
)

// AccountType describes the account funding model.
type AccountType uint8

const (
	AccountTypeCash AccountType = iota + 1
	AccountTypeMargin
	AccountTypeBetting
)

// TradingState gates command flow through the risk engine.
type TradingState uint8

const (
	TradingStateActive TradingState = iota + 1
	TradingStateHalted
	TradingStateReducing
)

func (t TradingState) String() string {
	switch t {
	case TradingStateActive:
		return "ACTIVE"
	case TradingStateHalted:
		return "HALTED"
	case TradingStateReducing:
		return "REDUCING"
	default:
		return "UNKNOWN"
	}
}

// PositionSide describes net position direction.
type PositionSide uint8

const (
	PositionSideFlat PositionSide = iota
	PositionSideLong
	PositionSideShort
)

func (p PositionSide) String() string {
	switch p {
	case PositionSideLong:
		return "LONG"
	case PositionSideShort:
		return "SHORT"
	default:
		return "FLAT"
	}
}

// InstrumentClass is a coarse asset classification.
type InstrumentClass uint8

const (
	InstrumentClassSpot InstrumentClass = iota + 1
	InstrumentClassEquity
	InstrumentClassFuture
	InstrumentClassOption
)
