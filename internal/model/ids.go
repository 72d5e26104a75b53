package model

import "strings"

// Venue is a trading venue identifier.
type Venue string

// InstrumentId is a venue-qualified symbol. Comparisons are value-based.
type InstrumentId struct {
	Symbol string
	Venue  Venue
}

// NewInstrumentId builds an instrument id from its parts.
func NewInstrumentId(symbol string, venue Venue) InstrumentId {
	return InstrumentId{Symbol: symbol, Venue: venue}
}

// ParseInstrumentId parses "SYMBOL.VENUE". A missing venue yields an empty one.
func ParseInstrumentId(s string) InstrumentId {
	idx := strings.LastIndexByte(s, '.')
	if idx < 0 {
		return InstrumentId{Symbol: s}
	}
	return InstrumentId{Symbol: s[:idx], Venue: Venue(s[idx+1:])}
}

func (id InstrumentId) String() string {
	return id.Symbol + "." + string(id.Venue)
}

// IsZero reports whether the id is unset.
func (id InstrumentId) IsZero() bool {
	return id.Symbol == "" && id.Venue == ""
}

// TraderId identifies a trading node.
type TraderId string

// StrategyId identifies a strategy instance.
type StrategyId string

// ClientOrderId is the client-assigned order identifier.
type ClientOrderId string

// VenueOrderId is the venue-assigned order identifier.
type VenueOrderId string

// AccountId identifies an account at a venue.
type AccountId string

// PositionId identifies a position.
type PositionId string

// TradeId identifies a single trade/fill at the venue.
type TradeId string

// OrderListId identifies a contingent order list.
type OrderListId string

// ExecAlgorithmId identifies an execution algorithm.
type ExecAlgorithmId string
