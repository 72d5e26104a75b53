package model

import "tradecore/internal/model/enum"

// Position is the minimal position view the execution core consumes.
type Position struct {
	ID           PositionId
	InstrumentID InstrumentId
	StrategyID   StrategyId
	Side         enum.PositionSide
	Quantity     Quantity
}

// IsLong reports whether the position is net long.
func (p Position) IsLong() bool {
	return p.Side == enum.PositionSideLong && p.Quantity.IsPositive()
}

// IsShort reports whether the position is net short.
func (p Position) IsShort() bool {
	return p.Side == enum.PositionSideShort && p.Quantity.IsPositive()
}

// IsOpen reports whether the position has remaining size.
func (p Position) IsOpen() bool {
	return p.Side != enum.PositionSideFlat && p.Quantity.IsPositive()
}

// WouldReduce reports whether a fill of the given side and size would not
// increase the absolute position size.
func (p Position) WouldReduce(side enum.OrderSide, qty Quantity) bool {
	switch p.Side {
	case enum.PositionSideLong:
		return side == enum.OrderSideSell && qty.Raw <= p.Quantity.Raw
	case enum.PositionSideShort:
		return side == enum.OrderSideBuy && qty.Raw <= p.Quantity.Raw
	default:
		return false
	}
}

// ApplyFill nets a fill into the position and returns the updated position.
func (p Position) ApplyFill(side enum.OrderSide, qty Quantity) Position {
	signed := int64(p.Quantity.Raw)
	if p.Side == enum.PositionSideShort {
		signed = -signed
	}
	delta := int64(qty.Raw)
	if side == enum.OrderSideSell {
		delta = -delta
	}
	signed += delta

	next := p
	switch {
	case signed > 0:
		next.Side = enum.PositionSideLong
		next.Quantity = Quantity{Raw: uint64(signed), Precision: qty.Precision}
	case signed < 0:
		next.Side = enum.PositionSideShort
		next.Quantity = Quantity{Raw: uint64(-signed), Precision: qty.Precision}
	default:
		next.Side = enum.PositionSideFlat
		next.Quantity = Quantity{Precision: qty.Precision}
	}
	return next
}
