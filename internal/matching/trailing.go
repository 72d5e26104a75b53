package matching

import (
	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"

	"tradecore/internal/model"
	"tradecore/internal/model/enum"
	"tradecore/internal/order"
)

var (
	ErrNotTrailing           = errors.New("order is not a trailing stop type")
	ErrNoTriggerBasis        = errors.New("no market price available for trigger type")
	ErrUnsupportedTrigger    = errors.New("unsupported trigger type for trailing stop")
	ErrUnsupportedOffsetType = errors.New("unsupported trailing offset type")
)

var bpsDivisor = decimal.New(10000, 0)

// TrailingStopCalculate recomputes the trigger (and limit price, for
// trailing stop limits) of a trailing order against the current market.
// Returned pointers are nil when the respective value does not improve:
// buy triggers only ratchet down, sell triggers only ratchet up.
func TrailingStopCalculate(
	priceIncrement model.Price,
	o *order.Order,
	core *Core,
) (newTrigger *model.Price, newPrice *model.Price, err error) {
	if !o.Type.IsTrailing() {
		return nil, nil, errors.Wrap(ErrNotTrailing, o.Type.String())
	}

	trigger := o.TriggerType
	if trigger == enum.NoTrigger || trigger == enum.TriggerTypeDefault {
		trigger = enum.TriggerTypeLastPrice
	}

	var basis model.Price
	switch trigger {
	case enum.TriggerTypeLastPrice, enum.TriggerTypeMarkPrice:
		last, ok := core.Last()
		if !ok {
			return nil, nil, errors.Wrap(ErrNoTriggerBasis, trigger.String())
		}
		basis = last
	case enum.TriggerTypeBidAsk:
		var ok bool
		if o.Side == enum.OrderSideBuy {
			basis, ok = core.Ask()
		} else {
			basis, ok = core.Bid()
		}
		if !ok {
			return nil, nil, errors.Wrap(ErrNoTriggerBasis, trigger.String())
		}
	default:
		return nil, nil, errors.Wrap(ErrUnsupportedTrigger, trigger.String())
	}

	precision := basis.Precision

	candidate, err := offsetPrice(basis, o.Side, o.TrailingOffset, o.TrailingOffsetType, priceIncrement)
	if err != nil {
		return nil, nil, err
	}
	if improved(o.Side, o.TriggerPrice, candidate) {
		p := model.PriceFromDecimal(candidate, precision)
		newTrigger = &p
	}

	if o.Type == enum.OrderTypeTrailingStopLimit {
		limitOffset := o.LimitOffset
		if limitOffset.IsZero() {
			limitOffset = o.TrailingOffset
		}
		limitCandidate, err := offsetPrice(basis, o.Side, limitOffset, o.TrailingOffsetType, priceIncrement)
		if err != nil {
			return nil, nil, err
		}
		if improved(o.Side, o.Price, limitCandidate) {
			p := model.PriceFromDecimal(limitCandidate, precision)
			newPrice = &p
		}
	}

	return newTrigger, newPrice, nil
}

// offsetPrice places the trigger at offset distance from the market basis:
// above it for buys, below it for sells.
func offsetPrice(
	basis model.Price,
	side enum.OrderSide,
	offset decimal.Decimal,
	offsetType enum.TrailingOffsetType,
	priceIncrement model.Price,
) (decimal.Decimal, error) {
	var distance decimal.Decimal
	switch offsetType {
	case enum.TrailingOffsetTypePrice:
		distance = offset
	case enum.TrailingOffsetTypeBasisPoints:
		distance = basis.Decimal().Mul(offset).Div(bpsDivisor)
	case enum.TrailingOffsetTypeTicks:
		distance = offset.Mul(priceIncrement.Decimal())
	default:
		return decimal.Decimal{}, errors.Wrap(ErrUnsupportedOffsetType, offsetType.String())
	}
	if side == enum.OrderSideBuy {
		return basis.Decimal().Add(distance), nil
	}
	return basis.Decimal().Sub(distance), nil
}

// improved reports whether the candidate tightens the current value: buy
// values only move down, sell values only move up.
func improved(side enum.OrderSide, current *model.Price, candidate decimal.Decimal) bool {
	if current == nil {
		return true
	}
	if side == enum.OrderSideBuy {
		return candidate.LessThan(current.Decimal())
	}
	return candidate.GreaterThan(current.Decimal())
}
