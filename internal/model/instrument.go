package model

import (
	"github.com/shopspring/decimal"

	"tradecore/internal/model/enum"
)

// Money is an amount in a specific currency. Exact decimal arithmetic.
type Money struct {
	Amount   decimal.Decimal
	Currency string
}

// NewMoney builds a money value.
func NewMoney(amount decimal.Decimal, currency string) Money {
	return Money{Amount: amount, Currency: currency}
}

func (m Money) String() string {
	return m.Amount.String() + " " + m.Currency
}

// Instrument is the static definition the engines validate against.
type Instrument struct {
	ID             InstrumentId
	Class          enum.InstrumentClass
	BaseCurrency   string
	QuoteCurrency  string
	PricePrecision uint8
	SizePrecision  uint8
	PriceIncrement Price
	SizeIncrement  Quantity
	Multiplier     decimal.Decimal
	LotSize        *Quantity
	MaxQuantity    *Quantity
	MinQuantity    *Quantity
	MaxNotional    *Money
	MinNotional    *Money
	MakerFeeBps    decimal.Decimal
	TakerFeeBps    decimal.Decimal
	ActivationNs   int64 // zero when the instrument never activates
	ExpirationNs   int64 // zero when the instrument never expires
	IsInverse      bool
}

// NotionalValue computes quantity * multiplier * price in the quote
// currency. For inverse instruments with useQuoteForInverse the quantity is
// interpreted as already quote-denominated.
func (i Instrument) NotionalValue(qty Quantity, price Price, useQuoteForInverse bool) Money {
	mult := i.Multiplier
	if mult.IsZero() {
		mult = decimal.New(1, 0)
	}
	if i.IsInverse && useQuoteForInverse {
		return Money{Amount: qty.Decimal().Mul(mult), Currency: i.QuoteCurrency}
	}
	amount := qty.Decimal().Mul(mult).Mul(price.Decimal())
	return Money{Amount: amount, Currency: i.QuoteCurrency}
}

// MakePrice quantizes a raw float onto the instrument's price grid.
func (i Instrument) MakePrice(value float64) Price {
	return PriceFromFloat(value, i.PricePrecision)
}

// MakeQty quantizes a raw float onto the instrument's size grid.
func (i Instrument) MakeQty(value float64) Quantity {
	return QuantityFromFloat(value, i.SizePrecision)
}

// IsActiveAt reports whether the instrument trades at the given timestamp.
func (i Instrument) IsActiveAt(tsNs int64) bool {
	if i.ActivationNs != 0 && tsNs < i.ActivationNs {
		return false
	}
	if i.ExpirationNs != 0 && tsNs > i.ExpirationNs {
		return false
	}
	return true
}
