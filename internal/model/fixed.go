package model

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

var pow10 = [19]int64{
	1, 10, 100, 1_000, 10_000, 100_000, 1_000_000, 10_000_000, 100_000_000,
	1_000_000_000, 10_000_000_000, 100_000_000_000, 1_000_000_000_000,
	10_000_000_000_000, 100_000_000_000_000, 1_000_000_000_000_000,
	10_000_000_000_000_000, 100_000_000_000_000_000, 1_000_000_000_000_000_000,
}

// Price is a fixed-point signed value with a decimal precision.
// Arithmetic is exact at the raw level; values of differing precision
// must not be compared raw-to-raw.
type Price struct {
	Raw       int64
	Precision uint8
}

const (
	// PriceRawMax marks the upper sentinel used for market-order prices.
	PriceRawMax = math.MaxInt64
	// PriceRawMin marks the lower sentinel used for market-order prices.
	PriceRawMin = math.MinInt64 + 1
)

// NewPrice builds a price from a raw scaled integer.
func NewPrice(raw int64, precision uint8) Price {
	return Price{Raw: raw, Precision: precision}
}

// PriceFromFloat builds a price rounding half away from zero.
func PriceFromFloat(value float64, precision uint8) Price {
	scaled := value * float64(pow10[precision])
	return Price{Raw: int64(math.Round(scaled)), Precision: precision}
}

// PriceMax returns the upper sentinel at the given precision.
func PriceMax(precision uint8) Price {
	return Price{Raw: PriceRawMax, Precision: precision}
}

// PriceMin returns the lower sentinel at the given precision.
func PriceMin(precision uint8) Price {
	return Price{Raw: PriceRawMin, Precision: precision}
}

// IsSentinel reports whether the price is a market-order sentinel.
func (p Price) IsSentinel() bool {
	return p.Raw == PriceRawMax || p.Raw == PriceRawMin
}

// IsZero reports whether the price is unset.
func (p Price) IsZero() bool {
	return p.Raw == 0
}

// IsPositive reports whether the raw value is greater than zero.
func (p Price) IsPositive() bool {
	return p.Raw > 0
}

// Float64 converts to a float for approximate math only.
func (p Price) Float64() float64 {
	return float64(p.Raw) / float64(pow10[p.Precision])
}

// Decimal converts to an exact decimal.
func (p Price) Decimal() decimal.Decimal {
	return decimal.New(p.Raw, -int32(p.Precision))
}

func (p Price) String() string {
	return string(appendScaledInt(nil, p.Raw, int(p.Precision)))
}

// Quantity is a fixed-point unsigned value with a decimal precision.
type Quantity struct {
	Raw       uint64
	Precision uint8
}

// NewQuantity builds a quantity from a raw scaled integer.
func NewQuantity(raw uint64, precision uint8) Quantity {
	return Quantity{Raw: raw, Precision: precision}
}

// QuantityFromFloat builds a quantity rounding half away from zero.
// Negative inputs clamp to zero.
func QuantityFromFloat(value float64, precision uint8) Quantity {
	if value <= 0 {
		return Quantity{Precision: precision}
	}
	scaled := value * float64(pow10[precision])
	return Quantity{Raw: uint64(math.Round(scaled)), Precision: precision}
}

// IsZero reports whether the quantity is zero.
func (q Quantity) IsZero() bool {
	return q.Raw == 0
}

// IsPositive reports whether the quantity is greater than zero.
func (q Quantity) IsPositive() bool {
	return q.Raw > 0
}

// Float64 converts to a float for approximate math only.
func (q Quantity) Float64() float64 {
	return float64(q.Raw) / float64(pow10[q.Precision])
}

// Decimal converts to an exact decimal.
func (q Quantity) Decimal() decimal.Decimal {
	return decimal.New(int64(q.Raw), -int32(q.Precision))
}

// Sub returns q - other saturating at zero.
func (q Quantity) Sub(other Quantity) Quantity {
	if other.Raw >= q.Raw {
		return Quantity{Precision: q.Precision}
	}
	return Quantity{Raw: q.Raw - other.Raw, Precision: q.Precision}
}

// Add returns q + other at q's precision.
func (q Quantity) Add(other Quantity) Quantity {
	return Quantity{Raw: q.Raw + other.Raw, Precision: q.Precision}
}

// Min returns the smaller of the two quantities.
func (q Quantity) Min(other Quantity) Quantity {
	if other.Raw < q.Raw {
		return other
	}
	return q
}

func (q Quantity) String() string {
	return string(appendScaledInt(nil, int64(q.Raw), int(q.Precision)))
}

// PriceFromDecimal converts an exact decimal at fixed precision,
// truncating excess digits.
func PriceFromDecimal(d decimal.Decimal, precision uint8) Price {
	scaled := d.Shift(int32(precision)).Truncate(0)
	return Price{Raw: scaled.IntPart(), Precision: precision}
}

// QuantityFromDecimal converts an exact decimal at fixed precision,
// truncating excess digits.
func QuantityFromDecimal(d decimal.Decimal, precision uint8) Quantity {
	scaled := d.Shift(int32(precision)).Truncate(0)
	raw := scaled.IntPart()
	if raw < 0 {
		raw = 0
	}
	return Quantity{Raw: uint64(raw), Precision: precision}
}

func appendScaledInt(buf []byte, value int64, scale int) []byte {
	if scale <= 0 {
		return strconv.AppendInt(buf, value, 10)
	}

	neg := value < 0
	u := uint64(value)
	if neg {
		u = uint64(^value) + 1
	}

	var tmp [32]byte
	digits := strconv.AppendUint(tmp[:0], u, 10)

	if neg {
		buf = append(buf, '-')
	}

	if len(digits) <= scale {
		buf = append(buf, '0', '.')
		for i := 0; i < scale-len(digits); i++ {
			buf = append(buf, '0')
		}
		buf = append(buf, digits...)
		return buf
	}

	idx := len(digits) - scale
	buf = append(buf, digits[:idx]...)
	buf = append(buf, '.')
	buf = append(buf, digits[idx:]...)
	return buf
}
