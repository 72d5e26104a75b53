package book

import (
	"github.com/yanun0323/logs"

	"tradecore/internal/model"
	"tradecore/internal/model/enum"
)

// Price is a side-aware price used as the ladder sort key. Buy prices sort
// descending (best first), Sell prices ascending. Comparing prices across
// sides is a bug; it is logged and treated as not-less.
type Price struct {
	Value model.Price
	Side  enum.OrderSide
}

// NewPrice builds a side-aware price.
func NewPrice(value model.Price, side enum.OrderSide) Price {
	return Price{Value: value, Side: side}
}

// Less orders same-side prices best-last ordering inverted: it reports
// whether p sorts before other in best-first order.
func (p Price) Less(other Price) bool {
	if p.Side != other.Side {
		logs.Errorf("book price compare across sides: %s vs %s", p.Side, other.Side)
		return false
	}
	if p.Side == enum.OrderSideBuy {
		return p.Value.Raw > other.Value.Raw
	}
	return p.Value.Raw < other.Value.Raw
}

// Equal reports whether both prices are the same level key.
func (p Price) Equal(other Price) bool {
	return p.Side == other.Side && p.Value.Raw == other.Value.Raw
}
