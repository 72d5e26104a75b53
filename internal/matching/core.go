package matching

import (
	"sort"

	"github.com/yanun0323/errors"

	"tradecore/internal/model"
	"tradecore/internal/model/enum"
	"tradecore/internal/order"
)

var (
	ErrOrderAlreadyExists = errors.New("order already in matching core")
	ErrOrderNotFound      = errors.New("order not found in matching core")
	ErrMissingPrice       = errors.New("order missing price for matching")
)

// FillLimitFn handles a limit order whose price became marketable.
type FillLimitFn func(o *order.Order)

// FillMarketFn handles a market order ready to execute.
type FillMarketFn func(o *order.Order)

// TriggerStopFn handles a stop order whose trigger price was hit.
type TriggerStopFn func(o *order.Order)

// Core holds passive orders for one instrument and matches them against the
// current market. Both the emulator and the simulated venue drive a Core;
// the callbacks decide what a match means.
type Core struct {
	instrumentID   model.InstrumentId
	priceIncrement model.Price

	bid  model.Price
	ask  model.Price
	last model.Price

	hasBid  bool
	hasAsk  bool
	hasLast bool

	ordersBid []*order.Order
	ordersAsk []*order.Order

	fillLimitOrder   FillLimitFn
	fillMarketOrder  FillMarketFn
	triggerStopOrder TriggerStopFn
}

// NewCore creates a matching core for the instrument.
func NewCore(
	instrumentID model.InstrumentId,
	priceIncrement model.Price,
	fillLimit FillLimitFn,
	fillMarket FillMarketFn,
	triggerStop TriggerStopFn,
) *Core {
	return &Core{
		instrumentID:     instrumentID,
		priceIncrement:   priceIncrement,
		fillLimitOrder:   fillLimit,
		fillMarketOrder:  fillMarket,
		triggerStopOrder: triggerStop,
	}
}

// InstrumentID returns the instrument this core matches.
func (c *Core) InstrumentID() model.InstrumentId { return c.instrumentID }

// PriceIncrement returns the instrument tick size.
func (c *Core) PriceIncrement() model.Price { return c.priceIncrement }

// Bid returns the current best bid, if set.
func (c *Core) Bid() (model.Price, bool) { return c.bid, c.hasBid }

// Ask returns the current best ask, if set.
func (c *Core) Ask() (model.Price, bool) { return c.ask, c.hasAsk }

// Last returns the last traded price, if set.
func (c *Core) Last() (model.Price, bool) { return c.last, c.hasLast }

// SetBid updates the best bid.
func (c *Core) SetBid(p model.Price) { c.bid, c.hasBid = p, true }

// SetAsk updates the best ask.
func (c *Core) SetAsk(p model.Price) { c.ask, c.hasAsk = p, true }

// SetLast updates the last traded price.
func (c *Core) SetLast(p model.Price) { c.last, c.hasLast = p, true }

// Reset clears prices and orders.
func (c *Core) Reset() {
	c.bid, c.ask, c.last = model.Price{}, model.Price{}, model.Price{}
	c.hasBid, c.hasAsk, c.hasLast = false, false, false
	c.ordersBid = c.ordersBid[:0]
	c.ordersAsk = c.ordersAsk[:0]
}

// GetOrder looks up a held order by client id.
func (c *Core) GetOrder(id model.ClientOrderId) (*order.Order, bool) {
	for _, o := range c.ordersBid {
		if o.ClientOrderID == id {
			return o, true
		}
	}
	for _, o := range c.ordersAsk {
		if o.ClientOrderID == id {
			return o, true
		}
	}
	return nil, false
}

// OrderExists reports whether the client order id is held.
func (c *Core) OrderExists(id model.ClientOrderId) bool {
	_, ok := c.GetOrder(id)
	return ok
}

// OrdersBid returns the held buy orders, best price first.
func (c *Core) OrdersBid() []*order.Order { return c.ordersBid }

// OrdersAsk returns the held sell orders, best price first.
func (c *Core) OrdersAsk() []*order.Order { return c.ordersAsk }

// OrderCount returns the number of held orders.
func (c *Core) OrderCount() int {
	return len(c.ordersBid) + len(c.ordersAsk)
}

// sortKey orders by limit price when present, trigger price otherwise.
func sortKey(o *order.Order) int64 {
	if o.Price != nil && !o.Price.IsSentinel() {
		return o.Price.Raw
	}
	if o.TriggerPrice != nil {
		return o.TriggerPrice.Raw
	}
	return 0
}

// AddOrder inserts a passive order into its side queue.
func (c *Core) AddOrder(o *order.Order) error {
	if c.OrderExists(o.ClientOrderID) {
		return errors.Wrap(ErrOrderAlreadyExists, string(o.ClientOrderID))
	}
	switch o.Side {
	case enum.OrderSideBuy:
		c.ordersBid = insertSorted(c.ordersBid, o, func(a, b int64) bool { return a > b })
	case enum.OrderSideSell:
		c.ordersAsk = insertSorted(c.ordersAsk, o, func(a, b int64) bool { return a < b })
	default:
		return errors.New("order has no side: " + string(o.ClientOrderID))
	}
	return nil
}

func insertSorted(list []*order.Order, o *order.Order, better func(a, b int64) bool) []*order.Order {
	key := sortKey(o)
	i := sort.Search(len(list), func(i int) bool { return !better(sortKey(list[i]), key) })
	list = append(list, nil)
	copy(list[i+1:], list[i:])
	list[i] = o
	return list
}

// DeleteOrder removes a held order.
func (c *Core) DeleteOrder(o *order.Order) error {
	switch o.Side {
	case enum.OrderSideBuy:
		for i, held := range c.ordersBid {
			if held.ClientOrderID == o.ClientOrderID {
				c.ordersBid = append(c.ordersBid[:i], c.ordersBid[i+1:]...)
				return nil
			}
		}
	case enum.OrderSideSell:
		for i, held := range c.ordersAsk {
			if held.ClientOrderID == o.ClientOrderID {
				c.ordersAsk = append(c.ordersAsk[:i], c.ordersAsk[i+1:]...)
				return nil
			}
		}
	}
	return errors.Wrap(ErrOrderNotFound, string(o.ClientOrderID))
}

// Iterate re-evaluates every held order against the current market. The
// queues are walked over a snapshot so callbacks may add or remove orders.
// Mixed limit and stop sort keys break price monotonicity, so every order
// is visited rather than stopping at the first non-marketable one.
func (c *Core) Iterate() {
	for _, o := range snapshotOrders(c.ordersBid) {
		if c.OrderExists(o.ClientOrderID) {
			c.MatchOrder(o, false)
		}
	}
	for _, o := range snapshotOrders(c.ordersAsk) {
		if c.OrderExists(o.ClientOrderID) {
			c.MatchOrder(o, false)
		}
	}
}

func snapshotOrders(list []*order.Order) []*order.Order {
	return append([]*order.Order(nil), list...)
}

// MatchOrder evaluates a single order against the market. The initial flag
// marks the first evaluation after arrival, before the order has rested.
func (c *Core) MatchOrder(o *order.Order, initial bool) {
	if o.Type.IsTrailing() && !o.IsActivated {
		return
	}
	switch o.Type {
	case enum.OrderTypeLimit, enum.OrderTypeMarketToLimit:
		c.matchLimitOrder(o)
	case enum.OrderTypeStopMarket, enum.OrderTypeMarketIfTouched,
		enum.OrderTypeTrailingStopMarket:
		c.matchStopOrder(o)
	case enum.OrderTypeStopLimit, enum.OrderTypeLimitIfTouched,
		enum.OrderTypeTrailingStopLimit:
		c.matchStopLimitOrder(o, initial)
	}
}

func (c *Core) matchLimitOrder(o *order.Order) {
	if o.Price == nil {
		return
	}
	if c.IsLimitMatched(o.Side, *o.Price) {
		c.fillLimitOrder(o)
	}
}

func (c *Core) matchStopOrder(o *order.Order) {
	if o.TriggerPrice == nil {
		return
	}
	if c.IsStopMatched(o.Side, *o.TriggerPrice) {
		c.triggerStopOrder(o)
	}
}

func (c *Core) matchStopLimitOrder(o *order.Order, initial bool) {
	if o.IsTriggered {
		// trigger already hit, the order now works as a plain limit
		c.matchLimitOrder(o)
		return
	}
	if o.TriggerPrice == nil {
		return
	}
	if c.IsStopMatched(o.Side, *o.TriggerPrice) {
		c.triggerStopOrder(o)
		if !initial && o.IsTriggered && o.Price != nil {
			c.matchLimitOrder(o)
		}
	}
}

// IsLimitMatched reports whether a limit price is marketable: buys match
// when the ask has come down to the price, sells when the bid has come up.
func (c *Core) IsLimitMatched(side enum.OrderSide, price model.Price) bool {
	switch side {
	case enum.OrderSideBuy:
		return c.hasAsk && c.ask.Raw <= price.Raw
	case enum.OrderSideSell:
		return c.hasBid && c.bid.Raw >= price.Raw
	default:
		return false
	}
}

// IsStopMatched reports whether a stop trigger fired: buy stops trigger when
// the ask rises to the trigger, sell stops when the bid falls to it.
func (c *Core) IsStopMatched(side enum.OrderSide, trigger model.Price) bool {
	switch side {
	case enum.OrderSideBuy:
		return c.hasAsk && c.ask.Raw >= trigger.Raw
	case enum.OrderSideSell:
		return c.hasBid && c.bid.Raw <= trigger.Raw
	default:
		return false
	}
}

// IsTouchTriggered reports whether an if-touched trigger fired: the inverse
// of a stop, buys trigger when the market falls to the trigger price.
func (c *Core) IsTouchTriggered(side enum.OrderSide, trigger model.Price) bool {
	switch side {
	case enum.OrderSideBuy:
		return c.hasAsk && c.ask.Raw <= trigger.Raw
	case enum.OrderSideSell:
		return c.hasBid && c.bid.Raw >= trigger.Raw
	default:
		return false
	}
}
