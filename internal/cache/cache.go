package cache

import (
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"tradecore/internal/book"
	"tradecore/internal/model"
	"tradecore/internal/model/enum"
	"tradecore/internal/order"
)

var (
	ErrOrderNotFound      = errors.New("order not found in cache")
	ErrInstrumentNotFound = errors.New("instrument not found in cache")
	ErrAccountNotFound    = errors.New("account not found in cache")
)

// Cache is the in-memory state store shared by the engines: orders,
// positions, instruments, books and latest market data. Single-threaded,
// accessed only from the engine loop.
type Cache struct {
	orders      map[model.ClientOrderId]*order.Order
	orderLists  map[model.OrderListId]order.List
	positions   map[model.PositionId]model.Position
	instruments map[model.InstrumentId]model.Instrument
	accounts    map[model.Venue]*model.Account
	books       map[model.InstrumentId]*book.OrderBook
	quotes      map[model.InstrumentId]model.QuoteTick
	trades      map[model.InstrumentId]model.TradeTick
	bars        map[model.BarType]model.Bar

	indexVenueOrder   map[model.VenueOrderId]model.ClientOrderId
	indexOrderIds     map[model.InstrumentId]map[model.ClientOrderId]struct{}
	indexStrategyIds  map[model.StrategyId]map[model.ClientOrderId]struct{}
	indexPositionIds  map[model.InstrumentId]map[model.PositionId]struct{}
	indexExecAlgoIds  map[model.ExecAlgorithmId]map[model.ClientOrderId]struct{}
	indexOrderPos     map[model.ClientOrderId]model.PositionId
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		orders:           make(map[model.ClientOrderId]*order.Order),
		orderLists:       make(map[model.OrderListId]order.List),
		positions:        make(map[model.PositionId]model.Position),
		instruments:      make(map[model.InstrumentId]model.Instrument),
		accounts:         make(map[model.Venue]*model.Account),
		books:            make(map[model.InstrumentId]*book.OrderBook),
		quotes:           make(map[model.InstrumentId]model.QuoteTick),
		trades:           make(map[model.InstrumentId]model.TradeTick),
		bars:             make(map[model.BarType]model.Bar),
		indexVenueOrder:  make(map[model.VenueOrderId]model.ClientOrderId),
		indexOrderIds:    make(map[model.InstrumentId]map[model.ClientOrderId]struct{}),
		indexStrategyIds: make(map[model.StrategyId]map[model.ClientOrderId]struct{}),
		indexPositionIds: make(map[model.InstrumentId]map[model.PositionId]struct{}),
		indexExecAlgoIds: make(map[model.ExecAlgorithmId]map[model.ClientOrderId]struct{}),
		indexOrderPos:    make(map[model.ClientOrderId]model.PositionId),
	}
}

// AddOrder indexes a new order. Re-adding an existing id overwrites it.
func (c *Cache) AddOrder(o *order.Order) {
	id := o.ClientOrderID
	if _, ok := c.orders[id]; ok {
		logs.Warnf("cache: order %s already cached, overwriting", id)
	}
	c.orders[id] = o

	if c.indexOrderIds[o.InstrumentID] == nil {
		c.indexOrderIds[o.InstrumentID] = make(map[model.ClientOrderId]struct{})
	}
	c.indexOrderIds[o.InstrumentID][id] = struct{}{}

	if c.indexStrategyIds[o.StrategyID] == nil {
		c.indexStrategyIds[o.StrategyID] = make(map[model.ClientOrderId]struct{})
	}
	c.indexStrategyIds[o.StrategyID][id] = struct{}{}

	if o.ExecAlgorithmID != "" {
		if c.indexExecAlgoIds[o.ExecAlgorithmID] == nil {
			c.indexExecAlgoIds[o.ExecAlgorithmID] = make(map[model.ClientOrderId]struct{})
		}
		c.indexExecAlgoIds[o.ExecAlgorithmID][id] = struct{}{}
	}
	if o.VenueOrderID != "" {
		c.indexVenueOrder[o.VenueOrderID] = id
	}
}

// ReplaceOrder swaps the cached order for a transformed instance sharing
// the same client order id.
func (c *Cache) ReplaceOrder(o *order.Order) {
	if _, ok := c.orders[o.ClientOrderID]; !ok {
		c.AddOrder(o)
		return
	}
	c.orders[o.ClientOrderID] = o
	c.UpdateOrder(o)
}

// UpdateOrder refreshes indexes after events mutated the order.
func (c *Cache) UpdateOrder(o *order.Order) {
	if o.VenueOrderID != "" {
		c.indexVenueOrder[o.VenueOrderID] = o.ClientOrderID
	}
	if o.PositionID != "" {
		c.indexOrderPos[o.ClientOrderID] = o.PositionID
	}
}

// Order looks up an order by client id.
func (c *Cache) Order(id model.ClientOrderId) (*order.Order, bool) {
	o, ok := c.orders[id]
	return o, ok
}

// OrderForVenueID resolves a venue order id to the cached order.
func (c *Cache) OrderForVenueID(id model.VenueOrderId) (*order.Order, bool) {
	clientID, ok := c.indexVenueOrder[id]
	if !ok {
		return nil, false
	}
	return c.Order(clientID)
}

// OrderExists reports whether the client order id is known.
func (c *Cache) OrderExists(id model.ClientOrderId) bool {
	_, ok := c.orders[id]
	return ok
}

// Orders returns all cached orders for an instrument, or every order when
// the zero instrument id is given.
func (c *Cache) Orders(instrument model.InstrumentId) []*order.Order {
	if instrument.IsZero() {
		out := make([]*order.Order, 0, len(c.orders))
		for _, o := range c.orders {
			out = append(out, o)
		}
		return out
	}
	ids := c.indexOrderIds[instrument]
	out := make([]*order.Order, 0, len(ids))
	for id := range ids {
		out = append(out, c.orders[id])
	}
	return out
}

// OrdersOpen returns working orders, optionally filtered by instrument and
// side.
func (c *Cache) OrdersOpen(instrument model.InstrumentId, side enum.OrderSide) []*order.Order {
	var out []*order.Order
	for _, o := range c.Orders(instrument) {
		if !o.IsOpen() {
			continue
		}
		if side != enum.NoOrderSide && o.Side != side {
			continue
		}
		out = append(out, o)
	}
	return out
}

// OrdersEmulated returns orders currently held by the emulator.
func (c *Cache) OrdersEmulated() []*order.Order {
	var out []*order.Order
	for _, o := range c.orders {
		if o.Status == enum.OrderStatusEmulated {
			out = append(out, o)
		}
	}
	return out
}

// OrdersForStrategy returns all orders owned by a strategy.
func (c *Cache) OrdersForStrategy(strategy model.StrategyId) []*order.Order {
	ids := c.indexStrategyIds[strategy]
	out := make([]*order.Order, 0, len(ids))
	for id := range ids {
		out = append(out, c.orders[id])
	}
	return out
}

// AddOrderList caches a contingent list.
func (c *Cache) AddOrderList(l order.List) {
	c.orderLists[l.ID] = l
}

// OrderList looks up a cached list.
func (c *Cache) OrderList(id model.OrderListId) (order.List, bool) {
	l, ok := c.orderLists[id]
	return l, ok
}

// AddPosition indexes a position.
func (c *Cache) AddPosition(p model.Position) {
	c.positions[p.ID] = p
	if c.indexPositionIds[p.InstrumentID] == nil {
		c.indexPositionIds[p.InstrumentID] = make(map[model.PositionId]struct{})
	}
	c.indexPositionIds[p.InstrumentID][p.ID] = struct{}{}
}

// Position looks up a position by id.
func (c *Cache) Position(id model.PositionId) (model.Position, bool) {
	p, ok := c.positions[id]
	return p, ok
}

// PositionsOpen returns open positions for the instrument, or all open
// positions when the zero id is given.
func (c *Cache) PositionsOpen(instrument model.InstrumentId) []model.Position {
	var out []model.Position
	if instrument.IsZero() {
		for _, p := range c.positions {
			if p.IsOpen() {
				out = append(out, p)
			}
		}
		return out
	}
	for id := range c.indexPositionIds[instrument] {
		if p := c.positions[id]; p.IsOpen() {
			out = append(out, p)
		}
	}
	return out
}

// NettingPosition returns the single netted position for an instrument and
// strategy, when one exists.
func (c *Cache) NettingPosition(instrument model.InstrumentId, strategy model.StrategyId) (model.Position, bool) {
	for id := range c.indexPositionIds[instrument] {
		p := c.positions[id]
		if p.StrategyID == strategy && p.IsOpen() {
			return p, true
		}
	}
	return model.Position{}, false
}

// PositionForOrder resolves the position an order fills into.
func (c *Cache) PositionForOrder(clientID model.ClientOrderId) (model.Position, bool) {
	posID, ok := c.indexOrderPos[clientID]
	if !ok {
		return model.Position{}, false
	}
	return c.Position(posID)
}

// NetExposure sums signed open quantity for the instrument across
// strategies. Long positions count positive, short negative.
func (c *Cache) NetExposure(instrument model.InstrumentId) int64 {
	var net int64
	for id := range c.indexPositionIds[instrument] {
		p := c.positions[id]
		if !p.IsOpen() {
			continue
		}
		if p.Side == enum.PositionSideLong {
			net += int64(p.Quantity.Raw)
		} else if p.Side == enum.PositionSideShort {
			net -= int64(p.Quantity.Raw)
		}
	}
	return net
}

// IsNetLong reports positive net exposure for the instrument.
func (c *Cache) IsNetLong(instrument model.InstrumentId) bool {
	return c.NetExposure(instrument) > 0
}

// IsNetShort reports negative net exposure for the instrument.
func (c *Cache) IsNetShort(instrument model.InstrumentId) bool {
	return c.NetExposure(instrument) < 0
}

// AddInstrument caches an instrument definition.
func (c *Cache) AddInstrument(inst model.Instrument) {
	c.instruments[inst.ID] = inst
}

// Instrument looks up an instrument definition.
func (c *Cache) Instrument(id model.InstrumentId) (model.Instrument, bool) {
	inst, ok := c.instruments[id]
	return inst, ok
}

// Instruments returns every cached instrument.
func (c *Cache) Instruments() []model.Instrument {
	out := make([]model.Instrument, 0, len(c.instruments))
	for _, inst := range c.instruments {
		out = append(out, inst)
	}
	return out
}

// AddAccount caches an account keyed by venue.
func (c *Cache) AddAccount(a *model.Account) {
	c.accounts[a.Venue] = a
}

// Account looks up the account for a venue.
func (c *Cache) Account(venue model.Venue) (*model.Account, bool) {
	a, ok := c.accounts[venue]
	return a, ok
}

// AddBook caches an order book.
func (c *Cache) AddBook(b *book.OrderBook) {
	c.books[b.InstrumentID] = b
}

// Book looks up the order book for an instrument.
func (c *Cache) Book(id model.InstrumentId) (*book.OrderBook, bool) {
	b, ok := c.books[id]
	return b, ok
}

// AddQuote stores the latest quote tick.
func (c *Cache) AddQuote(q model.QuoteTick) {
	c.quotes[q.InstrumentID] = q
}

// Quote returns the latest quote tick.
func (c *Cache) Quote(id model.InstrumentId) (model.QuoteTick, bool) {
	q, ok := c.quotes[id]
	return q, ok
}

// AddTrade stores the latest trade tick.
func (c *Cache) AddTrade(t model.TradeTick) {
	c.trades[t.InstrumentID] = t
}

// Trade returns the latest trade tick.
func (c *Cache) Trade(id model.InstrumentId) (model.TradeTick, bool) {
	t, ok := c.trades[id]
	return t, ok
}

// AddBar stores the latest bar for its type.
func (c *Cache) AddBar(b model.Bar) {
	c.bars[b.Type] = b
}

// Bar returns the latest bar for the type.
func (c *Cache) Bar(bt model.BarType) (model.Bar, bool) {
	b, ok := c.bars[bt]
	return b, ok
}

// Price resolves the latest price of the requested type for an instrument.
func (c *Cache) Price(id model.InstrumentId, priceType enum.PriceType) (model.Price, bool) {
	switch priceType {
	case enum.PriceTypeLast:
		if t, ok := c.trades[id]; ok {
			return t.Price, true
		}
	case enum.PriceTypeBid:
		if q, ok := c.quotes[id]; ok {
			return q.BidPrice, true
		}
	case enum.PriceTypeAsk:
		if q, ok := c.quotes[id]; ok {
			return q.AskPrice, true
		}
	case enum.PriceTypeMid:
		if q, ok := c.quotes[id]; ok {
			mid := (q.BidPrice.Raw + q.AskPrice.Raw) / 2
			return model.Price{Raw: mid, Precision: q.BidPrice.Precision}, true
		}
	}
	return model.Price{}, false
}
