package venue

import (
	"github.com/google/uuid"
	"github.com/yanun0323/logs"

	"tradecore/internal/bus"
	"tradecore/internal/cache"
	"tradecore/internal/clock"
	"tradecore/internal/command"
	"tradecore/internal/model"
	"tradecore/internal/order"
)

// Exchange is the simulated venue facade: it owns one matching engine per
// instrument, holds the venue account, and consumes execution commands off
// the bus.
type Exchange struct {
	clock clock.Clock
	cache *cache.Cache
	bus   *bus.Bus
	cfg   Config

	accountID model.AccountId
	engines   map[model.InstrumentId]*MatchingEngine
}

// NewExchange creates the venue and seeds its account into the cache.
func NewExchange(
	cl clock.Clock,
	c *cache.Cache,
	b *bus.Bus,
	cfg Config,
	balances ...model.AccountBalance,
) *Exchange {
	x := &Exchange{
		clock:     cl,
		cache:     c,
		bus:       b,
		cfg:       cfg,
		accountID: model.AccountId(string(cfg.Venue) + "-001"),
		engines:   make(map[model.InstrumentId]*MatchingEngine),
	}
	c.AddAccount(model.NewAccount(x.accountID, cfg.Venue, cfg.AccountType, balances...))
	return x
}

// AccountID returns the venue account identifier.
func (x *Exchange) AccountID() model.AccountId { return x.accountID }

// AddInstrument lists an instrument on the venue and returns its engine.
func (x *Exchange) AddInstrument(inst model.Instrument) *MatchingEngine {
	x.cache.AddInstrument(inst)
	engine := NewMatchingEngine(x.clock, x.cache, x.bus, x.cfg, inst, x.accountID)
	x.engines[inst.ID] = engine
	return engine
}

// Engine returns the matching engine for an instrument.
func (x *Exchange) Engine(id model.InstrumentId) (*MatchingEngine, bool) {
	engine, ok := x.engines[id]
	return engine, ok
}

// Start attaches the exchange to the execution endpoint.
func (x *Exchange) Start() {
	x.bus.Register(bus.EndpointExecExecute, func(msg any) {
		cmd, ok := msg.(command.Command)
		if !ok {
			logs.Warnf("venue: unexpected message %T on %s", msg, bus.EndpointExecExecute)
			return
		}
		x.Execute(cmd)
	})
}

// Stop detaches the exchange from the bus.
func (x *Exchange) Stop() {
	x.bus.Deregister(bus.EndpointExecExecute)
}

// Execute routes a trading command to the instrument's engine.
func (x *Exchange) Execute(cmd command.Command) {
	switch c := cmd.(type) {
	case command.SubmitOrder:
		x.submitOrder(c.Order)
	case command.SubmitOrderList:
		for _, o := range c.List.Orders {
			x.submitOrder(o)
		}
	case command.ModifyOrder:
		if engine, ok := x.engines[c.InstrumentID]; ok {
			engine.ProcessModify(c)
		} else {
			logs.Warnf("venue: modify for unlisted instrument %s", c.InstrumentID)
		}
	case command.CancelOrder:
		if engine, ok := x.engines[c.InstrumentID]; ok {
			engine.ProcessCancel(c)
		} else {
			logs.Warnf("venue: cancel for unlisted instrument %s", c.InstrumentID)
		}
	case command.CancelAllOrders:
		if engine, ok := x.engines[c.InstrumentID]; ok {
			engine.ProcessCancelAll(c)
		}
	case command.BatchCancelOrders:
		engine, ok := x.engines[c.InstrumentID]
		if !ok {
			logs.Warnf("venue: batch cancel for unlisted instrument %s", c.InstrumentID)
			return
		}
		for _, cancel := range c.Cancels {
			engine.ProcessCancel(cancel)
		}
	default:
		logs.Warnf("venue: unhandled command %T", cmd)
	}
}

func (x *Exchange) submitOrder(o *order.Order) {
	engine, ok := x.engines[o.InstrumentID]
	if !ok {
		x.rejectUnlisted(o)
		return
	}
	engine.SubmitOrder(o)
}

// rejectUnlisted acknowledges then rejects an order for an instrument the
// venue does not list.
func (x *Exchange) rejectUnlisted(o *order.Order) {
	submitted := order.Submitted{Common: x.eventCommon(o)}
	x.bus.Send(bus.EndpointExecProcess, submitted)
	x.bus.Publish(bus.TopicOrderEvents+string(o.StrategyID), submitted)

	rejected := order.Rejected{
		Common: x.eventCommon(o),
		Reason: "no such instrument " + o.InstrumentID.String() + " on venue " + string(x.cfg.Venue),
	}
	x.bus.Send(bus.EndpointExecProcess, rejected)
	x.bus.Publish(bus.TopicOrderEvents+string(o.StrategyID), rejected)
}

func (x *Exchange) eventCommon(o *order.Order) order.Common {
	ts := x.clock.TimestampNs()
	return order.Common{
		EventID:       uuid.New(),
		TraderID:      o.TraderID,
		StrategyID:    o.StrategyID,
		InstrumentID:  o.InstrumentID,
		ClientOrderID: o.ClientOrderID,
		VenueOrderID:  o.VenueOrderID,
		AccountID:     x.accountID,
		TsEventNs:     ts,
		TsInitNs:      ts,
	}
}

// ProcessQuoteTick replays a quote into the listing engine.
func (x *Exchange) ProcessQuoteTick(q model.QuoteTick) {
	if engine, ok := x.engines[q.InstrumentID]; ok {
		engine.ProcessQuoteTick(q)
	}
}

// ProcessTradeTick replays a trade into the listing engine.
func (x *Exchange) ProcessTradeTick(t model.TradeTick) {
	if engine, ok := x.engines[t.InstrumentID]; ok {
		engine.ProcessTradeTick(t)
	}
}

// ProcessOrderBookDeltas replays book depth into the listing engine.
func (x *Exchange) ProcessOrderBookDeltas(deltas model.OrderBookDeltas) {
	if engine, ok := x.engines[deltas.InstrumentID]; ok {
		engine.ProcessOrderBookDeltas(deltas)
	}
}

// ProcessBar replays an aggregated bar into the listing engine.
func (x *Exchange) ProcessBar(bar model.Bar) {
	if engine, ok := x.engines[bar.Type.InstrumentID]; ok {
		engine.ProcessBar(bar)
	}
}

// ProcessInstrumentStatus applies a market phase change.
func (x *Exchange) ProcessInstrumentStatus(status model.InstrumentStatus) {
	if engine, ok := x.engines[status.InstrumentID]; ok {
		engine.ProcessInstrumentStatus(status)
	}
}

// InstrumentCount reports how many instruments the venue lists.
func (x *Exchange) InstrumentCount() int { return len(x.engines) }
