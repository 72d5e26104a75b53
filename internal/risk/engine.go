package risk

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yanun0323/logs"

	"tradecore/internal/bus"
	"tradecore/internal/cache"
	"tradecore/internal/clock"
	"tradecore/internal/command"
	"tradecore/internal/model"
	"tradecore/internal/model/enum"
	"tradecore/internal/order"
)

// Denial reasons surfaced on OrderDenied events.
const (
	ReasonRejectedByThrottler        = "REJECTED BY THROTTLER"
	ReasonNotionalExceedsMaxPerOrder = "NOTIONAL_EXCEEDS_MAX_PER_ORDER"
	ReasonNotionalLessThanMin        = "NOTIONAL_LESS_THAN_MIN_FOR_INSTRUMENT"
	ReasonNotionalGreaterThanMax     = "NOTIONAL_GREATER_THAN_MAX_FOR_INSTRUMENT"
	ReasonNotionalExceedsFree        = "NOTIONAL_EXCEEDS_FREE_BALANCE"
	ReasonCumNotionalExceedsFree     = "CUM_NOTIONAL_EXCEEDS_FREE_BALANCE"
)

// Config defines the pre-trade risk limits.
type Config struct {
	Bypass              bool              `json:"bypass"`
	MaxOrderSubmitRate  int               `json:"maxOrderSubmitRate"`
	MaxOrderSubmitBurst time.Duration     `json:"maxOrderSubmitWindow"`
	MaxOrderModifyRate  int               `json:"maxOrderModifyRate"`
	MaxOrderModifyBurst time.Duration     `json:"maxOrderModifyWindow"`
	MaxNotionalPerOrder map[string]string `json:"maxNotionalPerOrder"` // instrument id -> decimal
}

// TradingStateChanged is published on the risk topic when the state moves.
type TradingStateChanged struct {
	State     enum.TradingState
	TsEventNs int64
}

// Engine is the pre-trade risk gate. Every order command passes through it
// before reaching the emulator or the execution engine.
type Engine struct {
	clock clock.Clock
	cache *cache.Cache
	bus   *bus.Bus
	cfg   Config

	tradingState    enum.TradingState
	submitThrottler *Throttler
	modifyThrottler *Throttler
	maxNotional     map[model.InstrumentId]decimal.Decimal
}

// NewEngine creates a risk engine with static limits.
func NewEngine(cl clock.Clock, c *cache.Cache, b *bus.Bus, cfg Config) *Engine {
	maxNotional := make(map[model.InstrumentId]decimal.Decimal, len(cfg.MaxNotionalPerOrder))
	for key, raw := range cfg.MaxNotionalPerOrder {
		id := model.ParseInstrumentId(key)
		limit, err := decimal.NewFromString(raw)
		if err != nil {
			logs.Errorf("risk: bad max notional %q for %s: %+v", raw, key, err)
			continue
		}
		maxNotional[id] = limit
	}
	return &Engine{
		clock:           cl,
		cache:           c,
		bus:             b,
		cfg:             cfg,
		tradingState:    enum.TradingStateActive,
		submitThrottler: NewThrottler(cfg.MaxOrderSubmitRate, cfg.MaxOrderSubmitBurst, cl),
		modifyThrottler: NewThrottler(cfg.MaxOrderModifyRate, cfg.MaxOrderModifyBurst, cl),
		maxNotional:     maxNotional,
	}
}

// Start registers the command endpoint.
func (e *Engine) Start() {
	e.bus.Register(bus.EndpointRiskExecute, func(msg any) {
		cmd, ok := msg.(command.Command)
		if !ok {
			logs.Warnf("risk: dropping non-command message %T", msg)
			return
		}
		e.Execute(cmd)
	})
}

// Stop deregisters the command endpoint.
func (e *Engine) Stop() {
	e.bus.Deregister(bus.EndpointRiskExecute)
}

// TradingState returns the current gate state.
func (e *Engine) TradingState() enum.TradingState { return e.tradingState }

// SetTradingState moves the gate and announces the change.
func (e *Engine) SetTradingState(state enum.TradingState) {
	if state == e.tradingState {
		return
	}
	e.tradingState = state
	logs.Infof("risk: trading state now %s", state)
	e.bus.Publish(bus.TopicRiskEvents, TradingStateChanged{
		State:     state,
		TsEventNs: e.clock.TimestampNs(),
	})
}

// Execute dispatches a trading command through the pre-trade checks.
func (e *Engine) Execute(cmd command.Command) {
	switch c := cmd.(type) {
	case command.SubmitOrder:
		e.handleSubmitOrder(c)
	case command.SubmitOrderList:
		e.handleSubmitOrderList(c)
	case command.ModifyOrder:
		e.handleModifyOrder(c)
	case command.CancelOrder, command.CancelAllOrders, command.BatchCancelOrders:
		// cancels are never gated
		e.bus.Send(bus.EndpointExecExecute, cmd)
	default:
		logs.Warnf("risk: unhandled command %T", cmd)
	}
}

func (e *Engine) handleSubmitOrder(cmd command.SubmitOrder) {
	o := cmd.Order
	if !e.cache.OrderExists(o.ClientOrderID) {
		e.cache.AddOrder(o)
	}
	if e.cfg.Bypass {
		e.route(cmd)
		return
	}

	if reason, ok := e.checkTradingState(o); !ok {
		e.denyOrder(o, reason)
		return
	}
	inst, ok := e.cache.Instrument(o.InstrumentID)
	if !ok {
		e.denyOrder(o, "INSTRUMENT_NOT_FOUND: "+o.InstrumentID.String())
		return
	}
	if reason, ok := e.checkOrder(o, inst); !ok {
		e.denyOrder(o, reason)
		return
	}
	if reason, ok := e.checkBalance(inst, decimal.Decimal{}, o); !ok {
		e.denyOrder(o, reason)
		return
	}
	if !e.submitThrottler.Allow() {
		e.denyOrder(o, ReasonRejectedByThrottler)
		return
	}
	e.route(cmd)
}

func (e *Engine) handleSubmitOrderList(cmd command.SubmitOrderList) {
	for _, o := range cmd.List.Orders {
		if !e.cache.OrderExists(o.ClientOrderID) {
			e.cache.AddOrder(o)
		}
	}
	if e.cfg.Bypass {
		e.routeList(cmd)
		return
	}

	denyAll := func(reason string) {
		for _, o := range cmd.List.Orders {
			if o.IsClosed() {
				continue
			}
			e.denyOrder(o, reason)
		}
	}

	cumNotional := decimal.Decimal{}
	for _, o := range cmd.List.Orders {
		if reason, ok := e.checkTradingState(o); !ok {
			denyAll(reason)
			return
		}
		inst, ok := e.cache.Instrument(o.InstrumentID)
		if !ok {
			denyAll("INSTRUMENT_NOT_FOUND: " + o.InstrumentID.String())
			return
		}
		if reason, ok := e.checkOrder(o, inst); !ok {
			denyAll(reason)
			return
		}
		reason, ok, notional := e.checkBalanceCum(inst, cumNotional, o)
		if !ok {
			denyAll(reason)
			return
		}
		cumNotional = cumNotional.Add(notional)
	}
	if !e.submitThrottler.Allow() {
		denyAll(ReasonRejectedByThrottler)
		return
	}
	e.routeList(cmd)
}

func (e *Engine) handleModifyOrder(cmd command.ModifyOrder) {
	o, ok := e.cache.Order(cmd.ClientOrderID)
	if !ok {
		logs.Warnf("risk: modify unknown order %s", cmd.ClientOrderID)
		return
	}
	if o.IsClosed() {
		e.rejectModify(o, "order already closed")
		return
	}
	if inst, found := e.cache.Instrument(o.InstrumentID); found {
		if cmd.Price != nil {
			if reason, valid := checkPrice(*cmd.Price, o.Type, inst); !valid {
				e.rejectModify(o, reason)
				return
			}
		}
		if cmd.TriggerPrice != nil {
			if reason, valid := checkTrigger(*cmd.TriggerPrice, inst); !valid {
				e.rejectModify(o, reason)
				return
			}
		}
		if cmd.Quantity.IsPositive() {
			if reason, valid := checkQuantity(cmd.Quantity, o.QuoteQuantity, inst); !valid {
				e.rejectModify(o, reason)
				return
			}
		}
	}
	if !e.modifyThrottler.Allow() {
		e.rejectModify(o, ReasonRejectedByThrottler)
		return
	}
	if o.IsEmulated() && o.Status == enum.OrderStatusEmulated {
		e.bus.Send(bus.EndpointEmulatorExecute, command.Command(cmd))
		return
	}
	e.bus.Send(bus.EndpointExecExecute, command.Command(cmd))
}

// checkTradingState gates by the current state: halted blocks everything,
// reducing blocks orders that would grow net exposure.
func (e *Engine) checkTradingState(o *order.Order) (string, bool) {
	switch e.tradingState {
	case enum.TradingStateHalted:
		return "TRADING_HALTED", false
	case enum.TradingStateReducing:
		if o.IsBuy() && e.cache.IsNetLong(o.InstrumentID) {
			return "BUY_WHEN_REDUCING_EXPOSURE", false
		}
		if o.IsSell() && e.cache.IsNetShort(o.InstrumentID) {
			return "SELL_WHEN_REDUCING_EXPOSURE", false
		}
	}
	return "", true
}

// checkOrder validates the static order fields against the instrument.
func (e *Engine) checkOrder(o *order.Order, inst model.Instrument) (string, bool) {
	if o.TimeInForce == enum.TimeInForceGTD && o.ExpireTimeNs <= e.clock.TimestampNs() {
		return "GTD expire time already past", false
	}
	if o.Price != nil {
		if reason, ok := checkPrice(*o.Price, o.Type, inst); !ok {
			return reason, false
		}
	}
	if o.TriggerPrice != nil {
		if reason, ok := checkTrigger(*o.TriggerPrice, inst); !ok {
			return reason, false
		}
	}
	if reason, ok := checkQuantity(o.Quantity, o.QuoteQuantity, inst); !ok {
		return reason, false
	}

	notional, priced := e.notional(o, inst)
	if !priced {
		return "", true
	}
	if limit, ok := e.maxNotional[inst.ID]; ok && notional.GreaterThan(limit) {
		return ReasonNotionalExceedsMaxPerOrder, false
	}
	if inst.MaxNotional != nil && notional.GreaterThan(inst.MaxNotional.Amount) {
		return ReasonNotionalGreaterThanMax, false
	}
	if inst.MinNotional != nil && notional.LessThan(inst.MinNotional.Amount) {
		return ReasonNotionalLessThanMin, false
	}
	return "", true
}

func checkPrice(p model.Price, orderType enum.OrderType, inst model.Instrument) (string, bool) {
	if p.Precision != inst.PricePrecision {
		return "price precision " + p.String() + " invalid for instrument", false
	}
	if !p.IsPositive() && inst.Class != enum.InstrumentClassOption {
		return "price " + p.String() + " not positive", false
	}
	_ = orderType
	return "", true
}

func checkTrigger(p model.Price, inst model.Instrument) (string, bool) {
	if p.Precision != inst.PricePrecision {
		return "trigger price precision " + p.String() + " invalid for instrument", false
	}
	if !p.IsPositive() {
		return "trigger price " + p.String() + " not positive", false
	}
	return "", true
}

func checkQuantity(q model.Quantity, quoteQuantity bool, inst model.Instrument) (string, bool) {
	if q.Precision != inst.SizePrecision {
		return "quantity precision " + q.String() + " invalid for instrument", false
	}
	if !q.IsPositive() {
		return "quantity " + q.String() + " not positive", false
	}
	if quoteQuantity {
		// quantity is denominated in the quote currency; the base-size
		// bounds do not apply until the venue converts it
		return "", true
	}
	if inst.MaxQuantity != nil && q.Raw > inst.MaxQuantity.Raw {
		return "quantity " + q.String() + " exceeds maximum", false
	}
	if inst.MinQuantity != nil && q.Raw < inst.MinQuantity.Raw {
		return "quantity " + q.String() + " under minimum", false
	}
	return "", true
}

// notional computes the order's quote-currency exposure at its worst-case
// fill price. Unpriceable orders (market with no market data) pass.
func (e *Engine) notional(o *order.Order, inst model.Instrument) (decimal.Decimal, bool) {
	px, ok := e.worstCasePrice(o, inst)
	if !ok {
		return decimal.Decimal{}, false
	}
	if o.QuoteQuantity {
		return o.Quantity.Decimal(), true
	}
	return inst.NotionalValue(o.Quantity, px, false).Amount, true
}

// worstCasePrice resolves the most expensive plausible fill price.
func (e *Engine) worstCasePrice(o *order.Order, inst model.Instrument) (model.Price, bool) {
	if o.Price != nil && !o.Price.IsSentinel() {
		px := *o.Price
		if o.QuoteQuantity {
			// quote-quantity fills convert at the better of limit and market
			if o.IsBuy() {
				if ask, ok := e.cache.Price(inst.ID, enum.PriceTypeAsk); ok && ask.Raw < px.Raw {
					px = ask
				}
			} else {
				if bid, ok := e.cache.Price(inst.ID, enum.PriceTypeBid); ok && bid.Raw > px.Raw {
					px = bid
				}
			}
		}
		return px, true
	}
	if o.TriggerPrice != nil {
		return *o.TriggerPrice, true
	}
	if o.IsBuy() {
		return e.cache.Price(inst.ID, enum.PriceTypeAsk)
	}
	return e.cache.Price(inst.ID, enum.PriceTypeBid)
}

// checkBalance verifies a cash account can fund the order.
func (e *Engine) checkBalance(inst model.Instrument, cumNotional decimal.Decimal, o *order.Order) (string, bool) {
	reason, ok, _ := e.checkBalanceCum(inst, cumNotional, o)
	return reason, ok
}

func (e *Engine) checkBalanceCum(inst model.Instrument, cumNotional decimal.Decimal, o *order.Order) (string, bool, decimal.Decimal) {
	acct, ok := e.cache.Account(o.InstrumentID.Venue)
	if !ok || acct.Type != enum.AccountTypeCash {
		return "", true, decimal.Decimal{}
	}
	if o.ReduceOnly {
		// closing exposure releases funds rather than consuming them
		return "", true, decimal.Decimal{}
	}

	notional, priced := e.notional(o, inst)
	if !priced {
		return "", true, decimal.Decimal{}
	}

	if o.IsBuy() {
		free, has := acct.BalanceFree(inst.QuoteCurrency)
		if !has {
			return "", true, notional
		}
		if notional.GreaterThan(free) {
			return ReasonNotionalExceedsFree, false, notional
		}
		if cumNotional.Add(notional).GreaterThan(free) {
			return ReasonCumNotionalExceedsFree, false, notional
		}
		return "", true, notional
	}

	// sells spend the base currency
	free, has := acct.BalanceFree(inst.BaseCurrency)
	if !has {
		return "", true, decimal.Decimal{}
	}
	required := o.Quantity.Decimal()
	if required.GreaterThan(free) {
		return ReasonNotionalExceedsFree, false, decimal.Decimal{}
	}
	return "", true, decimal.Decimal{}
}

func (e *Engine) denyOrder(o *order.Order, reason string) {
	ts := e.clock.TimestampNs()
	ev := order.Denied{
		Common: order.Common{
			EventID:       uuid.New(),
			TraderID:      o.TraderID,
			StrategyID:    o.StrategyID,
			InstrumentID:  o.InstrumentID,
			ClientOrderID: o.ClientOrderID,
			TsEventNs:     ts,
			TsInitNs:      ts,
		},
		Reason: reason,
	}
	if err := o.Apply(ev); err != nil {
		logs.Errorf("risk: deny %s: %+v", o.ClientOrderID, err)
		return
	}
	e.cache.UpdateOrder(o)
	logs.Warnf("risk: denied %s: %s", o.ClientOrderID, reason)
	e.bus.Publish(bus.TopicOrderEvents+string(o.StrategyID), order.Event(ev))
	e.bus.Send(bus.EndpointExecProcess, order.Event(ev))
}

func (e *Engine) rejectModify(o *order.Order, reason string) {
	ts := e.clock.TimestampNs()
	ev := order.ModifyRejected{
		Common: order.Common{
			EventID:       uuid.New(),
			TraderID:      o.TraderID,
			StrategyID:    o.StrategyID,
			InstrumentID:  o.InstrumentID,
			ClientOrderID: o.ClientOrderID,
			VenueOrderID:  o.VenueOrderID,
			TsEventNs:     ts,
			TsInitNs:      ts,
		},
		Reason: reason,
	}
	if err := o.Apply(ev); err != nil {
		logs.Warnf("risk: reject modify %s: %+v", o.ClientOrderID, err)
	}
	logs.Warnf("risk: modify rejected %s: %s", o.ClientOrderID, reason)
	e.bus.Publish(bus.TopicOrderEvents+string(o.StrategyID), order.Event(ev))
}

// route forwards a cleared submit to the emulator or execution engine.
func (e *Engine) route(cmd command.SubmitOrder) {
	if cmd.Order.IsEmulated() && cmd.Order.Status == enum.OrderStatusInitialized {
		e.bus.Send(bus.EndpointEmulatorExecute, command.Command(cmd))
		return
	}
	e.bus.Send(bus.EndpointExecExecute, command.Command(cmd))
}

func (e *Engine) routeList(cmd command.SubmitOrderList) {
	for _, o := range cmd.List.Orders {
		if o.IsEmulated() || o.ParentOrderID != "" {
			e.bus.Send(bus.EndpointEmulatorExecute, command.Command(cmd))
			return
		}
	}
	e.bus.Send(bus.EndpointExecExecute, command.Command(cmd))
}
