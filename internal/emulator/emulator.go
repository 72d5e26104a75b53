package emulator

import (
	"github.com/yanun0323/logs"

	"tradecore/internal/bus"
	"tradecore/internal/cache"
	"tradecore/internal/clock"
	"tradecore/internal/command"
	"tradecore/internal/matching"
	"tradecore/internal/model"
	"tradecore/internal/model/enum"
	"tradecore/internal/order"
)

// Emulator holds conditional orders locally and releases them to the
// execution engine when their trigger condition is met against live market
// data. One matching core per trigger instrument.
type Emulator struct {
	clock   clock.Clock
	cache   *cache.Cache
	bus     *bus.Bus
	manager *Manager

	cores map[model.InstrumentId]*matching.Core
}

// New creates an emulator bound to the shared cache and bus.
func New(cl clock.Clock, c *cache.Cache, b *bus.Bus) *Emulator {
	return &Emulator{
		clock:   cl,
		cache:   c,
		bus:     b,
		manager: NewManager(cl, c, b),
		cores:   make(map[model.InstrumentId]*matching.Core),
	}
}

// Manager exposes the shared order manager, mainly for tests and wiring.
func (e *Emulator) Manager() *Manager { return e.manager }

// Core returns the matching core for a trigger instrument, if one exists.
func (e *Emulator) Core(id model.InstrumentId) (*matching.Core, bool) {
	core, ok := e.cores[id]
	return core, ok
}

// Start registers the command endpoint and recovers held orders from the
// cache after a restart.
func (e *Emulator) Start() {
	e.bus.Register(EndpointEmulatorExecute, func(msg any) {
		cmd, ok := msg.(command.Command)
		if !ok {
			logs.Warnf("emulator: dropping non-command message %T", msg)
			return
		}
		e.Execute(cmd)
	})

	recovered := 0
	for _, o := range e.cache.OrdersEmulated() {
		core := e.ensureCore(o.TriggerInstrumentID())
		if err := core.AddOrder(o); err != nil {
			logs.Errorf("emulator: recover %s: %+v", o.ClientOrderID, err)
			continue
		}
		recovered++
	}
	if recovered > 0 {
		logs.Infof("emulator: recovered %d held orders", recovered)
	}
}

// Stop deregisters the command endpoint.
func (e *Emulator) Stop() {
	e.bus.Deregister(EndpointEmulatorExecute)
}

// Execute dispatches a trading command.
func (e *Emulator) Execute(cmd command.Command) {
	switch c := cmd.(type) {
	case command.SubmitOrder:
		e.handleSubmitOrder(c)
	case command.SubmitOrderList:
		e.handleSubmitOrderList(c)
	case command.ModifyOrder:
		e.handleModifyOrder(c)
	case command.CancelOrder:
		e.handleCancelOrder(c)
	case command.CancelAllOrders:
		e.handleCancelAllOrders(c)
	default:
		logs.Warnf("emulator: unhandled command %T", cmd)
	}
}

// HandleEvent feeds venue events back through the manager so contingencies
// held here stay consistent. Contingency propagation may close held
// siblings, so every core is swept for closed orders afterwards.
func (e *Emulator) HandleEvent(ev order.Event) {
	e.manager.HandleEvent(ev)

	for _, core := range e.cores {
		held := append(append([]*order.Order(nil), core.OrdersBid()...), core.OrdersAsk()...)
		for _, o := range held {
			if !o.IsClosed() {
				continue
			}
			if err := core.DeleteOrder(o); err != nil {
				logs.Warnf("emulator: drop closed %s: %+v", o.ClientOrderID, err)
			}
		}
	}
}

func (e *Emulator) ensureCore(instrumentID model.InstrumentId) *matching.Core {
	if core, ok := e.cores[instrumentID]; ok {
		return core
	}
	increment := model.Price{Raw: 1, Precision: 2}
	if inst, ok := e.cache.Instrument(instrumentID); ok {
		increment = inst.PriceIncrement
	}
	core := matching.NewCore(instrumentID, increment,
		e.fillLimitOrder, e.fillMarketOrder, e.triggerStopOrder)
	e.cores[instrumentID] = core
	return core
}

func emulationSupported(trigger enum.TriggerType) bool {
	switch trigger {
	case enum.TriggerTypeDefault, enum.TriggerTypeBidAsk, enum.TriggerTypeLastPrice:
		return true
	default:
		return false
	}
}

func (e *Emulator) handleSubmitOrder(cmd command.SubmitOrder) {
	o := cmd.Order
	if !e.cache.OrderExists(o.ClientOrderID) {
		e.cache.AddOrder(o)
	}
	if !emulationSupported(o.EmulationTrigger) {
		logs.Warnf("emulator: unsupported emulation trigger %s on %s",
			o.EmulationTrigger, o.ClientOrderID)
		e.manager.CancelOrder(o)
		return
	}

	core := e.ensureCore(o.TriggerInstrumentID())
	e.manager.CacheSubmitCommand(cmd)

	if o.Type.IsTrailing() {
		e.updateTrailingStop(core, o)
		if o.TriggerPrice == nil {
			// no market to seed the trigger from
			e.manager.CancelOrder(o)
			return
		}
	}

	// an already marketable order releases on the spot and is never held
	core.MatchOrder(o, true)
	if _, held := e.manager.GetSubmitCommand(o.ClientOrderID); !held {
		return
	}

	if err := core.AddOrder(o); err != nil {
		logs.Errorf("emulator: hold %s: %+v", o.ClientOrderID, err)
		return
	}
	if o.Status == enum.OrderStatusInitialized {
		ev := order.Emulated{Common: e.manager.eventCommon(o)}
		if err := o.Apply(ev); err != nil {
			logs.Errorf("emulator: emulate %s: %+v", o.ClientOrderID, err)
			return
		}
		e.cache.UpdateOrder(o)
		e.manager.PublishOrderEvent(ev)
	}
}

func (e *Emulator) handleSubmitOrderList(cmd command.SubmitOrderList) {
	for _, o := range cmd.List.Orders {
		child := command.SubmitOrder{
			Common:     cmd.Common,
			Order:      o,
			PositionID: cmd.PositionID,
		}
		if o.ParentOrderID != "" {
			// OTO child waits for its parent to fill before going anywhere
			if !e.cache.OrderExists(o.ClientOrderID) {
				e.cache.AddOrder(o)
			}
			e.manager.CacheSubmitCommand(child)
			continue
		}
		if o.IsEmulated() {
			e.handleSubmitOrder(child)
		} else {
			e.manager.SendRiskCommand(child)
		}
	}
}

func (e *Emulator) handleModifyOrder(cmd command.ModifyOrder) {
	o, ok := e.cache.Order(cmd.ClientOrderID)
	if !ok {
		logs.Warnf("emulator: modify unknown order %s", cmd.ClientOrderID)
		return
	}
	core, held := e.cores[o.TriggerInstrumentID()]
	if !held || !core.OrderExists(o.ClientOrderID) {
		e.manager.SendExecCommand(cmd)
		return
	}

	ev := order.Updated{
		Common:       e.manager.eventCommon(o),
		Quantity:     cmd.Quantity,
		Price:        cmd.Price,
		TriggerPrice: cmd.TriggerPrice,
	}
	// drop and re-insert so the sort position tracks the new prices
	if err := core.DeleteOrder(o); err != nil {
		logs.Errorf("emulator: modify %s: %+v", o.ClientOrderID, err)
		return
	}
	if err := o.Apply(ev); err != nil {
		logs.Warnf("emulator: modify %s: %+v", o.ClientOrderID, err)
		if addErr := core.AddOrder(o); addErr != nil {
			logs.Errorf("emulator: re-hold %s: %+v", o.ClientOrderID, addErr)
		}
		return
	}
	e.cache.UpdateOrder(o)
	e.manager.PublishOrderEvent(ev)
	if err := core.AddOrder(o); err != nil {
		logs.Errorf("emulator: re-hold %s: %+v", o.ClientOrderID, err)
		return
	}
	core.MatchOrder(o, false)
}

func (e *Emulator) handleCancelOrder(cmd command.CancelOrder) {
	o, ok := e.cache.Order(cmd.ClientOrderID)
	if !ok {
		logs.Warnf("emulator: cancel unknown order %s", cmd.ClientOrderID)
		return
	}
	core, held := e.cores[o.TriggerInstrumentID()]
	if !held || !core.OrderExists(o.ClientOrderID) {
		e.manager.SendExecCommand(cmd)
		return
	}
	if err := core.DeleteOrder(o); err != nil {
		logs.Errorf("emulator: cancel %s: %+v", o.ClientOrderID, err)
	}
	e.manager.CancelOrder(o)
}

func (e *Emulator) handleCancelAllOrders(cmd command.CancelAllOrders) {
	core, ok := e.cores[cmd.InstrumentID]
	if !ok {
		return
	}
	held := append(append([]*order.Order(nil), core.OrdersBid()...), core.OrdersAsk()...)
	for _, o := range held {
		if cmd.Side != enum.NoOrderSide && o.Side != cmd.Side {
			continue
		}
		if err := core.DeleteOrder(o); err != nil {
			logs.Errorf("emulator: cancel all %s: %+v", o.ClientOrderID, err)
			continue
		}
		e.manager.CancelOrder(o)
	}
}

// OnQuote updates the trigger market for the instrument and re-evaluates
// held orders.
func (e *Emulator) OnQuote(q model.QuoteTick) {
	core, ok := e.cores[q.InstrumentID]
	if !ok {
		return
	}
	core.SetBid(q.BidPrice)
	core.SetAsk(q.AskPrice)
	e.updateTrailingStops(core)
	core.Iterate()
}

// OnTrade updates the last traded price and re-evaluates held orders.
func (e *Emulator) OnTrade(t model.TradeTick) {
	core, ok := e.cores[t.InstrumentID]
	if !ok {
		return
	}
	core.SetLast(t.Price)
	e.updateTrailingStops(core)
	core.Iterate()
}

// OnBookUpdate refreshes the trigger market from the instrument's book top.
func (e *Emulator) OnBookUpdate(instrumentID model.InstrumentId) {
	core, ok := e.cores[instrumentID]
	if !ok {
		return
	}
	b, ok := e.cache.Book(instrumentID)
	if !ok {
		return
	}
	if bid, ok := b.BestBidPrice(); ok {
		core.SetBid(bid)
	}
	if ask, ok := b.BestAskPrice(); ok {
		core.SetAsk(ask)
	}
	e.updateTrailingStops(core)
	core.Iterate()
}

func (e *Emulator) updateTrailingStops(core *matching.Core) {
	held := append(append([]*order.Order(nil), core.OrdersBid()...), core.OrdersAsk()...)
	for _, o := range held {
		if o.Type.IsTrailing() {
			e.updateTrailingStop(core, o)
		}
	}
}

func (e *Emulator) updateTrailingStop(core *matching.Core, o *order.Order) {
	if !o.IsActivated {
		if !e.shouldActivate(core, o) {
			return
		}
		o.IsActivated = true
	}

	trigger, price, err := matching.TrailingStopCalculate(core.PriceIncrement(), o, core)
	if err != nil {
		// no usable market yet
		return
	}
	if trigger == nil && price == nil {
		return
	}
	ev := order.Updated{
		Common:       e.manager.eventCommon(o),
		Price:        price,
		TriggerPrice: trigger,
	}
	if err := o.Apply(ev); err != nil {
		logs.Warnf("emulator: trail %s: %+v", o.ClientOrderID, err)
		return
	}
	e.cache.UpdateOrder(o)
	e.manager.PublishOrderEvent(ev)
}

// shouldActivate checks the trailing activation price against the market.
// Without an activation price the order activates on the first update.
func (e *Emulator) shouldActivate(core *matching.Core, o *order.Order) bool {
	if o.ActivationPrice == nil {
		return true
	}
	var basis model.Price
	var ok bool
	if o.Side == enum.OrderSideBuy {
		basis, ok = core.Ask()
	} else {
		basis, ok = core.Bid()
	}
	if !ok {
		basis, ok = core.Last()
	}
	if !ok {
		return false
	}
	if o.Side == enum.OrderSideBuy {
		return basis.Raw <= o.ActivationPrice.Raw
	}
	return basis.Raw >= o.ActivationPrice.Raw
}

// triggerStopOrder fires when a held stop's trigger price is hit.
func (e *Emulator) triggerStopOrder(o *order.Order) {
	switch o.Type {
	case enum.OrderTypeStopMarket, enum.OrderTypeMarketIfTouched,
		enum.OrderTypeTrailingStopMarket:
		e.fillMarketOrder(o)
	case enum.OrderTypeStopLimit, enum.OrderTypeLimitIfTouched,
		enum.OrderTypeTrailingStopLimit:
		e.fillLimitOrder(o)
	default:
		logs.Errorf("emulator: trigger on non-stop order %s (%s)", o.ClientOrderID, o.Type)
	}
}

// releasePrice is the price the order would trade against on release: the
// best ask for a buy, the best bid for a sell.
func (e *Emulator) releasePrice(o *order.Order) (model.Price, bool) {
	core, ok := e.cores[o.TriggerInstrumentID()]
	if !ok {
		return model.Price{}, false
	}
	if o.Side == enum.OrderSideBuy {
		return core.Ask()
	}
	return core.Bid()
}

// fillMarketOrder releases a held order as a market order. Without an
// opposite-side price the release waits for the next market update.
func (e *Emulator) fillMarketOrder(o *order.Order) {
	released, ok := e.releasePrice(o)
	if !ok {
		return
	}
	e.release(o, o.TransformToMarket(), released)
}

// fillLimitOrder releases a held order's limit leg. A plain emulated limit
// goes out as a market order, since its price is already marketable.
func (e *Emulator) fillLimitOrder(o *order.Order) {
	released, ok := e.releasePrice(o)
	if !ok {
		return
	}
	if o.Type == enum.OrderTypeLimit {
		e.release(o, o.TransformToMarket(), released)
		return
	}
	e.release(o, o.TransformToLimit(*o.Price), released)
}

func (e *Emulator) release(o *order.Order, transformed *order.Order, releasedPrice model.Price) {
	cmd, ok := e.manager.PopSubmitCommand(o.ClientOrderID)
	if !ok {
		logs.Errorf("emulator: no submit command cached for %s", o.ClientOrderID)
		return
	}
	core, held := e.cores[o.TriggerInstrumentID()]
	if held && core.OrderExists(o.ClientOrderID) {
		if err := core.DeleteOrder(o); err != nil {
			logs.Errorf("emulator: release %s: %+v", o.ClientOrderID, err)
		}
	}

	ev := order.Released{
		Common:        e.manager.eventCommon(transformed),
		ReleasedPrice: releasedPrice,
	}
	if err := transformed.Apply(ev); err != nil {
		logs.Errorf("emulator: release %s: %+v", o.ClientOrderID, err)
		return
	}
	e.cache.ReplaceOrder(transformed)
	e.manager.PublishOrderEvent(ev)

	cmd.Order = transformed
	if transformed.ExecAlgorithmID != "" {
		e.manager.SendAlgoCommand(cmd, transformed.ExecAlgorithmID)
		return
	}
	e.manager.SendExecCommand(cmd)
}
