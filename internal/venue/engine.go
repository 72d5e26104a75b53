package venue

import (
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yanun0323/logs"

	"tradecore/internal/book"
	"tradecore/internal/bus"
	"tradecore/internal/cache"
	"tradecore/internal/clock"
	"tradecore/internal/command"
	"tradecore/internal/matching"
	"tradecore/internal/model"
	"tradecore/internal/model/enum"
	"tradecore/internal/order"
)

var bpsDivisor = decimal.New(10000, 0)

// Config selects the simulated venue's behavior.
type Config struct {
	Venue                   model.Venue      `json:"venue"`
	OmsType                 enum.OmsType     `json:"omsType"`
	AccountType             enum.AccountType `json:"accountType"`
	BookType                enum.BookType    `json:"bookType"`
	BarExecution            bool             `json:"barExecution"`
	UseReduceOnly           bool             `json:"useReduceOnly"`
	UseRandomIds            bool             `json:"useRandomIds"`
	UsePositionIds          bool             `json:"usePositionIds"`
	SupportContingentOrders bool             `json:"supportContingentOrders"`
	SupportGtdOrders        bool             `json:"supportGtdOrders"`
}

// MatchingEngine simulates one instrument's venue-side matching: it keeps
// the market book, admits orders, and produces fills against the book.
type MatchingEngine struct {
	clock clock.Clock
	cache *cache.Cache
	bus   *bus.Bus
	cfg   Config

	instrument model.Instrument
	book       *book.OrderBook
	core       *matching.Core

	marketStatus enum.MarketStatus

	accountID    model.AccountId
	orderCount   uint64
	tradeCount   uint64
	positionCount uint64

	lastBarBid *model.Bar
	lastBarAsk *model.Bar

	// true while matching a just-arrived order, which takes liquidity;
	// fills of already-resting orders are passive
	matchingArrival bool
}

// NewMatchingEngine creates the engine for one instrument.
func NewMatchingEngine(
	cl clock.Clock,
	c *cache.Cache,
	b *bus.Bus,
	cfg Config,
	instrument model.Instrument,
	accountID model.AccountId,
) *MatchingEngine {
	e := &MatchingEngine{
		clock:        cl,
		cache:        c,
		bus:          b,
		cfg:          cfg,
		instrument:   instrument,
		book:         book.NewOrderBook(instrument.ID, cfg.BookType),
		marketStatus: enum.MarketStatusOpen,
		accountID:    accountID,
	}
	e.core = matching.NewCore(instrument.ID, instrument.PriceIncrement,
		e.fillLimitOrder, e.fillMarketOrder, e.triggerStopOrder)
	c.AddBook(e.book)
	return e
}

// Book returns the venue-side market book.
func (e *MatchingEngine) Book() *book.OrderBook { return e.book }

// Core returns the venue-side matching core.
func (e *MatchingEngine) Core() *matching.Core { return e.core }

// MarketStatus returns the current market phase.
func (e *MatchingEngine) MarketStatus() enum.MarketStatus { return e.marketStatus }

// ProcessOrderBookDeltas replays market depth into the venue book.
func (e *MatchingEngine) ProcessOrderBookDeltas(deltas model.OrderBookDeltas) {
	e.book.ApplyDeltas(deltas)
	e.refreshTopOfBook()
	e.iterate()
}

// ProcessQuoteTick replays a top-of-book update.
func (e *MatchingEngine) ProcessQuoteTick(q model.QuoteTick) {
	e.book.ApplyQuote(q)
	e.cache.AddQuote(q)
	e.refreshTopOfBook()
	e.iterate()
}

// ProcessTradeTick replays a market trade.
func (e *MatchingEngine) ProcessTradeTick(t model.TradeTick) {
	e.book.ApplyTrade(t)
	e.cache.AddTrade(t)
	e.core.SetLast(t.Price)
	e.refreshTopOfBook()
	e.iterate()
}

// ProcessBar expands an OHLCV bar into synthetic market updates. Last-price
// bars become four trades at quarter volume; bid and ask bars pair up into
// four quotes.
func (e *MatchingEngine) ProcessBar(bar model.Bar) {
	if !e.cfg.BarExecution {
		return
	}
	e.cache.AddBar(bar)
	switch bar.Type.PriceType {
	case enum.PriceTypeLast:
		e.processTradeBar(bar)
	case enum.PriceTypeBid:
		e.lastBarBid = &bar
		e.maybeProcessBarQuotes()
	case enum.PriceTypeAsk:
		e.lastBarAsk = &bar
		e.maybeProcessBarQuotes()
	}
}

func (e *MatchingEngine) processTradeBar(bar model.Bar) {
	quarter := model.Quantity{Raw: bar.Volume.Raw / 4, Precision: bar.Volume.Precision}
	if quarter.Raw == 0 {
		quarter.Raw = 1
	}
	last, hasLast := e.core.Last()
	prices := [4]model.Price{bar.Open, bar.High, bar.Low, bar.Close}
	for _, px := range prices {
		aggressor := enum.NoAggressor
		if hasLast {
			switch {
			case px.Raw > last.Raw:
				aggressor = enum.AggressorBuyer
			case px.Raw < last.Raw:
				aggressor = enum.AggressorSeller
			}
		}
		e.ProcessTradeTick(model.TradeTick{
			InstrumentID:  e.instrument.ID,
			Price:         px,
			Size:          quarter,
			AggressorSide: aggressor,
			TradeID:       e.nextTradeID(),
			TsEventNs:     bar.TsEventNs,
			TsInitNs:      bar.TsInitNs,
		})
		last, hasLast = px, true
	}
}

func (e *MatchingEngine) maybeProcessBarQuotes() {
	if e.lastBarBid == nil || e.lastBarAsk == nil {
		return
	}
	bid, ask := *e.lastBarBid, *e.lastBarAsk
	e.lastBarBid, e.lastBarAsk = nil, nil

	bidPrices := [4]model.Price{bid.Open, bid.High, bid.Low, bid.Close}
	askPrices := [4]model.Price{ask.Open, ask.High, ask.Low, ask.Close}
	size := model.Quantity{Raw: bid.Volume.Raw / 4, Precision: bid.Volume.Precision}
	if size.Raw == 0 {
		size.Raw = 1
	}
	for i := range bidPrices {
		e.ProcessQuoteTick(model.QuoteTick{
			InstrumentID: e.instrument.ID,
			BidPrice:     bidPrices[i],
			AskPrice:     askPrices[i],
			BidSize:      size,
			AskSize:      size,
			TsEventNs:    bid.TsEventNs,
			TsInitNs:     bid.TsInitNs,
		})
	}
}

// ProcessInstrumentStatus moves the market phase.
func (e *MatchingEngine) ProcessInstrumentStatus(status model.InstrumentStatus) {
	switch status.Action {
	case enum.MarketActionTrading:
		e.marketStatus = enum.MarketStatusOpen
	case enum.MarketActionPreOpen:
		e.marketStatus = enum.MarketStatusPreOpen
	case enum.MarketActionPause:
		e.marketStatus = enum.MarketStatusPaused
	case enum.MarketActionSuspend:
		e.marketStatus = enum.MarketStatusSuspended
	case enum.MarketActionHalt:
		e.marketStatus = enum.MarketStatusHalted
	case enum.MarketActionClose:
		e.marketStatus = enum.MarketStatusClosed
	}
}

func (e *MatchingEngine) refreshTopOfBook() {
	if bid, ok := e.book.BestBidPrice(); ok {
		e.core.SetBid(bid)
	}
	if ask, ok := e.book.BestAskPrice(); ok {
		e.core.SetAsk(ask)
	}
}

func (e *MatchingEngine) iterate() {
	e.dropClosedOrders()
	e.updateTrailingStops()
	e.core.Iterate()
}

// dropClosedOrders purges orders closed elsewhere, e.g. by contingency
// cancels, before they can match.
func (e *MatchingEngine) dropClosedOrders() {
	held := append(append([]*order.Order(nil), e.core.OrdersBid()...), e.core.OrdersAsk()...)
	for _, o := range held {
		if o.IsClosed() {
			e.dropFromCore(o)
		}
	}
}

// SubmitOrder acknowledges receipt of a new order, then admits it.
func (e *MatchingEngine) SubmitOrder(o *order.Order) {
	e.emit(order.Submitted{Common: e.eventCommon(o)})
	e.ProcessOrder(o)
}

// ProcessOrder admits a new order into the venue.
func (e *MatchingEngine) ProcessOrder(o *order.Order) {
	if reason, ok := e.admit(o); !ok {
		e.rejectOrder(o, reason)
		return
	}

	if o.TimeInForce == enum.TimeInForceGTD && e.cfg.SupportGtdOrders {
		e.scheduleExpiry(o)
	}

	switch o.Type {
	case enum.OrderTypeMarket:
		e.processMarketOrder(o)
	case enum.OrderTypeMarketToLimit:
		e.processMarketToLimitOrder(o)
	default:
		e.processPassiveOrder(o)
	}
}

// admit runs the venue-side acceptance checks.
func (e *MatchingEngine) admit(o *order.Order) (string, bool) {
	if e.core.OrderExists(o.ClientOrderID) {
		return "duplicate client order id " + string(o.ClientOrderID), false
	}
	switch e.marketStatus {
	case enum.MarketStatusHalted, enum.MarketStatusSuspended, enum.MarketStatusClosed:
		return "market " + e.instrument.ID.String() + " is " + e.marketStatus.String(), false
	}
	now := e.clock.TimestampNs()
	if !e.instrument.IsActiveAt(now) {
		return "instrument " + e.instrument.ID.String() + " not active", false
	}
	if o.Quantity.Precision != e.instrument.SizePrecision {
		return "quantity " + o.Quantity.String() + " invalid (precision " +
			strconv.Itoa(int(e.instrument.SizePrecision)) + " required)", false
	}
	if o.Price != nil && !o.Price.IsSentinel() && o.Price.Precision != e.instrument.PricePrecision {
		return "price " + o.Price.String() + " invalid (precision " +
			strconv.Itoa(int(e.instrument.PricePrecision)) + " required)", false
	}
	if o.TriggerPrice != nil && o.TriggerPrice.Precision != e.instrument.PricePrecision {
		return "trigger price " + o.TriggerPrice.String() + " invalid (precision " +
			strconv.Itoa(int(e.instrument.PricePrecision)) + " required)", false
	}
	if o.ContingencyType != enum.NoContingency && !e.cfg.SupportContingentOrders {
		return "contingent orders not supported", false
	}
	if o.ParentOrderID != "" {
		if parent, ok := e.cache.Order(o.ParentOrderID); !ok || parent.IsClosed() && parent.FilledQty.IsZero() {
			return "parent order " + string(o.ParentOrderID) + " not available", false
		}
	}
	if e.cfg.UseReduceOnly && o.ReduceOnly {
		pos, ok := e.positionFor(o)
		if !ok || !o.WouldReduce(pos) {
			return "reduce-only order would increase position", false
		}
	}
	if o.IsSell() && e.cfg.AccountType == enum.AccountTypeCash &&
		e.instrument.Class == enum.InstrumentClassEquity {
		if pos, ok := e.positionFor(o); !ok || pos.Quantity.Raw < o.Quantity.Raw {
			return "Short selling not permitted on a CASH account", false
		}
	}
	return "", true
}

func (e *MatchingEngine) positionFor(o *order.Order) (model.Position, bool) {
	if o.PositionID != "" {
		return e.cache.Position(o.PositionID)
	}
	return e.cache.NettingPosition(o.InstrumentID, o.StrategyID)
}

func (e *MatchingEngine) processMarketOrder(o *order.Order) {
	if !e.book.HasOppositeLiquidity(o.Side) {
		e.rejectOrder(o, "No market for "+e.instrument.ID.String())
		return
	}
	e.acceptOrder(o)
	e.fillMarketOrder(o)
}

func (e *MatchingEngine) processMarketToLimitOrder(o *order.Order) {
	if !e.book.HasOppositeLiquidity(o.Side) {
		e.rejectOrder(o, "No market for "+e.instrument.ID.String())
		return
	}
	e.acceptOrder(o)
	e.fillMarketOrder(o)
	if o.LeavesQty().IsPositive() {
		// remainder rests at the first fill price
		if o.Price == nil {
			if last, ok := e.core.Last(); ok {
				px := last
				o.Price = &px
			}
		}
		if err := e.core.AddOrder(o); err != nil {
			logs.Errorf("venue: rest market-to-limit %s: %+v", o.ClientOrderID, err)
		}
	}
}

func (e *MatchingEngine) processPassiveOrder(o *order.Order) {
	if o.Type.IsTrailing() && o.TriggerPrice == nil {
		trigger, price, err := matching.TrailingStopCalculate(e.instrument.PriceIncrement, o, e.core)
		if err != nil {
			e.rejectOrder(o, "no market to initialize trailing stop")
			return
		}
		e.applyVenueUpdate(o, model.Quantity{}, price, trigger)
	}

	// a post-only limit that would take liquidity on arrival never gets
	// accepted in the first place
	if o.PostOnly && !o.Type.HasTrigger() && o.Price != nil &&
		e.core.IsLimitMatched(o.Side, *o.Price) {
		e.rejectOrder(o, "POST_ONLY order would trade as taker")
		return
	}

	e.acceptOrder(o)
	if err := e.core.AddOrder(o); err != nil {
		logs.Errorf("venue: rest %s: %+v", o.ClientOrderID, err)
		return
	}
	e.matchingArrival = true
	e.core.MatchOrder(o, true)
	e.matchingArrival = false

	// immediate-or-cancel semantics for anything still resting
	if (o.TimeInForce == enum.TimeInForceIOC || o.TimeInForce == enum.TimeInForceFOK) &&
		e.core.OrderExists(o.ClientOrderID) && !o.IsClosed() {
		if err := e.core.DeleteOrder(o); err == nil {
			e.cancelOrder(o)
		}
	}
}

// ProcessModify amends a resting order in place.
func (e *MatchingEngine) ProcessModify(cmd command.ModifyOrder) {
	o, ok := e.core.GetOrder(cmd.ClientOrderID)
	if !ok {
		e.emitCancelReject(cmd.ClientOrderID, cmd.VenueOrderID, "order not open on venue")
		return
	}
	if err := e.core.DeleteOrder(o); err != nil {
		logs.Errorf("venue: modify %s: %+v", o.ClientOrderID, err)
		return
	}
	e.applyVenueUpdate(o, cmd.Quantity, cmd.Price, cmd.TriggerPrice)
	if err := e.core.AddOrder(o); err != nil {
		logs.Errorf("venue: re-rest %s: %+v", o.ClientOrderID, err)
		return
	}
	e.core.MatchOrder(o, false)
}

// ProcessCancel removes a resting order.
func (e *MatchingEngine) ProcessCancel(cmd command.CancelOrder) {
	o, ok := e.core.GetOrder(cmd.ClientOrderID)
	if !ok {
		e.emitCancelReject(cmd.ClientOrderID, cmd.VenueOrderID, "order not open on venue")
		return
	}
	if err := e.core.DeleteOrder(o); err != nil {
		logs.Errorf("venue: cancel %s: %+v", o.ClientOrderID, err)
		return
	}
	e.cancelOrder(o)
}

// ProcessCancelAll removes every resting order, optionally one side only.
func (e *MatchingEngine) ProcessCancelAll(cmd command.CancelAllOrders) {
	held := append(append([]*order.Order(nil), e.core.OrdersBid()...), e.core.OrdersAsk()...)
	for _, o := range held {
		if cmd.Side != enum.NoOrderSide && o.Side != cmd.Side {
			continue
		}
		if err := e.core.DeleteOrder(o); err != nil {
			logs.Errorf("venue: cancel all %s: %+v", o.ClientOrderID, err)
			continue
		}
		e.cancelOrder(o)
	}
}

func (e *MatchingEngine) scheduleExpiry(o *order.Order) {
	name := "EXPIRE-" + string(o.ClientOrderID)
	id := o.ClientOrderID
	e.clock.SetTimeAlert(name, o.ExpireTimeNs, func(string, int64) {
		held, ok := e.core.GetOrder(id)
		if !ok || held.IsClosed() {
			return
		}
		if err := e.core.DeleteOrder(held); err != nil {
			logs.Errorf("venue: expire %s: %+v", id, err)
			return
		}
		e.emit(order.Expired{Common: e.eventCommon(held)})
	})
}

func (e *MatchingEngine) updateTrailingStops() {
	held := append(append([]*order.Order(nil), e.core.OrdersBid()...), e.core.OrdersAsk()...)
	for _, o := range held {
		if !o.Type.IsTrailing() {
			continue
		}
		if !o.IsActivated {
			if !e.shouldActivate(o) {
				continue
			}
			o.IsActivated = true
		}
		trigger, price, err := matching.TrailingStopCalculate(e.instrument.PriceIncrement, o, e.core)
		if err != nil {
			continue
		}
		if trigger == nil && price == nil {
			continue
		}
		e.applyVenueUpdate(o, model.Quantity{}, price, trigger)
	}
}

func (e *MatchingEngine) shouldActivate(o *order.Order) bool {
	if o.ActivationPrice == nil {
		return true
	}
	var basis model.Price
	var ok bool
	if o.IsBuy() {
		basis, ok = e.core.Ask()
	} else {
		basis, ok = e.core.Bid()
	}
	if !ok {
		basis, ok = e.core.Last()
	}
	if !ok {
		return false
	}
	if o.IsBuy() {
		return basis.Raw <= o.ActivationPrice.Raw
	}
	return basis.Raw >= o.ActivationPrice.Raw
}

// triggerStopOrder fires when a resting stop's trigger is hit.
func (e *MatchingEngine) triggerStopOrder(o *order.Order) {
	switch o.Type {
	case enum.OrderTypeStopMarket, enum.OrderTypeMarketIfTouched,
		enum.OrderTypeTrailingStopMarket:
		if err := e.core.DeleteOrder(o); err != nil {
			logs.Errorf("venue: trigger %s: %+v", o.ClientOrderID, err)
			return
		}
		e.fillMarketOrder(o)
	case enum.OrderTypeStopLimit, enum.OrderTypeLimitIfTouched,
		enum.OrderTypeTrailingStopLimit:
		if o.IsTriggered {
			return
		}
		e.emit(order.Triggered{Common: e.eventCommon(o)})
		if o.Price != nil && e.core.IsLimitMatched(o.Side, *o.Price) {
			// crossing on trigger takes liquidity
			prev := e.matchingArrival
			e.matchingArrival = true
			e.fillLimitOrder(o)
			e.matchingArrival = prev
		}
	}
}

// fillMarketOrder sweeps the book as a taker.
func (e *MatchingEngine) fillMarketOrder(o *order.Order) {
	if o.IsClosed() {
		e.dropFromCore(o)
		return
	}
	bound := model.PriceMax(e.instrument.PricePrecision)
	if o.IsSell() {
		bound = model.PriceMin(e.instrument.PricePrecision)
	}
	fills := e.book.SimulateFills(model.BookOrder{
		Side:  o.Side,
		Price: bound,
		Size:  o.LeavesQty(),
	})
	if len(fills) == 0 {
		e.rejectOrder(o, "No market for "+e.instrument.ID.String())
		return
	}
	e.applyFills(o, fills, enum.LiquiditySideTaker)
}

// fillLimitOrder fills a marketable limit against the book up to its price.
func (e *MatchingEngine) fillLimitOrder(o *order.Order) {
	if o.IsClosed() {
		e.dropFromCore(o)
		return
	}
	if o.Price == nil {
		return
	}
	if o.PostOnly && e.matchingArrival {
		// a triggered post-only limit crossing the book is pulled instead
		if err := e.core.DeleteOrder(o); err == nil {
			e.cancelOrder(o)
		}
		return
	}
	liquidity := enum.LiquiditySideMaker
	if e.matchingArrival {
		liquidity = enum.LiquiditySideTaker
	}
	fills := e.book.SimulateFills(model.BookOrder{
		Side:  o.Side,
		Price: *o.Price,
		Size:  o.LeavesQty(),
	})
	if len(fills) == 0 {
		if liquidity == enum.LiquiditySideMaker {
			// passive touch with no displayed size still fills at the limit
			e.fillOrder(o, *o.Price, o.LeavesQty(), liquidity)
			if o.IsClosed() {
				e.dropFromCore(o)
			}
		}
		return
	}
	e.applyFills(o, fills, liquidity)
}

func (e *MatchingEngine) applyFills(o *order.Order, fills []book.Fill, liquidity enum.LiquiditySide) {
	if o.TimeInForce == enum.TimeInForceFOK {
		var available uint64
		for _, f := range fills {
			available += f.Size.Raw
		}
		if available < o.LeavesQty().Raw {
			// fill-or-kill cannot partially execute
			return
		}
	}

	for _, f := range fills {
		if o.IsClosed() {
			return
		}
		qty := f.Size.Min(o.LeavesQty())
		if qty.IsZero() {
			continue
		}
		e.fillOrder(o, f.Price, qty, liquidity)
	}
	if o.IsClosed() {
		e.dropFromCore(o)
	}
}

func (e *MatchingEngine) fillOrder(o *order.Order, px model.Price, qty model.Quantity, liquidity enum.LiquiditySide) {
	position, hadPosition := e.positionFor(o)
	if !hadPosition {
		position = model.Position{
			ID:           e.nextPositionID(o),
			InstrumentID: o.InstrumentID,
			StrategyID:   o.StrategyID,
			Side:         enum.PositionSideFlat,
			Quantity:     model.Quantity{Precision: qty.Precision},
		}
	}

	leaves := o.LeavesQty().Sub(qty)
	ev := order.Filled{
		Common:        e.eventCommon(o),
		TradeID:       e.nextTradeID(),
		PositionID:    position.ID,
		Side:          o.Side,
		LastQty:       qty,
		LastPx:        px,
		LeavesQty:     leaves,
		Commission:    e.commission(qty, px, liquidity),
		LiquiditySide: liquidity,
	}
	e.emit(ev)

	updated := position.ApplyFill(o.Side, qty)
	e.cache.AddPosition(updated)
	e.bus.Publish(bus.TopicPositionEvents+string(o.StrategyID), updated)
}

func (e *MatchingEngine) commission(qty model.Quantity, px model.Price, liquidity enum.LiquiditySide) model.Money {
	feeBps := e.instrument.TakerFeeBps
	if liquidity == enum.LiquiditySideMaker {
		feeBps = e.instrument.MakerFeeBps
	}
	notional := e.instrument.NotionalValue(qty, px, false)
	return model.NewMoney(notional.Amount.Mul(feeBps).Div(bpsDivisor), notional.Currency)
}

func (e *MatchingEngine) acceptOrder(o *order.Order) {
	common := e.eventCommon(o)
	common.VenueOrderID = e.nextVenueOrderID()
	e.emit(order.Accepted{Common: common})
}

func (e *MatchingEngine) rejectOrder(o *order.Order, reason string) {
	e.emit(order.Rejected{Common: e.eventCommon(o), Reason: reason})
}

func (e *MatchingEngine) cancelOrder(o *order.Order) {
	e.clock.CancelTimer("EXPIRE-" + string(o.ClientOrderID))
	e.emit(order.Canceled{Common: e.eventCommon(o)})
}

func (e *MatchingEngine) applyVenueUpdate(o *order.Order, qty model.Quantity, price, trigger *model.Price) {
	ev := order.Updated{
		Common:       e.eventCommon(o),
		Quantity:     qty,
		Price:        price,
		TriggerPrice: trigger,
	}
	e.emit(ev)
}

func (e *MatchingEngine) dropFromCore(o *order.Order) {
	if e.core.OrderExists(o.ClientOrderID) {
		if err := e.core.DeleteOrder(o); err != nil {
			logs.Warnf("venue: drop %s: %+v", o.ClientOrderID, err)
		}
	}
}

func (e *MatchingEngine) emitCancelReject(id model.ClientOrderId, venueID model.VenueOrderId, reason string) {
	o, ok := e.cache.Order(id)
	if !ok {
		logs.Warnf("venue: cancel reject for unknown order %s: %s", id, reason)
		return
	}
	common := e.eventCommon(o)
	common.VenueOrderID = venueID
	e.emit(order.CancelRejected{Common: common, Reason: reason})
}

// emit hands the event to the execution engine's process endpoint, which
// applies it to the order, then fans it out to the strategy topic.
func (e *MatchingEngine) emit(ev order.Event) {
	e.bus.Send(bus.EndpointExecProcess, ev)
	e.bus.Publish(bus.TopicOrderEvents+string(ev.Base().StrategyID), ev)
}

func (e *MatchingEngine) eventCommon(o *order.Order) order.Common {
	ts := e.clock.TimestampNs()
	return order.Common{
		EventID:       uuid.New(),
		TraderID:      o.TraderID,
		StrategyID:    o.StrategyID,
		InstrumentID:  o.InstrumentID,
		ClientOrderID: o.ClientOrderID,
		VenueOrderID:  o.VenueOrderID,
		AccountID:     e.accountID,
		TsEventNs:     ts,
		TsInitNs:      ts,
	}
}

func (e *MatchingEngine) nextVenueOrderID() model.VenueOrderId {
	if e.cfg.UseRandomIds {
		return model.VenueOrderId(uuid.NewString())
	}
	e.orderCount++
	return model.VenueOrderId(string(e.cfg.Venue) + "-" + strconv.FormatUint(e.orderCount, 10))
}

func (e *MatchingEngine) nextTradeID() model.TradeId {
	if e.cfg.UseRandomIds {
		return model.TradeId(uuid.NewString())
	}
	e.tradeCount++
	return model.TradeId(string(e.cfg.Venue) + "-T-" + strconv.FormatUint(e.tradeCount, 10))
}

func (e *MatchingEngine) nextPositionID(o *order.Order) model.PositionId {
	if !e.cfg.UsePositionIds {
		return model.PositionId(e.instrument.ID.String() + "-" + string(o.StrategyID))
	}
	e.positionCount++
	return model.PositionId(string(e.cfg.Venue) + "-P-" + strconv.FormatUint(e.positionCount, 10))
}
