package ops

import (
	"encoding/json"
	"os"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"

	"tradecore/internal/journal"
	"tradecore/internal/model"
	"tradecore/internal/model/enum"
	"tradecore/internal/order"
	"tradecore/internal/risk"
	"tradecore/internal/venue"
)

var (
	ErrUnknownEnum       = errors.New("unknown enum value")
	ErrUnknownInstrument = errors.New("order references unknown instrument")
)

// FileConfig mirrors the JSON config layout. Durations are nanoseconds,
// prices and quantities are raw floats quantized onto the instrument grid.
type FileConfig struct {
	Trader      string             `json:"trader"`
	Risk        risk.Config        `json:"risk"`
	Venue       VenueConfig        `json:"venue"`
	Journal     journal.Config     `json:"journal"`
	Profiling   ProfilingConfig    `json:"profiling"`
	Instruments []InstrumentConfig `json:"instruments"`
	Balances    []BalanceConfig    `json:"balances"`
	Orders      []OrderConfig      `json:"orders"`
}

// VenueConfig describes the simulated venue entry.
type VenueConfig struct {
	Name                    string `json:"name"`
	OmsType                 string `json:"omsType"`
	AccountType             string `json:"accountType"`
	BookType                string `json:"bookType"`
	BarExecution            bool   `json:"barExecution"`
	UseReduceOnly           bool   `json:"useReduceOnly"`
	UseRandomIds            bool   `json:"useRandomIds"`
	UsePositionIds          bool   `json:"usePositionIds"`
	SupportContingentOrders bool   `json:"supportContingentOrders"`
	SupportGtdOrders        bool   `json:"supportGtdOrders"`
}

// ProfilingConfig captures the optional pyroscope settings.
type ProfilingConfig struct {
	Enable          bool   `json:"enable"`
	ServerAddress   string `json:"serverAddress"`
	ApplicationName string `json:"applicationName"`
}

// InstrumentConfig describes one listed instrument.
type InstrumentConfig struct {
	Symbol         string  `json:"symbol"`
	Venue          string  `json:"venue"`
	Class          string  `json:"class"`
	BaseCurrency   string  `json:"baseCurrency"`
	QuoteCurrency  string  `json:"quoteCurrency"`
	PricePrecision uint8   `json:"pricePrecision"`
	SizePrecision  uint8   `json:"sizePrecision"`
	PriceIncrement float64 `json:"priceIncrement"`
	SizeIncrement  float64 `json:"sizeIncrement"`
	MakerFeeBps    string  `json:"makerFeeBps"`
	TakerFeeBps    string  `json:"takerFeeBps"`
	MinNotional    string  `json:"minNotional"`
	MaxNotional    string  `json:"maxNotional"`
}

// BalanceConfig seeds one venue account balance.
type BalanceConfig struct {
	Currency string `json:"currency"`
	Total    string `json:"total"`
	Free     string `json:"free"`
}

// OrderConfig describes one order submitted at replay start.
type OrderConfig struct {
	ClientOrderID    string   `json:"clientOrderId"`
	Strategy         string   `json:"strategy"`
	Instrument       string   `json:"instrument"`
	Side             string   `json:"side"`
	Type             string   `json:"type"`
	Quantity         float64  `json:"quantity"`
	Price            *float64 `json:"price"`
	TriggerPrice     *float64 `json:"triggerPrice"`
	TimeInForce      string   `json:"timeInForce"`
	EmulationTrigger string   `json:"emulationTrigger"`
	PostOnly         bool     `json:"postOnly"`
	ReduceOnly       bool     `json:"reduceOnly"`
}

// Loaded is the resolved configuration ready for wiring.
type Loaded struct {
	TraderID    model.TraderId
	Risk        risk.Config
	Venue       venue.Config
	Journal     journal.Config
	Profiling   ProfilingConfig
	Instruments []model.Instrument
	Balances    []model.AccountBalance
	Orders      []*order.Order
}

// Load reads a JSON config file and resolves it.
func Load(path string) (Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, errors.Wrap(err, "read config")
	}
	var cfg FileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Loaded{}, errors.Wrap(err, "parse config")
	}
	return resolve(cfg)
}

func resolve(cfg FileConfig) (Loaded, error) {
	venueCfg, err := resolveVenue(cfg.Venue)
	if err != nil {
		return Loaded{}, err
	}
	instruments, err := resolveInstruments(cfg.Instruments)
	if err != nil {
		return Loaded{}, err
	}
	balances, err := resolveBalances(cfg.Balances)
	if err != nil {
		return Loaded{}, err
	}
	trader := cfg.Trader
	if trader == "" {
		trader = "TRADER-001"
	}
	orders, err := resolveOrders(cfg.Orders, model.TraderId(trader), instruments)
	if err != nil {
		return Loaded{}, err
	}
	return Loaded{
		TraderID:    model.TraderId(trader),
		Risk:        cfg.Risk,
		Venue:       venueCfg,
		Journal:     cfg.Journal,
		Profiling:   cfg.Profiling,
		Instruments: instruments,
		Balances:    balances,
		Orders:      orders,
	}, nil
}

func resolveVenue(cfg VenueConfig) (venue.Config, error) {
	name := cfg.Name
	if name == "" {
		name = "SIM"
	}
	oms, err := parseOmsType(cfg.OmsType)
	if err != nil {
		return venue.Config{}, err
	}
	accountType, err := parseAccountType(cfg.AccountType)
	if err != nil {
		return venue.Config{}, err
	}
	bookType, err := parseBookType(cfg.BookType)
	if err != nil {
		return venue.Config{}, err
	}
	return venue.Config{
		Venue:                   model.Venue(name),
		OmsType:                 oms,
		AccountType:             accountType,
		BookType:                bookType,
		BarExecution:            cfg.BarExecution,
		UseReduceOnly:           cfg.UseReduceOnly,
		UseRandomIds:            cfg.UseRandomIds,
		UsePositionIds:          cfg.UsePositionIds,
		SupportContingentOrders: cfg.SupportContingentOrders,
		SupportGtdOrders:        cfg.SupportGtdOrders,
	}, nil
}

func resolveInstruments(cfgs []InstrumentConfig) ([]model.Instrument, error) {
	out := make([]model.Instrument, 0, len(cfgs))
	for _, cfg := range cfgs {
		class, err := parseInstrumentClass(cfg.Class)
		if err != nil {
			return nil, err
		}
		maker, err := parseDecimal(cfg.MakerFeeBps)
		if err != nil {
			return nil, errors.Wrap(err, "makerFeeBps of "+cfg.Symbol)
		}
		taker, err := parseDecimal(cfg.TakerFeeBps)
		if err != nil {
			return nil, errors.Wrap(err, "takerFeeBps of "+cfg.Symbol)
		}

		inst := model.Instrument{
			ID:             model.NewInstrumentId(cfg.Symbol, model.Venue(cfg.Venue)),
			Class:          class,
			BaseCurrency:   cfg.BaseCurrency,
			QuoteCurrency:  cfg.QuoteCurrency,
			PricePrecision: cfg.PricePrecision,
			SizePrecision:  cfg.SizePrecision,
			PriceIncrement: model.PriceFromFloat(cfg.PriceIncrement, cfg.PricePrecision),
			SizeIncrement:  model.QuantityFromFloat(cfg.SizeIncrement, cfg.SizePrecision),
			MakerFeeBps:    maker,
			TakerFeeBps:    taker,
		}
		if cfg.MinNotional != "" {
			amount, err := decimal.NewFromString(cfg.MinNotional)
			if err != nil {
				return nil, errors.Wrap(err, "minNotional of "+cfg.Symbol)
			}
			m := model.NewMoney(amount, cfg.QuoteCurrency)
			inst.MinNotional = &m
		}
		if cfg.MaxNotional != "" {
			amount, err := decimal.NewFromString(cfg.MaxNotional)
			if err != nil {
				return nil, errors.Wrap(err, "maxNotional of "+cfg.Symbol)
			}
			m := model.NewMoney(amount, cfg.QuoteCurrency)
			inst.MaxNotional = &m
		}
		out = append(out, inst)
	}
	return out, nil
}

func resolveBalances(cfgs []BalanceConfig) ([]model.AccountBalance, error) {
	out := make([]model.AccountBalance, 0, len(cfgs))
	for _, cfg := range cfgs {
		total, err := decimal.NewFromString(cfg.Total)
		if err != nil {
			return nil, errors.Wrap(err, "total balance of "+cfg.Currency)
		}
		free := total
		if cfg.Free != "" {
			free, err = decimal.NewFromString(cfg.Free)
			if err != nil {
				return nil, errors.Wrap(err, "free balance of "+cfg.Currency)
			}
		}
		out = append(out, model.AccountBalance{
			Currency: cfg.Currency,
			Total:    total,
			Locked:   total.Sub(free),
			Free:     free,
		})
	}
	return out, nil
}

func resolveOrders(cfgs []OrderConfig, trader model.TraderId, instruments []model.Instrument) ([]*order.Order, error) {
	out := make([]*order.Order, 0, len(cfgs))
	for _, oc := range cfgs {
		inst, ok := findInstrument(instruments, oc.Instrument)
		if !ok {
			return nil, errors.Wrap(ErrUnknownInstrument, oc.Instrument)
		}
		side, err := parseSide(oc.Side)
		if err != nil {
			return nil, err
		}
		orderType, err := parseOrderType(oc.Type)
		if err != nil {
			return nil, err
		}
		tif, err := parseTimeInForce(oc.TimeInForce)
		if err != nil {
			return nil, err
		}
		trigger, err := parseTriggerType(oc.EmulationTrigger)
		if err != nil {
			return nil, err
		}

		strategy := oc.Strategy
		if strategy == "" {
			strategy = "S-001"
		}
		b := order.NewBuilder(orderType).
			Trader(trader).
			Strategy(model.StrategyId(strategy)).
			Instrument(inst.ID).
			ClientOrderID(model.ClientOrderId(oc.ClientOrderID)).
			Side(side).
			Quantity(inst.MakeQty(oc.Quantity)).
			TimeInForce(tif).
			PostOnly(oc.PostOnly).
			ReduceOnly(oc.ReduceOnly).
			EmulationTrigger(trigger)
		if oc.Price != nil {
			b.Price(inst.MakePrice(*oc.Price))
		}
		if oc.TriggerPrice != nil {
			b.TriggerPrice(inst.MakePrice(*oc.TriggerPrice))
		}
		out = append(out, b.Build())
	}
	return out, nil
}

func findInstrument(instruments []model.Instrument, id string) (model.Instrument, bool) {
	want := model.ParseInstrumentId(id)
	for _, inst := range instruments {
		if inst.ID == want {
			return inst, true
		}
	}
	return model.Instrument{}, false
}

func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func parseSide(s string) (enum.OrderSide, error) {
	switch s {
	case "BUY":
		return enum.OrderSideBuy, nil
	case "SELL":
		return enum.OrderSideSell, nil
	default:
		return enum.NoOrderSide, errors.Wrap(ErrUnknownEnum, "side "+s)
	}
}

func parseOrderType(s string) (enum.OrderType, error) {
	switch s {
	case "MARKET":
		return enum.OrderTypeMarket, nil
	case "LIMIT":
		return enum.OrderTypeLimit, nil
	case "STOP_MARKET":
		return enum.OrderTypeStopMarket, nil
	case "STOP_LIMIT":
		return enum.OrderTypeStopLimit, nil
	case "MARKET_TO_LIMIT":
		return enum.OrderTypeMarketToLimit, nil
	case "MARKET_IF_TOUCHED":
		return enum.OrderTypeMarketIfTouched, nil
	case "LIMIT_IF_TOUCHED":
		return enum.OrderTypeLimitIfTouched, nil
	case "TRAILING_STOP_MARKET":
		return enum.OrderTypeTrailingStopMarket, nil
	case "TRAILING_STOP_LIMIT":
		return enum.OrderTypeTrailingStopLimit, nil
	default:
		return enum.OrderTypeUnknown, errors.Wrap(ErrUnknownEnum, "order type "+s)
	}
}

func parseTimeInForce(s string) (enum.TimeInForce, error) {
	switch s {
	case "", "GTC":
		return enum.TimeInForceGTC, nil
	case "IOC":
		return enum.TimeInForceIOC, nil
	case "FOK":
		return enum.TimeInForceFOK, nil
	case "GTD":
		return enum.TimeInForceGTD, nil
	case "DAY":
		return enum.TimeInForceDay, nil
	default:
		return enum.TimeInForceGTC, errors.Wrap(ErrUnknownEnum, "time in force "+s)
	}
}

func parseTriggerType(s string) (enum.TriggerType, error) {
	switch s {
	case "", "NO_TRIGGER":
		return enum.NoTrigger, nil
	case "DEFAULT":
		return enum.TriggerTypeDefault, nil
	case "BID_ASK":
		return enum.TriggerTypeBidAsk, nil
	case "LAST_PRICE":
		return enum.TriggerTypeLastPrice, nil
	case "MID_POINT":
		return enum.TriggerTypeMidPoint, nil
	case "MARK_PRICE":
		return enum.TriggerTypeMarkPrice, nil
	default:
		return enum.NoTrigger, errors.Wrap(ErrUnknownEnum, "trigger type "+s)
	}
}

func parseOmsType(s string) (enum.OmsType, error) {
	switch s {
	case "", "NETTING":
		return enum.OmsNetting, nil
	case "HEDGING":
		return enum.OmsHedging, nil
	default:
		return 0, errors.Wrap(ErrUnknownEnum, "oms type "+s)
	}
}

func parseAccountType(s string) (enum.AccountType, error) {
	switch s {
	case "CASH":
		return enum.AccountTypeCash, nil
	case "", "MARGIN":
		return enum.AccountTypeMargin, nil
	case "BETTING":
		return enum.AccountTypeBetting, nil
	default:
		return 0, errors.Wrap(ErrUnknownEnum, "account type "+s)
	}
}

func parseBookType(s string) (enum.BookType, error) {
	switch s {
	case "", "L1_MBP":
		return enum.BookTypeL1, nil
	case "L2_MBP":
		return enum.BookTypeL2, nil
	case "L3_MBO":
		return enum.BookTypeL3, nil
	default:
		return 0, errors.Wrap(ErrUnknownEnum, "book type "+s)
	}
}

func parseInstrumentClass(s string) (enum.InstrumentClass, error) {
	switch s {
	case "", "SPOT":
		return enum.InstrumentClassSpot, nil
	case "EQUITY":
		return enum.InstrumentClassEquity, nil
	case "FUTURE":
		return enum.InstrumentClassFuture, nil
	case "OPTION":
		return enum.InstrumentClassOption, nil
	default:
		return 0, errors.Wrap(ErrUnknownEnum, "instrument class "+s)
	}
}
