package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/yanun0323/logs"

	"tradecore/internal/bus"
	"tradecore/internal/cache"
	"tradecore/internal/clock"
	"tradecore/internal/command"
	"tradecore/internal/emulator"
	"tradecore/internal/journal"
	"tradecore/internal/model"
	"tradecore/internal/ops"
	"tradecore/internal/order"
	"tradecore/internal/risk"
	"tradecore/internal/venue"
)

func main() {
	configPath := flag.String("config", "", "Path to JSON config")
	ticksPath := flag.String("ticks", "", "CSV quote file: instrument,ts_ns,bid,ask,bid_size,ask_size")
	profileAddr := flag.String("profile", "", "Pyroscope server address (overrides config)")
	flag.Parse()

	if *configPath == "" {
		log.Fatal("missing -config")
	}
	loaded, err := ops.Load(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	if addr := profilingAddress(loaded.Profiling, *profileAddr); addr != "" {
		name := loaded.Profiling.ApplicationName
		if name == "" {
			name = "tradecore/backtest"
		}
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: name,
			ServerAddress:   addr,
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
			},
		})
		if err != nil {
			log.Fatalf("pyroscope start failed: %v", err)
		}
		defer func() {
			_ = profiler.Stop()
		}()
	}

	cl := clock.NewTestClock(0)
	b := bus.New()
	c := cache.New()

	exchange := venue.NewExchange(cl, c, b, loaded.Venue, loaded.Balances...)
	for _, inst := range loaded.Instruments {
		exchange.AddInstrument(inst)
	}

	em := emulator.New(cl, c, b)
	riskEngine := risk.NewEngine(cl, c, b, loaded.Risk)

	// venue events apply to the cached order and fan into contingency handling
	b.Register(bus.EndpointExecProcess, func(msg any) {
		if ev, ok := msg.(order.Event); ok {
			em.HandleEvent(ev)
		}
	})

	var stats fillStats
	b.Subscribe(bus.TopicOrderEvents+"*", stats.observe)

	if loaded.Journal.Enable {
		j, err := journal.Open(loaded.Journal)
		if err != nil {
			log.Fatalf("journal open failed: %v", err)
		}
		defer func() {
			_ = j.Close()
		}()
		j.Attach(b)
	}

	em.Start()
	riskEngine.Start()
	exchange.Start()

	for _, o := range loaded.Orders {
		b.Send(bus.EndpointRiskExecute, command.SubmitOrder{
			Common: command.New(o.TraderID, o.StrategyID, o.InstrumentID, cl.TimestampNs()),
			Order:  o,
		})
	}

	if *ticksPath != "" {
		replayed, err := replayQuotes(*ticksPath, cl, em, exchange)
		if err != nil {
			log.Fatalf("tick replay failed: %v", err)
		}
		logs.Infof("replayed %d quotes", replayed)
	}

	stats.report(c)
}

func profilingAddress(cfg ops.ProfilingConfig, flagAddr string) string {
	if flagAddr != "" {
		return flagAddr
	}
	if cfg.Enable {
		return cfg.ServerAddress
	}
	return ""
}

// replayQuotes streams a CSV quote file through the market-data queue into
// the emulator and the venue, advancing the clock to each tick's timestamp
// so GTD timers fire in order. The reader publishes from its own goroutine;
// the engines consume everything on this one.
func replayQuotes(path string, cl *clock.TestClock, em *emulator.Emulator, x *venue.Exchange) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	q := bus.NewQueue(1024)
	errc := make(chan error, 1)
	go func() {
		defer q.Close()
		errc <- readQuotes(f, q)
	}()

	count := 0
	q.Run(context.Background(), func(msg any) {
		quote, ok := msg.(model.QuoteTick)
		if !ok {
			return
		}
		cl.AdvanceTimeNs(quote.TsEventNs)
		em.OnQuote(quote)
		x.ProcessQuoteTick(quote)
		count++
	})
	return count, <-errc
}

// readQuotes parses the CSV and publishes each tick, backing off while the
// engine drains a full queue.
func readQuotes(f io.Reader, q *bus.Queue) error {
	r := csv.NewReader(f)
	r.FieldsPerRecord = 6
	row := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		row++
		if row == 1 && record[1] == "ts_ns" {
			continue // header row
		}
		quote, err := parseQuote(record)
		if err != nil {
			return err
		}
		for {
			err := q.TryPublish(quote)
			if err == nil {
				break
			}
			if errors.Is(err, bus.ErrQueueClosed) {
				return err
			}
			time.Sleep(time.Millisecond)
		}
	}
}

func parseQuote(record []string) (model.QuoteTick, error) {
	instrumentID := model.ParseInstrumentId(record[0])
	ts, err := strconv.ParseInt(record[1], 10, 64)
	if err != nil {
		return model.QuoteTick{}, err
	}
	bid, err := strconv.ParseFloat(record[2], 64)
	if err != nil {
		return model.QuoteTick{}, err
	}
	ask, err := strconv.ParseFloat(record[3], 64)
	if err != nil {
		return model.QuoteTick{}, err
	}
	bidSize, err := strconv.ParseFloat(record[4], 64)
	if err != nil {
		return model.QuoteTick{}, err
	}
	askSize, err := strconv.ParseFloat(record[5], 64)
	if err != nil {
		return model.QuoteTick{}, err
	}
	// precision follows the printed decimals so raw values stay exact
	pricePrecision := decimals(record[2])
	sizePrecision := decimals(record[4])
	return model.QuoteTick{
		InstrumentID: instrumentID,
		BidPrice:     model.PriceFromFloat(bid, pricePrecision),
		AskPrice:     model.PriceFromFloat(ask, pricePrecision),
		BidSize:      model.QuantityFromFloat(bidSize, sizePrecision),
		AskSize:      model.QuantityFromFloat(askSize, sizePrecision),
		TsEventNs:    ts,
		TsInitNs:     ts,
	}, nil
}

func decimals(s string) uint8 {
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			return uint8(len(s) - i - 1)
		}
	}
	return 0
}

// fillStats aggregates the replay outcome for the end-of-run report.
type fillStats struct {
	fills    int
	denials  int
	rejects  int
	released int
}

func (s *fillStats) observe(msg any) {
	ev, ok := msg.(order.Event)
	if !ok {
		return
	}
	switch ev.Kind() {
	case order.KindPartiallyFilled, order.KindFilled:
		s.fills++
	case order.KindDenied:
		s.denials++
	case order.KindRejected:
		s.rejects++
	case order.KindReleased:
		s.released++
	}
}

func (s *fillStats) report(c *cache.Cache) {
	logs.Infof("fills=%d released=%d denials=%d rejects=%d", s.fills, s.released, s.denials, s.rejects)
	for _, o := range c.Orders(model.InstrumentId{}) {
		logs.Infof("order %s %s %s filled=%s avg_px=%s",
			o.ClientOrderID, o.Type, o.Status, o.FilledQty, o.AvgPx)
	}
	for _, p := range c.PositionsOpen(model.InstrumentId{}) {
		logs.Infof("position %s %s qty=%s", p.ID, p.Side, p.Quantity)
	}
}
