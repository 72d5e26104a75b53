package ops

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yanun0323/errors"

	"tradecore/internal/model"
	"tradecore/internal/model/enum"
)

const sampleConfig = `{
  "trader": "TRADER-042",
  "risk": {
    "bypass": false,
    "maxOrderSubmitRate": 100,
    "maxOrderSubmitWindow": 1000000000,
    "maxNotionalPerOrder": {"ETHUSDT.SIM": "100000"}
  },
  "venue": {
    "name": "SIM",
    "omsType": "NETTING",
    "accountType": "MARGIN",
    "bookType": "L1_MBP",
    "barExecution": true,
    "supportGtdOrders": true
  },
  "journal": {"enable": false, "dsn": ""},
  "profiling": {"enable": false},
  "instruments": [
    {
      "symbol": "ETHUSDT",
      "venue": "SIM",
      "class": "SPOT",
      "baseCurrency": "ETH",
      "quoteCurrency": "USDT",
      "pricePrecision": 2,
      "sizePrecision": 0,
      "priceIncrement": 0.01,
      "sizeIncrement": 1,
      "makerFeeBps": "2",
      "takerFeeBps": "10",
      "minNotional": "10"
    }
  ],
  "balances": [
    {"currency": "USDT", "total": "100000", "free": "90000"}
  ],
  "orders": [
    {
      "clientOrderId": "O-1",
      "strategy": "S-001",
      "instrument": "ETHUSDT.SIM",
      "side": "BUY",
      "type": "STOP_LIMIT",
      "quantity": 5,
      "price": 100.40,
      "triggerPrice": 100.50,
      "timeInForce": "GTC",
      "emulationTrigger": "BID_ASK"
    }
  ]
}`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadResolvesFullConfig(t *testing.T) {
	loaded, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, model.TraderId("TRADER-042"), loaded.TraderID)
	assert.Equal(t, 100, loaded.Risk.MaxOrderSubmitRate)
	assert.Equal(t, time.Second, loaded.Risk.MaxOrderSubmitBurst)
	assert.Equal(t, "100000", loaded.Risk.MaxNotionalPerOrder["ETHUSDT.SIM"])

	assert.Equal(t, model.Venue("SIM"), loaded.Venue.Venue)
	assert.Equal(t, enum.OmsNetting, loaded.Venue.OmsType)
	assert.Equal(t, enum.AccountTypeMargin, loaded.Venue.AccountType)
	assert.Equal(t, enum.BookTypeL1, loaded.Venue.BookType)
	assert.True(t, loaded.Venue.BarExecution)
	assert.True(t, loaded.Venue.SupportGtdOrders)

	require.Len(t, loaded.Instruments, 1)
	inst := loaded.Instruments[0]
	assert.Equal(t, model.NewInstrumentId("ETHUSDT", "SIM"), inst.ID)
	assert.Equal(t, uint8(2), inst.PricePrecision)
	assert.Equal(t, model.PriceFromFloat(0.01, 2), inst.PriceIncrement)
	require.NotNil(t, inst.MinNotional)
	assert.Equal(t, "10 USDT", inst.MinNotional.String())
	assert.Nil(t, inst.MaxNotional)

	require.Len(t, loaded.Balances, 1)
	assert.Equal(t, "USDT", loaded.Balances[0].Currency)
	assert.True(t, loaded.Balances[0].Free.Equal(loaded.Balances[0].Total.Sub(loaded.Balances[0].Locked)))

	require.Len(t, loaded.Orders, 1)
	o := loaded.Orders[0]
	assert.Equal(t, model.ClientOrderId("O-1"), o.ClientOrderID)
	assert.Equal(t, model.TraderId("TRADER-042"), o.TraderID)
	assert.Equal(t, enum.OrderTypeStopLimit, o.Type)
	assert.Equal(t, enum.TriggerTypeBidAsk, o.EmulationTrigger)
	require.NotNil(t, o.Price)
	assert.Equal(t, model.PriceFromFloat(100.40, 2), *o.Price)
	require.NotNil(t, o.TriggerPrice)
	assert.Equal(t, model.PriceFromFloat(100.50, 2), *o.TriggerPrice)
}

func TestLoadDefaults(t *testing.T) {
	loaded, err := Load(writeConfig(t, `{}`))
	require.NoError(t, err)

	assert.Equal(t, model.TraderId("TRADER-001"), loaded.TraderID)
	assert.Equal(t, model.Venue("SIM"), loaded.Venue.Venue)
	assert.Equal(t, enum.OmsNetting, loaded.Venue.OmsType)
	assert.Equal(t, enum.AccountTypeMargin, loaded.Venue.AccountType)
	assert.Equal(t, enum.BookTypeL1, loaded.Venue.BookType)
	assert.Empty(t, loaded.Orders)
}

func TestLoadRejectsUnknownEnum(t *testing.T) {
	_, err := Load(writeConfig(t, `{"venue": {"omsType": "WHATEVER"}}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownEnum))
}

func TestLoadRejectsUnknownOrderInstrument(t *testing.T) {
	body := `{
	  "orders": [
	    {"clientOrderId": "O-1", "instrument": "BTCUSDT.SIM", "side": "BUY", "type": "MARKET", "quantity": 1}
	  ]
	}`
	_, err := Load(writeConfig(t, body))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownInstrument))
}

func TestLoadRejectsBadDecimal(t *testing.T) {
	body := `{
	  "balances": [{"currency": "USDT", "total": "not-a-number"}]
	}`
	_, err := Load(writeConfig(t, body))
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
