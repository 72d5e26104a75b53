package journal

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradecore/internal/model"
	"tradecore/internal/model/enum"
	"tradecore/internal/order"
)

func TestRowFromEventFlattensCommonFields(t *testing.T) {
	id := uuid.New()
	ev := order.Filled{
		Common: order.Common{
			EventID:       id,
			TraderID:      "TRADER-001",
			StrategyID:    "S-001",
			InstrumentID:  model.NewInstrumentId("ETHUSDT", "SIM"),
			ClientOrderID: "O-1",
			VenueOrderID:  "SIM-1",
			TsEventNs:     42,
			TsInitNs:      41,
		},
		TradeID:       "SIM-T-1",
		Side:          enum.OrderSideBuy,
		LastQty:       model.QuantityFromFloat(5, 0),
		LastPx:        model.PriceFromFloat(100.10, 2),
		LiquiditySide: enum.LiquiditySideTaker,
	}

	row, err := RowFromEvent(ev)
	require.NoError(t, err)

	assert.Equal(t, id.String(), row.EventID)
	assert.Equal(t, "Filled", row.Kind)
	assert.Equal(t, "TRADER-001", row.TraderID)
	assert.Equal(t, "S-001", row.StrategyID)
	assert.Equal(t, "ETHUSDT.SIM", row.InstrumentID)
	assert.Equal(t, "O-1", row.ClientOrderID)
	assert.Equal(t, "SIM-1", row.VenueOrderID)
	assert.Equal(t, int64(42), row.TsEventNs)
	assert.Equal(t, int64(41), row.TsInitNs)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(row.Payload), &payload))
	assert.Equal(t, "O-1", payload["client_order_id"])
}

func TestRowFromEventKindDiscriminator(t *testing.T) {
	common := order.Common{EventID: uuid.New(), ClientOrderID: "O-1"}

	cases := []struct {
		ev   order.Event
		kind string
	}{
		{order.Denied{Common: common, Reason: "x"}, "Denied"},
		{order.Emulated{Common: common}, "Emulated"},
		{order.Released{Common: common}, "Released"},
		{order.Canceled{Common: common}, "Canceled"},
	}
	for _, c := range cases {
		row, err := RowFromEvent(c.ev)
		require.NoError(t, err)
		assert.Equal(t, c.kind, row.Kind)
	}
}

func TestWriteRequiresOpenJournal(t *testing.T) {
	var j *Journal
	err := j.Write(order.Canceled{Common: order.Common{EventID: uuid.New()}})
	assert.ErrorIs(t, err, ErrNotOpen)
}
