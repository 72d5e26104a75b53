package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradecore/internal/model"
	"tradecore/internal/model/enum"
)

func init() {
	Debug = true
}

func px(v float64) model.Price {
	return model.PriceFromFloat(v, 2)
}

func qty(v float64) model.Quantity {
	return model.QuantityFromFloat(v, 0)
}

func buyOrder(price, size float64, id uint64) model.BookOrder {
	return model.BookOrder{Side: enum.OrderSideBuy, Price: px(price), Size: qty(size), OrderID: id}
}

func sellOrder(price, size float64, id uint64) model.BookOrder {
	return model.BookOrder{Side: enum.OrderSideSell, Price: px(price), Size: qty(size), OrderID: id}
}

func TestL1SuccessiveAddReplacesLevel(t *testing.T) {
	ladder := NewLadder(enum.OrderSideBuy, enum.BookTypeL1)
	id := model.L1OrderID(enum.OrderSideBuy)

	ladder.Add(buyOrder(100.00, 50, id))
	ladder.Add(buyOrder(101.00, 60, id))

	require.Equal(t, 1, ladder.Len())
	require.NotNil(t, ladder.Top())
	assert.Equal(t, px(101.00), ladder.Top().Price.Value)
	assert.Equal(t, 1, ladder.CacheSize())
}

func TestL1ZeroSizeAddClearsSide(t *testing.T) {
	ladder := NewLadder(enum.OrderSideBuy, enum.BookTypeL1)
	id := model.L1OrderID(enum.OrderSideBuy)

	ladder.Add(buyOrder(100.00, 50, id))
	ladder.Add(buyOrder(101.00, 0, id))

	assert.True(t, ladder.IsEmpty())
	assert.Equal(t, 0, ladder.CacheSize())
}

func TestL1ZeroSizeAddOnEmptyLadderIsNoop(t *testing.T) {
	ladder := NewLadder(enum.OrderSideBuy, enum.BookTypeL1)

	ladder.Add(buyOrder(100.00, 0, model.L1OrderID(enum.OrderSideBuy)))

	assert.True(t, ladder.IsEmpty())
	assert.Equal(t, 0, ladder.CacheSize())
}

func TestL3DistinctOrdersSameID(t *testing.T) {
	ladder := NewLadder(enum.OrderSideBuy, enum.BookTypeL3)

	ladder.Add(buyOrder(100.00, 10, 1))
	ladder.Add(buyOrder(99.00, 20, 1))

	require.Equal(t, 2, ladder.Len())
	assert.Equal(t, px(100.00), ladder.Top().Price.Value)
	assert.Equal(t, 2, ladder.CacheSize())
}

func TestL2NonPositiveSizeAddIgnored(t *testing.T) {
	ladder := NewLadder(enum.OrderSideSell, enum.BookTypeL2)

	ladder.Add(sellOrder(100.00, 0, model.L2OrderID(px(100.00))))

	assert.True(t, ladder.IsEmpty())
}

func TestBuyLadderSortsDescending(t *testing.T) {
	ladder := NewLadder(enum.OrderSideBuy, enum.BookTypeL3)
	ladder.Add(buyOrder(99.00, 10, 1))
	ladder.Add(buyOrder(101.00, 10, 2))
	ladder.Add(buyOrder(100.00, 10, 3))

	levels := ladder.Levels()
	require.Len(t, levels, 3)
	assert.Equal(t, px(101.00), levels[0].Price.Value)
	assert.Equal(t, px(100.00), levels[1].Price.Value)
	assert.Equal(t, px(99.00), levels[2].Price.Value)
}

func TestSellLadderSortsAscending(t *testing.T) {
	ladder := NewLadder(enum.OrderSideSell, enum.BookTypeL3)
	ladder.Add(sellOrder(101.00, 10, 1))
	ladder.Add(sellOrder(99.00, 10, 2))
	ladder.Add(sellOrder(100.00, 10, 3))

	levels := ladder.Levels()
	require.Len(t, levels, 3)
	assert.Equal(t, px(99.00), levels[0].Price.Value)
	assert.Equal(t, px(101.00), levels[2].Price.Value)
}

func TestIdenticalPricesCollapseIntoOneLevel(t *testing.T) {
	ladder := NewLadder(enum.OrderSideBuy, enum.BookTypeL3)
	ladder.Add(buyOrder(100.00, 10, 1))
	ladder.Add(buyOrder(100.00, 20, 2))

	require.Equal(t, 1, ladder.Len())
	assert.Equal(t, 2, ladder.Top().Len())
	assert.Equal(t, qty(30), ladder.Top().SizeTotal())
}

func TestUpdateSizeInPlaceKeepsQueuePriority(t *testing.T) {
	ladder := NewLadder(enum.OrderSideBuy, enum.BookTypeL3)
	ladder.Add(buyOrder(100.00, 10, 1))
	ladder.Add(buyOrder(100.00, 20, 2))

	ladder.Update(buyOrder(100.00, 15, 1))

	orders := ladder.Top().Orders()
	require.Len(t, orders, 2)
	assert.Equal(t, uint64(1), orders[0].OrderID)
	assert.Equal(t, qty(15), orders[0].Size)
}

func TestUpdateToZeroSizeRemovesOrderAndLevel(t *testing.T) {
	ladder := NewLadder(enum.OrderSideBuy, enum.BookTypeL3)
	ladder.Add(buyOrder(100.00, 10, 1))

	ladder.Update(buyOrder(100.00, 0, 1))

	assert.True(t, ladder.IsEmpty())
	assert.Equal(t, 0, ladder.CacheSize())
}

func TestUpdatePriceMovesOrder(t *testing.T) {
	ladder := NewLadder(enum.OrderSideBuy, enum.BookTypeL3)
	ladder.Add(buyOrder(100.00, 10, 1))

	ladder.Update(buyOrder(101.00, 10, 1))

	require.Equal(t, 1, ladder.Len())
	assert.Equal(t, px(101.00), ladder.Top().Price.Value)
	assert.Equal(t, 1, ladder.CacheSize())
}

func TestUpdateUnknownOrderUpserts(t *testing.T) {
	ladder := NewLadder(enum.OrderSideSell, enum.BookTypeL3)

	ladder.Update(sellOrder(100.00, 10, 7))

	require.Equal(t, 1, ladder.Len())
	assert.Equal(t, 1, ladder.CacheSize())
}

func TestDeleteDropsEmptyLevel(t *testing.T) {
	ladder := NewLadder(enum.OrderSideSell, enum.BookTypeL3)
	order := sellOrder(100.00, 10, 1)
	ladder.Add(order)

	ladder.Delete(order)

	assert.True(t, ladder.IsEmpty())
	assert.Equal(t, 0, ladder.CacheSize())
}

func TestRemoveLevelPurgesCache(t *testing.T) {
	ladder := NewLadder(enum.OrderSideSell, enum.BookTypeL3)
	ladder.Add(sellOrder(100.00, 10, 1))
	ladder.Add(sellOrder(100.00, 10, 2))
	ladder.Add(sellOrder(101.00, 10, 3))

	ladder.RemoveLevel(px(100.00))

	assert.Equal(t, 1, ladder.Len())
	assert.Equal(t, 1, ladder.CacheSize())
}

func TestSimulateFillsWalksBestFirstFIFO(t *testing.T) {
	asks := NewLadder(enum.OrderSideSell, enum.BookTypeL3)
	asks.Add(sellOrder(100.00, 10, 1))
	asks.Add(sellOrder(100.00, 10, 2))
	asks.Add(sellOrder(101.00, 30, 3))

	taker := buyOrder(101.00, 25, 99)
	fills := asks.SimulateFills(taker)

	require.Len(t, fills, 3)
	assert.Equal(t, px(100.00), fills[0].Price)
	assert.Equal(t, qty(10), fills[0].Size)
	assert.Equal(t, px(100.00), fills[1].Price)
	assert.Equal(t, qty(10), fills[1].Size)
	assert.Equal(t, px(101.00), fills[2].Price)
	assert.Equal(t, qty(5), fills[2].Size)
}

func TestSimulateFillsStopsAtWorsePrice(t *testing.T) {
	asks := NewLadder(enum.OrderSideSell, enum.BookTypeL3)
	asks.Add(sellOrder(100.00, 10, 1))
	asks.Add(sellOrder(102.00, 10, 2))

	fills := asks.SimulateFills(buyOrder(101.00, 25, 99))

	require.Len(t, fills, 1)
	assert.Equal(t, px(100.00), fills[0].Price)
}

func TestSimulateFillsNoZeroRemainderStep(t *testing.T) {
	asks := NewLadder(enum.OrderSideSell, enum.BookTypeL3)
	asks.Add(sellOrder(100.00, 10, 1))
	asks.Add(sellOrder(101.00, 10, 2))

	fills := asks.SimulateFills(buyOrder(101.00, 10, 99))

	require.Len(t, fills, 1)
	assert.Equal(t, qty(10), fills[0].Size)
}

func TestSimulateFillsNeverExceedsOrderQuantity(t *testing.T) {
	bids := NewLadder(enum.OrderSideBuy, enum.BookTypeL3)
	bids.Add(buyOrder(100.00, 7, 1))
	bids.Add(buyOrder(99.00, 13, 2))
	bids.Add(buyOrder(98.00, 11, 3))

	for _, size := range []float64{1, 7, 8, 20, 31, 40} {
		fills := bids.SimulateFills(sellOrder(98.00, size, 99))
		var total uint64
		for _, f := range fills {
			total += f.Size.Raw
		}
		assert.LessOrEqual(t, total, qty(size).Raw)
	}
}

func TestCacheMatchesRestingOrdersAfterRandomOps(t *testing.T) {
	ladder := NewLadder(enum.OrderSideBuy, enum.BookTypeL3)

	// Deterministic pseudo-random walk over add/update/delete.
	seed := uint64(42)
	next := func(n uint64) uint64 {
		seed = seed*6364136223846793005 + 1442695040888963407
		return (seed >> 33) % n
	}

	live := map[uint64]struct{}{}
	for i := 0; i < 500; i++ {
		id := next(40) + 1
		price := 95.0 + float64(next(10))
		switch next(3) {
		case 0:
			ladder.Add(buyOrder(price, float64(next(50)+1), id))
			live[id] = struct{}{}
		case 1:
			ladder.Update(buyOrder(price, float64(next(50)), id))
		case 2:
			ladder.RemoveOrder(id)
		}

		resting := 0
		for _, level := range ladder.Levels() {
			require.False(t, level.IsEmpty(), "empty level must not remain")
			resting += level.Len()
		}
		require.Equal(t, ladder.CacheSize(), resting)
	}
}
