package book

import (
	"sort"

	"github.com/yanun0323/logs"

	"tradecore/internal/model"
	"tradecore/internal/model/enum"
)

// Debug enables structural integrity checks after every ladder mutation.
var Debug bool

// Fill is one simulated execution step.
type Fill struct {
	Price model.Price
	Size  model.Quantity
}

// Ladder maintains one side of a price-level order book with FIFO queues
// per level. The cache maps order ids to the level keys holding them; L2/L3
// feeds may legitimately carry the same id at distinct prices, so the cache
// holds a small list per id (normally length one).
type Ladder struct {
	Side     enum.OrderSide
	BookType enum.BookType
	levels   []*Level // sorted best-first
	cache    map[uint64][]Price
}

// NewLadder creates an empty ladder for one side of the book.
func NewLadder(side enum.OrderSide, bookType enum.BookType) *Ladder {
	return &Ladder{
		Side:     side,
		BookType: bookType,
		cache:    make(map[uint64][]Price),
	}
}

// Len returns the number of price levels.
func (l *Ladder) Len() int {
	return len(l.levels)
}

// IsEmpty reports whether the ladder holds no levels.
func (l *Ladder) IsEmpty() bool {
	return len(l.levels) == 0
}

// CacheSize returns the number of cached order entries.
func (l *Ladder) CacheSize() int {
	n := 0
	for _, prices := range l.cache {
		n += len(prices)
	}
	return n
}

// Top returns the best level, or nil when empty.
func (l *Ladder) Top() *Level {
	if len(l.levels) == 0 {
		return nil
	}
	return l.levels[0]
}

// Levels returns the levels in best-first order.
func (l *Ladder) Levels() []*Level {
	return l.levels
}

// Clear removes all orders and levels.
func (l *Ladder) Clear() {
	l.levels = l.levels[:0]
	l.cache = make(map[uint64][]Price)
}

// Add inserts an order. For L1 books a non-positive size clears the side
// keyed by the order id, and a positive add at a moved price first removes
// the prior level so stale top-of-book levels cannot linger.
func (l *Ladder) Add(order model.BookOrder) {
	if l.BookType == enum.BookTypeL1 {
		l.addL1(order)
		return
	}
	if !order.Size.IsPositive() {
		logs.Warnf("ladder add ignored: non-positive size %s for order %d", order.Size, order.OrderID)
		return
	}
	l.insert(order)
	l.check()
}

func (l *Ladder) addL1(order model.BookOrder) {
	cached := l.cachedPrice(order.OrderID)

	if !order.Size.IsPositive() {
		// Zero-size top-of-book update clears the side.
		if cached != nil {
			l.RemoveLevel(cached.Value)
		}
		l.check()
		return
	}

	if cached != nil && cached.Value.Raw != order.Price.Raw {
		// The top of book moved; drop the prior level.
		l.RemoveLevel(cached.Value)
	}
	l.insert(order)
	l.check()
}

// Update mutates an existing order in place, moving it to a new level when
// its price changed. Unknown orders are upserted.
func (l *Ladder) Update(order model.BookOrder) {
	cached := l.cachedPrice(order.OrderID)
	if cached == nil {
		l.Add(order)
		return
	}

	if cached.Value.Raw == order.Price.Raw {
		if !order.Size.IsPositive() {
			l.RemoveOrder(order.OrderID)
			return
		}
		if level := l.levelAt(*cached); level != nil {
			level.Update(order)
		}
		l.check()
		return
	}

	// Price moved: delete from the old level and re-add.
	l.removeOrderAt(order.OrderID, *cached)
	l.Add(order)
}

// Delete removes the given order.
func (l *Ladder) Delete(order model.BookOrder) {
	l.RemoveOrder(order.OrderID)
}

// RemoveOrder removes the most recently cached order with the given id.
func (l *Ladder) RemoveOrder(orderID uint64) {
	cached := l.cachedPrice(orderID)
	if cached == nil {
		return
	}
	l.removeOrderAt(orderID, *cached)
	l.check()
}

// RemoveLevel erases a whole level and purges its order ids from the cache.
func (l *Ladder) RemoveLevel(price model.Price) {
	key := NewPrice(price, l.Side)
	idx := l.levelIndex(key)
	if idx < 0 {
		return
	}
	level := l.levels[idx]
	l.levels = append(l.levels[:idx], l.levels[idx+1:]...)
	for _, o := range level.Orders() {
		l.uncache(o.OrderID, key)
	}
	l.check()
}

// SimulateFills walks levels best-first while the level price is at least
// as good as the order's price, consuming resting orders FIFO until the
// order quantity is exhausted. A zero-size final step is never emitted.
func (l *Ladder) SimulateFills(order model.BookOrder) []Fill {
	var fills []Fill
	cumulative := model.Quantity{Precision: order.Size.Precision}
	target := order.Size

	for _, level := range l.levels {
		if l.Side == enum.OrderSideBuy {
			if level.Price.Value.Raw < order.Price.Raw {
				break
			}
		} else {
			if level.Price.Value.Raw > order.Price.Raw {
				break
			}
		}

		for _, resting := range level.Orders() {
			current := resting.Size
			if cumulative.Raw+current.Raw >= target.Raw {
				remainder := target.Sub(cumulative)
				if remainder.IsPositive() {
					fills = append(fills, Fill{Price: resting.Price, Size: remainder})
				}
				return fills
			}
			fills = append(fills, Fill{Price: resting.Price, Size: current})
			cumulative = cumulative.Add(current)
		}
	}
	return fills
}

// Sizes sums all resting size across levels.
func (l *Ladder) Sizes() model.Quantity {
	var total model.Quantity
	for _, level := range l.levels {
		s := level.SizeTotal()
		total.Precision = s.Precision
		total.Raw += s.Raw
	}
	return total
}

func (l *Ladder) insert(order model.BookOrder) {
	key := NewPrice(order.Price, l.Side)
	idx := l.levelIndex(key)
	if idx >= 0 {
		l.levels[idx].Add(order)
	} else {
		level := NewLevel(key)
		level.Add(order)
		pos := sort.Search(len(l.levels), func(i int) bool {
			return key.Less(l.levels[i].Price)
		})
		l.levels = append(l.levels, nil)
		copy(l.levels[pos+1:], l.levels[pos:])
		l.levels[pos] = level
	}
	l.recache(order.OrderID, key)
}

func (l *Ladder) removeOrderAt(orderID uint64, key Price) {
	if level := l.levelAt(key); level != nil {
		level.Delete(orderID)
		if level.IsEmpty() {
			idx := l.levelIndex(key)
			if idx >= 0 {
				l.levels = append(l.levels[:idx], l.levels[idx+1:]...)
			}
		}
	}
	l.uncache(orderID, key)
}

func (l *Ladder) levelIndex(key Price) int {
	idx := sort.Search(len(l.levels), func(i int) bool {
		return !l.levels[i].Price.Less(key)
	})
	if idx < len(l.levels) && l.levels[idx].Price.Equal(key) {
		return idx
	}
	return -1
}

func (l *Ladder) levelAt(key Price) *Level {
	idx := l.levelIndex(key)
	if idx < 0 {
		return nil
	}
	return l.levels[idx]
}

// cachedPrice returns the most recent level key for an order id.
func (l *Ladder) cachedPrice(orderID uint64) *Price {
	prices := l.cache[orderID]
	if len(prices) == 0 {
		return nil
	}
	p := prices[len(prices)-1]
	return &p
}

func (l *Ladder) recache(orderID uint64, key Price) {
	prices := l.cache[orderID]
	for _, p := range prices {
		if p.Equal(key) {
			return
		}
	}
	l.cache[orderID] = append(prices, key)
}

func (l *Ladder) uncache(orderID uint64, key Price) {
	prices := l.cache[orderID]
	for i, p := range prices {
		if p.Equal(key) {
			prices = append(prices[:i], prices[i+1:]...)
			break
		}
	}
	if len(prices) == 0 {
		delete(l.cache, orderID)
	} else {
		l.cache[orderID] = prices
	}
}

// check verifies the structural invariants; violations are bug-class and
// logged rather than propagated.
func (l *Ladder) check() {
	if !Debug {
		return
	}
	orders := 0
	for _, level := range l.levels {
		if level.IsEmpty() {
			logs.Errorf("ladder invariant: empty level at %s", level.Price.Value)
		}
		orders += level.Len()
	}
	if cached := l.CacheSize(); cached != orders {
		logs.Errorf("ladder invariant: cache size %d != resting orders %d", cached, orders)
	}
}
