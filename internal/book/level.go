package book

import (
	"tradecore/internal/model"
)

// Level is an insertion-ordered FIFO of orders sharing one price.
// Invariant: every order at the level has the same price raw value.
type Level struct {
	Price  Price
	orders map[uint64]model.BookOrder
	queue  []uint64 // insertion order
}

// NewLevel creates an empty level at the given price.
func NewLevel(price Price) *Level {
	return &Level{
		Price:  price,
		orders: make(map[uint64]model.BookOrder, 4),
		queue:  make([]uint64, 0, 4),
	}
}

// Len returns the number of resting orders.
func (l *Level) Len() int {
	return len(l.orders)
}

// IsEmpty reports whether the level holds no orders.
func (l *Level) IsEmpty() bool {
	return len(l.orders) == 0
}

// Add appends an order to the back of the FIFO.
func (l *Level) Add(order model.BookOrder) {
	if _, ok := l.orders[order.OrderID]; !ok {
		l.queue = append(l.queue, order.OrderID)
	}
	l.orders[order.OrderID] = order
}

// Update mutates an existing order's size in place, preserving queue
// priority. Unknown ids fall back to Add.
func (l *Level) Update(order model.BookOrder) {
	if _, ok := l.orders[order.OrderID]; !ok {
		l.Add(order)
		return
	}
	l.orders[order.OrderID] = order
}

// Delete removes an order by id. Reports whether it was present.
func (l *Level) Delete(orderID uint64) bool {
	if _, ok := l.orders[orderID]; !ok {
		return false
	}
	delete(l.orders, orderID)
	for i, id := range l.queue {
		if id == orderID {
			l.queue = append(l.queue[:i], l.queue[i+1:]...)
			break
		}
	}
	return true
}

// Get returns the order with the given id.
func (l *Level) Get(orderID uint64) (model.BookOrder, bool) {
	o, ok := l.orders[orderID]
	return o, ok
}

// Orders returns the resting orders in FIFO order.
func (l *Level) Orders() []model.BookOrder {
	out := make([]model.BookOrder, 0, len(l.queue))
	for _, id := range l.queue {
		if o, ok := l.orders[id]; ok {
			out = append(out, o)
		}
	}
	return out
}

// SizeTotal sums the resting size at the level.
func (l *Level) SizeTotal() model.Quantity {
	var total model.Quantity
	for _, id := range l.queue {
		o, ok := l.orders[id]
		if !ok {
			continue
		}
		total.Precision = o.Size.Precision
		total.Raw += o.Size.Raw
	}
	return total
}
