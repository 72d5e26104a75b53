package emulator

import (
	"github.com/google/uuid"
	"github.com/yanun0323/logs"

	"tradecore/internal/bus"
	"tradecore/internal/cache"
	"tradecore/internal/clock"
	"tradecore/internal/command"
	"tradecore/internal/model"
	"tradecore/internal/model/enum"
	"tradecore/internal/order"
)

// Endpoint and topic aliases, so emulator wiring reads without the bus
// package qualifier.
const (
	EndpointRiskExecute     = bus.EndpointRiskExecute
	EndpointExecExecute     = bus.EndpointExecExecute
	EndpointExecProcess     = bus.EndpointExecProcess
	EndpointEmulatorExecute = bus.EndpointEmulatorExecute

	TopicOrderEvents = bus.TopicOrderEvents
	TopicRiskEvents  = bus.TopicRiskEvents
)

// Manager owns the order bookkeeping shared by the emulator and execution
// paths: caching submit commands for held orders, generating local events,
// and propagating contingencies across linked orders.
type Manager struct {
	clock clock.Clock
	cache *cache.Cache
	bus   *bus.Bus

	// submit commands for orders held locally, keyed by client order id
	submitCommands map[model.ClientOrderId]command.SubmitOrder
}

// NewManager creates a manager bound to the shared cache and bus.
func NewManager(cl clock.Clock, c *cache.Cache, b *bus.Bus) *Manager {
	return &Manager{
		clock:          cl,
		cache:          c,
		bus:            b,
		submitCommands: make(map[model.ClientOrderId]command.SubmitOrder),
	}
}

// CacheSubmitCommand stores the submit command of a held order so it can be
// replayed when the order is released.
func (m *Manager) CacheSubmitCommand(cmd command.SubmitOrder) {
	m.submitCommands[cmd.Order.ClientOrderID] = cmd
}

// PopSubmitCommand removes and returns a cached submit command.
func (m *Manager) PopSubmitCommand(id model.ClientOrderId) (command.SubmitOrder, bool) {
	cmd, ok := m.submitCommands[id]
	if ok {
		delete(m.submitCommands, id)
	}
	return cmd, ok
}

// GetSubmitCommand returns a cached submit command without removing it.
func (m *Manager) GetSubmitCommand(id model.ClientOrderId) (command.SubmitOrder, bool) {
	cmd, ok := m.submitCommands[id]
	return cmd, ok
}

// SubmitCommandCount returns the number of cached submit commands.
func (m *Manager) SubmitCommandCount() int {
	return len(m.submitCommands)
}

// Reset drops all cached submit commands.
func (m *Manager) Reset() {
	m.submitCommands = make(map[model.ClientOrderId]command.SubmitOrder)
}

func (m *Manager) eventCommon(o *order.Order) order.Common {
	ts := m.clock.TimestampNs()
	return order.Common{
		EventID:       uuid.New(),
		TraderID:      o.TraderID,
		StrategyID:    o.StrategyID,
		InstrumentID:  o.InstrumentID,
		ClientOrderID: o.ClientOrderID,
		VenueOrderID:  o.VenueOrderID,
		AccountID:     o.AccountID,
		TsEventNs:     ts,
		TsInitNs:      ts,
	}
}

// Deny rejects an order locally before it reaches a venue.
func (m *Manager) Deny(o *order.Order, reason string) {
	ev := order.Denied{Common: m.eventCommon(o), Reason: reason}
	if err := o.Apply(ev); err != nil {
		logs.Errorf("deny order %s: %+v", o.ClientOrderID, err)
		return
	}
	m.cache.UpdateOrder(o)
	m.PublishOrderEvent(ev)
	m.SendExecEvent(ev)
}

// CancelOrder cancels a locally held order, generating the canceled event
// here rather than waiting for a venue. Closed and pending-cancel orders
// are left alone.
func (m *Manager) CancelOrder(o *order.Order) {
	if o.IsClosed() || o.Status == enum.OrderStatusPendingCancel {
		return
	}
	m.PopSubmitCommand(o.ClientOrderID)

	ev := order.Canceled{Common: m.eventCommon(o)}
	if err := o.Apply(ev); err != nil {
		logs.Errorf("cancel order %s: %+v", o.ClientOrderID, err)
		return
	}
	m.cache.UpdateOrder(o)
	m.PublishOrderEvent(ev)
	m.SendExecEvent(ev)
}

// HandleEvent applies an inbound event to its cached order and runs
// contingency propagation.
func (m *Manager) HandleEvent(ev order.Event) {
	o, ok := m.cache.Order(ev.Base().ClientOrderID)
	if !ok {
		logs.Warnf("manager: event %s for unknown order %s", ev.Kind(), ev.Base().ClientOrderID)
		return
	}
	// events generated locally arrive pre-applied; still propagate them
	if !o.HasEvent(ev.Base().EventID) {
		if err := o.Apply(ev); err != nil {
			logs.Warnf("manager: apply %s to %s: %+v", ev.Kind(), o.ClientOrderID, err)
			return
		}
		m.cache.UpdateOrder(o)
	}

	switch ev.Kind() {
	case order.KindPartiallyFilled, order.KindFilled:
		m.HandleFill(o)
	case order.KindCanceled, order.KindExpired, order.KindRejected, order.KindDenied:
		m.PopSubmitCommand(o.ClientOrderID)
		m.handleClosed(o)
	case order.KindUpdated:
		m.handleUpdated(o)
	}
}

// HandleFill propagates a fill across the order's contingencies.
func (m *Manager) HandleFill(o *order.Order) {
	switch o.ContingencyType {
	case enum.ContingencyOCO:
		// one cancels the other
		for _, linked := range m.linkedOrders(o) {
			if linked.IsClosed() {
				continue
			}
			m.CancelOrder(linked)
		}
	case enum.ContingencyOTO:
		// one triggers the other: release held children once the parent fills
		for _, linked := range m.linkedOrders(o) {
			if linked.IsClosed() || linked.Status != enum.OrderStatusInitialized {
				continue
			}
			if cmd, ok := m.PopSubmitCommand(linked.ClientOrderID); ok {
				m.SendRiskCommand(cmd)
			}
		}
	case enum.ContingencyOUO:
		m.updateOuoSiblings(o)
	}
}

func (m *Manager) handleClosed(o *order.Order) {
	switch o.ContingencyType {
	case enum.ContingencyOCO:
		for _, linked := range m.linkedOrders(o) {
			if linked.IsClosed() {
				continue
			}
			m.CancelOrder(linked)
		}
	case enum.ContingencyOTO:
		if o.ParentOrderID == "" && o.FilledQty.IsZero() {
			// parent never filled, cancel the held children
			for _, linked := range m.linkedOrders(o) {
				if linked.IsClosed() {
					continue
				}
				m.PopSubmitCommand(linked.ClientOrderID)
				m.CancelOrder(linked)
			}
		}
	case enum.ContingencyOUO:
		for _, linked := range m.linkedOrders(o) {
			if linked.IsClosed() {
				continue
			}
			m.CancelOrder(linked)
		}
	}
}

func (m *Manager) handleUpdated(o *order.Order) {
	if o.ContingencyType == enum.ContingencyOUO {
		m.updateOuoSiblings(o)
	}
}

// updateOuoSiblings shrinks linked orders so no sibling works more size
// than this order has left.
func (m *Manager) updateOuoSiblings(o *order.Order) {
	leaves := o.LeavesQty()
	for _, linked := range m.linkedOrders(o) {
		if linked.IsClosed() || linked.ContingencyType != enum.ContingencyOUO {
			continue
		}
		if leaves.IsZero() {
			m.CancelOrder(linked)
			continue
		}
		target := shrinkTarget(linked, leaves)
		if target.Raw >= linked.LeavesQty().Raw {
			continue
		}
		ev := order.Updated{Common: m.eventCommon(linked), Quantity: target}
		if err := linked.Apply(ev); err != nil {
			logs.Warnf("manager: shrink %s: %+v", linked.ClientOrderID, err)
			continue
		}
		m.cache.UpdateOrder(linked)
		m.PublishOrderEvent(ev)
	}
}

// shrinkTarget clamps the sibling's total quantity so its remaining size
// matches the reference leaves without disturbing what already filled.
func shrinkTarget(linked *order.Order, leaves model.Quantity) model.Quantity {
	target := model.Quantity{
		Raw:       linked.FilledQty.Raw + leaves.Raw,
		Precision: linked.Quantity.Precision,
	}
	return target.Min(linked.Quantity)
}

func (m *Manager) linkedOrders(o *order.Order) []*order.Order {
	out := make([]*order.Order, 0, len(o.LinkedOrderIDs))
	for _, id := range o.LinkedOrderIDs {
		linked, ok := m.cache.Order(id)
		if !ok {
			logs.Warnf("manager: linked order %s not cached", id)
			continue
		}
		out = append(out, linked)
	}
	return out
}

// PublishOrderEvent fans the event out to the owning strategy's topic.
func (m *Manager) PublishOrderEvent(ev order.Event) {
	m.bus.Publish(TopicOrderEvents+string(ev.Base().StrategyID), ev)
}

// SendExecEvent routes an event to the execution engine's process endpoint.
func (m *Manager) SendExecEvent(ev order.Event) {
	m.bus.Send(EndpointExecProcess, ev)
}

// SendRiskCommand routes a command through pre-trade risk.
func (m *Manager) SendRiskCommand(cmd command.Command) {
	m.bus.Send(EndpointRiskExecute, cmd)
}

// SendExecCommand routes a command straight to the execution engine.
func (m *Manager) SendExecCommand(cmd command.Command) {
	m.bus.Send(EndpointExecExecute, cmd)
}

// SendAlgoCommand routes a command to an execution algorithm endpoint.
func (m *Manager) SendAlgoCommand(cmd command.Command, algo model.ExecAlgorithmId) {
	m.bus.Send("ExecAlgorithm."+string(algo)+".execute", cmd)
}
