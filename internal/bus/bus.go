package bus

import (
	"strings"

	"github.com/yanun0323/logs"
)

// Endpoint and topic names shared across the engines.
const (
	EndpointRiskExecute     = "RiskEngine.execute"
	EndpointExecExecute     = "ExecEngine.execute"
	EndpointExecProcess     = "ExecEngine.process"
	EndpointEmulatorExecute = "OrderEmulator.execute"

	TopicOrderEvents    = "events.order."
	TopicPositionEvents = "events.position."
	TopicRiskEvents     = "events.risk"
)

// Handler consumes one published message.
type Handler func(msg any)

type subscription struct {
	topic   string
	pattern bool
	handler Handler
}

// Bus is a synchronous in-process message bus. Publish fans out to topic
// subscribers in registration order; Send dispatches to a single named
// endpoint. All dispatch happens on the caller's goroutine.
type Bus struct {
	subs      []subscription
	endpoints map[string]Handler
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{endpoints: make(map[string]Handler)}
}

// Subscribe registers a handler for a topic. A topic ending in ".*"
// matches any suffix, so "events.order.*" receives "events.order.S-001".
func (b *Bus) Subscribe(topic string, handler Handler) {
	sub := subscription{topic: topic, handler: handler}
	if strings.HasSuffix(topic, ".*") {
		sub.topic = strings.TrimSuffix(topic, "*")
		sub.pattern = true
	}
	b.subs = append(b.subs, sub)
}

// Publish delivers msg to every matching subscriber.
func (b *Bus) Publish(topic string, msg any) {
	for _, sub := range b.subs {
		if sub.pattern {
			if strings.HasPrefix(topic, sub.topic) {
				sub.handler(msg)
			}
			continue
		}
		if sub.topic == topic {
			sub.handler(msg)
		}
	}
}

// Register binds a named endpoint for point-to-point messaging.
func (b *Bus) Register(endpoint string, handler Handler) {
	if _, ok := b.endpoints[endpoint]; ok {
		logs.Warnf("bus: endpoint %s already registered, replacing", endpoint)
	}
	b.endpoints[endpoint] = handler
}

// Deregister removes a named endpoint.
func (b *Bus) Deregister(endpoint string) {
	delete(b.endpoints, endpoint)
}

// Send dispatches msg to the named endpoint. Messages to unknown
// endpoints are dropped with a warning.
func (b *Bus) Send(endpoint string, msg any) {
	handler, ok := b.endpoints[endpoint]
	if !ok {
		logs.Warnf("bus: no endpoint %s registered, dropping message", endpoint)
		return
	}
	handler(msg)
}

// HasEndpoint reports whether a named endpoint is registered.
func (b *Bus) HasEndpoint(endpoint string) bool {
	_, ok := b.endpoints[endpoint]
	return ok
}
