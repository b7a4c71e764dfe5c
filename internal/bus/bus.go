package bus

import (
	"sync"

	"go.uber.org/zap"

	"github.com/charterdesk/charterdesk/internal/logging"
)

// Topic identifies a channel on the bus and fixes its payload type.
// Two topics with the same name but different payload types are distinct.
type Topic[T any] struct {
	name string
}

// NewTopic creates a topic with the given name.
func NewTopic[T any](name string) Topic[T] {
	return Topic[T]{name: name}
}

// Name returns the topic name
func (t Topic[T]) Name() string {
	return t.name
}

type subscriber struct {
	id      uint64
	deliver func(any)
}

// Bus is an application-scoped publish/subscribe registry.
// Delivery is synchronous and in subscription order.
type Bus struct {
	mu     sync.Mutex
	nextID uint64
	topics map[any][]subscriber
}

// New creates an empty bus
func New() *Bus {
	return &Bus{topics: make(map[any][]subscriber)}
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	bus   *Bus
	key   any
	id    uint64
	topic string
	once  sync.Once
}

// Topic returns the name of the subscribed topic
func (s *Subscription) Topic() string {
	if s == nil {
		return ""
	}
	return s.topic
}

// Unsubscribe removes the handler from the bus. Calling it more than once,
// or on a nil subscription, is a no-op.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.bus == nil {
		return
	}
	s.once.Do(func() {
		s.bus.remove(s.key, s.id)
	})
}

// Subscribe registers handler for every message later published on topic.
func Subscribe[T any](b *Bus, topic Topic[T], handler func(T)) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.topics[topic] = append(b.topics[topic], subscriber{
		id:      id,
		deliver: func(msg any) { handler(msg.(T)) },
	})

	logging.Debug("Bus subscription added",
		zap.String("topic", topic.name),
		zap.Uint64("subscription_id", id),
	)

	return &Subscription{bus: b, key: topic, id: id, topic: topic.name}
}

// Publish delivers msg to the handlers subscribed to topic at the time of the
// call and returns how many were invoked. Handlers run on the caller's
// goroutine after the registry lock is released, so they may publish or
// unsubscribe themselves.
func Publish[T any](b *Bus, topic Topic[T], msg T) int {
	b.mu.Lock()
	current := b.topics[topic]
	targets := make([]subscriber, len(current))
	copy(targets, current)
	b.mu.Unlock()

	logging.LogBusPublish(topic.name, len(targets))

	for _, sub := range targets {
		sub.deliver(msg)
	}
	return len(targets)
}

// SubscriberCount returns the number of active handlers on topic.
func SubscriberCount[T any](b *Bus, topic Topic[T]) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.topics[topic])
}

func (b *Bus) remove(key any, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.topics[key]
	for i, sub := range subs {
		if sub.id == id {
			// copy-on-write so in-flight Publish snapshots stay intact
			next := make([]subscriber, 0, len(subs)-1)
			next = append(next, subs[:i]...)
			next = append(next, subs[i+1:]...)
			if len(next) == 0 {
				delete(b.topics, key)
			} else {
				b.topics[key] = next
			}
			return
		}
	}
}
