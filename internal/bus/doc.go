// Package bus provides a typed, in-process publish/subscribe registry used by
// the charterdesk panels to coordinate without sharing state.
//
// A [Topic] fixes the payload type of a channel at compile time:
//
//	selection := bus.NewTopic[SelectionEvent]("yacht.selection")
//	sub := bus.Subscribe(b, selection, func(ev SelectionEvent) { ... })
//	defer sub.Unsubscribe()
//
//	bus.Publish(b, selection, SelectionEvent{Yacht: record})
//
// # Delivery
//
// Publish is synchronous: every handler subscribed when Publish is called
// runs on the publishing goroutine, in subscription order, before Publish
// returns. There is no buffering, persistence or retry; a message published
// while nobody listens is dropped.
//
// # Thread Safety
//
// The registry is guarded by a mutex, so Subscribe, Unsubscribe and Publish
// may be called from any goroutine. Handlers are invoked without the lock
// held.
package bus
