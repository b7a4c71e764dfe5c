package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/charterdesk/charterdesk/internal/bus"
	"github.com/charterdesk/charterdesk/internal/panel"
)

// busEventMsg tells the model that panel state changed outside Update.
type busEventMsg struct {
	topic   string
	yachtID string
}

// Bridge forwards bus events to the running program so that changes made by
// the live feed or a reservation command trigger a redraw.
type Bridge struct {
	subs []*bus.Subscription
}

// NewBridge subscribes to the panel topics on b. send is usually
// (*tea.Program).Send; it is called on its own goroutine because Send blocks
// while the event loop is busy, and events may be published from inside Update.
func NewBridge(b *bus.Bus, send func(tea.Msg)) *Bridge {
	forward := func(msg tea.Msg) { go send(msg) }

	return &Bridge{subs: []*bus.Subscription{
		bus.Subscribe(b, panel.SelectionTopic, func(e panel.SelectionEvent) {
			forward(busEventMsg{topic: panel.SelectionTopic.Name(), yachtID: e.Yacht.ID})
		}),
		bus.Subscribe(b, panel.ReservationResultTopic, func(e panel.ReservationResultEvent) {
			forward(busEventMsg{topic: panel.ReservationResultTopic.Name(), yachtID: e.YachtID})
		}),
	}}
}

// Close drops the subscriptions.
func (br *Bridge) Close() {
	for _, s := range br.subs {
		s.Unsubscribe()
	}
	br.subs = nil
}
