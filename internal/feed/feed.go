package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/charterdesk/charterdesk/internal/bus"
	"github.com/charterdesk/charterdesk/internal/logging"
	"github.com/charterdesk/charterdesk/internal/panel"
)

const (
	// StreamPath is the backend websocket endpoint for reservation events
	StreamPath = "/api/reservations/stream"

	// EventReservationCreated is the message type for a new booking
	EventReservationCreated = "reservation.created"

	// DefaultMinBackoff is the first reconnect delay
	DefaultMinBackoff = 1 * time.Second

	// DefaultMaxBackoff caps the reconnect delay
	DefaultMaxBackoff = 30 * time.Second
)

// Message is one event received on the stream.
type Message struct {
	Type    string `json:"type"`
	YachtID string `json:"yachtId"`
}

// Listener republishes reservation events from the backend stream on the
// bus so that every panel reconciles bookings made by other clients.
type Listener struct {
	URL        string
	Bus        *bus.Bus
	Dialer     *websocket.Dialer
	MinBackoff time.Duration
	MaxBackoff time.Duration

	mu        sync.Mutex
	connected bool
	received  int
}

// NewListener creates a listener for the backend at baseURL.
func NewListener(baseURL string, b *bus.Bus) (*Listener, error) {
	u, err := StreamURL(baseURL)
	if err != nil {
		return nil, err
	}
	return &Listener{
		URL:        u,
		Bus:        b,
		Dialer:     websocket.DefaultDialer,
		MinBackoff: DefaultMinBackoff,
		MaxBackoff: DefaultMaxBackoff,
	}, nil
}

// StreamURL converts a backend base URL into the websocket stream URL.
func StreamURL(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid backend URL %q: %w", baseURL, err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported backend URL scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + StreamPath
	u.RawQuery = ""
	return u.String(), nil
}

// Run connects to the stream and reconnects with exponential backoff until
// ctx is cancelled. It always returns ctx.Err().
func (l *Listener) Run(ctx context.Context) error {
	logging.Info("Connecting to reservation feed", zap.String("url", l.URL))

	delay := l.MinBackoff
	for {
		established, err := l.connectOnce(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if established {
			delay = l.MinBackoff
		}
		logging.Warn("Reservation feed disconnected",
			zap.Error(err),
			zap.Duration("retry_in", delay),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if delay > l.MaxBackoff {
			delay = l.MaxBackoff
		}
	}
}

// connectOnce runs a single connection until it fails. It reports whether
// the handshake succeeded.
func (l *Listener) connectOnce(ctx context.Context) (bool, error) {
	dialer := l.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, _, err := dialer.DialContext(ctx, l.URL, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = conn.Close() }()

	l.setConnected(true)
	defer l.setConnected(false)
	logging.Info("Reservation feed connected", zap.String("url", l.URL))

	stop := context.AfterFunc(ctx, func() {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = conn.Close()
	})
	defer stop()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return true, err
		}
		l.handle(raw)
	}
}

func (l *Listener) handle(raw []byte) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		logging.Warn("Dropping malformed feed message", zap.Error(err))
		return
	}

	switch msg.Type {
	case EventReservationCreated:
		if msg.YachtID == "" {
			logging.Warn("Dropping reservation event without yacht id")
			return
		}
		l.mu.Lock()
		l.received++
		l.mu.Unlock()
		bus.Publish(l.Bus, panel.ReservationResultTopic, panel.ReservationResultEvent{YachtID: msg.YachtID})
	default:
		logging.Debug("Ignoring feed message", zap.String("type", msg.Type))
	}
}

func (l *Listener) setConnected(v bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.connected = v
}

// Connected reports whether the stream is currently open.
func (l *Listener) Connected() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.connected
}

// Received returns the number of reservation events republished so far.
func (l *Listener) Received() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.received
}
