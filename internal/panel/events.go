package panel

import (
	"context"

	"github.com/charterdesk/charterdesk/internal/bus"
	"github.com/charterdesk/charterdesk/internal/yacht"
)

// SelectionEvent is published when the user picks a tile. It carries the
// full record snapshot, not just its identifier.
type SelectionEvent struct {
	Yacht yacht.Record
}

// ReservationResultEvent is published after a reservation succeeds so that
// result lists can mark the yacht unavailable.
type ReservationResultEvent struct {
	YachtID string
}

// Bus topics shared by the panels.
var (
	SelectionTopic         = bus.NewTopic[SelectionEvent]("yacht.selection")
	ReservationResultTopic = bus.NewTopic[ReservationResultEvent]("yacht.reservation-result")
)

// AvailabilityService runs the remote availability query.
type AvailabilityService interface {
	Availability(ctx context.Context, criteria yacht.Criteria) ([]yacht.Record, error)
}

// ReservationService runs the remote reservation-creation call and returns
// the confirmation text.
type ReservationService interface {
	CreateReservation(ctx context.Context, r yacht.Reservation) (string, error)
}

// TypeLister returns the yacht type names offered by the backend.
type TypeLister interface {
	YachtTypes(ctx context.Context) ([]string, error)
}

// Fetcher is the part of ResultList the search panel drives.
type Fetcher interface {
	Fetch(ctx context.Context, criteria yacht.Criteria) error
}
