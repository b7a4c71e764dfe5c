package panel

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/charterdesk/charterdesk/internal/backend"
	"github.com/charterdesk/charterdesk/internal/bus"
	"github.com/charterdesk/charterdesk/internal/logging"
	"github.com/charterdesk/charterdesk/internal/yacht"
)

// BannerKind classifies the message shown after a reservation attempt.
type BannerKind int

const (
	BannerNone BannerKind = iota
	BannerSuccess
	BannerNotAvailable
	BannerFailure
)

// String returns the banner kind name
func (k BannerKind) String() string {
	switch k {
	case BannerSuccess:
		return "success"
	case BannerNotAvailable:
		return "not-available"
	case BannerFailure:
		return "failure"
	default:
		return "none"
	}
}

// Banner is the outcome message of the last reservation attempt.
type Banner struct {
	Kind    BannerKind
	Title   string
	Message string
}

// Visible reports whether there is a banner to show.
func (b Banner) Visible() bool {
	return b.Kind != BannerNone
}

// Field names reported in ValidationError.
const (
	FieldGuestName  = "guestName"
	FieldGuestEmail = "guestEmail"
	FieldDate       = "reservationDate"
	FieldPartySize  = "partySize"
)

// DetailPanel shows the selected yacht and submits reservations for it.
// It is safe for concurrent use.
type DetailPanel struct {
	svc    ReservationService
	bus    *bus.Bus
	submit *semaphore.Weighted

	mu         sync.Mutex
	record     yacht.Record
	hasRecord  bool
	formOpen   bool
	submitting bool
	guestName  string
	guestEmail string
	banner     Banner
	sub        *bus.Subscription
}

// NewDetailPanel creates a detail panel submitting through svc.
func NewDetailPanel(svc ReservationService, b *bus.Bus) *DetailPanel {
	return &DetailPanel{
		svc:    svc,
		bus:    b,
		submit: semaphore.NewWeighted(1),
	}
}

// Activate subscribes to selection events. Repeated calls are no-ops.
func (p *DetailPanel) Activate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sub != nil {
		return
	}
	p.sub = bus.Subscribe(p.bus, SelectionTopic, func(e SelectionEvent) {
		p.Show(e.Yacht)
	})
}

// Deactivate drops the selection subscription.
func (p *DetailPanel) Deactivate() {
	p.mu.Lock()
	sub := p.sub
	p.sub = nil
	p.mu.Unlock()

	sub.Unsubscribe()
}

// Active reports whether the panel is subscribed to selections.
func (p *DetailPanel) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sub != nil
}

// Show replaces the displayed record. Guest fields are left as entered.
func (p *DetailPanel) Show(r yacht.Record) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record = r
	p.hasRecord = true
}

// OpenForm opens the reservation form for the displayed record.
func (p *DetailPanel) OpenForm() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.hasRecord {
		return ErrNoYachtSelected
	}
	p.formOpen = true
	return nil
}

// CloseForm closes the form and clears the guest fields.
func (p *DetailPanel) CloseForm() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetFormLocked()
}

func (p *DetailPanel) resetFormLocked() {
	p.formOpen = false
	p.guestName = ""
	p.guestEmail = ""
}

func (p *DetailPanel) SetGuestName(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.guestName = name
}

func (p *DetailPanel) SetGuestEmail(email string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.guestEmail = email
}

// GuestInfoMissing reports whether either guest field is empty.
func (p *DetailPanel) GuestInfoMissing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.guestName == "" || p.guestEmail == ""
}

// DismissBanner hides the current banner.
func (p *DetailPanel) DismissBanner() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.banner = Banner{}
}

// Submit validates the guest fields and sends the reservation for the
// displayed record. Only one submission may be in flight; a second call
// returns ErrSubmitInFlight. Remote failures are reported through the
// banner and also returned.
func (p *DetailPanel) Submit(ctx context.Context) error {
	p.mu.Lock()
	if !p.hasRecord {
		p.mu.Unlock()
		return ErrNoYachtSelected
	}
	if !p.formOpen {
		p.mu.Unlock()
		return ErrFormClosed
	}
	if err := validateReservation(p.record, p.guestName, p.guestEmail); err != nil {
		p.mu.Unlock()
		return err
	}
	if !p.submit.TryAcquire(1) {
		p.mu.Unlock()
		return ErrSubmitInFlight
	}
	defer p.submit.Release(1)

	record := p.record
	req := yacht.NewReservation(record, strings.TrimSpace(p.guestName), strings.TrimSpace(p.guestEmail))
	p.submitting = true
	p.mu.Unlock()

	confirmation, err := p.svc.CreateReservation(ctx, req)

	p.mu.Lock()
	p.submitting = false

	switch {
	case err == nil && confirmation != "":
		p.banner = Banner{Kind: BannerSuccess, Title: "Reservation confirmed", Message: confirmation}
		if p.record.ID == record.ID {
			p.record = p.record.WithAvailability(false)
		}
		p.resetFormLocked()
		p.mu.Unlock()

		logging.LogReservationOutcome(record.ID, "confirmed", nil)
		bus.Publish(p.bus, ReservationResultTopic, ReservationResultEvent{YachtID: record.ID})
		return nil

	case backend.IsDuplicate(err):
		p.banner = Banner{
			Kind:    BannerNotAvailable,
			Title:   "Not available",
			Message: fmt.Sprintf("%s is already booked on %s", record.Name, record.ReservationDate),
		}
		p.resetFormLocked()
		p.mu.Unlock()

		logging.LogReservationOutcome(record.ID, "duplicate", err)
		return err

	default:
		if err == nil {
			err = errors.New("reservation service returned an empty confirmation")
		}
		p.banner = Banner{Kind: BannerFailure, Title: "Reservation failed", Message: backend.ShortMessage(err)}
		p.mu.Unlock()

		logging.LogReservationOutcome(record.ID, "failed", err)
		return err
	}
}

// validateReservation checks every input field and reports all failures together.
func validateReservation(r yacht.Record, name, email string) error {
	verr := &ValidationError{}
	if r.ReservationDate == "" {
		verr.add(FieldDate, "reservation date is missing, search again")
	}
	if strings.TrimSpace(name) == "" {
		verr.add(FieldGuestName, "name is required")
	}
	email = strings.TrimSpace(email)
	if email == "" {
		verr.add(FieldGuestEmail, "email is required")
	} else if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		verr.add(FieldGuestEmail, "enter a valid email address")
	}
	return verr.errOrNil()
}

// Yacht returns the displayed record and whether one is set.
func (p *DetailPanel) Yacht() (yacht.Record, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.record, p.hasRecord
}

func (p *DetailPanel) FormOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.formOpen
}

func (p *DetailPanel) Submitting() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.submitting
}

func (p *DetailPanel) Banner() Banner {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.banner
}

func (p *DetailPanel) GuestName() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.guestName
}

func (p *DetailPanel) GuestEmail() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.guestEmail
}
