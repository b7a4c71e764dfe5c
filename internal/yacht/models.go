package yacht

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// AllTypes is the yacht type sentinel that disables type filtering.
const AllTypes = "All Types"

// DateLayout is the normalized reservation date format.
const DateLayout = "2006-01-02"

// Record is a single yacht as returned by the availability query.
// ReservationDate and PartySize are only populated when the backend attaches
// the record to a pending reservation request.
type Record struct {
	ID              string  `json:"yachtId"`
	Name            string  `json:"yachtName"`
	Type            string  `json:"yachtType"`
	Capacity        int     `json:"capacity"`
	Length          float64 `json:"length"`
	Price           float64 `json:"price"`
	Description     string  `json:"description,omitempty"`
	ImageURL        string  `json:"imageURL,omitempty"`
	Available       bool    `json:"isAvailable"`
	ReservationDate string  `json:"reservationDate,omitempty"`
	PartySize       int     `json:"partySize,omitempty"`
}

// WithAvailability returns a copy of r with the availability flag replaced.
func (r Record) WithAvailability(available bool) Record {
	r.Available = available
	return r
}

// ForRequest returns a copy of r carrying the date and party size of c when
// the backend did not attach them.
func (r Record) ForRequest(c Criteria) Record {
	if r.ReservationDate == "" {
		r.ReservationDate = c.ReservationDate
	}
	if r.PartySize == 0 {
		r.PartySize = c.MinimumCapacity
	}
	return r
}

// String returns a short human-readable form of the record
func (r Record) String() string {
	status := "available"
	if !r.Available {
		status = "unavailable"
	}
	return fmt.Sprintf("%s (%s, %d guests, %s)", r.Name, r.Type, r.Capacity, status)
}

// Criteria holds the search filters collected by the search panel.
type Criteria struct {
	ReservationDate string `json:"reservationDate" yaml:"reservation_date"`
	YachtType       string `json:"yachtType" yaml:"yacht_type"`
	MinimumCapacity int    `json:"minimumCapacity,omitempty" yaml:"minimum_capacity,omitempty"`
}

// NewCriteria returns criteria for date with the type filter defaulted to AllTypes.
func NewCriteria(date string) Criteria {
	return Criteria{ReservationDate: date, YachtType: AllTypes}
}

// TypeFilter returns the effective yacht type, mapping empty to AllTypes.
func (c Criteria) TypeFilter() string {
	if strings.TrimSpace(c.YachtType) == "" {
		return AllTypes
	}
	return c.YachtType
}

// Reservation is the payload sent to the reservation-creation call.
type Reservation struct {
	YachtID         string  `json:"yachtId"`
	YachtName       string  `json:"yachtName"`
	ReservationDate string  `json:"reservationDate"`
	Price           float64 `json:"price"`
	PartySize       int     `json:"partySize"`
	GuestName       string  `json:"guestName"`
	GuestEmail      string  `json:"guestEmail"`
}

// NewReservation builds a reservation for the displayed record and guest fields.
func NewReservation(r Record, guestName, guestEmail string) Reservation {
	return Reservation{
		YachtID:         r.ID,
		YachtName:       r.Name,
		ReservationDate: r.ReservationDate,
		Price:           r.Price,
		PartySize:       r.PartySize,
		GuestName:       guestName,
		GuestEmail:      guestEmail,
	}
}

// compareAvailability orders available records before unavailable ones and
// reports equality for records in the same partition.
func compareAvailability(a, b Record) int {
	switch {
	case a.Available == b.Available:
		return 0
	case a.Available:
		return -1
	default:
		return 1
	}
}

// SortAvailableFirst stably sorts records in place, available first.
func SortAvailableFirst(records []Record) {
	slices.SortStableFunc(records, compareAvailability)
}

// Normalize parses a reservation date and returns it in DateLayout.
func Normalize(date string) (string, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(date))
	if err != nil {
		return "", fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", date)
	}
	return t.Format(DateLayout), nil
}

// IsPastDate reports whether the normalized date lies strictly before today
// on now's calendar.
func IsPastDate(date string, now time.Time) bool {
	return date < now.Format(DateLayout)
}
