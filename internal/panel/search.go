package panel

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/charterdesk/charterdesk/internal/logging"
	"github.com/charterdesk/charterdesk/internal/yacht"
)

// SearchPanel collects and validates search criteria and hands them to a
// Fetcher. It is safe for concurrent use.
type SearchPanel struct {
	fetcher Fetcher
	types   TypeLister

	// Now is the clock used for the not-in-the-past check.
	Now func() time.Time

	mu        sync.Mutex
	date      string
	yachtType string
	partySize string
	options   []string
	loading   bool
}

// NewSearchPanel creates a search panel driving fetcher. types may be nil,
// in which case only the AllTypes option is offered.
func NewSearchPanel(fetcher Fetcher, types TypeLister) *SearchPanel {
	return &SearchPanel{
		fetcher:   fetcher,
		types:     types,
		Now:       time.Now,
		yachtType: yacht.AllTypes,
		options:   []string{yacht.AllTypes},
	}
}

func (s *SearchPanel) SetDate(date string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.date = strings.TrimSpace(date)
}

// SetType selects a yacht type; empty selects AllTypes.
func (s *SearchPanel) SetType(t string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(t) == "" {
		t = yacht.AllTypes
	}
	s.yachtType = t
}

// SetPartySize sets the minimum capacity as typed; it is validated on submit.
func (s *SearchPanel) SetPartySize(size string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.partySize = strings.TrimSpace(size)
}

// SearchDisabled is true while no date is entered.
func (s *SearchPanel) SearchDisabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.date == ""
}

// SetLoading toggles the spinner flag. The caller drives it.
func (s *SearchPanel) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
}

func (s *SearchPanel) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Validate checks every field and returns a *ValidationError listing all
// failures, or nil.
func (s *SearchPanel) Validate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.criteriaLocked()
	return err
}

func (s *SearchPanel) criteriaLocked() (yacht.Criteria, error) {
	verr := &ValidationError{}
	c := yacht.Criteria{YachtType: s.yachtType}

	if s.date == "" {
		verr.add(FieldDate, "reservation date is required")
	} else if date, err := yacht.Normalize(s.date); err != nil {
		verr.add(FieldDate, err.Error())
	} else if yacht.IsPastDate(date, s.Now()) {
		verr.add(FieldDate, "reservation date cannot be in the past")
	} else {
		c.ReservationDate = date
	}

	if s.partySize != "" {
		n, err := strconv.Atoi(s.partySize)
		if err != nil || n <= 0 {
			verr.add(FieldPartySize, "party size must be a positive number")
		} else {
			c.MinimumCapacity = n
		}
	}

	return c, verr.errOrNil()
}

// Criteria returns the current criteria if they are valid.
func (s *SearchPanel) Criteria() (yacht.Criteria, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.criteriaLocked()
}

// Submit validates the criteria and, when valid, fetches results.
// Invalid input returns the *ValidationError without fetching.
func (s *SearchPanel) Submit(ctx context.Context) error {
	c, err := s.Criteria()
	if err != nil {
		return err
	}
	logging.Debug("Search submitted",
		zap.String("date", c.ReservationDate),
		zap.String("type", c.TypeFilter()),
		zap.Int("party_size", c.MinimumCapacity),
	)
	return s.fetcher.Fetch(ctx, c)
}

// LoadTypes fetches the yacht type options and appends AllTypes.
// The current selection is kept if still offered.
func (s *SearchPanel) LoadTypes(ctx context.Context) error {
	if s.types == nil {
		return nil
	}
	names, err := s.types.YachtTypes(ctx)
	if err != nil {
		return fmt.Errorf("failed to load yacht types: %w", err)
	}

	options := make([]string, 0, len(names)+1)
	for _, n := range names {
		if n != yacht.AllTypes && !slices.Contains(options, n) {
			options = append(options, n)
		}
	}
	options = append(options, yacht.AllTypes)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.options = options
	if !slices.Contains(options, s.yachtType) {
		s.yachtType = yacht.AllTypes
	}
	return nil
}

// TypeOptions returns the selectable yacht types.
func (s *SearchPanel) TypeOptions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.options)
}

// CycleType moves the type selection by delta, wrapping around.
func (s *SearchPanel) CycleType(delta int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.options)
	if n == 0 {
		return s.yachtType
	}
	i := slices.Index(s.options, s.yachtType)
	if i < 0 {
		i = 0
	}
	i = ((i+delta)%n + n) % n
	s.yachtType = s.options[i]
	return s.yachtType
}

func (s *SearchPanel) Date() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.date
}

func (s *SearchPanel) Type() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.yachtType
}

func (s *SearchPanel) PartySize() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.partySize
}

// Reset clears the entered criteria. Loaded type options are kept.
func (s *SearchPanel) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.date = ""
	s.yachtType = yacht.AllTypes
	s.partySize = ""
	s.loading = false
}
