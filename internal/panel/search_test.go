package panel

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/charterdesk/charterdesk/internal/yacht"
)

func fixedClock() time.Time {
	return time.Date(2026, 10, 18, 15, 30, 0, 0, time.Local)
}

func newTestSearch(f Fetcher, types TypeLister) *SearchPanel {
	s := NewSearchPanel(f, types)
	s.Now = fixedClock
	return s
}

func TestSearchPanel_Defaults(t *testing.T) {
	s := newTestSearch(&fakeFetcher{}, nil)

	if !s.SearchDisabled() {
		t.Error("SearchDisabled() = false with no date")
	}
	if s.Type() != yacht.AllTypes {
		t.Errorf("Type() = %q, want %q", s.Type(), yacht.AllTypes)
	}
	if opts := s.TypeOptions(); !slices.Equal(opts, []string{yacht.AllTypes}) {
		t.Errorf("TypeOptions() = %v", opts)
	}

	s.SetDate("2030-01-01")
	if s.SearchDisabled() {
		t.Error("SearchDisabled() = true with a date set")
	}
}

func TestSearchPanel_DateValidation(t *testing.T) {
	tests := []struct {
		date    string
		wantErr bool
	}{
		{"2026-10-17", true},
		{"2025-12-31", true},
		{"2026-10-18", false},
		{"2026-10-19", false},
		{"2031-01-01", false},
		{"18/10/2026", true},
		{"2026-13-01", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			s := newTestSearch(&fakeFetcher{}, nil)
			s.SetDate(tt.date)

			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var verr *ValidationError
				if !errors.As(err, &verr) || !verr.Has(FieldDate) {
					t.Errorf("error = %v, want date failure", err)
				}
			}
		})
	}
}

func TestSearchPanel_PartySizeValidation(t *testing.T) {
	tests := []struct {
		size    string
		wantErr bool
		want    int
	}{
		{"", false, 0},
		{"6", false, 6},
		{"0", true, 0},
		{"-2", true, 0},
		{"two", true, 0},
	}

	for _, tt := range tests {
		s := newTestSearch(&fakeFetcher{}, nil)
		s.SetDate("2030-06-01")
		s.SetPartySize(tt.size)

		c, err := s.Criteria()
		if (err != nil) != tt.wantErr {
			t.Errorf("Criteria(%q) error = %v, wantErr %v", tt.size, err, tt.wantErr)
			continue
		}
		if err == nil && c.MinimumCapacity != tt.want {
			t.Errorf("Criteria(%q).MinimumCapacity = %d, want %d", tt.size, c.MinimumCapacity, tt.want)
		}
	}
}

func TestSearchPanel_ReportsAllFailures(t *testing.T) {
	s := newTestSearch(&fakeFetcher{}, nil)
	s.SetDate("2020-01-01")
	s.SetPartySize("lots")

	var verr *ValidationError
	if !errors.As(s.Validate(), &verr) {
		t.Fatal("expected *ValidationError")
	}
	if !verr.Has(FieldDate) || !verr.Has(FieldPartySize) {
		t.Errorf("fields = %v, want date and party size", verr.Fields)
	}
}

func TestSearchPanel_SubmitDelegatesToFetcher(t *testing.T) {
	f := &fakeFetcher{}
	s := newTestSearch(f, nil)
	s.SetDate(" 2030-06-01 ")
	s.SetType("Catamaran")
	s.SetPartySize("5")

	if err := s.Submit(context.Background()); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	want := yacht.Criteria{ReservationDate: "2030-06-01", YachtType: "Catamaran", MinimumCapacity: 5}
	if len(f.calls) != 1 || f.calls[0] != want {
		t.Errorf("fetch calls = %v, want [%v]", f.calls, want)
	}
}

func TestSearchPanel_SubmitInvalidDoesNotFetch(t *testing.T) {
	f := &fakeFetcher{}
	s := newTestSearch(f, nil)
	s.SetDate("2026-10-17")

	if err := s.Submit(context.Background()); err == nil {
		t.Fatal("Submit() error = nil for past date")
	}
	if len(f.calls) != 0 {
		t.Errorf("fetcher called %d times", len(f.calls))
	}
}

func TestSearchPanel_SubmitPropagatesFetchError(t *testing.T) {
	f := &fakeFetcher{err: errors.New("backend down")}
	s := newTestSearch(f, nil)
	s.SetDate("2030-06-01")

	if err := s.Submit(context.Background()); !errors.Is(err, f.err) {
		t.Errorf("Submit() error = %v, want %v", err, f.err)
	}
}

func TestSearchPanel_LoadTypes(t *testing.T) {
	s := newTestSearch(&fakeFetcher{}, &fakeTypes{names: []string{"Sailboat", "Catamaran", "Sailboat"}})
	s.SetType("Trawler")

	if err := s.LoadTypes(context.Background()); err != nil {
		t.Fatalf("LoadTypes() error = %v", err)
	}
	want := []string{"Sailboat", "Catamaran", yacht.AllTypes}
	if got := s.TypeOptions(); !slices.Equal(got, want) {
		t.Errorf("TypeOptions() = %v, want %v", got, want)
	}
	if s.Type() != yacht.AllTypes {
		t.Errorf("Type() = %q, want selection reset to %q", s.Type(), yacht.AllTypes)
	}
}

func TestSearchPanel_LoadTypesError(t *testing.T) {
	s := newTestSearch(&fakeFetcher{}, &fakeTypes{err: errors.New("offline")})
	if err := s.LoadTypes(context.Background()); err == nil {
		t.Fatal("LoadTypes() error = nil")
	}
	if got := s.TypeOptions(); !slices.Equal(got, []string{yacht.AllTypes}) {
		t.Errorf("TypeOptions() = %v after failure", got)
	}
}

func TestSearchPanel_CycleType(t *testing.T) {
	s := newTestSearch(&fakeFetcher{}, &fakeTypes{names: []string{"Sailboat", "Catamaran"}})
	if err := s.LoadTypes(context.Background()); err != nil {
		t.Fatalf("LoadTypes() error = %v", err)
	}

	steps := []struct {
		delta int
		want  string
	}{
		{1, "Sailboat"},
		{1, "Catamaran"},
		{1, yacht.AllTypes},
		{-1, "Catamaran"},
		{-2, yacht.AllTypes},
	}
	for _, st := range steps {
		if got := s.CycleType(st.delta); got != st.want {
			t.Errorf("CycleType(%d) = %q, want %q", st.delta, got, st.want)
		}
	}
}

func TestSearchPanel_LoadingAndReset(t *testing.T) {
	s := newTestSearch(&fakeFetcher{}, nil)
	s.SetLoading(true)
	if !s.Loading() {
		t.Error("Loading() = false after SetLoading(true)")
	}

	s.SetDate("2030-06-01")
	s.SetType("Sailboat")
	s.SetPartySize("3")
	s.Reset()

	if s.Date() != "" || s.Type() != yacht.AllTypes || s.PartySize() != "" || s.Loading() {
		t.Errorf("Reset() left date=%q type=%q party=%q loading=%v", s.Date(), s.Type(), s.PartySize(), s.Loading())
	}
}
