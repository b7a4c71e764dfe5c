package panel

import (
	"context"
	"fmt"
	"sync"

	"github.com/charterdesk/charterdesk/internal/yacht"
)

type fakeAvailability struct {
	mu      sync.Mutex
	records []yacht.Record
	err     error
	calls   []yacht.Criteria
	// block, when set, is waited on before returning
	block chan struct{}
}

func (f *fakeAvailability) Availability(ctx context.Context, c yacht.Criteria) ([]yacht.Record, error) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	block, records, err := f.block, f.records, f.err
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return records, err
}

func (f *fakeAvailability) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeReservations struct {
	mu           sync.Mutex
	confirmation string
	err          error
	got          []yacht.Reservation
	block        chan struct{}
	started      chan struct{}
}

func (f *fakeReservations) CreateReservation(ctx context.Context, r yacht.Reservation) (string, error) {
	f.mu.Lock()
	f.got = append(f.got, r)
	block, started := f.block, f.started
	f.mu.Unlock()

	if started != nil {
		close(started)
	}
	if block != nil {
		<-block
	}
	return f.confirmation, f.err
}

func (f *fakeReservations) requests() []yacht.Reservation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]yacht.Reservation(nil), f.got...)
}

type fakeTypes struct {
	names []string
	err   error
}

func (f *fakeTypes) YachtTypes(context.Context) ([]string, error) {
	return f.names, f.err
}

type fakeFetcher struct {
	calls []yacht.Criteria
	err   error
}

func (f *fakeFetcher) Fetch(_ context.Context, c yacht.Criteria) error {
	f.calls = append(f.calls, c)
	return f.err
}

// makeRecords returns n records with ids y0..y(n-1); available reports the
// availability of each index.
func makeRecords(n int, available func(i int) bool) []yacht.Record {
	out := make([]yacht.Record, n)
	for i := range out {
		out[i] = yacht.Record{
			ID:        fmt.Sprintf("y%d", i),
			Name:      fmt.Sprintf("Yacht %d", i),
			Type:      "Sailboat",
			Capacity:  8,
			Price:     1000,
			Available: available(i),
		}
	}
	return out
}

func allAvailable(int) bool { return true }

func ids(records []yacht.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}
