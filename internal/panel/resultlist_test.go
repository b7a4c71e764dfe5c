package panel

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/charterdesk/charterdesk/internal/bus"
	"github.com/charterdesk/charterdesk/internal/yacht"
)

var testCriteria = yacht.Criteria{ReservationDate: "2030-06-01", YachtType: yacht.AllTypes, MinimumCapacity: 4}

func TestResultList_FetchSortsAndLoadsFirstPage(t *testing.T) {
	svc := &fakeAvailability{records: makeRecords(12, func(i int) bool { return i%3 != 0 })}
	l := NewResultList(svc, bus.New())

	if err := l.Fetch(context.Background(), testCriteria); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	master := l.Master()
	if len(master) != 12 {
		t.Fatalf("len(master) = %d, want 12", len(master))
	}
	want := []string{"y1", "y2", "y4", "y5", "y7", "y8", "y10", "y11", "y0", "y3", "y6", "y9"}
	if !slices.Equal(ids(master), want) {
		t.Errorf("master order = %v, want %v", ids(master), want)
	}

	visible := l.Visible()
	if len(visible) != PageSize {
		t.Errorf("len(visible) = %d, want %d", len(visible), PageSize)
	}
	if !slices.Equal(ids(visible), want[:PageSize]) {
		t.Errorf("visible is not a prefix of master: %v", ids(visible))
	}
	if l.Cursor() != PageSize || !l.HasMore() || l.Empty() || l.Loading() {
		t.Errorf("cursor=%d hasMore=%v empty=%v loading=%v", l.Cursor(), l.HasMore(), l.Empty(), l.Loading())
	}
}

func TestResultList_FetchAttachesRequest(t *testing.T) {
	svc := &fakeAvailability{records: makeRecords(1, allAvailable)}
	l := NewResultList(svc, bus.New())

	if err := l.Fetch(context.Background(), testCriteria); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	r := l.Master()[0]
	if r.ReservationDate != "2030-06-01" || r.PartySize != 4 {
		t.Errorf("record = %+v, want date and party size attached", r)
	}
	if svc.records[0].ReservationDate != "" {
		t.Error("service records were mutated")
	}
	if c, ok := l.Criteria(); !ok || c != testCriteria {
		t.Errorf("Criteria() = %+v, %v", c, ok)
	}
}

func TestResultList_PaginationExample(t *testing.T) {
	svc := &fakeAvailability{records: makeRecords(20, allAvailable)}
	l := NewResultList(svc, bus.New())

	if err := l.Fetch(context.Background(), testCriteria); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if n := len(l.Visible()); n != 9 {
		t.Fatalf("initial visible = %d, want 9", n)
	}

	l.OnScrollNearBottom(10)
	if n := len(l.Visible()); n != 18 {
		t.Errorf("after first scroll visible = %d, want 18", n)
	}

	l.OnScrollNearBottom(10)
	if n := len(l.Visible()); n != 20 {
		t.Errorf("after second scroll visible = %d, want 20", n)
	}
	if l.Cursor() != 20 || l.HasMore() {
		t.Errorf("cursor = %d hasMore = %v", l.Cursor(), l.HasMore())
	}
}

func TestResultList_LoadNextPageCount(t *testing.T) {
	for _, m := range []int{0, 1, 9, 10, 26, 27, 40} {
		svc := &fakeAvailability{records: makeRecords(m, allAvailable)}
		l := NewResultList(svc, bus.New())
		if err := l.Fetch(context.Background(), testCriteria); err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		for n := 1; n <= 6; n++ {
			if got, want := len(l.Visible()), min(n*PageSize, m); got != want {
				t.Errorf("M=%d after %d loads: |visible| = %d, want %d", m, n, got, want)
			}
			l.LoadNextPage()
		}
	}
}

func TestResultList_LoadNextPageExhausted(t *testing.T) {
	svc := &fakeAvailability{records: makeRecords(5, allAvailable)}
	l := NewResultList(svc, bus.New())
	if err := l.Fetch(context.Background(), testCriteria); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	before, cursor := l.Visible(), l.Cursor()
	if l.LoadNextPage() {
		t.Error("LoadNextPage() = true with nothing left")
	}
	if !slices.Equal(l.Visible(), before) || l.Cursor() != cursor {
		t.Error("LoadNextPage() mutated state after exhaustion")
	}
}

func TestResultList_OnScrollNearBottomThreshold(t *testing.T) {
	svc := &fakeAvailability{records: makeRecords(20, allAvailable)}
	l := NewResultList(svc, bus.New())
	if err := l.Fetch(context.Background(), testCriteria); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if l.OnScrollNearBottom(NearBottomThreshold) {
		t.Error("remaining == threshold should not load")
	}
	if l.OnScrollNearBottom(200) {
		t.Error("remaining far from bottom should not load")
	}
	if !l.OnScrollNearBottom(NearBottomThreshold - 1) {
		t.Error("remaining below threshold should load")
	}
}

func TestResultList_ConcurrentLoadsNeverDuplicate(t *testing.T) {
	svc := &fakeAvailability{records: makeRecords(100, allAvailable)}
	l := NewResultList(svc, bus.New())
	if err := l.Fetch(context.Background(), testCriteria); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.OnScrollNearBottom(0)
		}()
	}
	wg.Wait()

	visible := l.Visible()
	if len(visible) != 100 {
		t.Fatalf("len(visible) = %d, want 100", len(visible))
	}
	if !slices.Equal(ids(visible), ids(l.Master())) {
		t.Error("visible is not the master collection after exhausting pages")
	}
}

func TestResultList_EmptyResult(t *testing.T) {
	l := NewResultList(&fakeAvailability{}, bus.New())
	if err := l.Fetch(context.Background(), testCriteria); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !l.Empty() || l.HasMore() || len(l.Visible()) != 0 {
		t.Errorf("empty=%v hasMore=%v visible=%d", l.Empty(), l.HasMore(), len(l.Visible()))
	}
}

func TestResultList_FetchFailureKeepsState(t *testing.T) {
	svc := &fakeAvailability{records: makeRecords(12, allAvailable)}
	l := NewResultList(svc, bus.New())
	if err := l.Fetch(context.Background(), testCriteria); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	l.LoadNextPage()

	svc.err = errors.New("service unavailable")
	err := l.Fetch(context.Background(), yacht.NewCriteria("2030-07-01"))
	if err == nil || !errors.Is(err, svc.err) {
		t.Fatalf("Fetch() error = %v, want wrapped service error", err)
	}

	if len(l.Visible()) != 12 || l.Cursor() != 12 || l.Loading() {
		t.Errorf("state changed after failed fetch: visible=%d cursor=%d loading=%v",
			len(l.Visible()), l.Cursor(), l.Loading())
	}
	if c, _ := l.Criteria(); c.ReservationDate != "2030-06-01" {
		t.Errorf("criteria replaced by failed fetch: %+v", c)
	}
}

func TestResultList_NewFetchSupersedesRunning(t *testing.T) {
	svc := &fakeAvailability{records: makeRecords(3, allAvailable), block: make(chan struct{})}
	l := NewResultList(svc, bus.New())

	first := make(chan error, 1)
	go func() { first <- l.Fetch(context.Background(), testCriteria) }()

	deadline := time.Now().Add(2 * time.Second)
	for svc.callCount() < 1 {
		if time.Now().After(deadline) {
			t.Fatal("first fetch never reached the service")
		}
		time.Sleep(time.Millisecond)
	}
	if !l.Loading() {
		t.Error("Loading() = false while a fetch is running")
	}

	svc.mu.Lock()
	svc.block = nil
	svc.records = makeRecords(2, allAvailable)
	svc.mu.Unlock()

	if err := l.Fetch(context.Background(), yacht.NewCriteria("2030-08-01")); err != nil {
		t.Fatalf("second Fetch() error = %v", err)
	}
	if err := <-first; !errors.Is(err, ErrFetchSuperseded) {
		t.Errorf("first Fetch() error = %v, want ErrFetchSuperseded", err)
	}
	if len(l.Master()) != 2 {
		t.Errorf("len(master) = %d, want results of the latest fetch", len(l.Master()))
	}
	if l.Loading() {
		t.Error("Loading() = true after the latest fetch finished")
	}
}

func TestResultList_OnReservationResultExample(t *testing.T) {
	svc := &fakeAvailability{records: []yacht.Record{
		{ID: "A", Available: true},
		{ID: "B", Available: true},
		{ID: "C", Available: false},
	}}
	l := NewResultList(svc, bus.New())
	if err := l.Fetch(context.Background(), testCriteria); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	l.OnReservationResult("B")

	master := l.Master()
	if !slices.Equal(ids(master), []string{"A", "C", "B"}) {
		t.Errorf("master = %v, want [A C B]", ids(master))
	}
	if master[2].Available {
		t.Error("B still available in master")
	}

	visible := l.Visible()
	if !slices.Equal(ids(visible), []string{"A", "B", "C"}) {
		t.Errorf("visible = %v, want original order [A B C]", ids(visible))
	}
	if visible[1].Available || !visible[0].Available {
		t.Errorf("visible availability = %v", visible)
	}
}

func TestResultList_OnReservationResultStable(t *testing.T) {
	svc := &fakeAvailability{records: makeRecords(8, func(i int) bool { return i < 5 })}
	l := NewResultList(svc, bus.New())
	if err := l.Fetch(context.Background(), testCriteria); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	l.OnReservationResult("y2")

	want := []string{"y0", "y1", "y3", "y4", "y5", "y6", "y7", "y2"}
	if got := ids(l.Master()); !slices.Equal(got, want) {
		t.Errorf("master = %v, want %v", got, want)
	}
	for _, r := range l.Master() {
		if wantAvail := r.ID == "y0" || r.ID == "y1" || r.ID == "y3" || r.ID == "y4"; r.Available != wantAvail {
			t.Errorf("%s available = %v, want %v", r.ID, r.Available, wantAvail)
		}
	}
}

func TestResultList_OnReservationResultNoop(t *testing.T) {
	l := NewResultList(&fakeAvailability{}, bus.New())
	l.OnReservationResult("missing")
	if len(l.Master()) != 0 {
		t.Error("empty list changed")
	}

	svc := &fakeAvailability{records: makeRecords(3, allAvailable)}
	l = NewResultList(svc, bus.New())
	if err := l.Fetch(context.Background(), testCriteria); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	before := l.Master()
	l.OnReservationResult("unknown")
	if !slices.Equal(l.Master(), before) {
		t.Error("unknown id changed master")
	}
}

func TestResultList_ActivateIdempotent(t *testing.T) {
	b := bus.New()
	svc := &fakeAvailability{records: makeRecords(3, allAvailable)}
	l := NewResultList(svc, b)
	if err := l.Fetch(context.Background(), testCriteria); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	l.Activate()
	l.Activate()
	if n := bus.SubscriberCount(b, ReservationResultTopic); n != 1 {
		t.Fatalf("SubscriberCount() = %d, want 1", n)
	}

	bus.Publish(b, ReservationResultTopic, ReservationResultEvent{YachtID: "y0"})
	if l.Master()[2].ID != "y0" || l.Master()[2].Available {
		t.Errorf("reservation result not reconciled: %v", l.Master())
	}

	l.Deactivate()
	l.Deactivate()
	if l.Active() {
		t.Error("Active() = true after Deactivate")
	}
	if n := bus.SubscriberCount(b, ReservationResultTopic); n != 0 {
		t.Errorf("SubscriberCount() = %d after deactivate, want 0", n)
	}
}

func TestResultList_OnTileSelectedPublishesFullRecord(t *testing.T) {
	b := bus.New()
	l := NewResultList(&fakeAvailability{}, b)

	var got []SelectionEvent
	bus.Subscribe(b, SelectionTopic, func(e SelectionEvent) { got = append(got, e) })

	rec := yacht.Record{ID: "y9", Name: "Calypso", Price: 1500, Available: true}
	tile := NewTile(rec, "")
	l.OnTileSelected(tile.Select())

	if len(got) != 1 || got[0].Yacht != rec {
		t.Fatalf("published %v, want one event carrying %v", got, rec)
	}
	if l.SelectedID() != "y9" {
		t.Errorf("SelectedID() = %q", l.SelectedID())
	}
}

func TestResultList_Refresh(t *testing.T) {
	svc := &fakeAvailability{records: makeRecords(30, allAvailable)}
	l := NewResultList(svc, bus.New())

	if err := l.Refresh(context.Background()); err != nil || svc.callCount() != 0 {
		t.Fatalf("Refresh() before search: err=%v calls=%d", err, svc.callCount())
	}

	if err := l.Fetch(context.Background(), testCriteria); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	l.LoadNextPage()

	svc.mu.Lock()
	svc.records = makeRecords(30, func(i int) bool { return i != 0 })
	svc.mu.Unlock()

	if err := l.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if svc.calls[1] != testCriteria {
		t.Errorf("Refresh() criteria = %+v, want %+v", svc.calls[1], testCriteria)
	}
	if n := len(l.Visible()); n != 18 {
		t.Errorf("visible after refresh = %d, want 18", n)
	}
	if l.Master()[29].ID != "y0" {
		t.Errorf("refreshed master not re-sorted: last = %s", l.Master()[29].ID)
	}
}

func TestResultList_Tiles(t *testing.T) {
	svc := &fakeAvailability{records: makeRecords(3, func(i int) bool { return i != 1 })}
	l := NewResultList(svc, bus.New())
	if err := l.Fetch(context.Background(), testCriteria); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	l.OnTileSelected(TileSelectEvent{Yacht: l.Visible()[0]})

	tiles := l.Tiles()
	if len(tiles) != 3 {
		t.Fatalf("len(tiles) = %d", len(tiles))
	}
	if !tiles[0].Selected() || tiles[1].Selected() {
		t.Error("selection hint not applied")
	}
	if tiles[2].StyleClass() != TileDisabledClass {
		t.Errorf("unavailable tile class = %q", tiles[2].StyleClass())
	}
}

func TestResultList_PagingAfterReconciliation(t *testing.T) {
	tests := []struct {
		name     string
		records  int
		reserved string
		pages    int
	}{
		{name: "reserved record already visible", records: 10, reserved: "y3", pages: 1},
		{name: "visible record over two pages", records: 20, reserved: "y3", pages: 2},
		{name: "reserved record not yet visible", records: 20, reserved: "y12", pages: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeAvailability{records: makeRecords(tt.records, allAvailable)}
			l := NewResultList(svc, bus.New())
			if err := l.Fetch(context.Background(), testCriteria); err != nil {
				t.Fatalf("Fetch() error = %v", err)
			}

			l.OnReservationResult(tt.reserved)
			for i := 0; i < tt.pages; i++ {
				if !l.LoadNextPage() {
					t.Fatalf("LoadNextPage() #%d appended nothing", i+1)
				}
			}

			got := ids(l.Visible())
			if len(got) != tt.records {
				t.Fatalf("visible = %v, want all %d records", got, tt.records)
			}
			seen := make(map[string]bool, len(got))
			for _, id := range got {
				if seen[id] {
					t.Errorf("%s shown twice: %v", id, got)
				}
				seen[id] = true
			}
			if l.HasMore() || l.LoadNextPage() {
				t.Errorf("HasMore() = %v after every record was shown", l.HasMore())
			}
			if l.Cursor() != tt.records {
				t.Errorf("Cursor() = %d, want %d", l.Cursor(), tt.records)
			}
		})
	}
}

func TestResultList_RefreshDuringSearch(t *testing.T) {
	svc := &fakeAvailability{records: makeRecords(5, allAvailable)}
	l := NewResultList(svc, bus.New())

	if err := l.Fetch(context.Background(), testCriteria); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	newer := yacht.NewCriteria("2030-09-01")
	release := make(chan struct{})
	svc.mu.Lock()
	svc.block = release
	svc.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- l.Fetch(context.Background(), newer) }()

	deadline := time.Now().Add(2 * time.Second)
	for svc.callCount() < 2 {
		if time.Now().After(deadline) {
			t.Fatal("search never reached the service")
		}
		time.Sleep(time.Millisecond)
	}

	if err := l.Refresh(context.Background()); err != nil {
		t.Errorf("Refresh() error = %v", err)
	}
	if n := svc.callCount(); n != 2 {
		t.Errorf("service calls = %d, refresh should not start a query", n)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("search error = %v, want it to complete", err)
	}
	if c, _ := l.Criteria(); c != newer {
		t.Errorf("Criteria() = %+v, want the newer search %+v", c, newer)
	}

	svc.mu.Lock()
	svc.block = nil
	svc.mu.Unlock()
	if err := l.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if got := svc.calls[2]; got != newer {
		t.Errorf("Refresh() criteria = %+v, want %+v", got, newer)
	}
}
