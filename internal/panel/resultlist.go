package panel

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/charterdesk/charterdesk/internal/bus"
	"github.com/charterdesk/charterdesk/internal/logging"
	"github.com/charterdesk/charterdesk/internal/yacht"
)

const (
	// PageSize is the number of records appended per pagination step.
	PageSize = 9

	// NearBottomThreshold is the remaining scroll distance below which the
	// next page is loaded.
	NearBottomThreshold = 50
)

// ResultList owns the authoritative search results and pages them into the
// visible collection. It is safe for concurrent use.
type ResultList struct {
	svc AvailabilityService
	bus *bus.Bus

	mu         sync.Mutex
	master     []yacht.Record
	visible    []yacht.Record
	cursor     int
	loading    bool
	empty      bool
	criteria   yacht.Criteria
	searched   bool
	selectedID string
	generation uint64
	cancel     context.CancelFunc
	sub        *bus.Subscription
}

// NewResultList creates a result list querying svc and publishing on b.
func NewResultList(svc AvailabilityService, b *bus.Bus) *ResultList {
	return &ResultList{svc: svc, bus: b}
}

// Fetch runs the availability query and replaces the results. A fetch that
// is still running when a newer one starts is cancelled and returns
// ErrFetchSuperseded. On failure the previous results are kept.
func (l *ResultList) Fetch(ctx context.Context, criteria yacht.Criteria) error {
	return l.fetch(ctx, criteria, 0)
}

// Refresh re-runs the last successful search and restores at least as many
// visible records as before. It does nothing before the first search or
// while another fetch is running, so a newer search is never superseded by
// an older one.
func (l *ResultList) Refresh(ctx context.Context) error {
	l.mu.Lock()
	if !l.searched {
		l.mu.Unlock()
		return nil
	}
	if l.cancel != nil {
		l.mu.Unlock()
		logging.Debug("Skipping refresh while a search is running")
		return nil
	}
	criteria, keep := l.criteria, l.cursor
	l.mu.Unlock()

	return l.fetch(ctx, criteria, keep)
}

func (l *ResultList) fetch(ctx context.Context, criteria yacht.Criteria, keep int) error {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	l.generation++
	gen := l.generation
	l.cancel = cancel
	l.loading = true
	l.mu.Unlock()

	records, err := l.svc.Availability(ctx, criteria)

	l.mu.Lock()
	defer l.mu.Unlock()

	if gen != l.generation {
		logging.Debug("Discarding superseded fetch", zap.String("date", criteria.ReservationDate))
		return ErrFetchSuperseded
	}
	l.loading = false
	l.cancel = nil

	if err != nil {
		logging.Warn("Availability query failed",
			zap.String("date", criteria.ReservationDate),
			zap.String("type", criteria.TypeFilter()),
			zap.Error(err),
		)
		return fmt.Errorf("availability query failed: %w", err)
	}

	master := make([]yacht.Record, len(records))
	for i, r := range records {
		master[i] = r.ForRequest(criteria)
	}
	yacht.SortAvailableFirst(master)

	l.master = master
	l.visible = nil
	l.cursor = 0
	l.empty = len(master) == 0
	l.criteria = criteria
	l.searched = true

	l.loadNextPageLocked()
	for l.cursor < keep && l.loadNextPageLocked() {
	}

	logging.Info("Search completed",
		zap.String("date", criteria.ReservationDate),
		zap.String("type", criteria.TypeFilter()),
		zap.Int("results", len(master)),
	)
	return nil
}

// LoadNextPage appends the next page of master to the visible collection.
// It reports whether anything was appended.
func (l *ResultList) LoadNextPage() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadNextPageLocked()
}

// loadNextPageLocked appends the first PageSize master records not yet
// visible. After a reconciliation re-sort the unseen records need not sit at
// master[cursor:], so they are picked by identity.
func (l *ResultList) loadNextPageLocked() bool {
	if l.cursor >= len(l.master) {
		return false
	}

	shown := make(map[string]int, len(l.visible))
	for _, r := range l.visible {
		shown[r.ID]++
	}
	added := 0
	for _, r := range l.master {
		if added == PageSize {
			break
		}
		if shown[r.ID] > 0 {
			shown[r.ID]--
			continue
		}
		l.visible = append(l.visible, r)
		added++
	}
	l.cursor = min(l.cursor+added, len(l.master))
	return added > 0
}

// OnScrollNearBottom loads the next page when the remaining scroll distance
// drops below NearBottomThreshold and more records are pending.
func (l *ResultList) OnScrollNearBottom(remaining int) bool {
	if remaining >= NearBottomThreshold {
		return false
	}
	return l.LoadNextPage()
}

// OnReservationResult marks yachtID unavailable in master and visible and
// re-sorts master. The visible collection keeps its order.
func (l *ResultList) OnReservationResult(yachtID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.master) == 0 {
		return
	}

	master, changed := markUnavailable(l.master, yachtID)
	if !changed {
		return
	}
	yacht.SortAvailableFirst(master)
	l.master = master
	l.visible, _ = markUnavailable(l.visible, yachtID)

	logging.Debug("Reconciled reservation result", zap.String("yacht_id", yachtID))
}

// markUnavailable returns a copy of records with every record matching id
// replaced by an unavailable copy.
func markUnavailable(records []yacht.Record, id string) ([]yacht.Record, bool) {
	out := make([]yacht.Record, len(records))
	changed := false
	for i, r := range records {
		if r.ID == id {
			r = r.WithAvailability(false)
			changed = true
		}
		out[i] = r
	}
	return out, changed
}

// Activate subscribes to reservation results. Repeated calls are no-ops.
func (l *ResultList) Activate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sub != nil {
		return
	}
	l.sub = bus.Subscribe(l.bus, ReservationResultTopic, func(e ReservationResultEvent) {
		l.OnReservationResult(e.YachtID)
	})
}

// Deactivate drops the reservation-result subscription and cancels any
// running fetch.
func (l *ResultList) Deactivate() {
	l.mu.Lock()
	sub := l.sub
	l.sub = nil
	if l.cancel != nil {
		l.cancel()
	}
	l.mu.Unlock()

	sub.Unsubscribe()
}

// Active reports whether the list is subscribed to reservation results.
func (l *ResultList) Active() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sub != nil
}

// OnTileSelected forwards a tile's selection to the bus.
func (l *ResultList) OnTileSelected(e TileSelectEvent) {
	l.mu.Lock()
	l.selectedID = e.Yacht.ID
	l.mu.Unlock()

	bus.Publish(l.bus, SelectionTopic, SelectionEvent{Yacht: e.Yacht})
}

// Visible returns a copy of the rendered records.
func (l *ResultList) Visible() []yacht.Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.visible)
}

// Master returns a copy of the full result set.
func (l *ResultList) Master() []yacht.Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.master)
}

// Tiles returns a tile per visible record.
func (l *ResultList) Tiles() []*Tile {
	l.mu.Lock()
	defer l.mu.Unlock()
	tiles := make([]*Tile, len(l.visible))
	for i, r := range l.visible {
		tiles[i] = NewTile(r, l.selectedID)
	}
	return tiles
}

func (l *ResultList) Cursor() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cursor
}

// HasMore reports whether records remain to be paged in.
func (l *ResultList) HasMore() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cursor < len(l.master)
}

// Empty reports whether the last successful search returned nothing.
func (l *ResultList) Empty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.empty
}

func (l *ResultList) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

func (l *ResultList) SelectedID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.selectedID
}

// Criteria returns the criteria of the last successful search.
func (l *ResultList) Criteria() (yacht.Criteria, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.criteria, l.searched
}
