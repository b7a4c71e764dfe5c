package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/charterdesk/charterdesk/internal/backend"
	"github.com/charterdesk/charterdesk/internal/bus"
	"github.com/charterdesk/charterdesk/internal/feed"
	"github.com/charterdesk/charterdesk/internal/logging"
	"github.com/charterdesk/charterdesk/internal/panel"
	"github.com/charterdesk/charterdesk/internal/refresh"
	"github.com/charterdesk/charterdesk/internal/yacht"
)

// Pane identifies the focused area of the screen
type Pane int

const (
	PaneSearch Pane = iota
	PaneResults
	PaneDetail
	paneCount
)

const (
	detailPaneWidth = 44
	statusInterval  = 2 * time.Second
	wheelLines      = 3
)

// Messages for async operations
type typesLoadedMsg struct{ err error }

type searchDoneMsg struct {
	criteria yacht.Criteria
	err      error
}

type reservationDoneMsg struct{ err error }

type refreshMsg struct{ err error }

type statusTickMsg struct{}

// Options wires the panels and background services into the TUI.
type Options struct {
	Bus     *bus.Bus
	Search  *panel.SearchPanel
	Results *panel.ResultList
	Detail  *panel.DetailPanel

	// Optional
	Feed      *feed.Listener
	Refresher *refresh.Refresher

	// GuestName and GuestEmail prefill the reservation form.
	GuestName  string
	GuestEmail string

	// OnSearch is called after every successful search.
	OnSearch func(yacht.Criteria)
}

// AppModel is the top-level model coordinating the three panes
type AppModel struct {
	ctx  context.Context
	opts Options

	Width  int
	Height int
	Focus  Pane

	searchForm  searchForm
	resultsView resultsView
	detailForm  detailForm

	spinner   spinner.Model
	reserving bool
	err       error // last search or refresh failure

	help help.Model
	keys keyMap
}

// NewAppModel creates the model. ctx bounds every remote call it starts.
func NewAppModel(ctx context.Context, opts Options) AppModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	m := AppModel{
		ctx:         ctx,
		opts:        opts,
		searchForm:  newSearchForm(opts.Search),
		resultsView: newResultsView(),
		detailForm:  newDetailForm(),
		spinner:     s,
		help:        help.New(),
		keys:        defaultKeyMap(),
	}
	m.searchForm.focus()
	m.resultsView.sync(opts.Results)
	return m
}

// Init loads the yacht type options
func (m AppModel) Init() tea.Cmd {
	search, ctx := m.opts.Search, m.ctx
	return tea.Batch(
		textinput.Blink,
		func() tea.Msg { return typesLoadedMsg{err: search.LoadTypes(ctx)} },
		statusTick(),
	)
}

func statusTick() tea.Cmd {
	return tea.Tick(statusInterval, func(time.Time) tea.Msg { return statusTickMsg{} })
}

// Update handles all messages and routes keys to the focused pane
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.layout()
		m.resultsView.sync(m.opts.Results)
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case typesLoadedMsg:
		if msg.err != nil {
			logging.Warn("Yacht types unavailable", zap.Error(msg.err))
			m.err = msg.err
		}
		return m, nil

	case searchDoneMsg:
		return m.handleSearchDone(msg)

	case reservationDoneMsg:
		return m.handleReservationDone(msg)

	case busEventMsg:
		m.resultsView.sync(m.opts.Results)
		return m, nil

	case refreshMsg:
		if msg.err != nil {
			m.err = msg.err
		}
		if !m.opts.Results.Loading() {
			m.opts.Search.SetLoading(false)
		}
		m.resultsView.sync(m.opts.Results)
		return m, nil

	case statusTickMsg:
		return m, statusTick()

	case tea.MouseMsg:
		if m.Focus != PaneResults {
			return m, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelDown:
			m.resultsView.scroll(wheelLines)
			m.loadMoreIfNearBottom()
		case tea.MouseButtonWheelUp:
			m.resultsView.scroll(-wheelLines)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ForceQuit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Tab):
		delta := 1
		if msg.String() == "shift+tab" {
			delta = -1
		}
		cmd := m.setFocus(Pane((int(m.Focus) + delta + int(paneCount)) % int(paneCount)))
		return m, cmd
	case key.Matches(msg, m.keys.Refresh):
		cmd := m.refreshCmd()
		return m, cmd
	}

	if !m.typing() {
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.layout()
			return m, nil
		case key.Matches(msg, m.keys.Dismiss):
			m.opts.Detail.DismissBanner()
			m.err = nil
			return m, nil
		}
	}

	switch m.Focus {
	case PaneSearch:
		return m.updateSearch(msg)
	case PaneResults:
		return m.updateResults(msg)
	case PaneDetail:
		return m.updateDetail(msg)
	}
	return m, nil
}

func (m AppModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		cmd := m.searchForm.move(-1)
		return m, cmd
	case tea.KeyDown:
		cmd := m.searchForm.move(1)
		return m, cmd
	case tea.KeyEnter:
		cmd := m.submitSearch()
		return m, cmd
	}

	if m.searchForm.field == searchFieldType {
		switch {
		case key.Matches(msg, m.keys.Left):
			m.opts.Search.CycleType(-1)
		case key.Matches(msg, m.keys.Right):
			m.opts.Search.CycleType(1)
		}
		return m, nil
	}

	m.searchForm.errs = nil
	cmd := m.searchForm.update(msg, m.opts.Search)
	return m, cmd
}

func (m *AppModel) submitSearch() tea.Cmd {
	search, ctx := m.opts.Search, m.ctx
	m.searchForm.apply(search)

	criteria, err := search.Criteria()
	var verr *panel.ValidationError
	if errors.As(err, &verr) {
		m.searchForm.errs = verr
		return nil
	}

	m.searchForm.errs = nil
	m.err = nil
	search.SetLoading(true)
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return searchDoneMsg{criteria: criteria, err: search.Submit(ctx)}
	})
}

func (m AppModel) handleSearchDone(msg searchDoneMsg) (tea.Model, tea.Cmd) {
	if errors.Is(msg.err, panel.ErrFetchSuperseded) {
		if !m.opts.Results.Loading() {
			m.opts.Search.SetLoading(false)
		}
		return m, nil
	}
	m.opts.Search.SetLoading(false)

	var verr *panel.ValidationError
	switch {
	case errors.As(msg.err, &verr):
		m.searchForm.errs = verr
		return m, nil
	case msg.err != nil:
		m.err = msg.err
		return m, nil
	}

	m.err = nil
	m.resultsView.reset()
	m.resultsView.sync(m.opts.Results)
	if m.opts.OnSearch != nil {
		m.opts.OnSearch(msg.criteria)
	}
	cmd := m.setFocus(PaneResults)
	return m, cmd
}

func (m AppModel) updateResults(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := &m.resultsView
	switch {
	case key.Matches(msg, m.keys.Up):
		v.move(-v.cols)
	case key.Matches(msg, m.keys.Down):
		v.move(v.cols)
	case key.Matches(msg, m.keys.Left):
		v.move(-1)
	case key.Matches(msg, m.keys.Right):
		v.move(1)
	case key.Matches(msg, m.keys.PageDown):
		v.scroll(v.viewport.Height)
		m.loadMoreIfNearBottom()
		return m, nil
	case key.Matches(msg, m.keys.Enter):
		cmd := m.selectTile()
		return m, cmd
	default:
		return m, nil
	}

	v.sync(m.opts.Results)
	m.loadMoreIfNearBottom()
	return m, nil
}

// loadMoreIfNearBottom pages in more results once the viewport is close to
// the end of the rendered grid. The distance is passed in terminal lines, so
// NearBottomThreshold spans several tile rows and a page of nine tiles is
// usually followed by the next one as soon as the user starts moving through
// the grid. That keeps the grid ahead of the cursor on short terminals.
func (m *AppModel) loadMoreIfNearBottom() {
	if m.opts.Results.OnScrollNearBottom(m.resultsView.remaining()) {
		m.resultsView.sync(m.opts.Results)
	}
}

func (m *AppModel) selectTile() tea.Cmd {
	tiles := m.opts.Results.Tiles()
	if m.resultsView.cursor >= len(tiles) {
		return nil
	}
	m.opts.Results.OnTileSelected(tiles[m.resultsView.cursor].Select())
	m.resultsView.sync(m.opts.Results)
	return m.setFocus(PaneDetail)
}

func (m AppModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := m.opts.Detail

	if !d.FormOpen() {
		if key.Matches(msg, m.keys.Reserve) {
			r, ok := d.Yacht()
			if !ok || !r.Available {
				return m, nil
			}
			if err := d.OpenForm(); err != nil {
				return m, nil
			}
			d.DismissBanner()
			cmd := m.detailForm.open(m.opts.GuestName, m.opts.GuestEmail)
			m.detailForm.apply(d)
			return m, cmd
		}
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEsc:
		d.CloseForm()
		m.detailForm.blur()
		m.detailForm.errs = nil
		return m, nil
	case tea.KeyUp, tea.KeyDown:
		cmd := m.detailForm.toggle()
		return m, cmd
	case tea.KeyEnter:
		cmd := m.submitReservation()
		return m, cmd
	}

	cmd := m.detailForm.update(msg)
	m.detailForm.apply(d)
	return m, cmd
}

func (m *AppModel) submitReservation() tea.Cmd {
	d, ctx := m.opts.Detail, m.ctx
	m.detailForm.apply(d)
	m.detailForm.errs = nil
	m.reserving = true

	submit := func() tea.Msg {
		return reservationDoneMsg{err: d.Submit(ctx)}
	}
	return tea.Batch(m.spinner.Tick, submit)
}

func (m AppModel) handleReservationDone(msg reservationDoneMsg) (tea.Model, tea.Cmd) {
	m.reserving = false
	var verr *panel.ValidationError
	if errors.As(msg.err, &verr) {
		m.detailForm.errs = verr
		return m, nil
	}
	if errors.Is(msg.err, panel.ErrSubmitInFlight) {
		return m, nil
	}
	if !m.opts.Detail.FormOpen() {
		m.detailForm.blur()
	}
	m.resultsView.sync(m.opts.Results)
	return m, nil
}

func (m *AppModel) refreshCmd() tea.Cmd {
	results, ctx := m.opts.Results, m.ctx
	if _, ok := results.Criteria(); !ok {
		return nil
	}
	return func() tea.Msg {
		err := results.Refresh(ctx)
		if errors.Is(err, panel.ErrFetchSuperseded) {
			err = nil
		}
		return refreshMsg{err: err}
	}
}

// setFocus moves focus to p and focuses the matching inputs.
func (m *AppModel) setFocus(p Pane) tea.Cmd {
	m.Focus = p
	m.searchForm.blur()
	m.detailForm.blur()

	switch p {
	case PaneSearch:
		return m.searchForm.focus()
	case PaneDetail:
		if m.opts.Detail.FormOpen() {
			return m.detailForm.focus()
		}
	}
	return nil
}

// typing reports whether keystrokes go to a text input.
func (m AppModel) typing() bool {
	switch m.Focus {
	case PaneSearch:
		return m.searchForm.typing()
	case PaneDetail:
		return m.opts.Detail.FormOpen()
	}
	return false
}

func (m AppModel) busy() bool {
	return m.opts.Search.Loading() || m.reserving || m.opts.Detail.Submitting()
}

// paneSizes returns the outer sizes of the results and detail panes.
func (m AppModel) paneSizes() (resultsWidth, detailWidth, height int) {
	inner := m.Width - 4
	detailWidth = min(detailPaneWidth, inner/2)
	resultsWidth = inner - detailWidth

	footer := lipgloss.Height(m.help.View(m.keys)) + 1
	height = m.Height - 2 - 2 - footer - 4 // border, header, footer, search pane
	return resultsWidth, detailWidth, max(height, 4)
}

func (m *AppModel) layout() {
	resultsWidth, _, height := m.paneSizes()
	m.help.Width = m.Width - 4
	m.resultsView.setSize(resultsWidth-4, height-3)
}

// View renders the three panes inside the application container
func (m AppModel) View() string {
	if m.Width == 0 {
		return "Loading..."
	}
	if m.Width < MinTerminalWidth || m.Height < MinTerminalHeight {
		return fmt.Sprintf("Terminal too small (%dx%d). Need at least %dx%d.",
			m.Width, m.Height, MinTerminalWidth, MinTerminalHeight)
	}

	resultsWidth, detailWidth, height := m.paneSizes()
	spin := m.spinner.View()

	searchPane := m.searchForm.render(m.opts.Search, m.Focus == PaneSearch, m.opts.Search.Loading(), spin, m.err, m.Width-4)

	title := TitleStyle.Render("Results")
	if c, ok := m.opts.Results.Criteria(); ok {
		title += SubtitleStyle.Render(fmt.Sprintf("  %s · %s", c.ReservationDate, c.YachtType))
	}
	resultsPane := paneStyle(m.Focus == PaneResults, resultsWidth).
		Height(height - 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, m.resultsView.viewport.View()))

	detailPane := m.detailForm.render(m.opts.Detail, m.Focus == PaneDetail, spin, detailWidth, height)

	content := lipgloss.JoinVertical(lipgloss.Left,
		searchPane,
		lipgloss.JoinHorizontal(lipgloss.Top, resultsPane, detailPane),
	)
	return RenderApplicationContainer(content, m.statusLine(), m.help.View(m.keys), m.Width, m.Height)
}

func (m AppModel) statusLine() string {
	var parts []string
	if m.opts.Feed != nil {
		if m.opts.Feed.Connected() {
			parts = append(parts, StatusOnlineStyle.Render("● live"))
		} else {
			parts = append(parts, StatusOfflineStyle.Render("○ offline"))
		}
	}
	if r := m.opts.Refresher; r != nil && r.Enabled() {
		parts = append(parts, StatusOfflineStyle.Render(refreshStatus(r, time.Now())))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, joinSpaced(parts)...)
}

// refreshStatus summarises the schedule, the next run and the last outcome.
func refreshStatus(r *refresh.Refresher, now time.Time) string {
	text := fmt.Sprintf("↻ %s · next %s", r.Schedule(), r.Next(now).Format("15:04"))
	runs, lastErr, lastRun := r.Status()
	switch {
	case runs == 0:
	case lastErr != nil:
		text += " · last refresh failed"
	default:
		text += " · last " + lastRun.Format("15:04")
	}
	return text
}

func joinSpaced(parts []string) []string {
	out := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			out = append(out, "  ")
		}
		out = append(out, p)
	}
	return out
}

// errorText is the user-facing form of a search or refresh failure.
func errorText(err error) string {
	return backend.ShortMessage(err)
}

// Run starts the TUI together with the live feed and the refresh schedule.
// It returns when the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(
		NewAppModel(ctx, opts),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	bridge := NewBridge(opts.Bus, p.Send)
	defer bridge.Close()

	if opts.Refresher != nil {
		opts.Refresher.OnRefresh = func(err error) {
			go p.Send(refreshMsg{err: err})
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	if opts.Feed != nil {
		g.Go(func() error {
			return ignoreCanceled(opts.Feed.Run(gctx))
		})
	}
	if opts.Refresher != nil && opts.Refresher.Enabled() {
		g.Go(func() error {
			return ignoreCanceled(opts.Refresher.Start(gctx))
		})
	}

	g.Go(func() error {
		defer cancel()
		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("tui failed: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}
