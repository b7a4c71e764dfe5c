package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/charterdesk/charterdesk/internal/panel"
	"github.com/charterdesk/charterdesk/internal/ui"
)

// resultsView renders the visible tiles of a ResultList as a grid inside a
// scrolling viewport.
type resultsView struct {
	viewport viewport.Model
	cursor   int
	cols     int
	count    int
}

func newResultsView() resultsView {
	return resultsView{viewport: viewport.New(0, 0), cols: 1}
}

func (v *resultsView) setSize(width, height int) {
	v.viewport.Width = max(width, 0)
	v.viewport.Height = max(height, 1)
	v.cols = max(1, width/TileWidth)
}

// reset moves the cursor and scroll position back to the top.
func (v *resultsView) reset() {
	v.cursor = 0
	v.viewport.SetYOffset(0)
}

// sync re-renders the grid from the list.
func (v *resultsView) sync(l *panel.ResultList) {
	tiles := l.Tiles()
	v.count = len(tiles)
	if v.cursor >= v.count {
		v.cursor = max(0, v.count-1)
	}
	v.viewport.SetContent(renderTileGrid(tiles, v.cursor, v.cols, l.HasMore(), l.Empty()))
	v.ensureCursorVisible()
}

// move shifts the cursor by delta tiles, clamped to the visible range.
func (v *resultsView) move(delta int) {
	if v.count == 0 {
		return
	}
	v.cursor = min(max(v.cursor+delta, 0), v.count-1)
}

func (v *resultsView) ensureCursorVisible() {
	top := (v.cursor / v.cols) * TileHeight
	bottom := top + TileHeight
	switch {
	case top < v.viewport.YOffset:
		v.viewport.SetYOffset(top)
	case bottom > v.viewport.YOffset+v.viewport.Height:
		v.viewport.SetYOffset(bottom - v.viewport.Height)
	}
}

// scroll moves the viewport by lines without touching the cursor.
func (v *resultsView) scroll(lines int) {
	v.viewport.SetYOffset(v.viewport.YOffset + lines)
}

// remaining is the number of content lines below the viewport.
func (v *resultsView) remaining() int {
	return max(v.viewport.TotalLineCount()-v.viewport.YOffset-v.viewport.Height, 0)
}

func renderTileGrid(tiles []*panel.Tile, cursor, cols int, hasMore, empty bool) string {
	if empty {
		return SubtitleStyle.Render("No yachts match these criteria.")
	}
	if len(tiles) == 0 {
		return SubtitleStyle.Render("Run a search to see available yachts.")
	}

	var rows []string
	for start := 0; start < len(tiles); start += cols {
		end := min(start+cols, len(tiles))
		cells := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			cells = append(cells, renderTile(tiles[i], i == cursor))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	footer := SubtitleStyle.Render(fmt.Sprintf("%d shown, scroll for more", len(tiles)))
	if !hasMore {
		footer = SubtitleStyle.Render(fmt.Sprintf("%d yachts", len(tiles)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, append(rows, footer)...)
}

func renderTile(t *panel.Tile, atCursor bool) string {
	r := t.Record()

	status := AvailableStyle.Render(ui.AvailableMarker + " Available")
	if !t.Available() {
		status = UnavailableStyle.Render(ui.UnavailableMarker + " Booked")
	}

	content := strings.Join([]string{
		TileNameStyle.Render(truncate(r.Name, TileWidth-4)),
		truncate(fmt.Sprintf("%s · %d guests", r.Type, r.Capacity), TileWidth-4),
		fmt.Sprintf("%.1f m · %s", r.Length, ui.FormatPrice(r.Price)),
		status,
	}, "\n")

	style := TileStyle
	switch {
	case atCursor:
		style = TileCursorStyle
	case t.StyleClass() == panel.TileDisabledClass:
		style = TileDisabledStyle
	case t.Selected():
		style = TileSelectedStyle
	}
	return style.Render(content)
}

func truncate(s string, n int) string {
	if lipgloss.Width(s) <= n {
		return s
	}
	runes := []rune(s)
	if n <= 1 || len(runes) <= n {
		return string(runes[:min(n, len(runes))])
	}
	return string(runes[:n-1]) + "…"
}
