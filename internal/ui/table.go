package ui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/charterdesk/charterdesk/internal/yacht"
)

var yachtColumns = []string{"", "ID", "Name", "Type", "Guests", "Length", "Price"}

// RenderTable renders rows under headers. disabled reports rows drawn muted.
func RenderTable(headers []string, rows [][]string, width int, disabled func(row int) bool) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(PrimaryColor)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return TableHeaderStyle
			case disabled != nil && disabled(row):
				return TableDisabledCellStyle
			default:
				return TableCellStyle
			}
		})
	if width > 0 {
		t = t.Width(width)
	}
	return t.String()
}

// YachtRow formats a record as a table row.
func YachtRow(r yacht.Record) []string {
	marker := AvailableMarker
	if !r.Available {
		marker = UnavailableMarker
	}
	return []string{
		marker,
		r.ID,
		r.Name,
		r.Type,
		strconv.Itoa(r.Capacity),
		fmt.Sprintf("%.1f m", r.Length),
		FormatPrice(r.Price),
	}
}

// RenderYachtTable renders records in the given order. Unavailable yachts are muted.
func RenderYachtTable(records []yacht.Record, width int) string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, YachtRow(r))
	}
	return RenderTable(yachtColumns, rows, width, func(row int) bool {
		return row >= 0 && row < len(records) && !records[row].Available
	})
}

// FormatPrice renders a daily charter price.
func FormatPrice(price float64) string {
	if price == float64(int64(price)) {
		return fmt.Sprintf("$%d/day", int64(price))
	}
	return fmt.Sprintf("$%.2f/day", price)
}
