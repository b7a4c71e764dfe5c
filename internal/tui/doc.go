// Package tui implements the full-screen terminal interface for charterdesk.
//
// The screen is split into three panes that mirror the reservation widgets
// in internal/panel:
//   - Search: date, yacht type and party size inputs with a Search button
//   - Results: a scrolling grid of yacht tiles, paged in as the user scrolls
//   - Detail: the selected yacht and the reservation form
//
// The panes never talk to each other directly. Selecting a tile publishes a
// SelectionEvent on the bus and a confirmed reservation publishes a
// ReservationResultEvent; the panels react to those, and a Bridge forwards
// them to the running program so the view is redrawn.
//
// # Framework Components
//
//   - bubbles/textinput: search and guest fields
//   - bubbles/viewport: the results grid
//   - bubbles/spinner: search and reservation progress
//   - bubbles/help: key hints in the footer
//   - lipgloss: styling and layout
//
// # Usage Example
//
//	err := tui.Run(ctx, tui.Options{
//	    Bus:     b,
//	    Search:  search,
//	    Results: results,
//	    Detail:  detail,
//	})
//
// Run also drives the optional live feed listener and refresh schedule and
// stops them when the user quits.
package tui
