// Package panel implements the reservation view controllers.
//
// Four controllers cooperate without sharing state:
//
//   - SearchPanel collects criteria, validates them and calls ResultList.Fetch.
//   - ResultList holds the authoritative results, pages them into the visible
//     collection PageSize records at a time and reconciles reservation results.
//   - Tile renders one record and reports selection to its container.
//   - DetailPanel shows the selected yacht and submits reservations.
//
// Cross-panel updates travel over a bus.Bus on two topics:
//
//	Tile.Select -> ResultList.OnTileSelected -> SelectionTopic -> DetailPanel
//	DetailPanel.Submit -> ReservationResultTopic -> ResultList.OnReservationResult
//
// Controllers are independent of any renderer. Remote calls run without
// holding the controller lock, so a Bubble Tea command can call them from a
// goroutine while View reads snapshots.
package panel
