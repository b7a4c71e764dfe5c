// Package yacht defines the value types exchanged between the charter
// backend and the charterdesk panels.
//
// Records are treated as immutable values. Code that needs a changed record
// builds a new one (see [Record.WithAvailability]) instead of mutating the
// copy it was handed, so the result list's master collection is only ever
// changed by replacement.
//
// # Ordering
//
// Search results are presented available-first. [SortAvailableFirst] is a
// stable partition: relative order inside the available and unavailable
// groups is the order the backend returned.
//
// # Dates
//
// Reservation dates travel as normalized YYYY-MM-DD strings. For that format
// lexicographic order coincides with chronological order, which is what
// [IsPastDate] relies on.
package yacht
