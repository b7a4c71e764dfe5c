// Package backend provides an HTTP client for the yacht reservation service.
//
// The client covers the calls the panels need: the availability query, the
// reservation-creation call and the yacht type listing, plus a health check
// used by the CLI. All business rules (availability, duplicate detection,
// persistence) live on the server.
//
// # Endpoints
//
//	GET  /api/yachts/availability?reservationDate=&yachtType=&minimumCapacity=
//	POST /api/reservations        -> {"confirmation": "..."}
//	GET  /api/yacht-types         -> [{"name": "..."}]
//	GET  /api/health
//
// Failed requests carry {"message": "..."}; a message containing
// DUPLICATE_VALUE means the yacht is already booked for the date.
//
// # Retries
//
// GET requests are retried with exponential backoff on network errors and
// 5xx responses. Reservation creation is sent exactly once with an
// Idempotency-Key header.
//
// # Errors
//
// Every failure is an *Error. Use IsDuplicate, IsNetworkError and
// IsRetryable to branch, and ShortMessage / TroubleshootingHints to present
// it:
//
//	client := backend.NewClient("http://localhost:8080")
//	records, err := client.Availability(ctx, yacht.NewCriteria("2030-06-01"))
//	if err != nil {
//	    fmt.Println(backend.ShortMessage(err))
//	    return err
//	}
package backend
