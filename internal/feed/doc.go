// Package feed subscribes to the backend's live reservation stream.
//
// The backend pushes one JSON message per booking over a websocket at
// /api/reservations/stream:
//
//	{"type": "reservation.created", "yachtId": "a0B5g00000XyZ"}
//
// Each reservation.created message is republished on
// panel.ReservationResultTopic, so result lists mark yachts booked by other
// clients as unavailable. Other message types are ignored.
package feed
