// Package skydesk is the operations core of a virtual airline community:
// a points ledger, flight reservations, the bookable flight inventory,
// support tickets and boarding announcements.
//
// Skydesk is a library. Commands arrive from a chat front end, an HTTP API
// or a scheduler and all funnel into one Desk, which serializes writes per
// record family and commits every mutation before returning.
//
// # Quick Start
//
//	import (
//	    "github.com/xraph/skydesk"
//	    "github.com/xraph/skydesk/store/sqlite"
//	)
//
//	s, err := sqlite.Open("skydesk.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	desk := skydesk.New(s)
//	if err := desk.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer desk.Stop()
//
// # Points
//
// Credit awards points and counts a completed flight; Debit deducts points
// but never takes a balance below zero:
//
//	acct, err := desk.Credit(ctx, userID, 250)
//	acct, err = desk.Debit(ctx, userID, 1000) // balance is now 0
//
// # Reservations
//
// Booking reads the flight from the in-process inventory and stores an
// insert-only reservation under a fresh "BK" code:
//
//	r, err := desk.Book(ctx, skydesk.BookingRequest{
//	    FlightCode:   "SD101",
//	    Cabin:        reservation.CabinBusiness,
//	    HolderKind:   reservation.HolderSelf,
//	    HolderHandle: "captain_kim",
//	    BookedBy:     userID,
//	})
//
// A code collision at insert time is reported as ErrDuplicateCode, which
// IsRetryable accepts; the caller decides whether to book again.
//
// # Storage
//
// Backends live under store/: memory, sqlite (modernc, 30s busy timeout),
// postgres (pgx) and mongo. All of them implement store.Store.
//
// # TypeID
//
// Tickets, announcements and audit events use TypeIDs:
//
//	tkt_01h2xcejqtf2nbrexx3vqjhp41  // Ticket ID
//	ann_01h455vb4pex5vsknk084sn02q  // Announcement ID
package skydesk
