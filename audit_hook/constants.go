package audithook

// Action constants for audit events.
const (
	// Points actions
	ActionPointsCredited = "points.credited"
	ActionPointsDebited  = "points.debited"
	ActionPointsReset    = "points.reset"

	// Booking actions
	ActionReservationCreated = "reservation.created"
	ActionReservationFailed  = "reservation.failed"

	// Schedule actions
	ActionFlightAdded       = "flight.added"
	ActionFlightRemoved     = "flight.removed"
	ActionFlightDeparted    = "flight.departed"
	ActionInventoryReloaded = "inventory.reloaded"

	// Support actions
	ActionTicketOpened = "ticket.opened"
	ActionTicketClosed = "ticket.closed"

	// Announcement actions
	ActionAnnouncementCreated = "announcement.created"
	ActionAnnouncementUpdated = "announcement.updated"
)

// Resource constants for audit events.
const (
	ResourceAccount      = "account"
	ResourceReservation  = "reservation"
	ResourceFlight       = "flight"
	ResourceInventory    = "inventory"
	ResourceTicket       = "ticket"
	ResourceAnnouncement = "announcement"
)

// Category constants for audit events.
const (
	CategoryLoyalty    = "loyalty"
	CategoryBooking    = "booking"
	CategorySchedule   = "schedule"
	CategorySupport    = "support"
	CategoryOperations = "operations"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
