package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xraph/skydesk"
	"github.com/xraph/skydesk/internal/middleware"
	"github.com/xraph/skydesk/reservation"
)

const maxBookingsListed = 25

type bookingRequest struct {
	FlightCode   string `json:"flight_code"`
	Cabin        string `json:"cabin"`
	HolderKind   string `json:"holder_kind"`
	HolderHandle string `json:"holder_handle"`
	// HolderID is only read for holder_kind "other".
	HolderID int64 `json:"holder_id,string,omitempty"`
}

// Book handles POST /bookings. The authenticated actor is the booker.
func (h *Handler) Book(c echo.Context) error {
	var req bookingRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "book", err)
	}

	kind, ok := reservation.ParseHolderKind(req.HolderKind)
	if !ok {
		kind = reservation.HolderKind(req.HolderKind)
	}

	r, err := h.desk.Book(c.Request().Context(), skydesk.BookingRequest{
		FlightCode:   req.FlightCode,
		Cabin:        reservation.Cabin(req.Cabin),
		HolderKind:   kind,
		HolderHandle: req.HolderHandle,
		HolderID:     req.HolderID,
		BookedBy:     middleware.ActorID(c),
	})
	if err != nil {
		return h.fail(c, "book", err, "flight", req.FlightCode, "cabin", req.Cabin)
	}
	return c.JSON(http.StatusCreated, r)
}

// GetBooking handles GET /bookings/:code. Only the booker, the named
// holder and staff can see a reservation; anyone else gets a not found.
func (h *Handler) GetBooking(c echo.Context) error {
	code := c.Param("code")
	r, err := h.desk.Reservation(c.Request().Context(), code)
	if err == nil && !canView(c, r) {
		err = skydesk.ErrReservationNotFound
	}
	if err != nil {
		return h.fail(c, "get_booking", err, "code", code)
	}
	return c.JSON(http.StatusOK, r)
}

func canView(c echo.Context, r *reservation.Reservation) bool {
	actor := middleware.ActorID(c)
	return actor == r.BookedBy || actor == r.HolderID || middleware.Role(c) == middleware.RoleStaff
}

// MyBookings handles GET /bookings?flight=CODE, listing the actor's own
// reservations.
func (h *Handler) MyBookings(c echo.Context) error {
	rs, err := h.desk.Reservations(c.Request().Context(), reservation.ListOpts{
		FlightCode: c.QueryParam("flight"),
		BookedBy:   middleware.ActorID(c),
		Limit:      maxBookingsListed,
	})
	if err != nil {
		return h.fail(c, "list_bookings", err)
	}
	return c.JSON(http.StatusOK, rs)
}
