package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xraph/skydesk"
	"github.com/xraph/skydesk/internal/middleware"
)

// notice is the fixed, user-facing text for an engine error.
type notice struct {
	status  int
	message string
}

var notices = []struct {
	target error
	notice
}{
	{skydesk.ErrInvalidAmount, notice{http.StatusBadRequest, "amount must be a positive whole number"}},
	{skydesk.ErrAccountNotFound, notice{http.StatusNotFound, "no points on record for that member"}},
	{skydesk.ErrFlightNotFound, notice{http.StatusNotFound, "flight not found, check the schedule and try again"}},
	{skydesk.ErrReservationNotFound, notice{http.StatusNotFound, "booking not found"}},
	{skydesk.ErrFlightFull, notice{http.StatusConflict, "this flight is fully booked"}},
	{skydesk.ErrDuplicateCode, notice{http.StatusConflict, "booking code collision, please try again"}},
	{skydesk.ErrCodeGenerationExhausted, notice{http.StatusConflict, "could not issue a booking code, please try again"}},
	{skydesk.ErrTicketNotFound, notice{http.StatusNotFound, "no ticket in this channel"}},
	{skydesk.ErrTicketClosed, notice{http.StatusConflict, "ticket is already closed"}},
	{skydesk.ErrTicketExists, notice{http.StatusConflict, "a ticket is already open in this channel"}},
	{skydesk.ErrAnnouncementNotFound, notice{http.StatusNotFound, "announcement not found"}},
	{skydesk.ErrAnnouncementExists, notice{http.StatusConflict, "announcement already recorded"}},
}

var unavailable = notice{http.StatusServiceUnavailable, "something went wrong, please try again later"}

// classify maps err to its notice. Validation failures name the field.
func classify(err error) notice {
	var ve skydesk.ValidationError
	if errors.As(err, &ve) {
		return notice{http.StatusBadRequest, "invalid " + ve.Field}
	}
	for _, n := range notices {
		if errors.Is(err, n.target) {
			return n.notice
		}
	}
	return unavailable
}

// fail logs err with the operation, the actor and kv, then replies with
// the fixed notice for err.
func (h *Handler) fail(c echo.Context, op string, err error, kv ...any) error {
	n := classify(err)

	attrs := append([]any{"op", op, "actor", middleware.ActorID(c), "error", err}, kv...)
	if n.status >= http.StatusInternalServerError {
		h.logger.Error("command failed", attrs...)
	} else {
		h.logger.Warn("command rejected", attrs...)
	}
	return c.JSON(n.status, echo.Map{"error": n.message})
}

// badRequest replies to a request that could not be decoded.
func (h *Handler) badRequest(c echo.Context, op string, err error) error {
	h.logger.Warn("malformed request", "op", op, "actor", middleware.ActorID(c), "error", err)
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
}
