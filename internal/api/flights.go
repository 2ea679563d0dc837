package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xraph/skydesk/flight"
)

type flightRequest struct {
	Code          string `json:"code"`
	Route         string `json:"route"`
	Aircraft      string `json:"aircraft"`
	DepartureTime string `json:"departure_time"`
	DepartureDate string `json:"departure_date"`
}

type boardEntryResponse struct {
	flight.Flight
	Status    flight.Status `json:"status"`
	Occupancy string        `json:"occupancy"`
}

// ListFlights handles GET /flights. It reads the inventory cache.
func (h *Handler) ListFlights(c echo.Context) error {
	return c.JSON(http.StatusOK, h.desk.Flights())
}

// AddFlight handles POST /flights.
func (h *Handler) AddFlight(c echo.Context) error {
	var req flightRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "add_flight", err)
	}

	f := &flight.Flight{
		Code:          req.Code,
		Route:         req.Route,
		Aircraft:      req.Aircraft,
		DepartureTime: req.DepartureTime,
		DepartureDate: req.DepartureDate,
	}
	if err := h.desk.AddFlight(c.Request().Context(), f); err != nil {
		return h.fail(c, "add_flight", err, "flight", req.Code)
	}
	return c.JSON(http.StatusCreated, f)
}

// RemoveFlight handles DELETE /flights/:code.
func (h *Handler) RemoveFlight(c echo.Context) error {
	code := c.Param("code")
	if err := h.desk.RemoveFlight(c.Request().Context(), code); err != nil {
		return h.fail(c, "remove_flight", err, "flight", code)
	}
	return c.NoContent(http.StatusNoContent)
}

// Board handles GET /board.
func (h *Handler) Board(c echo.Context) error {
	entries, err := h.desk.Board(c.Request().Context())
	if err != nil {
		return h.fail(c, "board", err)
	}
	out := make([]boardEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = boardEntryResponse{Flight: e.Flight, Status: e.Status, Occupancy: e.Occupancy()}
	}
	return c.JSON(http.StatusOK, out)
}
