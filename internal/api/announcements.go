package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/xraph/skydesk/announcement"
	"github.com/xraph/skydesk/internal/middleware"
)

type announceRequest struct {
	MessageID         int64  `json:"message_id,string"`
	ChannelID         int64  `json:"channel_id,string"`
	FlightNumber      string `json:"flight_number"`
	DepartureAirport  string `json:"departure_airport"`
	DepartureTime     string `json:"departure_time"`
	DepartureGate     string `json:"departure_gate"`
	DepartureTerminal string `json:"departure_terminal"`
	ArrivalAirport    string `json:"arrival_airport"`
	ArrivalTime       string `json:"arrival_time"`
	ArrivalGate       string `json:"arrival_gate"`
	Date              string `json:"date"`
	MealService       string `json:"meal_service"`
	Host              string `json:"host"`
	Alerts            string `json:"alerts"`
	ServerLink        string `json:"server_link"`
}

type updateAnnouncementRequest struct {
	Status     string `json:"status"`
	ServerLink string `json:"server_link"`
}

// Announce handles POST /announcements.
func (h *Handler) Announce(c echo.Context) error {
	var req announceRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "announce", err)
	}

	a := &announcement.Announcement{
		MessageID:         req.MessageID,
		ChannelID:         req.ChannelID,
		FlightNumber:      req.FlightNumber,
		DepartureAirport:  req.DepartureAirport,
		DepartureTime:     req.DepartureTime,
		DepartureGate:     req.DepartureGate,
		DepartureTerminal: req.DepartureTerminal,
		ArrivalAirport:    req.ArrivalAirport,
		ArrivalTime:       req.ArrivalTime,
		ArrivalGate:       req.ArrivalGate,
		Date:              req.Date,
		MealService:       req.MealService,
		Host:              req.Host,
		Alerts:            req.Alerts,
		ServerLink:        req.ServerLink,
		PostedBy:          middleware.ActorID(c),
	}
	if err := h.desk.Announce(c.Request().Context(), a); err != nil {
		return h.fail(c, "announce", err, "flight", req.FlightNumber, "message_id", req.MessageID)
	}
	return c.JSON(http.StatusCreated, a)
}

// UpdateAnnouncement handles PATCH /announcements/:message_id.
func (h *Handler) UpdateAnnouncement(c echo.Context) error {
	messageID, err := strconv.ParseInt(c.Param("message_id"), 10, 64)
	if err != nil {
		return h.badRequest(c, "update_announcement", err)
	}
	var req updateAnnouncementRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "update_announcement", err)
	}

	a, err := h.desk.UpdateAnnouncement(c.Request().Context(), messageID, req.Status, req.ServerLink)
	if err != nil {
		return h.fail(c, "update_announcement", err, "message_id", messageID)
	}
	return c.JSON(http.StatusOK, a)
}
