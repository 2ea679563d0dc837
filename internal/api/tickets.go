package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xraph/skydesk"
	"github.com/xraph/skydesk/internal/middleware"
	"github.com/xraph/skydesk/ticket"
)

type openTicketRequest struct {
	Category  string `json:"category"`
	Title     string `json:"title"`
	ChannelID int64  `json:"channel_id,string"`
}

type closeTicketRequest struct {
	ChannelID  int64  `json:"channel_id,string"`
	Transcript string `json:"transcript"`
}

// OpenTicket handles POST /tickets. The authenticated actor opens it.
func (h *Handler) OpenTicket(c echo.Context) error {
	var req openTicketRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "open_ticket", err)
	}

	t, err := h.desk.OpenTicket(c.Request().Context(), skydesk.TicketRequest{
		Category:  ticket.Category(req.Category),
		Title:     req.Title,
		OpenedBy:  middleware.ActorID(c),
		ChannelID: req.ChannelID,
	})
	if err != nil {
		return h.fail(c, "open_ticket", err, "category", req.Category, "channel_id", req.ChannelID)
	}
	return c.JSON(http.StatusCreated, t)
}

// CloseTicket handles POST /tickets/close.
func (h *Handler) CloseTicket(c echo.Context) error {
	var req closeTicketRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "close_ticket", err)
	}

	t, err := h.desk.CloseTicket(c.Request().Context(), req.ChannelID, middleware.ActorID(c), req.Transcript)
	if err != nil {
		return h.fail(c, "close_ticket", err, "channel_id", req.ChannelID)
	}
	return c.JSON(http.StatusOK, t)
}
