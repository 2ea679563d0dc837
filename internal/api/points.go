package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/xraph/skydesk/account"
	"github.com/xraph/skydesk/reservation"
)

// DefaultLeaderboardSize is used when n is not given.
const DefaultLeaderboardSize = 10

const maxLeaderboardSize = 100

type amountRequest struct {
	Amount int64 `json:"amount"`
}

type accountResponse struct {
	AccountID string `json:"account_id"`
	Balance   int64  `json:"balance"`
	Flights   int64  `json:"flights"`
}

func toAccountResponse(a *account.Account) accountResponse {
	return accountResponse{
		AccountID: strconv.FormatInt(a.ID, 10),
		Balance:   a.Balance,
		Flights:   a.Flights,
	}
}

// accountParam reads the :id path segment, which must be a platform user id.
func accountParam(c echo.Context) (int64, error) {
	raw := c.Param("id")
	accountID, ok := reservation.ParsePlatformID(raw)
	if !ok {
		return 0, fmt.Errorf("account id %q is not a platform user id", raw)
	}
	return accountID, nil
}

// Balance handles GET /points/:id.
func (h *Handler) Balance(c echo.Context) error {
	accountID, err := accountParam(c)
	if err != nil {
		return h.badRequest(c, "balance", err)
	}
	acct, err := h.desk.Balance(c.Request().Context(), accountID)
	if err != nil {
		return h.fail(c, "balance", err, "account_id", accountID)
	}
	return c.JSON(http.StatusOK, toAccountResponse(acct))
}

// Credit handles POST /points/:id/credit.
func (h *Handler) Credit(c echo.Context) error {
	accountID, err := accountParam(c)
	if err != nil {
		return h.badRequest(c, "credit", err)
	}
	var req amountRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "credit", err)
	}

	acct, err := h.desk.Credit(c.Request().Context(), accountID, req.Amount)
	if err != nil {
		return h.fail(c, "credit", err, "account_id", accountID, "amount", req.Amount)
	}
	return c.JSON(http.StatusOK, toAccountResponse(acct))
}

// Debit handles POST /points/:id/debit.
func (h *Handler) Debit(c echo.Context) error {
	accountID, err := accountParam(c)
	if err != nil {
		return h.badRequest(c, "debit", err)
	}
	var req amountRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "debit", err)
	}

	acct, err := h.desk.Debit(c.Request().Context(), accountID, req.Amount)
	if err != nil {
		return h.fail(c, "debit", err, "account_id", accountID, "amount", req.Amount)
	}
	return c.JSON(http.StatusOK, toAccountResponse(acct))
}

// Reset handles POST /points/:id/reset.
func (h *Handler) Reset(c echo.Context) error {
	accountID, err := accountParam(c)
	if err != nil {
		return h.badRequest(c, "reset", err)
	}
	acct, err := h.desk.Reset(c.Request().Context(), accountID)
	if err != nil {
		return h.fail(c, "reset", err, "account_id", accountID)
	}
	return c.JSON(http.StatusOK, toAccountResponse(acct))
}

// Leaderboard handles GET /points/leaderboard?n=10.
func (h *Handler) Leaderboard(c echo.Context) error {
	n := DefaultLeaderboardSize
	if raw := c.QueryParam("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			return h.badRequest(c, "leaderboard", err)
		}
		n = min(v, maxLeaderboardSize)
	}

	accts, err := h.desk.Leaderboard(c.Request().Context(), n)
	if err != nil {
		return h.fail(c, "leaderboard", err, "n", n)
	}
	out := make([]accountResponse, len(accts))
	for i, a := range accts {
		out[i] = toAccountResponse(a)
	}
	return c.JSON(http.StatusOK, out)
}
