package exporter

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/maplelane/questrade-go/questrade"
)

// AccountService is the slice of the questrade client the HTTP handlers need.
type AccountService interface {
	AccountSource
	Session() (questrade.Session, bool)
}

// Handler serves the exporter's read-only HTTP API.
type Handler struct {
	logger  *zap.Logger
	service AccountService
}

// NewHandler creates a new Handler.
func NewHandler(logger *zap.Logger, service AccountService) *Handler {
	return &Handler{logger: logger, service: service}
}

// Health reports whether the exporter holds an authenticated session.
// An expired session is still healthy: the next upstream call refreshes it.
func (h *Handler) Health(c *fiber.Ctx) error {
	if _, ok := h.service.Session(); !ok {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "degraded",
			"checks": fiber.Map{"session": "not authenticated"},
		})
	}
	return c.JSON(fiber.Map{
		"status": "ok",
		"checks": fiber.Map{"session": "ok"},
	})
}

// ListAccounts proxies the account list of the authenticated user.
func (h *Handler) ListAccounts(c *fiber.Ctx) error {
	accounts, err := h.service.Accounts(c.Context())
	if err != nil {
		h.logger.Error("questrade.list_accounts_failed", zap.Error(err))
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"accounts": accounts})
}

// AccountBalances proxies the balance sets for one account.
func (h *Handler) AccountBalances(c *fiber.Ctx) error {
	number := c.Params("number")

	balances, err := h.service.AccountBalances(c.Context(), number)
	if err != nil {
		h.logger.Error("questrade.account_balances_failed",
			zap.String("account", number),
			zap.Error(err))
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(balances)
}

// statusFor maps upstream client errors onto the exporter's own responses.
func statusFor(err error) int {
	switch {
	case questrade.IsNotFound(err):
		return fiber.StatusNotFound
	case questrade.IsUnauthorized(err), questrade.IsAuthError(err):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusBadGateway
	}
}
