package api

import (
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/vitaminpack/internal/gate"
	"github.com/terraincognita07/vitaminpack/internal/services"
	"go.uber.org/zap"
)

// MagicLink mails a one-time sign-in link. The response is the same whether
// or not the address has an account.
func (handler *Handler) MagicLink(c *fiber.Ctx) error {
	input := magicLinkInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	user, err := handler.authService.FindByEmail(c.UserContext(), input.Email)
	switch {
	case errors.Is(err, services.ErrAuthCredentialsInvalid):
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	case errors.Is(err, services.ErrUserNotFound):
		return magicLinkAccepted(c)
	case err != nil:
		handler.logger.Error("magic link lookup failed", zap.Error(err))
		return apiError(c, fiber.StatusInternalServerError, "failed to create link")
	}

	code, err := handler.sessions.IssueCallbackCode(c.UserContext(), user.ID)
	if err != nil {
		handler.logger.Error("issue callback code failed", zap.Uint("user_id", user.ID), zap.Error(err))
		return apiError(c, fiber.StatusInternalServerError, "failed to create link")
	}
	link := handler.publicURL + gate.AuthCallbackPath + "?code=" + url.QueryEscape(code)
	if err := handler.magicLinks.SendMagicLink(c.UserContext(), user.Email, link); err != nil {
		handler.logger.Error("magic link delivery failed", zap.Uint("user_id", user.ID), zap.Error(err))
	}
	return magicLinkAccepted(c)
}

func magicLinkAccepted(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) AuthCallback(c *fiber.Ctx) error {
	userID, err := handler.sessions.ExchangeCallbackCode(c.UserContext(), c.Query("code"))
	if err == nil {
		_, err = handler.authService.FindByID(c.UserContext(), userID)
	}
	if err != nil {
		handler.setFlashCookie(c, FlashPayload{AuthError: "sign-in link is invalid or expired"})
		return c.Redirect(gate.LoginPath, fiber.StatusSeeOther)
	}

	if err := handler.startSession(c, userID); err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("failed to create session")
	}
	return c.Redirect(sanitizeRedirectPath(c.Query("next"), gate.DashboardPath), fiber.StatusSeeOther)
}
