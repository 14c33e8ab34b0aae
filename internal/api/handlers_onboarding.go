package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/vitaminpack/internal/gate"
	"github.com/terraincognita07/vitaminpack/internal/services"
	"go.uber.org/zap"
)

func (handler *Handler) CompleteOnboarding(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	input, err := parseOnboardingInput(c)
	if err != nil {
		return handler.respondOnboardingError(c, fiber.StatusBadRequest, "invalid input")
	}

	if _, err := handler.profiles.CompleteOnboarding(c.UserContext(), userID, input); err != nil {
		if errors.Is(err, services.ErrInvalidOnboarding) {
			return handler.respondOnboardingError(c, fiber.StatusBadRequest, err.Error())
		}
		handler.logger.Error("save profile failed", zap.Uint("user_id", userID), zap.Error(err))
		return apiError(c, fiber.StatusInternalServerError, "failed to save profile")
	}

	handler.setOnboardingMarker(c)
	return redirectOrJSON(c, gate.DashboardPath)
}

// setOnboardingMarker covers the window where the profile store has not yet
// caught up with the write; the gate honours it once and deletes it.
func (handler *Handler) setOnboardingMarker(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     gate.OnboardingCompletedCookie,
		Value:    "true",
		Path:     "/",
		Expires:  time.Now().Add(onboardingMarkerTTL),
		HTTPOnly: false,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
	})
}

func (handler *Handler) respondOnboardingError(c *fiber.Ctx, status int, message string) error {
	if acceptsJSON(c) || isHTMX(c) {
		return apiError(c, status, message)
	}
	handler.setFlashCookie(c, FlashPayload{OnboardingError: message})
	return c.Redirect(gate.OnboardingPath, fiber.StatusSeeOther)
}
