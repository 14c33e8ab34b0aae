package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/vitaminpack/internal/gate"
	"github.com/terraincognita07/vitaminpack/internal/services"
	"go.uber.org/zap"
)

func (handler *Handler) Signup(c *fiber.Ctx) error {
	credentials, err := parseCredentials(c)
	if err != nil {
		return handler.respondAuthError(c, fiber.StatusBadRequest, "invalid input")
	}

	user, err := handler.authService.Register(c.UserContext(), credentials.Email, credentials.Password)
	switch {
	case errors.Is(err, services.ErrEmailExists):
		return handler.respondAuthError(c, fiber.StatusConflict, "email already exists")
	case errors.Is(err, services.ErrWeakPassword):
		return handler.respondAuthError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrAuthCredentialsInvalid):
		return handler.respondAuthError(c, fiber.StatusBadRequest, "invalid input")
	case err != nil:
		handler.logger.Error("signup failed", zap.Error(err))
		return apiError(c, fiber.StatusInternalServerError, "failed to create account")
	}

	if err := handler.startSession(c, user.ID); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create session")
	}
	// The gate sends a user without a profile on to onboarding.
	return redirectOrJSON(c, gate.DashboardPath)
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	credentials, err := parseCredentials(c)
	if err != nil {
		return handler.respondAuthError(c, fiber.StatusBadRequest, "invalid input")
	}

	user, err := handler.authService.Authenticate(c.UserContext(), credentials.Email, credentials.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		return handler.respondAuthError(c, fiber.StatusUnauthorized, "invalid credentials")
	}
	if err != nil {
		handler.logger.Error("login failed", zap.Error(err))
		return apiError(c, fiber.StatusInternalServerError, "failed to log in")
	}

	if err := handler.startSession(c, user.ID); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create session")
	}
	return redirectOrJSON(c, sanitizeRedirectPath(credentials.Next, gate.DashboardPath))
}

func (handler *Handler) Logout(c *fiber.Ctx) error {
	ops, err := handler.sessions.RevokeSession(c.UserContext(), requestCookieJar(c))
	if err != nil {
		handler.logger.Warn("refresh token revocation failed on logout", zap.Error(err))
	}
	applyCookieOps(c, ops)
	return redirectOrJSON(c, gate.HomePath)
}

func (handler *Handler) startSession(c *fiber.Ctx, userID uint) error {
	ops, err := handler.sessions.IssueSession(c.UserContext(), userID)
	if err != nil {
		handler.logger.Error("issue session failed", zap.Uint("user_id", userID), zap.Error(err))
		return err
	}
	applyCookieOps(c, ops)
	return nil
}

// respondAuthError sends plain form posts back to the page they came from
// with a flash message; JSON and HTMX callers get the error body.
func (handler *Handler) respondAuthError(c *fiber.Ctx, status int, message string) error {
	if acceptsJSON(c) || isHTMX(c) {
		return apiError(c, status, message)
	}

	handler.setFlashCookie(c, FlashPayload{
		AuthError:  message,
		LoginEmail: c.FormValue("email"),
	})
	if c.Path() == "/api/auth/signup" {
		return c.Redirect(gate.SignupPath, fiber.StatusSeeOther)
	}
	return c.Redirect(gate.LoginPath, fiber.StatusSeeOther)
}
