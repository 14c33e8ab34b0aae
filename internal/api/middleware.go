package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/vitaminpack/internal/gate"
	"github.com/terraincognita07/vitaminpack/internal/services"
)

const (
	flashCookieName     = "vp_flash"
	contextUserIDKey    = "current_user_id"
	onboardingMarkerTTL = 10 * time.Minute
)

func currentUserID(c *fiber.Ctx) (uint, bool) {
	raw, ok := c.Locals(contextUserIDKey).(string)
	if !ok || raw == "" {
		return 0, false
	}
	userID, err := services.ParseUserID(raw)
	if err != nil {
		return 0, false
	}
	return userID, true
}

func requestCookieJar(c *fiber.Ctx) gate.CookieJar {
	jar := gate.CookieJar{}
	c.Request().Header.VisitAllCookie(func(key []byte, value []byte) {
		jar[string(key)] = string(value)
	})
	return jar
}

// applyCookieOps writes cookie mutations onto the response. A later op for
// the same name replaces an earlier one.
func applyCookieOps(c *fiber.Ctx, ops []gate.CookieOp) {
	for _, op := range ops {
		value := op.Value
		if op.Delete {
			value = ""
		}
		c.Cookie(&fiber.Cookie{
			Name:     op.Name,
			Value:    value,
			Path:     op.Path,
			Expires:  op.Expires,
			HTTPOnly: op.HTTPOnly,
			Secure:   op.Secure,
			SameSite: op.SameSite,
		})
	}
}
