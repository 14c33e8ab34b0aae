package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/vitaminpack/internal/fulfillment"
	"github.com/terraincognita07/vitaminpack/internal/gate"
	"github.com/terraincognita07/vitaminpack/internal/models"
	"go.uber.org/zap"
)

func (handler *Handler) ShowHome(c *fiber.Ctx) error {
	return handler.render(c, "home", fiber.Map{
		"Title": "VitaminPack | Personal vitamin packs",
	})
}

func (handler *Handler) ShowLoginPage(c *fiber.Ctx) error {
	return handler.render(c, "login", fiber.Map{
		"Title": "VitaminPack | Log in",
		"Flash": handler.popFlashCookie(c),
		"Next":  sanitizeRedirectPath(c.Query("next"), ""),
	})
}

func (handler *Handler) ShowSignupPage(c *fiber.Ctx) error {
	return handler.render(c, "signup", fiber.Map{
		"Title": "VitaminPack | Sign up",
		"Flash": handler.popFlashCookie(c),
	})
}

func (handler *Handler) ShowOnboarding(c *fiber.Ctx) error {
	return handler.render(c, "onboarding", fiber.Map{
		"Title":       "VitaminPack | Your profile",
		"Flash":       handler.popFlashCookie(c),
		"HealthGoals": models.HealthGoals,
		"Diets":       models.DietaryPreferences,
	})
}

// ShowDashboard degrades to the incomplete-profile banner when the profile
// cannot be loaded; the gate has already let the request through.
func (handler *Handler) ShowDashboard(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Redirect(gate.LoginPath, fiber.StatusSeeOther)
	}

	profile, found, err := handler.profiles.LoadProfile(c.UserContext(), userID)
	if err != nil {
		handler.logger.Warn("dashboard profile load failed", zap.Uint("user_id", userID), zap.Error(err))
	}

	data := fiber.Map{
		"Title":             "VitaminPack | Dashboard",
		"ProfileIncomplete": err != nil || !found,
	}
	if found {
		data["Profile"] = profile
	}
	return handler.render(c, "dashboard", data)
}

func (handler *Handler) ShowTestPack(c *fiber.Ctx) error {
	return handler.render(c, "test_pack", fiber.Map{
		"Title":       "VitaminPack | Pack builder check",
		"Supplements": fulfillment.DefaultSupplements(),
	})
}
