package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/vitaminpack/internal/gate"
)

func (handler *Handler) NotFound(c *fiber.Ctx) error {
	if strings.HasPrefix(c.Path(), gate.APIPrefix+"/") || acceptsJSON(c) {
		return apiError(c, fiber.StatusNotFound, "not found")
	}

	primaryPath, primaryLabel := gate.HomePath, "Back to the home page"
	if _, ok := currentUserID(c); ok {
		primaryPath, primaryLabel = gate.DashboardPath, "Go to your dashboard"
	}

	c.Status(fiber.StatusNotFound)
	return handler.render(c, "not_found", fiber.Map{
		"Title":        "VitaminPack | Page Not Found",
		"PrimaryPath":  primaryPath,
		"PrimaryLabel": primaryLabel,
	})
}
