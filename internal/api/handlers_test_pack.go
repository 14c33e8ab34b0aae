package api

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/vitaminpack/internal/fulfillment"
	"go.uber.org/zap"
)

// CreateTestPack forwards a pack to the fulfillment API and reports the
// upstream envelope unchanged, whatever its outcome.
func (handler *Handler) CreateTestPack(c *fiber.Ctx) error {
	if !handler.fulfillment.Configured() {
		return apiError(c, fiber.StatusServiceUnavailable, fulfillment.ErrNotConfigured.Error())
	}

	request, err := parseTestPackInput(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	envelope, err := handler.fulfillment.CreateCustomPack(c.UserContext(), request)
	switch {
	case errors.Is(err, fulfillment.ErrEmptyPack), errors.Is(err, fulfillment.ErrInvalidSupplement):
		return apiError(c, fiber.StatusBadRequest, err.Error())
	case err != nil:
		handler.logger.Warn("fulfillment request failed", zap.Error(err))
		return apiError(c, fiber.StatusBadGateway, "fulfillment api unreachable")
	}

	if acceptsJSON(c) {
		return c.JSON(fiber.Map{"request": request, "response": envelope})
	}

	pretty, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to format response")
	}
	return handler.render(c, "test_pack", fiber.Map{
		"Title":       "VitaminPack | Pack builder check",
		"Supplements": request.Supplements,
		"Result":      string(pretty),
	})
}
