package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type resumesHandler struct {
	runner Runner
	logger *zap.Logger
}

// handleGetResumes serves GET /api/v1/resumes?position=<query>. An empty
// result is a valid answer and comes back as an empty JSON array, not an
// error status.
func (h *resumesHandler) handleGetResumes(c *fiber.Ctx) error {
	position := strings.TrimSpace(c.Query("position"))
	if position == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "position query parameter is required",
		})
	}

	h.logger.Info("resumes requested", zap.String("position", position))

	result := h.runner.Run(c.UserContext(), position)

	return c.JSON(result.Items)
}
