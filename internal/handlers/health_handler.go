package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/oceanwatch/marinewatch/internal/classifier"
	"github.com/oceanwatch/marinewatch/internal/database"
	"github.com/oceanwatch/marinewatch/internal/dto"
)

type HealthHandler struct {
	predictor *classifier.Client
}

func NewHealthHandler(predictor *classifier.Client) *HealthHandler {
	return &HealthHandler{predictor: predictor}
}

// Check reports liveness of the database and the classifier service. The
// server stays "ok" with a degraded classifier; only a dead database flips
// the overall status.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	resp := dto.HealthResponse{
		Status:     "ok",
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		DB:         "up",
		Classifier: "up",
	}

	if err := database.Ping(); err != nil {
		resp.Status = "degraded"
		resp.DB = "down"
	}

	probeCtx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
	defer cancel()
	if err := h.predictor.Health(probeCtx); err != nil {
		resp.Classifier = "down"
	}

	code := fiber.StatusOK
	if resp.DB == "down" {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(resp)
}
