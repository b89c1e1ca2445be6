package handlers

import (
	"context"
	"time"

	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

// Probe reports the health of an optional dependency such as Redis.
type Probe func(ctx context.Context) error

type HealthHandler struct {
	probes map[string]Probe
}

func NewHealthHandler(probes map[string]Probe) *HealthHandler {
	return &HealthHandler{probes: probes}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	if err := database.Ping(); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	var deps map[string]string
	if len(h.probes) > 0 {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		deps = make(map[string]string, len(h.probes))
		for name, probe := range h.probes {
			deps[name] = "ok"
			if err := probe(ctx); err != nil {
				deps[name] = "unhealthy: " + err.Error()
			}
		}
	}

	return c.JSON(dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
		Deps:      deps,
	})
}
