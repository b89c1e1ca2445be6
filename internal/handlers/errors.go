package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/services"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
)

var kindStatus = map[services.Kind]int{
	services.KindNotAuthenticated: fiber.StatusUnauthorized,
	services.KindForbidden:        fiber.StatusForbidden,
	services.KindNotFound:         fiber.StatusNotFound,
	services.KindConflict:         fiber.StatusConflict,
	services.KindInvalidState:     fiber.StatusConflict,
	services.KindValidation:       fiber.StatusBadRequest,
}

// ErrorHandler is the app-wide fiber error handler. Service errors carry
// their kind and reason; anything else above 499 is reported and hidden.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		if code, ok := kindStatus[svcErr.Kind]; ok {
			return c.Status(code).JSON(dto.ErrorResponse{
				Error:   true,
				Kind:    svcErr.Kind.String(),
				Message: svcErr.Reason,
			})
		}
	}

	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "trace_id", requestID(c), "error", err.Error())
		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
		message = "Internal server error"
	}

	return c.Status(code).JSON(dto.ErrorResponse{
		Error:   true,
		Message: message,
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Kind: services.KindValidation.String(), Message: message,
	})
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return c.GetRespHeader(fiber.HeaderXRequestID)
}
