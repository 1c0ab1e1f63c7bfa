package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/ttthanh1411/gym/internal/services"
)

const (
	codeInvalidBody     = "INVALID_REQUEST_BODY"
	codeInvalidID       = "INVALID_ID"
	codeInvalidInput    = "INVALID_INPUT"
	codeValidation      = "VALIDATION_FAILED"
	codeUnauthorized    = "UNAUTHORIZED"
	codeForbidden       = "FORBIDDEN"
	codeNotFound        = "NOT_FOUND"
	codeConflict        = "CONFLICT"
	codeInternal        = "INTERNAL_ERROR"
	codeInvalidStatus   = "INVALID_STATUS"
	codeInvalidTransit  = "INVALID_STATE_TRANSITION"
	codeStorageDisabled = "STORAGE_UNAVAILABLE"
)

var errMissingActor = errors.New("missing or malformed user id claim")

// jsonError writes the {error, code} envelope. The cause is logged and never
// sent to the client.
func jsonError(c *fiber.Ctx, status int, code, message string, cause error) error {
	if cause != nil {
		log.Printf("%s %s -> %d %s: %v", c.Method(), c.Path(), status, code, cause)
	}
	return c.Status(status).JSON(fiber.Map{"error": message, "code": code})
}

func invalidBody(c *fiber.Ctx) error {
	return jsonError(c, fiber.StatusBadRequest, codeInvalidBody, "Invalid request body", nil)
}

// mapServiceError covers the sentinels shared by every service.
func mapServiceError(c *fiber.Ctx, err error, notFoundMessage, failureMessage string) error {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return jsonError(c, fiber.StatusBadRequest, codeValidation, validationErr.Message, nil)
	case errors.Is(err, services.ErrInvalidInput):
		return jsonError(c, fiber.StatusBadRequest, codeInvalidInput, "Invalid request", nil)
	case errors.Is(err, services.ErrInvalidStatus):
		return jsonError(c, fiber.StatusBadRequest, codeInvalidStatus, "Unknown status", nil)
	case errors.Is(err, services.ErrForbidden):
		return jsonError(c, fiber.StatusForbidden, codeForbidden, "Forbidden", nil)
	case errors.Is(err, services.ErrNotFound):
		return jsonError(c, fiber.StatusNotFound, codeNotFound, notFoundMessage, nil)
	case errors.Is(err, services.ErrConflict):
		return jsonError(c, fiber.StatusConflict, codeConflict, "Resource is still referenced", nil)
	case errors.Is(err, services.ErrInvalidStateTransition):
		return jsonError(c, fiber.StatusUnprocessableEntity, codeInvalidTransit, "Status change not allowed", nil)
	case errors.Is(err, services.ErrStorageUnavailable):
		return jsonError(c, fiber.StatusServiceUnavailable, codeStorageDisabled, "Storage service is not configured", nil)
	default:
		return jsonError(c, fiber.StatusInternalServerError, codeInternal, failureMessage, err)
	}
}

// currentActor reads the claims set by middleware.AuthRequired.
func currentActor(c *fiber.Ctx) (services.Actor, error) {
	userID, ok := c.Locals("user_id").(string)
	if !ok {
		return services.Actor{}, errMissingActor
	}
	id, err := uuid.Parse(userID)
	if err != nil || id == uuid.Nil {
		return services.Actor{}, errMissingActor
	}
	role, _ := c.Locals("role").(string)
	return services.Actor{ID: id, Role: role}, nil
}

func unauthorized(c *fiber.Ctx) error {
	return jsonError(c, fiber.StatusUnauthorized, codeUnauthorized, "Invalid token", nil)
}

func parseIDParam(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

func invalidID(c *fiber.Ctx, what string) error {
	return jsonError(c, fiber.StatusBadRequest, codeInvalidID, "Invalid "+what+" id", nil)
}
