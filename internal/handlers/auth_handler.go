package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/ttthanh1411/gym/internal/models"
	"github.com/ttthanh1411/gym/internal/services"
)

type authApplicationService interface {
	Register(ctx context.Context, input services.RegisterInput) (string, *models.Customer, error)
	Login(ctx context.Context, email, password string) (string, *models.Customer, error)
}

type customerProfileReader interface {
	Get(ctx context.Context, actor services.Actor, id uuid.UUID) (*models.Customer, error)
}

type AuthHandler struct {
	service   authApplicationService
	customers customerProfileReader
}

func NewAuthHandler(service authApplicationService, customers customerProfileReader) *AuthHandler {
	return &AuthHandler{service: service, customers: customers}
}

type registerRequest struct {
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	AgreeToTerms    bool   `json:"agree_to_terms"`
	Gender          string `json:"gender"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	token, customer, err := h.service.Register(c.Context(), services.RegisterInput{
		FullName:        req.FullName,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		AgreeToTerms:    req.AgreeToTerms,
		Gender:          req.Gender,
		Phone:           req.Phone,
		Address:         req.Address,
	})
	if err != nil {
		return mapAuthError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  customer,
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	token, customer, err := h.service.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return mapAuthError(c, err)
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  customer,
	})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return unauthorized(c)
	}

	customer, err := h.customers.Get(c.Context(), actor, actor.ID)
	if err != nil {
		return mapServiceError(c, err, "User not found", "Failed to fetch user")
	}
	return c.JSON(fiber.Map{"user": customer})
}

func mapAuthError(c *fiber.Ctx, err error) error {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return jsonError(c, fiber.StatusBadRequest, codeValidation, validationErr.Message, nil)
	case errors.Is(err, services.ErrConflict):
		return jsonError(c, fiber.StatusConflict, "EMAIL_TAKEN", "Email already exists", nil)
	case errors.Is(err, services.ErrInvalidCredentials):
		return jsonError(c, fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password", nil)
	case errors.Is(err, services.ErrForbidden):
		return jsonError(c, fiber.StatusForbidden, "ACCOUNT_INACTIVE", "Account is inactive", nil)
	default:
		return jsonError(c, fiber.StatusInternalServerError, codeInternal, "Failed to process authentication request", err)
	}
}
