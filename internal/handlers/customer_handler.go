package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/ttthanh1411/gym/internal/models"
	"github.com/ttthanh1411/gym/internal/repository"
	"github.com/ttthanh1411/gym/internal/services"
)

type customerApplicationService interface {
	List(ctx context.Context, filter repository.CustomerListFilter) ([]models.Customer, int, error)
	TrainerOptions(ctx context.Context) ([]models.CustomerOption, error)
	Get(ctx context.Context, actor services.Actor, id uuid.UUID) (*models.Customer, error)
	Update(ctx context.Context, actor services.Actor, id uuid.UUID, input services.UpdateCustomerInput) (*models.Customer, error)
	UpdateBodyMetrics(ctx context.Context, actor services.Actor, heightCM, weightKG float64) (*models.Customer, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type CustomerHandler struct {
	service customerApplicationService
}

func NewCustomerHandler(service customerApplicationService) *CustomerHandler {
	return &CustomerHandler{service: service}
}

type updateCustomerRequest struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	Gender  *string `json:"gender"`
	Type    *int    `json:"type"`
	Status  *int    `json:"status"`
}

type bodyMetricsRequest struct {
	HeightCM float64 `json:"height_cm"`
	WeightKG float64 `json:"weight_kg"`
}

func (h *CustomerHandler) ListCustomers(c *fiber.Ctx) error {
	page, limit := pageParams(c.Query("page"), c.Query("limit"))

	customers, total, err := h.service.List(c.Context(), repository.CustomerListFilter{
		Keyword: strings.TrimSpace(c.Query("keyword")),
		Limit:   limit,
		Offset:  (page - 1) * limit,
	})
	if err != nil {
		return mapServiceError(c, err, "Customer not found", "Failed to fetch customers")
	}
	if customers == nil {
		customers = []models.Customer{}
	}

	return c.JSON(fiber.Map{
		"customers":  customers,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

func (h *CustomerHandler) TrainerOptions(c *fiber.Ctx) error {
	options, err := h.service.TrainerOptions(c.Context())
	if err != nil {
		return mapServiceError(c, err, "Customer not found", "Failed to fetch trainers")
	}
	if options == nil {
		options = []models.CustomerOption{}
	}
	return c.JSON(options)
}

func (h *CustomerHandler) GetCustomer(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return invalidID(c, "customer")
	}

	customer, err := h.service.Get(c.Context(), actor, id)
	if err != nil {
		return mapServiceError(c, err, "Customer not found", "Failed to fetch customer")
	}
	return c.JSON(fiber.Map{"customer": customer})
}

func (h *CustomerHandler) UpdateCustomer(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return invalidID(c, "customer")
	}

	var req updateCustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if msg := validateUpdateCustomerRequest(req); msg != "" {
		return jsonError(c, fiber.StatusBadRequest, codeValidation, msg, nil)
	}

	customer, err := h.service.Update(c.Context(), actor, id, services.UpdateCustomerInput{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
		Gender:  req.Gender,
		Role:    req.Type,
		Status:  req.Status,
	})
	if err != nil {
		return mapServiceError(c, err, "Customer not found", "Failed to update customer")
	}
	return c.JSON(fiber.Map{"customer": customer})
}

func (h *CustomerHandler) UpdateBodyMetrics(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return unauthorized(c)
	}

	var req bodyMetricsRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if msg := validateBodyMetricsRequest(req); msg != "" {
		return jsonError(c, fiber.StatusBadRequest, codeValidation, msg, nil)
	}

	customer, err := h.service.UpdateBodyMetrics(c.Context(), actor, req.HeightCM, req.WeightKG)
	if err != nil {
		return mapServiceError(c, err, "Customer not found", "Failed to update body metrics")
	}
	return c.JSON(fiber.Map{"customer": customer})
}

func (h *CustomerHandler) DeleteCustomer(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return invalidID(c, "customer")
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		return mapServiceError(c, err, "Customer not found", "Failed to delete customer")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
