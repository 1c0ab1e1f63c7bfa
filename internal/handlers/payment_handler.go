package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/ttthanh1411/gym/internal/models"
	"github.com/ttthanh1411/gym/internal/services"
)

type paymentApplicationService interface {
	CreateCheckoutSession(ctx context.Context, input services.CreateCheckoutInput) (*services.CheckoutSession, error)
	SavePayment(ctx context.Context, input services.SavePaymentInput) (*services.SavePaymentResult, error)
	GetMyCourses(ctx context.Context, customerID uuid.UUID) ([]models.PurchasedCourse, error)
	GetMySchedules(ctx context.Context, customerID uuid.UUID) ([]models.CourseSchedule, error)
	GetPaymentHistory(ctx context.Context, customerID uuid.UUID) ([]models.PaymentHistoryRow, error)
}

type PaymentHandler struct {
	service paymentApplicationService
}

func NewPaymentHandler(service paymentApplicationService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// Both snake and camel customer id keys are accepted; the storefront sends
// camelCase.
type customerRef struct {
	CustomerID      string `json:"customer_id"`
	CustomerIDCamel string `json:"customerId"`
}

func (r customerRef) id() string {
	if strings.TrimSpace(r.CustomerID) != "" {
		return r.CustomerID
	}
	return r.CustomerIDCamel
}

type checkoutRequest struct {
	customerRef
	Items  []services.CheckoutItem `json:"items"`
	Origin string                  `json:"origin"`
}

type savePaymentItem struct {
	ID         string  `json:"id"`
	CourseName string  `json:"coursename"`
	Price      float64 `json:"price"`
}

type savePaymentRequest struct {
	customerRef
	Items          []savePaymentItem `json:"items"`
	SessionID      string            `json:"session_id"`
	SessionIDCamel string            `json:"sessionId"`
}

func (h *PaymentHandler) CreateCheckoutSession(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return unauthorized(c)
	}

	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	customerID, ok := h.authorizeCustomer(c, actor, req.id())
	if !ok {
		return nil
	}

	origin := strings.TrimSpace(req.Origin)
	if origin == "" {
		origin = c.Get(fiber.HeaderOrigin)
	}

	session, err := h.service.CreateCheckoutSession(c.Context(), services.CreateCheckoutInput{
		Items:      req.Items,
		Origin:     origin,
		CustomerID: customerID.String(),
	})
	if err != nil {
		return mapPaymentError(c, err)
	}
	return c.JSON(session)
}

func (h *PaymentHandler) SavePayment(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return unauthorized(c)
	}

	var req savePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	customerID, ok := h.authorizeCustomer(c, actor, req.id())
	if !ok {
		return nil
	}

	items := make([]services.SavePaymentItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, services.SavePaymentItem{
			CourseID:   item.ID,
			CourseName: item.CourseName,
			Price:      item.Price,
		})
	}
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = req.SessionIDCamel
	}

	result, err := h.service.SavePayment(c.Context(), services.SavePaymentInput{
		Items:          items,
		CustomerID:     customerID.String(),
		SessionID:      sessionID,
		IdempotencyKey: c.Get("Idempotency-Key"),
	})
	if err != nil {
		return mapPaymentError(c, err)
	}

	message := "Payment saved successfully"
	if result.Duplicate {
		message = "Payment already recorded"
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    message,
		"payment_id": result.Payment.ID,
		"duplicate":  result.Duplicate,
	})
}

func (h *PaymentHandler) GetMyCourses(c *fiber.Ctx) error {
	customerID, ok := h.customerFromPath(c)
	if !ok {
		return nil
	}
	courses, err := h.service.GetMyCourses(c.Context(), customerID)
	if err != nil {
		return mapPaymentError(c, err)
	}
	return c.JSON(courses)
}

func (h *PaymentHandler) GetMySchedules(c *fiber.Ctx) error {
	customerID, ok := h.customerFromPath(c)
	if !ok {
		return nil
	}
	schedules, err := h.service.GetMySchedules(c.Context(), customerID)
	if err != nil {
		return mapPaymentError(c, err)
	}
	return c.JSON(schedules)
}

func (h *PaymentHandler) GetPaymentHistory(c *fiber.Ctx) error {
	customerID, ok := h.customerFromPath(c)
	if !ok {
		return nil
	}
	history, err := h.service.GetPaymentHistory(c.Context(), customerID)
	if err != nil {
		return mapPaymentError(c, err)
	}
	return c.JSON(history)
}

// authorizeCustomer parses the customer id and checks the caller may act for
// it. When ok is false the response has already been written.
func (h *PaymentHandler) authorizeCustomer(c *fiber.Ctx, actor services.Actor, raw string) (uuid.UUID, bool) {
	customerID, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil || customerID == uuid.Nil {
		_ = jsonError(c, fiber.StatusBadRequest, codeInvalidInput, "Invalid customer id", nil)
		return uuid.Nil, false
	}
	if !actor.CanAccess(customerID) {
		_ = jsonError(c, fiber.StatusForbidden, codeForbidden, "Forbidden", nil)
		return uuid.Nil, false
	}
	return customerID, true
}

func (h *PaymentHandler) customerFromPath(c *fiber.Ctx) (uuid.UUID, bool) {
	actor, err := currentActor(c)
	if err != nil {
		_ = unauthorized(c)
		return uuid.Nil, false
	}
	return h.authorizeCustomer(c, actor, c.Params("customerId"))
}

func mapPaymentError(c *fiber.Ctx, err error) error {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return jsonError(c, fiber.StatusBadRequest, codeValidation, validationErr.Message, nil)
	case errors.Is(err, services.ErrInvalidInput):
		return jsonError(c, fiber.StatusBadRequest, codeInvalidInput, "Invalid payment request", nil)
	case errors.Is(err, services.ErrForbidden):
		return jsonError(c, fiber.StatusForbidden, codeForbidden, "Forbidden", nil)
	case errors.Is(err, services.ErrCheckoutUnavailable):
		return jsonError(c, fiber.StatusServiceUnavailable, "CHECKOUT_UNAVAILABLE", "Checkout is not available", nil)
	case errors.Is(err, services.ErrCheckoutProvider):
		return jsonError(c, fiber.StatusBadGateway, "CHECKOUT_PROVIDER_ERROR", "Payment provider request failed", err)
	case errors.Is(err, services.ErrPaymentNotCompleted):
		return jsonError(c, fiber.StatusPaymentRequired, "PAYMENT_NOT_COMPLETED", "Checkout session is not paid", nil)
	case errors.Is(err, services.ErrCheckoutMismatch):
		return jsonError(c, fiber.StatusUnprocessableEntity, "CHECKOUT_MISMATCH", "Checkout session does not match this payment", nil)
	case errors.Is(err, services.ErrIdempotencyConflict):
		return jsonError(c, fiber.StatusConflict, "IDEMPOTENCY_CONFLICT", "Idempotency key was already used for a different payment", nil)
	default:
		return jsonError(c, fiber.StatusInternalServerError, codeInternal, "Failed to process payment request", err)
	}
}
