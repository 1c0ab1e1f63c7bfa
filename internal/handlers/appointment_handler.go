package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/ttthanh1411/gym/internal/models"
	"github.com/ttthanh1411/gym/internal/services"
)

type appointmentApplicationService interface {
	Create(ctx context.Context, actor services.Actor, input services.CreateAppointmentInput) (*models.Appointment, error)
	Get(ctx context.Context, actor services.Actor, id uuid.UUID) (*models.Appointment, error)
	List(ctx context.Context, search string) ([]models.Appointment, error)
	ListForCustomer(ctx context.Context, actor services.Actor, customerID uuid.UUID) ([]models.CustomerAppointment, error)
	UpdateStatus(ctx context.Context, actor services.Actor, id uuid.UUID, requestedStatus string) (*models.Appointment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type AppointmentHandler struct {
	service appointmentApplicationService
}

func NewAppointmentHandler(service appointmentApplicationService) *AppointmentHandler {
	return &AppointmentHandler{service: service}
}

type createAppointmentRequest struct {
	Name       string   `json:"name"`
	Date       string   `json:"date"`
	Time       string   `json:"time"`
	CustomerID string   `json:"customer_id"`
	ServiceID  string   `json:"service_id"`
	ScheduleID *string  `json:"schedule_id"`
	Price      *float64 `json:"price"`
}

type updateAppointmentStatusRequest struct {
	Status string `json:"status"`
}

func (h *AppointmentHandler) ListAppointments(c *fiber.Ctx) error {
	appointments, err := h.service.List(c.Context(), strings.TrimSpace(c.Query("q")))
	if err != nil {
		return mapServiceError(c, err, "Appointment not found", "Failed to fetch appointments")
	}
	if appointments == nil {
		appointments = []models.Appointment{}
	}
	return c.JSON(appointments)
}

func (h *AppointmentHandler) GetAppointment(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return invalidID(c, "appointment")
	}

	appointment, err := h.service.Get(c.Context(), actor, id)
	if err != nil {
		return mapServiceError(c, err, "Appointment not found", "Failed to fetch appointment")
	}
	return c.JSON(appointment)
}

func (h *AppointmentHandler) ListCustomerAppointments(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return unauthorized(c)
	}
	customerID, ok := parseIDParam(c, "customerId")
	if !ok {
		return invalidID(c, "customer")
	}

	appointments, err := h.service.ListForCustomer(c.Context(), actor, customerID)
	if err != nil {
		return mapServiceError(c, err, "Appointment not found", "Failed to fetch appointments")
	}
	if appointments == nil {
		appointments = []models.CustomerAppointment{}
	}
	return c.JSON(appointments)
}

func (h *AppointmentHandler) CreateAppointment(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return unauthorized(c)
	}

	var req createAppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	date, err := parseOptionalDate(&req.Date)
	if err != nil || date == nil {
		return jsonError(c, fiber.StatusBadRequest, codeValidation, "date must be a date (YYYY-MM-DD) or RFC3339 timestamp", nil)
	}
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return invalidID(c, "customer")
	}
	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		return invalidID(c, "service")
	}
	var scheduleID *uuid.UUID
	if req.ScheduleID != nil && strings.TrimSpace(*req.ScheduleID) != "" {
		parsed, err := uuid.Parse(*req.ScheduleID)
		if err != nil {
			return invalidID(c, "schedule")
		}
		scheduleID = &parsed
	}

	appointment, err := h.service.Create(c.Context(), actor, services.CreateAppointmentInput{
		Name:       req.Name,
		Date:       *date,
		Time:       strings.TrimSpace(req.Time),
		CustomerID: customerID,
		ServiceID:  serviceID,
		ScheduleID: scheduleID,
		Price:      req.Price,
	})
	if err != nil {
		return mapServiceError(c, err, "Appointment not found", "Failed to create appointment")
	}
	return c.Status(fiber.StatusCreated).JSON(appointment)
}

func (h *AppointmentHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return invalidID(c, "appointment")
	}

	var req updateAppointmentStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	appointment, err := h.service.UpdateStatus(c.Context(), actor, id, req.Status)
	if err != nil {
		return mapServiceError(c, err, "Appointment not found", "Failed to update appointment")
	}
	return c.JSON(appointment)
}

func (h *AppointmentHandler) DeleteAppointment(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return invalidID(c, "appointment")
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		return mapServiceError(c, err, "Appointment not found", "Failed to delete appointment")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
