package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/ttthanh1411/gym/internal/models"
	"github.com/ttthanh1411/gym/internal/repository"
)

type scheduleApplicationService interface {
	List(ctx context.Context, keyword string) ([]models.Schedule, error)
	Create(ctx context.Context, input repository.ScheduleInput) (*models.Schedule, error)
	Update(ctx context.Context, id uuid.UUID, input repository.ScheduleInput) (*models.Schedule, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ScheduleHandler struct {
	service scheduleApplicationService
}

func NewScheduleHandler(service scheduleApplicationService) *ScheduleHandler {
	return &ScheduleHandler{service: service}
}

type scheduleRequest struct {
	DayOfWeek       string `json:"day_of_week"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	MaxParticipants int    `json:"max_participants"`
}

func (r scheduleRequest) input() repository.ScheduleInput {
	return repository.ScheduleInput{
		DayOfWeek:       r.DayOfWeek,
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		MaxParticipants: r.MaxParticipants,
	}
}

func (h *ScheduleHandler) ListSchedules(c *fiber.Ctx) error {
	schedules, err := h.service.List(c.Context(), strings.TrimSpace(c.Query("keyword")))
	if err != nil {
		return mapServiceError(c, err, "Schedule not found", "Failed to fetch schedules")
	}
	if schedules == nil {
		schedules = []models.Schedule{}
	}
	return c.JSON(schedules)
}

func (h *ScheduleHandler) CreateSchedule(c *fiber.Ctx) error {
	var req scheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	schedule, err := h.service.Create(c.Context(), req.input())
	if err != nil {
		return mapServiceError(c, err, "Schedule not found", "Failed to create schedule")
	}
	return c.Status(fiber.StatusCreated).JSON(schedule)
}

func (h *ScheduleHandler) UpdateSchedule(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return invalidID(c, "schedule")
	}
	var req scheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	schedule, err := h.service.Update(c.Context(), id, req.input())
	if err != nil {
		return mapServiceError(c, err, "Schedule not found", "Failed to update schedule")
	}
	return c.JSON(schedule)
}

func (h *ScheduleHandler) DeleteSchedule(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return invalidID(c, "schedule")
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		return mapServiceError(c, err, "Schedule not found", "Failed to delete schedule")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
