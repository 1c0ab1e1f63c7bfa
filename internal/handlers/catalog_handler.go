package handlers

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/ttthanh1411/gym/internal/models"
	"github.com/ttthanh1411/gym/internal/repository"
	"github.com/ttthanh1411/gym/internal/services"
)

const maxCourseImageSizeBytes = 5 << 20

type catalogApplicationService interface {
	ListServices(ctx context.Context) ([]models.Service, error)
	CreateService(ctx context.Context, input repository.CreateServiceInput) (*models.Service, error)
	ListCourses(ctx context.Context) ([]models.CourseListing, error)
	GetCourse(ctx context.Context, id uuid.UUID) (*models.CourseListing, error)
	CreateCourse(ctx context.Context, input services.CourseInput) (*models.CourseListing, error)
	UpdateCourse(ctx context.Context, id uuid.UUID, input services.CourseInput) (*models.CourseListing, error)
	DeleteCourse(ctx context.Context, id uuid.UUID) error
	UploadCourseImage(ctx context.Context, id uuid.UUID, content []byte) (*models.CourseListing, error)
}

type statusLister interface {
	List(ctx context.Context) ([]models.Status, error)
}

type CatalogHandler struct {
	service  catalogApplicationService
	statuses statusLister
}

func NewCatalogHandler(service catalogApplicationService, statuses statusLister) *CatalogHandler {
	return &CatalogHandler{service: service, statuses: statuses}
}

type createServiceRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Price       float64 `json:"price"`
}

type courseRequest struct {
	Name          string   `json:"name"`
	ImageURL      string   `json:"image_url"`
	TrainerID     string   `json:"trainer_id"`
	DurationWeeks int      `json:"duration_weeks"`
	Description   string   `json:"description"`
	Price         float64  `json:"price"`
	ServiceID     string   `json:"service_id"`
	Schedules     []string `json:"schedules"`
	StartDate     *string  `json:"start_date"`
	EndDate       *string  `json:"end_date"`
}

func (h *CatalogHandler) ListServices(c *fiber.Ctx) error {
	list, err := h.service.ListServices(c.Context())
	if err != nil {
		return mapServiceError(c, err, "Service not found", "Failed to fetch services")
	}
	if list == nil {
		list = []models.Service{}
	}
	return c.JSON(list)
}

func (h *CatalogHandler) CreateService(c *fiber.Ctx) error {
	var req createServiceRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if strings.TrimSpace(req.Name) == "" {
		return jsonError(c, fiber.StatusBadRequest, codeValidation, "name is required", nil)
	}
	if req.Price < 0 {
		return jsonError(c, fiber.StatusBadRequest, codeValidation, "price must be 0 or greater", nil)
	}

	created, err := h.service.CreateService(c.Context(), repository.CreateServiceInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
	})
	if err != nil {
		return mapServiceError(c, err, "Service not found", "Failed to create service")
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *CatalogHandler) ListStatuses(c *fiber.Ctx) error {
	list, err := h.statuses.List(c.Context())
	if err != nil {
		return mapServiceError(c, err, "Status not found", "Failed to fetch statuses")
	}
	if list == nil {
		list = []models.Status{}
	}
	return c.JSON(list)
}

func (h *CatalogHandler) ListCourses(c *fiber.Ctx) error {
	courses, err := h.service.ListCourses(c.Context())
	if err != nil {
		return mapServiceError(c, err, "Course not found", "Failed to fetch courses")
	}
	if courses == nil {
		courses = []models.CourseListing{}
	}
	return c.JSON(courses)
}

func (h *CatalogHandler) GetCourse(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return invalidID(c, "course")
	}

	course, err := h.service.GetCourse(c.Context(), id)
	if err != nil {
		return mapServiceError(c, err, "Course not found", "Failed to fetch course")
	}
	return c.JSON(course)
}

func (h *CatalogHandler) CreateCourse(c *fiber.Ctx) error {
	input, msg, ok := h.parseCourseRequest(c)
	if !ok {
		return invalidBody(c)
	}
	if msg != "" {
		return jsonError(c, fiber.StatusBadRequest, codeValidation, msg, nil)
	}

	course, err := h.service.CreateCourse(c.Context(), input)
	if err != nil {
		return mapServiceError(c, err, "Course not found", "Failed to create course")
	}
	return c.Status(fiber.StatusCreated).JSON(course)
}

func (h *CatalogHandler) UpdateCourse(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return invalidID(c, "course")
	}
	input, msg, ok := h.parseCourseRequest(c)
	if !ok {
		return invalidBody(c)
	}
	if msg != "" {
		return jsonError(c, fiber.StatusBadRequest, codeValidation, msg, nil)
	}

	course, err := h.service.UpdateCourse(c.Context(), id, input)
	if err != nil {
		return mapServiceError(c, err, "Course not found", "Failed to update course")
	}
	return c.JSON(course)
}

func (h *CatalogHandler) DeleteCourse(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return invalidID(c, "course")
	}

	if err := h.service.DeleteCourse(c.Context(), id); err != nil {
		return mapServiceError(c, err, "Course not found", "Failed to delete course")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CatalogHandler) UploadCourseImage(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return invalidID(c, "course")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, codeValidation, "file is required", nil)
	}
	if fileHeader.Size <= 0 {
		return jsonError(c, fiber.StatusBadRequest, codeValidation, "file is empty", nil)
	}
	if fileHeader.Size > maxCourseImageSizeBytes {
		return jsonError(c, fiber.StatusBadRequest, codeValidation, "file exceeds 5MB limit", nil)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, codeInternal, "Failed to open file", err)
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxCourseImageSizeBytes+1))
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, codeInternal, "Failed to read file", err)
	}

	course, err := h.service.UploadCourseImage(c.Context(), id, content)
	if err != nil {
		return mapServiceError(c, err, "Course not found", "Failed to upload course image")
	}
	return c.JSON(fiber.Map{
		"image_url": course.ImageURL,
		"course":    course,
	})
}

// parseCourseRequest returns ok=false when the body cannot be decoded and a
// non-empty message when a field is malformed.
func (h *CatalogHandler) parseCourseRequest(c *fiber.Ctx) (services.CourseInput, string, bool) {
	var req courseRequest
	if err := c.BodyParser(&req); err != nil {
		return services.CourseInput{}, "", false
	}

	input := services.CourseInput{
		Name:          req.Name,
		ImageURL:      req.ImageURL,
		DurationWeeks: req.DurationWeeks,
		Description:   req.Description,
		Price:         req.Price,
	}
	if strings.TrimSpace(req.Name) == "" {
		return input, "name is required", true
	}
	if req.DurationWeeks <= 0 {
		return input, "duration_weeks must be greater than 0", true
	}
	if req.Price < 0 {
		return input, "price must be 0 or greater", true
	}

	var err error
	if input.TrainerID, err = uuid.Parse(req.TrainerID); err != nil {
		return input, "trainer_id must be a valid id", true
	}
	if input.ServiceID, err = uuid.Parse(req.ServiceID); err != nil {
		return input, "service_id must be a valid id", true
	}
	for _, raw := range req.Schedules {
		scheduleID, err := uuid.Parse(raw)
		if err != nil {
			return input, "schedules must contain valid ids", true
		}
		input.ScheduleIDs = append(input.ScheduleIDs, scheduleID)
	}

	if input.StartDate, err = parseOptionalDate(req.StartDate); err != nil {
		return input, "start_date must be a date (YYYY-MM-DD) or RFC3339 timestamp", true
	}
	if input.EndDate, err = parseOptionalDate(req.EndDate); err != nil {
		return input, "end_date must be a date (YYYY-MM-DD) or RFC3339 timestamp", true
	}
	return input, "", true
}

func parseOptionalDate(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	value := strings.TrimSpace(*raw)
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		parsed, err = time.Parse("2006-01-02", value)
		if err != nil {
			return nil, err
		}
	}
	parsed = parsed.UTC()
	return &parsed, nil
}
