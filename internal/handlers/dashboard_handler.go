package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/ttthanh1411/gym/internal/models"
)

const codeDashboardFailed = "DASHBOARD_QUERY_FAILED"

type dashboardReader interface {
	Overview(ctx context.Context, now time.Time) (*models.DashboardOverview, error)
	RevenueChart(ctx context.Context, period string, now time.Time) ([]models.RevenuePoint, error)
	AppointmentTrends(ctx context.Context, now time.Time) ([]models.AppointmentTrend, error)
	PopularServices(ctx context.Context) ([]models.PopularService, error)
	RecentActivities(ctx context.Context, now time.Time) ([]models.Activity, error)
	UserStats(ctx context.Context, customerID uuid.UUID) (*models.UserStats, error)
}

type DashboardHandler struct {
	repo dashboardReader
	now  func() time.Time
}

func NewDashboardHandler(repo dashboardReader) *DashboardHandler {
	return &DashboardHandler{repo: repo, now: time.Now}
}

func (h *DashboardHandler) Overview(c *fiber.Ctx) error {
	overview, err := h.repo.Overview(c.Context(), h.now())
	if err != nil {
		return dashboardFailed(c, err)
	}
	return c.JSON(overview)
}

func (h *DashboardHandler) RevenueChart(c *fiber.Ctx) error {
	period := c.Query("period", "month")
	if period != "month" && period != "week" {
		return jsonError(c, fiber.StatusBadRequest, codeValidation, "period must be month or week", nil)
	}

	points, err := h.repo.RevenueChart(c.Context(), period, h.now())
	if err != nil {
		return dashboardFailed(c, err)
	}
	return c.JSON(points)
}

func (h *DashboardHandler) AppointmentTrends(c *fiber.Ctx) error {
	trends, err := h.repo.AppointmentTrends(c.Context(), h.now())
	if err != nil {
		return dashboardFailed(c, err)
	}
	return c.JSON(trends)
}

func (h *DashboardHandler) PopularServices(c *fiber.Ctx) error {
	popular, err := h.repo.PopularServices(c.Context())
	if err != nil {
		return dashboardFailed(c, err)
	}
	if popular == nil {
		popular = []models.PopularService{}
	}
	return c.JSON(popular)
}

func (h *DashboardHandler) RecentActivities(c *fiber.Ctx) error {
	activities, err := h.repo.RecentActivities(c.Context(), h.now())
	if err != nil {
		return dashboardFailed(c, err)
	}
	if activities == nil {
		activities = []models.Activity{}
	}
	return c.JSON(activities)
}

func (h *DashboardHandler) UserStats(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return unauthorized(c)
	}
	customerID, ok := parseIDParam(c, "customerId")
	if !ok {
		return invalidID(c, "customer")
	}
	if !actor.CanAccess(customerID) {
		return jsonError(c, fiber.StatusForbidden, codeForbidden, "Forbidden", nil)
	}

	stats, err := h.repo.UserStats(c.Context(), customerID)
	if err != nil {
		return dashboardFailed(c, err)
	}
	return c.JSON(stats)
}

func dashboardFailed(c *fiber.Ctx, err error) error {
	return jsonError(c, fiber.StatusInternalServerError, codeDashboardFailed, "Failed to load dashboard data", err)
}
