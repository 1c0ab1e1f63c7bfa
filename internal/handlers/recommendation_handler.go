package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/ttthanh1411/gym/internal/services"
)

type courseRecommender interface {
	Recommend(ctx context.Context, heightCM, weightKG float64) (*services.Recommendation, error)
}

type RecommendationHandler struct {
	service courseRecommender
}

func NewRecommendationHandler(service courseRecommender) *RecommendationHandler {
	return &RecommendationHandler{service: service}
}

type recommendationRequest struct {
	Height float64 `json:"height"`
	Weight float64 `json:"weight"`
}

// Recommend responds with a bare array of recommended course ids.
func (h *RecommendationHandler) Recommend(c *fiber.Ctx) error {
	var req recommendationRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if req.Height <= 0 || req.Weight <= 0 {
		return jsonError(c, fiber.StatusBadRequest, codeInvalidInput, "height and weight must be greater than 0", nil)
	}

	recommendation, err := h.service.Recommend(c.Context(), req.Height, req.Weight)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			return jsonError(c, fiber.StatusBadRequest, codeInvalidInput, "height and weight must be greater than 0", nil)
		}
		return jsonError(c, fiber.StatusInternalServerError, codeInternal, "Failed to build recommendation", err)
	}
	courseIDs := recommendation.CourseIDs
	if courseIDs == nil {
		courseIDs = []uuid.UUID{}
	}
	return c.JSON(courseIDs)
}
