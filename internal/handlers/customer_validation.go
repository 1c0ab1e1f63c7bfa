package handlers

import (
	"strings"

	"github.com/ttthanh1411/gym/internal/models"
)

var allowedGenders = map[string]struct{}{
	"male":   {},
	"female": {},
	"other":  {},
}

func validateUpdateCustomerRequest(req updateCustomerRequest) string {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return "name must not be empty"
	}
	if req.Gender != nil {
		if err := validateGender(*req.Gender); err != "" {
			return err
		}
	}
	if req.Type != nil {
		switch *req.Type {
		case models.RoleAdmin, models.RoleRegular, models.RoleTrainer:
		default:
			return "type must be 0 (admin), 1 (regular) or 2 (trainer)"
		}
	}
	if req.Status != nil && *req.Status != models.CustomerActive && *req.Status != models.CustomerInactive {
		return "status must be 0 (inactive) or 1 (active)"
	}
	return ""
}

func validateBodyMetricsRequest(req bodyMetricsRequest) string {
	if req.HeightCM <= 0 {
		return "height_cm must be greater than 0"
	}
	if req.WeightKG <= 0 {
		return "weight_kg must be greater than 0"
	}
	return ""
}

func validateGender(gender string) string {
	if _, ok := allowedGenders[strings.ToLower(strings.TrimSpace(gender))]; !ok {
		return "gender must be one of: male, female, other"
	}
	return ""
}
