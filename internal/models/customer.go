package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdmin   = 0
	RoleRegular = 1
	RoleTrainer = 2
)

const (
	CustomerInactive = 0
	CustomerActive   = 1
)

type Customer struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         int       `json:"type"`
	Status       int       `json:"status"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	HeightCM     *float64  `json:"height"`
	WeightKG     *float64  `json:"weight"`
	Gender       *string   `json:"gender"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RoleName is the role as carried in access tokens.
func RoleName(role int) string {
	switch role {
	case RoleAdmin:
		return "admin"
	case RoleTrainer:
		return "trainer"
	default:
		return "user"
	}
}

type CustomerOption struct {
	Value uuid.UUID `json:"value"`
	Label string    `json:"label"`
}
