package models

import (
	"time"

	"github.com/google/uuid"
)

type Service struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Price       float64   `json:"price"`
}

type WorkoutCourse struct {
	ID            uuid.UUID   `json:"id"`
	Name          string      `json:"name"`
	ImageURL      string      `json:"image_url"`
	TrainerID     uuid.UUID   `json:"trainer_id"`
	DurationWeeks int         `json:"duration_weeks"`
	Description   string      `json:"description"`
	Price         float64     `json:"price"`
	ServiceID     uuid.UUID   `json:"service_id"`
	ScheduleIDs   []uuid.UUID `json:"schedules"`
	StartDate     *time.Time  `json:"start_date"`
	EndDate       *time.Time  `json:"end_date"`
}

// CourseListing is a course joined with the names the catalog pages show.
type CourseListing struct {
	WorkoutCourse
	TrainerName *string `json:"trainer_name"`
	ServiceName *string `json:"service_name"`
}

type Schedule struct {
	ID              uuid.UUID `json:"id"`
	DayOfWeek       string    `json:"day_of_week"`
	StartTime       string    `json:"start_time"`
	EndTime         string    `json:"end_time"`
	MaxParticipants int       `json:"max_participants"`
}
