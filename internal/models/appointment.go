package models

import (
	"time"

	"github.com/google/uuid"
)

type StatusCode string

const (
	StatusPending   StatusCode = "pending"
	StatusConfirmed StatusCode = "confirmed"
	StatusCompleted StatusCode = "completed"
	StatusCancelled StatusCode = "cancelled"
)

func (s StatusCode) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func (s StatusCode) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type Status struct {
	ID   uuid.UUID  `json:"id"`
	Code StatusCode `json:"code"`
	Name string     `json:"name"`
}

type Appointment struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Date       time.Time  `json:"date"`
	Time       string     `json:"time"`
	Price      float64    `json:"price"`
	CustomerID uuid.UUID  `json:"customer_id"`
	ServiceID  uuid.UUID  `json:"service_id"`
	ScheduleID *uuid.UUID `json:"schedule_id"`
	StatusID   uuid.UUID  `json:"status_id"`
	Status     StatusCode `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
}

type ScheduleInfo struct {
	DayOfWeek string `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// CustomerAppointment is the my-appointments projection.
type CustomerAppointment struct {
	ID           uuid.UUID     `json:"appointment_id"`
	Name         string        `json:"appointment_name"`
	Date         time.Time     `json:"appointment_date"`
	Time         string        `json:"appointment_time"`
	Price        float64       `json:"price"`
	ServiceName  string        `json:"service_name"`
	ScheduleInfo *ScheduleInfo `json:"schedule_info"`
	Status       StatusCode    `json:"status"`
}
