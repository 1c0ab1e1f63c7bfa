package models

import (
	"time"

	"github.com/google/uuid"
)

type Payment struct {
	ID             uuid.UUID  `json:"id"`
	Amount         float64    `json:"amount"`
	CustomerID     *uuid.UUID `json:"customer_id"`
	Status         bool       `json:"status"`
	PaidAt         *time.Time `json:"paid_at"`
	Method         bool       `json:"method"`
	IdempotencyKey *string    `json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
}

type PaymentDetail struct {
	ID         uuid.UUID  `json:"id"`
	PaymentID  uuid.UUID  `json:"payment_id"`
	CourseID   uuid.UUID  `json:"course_id"`
	Price      float64    `json:"price"`
	CustomerID *uuid.UUID `json:"customer_id"`
}

// PurchasedCourse is one paid payment detail joined with its course.
type PurchasedCourse struct {
	CourseID      uuid.UUID   `json:"courseId"`
	CourseName    string      `json:"courseName"`
	ImageURL      string      `json:"imageUrl"`
	TrainerID     uuid.UUID   `json:"personalTrainerId"`
	DurationWeeks int         `json:"durationWeek"`
	Description   string      `json:"description"`
	Price         float64     `json:"price"`
	ServiceID     uuid.UUID   `json:"serviceId"`
	ServiceName   *string     `json:"serviceName"`
	TrainerName   *string     `json:"ptName"`
	ScheduleIDs   []uuid.UUID `json:"schedules"`
}

type ScheduleSlot struct {
	ScheduleID uuid.UUID `json:"scheduleId"`
	DayOfWeek  string    `json:"dayOfWeek"`
	StartTime  string    `json:"startTime"`
	EndTime    string    `json:"endTime"`
}

type CourseSchedule struct {
	TeacherName     string         `json:"teacherName"`
	CourseID        uuid.UUID      `json:"courseId"`
	CourseName      string         `json:"courseName"`
	CourseStartDate *time.Time     `json:"courseStartDate"`
	CourseEndDate   *time.Time     `json:"courseEndDate"`
	Duration        int            `json:"duration"`
	Schedules       []ScheduleSlot `json:"schedules"`
}

// PaymentHistoryRow is one (payment, course) pair of a customer's history.
type PaymentHistoryRow struct {
	PaymentID      uuid.UUID  `json:"paymentId"`
	CourseID       uuid.UUID  `json:"courseId"`
	CourseName     string     `json:"courseName"`
	Instructor     string     `json:"instructor"`
	Amount         float64    `json:"amount"`
	OriginalAmount float64    `json:"originalAmount"`
	Status         string     `json:"status"`
	Date           string     `json:"date"`
	PaymentMethod  string     `json:"paymentMethod"`
	TransactionID  string     `json:"transactionId"`
	PaidAt         *time.Time `json:"paidAt"`
}
