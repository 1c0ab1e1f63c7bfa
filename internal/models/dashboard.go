package models

import (
	"time"

	"github.com/google/uuid"
)

type DashboardOverview struct {
	TotalCustomers    int64    `json:"totalCustomers"`
	TodayAppointments int64    `json:"todayAppointments"`
	CompletedToday    int64    `json:"completedToday"`
	MonthlyRevenue    float64  `json:"monthlyRevenue"`
	LastMonthRevenue  float64  `json:"lastMonthRevenue"`
	RevenueChange     *float64 `json:"revenueChange"`
	ActiveCourses     int64    `json:"activeCourses"`
	EnrolledStudents  int64    `json:"enrolledStudents"`
	CustomerGrowth    *float64 `json:"customerGrowth"`
	AppointmentGrowth *float64 `json:"appointmentGrowth"`
}

type RevenuePoint struct {
	Period            string  `json:"period"`
	Revenue           float64 `json:"revenue"`
	AppointmentIncome float64 `json:"appointmentRevenue"`
	CourseIncome      float64 `json:"courseRevenue"`
}

type AppointmentTrend struct {
	Date      string `json:"date"`
	Count     int    `json:"count"`
	Completed int    `json:"completed"`
}

type PopularService struct {
	ServiceID    uuid.UUID `json:"serviceId"`
	ServiceName  string    `json:"serviceName"`
	BookingCount int64     `json:"bookingCount"`
	Revenue      float64   `json:"revenue"`
}

type Activity struct {
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Status      string    `json:"status"`
}

type UserStats struct {
	TotalPackages int64   `json:"totalPackages"`
	TotalSpent    float64 `json:"totalSpent"`
}

// ActivityEvent is pushed to admin clients of the live activity feed.
type ActivityEvent struct {
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}
