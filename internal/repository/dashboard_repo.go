package repository

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ttthanh1411/gym/internal/models"
)

const (
	chartMonths        = 6
	chartWeeks         = 4
	trendDays          = 7
	popularServiceTop  = 5
	recentAppointments = 5
	recentCustomers    = 3
	recentActivityMax  = 8
)

// DashboardRepository serves the read-only reporting queries through gorm.
// Bucketing by day, week and month happens in Go so the same queries run on
// Postgres and on sqlite.
type DashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

type datedAmount struct {
	At     time.Time `gorm:"column:at"`
	Amount float64   `gorm:"column:amount"`
}

type datedAppointment struct {
	At   time.Time         `gorm:"column:at"`
	Code models.StatusCode `gorm:"column:code"`
}

func (r *DashboardRepository) Overview(ctx context.Context, now time.Time) (*models.DashboardOverview, error) {
	now = now.UTC()
	dayStart := startOfDay(now)
	dayEnd := dayStart.AddDate(0, 0, 1)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	nextMonthStart := monthStart.AddDate(0, 1, 0)
	lastMonthStart := monthStart.AddDate(0, -1, 0)

	var overview models.DashboardOverview
	db := r.db.WithContext(ctx)

	if err := db.Table("customers").Where("role = ?", models.RoleRegular).Count(&overview.TotalCustomers).Error; err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}
	if err := db.Table("customers").
		Where("role = ? AND status = ?", models.RoleRegular, models.CustomerActive).
		Count(&overview.EnrolledStudents).Error; err != nil {
		return nil, fmt.Errorf("count enrolled students: %w", err)
	}
	if err := db.Table("workout_courses").
		Where("end_date IS NULL OR end_date >= ?", dayStart).
		Count(&overview.ActiveCourses).Error; err != nil {
		return nil, fmt.Errorf("count active courses: %w", err)
	}

	var err error
	if overview.TodayAppointments, err = r.countAppointments(ctx, dayStart, dayEnd, ""); err != nil {
		return nil, err
	}
	if overview.CompletedToday, err = r.countAppointments(ctx, dayStart, dayEnd, models.StatusCompleted); err != nil {
		return nil, err
	}
	if overview.MonthlyRevenue, err = r.completedAppointmentRevenue(ctx, monthStart, nextMonthStart); err != nil {
		return nil, err
	}
	if overview.LastMonthRevenue, err = r.completedAppointmentRevenue(ctx, lastMonthStart, monthStart); err != nil {
		return nil, err
	}
	overview.RevenueChange = PercentChange(overview.MonthlyRevenue, overview.LastMonthRevenue)

	newThisMonth, err := r.countNewCustomers(ctx, monthStart, nextMonthStart)
	if err != nil {
		return nil, err
	}
	newLastMonth, err := r.countNewCustomers(ctx, lastMonthStart, monthStart)
	if err != nil {
		return nil, err
	}
	overview.CustomerGrowth = PercentChange(float64(newThisMonth), float64(newLastMonth))

	appointmentsThisMonth, err := r.countAppointments(ctx, monthStart, nextMonthStart, "")
	if err != nil {
		return nil, err
	}
	appointmentsLastMonth, err := r.countAppointments(ctx, lastMonthStart, monthStart, "")
	if err != nil {
		return nil, err
	}
	overview.AppointmentGrowth = PercentChange(float64(appointmentsThisMonth), float64(appointmentsLastMonth))

	return &overview, nil
}

// RevenueChart returns completed appointment revenue plus paid course revenue
// for the last six months, or the last four Sunday-started weeks.
func (r *DashboardRepository) RevenueChart(ctx context.Context, period string, now time.Time) ([]models.RevenuePoint, error) {
	now = now.UTC()
	type bucket struct {
		label      string
		start, end time.Time
	}

	var buckets []bucket
	switch period {
	case "week":
		thisWeek := startOfDay(now).AddDate(0, 0, -int(now.Weekday()))
		for i := chartWeeks - 1; i >= 0; i-- {
			start := thisWeek.AddDate(0, 0, -7*i)
			buckets = append(buckets, bucket{
				label: fmt.Sprintf("Week %d", chartWeeks-i),
				start: start,
				end:   start.AddDate(0, 0, 7),
			})
		}
	default:
		thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		for i := chartMonths - 1; i >= 0; i-- {
			start := thisMonth.AddDate(0, -i, 0)
			buckets = append(buckets, bucket{
				label: start.Format("Jan 2006"),
				start: start,
				end:   start.AddDate(0, 1, 0),
			})
		}
	}

	from, to := buckets[0].start, buckets[len(buckets)-1].end

	var appointmentRows []datedAmount
	if err := r.db.WithContext(ctx).
		Table("appointments AS a").
		Select("a.appointment_date AS at, a.price AS amount").
		Joins("JOIN statuses st ON st.id = a.status_id").
		Where("st.code = ? AND a.appointment_date >= ? AND a.appointment_date < ?", models.StatusCompleted, from, to).
		Scan(&appointmentRows).Error; err != nil {
		return nil, fmt.Errorf("load appointment revenue: %w", err)
	}

	var paymentRows []datedAmount
	if err := r.db.WithContext(ctx).
		Table("payments").
		Select("paid_at AS at, amount").
		Where("status = ? AND paid_at >= ? AND paid_at < ?", true, from, to).
		Scan(&paymentRows).Error; err != nil {
		return nil, fmt.Errorf("load course revenue: %w", err)
	}

	points := make([]models.RevenuePoint, len(buckets))
	for i, b := range buckets {
		points[i].Period = b.label
		for _, row := range appointmentRows {
			if inWindow(row.At, b.start, b.end) {
				points[i].AppointmentIncome += row.Amount
			}
		}
		for _, row := range paymentRows {
			if inWindow(row.At, b.start, b.end) {
				points[i].CourseIncome += row.Amount
			}
		}
		points[i].Revenue = points[i].AppointmentIncome + points[i].CourseIncome
	}
	return points, nil
}

// AppointmentTrends returns one entry per day for the last seven days,
// oldest first, including days without appointments.
func (r *DashboardRepository) AppointmentTrends(ctx context.Context, now time.Time) ([]models.AppointmentTrend, error) {
	today := startOfDay(now.UTC())
	from := today.AddDate(0, 0, -(trendDays - 1))
	to := today.AddDate(0, 0, 1)

	var rows []datedAppointment
	if err := r.db.WithContext(ctx).
		Table("appointments AS a").
		Select("a.appointment_date AS at, st.code AS code").
		Joins("JOIN statuses st ON st.id = a.status_id").
		Where("a.appointment_date >= ? AND a.appointment_date < ?", from, to).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("load appointment trends: %w", err)
	}

	trends := make([]models.AppointmentTrend, trendDays)
	index := make(map[string]int, trendDays)
	for i := range trends {
		day := from.AddDate(0, 0, i).Format("2006-01-02")
		trends[i].Date = day
		index[day] = i
	}
	for _, row := range rows {
		i, ok := index[row.At.UTC().Format("2006-01-02")]
		if !ok {
			continue
		}
		trends[i].Count++
		if row.Code == models.StatusCompleted {
			trends[i].Completed++
		}
	}
	return trends, nil
}

func (r *DashboardRepository) PopularServices(ctx context.Context) ([]models.PopularService, error) {
	var rows []struct {
		ServiceID    uuid.UUID `gorm:"column:service_id"`
		ServiceName  string    `gorm:"column:service_name"`
		BookingCount int64     `gorm:"column:booking_count"`
		Revenue      float64   `gorm:"column:revenue"`
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT s.id AS service_id, s.name AS service_name,
			COUNT(a.id) AS booking_count,
			COALESCE(SUM(CASE WHEN st.code = ? THEN a.price ELSE 0 END), 0) AS revenue
		FROM services s
		LEFT JOIN appointments a ON a.service_id = s.id
		LEFT JOIN statuses st ON st.id = a.status_id
		GROUP BY s.id, s.name
		ORDER BY booking_count DESC, s.name
		LIMIT ?
	`, models.StatusCompleted, popularServiceTop).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load popular services: %w", err)
	}

	services := make([]models.PopularService, 0, len(rows))
	for _, row := range rows {
		services = append(services, models.PopularService{
			ServiceID:    row.ServiceID,
			ServiceName:  row.ServiceName,
			BookingCount: row.BookingCount,
			Revenue:      row.Revenue,
		})
	}
	return services, nil
}

// RecentActivities merges the newest appointments of the past week with the
// newest customers, newest first.
func (r *DashboardRepository) RecentActivities(ctx context.Context, now time.Time) ([]models.Activity, error) {
	since := startOfDay(now.UTC()).AddDate(0, 0, -7)

	var appointments []struct {
		Name         string            `gorm:"column:name"`
		At           time.Time         `gorm:"column:at"`
		Code         models.StatusCode `gorm:"column:code"`
		CustomerName *string           `gorm:"column:customer_name"`
		ServiceName  *string           `gorm:"column:service_name"`
	}
	if err := r.db.WithContext(ctx).
		Table("appointments AS a").
		Select("a.name, a.appointment_date AS at, st.code AS code, c.name AS customer_name, s.name AS service_name").
		Joins("JOIN statuses st ON st.id = a.status_id").
		Joins("LEFT JOIN customers c ON c.id = a.customer_id").
		Joins("LEFT JOIN services s ON s.id = a.service_id").
		Where("a.appointment_date >= ?", since).
		Order("a.appointment_date DESC").
		Limit(recentAppointments).
		Scan(&appointments).Error; err != nil {
		return nil, fmt.Errorf("load recent appointments: %w", err)
	}

	var customers []struct {
		Name      string    `gorm:"column:name"`
		Email     string    `gorm:"column:email"`
		CreatedAt time.Time `gorm:"column:created_at"`
	}
	if err := r.db.WithContext(ctx).
		Table("customers").
		Select("name, email, created_at").
		Order("created_at DESC").
		Limit(recentCustomers).
		Scan(&customers).Error; err != nil {
		return nil, fmt.Errorf("load recent customers: %w", err)
	}

	activities := make([]models.Activity, 0, len(appointments)+len(customers))
	for _, a := range appointments {
		activities = append(activities, models.Activity{
			Type:        "appointment",
			Title:       "New appointment: " + a.Name,
			Description: valueOr(a.CustomerName, "Unknown") + " - " + valueOr(a.ServiceName, "Unknown"),
			Date:        a.At.UTC(),
			Status:      string(a.Code),
		})
	}
	for _, c := range customers {
		activities = append(activities, models.Activity{
			Type:        "customer",
			Title:       "New customer: " + c.Name,
			Description: c.Email,
			Date:        c.CreatedAt.UTC(),
			Status:      "new",
		})
	}

	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].Date.After(activities[j].Date)
	})
	if len(activities) > recentActivityMax {
		activities = activities[:recentActivityMax]
	}
	return activities, nil
}

// UserStats counts the distinct courses and the total amount of a customer's
// paid payments.
func (r *DashboardRepository) UserStats(ctx context.Context, customerID uuid.UUID) (*models.UserStats, error) {
	var stats models.UserStats
	if err := r.db.WithContext(ctx).
		Table("payment_details AS pd").
		Joins("JOIN payments p ON p.id = pd.payment_id").
		Where("p.customer_id = ? AND p.status = ?", customerID, true).
		Distinct("pd.course_id").
		Count(&stats.TotalPackages).Error; err != nil {
		return nil, fmt.Errorf("count packages: %w", err)
	}
	if err := r.db.WithContext(ctx).
		Table("payments").
		Select("COALESCE(SUM(amount), 0)").
		Where("customer_id = ? AND status = ?", customerID, true).
		Row().Scan(&stats.TotalSpent); err != nil {
		return nil, fmt.Errorf("sum spent: %w", err)
	}
	return &stats, nil
}

func (r *DashboardRepository) countAppointments(ctx context.Context, from, to time.Time, code models.StatusCode) (int64, error) {
	q := r.db.WithContext(ctx).
		Table("appointments AS a").
		Where("a.appointment_date >= ? AND a.appointment_date < ?", from, to)
	if code != "" {
		q = q.Joins("JOIN statuses st ON st.id = a.status_id").Where("st.code = ?", code)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count appointments: %w", err)
	}
	return count, nil
}

func (r *DashboardRepository) completedAppointmentRevenue(ctx context.Context, from, to time.Time) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Table("appointments AS a").
		Select("COALESCE(SUM(a.price), 0)").
		Joins("JOIN statuses st ON st.id = a.status_id").
		Where("st.code = ? AND a.appointment_date >= ? AND a.appointment_date < ?", models.StatusCompleted, from, to).
		Row().Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum revenue: %w", err)
	}
	return total, nil
}

func (r *DashboardRepository) countNewCustomers(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("customers").
		Where("role = ? AND created_at >= ? AND created_at < ?", models.RoleRegular, from, to).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count new customers: %w", err)
	}
	return count, nil
}

// PercentChange is the change from previous to current in percent, rounded to
// one decimal. It is nil when there is no previous value to compare against.
func PercentChange(current, previous float64) *float64 {
	if previous == 0 {
		return nil
	}
	change := (current - previous) / previous * 100
	change = math.Round(change*10) / 10
	return &change
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func inWindow(t, start, end time.Time) bool {
	t = t.UTC()
	return !t.Before(start) && t.Before(end)
}

func valueOr(value *string, fallback string) string {
	if value == nil || *value == "" {
		return fallback
	}
	return *value
}
