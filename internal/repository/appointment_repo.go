package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ttthanh1411/gym/internal/models"
)

type CreateAppointmentInput struct {
	Name       string
	Date       time.Time
	Time       string
	Price      float64
	CustomerID uuid.UUID
	ServiceID  uuid.UUID
	ScheduleID *uuid.UUID
	StatusID   uuid.UUID
}

const appointmentSelect = `
	SELECT a.id, a.name, a.appointment_date, a.appointment_time, a.price::float8,
		a.customer_id, a.service_id, a.schedule_id, a.status_id, st.code, a.created_at
	FROM appointments a
	JOIN statuses st ON st.id = a.status_id
`

type AppointmentRepository struct {
	db DBTX
}

func NewAppointmentRepository(db DBTX) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

func (r *AppointmentRepository) Create(ctx context.Context, input CreateAppointmentInput) (*models.Appointment, error) {
	query := `
		INSERT INTO appointments
			(name, appointment_date, appointment_time, price, customer_id, service_id, schedule_id, status_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	var id uuid.UUID
	if err := r.db.QueryRow(
		ctx,
		query,
		input.Name,
		input.Date,
		input.Time,
		input.Price,
		input.CustomerID,
		input.ServiceID,
		input.ScheduleID,
		input.StatusID,
	).Scan(&id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	return scanAppointment(r.db.QueryRow(ctx, appointmentSelect+` WHERE a.id = $1`, id))
}

func (r *AppointmentRepository) List(ctx context.Context, search string) ([]models.Appointment, error) {
	query := appointmentSelect + `
		WHERE lower(a.name) LIKE $1
		ORDER BY a.appointment_date DESC, a.created_at DESC, a.id
	`
	rows, err := r.db.Query(ctx, query, "%"+strings.ToLower(strings.TrimSpace(search))+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	appointments := make([]models.Appointment, 0)
	for rows.Next() {
		appointment, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appointments = append(appointments, *appointment)
	}
	return appointments, rows.Err()
}

func (r *AppointmentRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.CustomerAppointment, error) {
	query := `
		SELECT a.id, a.name, a.appointment_date, a.appointment_time, a.price::float8,
			COALESCE(s.name, ''), sc.day_of_week, sc.start_time, sc.end_time, st.code
		FROM appointments a
		JOIN statuses st ON st.id = a.status_id
		LEFT JOIN services s ON s.id = a.service_id
		LEFT JOIN schedules sc ON sc.id = a.schedule_id
		WHERE a.customer_id = $1
		ORDER BY a.appointment_date DESC, a.id
	`
	rows, err := r.db.Query(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	appointments := make([]models.CustomerAppointment, 0)
	for rows.Next() {
		var (
			appointment models.CustomerAppointment
			dayOfWeek   *string
			startTime   *string
			endTime     *string
		)
		if err := rows.Scan(
			&appointment.ID,
			&appointment.Name,
			&appointment.Date,
			&appointment.Time,
			&appointment.Price,
			&appointment.ServiceName,
			&dayOfWeek,
			&startTime,
			&endTime,
			&appointment.Status,
		); err != nil {
			return nil, err
		}
		if dayOfWeek != nil && startTime != nil && endTime != nil {
			appointment.ScheduleInfo = &models.ScheduleInfo{
				DayOfWeek: *dayOfWeek,
				StartTime: *startTime,
				EndTime:   *endTime,
			}
		}
		appointments = append(appointments, appointment)
	}
	return appointments, rows.Err()
}

// UpdateStatusIfCurrent moves the appointment only while it still holds the
// expected status; pgx.ErrNoRows means it changed underneath.
func (r *AppointmentRepository) UpdateStatusIfCurrent(
	ctx context.Context,
	id uuid.UUID,
	current models.StatusCode,
	next models.StatusCode,
) (*models.Appointment, error) {
	query := `
		UPDATE appointments a
		SET status_id = nxt.id
		FROM statuses cur, statuses nxt
		WHERE a.id = $1 AND a.status_id = cur.id AND cur.code = $2 AND nxt.code = $3
		RETURNING a.id
	`
	var updatedID uuid.UUID
	if err := r.db.QueryRow(ctx, query, id, string(current), string(next)).Scan(&updatedID); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, updatedID)
}

func (r *AppointmentRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanAppointment(row interface{ Scan(dest ...any) error }) (*models.Appointment, error) {
	var appointment models.Appointment
	err := row.Scan(
		&appointment.ID,
		&appointment.Name,
		&appointment.Date,
		&appointment.Time,
		&appointment.Price,
		&appointment.CustomerID,
		&appointment.ServiceID,
		&appointment.ScheduleID,
		&appointment.StatusID,
		&appointment.Status,
		&appointment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &appointment, nil
}
