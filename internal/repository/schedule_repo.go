package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/ttthanh1411/gym/internal/models"
)

type ScheduleInput struct {
	DayOfWeek       string
	StartTime       string
	EndTime         string
	MaxParticipants int
}

type ScheduleRepository struct {
	db DBTX
}

func NewScheduleRepository(db DBTX) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

func (r *ScheduleRepository) Create(ctx context.Context, input ScheduleInput) (*models.Schedule, error) {
	query := `
		INSERT INTO schedules (day_of_week, start_time, end_time, max_participants)
		VALUES ($1, $2, $3, $4)
		RETURNING id, day_of_week, start_time, end_time, max_participants
	`
	return scanSchedule(r.db.QueryRow(ctx, query, input.DayOfWeek, input.StartTime, input.EndTime, input.MaxParticipants))
}

func (r *ScheduleRepository) Update(ctx context.Context, id uuid.UUID, input ScheduleInput) (*models.Schedule, error) {
	query := `
		UPDATE schedules
		SET day_of_week = $2, start_time = $3, end_time = $4, max_participants = $5
		WHERE id = $1
		RETURNING id, day_of_week, start_time, end_time, max_participants
	`
	return scanSchedule(r.db.QueryRow(ctx, query, id, input.DayOfWeek, input.StartTime, input.EndTime, input.MaxParticipants))
}

func (r *ScheduleRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM schedules WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ScheduleRepository) List(ctx context.Context, keyword string) ([]models.Schedule, error) {
	query := `
		SELECT id, day_of_week, start_time, end_time, max_participants
		FROM schedules
		WHERE lower(day_of_week) LIKE $1
		ORDER BY day_of_week, start_time, id
	`
	rows, err := r.db.Query(ctx, query, "%"+strings.ToLower(strings.TrimSpace(keyword))+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schedules := make([]models.Schedule, 0)
	for rows.Next() {
		schedule, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, *schedule)
	}
	return schedules, rows.Err()
}

// CountExisting returns how many of ids name a stored schedule.
func (r *ScheduleRepository) CountExisting(ctx context.Context, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM schedules WHERE id = ANY($1)`, ids).Scan(&count)
	return count, err
}

func scanSchedule(row interface{ Scan(dest ...any) error }) (*models.Schedule, error) {
	var schedule models.Schedule
	err := row.Scan(
		&schedule.ID,
		&schedule.DayOfWeek,
		&schedule.StartTime,
		&schedule.EndTime,
		&schedule.MaxParticipants,
	)
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}
