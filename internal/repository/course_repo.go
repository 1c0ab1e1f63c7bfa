package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ttthanh1411/gym/internal/models"
)

type CourseInput struct {
	Name          string
	ImageURL      string
	TrainerID     uuid.UUID
	DurationWeeks int
	Description   string
	Price         float64
	ServiceID     uuid.UUID
	ScheduleIDs   []uuid.UUID
	StartDate     *time.Time
	EndDate       *time.Time
}

const courseSelect = `
	SELECT c.id, c.name, c.image_url, c.trainer_id, c.duration_weeks, c.description,
		c.price::float8, c.service_id, c.start_date, c.end_date,
		COALESCE(
			(SELECT array_agg(cs.schedule_id ORDER BY cs.position)
			 FROM course_schedules cs WHERE cs.course_id = c.id),
			'{}'
		) AS schedule_ids,
		t.name AS trainer_name,
		s.name AS service_name
	FROM workout_courses c
	LEFT JOIN customers t ON t.id = c.trainer_id
	LEFT JOIN services s ON s.id = c.service_id
`

type CourseRepository struct {
	db DBTX
}

func NewCourseRepository(db DBTX) *CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) Create(ctx context.Context, input CourseInput) (*models.CourseListing, error) {
	var id uuid.UUID
	err := inTx(ctx, r.db, func(db DBTX) error {
		query := `
			INSERT INTO workout_courses
				(name, image_url, trainer_id, duration_weeks, description, price, service_id, start_date, end_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id
		`
		if err := db.QueryRow(
			ctx,
			query,
			input.Name,
			input.ImageURL,
			input.TrainerID,
			input.DurationWeeks,
			input.Description,
			input.Price,
			input.ServiceID,
			input.StartDate,
			input.EndDate,
		).Scan(&id); err != nil {
			return err
		}
		return replaceCourseSchedules(ctx, db, id, input.ScheduleIDs)
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *CourseRepository) Update(ctx context.Context, id uuid.UUID, input CourseInput) (*models.CourseListing, error) {
	err := inTx(ctx, r.db, func(db DBTX) error {
		query := `
			UPDATE workout_courses
			SET name = $2, image_url = $3, trainer_id = $4, duration_weeks = $5, description = $6,
				price = $7, service_id = $8, start_date = $9, end_date = $10
			WHERE id = $1
			RETURNING id
		`
		var updatedID uuid.UUID
		if err := db.QueryRow(
			ctx,
			query,
			id,
			input.Name,
			input.ImageURL,
			input.TrainerID,
			input.DurationWeeks,
			input.Description,
			input.Price,
			input.ServiceID,
			input.StartDate,
			input.EndDate,
		).Scan(&updatedID); err != nil {
			return err
		}
		return replaceCourseSchedules(ctx, db, id, input.ScheduleIDs)
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *CourseRepository) UpdateImage(ctx context.Context, id uuid.UUID, imageURL string) (*models.CourseListing, error) {
	var updatedID uuid.UUID
	err := r.db.QueryRow(ctx, `UPDATE workout_courses SET image_url = $2 WHERE id = $1 RETURNING id`, id, imageURL).
		Scan(&updatedID)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *CourseRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM workout_courses WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *CourseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.CourseListing, error) {
	return scanCourse(r.db.QueryRow(ctx, courseSelect+` WHERE c.id = $1`, id))
}

func (r *CourseRepository) List(ctx context.Context) ([]models.CourseListing, error) {
	rows, err := r.db.Query(ctx, courseSelect+` ORDER BY c.name, c.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := make([]models.CourseListing, 0)
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, *course)
	}
	return courses, rows.Err()
}

func replaceCourseSchedules(ctx context.Context, db DBTX, courseID uuid.UUID, scheduleIDs []uuid.UUID) error {
	if _, err := db.Exec(ctx, `DELETE FROM course_schedules WHERE course_id = $1`, courseID); err != nil {
		return err
	}
	for position, scheduleID := range scheduleIDs {
		if _, err := db.Exec(
			ctx,
			`INSERT INTO course_schedules (course_id, schedule_id, position) VALUES ($1, $2, $3)`,
			courseID,
			scheduleID,
			position,
		); err != nil {
			return err
		}
	}
	return nil
}

func scanCourse(row interface{ Scan(dest ...any) error }) (*models.CourseListing, error) {
	var course models.CourseListing
	err := row.Scan(
		&course.ID,
		&course.Name,
		&course.ImageURL,
		&course.TrainerID,
		&course.DurationWeeks,
		&course.Description,
		&course.Price,
		&course.ServiceID,
		&course.StartDate,
		&course.EndDate,
		&course.ScheduleIDs,
		&course.TrainerName,
		&course.ServiceName,
	)
	if err != nil {
		return nil, err
	}
	return &course, nil
}
