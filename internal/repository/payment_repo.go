package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/ttthanh1411/gym/internal/models"
)

type PaymentItemInput struct {
	CourseID uuid.UUID
	Price    float64
}

type CreatePaymentInput struct {
	CustomerID     *uuid.UUID
	Amount         float64
	Method         bool
	PaidAt         time.Time
	IdempotencyKey *string
	Items          []PaymentItemInput
}

// CourseSlotRow is one (purchased course, schedule slot) pair. Slot fields are
// nil for a course without schedules.
type CourseSlotRow struct {
	CourseID      uuid.UUID
	CourseName    string
	StartDate     *time.Time
	EndDate       *time.Time
	DurationWeeks int
	TrainerName   *string
	ScheduleID    *uuid.UUID
	DayOfWeek     *string
	StartTime     *string
	EndTime       *string
}

type PaymentHistoryRecord struct {
	PaymentID      uuid.UUID
	Status         bool
	Method         bool
	PaidAt         *time.Time
	CourseID       uuid.UUID
	CourseName     string
	TrainerName    *string
	Price          float64
	OriginalAmount float64
}

const paymentColumns = `id, amount::float8, customer_id, status, paid_at, method, idempotency_key, created_at`

type PaymentRepository struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// CreateWithDetails writes the payment and one detail per item in a single
// transaction. When the customer already recorded the idempotency key nothing
// is written and the stored payment comes back with duplicate set.
func (r *PaymentRepository) CreateWithDetails(
	ctx context.Context,
	input CreatePaymentInput,
) (payment *models.Payment, details []models.PaymentDetail, duplicate bool, err error) {
	err = inTx(ctx, r.db, func(db DBTX) error {
		query := `
			INSERT INTO payments (amount, customer_id, status, paid_at, method, idempotency_key)
			VALUES ($1, $2, TRUE, $3, $4, $5)
			ON CONFLICT (customer_id, idempotency_key) DO NOTHING
			RETURNING ` + paymentColumns
		created, insertErr := scanPayment(db.QueryRow(
			ctx,
			query,
			input.Amount,
			input.CustomerID,
			input.PaidAt,
			input.Method,
			input.IdempotencyKey,
		))
		if insertErr != nil {
			if errors.Is(insertErr, pgx.ErrNoRows) && input.IdempotencyKey != nil && input.CustomerID != nil {
				existing, lookupErr := NewPaymentRepository(db).GetByIdempotencyKey(ctx, *input.CustomerID, *input.IdempotencyKey)
				if lookupErr != nil {
					return lookupErr
				}
				existingDetails, listErr := NewPaymentRepository(db).ListDetails(ctx, existing.ID)
				if listErr != nil {
					return listErr
				}
				payment, details, duplicate = existing, existingDetails, true
				return nil
			}
			return insertErr
		}

		created.IdempotencyKey = input.IdempotencyKey
		inserted := make([]models.PaymentDetail, 0, len(input.Items))
		for _, item := range input.Items {
			detail := models.PaymentDetail{
				PaymentID:  created.ID,
				CourseID:   item.CourseID,
				Price:      item.Price,
				CustomerID: input.CustomerID,
			}
			if scanErr := db.QueryRow(
				ctx,
				`INSERT INTO payment_details (payment_id, course_id, price, customer_id)
				 VALUES ($1, $2, $3, $4)
				 RETURNING id`,
				created.ID,
				item.CourseID,
				item.Price,
				input.CustomerID,
			).Scan(&detail.ID); scanErr != nil {
				return scanErr
			}
			inserted = append(inserted, detail)
		}
		payment, details, duplicate = created, inserted, false
		return nil
	})
	if err != nil {
		return nil, nil, false, err
	}
	return payment, details, duplicate, nil
}

// GetByIdempotencyKey looks a key up within one customer's payments only.
func (r *PaymentRepository) GetByIdempotencyKey(ctx context.Context, customerID uuid.UUID, key string) (*models.Payment, error) {
	return scanPayment(r.db.QueryRow(
		ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE customer_id = $1 AND idempotency_key = $2`,
		customerID,
		key,
	))
}

func (r *PaymentRepository) ListDetails(ctx context.Context, paymentID uuid.UUID) ([]models.PaymentDetail, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, payment_id, course_id, price::float8, customer_id
		FROM payment_details
		WHERE payment_id = $1
		ORDER BY id
	`, paymentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := make([]models.PaymentDetail, 0)
	for rows.Next() {
		var detail models.PaymentDetail
		if err := rows.Scan(&detail.ID, &detail.PaymentID, &detail.CourseID, &detail.Price, &detail.CustomerID); err != nil {
			return nil, err
		}
		details = append(details, detail)
	}
	return details, rows.Err()
}

// ListPaidCourses returns one entry per detail row of the customer's paid
// payments, so a course bought twice is listed twice.
func (r *PaymentRepository) ListPaidCourses(ctx context.Context, customerID uuid.UUID) ([]models.PurchasedCourse, error) {
	query := `
		SELECT c.id, c.name, c.image_url, c.trainer_id, c.duration_weeks, c.description,
			c.price::float8, c.service_id, s.name, t.name,
			COALESCE(
				(SELECT array_agg(cs.schedule_id ORDER BY cs.position)
				 FROM course_schedules cs WHERE cs.course_id = c.id),
				'{}'
			)
		FROM payments p
		JOIN payment_details pd ON pd.payment_id = p.id
		JOIN workout_courses c ON c.id = pd.course_id
		LEFT JOIN services s ON s.id = c.service_id
		LEFT JOIN customers t ON t.id = c.trainer_id
		WHERE p.customer_id = $1 AND p.status = TRUE
		ORDER BY p.paid_at DESC NULLS LAST, p.id, pd.id
	`
	rows, err := r.db.Query(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := make([]models.PurchasedCourse, 0)
	for rows.Next() {
		var course models.PurchasedCourse
		if err := rows.Scan(
			&course.CourseID,
			&course.CourseName,
			&course.ImageURL,
			&course.TrainerID,
			&course.DurationWeeks,
			&course.Description,
			&course.Price,
			&course.ServiceID,
			&course.ServiceName,
			&course.TrainerName,
			&course.ScheduleIDs,
		); err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}
	return courses, rows.Err()
}

// ListPaidCourseSlots returns the slots of every distinct course the customer
// holds a paid payment for, ordered by course and then slot position.
func (r *PaymentRepository) ListPaidCourseSlots(ctx context.Context, customerID uuid.UUID) ([]CourseSlotRow, error) {
	query := `
		WITH purchased AS (
			SELECT DISTINCT pd.course_id
			FROM payments p
			JOIN payment_details pd ON pd.payment_id = p.id
			WHERE p.customer_id = $1 AND p.status = TRUE
		)
		SELECT c.id, c.name, c.start_date, c.end_date, c.duration_weeks, t.name,
			sc.id, sc.day_of_week, sc.start_time, sc.end_time
		FROM purchased
		JOIN workout_courses c ON c.id = purchased.course_id
		LEFT JOIN customers t ON t.id = c.trainer_id
		LEFT JOIN course_schedules cs ON cs.course_id = c.id
		LEFT JOIN schedules sc ON sc.id = cs.schedule_id
		ORDER BY c.name, c.id, cs.position
	`
	rows, err := r.db.Query(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slots := make([]CourseSlotRow, 0)
	for rows.Next() {
		var slot CourseSlotRow
		if err := rows.Scan(
			&slot.CourseID,
			&slot.CourseName,
			&slot.StartDate,
			&slot.EndDate,
			&slot.DurationWeeks,
			&slot.TrainerName,
			&slot.ScheduleID,
			&slot.DayOfWeek,
			&slot.StartTime,
			&slot.EndTime,
		); err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

func (r *PaymentRepository) ListHistory(ctx context.Context, customerID uuid.UUID) ([]PaymentHistoryRecord, error) {
	query := `
		SELECT p.id, p.status, p.method, p.paid_at, pd.course_id, COALESCE(c.name, ''), t.name,
			pd.price::float8, COALESCE(c.price, 0)::float8
		FROM payments p
		JOIN payment_details pd ON pd.payment_id = p.id
		LEFT JOIN workout_courses c ON c.id = pd.course_id
		LEFT JOIN customers t ON t.id = c.trainer_id
		WHERE p.customer_id = $1
		ORDER BY p.paid_at DESC NULLS LAST, p.id, pd.id
	`
	rows, err := r.db.Query(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]PaymentHistoryRecord, 0)
	for rows.Next() {
		var record PaymentHistoryRecord
		if err := rows.Scan(
			&record.PaymentID,
			&record.Status,
			&record.Method,
			&record.PaidAt,
			&record.CourseID,
			&record.CourseName,
			&record.TrainerName,
			&record.Price,
			&record.OriginalAmount,
		); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func scanPayment(row pgx.Row) (*models.Payment, error) {
	var payment models.Payment
	err := row.Scan(
		&payment.ID,
		&payment.Amount,
		&payment.CustomerID,
		&payment.Status,
		&payment.PaidAt,
		&payment.Method,
		&payment.IdempotencyKey,
		&payment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}
