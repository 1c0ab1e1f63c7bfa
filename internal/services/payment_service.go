package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ttthanh1411/gym/internal/models"
	"github.com/ttthanh1411/gym/internal/repository"
)

var (
	ErrCheckoutUnavailable = errors.New("checkout provider is not configured")
	ErrCheckoutProvider    = errors.New("checkout provider error")
	ErrPaymentNotCompleted = errors.New("payment not completed")
	ErrCheckoutMismatch    = errors.New("checkout session does not match the payment")
	ErrIdempotencyConflict = fmt.Errorf("%w: idempotency key already used for a different payment", ErrConflict)
)

const (
	paymentMethodCard     = true
	unknownInstructor     = "Unknown"
	historyDateLayout     = "2006-01-02"
	paymentStatusSuccess  = "completed"
	paymentStatusFailed   = "failed"
	paymentLabelCard      = "credit_card"
	paymentLabelTransfer  = "bank_transfer"
	checkoutSessionMarker = "{CHECKOUT_SESSION_ID}"
)

type paymentStore interface {
	CreateWithDetails(
		ctx context.Context,
		input repository.CreatePaymentInput,
	) (*models.Payment, []models.PaymentDetail, bool, error)
	ListPaidCourses(ctx context.Context, customerID uuid.UUID) ([]models.PurchasedCourse, error)
	ListPaidCourseSlots(ctx context.Context, customerID uuid.UUID) ([]repository.CourseSlotRow, error)
	ListHistory(ctx context.Context, customerID uuid.UUID) ([]repository.PaymentHistoryRecord, error)
}

type PaymentService struct {
	paymentRepo   paymentStore
	checkout      CheckoutProvider
	activity      ActivityPublisher
	defaultOrigin string
	now           func() time.Time
}

// NewPaymentService accepts a nil checkout provider; checkout is then
// reported as unavailable and saved payments are not verified.
func NewPaymentService(
	paymentRepo *repository.PaymentRepository,
	checkout CheckoutProvider,
	activity ActivityPublisher,
	defaultOrigin string,
) *PaymentService {
	return &PaymentService{
		paymentRepo:   paymentRepo,
		checkout:      checkout,
		activity:      publisherOrNoop(activity),
		defaultOrigin: defaultOrigin,
		now:           time.Now,
	}
}

type CreateCheckoutInput struct {
	Items      []CheckoutItem
	Origin     string
	CustomerID string
}

type SavePaymentItem struct {
	CourseID   string
	CourseName string
	Price      float64
}

type SavePaymentInput struct {
	Items          []SavePaymentItem
	CustomerID     string
	SessionID      string
	IdempotencyKey string
}

type SavePaymentResult struct {
	Payment   *models.Payment
	Details   []models.PaymentDetail
	Duplicate bool
}

func (s *PaymentService) CreateCheckoutSession(ctx context.Context, input CreateCheckoutInput) (*CheckoutSession, error) {
	if s.checkout == nil {
		return nil, ErrCheckoutUnavailable
	}
	if len(input.Items) == 0 {
		return nil, ErrInvalidInput
	}
	customerID, err := parseID(input.CustomerID)
	if err != nil {
		return nil, err
	}

	items := make([]CheckoutItem, 0, len(input.Items))
	for _, item := range input.Items {
		name := strings.TrimSpace(item.Name)
		if name == "" || !validAmount(item.Price) || item.Price <= 0 {
			return nil, ErrInvalidInput
		}
		items = append(items, CheckoutItem{Name: name, Price: item.Price})
	}

	origin, err := s.resolveOrigin(input.Origin)
	if err != nil {
		return nil, err
	}

	created, err := s.checkout.CreateSession(ctx, CheckoutRequest{
		Items:      items,
		CustomerID: customerID.String(),
		SuccessURL: origin + "/user/cart?success=true&session_id=" + checkoutSessionMarker,
		CancelURL:  origin + "/user/cart?canceled=true",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCheckoutProvider, err)
	}
	return created, nil
}

// SavePayment records a completed checkout as one paid payment plus one
// detail per item. A repeated idempotency key (or session id) returns the
// payment recorded first.
func (s *PaymentService) SavePayment(ctx context.Context, input SavePaymentInput) (*SavePaymentResult, error) {
	if len(input.Items) == 0 {
		return nil, ErrInvalidInput
	}
	customerID, err := parseID(input.CustomerID)
	if err != nil {
		return nil, err
	}

	items := make([]repository.PaymentItemInput, 0, len(input.Items))
	prices := make([]float64, 0, len(input.Items))
	total := 0.0
	for _, item := range input.Items {
		courseID, err := parseID(item.CourseID)
		if err != nil {
			return nil, err
		}
		if !validAmount(item.Price) || item.Price < 0 {
			return nil, ErrInvalidInput
		}
		items = append(items, repository.PaymentItemInput{CourseID: courseID, Price: item.Price})
		prices = append(prices, item.Price)
		total += item.Price
	}

	sessionID := strings.TrimSpace(input.SessionID)
	if sessionID != "" && s.checkout != nil {
		if err := s.verifySession(ctx, sessionID, customerID, prices); err != nil {
			return nil, err
		}
	}

	var key *string
	if trimmed := strings.TrimSpace(input.IdempotencyKey); trimmed != "" {
		key = &trimmed
	} else if sessionID != "" {
		key = &sessionID
	}

	amount := math.Round(total*100) / 100
	payment, details, duplicate, err := s.paymentRepo.CreateWithDetails(ctx, repository.CreatePaymentInput{
		CustomerID:     &customerID,
		Amount:         amount,
		Method:         paymentMethodCard,
		PaidAt:         s.now().UTC(),
		IdempotencyKey: key,
		Items:          items,
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, &ValidationError{Message: "One or more courses do not exist"}
		}
		return nil, err
	}
	if duplicate && !samePurchase(payment, details, amount, items) {
		return nil, ErrIdempotencyConflict
	}

	if !duplicate {
		s.activity.Publish(models.ActivityEvent{
			Type:        "payment",
			Title:       "New payment",
			Description: fmt.Sprintf("%d course(s), total %.0f", len(details), payment.Amount),
			Timestamp:   s.now().UTC(),
		})
	}

	return &SavePaymentResult{Payment: payment, Details: details, Duplicate: duplicate}, nil
}

// verifySession checks that the provider recorded the session as paid, for
// this customer and for the total being saved.
func (s *PaymentService) verifySession(ctx context.Context, sessionID string, customerID uuid.UUID, prices []float64) error {
	verified, err := s.checkout.VerifySession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCheckoutProvider, err)
	}
	if verified == nil || !verified.Paid {
		return ErrPaymentNotCompleted
	}
	if verified.CustomerID != customerID.String() {
		return ErrCheckoutMismatch
	}
	var expected int64
	for _, price := range prices {
		expected += unitAmount(price, verified.Currency)
	}
	if verified.AmountTotal != expected {
		return ErrCheckoutMismatch
	}
	return nil
}

// samePurchase reports whether a replayed payment carries the amount and
// course lines of the request.
func samePurchase(payment *models.Payment, details []models.PaymentDetail, amount float64, items []repository.PaymentItemInput) bool {
	if payment == nil || math.Abs(payment.Amount-amount) > 0.005 || len(details) != len(items) {
		return false
	}
	want := make(map[uuid.UUID]int, len(items))
	for _, item := range items {
		want[item.CourseID]++
	}
	for _, detail := range details {
		if want[detail.CourseID] == 0 {
			return false
		}
		want[detail.CourseID]--
	}
	return true
}

// GetMyCourses lists one entry per purchased line item, repeats included.
func (s *PaymentService) GetMyCourses(ctx context.Context, customerID uuid.UUID) ([]models.PurchasedCourse, error) {
	courses, err := s.paymentRepo.ListPaidCourses(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if courses == nil {
		courses = []models.PurchasedCourse{}
	}
	for i := range courses {
		if courses[i].ScheduleIDs == nil {
			courses[i].ScheduleIDs = []uuid.UUID{}
		}
	}
	return courses, nil
}

// GetMySchedules groups the slots of every distinct purchased course.
func (s *PaymentService) GetMySchedules(ctx context.Context, customerID uuid.UUID) ([]models.CourseSchedule, error) {
	rows, err := s.paymentRepo.ListPaidCourseSlots(ctx, customerID)
	if err != nil {
		return nil, err
	}

	groups := make([]models.CourseSchedule, 0)
	index := make(map[uuid.UUID]int)
	for _, row := range rows {
		i, ok := index[row.CourseID]
		if !ok {
			teacher := unknownInstructor
			if row.TrainerName != nil && *row.TrainerName != "" {
				teacher = *row.TrainerName
			}
			groups = append(groups, models.CourseSchedule{
				TeacherName:     teacher,
				CourseID:        row.CourseID,
				CourseName:      row.CourseName,
				CourseStartDate: row.StartDate,
				CourseEndDate:   row.EndDate,
				Duration:        row.DurationWeeks,
				Schedules:       []models.ScheduleSlot{},
			})
			i = len(groups) - 1
			index[row.CourseID] = i
		}
		if row.ScheduleID == nil || row.DayOfWeek == nil {
			continue
		}
		groups[i].Schedules = append(groups[i].Schedules, models.ScheduleSlot{
			ScheduleID: *row.ScheduleID,
			DayOfWeek:  *row.DayOfWeek,
			StartTime:  derefString(row.StartTime),
			EndTime:    derefString(row.EndTime),
		})
	}
	return groups, nil
}

func (s *PaymentService) GetPaymentHistory(ctx context.Context, customerID uuid.UUID) ([]models.PaymentHistoryRow, error) {
	records, err := s.paymentRepo.ListHistory(ctx, customerID)
	if err != nil {
		return nil, err
	}

	today := s.now().UTC().Format(historyDateLayout)
	history := make([]models.PaymentHistoryRow, 0, len(records))
	for _, record := range records {
		row := models.PaymentHistoryRow{
			PaymentID:      record.PaymentID,
			CourseID:       record.CourseID,
			CourseName:     record.CourseName,
			Instructor:     unknownInstructor,
			Amount:         record.Price,
			OriginalAmount: record.OriginalAmount,
			Status:         paymentStatusFailed,
			Date:           today,
			PaymentMethod:  paymentLabelTransfer,
			TransactionID:  record.PaymentID.String(),
			PaidAt:         record.PaidAt,
		}
		if record.TrainerName != nil && *record.TrainerName != "" {
			row.Instructor = *record.TrainerName
		}
		if record.Status {
			row.Status = paymentStatusSuccess
		}
		if record.Method == paymentMethodCard {
			row.PaymentMethod = paymentLabelCard
		}
		if record.PaidAt != nil {
			row.Date = record.PaidAt.UTC().Format(historyDateLayout)
		}
		history = append(history, row)
	}
	return history, nil
}

func (s *PaymentService) resolveOrigin(origin string) (string, error) {
	origin = strings.TrimRight(strings.TrimSpace(origin), "/")
	if origin == "" {
		origin = s.defaultOrigin
	}
	parsed, err := url.Parse(origin)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return "", ErrInvalidInput
	}
	return origin, nil
}

func validAmount(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
