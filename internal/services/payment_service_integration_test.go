package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/ttthanh1411/gym/internal/models"
	"github.com/ttthanh1411/gym/internal/repository"
)

var (
	testDBOnce sync.Once
	testDBPool *pgxpool.Pool
	testDBErr  error
)

type purchaseFixture struct {
	customerID uuid.UUID
	trainerID  uuid.UUID
	serviceID  uuid.UUID
	scheduleA  uuid.UUID
	scheduleB  uuid.UUID
	courseA    uuid.UUID
	courseB    uuid.UUID
}

func TestPaymentServiceCheckoutFlow(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	fixture := createPurchaseFixture(t, ctx, pool)
	t.Cleanup(func() { cleanupPurchaseFixture(t, ctx, pool, fixture) })

	service := NewPaymentService(repository.NewPaymentRepository(pool), nil, nil, "http://localhost:3000")

	result, err := service.SavePayment(ctx, SavePaymentInput{
		Items: []SavePaymentItem{
			{CourseID: fixture.courseA.String(), Price: 100},
			{CourseID: fixture.courseB.String(), Price: 200},
		},
		CustomerID:     fixture.customerID.String(),
		IdempotencyKey: "itest-" + uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("SavePayment: %v", err)
	}
	if result.Payment.Amount != 300 || !result.Payment.Status || len(result.Details) != 2 {
		t.Fatalf("unexpected payment %+v with %d details", result.Payment, len(result.Details))
	}

	courses, err := service.GetMyCourses(ctx, fixture.customerID)
	if err != nil {
		t.Fatalf("GetMyCourses: %v", err)
	}
	if len(courses) != 2 {
		t.Fatalf("expected 2 purchased courses, got %d", len(courses))
	}

	schedules, err := service.GetMySchedules(ctx, fixture.customerID)
	if err != nil {
		t.Fatalf("GetMySchedules: %v", err)
	}
	if len(schedules) != 2 {
		t.Fatalf("expected 2 schedule groups, got %d", len(schedules))
	}
	for _, group := range schedules {
		if group.TeacherName != "Integration Trainer" {
			t.Fatalf("expected trainer name, got %q", group.TeacherName)
		}
	}

	history, err := service.GetPaymentHistory(ctx, fixture.customerID)
	if err != nil {
		t.Fatalf("GetPaymentHistory: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 history rows, got %d", len(history))
	}
	for _, row := range history {
		if row.PaymentID != result.Payment.ID || row.Status != "completed" {
			t.Fatalf("unexpected history row %+v", row)
		}
	}
}

func TestPaymentServiceIdempotentSave(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	fixture := createPurchaseFixture(t, ctx, pool)
	t.Cleanup(func() { cleanupPurchaseFixture(t, ctx, pool, fixture) })

	service := NewPaymentService(repository.NewPaymentRepository(pool), nil, nil, "http://localhost:3000")
	input := SavePaymentInput{
		Items:          []SavePaymentItem{{CourseID: fixture.courseA.String(), Price: 100}},
		CustomerID:     fixture.customerID.String(),
		IdempotencyKey: "itest-" + uuid.NewString(),
	}

	var wg sync.WaitGroup
	results := make([]*SavePaymentResult, 4)
	errs := make([]error, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = service.SavePayment(ctx, input)
		}(i)
	}
	wg.Wait()

	fresh := 0
	for i, err := range errs {
		if err != nil {
			t.Fatalf("SavePayment #%d: %v", i, err)
		}
		if !results[i].Duplicate {
			fresh++
		}
		if results[i].Payment.ID != results[0].Payment.ID {
			t.Fatalf("expected every call to return payment %s, got %s", results[0].Payment.ID, results[i].Payment.ID)
		}
		if len(results[i].Details) != 1 {
			t.Fatalf("expected 1 detail, got %d", len(results[i].Details))
		}
	}
	if fresh != 1 {
		t.Fatalf("expected exactly one fresh payment, got %d", fresh)
	}

	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM payments WHERE customer_id = $1", fixture.customerID).Scan(&count); err != nil {
		t.Fatalf("count payments: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 stored payment, got %d", count)
	}
}

func TestPaymentHistoryOrderAndUnpaidExclusion(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	fixture := createPurchaseFixture(t, ctx, pool)
	t.Cleanup(func() { cleanupPurchaseFixture(t, ctx, pool, fixture) })

	insertPayment := func(status bool, paidAt *time.Time, courseID uuid.UUID, price float64) uuid.UUID {
		t.Helper()
		var paymentID uuid.UUID
		if err := pool.QueryRow(ctx, `
			INSERT INTO payments (amount, customer_id, status, paid_at, method)
			VALUES ($1, $2, $3, $4, TRUE)
			RETURNING id
		`, price, fixture.customerID, status, paidAt).Scan(&paymentID); err != nil {
			t.Fatalf("insert payment: %v", err)
		}
		if _, err := pool.Exec(ctx, `
			INSERT INTO payment_details (payment_id, course_id, price, customer_id)
			VALUES ($1, $2, $3, $4)
		`, paymentID, courseID, price, fixture.customerID); err != nil {
			t.Fatalf("insert payment detail: %v", err)
		}
		return paymentID
	}

	january := time.Date(2030, 1, 15, 9, 0, 0, 0, time.UTC)
	march := time.Date(2030, 3, 15, 9, 0, 0, 0, time.UTC)
	older := insertPayment(true, &january, fixture.courseA, 100)
	unpaid := insertPayment(false, nil, fixture.courseA, 100)
	newer := insertPayment(true, &march, fixture.courseB, 200)

	service := NewPaymentService(repository.NewPaymentRepository(pool), nil, nil, "http://localhost:3000")

	history, err := service.GetPaymentHistory(ctx, fixture.customerID)
	if err != nil {
		t.Fatalf("GetPaymentHistory: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 history rows, got %d", len(history))
	}
	wantOrder := []struct {
		paymentID uuid.UUID
		status    string
		date      string
	}{
		{newer, "completed", "2030-03-15"},
		{older, "completed", "2030-01-15"},
		{unpaid, "failed", ""},
	}
	for i, want := range wantOrder {
		row := history[i]
		if row.PaymentID != want.paymentID || row.Status != want.status {
			t.Fatalf("history[%d]: expected payment %s (%s), got %s (%s)", i, want.paymentID, want.status, row.PaymentID, row.Status)
		}
		if want.date != "" && row.Date != want.date {
			t.Fatalf("history[%d]: expected date %s, got %s", i, want.date, row.Date)
		}
	}

	courses, err := service.GetMyCourses(ctx, fixture.customerID)
	if err != nil {
		t.Fatalf("GetMyCourses: %v", err)
	}
	if len(courses) != 2 {
		t.Fatalf("expected the unpaid payment to add no courses, got %d entries", len(courses))
	}
	if courses[0].CourseID != fixture.courseB || courses[1].CourseID != fixture.courseA {
		t.Fatalf("expected the newest purchase first, got %s then %s", courses[0].CourseID, courses[1].CourseID)
	}
}

func TestPaymentServiceKeyScopeAndUnknownCourse(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	fixture := createPurchaseFixture(t, ctx, pool)
	otherCustomer := uuid.New()
	t.Cleanup(func() {
		if _, err := pool.Exec(ctx, "DELETE FROM payments WHERE customer_id = $1", otherCustomer); err != nil {
			t.Errorf("cleanup other customer payments: %v", err)
		}
		cleanupPurchaseFixture(t, ctx, pool, fixture)
	})

	service := NewPaymentService(repository.NewPaymentRepository(pool), nil, nil, "http://localhost:3000")
	key := "itest-" + uuid.NewString()

	first, err := service.SavePayment(ctx, SavePaymentInput{
		Items:          []SavePaymentItem{{CourseID: fixture.courseA.String(), Price: 100}},
		CustomerID:     fixture.customerID.String(),
		IdempotencyKey: key,
	})
	if err != nil {
		t.Fatalf("SavePayment: %v", err)
	}
	second, err := service.SavePayment(ctx, SavePaymentInput{
		Items:          []SavePaymentItem{{CourseID: fixture.courseB.String(), Price: 200}},
		CustomerID:     otherCustomer.String(),
		IdempotencyKey: key,
	})
	if err != nil {
		t.Fatalf("SavePayment for another customer: %v", err)
	}
	if second.Duplicate || second.Payment.ID == first.Payment.ID || second.Payment.Amount != 200 {
		t.Fatalf("expected a separate payment for the other customer, got %+v", second.Payment)
	}

	_, err = service.SavePayment(ctx, SavePaymentInput{
		Items:          []SavePaymentItem{{CourseID: fixture.courseA.String(), Price: 900}},
		CustomerID:     fixture.customerID.String(),
		IdempotencyKey: key,
	})
	if !errors.Is(err, ErrIdempotencyConflict) {
		t.Fatalf("expected ErrIdempotencyConflict, got %v", err)
	}

	_, err = service.SavePayment(ctx, SavePaymentInput{
		Items:      []SavePaymentItem{{CourseID: uuid.NewString(), Price: 10}},
		CustomerID: fixture.customerID.String(),
	})
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected a validation error for an unknown course, got %v", err)
	}
}

func integrationTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	testDBOnce.Do(func() {
		_ = godotenv.Load(".env")
		_ = godotenv.Load(filepath.Join("..", "..", ".env"))

		dbURL := os.Getenv("DB_URL")
		if dbURL == "" {
			testDBErr = fmt.Errorf("DB_URL is not set")
			return
		}

		cfg, err := pgxpool.ParseConfig(dbURL)
		if err != nil {
			testDBErr = err
			return
		}

		testDBPool, testDBErr = pgxpool.NewWithConfig(context.Background(), cfg)
		if testDBErr != nil {
			return
		}
		testDBErr = testDBPool.Ping(context.Background())
	})

	if testDBErr != nil {
		t.Skipf("skipping integration test: %v", testDBErr)
	}
	return testDBPool
}

func createPurchaseFixture(t *testing.T, ctx context.Context, pool *pgxpool.Pool) purchaseFixture {
	t.Helper()

	customerRepo := repository.NewCustomerRepository(pool)
	newAccount := func(name string, role int) uuid.UUID {
		customer := &models.Customer{
			Name:         name,
			Email:        fmt.Sprintf("payment-test-%d-%d@example.com", role, time.Now().UnixNano()),
			PasswordHash: "test-hash",
			Role:         role,
			Status:       models.CustomerActive,
		}
		if err := customerRepo.Create(ctx, customer); err != nil {
			t.Fatalf("Create customer %s: %v", name, err)
		}
		return customer.ID
	}

	var fixture purchaseFixture
	fixture.customerID = newAccount("Integration Customer", models.RoleRegular)
	fixture.trainerID = newAccount("Integration Trainer", models.RoleTrainer)

	service, err := repository.NewServiceRepository(pool).Create(ctx, repository.CreateServiceInput{Name: "Yoga", Price: 50})
	if err != nil {
		t.Fatalf("Create service: %v", err)
	}
	fixture.serviceID = service.ID

	scheduleRepo := repository.NewScheduleRepository(pool)
	for _, target := range []*uuid.UUID{&fixture.scheduleA, &fixture.scheduleB} {
		schedule, err := scheduleRepo.Create(ctx, repository.ScheduleInput{
			DayOfWeek:       "Monday",
			StartTime:       "07:00",
			EndTime:         "08:00",
			MaxParticipants: 10,
		})
		if err != nil {
			t.Fatalf("Create schedule: %v", err)
		}
		*target = schedule.ID
	}

	courseRepo := repository.NewCourseRepository(pool)
	courseA, err := courseRepo.Create(ctx, repository.CourseInput{
		Name: "Course A", TrainerID: fixture.trainerID, DurationWeeks: 4, Price: 100,
		ServiceID: fixture.serviceID, ScheduleIDs: []uuid.UUID{fixture.scheduleA},
	})
	if err != nil {
		t.Fatalf("Create course A: %v", err)
	}
	courseB, err := courseRepo.Create(ctx, repository.CourseInput{
		Name: "Course B", TrainerID: fixture.trainerID, DurationWeeks: 8, Price: 200,
		ServiceID: fixture.serviceID, ScheduleIDs: []uuid.UUID{fixture.scheduleA, fixture.scheduleB},
	})
	if err != nil {
		t.Fatalf("Create course B: %v", err)
	}
	fixture.courseA, fixture.courseB = courseA.ID, courseB.ID
	return fixture
}

func cleanupPurchaseFixture(t *testing.T, ctx context.Context, pool *pgxpool.Pool, fixture purchaseFixture) {
	t.Helper()

	courses := []uuid.UUID{fixture.courseA, fixture.courseB}
	statements := []struct {
		query string
		args  []any
	}{
		{"DELETE FROM payments WHERE customer_id = $1", []any{fixture.customerID}},
		{"DELETE FROM workout_courses WHERE id = ANY($1)", []any{courses}},
		{"DELETE FROM schedules WHERE id = ANY($1)", []any{[]uuid.UUID{fixture.scheduleA, fixture.scheduleB}}},
		{"DELETE FROM services WHERE id = $1", []any{fixture.serviceID}},
		{"DELETE FROM customers WHERE id = ANY($1)", []any{[]uuid.UUID{fixture.customerID, fixture.trainerID}}},
	}
	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt.query, stmt.args...); err != nil {
			t.Fatalf("cleanup %q: %v", stmt.query, err)
		}
	}
}
