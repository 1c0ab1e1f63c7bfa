package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ttthanh1411/gym/internal/models"
	"github.com/ttthanh1411/gym/internal/repository"
)

type stubCourseRepo struct {
	current    *models.CourseListing
	getErr     error
	imageErr   error
	deleteErr  error
	deleted    bool
	lastCreate repository.CourseInput
	lastImage  string
}

func (r *stubCourseRepo) Create(_ context.Context, input repository.CourseInput) (*models.CourseListing, error) {
	r.lastCreate = input
	return &models.CourseListing{WorkoutCourse: models.WorkoutCourse{ID: uuid.New(), Name: input.Name, ScheduleIDs: input.ScheduleIDs}}, nil
}

func (r *stubCourseRepo) Update(_ context.Context, id uuid.UUID, input repository.CourseInput) (*models.CourseListing, error) {
	return &models.CourseListing{WorkoutCourse: models.WorkoutCourse{ID: id, Name: input.Name}}, nil
}

func (r *stubCourseRepo) UpdateImage(_ context.Context, id uuid.UUID, imageURL string) (*models.CourseListing, error) {
	r.lastImage = imageURL
	if r.imageErr != nil {
		return nil, r.imageErr
	}
	return &models.CourseListing{WorkoutCourse: models.WorkoutCourse{ID: id, ImageURL: imageURL}}, nil
}

func (r *stubCourseRepo) Delete(_ context.Context, _ uuid.UUID) (bool, error) {
	return r.deleted, r.deleteErr
}

func (r *stubCourseRepo) GetByID(_ context.Context, _ uuid.UUID) (*models.CourseListing, error) {
	return r.current, r.getErr
}

func (r *stubCourseRepo) List(_ context.Context) ([]models.CourseListing, error) {
	return nil, nil
}

type stubCatalogServiceRepo struct {
	missing bool
	created repository.CreateServiceInput
}

func (r *stubCatalogServiceRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Service, error) {
	if r.missing {
		return nil, pgx.ErrNoRows
	}
	return &models.Service{ID: id, Name: "Yoga"}, nil
}

func (r *stubCatalogServiceRepo) Create(_ context.Context, input repository.CreateServiceInput) (*models.Service, error) {
	r.created = input
	return &models.Service{ID: uuid.New(), Name: input.Name, Description: input.Description, Price: input.Price}, nil
}

func (r *stubCatalogServiceRepo) List(_ context.Context) ([]models.Service, error) {
	return nil, nil
}

type stubCustomerReader struct {
	customer *models.Customer
	err      error
}

func (r *stubCustomerReader) GetByID(_ context.Context, _ uuid.UUID) (*models.Customer, error) {
	return r.customer, r.err
}

type stubScheduleCounter struct {
	known   int
	lastIDs []uuid.UUID
}

func (r *stubScheduleCounter) CountExisting(_ context.Context, ids []uuid.UUID) (int, error) {
	r.lastIDs = ids
	if r.known < len(ids) {
		return r.known, nil
	}
	return len(ids), nil
}

type stubObjectStore struct {
	uploadURL   string
	uploadErr   error
	lastPath    string
	lastType    string
	deletedURLs []string
}

func (s *stubObjectStore) UploadFile(_ context.Context, _ []byte, contentType string, objectPath string) (string, error) {
	s.lastPath, s.lastType = objectPath, contentType
	return s.uploadURL, s.uploadErr
}

func (s *stubObjectStore) DeleteFile(_ context.Context, fileURL string) error {
	s.deletedURLs = append(s.deletedURLs, fileURL)
	return nil
}

func newTestCatalogService(courses *stubCourseRepo, trainer *models.Customer, schedules *stubScheduleCounter, storage StorageService) *CatalogService {
	return &CatalogService{
		courseRepo:     courses,
		serviceRepo:    &stubCatalogServiceRepo{},
		customerRepo:   &stubCustomerReader{customer: trainer},
		scheduleRepo:   schedules,
		storageService: storage,
	}
}

func trainerAccount() *models.Customer {
	return &models.Customer{ID: uuid.New(), Name: "Coach", Role: models.RoleTrainer}
}

func TestCreateCourseDeduplicatesSchedules(t *testing.T) {
	courses := &stubCourseRepo{}
	schedules := &stubScheduleCounter{known: 2}
	service := newTestCatalogService(courses, trainerAccount(), schedules, nil)

	first, second := uuid.New(), uuid.New()
	created, err := service.CreateCourse(context.Background(), CourseInput{
		Name:          " Strength 101 ",
		TrainerID:     uuid.New(),
		DurationWeeks: 6,
		Price:         500000,
		ServiceID:     uuid.New(),
		ScheduleIDs:   []uuid.UUID{first, second, first},
	})
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}
	if created.Name != "Strength 101" {
		t.Fatalf("expected trimmed name, got %q", created.Name)
	}
	if len(courses.lastCreate.ScheduleIDs) != 2 || courses.lastCreate.ScheduleIDs[0] != first || courses.lastCreate.ScheduleIDs[1] != second {
		t.Fatalf("expected ordered unique schedules, got %v", courses.lastCreate.ScheduleIDs)
	}
}

func TestCreateCourseValidation(t *testing.T) {
	start := time.Date(2030, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -1)
	base := CourseInput{Name: "Course", TrainerID: uuid.New(), DurationWeeks: 4, Price: 10, ServiceID: uuid.New()}

	cases := []struct {
		name      string
		mutate    func(*CourseInput)
		trainer   *models.Customer
		schedules *stubScheduleCounter
		service   *stubCatalogServiceRepo
	}{
		{"zero duration", func(in *CourseInput) { in.DurationWeeks = 0 }, trainerAccount(), &stubScheduleCounter{}, &stubCatalogServiceRepo{}},
		{"negative price", func(in *CourseInput) { in.Price = -1 }, trainerAccount(), &stubScheduleCounter{}, &stubCatalogServiceRepo{}},
		{"end before start", func(in *CourseInput) { in.StartDate, in.EndDate = &start, &end }, trainerAccount(), &stubScheduleCounter{}, &stubCatalogServiceRepo{}},
		{"trainer is not a trainer", func(*CourseInput) {}, &models.Customer{Role: models.RoleRegular}, &stubScheduleCounter{}, &stubCatalogServiceRepo{}},
		{"unknown service", func(*CourseInput) {}, trainerAccount(), &stubScheduleCounter{}, &stubCatalogServiceRepo{missing: true}},
		{"unknown schedule", func(in *CourseInput) { in.ScheduleIDs = []uuid.UUID{uuid.New(), uuid.New()} }, trainerAccount(), &stubScheduleCounter{known: 1}, &stubCatalogServiceRepo{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := base
			tc.mutate(&input)
			service := newTestCatalogService(&stubCourseRepo{}, tc.trainer, tc.schedules, nil)
			service.serviceRepo = tc.service

			if _, err := service.CreateCourse(context.Background(), input); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestCreateServiceTrimsDescription(t *testing.T) {
	repo := &stubCatalogServiceRepo{}
	service := newTestCatalogService(&stubCourseRepo{}, nil, &stubScheduleCounter{}, nil)
	service.serviceRepo = repo

	blank := "   "
	if _, err := service.CreateService(context.Background(), repository.CreateServiceInput{Name: " Zumba ", Description: &blank, Price: 30}); err != nil {
		t.Fatalf("CreateService: %v", err)
	}
	if repo.created.Name != "Zumba" || repo.created.Description != nil {
		t.Fatalf("unexpected input %+v", repo.created)
	}
	if _, err := service.CreateService(context.Background(), repository.CreateServiceInput{Name: ""}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestDeleteCourseReferencedByPayments(t *testing.T) {
	courses := &stubCourseRepo{deleteErr: &pgconn.PgError{Code: "23503"}}
	service := newTestCatalogService(courses, nil, &stubScheduleCounter{}, nil)

	if err := service.DeleteCourse(context.Background(), uuid.New()); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	courses.deleteErr = nil
	if err := service.DeleteCourse(context.Background(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestUploadCourseImageReplacesPreviousImage(t *testing.T) {
	courseID := uuid.New()
	courses := &stubCourseRepo{current: &models.CourseListing{WorkoutCourse: models.WorkoutCourse{ID: courseID, ImageURL: "https://cdn/old.png"}}}
	storage := &stubObjectStore{uploadURL: "https://cdn/new.png"}
	service := newTestCatalogService(courses, nil, &stubScheduleCounter{}, storage)

	updated, err := service.UploadCourseImage(context.Background(), courseID, pngHeader)
	if err != nil {
		t.Fatalf("UploadCourseImage: %v", err)
	}
	if updated.ImageURL != "https://cdn/new.png" || courses.lastImage != "https://cdn/new.png" {
		t.Fatalf("expected course to point at the new image, got %+v", updated)
	}
	if storage.lastType != "image/png" {
		t.Fatalf("expected image/png, got %q", storage.lastType)
	}
	if !strings.HasPrefix(storage.lastPath, "courses/"+courseID.String()+"/") || !strings.HasSuffix(storage.lastPath, ".png") {
		t.Fatalf("unexpected object path %q", storage.lastPath)
	}
	if len(storage.deletedURLs) != 1 || storage.deletedURLs[0] != "https://cdn/old.png" {
		t.Fatalf("expected the old image removed, got %v", storage.deletedURLs)
	}
}

func TestUploadCourseImageRejectsBadContent(t *testing.T) {
	storage := &stubObjectStore{}
	service := newTestCatalogService(&stubCourseRepo{current: &models.CourseListing{}}, nil, &stubScheduleCounter{}, storage)

	if _, err := service.UploadCourseImage(context.Background(), uuid.New(), []byte("plain text, not an image")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	oversized := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, maxCourseImageBytes)...)
	if _, err := service.UploadCourseImage(context.Background(), uuid.New(), oversized); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for oversized file, got %v", err)
	}
	if storage.lastPath != "" {
		t.Fatal("expected no upload")
	}

	service.storageService = nil
	if _, err := service.UploadCourseImage(context.Background(), uuid.New(), pngHeader); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestUploadCourseImageCleansUpOnFailedUpdate(t *testing.T) {
	courses := &stubCourseRepo{current: &models.CourseListing{}, imageErr: pgx.ErrNoRows}
	storage := &stubObjectStore{uploadURL: "https://cdn/orphan.png"}
	service := newTestCatalogService(courses, nil, &stubScheduleCounter{}, storage)

	if _, err := service.UploadCourseImage(context.Background(), uuid.New(), pngHeader); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(storage.deletedURLs) != 1 || storage.deletedURLs[0] != "https://cdn/orphan.png" {
		t.Fatalf("expected orphaned upload removed, got %v", storage.deletedURLs)
	}
}
