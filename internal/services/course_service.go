package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ttthanh1411/gym/internal/models"
	"github.com/ttthanh1411/gym/internal/repository"
)

var ErrStorageUnavailable = errors.New("storage service is not configured")

const maxCourseImageBytes = 5 << 20

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type courseStore interface {
	Create(ctx context.Context, input repository.CourseInput) (*models.CourseListing, error)
	Update(ctx context.Context, id uuid.UUID, input repository.CourseInput) (*models.CourseListing, error)
	UpdateImage(ctx context.Context, id uuid.UUID, imageURL string) (*models.CourseListing, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.CourseListing, error)
	List(ctx context.Context) ([]models.CourseListing, error)
}

type serviceStore interface {
	serviceReader
	Create(ctx context.Context, input repository.CreateServiceInput) (*models.Service, error)
	List(ctx context.Context) ([]models.Service, error)
}

type customerReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
}

type scheduleCounter interface {
	CountExisting(ctx context.Context, ids []uuid.UUID) (int, error)
}

type CatalogService struct {
	courseRepo     courseStore
	serviceRepo    serviceStore
	customerRepo   customerReader
	scheduleRepo   scheduleCounter
	storageService StorageService
}

func NewCatalogService(
	courseRepo *repository.CourseRepository,
	serviceRepo *repository.ServiceRepository,
	customerRepo *repository.CustomerRepository,
	scheduleRepo *repository.ScheduleRepository,
	storageService StorageService,
) *CatalogService {
	return &CatalogService{
		courseRepo:     courseRepo,
		serviceRepo:    serviceRepo,
		customerRepo:   customerRepo,
		scheduleRepo:   scheduleRepo,
		storageService: storageService,
	}
}

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

func (s *CatalogService) ListServices(ctx context.Context) ([]models.Service, error) {
	return s.serviceRepo.List(ctx)
}

func (s *CatalogService) CreateService(ctx context.Context, input repository.CreateServiceInput) (*models.Service, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" || !validAmount(input.Price) || input.Price < 0 {
		return nil, ErrInvalidInput
	}
	if input.Description != nil {
		trimmed := strings.TrimSpace(*input.Description)
		if trimmed == "" {
			input.Description = nil
		} else {
			input.Description = &trimmed
		}
	}
	return s.serviceRepo.Create(ctx, input)
}

func (s *CatalogService) ListCourses(ctx context.Context) ([]models.CourseListing, error) {
	return s.courseRepo.List(ctx)
}

func (s *CatalogService) GetCourse(ctx context.Context, id uuid.UUID) (*models.CourseListing, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return course, nil
}

func (s *CatalogService) CreateCourse(ctx context.Context, input CourseInput) (*models.CourseListing, error) {
	normalized, err := s.validateCourse(ctx, input)
	if err != nil {
		return nil, err
	}
	return s.courseRepo.Create(ctx, normalized)
}

func (s *CatalogService) UpdateCourse(ctx context.Context, id uuid.UUID, input CourseInput) (*models.CourseListing, error) {
	normalized, err := s.validateCourse(ctx, input)
	if err != nil {
		return nil, err
	}
	course, err := s.courseRepo.Update(ctx, id, normalized)
	if err != nil {
		return nil, notFound(err)
	}
	return course, nil
}

func (s *CatalogService) DeleteCourse(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.courseRepo.Delete(ctx, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrConflict
		}
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

// UploadCourseImage stores the image and points the course at it. The
// previous image is removed once the course row is updated.
func (s *CatalogService) UploadCourseImage(ctx context.Context, id uuid.UUID, content []byte) (*models.CourseListing, error) {
	if s.storageService == nil {
		return nil, ErrStorageUnavailable
	}
	if len(content) == 0 || len(content) > maxCourseImageBytes {
		return nil, ErrInvalidInput
	}
	contentType := http.DetectContentType(content)
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return nil, ErrInvalidInput
	}

	current, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	objectPath := fmt.Sprintf("courses/%s/%s%s", id, uuid.NewString(), ext)
	imageURL, err := s.storageService.UploadFile(ctx, content, contentType, objectPath)
	if err != nil {
		return nil, err
	}

	updated, err := s.courseRepo.UpdateImage(ctx, id, imageURL)
	if err != nil {
		if deleteErr := s.storageService.DeleteFile(ctx, imageURL); deleteErr != nil {
			log.Printf("cleanup course image %s: %v", imageURL, deleteErr)
		}
		return nil, notFound(err)
	}

	if current.ImageURL != "" && current.ImageURL != imageURL {
		if err := s.storageService.DeleteFile(ctx, current.ImageURL); err != nil {
			log.Printf("delete previous course image %s: %v", current.ImageURL, err)
		}
	}
	return updated, nil
}

func (s *CatalogService) validateCourse(ctx context.Context, input CourseInput) (repository.CourseInput, error) {
	out := repository.CourseInput{
		Name:          strings.TrimSpace(input.Name),
		ImageURL:      strings.TrimSpace(input.ImageURL),
		TrainerID:     input.TrainerID,
		DurationWeeks: input.DurationWeeks,
		Description:   strings.TrimSpace(input.Description),
		Price:         input.Price,
		ServiceID:     input.ServiceID,
		StartDate:     input.StartDate,
		EndDate:       input.EndDate,
	}
	if out.Name == "" || out.DurationWeeks <= 0 || !validAmount(out.Price) || out.Price < 0 {
		return out, ErrInvalidInput
	}
	if out.StartDate != nil && out.EndDate != nil && out.EndDate.Before(*out.StartDate) {
		return out, ErrInvalidInput
	}

	trainer, err := s.customerRepo.GetByID(ctx, out.TrainerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return out, ErrInvalidInput
		}
		return out, err
	}
	if trainer.Role != models.RoleTrainer {
		return out, ErrInvalidInput
	}

	if _, err := s.serviceRepo.GetByID(ctx, out.ServiceID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return out, ErrInvalidInput
		}
		return out, err
	}

	seen := make(map[uuid.UUID]bool, len(input.ScheduleIDs))
	for _, scheduleID := range input.ScheduleIDs {
		if scheduleID == uuid.Nil {
			return out, ErrInvalidInput
		}
		if !seen[scheduleID] {
			seen[scheduleID] = true
			out.ScheduleIDs = append(out.ScheduleIDs, scheduleID)
		}
	}
	if len(out.ScheduleIDs) > 0 {
		count, err := s.scheduleRepo.CountExisting(ctx, out.ScheduleIDs)
		if err != nil {
			return out, err
		}
		if count != len(out.ScheduleIDs) {
			return out, ErrInvalidInput
		}
	}
	return out, nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
