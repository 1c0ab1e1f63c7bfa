package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/ttthanh1411/gym/internal/models"
	"github.com/ttthanh1411/gym/internal/repository"
)

var (
	ErrForbidden              = errors.New("forbidden")
	ErrNotFound               = errors.New("not found")
	ErrConflict               = errors.New("conflict")
	ErrInvalidStatus          = errors.New("invalid status")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrInvalidInput           = errors.New("invalid input")
)

type appointmentStore interface {
	Create(ctx context.Context, input repository.CreateAppointmentInput) (*models.Appointment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Appointment, error)
	List(ctx context.Context, search string) ([]models.Appointment, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.CustomerAppointment, error)
	UpdateStatusIfCurrent(ctx context.Context, id uuid.UUID, current, next models.StatusCode) (*models.Appointment, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type statusReader interface {
	GetByCode(ctx context.Context, code models.StatusCode) (*models.Status, error)
}

type serviceReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Service, error)
}

// Actor is the authenticated caller.
type Actor struct {
	ID   uuid.UUID
	Role string
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleName(models.RoleAdmin)
}

// CanAccess reports whether the actor may act on data owned by ownerID.
func (a Actor) CanAccess(ownerID uuid.UUID) bool {
	return a.IsAdmin() || a.ID == ownerID
}

type AppointmentService struct {
	appointmentRepo appointmentStore
	statusRepo      statusReader
	serviceRepo     serviceReader
	activity        ActivityPublisher
}

func NewAppointmentService(
	appointmentRepo *repository.AppointmentRepository,
	statusRepo *repository.StatusRepository,
	serviceRepo *repository.ServiceRepository,
	activity ActivityPublisher,
) *AppointmentService {
	return &AppointmentService{
		appointmentRepo: appointmentRepo,
		statusRepo:      statusRepo,
		serviceRepo:     serviceRepo,
		activity:        publisherOrNoop(activity),
	}
}

type CreateAppointmentInput struct {
	Name       string
	Date       time.Time
	Time       string
	CustomerID uuid.UUID
	ServiceID  uuid.UUID
	ScheduleID *uuid.UUID
	Price      *float64
}

func (s *AppointmentService) Create(ctx context.Context, actor Actor, input CreateAppointmentInput) (*models.Appointment, error) {
	if !actor.CanAccess(input.CustomerID) {
		return nil, ErrForbidden
	}
	name := strings.TrimSpace(input.Name)
	if name == "" || input.Date.IsZero() || input.ServiceID == uuid.Nil || input.CustomerID == uuid.Nil {
		return nil, ErrInvalidInput
	}
	if !validClock(input.Time) {
		return nil, ErrInvalidInput
	}

	service, err := s.serviceRepo.GetByID(ctx, input.ServiceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidInput
		}
		return nil, err
	}
	price := service.Price
	if input.Price != nil {
		if !validAmount(*input.Price) || *input.Price < 0 {
			return nil, ErrInvalidInput
		}
		price = *input.Price
	}

	pending, err := s.statusRepo.GetByCode(ctx, models.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("resolve pending status: %w", err)
	}

	appointment, err := s.appointmentRepo.Create(ctx, repository.CreateAppointmentInput{
		Name:       name,
		Date:       input.Date.UTC(),
		Time:       input.Time,
		Price:      price,
		CustomerID: input.CustomerID,
		ServiceID:  input.ServiceID,
		ScheduleID: input.ScheduleID,
		StatusID:   pending.ID,
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, &ValidationError{Message: "Customer or schedule does not exist"}
		}
		return nil, err
	}

	s.activity.Publish(models.ActivityEvent{
		Type:        "appointment",
		Title:       "New appointment: " + appointment.Name,
		Description: service.Name,
		Timestamp:   time.Now().UTC(),
	})
	return appointment, nil
}

func (s *AppointmentService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.Appointment, error) {
	appointment, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if !actor.CanAccess(appointment.CustomerID) {
		return nil, ErrForbidden
	}
	return appointment, nil
}

func (s *AppointmentService) List(ctx context.Context, search string) ([]models.Appointment, error) {
	return s.appointmentRepo.List(ctx, search)
}

func (s *AppointmentService) ListForCustomer(ctx context.Context, actor Actor, customerID uuid.UUID) ([]models.CustomerAppointment, error) {
	if !actor.CanAccess(customerID) {
		return nil, ErrForbidden
	}
	return s.appointmentRepo.ListByCustomer(ctx, customerID)
}

func (s *AppointmentService) UpdateStatus(
	ctx context.Context,
	actor Actor,
	id uuid.UUID,
	requestedStatus string,
) (*models.Appointment, error) {
	appointment, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if !actor.CanAccess(appointment.CustomerID) {
		return nil, ErrForbidden
	}

	next, err := normalizeRequestedStatus(requestedStatus)
	if err != nil {
		return nil, err
	}
	if err := validateStatusTransition(actor, appointment.Status, next); err != nil {
		return nil, err
	}

	updated, err := s.appointmentRepo.UpdateStatusIfCurrent(ctx, id, appointment.Status, next)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}

	s.activity.Publish(models.ActivityEvent{
		Type:        "appointment",
		Title:       "Appointment " + string(next) + ": " + updated.Name,
		Description: string(appointment.Status) + " -> " + string(next),
		Timestamp:   time.Now().UTC(),
	})
	return updated, nil
}

func (s *AppointmentService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.appointmentRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

func normalizeRequestedStatus(status string) (models.StatusCode, error) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "pending":
		return models.StatusPending, nil
	case "confirm", "confirmed":
		return models.StatusConfirmed, nil
	case "complete", "completed":
		return models.StatusCompleted, nil
	case "cancel", "cancelled", "canceled":
		return models.StatusCancelled, nil
	default:
		return "", ErrInvalidStatus
	}
}

// validateStatusTransition allows staff to move pending -> confirmed ->
// completed and to cancel anything not yet terminal. Owners may only cancel.
func validateStatusTransition(actor Actor, current, next models.StatusCode) error {
	if current.Terminal() {
		return ErrInvalidStateTransition
	}
	if !actor.IsAdmin() {
		if next != models.StatusCancelled {
			return ErrForbidden
		}
		return nil
	}
	switch next {
	case models.StatusConfirmed:
		if current != models.StatusPending {
			return ErrInvalidStateTransition
		}
	case models.StatusCompleted:
		if current != models.StatusConfirmed {
			return ErrInvalidStateTransition
		}
	case models.StatusCancelled:
	default:
		return ErrInvalidStateTransition
	}
	return nil
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, ErrInvalidInput
	}
	return id, nil
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// validClock accepts 24h "HH:MM".
func validClock(value string) bool {
	_, err := time.Parse("15:04", value)
	return err == nil && len(value) == 5
}
