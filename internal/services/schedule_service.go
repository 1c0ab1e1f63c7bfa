package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/ttthanh1411/gym/internal/models"
	"github.com/ttthanh1411/gym/internal/repository"
)

type scheduleStore interface {
	Create(ctx context.Context, input repository.ScheduleInput) (*models.Schedule, error)
	Update(ctx context.Context, id uuid.UUID, input repository.ScheduleInput) (*models.Schedule, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context, keyword string) ([]models.Schedule, error)
}

type ScheduleService struct {
	scheduleRepo scheduleStore
}

func NewScheduleService(scheduleRepo *repository.ScheduleRepository) *ScheduleService {
	return &ScheduleService{scheduleRepo: scheduleRepo}
}

func (s *ScheduleService) List(ctx context.Context, keyword string) ([]models.Schedule, error) {
	return s.scheduleRepo.List(ctx, keyword)
}

func (s *ScheduleService) Create(ctx context.Context, input repository.ScheduleInput) (*models.Schedule, error) {
	normalized, err := normalizeSchedule(input)
	if err != nil {
		return nil, err
	}
	return s.scheduleRepo.Create(ctx, normalized)
}

func (s *ScheduleService) Update(ctx context.Context, id uuid.UUID, input repository.ScheduleInput) (*models.Schedule, error) {
	normalized, err := normalizeSchedule(input)
	if err != nil {
		return nil, err
	}
	schedule, err := s.scheduleRepo.Update(ctx, id, normalized)
	if err != nil {
		return nil, notFound(err)
	}
	return schedule, nil
}

func (s *ScheduleService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.scheduleRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

func normalizeSchedule(input repository.ScheduleInput) (repository.ScheduleInput, error) {
	input.DayOfWeek = strings.TrimSpace(input.DayOfWeek)
	input.StartTime = strings.TrimSpace(input.StartTime)
	input.EndTime = strings.TrimSpace(input.EndTime)
	if input.DayOfWeek == "" || input.MaxParticipants <= 0 {
		return input, ErrInvalidInput
	}
	if !validClock(input.StartTime) || !validClock(input.EndTime) {
		return input, ErrInvalidInput
	}
	// Zero-padded HH:MM compares correctly as text.
	if input.EndTime <= input.StartTime {
		return input, ErrInvalidInput
	}
	return input, nil
}
