package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/ttthanh1411/gym/internal/models"
	"github.com/ttthanh1411/gym/internal/repository"
)

type customerStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	List(ctx context.Context, filter repository.CustomerListFilter) ([]models.Customer, int, error)
	ListByRole(ctx context.Context, role int) ([]models.CustomerOption, error)
	Update(ctx context.Context, id uuid.UUID, input repository.UpdateCustomerInput) (*models.Customer, error)
	UpdateBodyMetrics(ctx context.Context, id uuid.UUID, heightCM, weightKG float64) (*models.Customer, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type CustomerService struct {
	customerRepo customerStore
}

func NewCustomerService(customerRepo *repository.CustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

type UpdateCustomerInput struct {
	Name    *string
	Phone   *string
	Address *string
	Gender  *string
	Role    *int
	Status  *int
}

func (s *CustomerService) List(ctx context.Context, filter repository.CustomerListFilter) ([]models.Customer, int, error) {
	return s.customerRepo.List(ctx, filter)
}

func (s *CustomerService) TrainerOptions(ctx context.Context) ([]models.CustomerOption, error) {
	return s.customerRepo.ListByRole(ctx, models.RoleTrainer)
}

func (s *CustomerService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.Customer, error) {
	if !actor.CanAccess(id) {
		return nil, ErrForbidden
	}
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return customer, nil
}

// Update applies the provided fields. Role and status changes need an admin.
func (s *CustomerService) Update(ctx context.Context, actor Actor, id uuid.UUID, input UpdateCustomerInput) (*models.Customer, error) {
	if !actor.CanAccess(id) {
		return nil, ErrForbidden
	}
	if (input.Role != nil || input.Status != nil) && !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	current, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	update := repository.UpdateCustomerInput{
		Name:    current.Name,
		Phone:   current.Phone,
		Address: current.Address,
		Gender:  current.Gender,
		Role:    current.Role,
		Status:  current.Status,
	}
	if input.Name != nil {
		update.Name = strings.TrimSpace(*input.Name)
		if update.Name == "" {
			return nil, ErrInvalidInput
		}
	}
	if input.Phone != nil {
		update.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.Address != nil {
		update.Address = strings.TrimSpace(*input.Address)
	}
	if input.Gender != nil {
		gender, err := normalizeGender(*input.Gender)
		if err != nil {
			return nil, err
		}
		update.Gender = gender
	}
	if input.Role != nil {
		switch *input.Role {
		case models.RoleAdmin, models.RoleRegular, models.RoleTrainer:
			update.Role = *input.Role
		default:
			return nil, ErrInvalidInput
		}
	}
	if input.Status != nil {
		if *input.Status != models.CustomerActive && *input.Status != models.CustomerInactive {
			return nil, ErrInvalidInput
		}
		update.Status = *input.Status
	}

	updated, err := s.customerRepo.Update(ctx, id, update)
	if err != nil {
		return nil, notFound(err)
	}
	return updated, nil
}

func (s *CustomerService) UpdateBodyMetrics(ctx context.Context, actor Actor, heightCM, weightKG float64) (*models.Customer, error) {
	if !validAmount(heightCM) || !validAmount(weightKG) || heightCM <= 0 || weightKG <= 0 {
		return nil, ErrInvalidInput
	}
	customer, err := s.customerRepo.UpdateBodyMetrics(ctx, actor.ID, heightCM, weightKG)
	if err != nil {
		return nil, notFound(err)
	}
	return customer, nil
}

func (s *CustomerService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.customerRepo.Delete(ctx, id)
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

func normalizeGender(value string) (*string, error) {
	gender := strings.ToLower(strings.TrimSpace(value))
	switch gender {
	case "":
		return nil, nil
	case "male", "female", "other":
		return &gender, nil
	default:
		return nil, ErrInvalidInput
	}
}
