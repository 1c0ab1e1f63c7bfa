package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ttthanh1411/gym/internal/models"
	"github.com/ttthanh1411/gym/pkg/utils"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

const minPasswordLength = 8

// dummyPasswordHash is compared against when the email is unknown so both
// login failures cost one bcrypt comparison.
var dummyPasswordHash = sync.OnceValue(func() string {
	hash, err := utils.HashPassword("not-a-real-password")
	if err != nil {
		panic(err)
	}
	return hash
})

type customerAccountStore interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByEmail(ctx context.Context, email string) (*models.Customer, error)
}

type AuthService struct {
	customerRepo  customerAccountStore
	activity      ActivityPublisher
	jwtSecret     string
	checkPassword func(password, hash string) bool
}

func NewAuthService(customerRepo customerAccountStore, activity ActivityPublisher, jwtSecret string) *AuthService {
	return &AuthService{
		customerRepo:  customerRepo,
		activity:      publisherOrNoop(activity),
		jwtSecret:     jwtSecret,
		checkPassword: utils.CheckPassword,
	}
}

type RegisterInput struct {
	FullName        string
	Email           string
	Password        string
	ConfirmPassword string
	AgreeToTerms    bool
	Gender          string
	Phone           string
	Address         string
}

// ValidationError carries a message that is safe to show to the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// Register creates a regular, active customer and returns a signed token.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (string, *models.Customer, error) {
	if !input.AgreeToTerms {
		return "", nil, &ValidationError{Message: "You must agree to the terms of service"}
	}
	name := strings.TrimSpace(input.FullName)
	if name == "" {
		return "", nil, &ValidationError{Message: "Full name is required"}
	}
	parsedEmail, err := mail.ParseAddress(strings.TrimSpace(input.Email))
	if err != nil {
		return "", nil, &ValidationError{Message: "Invalid email format"}
	}
	if len(input.Password) < minPasswordLength {
		return "", nil, &ValidationError{Message: "Password must be at least 8 characters"}
	}
	if input.Password != input.ConfirmPassword {
		return "", nil, &ValidationError{Message: "Passwords do not match"}
	}
	gender, err := normalizeGender(input.Gender)
	if err != nil {
		return "", nil, &ValidationError{Message: "Invalid gender"}
	}

	email := strings.ToLower(parsedEmail.Address)
	if _, err := s.customerRepo.GetByEmail(ctx, email); err == nil {
		return "", nil, ErrConflict
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return "", nil, err
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return "", nil, err
	}

	customer := &models.Customer{
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
		Role:         models.RoleRegular,
		Status:       models.CustomerActive,
		Phone:        strings.TrimSpace(input.Phone),
		Address:      strings.TrimSpace(input.Address),
		Gender:       gender,
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		if isUniqueViolation(err) {
			return "", nil, ErrConflict
		}
		return "", nil, err
	}

	token, err := utils.GenerateToken(customer.ID.String(), models.RoleName(customer.Role), s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	s.activity.Publish(models.ActivityEvent{
		Type:        "customer",
		Title:       "New customer: " + customer.Name,
		Description: customer.Email,
		Timestamp:   time.Now().UTC(),
	})
	return token, customer, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.Customer, error) {
	parsedEmail, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return "", nil, &ValidationError{Message: "Invalid email format"}
	}

	customer, err := s.customerRepo.GetByEmail(ctx, strings.ToLower(parsedEmail.Address))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.checkPassword(password, dummyPasswordHash())
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !s.checkPassword(password, customer.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}
	if customer.Status != models.CustomerActive {
		return "", nil, ErrForbidden
	}

	token, err := utils.GenerateToken(customer.ID.String(), models.RoleName(customer.Role), s.jwtSecret)
	if err != nil {
		return "", nil, err
	}
	return token, customer, nil
}
