package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"inventory-api/internal/domain"
	"inventory-api/internal/repository"
)

// dummyHash is compared against when the username is unknown so a failed login
// costs the same whether or not the account exists.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("inventory-dummy-password"), bcrypt.DefaultCost)

// bcrypt only looks at the first 72 bytes and x/crypto rejects anything longer.
const maxPasswordBytes = 72

// UserService describes user lifecycle operations.
type UserService interface {
	Register(ctx context.Context, username, password, email string) (*domain.User, error)
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
}

type userService struct {
	users    repository.UserRepository
	validate *validator.Validate
	cost     int
}

func NewUserService(users repository.UserRepository) UserService {
	return newUserService(users, bcrypt.DefaultCost)
}

// NewUserServiceWithCost is NewUserService with an explicit bcrypt cost.
func NewUserServiceWithCost(users repository.UserRepository, cost int) UserService {
	return newUserService(users, cost)
}

func newUserService(users repository.UserRepository, cost int) *userService {
	return &userService{
		users:    users,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		cost:     cost,
	}
}

type registration struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
	Email    string `validate:"required,email"`
}

func (s *userService) Register(ctx context.Context, username, password, email string) (*domain.User, error) {
	reg := registration{
		Username: strings.TrimSpace(username),
		Password: password,
		Email:    strings.ToLower(strings.TrimSpace(email)),
	}
	if strings.TrimSpace(reg.Password) == "" {
		reg.Password = ""
	}
	if err := s.validate.Struct(reg); err != nil {
		return nil, registrationError(err)
	}
	if len(reg.Password) > maxPasswordBytes {
		return nil, invalid("Password must be at most %d bytes", maxPasswordBytes)
	}

	if _, err := s.users.GetByUsername(ctx, reg.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if _, err := s.users.GetByEmail(ctx, reg.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     reg.Username,
		Email:        reg.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	if _, err := s.users.Create(ctx, user); err != nil {
		// lost a race against a concurrent registration
		if errors.Is(err, domain.ErrConflict) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	return sanitizeUser(user), nil
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return sanitizeUser(user), nil
}

func registrationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate registration: %w", err)
	}
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			return invalid("Missing required fields")
		}
	}
	return invalid("Invalid email address")
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}
