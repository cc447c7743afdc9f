package service

import (
	"context"
	"errors"
	"strings"

	"yatube/internal/models"
	"yatube/internal/repository"
	"yatube/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// SignupForm is the registration payload.
type SignupForm struct {
	Username  string `form:"username" json:"username" validate:"required,username"`
	Password  string `form:"password" json:"password" validate:"required,password"`
	FirstName string `form:"first_name" json:"first_name" validate:"max=150"`
	LastName  string `form:"last_name" json:"last_name" validate:"max=150"`
}

// LoginForm is the login payload.
type LoginForm struct {
	Username string `form:"username" json:"username" validate:"required"`
	Password string `form:"password" json:"password" validate:"required"`
}

var errInvalidCredentials = models.NewUnauthorizedError("Please enter a correct username and password.")

// AccountService registers and authenticates users.
type AccountService struct {
	users repository.UserRepository
	cost  int
}

// NewAccountService returns an AccountService hashing with bcrypt.DefaultCost.
func NewAccountService(users repository.UserRepository) *AccountService {
	return &AccountService{users: users, cost: bcrypt.DefaultCost}
}

// WithHashCost overrides the bcrypt cost, for tests and seeding.
func (s *AccountService) WithHashCost(cost int) *AccountService {
	s.cost = cost
	return s
}

// Signup validates the form and creates the user with a hashed password.
func (s *AccountService) Signup(ctx context.Context, form SignupForm) (*models.User, error) {
	form.Username = strings.TrimSpace(form.Username)
	form.FirstName = strings.TrimSpace(form.FirstName)
	form.LastName = strings.TrimSpace(form.LastName)
	if err := validation.Struct(form); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), s.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, models.NewFieldValidationError(map[string]string{"password": "Password is too long."})
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:  form.Username,
		Password:  string(hash),
		FirstName: form.FirstName,
		LastName:  form.LastName,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks the credentials. Unknown users and wrong passwords
// fail with the same Unauthorized error.
func (s *AccountService) Authenticate(ctx context.Context, form LoginForm) (*models.User, error) {
	form.Username = strings.TrimSpace(form.Username)
	if err := validation.Struct(form); err != nil {
		return nil, err
	}

	user, err := s.users.GetByUsername(ctx, form.Username)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(form.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, errInvalidCredentials
		}
		return nil, models.NewInternalError(err)
	}
	return user, nil
}

// GetByID loads a user.
func (s *AccountService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}
