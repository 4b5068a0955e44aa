package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/Akshaygupta0409/school-payments-microservice/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// UserRepository is interface for interacting with user-related data
type UserRepository interface {
	// CreateUser inserts new user to database
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	// GetUserByEmail returns user by email
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUserByID returns user by id
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// UserService implements user registration
type UserService struct {
	repo UserRepository
}

// NewUserService creates new UserService instance
func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

// Register creates new user with hashed password. The returned user never
// carries the hash.
func (us *UserService) Register(ctx context.Context, email, password, role string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) {
		return nil, models.ErrInvalidEmail
	}
	if password == "" {
		return nil, models.ErrInvalidCredentials
	}

	switch role {
	case models.RoleAdmin, models.RoleSchool, models.RoleTrustee:
	case "":
		role = models.RoleTrustee
	default:
		return nil, models.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}

	user, err = us.repo.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

// AuthService implements user login
type AuthService struct {
	repo UserRepository
	ts   TokenService
}

// NewAuthService creates new AuthService instance
func NewAuthService(repo UserRepository, ts TokenService) *AuthService {
	return &AuthService{
		repo: repo,
		ts:   ts,
	}
}

// Login verifies credentials and returns a signed bearer token
func (as *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := as.repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, models.ErrDataNotFound) {
			return "", models.ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", models.ErrInvalidCredentials
	}

	return as.ts.CreateToken(user)
}
