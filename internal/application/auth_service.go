package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	userDomain "github.com/ridecab/service-ride/internal/domain/user"
	"github.com/ridecab/service-ride/internal/platform/apperror"
	"github.com/ridecab/service-ride/internal/platform/auth"
)

// Demo account seeded in development.
const (
	DemoEmail    = "demo@test.com"
	DemoPassword = "password123"
	DemoName     = "Demo User"
)

const (
	msgCredentialsRequired = "Email and password required"
	msgInvalidCredentials  = "Invalid credentials"
	msgUserExists          = "User already exists"
	msgNoToken             = "No token provided"
	msgTokenExpired        = "Token expired"
	msgInvalidToken        = "Invalid token"
)

// RegisterRequest holds the data needed to create an account.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest holds rider credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserDTO is the public view of an account.
type UserDTO struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// AuthDTO is returned by login and registration.
type AuthDTO struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

// AuthService handles rider registration, login and token verification.
type AuthService struct {
	repo       userDomain.Repository
	jwtManager *auth.JWTManager
	bcryptCost int
	logger     *zap.Logger
}

// NewAuthService creates a new AuthService. A zero bcryptCost selects
// bcrypt.DefaultCost.
func NewAuthService(repo userDomain.Repository, jwtManager *auth.JWTManager, bcryptCost int, logger *zap.Logger) *AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		repo:       repo,
		jwtManager: jwtManager,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Register creates an account and signs the rider in.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthDTO, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, apperror.NewValidationError(msgCredentialsRequired)
	}

	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return nil, apperror.NewValidationError(msgUserExists)
	} else if !apperror.Is(err, apperror.KindNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u, err := userDomain.NewUser(req.Email, req.Name, string(hash))
	if err != nil {
		return nil, apperror.NewValidationError(err.Error())
	}
	if err := s.repo.Save(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", u.ID().String()))
	return s.issue(u)
}

// Login verifies credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthDTO, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, apperror.NewValidationError(msgCredentialsRequired)
	}

	u, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return nil, apperror.NewUnauthorizedError(msgInvalidCredentials)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash()), []byte(req.Password)); err != nil {
		return nil, apperror.NewUnauthorizedError(msgInvalidCredentials)
	}
	return s.issue(u)
}

// Verify resolves a bearer token to the rider it was issued to.
func (s *AuthService) Verify(_ context.Context, token string) (*UserDTO, error) {
	if strings.TrimSpace(token) == "" {
		return nil, apperror.NewUnauthorizedError(msgNoToken)
	}

	claims, err := s.jwtManager.Validate(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, apperror.NewUnauthorizedError(msgTokenExpired)
		}
		return nil, apperror.NewUnauthorizedError(msgInvalidToken)
	}
	return &UserDTO{Email: claims.Email, Name: claims.Name}, nil
}

// SeedDemoUser creates the demo account unless it already exists.
func (s *AuthService) SeedDemoUser(ctx context.Context) error {
	if _, err := s.repo.FindByEmail(ctx, DemoEmail); err == nil {
		return nil
	}
	if _, err := s.Register(ctx, RegisterRequest{Email: DemoEmail, Password: DemoPassword, Name: DemoName}); err != nil {
		return fmt.Errorf("failed to seed demo user: %w", err)
	}
	return nil
}

func (s *AuthService) issue(u *userDomain.User) (*AuthDTO, error) {
	token, err := s.jwtManager.Generate(u.Email(), u.Name())
	if err != nil {
		return nil, err
	}
	return &AuthDTO{
		Token: token,
		User:  UserDTO{Email: u.Email(), Name: u.Name()},
	}, nil
}
