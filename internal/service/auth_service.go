package service

import (
	"context"
	"errors"
	"strings"

	"github.com/RealCodeCrafter/trt-backend/internal/auth"
	"github.com/RealCodeCrafter/trt-backend/internal/config"
	"github.com/RealCodeCrafter/trt-backend/internal/domain"
	"github.com/RealCodeCrafter/trt-backend/internal/repository"
	apperrors "github.com/RealCodeCrafter/trt-backend/pkg/util/errorutil"
)

// AuthResult is returned by flows that sign the caller in.
type AuthResult struct {
	User  *domain.User
	Token domain.IssuedToken
}

// Credentials carries account fields submitted by clients.
type Credentials struct {
	Username string
	Password string
	Email    string
}

// AuthService coordinates registration, login and admin provisioning.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, users repository.UserRepository, tokens *auth.TokenManager) *AuthService {
	return &AuthService{
		users:      users,
		tokenMgr:   tokens,
		bcryptCost: cfg.BcryptCost,
	}
}

// Register creates a "user" account and signs it in.
func (s *AuthService) Register(ctx context.Context, creds Credentials) (*AuthResult, error) {
	user, err := s.createAccount(ctx, creds, domain.RoleUser)
	if err != nil {
		return nil, err
	}
	return s.signIn(user)
}

// Login checks the password and issues a token.
// Unknown users and wrong passwords produce the same 401.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperrors.NewValidationError("username and password are required", nil)
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if user == nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	return s.signIn(user)
}

// AddAdmin provisions an "admin" account. No token is issued.
func (s *AuthService) AddAdmin(ctx context.Context, creds Credentials) (*domain.User, error) {
	return s.createAccount(ctx, creds, domain.RoleAdmin)
}

// Me returns the stored record behind an identity.
func (s *AuthService) Me(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}

// createAccount relies on the unique username index; a lost race surfaces as a conflict.
func (s *AuthService) createAccount(ctx context.Context, creds Credentials, role domain.Role) (*domain.User, error) {
	username := strings.TrimSpace(creds.Username)
	if username == "" || creds.Password == "" {
		return nil, apperrors.NewValidationError("username and password are required", nil)
	}

	if len(creds.Password) > auth.MaxPasswordBytes {
		return nil, apperrors.NewValidationError("password is too long", map[string]any{"maxBytes": auth.MaxPasswordBytes})
	}

	hash, err := auth.HashPassword(creds.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: hash,
		Email:        strings.TrimSpace(creds.Email),
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, apperrors.NewConflict("user already exists", map[string]any{"username": username})
		}
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}

func (s *AuthService) signIn(user *domain.User) (*AuthResult, error) {
	token, err := s.tokenMgr.Issue(auth.Identity{ID: user.ID, Username: user.Username, Role: user.Role})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

// TokenManager returns the issuer the service signs with.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
