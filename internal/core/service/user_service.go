package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/fieldtrack/assettrack/internal/core/domain"
	"github.com/fieldtrack/assettrack/internal/core/ports"
)

type userService struct {
	repo ports.UserRepository
	log  zerolog.Logger
}

// NewUserService returns a UserService implementation.
func NewUserService(repo ports.UserRepository, log zerolog.Logger) ports.UserService {
	return &userService{repo: repo, log: log}
}

// Register creates a login account. Usernames are unique; the password is
// stored only as a bcrypt hash.
func (s *userService) Register(ctx context.Context, username, password string, role domain.UserRole) (*domain.AppUser, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if _, err := s.repo.ByUsername(ctx, username); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	id, err := s.repo.Create(ctx, username, string(hash), "", role)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("username", username).Str("role", string(role)).Msg("user registered")
	return s.repo.ByID(ctx, id)
}

// Login verifies credentials and returns the account on success.
func (s *userService) Login(ctx context.Context, username, password string) (*domain.AppUser, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.ByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*domain.AppUser, error) {
	return s.repo.ByUsername(ctx, username)
}

func (s *userService) Get(ctx context.Context, id int64) (*domain.AppUser, error) {
	return s.repo.ByID(ctx, id)
}

func (s *userService) List(ctx context.Context) ([]domain.AppUser, error) {
	return s.repo.List(ctx)
}

func (s *userService) UpdateUsername(ctx context.Context, id int64, username string) (bool, error) {
	if username == "" {
		return false, domain.ErrInvalidCredentials
	}
	return s.repo.UpdateUsername(ctx, id, username)
}

func (s *userService) UpdatePassword(ctx context.Context, id int64, password string) (bool, error) {
	if password == "" {
		return false, domain.ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, id, string(hash), "")
}

func (s *userService) UpdateRole(ctx context.Context, id int64, role domain.UserRole) (bool, error) {
	return s.repo.UpdateRole(ctx, id, role)
}

func (s *userService) Delete(ctx context.Context, id int64) (bool, error) {
	return s.repo.Delete(ctx, id)
}
