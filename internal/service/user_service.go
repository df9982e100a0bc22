package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tasktracker/internal/cache"
	"tasktracker/internal/errors"
	"tasktracker/internal/model"
	"tasktracker/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// UpdateUserInput carries the admin-editable user fields. Nil fields are
// left unchanged.
type UpdateUserInput struct {
	Email    *string
	Role     *string
	Password *string
}

// UserService exposes admin-scoped user management.
type UserService interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	UpdateUser(ctx context.Context, id string, input UpdateUserInput) (*model.User, error)
	DeleteUser(ctx context.Context, id string) error
}

type userService struct {
	repo        repository.UserRepository
	authService AuthService
	cache       *cache.Client
}

// NewUserService builds a UserService. Password changes are delegated to
// the auth service so hashing stays in one place.
func NewUserService(repo repository.UserRepository, authService AuthService, cache *cache.Client) UserService {
	return &userService{repo: repo, authService: authService, cache: cache}
}

func (s *userService) cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("user:%s", id)
}

func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.repo.List(ctx)
}

func (s *userService) GetUser(ctx context.Context, id string) (*model.User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.ErrUserNotFound
	}

	var cached model.User
	if s.cache.GetJSON(ctx, s.cacheKey(userID), &cached) {
		return &cached, nil
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrUserNotFound
		}
		return nil, err
	}

	s.cache.SetJSON(ctx, s.cacheKey(userID), user, userCacheTTL)
	return user, nil
}

func (s *userService) UpdateUser(ctx context.Context, id string, input UpdateUserInput) (*model.User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.ErrUserNotFound
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrUserNotFound
		}
		return nil, err
	}

	if input.Email != nil && *input.Email != "" {
		if !emailPattern.MatchString(*input.Email) {
			return nil, fmt.Errorf("%w: invalid email address", errors.ErrValidation)
		}
		user.Email = *input.Email
	}
	if input.Role != nil && *input.Role != "" {
		if *input.Role != model.RoleUser && *input.Role != model.RoleAdmin {
			return nil, fmt.Errorf("%w: unknown role %q", errors.ErrValidation, *input.Role)
		}
		user.Role = *input.Role
	}
	if input.Password != nil && *input.Password != "" {
		if err := s.authService.SetPassword(user, *input.Password); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if err == gorm.ErrDuplicatedKey {
			return nil, errors.ErrDuplicateEmail
		}
		return nil, err
	}

	_ = s.cache.Delete(ctx, s.cacheKey(userID))
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, id string) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return errors.ErrUserNotFound
	}

	if _, err := s.repo.FindByID(ctx, userID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrUserNotFound
		}
		return err
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		return err
	}
	_ = s.cache.Delete(ctx, s.cacheKey(userID))
	return nil
}
