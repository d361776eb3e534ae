package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"reviewhub/internal/cache"
	"reviewhub/internal/microservices/http-api/apperr"
	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/permissions"
	"reviewhub/internal/microservices/http-api/repository"
	"reviewhub/internal/microservices/http-api/validators"
)

// UserCache is the slice of the redis cache the user service needs.
type UserCache interface {
	GetJSON(ctx context.Context, key string, dst any) bool
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration)
	Delete(ctx context.Context, key string) error
}

// UserUpdate is a partial profile; nil fields are left alone.
type UserUpdate struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
	Role      *permissions.Role
}

type UserInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Bio       string
	Role      permissions.Role
}

type UserService interface {
	// Authenticate resolves a token subject to a user, through the cache.
	Authenticate(ctx context.Context, userID string) (*models.User, error)
	GetMe(ctx context.Context, userID string) (*models.User, error)
	// UpdateMe never changes the caller's role.
	UpdateMe(ctx context.Context, userID string, patch UserUpdate) (*models.User, error)

	List(ctx context.Context, search string, page, pageSize int) ([]models.User, int64, error)
	Create(ctx context.Context, in UserInput) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, username string, patch UserUpdate) (*models.User, error)
	Delete(ctx context.Context, username string) error
}

type userService struct {
	userRepo repository.UserRepository
	cache    UserCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

func NewUserService(userRepo repository.UserRepository, cache UserCache, cacheTTL time.Duration, logger *zap.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

func (s *userService) Authenticate(ctx context.Context, userID string) (*models.User, error) {
	var cached models.User
	if s.cache.GetJSON(ctx, cache.UserKey(userID), &cached) {
		return &cached, nil
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Unauthorized("user no longer exists")
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	s.cache.SetJSON(ctx, cache.UserKey(userID), user, s.cacheTTL)
	return user, nil
}

func (s *userService) GetMe(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, userLookupError(err, userID)
	}
	return user, nil
}

func (s *userService) UpdateMe(ctx context.Context, userID string, patch UserUpdate) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, userLookupError(err, userID)
	}

	role := user.Role
	if err := applyUserUpdate(user, patch); err != nil {
		return nil, err
	}
	// a user may not promote themselves
	user.Role = role

	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, search string, page, pageSize int) ([]models.User, int64, error) {
	return s.userRepo.List(ctx, search, page, pageSize)
}

func (s *userService) Create(ctx context.Context, in UserInput) (*models.User, error) {
	if _, err := validators.ValidateUsername(in.Username); err != nil {
		return nil, err
	}
	if in.Email == "" {
		return nil, apperr.Validation("email is required")
	}
	if in.Role == "" {
		in.Role = permissions.RoleUser
	}
	if !in.Role.Valid() {
		return nil, apperr.Validation("unknown role %q", in.Role)
	}

	user := &models.User{
		Username:  in.Username,
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Bio:       in.Bio,
		Role:      in.Role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict("email or username already taken")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, userLookupError(err, username)
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, username string, patch UserUpdate) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, userLookupError(err, username)
	}
	if err := applyUserUpdate(user, patch); err != nil {
		return nil, err
	}
	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) Delete(ctx context.Context, username string) error {
	user, err := s.userRepo.DeleteByUsername(ctx, username)
	if err != nil {
		return userLookupError(err, username)
	}
	_ = s.cache.Delete(ctx, cache.UserKey(user.ID))
	return nil
}

func (s *userService) save(ctx context.Context, user *models.User) error {
	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return apperr.Conflict("email or username already taken")
		}
		return userLookupError(err, user.Username)
	}
	// role changes must reach the auth middleware right away
	_ = s.cache.Delete(ctx, cache.UserKey(user.ID))
	return nil
}

func applyUserUpdate(user *models.User, patch UserUpdate) error {
	if patch.Username != nil {
		if _, err := validators.ValidateUsername(*patch.Username); err != nil {
			return err
		}
		user.Username = *patch.Username
	}
	if patch.Email != nil {
		if *patch.Email == "" {
			return apperr.Validation("email must not be empty")
		}
		user.Email = *patch.Email
	}
	if patch.FirstName != nil {
		user.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		user.LastName = *patch.LastName
	}
	if patch.Bio != nil {
		user.Bio = *patch.Bio
	}
	if patch.Role != nil {
		if !patch.Role.Valid() {
			return apperr.Validation("unknown role %q", *patch.Role)
		}
		user.Role = *patch.Role
	}
	return nil
}

func userLookupError(err error, who string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("user %q not found", who)
	}
	return fmt.Errorf("user %s: %w", who, err)
}
