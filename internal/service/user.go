package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"carscene-backend/internal/cache"
	"carscene-backend/internal/domain"
	"carscene-backend/internal/logger"
	"carscene-backend/internal/repository"
)

type userService struct {
	users repository.UserRepository
	clubs repository.ClubRepository
	cache cache.Invalidator
}

func NewUserService(users repository.UserRepository, clubs repository.ClubRepository, invalidator cache.Invalidator) UserService {
	return &userService{users: users, clubs: clubs, cache: invalidator}
}

// GetProfile assembles a profile page: the user row, the profile_stats
// aggregate, and club memberships.
func (s *userService) GetProfile(ctx context.Context, username string) (*domain.User, *domain.ProfileStats, []domain.Club, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, nil, fmt.Errorf("%w: user not found", domain.ErrNotFound)
		}
		return nil, nil, nil, err
	}

	stats, err := s.users.GetProfileStats(ctx, user.ID)
	if err != nil {
		return nil, nil, nil, err
	}

	clubs, _, err := s.clubs.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	return user, stats, clubs, nil
}

func (s *userService) UpdateProfile(ctx context.Context, user *domain.User) error {
	logger.EnterMethod("UserService.UpdateProfile", "userId", user.ID)

	if user.DisplayName == "" {
		return fmt.Errorf("%w: display name cannot be empty", domain.ErrValidation)
	}
	if err := s.users.Update(ctx, user); err != nil {
		logger.ExitMethodWithError("UserService.UpdateProfile", err)
		return err
	}
	s.cache.InvalidateTags(ctx, cache.ProfileTag(user.ID))
	logger.ExitMethod("UserService.UpdateProfile")
	return nil
}

func (s *userService) RegisterDeviceToken(ctx context.Context, userID int32, token, platform string) error {
	if token == "" {
		return fmt.Errorf("%w: token is required", domain.ErrValidation)
	}
	switch platform {
	case "ios", "android", "web":
	default:
		return fmt.Errorf("%w: unknown platform %q", domain.ErrValidation, platform)
	}
	return s.users.AddDeviceToken(ctx, &domain.DeviceToken{
		UserID:   userID,
		Token:    token,
		Platform: platform,
	})
}

func (s *userService) RemoveDeviceToken(ctx context.Context, userID int32, token string) error {
	if token == "" {
		return fmt.Errorf("%w: token is required", domain.ErrValidation)
	}
	return s.users.DeleteDeviceToken(ctx, userID, token)
}
