package service

import (
	"context"

	"github.com/MKhiriev/go-identity-keeper/internal/logger"
	"github.com/MKhiriev/go-identity-keeper/internal/store"
	"github.com/MKhiriev/go-identity-keeper/models"
)

type userService struct {
	users  store.UserRepository
	logger *logger.Logger
}

func NewUserService(users store.UserRepository, logger *logger.Logger) UserService {
	return &userService{
		users:  users,
		logger: logger,
	}
}

func (s *userService) Profile(ctx context.Context, userID string) (models.UserProfile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*userService.Profile").Str("user_id", userID).Msg("user search failed")
		return models.UserProfile{}, sessionStoreError(err)
	}

	return user.Profile(), nil
}

// UpdateProfile changes the username and the display name. Empty request
// fields keep their stored value.
func (s *userService) UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (models.UserProfile, error) {
	log := logger.FromContext(ctx)

	user, err := s.users.FindByID(ctx, req.UserID)
	if err != nil {
		log.Err(err).Str("func", "*userService.UpdateProfile").Str("user_id", req.UserID).Msg("user search failed")
		return models.UserProfile{}, sessionStoreError(err)
	}

	if req.Username != "" {
		user.Username = req.Username
	}
	if req.Name != "" {
		user.Name = req.Name
	}

	updated, err := s.users.UpdateProfile(ctx, user)
	if err != nil {
		log.Err(err).Str("func", "*userService.UpdateProfile").Str("user_id", req.UserID).Msg("profile update failed")
		return models.UserProfile{}, sessionStoreError(err)
	}

	return updated.Profile(), nil
}

// FindUser is the administrative lookup; only here a missing account is
// reported as such.
func (s *userService) FindUser(ctx context.Context, userID string) (models.UserProfile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return models.UserProfile{}, storeError(err)
	}

	return user.Profile(), nil
}
