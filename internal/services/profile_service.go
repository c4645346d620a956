package services

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/stayextras/upsell-service/internal/dtos"
	"github.com/stayextras/upsell-service/internal/models"
	"github.com/stayextras/upsell-service/internal/repositories"
	"github.com/stayextras/upsell-service/internal/utils"
)

type ProfileService struct {
	profiles repositories.ProfileRepository
}

func NewProfileService(profiles repositories.ProfileRepository) *ProfileService {
	return &ProfileService{profiles: profiles}
}

// GetOrCreate returns the host's profile, creating the row on first
// contact. The ID is the identity provider's subject, so creation is
// driven by the token, not a signup endpoint.
func (s *ProfileService) GetOrCreate(ctx context.Context, hostID uuid.UUID, email string) (*models.Profile, error) {
	profile, err := s.profiles.GetByID(ctx, hostID)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		return profile, nil
	}

	profile = &models.Profile{
		ID:                  hostID,
		Email:               email,
		StripeAccountStatus: models.StripeAccountStatusNew,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		// A concurrent first request may have won the insert.
		if existing, gErr := s.profiles.GetByID(ctx, hostID); gErr == nil && existing != nil {
			return existing, nil
		}
		return nil, err
	}
	return s.profiles.GetByID(ctx, hostID)
}

func (s *ProfileService) Patch(ctx context.Context, hostID uuid.UUID, req dtos.ProfilePatchRequest) (*models.Profile, error) {
	profile, err := s.profiles.GetByID(ctx, hostID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, &utils.AppError{StatusCode: http.StatusNotFound, Code: utils.ErrCodeNotFound, Message: "profile not found"}
	}

	if err := s.profiles.UpdateWithRetry(ctx, hostID, func(stored *models.Profile) error {
		if req.FullName != nil {
			stored.FullName = *req.FullName
		}
		if req.BusinessName != nil {
			stored.BusinessName = *req.BusinessName
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return s.profiles.GetByID(ctx, hostID)
}
