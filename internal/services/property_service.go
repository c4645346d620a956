package services

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	twilio "github.com/twilio/twilio-go"

	"github.com/stayextras/upsell-service/internal/config"
	"github.com/stayextras/upsell-service/internal/dtos"
	"github.com/stayextras/upsell-service/internal/models"
	"github.com/stayextras/upsell-service/internal/repositories"
	"github.com/stayextras/upsell-service/internal/utils"
)

// PropertyService covers the host-facing property CRUD. Properties have
// no delete path; orders keep referencing them forever.
type PropertyService struct {
	Cfg          *config.Config
	properties   repositories.PropertyRepository
	twilioClient *twilio.RestClient
}

func NewPropertyService(cfg *config.Config, properties repositories.PropertyRepository) *PropertyService {
	var tw *twilio.RestClient
	if cfg.ValidatePhoneWithTwilio {
		tw = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.TwilioAccountSID,
			Password: cfg.TwilioAuthToken,
		})
	}
	return &PropertyService{Cfg: cfg, properties: properties, twilioClient: tw}
}

func (s *PropertyService) List(ctx context.Context, hostID uuid.UUID) ([]*models.Property, error) {
	return s.properties.ListByHost(ctx, hostID)
}

func (s *PropertyService) Create(ctx context.Context, hostID uuid.UUID, req dtos.PropertyCreateRequest) (*models.Property, error) {
	if err := s.validateContactPhone(ctx, req.ContactPhone); err != nil {
		return nil, err
	}

	imageURL := req.ImageURL
	if imageURL == "" {
		imageURL = models.DefaultPropertyImageURL
	}

	property := &models.Property{
		ID:              uuid.New(),
		HostID:          hostID,
		Name:            req.Name,
		Address:         req.Address,
		ImageURL:        imageURL,
		ContactPhone:    req.ContactPhone,
		ContactGuideURL: req.ContactGuideURL,
	}
	if err := s.properties.Create(ctx, property); err != nil {
		return nil, err
	}
	return s.properties.GetByID(ctx, property.ID)
}

func (s *PropertyService) Patch(ctx context.Context, hostID, propertyID uuid.UUID, req dtos.PropertyPatchRequest) (*models.Property, error) {
	property, err := s.ownedProperty(ctx, hostID, propertyID)
	if err != nil {
		return nil, err
	}

	if err := s.validateContactPhone(ctx, req.ContactPhone); err != nil {
		return nil, err
	}

	if err := s.properties.UpdateWithRetry(ctx, property.ID, func(stored *models.Property) error {
		if req.Name != nil {
			stored.Name = *req.Name
		}
		if req.Address != nil {
			stored.Address = *req.Address
		}
		if req.ImageURL != nil {
			stored.ImageURL = *req.ImageURL
			if stored.ImageURL == "" {
				stored.ImageURL = models.DefaultPropertyImageURL
			}
		}
		if req.ContactPhone != nil {
			stored.ContactPhone = req.ContactPhone
		}
		if req.ContactGuideURL != nil {
			stored.ContactGuideURL = req.ContactGuideURL
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return s.properties.GetByID(ctx, property.ID)
}

func (s *PropertyService) ownedProperty(ctx context.Context, hostID, propertyID uuid.UUID) (*models.Property, error) {
	property, err := s.properties.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, &utils.AppError{StatusCode: http.StatusNotFound, Code: utils.ErrCodeNotFound, Message: "property not found"}
	}
	if property.HostID != hostID {
		return nil, &utils.AppError{StatusCode: http.StatusForbidden, Code: utils.ErrCodeForbidden, Message: "property belongs to another host", Err: utils.ErrNotOwner}
	}
	return property, nil
}

func (s *PropertyService) validateContactPhone(ctx context.Context, phone *string) error {
	if phone == nil || *phone == "" {
		return nil
	}

	ok, err := utils.ValidatePhoneNumber(ctx, *phone, nil, s.Cfg.ValidatePhoneWithTwilio, s.twilioClient)
	if err != nil {
		utils.Logger.WithError(err).Warn("Phone lookup failed; falling back to syntax check")
		ok = utils.IsE164(*phone)
	}
	if !ok {
		return &utils.AppError{
			StatusCode: http.StatusUnprocessableEntity,
			Code:       utils.ErrCodeValidation,
			Message:    "contact phone must be a valid E.164 number",
			Err:        utils.ErrInvalidPhone,
		}
	}
	return nil
}
