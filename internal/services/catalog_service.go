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

// CatalogService manages a host's purchasable services and their saved
// templates. Deleting a service never touches existing orders; they hold
// snapshots.
type CatalogService struct {
	services      repositories.ServiceRepository
	savedServices repositories.SavedServiceRepository
	properties    repositories.PropertyRepository
}

func NewCatalogService(
	services repositories.ServiceRepository,
	savedServices repositories.SavedServiceRepository,
	properties repositories.PropertyRepository,
) *CatalogService {
	return &CatalogService{
		services:      services,
		savedServices: savedServices,
		properties:    properties,
	}
}

func (s *CatalogService) ListByProperty(ctx context.Context, hostID, propertyID uuid.UUID) ([]*models.Service, error) {
	if _, err := s.ownedProperty(ctx, hostID, propertyID); err != nil {
		return nil, err
	}
	return s.services.ListByProperty(ctx, propertyID)
}

func (s *CatalogService) Create(ctx context.Context, hostID, propertyID uuid.UUID, req dtos.ServiceCreateRequest) (*models.Service, error) {
	if _, err := s.ownedProperty(ctx, hostID, propertyID); err != nil {
		return nil, err
	}
	if !models.IsValidServiceIcon(req.Icon) {
		return nil, &utils.AppError{
			StatusCode: http.StatusUnprocessableEntity,
			Code:       utils.ErrCodeValidation,
			Message:    "unknown service icon",
		}
	}

	svc := &models.Service{
		ID:          uuid.New(),
		PropertyID:  propertyID,
		HostID:      hostID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Icon:        req.Icon,
	}
	if err := s.services.Create(ctx, svc); err != nil {
		return nil, err
	}

	if req.SaveAsTemplate {
		tmpl := &models.SavedService{
			ID:          uuid.New(),
			HostID:      hostID,
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
			Icon:        req.Icon,
		}
		if err := s.savedServices.Create(ctx, tmpl); err != nil {
			utils.Logger.WithError(err).Warn("Failed to save service template")
		}
	}

	return s.services.GetByID(ctx, svc.ID)
}

// Patch edits a service in place. Orders snapshot their lines at
// checkout, so price edits never reach already-created orders.
func (s *CatalogService) Patch(ctx context.Context, hostID, serviceID uuid.UUID, req dtos.ServicePatchRequest) (*models.Service, error) {
	svc, err := s.ownedService(ctx, hostID, serviceID)
	if err != nil {
		return nil, err
	}

	if req.Icon != nil && !models.IsValidServiceIcon(*req.Icon) {
		return nil, &utils.AppError{
			StatusCode: http.StatusUnprocessableEntity,
			Code:       utils.ErrCodeValidation,
			Message:    "unknown service icon",
		}
	}

	if err := s.services.UpdateWithRetry(ctx, svc.ID, func(stored *models.Service) error {
		if req.Name != nil {
			stored.Name = *req.Name
		}
		if req.Description != nil {
			stored.Description = *req.Description
		}
		if req.Price != nil {
			stored.Price = *req.Price
		}
		if req.Icon != nil {
			stored.Icon = *req.Icon
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return s.services.GetByID(ctx, svc.ID)
}

func (s *CatalogService) Delete(ctx context.Context, hostID, serviceID uuid.UUID) error {
	if _, err := s.ownedService(ctx, hostID, serviceID); err != nil {
		return err
	}
	return s.services.Delete(ctx, serviceID)
}

func (s *CatalogService) ownedService(ctx context.Context, hostID, serviceID uuid.UUID) (*models.Service, error) {
	svc, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, &utils.AppError{StatusCode: http.StatusNotFound, Code: utils.ErrCodeNotFound, Message: "service not found"}
	}
	if svc.HostID != hostID {
		return nil, &utils.AppError{StatusCode: http.StatusForbidden, Code: utils.ErrCodeForbidden, Message: "service belongs to another host", Err: utils.ErrNotOwner}
	}
	return svc, nil
}

// ----------------------------------------------------------------------
// Saved templates
// ----------------------------------------------------------------------

func (s *CatalogService) ListSaved(ctx context.Context, hostID uuid.UUID) ([]*models.SavedService, error) {
	return s.savedServices.ListByHost(ctx, hostID)
}

func (s *CatalogService) CreateSaved(ctx context.Context, hostID uuid.UUID, req dtos.ServiceCreateRequest) (*models.SavedService, error) {
	if !models.IsValidServiceIcon(req.Icon) {
		return nil, &utils.AppError{
			StatusCode: http.StatusUnprocessableEntity,
			Code:       utils.ErrCodeValidation,
			Message:    "unknown service icon",
		}
	}

	tmpl := &models.SavedService{
		ID:          uuid.New(),
		HostID:      hostID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Icon:        req.Icon,
	}
	if err := s.savedServices.Create(ctx, tmpl); err != nil {
		return nil, err
	}
	return s.savedServices.GetByID(ctx, tmpl.ID)
}

func (s *CatalogService) DeleteSaved(ctx context.Context, hostID, savedServiceID uuid.UUID) error {
	tmpl, err := s.savedServices.GetByID(ctx, savedServiceID)
	if err != nil {
		return err
	}
	if tmpl == nil {
		return &utils.AppError{StatusCode: http.StatusNotFound, Code: utils.ErrCodeNotFound, Message: "saved service not found"}
	}
	if tmpl.HostID != hostID {
		return &utils.AppError{StatusCode: http.StatusForbidden, Code: utils.ErrCodeForbidden, Message: "saved service belongs to another host", Err: utils.ErrNotOwner}
	}
	return s.savedServices.Delete(ctx, savedServiceID)
}

func (s *CatalogService) ownedProperty(ctx context.Context, hostID, propertyID uuid.UUID) (*models.Property, error) {
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
