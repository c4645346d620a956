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

// StorefrontService is the only unauthenticated read path: the page a
// guest opens from the link their host sent them.
type StorefrontService struct {
	properties repositories.PropertyRepository
	services   repositories.ServiceRepository
}

func NewStorefrontService(properties repositories.PropertyRepository, services repositories.ServiceRepository) *StorefrontService {
	return &StorefrontService{properties: properties, services: services}
}

func (s *StorefrontService) GetProperty(ctx context.Context, propertyID uuid.UUID) (*dtos.StorefrontProperty, error) {
	property, err := s.properties.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, &utils.AppError{StatusCode: http.StatusNotFound, Code: utils.ErrCodeNotFound, Message: "property not found"}
	}

	svcs, err := s.services.ListByProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	imageURL := property.ImageURL
	if imageURL == "" {
		imageURL = models.DefaultPropertyImageURL
	}

	out := &dtos.StorefrontProperty{
		ID:              property.ID.String(),
		Name:            property.Name,
		Address:         property.Address,
		ImageURL:        imageURL,
		ContactPhone:    property.ContactPhone,
		ContactGuideURL: property.ContactGuideURL,
		Services:        []dtos.StorefrontService{},
	}
	for _, svc := range svcs {
		out.Services = append(out.Services, dtos.StorefrontService{
			ID:          svc.ID.String(),
			Name:        svc.Name,
			Description: svc.Description,
			Price:       svc.Price,
			Icon:        svc.Icon,
		})
	}
	return out, nil
}
