package services

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stayextras/upsell-service/internal/config"
	"github.com/stayextras/upsell-service/internal/dtos"
	"github.com/stayextras/upsell-service/internal/hospitable"
	"github.com/stayextras/upsell-service/internal/models"
	"github.com/stayextras/upsell-service/internal/repositories"
	"github.com/stayextras/upsell-service/internal/utils"
)

// HospitableService mirrors a host's PMS listings into local properties.
// The mapping is upsert-only: listings never delete local properties.
type HospitableService struct {
	cfg         *config.Config
	client      *hospitable.Client
	connections repositories.HospitableConnectionRepository
	properties  repositories.PropertyRepository
}

func NewHospitableService(
	cfg *config.Config,
	client *hospitable.Client,
	connections repositories.HospitableConnectionRepository,
	properties repositories.PropertyRepository,
) *HospitableService {
	return &HospitableService{cfg: cfg, client: client, connections: connections, properties: properties}
}

// Connect exchanges the OAuth authorization code from the dashboard
// callback for a token pair and stores it. A bad code fails here instead
// of on the first sync.
func (s *HospitableService) Connect(ctx context.Context, hostID uuid.UUID, code, redirectURI string) (*dtos.HospitableConnectResponse, error) {
	tok, err := s.client.ExchangeCode(ctx, s.cfg.HospitableClientID, s.cfg.HospitableClientSecret, code, redirectURI)
	if err != nil {
		return nil, &utils.AppError{
			StatusCode: http.StatusBadGateway,
			Code:       utils.ErrCodeExternalServiceFailure,
			Message:    "Hospitable rejected the authorization code",
			Err:        err,
		}
	}

	customer, err := s.client.GetCustomer(ctx, tok.AccessToken)
	if err != nil {
		return nil, &utils.AppError{
			StatusCode: http.StatusBadGateway,
			Code:       utils.ErrCodeExternalServiceFailure,
			Message:    "Could not identify the Hospitable customer",
			Err:        err,
		}
	}

	conn := &models.HospitableConnection{
		ID:          uuid.New(),
		HostID:      hostID,
		CustomerID:  customer.ID,
		AccessToken: tok.AccessToken,
	}
	if tok.RefreshToken != "" {
		conn.RefreshToken = &tok.RefreshToken
	}
	if tok.ExpiresIn > 0 {
		expiresAt := time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
		conn.ExpiresAt = &expiresAt
	}
	if err := s.connections.Upsert(ctx, conn); err != nil {
		return nil, err
	}

	return &dtos.HospitableConnectResponse{
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
	}, nil
}

// Disconnect drops the stored connection. Synced properties stay; they
// just stop receiving listing updates.
func (s *HospitableService) Disconnect(ctx context.Context, hostID uuid.UUID) error {
	return s.connections.DeleteByHost(ctx, hostID)
}

// SyncProperties pulls every listing and upserts it as a property keyed
// by its Hospitable id. ImageURL falls back to the default when the
// listing has no picture; existing manually-set contact fields survive.
func (s *HospitableService) SyncProperties(ctx context.Context, hostID uuid.UUID) (*dtos.HospitableSyncResponse, error) {
	conn, err := s.connections.GetByHost(ctx, hostID)
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return nil, &utils.AppError{
			StatusCode: http.StatusUnprocessableEntity,
			Code:       utils.ErrCodeConflict,
			Message:    "Hospitable is not connected for this account",
		}
	}

	token, err := s.freshAccessToken(ctx, conn)
	if err != nil {
		return nil, err
	}

	listings, err := s.client.ListCustomerListings(ctx, token, conn.CustomerID)
	if err != nil {
		return nil, &utils.AppError{
			StatusCode: http.StatusBadGateway,
			Code:       utils.ErrCodeExternalServiceFailure,
			Message:    "Could not fetch listings from Hospitable",
			Err:        err,
		}
	}

	resp := &dtos.HospitableSyncResponse{Total: len(listings)}
	for _, listing := range listings {
		if err := s.upsertListing(ctx, hostID, listing, resp); err != nil {
			utils.Logger.WithError(err).Warnf("Failed to upsert listing %s", listing.ID)
		}
	}
	return resp, nil
}

// freshAccessToken rotates the stored token through the refresh grant
// once it has expired. The rotated pair is persisted before use so a
// failed sync never loses it.
func (s *HospitableService) freshAccessToken(ctx context.Context, conn *models.HospitableConnection) (string, error) {
	if conn.ExpiresAt == nil || time.Now().Before(*conn.ExpiresAt) || conn.RefreshToken == nil {
		return conn.AccessToken, nil
	}

	tok, err := s.client.RefreshAccessToken(ctx, s.cfg.HospitableClientID, s.cfg.HospitableClientSecret, *conn.RefreshToken)
	if err != nil {
		return "", &utils.AppError{
			StatusCode: http.StatusBadGateway,
			Code:       utils.ErrCodeExternalServiceFailure,
			Message:    "Could not refresh the Hospitable token",
			Err:        err,
		}
	}

	conn.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		conn.RefreshToken = &tok.RefreshToken
	}
	if tok.ExpiresIn > 0 {
		expiresAt := time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
		conn.ExpiresAt = &expiresAt
	}
	if err := s.connections.Upsert(ctx, conn); err != nil {
		return "", err
	}
	return conn.AccessToken, nil
}

func (s *HospitableService) upsertListing(ctx context.Context, hostID uuid.UUID, listing hospitable.Listing, resp *dtos.HospitableSyncResponse) error {
	name := listing.PublicName
	if name == "" {
		name = "Listing " + listing.ID
	}
	address := joinAddress(listing.Address.Street, listing.Address.City)
	imageURL := listing.Picture
	if imageURL == "" {
		imageURL = models.DefaultPropertyImageURL
	}

	existing, err := s.properties.GetByHospitableID(ctx, hostID, listing.ID)
	if err != nil {
		return err
	}

	if existing == nil {
		hospitableID := listing.ID
		platformID := listing.PlatformID
		property := &models.Property{
			ID:                   uuid.New(),
			HostID:               hostID,
			Name:                 name,
			Address:              address,
			ImageURL:             imageURL,
			HospitableID:         &hospitableID,
			HospitablePlatformID: &platformID,
		}
		if err := s.properties.Create(ctx, property); err != nil {
			return err
		}
		resp.Created++
		return nil
	}

	if err := s.properties.UpdateWithRetry(ctx, existing.ID, func(stored *models.Property) error {
		stored.Name = name
		stored.Address = address
		stored.ImageURL = imageURL
		platformID := listing.PlatformID
		stored.HospitablePlatformID = &platformID
		return nil
	}); err != nil {
		return err
	}
	resp.Updated++
	return nil
}

func joinAddress(parts ...string) string {
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ", ")
}
