package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"

	"github.com/stayextras/upsell-service/internal/models"
	"github.com/stayextras/upsell-service/internal/repositories"
	"github.com/stayextras/upsell-service/internal/utils"
)

// Helper to check for unique violation error (PostgreSQL specific code)
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

/* ------------------------------------------------------------------
   Seed a demo host with one property and two services (demo only)
------------------------------------------------------------------ */

// SeedDemoData inserts a fixed demo host, property and two services so a
// fresh environment has something to show. Re-running is a no-op.
func SeedDemoData(
	profileRepo repositories.ProfileRepository,
	propertyRepo repositories.PropertyRepository,
	serviceRepo repositories.ServiceRepository,
) error {
	ctx := context.Background()

	demoHostID := uuid.MustParse("7b5a1c02-9f3d-4e6a-8b2c-0d1e2f3a4b5c")
	demoPropertyID := uuid.MustParse("7b5a1c02-9f3d-4e6a-8b2c-0d1e2f3a6001")

	profile := &models.Profile{
		ID:                  demoHostID,
		Email:               "demo-host@stayextras.dev",
		FullName:            "Demo Host",
		BusinessName:        "Demo Rentals",
		StripeAccountStatus: models.StripeAccountStatusNew,
	}
	if err := profileRepo.Create(ctx, profile); err != nil {
		if isUniqueViolation(err) {
			utils.Logger.Infof("Demo host already present (id=%s); skipping seed.", demoHostID)
			return nil
		}
		return fmt.Errorf("insert demo host: %w", err)
	}

	property := &models.Property{
		ID:       demoPropertyID,
		HostID:   demoHostID,
		Name:     "Appartement Canal Saint-Martin",
		Address:  "12 Quai de Jemmapes, 75010 Paris",
		ImageURL: models.DefaultPropertyImageURL,
	}
	if err := propertyRepo.Create(ctx, property); err != nil {
		return fmt.Errorf("insert demo property: %w", err)
	}

	demoServices := []*models.Service{
		{
			ID:          uuid.MustParse("7b5a1c02-9f3d-4e6a-8b2c-0d1e2f3a7001"),
			PropertyID:  demoPropertyID,
			HostID:      demoHostID,
			Name:        "Late checkout",
			Description: "Keep the apartment until 2pm on departure day.",
			Price:       25.00,
			Icon:        "clock",
		},
		{
			ID:          uuid.MustParse("7b5a1c02-9f3d-4e6a-8b2c-0d1e2f3a7002"),
			PropertyID:  demoPropertyID,
			HostID:      demoHostID,
			Name:        "Welcome wine basket",
			Description: "A bottle of local wine and snacks waiting on arrival.",
			Price:       35.00,
			Icon:        "wine",
		},
	}
	for _, svc := range demoServices {
		if err := serviceRepo.Create(ctx, svc); err != nil {
			return fmt.Errorf("insert demo service %q: %w", svc.Name, err)
		}
	}

	utils.Logger.Infof("Seeded demo host %s with property and %d services.", demoHostID, len(demoServices))
	return nil
}
