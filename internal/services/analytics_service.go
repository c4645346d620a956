package services

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/stayextras/upsell-service/internal/dtos"
	"github.com/stayextras/upsell-service/internal/models"
	"github.com/stayextras/upsell-service/internal/payments"
	"github.com/stayextras/upsell-service/internal/repositories"
	"github.com/stayextras/upsell-service/internal/utils"
)

const (
	analyticsTxType     = "charge"
	analyticsFetchLimit = 100
	recentPaymentsCount = 10
)

// AnalyticsService summarizes a host's revenue from the connected
// account's balance transactions. Hosts without an active account get a
// zeroed summary with a message rather than an error.
type AnalyticsService struct {
	profiles repositories.ProfileRepository
	pay      payments.Client
}

func NewAnalyticsService(profiles repositories.ProfileRepository, pay payments.Client) *AnalyticsService {
	return &AnalyticsService{profiles: profiles, pay: pay}
}

func (s *AnalyticsService) RevenueSummary(ctx context.Context, hostID uuid.UUID) (*dtos.AnalyticsResponse, error) {
	profile, err := s.profiles.GetByID(ctx, hostID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, &utils.AppError{StatusCode: http.StatusNotFound, Code: utils.ErrCodeNotFound, Message: "profile not found"}
	}

	if profile.StripeAccountID == nil || *profile.StripeAccountID == "" ||
		profile.StripeAccountStatus != models.StripeAccountStatusActive {
		return &dtos.AnalyticsResponse{
			RecentPayments: []dtos.AnalyticsPayment{},
			Message:        "Connect your payment account to see revenue analytics",
		}, nil
	}

	txs, err := s.pay.ListBalanceTransactions(ctx, *profile.StripeAccountID, analyticsTxType, analyticsFetchLimit)
	if err != nil {
		utils.Logger.WithError(err).Errorf("Failed to list balance transactions for account %s", *profile.StripeAccountID)
		return nil, &utils.AppError{
			StatusCode: http.StatusBadGateway,
			Code:       utils.ErrCodeExternalServiceFailure,
			Message:    "Could not load revenue data",
			Err:        err,
		}
	}

	monthStart := time.Now().AddDate(0, -1, 0).Unix()
	resp := &dtos.AnalyticsResponse{RecentPayments: []dtos.AnalyticsPayment{}}
	for _, tx := range txs {
		resp.TotalRevenueCents += tx.Amount
		resp.TotalTransactions++
		if tx.Created >= monthStart {
			resp.MonthlyRevenueCents += tx.Amount
		}
	}

	sort.Slice(txs, func(i, j int) bool { return txs[i].Created > txs[j].Created })
	for i, tx := range txs {
		if i >= recentPaymentsCount {
			break
		}
		resp.RecentPayments = append(resp.RecentPayments, dtos.AnalyticsPayment{
			ID:       tx.ID,
			Amount:   tx.Amount,
			Currency: string(tx.Currency),
			Created:  tx.Created,
		})
	}
	return resp, nil
}
