package services

import (
	"context"
	"testing"
	"time"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stretchr/testify/require"

	"github.com/stayextras/upsell-service/internal/models"
)

func TestRevenueSummaryWithoutActiveAccount(t *testing.T) {
	profiles := newFakeProfileRepo()
	pay := &fakePayments{}
	svc := NewAnalyticsService(profiles, pay)
	profile := seedProfile(t, profiles, "")

	resp, err := svc.RevenueSummary(context.Background(), profile.ID)
	require.NoError(t, err)
	require.Zero(t, resp.TotalRevenueCents)
	require.Zero(t, resp.TotalTransactions)
	require.Empty(t, resp.RecentPayments)
	require.NotEmpty(t, resp.Message)
}

func TestRevenueSummaryAggregatesCharges(t *testing.T) {
	profiles := newFakeProfileRepo()
	pay := &fakePayments{}
	svc := NewAnalyticsService(profiles, pay)

	profile := seedProfile(t, profiles, "acct_123")
	require.NoError(t, profiles.UpdateWithRetry(context.Background(), profile.ID, func(stored *models.Profile) error {
		stored.StripeAccountStatus = models.StripeAccountStatusActive
		return nil
	}))

	now := time.Now().Unix()
	old := time.Now().AddDate(0, -2, 0).Unix()
	pay.listBalanceTxnsFn = func(acctID, txType string, limit int64) ([]*stripe.BalanceTransaction, error) {
		require.Equal(t, "acct_123", acctID)
		require.Equal(t, "charge", txType)
		return []*stripe.BalanceTransaction{
			{ID: "txn_1", Amount: 2500, Currency: stripe.CurrencyEUR, Created: now},
			{ID: "txn_2", Amount: 1500, Currency: stripe.CurrencyEUR, Created: now - 3600},
			{ID: "txn_3", Amount: 4000, Currency: stripe.CurrencyEUR, Created: old},
		}, nil
	}

	resp, err := svc.RevenueSummary(context.Background(), profile.ID)
	require.NoError(t, err)
	require.Equal(t, int64(8000), resp.TotalRevenueCents)
	require.Equal(t, int64(4000), resp.MonthlyRevenueCents)
	require.Equal(t, 3, resp.TotalTransactions)

	require.Len(t, resp.RecentPayments, 3)
	// Newest first.
	require.Equal(t, "txn_1", resp.RecentPayments[0].ID)
	require.Equal(t, "txn_3", resp.RecentPayments[2].ID)
}
