package services

import (
	"context"
	"testing"
	"time"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stretchr/testify/require"

	"github.com/stayextras/upsell-service/internal/models"
)

func newTestPoller(svc *HostStripeService, maxAttempts int) *ActivationPoller {
	p := NewActivationPoller(svc)
	p.interval = 5 * time.Millisecond
	p.maxAttempts = maxAttempts
	return p
}

func TestPollerReportsActiveOnceAccountActivates(t *testing.T) {
	svc, profiles, pay := newStripeTestService(t)
	profile := seedProfile(t, profiles, "acct_123")
	pay.getAccountFn = func(acctID string) (*stripe.Account, error) {
		return activeAccount(acctID), nil
	}

	p := newTestPoller(svc, 24)
	p.Start(profile.ID)

	require.Eventually(t, func() bool {
		return p.Status(profile.ID) == PollStatusActive
	}, 2*time.Second, 5*time.Millisecond)

	stored, err := profiles.GetByID(context.Background(), profile.ID)
	require.NoError(t, err)
	require.Equal(t, models.StripeAccountStatusActive, stored.StripeAccountStatus)
}

func TestPollerTimesOutButProfileStaysPending(t *testing.T) {
	svc, profiles, pay := newStripeTestService(t)
	profile := seedProfile(t, profiles, "acct_123")
	pay.getAccountFn = func(acctID string) (*stripe.Account, error) {
		// Onboarding never completes during the poll window.
		return &stripe.Account{ID: acctID}, nil
	}

	p := newTestPoller(svc, 3)
	p.Start(profile.ID)

	require.Eventually(t, func() bool {
		return p.Status(profile.ID) == PollStatusTimeout
	}, 2*time.Second, 5*time.Millisecond)

	// Timeout is observable only; the stored status is untouched so a
	// later webhook can still activate the account.
	stored, err := profiles.GetByID(context.Background(), profile.ID)
	require.NoError(t, err)
	require.Equal(t, models.StripeAccountStatusPending, stored.StripeAccountStatus)
}

func TestPollerStartIsIdempotent(t *testing.T) {
	svc, profiles, pay := newStripeTestService(t)
	profile := seedProfile(t, profiles, "acct_123")
	pay.getAccountFn = func(acctID string) (*stripe.Account, error) {
		return &stripe.Account{ID: acctID}, nil
	}

	p := newTestPoller(svc, 1000)
	p.Start(profile.ID)
	p.Start(profile.ID)
	require.Equal(t, PollStatusPolling, p.Status(profile.ID))

	p.Cancel(profile.ID)
	require.Equal(t, PollStatusIdle, p.Status(profile.ID))
}

func TestPollerCancelStopsSyncing(t *testing.T) {
	svc, profiles, pay := newStripeTestService(t)
	profile := seedProfile(t, profiles, "acct_123")
	pay.getAccountFn = func(acctID string) (*stripe.Account, error) {
		return &stripe.Account{ID: acctID}, nil
	}

	p := newTestPoller(svc, 1000)
	p.Start(profile.ID)

	// Let at least one tick happen, then cancel.
	time.Sleep(20 * time.Millisecond)
	p.Cancel(profile.ID)
	require.Equal(t, PollStatusIdle, p.Status(profile.ID))

	// Let any in-flight sync drain before snapshotting the call count.
	time.Sleep(20 * time.Millisecond)
	pay.mu.Lock()
	callsAtCancel := pay.getAccountCalls
	pay.mu.Unlock()

	time.Sleep(50 * time.Millisecond)
	pay.mu.Lock()
	callsAfter := pay.getAccountCalls
	pay.mu.Unlock()
	require.Equal(t, callsAtCancel, callsAfter)
}

func TestPollerRestartAfterTimeout(t *testing.T) {
	svc, profiles, pay := newStripeTestService(t)
	profile := seedProfile(t, profiles, "acct_123")
	pay.getAccountFn = func(acctID string) (*stripe.Account, error) {
		return &stripe.Account{ID: acctID}, nil
	}

	p := newTestPoller(svc, 2)
	p.Start(profile.ID)
	require.Eventually(t, func() bool {
		return p.Status(profile.ID) == PollStatusTimeout
	}, 2*time.Second, 5*time.Millisecond)

	// A finished poll can be started again.
	pay.getAccountFn = func(acctID string) (*stripe.Account, error) {
		return activeAccount(acctID), nil
	}
	p.Start(profile.ID)
	require.Eventually(t, func() bool {
		return p.Status(profile.ID) == PollStatusActive
	}, 2*time.Second, 5*time.Millisecond)
}
