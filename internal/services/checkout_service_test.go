package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stretchr/testify/require"

	"github.com/stayextras/upsell-service/internal/config"
	"github.com/stayextras/upsell-service/internal/constants"
	"github.com/stayextras/upsell-service/internal/dtos"
	"github.com/stayextras/upsell-service/internal/models"
	"github.com/stayextras/upsell-service/internal/utils"
)

type checkoutFixture struct {
	svc        *CheckoutService
	orders     *fakeOrderRepo
	properties *fakePropertyRepo
	profiles   *fakeProfileRepo
	services   *fakeServiceRepo
	pay        *fakePayments

	host     *models.Profile
	property *models.Property
	wine     *models.Service
	lateOut  *models.Service
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	f := &checkoutFixture{
		orders:     newFakeOrderRepo(),
		properties: newFakePropertyRepo(),
		profiles:   newFakeProfileRepo(),
		services:   newFakeServiceRepo(),
		pay:        &fakePayments{},
	}
	cfg := &config.Config{AppName: "upsell-service"}
	f.svc = NewCheckoutService(cfg, f.orders, f.properties, f.profiles, f.services, f.pay, nil)

	ctx := context.Background()
	acctID := "acct_host"
	f.host = &models.Profile{
		ID:                  uuid.New(),
		Email:               "host@example.com",
		StripeAccountID:     &acctID,
		StripeAccountStatus: models.StripeAccountStatusActive,
	}
	require.NoError(t, f.profiles.Create(ctx, f.host))

	f.property = &models.Property{
		ID:     uuid.New(),
		HostID: f.host.ID,
		Name:   "Loft Montmartre",
	}
	require.NoError(t, f.properties.Create(ctx, f.property))

	f.wine = &models.Service{
		ID:         uuid.New(),
		PropertyID: f.property.ID,
		HostID:     f.host.ID,
		Name:       "Welcome wine basket",
		Price:      25.00,
		Icon:       "wine",
	}
	f.lateOut = &models.Service{
		ID:         uuid.New(),
		PropertyID: f.property.ID,
		HostID:     f.host.ID,
		Name:       "Late checkout",
		Price:      15.00,
		Icon:       "clock",
	}
	require.NoError(t, f.services.Create(ctx, f.wine))
	require.NoError(t, f.services.Create(ctx, f.lateOut))
	return f
}

func (f *checkoutFixture) checkoutRequest(serviceIDs ...uuid.UUID) dtos.CreateCheckoutRequest {
	ids := make([]string, len(serviceIDs))
	for i, id := range serviceIDs {
		ids[i] = id.String()
	}
	return dtos.CreateCheckoutRequest{
		PropertyID: f.property.ID.String(),
		ServiceIDs: ids,
		GuestInfo: dtos.CheckoutGuestInfo{
			Name:        "Jamie Guest",
			Email:       "jamie@example.com",
			ArrivalDate: "2026-09-12",
		},
		SuccessURL: "https://stay.example.com/thanks",
		CancelURL:  "https://stay.example.com/cancel",
	}
}

func TestPriceToCents(t *testing.T) {
	require.Equal(t, int64(1500), PriceToCents(15.00))
	require.Equal(t, int64(2500), PriceToCents(25.00))
	require.Equal(t, int64(1999), PriceToCents(19.99))
	require.Equal(t, int64(10), PriceToCents(0.10))
}

func TestPlatformFeeCentsFloors(t *testing.T) {
	require.Equal(t, int64(200), PlatformFeeCents(4000))
	require.Equal(t, int64(4), PlatformFeeCents(99))    // 4.95 floors to 4
	require.Equal(t, int64(0), PlatformFeeCents(19))    // 0.95 floors to 0
	require.Equal(t, int64(50), PlatformFeeCents(1001)) // 50.05 floors to 50
}

func TestCreateSessionBuildsManualCaptureSplit(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	resp, err := f.svc.CreateSession(ctx, f.checkoutRequest(f.lateOut.ID, f.wine.ID))
	require.NoError(t, err)
	require.Equal(t, "cs_test", resp.StripeSessionID)
	require.NotEmpty(t, resp.CheckoutURL)

	require.Len(t, f.pay.sessionParams, 1)
	params := f.pay.sessionParams[0]

	pid := params.PaymentIntentData
	require.NotNil(t, pid)
	require.Equal(t, string(stripe.PaymentIntentCaptureMethodManual), *pid.CaptureMethod)
	// 15.00 + 25.00 = 4000 cents, 5% fee = 200 cents.
	require.Equal(t, int64(200), *pid.ApplicationFeeAmount)
	require.Equal(t, "acct_host", *pid.TransferData.Destination)
	// The intent carries its own metadata copy; session metadata never
	// reaches payment_intent.* events.
	require.Equal(t, resp.OrderID, pid.Metadata[constants.WebhookMetadataOrderIDKey])

	require.Len(t, params.LineItems, 2)
	for _, li := range params.LineItems {
		require.Equal(t, int64(1), *li.Quantity)
		require.Equal(t, constants.Currency, *li.PriceData.Currency)
	}
	require.Equal(t, int64(1500), *params.LineItems[0].PriceData.UnitAmount)
	require.Equal(t, int64(2500), *params.LineItems[1].PriceData.UnitAmount)

	orderID := uuid.MustParse(resp.OrderID)
	order, err := f.orders.GetByID(ctx, orderID)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusPending, order.Status)
	require.Equal(t, int64(4000), order.TotalAmountCents)
	require.Len(t, order.Services, 2)
}

func TestCreateSessionRejectsUnlinkedHost(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	require.NoError(t, f.profiles.UpdateWithRetry(ctx, f.host.ID, func(stored *models.Profile) error {
		stored.StripeAccountID = nil
		stored.StripeAccountStatus = models.StripeAccountStatusNew
		return nil
	}))

	_, err := f.svc.CreateSession(ctx, f.checkoutRequest(f.wine.ID))
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, utils.ErrCodeAccountNotLinked, appErr.Code)
	require.ErrorIs(t, err, utils.ErrAccountNotLinked)
	// The rejection happens before any remote call.
	require.Empty(t, f.pay.sessionParams)
}

func TestCreateSessionRejectsForeignService(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	otherService := &models.Service{
		ID:         uuid.New(),
		PropertyID: uuid.New(),
		HostID:     uuid.New(),
		Name:       "Airport transfer",
		Price:      60.00,
	}
	require.NoError(t, f.services.Create(ctx, otherService))

	_, err := f.svc.CreateSession(ctx, f.checkoutRequest(f.wine.ID, otherService.ID))
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, utils.ErrCodeValidation, appErr.Code)
	require.Empty(t, f.pay.sessionParams)
}

func TestCreateSessionRemoteFailureWritesNothing(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	f.pay.createSessionFn = func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		return nil, errors.New("stripe is down")
	}

	_, err := f.svc.CreateSession(ctx, f.checkoutRequest(f.wine.ID))
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, utils.ErrCodeExternalServiceFailure, appErr.Code)
	require.Empty(t, f.orders.orders)
}

func TestOrderSnapshotSurvivesPriceEdit(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	resp, err := f.svc.CreateSession(ctx, f.checkoutRequest(f.wine.ID))
	require.NoError(t, err)

	// The host raises the price after the guest ordered.
	require.NoError(t, f.services.UpdateWithRetry(ctx, f.wine.ID, func(stored *models.Service) error {
		stored.Price = 99.00
		return nil
	}))

	order, err := f.orders.GetByID(ctx, uuid.MustParse(resp.OrderID))
	require.NoError(t, err)
	require.Equal(t, int64(2500), order.TotalAmountCents)
	require.Equal(t, int64(2500), order.Services[0].PriceCents)
}

func seedOrder(t *testing.T, f *checkoutFixture, status models.OrderStatusType, intentID string) *models.Order {
	t.Helper()
	sessionID := "cs_" + uuid.NewString()
	order := &models.Order{
		ID:               uuid.New(),
		HostID:           f.host.ID,
		PropertyID:       f.property.ID,
		Status:           status,
		TotalAmountCents: 2500,
		Services: []models.OrderLine{{
			ServiceID:  f.wine.ID,
			Name:       f.wine.Name,
			PriceCents: 2500,
		}},
		StripeSessionID: &sessionID,
		CreatedAt:       time.Now(),
	}
	if intentID != "" {
		order.StripePaymentIntentID = &intentID
	}
	require.NoError(t, f.orders.Create(context.Background(), order))
	return order
}

func TestApproveCapturesAndSettles(t *testing.T) {
	f := newCheckoutFixture(t)
	order := seedOrder(t, f, models.OrderStatusPending, "pi_123")

	settled, err := f.svc.Approve(context.Background(), f.host.ID, order.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusPaid, settled.Status)
	require.Equal(t, []string{"pi_123"}, f.pay.capturedIntents)
}

func TestApproveIsIdempotent(t *testing.T) {
	f := newCheckoutFixture(t)
	order := seedOrder(t, f, models.OrderStatusPending, "pi_123")
	ctx := context.Background()

	_, err := f.svc.Approve(ctx, f.host.ID, order.ID)
	require.NoError(t, err)

	settled, err := f.svc.Approve(ctx, f.host.ID, order.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusPaid, settled.Status)
	// The second approval never reaches the payment provider.
	require.Len(t, f.pay.capturedIntents, 1)
}

func TestApproveCaptureFailureLeavesOrderPending(t *testing.T) {
	f := newCheckoutFixture(t)
	order := seedOrder(t, f, models.OrderStatusPending, "pi_123")

	f.pay.captureFn = func(intentID string) (*stripe.PaymentIntent, error) {
		return nil, errors.New("capture declined")
	}

	_, err := f.svc.Approve(context.Background(), f.host.ID, order.ID)
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, utils.ErrCodeExternalServiceFailure, appErr.Code)

	stored, err := f.orders.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusPending, stored.Status)
}

func TestApproveResolvesIntentFromSession(t *testing.T) {
	f := newCheckoutFixture(t)
	order := seedOrder(t, f, models.OrderStatusPending, "")

	f.pay.getSessionFn = func(sessionID string) (*stripe.CheckoutSession, error) {
		return &stripe.CheckoutSession{
			ID:            sessionID,
			PaymentIntent: &stripe.PaymentIntent{ID: "pi_from_session"},
		}, nil
	}

	settled, err := f.svc.Approve(context.Background(), f.host.ID, order.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusPaid, settled.Status)
	require.Equal(t, []string{"pi_from_session"}, f.pay.capturedIntents)

	stored, err := f.orders.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.StripePaymentIntentID)
	require.Equal(t, "pi_from_session", *stored.StripePaymentIntentID)
}

func TestApproveUnpaidOrderConflicts(t *testing.T) {
	f := newCheckoutFixture(t)
	order := seedOrder(t, f, models.OrderStatusPending, "")

	// The guest abandoned checkout; the session has no intent yet.
	f.pay.getSessionFn = func(sessionID string) (*stripe.CheckoutSession, error) {
		return &stripe.CheckoutSession{ID: sessionID}, nil
	}

	_, err := f.svc.Approve(context.Background(), f.host.ID, order.ID)
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, utils.ErrCodeConflict, appErr.Code)
	require.Empty(t, f.pay.capturedIntents)
}

func TestApproveForeignOrderForbidden(t *testing.T) {
	f := newCheckoutFixture(t)
	order := seedOrder(t, f, models.OrderStatusPending, "pi_123")

	_, err := f.svc.Approve(context.Background(), uuid.New(), order.ID)
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, utils.ErrCodeForbidden, appErr.Code)
	require.ErrorIs(t, err, utils.ErrNotOwner)
	require.Empty(t, f.pay.capturedIntents)
}

func TestRejectVoidsAuthorization(t *testing.T) {
	f := newCheckoutFixture(t)
	order := seedOrder(t, f, models.OrderStatusPending, "pi_123")

	rejected, err := f.svc.Reject(context.Background(), f.host.ID, order.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusRejected, rejected.Status)
	require.Equal(t, []string{"pi_123"}, f.pay.cancelledIntents)
	require.Empty(t, f.pay.capturedIntents)
}

func TestRejectVoidFailureLeavesOrderPending(t *testing.T) {
	f := newCheckoutFixture(t)
	order := seedOrder(t, f, models.OrderStatusPending, "pi_123")

	f.pay.cancelFn = func(intentID string) (*stripe.PaymentIntent, error) {
		return nil, errors.New("void failed")
	}

	_, err := f.svc.Reject(context.Background(), f.host.ID, order.ID)
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, utils.ErrCodeExternalServiceFailure, appErr.Code)

	stored, err := f.orders.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusPending, stored.Status)
}

func TestRejectPaidOrderConflicts(t *testing.T) {
	f := newCheckoutFixture(t)
	order := seedOrder(t, f, models.OrderStatusPaid, "pi_123")

	_, err := f.svc.Reject(context.Background(), f.host.ID, order.ID)
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, utils.ErrCodeOrderNotPending, appErr.Code)
	require.ErrorIs(t, err, utils.ErrOrderNotPending)
	require.Empty(t, f.pay.cancelledIntents)
}

func TestHandleCheckoutSessionCompletedStoresIntent(t *testing.T) {
	f := newCheckoutFixture(t)
	order := seedOrder(t, f, models.OrderStatusPending, "")

	sess := &stripe.CheckoutSession{
		ID:            *order.StripeSessionID,
		PaymentIntent: &stripe.PaymentIntent{ID: "pi_webhook"},
	}
	require.NoError(t, f.svc.HandleCheckoutSessionCompleted(sess))

	stored, err := f.orders.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.StripePaymentIntentID)
	require.Equal(t, "pi_webhook", *stored.StripePaymentIntentID)
	require.Equal(t, models.OrderStatusPending, stored.Status)
}

func TestHandlePaymentIntentCanceledClosesOrder(t *testing.T) {
	f := newCheckoutFixture(t)
	order := seedOrder(t, f, models.OrderStatusPending, "pi_123")

	require.NoError(t, f.svc.HandlePaymentIntentCanceled(&stripe.PaymentIntent{ID: "pi_123"}))

	stored, err := f.orders.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusCancelled, stored.Status)
}

func TestHandlePaymentIntentCanceledResolvesOrderFromMetadata(t *testing.T) {
	f := newCheckoutFixture(t)
	// Canceled before checkout.session.completed ever stored the intent
	// id; the order is only reachable through the intent's metadata.
	order := seedOrder(t, f, models.OrderStatusPending, "")

	pi := &stripe.PaymentIntent{
		ID:       "pi_never_stored",
		Metadata: map[string]string{constants.WebhookMetadataOrderIDKey: order.ID.String()},
	}
	require.NoError(t, f.svc.HandlePaymentIntentCanceled(pi))

	stored, err := f.orders.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusCancelled, stored.Status)
}

func TestHandlePaymentIntentCanceledLeavesTerminalOrders(t *testing.T) {
	f := newCheckoutFixture(t)
	order := seedOrder(t, f, models.OrderStatusPaid, "pi_123")

	require.NoError(t, f.svc.HandlePaymentIntentCanceled(&stripe.PaymentIntent{ID: "pi_123"}))

	stored, err := f.orders.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusPaid, stored.Status)
}

func TestSweepVoidsStalePendingOrders(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	stale := seedOrder(t, f, models.OrderStatusPending, "pi_stale")
	require.NoError(t, f.orders.UpdateWithRetry(ctx, stale.ID, func(stored *models.Order) error {
		stored.CreatedAt = time.Now().Add(-7 * 24 * time.Hour)
		return nil
	}))
	fresh := seedOrder(t, f, models.OrderStatusPending, "pi_fresh")

	require.NoError(t, f.svc.SweepExpiredAuthorizations(ctx))

	staleStored, err := f.orders.GetByID(ctx, stale.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusCancelled, staleStored.Status)
	require.Equal(t, []string{"pi_stale"}, f.pay.cancelledIntents)

	freshStored, err := f.orders.GetByID(ctx, fresh.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusPending, freshStored.Status)
}

func TestSweepCancelsNeverPaidOrdersLocally(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	abandoned := seedOrder(t, f, models.OrderStatusPending, "")
	require.NoError(t, f.orders.UpdateWithRetry(ctx, abandoned.ID, func(stored *models.Order) error {
		stored.CreatedAt = time.Now().Add(-7 * 24 * time.Hour)
		return nil
	}))
	f.pay.getSessionFn = func(sessionID string) (*stripe.CheckoutSession, error) {
		return &stripe.CheckoutSession{ID: sessionID}, nil
	}

	require.NoError(t, f.svc.SweepExpiredAuthorizations(ctx))

	stored, err := f.orders.GetByID(ctx, abandoned.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusCancelled, stored.Status)
	// There was never a hold, so nothing is voided remotely.
	require.Empty(t, f.pay.cancelledIntents)
}
