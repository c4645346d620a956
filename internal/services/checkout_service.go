package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	stripe "github.com/stripe/stripe-go/v82"

	"github.com/stayextras/upsell-service/internal/config"
	"github.com/stayextras/upsell-service/internal/constants"
	"github.com/stayextras/upsell-service/internal/dtos"
	"github.com/stayextras/upsell-service/internal/models"
	"github.com/stayextras/upsell-service/internal/payments"
	"github.com/stayextras/upsell-service/internal/repositories"
	"github.com/stayextras/upsell-service/internal/utils"
)

// CheckoutService owns the order lifecycle: guest checkout creates a
// manual-capture authorization, host approval captures it, rejection
// voids it. Remote calls always precede local status writes, so the
// database never claims money moved when it did not.
type CheckoutService struct {
	Cfg        *config.Config
	orders     repositories.OrderRepository
	properties repositories.PropertyRepository
	profiles   repositories.ProfileRepository
	services   repositories.ServiceRepository
	pay        payments.Client
	notifier   OrderNotifier
}

func NewCheckoutService(
	cfg *config.Config,
	orders repositories.OrderRepository,
	properties repositories.PropertyRepository,
	profiles repositories.ProfileRepository,
	services repositories.ServiceRepository,
	pay payments.Client,
	notifier OrderNotifier,
) *CheckoutService {
	return &CheckoutService{
		Cfg:        cfg,
		orders:     orders,
		properties: properties,
		profiles:   profiles,
		services:   services,
		pay:        pay,
		notifier:   notifier,
	}
}

// PriceToCents converts a decimal service price to minor units once, at
// order time. Round-half-up matches how the prices were entered.
func PriceToCents(price float64) int64 {
	return int64(math.Round(price * 100))
}

// PlatformFeeCents floors, so the platform never takes more than 5%.
func PlatformFeeCents(totalCents int64) int64 {
	return totalCents * constants.PlatformFeePercent / 100
}

// ----------------------------------------------------------------------
// Guest checkout
// ----------------------------------------------------------------------

func (s *CheckoutService) CreateSession(ctx context.Context, req dtos.CreateCheckoutRequest) (*dtos.CreateCheckoutResponse, error) {
	propertyID, err := uuid.Parse(req.PropertyID)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusBadRequest, Code: utils.ErrCodeValidation, Message: "invalid property id", Err: err}
	}
	arrival, err := parseArrivalDate(req.GuestInfo.ArrivalDate)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusBadRequest, Code: utils.ErrCodeValidation, Message: "invalid arrival date", Err: err}
	}

	property, err := s.properties.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, &utils.AppError{StatusCode: http.StatusNotFound, Code: utils.ErrCodeNotFound, Message: "property not found"}
	}

	host, err := s.profiles.GetByID(ctx, property.HostID)
	if err != nil {
		return nil, err
	}
	// No remote call may happen before this check; a session against a
	// missing destination would strand an authorization nobody can act on.
	if host == nil || host.StripeAccountID == nil || *host.StripeAccountID == "" {
		return nil, &utils.AppError{
			StatusCode: http.StatusUnprocessableEntity,
			Code:       utils.ErrCodeAccountNotLinked,
			Message:    "The host has not finished payment setup for this property",
			Err:        utils.ErrAccountNotLinked,
		}
	}

	lines, totalCents, err := s.buildOrderLines(ctx, property, req.ServiceIDs)
	if err != nil {
		return nil, err
	}
	feeCents := PlatformFeeCents(totalCents)

	orderID := uuid.New()
	sessParams := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:    stripe.String(req.SuccessURL),
		CancelURL:     stripe.String(req.CancelURL),
		CustomerEmail: stripe.String(req.GuestInfo.Email),
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			CaptureMethod:        stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
			ApplicationFeeAmount: stripe.Int64(feeCents),
			TransferData: &stripe.CheckoutSessionPaymentIntentDataTransferDataParams{
				Destination: stripe.String(*host.StripeAccountID),
			},
			// Session metadata never propagates to the intent, and intent
			// events reference the order through this copy.
			Metadata: map[string]string{
				constants.WebhookMetadataOrderIDKey: orderID.String(),
				constants.WebhookMetadataHostIDKey:  host.ID.String(),
			},
		},
	}
	for _, line := range lines {
		sessParams.LineItems = append(sessParams.LineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(constants.Currency),
				UnitAmount: stripe.Int64(line.PriceCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripe.String(line.Name),
					Description: stripe.String(orDash(line.Description)),
				},
			},
		})
	}
	serviceIDs := make([]string, len(lines))
	for i, line := range lines {
		serviceIDs[i] = line.ServiceID.String()
	}
	sessParams.AddMetadata(constants.WebhookMetadataOrderIDKey, orderID.String())
	sessParams.AddMetadata(constants.WebhookMetadataPropertyIDKey, property.ID.String())
	sessParams.AddMetadata(constants.WebhookMetadataServiceIDsKey, strings.Join(serviceIDs, ","))
	sessParams.AddMetadata(constants.WebhookMetadataGuestNameKey, req.GuestInfo.Name)
	sessParams.AddMetadata(constants.WebhookMetadataGuestEmailKey, req.GuestInfo.Email)
	sessParams.AddMetadata(constants.WebhookMetadataHostIDKey, host.ID.String())

	sess, err := s.pay.CreateCheckoutSession(ctx, sessParams)
	if err != nil {
		utils.Logger.WithError(err).Error("Failed to create Stripe checkout session")
		return nil, &utils.AppError{
			StatusCode: http.StatusBadGateway,
			Code:       utils.ErrCodeExternalServiceFailure,
			Message:    "Payment provider rejected the checkout",
			Err:        err,
		}
	}

	order := &models.Order{
		ID:               orderID,
		HostID:           host.ID,
		PropertyID:       property.ID,
		Services:         lines,
		TotalAmountCents: totalCents,
		Status:           models.OrderStatusPending,
		GuestName:        req.GuestInfo.Name,
		GuestEmail:       req.GuestInfo.Email,
		ArrivalDate:      arrival,
		StripeSessionID:  &sess.ID,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		utils.Logger.WithError(err).Errorf("Failed to persist order for session %s", sess.ID)
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyNewOrder(ctx, host, property, order)
	}

	return &dtos.CreateCheckoutResponse{
		OrderID:         order.ID.String(),
		StripeSessionID: sess.ID,
		CheckoutURL:     sess.URL,
	}, nil
}

func (s *CheckoutService) buildOrderLines(ctx context.Context, property *models.Property, serviceIDs []string) ([]models.OrderLine, int64, error) {
	var lines []models.OrderLine
	var totalCents int64

	for _, raw := range serviceIDs {
		svcID, err := uuid.Parse(raw)
		if err != nil {
			return nil, 0, &utils.AppError{StatusCode: http.StatusBadRequest, Code: utils.ErrCodeValidation, Message: "invalid service id", Err: err}
		}
		svc, err := s.services.GetByID(ctx, svcID)
		if err != nil {
			return nil, 0, err
		}
		if svc == nil || svc.PropertyID != property.ID {
			return nil, 0, &utils.AppError{
				StatusCode: http.StatusUnprocessableEntity,
				Code:       utils.ErrCodeValidation,
				Message:    fmt.Sprintf("service %s is not offered at this property", raw),
			}
		}
		if svc.Price <= 0 {
			return nil, 0, &utils.AppError{
				StatusCode: http.StatusUnprocessableEntity,
				Code:       utils.ErrCodeValidation,
				Message:    fmt.Sprintf("service %s has no valid price", raw),
			}
		}

		cents := PriceToCents(svc.Price)
		lines = append(lines, models.OrderLine{
			ServiceID:   svc.ID,
			Name:        svc.Name,
			Description: svc.Description,
			Icon:        svc.Icon,
			PriceCents:  cents,
		})
		totalCents += cents
	}
	return lines, totalCents, nil
}

func parseArrivalDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// ----------------------------------------------------------------------
// Host review
// ----------------------------------------------------------------------

func (s *CheckoutService) ListOrders(ctx context.Context, hostID uuid.UUID) ([]*models.Order, error) {
	return s.orders.ListByHost(ctx, hostID)
}

// Approve captures the authorization and settles the order as paid.
// Approving an already-paid order is a no-op.
func (s *CheckoutService) Approve(ctx context.Context, hostID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.ownedOrder(ctx, hostID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == models.OrderStatusPaid {
		return order, nil
	}
	if order.Status != models.OrderStatusPending {
		return nil, orderNotPendingErr(order)
	}

	intentID, err := s.resolvePaymentIntentID(ctx, order)
	if err != nil {
		return nil, err
	}

	if _, err := s.pay.CapturePaymentIntent(ctx, intentID); err != nil {
		utils.Logger.WithError(err).Errorf("Capture failed for order %s (intent %s)", order.ID, intentID)
		return nil, &utils.AppError{
			StatusCode: http.StatusBadGateway,
			Code:       utils.ErrCodeExternalServiceFailure,
			Message:    "Payment capture failed; the order is still pending",
			Err:        err,
		}
	}

	if err := s.orders.UpdateWithRetry(ctx, order.ID, func(stored *models.Order) error {
		if stored.Status == models.OrderStatusPending {
			stored.Status = models.OrderStatusPaid
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return s.orders.GetByID(ctx, order.ID)
}

// Reject voids the authorization and closes the order. The guest is
// never charged.
func (s *CheckoutService) Reject(ctx context.Context, hostID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.ownedOrder(ctx, hostID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == models.OrderStatusRejected {
		return order, nil
	}
	if order.Status != models.OrderStatusPending {
		return nil, orderNotPendingErr(order)
	}

	intentID, err := s.resolvePaymentIntentID(ctx, order)
	if err != nil {
		return nil, err
	}

	if _, err := s.pay.CancelPaymentIntent(ctx, intentID); err != nil {
		utils.Logger.WithError(err).Errorf("Void failed for order %s (intent %s)", order.ID, intentID)
		return nil, &utils.AppError{
			StatusCode: http.StatusBadGateway,
			Code:       utils.ErrCodeExternalServiceFailure,
			Message:    "Payment void failed; the order is still pending",
			Err:        err,
		}
	}

	if err := s.orders.UpdateWithRetry(ctx, order.ID, func(stored *models.Order) error {
		if stored.Status == models.OrderStatusPending {
			stored.Status = models.OrderStatusRejected
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return s.orders.GetByID(ctx, order.ID)
}

func (s *CheckoutService) ownedOrder(ctx context.Context, hostID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, &utils.AppError{StatusCode: http.StatusNotFound, Code: utils.ErrCodeNotFound, Message: "order not found"}
	}
	if order.HostID != hostID {
		return nil, &utils.AppError{StatusCode: http.StatusForbidden, Code: utils.ErrCodeForbidden, Message: "order belongs to another host", Err: utils.ErrNotOwner}
	}
	return order, nil
}

func orderNotPendingErr(order *models.Order) error {
	return &utils.AppError{
		StatusCode: http.StatusConflict,
		Code:       utils.ErrCodeOrderNotPending,
		Message:    fmt.Sprintf("order is %s and can no longer be reviewed", order.Status),
		Err:        utils.ErrOrderNotPending,
	}
}

// resolvePaymentIntentID prefers the stored intent id and falls back to
// the checkout session. The resolved id is persisted for the next caller.
func (s *CheckoutService) resolvePaymentIntentID(ctx context.Context, order *models.Order) (string, error) {
	if order.StripePaymentIntentID != nil && *order.StripePaymentIntentID != "" {
		return *order.StripePaymentIntentID, nil
	}
	if order.StripeSessionID == nil || *order.StripeSessionID == "" {
		return "", &utils.AppError{
			StatusCode: http.StatusConflict,
			Code:       utils.ErrCodeConflict,
			Message:    "order has no payment reference",
		}
	}

	sess, err := s.pay.GetCheckoutSession(ctx, *order.StripeSessionID)
	if err != nil {
		return "", &utils.AppError{
			StatusCode: http.StatusBadGateway,
			Code:       utils.ErrCodeExternalServiceFailure,
			Message:    "Could not look up the checkout session",
			Err:        err,
		}
	}
	if sess.PaymentIntent == nil || sess.PaymentIntent.ID == "" {
		return "", &utils.AppError{
			StatusCode: http.StatusConflict,
			Code:       utils.ErrCodeConflict,
			Message:    "the guest has not completed payment yet",
		}
	}

	intentID := sess.PaymentIntent.ID
	if err := s.orders.UpdateWithRetry(ctx, order.ID, func(stored *models.Order) error {
		if stored.StripePaymentIntentID == nil || *stored.StripePaymentIntentID == "" {
			stored.StripePaymentIntentID = &intentID
		}
		return nil
	}); err != nil {
		utils.Logger.WithError(err).Warnf("Could not store resolved intent id on order %s", order.ID)
	}
	return intentID, nil
}

// ----------------------------------------------------------------------
// Webhook handlers
// ----------------------------------------------------------------------

// HandleCheckoutSessionCompleted records the payment intent created by
// the guest's payment so later review calls skip the session lookup.
func (s *CheckoutService) HandleCheckoutSessionCompleted(sess *stripe.CheckoutSession) error {
	ctx := context.Background()

	order, err := s.orders.GetByStripeSessionID(ctx, sess.ID)
	if err != nil {
		return err
	}
	if order == nil {
		utils.Logger.Warnf("checkout.session.completed for unknown session %s", sess.ID)
		return nil
	}
	if sess.PaymentIntent == nil || sess.PaymentIntent.ID == "" {
		return nil
	}

	intentID := sess.PaymentIntent.ID
	utils.Logger.Infof("checkout.session.completed: order=%s intent=%s", order.ID, intentID)
	return s.orders.UpdateWithRetry(ctx, order.ID, func(stored *models.Order) error {
		stored.StripePaymentIntentID = &intentID
		return nil
	})
}

// HandlePaymentIntentCanceled closes orders whose hold was voided outside
// the review flow (expiry, support action). Terminal orders are left alone.
func (s *CheckoutService) HandlePaymentIntentCanceled(pi *stripe.PaymentIntent) error {
	ctx := context.Background()

	order, err := s.orders.GetByStripePaymentIntentID(ctx, pi.ID)
	if err != nil {
		return err
	}
	if order == nil {
		if orderID, ok := pi.Metadata[constants.WebhookMetadataOrderIDKey]; ok {
			if id, parseErr := uuid.Parse(orderID); parseErr == nil {
				order, err = s.orders.GetByID(ctx, id)
				if err != nil {
					return err
				}
			}
		}
	}
	if order == nil {
		utils.Logger.Warnf("payment_intent.canceled for unknown intent %s", pi.ID)
		return nil
	}
	if order.IsTerminal() {
		return nil
	}

	utils.Logger.Infof("payment_intent.canceled: order=%s", order.ID)
	return s.orders.UpdateWithRetry(ctx, order.ID, func(stored *models.Order) error {
		if !stored.IsTerminal() {
			stored.Status = models.OrderStatusCancelled
		}
		return nil
	})
}

// ----------------------------------------------------------------------
// Authorization sweep
// ----------------------------------------------------------------------

// SweepExpiredAuthorizations voids holds on stale pending orders before
// Stripe expires them on its own. Failures leave the order for the next
// run.
func (s *CheckoutService) SweepExpiredAuthorizations(ctx context.Context) error {
	cutoff := time.Now().Add(-constants.PendingOrderMaxAge)
	stale, err := s.orders.ListPendingCreatedBefore(ctx, cutoff)
	if err != nil {
		return err
	}

	for _, order := range stale {
		intentID, err := s.resolvePaymentIntentID(ctx, order)
		if err != nil {
			// No intent means the guest never finished paying; there is
			// no hold to void, only a dead order to close.
			var appErr *utils.AppError
			if errors.As(err, &appErr) && appErr.Code == utils.ErrCodeConflict {
				intentID = ""
			} else {
				utils.Logger.WithError(err).Warnf("Sweep: cannot resolve intent for order %s", order.ID)
				continue
			}
		}
		if intentID != "" {
			if _, err := s.pay.CancelPaymentIntent(ctx, intentID); err != nil {
				utils.Logger.WithError(err).Warnf("Sweep: void failed for order %s", order.ID)
				continue
			}
		}
		if err := s.orders.UpdateWithRetry(ctx, order.ID, func(stored *models.Order) error {
			if stored.Status == models.OrderStatusPending {
				stored.Status = models.OrderStatusCancelled
			}
			return nil
		}); err != nil {
			utils.Logger.WithError(err).Warnf("Sweep: status update failed for order %s", order.ID)
			continue
		}

		if s.notifier != nil {
			if host, hErr := s.profiles.GetByID(ctx, order.HostID); hErr == nil && host != nil {
				s.notifier.NotifyOrderCancelled(ctx, host, order)
			}
		}
		utils.Logger.Infof("Sweep: cancelled stale order %s", order.ID)
	}
	return nil
}
