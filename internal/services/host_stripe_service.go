package services

import (
	"context"
	"fmt"
	"net"
	"net/url"

	"github.com/google/uuid"
	stripe "github.com/stripe/stripe-go/v82"

	"github.com/stayextras/upsell-service/internal/config"
	"github.com/stayextras/upsell-service/internal/constants"
	"github.com/stayextras/upsell-service/internal/models"
	"github.com/stayextras/upsell-service/internal/payments"
	"github.com/stayextras/upsell-service/internal/repositories"
	"github.com/stayextras/upsell-service/internal/utils"
)

// HostStripeService orchestrates Connect Express onboarding and keeps the
// local activation state in sync with Stripe. The poll path and every
// webhook handler converge on applyRemoteAccount, so both writers derive
// the same value for the same remote account.
type HostStripeService struct {
	Cfg         *config.Config
	profiles    repositories.ProfileRepository
	pay         payments.Client
	generatedBy string
}

func NewHostStripeService(cfg *config.Config, profiles repositories.ProfileRepository, pay payments.Client) *HostStripeService {
	return &HostStripeService{
		Cfg:         cfg,
		profiles:    profiles,
		pay:         pay,
		generatedBy: cfg.AppName,
	}
}

// AccountIsActive is the single activation rule. Flags alone are not
// enough; both capabilities must have reached "active".
func AccountIsActive(detailsSubmitted, chargesEnabled bool, cardPayments, transfers string) bool {
	return detailsSubmitted &&
		chargesEnabled &&
		cardPayments == constants.StripeCapabilityStatusActive &&
		transfers == constants.StripeCapabilityStatusActive
}

// ----------------------------------------------------------------------
// Create or retrieve a Connect account, then return the onboarding link
// ----------------------------------------------------------------------

func (s *HostStripeService) InitiateOnboarding(ctx context.Context, hostID uuid.UUID, returnURL string) (string, error) {
	if err := checkReturnURL(returnURL); err != nil {
		return "", err
	}

	profile, err := s.profiles.GetByID(ctx, hostID)
	if err != nil {
		utils.Logger.WithError(err).Error("Failed to retrieve profile for InitiateOnboarding")
		return "", fmt.Errorf("could not retrieve profile: %w", err)
	}
	if profile == nil {
		return "", utils.ErrNotFound
	}

	var acctID string
	if profile.StripeAccountID == nil || *profile.StripeAccountID == "" {
		acctID, err = s.initializeExpressAccount(ctx, profile)
		if err != nil {
			utils.Logger.WithError(err).Error("Failed to create Stripe Connect account")
			return "", fmt.Errorf("could not create Stripe Connect account: %w", err)
		}
	} else {
		acctID = *profile.StripeAccountID
	}

	linkParams := &stripe.AccountLinkParams{
		Account:    stripe.String(acctID),
		ReturnURL:  stripe.String(returnURL + "?setup_return=true"),
		RefreshURL: stripe.String(returnURL + "?refresh=true"),
		Type:       stripe.String(string(stripe.AccountLinkTypeAccountOnboarding)),
	}
	acctLink, err := s.pay.CreateAccountLink(ctx, linkParams)
	if err != nil {
		utils.Logger.WithError(err).Error("Failed to create Stripe AccountLink")
		return "", fmt.Errorf("could not create AccountLink: %w", err)
	}
	return acctLink.URL, nil
}

func (s *HostStripeService) initializeExpressAccount(ctx context.Context, profile *models.Profile) (string, error) {
	acctParams := &stripe.AccountParams{
		Type:    stripe.String(string(stripe.AccountTypeExpress)),
		Country: stripe.String(constants.StripeAccountCountry),
		Email:   stripe.String(profile.Email),
		Capabilities: &stripe.AccountCapabilitiesParams{
			CardPayments: &stripe.AccountCapabilitiesCardPaymentsParams{
				Requested: stripe.Bool(true),
			},
			Transfers: &stripe.AccountCapabilitiesTransfersParams{
				Requested: stripe.Bool(true),
			},
		},
		Metadata: map[string]string{
			constants.WebhookMetadataGeneratedByKey: s.generatedBy,
			constants.WebhookMetadataHostIDKey:      profile.ID.String(),
		},
	}

	acct, createErr := s.pay.CreateAccount(ctx, acctParams)
	if createErr != nil {
		return "", createErr
	}
	acctID := acct.ID

	if err := s.profiles.UpdateWithRetry(ctx, profile.ID, func(stored *models.Profile) error {
		stored.StripeAccountID = &acctID
		stored.StripeAccountStatus = models.StripeAccountStatusPending
		return nil
	}); err != nil {
		utils.Logger.WithError(err).Error("Failed to update profile with new Connect account ID")
		return "", fmt.Errorf("could not update profile with new connect account ID: %w", err)
	}

	return acctID, nil
}

// checkReturnURL rejects plain-http return URLs except on loopback hosts,
// where local development runs.
func checkReturnURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return utils.ErrInsecureReturnURL
	}
	if u.Scheme == "https" {
		return nil
	}
	host := u.Hostname()
	if host == "localhost" {
		return nil
	}
	if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
		return nil
	}
	return utils.ErrInsecureReturnURL
}

// ----------------------------------------------------------------------
// Poll path
// ----------------------------------------------------------------------

// SyncAccountStatus re-fetches the remote account and persists the derived
// status. Returns the refreshed profile.
func (s *HostStripeService) SyncAccountStatus(ctx context.Context, hostID uuid.UUID) (*models.Profile, error) {
	profile, err := s.profiles.GetByID(ctx, hostID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, utils.ErrNotFound
	}
	if profile.StripeAccountID == nil || *profile.StripeAccountID == "" {
		return profile, nil
	}

	acct, err := s.pay.GetAccount(ctx, *profile.StripeAccountID)
	if err != nil {
		utils.Logger.WithError(err).Errorf("Failed to fetch Stripe account %s", *profile.StripeAccountID)
		return nil, fmt.Errorf("could not fetch Stripe account: %w", err)
	}

	if err := s.applyRemoteAccount(ctx, profile.ID, acct); err != nil {
		return nil, err
	}
	return s.profiles.GetByID(ctx, hostID)
}

// applyRemoteAccount recomputes the activation state from a freshly
// fetched account and writes it with a conditional update. The write is
// skipped when the stored account id no longer matches (reset or
// reconnect raced this sync).
func (s *HostStripeService) applyRemoteAccount(ctx context.Context, hostID uuid.UUID, acct *stripe.Account) error {
	cardPayments, transfers := capabilityStatuses(acct)
	status := models.StripeAccountStatusPending
	if AccountIsActive(acct.DetailsSubmitted, acct.ChargesEnabled, cardPayments, transfers) {
		status = models.StripeAccountStatusActive
	}
	req := requirementsFromAccount(acct)

	return s.profiles.UpdateWithRetry(ctx, hostID, func(stored *models.Profile) error {
		if stored.StripeAccountID == nil || *stored.StripeAccountID != acct.ID {
			return nil
		}
		stored.StripeAccountStatus = status
		stored.StripeChargesEnabled = acct.ChargesEnabled
		stored.StripePayoutsEnabled = acct.PayoutsEnabled
		stored.StripeRequirements = req
		return nil
	})
}

func capabilityStatuses(acct *stripe.Account) (cardPayments string, transfers string) {
	if acct.Capabilities == nil {
		return "", ""
	}
	return string(acct.Capabilities.CardPayments), string(acct.Capabilities.Transfers)
}

func requirementsFromAccount(acct *stripe.Account) *models.StripeRequirements {
	req := &models.StripeRequirements{}
	if acct.Requirements != nil {
		req.CurrentlyDue = acct.Requirements.CurrentlyDue
		req.EventuallyDue = acct.Requirements.EventuallyDue
		req.PastDue = acct.Requirements.PastDue
		req.PendingVerification = acct.Requirements.PendingVerification
		req.DisabledReason = string(acct.Requirements.DisabledReason)
		req.CurrentDeadline = acct.Requirements.CurrentDeadline
	}
	cardPayments, transfers := capabilityStatuses(acct)
	req.Capabilities = &models.StripeCapabilities{
		CardPayments: cardPayments,
		Transfers:    transfers,
	}
	return req
}

// ----------------------------------------------------------------------
// Webhook handlers for Stripe events
// ----------------------------------------------------------------------

// HandleAccountUpdated ignores the event payload beyond the account id
// and re-fetches, so stale or reordered deliveries cannot regress state.
func (s *HostStripeService) HandleAccountUpdated(acct *stripe.Account) error {
	if acct.Metadata[constants.WebhookMetadataGeneratedByKey] != s.generatedBy {
		utils.Logger.Infof("Skipping account.updated for %s; metadata=%q != %q",
			acct.ID, acct.Metadata[constants.WebhookMetadataGeneratedByKey], s.generatedBy)
		return nil
	}
	utils.Logger.Infof("account.updated: acctID=%s, details_submitted=%v", acct.ID, acct.DetailsSubmitted)
	return s.refreshByAccountID(acct.ID)
}

func (s *HostStripeService) HandleCapabilityUpdated(capObj *stripe.Capability) error {
	if capObj.Account == nil {
		return nil
	}
	utils.Logger.Infof("capability.updated: acctID=%s", capObj.Account.ID)
	return s.refreshByAccountID(capObj.Account.ID)
}

// HandleAccountContextEvent covers the remaining account-scoped events
// (external_account.*, person.*) where only the owning account matters.
func (s *HostStripeService) HandleAccountContextEvent(eventType, accountID string) error {
	if accountID == "" {
		return nil
	}
	utils.Logger.Infof("%s: acctID=%s", eventType, accountID)
	return s.refreshByAccountID(accountID)
}

func (s *HostStripeService) refreshByAccountID(accountID string) error {
	ctx := context.Background()

	profile, err := s.profiles.GetByStripeAccountID(ctx, accountID)
	if err != nil {
		utils.Logger.WithError(err).Errorf("Could not find profile by connect account %s", accountID)
		return err
	}
	if profile == nil {
		utils.Logger.Warnf("No profile found for connect account %s", accountID)
		return nil
	}

	acct, err := s.pay.GetAccount(ctx, accountID)
	if err != nil {
		utils.Logger.WithError(err).Errorf("Failed to fetch account %s for webhook refresh", accountID)
		return err
	}
	return s.applyRemoteAccount(ctx, profile.ID, acct)
}

// HandleAccountDeauthorized marks the host disconnected and drops the
// local link. The profile row itself is kept.
func (s *HostStripeService) HandleAccountDeauthorized(accountID string) error {
	ctx := context.Background()

	profile, err := s.profiles.GetByStripeAccountID(ctx, accountID)
	if err != nil {
		return err
	}
	if profile == nil {
		utils.Logger.Warnf("account.application.deauthorized for unknown account %s", accountID)
		return nil
	}

	utils.Logger.Infof("account.application.deauthorized: acctID=%s host=%s", accountID, profile.ID)
	return s.profiles.UpdateWithRetry(ctx, profile.ID, func(stored *models.Profile) error {
		stored.StripeAccountID = nil
		stored.StripeAccountStatus = models.StripeAccountStatusDisconnected
		stored.StripeChargesEnabled = false
		stored.StripePayoutsEnabled = false
		stored.StripeRequirements = nil
		return nil
	})
}

// ----------------------------------------------------------------------
// Reset
// ----------------------------------------------------------------------

// Reset clears the local linkage so a fresh onboarding can start. The
// remote account is left alone; Stripe owns its lifecycle.
func (s *HostStripeService) Reset(ctx context.Context, hostID uuid.UUID) error {
	profile, err := s.profiles.GetByID(ctx, hostID)
	if err != nil {
		return err
	}
	if profile == nil {
		return utils.ErrNotFound
	}

	return s.profiles.UpdateWithRetry(ctx, hostID, func(stored *models.Profile) error {
		stored.StripeAccountID = nil
		stored.StripeAccountStatus = models.StripeAccountStatusNew
		stored.StripeChargesEnabled = false
		stored.StripePayoutsEnabled = false
		stored.StripeRequirements = nil
		return nil
	})
}
