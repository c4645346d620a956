package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	stripe "github.com/stripe/stripe-go/v82"

	"github.com/stayextras/upsell-service/internal/models"
)

// In-memory repository fakes. They honor the same nil-on-missing contract
// as the real pgx implementations.

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*models.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[uuid.UUID]*models.Profile)}
}

func (r *fakeProfileRepo) Create(ctx context.Context, p *models.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.profiles[p.ID]; exists {
		return errors.New("duplicate key value violates unique constraint")
	}
	cp := *p
	r.profiles[p.ID] = &cp
	return nil
}

func (r *fakeProfileRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProfileRepo) GetByStripeAccountID(ctx context.Context, acct string) (*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.profiles {
		if p.StripeAccountID != nil && *p.StripeAccountID == acct {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeProfileRepo) put(ctx context.Context, p *models.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.profiles[p.ID] = &cp
	return nil
}

func (r *fakeProfileRepo) UpdateIfVersion(ctx context.Context, p *models.Profile, expected int64) (pgconn.CommandTag, error) {
	if err := r.put(ctx, p); err != nil {
		return pgconn.CommandTag("UPDATE 0"), err
	}
	return pgconn.CommandTag("UPDATE 1"), nil
}

func (r *fakeProfileRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Profile) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return errors.New("profile not found")
	}
	return mutate(p)
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*models.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uuid.UUID]*models.Order)}
}

func (r *fakeOrderRepo) Create(ctx context.Context, o *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.orders[o.ID]; exists {
		return errors.New("duplicate order id")
	}
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) GetByStripeSessionID(ctx context.Context, sessionID string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.StripeSessionID != nil && *o.StripeSessionID == sessionID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeOrderRepo) GetByStripePaymentIntentID(ctx context.Context, intentID string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.StripePaymentIntentID != nil && *o.StripePaymentIntentID == intentID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeOrderRepo) ListByHost(ctx context.Context, hostID uuid.UUID) ([]*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Order
	for _, o := range r.orders {
		if o.HostID == hostID {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) ListPendingCreatedBefore(ctx context.Context, cutoff time.Time) ([]*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Order
	for _, o := range r.orders {
		if o.Status == models.OrderStatusPending && o.CreatedAt.Before(cutoff) {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) put(ctx context.Context, o *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) UpdateIfVersion(ctx context.Context, o *models.Order, expected int64) (pgconn.CommandTag, error) {
	if err := r.put(ctx, o); err != nil {
		return pgconn.CommandTag("UPDATE 0"), err
	}
	return pgconn.CommandTag("UPDATE 1"), nil
}

func (r *fakeOrderRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Order) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return errors.New("order not found")
	}
	return mutate(o)
}

type fakePropertyRepo struct {
	mu         sync.Mutex
	properties map[uuid.UUID]*models.Property
}

func newFakePropertyRepo() *fakePropertyRepo {
	return &fakePropertyRepo{properties: make(map[uuid.UUID]*models.Property)}
}

func (r *fakePropertyRepo) Create(ctx context.Context, p *models.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.properties[p.ID] = &cp
	return nil
}

func (r *fakePropertyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.properties[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakePropertyRepo) GetByHospitableID(ctx context.Context, hostID uuid.UUID, hospitableID string) (*models.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.properties {
		if p.HostID == hostID && p.HospitableID != nil && *p.HospitableID == hospitableID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakePropertyRepo) ListByHost(ctx context.Context, hostID uuid.UUID) ([]*models.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Property
	for _, p := range r.properties {
		if p.HostID == hostID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakePropertyRepo) put(ctx context.Context, p *models.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.properties[p.ID] = &cp
	return nil
}

func (r *fakePropertyRepo) UpdateIfVersion(ctx context.Context, p *models.Property, expected int64) (pgconn.CommandTag, error) {
	if err := r.put(ctx, p); err != nil {
		return pgconn.CommandTag("UPDATE 0"), err
	}
	return pgconn.CommandTag("UPDATE 1"), nil
}

func (r *fakePropertyRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Property) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.properties[id]
	if !ok {
		return errors.New("property not found")
	}
	return mutate(p)
}

type fakeServiceRepo struct {
	mu       sync.Mutex
	services map[uuid.UUID]*models.Service
}

func newFakeServiceRepo() *fakeServiceRepo {
	return &fakeServiceRepo{services: make(map[uuid.UUID]*models.Service)}
}

func (r *fakeServiceRepo) Create(ctx context.Context, s *models.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.services[s.ID] = &cp
	return nil
}

func (r *fakeServiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.services[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *fakeServiceRepo) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*models.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Service
	for _, s := range r.services {
		if s.PropertyID == propertyID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeServiceRepo) put(ctx context.Context, s *models.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.services[s.ID] = &cp
	return nil
}

func (r *fakeServiceRepo) UpdateIfVersion(ctx context.Context, s *models.Service, expected int64) (pgconn.CommandTag, error) {
	if err := r.put(ctx, s); err != nil {
		return pgconn.CommandTag("UPDATE 0"), err
	}
	return pgconn.CommandTag("UPDATE 1"), nil
}

func (r *fakeServiceRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Service) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.services[id]
	if !ok {
		return errors.New("service not found")
	}
	return mutate(s)
}

func (r *fakeServiceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.services, id)
	return nil
}

// fakePayments records every outbound call and answers from hooks, so a
// test can assert both what was sent and how often.

type fakePayments struct {
	mu sync.Mutex

	createAccountCalls int
	getAccountCalls    int
	accountLinkParams  []*stripe.AccountLinkParams
	sessionParams      []*stripe.CheckoutSessionParams
	capturedIntents    []string
	cancelledIntents   []string

	createAccountFn   func(params *stripe.AccountParams) (*stripe.Account, error)
	getAccountFn      func(acctID string) (*stripe.Account, error)
	createSessionFn   func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	getSessionFn      func(sessionID string) (*stripe.CheckoutSession, error)
	captureFn         func(intentID string) (*stripe.PaymentIntent, error)
	cancelFn          func(intentID string) (*stripe.PaymentIntent, error)
	listBalanceTxnsFn func(acctID, txType string, limit int64) ([]*stripe.BalanceTransaction, error)
}

func (f *fakePayments) CreateAccount(ctx context.Context, params *stripe.AccountParams) (*stripe.Account, error) {
	f.mu.Lock()
	f.createAccountCalls++
	f.mu.Unlock()
	if f.createAccountFn != nil {
		return f.createAccountFn(params)
	}
	return &stripe.Account{ID: "acct_test"}, nil
}

func (f *fakePayments) GetAccount(ctx context.Context, acctID string) (*stripe.Account, error) {
	f.mu.Lock()
	f.getAccountCalls++
	f.mu.Unlock()
	if f.getAccountFn != nil {
		return f.getAccountFn(acctID)
	}
	return &stripe.Account{ID: acctID}, nil
}

func (f *fakePayments) CreateAccountLink(ctx context.Context, params *stripe.AccountLinkParams) (*stripe.AccountLink, error) {
	f.mu.Lock()
	f.accountLinkParams = append(f.accountLinkParams, params)
	f.mu.Unlock()
	return &stripe.AccountLink{URL: "https://connect.stripe.com/setup/test"}, nil
}

func (f *fakePayments) CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	f.mu.Lock()
	f.sessionParams = append(f.sessionParams, params)
	f.mu.Unlock()
	if f.createSessionFn != nil {
		return f.createSessionFn(params)
	}
	return &stripe.CheckoutSession{ID: "cs_test", URL: "https://checkout.stripe.com/pay/cs_test"}, nil
}

func (f *fakePayments) GetCheckoutSession(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error) {
	if f.getSessionFn != nil {
		return f.getSessionFn(sessionID)
	}
	return &stripe.CheckoutSession{ID: sessionID}, nil
}

func (f *fakePayments) CapturePaymentIntent(ctx context.Context, intentID string) (*stripe.PaymentIntent, error) {
	if f.captureFn != nil {
		pi, err := f.captureFn(intentID)
		if err != nil {
			return nil, err
		}
		f.mu.Lock()
		f.capturedIntents = append(f.capturedIntents, intentID)
		f.mu.Unlock()
		return pi, nil
	}
	f.mu.Lock()
	f.capturedIntents = append(f.capturedIntents, intentID)
	f.mu.Unlock()
	return &stripe.PaymentIntent{ID: intentID}, nil
}

func (f *fakePayments) CancelPaymentIntent(ctx context.Context, intentID string) (*stripe.PaymentIntent, error) {
	if f.cancelFn != nil {
		pi, err := f.cancelFn(intentID)
		if err != nil {
			return nil, err
		}
		f.mu.Lock()
		f.cancelledIntents = append(f.cancelledIntents, intentID)
		f.mu.Unlock()
		return pi, nil
	}
	f.mu.Lock()
	f.cancelledIntents = append(f.cancelledIntents, intentID)
	f.mu.Unlock()
	return &stripe.PaymentIntent{ID: intentID}, nil
}

func (f *fakePayments) ListBalanceTransactions(ctx context.Context, acctID string, txType string, limit int64) ([]*stripe.BalanceTransaction, error) {
	if f.listBalanceTxnsFn != nil {
		return f.listBalanceTxnsFn(acctID, txType, limit)
	}
	return nil, nil
}
