package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stayextras/upsell-service/internal/constants"
	"github.com/stayextras/upsell-service/internal/models"
	"github.com/stayextras/upsell-service/internal/utils"
)

// PollStatus is what a poller observer sees. "timeout" exists only here;
// the persisted profile status stays "pending" and a later webhook can
// still flip it to active.
type PollStatus string

const (
	PollStatusIdle    PollStatus = "idle"
	PollStatusPolling PollStatus = "polling"
	PollStatusActive  PollStatus = "active"
	PollStatusTimeout PollStatus = "timeout"
)

type pollTask struct {
	cancel context.CancelFunc
	status PollStatus
}

// ActivationPoller runs one bounded background sync loop per host while
// they sit on the onboarding return page. It replaces client-side timers
// with a cancellable server-side task.
type ActivationPoller struct {
	stripeSvc *HostStripeService

	interval    time.Duration
	maxAttempts int

	mu    sync.Mutex
	tasks map[uuid.UUID]*pollTask
}

func NewActivationPoller(stripeSvc *HostStripeService) *ActivationPoller {
	return &ActivationPoller{
		stripeSvc:   stripeSvc,
		interval:    constants.ActivationPollInterval,
		maxAttempts: constants.ActivationPollMaxAttempts,
		tasks:       map[uuid.UUID]*pollTask{},
	}
}

// Start launches the polling loop for hostID. Starting an already-running
// poll is a no-op; a finished one is restarted.
func (p *ActivationPoller) Start(hostID uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if t, ok := p.tasks[hostID]; ok && t.status == PollStatusPolling {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	task := &pollTask{cancel: cancel, status: PollStatusPolling}
	p.tasks[hostID] = task

	go p.run(ctx, hostID, task)
}

// Status reports the observable poll state for hostID.
func (p *ActivationPoller) Status(hostID uuid.UUID) PollStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	if t, ok := p.tasks[hostID]; ok {
		return t.status
	}
	return PollStatusIdle
}

// Cancel stops the loop for hostID. An in-flight sync finishes on its own.
func (p *ActivationPoller) Cancel(hostID uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if t, ok := p.tasks[hostID]; ok {
		t.cancel()
		if t.status == PollStatusPolling {
			t.status = PollStatusIdle
		}
	}
}

// Shutdown cancels every running loop.
func (p *ActivationPoller) Shutdown() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, t := range p.tasks {
		t.cancel()
	}
}

func (p *ActivationPoller) run(ctx context.Context, hostID uuid.UUID, task *pollTask) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		profile, err := p.stripeSvc.SyncAccountStatus(ctx, hostID)
		if err != nil {
			utils.Logger.WithError(err).Warnf("Activation poll attempt %d failed for host %s", attempt, hostID)
			continue
		}
		if profile != nil && profile.StripeAccountStatus == models.StripeAccountStatusActive {
			p.setStatus(hostID, task, PollStatusActive)
			return
		}
	}

	// Exhausted. The stored status remains pending; webhooks take over.
	utils.Logger.Infof("Activation polling exhausted for host %s", hostID)
	p.setStatus(hostID, task, PollStatusTimeout)
}

func (p *ActivationPoller) setStatus(hostID uuid.UUID, task *pollTask, st PollStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Only the task that owns the slot may report; a restarted loop
	// must not be overwritten by its predecessor.
	if cur, ok := p.tasks[hostID]; ok && cur == task {
		task.status = st
	}
}
