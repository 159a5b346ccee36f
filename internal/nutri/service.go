package nutri

import (
	"context"
	"sync"
	"sync/atomic"

	"nutri-go/internal/model"
)

// DefaultSource tags payloads forwarded to the sync webhook.
const DefaultSource = "nutri_cli"

// Options carries the settings the service needs beyond its collaborators.
type Options struct {
	// CallbackURL is where the checkout page returns the user.
	CallbackURL string

	// Source tags payloads forwarded to the sync webhook.
	Source string

	// Profile is the template for users created at login. Name, Email and
	// AvatarURL are used; everything else is reset.
	Profile model.UserRecord
}

// Service is the orchestration layer between the CLI and the session state.
// It owns the session, gates analyses through the quota rules, keeps the plan
// reconciled and hands results to the delivery queue.
type Service struct {
	session    *Session
	store      Store
	notifier   *Notifier
	reconciler *Reconciler
	analyzer   Analyzer
	checkout   CheckoutProvider
	deliveries DeliveryQueue
	logger     Logger
	clock      Clock
	idgen      IDGenerator
	opts       Options

	background sync.WaitGroup
	upgrading  atomic.Bool
}

// NewService creates a Service with the provided dependencies.
// maxHistory bounds the history list; zero keeps every entry.
func NewService(store Store, status StatusSource, analyzer Analyzer, checkout CheckoutProvider, deliveries DeliveryQueue, notifier *Notifier, logger Logger, clock Clock, idgen IDGenerator, maxHistory int, opts Options) *Service {
	if opts.Source == "" {
		opts.Source = DefaultSource
	}
	session := NewSession(store, maxHistory)
	return &Service{
		session:    session,
		store:      store,
		notifier:   notifier,
		reconciler: NewReconciler(session, status, notifier, logger),
		analyzer:   analyzer,
		checkout:   checkout,
		deliveries: deliveries,
		logger:     logger,
		clock:      clock,
		idgen:      idgen,
		opts:       opts,
	}
}

// Session returns the session owned by the service.
func (s *Service) Session() *Session { return s.session }

// Notifier returns the notifier the service posts to.
func (s *Service) Notifier() *Notifier { return s.notifier }

// Reconciler returns the plan reconciler.
func (s *Service) Reconciler() *Reconciler { return s.reconciler }

// Sync reconciles the signed-in user now and waits for the result.
// A failed fetch is only logged by the reconciler: the cached plan is
// returned without an error.
func (s *Service) Sync(ctx context.Context) (model.Plan, error) {
	user, _, ok := s.session.User()
	if !ok {
		return "", ErrNotAuthenticated
	}
	plan, err := s.reconciler.Reconcile(ctx, user.ID, user.Email)
	if err != nil {
		cached, _, ok := s.session.User()
		if !ok {
			return "", ErrNotAuthenticated
		}
		return cached.Plan, nil
	}
	return plan, nil
}

// reconcileInBackground starts a reconciliation without waiting for it.
func (s *Service) reconcileInBackground(ctx context.Context, userID, email string) {
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		// Errors are already logged and must stay silent.
		_, _ = s.reconciler.Reconcile(ctx, userID, email)
	}()
}

// Wait blocks until background reconciliations finish or ctx is done.
// Anything still running after that is detached: its result is ignored.
func (s *Service) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.background.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.session.Detach()
		return ctx.Err()
	}
}

// Summary describes the signed-in user's plan and quota.
type Summary struct {
	User      model.UserRecord
	Today     string
	Remaining int
	Unlimited bool
}

// Status returns the quota summary for the signed-in user.
func (s *Service) Status() (*Summary, error) {
	user, _, ok := s.session.User()
	if !ok {
		return nil, ErrNotAuthenticated
	}
	today := Today(s.clock)
	remaining, unlimited := RemainingFreeUses(user, today)
	return &Summary{
		User:      user,
		Today:     today,
		Remaining: remaining,
		Unlimited: unlimited,
	}, nil
}

// History returns the analysis history, newest first.
func (s *Service) History() []model.HistoryEntry {
	return s.session.History()
}
