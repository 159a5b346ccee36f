package nutri

import (
	"context"
	"fmt"
	"time"

	"nutri-go/internal/model"
)

// Reconciler refreshes the cached plan from the remote status endpoint.
//
// Reconciliation is a best-effort background refresh: failures are logged
// and leave the cached record alone, and they are never shown to the user,
// even when the user asked for the sync. Only a FREE to PRO transition
// produces a notification.
type Reconciler struct {
	session  *Session
	source   StatusSource
	notifier *Notifier
	logger   Logger
}

// NewReconciler creates a Reconciler for the given session.
func NewReconciler(session *Session, source StatusSource, notifier *Notifier, logger Logger) *Reconciler {
	return &Reconciler{
		session:  session,
		source:   source,
		notifier: notifier,
		logger:   logger,
	}
}

// Reconcile fetches the plan for userID/email and merges it into the cached
// user record. Overlapping calls each fetch on their own; the last one to
// finish wins. A result arriving after the signed-in user changed is dropped.
func (r *Reconciler) Reconcile(ctx context.Context, userID, email string) (model.Plan, error) {
	epoch := r.session.Epoch()
	r.logger.Debug("syncing account status", "user_id", userID)

	data, err := r.source.FetchStatus(ctx, userID, email)
	if err != nil {
		r.logger.Info("account status sync failed", "user_id", userID, "error", err)
		return "", fmt.Errorf("fetching status: %w", err)
	}

	plan := NormalizePlan(data)
	r.logger.Debug("account status fetched", "user_id", userID, "plan", plan)

	prev, next, applied, err := r.session.UpdateUser(epoch, func(u model.UserRecord) model.UserRecord {
		if u.ID != userID {
			return u
		}
		u.Plan = plan
		return u
	})
	if err != nil {
		r.logger.Error("persisting plan change failed", "user_id", userID, "error", err)
	}
	if !applied {
		r.logger.Debug("discarding stale status result", "user_id", userID)
		return plan, nil
	}

	if prev.Plan != next.Plan {
		r.logger.Info("plan changed", "user_id", userID, "from", prev.Plan, "to", next.Plan)
		// PRO -> FREE stays silent.
		if next.Plan == model.PlanPro {
			r.notifier.Notify(model.NotifySuccess, "Your PRO plan is active!", "")
		}
	}
	return plan, nil
}

// ReconcileCurrent reconciles the signed-in user, if any.
func (r *Reconciler) ReconcileCurrent(ctx context.Context) (model.Plan, error) {
	user, _, ok := r.session.User()
	if !ok {
		return "", ErrNotAuthenticated
	}
	return r.Reconcile(ctx, user.ID, user.Email)
}

// Run reconciles the signed-in user every interval until ctx is done.
// Failures do not stop the loop.
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := r.ReconcileCurrent(ctx); err != nil {
				r.logger.Debug("periodic sync skipped", "error", err)
			}
		}
	}
}
