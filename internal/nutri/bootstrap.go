package nutri

import (
	"context"
	"fmt"

	"nutri-go/internal/model"
)

// Identity prefixes. Restored identities replace ones lost from a corrupt record.
const (
	stableIDPrefix   = "google_uid_"
	restoredIDPrefix = "usr_restored_"
)

// Bootstrap restores the persisted session. If a user record exists its
// identity is repaired when missing, the daily counter is rolled over, the
// session becomes authenticated and one reconciliation is started in the
// background. A payment return signal adds an informational notification
// first and is scrubbed afterwards.
//
// Bootstrap never fails because of bad stored data; only store I/O errors are
// returned.
func (s *Service) Bootstrap(ctx context.Context, signal ReturnSignal) error {
	if signal == nil {
		signal = NoSignal{}
	}
	s.upgrading.Store(false)

	user, history, err := s.store.Load()
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}

	if user == nil {
		s.logger.Debug("no stored user, session is unauthenticated")
		return nil
	}

	if user.ID == "" {
		user.ID = restoredIDPrefix + shortID(s.idgen)
		s.logger.Warn("stored user had no id, assigned a new one", "user_id", user.ID)
	}
	if user.Plan != model.PlanPro {
		user.Plan = model.PlanFree
	}
	if user.DailyUsageCount < 0 {
		user.DailyUsageCount = 0
	}
	restored := RollOver(*user, Today(s.clock))

	// Start persists the repaired record immediately.
	if _, err := s.session.Start(restored, history); err != nil {
		s.logger.Error("persisting restored session failed", "error", err)
	}
	s.logger.Info("session restored", "user_id", restored.ID, "plan", restored.Plan, "history", len(history))

	if signal.PaymentStatus() == PaymentSuccess {
		s.notifier.Notify(model.NotifySuccess, "Payment successful! Verifying plan...", "")
		s.reconcileInBackground(ctx, restored.ID, restored.Email)
		signal.Scrub()
		return nil
	}

	s.reconcileInBackground(ctx, restored.ID, restored.Email)
	return nil
}

// Login signs a user in. The device's stable identity is reused if one was
// ever persisted, otherwise a new one is minted and persisted, so the identity
// survives logout/login cycles on the same device. Reconciliation is started
// in the background.
func (s *Service) Login(ctx context.Context, email, name string) (model.UserRecord, error) {
	stableID, err := s.store.StableID()
	if err != nil {
		return model.UserRecord{}, fmt.Errorf("reading stable id: %w", err)
	}
	if stableID == "" {
		stableID = stableIDPrefix + shortID(s.idgen)
		if err := s.store.SetStableID(stableID); err != nil {
			return model.UserRecord{}, fmt.Errorf("persisting stable id: %w", err)
		}
		s.logger.Info("minted stable id", "user_id", stableID)
	}

	user := model.UserRecord{
		ID:              stableID,
		Name:            s.opts.Profile.Name,
		Email:           s.opts.Profile.Email,
		AvatarURL:       s.opts.Profile.AvatarURL,
		Plan:            model.PlanFree,
		DailyUsageCount: 0,
		LastUsageDate:   Today(s.clock),
	}
	if email != "" {
		user.Email = email
	}
	if name != "" {
		user.Name = name
	}

	s.upgrading.Store(false)
	if _, err := s.session.Start(user, s.session.History()); err != nil {
		return user, fmt.Errorf("starting session: %w", err)
	}
	s.logger.Info("logged in", "user_id", user.ID)

	s.reconcileInBackground(ctx, user.ID, user.Email)
	return user, nil
}

// Logout clears the user and history. In-flight work for the old session
// is ignored when it completes.
func (s *Service) Logout() error {
	if err := s.session.End(); err != nil {
		return err
	}
	s.logger.Info("logged out")
	return nil
}
