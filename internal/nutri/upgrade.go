package nutri

import (
	"context"
	"fmt"
	"net/url"

	"nutri-go/internal/model"
)

// Upgrading reports whether a checkout is being started.
func (s *Service) Upgrading() bool {
	return s.upgrading.Load()
}

// Upgrade asks the checkout endpoint for a payment URL. The URL must use the
// http or https scheme. On failure an error notification carrying the cause
// is posted and the processing flag is reset so the user can retry.
func (s *Service) Upgrade(ctx context.Context) (string, error) {
	user, _, ok := s.session.User()
	if !ok {
		return "", ErrNotAuthenticated
	}
	if !s.upgrading.CompareAndSwap(false, true) {
		return "", ErrCheckoutInProgress
	}

	checkoutURL, err := s.startCheckout(ctx, user)
	if err != nil {
		s.logger.Error("upgrade failed", "user_id", user.ID, "error", err)
		s.notifier.Notify(model.NotifyError, "Could not start checkout.", err.Error())
		s.upgrading.Store(false)
		return "", fmt.Errorf("%w: %w", ErrCheckoutFailed, err)
	}

	s.logger.Info("checkout started", "user_id", user.ID)
	return checkoutURL, nil
}

func (s *Service) startCheckout(ctx context.Context, user model.UserRecord) (string, error) {
	raw, err := s.checkout.CreateCheckout(ctx, user.ID, user.Email, s.opts.CallbackURL)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("invalid checkout url: %q", raw)
	}
	return raw, nil
}
