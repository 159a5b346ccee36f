package nutri

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"nutri-go/internal/model"
)

// Input is a meal to analyze: a description, an image, or both.
type Input struct {
	Text  string
	Image string // base64, optionally as a data URL
}

// Empty reports whether there is nothing to analyze.
func (in Input) Empty() bool {
	return strings.TrimSpace(in.Text) == "" && in.Image == ""
}

// Analyze runs one meal analysis for the signed-in user.
//
// The quota is checked before the remote call and consumed only after a
// result came back, so a failed analysis costs nothing. On success the entry
// is added to the history and handed to the delivery queue; the method does
// not wait for delivery. On failure the error wraps ErrAnalysisFailed and the
// caller still owns in for a retry.
func (s *Service) Analyze(ctx context.Context, in Input) (*model.HistoryEntry, error) {
	_, epoch, ok := s.session.User()
	if !ok {
		return nil, ErrNotAuthenticated
	}

	allowed, err := s.checkLimit(epoch)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrQuotaExceeded
	}

	if in.Empty() {
		return nil, ErrEmptyInput
	}

	data, err := s.analyzer.Analyze(ctx, in.Text, in.Image)
	if err != nil {
		s.logger.Error("meal analysis failed", "error", err)
		s.notifier.Notify(model.NotifyError, "Failed to analyze meal. Please try again.", "")
		return nil, fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}

	entry := model.HistoryEntry{
		ID:        s.idgen.New(),
		Timestamp: s.clock.Now(),
		TextInput: in.Text,
		ImageURL:  in.Image,
		Data:      data,
	}

	applied, err := s.session.AddEntry(epoch, entry)
	if err != nil {
		s.logger.Error("persisting history failed", "error", err)
	}
	if !applied {
		s.logger.Info("session changed during analysis, result not recorded")
		return &entry, nil
	}

	_, user, _, err := s.session.UpdateUser(epoch, RecordUsage)
	if err != nil {
		s.logger.Error("persisting usage failed", "error", err)
	}
	s.logger.Info("meal analyzed", "entry_id", entry.ID, "food", data.FoodName, "usage", user.DailyUsageCount)

	s.forward(epoch, user, data)
	return &entry, nil
}

// checkLimit applies the quota decision to the session, committing the daily
// reset when the date rolled over.
func (s *Service) checkLimit(epoch uint64) (bool, error) {
	today := Today(s.clock)
	var allowed bool
	_, _, applied, err := s.session.UpdateUser(epoch, func(u model.UserRecord) model.UserRecord {
		var next model.UserRecord
		allowed, next = CanProceed(u, today)
		return next
	})
	if err != nil {
		s.logger.Error("persisting quota reset failed", "error", err)
	}
	if !applied {
		return false, ErrNotAuthenticated
	}
	return allowed, nil
}

// forward hands the result to the delivery queue. The outcome only ever
// produces a notification; it never affects the recorded analysis.
func (s *Service) forward(epoch uint64, user model.UserRecord, data model.NutritionalData) {
	if s.deliveries == nil {
		return
	}

	payload := SyncPayload{
		UserID:    user.ID,
		UserEmail: user.Email,
		UserPlan:  user.Plan,
		Timestamp: s.clock.Now().UTC().Format(time.RFC3339),
		EntryData: data,
		Source:    s.opts.Source,
	}
	s.logger.Debug("forwarding analysis", "user_id", user.ID, "plan", user.Plan)

	s.deliveries.Enqueue(payload, func(res DeliveryResult) {
		if s.session.Epoch() != epoch {
			return
		}
		if res.Success {
			msg := res.Message
			if msg == "" {
				msg = "Analysis saved to cloud."
			}
			s.notifier.Notify(model.NotifySuccess, msg, deliveryDetails(res.Data))
			return
		}
		s.logger.Info("sync webhook returned an error state", "message", res.Message)
		s.notifier.Notify(model.NotifyInfo, "Analysis complete (Cloud sync pending)", "")
	})
}

// deliveryDetails renders a structured response body for display, unless it
// carries its own message.
func deliveryDetails(data any) string {
	obj, ok := data.(map[string]any)
	if !ok {
		return ""
	}
	if _, hasMessage := obj["message"]; hasMessage {
		return ""
	}
	b, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return ""
	}
	return string(b)
}
