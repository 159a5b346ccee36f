package nutri

import (
	"context"

	"nutri-go/internal/model"
)

// StatusSource fetches the authoritative plan state for a user.
// The returned value is the decoded response body (a JSON value or plain
// text); interpreting it is left to NormalizePlan.
type StatusSource interface {
	FetchStatus(ctx context.Context, userID, email string) (any, error)
}

// Analyzer is the remote inference service producing nutrition estimates.
// image may be empty; when set it is a base64 payload, optionally as a data URL.
type Analyzer interface {
	Analyze(ctx context.Context, text, image string) (model.NutritionalData, error)
}

// CheckoutProvider starts an external payment flow and returns the URL the
// user must visit. callbackURL is where the payment page sends the user back.
type CheckoutProvider interface {
	CreateCheckout(ctx context.Context, userID, email, callbackURL string) (string, error)
}

// DeliveryResult is the outcome of forwarding a payload downstream.
// A non-2xx response is a soft failure: Success is false but the body is
// still carried in Data. Opaque is set when the request was sent without the
// response being observable.
type DeliveryResult struct {
	Success bool
	Data    any
	Message string
	Opaque  bool
}

// DeliveryQueue accepts payloads for asynchronous delivery. Enqueue must not
// block on the network; done is called from a background goroutine once the
// delivery attempt has resolved.
type DeliveryQueue interface {
	Enqueue(payload any, done func(DeliveryResult))
}

// SyncPayload is the document forwarded to the downstream sync webhook after
// each successful analysis.
type SyncPayload struct {
	UserID    string                `json:"userId"`
	UserEmail string                `json:"userEmail"`
	UserPlan  model.Plan            `json:"userPlan"`
	Timestamp string                `json:"timestamp"`
	EntryData model.NutritionalData `json:"entryData"`
	Source    string                `json:"source"`
}
