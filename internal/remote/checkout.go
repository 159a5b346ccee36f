package remote

import (
	"context"
	"fmt"
	"net/http"

	"nutri-go/internal/nutri"
)

// CheckoutClient asks the checkout endpoint for a payment page URL.
type CheckoutClient struct {
	endpoint string
	client   *http.Client
}

var _ nutri.CheckoutProvider = (*CheckoutClient)(nil)

// NewCheckoutClient creates a CheckoutClient. A nil client gets DefaultTimeout.
func NewCheckoutClient(endpoint string, client *http.Client) *CheckoutClient {
	if client == nil {
		client = NewHTTPClient(0)
	}
	return &CheckoutClient{endpoint: endpoint, client: client}
}

type checkoutRequest struct {
	UserID      string `json:"userId"`
	Email       string `json:"email"`
	CallbackURL string `json:"callbackUrl"`
}

// CreateCheckout returns the URL found under "url" or "data.url" in the
// response. Scheme validation is left to the caller.
func (c *CheckoutClient) CreateCheckout(ctx context.Context, userID, email, callbackURL string) (string, error) {
	if c.endpoint == "" {
		return "", fmt.Errorf("checkout endpoint not configured")
	}

	resp, err := PostJSON(ctx, c.client, c.endpoint, checkoutRequest{
		UserID:      userID,
		Email:       email,
		CallbackURL: callbackURL,
	})
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		return "", fmt.Errorf("checkout endpoint returned %d: %s", resp.StatusCode, resp.StatusText())
	}
	if resp.DecodeErr != nil {
		return "", resp.DecodeErr
	}

	checkoutURL := checkoutURLFrom(resp.Body)
	if checkoutURL == "" {
		return "", fmt.Errorf("no URL returned from webhook")
	}
	return checkoutURL, nil
}

func checkoutURLFrom(body any) string {
	obj, ok := body.(map[string]any)
	if !ok {
		return ""
	}
	if u, ok := obj["url"].(string); ok && u != "" {
		return u
	}
	if data, ok := obj["data"].(map[string]any); ok {
		if u, ok := data["url"].(string); ok {
			return u
		}
	}
	return ""
}
