package remote

import (
	"context"
	"fmt"
	"net/http"

	"nutri-go/internal/nutri"
)

// statusAction is the action tag the status endpoint dispatches on.
const statusAction = "get_user_status"

// StatusClient queries the remote plan status endpoint.
type StatusClient struct {
	endpoint string
	client   *http.Client
}

var _ nutri.StatusSource = (*StatusClient)(nil)

// NewStatusClient creates a StatusClient. A nil client gets DefaultTimeout.
func NewStatusClient(endpoint string, client *http.Client) *StatusClient {
	if client == nil {
		client = NewHTTPClient(0)
	}
	return &StatusClient{endpoint: endpoint, client: client}
}

type statusRequest struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Action string `json:"action"`
}

// FetchStatus returns the decoded status response. Network errors, non-2xx
// responses and JSON bodies that do not parse are errors; the caller keeps
// its cached state in those cases.
func (c *StatusClient) FetchStatus(ctx context.Context, userID, email string) (any, error) {
	if c.endpoint == "" {
		return nil, fmt.Errorf("status endpoint not configured")
	}

	resp, err := PostJSON(ctx, c.client, c.endpoint, statusRequest{
		UserID: userID,
		Email:  email,
		Action: statusAction,
	})
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, fmt.Errorf("status endpoint returned %d: %s", resp.StatusCode, resp.StatusText())
	}
	if resp.DecodeErr != nil {
		return nil, resp.DecodeErr
	}
	return resp.Body, nil
}
