package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"nutri-go/internal/nutri"
	"nutri-go/internal/remote"
)

// Result messages reported by the channel.
const (
	messageSuccess = "Success"
	messageOpaque  = "Request sent (Opaque response)"
)

// Channel delivers payloads with a two-tier strategy.
//
// The primary tier is a readable JSON POST: any 2xx is success, any other
// status is a soft failure carrying the body. Only when the primary request
// cannot complete at all is the fallback tried, once, through an opaque
// transport whose response cannot be read. Delivery never returns an error;
// the outcome is always a nutri.DeliveryResult.
type Channel struct {
	client   *http.Client
	fallback OpaqueTransport
	logger   nutri.Logger
}

// NewChannel creates a Channel. A nil fallback disables the second tier.
func NewChannel(client *http.Client, fallback OpaqueTransport, logger nutri.Logger) *Channel {
	if client == nil {
		client = remote.NewHTTPClient(0)
	}
	return &Channel{client: client, fallback: fallback, logger: logger}
}

// Deliver sends payload to endpoint.
func (c *Channel) Deliver(ctx context.Context, endpoint string, payload any) nutri.DeliveryResult {
	body, err := json.Marshal(payload)
	if err != nil {
		return nutri.DeliveryResult{Message: fmt.Sprintf("encoding payload: %v", err)}
	}

	resp, err := remote.PostJSON(ctx, c.client, endpoint, json.RawMessage(body))
	if err == nil {
		if resp.OK() {
			return nutri.DeliveryResult{Success: true, Data: resp.Body, Message: messageSuccess}
		}
		return nutri.DeliveryResult{
			Data:    resp.Body,
			Message: "Request failed: " + resp.StatusText(),
		}
	}

	if c.fallback == nil {
		c.logger.Info("delivery failed", "endpoint", endpoint, "error", err)
		return nutri.DeliveryResult{Message: err.Error()}
	}

	c.logger.Info("standard delivery failed, trying opaque fallback", "endpoint", endpoint, "error", err)
	if fallbackErr := c.fallback.SendOpaque(ctx, endpoint, body); fallbackErr != nil {
		c.logger.Info("opaque fallback failed", "endpoint", endpoint, "error", fallbackErr)
		return nutri.DeliveryResult{Message: err.Error()}
	}

	// Nothing about the response is observable, so there is no data.
	return nutri.DeliveryResult{Success: true, Message: messageOpaque, Opaque: true}
}
