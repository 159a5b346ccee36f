package delivery

import (
	"fmt"
	"net/http"

	"nutri-go/internal/config"
)

// NewFallbackFromConfig creates the opaque transport selected by cfg.Fallback.
// "none" disables the fallback tier and returns nil.
func NewFallbackFromConfig(cfg config.DeliveryConfig, client *http.Client) (OpaqueTransport, error) {
	switch cfg.Fallback {
	case "", "http":
		return NewHTTPOpaque(client), nil
	case "mqtt":
		t, err := NewMQTTOpaque(MQTTOptions{
			Broker:   cfg.MQTT.Broker,
			Topic:    cfg.MQTT.Topic,
			ClientID: cfg.MQTT.ClientID,
			Username: cfg.MQTT.Username,
			Password: cfg.MQTT.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("creating mqtt fallback: %w", err)
		}
		return t, nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown delivery fallback: %s", cfg.Fallback)
	}
}
