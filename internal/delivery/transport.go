package delivery

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// OpaqueTransport sends a request without observing the response. It only
// fails when the request could not be sent at all.
type OpaqueTransport interface {
	SendOpaque(ctx context.Context, endpoint string, body []byte) error
	Close()
}

// HTTPOpaque posts the body as text/plain and ignores whatever comes back,
// status included.
type HTTPOpaque struct {
	client *http.Client
}

var _ OpaqueTransport = (*HTTPOpaque)(nil)

// NewHTTPOpaque creates an HTTPOpaque transport using client.
func NewHTTPOpaque(client *http.Client) *HTTPOpaque {
	return &HTTPOpaque{client: client}
}

func (t *HTTPOpaque) SendOpaque(ctx context.Context, endpoint string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("send opaque request: %w", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return nil
}

func (t *HTTPOpaque) Close() {}

// MQTTOptions configures the MQTT fallback transport.
type MQTTOptions struct {
	Broker   string // host:port
	Topic    string
	ClientID string
	Username string
	Password string
	Timeout  time.Duration
}

// Defaults for the MQTT fallback.
const (
	DefaultMQTTTopic    = "nutri/analyses"
	DefaultMQTTClientID = "nutri"
)

// MQTTOpaque publishes the body to a broker topic with QoS 0. The endpoint
// argument is ignored: the topic is fixed by configuration. The broker
// connection is opened on first use.
type MQTTOpaque struct {
	mu        sync.Mutex
	newClient func() mqtt.Client
	client    mqtt.Client
	topic     string
	timeout   time.Duration
}

var _ OpaqueTransport = (*MQTTOpaque)(nil)

// NewMQTTOpaque validates opts and creates an MQTTOpaque transport.
func NewMQTTOpaque(opts MQTTOptions) (*MQTTOpaque, error) {
	if opts.Broker == "" {
		return nil, fmt.Errorf("MQTT broker address is required for mqtt fallback")
	}
	if opts.Topic == "" {
		opts.Topic = DefaultMQTTTopic
	}
	if opts.ClientID == "" {
		opts.ClientID = DefaultMQTTClientID
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	newClient := func() mqtt.Client {
		co := mqtt.NewClientOptions()
		co.AddBroker(fmt.Sprintf("tcp://%s", opts.Broker))
		co.SetClientID(opts.ClientID)
		co.SetAutoReconnect(true)
		co.SetConnectTimeout(opts.Timeout)
		if opts.Username != "" {
			co.SetUsername(opts.Username)
		}
		if opts.Password != "" {
			co.SetPassword(opts.Password)
		}
		return mqtt.NewClient(co)
	}

	return &MQTTOpaque{newClient: newClient, topic: opts.Topic, timeout: opts.Timeout}, nil
}

// newMQTTOpaqueWithClient builds a transport around an existing client.
func newMQTTOpaqueWithClient(client mqtt.Client, topic string, timeout time.Duration) *MQTTOpaque {
	return &MQTTOpaque{
		newClient: func() mqtt.Client { return client },
		topic:     topic,
		timeout:   timeout,
	}
}

func (t *MQTTOpaque) connect() (mqtt.Client, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.client != nil && t.client.IsConnected() {
		return t.client, nil
	}
	client := t.newClient()
	token := client.Connect()
	if !token.WaitTimeout(t.timeout) {
		return nil, fmt.Errorf("connecting to MQTT broker: timed out after %s", t.timeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connecting to MQTT broker: %w", err)
	}
	t.client = client
	return client, nil
}

func (t *MQTTOpaque) SendOpaque(ctx context.Context, _ string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	client, err := t.connect()
	if err != nil {
		return err
	}

	token := client.Publish(t.topic, 0, false, body)
	if !token.WaitTimeout(t.timeout) {
		return fmt.Errorf("publishing to %s: timed out after %s", t.topic, t.timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing to %s: %w", t.topic, err)
	}
	return nil
}

// Close disconnects from the broker.
func (t *MQTTOpaque) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client != nil && t.client.IsConnected() {
		t.client.Disconnect(250)
	}
	t.client = nil
}
