package nutri

import (
	"sync"
	"time"

	"nutri-go/internal/model"
)

// NotificationTTL is how long a notification stays active unless superseded
// or dismissed.
const NotificationTTL = 5 * time.Second

// Notifier holds the single active notification. Posting a new one replaces
// the previous one. Listeners are called synchronously on every post.
type Notifier struct {
	mu        sync.Mutex
	clock     Clock
	ttl       time.Duration
	current   *model.Notification
	listeners []func(model.Notification)
}

// NewNotifier creates a Notifier whose notifications expire after NotificationTTL.
func NewNotifier(clock Clock) *Notifier {
	return &Notifier{clock: clock, ttl: NotificationTTL}
}

// Subscribe registers fn to receive every posted notification.
func (n *Notifier) Subscribe(fn func(model.Notification)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = append(n.listeners, fn)
}

// Notify posts a notification, superseding the active one.
func (n *Notifier) Notify(kind model.NotificationKind, message, details string) {
	note := model.Notification{
		Kind:      kind,
		Message:   message,
		Details:   details,
		CreatedAt: n.clock.Now(),
	}

	n.mu.Lock()
	n.current = &note
	listeners := append([]func(model.Notification){}, n.listeners...)
	n.mu.Unlock()

	for _, fn := range listeners {
		fn(note)
	}
}

// Current returns the active notification, or nil if there is none or it
// has expired.
func (n *Notifier) Current() *model.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return nil
	}
	if n.clock.Now().Sub(n.current.CreatedAt) >= n.ttl {
		n.current = nil
		return nil
	}
	note := *n.current
	return &note
}

// Dismiss clears the active notification.
func (n *Notifier) Dismiss() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = nil
}
