package nutri

import (
	"fmt"
	"net/url"
)

// PaymentSuccess is the payment query value the checkout page appends to the
// callback URL after a completed payment.
const PaymentSuccess = "success"

// ReturnSignal reports whether the user just came back from the external
// payment step. Scrub removes the signal so it is not acted on twice.
type ReturnSignal interface {
	PaymentStatus() string
	Scrub()
}

// NoSignal is a ReturnSignal that never reports a payment.
type NoSignal struct{}

func (NoSignal) PaymentStatus() string { return "" }
func (NoSignal) Scrub()                {}

// Location is a ReturnSignal read from the URL the checkout page redirected to,
// e.g. https://app.example.com/?payment=success.
type Location struct {
	u *url.URL
}

// ParseLocation parses a return URL.
func ParseLocation(raw string) (*Location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing return url: %w", err)
	}
	return &Location{u: u}, nil
}

// PaymentStatus returns the value of the payment query parameter.
func (l *Location) PaymentStatus() string {
	return l.u.Query().Get("payment")
}

// Scrub drops the query string, leaving origin and path.
func (l *Location) Scrub() {
	l.u.RawQuery = ""
}

func (l *Location) String() string {
	return l.u.String()
}
