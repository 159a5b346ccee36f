package nutri_test

import (
	"testing"

	"nutri-go/internal/nutri"
)

func TestLocation(t *testing.T) {
	loc, err := nutri.ParseLocation("https://app.example.com/dashboard?payment=success&ref=abc")
	if err != nil {
		t.Fatalf("ParseLocation() error = %v", err)
	}
	if got := loc.PaymentStatus(); got != nutri.PaymentSuccess {
		t.Errorf("PaymentStatus() = %q, want success", got)
	}

	loc.Scrub()
	if got := loc.PaymentStatus(); got != "" {
		t.Errorf("PaymentStatus() after Scrub = %q", got)
	}
	if got := loc.String(); got != "https://app.example.com/dashboard" {
		t.Errorf("String() after Scrub = %q", got)
	}

	if _, err := nutri.ParseLocation("://bad"); err == nil {
		t.Error("ParseLocation() expected error for malformed url")
	}
}
