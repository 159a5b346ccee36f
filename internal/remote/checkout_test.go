package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCheckoutClient_CreateCheckout(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{name: "top-level url", body: `{"url":"https://pay.example.com/a"}`, want: "https://pay.example.com/a"},
		{name: "nested url", body: `{"data":{"url":"https://pay.example.com/b"}}`, want: "https://pay.example.com/b"},
		{name: "top-level wins", body: `{"url":"https://pay.example.com/a","data":{"url":"https://pay.example.com/b"}}`, want: "https://pay.example.com/a"},
		{name: "no url", body: `{"status":"ok"}`, wantErr: true},
		{name: "non-string url", body: `{"url":42}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req checkoutRequest
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewDecoder(r.Body).Decode(&req)
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			got, err := NewCheckoutClient(srv.URL, srv.Client()).CreateCheckout(context.Background(), "u1", "a@example.com", "https://app.example.com/")
			if (err != nil) != tt.wantErr {
				t.Fatalf("CreateCheckout() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("CreateCheckout() = %q, want %q", got, tt.want)
			}
			if req.CallbackURL != "https://app.example.com/" || req.UserID != "u1" {
				t.Errorf("request = %+v", req)
			}
		})
	}

	t.Run("error status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()
		if _, err := NewCheckoutClient(srv.URL, srv.Client()).CreateCheckout(context.Background(), "u1", "", ""); err == nil {
			t.Error("CreateCheckout() expected error")
		}
	})
}
