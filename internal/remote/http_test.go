package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPostJSON(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		status      int
		body        string
		wantOK      bool
		wantBody    any
		wantDecode  bool
	}{
		{
			name:        "json object",
			contentType: "application/json; charset=utf-8",
			status:      http.StatusOK,
			body:        `{"plan":"PRO"}`,
			wantOK:      true,
			wantBody:    map[string]any{"plan": "PRO"},
		},
		{
			name:        "text body",
			contentType: "text/plain",
			status:      http.StatusOK,
			body:        "PRO",
			wantOK:      true,
			wantBody:    "PRO",
		},
		{
			name:        "declared json that does not parse",
			contentType: "application/json",
			status:      http.StatusOK,
			body:        "{oops",
			wantOK:      true,
			wantBody:    "{oops",
			wantDecode:  true,
		},
		{
			name:        "error status is a response",
			contentType: "application/json",
			status:      http.StatusServiceUnavailable,
			body:        `{"error":"down"}`,
			wantBody:    map[string]any{"error": "down"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got map[string]any
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Content-Type") != "application/json" {
					t.Errorf("request Content-Type = %q", r.Header.Get("Content-Type"))
				}
				json.NewDecoder(r.Body).Decode(&got)
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			resp, err := PostJSON(context.Background(), srv.Client(), srv.URL, map[string]string{"userId": "u1"})
			if err != nil {
				t.Fatalf("PostJSON() error = %v", err)
			}
			if got["userId"] != "u1" {
				t.Errorf("server received %v", got)
			}
			if resp.OK() != tt.wantOK {
				t.Errorf("OK() = %v, want %v", resp.OK(), tt.wantOK)
			}
			if (resp.DecodeErr != nil) != tt.wantDecode {
				t.Errorf("DecodeErr = %v, want set %v", resp.DecodeErr, tt.wantDecode)
			}
			gotJSON, _ := json.Marshal(resp.Body)
			wantJSON, _ := json.Marshal(tt.wantBody)
			if string(gotJSON) != string(wantJSON) {
				t.Errorf("Body = %s, want %s", gotJSON, wantJSON)
			}
		})
	}
}

func TestPostJSON_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	if _, err := PostJSON(context.Background(), http.DefaultClient, url, nil); err == nil {
		t.Fatal("PostJSON() expected error for closed server")
	}
}

func TestResponse_StatusText(t *testing.T) {
	if got := (&Response{StatusCode: 502}).StatusText(); got != "Bad Gateway" {
		t.Errorf("StatusText() = %q", got)
	}
	if got := (&Response{StatusCode: 599}).StatusText(); got != "status 599" {
		t.Errorf("StatusText() = %q", got)
	}
}
