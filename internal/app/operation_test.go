package app

import (
	"errors"
	"testing"
	"time"

	"nutri-go/internal/testutil"
)

func TestNewOperation(t *testing.T) {
	clock := testutil.NewStubClock(time.Date(2024, 6, 15, 14, 30, 45, 0, time.UTC))
	op := NewOperation("Analyze", clock)

	if op.ID != "20240615T143045Z" {
		t.Errorf("ID = %q, want %q", op.ID, "20240615T143045Z")
	}
	if op.Name != "Analyze" {
		t.Errorf("Name = %q, want %q", op.Name, "Analyze")
	}
	if op.Status != StatusSuccess || op.Failed() {
		t.Errorf("Status = %q, want %q", op.Status, StatusSuccess)
	}

	clock.Advance(1500 * time.Millisecond)
	if got := op.Elapsed(clock); got != 1500*time.Millisecond {
		t.Errorf("Elapsed() = %v, want 1.5s", got)
	}
}

func TestOperation_Record(t *testing.T) {
	tests := []struct {
		name       string
		errs       []error
		wantStatus string
		wantErr    string
	}{
		{name: "no errors", errs: []error{nil, nil}, wantStatus: StatusSuccess},
		{name: "single error", errs: []error{errors.New("boom")}, wantStatus: StatusError, wantErr: "boom"},
		{name: "first error wins", errs: []error{nil, errors.New("first"), errors.New("second")}, wantStatus: StatusError, wantErr: "first"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := NewOperation("Sync", testutil.FixedClock())
			for _, err := range tt.errs {
				if got := op.Record(err); got != err {
					t.Errorf("Record() = %v, want %v", got, err)
				}
			}
			if op.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", op.Status, tt.wantStatus)
			}
			if tt.wantErr == "" {
				if op.Err != nil {
					t.Errorf("Err = %v, want nil", op.Err)
				}
				return
			}
			if op.Err == nil || op.Err.Error() != tt.wantErr {
				t.Errorf("Err = %v, want %q", op.Err, tt.wantErr)
			}
		})
	}
}
