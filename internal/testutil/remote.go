package testutil

import (
	"context"
	"errors"
	"sync"

	"nutri-go/internal/model"
	"nutri-go/internal/nutri"
)

// StubStatusSource returns a configurable status response.
type StubStatusSource struct {
	mu       sync.Mutex
	response any
	err      error
	calls    int

	// Gate, when non-nil, blocks FetchStatus until it is closed or ctx ends.
	Gate chan struct{}

	held    bool
	waiting []chan statusReply
}

type statusReply struct {
	response any
	err      error
}

var _ nutri.StatusSource = (*StubStatusSource)(nil)

// NewStubStatusSource returns a source answering with response.
func NewStubStatusSource(response any) *StubStatusSource {
	return &StubStatusSource{response: response}
}

// Set changes the response and error for later calls.
func (s *StubStatusSource) Set(response any, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.response = response
	s.err = err
}

// Calls returns how many times FetchStatus was called.
func (s *StubStatusSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Hold makes later FetchStatus calls wait until Release answers them.
func (s *StubStatusSource) Hold() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.held = true
}

// Waiting returns how many held calls have not been answered yet.
func (s *StubStatusSource) Waiting() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.waiting)
}

// Release answers the oldest held call. It reports false if none is waiting.
func (s *StubStatusSource) Release(response any, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.waiting) == 0 {
		return false
	}
	reply := s.waiting[0]
	s.waiting = s.waiting[1:]
	reply <- statusReply{response: response, err: err}
	return true
}

func (s *StubStatusSource) FetchStatus(ctx context.Context, userID, email string) (any, error) {
	s.mu.Lock()
	s.calls++
	gate := s.Gate
	if s.held {
		reply := make(chan statusReply, 1)
		s.waiting = append(s.waiting, reply)
		s.mu.Unlock()
		select {
		case r := <-reply:
			return r.response, r.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.response, s.err
}

// StubAnalyzer returns a fixed estimate or error.
type StubAnalyzer struct {
	mu     sync.Mutex
	Result model.NutritionalData
	Err    error
	calls  int
}

var _ nutri.Analyzer = (*StubAnalyzer)(nil)

// NewStubAnalyzer returns an analyzer that always answers with a 250 kcal
// salad.
func NewStubAnalyzer() *StubAnalyzer {
	return &StubAnalyzer{Result: model.NutritionalData{
		FoodName: "Garden salad",
		Calories: 250,
		Protein:  8,
		Carbs:    20,
		Fat:      14,
		Notes:    "Estimate assumes one tablespoon of dressing.",
	}}
}

func (a *StubAnalyzer) Analyze(ctx context.Context, text, image string) (model.NutritionalData, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	if a.Err != nil {
		return model.NutritionalData{}, a.Err
	}
	return a.Result, nil
}

// Calls returns how many times Analyze was called.
func (a *StubAnalyzer) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

// StubCheckout returns a fixed checkout URL or error.
type StubCheckout struct {
	URL string
	Err error

	mu          sync.Mutex
	CallbackURL string
}

var _ nutri.CheckoutProvider = (*StubCheckout)(nil)

func (c *StubCheckout) CreateCheckout(ctx context.Context, userID, email, callbackURL string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CallbackURL = callbackURL
	if c.Err != nil {
		return "", c.Err
	}
	if c.URL == "" {
		return "", errors.New("no URL returned from webhook")
	}
	return c.URL, nil
}
