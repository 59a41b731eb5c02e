package processor

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/flexprice/paycycle/internal/types"
)

// Simulated is a provider stand-in whose outcomes are configured per instance.
// It is used in local mode and in tests.
type Simulated struct {
	provider types.PaymentProvider

	mu       sync.Mutex
	code     types.PaymentStatusCode
	sequence []types.PaymentStatusCode
	delay    time.Duration
	prefix   string
	calls    int
	accepted map[string]ChargeResult
}

// SimulatedOption configures a Simulated processor
type SimulatedOption func(*Simulated)

// WithStatusCode makes every charge return code
func WithStatusCode(code types.PaymentStatusCode) SimulatedOption {
	return func(s *Simulated) { s.code = code }
}

// WithCodeSequence returns the given codes in order, then falls back to the configured status code
func WithCodeSequence(codes ...types.PaymentStatusCode) SimulatedOption {
	return func(s *Simulated) { s.sequence = append([]types.PaymentStatusCode(nil), codes...) }
}

// WithDelay simulates provider latency
func WithDelay(d time.Duration) SimulatedOption {
	return func(s *Simulated) { s.delay = d }
}

// WithTransactionPrefix sets the prefix of generated transaction ids
func WithTransactionPrefix(prefix string) SimulatedOption {
	return func(s *Simulated) { s.prefix = prefix }
}

func NewSimulated(provider types.PaymentProvider, opts ...SimulatedOption) *Simulated {
	s := &Simulated{
		provider: provider,
		code:     types.PaymentStatusCodeSuccess,
		prefix:   strings.ReplaceAll(string(provider), "_", "") + "-",
		accepted: make(map[string]ChargeResult),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulated) Provider() types.PaymentProvider {
	return s.provider
}

// Respond replaces the configured outcome
func (s *Simulated) Respond(code types.PaymentStatusCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.code = code
	s.sequence = nil
}

// SetDelay replaces the simulated provider latency
func (s *Simulated) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// Calls returns how many charges reached the processor
func (s *Simulated) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *Simulated) Charge(ctx context.Context, req *ChargeRequest) (*ChargeResult, error) {
	s.mu.Lock()
	s.calls++
	// an accepted key is answered with the original charge, like a provider's idempotency layer
	if prev, ok := s.accepted[req.IdempotencyKey]; ok && req.IdempotencyKey != "" {
		s.mu.Unlock()
		return &prev, nil
	}
	code := s.code
	if len(s.sequence) > 0 {
		code = s.sequence[0]
		s.sequence = s.sequence[1:]
	}
	delay := s.delay
	s.mu.Unlock()

	if req.PaymentMethod == nil || !req.PaymentMethod.IsCard() || !req.PaymentMethod.IsValid() {
		return &ChargeResult{Code: types.PaymentStatusCodeCardInvalid}, nil
	}

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	result := &ChargeResult{Code: code}
	if code.IsSuccess() || code.IsProcessing() {
		result.TransactionID = types.GenerateShortIDWithPrefix(s.prefix)
		if req.IdempotencyKey != "" {
			s.mu.Lock()
			s.accepted[req.IdempotencyKey] = *result
			s.mu.Unlock()
		}
	}
	return result, nil
}
