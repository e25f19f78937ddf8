package gateway

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/bagayi/finance-api/internal/models"
)

// Gateway is the external payment switch that executes M-Pesa channel
// transfers. Returns the gateway receipt used as the transfer's external
// transaction id.
type Gateway interface {
	Initiate(ctx context.Context, channel models.PaymentChannel, amountMicros int64) (string, error)
}

// MockDaraja simulates the M-Pesa Daraja API for local development and tests.
// It introduces a configurable delay and fails a configurable fraction of
// requests.
type MockDaraja struct {
	// FailureRate is the probability of failure (0.0 to 1.0).
	FailureRate float64
	// Latency caps the simulated network delay; zero disables the delay.
	Latency time.Duration
}

// NewMockDaraja creates a MockDaraja with a 10% failure rate and a delay of
// up to two seconds.
func NewMockDaraja() *MockDaraja {
	return &MockDaraja{FailureRate: 0.1, Latency: 2 * time.Second}
}

func (g *MockDaraja) Initiate(ctx context.Context, channel models.PaymentChannel, amountMicros int64) (string, error) {
	if g.Latency > 0 {
		delay := time.Duration(rand.Int63n(int64(g.Latency)))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", fmt.Errorf("gateway call canceled: %w", ctx.Err())
		}
	}

	if rand.Float64() < g.FailureRate {
		return "", fmt.Errorf("gateway temporarily unavailable")
	}

	// Receipt format mirrors M-Pesa confirmation codes closely enough for
	// development: MOCK-YYYYMMDD-HHMMSS-XXXXX.
	return fmt.Sprintf("MOCK-%s-%05d", time.Now().Format("20060102-150405"), rand.Intn(100000)), nil
}
