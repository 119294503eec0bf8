// Package payment wraps stripe-go for fare settlement on card rides.
package payment

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	stripe "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"

	"github.com/mishwarapp/mishwar/internal/pkg/circuitbreaker"
	"github.com/mishwarapp/mishwar/internal/pkg/models"
)

// StripeClient is a thin wrapper around stripe-go PaymentIntent flows.
// A circuit breaker keeps a dead processor from tying up completion
// handlers with full timeouts on every ride.
type StripeClient struct {
	timeout time.Duration
	breaker *circuitbreaker.Breaker
}

// NewStripeClient initializes the stripe client from configuration.
func NewStripeClient(cfg models.PaymentConfig) *StripeClient {
	stripe.Key = cfg.StripeAPIKey
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &StripeClient{
		timeout: timeout,
		breaker: circuitbreaker.New(circuitbreaker.DefaultConfig("stripe")),
	}
}

// Stripe amounts are integers in the currency's smallest unit, and the
// decimal count varies by currency.
var (
	zeroDecimalCurrencies = map[string]bool{
		"bif": true, "clp": true, "djf": true, "gnf": true, "jpy": true,
		"kmf": true, "krw": true, "mga": true, "pyg": true, "rwf": true,
		"ugx": true, "vnd": true, "vuv": true, "xaf": true, "xof": true,
		"xpf": true,
	}
	threeDecimalCurrencies = map[string]bool{
		"bhd": true, "iqd": true, "jod": true, "kwd": true, "lyd": true,
		"omr": true, "tnd": true,
	}
)

// MinorUnits converts a decimal amount to the currency's smallest unit,
// rounding to the nearest unit so float representation error cannot
// shave off a fils or cent.
func MinorUnits(amount float64, currency string) int64 {
	factor := 100.0
	switch code := strings.ToLower(currency); {
	case zeroDecimalCurrencies[code]:
		factor = 1
	case threeDecimalCurrencies[code]:
		factor = 1000
	}
	return int64(math.Round(amount * factor))
}

// Charge creates and confirms a PaymentIntent for the given fare.
// Returns the PaymentIntent ID on success.
func (s *StripeClient) Charge(ctx context.Context, amount float64, currency, customerID string) (string, error) {
	var intentID string

	err := s.breaker.Execute(ctx, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		params := &stripe.PaymentIntentParams{
			Amount:   stripe.Int64(MinorUnits(amount, currency)),
			Currency: stripe.String(currency),
			Confirm:  stripe.Bool(true),
		}
		params.Context = ctx
		if customerID != "" {
			params.Customer = stripe.String(customerID)
		}

		pi, err := paymentintent.New(params)
		if err != nil {
			return err
		}
		intentID = pi.ID
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to create payment intent: %w", err)
	}
	return intentID, nil
}
