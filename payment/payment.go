// Package payment simulates the subscription checkout. There is no
// live gateway: the processor always operates in demo mode and
// fabricates receipts, which keeps the billing flow exercisable in
// every deployment.
package payment

import (
	"context"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-social-connect"
)

// ChargeRequest describes one simulated charge.
type ChargeRequest struct {
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Email       string `json:"email"`
	Description string `json:"description"`
}

// Validate checks the request.
func (r ChargeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Amount, validation.Required, validation.Min(1)),
		validation.Field(&r.Currency, validation.Required, validation.Length(3, 3)),
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

// Receipt is the simulated outcome of a charge.
type Receipt struct {
	ID          string    `json:"id"`
	Amount      int64     `json:"amount"`
	Currency    string    `json:"currency"`
	Description string    `json:"description"`
	Demo        bool      `json:"demo"`
	ProcessedAt time.Time `json:"processedAt"`
}

// Processor simulates payment processing.
type Processor struct {
	logger connect.Logger
	now    func() time.Time
}

// Option configures the processor.
type Option func(*Processor)

// WithLogger sets the logger.
func WithLogger(logger connect.Logger) Option {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) {
		if now != nil {
			p.now = now
		}
	}
}

// NewProcessor creates the simulated processor.
func NewProcessor(opts ...Option) *Processor {
	p := &Processor{
		logger: connect.DefaultLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Configured always reports false: no real gateway exists.
func (p *Processor) Configured() bool {
	return false
}

// Charge validates the request and fabricates a receipt.
func (p *Processor) Charge(ctx context.Context, req ChargeRequest) (*Receipt, error) {
	if err := req.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "invalid charge request")
	}

	receipt := &Receipt{
		ID:          fmt.Sprintf("demo_charge_%s", uuid.NewString()),
		Amount:      req.Amount,
		Currency:    req.Currency,
		Description: req.Description,
		Demo:        true,
		ProcessedAt: p.now(),
	}

	p.logger.Info("simulated charge %s for %d %s", receipt.ID, req.Amount, req.Currency)
	return receipt, nil
}
