package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/arthabooks/arthabooks/internal/invoices"
)

// BillingRunner is the slice of the invoices service the billing jobs need.
type BillingRunner interface {
	GenerateRoyaltyInvoices(ctx context.Context, period time.Time) (*invoices.BillingRunResult, error)
	GenerateInterestInvoices(ctx context.Context, period time.Time) (*invoices.BillingRunResult, error)
}

// BillingHandlers adapts the invoices service to asynq task handlers.
type BillingHandlers struct {
	logger *slog.Logger
	runner BillingRunner
}

// NewBillingHandlers constructs the billing task handlers.
func NewBillingHandlers(logger *slog.Logger, runner BillingRunner) *BillingHandlers {
	return &BillingHandlers{logger: logger, runner: runner}
}

func parsePeriod(raw []byte) (time.Time, error) {
	var payload BillingPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return time.Time{}, err
	}
	if payload.Period == "" {
		return time.Now(), nil
	}
	return time.Parse("2006-01", payload.Period)
}

// HandleRoyalty processes TaskBillingRoyalty tasks. Billing runs are
// idempotent per period, so retries after a partial failure are safe.
func (h *BillingHandlers) HandleRoyalty(ctx context.Context, t *asynq.Task) error {
	period, err := parsePeriod(t.Payload())
	if err != nil {
		return asynq.SkipRetry
	}
	result, err := h.runner.GenerateRoyaltyInvoices(ctx, period)
	if err != nil {
		h.logger.Error("royalty billing job failed", slog.Any("error", err))
		return err
	}
	h.logger.Info("royalty billing job finished",
		slog.String("period", result.Period),
		slog.Int("created", result.Created),
		slog.Int("skipped", result.Skipped),
	)
	return nil
}

// HandleInterest processes TaskBillingInterest tasks.
func (h *BillingHandlers) HandleInterest(ctx context.Context, t *asynq.Task) error {
	period, err := parsePeriod(t.Payload())
	if err != nil {
		return asynq.SkipRetry
	}
	result, err := h.runner.GenerateInterestInvoices(ctx, period)
	if err != nil {
		h.logger.Error("interest billing job failed", slog.Any("error", err))
		return err
	}
	h.logger.Info("interest billing job finished",
		slog.String("period", result.Period),
		slog.Int("created", result.Created),
		slog.Int("skipped", result.Skipped),
	)
	return nil
}
