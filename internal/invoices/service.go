package invoices

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/arthabooks/arthabooks/internal/ledger"
	"github.com/arthabooks/arthabooks/internal/platform/httpx"
)

// RepositoryPort defines data access methods for billing.
type RepositoryPort interface {
	CreateInvoice(ctx context.Context, input CreateInvoiceInput) (*ledger.Invoice, error)
	GetInvoice(ctx context.Context, id int64) (*ledger.Invoice, error)
	ListInvoices(ctx context.Context, req ListInvoicesRequest) ([]ledger.Invoice, error)
	VoidInvoice(ctx context.Context, id int64) error
	ListBillableCustomers(ctx context.Context, role string) ([]ledger.Customer, error)
	CountInvoicesInPeriod(ctx context.Context, customerID int64, invType ledger.InvoiceType, from, to time.Time) (int, error)
}

// CreateInvoiceInput for billing a party.
type CreateInvoiceInput struct {
	CustomerID       int64
	Type             ledger.InvoiceType
	Direction        ledger.Direction
	Amount           float64
	Date             time.Time
	RelatedAuctionID string
}

// ListInvoicesRequest filters invoice listings.
type ListInvoicesRequest struct {
	CustomerID int64
	Type       ledger.InvoiceType
	Status     ledger.InvoiceStatus
	OpenOnly   bool
	Limit      int
	Offset     int
}

// BillingRunResult summarises one batch billing pass.
type BillingRunResult struct {
	Period  string  `json:"period"`
	Created int     `json:"created"`
	Skipped int     `json:"skipped"`
	Total   float64 `json:"total"`
}

// Service handles billing business logic.
type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateInvoice bills a party manually.
func (s *Service) CreateInvoice(ctx context.Context, input CreateInvoiceInput) (*ledger.Invoice, error) {
	if input.CustomerID == 0 {
		return nil, fmt.Errorf("%w: customer ID required", httpx.ErrValidation)
	}
	if input.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", httpx.ErrValidation)
	}
	switch input.Type {
	case ledger.InvoiceRoyalty, ledger.InvoiceInterest, ledger.InvoiceInterestOut, ledger.InvoiceChit:
	default:
		return nil, fmt.Errorf("%w: unknown invoice type %q", httpx.ErrValidation, input.Type)
	}
	if input.Direction == "" {
		input.Direction = ledger.DirectionIn
	}
	if input.Date.IsZero() {
		input.Date = time.Now()
	}
	return s.repo.CreateInvoice(ctx, input)
}

// GetInvoice returns one invoice.
func (s *Service) GetInvoice(ctx context.Context, id int64) (*ledger.Invoice, error) {
	inv, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, fmt.Errorf("%w: invoice %d", httpx.ErrNotFound, id)
	}
	return inv, nil
}

// ListInvoices returns invoices matching the filter.
func (s *Service) ListInvoices(ctx context.Context, req ListInvoicesRequest) ([]ledger.Invoice, error) {
	return s.repo.ListInvoices(ctx, req)
}

// VoidInvoice cancels a bill. Invoices are voided, never deleted.
func (s *Service) VoidInvoice(ctx context.Context, id int64) error {
	inv, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return err
	}
	if inv == nil {
		return fmt.Errorf("%w: invoice %d", httpx.ErrNotFound, id)
	}
	if inv.Balance < inv.Amount {
		return fmt.Errorf("%w: invoice %d has received payments, reverse them first", httpx.ErrConflict, id)
	}
	return s.repo.VoidInvoice(ctx, id)
}

// GenerateRoyaltyInvoices runs the monthly royalty billing batch. Parties
// already billed inside the period are skipped, so the run is re-entrant.
func (s *Service) GenerateRoyaltyInvoices(ctx context.Context, period time.Time) (*BillingRunResult, error) {
	return s.generate(ctx, period, "royalty", ledger.InvoiceRoyalty, func(c ledger.Customer) float64 {
		return c.RoyaltyAmount
	})
}

// GenerateInterestInvoices runs the monthly interest billing batch. Each
// interest customer is billed one month of simple interest on the
// outstanding principal.
func (s *Service) GenerateInterestInvoices(ctx context.Context, period time.Time) (*BillingRunResult, error) {
	return s.generate(ctx, period, "interest", ledger.InvoiceInterest, func(c ledger.Customer) float64 {
		return ledger.Round2(c.InterestPrincipal * c.InterestRate / 100 / 12)
	})
}

func (s *Service) generate(ctx context.Context, period time.Time, role string, invType ledger.InvoiceType, amountFor func(ledger.Customer) float64) (*BillingRunResult, error) {
	if period.IsZero() {
		period = time.Now().UTC()
	}
	from := time.Date(period.Year(), period.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	custs, err := s.repo.ListBillableCustomers(ctx, role)
	if err != nil {
		return nil, err
	}

	result := &BillingRunResult{Period: from.Format("2006-01")}
	for _, cust := range custs {
		if cust.Status != ledger.CustomerActive {
			result.Skipped++
			continue
		}
		amount := amountFor(cust)
		if amount <= 0 {
			result.Skipped++
			continue
		}
		billed, err := s.repo.CountInvoicesInPeriod(ctx, cust.ID, invType, from, to)
		if err != nil {
			return nil, err
		}
		if billed > 0 {
			result.Skipped++
			continue
		}
		if _, err := s.repo.CreateInvoice(ctx, CreateInvoiceInput{
			CustomerID: cust.ID,
			Type:       invType,
			Direction:  ledger.DirectionIn,
			Amount:     amount,
			Date:       from,
		}); err != nil {
			return nil, fmt.Errorf("bill customer %d: %w", cust.ID, err)
		}
		result.Created++
		result.Total = ledger.Round2(result.Total + amount)
	}
	if s.logger != nil {
		s.logger.Info("billing run finished",
			slog.String("type", string(invType)),
			slog.String("period", result.Period),
			slog.Int("created", result.Created),
			slog.Int("skipped", result.Skipped))
	}
	return result, nil
}
