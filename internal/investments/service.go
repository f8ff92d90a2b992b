package investments

import (
	"context"
	"fmt"
	"time"

	"github.com/arthabooks/arthabooks/internal/ledger"
	"github.com/arthabooks/arthabooks/internal/platform/httpx"
)

// RepositoryPort defines data access methods for investments and liabilities.
type RepositoryPort interface {
	CreateInvestment(ctx context.Context, input CreateInvestmentInput) (*Investment, error)
	GetInvestment(ctx context.Context, id int64) (*Investment, error)
	ListInvestments(ctx context.Context) ([]Investment, error)
	DeleteInvestment(ctx context.Context, id int64) error

	CreateLiability(ctx context.Context, input CreateLiabilityInput) (*Liability, error)
	GetLiability(ctx context.Context, id int64) (*Liability, error)
	ListLiabilities(ctx context.Context) ([]Liability, error)

	ListLenderInvoices(ctx context.Context, lenderID int64) ([]ledger.Invoice, error)
}

// CreateInvestmentInput for opening an investment.
type CreateInvestmentInput struct {
	Name               string
	Institution        string
	Type               InvestmentType
	Mode               SavingsMode
	MonthlyInstallment float64
	DurationMonths     int
	AmountInvested     float64
	InterestRate       float64
	StartDate          time.Time
}

// CreateLiabilityInput for recording external debt.
type CreateLiabilityInput struct {
	LenderID     int64
	Name         string
	Principal    float64
	InterestRate float64
	StartDate    time.Time
}

// Service handles investment and liability business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// OpenInvestment registers a new external asset.
func (s *Service) OpenInvestment(ctx context.Context, input CreateInvestmentInput) (*Investment, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: investment name required", httpx.ErrValidation)
	}
	switch input.Type {
	case TypeSavings, TypeChit:
	default:
		return nil, fmt.Errorf("%w: unknown investment type %q", httpx.ErrValidation, input.Type)
	}
	if input.Type == TypeChit || input.Mode == ModeMonthly {
		if input.MonthlyInstallment <= 0 {
			return nil, fmt.Errorf("%w: monthly installment must be positive", httpx.ErrValidation)
		}
		if input.DurationMonths <= 0 {
			return nil, fmt.Errorf("%w: duration must be positive", httpx.ErrValidation)
		}
	}
	if input.Mode == "" {
		input.Mode = ModeMonthly
	}
	return s.repo.CreateInvestment(ctx, input)
}

// GetInvestment returns one investment with its transaction ledger.
func (s *Service) GetInvestment(ctx context.Context, id int64) (*Investment, error) {
	inv, err := s.repo.GetInvestment(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, fmt.Errorf("%w: investment %d", httpx.ErrNotFound, id)
	}
	return inv, nil
}

// ListInvestments returns all investments.
func (s *Service) ListInvestments(ctx context.Context) ([]Investment, error) {
	return s.repo.ListInvestments(ctx)
}

// DeleteInvestment removes an investment with no ledger rows.
func (s *Service) DeleteInvestment(ctx context.Context, id int64) error {
	inv, err := s.GetInvestment(ctx, id)
	if err != nil {
		return err
	}
	if len(inv.Transactions) > 0 {
		return fmt.Errorf("%w: investment has ledger transactions", httpx.ErrConflict)
	}
	return s.repo.DeleteInvestment(ctx, id)
}

// RecordLiability registers external debt owed to a lender.
func (s *Service) RecordLiability(ctx context.Context, input CreateLiabilityInput) (*Liability, error) {
	if input.LenderID == 0 {
		return nil, fmt.Errorf("%w: lender required", httpx.ErrValidation)
	}
	if input.Principal <= 0 {
		return nil, fmt.Errorf("%w: principal must be positive", httpx.ErrValidation)
	}
	return s.repo.CreateLiability(ctx, input)
}

// GetLiability returns one liability.
func (s *Service) GetLiability(ctx context.Context, id int64) (*Liability, error) {
	l, err := s.repo.GetLiability(ctx, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, fmt.Errorf("%w: liability %d", httpx.ErrNotFound, id)
	}
	return l, nil
}

// ListLiabilities returns all liabilities.
func (s *Service) ListLiabilities(ctx context.Context) ([]Liability, error) {
	return s.repo.ListLiabilities(ctx)
}

// ChitSavingsBalance is what remains to be paid into a chit-type investment:
// unpaid months times the installment.
func ChitSavingsBalance(inv Investment) float64 {
	remaining := inv.DurationMonths - len(inv.Transactions)
	if remaining < 0 {
		remaining = 0
	}
	return ledger.Round2(float64(remaining) * inv.MonthlyInstallment)
}

// SavingsBalance is the amount accumulated in a savings investment. Monthly
// plans sum the transaction ledger; lump sums carry AmountInvested.
func SavingsBalance(inv Investment) float64 {
	if inv.Mode == ModeLumpSum {
		return inv.AmountInvested
	}
	var total float64
	for _, txn := range inv.Transactions {
		total += txn.AmountPaid
	}
	return ledger.Round2(total)
}

// LoanRepaymentBalance is the outstanding principal on a liability.
func LoanRepaymentBalance(l Liability) float64 {
	return l.Principal
}

// LoanInterestBalance sums what the business still owes a lender in interest,
// from the lender's open INTEREST_OUT invoices.
func (s *Service) LoanInterestBalance(ctx context.Context, lenderID int64) (float64, error) {
	invoices, err := s.repo.ListLenderInvoices(ctx, lenderID)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, inv := range invoices {
		if inv.IsVoid || inv.Type != ledger.InvoiceInterestOut {
			continue
		}
		total += inv.Balance
	}
	return ledger.Round2(total), nil
}
