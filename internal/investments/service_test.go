package investments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arthabooks/arthabooks/internal/ledger"
)

type memoryRepo struct {
	investments map[int64]*Investment
	liabilities map[int64]*Liability
	invoices    []ledger.Invoice
	nextID      int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		investments: make(map[int64]*Investment),
		liabilities: make(map[int64]*Liability),
	}
}

func (r *memoryRepo) CreateInvestment(ctx context.Context, input CreateInvestmentInput) (*Investment, error) {
	r.nextID++
	inv := &Investment{
		ID:                 r.nextID,
		Name:               input.Name,
		Institution:        input.Institution,
		Type:               input.Type,
		Mode:               input.Mode,
		MonthlyInstallment: input.MonthlyInstallment,
		DurationMonths:     input.DurationMonths,
		AmountInvested:     input.AmountInvested,
		InterestRate:       input.InterestRate,
		StartDate:          input.StartDate,
	}
	if input.Type == TypeChit {
		inv.ChitConfig = &ChitConfig{}
	}
	r.investments[inv.ID] = inv
	return inv, nil
}

func (r *memoryRepo) GetInvestment(ctx context.Context, id int64) (*Investment, error) {
	return r.investments[id], nil
}

func (r *memoryRepo) ListInvestments(ctx context.Context) ([]Investment, error) {
	var out []Investment
	for _, inv := range r.investments {
		out = append(out, *inv)
	}
	return out, nil
}

func (r *memoryRepo) DeleteInvestment(ctx context.Context, id int64) error {
	delete(r.investments, id)
	return nil
}

func (r *memoryRepo) CreateLiability(ctx context.Context, input CreateLiabilityInput) (*Liability, error) {
	r.nextID++
	l := &Liability{
		ID:           r.nextID,
		LenderID:     input.LenderID,
		Name:         input.Name,
		Principal:    input.Principal,
		InterestRate: input.InterestRate,
		StartDate:    input.StartDate,
	}
	r.liabilities[l.ID] = l
	return l, nil
}

func (r *memoryRepo) GetLiability(ctx context.Context, id int64) (*Liability, error) {
	return r.liabilities[id], nil
}

func (r *memoryRepo) ListLiabilities(ctx context.Context) ([]Liability, error) {
	var out []Liability
	for _, l := range r.liabilities {
		out = append(out, *l)
	}
	return out, nil
}

func (r *memoryRepo) ListLenderInvoices(ctx context.Context, lenderID int64) ([]ledger.Invoice, error) {
	var out []ledger.Invoice
	for _, inv := range r.invoices {
		if inv.CustomerID == lenderID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func TestOpenInvestmentValidation(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.OpenInvestment(ctx, CreateInvestmentInput{Type: TypeSavings})
	require.Error(t, err)

	_, err = svc.OpenInvestment(ctx, CreateInvestmentInput{Name: "FD", Type: "BOGUS"})
	require.Error(t, err)

	_, err = svc.OpenInvestment(ctx, CreateInvestmentInput{Name: "Chit A", Type: TypeChit, MonthlyInstallment: 5000})
	require.Error(t, err) // missing duration

	inv, err := svc.OpenInvestment(ctx, CreateInvestmentInput{
		Name: "Chit A", Type: TypeChit, MonthlyInstallment: 5000, DurationMonths: 20,
	})
	require.NoError(t, err)
	require.Equal(t, ModeMonthly, inv.Mode)
	require.NotNil(t, inv.ChitConfig)
}

func TestChitSavingsBalance(t *testing.T) {
	inv := Investment{
		Type:               TypeChit,
		MonthlyInstallment: 5000,
		DurationMonths:     20,
	}
	require.Equal(t, 100000.0, ChitSavingsBalance(inv))

	inv.Transactions = []LedgerTransaction{
		{Month: 1, AmountPaid: 5000},
		{Month: 2, AmountPaid: 4250},
		{Month: 3, AmountPaid: 4250},
	}
	// Remaining months count, not amounts paid, drives the figure.
	require.Equal(t, 85000.0, ChitSavingsBalance(inv))

	for m := 4; m <= 22; m++ {
		inv.Transactions = append(inv.Transactions, LedgerTransaction{Month: m, AmountPaid: 5000})
	}
	require.Equal(t, 0.0, ChitSavingsBalance(inv))
}

func TestSavingsBalance(t *testing.T) {
	monthly := Investment{
		Type: TypeSavings,
		Mode: ModeMonthly,
		Transactions: []LedgerTransaction{
			{Month: 1, AmountPaid: 2000},
			{Month: 2, AmountPaid: 2000.50},
		},
	}
	require.Equal(t, 4000.50, SavingsBalance(monthly))

	lump := Investment{Type: TypeSavings, Mode: ModeLumpSum, AmountInvested: 250000}
	require.Equal(t, 250000.0, SavingsBalance(lump))
}

func TestLoanInterestBalanceSumsOpenInterestOutInvoices(t *testing.T) {
	repo := newMemoryRepo()
	repo.invoices = []ledger.Invoice{
		{ID: 1, CustomerID: 7, Type: ledger.InvoiceInterestOut, Amount: 1000, Balance: 1000},
		{ID: 2, CustomerID: 7, Type: ledger.InvoiceInterestOut, Amount: 1000, Balance: 400},
		{ID: 3, CustomerID: 7, Type: ledger.InvoiceInterestOut, Amount: 500, Balance: 500, IsVoid: true},
		{ID: 4, CustomerID: 7, Type: ledger.InvoiceRoyalty, Amount: 300, Balance: 300},
		{ID: 5, CustomerID: 8, Type: ledger.InvoiceInterestOut, Amount: 900, Balance: 900},
	}
	svc := NewService(repo)

	total, err := svc.LoanInterestBalance(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, 1400.0, total)
}

func TestDeleteInvestmentWithLedgerRefused(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	inv, err := svc.OpenInvestment(ctx, CreateInvestmentInput{
		Name: "RD", Type: TypeSavings, Mode: ModeMonthly,
		MonthlyInstallment: 1000, DurationMonths: 12, StartDate: time.Now(),
	})
	require.NoError(t, err)

	repo.investments[inv.ID].Transactions = []LedgerTransaction{{Month: 1, AmountPaid: 1000}}
	require.Error(t, svc.DeleteInvestment(ctx, inv.ID))

	repo.investments[inv.ID].Transactions = nil
	require.NoError(t, svc.DeleteInvestment(ctx, inv.ID))
	require.NotContains(t, repo.investments, inv.ID)
}

func TestRecordLiabilityValidation(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.RecordLiability(ctx, CreateLiabilityInput{Name: "Hand loan", Principal: 50000})
	require.Error(t, err)

	_, err = svc.RecordLiability(ctx, CreateLiabilityInput{LenderID: 3, Name: "Hand loan", Principal: 0})
	require.Error(t, err)

	l, err := svc.RecordLiability(ctx, CreateLiabilityInput{LenderID: 3, Name: "Hand loan", Principal: 50000, InterestRate: 18})
	require.NoError(t, err)
	require.Equal(t, 50000.0, LoanRepaymentBalance(*l))
}
