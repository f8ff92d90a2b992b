package customers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arthabooks/arthabooks/internal/ledger"
)

type memoryRepo struct {
	customers map[int64]*ledger.Customer
	invoices  map[int64][]ledger.Invoice
	payments  map[int64][]ledger.Payment
	nextID    int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		customers: make(map[int64]*ledger.Customer),
		invoices:  make(map[int64][]ledger.Invoice),
		payments:  make(map[int64][]ledger.Payment),
	}
}

func (r *memoryRepo) CreateCustomer(ctx context.Context, input CreateCustomerInput) (*ledger.Customer, error) {
	r.nextID++
	cust := &ledger.Customer{
		ID:                r.nextID,
		Name:              input.Name,
		Phone:             input.Phone,
		Status:            ledger.CustomerActive,
		IsRoyalty:         input.IsRoyalty,
		IsInterest:        input.IsInterest,
		IsChit:            input.IsChit,
		IsGeneral:         input.IsGeneral,
		IsLender:          input.IsLender,
		RoyaltyAmount:     input.RoyaltyAmount,
		InterestPrincipal: input.InterestPrincipal,
		InterestRate:      input.InterestRate,
		CreditPrincipal:   input.CreditPrincipal,
		OpeningBalance:    input.OpeningBalance,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	r.customers[cust.ID] = cust
	return cust, nil
}

func (r *memoryRepo) GetCustomer(ctx context.Context, id int64) (*ledger.Customer, error) {
	return r.customers[id], nil
}

func (r *memoryRepo) UpdateCustomer(ctx context.Context, id int64, input UpdateCustomerInput) error {
	cust := r.customers[id]
	cust.Name = input.Name
	cust.RoyaltyAmount = input.RoyaltyAmount
	cust.InterestPrincipal = input.InterestPrincipal
	return nil
}

func (r *memoryRepo) SetCustomerStatus(ctx context.Context, id int64, status ledger.CustomerStatus) error {
	r.customers[id].Status = status
	return nil
}

func (r *memoryRepo) DeleteCustomer(ctx context.Context, id int64) error {
	delete(r.customers, id)
	return nil
}

func (r *memoryRepo) ListCustomers(ctx context.Context, req ListCustomersRequest) ([]ledger.Customer, error) {
	var out []ledger.Customer
	for _, c := range r.customers {
		if req.Status != "" && c.Status != req.Status {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (r *memoryRepo) ListPartyInvoices(ctx context.Context, partyID int64) ([]ledger.Invoice, error) {
	return r.invoices[partyID], nil
}

func (r *memoryRepo) ListPartyPayments(ctx context.Context, partyID int64) ([]ledger.Payment, error) {
	return r.payments[partyID], nil
}

func TestRegisterCustomerValidation(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.RegisterCustomer(ctx, CreateCustomerInput{})
	require.Error(t, err)

	_, err = svc.RegisterCustomer(ctx, CreateCustomerInput{Name: "Raju", IsRoyalty: true})
	require.Error(t, err)

	cust, err := svc.RegisterCustomer(ctx, CreateCustomerInput{Name: "Raju", IsRoyalty: true, RoyaltyAmount: 1500})
	require.NoError(t, err)
	require.Equal(t, ledger.CustomerActive, cust.Status)
}

func TestDeleteCustomerWithHistoryRefused(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	cust, err := svc.RegisterCustomer(ctx, CreateCustomerInput{Name: "Meena"})
	require.NoError(t, err)
	repo.invoices[cust.ID] = []ledger.Invoice{{ID: 1, CustomerID: cust.ID}}

	err = svc.DeleteCustomer(ctx, cust.ID)
	require.Error(t, err)

	require.NoError(t, svc.DeactivateCustomer(ctx, cust.ID))
	require.Equal(t, ledger.CustomerInactive, repo.customers[cust.ID].Status)
}

func TestCategoryBalanceAndPosition(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	cust, err := svc.RegisterCustomer(ctx, CreateCustomerInput{
		Name: "Velu", IsInterest: true, InterestPrincipal: 10000, InterestRate: 24, OpeningBalance: 200,
	})
	require.NoError(t, err)

	repo.invoices[cust.ID] = []ledger.Invoice{
		{ID: 1, CustomerID: cust.ID, Type: ledger.InvoiceInterest, Direction: ledger.DirectionIn, Amount: 400, Balance: 400, Date: time.Now()},
	}
	repo.payments[cust.ID] = []ledger.Payment{
		{ID: 1, Direction: ledger.DirectionIn, Category: ledger.CategoryInterest, Amount: 150, SourceID: cust.ID},
	}

	interest, err := svc.CategoryBalance(ctx, cust.ID, ledger.CategoryInterest, true)
	require.NoError(t, err)
	require.Equal(t, 250.0, interest)

	overall, err := svc.CategoryBalance(ctx, cust.ID, ledger.CategoryOverall, true)
	require.NoError(t, err)
	require.Equal(t, 250.0+200+10000, overall)

	pos, err := svc.Position(ctx, cust.ID, ledger.CategoryOverall)
	require.NoError(t, err)
	require.Equal(t, 250.0, pos.Breakdown.Interest)
	require.Equal(t, 10000.0, pos.Breakdown.Principal)
	require.Equal(t, 200.0, pos.Breakdown.Opening)
}

func TestCategoryBalanceUnknownCustomer(t *testing.T) {
	svc := NewService(newMemoryRepo())
	_, err := svc.CategoryBalance(context.Background(), 404, ledger.CategoryOverall, true)
	require.Error(t, err)
}
