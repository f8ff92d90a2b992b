package customers

import (
	"context"
	"fmt"

	"github.com/arthabooks/arthabooks/internal/ledger"
	"github.com/arthabooks/arthabooks/internal/platform/httpx"
)

// RepositoryPort defines data access methods for the party registry.
type RepositoryPort interface {
	CreateCustomer(ctx context.Context, input CreateCustomerInput) (*ledger.Customer, error)
	GetCustomer(ctx context.Context, id int64) (*ledger.Customer, error)
	UpdateCustomer(ctx context.Context, id int64, input UpdateCustomerInput) error
	SetCustomerStatus(ctx context.Context, id int64, status ledger.CustomerStatus) error
	DeleteCustomer(ctx context.Context, id int64) error
	ListCustomers(ctx context.Context, req ListCustomersRequest) ([]ledger.Customer, error)
	ListPartyInvoices(ctx context.Context, partyID int64) ([]ledger.Invoice, error)
	ListPartyPayments(ctx context.Context, partyID int64) ([]ledger.Payment, error)
}

// CreateCustomerInput for registering a party.
type CreateCustomerInput struct {
	Name              string
	Phone             string
	IsRoyalty         bool
	IsInterest        bool
	IsChit            bool
	IsGeneral         bool
	IsLender          bool
	RoyaltyAmount     float64
	InterestPrincipal float64
	InterestRate      float64
	CreditPrincipal   float64
	OpeningBalance    float64
}

// UpdateCustomerInput mirrors the mutable registry fields.
type UpdateCustomerInput = CreateCustomerInput

// ListCustomersRequest filters the registry listing.
type ListCustomersRequest struct {
	Status ledger.CustomerStatus
	Role   string
	Limit  int
	Offset int
}

// PartyPosition is one party's balance snapshot for a single category,
// alongside the full breakdown.
type PartyPosition struct {
	Customer  ledger.Customer
	Category  ledger.Category
	Net       float64
	Breakdown ledger.CategoryBreakdown
}

// Service handles party registry business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// RegisterCustomer creates a party. A party without any role flag still
// participates in GENERAL postings.
func (s *Service) RegisterCustomer(ctx context.Context, input CreateCustomerInput) (*ledger.Customer, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: customer name required", httpx.ErrValidation)
	}
	if input.IsRoyalty && input.RoyaltyAmount <= 0 {
		return nil, fmt.Errorf("%w: royalty amount must be positive for royalty customers", httpx.ErrValidation)
	}
	if input.IsInterest && input.InterestPrincipal <= 0 {
		return nil, fmt.Errorf("%w: interest principal must be positive for interest customers", httpx.ErrValidation)
	}
	return s.repo.CreateCustomer(ctx, input)
}

// UpdateCustomer mutates registry fields.
func (s *Service) UpdateCustomer(ctx context.Context, id int64, input UpdateCustomerInput) error {
	if input.Name == "" {
		return fmt.Errorf("%w: customer name required", httpx.ErrValidation)
	}
	return s.repo.UpdateCustomer(ctx, id, input)
}

// DeactivateCustomer flips the party to INACTIVE. Preferred over removal so
// the ledger history stays attributable.
func (s *Service) DeactivateCustomer(ctx context.Context, id int64) error {
	return s.repo.SetCustomerStatus(ctx, id, ledger.CustomerInactive)
}

// ActivateCustomer flips the party back to ACTIVE.
func (s *Service) ActivateCustomer(ctx context.Context, id int64) error {
	return s.repo.SetCustomerStatus(ctx, id, ledger.CustomerActive)
}

// DeleteCustomer hard-deletes a party with no ledger footprint.
func (s *Service) DeleteCustomer(ctx context.Context, id int64) error {
	invoices, err := s.repo.ListPartyInvoices(ctx, id)
	if err != nil {
		return err
	}
	payments, err := s.repo.ListPartyPayments(ctx, id)
	if err != nil {
		return err
	}
	if len(invoices) > 0 || len(payments) > 0 {
		return fmt.Errorf("%w: customer has ledger history, deactivate instead", httpx.ErrConflict)
	}
	return s.repo.DeleteCustomer(ctx, id)
}

// GetCustomer returns one party.
func (s *Service) GetCustomer(ctx context.Context, id int64) (*ledger.Customer, error) {
	return s.repo.GetCustomer(ctx, id)
}

// ListCustomers returns registry entries.
func (s *Service) ListCustomers(ctx context.Context, req ListCustomersRequest) ([]ledger.Customer, error) {
	return s.repo.ListCustomers(ctx, req)
}

// CategoryBalance computes the net outstanding for one party and category
// over a fresh snapshot of its invoices and payments.
func (s *Service) CategoryBalance(ctx context.Context, id int64, category ledger.Category, signed bool) (float64, error) {
	cust, invoices, payments, err := s.snapshot(ctx, id)
	if err != nil {
		return 0, err
	}
	return ledger.Balance(*cust, invoices, payments, category, signed), nil
}

// Position returns the party's signed net for a category plus the full
// category breakdown. Every screen that needs a breakdown goes through here.
func (s *Service) Position(ctx context.Context, id int64, category ledger.Category) (*PartyPosition, error) {
	cust, invoices, payments, err := s.snapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	return &PartyPosition{
		Customer:  *cust,
		Category:  category,
		Net:       ledger.Balance(*cust, invoices, payments, category, true),
		Breakdown: ledger.Breakdown(*cust, invoices, payments),
	}, nil
}

func (s *Service) snapshot(ctx context.Context, id int64) (*ledger.Customer, []ledger.Invoice, []ledger.Payment, error) {
	cust, err := s.repo.GetCustomer(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}
	if cust == nil {
		return nil, nil, nil, fmt.Errorf("%w: customer %d", httpx.ErrNotFound, id)
	}
	invoices, err := s.repo.ListPartyInvoices(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}
	payments, err := s.repo.ListPartyPayments(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}
	return cust, invoices, payments, nil
}
