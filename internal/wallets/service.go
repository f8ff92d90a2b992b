package wallets

import (
	"context"
	"fmt"

	"github.com/arthabooks/arthabooks/internal/ledger"
	"github.com/arthabooks/arthabooks/internal/platform/httpx"
)

// RepositoryPort defines data access methods for wallet accounts.
type RepositoryPort interface {
	CreateAccount(ctx context.Context, input CreateAccountInput) (*Account, error)
	GetAccount(ctx context.Context, id int64) (*Account, error)
	GetAccountByCode(ctx context.Context, code string) (*Account, error)
	ListAccounts(ctx context.Context) ([]Account, error)
	DeleteAccount(ctx context.Context, id int64) error
	AdjustOpeningBalance(ctx context.Context, code string, delta float64) error
	ListModePayments(ctx context.Context, code string) ([]ledger.Payment, error)
}

// CreateAccountInput for opening a wallet account.
type CreateAccountInput struct {
	Code           string
	Name           string
	OpeningBalance float64
	IsCash         bool
}

// Service handles wallet account business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// CreateAccount opens a wallet account. Codes are unique.
func (s *Service) CreateAccount(ctx context.Context, input CreateAccountInput) (*Account, error) {
	if input.Code == "" {
		return nil, fmt.Errorf("%w: account code required", httpx.ErrValidation)
	}
	if input.Name == "" {
		return nil, fmt.Errorf("%w: account name required", httpx.ErrValidation)
	}
	return s.repo.CreateAccount(ctx, input)
}

// GetAccount returns one account by ID.
func (s *Service) GetAccount(ctx context.Context, id int64) (*Account, error) {
	acc, err := s.repo.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, fmt.Errorf("%w: account %d", httpx.ErrNotFound, id)
	}
	return acc, nil
}

// ListAccounts returns every wallet account.
func (s *Service) ListAccounts(ctx context.Context) ([]Account, error) {
	return s.repo.ListAccounts(ctx)
}

// DeleteAccount removes an account that has no payment traffic.
func (s *Service) DeleteAccount(ctx context.Context, id int64) error {
	acc, err := s.GetAccount(ctx, id)
	if err != nil {
		return err
	}
	payments, err := s.repo.ListModePayments(ctx, acc.Code)
	if err != nil {
		return err
	}
	if len(payments) > 0 {
		return fmt.Errorf("%w: account has posted payments", httpx.ErrConflict)
	}
	return s.repo.DeleteAccount(ctx, id)
}

// Transfer moves funds between two accounts by adjusting their opening
// balances. Contra vouchers call this when posted; the payment row itself
// is excluded from derived balances so the move is not double counted.
func (s *Service) Transfer(ctx context.Context, fromCode, toCode string, amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: transfer amount must be positive", httpx.ErrValidation)
	}
	if fromCode == toCode {
		return fmt.Errorf("%w: transfer requires two distinct accounts", httpx.ErrValidation)
	}
	from, err := s.repo.GetAccountByCode(ctx, fromCode)
	if err != nil {
		return err
	}
	if from == nil {
		return fmt.Errorf("%w: account %q", httpx.ErrNotFound, fromCode)
	}
	to, err := s.repo.GetAccountByCode(ctx, toCode)
	if err != nil {
		return err
	}
	if to == nil {
		return fmt.Errorf("%w: account %q", httpx.ErrNotFound, toCode)
	}
	if err := s.repo.AdjustOpeningBalance(ctx, fromCode, -amount); err != nil {
		return err
	}
	return s.repo.AdjustOpeningBalance(ctx, toCode, amount)
}

// ReverseTransfer undoes a previously applied transfer.
func (s *Service) ReverseTransfer(ctx context.Context, fromCode, toCode string, amount float64) error {
	return s.Transfer(ctx, toCode, fromCode, amount)
}

// DerivedBalance computes the closing balance of an account: opening balance
// plus inbound payments minus outbound payments routed through the account's
// code. Transfer payments are skipped because Transfer already moved the
// opening balances.
func (s *Service) DerivedBalance(ctx context.Context, code string) (float64, error) {
	acc, err := s.repo.GetAccountByCode(ctx, code)
	if err != nil {
		return 0, err
	}
	if acc == nil {
		return 0, fmt.Errorf("%w: account %q", httpx.ErrNotFound, code)
	}
	payments, err := s.repo.ListModePayments(ctx, code)
	if err != nil {
		return 0, err
	}
	return DeriveBalance(*acc, payments), nil
}

// Balances returns derived balances for every account.
func (s *Service) Balances(ctx context.Context) ([]AccountBalance, error) {
	accounts, err := s.repo.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]AccountBalance, 0, len(accounts))
	for _, acc := range accounts {
		payments, err := s.repo.ListModePayments(ctx, acc.Code)
		if err != nil {
			return nil, err
		}
		out = append(out, AccountBalance{Account: acc, Balance: DeriveBalance(acc, payments)})
	}
	return out, nil
}

// DeriveBalance folds non-transfer payment traffic onto the opening balance.
func DeriveBalance(acc Account, payments []ledger.Payment) float64 {
	total := acc.OpeningBalance
	for _, p := range payments {
		if p.Category == ledger.CategoryTransfer {
			continue
		}
		if p.Mode != acc.Code {
			continue
		}
		switch p.Direction {
		case ledger.DirectionIn:
			total += p.Amount
		case ledger.DirectionOut:
			total -= p.Amount
		}
	}
	return ledger.Round2(total)
}
