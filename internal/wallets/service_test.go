package wallets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arthabooks/arthabooks/internal/ledger"
)

type memoryRepo struct {
	accounts map[string]*Account
	payments []ledger.Payment
	nextID   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{accounts: make(map[string]*Account)}
}

func (r *memoryRepo) CreateAccount(ctx context.Context, input CreateAccountInput) (*Account, error) {
	r.nextID++
	acc := &Account{
		ID:             r.nextID,
		Code:           input.Code,
		Name:           input.Name,
		OpeningBalance: input.OpeningBalance,
		IsCash:         input.IsCash,
	}
	r.accounts[acc.Code] = acc
	return acc, nil
}

func (r *memoryRepo) GetAccount(ctx context.Context, id int64) (*Account, error) {
	for _, acc := range r.accounts {
		if acc.ID == id {
			return acc, nil
		}
	}
	return nil, nil
}

func (r *memoryRepo) GetAccountByCode(ctx context.Context, code string) (*Account, error) {
	return r.accounts[code], nil
}

func (r *memoryRepo) ListAccounts(ctx context.Context) ([]Account, error) {
	var out []Account
	for _, acc := range r.accounts {
		out = append(out, *acc)
	}
	return out, nil
}

func (r *memoryRepo) DeleteAccount(ctx context.Context, id int64) error {
	for code, acc := range r.accounts {
		if acc.ID == id {
			delete(r.accounts, code)
		}
	}
	return nil
}

func (r *memoryRepo) AdjustOpeningBalance(ctx context.Context, code string, delta float64) error {
	acc, ok := r.accounts[code]
	if !ok {
		return nil
	}
	acc.OpeningBalance += delta
	return nil
}

func (r *memoryRepo) ListModePayments(ctx context.Context, code string) ([]ledger.Payment, error) {
	var out []ledger.Payment
	for _, p := range r.payments {
		if p.Mode == code || p.TargetMode == code {
			out = append(out, p)
		}
	}
	return out, nil
}

func TestTransferMovesOpeningBalances(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.CreateAccount(ctx, CreateAccountInput{Code: "CASH", Name: "Cash drawer", OpeningBalance: 10000, IsCash: true})
	require.NoError(t, err)
	_, err = svc.CreateAccount(ctx, CreateAccountInput{Code: "HDFC", Name: "HDFC current", OpeningBalance: 50000})
	require.NoError(t, err)

	require.NoError(t, svc.Transfer(ctx, "CASH", "HDFC", 4000))
	require.Equal(t, 6000.0, repo.accounts["CASH"].OpeningBalance)
	require.Equal(t, 54000.0, repo.accounts["HDFC"].OpeningBalance)

	require.NoError(t, svc.ReverseTransfer(ctx, "CASH", "HDFC", 4000))
	require.Equal(t, 10000.0, repo.accounts["CASH"].OpeningBalance)
	require.Equal(t, 50000.0, repo.accounts["HDFC"].OpeningBalance)
}

func TestTransferValidation(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.CreateAccount(ctx, CreateAccountInput{Code: "CASH", Name: "Cash"})
	require.NoError(t, err)

	require.Error(t, svc.Transfer(ctx, "CASH", "CASH", 100))
	require.Error(t, svc.Transfer(ctx, "CASH", "HDFC", 0))
	require.Error(t, svc.Transfer(ctx, "CASH", "HDFC", 100)) // target missing
}

func TestDerivedBalanceSkipsTransfers(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.CreateAccount(ctx, CreateAccountInput{Code: "CASH", Name: "Cash", OpeningBalance: 1000, IsCash: true})
	require.NoError(t, err)

	repo.payments = []ledger.Payment{
		{ID: 1, Direction: ledger.DirectionIn, Category: ledger.CategoryRoyalty, Amount: 500, Mode: "CASH"},
		{ID: 2, Direction: ledger.DirectionOut, Category: ledger.CategoryExpense, Amount: 200, Mode: "CASH"},
		// Contra already moved opening balances, so it must not count again.
		{ID: 3, Direction: ledger.DirectionOut, Category: ledger.CategoryTransfer, Amount: 300, Mode: "CASH", TargetMode: "HDFC"},
		{ID: 4, Direction: ledger.DirectionIn, Category: ledger.CategoryInterest, Amount: 100, Mode: "HDFC"},
	}

	bal, err := svc.DerivedBalance(ctx, "CASH")
	require.NoError(t, err)
	require.Equal(t, 1300.0, bal)
}

func TestDeleteAccountWithTrafficRefused(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	acc, err := svc.CreateAccount(ctx, CreateAccountInput{Code: "CASH", Name: "Cash"})
	require.NoError(t, err)

	repo.payments = []ledger.Payment{{ID: 1, Direction: ledger.DirectionIn, Amount: 10, Mode: "CASH"}}
	require.Error(t, svc.DeleteAccount(ctx, acc.ID))

	repo.payments = nil
	require.NoError(t, svc.DeleteAccount(ctx, acc.ID))
}
