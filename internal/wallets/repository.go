package wallets

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arthabooks/arthabooks/internal/ledger"
	"github.com/arthabooks/arthabooks/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence for wallet accounts.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const accountColumns = `id, code, name, opening_balance, is_cash, created_at, updated_at`

// CreateAccount inserts a wallet account.
func (r *Repository) CreateAccount(ctx context.Context, input CreateAccountInput) (*Account, error) {
	acc := Account{
		Code:           input.Code,
		Name:           input.Name,
		OpeningBalance: input.OpeningBalance,
		IsCash:         input.IsCash,
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO wallet_accounts (code, name, opening_balance, is_cash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		input.Code, input.Name, input.OpeningBalance, input.IsCash,
	).Scan(&acc.ID, &acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, httpx.ErrDuplicate
		}
		return nil, err
	}
	return &acc, nil
}

// GetAccount retrieves an account by ID. Returns nil when absent.
func (r *Repository) GetAccount(ctx context.Context, id int64) (*Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM wallet_accounts WHERE id = $1`, id)
	return scanAccount(row)
}

// GetAccountByCode retrieves an account by its unique code. Returns nil when
// absent.
func (r *Repository) GetAccountByCode(ctx context.Context, code string) (*Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM wallet_accounts WHERE code = $1`, code)
	return scanAccount(row)
}

// ListAccounts returns all wallet accounts.
func (r *Repository) ListAccounts(ctx context.Context) ([]Account, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+accountColumns+` FROM wallet_accounts ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Account
	for rows.Next() {
		var acc Account
		if err := rows.Scan(&acc.ID, &acc.Code, &acc.Name, &acc.OpeningBalance, &acc.IsCash, &acc.CreatedAt, &acc.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, acc)
	}
	return out, rows.Err()
}

// DeleteAccount removes an account row.
func (r *Repository) DeleteAccount(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM wallet_accounts WHERE id = $1`, id)
	return err
}

// AdjustOpeningBalance moves an account's opening balance by delta.
func (r *Repository) AdjustOpeningBalance(ctx context.Context, code string, delta float64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE wallet_accounts
		SET opening_balance = opening_balance + $2, updated_at = NOW()
		WHERE code = $1`, code, delta)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// ListModePayments returns payments routed through an account code, either
// as the source mode or as a contra target.
func (r *Repository) ListModePayments(ctx context.Context, code string) ([]ledger.Payment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, number, direction, voucher_type, category, amount,
			source_id, COALESCE(source_name, ''), mode, COALESCE(target_mode, ''),
			date, COALESCE(note, ''), created_at
		FROM payments
		WHERE mode = $1 OR target_mode = $1
		ORDER BY date, id`, code)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.Payment
	for rows.Next() {
		var p ledger.Payment
		if err := rows.Scan(
			&p.ID, &p.Number, &p.Direction, &p.VoucherType, &p.Category, &p.Amount,
			&p.SourceID, &p.SourceName, &p.Mode, &p.TargetMode,
			&p.Date, &p.Note, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanAccount(row pgx.Row) (*Account, error) {
	var acc Account
	err := row.Scan(&acc.ID, &acc.Code, &acc.Name, &acc.OpeningBalance, &acc.IsCash, &acc.CreatedAt, &acc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &acc, nil
}
