package investments

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arthabooks/arthabooks/internal/ledger"
)

// Repository provides PostgreSQL backed persistence for investments.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateInvestment inserts an investment.
func (r *Repository) CreateInvestment(ctx context.Context, input CreateInvestmentInput) (*Investment, error) {
	query := `
		INSERT INTO investments (
			name, institution, type, mode, monthly_installment, duration_months,
			amount_invested, interest_rate, start_date,
			chit_is_prized, chit_prize_amount, chit_prize_month,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE, 0, 0, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	inv := Investment{
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
	err := r.pool.QueryRow(ctx, query,
		input.Name, input.Institution, string(input.Type), string(input.Mode),
		input.MonthlyInstallment, input.DurationMonths,
		input.AmountInvested, input.InterestRate, input.StartDate,
	).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// GetInvestment retrieves an investment with its transaction ledger. Returns
// nil when absent.
func (r *Repository) GetInvestment(ctx context.Context, id int64) (*Investment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, COALESCE(institution, ''), type, mode,
			monthly_installment, duration_months, amount_invested, interest_rate,
			start_date, chit_is_prized, chit_prize_amount, chit_prize_month,
			created_at, updated_at
		FROM investments WHERE id = $1`, id)
	inv, err := scanInvestment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	txns, err := r.listTransactions(ctx, id)
	if err != nil {
		return nil, err
	}
	inv.Transactions = txns
	return inv, nil
}

// ListInvestments returns all investments with their ledgers.
func (r *Repository) ListInvestments(ctx context.Context) ([]Investment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, COALESCE(institution, ''), type, mode,
			monthly_installment, duration_months, amount_invested, interest_rate,
			start_date, chit_is_prized, chit_prize_amount, chit_prize_month,
			created_at, updated_at
		FROM investments ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Investment
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		txns, err := r.listTransactions(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Transactions = txns
	}
	return out, nil
}

// DeleteInvestment removes an investment row.
func (r *Repository) DeleteInvestment(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM investments WHERE id = $1`, id)
	return err
}

// CreateLiability inserts a liability.
func (r *Repository) CreateLiability(ctx context.Context, input CreateLiabilityInput) (*Liability, error) {
	query := `
		INSERT INTO liabilities (lender_id, name, principal, interest_rate, start_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	l := Liability{
		LenderID:     input.LenderID,
		Name:         input.Name,
		Principal:    input.Principal,
		InterestRate: input.InterestRate,
		StartDate:    input.StartDate,
	}
	err := r.pool.QueryRow(ctx, query,
		input.LenderID, input.Name, input.Principal, input.InterestRate, input.StartDate,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// GetLiability retrieves a liability by ID. Returns nil when absent.
func (r *Repository) GetLiability(ctx context.Context, id int64) (*Liability, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, lender_id, name, principal, interest_rate, start_date, created_at, updated_at
		FROM liabilities WHERE id = $1`, id)
	l, err := scanLiability(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// ListLiabilities returns all liabilities.
func (r *Repository) ListLiabilities(ctx context.Context) ([]Liability, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lender_id, name, principal, interest_rate, start_date, created_at, updated_at
		FROM liabilities ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Liability
	for rows.Next() {
		l, err := scanLiability(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

// ListLenderInvoices returns invoices addressed to a lender party.
func (r *Repository) ListLenderInvoices(ctx context.Context, lenderID int64) ([]ledger.Invoice, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, customer_id, type, direction, amount, balance, status, date,
			COALESCE(related_auction_id, ''), is_void, created_at, updated_at
		FROM invoices WHERE customer_id = $1 ORDER BY date, id`, lenderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.Invoice
	for rows.Next() {
		var inv ledger.Invoice
		if err := rows.Scan(
			&inv.ID, &inv.CustomerID, &inv.Type, &inv.Direction, &inv.Amount, &inv.Balance,
			&inv.Status, &inv.Date, &inv.RelatedAuctionID, &inv.IsVoid, &inv.CreatedAt, &inv.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *Repository) listTransactions(ctx context.Context, investmentID int64) ([]LedgerTransaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, investment_id, COALESCE(payment_id, 0), month, amount_paid, date
		FROM investment_transactions WHERE investment_id = $1 ORDER BY month, id`, investmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LedgerTransaction
	for rows.Next() {
		var txn LedgerTransaction
		if err := rows.Scan(&txn.ID, &txn.InvestmentID, &txn.PaymentID, &txn.Month, &txn.AmountPaid, &txn.Date); err != nil {
			return nil, err
		}
		out = append(out, txn)
	}
	return out, rows.Err()
}

func scanInvestment(row pgx.Row) (*Investment, error) {
	var inv Investment
	var prized pgtype.Bool
	var prizeAmount pgtype.Float8
	var prizeMonth pgtype.Int4
	err := row.Scan(
		&inv.ID, &inv.Name, &inv.Institution, &inv.Type, &inv.Mode,
		&inv.MonthlyInstallment, &inv.DurationMonths, &inv.AmountInvested, &inv.InterestRate,
		&inv.StartDate, &prized, &prizeAmount, &prizeMonth,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if inv.Type == TypeChit {
		inv.ChitConfig = &ChitConfig{
			IsPrized:    prized.Bool,
			PrizeAmount: prizeAmount.Float64,
			PrizeMonth:  int(prizeMonth.Int32),
		}
	}
	return &inv, nil
}

func scanLiability(row pgx.Row) (*Liability, error) {
	var l Liability
	err := row.Scan(&l.ID, &l.LenderID, &l.Name, &l.Principal, &l.InterestRate, &l.StartDate, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
