package outstanding

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arthabooks/arthabooks/internal/ledger"
)

// Repository provides PostgreSQL backed persistence for the outstanding
// report.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListActiveCustomers returns every active ledger party.
func (r *Repository) ListActiveCustomers(ctx context.Context) ([]ledger.Customer, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, COALESCE(phone, ''), status,
			is_royalty, is_interest, is_chit, is_general, is_lender,
			royalty_amount, interest_principal, interest_rate, credit_principal,
			opening_balance, created_at, updated_at
		FROM customers WHERE status = 'ACTIVE' ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.Customer
	for rows.Next() {
		var c ledger.Customer
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Phone, &c.Status,
			&c.IsRoyalty, &c.IsInterest, &c.IsChit, &c.IsGeneral, &c.IsLender,
			&c.RoyaltyAmount, &c.InterestPrincipal, &c.InterestRate, &c.CreditPrincipal,
			&c.OpeningBalance, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListPartyInvoices returns a party's full invoice history.
func (r *Repository) ListPartyInvoices(ctx context.Context, partyID int64) ([]ledger.Invoice, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, customer_id, type, direction, amount, balance, status, date,
			COALESCE(related_auction_id, ''), is_void, created_at, updated_at
		FROM invoices WHERE customer_id = $1 ORDER BY date, id`, partyID)
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

// ListPartyPayments returns a party's full voucher history.
func (r *Repository) ListPartyPayments(ctx context.Context, partyID int64) ([]ledger.Payment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, number, direction, voucher_type, category, amount,
			COALESCE(source_id, 0), COALESCE(source_name, ''), mode, COALESCE(target_mode, ''),
			COALESCE(investment_id, 0), date, COALESCE(note, ''), created_at
		FROM payments WHERE source_id = $1 ORDER BY date, id`, partyID)
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
			&p.InvestmentID, &p.Date, &p.Note, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpsertDueDate writes the promised date for one (party, category) pair.
func (r *Repository) UpsertDueDate(ctx context.Context, d *DueDate) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO due_dates (customer_id, category, due)
		VALUES ($1, $2, $3)
		ON CONFLICT (customer_id, category) DO UPDATE SET due = EXCLUDED.due
		RETURNING id`,
		d.CustomerID, string(d.Category), d.Due,
	).Scan(&d.ID)
}

// DeleteDueDate removes a party's due date for one category.
func (r *Repository) DeleteDueDate(ctx context.Context, customerID int64, category ledger.Category) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM due_dates WHERE customer_id = $1 AND category = $2`,
		customerID, string(category))
	return err
}

// ListDueDates returns all recorded due dates.
func (r *Repository) ListDueDates(ctx context.Context) ([]DueDate, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, customer_id, category, due FROM due_dates ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DueDate
	for rows.Next() {
		var d DueDate
		if err := rows.Scan(&d.ID, &d.CustomerID, &d.Category, &d.Due); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
