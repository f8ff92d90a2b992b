package invoices

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arthabooks/arthabooks/internal/ledger"
)

// Repository provides PostgreSQL backed persistence for invoices.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const invoiceColumns = `id, customer_id, type, direction, amount, balance, status, date,
	COALESCE(related_auction_id, ''), is_void, created_at, updated_at`

// CreateInvoice inserts a bill. Balance starts equal to amount, status UNPAID.
func (r *Repository) CreateInvoice(ctx context.Context, input CreateInvoiceInput) (*ledger.Invoice, error) {
	query := `
		INSERT INTO invoices (
			customer_id, type, direction, amount, balance, status, date,
			related_auction_id, is_void, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $4, 'UNPAID', $5, $6, FALSE, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	var auctionID pgtype.Text
	if input.RelatedAuctionID != "" {
		auctionID = pgtype.Text{String: input.RelatedAuctionID, Valid: true}
	}

	inv := ledger.Invoice{
		CustomerID:       input.CustomerID,
		Type:             input.Type,
		Direction:        input.Direction,
		Amount:           input.Amount,
		Balance:          input.Amount,
		Status:           ledger.StatusUnpaid,
		Date:             input.Date,
		RelatedAuctionID: input.RelatedAuctionID,
	}
	err := r.pool.QueryRow(ctx, query,
		input.CustomerID, string(input.Type), string(input.Direction),
		input.Amount, input.Date, auctionID,
	).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// GetInvoice retrieves an invoice by ID. Returns nil when absent.
func (r *Repository) GetInvoice(ctx context.Context, id int64) (*ledger.Invoice, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id)
	inv, err := scanInvoice(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// ListInvoices returns invoices with optional filtering, oldest first.
func (r *Repository) ListInvoices(ctx context.Context, req ListInvoicesRequest) ([]ledger.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE 1=1`
	args := []any{}
	argNum := 1

	if req.CustomerID > 0 {
		query += fmt.Sprintf(" AND customer_id = $%d", argNum)
		args = append(args, req.CustomerID)
		argNum++
	}
	if req.Type != "" {
		query += fmt.Sprintf(" AND type = $%d", argNum)
		args = append(args, string(req.Type))
		argNum++
	}
	if req.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, string(req.Status))
		argNum++
	}
	if req.OpenOnly {
		query += " AND NOT is_void AND balance > 0"
	}
	query += " ORDER BY date, id"
	if req.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, req.Limit)
		argNum++
	}
	if req.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, req.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *inv)
	}
	return out, rows.Err()
}

// VoidInvoice flags a bill void.
func (r *Repository) VoidInvoice(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE invoices SET is_void = TRUE, updated_at = NOW() WHERE id = $1 AND NOT is_void`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.New("invoice not found or already void")
	}
	return nil
}

// ListBillableCustomers returns parties carrying the given role flag.
func (r *Repository) ListBillableCustomers(ctx context.Context, role string) ([]ledger.Customer, error) {
	flag := map[string]string{
		"royalty":  "is_royalty",
		"interest": "is_interest",
		"chit":     "is_chit",
	}[role]
	if flag == "" {
		return nil, fmt.Errorf("unknown billing role %q", role)
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, phone, status,
			is_royalty, is_interest, is_chit, is_general, is_lender,
			royalty_amount, interest_principal, interest_rate, credit_principal,
			opening_balance, created_at, updated_at
		FROM customers WHERE `+flag+` ORDER BY id`)
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

// CountInvoicesInPeriod counts non-void bills of one type inside [from, to).
func (r *Repository) CountInvoicesInPeriod(ctx context.Context, customerID int64, invType ledger.InvoiceType, from, to time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM invoices
		WHERE customer_id = $1 AND type = $2 AND NOT is_void AND date >= $3 AND date < $4`,
		customerID, string(invType), from, to,
	).Scan(&count)
	return count, err
}

func scanInvoice(row pgx.Row) (*ledger.Invoice, error) {
	var inv ledger.Invoice
	err := row.Scan(
		&inv.ID, &inv.CustomerID, &inv.Type, &inv.Direction, &inv.Amount, &inv.Balance,
		&inv.Status, &inv.Date, &inv.RelatedAuctionID, &inv.IsVoid, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
