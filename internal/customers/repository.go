package customers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arthabooks/arthabooks/internal/ledger"
)

// Repository provides PostgreSQL backed persistence for the party registry.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const customerColumns = `id, name, phone, status,
	is_royalty, is_interest, is_chit, is_general, is_lender,
	royalty_amount, interest_principal, interest_rate, credit_principal,
	opening_balance, created_at, updated_at`

// CreateCustomer inserts a new party.
func (r *Repository) CreateCustomer(ctx context.Context, input CreateCustomerInput) (*ledger.Customer, error) {
	query := `
		INSERT INTO customers (
			name, phone, status,
			is_royalty, is_interest, is_chit, is_general, is_lender,
			royalty_amount, interest_principal, interest_rate, credit_principal,
			opening_balance, created_at, updated_at
		) VALUES ($1, $2, 'ACTIVE', $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	cust := ledger.Customer{
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
	}
	err := r.pool.QueryRow(ctx, query,
		input.Name, input.Phone,
		input.IsRoyalty, input.IsInterest, input.IsChit, input.IsGeneral, input.IsLender,
		input.RoyaltyAmount, input.InterestPrincipal, input.InterestRate, input.CreditPrincipal,
		input.OpeningBalance,
	).Scan(&cust.ID, &cust.CreatedAt, &cust.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &cust, nil
}

// GetCustomer retrieves a party by ID. Returns nil when absent.
func (r *Repository) GetCustomer(ctx context.Context, id int64) (*ledger.Customer, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
	cust, err := scanCustomer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return cust, nil
}

// UpdateCustomer rewrites the mutable registry fields.
func (r *Repository) UpdateCustomer(ctx context.Context, id int64, input UpdateCustomerInput) error {
	query := `
		UPDATE customers SET
			name = $2, phone = $3,
			is_royalty = $4, is_interest = $5, is_chit = $6, is_general = $7, is_lender = $8,
			royalty_amount = $9, interest_principal = $10, interest_rate = $11, credit_principal = $12,
			opening_balance = $13, updated_at = NOW()
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id,
		input.Name, input.Phone,
		input.IsRoyalty, input.IsInterest, input.IsChit, input.IsGeneral, input.IsLender,
		input.RoyaltyAmount, input.InterestPrincipal, input.InterestRate, input.CreditPrincipal,
		input.OpeningBalance,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.New("customer not found")
	}
	return nil
}

// SetCustomerStatus flips the party lifecycle state.
func (r *Repository) SetCustomerStatus(ctx context.Context, id int64, status ledger.CustomerStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE customers SET status = $2, updated_at = NOW() WHERE id = $1`, id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.New("customer not found")
	}
	return nil
}

// DeleteCustomer removes a party row.
func (r *Repository) DeleteCustomer(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	return err
}

// ListCustomers returns registry entries with optional filtering.
func (r *Repository) ListCustomers(ctx context.Context, req ListCustomersRequest) ([]ledger.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE 1=1`
	args := []any{}
	argNum := 1

	if req.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, string(req.Status))
		argNum++
	}
	switch req.Role {
	case "royalty":
		query += " AND is_royalty"
	case "interest":
		query += " AND is_interest"
	case "chit":
		query += " AND is_chit"
	case "general":
		query += " AND is_general"
	case "lender":
		query += " AND is_lender"
	}
	query += " ORDER BY name"
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

	var out []ledger.Customer
	for rows.Next() {
		cust, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *cust)
	}
	return out, rows.Err()
}

// ListPartyInvoices returns every non-deleted invoice for a party, including
// void rows so callers can display history; balance math skips them.
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

// ListPartyPayments returns every voucher sourced from a party.
func (r *Repository) ListPartyPayments(ctx context.Context, partyID int64) ([]ledger.Payment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, number, direction, voucher_type, category, amount,
			source_id, source_name, COALESCE(investment_id, 0),
			mode, COALESCE(target_mode, ''), date, COALESCE(note, ''), created_at
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
			&p.SourceID, &p.SourceName, &p.InvestmentID,
			&p.Mode, &p.TargetMode, &p.Date, &p.Note, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanCustomer(row pgx.Row) (*ledger.Customer, error) {
	var cust ledger.Customer
	err := row.Scan(
		&cust.ID, &cust.Name, &cust.Phone, &cust.Status,
		&cust.IsRoyalty, &cust.IsInterest, &cust.IsChit, &cust.IsGeneral, &cust.IsLender,
		&cust.RoyaltyAmount, &cust.InterestPrincipal, &cust.InterestRate, &cust.CreditPrincipal,
		&cust.OpeningBalance, &cust.CreatedAt, &cust.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &cust, nil
}
