package vouchers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arthabooks/arthabooks/internal/investments"
	"github.com/arthabooks/arthabooks/internal/ledger"
)

// Repository provides PostgreSQL backed persistence for vouchers.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// txRepo implements TxPort over one open pgx transaction.
type txRepo struct {
	tx pgx.Tx
}

// WithTx runs fn inside a transaction. Rollback on error, commit otherwise.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxPort) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, &txRepo{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

const paymentColumns = `id, number, direction, voucher_type, category, amount,
	COALESCE(source_id, 0), COALESCE(source_name, ''), mode, COALESCE(target_mode, ''),
	COALESCE(investment_id, 0), date, COALESCE(note, ''), created_at`

// GetPayment retrieves a payment by ID. Returns nil when absent.
func (r *Repository) GetPayment(ctx context.Context, id int64) (*ledger.Payment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
	p, err := scanPayment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListPayments returns the filtered voucher register, newest first.
func (r *Repository) ListPayments(ctx context.Context, req ListPaymentsRequest) ([]ledger.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE 1=1`
	args := []any{}
	n := 0

	if req.SourceID != 0 {
		n++
		query += fmt.Sprintf(" AND source_id = $%d", n)
		args = append(args, req.SourceID)
	}
	if req.Category != "" {
		n++
		query += fmt.Sprintf(" AND category = $%d", n)
		args = append(args, string(req.Category))
	}
	if !req.From.IsZero() {
		n++
		query += fmt.Sprintf(" AND date >= $%d", n)
		args = append(args, req.From)
	}
	if !req.To.IsZero() {
		n++
		query += fmt.Sprintf(" AND date < $%d", n)
		args = append(args, req.To)
	}
	perPage := req.PerPage
	if perPage <= 0 {
		perPage = 50
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}
	query += fmt.Sprintf(" ORDER BY date DESC, id DESC LIMIT $%d OFFSET $%d", n+1, n+2)
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// CountPayments returns the register size under the same filters.
func (r *Repository) CountPayments(ctx context.Context, req ListPaymentsRequest) (int, error) {
	query := `SELECT COUNT(*) FROM payments WHERE 1=1`
	args := []any{}
	n := 0

	if req.SourceID != 0 {
		n++
		query += fmt.Sprintf(" AND source_id = $%d", n)
		args = append(args, req.SourceID)
	}
	if req.Category != "" {
		n++
		query += fmt.Sprintf(" AND category = $%d", n)
		args = append(args, string(req.Category))
	}
	if !req.From.IsZero() {
		n++
		query += fmt.Sprintf(" AND date >= $%d", n)
		args = append(args, req.From)
	}
	if !req.To.IsZero() {
		n++
		query += fmt.Sprintf(" AND date < $%d", n)
		args = append(args, req.To)
	}

	var count int
	err := r.pool.QueryRow(ctx, query, args...).Scan(&count)
	return count, err
}

// ListAllocationLines returns a payment's recorded allocations in insertion
// order.
func (r *Repository) ListAllocationLines(ctx context.Context, paymentID int64) ([]ledger.AllocationLine, error) {
	return listAllocationLines(ctx, r.pool, paymentID)
}

// CreatePayment inserts a payment and assigns its voucher number from the
// generated ID.
func (t *txRepo) CreatePayment(ctx context.Context, p *ledger.Payment) error {
	err := t.tx.QueryRow(ctx, `
		INSERT INTO payments (
			number, direction, voucher_type, category, amount,
			source_id, mode, target_mode, investment_id, date, note, created_at
		) VALUES ('', $1, $2, $3, $4, NULLIF($5, 0), $6, NULLIF($7, ''), NULLIF($8, 0), $9, $10, NOW())
		RETURNING id, created_at`,
		string(p.Direction), string(p.VoucherType), string(p.Category), p.Amount,
		p.SourceID, p.Mode, p.TargetMode, p.InvestmentID, p.Date, p.Note,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return err
	}
	p.Number = voucherNumber(p.VoucherType, p.ID)
	_, err = t.tx.Exec(ctx, `UPDATE payments SET number = $2 WHERE id = $1`, p.ID, p.Number)
	return err
}

func voucherNumber(t ledger.VoucherType, id int64) string {
	prefix := "VCH"
	switch t {
	case ledger.VoucherReceipt:
		prefix = "RCT"
	case ledger.VoucherPayment:
		prefix = "PAY"
	case ledger.VoucherContra:
		prefix = "CON"
	}
	return fmt.Sprintf("%s-%06d", prefix, id)
}

// UpdatePayment rewrites a payment row in place, keeping ID and number.
func (t *txRepo) UpdatePayment(ctx context.Context, p ledger.Payment) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE payments SET
			direction = $2, voucher_type = $3, category = $4, amount = $5,
			source_id = NULLIF($6, 0), mode = $7, target_mode = NULLIF($8, ''),
			investment_id = NULLIF($9, 0), date = $10, note = $11
		WHERE id = $1`,
		p.ID, string(p.Direction), string(p.VoucherType), string(p.Category), p.Amount,
		p.SourceID, p.Mode, p.TargetMode, p.InvestmentID, p.Date, p.Note,
	)
	return err
}

// DeletePayment removes a payment row.
func (t *txRepo) DeletePayment(ctx context.Context, id int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM payments WHERE id = $1`, id)
	return err
}

// ListPartyInvoices loads the party's full invoice set for the allocator.
func (t *txRepo) ListPartyInvoices(ctx context.Context, partyID int64) ([]ledger.Invoice, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT id, customer_id, type, direction, amount, balance, status, date,
			COALESCE(related_auction_id, ''), is_void, created_at, updated_at
		FROM invoices WHERE customer_id = $1
		ORDER BY date, id
		FOR UPDATE`, partyID)
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

// UpdateInvoiceBalance persists one allocated or restored invoice.
func (t *txRepo) UpdateInvoiceBalance(ctx context.Context, id int64, balance float64, status ledger.InvoiceStatus) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE invoices SET balance = $2, status = $3, updated_at = NOW() WHERE id = $1`,
		id, balance, string(status))
	return err
}

// CreateAllocationLines records the allocation audit rows for a payment.
func (t *txRepo) CreateAllocationLines(ctx context.Context, lines []ledger.AllocationLine) error {
	for _, line := range lines {
		_, err := t.tx.Exec(ctx, `
			INSERT INTO allocation_lines (payment_id, invoice_id, amount, created_at)
			VALUES ($1, $2, $3, NOW())`,
			line.PaymentID, line.InvoiceID, line.Amount)
		if err != nil {
			return err
		}
	}
	return nil
}

// ListAllocationLines returns a payment's recorded allocations.
func (t *txRepo) ListAllocationLines(ctx context.Context, paymentID int64) ([]ledger.AllocationLine, error) {
	return listAllocationLines(ctx, t.tx, paymentID)
}

// DeleteAllocationLines removes a payment's allocation audit rows.
func (t *txRepo) DeleteAllocationLines(ctx context.Context, paymentID int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM allocation_lines WHERE payment_id = $1`, paymentID)
	return err
}

// AdjustCustomerPrincipal moves a borrower's tracked principal, floored at
// zero.
func (t *txRepo) AdjustCustomerPrincipal(ctx context.Context, customerID int64, delta float64) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE customers
		SET interest_principal = GREATEST(0, interest_principal + $2), updated_at = NOW()
		WHERE id = $1`, customerID, delta)
	return err
}

// AdjustLiabilityPrincipal moves a lender's outstanding principal, floored
// at zero.
func (t *txRepo) AdjustLiabilityPrincipal(ctx context.Context, lenderID int64, delta float64) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE liabilities
		SET principal = GREATEST(0, principal + $2), updated_at = NOW()
		WHERE lender_id = $1`, lenderID, delta)
	return err
}

// GetInvestmentMode reads the savings mode of an investment.
func (t *txRepo) GetInvestmentMode(ctx context.Context, investmentID int64) (investments.SavingsMode, error) {
	var mode investments.SavingsMode
	err := t.tx.QueryRow(ctx, `
		SELECT mode FROM investments WHERE id = $1`, investmentID).Scan(&mode)
	return mode, err
}

// CountInvestmentTxns counts the ledger rows already on an investment.
func (t *txRepo) CountInvestmentTxns(ctx context.Context, investmentID int64) (int, error) {
	var count int
	err := t.tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM investment_transactions WHERE investment_id = $1`,
		investmentID).Scan(&count)
	return count, err
}

// CreateInvestmentTxn appends one contribution row to an investment ledger.
func (t *txRepo) CreateInvestmentTxn(ctx context.Context, txn investments.LedgerTransaction) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO investment_transactions (investment_id, payment_id, month, amount_paid, date)
		VALUES ($1, NULLIF($2, 0), $3, $4, $5)`,
		txn.InvestmentID, txn.PaymentID, txn.Month, txn.AmountPaid, txn.Date)
	return err
}

// DeleteInvestmentTxnsByPayment removes the ledger rows a payment created.
func (t *txRepo) DeleteInvestmentTxnsByPayment(ctx context.Context, paymentID int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM investment_transactions WHERE payment_id = $1`, paymentID)
	return err
}

// AdjustAmountInvested moves a lump-sum investment's balance, floored at
// zero.
func (t *txRepo) AdjustAmountInvested(ctx context.Context, investmentID int64, delta float64) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE investments
		SET amount_invested = GREATEST(0, amount_invested + $2), updated_at = NOW()
		WHERE id = $1`, investmentID, delta)
	return err
}

// SetChitPrize flips the prize state on a chit-type investment.
func (t *txRepo) SetChitPrize(ctx context.Context, investmentID int64, prized bool, amount float64, month int) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE investments
		SET chit_is_prized = $2, chit_prize_amount = $3, chit_prize_month = $4, updated_at = NOW()
		WHERE id = $1`, investmentID, prized, amount, month)
	return err
}

// AdjustWalletBalance moves a wallet account's opening balance by delta.
func (t *txRepo) AdjustWalletBalance(ctx context.Context, code string, delta float64) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE wallet_accounts
		SET opening_balance = opening_balance + $2, updated_at = NOW()
		WHERE code = $1`, code, delta)
	return err
}

type rowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func listAllocationLines(ctx context.Context, q rowQuerier, paymentID int64) ([]ledger.AllocationLine, error) {
	rows, err := q.Query(ctx, `
		SELECT id, payment_id, invoice_id, amount, created_at
		FROM allocation_lines WHERE payment_id = $1 ORDER BY id`, paymentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.AllocationLine
	for rows.Next() {
		var line ledger.AllocationLine
		if err := rows.Scan(&line.ID, &line.PaymentID, &line.InvoiceID, &line.Amount, &line.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, line)
	}
	return out, rows.Err()
}

func scanPayment(row pgx.Row) (*ledger.Payment, error) {
	var p ledger.Payment
	err := row.Scan(
		&p.ID, &p.Number, &p.Direction, &p.VoucherType, &p.Category, &p.Amount,
		&p.SourceID, &p.SourceName, &p.Mode, &p.TargetMode,
		&p.InvestmentID, &p.Date, &p.Note, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
