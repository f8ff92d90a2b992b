package chit

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arthabooks/arthabooks/internal/ledger"
	"github.com/arthabooks/arthabooks/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence for chit groups.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateGroup inserts a chit group.
func (r *Repository) CreateGroup(ctx context.Context, input CreateGroupInput) (*Group, error) {
	g := Group{
		Name:           input.Name,
		TotalValue:     input.TotalValue,
		DurationMonths: input.DurationMonths,
		CommissionPct:  input.CommissionPct,
		StartDate:      input.StartDate,
		Status:         GroupActive,
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO chit_groups (name, total_value, duration_months, commission_pct, start_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 'ACTIVE', NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		input.Name, input.TotalValue, input.DurationMonths, input.CommissionPct, input.StartDate,
	).Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// GetGroup retrieves a group with members and auctions. Returns nil when
// absent.
func (r *Repository) GetGroup(ctx context.Context, id int64) (*Group, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, total_value, duration_months, commission_pct, start_date, status, created_at, updated_at
		FROM chit_groups WHERE id = $1`, id)
	var g Group
	err := row.Scan(&g.ID, &g.Name, &g.TotalValue, &g.DurationMonths, &g.CommissionPct,
		&g.StartDate, &g.Status, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if g.Members, err = r.listMembers(ctx, id); err != nil {
		return nil, err
	}
	if g.Auctions, err = r.listAuctions(ctx, id); err != nil {
		return nil, err
	}
	return &g, nil
}

// ListGroups returns all chit groups without their detail rows.
func (r *Repository) ListGroups(ctx context.Context) ([]Group, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, total_value, duration_months, commission_pct, start_date, status, created_at, updated_at
		FROM chit_groups ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Group
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.ID, &g.Name, &g.TotalValue, &g.DurationMonths, &g.CommissionPct,
			&g.StartDate, &g.Status, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// AddMember enrols a customer.
func (r *Repository) AddMember(ctx context.Context, m *Member) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO chit_members (group_id, customer_id, seats, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at`,
		m.GroupID, m.CustomerID, m.Seats,
	).Scan(&m.ID, &m.CreatedAt)
	if isUniqueViolation(err) {
		return httpx.ErrDuplicate
	}
	return err
}

// WithTx runs fn inside a transaction.
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

type txRepo struct {
	tx pgx.Tx
}

// CreateAuction inserts an auction row. The (group_id, month) unique index
// catches a concurrent double-post of the same month.
func (t *txRepo) CreateAuction(ctx context.Context, a *Auction) error {
	err := t.tx.QueryRow(ctx, `
		INSERT INTO chit_auctions (
			group_id, auction_id, month, winner_member_id, bid_amount,
			commission, dividend_per_member, member_payable, winner_payable, date, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		RETURNING id, created_at`,
		a.GroupID, a.AuctionID, a.Month, a.WinnerMemberID, a.BidAmount,
		a.Commission, a.DividendPerMember, a.MemberPayable, a.WinnerPayable, a.Date,
	).Scan(&a.ID, &a.CreatedAt)
	if isUniqueViolation(err) {
		return httpx.ErrDuplicate
	}
	return err
}

// DeleteAuction removes an auction row.
func (t *txRepo) DeleteAuction(ctx context.Context, id int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM chit_auctions WHERE id = $1`, id)
	return err
}

// SetGroupStatus flips a group between active and completed.
func (t *txRepo) SetGroupStatus(ctx context.Context, groupID int64, status GroupStatus) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE chit_groups SET status = $2, updated_at = NOW() WHERE id = $1`,
		groupID, string(status))
	return err
}

// CreateInvoice inserts one auction-raised invoice.
func (t *txRepo) CreateInvoice(ctx context.Context, inv *ledger.Invoice) error {
	return t.tx.QueryRow(ctx, `
		INSERT INTO invoices (customer_id, type, direction, amount, balance, status, date, related_auction_id, is_void, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE, NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		inv.CustomerID, string(inv.Type), string(inv.Direction), inv.Amount, inv.Balance,
		string(inv.Status), inv.Date, inv.RelatedAuctionID,
	).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
}

// ListInvoicesByAuction returns the invoices a round raised.
func (t *txRepo) ListInvoicesByAuction(ctx context.Context, auctionID string) ([]ledger.Invoice, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT id, customer_id, type, direction, amount, balance, status, date,
			COALESCE(related_auction_id, ''), is_void, created_at, updated_at
		FROM invoices WHERE related_auction_id = $1 ORDER BY id`, auctionID)
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

// DeleteInvoicesByAuction removes a round's invoices.
func (t *txRepo) DeleteInvoicesByAuction(ctx context.Context, auctionID string) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM invoices WHERE related_auction_id = $1`, auctionID)
	return err
}

func (r *Repository) listMembers(ctx context.Context, groupID int64) ([]Member, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, group_id, customer_id, seats, created_at
		FROM chit_members WHERE group_id = $1 ORDER BY id`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ID, &m.GroupID, &m.CustomerID, &m.Seats, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *Repository) listAuctions(ctx context.Context, groupID int64) ([]Auction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, group_id, auction_id, month, winner_member_id, bid_amount,
			commission, dividend_per_member, member_payable, winner_payable, date, created_at
		FROM chit_auctions WHERE group_id = $1 ORDER BY month`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Auction
	for rows.Next() {
		var a Auction
		if err := rows.Scan(&a.ID, &a.GroupID, &a.AuctionID, &a.Month, &a.WinnerMemberID, &a.BidAmount,
			&a.Commission, &a.DividendPerMember, &a.MemberPayable, &a.WinnerPayable, &a.Date, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
