package chit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/arthabooks/arthabooks/internal/ledger"
	"github.com/arthabooks/arthabooks/internal/platform/httpx"
)

// TxPort is the transactional slice of the repository. An auction and the
// invoices it raises commit or roll back together.
type TxPort interface {
	CreateAuction(ctx context.Context, a *Auction) error
	DeleteAuction(ctx context.Context, id int64) error
	SetGroupStatus(ctx context.Context, groupID int64, status GroupStatus) error

	CreateInvoice(ctx context.Context, inv *ledger.Invoice) error
	ListInvoicesByAuction(ctx context.Context, auctionID string) ([]ledger.Invoice, error)
	DeleteInvoicesByAuction(ctx context.Context, auctionID string) error
}

// RepositoryPort defines data access methods for chit groups.
type RepositoryPort interface {
	CreateGroup(ctx context.Context, input CreateGroupInput) (*Group, error)
	GetGroup(ctx context.Context, id int64) (*Group, error)
	ListGroups(ctx context.Context) ([]Group, error)
	AddMember(ctx context.Context, m *Member) error
	WithTx(ctx context.Context, fn func(context.Context, TxPort) error) error
}

// CreateGroupInput for opening a chit group.
type CreateGroupInput struct {
	Name           string
	TotalValue     float64
	DurationMonths int
	CommissionPct  float64
	StartDate      time.Time
}

// RecordAuctionInput for settling one month's auction.
type RecordAuctionInput struct {
	GroupID        int64
	Month          int
	WinnerMemberID int64
	BidAmount      float64
	Date           time.Time
}

// Service runs chit group and auction business logic.
type Service struct {
	logger *slog.Logger
	repo   RepositoryPort
}

// NewService builds Service instance.
func NewService(logger *slog.Logger, repo RepositoryPort) *Service {
	return &Service{logger: logger, repo: repo}
}

// CreateGroup opens a chit group.
func (s *Service) CreateGroup(ctx context.Context, input CreateGroupInput) (*Group, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: group name required", httpx.ErrValidation)
	}
	if input.TotalValue <= 0 {
		return nil, fmt.Errorf("%w: total value must be positive", httpx.ErrValidation)
	}
	if input.DurationMonths <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", httpx.ErrValidation)
	}
	if input.CommissionPct < 0 || input.CommissionPct > 100 {
		return nil, fmt.Errorf("%w: commission must be between 0 and 100", httpx.ErrValidation)
	}
	return s.repo.CreateGroup(ctx, input)
}

// GetGroup returns a group with members and auction history.
func (s *Service) GetGroup(ctx context.Context, id int64) (*Group, error) {
	g, err := s.repo.GetGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, fmt.Errorf("%w: chit group %d", httpx.ErrNotFound, id)
	}
	return g, nil
}

// ListGroups returns all chit groups.
func (s *Service) ListGroups(ctx context.Context) ([]Group, error) {
	return s.repo.ListGroups(ctx)
}

// AddMember enrols a customer into a group. Total seats may not exceed the
// group duration: every seat must be able to win exactly once.
func (s *Service) AddMember(ctx context.Context, groupID, customerID int64, seats int) (*Member, error) {
	if seats <= 0 {
		return nil, fmt.Errorf("%w: seats must be positive", httpx.ErrValidation)
	}
	g, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if len(g.Auctions) > 0 {
		return nil, fmt.Errorf("%w: group already has auctions", httpx.ErrConflict)
	}
	taken := 0
	for _, m := range g.Members {
		if m.CustomerID == customerID {
			return nil, fmt.Errorf("%w: customer %d already enrolled", httpx.ErrDuplicate, customerID)
		}
		taken += m.Seats
	}
	if taken+seats > g.DurationMonths {
		return nil, fmt.Errorf("%w: group has %d seats left", httpx.ErrConflict, g.DurationMonths-taken)
	}
	m := &Member{GroupID: groupID, CustomerID: customerID, Seats: seats}
	if err := s.repo.AddMember(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordAuction settles one month: it validates the sequence, computes the
// split, raises a CHIT invoice per member and the winner's payout invoice,
// and appends the auction, all in one transaction.
func (s *Service) RecordAuction(ctx context.Context, input RecordAuctionInput) (*Auction, error) {
	g, err := s.GetGroup(ctx, input.GroupID)
	if err != nil {
		return nil, err
	}
	if g.Status == GroupCompleted {
		return nil, fmt.Errorf("%w: group %s is completed", httpx.ErrConflict, g.Name)
	}
	if input.Month != len(g.Auctions)+1 {
		return nil, fmt.Errorf("%w: expected auction for month %d, got %d",
			httpx.ErrConflict, len(g.Auctions)+1, input.Month)
	}

	var winner *Member
	for i := range g.Members {
		if g.Members[i].ID == input.WinnerMemberID {
			winner = &g.Members[i]
			break
		}
	}
	if winner == nil {
		return nil, fmt.Errorf("%w: member %d not in group", httpx.ErrValidation, input.WinnerMemberID)
	}
	wins := 0
	for _, a := range g.Auctions {
		if a.WinnerMemberID == winner.ID {
			wins++
		}
	}
	if wins >= winner.Seats {
		return nil, fmt.Errorf("%w: member %d has no unprized seats", httpx.ErrConflict, winner.ID)
	}

	st, err := ComputeSettlement(g.TotalValue, g.CommissionPct, input.BidAmount, g.DurationMonths)
	if err != nil {
		return nil, err
	}
	if input.Date.IsZero() {
		input.Date = time.Now()
	}

	auction := &Auction{
		GroupID:           g.ID,
		AuctionID:         uuid.NewString(),
		Month:             input.Month,
		WinnerMemberID:    winner.ID,
		BidAmount:         ledger.Round2(input.BidAmount),
		Commission:        st.Commission,
		DividendPerMember: st.DividendPerMember,
		MemberPayable:     st.MemberPayable,
		WinnerPayable:     st.WinnerPayable,
		Date:              input.Date,
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxPort) error {
		if err := tx.CreateAuction(ctx, auction); err != nil {
			return err
		}
		for _, m := range g.Members {
			inv := &ledger.Invoice{
				CustomerID:       m.CustomerID,
				Type:             ledger.InvoiceChit,
				Direction:        ledger.DirectionIn,
				Amount:           ledger.Round2(st.MemberPayable * float64(m.Seats)),
				Balance:          ledger.Round2(st.MemberPayable * float64(m.Seats)),
				Status:           ledger.StatusUnpaid,
				Date:             input.Date,
				RelatedAuctionID: auction.AuctionID,
			}
			if err := tx.CreateInvoice(ctx, inv); err != nil {
				return err
			}
		}
		payout := &ledger.Invoice{
			CustomerID:       winner.CustomerID,
			Type:             ledger.InvoiceChit,
			Direction:        ledger.DirectionOut,
			Amount:           st.WinnerPayable,
			Balance:          st.WinnerPayable,
			Status:           ledger.StatusUnpaid,
			Date:             input.Date,
			RelatedAuctionID: auction.AuctionID,
		}
		if err := tx.CreateInvoice(ctx, payout); err != nil {
			return err
		}
		if input.Month == g.DurationMonths {
			return tx.SetGroupStatus(ctx, g.ID, GroupCompleted)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("auction recorded",
		slog.String("group", g.Name),
		slog.Int("month", auction.Month),
		slog.Float64("bid", auction.BidAmount),
		slog.Float64("winnerPayable", auction.WinnerPayable),
	)
	return auction, nil
}

// DeleteAuction undoes the latest auction of a group. Earlier months are
// immutable once a later auction exists, and the round's invoices must still
// be untouched by payments.
func (s *Service) DeleteAuction(ctx context.Context, groupID, auctionID int64) error {
	g, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if len(g.Auctions) == 0 {
		return fmt.Errorf("%w: group has no auctions", httpx.ErrNotFound)
	}
	latest := g.Auctions[len(g.Auctions)-1]
	if latest.ID != auctionID {
		return fmt.Errorf("%w: only the latest auction (month %d) can be deleted",
			httpx.ErrConflict, latest.Month)
	}

	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxPort) error {
		invoices, err := tx.ListInvoicesByAuction(ctx, latest.AuctionID)
		if err != nil {
			return err
		}
		for _, inv := range invoices {
			if inv.Balance < inv.Amount {
				return fmt.Errorf("%w: invoice %d already has payments", httpx.ErrConflict, inv.ID)
			}
		}
		if err := tx.DeleteInvoicesByAuction(ctx, latest.AuctionID); err != nil {
			return err
		}
		if err := tx.DeleteAuction(ctx, latest.ID); err != nil {
			return err
		}
		if g.Status == GroupCompleted {
			return tx.SetGroupStatus(ctx, g.ID, GroupActive)
		}
		return nil
	})
}
