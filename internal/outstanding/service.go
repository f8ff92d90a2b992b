package outstanding

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/arthabooks/arthabooks/internal/ledger"
	"github.com/arthabooks/arthabooks/internal/platform/httpx"
)

// DueDate is the promised payment date for one party under one category.
type DueDate struct {
	ID         int64           `json:"id"`
	CustomerID int64           `json:"customer_id"`
	Category   ledger.Category `json:"category"`
	Due        time.Time       `json:"due"`
}

// Entry is one outstanding line in the report.
type Entry struct {
	CustomerID    int64            `json:"customer_id"`
	CustomerName  string           `json:"customer_name"`
	Category      ledger.Category  `json:"category"`
	Amount        float64          `json:"amount"`
	AmountDisplay string           `json:"amount_display"`
	DueDate       *time.Time       `json:"due_date,omitempty"`
	DueStatus     ledger.DueStatus `json:"due_status"`
}

// Report is the aggregated outstanding view across all active parties.
type Report struct {
	GeneratedAt  time.Time        `json:"generated_at"`
	Category     ledger.Category  `json:"category"`
	Total        float64          `json:"total"`
	TotalDisplay string           `json:"total_display"`
	Overdue      int              `json:"overdue"`
	DueToday     int              `json:"due_today"`
	Entries      []Entry          `json:"entries"`
}

// RepositoryPort defines data access methods for the outstanding report.
type RepositoryPort interface {
	ListActiveCustomers(ctx context.Context) ([]ledger.Customer, error)
	ListPartyInvoices(ctx context.Context, partyID int64) ([]ledger.Invoice, error)
	ListPartyPayments(ctx context.Context, partyID int64) ([]ledger.Payment, error)

	UpsertDueDate(ctx context.Context, d *DueDate) error
	DeleteDueDate(ctx context.Context, customerID int64, category ledger.Category) error
	ListDueDates(ctx context.Context) ([]DueDate, error)
}

// Service builds the outstanding report.
type Service struct {
	logger  *slog.Logger
	repo    RepositoryPort
	cache   *Cache
	printer *message.Printer
	now     func() time.Time
}

// NewService builds Service instance. A nil cache disables caching.
func NewService(logger *slog.Logger, repo RepositoryPort, cache *Cache) *Service {
	return &Service{
		logger:  logger,
		repo:    repo,
		cache:   cache,
		printer: message.NewPrinter(language.MustParse("en-IN")),
		now:     time.Now,
	}
}

// reportCategories are the axes the default report walks. GENERAL spans a
// party's billed lines plus opening balance, so a party can appear both on
// a line category and on GENERAL.
var reportCategories = []ledger.Category{
	ledger.CategoryRoyalty,
	ledger.CategoryInterest,
	ledger.CategoryChit,
	ledger.CategoryGeneral,
}

// Report aggregates every active party's signed category balances, classified
// by due date. Negative lines are payables owed to the party, a prized chit
// member's unpaid payout for instance. Reads are idempotent: the ledger is
// never touched, so repeated calls against unchanged data return identical
// reports and the result is safe to cache.
func (s *Service) Report(ctx context.Context, category ledger.Category) (*Report, error) {
	if category != "" && len(ledger.InvoiceTypesFor(category)) == 0 {
		return nil, fmt.Errorf("%w: category %q has no outstanding view", httpx.ErrValidation, category)
	}

	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, category); ok {
			return cached, nil
		}
	}

	customers, err := s.repo.ListActiveCustomers(ctx)
	if err != nil {
		return nil, err
	}
	dueDates, err := s.repo.ListDueDates(ctx)
	if err != nil {
		return nil, err
	}
	dueByKey := make(map[string]time.Time, len(dueDates))
	for _, d := range dueDates {
		dueByKey[dueKey(d.CustomerID, d.Category)] = d.Due
	}

	categories := reportCategories
	if category != "" {
		categories = []ledger.Category{category}
	}

	today := s.now()
	perParty := make([][]Entry, len(customers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, c := range customers {
		g.Go(func() error {
			invoices, err := s.repo.ListPartyInvoices(gctx, c.ID)
			if err != nil {
				return err
			}
			payments, err := s.repo.ListPartyPayments(gctx, c.ID)
			if err != nil {
				return err
			}
			var entries []Entry
			for _, cat := range categories {
				amount := ledger.Balance(c, invoices, payments, cat, true)
				if amount == 0 {
					continue
				}
				entry := Entry{
					CustomerID:    c.ID,
					CustomerName:  c.Name,
					Category:      cat,
					Amount:        amount,
					AmountDisplay: s.FormatAmount(amount),
				}
				if due, ok := dueByKey[dueKey(c.ID, cat)]; ok {
					d := due
					entry.DueDate = &d
				}
				entry.DueStatus = ledger.ClassifyDue(entry.DueDate, today)
				entries = append(entries, entry)
			}
			perParty[i] = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{GeneratedAt: today, Category: category}
	for _, entries := range perParty {
		for _, e := range entries {
			report.Total = ledger.Round2(report.Total + e.Amount)
			switch e.DueStatus {
			case ledger.DueOverdue:
				report.Overdue++
			case ledger.DueToday:
				report.DueToday++
			}
			report.Entries = append(report.Entries, e)
		}
	}
	sort.SliceStable(report.Entries, func(i, j int) bool {
		if report.Entries[i].Amount == report.Entries[j].Amount {
			return report.Entries[i].CustomerID < report.Entries[j].CustomerID
		}
		return report.Entries[i].Amount > report.Entries[j].Amount
	})
	report.TotalDisplay = s.FormatAmount(report.Total)

	if s.cache != nil {
		s.cache.Set(ctx, category, report)
	}
	return report, nil
}

// SetDueDate records or moves a party's promised payment date.
func (s *Service) SetDueDate(ctx context.Context, customerID int64, category ledger.Category, due time.Time) (*DueDate, error) {
	if customerID == 0 {
		return nil, fmt.Errorf("%w: customer required", httpx.ErrValidation)
	}
	if len(ledger.InvoiceTypesFor(category)) == 0 {
		return nil, fmt.Errorf("%w: category %q takes no due date", httpx.ErrValidation, category)
	}
	if due.IsZero() {
		return nil, fmt.Errorf("%w: due date required", httpx.ErrValidation)
	}
	d := &DueDate{CustomerID: customerID, Category: category, Due: due}
	if err := s.repo.UpsertDueDate(ctx, d); err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	return d, nil
}

// ClearDueDate removes a party's due date for one category.
func (s *Service) ClearDueDate(ctx context.Context, customerID int64, category ledger.Category) error {
	if err := s.repo.DeleteDueDate(ctx, customerID, category); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	return nil
}

// FormatAmount renders a rupee amount with Indian digit grouping, lakhs and
// crores rather than thousands and millions.
func (s *Service) FormatAmount(v float64) string {
	return s.printer.Sprintf("₹%.2f", v)
}

func dueKey(customerID int64, category ledger.Category) string {
	return fmt.Sprintf("%d:%s", customerID, category)
}
