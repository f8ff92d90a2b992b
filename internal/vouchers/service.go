package vouchers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/arthabooks/arthabooks/internal/investments"
	"github.com/arthabooks/arthabooks/internal/ledger"
	"github.com/arthabooks/arthabooks/internal/platform/httpx"
	"github.com/arthabooks/arthabooks/internal/shared"
)

// TxPort is the transactional slice of the repository. Every mutation a
// voucher makes, the payment row, invoice balances, allocation lines and
// category side effects, commits or rolls back as one unit.
type TxPort interface {
	CreatePayment(ctx context.Context, p *ledger.Payment) error
	UpdatePayment(ctx context.Context, p ledger.Payment) error
	DeletePayment(ctx context.Context, id int64) error

	ListPartyInvoices(ctx context.Context, partyID int64) ([]ledger.Invoice, error)
	UpdateInvoiceBalance(ctx context.Context, id int64, balance float64, status ledger.InvoiceStatus) error

	CreateAllocationLines(ctx context.Context, lines []ledger.AllocationLine) error
	ListAllocationLines(ctx context.Context, paymentID int64) ([]ledger.AllocationLine, error)
	DeleteAllocationLines(ctx context.Context, paymentID int64) error

	AdjustCustomerPrincipal(ctx context.Context, customerID int64, delta float64) error
	AdjustLiabilityPrincipal(ctx context.Context, lenderID int64, delta float64) error

	GetInvestmentMode(ctx context.Context, investmentID int64) (investments.SavingsMode, error)
	CountInvestmentTxns(ctx context.Context, investmentID int64) (int, error)
	CreateInvestmentTxn(ctx context.Context, txn investments.LedgerTransaction) error
	DeleteInvestmentTxnsByPayment(ctx context.Context, paymentID int64) error
	AdjustAmountInvested(ctx context.Context, investmentID int64, delta float64) error
	SetChitPrize(ctx context.Context, investmentID int64, prized bool, amount float64, month int) error

	AdjustWalletBalance(ctx context.Context, code string, delta float64) error
}

// RepositoryPort defines data access methods for vouchers.
type RepositoryPort interface {
	GetPayment(ctx context.Context, id int64) (*ledger.Payment, error)
	ListPayments(ctx context.Context, req ListPaymentsRequest) ([]ledger.Payment, error)
	CountPayments(ctx context.Context, req ListPaymentsRequest) (int, error)
	ListAllocationLines(ctx context.Context, paymentID int64) ([]ledger.AllocationLine, error)
	WithTx(ctx context.Context, fn func(context.Context, TxPort) error) error
}

// ListPaymentsRequest filters the voucher register.
type ListPaymentsRequest struct {
	SourceID int64
	Category ledger.Category
	From     time.Time
	To       time.Time
	Page     int
	PerPage  int
}

// PostVoucherInput describes a voucher to post.
type PostVoucherInput struct {
	VoucherType  ledger.VoucherType
	Category     ledger.Category
	Amount       float64
	SourceID     int64
	Mode         string
	TargetMode   string
	InvestmentID int64
	Date         time.Time
	Note         string
}

// VoucherResult is what a posting produced: the payment row plus the invoice
// allocations it caused.
type VoucherResult struct {
	Payment   ledger.Payment          `json:"payment"`
	Invoices  []ledger.Invoice        `json:"invoices,omitempty"`
	Lines     []ledger.AllocationLine `json:"lines,omitempty"`
	Remainder float64                 `json:"remainder"`
}

// Service posts, edits and deletes vouchers.
type Service struct {
	logger *slog.Logger
	repo   RepositoryPort
	locker *shared.PartyLocker
}

// NewService builds Service instance.
func NewService(logger *slog.Logger, repo RepositoryPort, locker *shared.PartyLocker) *Service {
	return &Service{logger: logger, repo: repo, locker: locker}
}

var partyCategories = map[ledger.Category]bool{
	ledger.CategoryRoyalty:           true,
	ledger.CategoryInterest:          true,
	ledger.CategoryChit:              true,
	ledger.CategoryChitFund:          true,
	ledger.CategoryGeneral:           true,
	ledger.CategoryPrincipalRecovery: true,
	ledger.CategoryLoanRepayment:     true,
	ledger.CategoryLoanInterest:      true,
}

var knownCategories = map[ledger.Category]bool{
	ledger.CategoryRoyalty:           true,
	ledger.CategoryInterest:          true,
	ledger.CategoryChit:              true,
	ledger.CategoryChitFund:          true,
	ledger.CategoryGeneral:           true,
	ledger.CategoryPrincipalRecovery: true,
	ledger.CategoryLoanRepayment:     true,
	ledger.CategoryLoanInterest:      true,
	ledger.CategoryTransfer:          true,
	ledger.CategoryExpense:           true,
	ledger.CategoryOtherBusiness:     true,
	ledger.CategoryDirectIncome:      true,
	ledger.CategorySavings:           true,
	ledger.CategoryChitSavings:       true,
	ledger.CategoryOverall:           false, // read axis only, never posted
}

func (s *Service) validate(input PostVoucherInput) error {
	if input.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", httpx.ErrValidation)
	}
	if !knownCategories[input.Category] {
		return fmt.Errorf("%w: unknown category %q", httpx.ErrValidation, input.Category)
	}
	if input.Mode == "" {
		return fmt.Errorf("%w: payment mode required", httpx.ErrValidation)
	}
	switch input.VoucherType {
	case ledger.VoucherReceipt, ledger.VoucherPayment:
		if input.Category == ledger.CategoryTransfer {
			return fmt.Errorf("%w: transfers must be contra vouchers", httpx.ErrValidation)
		}
	case ledger.VoucherContra:
		if input.Category != ledger.CategoryTransfer {
			return fmt.Errorf("%w: contra vouchers carry category TRANSFER", httpx.ErrValidation)
		}
		if input.TargetMode == "" || input.TargetMode == input.Mode {
			return fmt.Errorf("%w: contra requires a distinct target mode", httpx.ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown voucher type %q", httpx.ErrValidation, input.VoucherType)
	}
	if partyCategories[input.Category] && input.SourceID == 0 {
		return fmt.Errorf("%w: category %s requires a party", httpx.ErrValidation, input.Category)
	}
	if (input.Category == ledger.CategorySavings || input.Category == ledger.CategoryChitSavings) && input.InvestmentID == 0 {
		return fmt.Errorf("%w: category %s requires an investment", httpx.ErrValidation, input.Category)
	}
	return nil
}

func directionFor(t ledger.VoucherType) ledger.Direction {
	if t == ledger.VoucherReceipt {
		return ledger.DirectionIn
	}
	return ledger.DirectionOut
}

// PostVoucher validates, serialises on the party, then applies the payment
// and all of its category side effects in one transaction.
func (s *Service) PostVoucher(ctx context.Context, input PostVoucherInput) (*VoucherResult, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}
	if input.Date.IsZero() {
		input.Date = time.Now()
	}

	if input.SourceID != 0 {
		release, err := s.locker.Acquire(ctx, input.SourceID)
		if err != nil {
			return nil, err
		}
		defer release(ctx)
	}

	payment := ledger.Payment{
		Direction:    directionFor(input.VoucherType),
		VoucherType:  input.VoucherType,
		Category:     input.Category,
		Amount:       ledger.Round2(input.Amount),
		SourceID:     input.SourceID,
		Mode:         input.Mode,
		TargetMode:   input.TargetMode,
		InvestmentID: input.InvestmentID,
		Date:         input.Date,
		Note:         input.Note,
	}

	var result VoucherResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxPort) error {
		if err := tx.CreatePayment(ctx, &payment); err != nil {
			return err
		}
		res, err := s.apply(ctx, tx, payment)
		if err != nil {
			return err
		}
		result = VoucherResult{
			Payment:   payment,
			Invoices:  res.Invoices,
			Lines:     res.Lines,
			Remainder: res.Remainder,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("voucher posted",
		slog.String("number", payment.Number),
		slog.String("category", string(payment.Category)),
		slog.Float64("amount", payment.Amount),
		slog.Int("allocations", len(result.Lines)),
		slog.Float64("remainder", result.Remainder),
	)
	return &result, nil
}

// apply runs the allocation walk and category side effects for a payment
// that already has an ID. Used by posting and by the re-apply half of edits.
func (s *Service) apply(ctx context.Context, tx TxPort, p ledger.Payment) (ledger.AllocationResult, error) {
	var res ledger.AllocationResult
	res.Remainder = p.Amount

	switch {
	case p.Direction == ledger.DirectionIn && ledger.Allocatable(p.Category):
		invoices, err := tx.ListPartyInvoices(ctx, p.SourceID)
		if err != nil {
			return res, err
		}
		res = ledger.Allocate(p, invoices)

	case p.Category == ledger.CategoryLoanInterest:
		invoices, err := tx.ListPartyInvoices(ctx, p.SourceID)
		if err != nil {
			return res, err
		}
		res = ledger.SettleOutgoing(p, invoices, []ledger.InvoiceType{ledger.InvoiceInterestOut})

	case p.Direction == ledger.DirectionOut && (p.Category == ledger.CategoryChit || p.Category == ledger.CategoryChitFund):
		// Paying out a prized chit member settles the auction's OUT invoice.
		invoices, err := tx.ListPartyInvoices(ctx, p.SourceID)
		if err != nil {
			return res, err
		}
		res = ledger.SettleOutgoing(p, invoices, []ledger.InvoiceType{ledger.InvoiceChit})
	}

	for _, inv := range res.Invoices {
		if err := tx.UpdateInvoiceBalance(ctx, inv.ID, inv.Balance, inv.Status); err != nil {
			return res, err
		}
	}
	if len(res.Lines) > 0 {
		if err := tx.CreateAllocationLines(ctx, res.Lines); err != nil {
			return res, err
		}
	}

	if err := s.applySideEffects(ctx, tx, p, false); err != nil {
		return res, err
	}
	return res, nil
}

// applySideEffects mutates the non-invoice state a category touches. With
// mirror set, every effect runs in the opposite direction.
func (s *Service) applySideEffects(ctx context.Context, tx TxPort, p ledger.Payment, mirror bool) error {
	sign := 1.0
	if mirror {
		sign = -1
	}

	switch p.Category {
	case ledger.CategoryPrincipalRecovery:
		return tx.AdjustCustomerPrincipal(ctx, p.SourceID, -sign*p.Amount)

	case ledger.CategoryLoanRepayment:
		return tx.AdjustLiabilityPrincipal(ctx, p.SourceID, -sign*p.Amount)

	case ledger.CategoryTransfer:
		if err := tx.AdjustWalletBalance(ctx, p.Mode, -sign*p.Amount); err != nil {
			return err
		}
		return tx.AdjustWalletBalance(ctx, p.TargetMode, sign*p.Amount)

	case ledger.CategorySavings, ledger.CategoryChitSavings:
		if p.Direction == ledger.DirectionOut {
			mode, err := tx.GetInvestmentMode(ctx, p.InvestmentID)
			if err != nil {
				return err
			}
			// Lump sums carry their balance on amount_invested; monthly
			// plans append to the transaction ledger instead.
			if mode == investments.ModeLumpSum {
				return tx.AdjustAmountInvested(ctx, p.InvestmentID, sign*p.Amount)
			}
			if mirror {
				return tx.DeleteInvestmentTxnsByPayment(ctx, p.ID)
			}
			count, err := tx.CountInvestmentTxns(ctx, p.InvestmentID)
			if err != nil {
				return err
			}
			return tx.CreateInvestmentTxn(ctx, investments.LedgerTransaction{
				InvestmentID: p.InvestmentID,
				PaymentID:    p.ID,
				Month:        count + 1,
				AmountPaid:   p.Amount,
				Date:         p.Date,
			})
		}
		if p.Category == ledger.CategoryChitSavings {
			// Inbound chit-savings receipt is the prize arriving.
			if mirror {
				return tx.SetChitPrize(ctx, p.InvestmentID, false, 0, 0)
			}
			count, err := tx.CountInvestmentTxns(ctx, p.InvestmentID)
			if err != nil {
				return err
			}
			return tx.SetChitPrize(ctx, p.InvestmentID, true, p.Amount, count+1)
		}
	}
	return nil
}

// GetVoucher returns one payment with its allocation lines.
func (s *Service) GetVoucher(ctx context.Context, id int64) (*VoucherResult, error) {
	p, err := s.repo.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: voucher %d", httpx.ErrNotFound, id)
	}
	lines, err := s.repo.ListAllocationLines(ctx, id)
	if err != nil {
		return nil, err
	}
	return &VoucherResult{Payment: *p, Lines: lines}, nil
}

// VoucherPage is one page of the voucher register.
type VoucherPage struct {
	Items      []ledger.Payment  `json:"items"`
	Pagination shared.Pagination `json:"pagination"`
}

// ListVouchers returns the payment register.
func (s *Service) ListVouchers(ctx context.Context, req ListPaymentsRequest) (*VoucherPage, error) {
	if req.PerPage <= 0 {
		req.PerPage = 50
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	items, err := s.repo.ListPayments(ctx, req)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.CountPayments(ctx, req)
	if err != nil {
		return nil, err
	}
	return &VoucherPage{
		Items:      items,
		Pagination: shared.NewPagination(req.Page, req.PerPage, total),
	}, nil
}

// DeleteVoucher reverses every effect of a posted payment and removes the
// row. The invoice unwind follows the recorded allocation lines; payments
// without lines fall back to date-LIFO. A mismatch aborts the whole delete.
func (s *Service) DeleteVoucher(ctx context.Context, id int64) error {
	p, err := s.repo.GetPayment(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("%w: voucher %d", httpx.ErrNotFound, id)
	}

	if p.SourceID != 0 {
		release, err := s.locker.Acquire(ctx, p.SourceID)
		if err != nil {
			return err
		}
		defer release(ctx)
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxPort) error {
		if _, err := s.unwind(ctx, tx, *p); err != nil {
			return err
		}
		if err := tx.DeleteAllocationLines(ctx, p.ID); err != nil {
			return err
		}
		return tx.DeletePayment(ctx, p.ID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("voucher deleted",
		slog.String("number", p.Number),
		slog.String("category", string(p.Category)),
		slog.Float64("amount", p.Amount),
	)
	return nil
}

// unwind restores invoice balances and mirrors side effects for a payment.
func (s *Service) unwind(ctx context.Context, tx TxPort, p ledger.Payment) ([]ledger.Invoice, error) {
	lines, err := tx.ListAllocationLines(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	invoices, err := tx.ListPartyInvoices(ctx, p.SourceID)
	if err != nil {
		return nil, err
	}
	restored, err := ledger.Reverse(p, invoices, lines)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrConflict, err)
	}
	for _, inv := range restored {
		if err := tx.UpdateInvoiceBalance(ctx, inv.ID, inv.Balance, inv.Status); err != nil {
			return nil, err
		}
	}
	if err := s.applySideEffects(ctx, tx, p, true); err != nil {
		return nil, err
	}
	return restored, nil
}

// UpdateVoucher edits a posted payment as reverse-then-reapply: the old
// effects are unwound and the new voucher is allocated fresh, all in one
// transaction. The payment keeps its ID and number.
func (s *Service) UpdateVoucher(ctx context.Context, id int64, input PostVoucherInput) (*VoucherResult, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}

	old, err := s.repo.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if old == nil {
		return nil, fmt.Errorf("%w: voucher %d", httpx.ErrNotFound, id)
	}
	if input.Date.IsZero() {
		input.Date = old.Date
	}

	for _, partyID := range lockOrder(old.SourceID, input.SourceID) {
		release, err := s.locker.Acquire(ctx, partyID)
		if err != nil {
			return nil, err
		}
		defer release(ctx)
	}

	updated := ledger.Payment{
		ID:           old.ID,
		Number:       old.Number,
		Direction:    directionFor(input.VoucherType),
		VoucherType:  input.VoucherType,
		Category:     input.Category,
		Amount:       ledger.Round2(input.Amount),
		SourceID:     input.SourceID,
		Mode:         input.Mode,
		TargetMode:   input.TargetMode,
		InvestmentID: input.InvestmentID,
		Date:         input.Date,
		Note:         input.Note,
		CreatedAt:    old.CreatedAt,
	}

	var result VoucherResult
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxPort) error {
		if _, err := s.unwind(ctx, tx, *old); err != nil {
			return err
		}
		if err := tx.DeleteAllocationLines(ctx, old.ID); err != nil {
			return err
		}
		if err := tx.UpdatePayment(ctx, updated); err != nil {
			return err
		}
		res, err := s.apply(ctx, tx, updated)
		if err != nil {
			return err
		}
		result = VoucherResult{
			Payment:   updated,
			Invoices:  res.Invoices,
			Lines:     res.Lines,
			Remainder: res.Remainder,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("voucher edited",
		slog.String("number", updated.Number),
		slog.String("category", string(updated.Category)),
		slog.Float64("amount", updated.Amount),
	)
	return &result, nil
}

// lockOrder returns the distinct non-zero party IDs in ascending order so
// two concurrent edits can never deadlock on each other's locks.
func lockOrder(a, b int64) []int64 {
	switch {
	case a == b:
		if a == 0 {
			return nil
		}
		return []int64{a}
	case a == 0:
		return []int64{b}
	case b == 0:
		return []int64{a}
	case a < b:
		return []int64{a, b}
	default:
		return []int64{b, a}
	}
}
