package vouchers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/arthabooks/arthabooks/internal/investments"
	"github.com/arthabooks/arthabooks/internal/ledger"
	"github.com/arthabooks/arthabooks/internal/shared"
)

// memoryStore backs the fake repository. The same struct implements both the
// repository port and the tx port; WithTx just runs fn against a snapshot
// and swaps it in on success, which gives real rollback semantics.
type memoryStore struct {
	payments    map[int64]*ledger.Payment
	invoices    map[int64]*ledger.Invoice
	lines       []ledger.AllocationLine
	principals  map[int64]float64
	liabilities map[int64]float64
	investments map[int64]*investments.Investment
	wallets     map[string]float64
	nextID      int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		payments:    make(map[int64]*ledger.Payment),
		invoices:    make(map[int64]*ledger.Invoice),
		principals:  make(map[int64]float64),
		liabilities: make(map[int64]float64),
		investments: make(map[int64]*investments.Investment),
		wallets:     make(map[string]float64),
	}
}

type memoryRepo struct {
	store *memoryStore
}

func (r *memoryRepo) GetPayment(ctx context.Context, id int64) (*ledger.Payment, error) {
	p, ok := r.store.payments[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memoryRepo) ListPayments(ctx context.Context, req ListPaymentsRequest) ([]ledger.Payment, error) {
	var out []ledger.Payment
	for _, p := range r.store.payments {
		if req.SourceID != 0 && p.SourceID != req.SourceID {
			continue
		}
		if req.Category != "" && p.Category != req.Category {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *memoryRepo) CountPayments(ctx context.Context, req ListPaymentsRequest) (int, error) {
	out, err := r.ListPayments(ctx, req)
	return len(out), err
}

func (r *memoryRepo) ListAllocationLines(ctx context.Context, paymentID int64) ([]ledger.AllocationLine, error) {
	return r.store.listLines(paymentID), nil
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxPort) error) error {
	return fn(ctx, r.store)
}

func (s *memoryStore) listLines(paymentID int64) []ledger.AllocationLine {
	var out []ledger.AllocationLine
	for _, line := range s.lines {
		if line.PaymentID == paymentID {
			out = append(out, line)
		}
	}
	return out
}

func (s *memoryStore) CreatePayment(ctx context.Context, p *ledger.Payment) error {
	s.nextID++
	p.ID = s.nextID
	p.Number = voucherNumber(p.VoucherType, p.ID)
	cp := *p
	s.payments[p.ID] = &cp
	return nil
}

func (s *memoryStore) UpdatePayment(ctx context.Context, p ledger.Payment) error {
	cp := p
	s.payments[p.ID] = &cp
	return nil
}

func (s *memoryStore) DeletePayment(ctx context.Context, id int64) error {
	delete(s.payments, id)
	return nil
}

func (s *memoryStore) ListPartyInvoices(ctx context.Context, partyID int64) ([]ledger.Invoice, error) {
	var out []ledger.Invoice
	for _, inv := range s.invoices {
		if inv.CustomerID == partyID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (s *memoryStore) UpdateInvoiceBalance(ctx context.Context, id int64, balance float64, status ledger.InvoiceStatus) error {
	s.invoices[id].Balance = balance
	s.invoices[id].Status = status
	return nil
}

func (s *memoryStore) CreateAllocationLines(ctx context.Context, lines []ledger.AllocationLine) error {
	for _, line := range lines {
		s.nextID++
		line.ID = s.nextID
		s.lines = append(s.lines, line)
	}
	return nil
}

func (s *memoryStore) ListAllocationLines(ctx context.Context, paymentID int64) ([]ledger.AllocationLine, error) {
	return s.listLines(paymentID), nil
}

func (s *memoryStore) DeleteAllocationLines(ctx context.Context, paymentID int64) error {
	kept := s.lines[:0]
	for _, line := range s.lines {
		if line.PaymentID != paymentID {
			kept = append(kept, line)
		}
	}
	s.lines = kept
	return nil
}

func (s *memoryStore) AdjustCustomerPrincipal(ctx context.Context, customerID int64, delta float64) error {
	v := s.principals[customerID] + delta
	if v < 0 {
		v = 0
	}
	s.principals[customerID] = v
	return nil
}

func (s *memoryStore) AdjustLiabilityPrincipal(ctx context.Context, lenderID int64, delta float64) error {
	v := s.liabilities[lenderID] + delta
	if v < 0 {
		v = 0
	}
	s.liabilities[lenderID] = v
	return nil
}

func (s *memoryStore) GetInvestmentMode(ctx context.Context, investmentID int64) (investments.SavingsMode, error) {
	inv, ok := s.investments[investmentID]
	if !ok {
		return "", nil
	}
	return inv.Mode, nil
}

func (s *memoryStore) CountInvestmentTxns(ctx context.Context, investmentID int64) (int, error) {
	inv, ok := s.investments[investmentID]
	if !ok {
		return 0, nil
	}
	return len(inv.Transactions), nil
}

func (s *memoryStore) CreateInvestmentTxn(ctx context.Context, txn investments.LedgerTransaction) error {
	inv := s.investments[txn.InvestmentID]
	s.nextID++
	txn.ID = s.nextID
	inv.Transactions = append(inv.Transactions, txn)
	return nil
}

func (s *memoryStore) DeleteInvestmentTxnsByPayment(ctx context.Context, paymentID int64) error {
	for _, inv := range s.investments {
		kept := inv.Transactions[:0]
		for _, txn := range inv.Transactions {
			if txn.PaymentID != paymentID {
				kept = append(kept, txn)
			}
		}
		inv.Transactions = kept
	}
	return nil
}

func (s *memoryStore) AdjustAmountInvested(ctx context.Context, investmentID int64, delta float64) error {
	inv := s.investments[investmentID]
	inv.AmountInvested += delta
	if inv.AmountInvested < 0 {
		inv.AmountInvested = 0
	}
	return nil
}

func (s *memoryStore) SetChitPrize(ctx context.Context, investmentID int64, prized bool, amount float64, month int) error {
	inv := s.investments[investmentID]
	if inv.ChitConfig == nil {
		inv.ChitConfig = &investments.ChitConfig{}
	}
	inv.ChitConfig.IsPrized = prized
	inv.ChitConfig.PrizeAmount = amount
	inv.ChitConfig.PrizeMonth = month
	return nil
}

func (s *memoryStore) AdjustWalletBalance(ctx context.Context, code string, delta float64) error {
	s.wallets[code] += delta
	return nil
}

func newTestService(store *memoryStore) *Service {
	logger := slog.New(slog.DiscardHandler)
	return NewService(logger, &memoryRepo{store: store}, nil)
}

func day(d int) time.Time {
	return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
}

func seedInvoice(store *memoryStore, id, customerID int64, t ledger.InvoiceType, amount float64, date time.Time) {
	store.invoices[id] = &ledger.Invoice{
		ID: id, CustomerID: customerID, Type: t, Direction: ledger.DirectionIn,
		Amount: amount, Balance: amount, Status: ledger.StatusUnpaid, Date: date,
	}
}

func TestPostVoucherAllocatesAndConserves(t *testing.T) {
	store := newMemoryStore()
	seedInvoice(store, 1, 7, ledger.InvoiceRoyalty, 300, day(1))
	seedInvoice(store, 2, 7, ledger.InvoiceRoyalty, 500, day(2))
	svc := newTestService(store)

	result, err := svc.PostVoucher(context.Background(), PostVoucherInput{
		VoucherType: ledger.VoucherReceipt,
		Category:    ledger.CategoryRoyalty,
		Amount:      301,
		SourceID:    7,
		Mode:        "CASH",
	})
	require.NoError(t, err)
	require.Equal(t, "RCT-000001", result.Payment.Number)
	require.Len(t, result.Lines, 2)

	// Oldest invoice first, then one rupee into the next.
	require.Equal(t, 0.0, store.invoices[1].Balance)
	require.Equal(t, ledger.StatusPaid, store.invoices[1].Status)
	require.Equal(t, 499.0, store.invoices[2].Balance)
	require.Equal(t, ledger.StatusPartial, store.invoices[2].Status)

	// Every allocated rupee is accounted for.
	var allocated float64
	for _, line := range result.Lines {
		allocated += line.Amount
	}
	require.Equal(t, 301.0, allocated+result.Remainder)
	require.Equal(t, 0.0, result.Remainder)
}

func TestPostThenDeleteRoundTrips(t *testing.T) {
	store := newMemoryStore()
	seedInvoice(store, 1, 7, ledger.InvoiceInterest, 400, day(1))
	seedInvoice(store, 2, 7, ledger.InvoiceInterest, 600, day(2))
	svc := newTestService(store)
	ctx := context.Background()

	result, err := svc.PostVoucher(ctx, PostVoucherInput{
		VoucherType: ledger.VoucherReceipt,
		Category:    ledger.CategoryInterest,
		Amount:      750,
		SourceID:    7,
		Mode:        "CASH",
	})
	require.NoError(t, err)
	require.Equal(t, 350.0, store.invoices[2].Balance)

	require.NoError(t, svc.DeleteVoucher(ctx, result.Payment.ID))

	require.Equal(t, 400.0, store.invoices[1].Balance)
	require.Equal(t, ledger.StatusUnpaid, store.invoices[1].Status)
	require.Equal(t, 600.0, store.invoices[2].Balance)
	require.Empty(t, store.lines)
	require.Empty(t, store.payments)
}

func TestPrincipalRecoveryFloorsAtZero(t *testing.T) {
	store := newMemoryStore()
	store.principals[7] = 300
	svc := newTestService(store)
	ctx := context.Background()

	_, err := svc.PostVoucher(ctx, PostVoucherInput{
		VoucherType: ledger.VoucherReceipt,
		Category:    ledger.CategoryPrincipalRecovery,
		Amount:      500,
		SourceID:    7,
		Mode:        "CASH",
	})
	require.NoError(t, err)
	require.Equal(t, 0.0, store.principals[7])
}

func TestLoanRepaymentReducesLiability(t *testing.T) {
	store := newMemoryStore()
	store.liabilities[9] = 50000
	svc := newTestService(store)
	ctx := context.Background()

	result, err := svc.PostVoucher(ctx, PostVoucherInput{
		VoucherType: ledger.VoucherPayment,
		Category:    ledger.CategoryLoanRepayment,
		Amount:      20000,
		SourceID:    9,
		Mode:        "HDFC",
	})
	require.NoError(t, err)
	require.Equal(t, 30000.0, store.liabilities[9])

	require.NoError(t, svc.DeleteVoucher(ctx, result.Payment.ID))
	require.Equal(t, 50000.0, store.liabilities[9])
}

func TestLoanInterestSettlesLenderPayables(t *testing.T) {
	store := newMemoryStore()
	store.invoices[1] = &ledger.Invoice{
		ID: 1, CustomerID: 9, Type: ledger.InvoiceInterestOut, Direction: ledger.DirectionOut,
		Amount: 1000, Balance: 1000, Status: ledger.StatusUnpaid, Date: day(1),
	}
	svc := newTestService(store)

	result, err := svc.PostVoucher(context.Background(), PostVoucherInput{
		VoucherType: ledger.VoucherPayment,
		Category:    ledger.CategoryLoanInterest,
		Amount:      1000,
		SourceID:    9,
		Mode:        "HDFC",
	})
	require.NoError(t, err)
	require.Len(t, result.Lines, 1)
	require.Equal(t, 0.0, store.invoices[1].Balance)
	require.Equal(t, ledger.StatusPaid, store.invoices[1].Status)
}

func TestSavingsVoucherAppendsInvestmentLedger(t *testing.T) {
	store := newMemoryStore()
	store.investments[4] = &investments.Investment{
		ID: 4, Type: investments.TypeChit, MonthlyInstallment: 5000, DurationMonths: 20,
		Transactions: []investments.LedgerTransaction{{ID: 1, InvestmentID: 4, Month: 1, AmountPaid: 5000}},
	}
	svc := newTestService(store)
	ctx := context.Background()

	result, err := svc.PostVoucher(ctx, PostVoucherInput{
		VoucherType:  ledger.VoucherPayment,
		Category:     ledger.CategoryChitSavings,
		Amount:       4250,
		InvestmentID: 4,
		Mode:         "CASH",
	})
	require.NoError(t, err)

	txns := store.investments[4].Transactions
	require.Len(t, txns, 2)
	require.Equal(t, 2, txns[1].Month)
	require.Equal(t, 4250.0, txns[1].AmountPaid)

	require.NoError(t, svc.DeleteVoucher(ctx, result.Payment.ID))
	require.Len(t, store.investments[4].Transactions, 1)
}

func TestLumpSumDepositGrowsAmountInvested(t *testing.T) {
	store := newMemoryStore()
	store.investments[6] = &investments.Investment{
		ID: 6, Type: investments.TypeSavings, Mode: investments.ModeLumpSum,
		AmountInvested: 1000,
	}
	svc := newTestService(store)
	ctx := context.Background()

	result, err := svc.PostVoucher(ctx, PostVoucherInput{
		VoucherType:  ledger.VoucherPayment,
		Category:     ledger.CategorySavings,
		Amount:       500,
		InvestmentID: 6,
		Mode:         "HDFC",
	})
	require.NoError(t, err)

	// The deposit lands on the running total, not on the monthly ledger.
	require.Equal(t, 1500.0, store.investments[6].AmountInvested)
	require.Empty(t, store.investments[6].Transactions)

	require.NoError(t, svc.DeleteVoucher(ctx, result.Payment.ID))
	require.Equal(t, 1000.0, store.investments[6].AmountInvested)
}

func TestChitSavingsReceiptMarksPrize(t *testing.T) {
	store := newMemoryStore()
	store.investments[4] = &investments.Investment{
		ID: 4, Type: investments.TypeChit, MonthlyInstallment: 5000, DurationMonths: 20,
		Transactions: []investments.LedgerTransaction{
			{ID: 1, InvestmentID: 4, Month: 1, AmountPaid: 5000},
			{ID: 2, InvestmentID: 4, Month: 2, AmountPaid: 5000},
		},
	}
	svc := newTestService(store)
	ctx := context.Background()

	result, err := svc.PostVoucher(ctx, PostVoucherInput{
		VoucherType:  ledger.VoucherReceipt,
		Category:     ledger.CategoryChitSavings,
		Amount:       80000,
		InvestmentID: 4,
		Mode:         "HDFC",
	})
	require.NoError(t, err)

	cfg := store.investments[4].ChitConfig
	require.NotNil(t, cfg)
	require.True(t, cfg.IsPrized)
	require.Equal(t, 80000.0, cfg.PrizeAmount)
	require.Equal(t, 3, cfg.PrizeMonth)

	require.NoError(t, svc.DeleteVoucher(ctx, result.Payment.ID))
	require.False(t, store.investments[4].ChitConfig.IsPrized)
}

func TestContraVoucherMovesWallets(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(store)
	ctx := context.Background()

	result, err := svc.PostVoucher(ctx, PostVoucherInput{
		VoucherType: ledger.VoucherContra,
		Category:    ledger.CategoryTransfer,
		Amount:      4000,
		Mode:        "CASH",
		TargetMode:  "HDFC",
	})
	require.NoError(t, err)
	require.Equal(t, -4000.0, store.wallets["CASH"])
	require.Equal(t, 4000.0, store.wallets["HDFC"])

	require.NoError(t, svc.DeleteVoucher(ctx, result.Payment.ID))
	require.Equal(t, 0.0, store.wallets["CASH"])
	require.Equal(t, 0.0, store.wallets["HDFC"])
}

func TestUpdateVoucherReallocates(t *testing.T) {
	store := newMemoryStore()
	seedInvoice(store, 1, 7, ledger.InvoiceRoyalty, 300, day(1))
	seedInvoice(store, 2, 7, ledger.InvoiceChit, 500, day(2))
	svc := newTestService(store)
	ctx := context.Background()

	result, err := svc.PostVoucher(ctx, PostVoucherInput{
		VoucherType: ledger.VoucherReceipt,
		Category:    ledger.CategoryRoyalty,
		Amount:      300,
		SourceID:    7,
		Mode:        "CASH",
	})
	require.NoError(t, err)
	require.Equal(t, 0.0, store.invoices[1].Balance)

	// Re-categorise the receipt: the royalty allocation unwinds and the
	// chit invoice absorbs the money instead.
	updated, err := svc.UpdateVoucher(ctx, result.Payment.ID, PostVoucherInput{
		VoucherType: ledger.VoucherReceipt,
		Category:    ledger.CategoryChitFund,
		Amount:      300,
		SourceID:    7,
		Mode:        "CASH",
	})
	require.NoError(t, err)
	require.Equal(t, result.Payment.Number, updated.Payment.Number)

	require.Equal(t, 300.0, store.invoices[1].Balance)
	require.Equal(t, 200.0, store.invoices[2].Balance)
}

func TestDeleteVoucherMismatchRefused(t *testing.T) {
	store := newMemoryStore()
	seedInvoice(store, 1, 7, ledger.InvoiceRoyalty, 300, day(1))
	svc := newTestService(store)
	ctx := context.Background()

	result, err := svc.PostVoucher(ctx, PostVoucherInput{
		VoucherType: ledger.VoucherReceipt,
		Category:    ledger.CategoryRoyalty,
		Amount:      300,
		SourceID:    7,
		Mode:        "CASH",
	})
	require.NoError(t, err)

	// Someone re-billed the invoice after posting; restoring would overflow.
	store.invoices[1].Balance = 100

	err = svc.DeleteVoucher(ctx, result.Payment.ID)
	require.Error(t, err)
	require.NotEmpty(t, store.payments)
}

func TestPostVoucherPartyBusy(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	locker := shared.NewPartyLocker(client, time.Minute)

	store := newMemoryStore()
	logger := slog.New(slog.DiscardHandler)
	svc := NewService(logger, &memoryRepo{store: store}, locker)
	ctx := context.Background()

	// Simulate another posting holding the party.
	require.NoError(t, client.Set(ctx, shared.PartyLockKey(7), "other", time.Minute).Err())

	_, err := svc.PostVoucher(ctx, PostVoucherInput{
		VoucherType: ledger.VoucherReceipt,
		Category:    ledger.CategoryRoyalty,
		Amount:      100,
		SourceID:    7,
		Mode:        "CASH",
	})
	require.ErrorIs(t, err, shared.ErrPartyBusy)
}

func TestPostVoucherValidation(t *testing.T) {
	svc := newTestService(newMemoryStore())
	ctx := context.Background()

	cases := []PostVoucherInput{
		{VoucherType: ledger.VoucherReceipt, Category: ledger.CategoryRoyalty, Amount: 0, SourceID: 7, Mode: "CASH"},
		{VoucherType: ledger.VoucherReceipt, Category: "BOGUS", Amount: 10, SourceID: 7, Mode: "CASH"},
		{VoucherType: ledger.VoucherReceipt, Category: ledger.CategoryRoyalty, Amount: 10, Mode: "CASH"},
		{VoucherType: ledger.VoucherReceipt, Category: ledger.CategoryRoyalty, Amount: 10, SourceID: 7},
		{VoucherType: ledger.VoucherContra, Category: ledger.CategoryTransfer, Amount: 10, Mode: "CASH", TargetMode: "CASH"},
		{VoucherType: ledger.VoucherContra, Category: ledger.CategoryRoyalty, Amount: 10, SourceID: 7, Mode: "CASH", TargetMode: "HDFC"},
		{VoucherType: ledger.VoucherReceipt, Category: ledger.CategoryTransfer, Amount: 10, Mode: "CASH", TargetMode: "HDFC"},
		{VoucherType: ledger.VoucherPayment, Category: ledger.CategorySavings, Amount: 10, Mode: "CASH"},
		{VoucherType: ledger.VoucherReceipt, Category: ledger.CategoryOverall, Amount: 10, SourceID: 7, Mode: "CASH"},
	}
	for _, input := range cases {
		_, err := svc.PostVoucher(ctx, input)
		require.Error(t, err, "input %+v", input)
	}
}
