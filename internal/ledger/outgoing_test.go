package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSettleOutgoingWalksPayablesOldestFirst(t *testing.T) {
	invoices := []Invoice{
		{ID: 1, CustomerID: 7, Type: InvoiceInterestOut, Direction: DirectionOut, Amount: 1000, Balance: 1000, Date: day(1)},
		{ID: 2, CustomerID: 7, Type: InvoiceInterestOut, Direction: DirectionOut, Amount: 1000, Balance: 1000, Date: day(2)},
		// Receivable lines must never absorb an outbound payment.
		{ID: 3, CustomerID: 7, Type: InvoiceInterest, Direction: DirectionIn, Amount: 500, Balance: 500, Date: day(1)},
	}
	p := Payment{ID: 10, Direction: DirectionOut, Category: CategoryLoanInterest, Amount: 1500, SourceID: 7}

	res := SettleOutgoing(p, invoices, []InvoiceType{InvoiceInterestOut})
	require.Len(t, res.Lines, 2)
	require.Equal(t, int64(1), res.Lines[0].InvoiceID)
	require.Equal(t, 1000.0, res.Lines[0].Amount)
	require.Equal(t, int64(2), res.Lines[1].InvoiceID)
	require.Equal(t, 500.0, res.Lines[1].Amount)
	require.Equal(t, 0.0, res.Remainder)
	require.Equal(t, StatusPaid, res.Invoices[0].Status)
	require.Equal(t, StatusPartial, res.Invoices[1].Status)

	// Snapshot untouched.
	require.Equal(t, 1000.0, invoices[0].Balance)
}

func TestSettleOutgoingIgnoresInboundPayments(t *testing.T) {
	invoices := []Invoice{
		{ID: 1, CustomerID: 7, Type: InvoiceInterestOut, Direction: DirectionOut, Amount: 100, Balance: 100, Date: day(1)},
	}
	p := Payment{Direction: DirectionIn, Category: CategoryInterest, Amount: 100, SourceID: 7}

	res := SettleOutgoing(p, invoices, []InvoiceType{InvoiceInterestOut})
	require.Empty(t, res.Lines)
	require.Equal(t, 100.0, res.Remainder)
}

func TestReverseUnwindsOutgoingSettlementByLines(t *testing.T) {
	invoices := []Invoice{
		{ID: 1, CustomerID: 7, Type: InvoiceInterestOut, Direction: DirectionOut, Amount: 1000, Balance: 0, Status: StatusPaid, Date: day(1)},
		{ID: 2, CustomerID: 7, Type: InvoiceInterestOut, Direction: DirectionOut, Amount: 1000, Balance: 500, Status: StatusPartial, Date: day(2)},
	}
	p := Payment{ID: 10, Direction: DirectionOut, Category: CategoryLoanInterest, Amount: 1500, SourceID: 7}
	lines := []AllocationLine{
		{ID: 1, PaymentID: 10, InvoiceID: 1, Amount: 1000},
		{ID: 2, PaymentID: 10, InvoiceID: 2, Amount: 500},
	}

	updated, err := Reverse(p, invoices, lines)
	require.NoError(t, err)
	require.Len(t, updated, 2)
	for _, inv := range updated {
		require.Equal(t, 1000.0, inv.Balance)
		require.Equal(t, StatusUnpaid, inv.Status)
	}
}
