package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func applyResult(invoices []Invoice, updated []Invoice) []Invoice {
	out := make([]Invoice, len(invoices))
	copy(out, invoices)
	for i := range out {
		for _, u := range updated {
			if u.ID == out[i].ID {
				out[i] = u
			}
		}
	}
	return out
}

func TestReverseRoundTripByLines(t *testing.T) {
	original := []Invoice{
		{ID: 1, CustomerID: 1, Type: InvoiceInterest, Direction: DirectionIn, Amount: 300, Balance: 300, Status: StatusUnpaid, Date: day(1)},
		{ID: 2, CustomerID: 1, Type: InvoiceInterest, Direction: DirectionIn, Amount: 500, Balance: 500, Status: StatusUnpaid, Date: day(2)},
	}
	p := Payment{ID: 7, Direction: DirectionIn, Category: CategoryInterest, Amount: 450, SourceID: 1}

	res := Allocate(p, original)
	afterPost := applyResult(original, res.Invoices)

	restored, err := Reverse(p, afterPost, res.Lines)
	require.NoError(t, err)
	final := applyResult(afterPost, restored)

	require.Equal(t, original, final)
}

func TestReverseLIFOOrdering(t *testing.T) {
	// inv1 oldest fully paid, inv2 newest partially paid.
	invoices := []Invoice{
		{ID: 1, CustomerID: 1, Type: InvoiceRoyalty, Direction: DirectionIn, Amount: 200, Balance: 0, Status: StatusPaid, Date: day(1)},
		{ID: 2, CustomerID: 1, Type: InvoiceRoyalty, Direction: DirectionIn, Amount: 400, Balance: 250, Status: StatusPartial, Date: day(8)},
	}
	p := Payment{ID: 7, Direction: DirectionIn, Category: CategoryRoyalty, Amount: 350, SourceID: 1}

	restored, err := Reverse(p, invoices, nil)
	require.NoError(t, err)
	require.Len(t, restored, 2)

	// Newest invoice unwound first.
	require.Equal(t, int64(2), restored[0].ID)
	require.Equal(t, 400.0, restored[0].Balance)
	require.Equal(t, StatusUnpaid, restored[0].Status)
	require.Equal(t, int64(1), restored[1].ID)
	require.Equal(t, 200.0, restored[1].Balance)
	require.Equal(t, StatusUnpaid, restored[1].Status)
}

func TestReversePartialRestoreKeepsPartialStatus(t *testing.T) {
	invoices := []Invoice{
		{ID: 1, CustomerID: 1, Type: InvoiceChit, Direction: DirectionIn, Amount: 500, Balance: 100, Status: StatusPartial, Date: day(1)},
	}
	p := Payment{ID: 7, Direction: DirectionIn, Category: CategoryChit, Amount: 150, SourceID: 1}

	restored, err := Reverse(p, invoices, nil)
	require.NoError(t, err)
	require.Len(t, restored, 1)
	require.Equal(t, 250.0, restored[0].Balance)
	require.Equal(t, StatusPartial, restored[0].Status)
}

func TestReverseMismatchIsHardError(t *testing.T) {
	// Payment claims 500 but invoices can only give back 100.
	invoices := []Invoice{
		{ID: 1, CustomerID: 1, Type: InvoiceChit, Direction: DirectionIn, Amount: 200, Balance: 100, Status: StatusPartial, Date: day(1)},
	}
	p := Payment{ID: 7, Direction: DirectionIn, Category: CategoryChit, Amount: 500, SourceID: 1}

	_, err := Reverse(p, invoices, nil)
	require.ErrorIs(t, err, ErrReversalMismatch)
}

func TestReverseByLinesRefusesOverRestore(t *testing.T) {
	invoices := []Invoice{
		{ID: 1, CustomerID: 1, Type: InvoiceChit, Direction: DirectionIn, Amount: 200, Balance: 150, Status: StatusPartial, Date: day(1)},
	}
	p := Payment{ID: 7, Direction: DirectionIn, Category: CategoryChit, Amount: 100, SourceID: 1}
	lines := []AllocationLine{{PaymentID: 7, InvoiceID: 1, Amount: 100}}

	// Restoring 100 onto balance 150 would exceed the 200 amount.
	_, err := Reverse(p, invoices, lines)
	require.ErrorIs(t, err, ErrReversalMismatch)
}

func TestReverseNonAllocatableCategoryIsNoop(t *testing.T) {
	p := Payment{ID: 7, Direction: DirectionIn, Category: CategorySavings, Amount: 100, SourceID: 1}
	restored, err := Reverse(p, nil, nil)
	require.NoError(t, err)
	require.Nil(t, restored)
}

func TestReverseByLinesIgnoresForeignLines(t *testing.T) {
	invoices := []Invoice{
		{ID: 1, CustomerID: 1, Type: InvoiceRoyalty, Direction: DirectionIn, Amount: 200, Balance: 100, Status: StatusPartial, Date: day(1)},
	}
	p := Payment{ID: 7, Direction: DirectionIn, Category: CategoryRoyalty, Amount: 100, SourceID: 1}
	lines := []AllocationLine{
		{PaymentID: 99, InvoiceID: 1, Amount: 100},
		{PaymentID: 7, InvoiceID: 1, Amount: 100},
	}

	restored, err := Reverse(p, invoices, lines)
	require.NoError(t, err)
	require.Len(t, restored, 1)
	require.Equal(t, 200.0, restored[0].Balance)
}
