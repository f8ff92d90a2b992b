package ledger

import (
	"errors"
	"sort"
)

// ErrReversalMismatch means the invoices no longer account for everything
// the payment originally paid down, usually because an invoice was voided or
// re-billed after posting. The reversal is refused rather than clamped.
var ErrReversalMismatch = errors.New("ledger: reversal does not match recorded allocations")

// Reverse undoes the invoice effects of a previously posted payment and
// returns updated copies of the touched invoices. When allocation lines were
// recorded at posting time they are unwound exactly, newest line first; the
// lines are authoritative regardless of category or direction. Payments
// posted before lines existed fall back to the date-LIFO heuristic: restore
// the most recently dated invoice first, the mirror image of the FIFO
// consumption order.
func Reverse(p Payment, invoices []Invoice, lines []AllocationLine) ([]Invoice, error) {
	if len(lines) > 0 {
		return reverseByLines(p, invoices, lines)
	}
	if p.Direction != DirectionIn || !Allocatable(p.Category) {
		return nil, nil
	}
	return reverseByDate(p, invoices)
}

func reverseByLines(p Payment, invoices []Invoice, lines []AllocationLine) ([]Invoice, error) {
	byID := make(map[int64]Invoice, len(invoices))
	for _, inv := range invoices {
		byID[inv.ID] = inv
	}

	var updated []Invoice
	for i := len(lines) - 1; i >= 0; i-- {
		line := lines[i]
		if line.PaymentID != p.ID {
			continue
		}
		inv, ok := byID[line.InvoiceID]
		if !ok {
			return nil, ErrReversalMismatch
		}
		restored := Round2(inv.Balance + line.Amount)
		if restored > inv.Amount {
			return nil, ErrReversalMismatch
		}
		inv.Balance = restored
		inv.Status = StatusFor(inv.Amount, inv.Balance)
		byID[inv.ID] = inv
		updated = append(updated, inv)
	}
	return updated, nil
}

func reverseByDate(p Payment, invoices []Invoice) ([]Invoice, error) {
	types := InvoiceTypesFor(p.Category)
	paid := make([]Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if inv.CustomerID != p.SourceID || inv.IsVoid || inv.Direction == DirectionOut {
			continue
		}
		if inv.Balance >= inv.Amount || !matchesInvoiceType(types, inv.Type) {
			continue
		}
		paid = append(paid, inv)
	}
	sort.SliceStable(paid, func(i, j int) bool {
		if paid[i].Date.Equal(paid[j].Date) {
			return paid[i].ID > paid[j].ID
		}
		return paid[i].Date.After(paid[j].Date)
	})

	remaining := p.Amount
	var updated []Invoice
	for _, inv := range paid {
		if remaining <= 0 {
			break
		}
		restore := remaining
		if gap := Round2(inv.Amount - inv.Balance); gap < restore {
			restore = gap
		}
		inv.Balance = Round2(inv.Balance + restore)
		inv.Status = StatusFor(inv.Amount, inv.Balance)
		remaining = Round2(remaining - restore)
		updated = append(updated, inv)
	}
	if remaining > 0 {
		return nil, ErrReversalMismatch
	}
	return updated, nil
}
