package ledger

import "sort"

// AllocationResult carries the outcome of applying one payment to a set of
// open invoices. Invoices holds updated copies of the touched invoices only;
// the caller persists them alongside the lines.
type AllocationResult struct {
	Invoices  []Invoice
	Lines     []AllocationLine
	Remainder float64
}

// Allocate walks the party's open invoices oldest-first and pays them down
// until the payment is exhausted. Input slices are treated as snapshots and
// never mutated.
//
// Any unconsumed remainder is returned but deliberately not recorded as an
// advance: it surfaces through the GENERAL/OVERALL balance instead. There is
// no advance ledger.
func Allocate(p Payment, invoices []Invoice) AllocationResult {
	res := AllocationResult{Remainder: p.Amount}
	if p.Direction != DirectionIn || !Allocatable(p.Category) {
		return res
	}

	types := InvoiceTypesFor(p.Category)
	open := make([]Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if inv.CustomerID != p.SourceID || inv.IsVoid || inv.Direction == DirectionOut {
			continue
		}
		if inv.Balance <= 0 || !matchesInvoiceType(types, inv.Type) {
			continue
		}
		open = append(open, inv)
	}
	sort.SliceStable(open, func(i, j int) bool {
		if open[i].Date.Equal(open[j].Date) {
			return open[i].ID < open[j].ID
		}
		return open[i].Date.Before(open[j].Date)
	})

	remaining := p.Amount
	for _, inv := range open {
		if remaining <= 0 {
			break
		}
		deduct := remaining
		if inv.Balance < deduct {
			deduct = inv.Balance
		}
		inv.Balance = Round2(inv.Balance - deduct)
		inv.Status = StatusFor(inv.Amount, inv.Balance)
		remaining = Round2(remaining - deduct)

		res.Invoices = append(res.Invoices, inv)
		res.Lines = append(res.Lines, AllocationLine{
			PaymentID: p.ID,
			InvoiceID: inv.ID,
			Amount:    deduct,
		})
	}
	res.Remainder = Round2(remaining)
	return res
}
