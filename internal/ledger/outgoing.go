package ledger

import "sort"

// SettleOutgoing applies an outbound payment against the party's open
// payable invoices (Direction OUT) of the given types, oldest first. It is
// the mirror of Allocate: loan interest payments settle INTEREST_OUT lines,
// chit winner payouts settle the auction's OUT invoice. Inputs are snapshots
// and never mutated.
func SettleOutgoing(p Payment, invoices []Invoice, types []InvoiceType) AllocationResult {
	res := AllocationResult{Remainder: p.Amount}
	if p.Direction != DirectionOut || len(types) == 0 {
		return res
	}

	open := make([]Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if inv.CustomerID != p.SourceID || inv.IsVoid || inv.Direction != DirectionOut {
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
