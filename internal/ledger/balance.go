package ledger

import "math"

// StatusFor derives invoice status from balance vs amount.
func StatusFor(amount, balance float64) InvoiceStatus {
	switch {
	case balance <= 0:
		return StatusPaid
	case balance < amount:
		return StatusPartial
	default:
		return StatusUnpaid
	}
}

// Balance computes the net outstanding amount a party owes under one
// category. Positive means the party owes the business. When signed is
// false negative results clamp to zero for display.
//
// OVERALL folds in the opening balance plus outstanding loan principal;
// GENERAL folds in the opening balance only. The per-line categories track
// billed invoices against received payments and leave principal to the
// PRINCIPAL_RECOVERY path.
func Balance(c Customer, invoices []Invoice, payments []Payment, category Category, signed bool) float64 {
	invTypes := InvoiceTypesFor(category)
	payCats := PaymentCategoriesFor(category)

	var totalDR, totalCRInvoice, totalCRPayment, totalOutPayment float64
	for _, inv := range invoices {
		if inv.IsVoid || inv.CustomerID != c.ID || !matchesInvoiceType(invTypes, inv.Type) {
			continue
		}
		if inv.Direction == DirectionOut {
			totalCRInvoice += inv.Amount
		} else {
			totalDR += inv.Amount
		}
	}
	for _, p := range payments {
		if p.SourceID != c.ID || !matchesCategory(payCats, p.Category) {
			continue
		}
		if p.Direction == DirectionIn {
			totalCRPayment += p.Amount
		} else {
			totalOutPayment += p.Amount
		}
	}

	var openingAdj float64
	switch category {
	case CategoryOverall:
		openingAdj = c.OpeningBalance + c.InterestPrincipal
	case CategoryGeneral:
		openingAdj = c.OpeningBalance
	}

	net := Round2(totalDR - totalCRInvoice - totalCRPayment + totalOutPayment + openingAdj)
	if signed {
		return net
	}
	return math.Max(0, net)
}

// CategoryBreakdown splits a party's position into its funding lines.
// The three category fields use the plain invoice-minus-payments view; the
// sum of all five fields therefore equals the OVERALL balance, but the three
// category fields alone intentionally do not (OVERALL adds opening and
// principal on top). Callers must not "re-balance" this.
type CategoryBreakdown struct {
	Royalty   float64
	Interest  float64
	Chit      float64
	Principal float64
	Opening   float64
}

// Breakdown computes the per-line view used by the customer list, accounts
// view and outstanding report.
func Breakdown(c Customer, invoices []Invoice, payments []Payment) CategoryBreakdown {
	return CategoryBreakdown{
		Royalty:   Balance(c, invoices, payments, CategoryRoyalty, true),
		Interest:  Balance(c, invoices, payments, CategoryInterest, true),
		Chit:      Balance(c, invoices, payments, CategoryChit, true),
		Principal: c.InterestPrincipal,
		Opening:   c.OpeningBalance,
	}
}

// Round2 rounds to two decimal places, the precision every stored amount
// carries.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
