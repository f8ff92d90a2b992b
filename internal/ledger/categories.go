package ledger

// InvoiceTypesFor returns the invoice types counted toward a category
// balance. GENERAL and OVERALL span the union of the three billed lines.
func InvoiceTypesFor(c Category) []InvoiceType {
	switch c {
	case CategoryRoyalty:
		return []InvoiceType{InvoiceRoyalty}
	case CategoryInterest:
		return []InvoiceType{InvoiceInterest}
	case CategoryChit, CategoryChitFund:
		return []InvoiceType{InvoiceChit}
	case CategoryGeneral, CategoryOverall:
		return []InvoiceType{InvoiceRoyalty, InvoiceInterest, InvoiceChit}
	default:
		return nil
	}
}

// PaymentCategoriesFor returns the voucher categories counted toward a
// category balance. Principal recoveries settle interest exposure, chit-fund
// receipts settle chit invoices.
func PaymentCategoriesFor(c Category) []Category {
	switch c {
	case CategoryRoyalty:
		return []Category{CategoryRoyalty}
	case CategoryInterest:
		return []Category{CategoryInterest, CategoryPrincipalRecovery}
	case CategoryChit, CategoryChitFund:
		return []Category{CategoryChit, CategoryChitFund}
	case CategoryGeneral, CategoryOverall:
		return []Category{
			CategoryRoyalty,
			CategoryInterest, CategoryPrincipalRecovery,
			CategoryChit, CategoryChitFund,
		}
	default:
		return nil
	}
}

// Allocatable reports whether vouchers in this category settle open invoices.
func Allocatable(c Category) bool {
	switch c {
	case CategoryRoyalty, CategoryInterest, CategoryChit, CategoryChitFund, CategoryGeneral:
		return true
	}
	return false
}

func matchesInvoiceType(types []InvoiceType, t InvoiceType) bool {
	for _, v := range types {
		if v == t {
			return true
		}
	}
	return false
}

func matchesCategory(cats []Category, c Category) bool {
	for _, v := range cats {
		if v == c {
			return true
		}
	}
	return false
}
