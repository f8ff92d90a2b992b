package ledger

import (
	"time"
)

// Direction marks whether money moves into or out of the business.
type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// VoucherType enumerates posted voucher kinds.
type VoucherType string

const (
	VoucherReceipt VoucherType = "RECEIPT"
	VoucherPayment VoucherType = "PAYMENT"
	VoucherContra  VoucherType = "CONTRA"
)

// InvoiceType enumerates billable ledger lines.
type InvoiceType string

const (
	InvoiceRoyalty     InvoiceType = "ROYALTY"
	InvoiceInterest    InvoiceType = "INTEREST"
	InvoiceInterestOut InvoiceType = "INTEREST_OUT"
	InvoiceChit        InvoiceType = "CHIT"
)

// InvoiceStatus is always derived from balance vs amount, never stored ad hoc.
type InvoiceStatus string

const (
	StatusUnpaid  InvoiceStatus = "UNPAID"
	StatusPartial InvoiceStatus = "PARTIAL"
	StatusPaid    InvoiceStatus = "PAID"
)

// Category is the purpose attached to a voucher and the axis along which
// party balances are partitioned.
type Category string

const (
	CategoryRoyalty           Category = "ROYALTY"
	CategoryInterest          Category = "INTEREST"
	CategoryChit              Category = "CHIT"
	CategoryChitFund          Category = "CHIT_FUND"
	CategoryGeneral           Category = "GENERAL"
	CategoryOverall           Category = "OVERALL"
	CategoryPrincipalRecovery Category = "PRINCIPAL_RECOVERY"
	CategoryLoanRepayment     Category = "LOAN_REPAYMENT"
	CategoryLoanInterest      Category = "LOAN_INTEREST"
	CategoryTransfer          Category = "TRANSFER"
	CategoryExpense           Category = "EXPENSE"
	CategoryOtherBusiness     Category = "OTHER_BUSINESS"
	CategoryDirectIncome      Category = "DIRECT_INCOME"
	CategorySavings           Category = "SAVINGS"
	CategoryChitSavings       Category = "CHIT_SAVINGS"
)

// CustomerStatus enumerates party lifecycle states.
type CustomerStatus string

const (
	CustomerActive   CustomerStatus = "ACTIVE"
	CustomerInactive CustomerStatus = "INACTIVE"
)

// Customer is a ledger party. A customer may hold several roles at once;
// each role feeds a different category balance.
type Customer struct {
	ID     int64          `json:"id" db:"id"`
	Name   string         `json:"name" db:"name"`
	Phone  string         `json:"phone" db:"phone"`
	Status CustomerStatus `json:"status" db:"status"`

	IsRoyalty  bool `json:"is_royalty" db:"is_royalty"`
	IsInterest bool `json:"is_interest" db:"is_interest"`
	IsChit     bool `json:"is_chit" db:"is_chit"`
	IsGeneral  bool `json:"is_general" db:"is_general"`
	IsLender   bool `json:"is_lender" db:"is_lender"`

	RoyaltyAmount     float64 `json:"royalty_amount" db:"royalty_amount"`
	InterestPrincipal float64 `json:"interest_principal" db:"interest_principal"`
	InterestRate      float64 `json:"interest_rate" db:"interest_rate"`
	CreditPrincipal   float64 `json:"credit_principal" db:"credit_principal"`

	// OpeningBalance is signed: positive means the party owes the business.
	OpeningBalance float64 `json:"opening_balance" db:"opening_balance"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Invoice is a billed receivable (or payable when Direction is OUT).
// Invariant: 0 <= Balance <= Amount.
type Invoice struct {
	ID               int64         `json:"id" db:"id"`
	CustomerID       int64         `json:"customer_id" db:"customer_id"`
	Type             InvoiceType   `json:"type" db:"type"`
	Direction        Direction     `json:"direction" db:"direction"`
	Amount           float64       `json:"amount" db:"amount"`
	Balance          float64       `json:"balance" db:"balance"`
	Status           InvoiceStatus `json:"status" db:"status"`
	Date             time.Time     `json:"date" db:"date"`
	RelatedAuctionID string        `json:"related_auction_id,omitempty" db:"related_auction_id"`
	IsVoid           bool          `json:"is_void" db:"is_void"`
	CreatedAt        time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at" db:"updated_at"`
}

// Payment is a posted voucher. Amount is always positive; Direction carries
// the sign. Immutable once posted except through the reverse/re-apply path.
type Payment struct {
	ID          int64       `json:"id" db:"id"`
	Number      string      `json:"number" db:"number"`
	Direction   Direction   `json:"direction" db:"direction"`
	VoucherType VoucherType `json:"voucher_type" db:"voucher_type"`
	Category    Category    `json:"category" db:"category"`
	Amount      float64     `json:"amount" db:"amount"`
	SourceID    int64       `json:"source_id,omitempty" db:"source_id"`
	SourceName  string      `json:"source_name,omitempty" db:"source_name"`
	Mode        string      `json:"mode" db:"mode"`
	TargetMode  string      `json:"target_mode,omitempty" db:"target_mode"`
	// InvestmentID links savings and chit-savings vouchers to the
	// investment ledger they feed.
	InvestmentID int64     `json:"investment_id,omitempty" db:"investment_id"`
	Date         time.Time `json:"date" db:"date"`
	Note         string    `json:"note,omitempty" db:"note"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// AllocationLine records exactly which invoice absorbed how much of which
// payment. Reversal unwinds these lines instead of re-deriving the split.
type AllocationLine struct {
	ID        int64     `json:"id" db:"id"`
	PaymentID int64     `json:"payment_id" db:"payment_id"`
	InvoiceID int64     `json:"invoice_id" db:"invoice_id"`
	Amount    float64   `json:"amount" db:"amount"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// DueStatus buckets a category balance for the outstanding report.
type DueStatus string

const (
	DueOverdue  DueStatus = "OVERDUE"
	DueToday    DueStatus = "TODAY"
	DueUpcoming DueStatus = "UPCOMING"
	DueNone     DueStatus = "NONE"
)
