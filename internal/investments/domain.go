package investments

import "time"

// InvestmentType enumerates investment kinds.
type InvestmentType string

const (
	TypeSavings InvestmentType = "SAVINGS"
	TypeChit    InvestmentType = "CHIT"
)

// SavingsMode distinguishes recurring deposits from lump sums.
type SavingsMode string

const (
	ModeMonthly SavingsMode = "MONTHLY"
	ModeLumpSum SavingsMode = "LUMPSUM"
)

// LedgerTransaction is one contribution or payout row on an investment.
type LedgerTransaction struct {
	ID           int64     `json:"id" db:"id"`
	InvestmentID int64     `json:"investment_id" db:"investment_id"`
	PaymentID    int64     `json:"payment_id,omitempty" db:"payment_id"`
	Month        int       `json:"month" db:"month"`
	AmountPaid   float64   `json:"amount_paid" db:"amount_paid"`
	Date         time.Time `json:"date" db:"date"`
}

// ChitConfig holds the prize state for chit-type investments (the business
// participating as a member in an external chit).
type ChitConfig struct {
	IsPrized    bool    `json:"is_prized" db:"chit_is_prized"`
	PrizeAmount float64 `json:"prize_amount" db:"chit_prize_amount"`
	PrizeMonth  int     `json:"prize_month" db:"chit_prize_month"`
}

// Investment is an external asset the business pays into.
type Investment struct {
	ID                 int64               `json:"id" db:"id"`
	Name               string              `json:"name" db:"name"`
	Institution        string              `json:"institution,omitempty" db:"institution"`
	Type               InvestmentType      `json:"type" db:"type"`
	Mode               SavingsMode         `json:"mode" db:"mode"`
	MonthlyInstallment float64             `json:"monthly_installment" db:"monthly_installment"`
	DurationMonths     int                 `json:"duration_months" db:"duration_months"`
	AmountInvested     float64             `json:"amount_invested" db:"amount_invested"`
	InterestRate       float64             `json:"interest_rate" db:"interest_rate"`
	StartDate          time.Time           `json:"start_date" db:"start_date"`
	ChitConfig         *ChitConfig         `json:"chit_config,omitempty"`
	Transactions       []LedgerTransaction `json:"transactions,omitempty"`
	CreatedAt          time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at" db:"updated_at"`
}

// Liability is an external debt owed to a lender party.
type Liability struct {
	ID           int64     `json:"id" db:"id"`
	LenderID     int64     `json:"lender_id" db:"lender_id"`
	Name         string    `json:"name" db:"name"`
	Principal    float64   `json:"principal" db:"principal"`
	InterestRate float64   `json:"interest_rate" db:"interest_rate"`
	StartDate    time.Time `json:"start_date" db:"start_date"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
