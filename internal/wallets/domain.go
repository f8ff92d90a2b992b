package wallets

import "time"

// Account is a payment-mode ledger: cash drawer, bank account or UPI wallet.
// Voucher payments reference accounts by Code through the payment's mode.
type Account struct {
	ID             int64     `json:"id" db:"id"`
	Code           string    `json:"code" db:"code"`
	Name           string    `json:"name" db:"name"`
	OpeningBalance float64   `json:"opening_balance" db:"opening_balance"`
	IsCash         bool      `json:"is_cash" db:"is_cash"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// AccountBalance pairs an account with its derived closing balance.
type AccountBalance struct {
	Account Account `json:"account"`
	Balance float64 `json:"balance"`
}
