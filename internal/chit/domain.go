package chit

import "time"

// GroupStatus enumerates chit group lifecycle states.
type GroupStatus string

const (
	GroupActive    GroupStatus = "ACTIVE"
	GroupCompleted GroupStatus = "COMPLETED"
)

// Group is a chit fund the business runs as foreman. TotalValue divided by
// DurationMonths gives the base monthly installment per seat.
type Group struct {
	ID             int64       `json:"id" db:"id"`
	Name           string      `json:"name" db:"name"`
	TotalValue     float64     `json:"total_value" db:"total_value"`
	DurationMonths int         `json:"duration_months" db:"duration_months"`
	CommissionPct  float64     `json:"commission_pct" db:"commission_pct"`
	StartDate      time.Time   `json:"start_date" db:"start_date"`
	Status         GroupStatus `json:"status" db:"status"`
	Members        []Member    `json:"members,omitempty"`
	Auctions       []Auction   `json:"auctions,omitempty"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" db:"updated_at"`
}

// Member is one subscriber in a group. A member may hold several seats; each
// seat pays a full installment and is eligible to win once.
type Member struct {
	ID         int64     `json:"id" db:"id"`
	GroupID    int64     `json:"group_id" db:"group_id"`
	CustomerID int64     `json:"customer_id" db:"customer_id"`
	Seats      int       `json:"seats" db:"seats"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Auction records one month's bidding round and the settlement figures
// derived from the winning discount.
type Auction struct {
	ID                int64     `json:"id" db:"id"`
	GroupID           int64     `json:"group_id" db:"group_id"`
	AuctionID         string    `json:"auction_id" db:"auction_id"`
	Month             int       `json:"month" db:"month"`
	WinnerMemberID    int64     `json:"winner_member_id" db:"winner_member_id"`
	BidAmount         float64   `json:"bid_amount" db:"bid_amount"`
	Commission        float64   `json:"commission" db:"commission"`
	DividendPerMember float64   `json:"dividend_per_member" db:"dividend_per_member"`
	MemberPayable     float64   `json:"member_payable" db:"member_payable"`
	WinnerPayable     float64   `json:"winner_payable" db:"winner_payable"`
	Date              time.Time `json:"date" db:"date"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}
