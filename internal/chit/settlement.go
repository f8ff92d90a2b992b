package chit

import (
	"fmt"

	"github.com/arthabooks/arthabooks/internal/ledger"
	"github.com/arthabooks/arthabooks/internal/platform/httpx"
)

// Settlement holds the money split of one auction round. The winner forgoes
// the bid; the foreman takes commission off it and the rest flows back to
// the members as dividend.
type Settlement struct {
	MonthlyInstallment float64
	Commission         float64
	DividendPot        float64
	DividendPerMember  float64
	MemberPayable      float64
	WinnerPayable      float64
}

// ComputeSettlement derives the auction split from the group terms and the
// winning bid. All figures are per seat.
//
// A 1,00,000 group over 20 months at 5% commission with a 20,000 bid splits
// into 5,000 commission, a 15,000 dividend pot, 750 dividend per seat and
// 80,000 paid out to the winner.
func ComputeSettlement(totalValue, commissionPct, bid float64, durationMonths int) (Settlement, error) {
	if totalValue <= 0 {
		return Settlement{}, fmt.Errorf("%w: total value must be positive", httpx.ErrValidation)
	}
	if durationMonths <= 0 {
		return Settlement{}, fmt.Errorf("%w: duration must be positive", httpx.ErrValidation)
	}
	if commissionPct < 0 || commissionPct > 100 {
		return Settlement{}, fmt.Errorf("%w: commission must be between 0 and 100", httpx.ErrValidation)
	}
	if bid < 0 || bid > totalValue {
		return Settlement{}, fmt.Errorf("%w: bid must be between 0 and the total value", httpx.ErrValidation)
	}

	installment := ledger.Round2(totalValue / float64(durationMonths))
	commission := ledger.Round2(totalValue * commissionPct / 100)
	pot := ledger.Round2(bid - commission)
	if pot < 0 {
		pot = 0
	}
	dividend := ledger.Round2(pot / float64(durationMonths))
	payable := ledger.Round2(installment - dividend)
	if payable < 0 {
		payable = 0
	}

	return Settlement{
		MonthlyInstallment: installment,
		Commission:         commission,
		DividendPot:        pot,
		DividendPerMember:  dividend,
		MemberPayable:      payable,
		WinnerPayable:      ledger.Round2(totalValue - bid),
	}, nil
}
