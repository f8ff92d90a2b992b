package chit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeSettlement(t *testing.T) {
	st, err := ComputeSettlement(100000, 5, 20000, 20)
	require.NoError(t, err)

	require.Equal(t, 5000.0, st.MonthlyInstallment)
	require.Equal(t, 5000.0, st.Commission)
	require.Equal(t, 15000.0, st.DividendPot)
	require.Equal(t, 750.0, st.DividendPerMember)
	require.Equal(t, 4250.0, st.MemberPayable)
	require.Equal(t, 80000.0, st.WinnerPayable)
}

func TestComputeSettlementZeroBid(t *testing.T) {
	st, err := ComputeSettlement(100000, 5, 0, 20)
	require.NoError(t, err)

	// Commission exceeds the bid, so the dividend pot clamps at zero and
	// every seat pays the full installment.
	require.Equal(t, 0.0, st.DividendPot)
	require.Equal(t, 0.0, st.DividendPerMember)
	require.Equal(t, 5000.0, st.MemberPayable)
	require.Equal(t, 100000.0, st.WinnerPayable)
}

func TestComputeSettlementRounding(t *testing.T) {
	st, err := ComputeSettlement(100000, 5, 20001, 3)
	require.NoError(t, err)
	require.Equal(t, 33333.33, st.MonthlyInstallment)
	require.Equal(t, 15001.0, st.DividendPot)
	require.Equal(t, 5000.33, st.DividendPerMember)
	require.Equal(t, 28333.0, st.MemberPayable)
}

func TestComputeSettlementValidation(t *testing.T) {
	cases := []struct {
		totalValue, commissionPct, bid float64
		duration                       int
	}{
		{0, 5, 1000, 20},
		{100000, 5, 1000, 0},
		{100000, -1, 1000, 20},
		{100000, 101, 1000, 20},
		{100000, 5, -1, 20},
		{100000, 5, 100001, 20},
	}
	for _, c := range cases {
		_, err := ComputeSettlement(c.totalValue, c.commissionPct, c.bid, c.duration)
		require.Error(t, err, "case %+v", c)
	}
}
