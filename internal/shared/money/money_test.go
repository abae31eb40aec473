package money_test

import (
	"testing"

	"vn-payroll/internal/shared/money"

	"github.com/stretchr/testify/assert"
)

func TestRoundHalfAwayFromZero(t *testing.T) {
	tests := []struct {
		in   float64
		want int64
	}{
		{0, 0},
		{2.4, 2},
		{2.5, 3},
		{2.6, 3},
		{-2.5, -3},
		{-2.4, -2},
		{449_999.5, 450_000},
		{2_400_000, 2_400_000},
	}

	for _, tt := range tests {
		assert.Equalf(t, tt.want, money.Round(tt.in), "Round(%v)", tt.in)
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "0 VND", money.Format(0))
	assert.Equal(t, "500 VND", money.Format(500))
	assert.Equal(t, "3,150,000 VND", money.Format(3_150_000))
	assert.Equal(t, "25,882,500 VND", money.Format(25_882_500))
	assert.Equal(t, "-1,000 VND", money.Format(-1000))
}
