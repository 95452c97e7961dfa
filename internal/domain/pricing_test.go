package domain

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tablepos/internal/errors"
)

func int64Ptr(i int64) *int64 {
	return &i
}

func TestPriceCart_Example(t *testing.T) {
	items := []CartItem{
		{Name: "X", UnitPrice: 6000, Quantity: 2},
		{Name: "Y", UnitPrice: 1000, Quantity: 3},
	}

	p, err := PriceCart(items, decimal.NewFromInt(5), 500)
	require.NoError(t, err)

	assert.Equal(t, int64(15000), p.Subtotal)
	assert.Equal(t, int64(750), p.TaxAmount)
	assert.Equal(t, int64(500), p.Discount)
	assert.Equal(t, int64(15250), p.Total)
	require.Len(t, p.Items, 2)
	assert.Equal(t, int64(12000), p.Items[0].LineTotal)
	assert.Equal(t, int64(3000), p.Items[1].LineTotal)
}

func TestPriceCart_OnlyBlankItems(t *testing.T) {
	p, err := PriceCart([]CartItem{{Name: "", UnitPrice: 1000, Quantity: 1}}, decimal.Zero, 0)
	assert.Nil(t, p)

	ve, ok := apperrors.IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "cart is empty", ve.Message)
	assert.Equal(t, "items", ve.Details[0].Field)
}

func TestPriceCart_EmptyCart(t *testing.T) {
	_, err := PriceCart(nil, decimal.Zero, 0)
	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
}

func TestPriceCart_DiscountExceedsTotal(t *testing.T) {
	p, err := PriceCart([]CartItem{{Name: "Tea", UnitPrice: 1000, Quantity: 1}}, decimal.Zero, 5000)
	require.NoError(t, err)

	assert.Equal(t, int64(1000), p.Subtotal)
	assert.Equal(t, int64(0), p.TaxAmount)
	assert.Equal(t, int64(0), p.Total)
	assert.Equal(t, int64(5000), p.Discount)
}

func TestPriceCart_Sanitation(t *testing.T) {
	items := []CartItem{
		{Name: "   ", UnitPrice: 9999, Quantity: 9},
		{Name: "  Kebab ", UnitPrice: 8000, Quantity: 0},
		{Name: "Water", UnitPrice: -250, Quantity: -3},
		{Name: "Rice", UnitPrice: 2000, Quantity: 2, ProductID: int64Ptr(7)},
	}

	p, err := PriceCart(items, decimal.NewFromInt(-10), -300)
	require.NoError(t, err)

	require.Len(t, p.Items, 3)
	assert.Equal(t, "Kebab", p.Items[0].Name)
	assert.Equal(t, 1, p.Items[0].Quantity)
	assert.Equal(t, int64(0), p.Items[1].UnitPrice)
	assert.Equal(t, 1, p.Items[1].Quantity)
	assert.Equal(t, int64(7), *p.Items[2].ProductID)

	assert.True(t, p.TaxPct.IsZero())
	assert.Equal(t, int64(0), p.Discount)
	assert.Equal(t, int64(12000), p.Subtotal)
	assert.Equal(t, int64(0), p.TaxAmount)
	assert.Equal(t, int64(12000), p.Total)
}

func TestTaxAmount_Rounding(t *testing.T) {
	tests := []struct {
		name     string
		subtotal int64
		pct      string
		want     int64
	}{
		{name: "exact", subtotal: 15000, pct: "5", want: 750},
		{name: "half rounds up", subtotal: 10, pct: "5", want: 1},
		{name: "below half rounds down", subtotal: 9, pct: "5", want: 0},
		{name: "fractional pct", subtotal: 1000, pct: "2.5", want: 25},
		{name: "fractional half", subtotal: 1100, pct: "0.5", want: 6},
		{name: "zero pct", subtotal: 5000, pct: "0", want: 0},
		{name: "zero subtotal", subtotal: 0, pct: "15", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TaxAmount(tt.subtotal, decimal.RequireFromString(tt.pct)))
		})
	}
}

func TestPriceCart_Invariants(t *testing.T) {
	carts := [][]CartItem{
		{{Name: "A", UnitPrice: 1, Quantity: 1}},
		{{Name: "A", UnitPrice: 333, Quantity: 3}, {Name: "B", UnitPrice: 17, Quantity: 11}},
		{{Name: "A", UnitPrice: 250000, Quantity: 40}, {Name: "", UnitPrice: 5, Quantity: 5}},
	}
	pcts := []string{"0", "5", "7.25", "15"}
	discounts := []int64{0, 10, 1000000000}

	for _, cart := range carts {
		for _, pct := range pcts {
			for _, disc := range discounts {
				p, err := PriceCart(cart, decimal.RequireFromString(pct), disc)
				require.NoError(t, err)

				var sum int64
				for _, it := range p.Items {
					assert.Equal(t, it.UnitPrice*int64(it.Quantity), it.LineTotal)
					sum += it.LineTotal
				}
				assert.Equal(t, sum, p.Subtotal)

				want := p.Subtotal + p.TaxAmount - p.Discount
				if want < 0 {
					want = 0
				}
				assert.Equal(t, want, p.Total)
				assert.GreaterOrEqual(t, p.Total, int64(0))
			}
		}
	}
}

func TestPriceCart_Idempotent(t *testing.T) {
	items := []CartItem{
		{Name: " Falafel ", UnitPrice: 1750, Quantity: 3},
		{Name: "", UnitPrice: 100, Quantity: 1},
		{Name: "Juice", UnitPrice: -1, Quantity: 0},
	}
	pct := decimal.RequireFromString("7.5")

	first, err := PriceCart(items, pct, 120)
	require.NoError(t, err)

	second, err := PriceCart(first.CartItems(), pct, 120)
	require.NoError(t, err)

	assert.Equal(t, first.Subtotal, second.Subtotal)
	assert.Equal(t, first.TaxAmount, second.TaxAmount)
	assert.Equal(t, first.Total, second.Total)
	assert.Equal(t, first.Items, second.Items)
}

func TestDropBlankItems(t *testing.T) {
	kept := DropBlankItems([]CartItem{{Name: "a"}, {Name: " "}, {Name: "\t"}, {Name: "b"}})
	require.Len(t, kept, 2)
	assert.Equal(t, "a", kept[0].Name)
	assert.Equal(t, "b", kept[1].Name)
}

func TestPriceCart_LineTotalOverflowRejected(t *testing.T) {
	p, err := PriceCart([]CartItem{{Name: "X", UnitPrice: 1 << 62, Quantity: 4}}, decimal.Zero, 0)
	assert.Nil(t, p)

	ve, ok := apperrors.IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "items", ve.Details[0].Field)
}

func TestPriceCart_SubtotalOverflowRejected(t *testing.T) {
	items := []CartItem{
		{Name: "A", UnitPrice: math.MaxInt64 / 2, Quantity: 1},
		{Name: "B", UnitPrice: math.MaxInt64 / 2, Quantity: 1},
		{Name: "C", UnitPrice: 2, Quantity: 1},
	}

	_, err := PriceCart(items, decimal.Zero, 0)

	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
}

func TestPriceCart_TaxOverflowRejected(t *testing.T) {
	_, err := PriceCart([]CartItem{{Name: "X", UnitPrice: math.MaxInt64 - 10, Quantity: 1}}, decimal.NewFromInt(5), 0)

	ve, ok := apperrors.IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "taxPct", ve.Details[0].Field)
}

func TestPriceCart_QuantityAboveColumnRangeRejected(t *testing.T) {
	_, err := PriceCart([]CartItem{{Name: "X", UnitPrice: 1, Quantity: MaxQuantity + 1}}, decimal.Zero, 0)

	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
}

func TestPriceCart_LargestAmountsStillPrice(t *testing.T) {
	p, err := PriceCart([]CartItem{{Name: "X", UnitPrice: math.MaxInt64, Quantity: 1}}, decimal.Zero, 0)
	require.NoError(t, err)

	assert.Equal(t, int64(math.MaxInt64), p.Total)
}

func TestPriceCart_TaxPctRoundedToStoredScale(t *testing.T) {
	p, err := PriceCart([]CartItem{{Name: "X", UnitPrice: 100000, Quantity: 1}}, decimal.RequireFromString("5.125"), 0)
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("5.13").Equal(p.TaxPct))
	assert.Equal(t, int64(5130), p.TaxAmount)
	assert.Equal(t, TaxAmount(p.Subtotal, p.TaxPct), p.TaxAmount)
}

func TestHasTaxPctScale(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{in: "5", want: true},
		{in: "2.5", want: true},
		{in: "5.100", want: true},
		{in: "5.125", want: false},
		{in: "0.001", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, HasTaxPctScale(decimal.RequireFromString(tt.in)))
		})
	}
}
