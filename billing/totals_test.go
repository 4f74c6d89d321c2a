package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoLineCart() []Item {
	return []Item{
		{
			VariantID:    "a",
			BrandName:    "Dolo",
			Dosage:       "650MG",
			SellingPrice: 100.00,
			Quantity:     2,
			Available:    10,
			GSTRate:      5,
			HSNCode:      "3004",
		},
		{
			VariantID:    "b",
			BrandName:    "Benadryl",
			Dosage:       "100ML",
			SellingPrice: 50.00,
			Quantity:     1,
			Available:    10,
			GSTRate:      12,
			HSNCode:      "3004",
		},
	}
}

func TestComputeApportionsDiscountAndBacksOutTax(t *testing.T) {
	totals, err := Compute(twoLineCart(), 20.00, true)
	require.NoError(t, err)

	assert.Equal(t, 250.00, totals.SubTotal)
	assert.Equal(t, 20.00, totals.DiscountAmount)
	assert.Equal(t, 230.00, totals.TotalAmount)

	require.Len(t, totals.Lines, 2)

	a := totals.Lines[0]
	assert.Equal(t, 200.00, a.LineTotal)
	assert.Equal(t, 16.00, a.DiscountAmount)
	assert.Equal(t, 175.24, a.TaxableValue)
	assert.Equal(t, 4.38, a.CGSTAmount)
	assert.Equal(t, 4.38, a.SGSTAmount)

	// 46.00 net, 12% GST: tax 4.93, half 2.465 rounds up (half away from zero).
	b := totals.Lines[1]
	assert.Equal(t, 50.00, b.LineTotal)
	assert.Equal(t, 4.00, b.DiscountAmount)
	assert.Equal(t, 41.07, b.TaxableValue)
	assert.Equal(t, 2.47, b.CGSTAmount)
	assert.Equal(t, 2.47, b.SGSTAmount)

	assert.Equal(t, 216.31, totals.TaxableAmount)
	assert.Equal(t, 6.85, totals.CGSTTotal)
	assert.Equal(t, 6.85, totals.SGSTTotal)
}

func TestComputeGrandTotalIsSubtotalMinusDiscount(t *testing.T) {
	carts := []struct {
		name     string
		items    []Item
		discount float64
	}{
		{"no discount", twoLineCart(), 0},
		{"odd discount", twoLineCart(), 33.33},
		{"single line", []Item{{VariantID: "a", BrandName: "X", SellingPrice: 17.77, Quantity: 3, Available: 5, GSTRate: 18}}, 5.55},
	}

	for _, tc := range carts {
		t.Run(tc.name, func(t *testing.T) {
			totals, err := Compute(tc.items, tc.discount, false)
			require.NoError(t, err)
			assert.InDelta(t, totals.SubTotal-tc.discount, totals.TotalAmount, 0.005)
		})
	}
}

func TestComputeDiscountSharesSumWithinTolerance(t *testing.T) {
	items := []Item{
		{VariantID: "a", BrandName: "A", SellingPrice: 33.33, Quantity: 3, Available: 9, GSTRate: 5},
		{VariantID: "b", BrandName: "B", SellingPrice: 12.49, Quantity: 7, Available: 9, GSTRate: 12},
		{VariantID: "c", BrandName: "C", SellingPrice: 101.01, Quantity: 1, Available: 9, GSTRate: 18},
	}
	discount := 47.50

	totals, err := Compute(items, discount, false)
	require.NoError(t, err)

	sum := 0.0
	for _, line := range totals.Lines {
		sum += line.DiscountAmount
	}
	// Per-line rounding can drift by at most one paisa per line.
	assert.InDelta(t, discount, sum, 0.01*float64(len(items))+1e-9)
}

func TestComputePreviewAndCommitProduceIdenticalTotals(t *testing.T) {
	preview, err := Compute(twoLineCart(), 20.00, false)
	require.NoError(t, err)
	commit, err := Compute(twoLineCart(), 20.00, true)
	require.NoError(t, err)

	assert.Equal(t, preview, commit)
}

func TestComputeRejectsInsufficientStockOnCommitOnly(t *testing.T) {
	items := twoLineCart()
	items[0].Available = 1

	_, err := Compute(items, 0, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Dolo 650MG")
	assert.Contains(t, err.Error(), "Available: 1")
	assert.Contains(t, err.Error(), "Requested: 2")

	// Preview ignores stock entirely.
	_, err = Compute(items, 0, false)
	assert.NoError(t, err)
}

func TestComputeRejectsNonPositiveQuantity(t *testing.T) {
	items := twoLineCart()
	items[1].Quantity = 0

	_, err := Compute(items, 0, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quantity greater than 0")
}

func TestComputeCoercesNegativeDiscountToZero(t *testing.T) {
	totals, err := Compute(twoLineCart(), -15.00, false)
	require.NoError(t, err)

	assert.Equal(t, 0.00, totals.DiscountAmount)
	assert.Equal(t, totals.SubTotal, totals.TotalAmount)
	for _, line := range totals.Lines {
		assert.Equal(t, 0.00, line.DiscountAmount)
	}
}

func TestComputeEmptyCartIsAllZeros(t *testing.T) {
	totals, err := Compute(nil, 10.00, true)
	require.NoError(t, err)

	assert.Empty(t, totals.Lines)
	assert.Equal(t, 0.00, totals.SubTotal)
	assert.Equal(t, 0.00, totals.TaxableAmount)
	// Degenerate carts apportion nothing, grand total still subtracts.
	assert.Equal(t, -10.00, totals.TotalAmount)
}

func TestComputeZeroRateLineIsFullyTaxable(t *testing.T) {
	items := []Item{{VariantID: "a", BrandName: "ORS", SellingPrice: 25.00, Quantity: 2, Available: 4, GSTRate: 0}}

	totals, err := Compute(items, 0, true)
	require.NoError(t, err)

	line := totals.Lines[0]
	assert.Equal(t, 50.00, line.LineTotal)
	assert.Equal(t, 50.00, line.TaxableValue)
	assert.Equal(t, 0.00, line.CGSTAmount)
	assert.Equal(t, 0.00, line.SGSTAmount)
}
