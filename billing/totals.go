// Package billing holds the invoice totals math: GST apportionment and the
// reverse tax calculation for tax-inclusive selling prices. Pure functions,
// no storage access, so the money logic stays unit-testable.
package billing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Item is a cart line already resolved against the stock collection. The
// caller snapshots the variant fields here; Available carries the live stock
// quantity for commit-mode validation.
type Item struct {
	VariantID    string
	BrandName    string
	Dosage       string
	BatchNumber  string
	ExpiryDate   time.Time
	SellingPrice float64
	Quantity     int
	Available    int
	GSTRate      float64
	HSNCode      string
}

// Line is the computed breakdown for one item. Selling prices are
// tax-inclusive, so TaxableValue is backed out of the discounted line amount
// and the tax is the difference, split evenly into CGST and SGST.
type Line struct {
	VariantID      string    `json:"medicineVariantId"`
	BrandName      string    `json:"brandName"`
	Dosage         string    `json:"dosage"`
	BatchNumber    string    `json:"batchNumber"`
	ExpiryDate     time.Time `json:"expiryDate"`
	SellingPrice   float64   `json:"sellingPrice"`
	Quantity       int       `json:"quantity"`
	LineTotal      float64   `json:"lineTotal"`
	DiscountAmount float64   `json:"discountAmount"`
	TaxableValue   float64   `json:"taxableValue"`
	GSTRate        float64   `json:"gstRate"`
	HSNCode        string    `json:"hsnCode"`
	CGSTAmount     float64   `json:"cgstAmount"`
	SGSTAmount     float64   `json:"sgstAmount"`
}

// Totals is the full breakdown for a cart. TotalAmount is always
// round2(SubTotal - DiscountAmount); the tax aggregates are informational
// decompositions of that same amount, not inputs to it.
type Totals struct {
	Lines          []Line  `json:"items"`
	SubTotal       float64 `json:"subTotal"`
	DiscountAmount float64 `json:"discountAmount"`
	TaxableAmount  float64 `json:"taxableAmount"`
	CGSTTotal      float64 `json:"cgst"`
	SGSTTotal      float64 `json:"sgst"`
	TotalAmount    float64 `json:"totalAmount"`
}

var oneHundred = decimal.NewFromInt(100)

// round2 rounds half away from zero to two decimal places, which is the
// half-up behaviour the invoice contract requires at every step.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Compute turns resolved cart lines plus a flat discount into the itemized
// totals breakdown. A negative discount is coerced to zero. When
// validateStock is set, each line's requested quantity must not exceed the
// available quantity; preview mode passes false and everything else is
// identical.
//
// Rounding happens independently at four steps per line (line total,
// discount share, taxable value, tax split). Aggregates are sums of the
// already-rounded per-line values. cgst+sgst may differ from the line tax by
// up to one paisa; that residue is accepted, not corrected.
func Compute(items []Item, discountAmount float64, validateStock bool) (*Totals, error) {
	discount := decimal.NewFromFloat(discountAmount)
	if discount.IsNegative() {
		discount = decimal.Zero
	}

	lines := make([]Line, 0, len(items))
	subTotal := decimal.Zero

	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("each item must have a quantity greater than 0")
		}
		if validateStock && it.Available < it.Quantity {
			return nil, fmt.Errorf("insufficient stock for %s %s. Available: %d, Requested: %d",
				it.BrandName, it.Dosage, it.Available, it.Quantity)
		}

		lineTotal := round2(decimal.NewFromFloat(it.SellingPrice).Mul(decimal.NewFromInt(int64(it.Quantity))))
		subTotal = subTotal.Add(lineTotal)

		lines = append(lines, Line{
			VariantID:    it.VariantID,
			BrandName:    it.BrandName,
			Dosage:       it.Dosage,
			BatchNumber:  it.BatchNumber,
			ExpiryDate:   it.ExpiryDate,
			SellingPrice: it.SellingPrice,
			Quantity:     it.Quantity,
			LineTotal:    lineTotal.InexactFloat64(),
			GSTRate:      it.GSTRate,
			HSNCode:      it.HSNCode,
		})
	}

	taxableSum := decimal.Zero
	cgstSum := decimal.Zero
	sgstSum := decimal.Zero

	for i := range lines {
		lineTotal := decimal.NewFromFloat(lines[i].LineTotal)

		lineDiscount := decimal.Zero
		if subTotal.IsPositive() {
			lineDiscount = round2(lineTotal.Mul(discount).Div(subTotal))
		}

		netLineAmount := lineTotal.Sub(lineDiscount)

		// Selling price includes GST, back out the pre-tax base.
		divisor := decimal.NewFromInt(1).Add(decimal.NewFromFloat(lines[i].GSTRate).Div(oneHundred))
		taxableValue := round2(netLineAmount.Div(divisor))

		totalTax := round2(netLineAmount.Sub(taxableValue))
		halfTax := round2(totalTax.Div(decimal.NewFromInt(2)))

		lines[i].DiscountAmount = lineDiscount.InexactFloat64()
		lines[i].TaxableValue = taxableValue.InexactFloat64()
		lines[i].CGSTAmount = halfTax.InexactFloat64()
		lines[i].SGSTAmount = halfTax.InexactFloat64()

		taxableSum = taxableSum.Add(taxableValue)
		cgstSum = cgstSum.Add(halfTax)
		sgstSum = sgstSum.Add(halfTax)
	}

	return &Totals{
		Lines:          lines,
		SubTotal:       round2(subTotal).InexactFloat64(),
		DiscountAmount: discount.InexactFloat64(),
		TaxableAmount:  round2(taxableSum).InexactFloat64(),
		CGSTTotal:      round2(cgstSum).InexactFloat64(),
		SGSTTotal:      round2(sgstSum).InexactFloat64(),
		TotalAmount:    round2(subTotal.Sub(discount)).InexactFloat64(),
	}, nil
}
