package controllers

import (
	"testing"
	"time"

	"backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFormatInvoiceNumber(t *testing.T) {
	date := time.Date(2025, 2, 5, 14, 30, 0, 0, time.UTC)

	assert.Equal(t, "INV-20250205-0001", formatInvoiceNumber(date, 1))
	assert.Equal(t, "INV-20250205-0042", formatInvoiceNumber(date, 42))
	assert.Equal(t, "INV-20250205-9999", formatInvoiceNumber(date, 9999))
	// Sequence overflowing four digits widens instead of truncating.
	assert.Equal(t, "INV-20250205-10000", formatInvoiceNumber(date, 10000))
}

func TestBuildInvoiceListFilterDateRangeIsWholeDays(t *testing.T) {
	filter, err := buildInvoiceListFilter("2025-02-01", "2025-02-28", "", "")
	require.NoError(t, err)

	dateFilter, ok := filter["invoiceDate"].(bson.M)
	require.True(t, ok)

	start := dateFilter["$gte"].(time.Time)
	end := dateFilter["$lte"].(time.Time)

	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 2, 28, 23, 59, 59, 999000000, time.UTC), end)
}

func TestBuildInvoiceListFilterOpenEndedRanges(t *testing.T) {
	filter, err := buildInvoiceListFilter("2025-02-01", "", "", "")
	require.NoError(t, err)
	dateFilter := filter["invoiceDate"].(bson.M)
	assert.Contains(t, dateFilter, "$gte")
	assert.NotContains(t, dateFilter, "$lte")

	filter, err = buildInvoiceListFilter("", "2025-02-28", "", "")
	require.NoError(t, err)
	dateFilter = filter["invoiceDate"].(bson.M)
	assert.Contains(t, dateFilter, "$lte")
	assert.NotContains(t, dateFilter, "$gte")
}

func TestBuildInvoiceListFilterSubstringMatchesAreCaseInsensitive(t *testing.T) {
	filter, err := buildInvoiceListFilter("", "", "  Sharma ", "inv-2025")
	require.NoError(t, err)

	name, ok := filter["customerName"].(primitive.Regex)
	require.True(t, ok)
	assert.Equal(t, "Sharma", name.Pattern)
	assert.Equal(t, "i", name.Options)

	number, ok := filter["invoiceNumber"].(primitive.Regex)
	require.True(t, ok)
	assert.Equal(t, "inv-2025", number.Pattern)
	assert.Equal(t, "i", number.Options)
}

func TestBuildInvoiceListFilterEmptyInputsProduceEmptyFilter(t *testing.T) {
	filter, err := buildInvoiceListFilter("", "", "", "")
	require.NoError(t, err)
	assert.Empty(t, filter)
}

func TestBuildInvoiceListFilterRejectsMalformedDates(t *testing.T) {
	_, err := buildInvoiceListFilter("05-02-2025", "", "", "")
	assert.Error(t, err)

	_, err = buildInvoiceListFilter("", "not-a-date", "", "")
	assert.Error(t, err)
}

func TestBillingItemsForCartUsesParentMedicineTaxFields(t *testing.T) {
	medicineID := primitive.NewObjectID()
	variantID := primitive.NewObjectID()
	rate := 12.0

	items := []models.CartItem{{MedicineVariantID: variantID.Hex(), Quantity: 3}}
	variantMap := map[primitive.ObjectID]models.MedicineVariant{
		variantID: {ID: variantID, Medicine: medicineID, BrandName: "AUGMENTIN", Dosage: "625MG", SellingPrice: 204.50, Quantity: 40},
	}
	medicineMap := map[primitive.ObjectID]models.Medicine{
		medicineID: {ID: medicineID, GSTRate: &rate, HSNCode: "3003"},
	}

	got := billingItemsForCart(items, []primitive.ObjectID{variantID}, variantMap, medicineMap)
	require.Len(t, got, 1)
	assert.Equal(t, 12.0, got[0].GSTRate)
	assert.Equal(t, "3003", got[0].HSNCode)
	assert.Equal(t, 3, got[0].Quantity)
	assert.Equal(t, 40, got[0].Available)
}

func TestBillingItemsForCartDefaultsOnlyForDanglingMedicine(t *testing.T) {
	variantID := primitive.NewObjectID()

	items := []models.CartItem{{MedicineVariantID: variantID.Hex(), Quantity: 1}}
	variantMap := map[primitive.ObjectID]models.MedicineVariant{
		// Parent medicine reference points at a document that no longer exists.
		variantID: {ID: variantID, Medicine: primitive.NewObjectID(), BrandName: "DOLO", Dosage: "650MG"},
	}

	got := billingItemsForCart(items, []primitive.ObjectID{variantID}, variantMap, map[primitive.ObjectID]models.Medicine{})
	require.Len(t, got, 1)
	assert.Equal(t, models.DefaultGSTRate, got[0].GSTRate)
	assert.Equal(t, models.DefaultHSNCode, got[0].HSNCode)
}

func TestStockFailureDetail(t *testing.T) {
	assert.Equal(t,
		"Stock reduction failed for DOLO 650MG: insufficient stock",
		stockFailureDetail("DOLO", "650MG", false))
	assert.Equal(t,
		"Stock reduction failed for DOLO 650MG: variant no longer exists",
		stockFailureDetail("DOLO", "650MG", true))
}

func TestParseExpiryDatePinsToUTCMidnight(t *testing.T) {
	parsed, err := parseExpiryDate("2026-04-02")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC), parsed)

	// A full timestamp keeps its calendar day, time of day is dropped.
	parsed, err = parseExpiryDate("2026-04-02T18:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC), parsed)

	_, err = parseExpiryDate("02/04/2026")
	assert.Error(t, err)
}
