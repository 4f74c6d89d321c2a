package controllers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"backend/billing"
	"backend/config"
	"backend/middleware"
	"backend/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// resolveCartItems loads the referenced variants and their parent medicines
// and turns the cart into billing items. A missing or duplicated reference
// surfaces as a single "not found" error, same as a count mismatch on the
// $in fetch.
func resolveCartItems(ctx context.Context, items []models.CartItem) ([]billing.Item, error) {
	variantIDs := make([]primitive.ObjectID, 0, len(items))
	for _, item := range items {
		objID, err := primitive.ObjectIDFromHex(item.MedicineVariantID)
		if err != nil {
			return nil, fmt.Errorf("medicine variant %s not found", item.MedicineVariantID)
		}
		variantIDs = append(variantIDs, objID)
	}

	cursor, err := config.MedicineVariantCollection.Find(ctx, bson.M{"_id": bson.M{"$in": variantIDs}})
	if err != nil {
		return nil, fmt.Errorf("failed to load medicine variants")
	}
	var variants []models.MedicineVariant
	if err = cursor.All(ctx, &variants); err != nil {
		return nil, fmt.Errorf("failed to load medicine variants")
	}

	if len(variants) != len(variantIDs) {
		return nil, fmt.Errorf("one or more medicine variants not found")
	}

	variantMap := make(map[primitive.ObjectID]models.MedicineVariant, len(variants))
	medicineIDs := make([]primitive.ObjectID, 0, len(variants))
	for _, v := range variants {
		variantMap[v.ID] = v
		medicineIDs = append(medicineIDs, v.Medicine)
	}

	// A fetch failure here must fail the request: falling back to default
	// tax figures on a transient error would commit a mispriced invoice.
	medCursor, err := config.MedicineCollection.Find(ctx, bson.M{"_id": bson.M{"$in": medicineIDs}})
	if err != nil {
		return nil, fmt.Errorf("failed to load medicines")
	}
	var medicines []models.Medicine
	if err = medCursor.All(ctx, &medicines); err != nil {
		return nil, fmt.Errorf("failed to load medicines")
	}
	medicineMap := make(map[primitive.ObjectID]models.Medicine, len(medicines))
	for _, m := range medicines {
		medicineMap[m.ID] = m
	}

	return billingItemsForCart(items, variantIDs, variantMap, medicineMap), nil
}

// billingItemsForCart snapshots resolved variants into billing items. GST rate
// and HSN code come from the parent medicine; only a genuinely dangling
// medicine reference falls back to the defaults.
func billingItemsForCart(
	items []models.CartItem,
	variantIDs []primitive.ObjectID,
	variantMap map[primitive.ObjectID]models.MedicineVariant,
	medicineMap map[primitive.ObjectID]models.Medicine,
) []billing.Item {
	resolved := make([]billing.Item, 0, len(items))
	for i, item := range items {
		variant := variantMap[variantIDs[i]]

		gstRate := models.DefaultGSTRate
		hsnCode := models.DefaultHSNCode
		if med, ok := medicineMap[variant.Medicine]; ok {
			if med.GSTRate != nil {
				gstRate = *med.GSTRate
			}
			if med.HSNCode != "" {
				hsnCode = med.HSNCode
			}
		}

		resolved = append(resolved, billing.Item{
			VariantID:    variant.ID.Hex(),
			BrandName:    variant.BrandName,
			Dosage:       variant.Dosage,
			BatchNumber:  variant.BatchNumber,
			ExpiryDate:   variant.ExpiryDate,
			SellingPrice: variant.SellingPrice,
			Quantity:     item.Quantity,
			Available:    variant.Quantity,
			GSTRate:      gstRate,
			HSNCode:      hsnCode,
		})
	}
	return resolved
}

func formatInvoiceNumber(date time.Time, seq int) string {
	return fmt.Sprintf("INV-%s-%04d", date.Format("20060102"), seq)
}

// nextInvoiceNumber assigns the date-scoped sequence atomically through a
// per-day counter document. The unique index on invoiceNumber stays as the
// backstop in case a counter document is ever reset by hand.
func nextInvoiceNumber(ctx context.Context, date time.Time) (string, error) {
	counterID := "invoice-" + date.Format("20060102")

	var counter models.Counter
	err := config.CounterCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": counterID},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return "", err
	}

	return formatInvoiceNumber(date, counter.Seq), nil
}

func invoiceItemsFromLines(lines []billing.Line) []models.InvoiceItem {
	items := make([]models.InvoiceItem, 0, len(lines))
	for _, line := range lines {
		variantID, _ := primitive.ObjectIDFromHex(line.VariantID)
		items = append(items, models.InvoiceItem{
			MedicineVariant: variantID,
			BrandName:       line.BrandName,
			HSNCode:         line.HSNCode,
			Dosage:          line.Dosage,
			BatchNumber:     line.BatchNumber,
			ExpiryDate:      line.ExpiryDate,
			SellingPrice:    line.SellingPrice,
			Quantity:        line.Quantity,
			LineTotal:       line.LineTotal,
			DiscountAmount:  line.DiscountAmount,
			TaxableValue:    line.TaxableValue,
			GSTRate:         line.GSTRate,
			CGSTAmount:      line.CGSTAmount,
			SGSTAmount:      line.SGSTAmount,
		})
	}
	return items
}

type decrementedLine struct {
	variantID primitive.ObjectID
	quantity  int
}

// stockFailureDetail names why a conditional decrement matched nothing: the
// variant vanished mid-commit, or a concurrent sale consumed the stock.
func stockFailureDetail(brandName, dosage string, variantMissing bool) string {
	if variantMissing {
		return fmt.Sprintf("Stock reduction failed for %s %s: variant no longer exists", brandName, dosage)
	}
	return fmt.Sprintf("Stock reduction failed for %s %s: insufficient stock", brandName, dosage)
}

// rollbackCommit reverses whatever the failed commit managed to do: puts the
// already-decremented quantities back, then deletes the invoice record.
// Both halves are best-effort, a failure here is logged and the store may be
// left inconsistent.
func rollbackCommit(ctx context.Context, invoiceID primitive.ObjectID, decremented []decrementedLine) {
	for _, d := range decremented {
		_, err := config.MedicineVariantCollection.UpdateOne(ctx,
			bson.M{"_id": d.variantID},
			bson.M{"$inc": bson.M{"quantity": d.quantity}})
		if err != nil {
			log.Printf("Rollback: failed to restore %d units to variant %s: %v", d.quantity, d.variantID.Hex(), err)
		}
	}

	_, err := config.InvoiceCollection.DeleteOne(ctx, bson.M{"_id": invoiceID})
	if err != nil {
		log.Printf("Rollback: could not delete invoice %s after stock error: %v", invoiceID.Hex(), err)
	}
}

// CreateInvoice handles POST /api/invoices. Validation and totals first, then
// persist the invoice, then decrement stock per line with an atomic
// decrement-if-sufficient write. There is no multi-document transaction on a
// standalone deployment, so a decrement failure triggers a compensating
// rollback and the request fails.
func CreateInvoice(c *gin.Context) {
	var input models.CreateInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	if len(input.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "items array is required"})
		return
	}
	if !models.IsValidPaymentMode(input.PaymentMode) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "paymentMode must be Cash, Card, or UPI"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resolved, err := resolveCartItems(ctx, input.Items)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	totals, err := billing.Compute(resolved, input.DiscountAmount, true)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	now := time.Now()
	invoiceNumber, err := nextInvoiceNumber(ctx, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to generate invoice number"})
		return
	}

	invoice := models.Invoice{
		ID:             primitive.NewObjectID(),
		InvoiceNumber:  invoiceNumber,
		InvoiceDate:    now,
		CustomerName:   strings.TrimSpace(input.CustomerName),
		DoctorName:     strings.TrimSpace(input.DoctorName),
		Items:          invoiceItemsFromLines(totals.Lines),
		SubTotal:       totals.SubTotal,
		DiscountAmount: totals.DiscountAmount,
		TaxableAmount:  totals.TaxableAmount,
		CGST:           totals.CGSTTotal,
		SGST:           totals.SGSTTotal,
		TotalAmount:    totals.TotalAmount,
		PaymentMode:    input.PaymentMode,
		ViewToken:      uuid.NewString(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	_, err = config.InvoiceCollection.InsertOne(ctx, invoice)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Invoice number collision, please retry"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to save invoice"})
		return
	}

	// Step-1 validation already passed, but nothing holds the stock between
	// validation and this loop. The quantity filter makes each decrement
	// conditional so a concurrent sale cannot push a variant negative.
	decremented := make([]decrementedLine, 0, len(invoice.Items))
	for _, item := range invoice.Items {
		res, err := config.MedicineVariantCollection.UpdateOne(ctx,
			bson.M{"_id": item.MedicineVariant, "quantity": bson.M{"$gte": item.Quantity}},
			bson.M{
				"$inc": bson.M{"quantity": -item.Quantity},
				"$set": bson.M{"updatedAt": time.Now()},
			})
		if err != nil || res.MatchedCount == 0 {
			detail := fmt.Sprintf("Stock reduction failed for %s %s", item.BrandName, item.Dosage)
			if err == nil {
				count, countErr := config.MedicineVariantCollection.CountDocuments(ctx, bson.M{"_id": item.MedicineVariant})
				detail = stockFailureDetail(item.BrandName, item.Dosage, countErr == nil && count == 0)
			}
			rollbackCommit(ctx, invoice.ID, decremented)
			middleware.InvoiceRollbacksTotal.Inc()
			c.JSON(http.StatusInternalServerError, gin.H{"detail": detail})
			return
		}
		decremented = append(decremented, decrementedLine{variantID: item.MedicineVariant, quantity: item.Quantity})
	}

	for _, item := range invoice.Items {
		var variant models.MedicineVariant
		err := config.MedicineVariantCollection.FindOne(ctx, bson.M{"_id": item.MedicineVariant}).Decode(&variant)
		if err != nil {
			log.Printf("Low stock check: could not reload variant %s: %v", item.MedicineVariant.Hex(), err)
			continue
		}
		checkLowStock(ctx, &variant)
	}

	middleware.InvoicesCreatedTotal.Inc()
	c.JSON(http.StatusCreated, invoice)
}

// PreviewInvoice handles POST /api/invoices/preview. Same totals as create,
// no stock check, nothing persisted.
func PreviewInvoice(c *gin.Context) {
	var input models.PreviewInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	if len(input.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "items array is required"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resolved, err := resolveCartItems(ctx, input.Items)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	totals, err := billing.Compute(resolved, input.DiscountAmount, false)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, totals)
}

// buildInvoiceListFilter turns the list query parameters into a Mongo filter.
// Date bounds are inclusive whole days, name and number match as
// case-insensitive substrings.
func buildInvoiceListFilter(fromDate, toDate, customerName, invoiceNumber string) (bson.M, error) {
	filter := bson.M{}

	if fromDate != "" || toDate != "" {
		dateFilter := bson.M{}
		if fromDate != "" {
			start, err := time.Parse("2006-01-02", fromDate)
			if err != nil {
				return nil, fmt.Errorf("invalid fromDate, expected YYYY-MM-DD")
			}
			dateFilter["$gte"] = start
		}
		if toDate != "" {
			end, err := time.Parse("2006-01-02", toDate)
			if err != nil {
				return nil, fmt.Errorf("invalid toDate, expected YYYY-MM-DD")
			}
			dateFilter["$lte"] = end.Add(24*time.Hour - time.Millisecond)
		}
		filter["invoiceDate"] = dateFilter
	}

	if name := strings.TrimSpace(customerName); name != "" {
		filter["customerName"] = primitive.Regex{Pattern: name, Options: "i"}
	}
	if number := strings.TrimSpace(invoiceNumber); number != "" {
		filter["invoiceNumber"] = primitive.Regex{Pattern: number, Options: "i"}
	}

	return filter, nil
}

// ListInvoices handles GET /api/invoices with optional date range, customer
// and number filters. Returns the summary projection only.
func ListInvoices(c *gin.Context) {
	filter, err := buildInvoiceListFilter(
		c.Query("fromDate"),
		c.Query("toDate"),
		c.Query("customerName"),
		c.Query("invoiceNumber"),
	)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	order := -1
	if c.DefaultQuery("sort", "dateDesc") == "dateAsc" {
		order = 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "invoiceDate", Value: order}}).
		SetProjection(bson.M{
			"invoiceNumber": 1,
			"invoiceDate":   1,
			"customerName":  1,
			"totalAmount":   1,
			"paymentMode":   1,
		})

	cursor, err := config.InvoiceCollection.Find(ctx, filter, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to fetch invoices"})
		return
	}
	defer cursor.Close(ctx)

	invoices := []models.InvoiceSummary{}
	if err = cursor.All(ctx, &invoices); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to decode invoices"})
		return
	}

	c.JSON(http.StatusOK, invoices)
}

// GetInvoiceByID handles GET /api/invoices/:id.
func GetInvoiceByID(c *gin.Context) {
	objID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid invoice ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var invoice models.Invoice
	err = config.InvoiceCollection.FindOne(ctx, bson.M{"_id": objID}).Decode(&invoice)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Invoice not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to fetch invoice"})
		}
		return
	}

	c.JSON(http.StatusOK, invoice)
}

// GetInvoiceByViewToken handles GET /invoice/:token, the unauthenticated
// fetch behind shared invoice links.
func GetInvoiceByViewToken(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Token is required"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var invoice models.Invoice
	err := config.InvoiceCollection.FindOne(ctx, bson.M{"viewToken": token}).Decode(&invoice)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Invoice not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to fetch invoice"})
		}
		return
	}

	c.JSON(http.StatusOK, invoice)
}
