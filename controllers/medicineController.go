package controllers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"backend/config"
	"backend/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// isLowStock reports whether a quantity has reached the restock threshold.
// The boundary is inclusive: quantity == minThreshold alerts.
func isLowStock(quantity, minThreshold int) bool {
	return quantity <= minThreshold
}

// checkLowStock records a restock alert when the variant sits at or below its
// minimum threshold. Best-effort: an insert failure is logged and never
// blocks the operation that triggered it.
func checkLowStock(ctx context.Context, variant *models.MedicineVariant) {
	if variant == nil {
		return
	}
	if !isLowStock(variant.Quantity, variant.MinThreshold) {
		return
	}

	_, err := config.LowStockNotificationCollection.InsertOne(ctx, models.LowStockNotification{
		MedicineVariant: variant.ID,
		BrandName:       variant.BrandName,
		Dosage:          variant.Dosage,
		Quantity:        variant.Quantity,
		MinThreshold:    variant.MinThreshold,
		CreatedAt:       time.Now(),
	})
	if err != nil {
		log.Printf("Low stock notification error for %s %s: %v", variant.BrandName, variant.Dosage, err)
	}
}

// AddOrGetMedicine handles POST /api/stock/medicines. Creates the generic
// medicine record if no exact name match exists, otherwise returns the
// existing one.
func AddOrGetMedicine(c *gin.Context) {
	var input struct {
		Name     string   `json:"name"`
		Category string   `json:"category"`
		HSNCode  string   `json:"hsnCode"`
		GSTRate  *float64 `json:"gstRate"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Medicine name is required"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var medicine models.Medicine
	err := config.MedicineCollection.FindOne(ctx, bson.M{"name": name}).Decode(&medicine)
	if err == nil {
		c.JSON(http.StatusCreated, medicine)
		return
	}
	if err != mongo.ErrNoDocuments {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to add medicine"})
		return
	}

	gstRate := input.GSTRate
	if gstRate == nil {
		rate := models.DefaultGSTRate
		gstRate = &rate
	}
	hsnCode := strings.TrimSpace(input.HSNCode)
	if hsnCode == "" {
		hsnCode = models.DefaultHSNCode
	}

	now := time.Now()
	medicine = models.Medicine{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Category:  strings.TrimSpace(input.Category),
		HSNCode:   hsnCode,
		GSTRate:   gstRate,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = config.MedicineCollection.InsertOne(ctx, medicine)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to add medicine"})
		return
	}

	c.JSON(http.StatusCreated, medicine)
}

// parseExpiryDate accepts a calendar date or a full timestamp and pins it to
// UTC midnight of that day, so the same batch entered from different
// timezones lands on the same expiry day.
func parseExpiryDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		parsed, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid expiryDate")
		}
	}
	return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC), nil
}

// AddMedicineVariant handles POST /api/stock/medicines/:medicineId/variants.
// A variant is identified by medicine + batch number + expiry day: when it
// already exists the posted quantity is added to it and prices are optionally
// refreshed, otherwise a new variant is created with strict validation.
func AddMedicineVariant(c *gin.Context) {
	medicineID, err := primitive.ObjectIDFromHex(c.Param("medicineId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid medicine ID"})
		return
	}

	var input models.AddVariantInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var medicine models.Medicine
	err = config.MedicineCollection.FindOne(ctx, bson.M{"_id": medicineID}).Decode(&medicine)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Medicine not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to add medicine variant"})
		}
		return
	}

	batchNumber := strings.TrimSpace(input.BatchNumber)
	if batchNumber == "" || input.ExpiryDate == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "batchNumber and expiryDate are required"})
		return
	}

	expiryDate, err := parseExpiryDate(input.ExpiryDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	endOfDay := expiryDate.Add(24*time.Hour - time.Millisecond)

	var variant models.MedicineVariant
	err = config.MedicineVariantCollection.FindOne(ctx, bson.M{
		"medicine":    medicineID,
		"batchNumber": batchNumber,
		"expiryDate":  bson.M{"$gte": expiryDate, "$lte": endOfDay},
	}).Decode(&variant)

	if err == nil {
		// Existing batch: top up quantity, refresh prices when provided.
		if input.Quantity != nil && *input.Quantity > 0 {
			variant.Quantity += *input.Quantity
		}
		if input.PurchasePrice != nil && *input.PurchasePrice >= 0 {
			variant.PurchasePrice = *input.PurchasePrice
		}
		if input.MRP != nil && *input.MRP >= 0 {
			variant.MRP = *input.MRP
		}
		if input.SellingPrice != nil && *input.SellingPrice >= 0 {
			variant.SellingPrice = *input.SellingPrice
		}
		if input.MinThreshold != nil && *input.MinThreshold >= 0 {
			variant.MinThreshold = *input.MinThreshold
		}
		variant.ExpiryDate = expiryDate
		variant.UpdatedAt = time.Now()

		if variant.SellingPrice > variant.MRP {
			c.JSON(http.StatusBadRequest, gin.H{
				"detail": fmt.Sprintf("Selling price (%.2f) cannot be greater than MRP (%.2f)", variant.SellingPrice, variant.MRP),
			})
			return
		}

		_, err = config.MedicineVariantCollection.UpdateOne(ctx,
			bson.M{"_id": variant.ID},
			bson.M{"$set": bson.M{
				"quantity":      variant.Quantity,
				"purchasePrice": variant.PurchasePrice,
				"mrp":           variant.MRP,
				"sellingPrice":  variant.SellingPrice,
				"minThreshold":  variant.MinThreshold,
				"expiryDate":    variant.ExpiryDate,
				"updatedAt":     variant.UpdatedAt,
			}})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to update medicine variant"})
			return
		}

		checkLowStock(ctx, &variant)
		c.JSON(http.StatusOK, gin.H{"updated": true, "created": false, "variant": variant})
		return
	}
	if err != mongo.ErrNoDocuments {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to add medicine variant"})
		return
	}

	// New batch: everything must be present and sane.
	if strings.TrimSpace(input.BrandName) == "" || strings.TrimSpace(input.Dosage) == "" ||
		input.Form == "" || strings.TrimSpace(input.Packing) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "brandName, dosage, form, packing are required for new stock"})
		return
	}
	if input.PurchasePrice == nil || input.MRP == nil || input.SellingPrice == nil || input.Quantity == nil ||
		*input.PurchasePrice < 0 || *input.MRP < 0 || *input.SellingPrice < 0 || *input.Quantity < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "purchasePrice, mrp, sellingPrice, and quantity must be numbers >= 0"})
		return
	}
	if *input.SellingPrice > *input.MRP {
		c.JSON(http.StatusBadRequest, gin.H{
			"detail": fmt.Sprintf("Selling price (%.2f) cannot be greater than MRP (%.2f)", *input.SellingPrice, *input.MRP),
		})
		return
	}

	minThreshold := 0
	if input.MinThreshold != nil && *input.MinThreshold > 0 {
		minThreshold = *input.MinThreshold
	}

	now := time.Now()
	variant = models.MedicineVariant{
		ID:            primitive.NewObjectID(),
		Medicine:      medicineID,
		BrandName:     strings.TrimSpace(input.BrandName),
		Dosage:        strings.TrimSpace(input.Dosage),
		Form:          input.Form,
		Packing:       strings.TrimSpace(input.Packing),
		BatchNumber:   batchNumber,
		ExpiryDate:    expiryDate,
		PurchasePrice: *input.PurchasePrice,
		MRP:           *input.MRP,
		SellingPrice:  *input.SellingPrice,
		Quantity:      *input.Quantity,
		MinThreshold:  minThreshold,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	_, err = config.MedicineVariantCollection.InsertOne(ctx, variant)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to add medicine variant"})
		return
	}

	checkLowStock(ctx, &variant)
	c.JSON(http.StatusCreated, gin.H{"updated": false, "created": true, "variant": variant})
}

// GetMedicinesWithVariants handles GET /api/stock/medicines-with-variants.
// Returns every medicine paired with its batches, for the inventory screen.
func GetMedicinesWithVariants(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	medCursor, err := config.MedicineCollection.Find(ctx, bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to fetch medicines and variants"})
		return
	}
	var medicines []models.Medicine
	if err = medCursor.All(ctx, &medicines); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to decode medicines"})
		return
	}

	varCursor, err := config.MedicineVariantCollection.Find(ctx, bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to fetch medicines and variants"})
		return
	}
	var variants []models.MedicineVariant
	if err = varCursor.All(ctx, &variants); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to decode variants"})
		return
	}

	variantsByMedicine := make(map[primitive.ObjectID][]models.MedicineVariant)
	for _, v := range variants {
		variantsByMedicine[v.Medicine] = append(variantsByMedicine[v.Medicine], v)
	}

	type medicineWithVariants struct {
		Medicine models.Medicine          `json:"medicine"`
		Variants []models.MedicineVariant `json:"variants"`
	}

	result := make([]medicineWithVariants, 0, len(medicines))
	for _, m := range medicines {
		vs := variantsByMedicine[m.ID]
		if vs == nil {
			vs = []models.MedicineVariant{}
		}
		result = append(result, medicineWithVariants{Medicine: m, Variants: vs})
	}

	c.JSON(http.StatusOK, result)
}

// UpdateStockQuantity handles PATCH /api/stock/variants/:variantId/quantity.
// Sets the absolute quantity; negative values are rejected, quantities never
// go below zero.
func UpdateStockQuantity(c *gin.Context) {
	variantID, err := primitive.ObjectIDFromHex(c.Param("variantId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid variant ID"})
		return
	}

	var input struct {
		Quantity *int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if input.Quantity == nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "quantity is required"})
		return
	}
	if *input.Quantity < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "quantity cannot be negative"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var variant models.MedicineVariant
	err = config.MedicineVariantCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": variantID},
		bson.M{"$set": bson.M{"quantity": *input.Quantity, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&variant)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Variant not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to update stock quantity"})
		}
		return
	}

	checkLowStock(ctx, &variant)
	c.JSON(http.StatusOK, variant)
}

// ReduceStockOnSale handles POST /api/stock/variants/:variantId/reduce, the
// manual sale path outside the invoice flow. The decrement is conditional on
// sufficient stock so concurrent sales cannot oversell the batch.
func ReduceStockOnSale(c *gin.Context) {
	variantID, err := primitive.ObjectIDFromHex(c.Param("variantId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid variant ID"})
		return
	}

	var input struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if input.Quantity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "quantity must be a positive number"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var variant models.MedicineVariant
	err = config.MedicineVariantCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": variantID, "quantity": bson.M{"$gte": input.Quantity}},
		bson.M{"$inc": bson.M{"quantity": -input.Quantity}, "$set": bson.M{"updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&variant)
	if err == mongo.ErrNoDocuments {
		// Either the variant does not exist or it has too little stock.
		count, countErr := config.MedicineVariantCollection.CountDocuments(ctx, bson.M{"_id": variantID})
		if countErr == nil && count == 0 {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Variant not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Insufficient stock for this sale"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to reduce stock"})
		return
	}

	checkLowStock(ctx, &variant)
	c.JSON(http.StatusOK, variant)
}
