package controllers

import (
	"context"
	"net/http"
	"regexp"
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

// SearchMedicines handles GET /api/medicines/search?q=. Case-insensitive
// partial match on brand name against the imported master catalogue, capped
// at 10 alphabetical results. Empty query returns an empty list.
func SearchMedicines(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusOK, []models.MedicineMaster{})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "brandName", Value: 1}}).
		SetLimit(10).
		SetProjection(bson.M{"brandName": 1, "dosage": 1, "form": 1, "packing": 1})

	cursor, err := config.MedicineMasterCollection.Find(ctx,
		bson.M{"brandName": primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}}, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to search medicines"})
		return
	}
	defer cursor.Close(ctx)

	results := []models.MedicineMaster{}
	if err = cursor.All(ctx, &results); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to search medicines"})
		return
	}

	c.JSON(http.StatusOK, results)
}

// GetLowStockMedicines handles GET /api/medicines/low-stock. Lists variants
// at or below their minimum threshold, emptiest first.
func GetLowStockMedicines(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "quantity", Value: 1}}).
		SetProjection(bson.M{
			"brandName":    1,
			"dosage":       1,
			"form":         1,
			"packing":      1,
			"quantity":     1,
			"minThreshold": 1,
		})

	cursor, err := config.MedicineVariantCollection.Find(ctx,
		bson.M{"$expr": bson.M{"$lte": bson.A{"$quantity", "$minThreshold"}}}, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to fetch low stock medicines"})
		return
	}
	defer cursor.Close(ctx)

	results := []models.MedicineVariant{}
	if err = cursor.All(ctx, &results); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to fetch low stock medicines"})
		return
	}

	c.JSON(http.StatusOK, results)
}

var (
	dosagePattern = regexp.MustCompile(`(?i)\d+(\.\d+)?\s*(MG|MCG|G)`)
	formPattern   = regexp.MustCompile(`(?i)\bTAB\b|\bCAP\b|\bSYP\b|\bINJ\b`)
	spacePattern  = regexp.MustCompile(`\s{2,}`)

	tabPattern = regexp.MustCompile(`\bTAB\b`)
	capPattern = regexp.MustCompile(`\bCAP\b`)
	sypPattern = regexp.MustCompile(`\bSYP\b`)
	injPattern = regexp.MustCompile(`\bINJ\b`)
)

// parseProductName splits a raw catalogue entry like "CLOPILET 75mg TAB" into
// brand name, dosage and form. Anything unrecognized stays in the brand name.
func parseProductName(productName, pack string) models.MedicineMaster {
	original := strings.TrimSpace(productName)
	upper := strings.ToUpper(original)

	form := ""
	switch {
	case tabPattern.MatchString(upper):
		form = "Tablet"
	case capPattern.MatchString(upper):
		form = "Capsule"
	case sypPattern.MatchString(upper):
		form = "Syrup"
	case injPattern.MatchString(upper):
		form = "Injection"
	}

	dosage := ""
	if match := dosagePattern.FindString(original); match != "" {
		dosage = strings.ToUpper(strings.ReplaceAll(match, " ", ""))
	}

	brandName := original
	if match := dosagePattern.FindString(brandName); match != "" {
		brandName = strings.Replace(brandName, match, "", 1)
	}
	brandName = formPattern.ReplaceAllString(brandName, "")
	brandName = strings.TrimSpace(spacePattern.ReplaceAllString(brandName, " "))

	return models.MedicineMaster{
		BrandName: brandName,
		Dosage:    dosage,
		Form:      form,
		Packing:   strings.TrimSpace(pack),
	}
}

// ImportMedicineMaster handles POST /api/medicines/import. Accepts the rows
// of the supplier product list and fills the master catalogue, skipping
// duplicates via the unique brandName+dosage+form index.
func ImportMedicineMaster(c *gin.Context) {
	var input struct {
		Rows []struct {
			ProductName string `json:"productName"`
			Pack        string `json:"pack"`
		} `json:"rows"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if len(input.Rows) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "rows array is required"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	processed := 0
	inserted := 0
	duplicates := 0

	for _, row := range input.Rows {
		processed++

		name := strings.TrimSpace(row.ProductName)
		if name == "" || strings.EqualFold(name, "productname") {
			continue
		}

		master := parseProductName(name, row.Pack)
		if master.BrandName == "" {
			continue
		}
		master.ID = primitive.NewObjectID()
		master.CreatedAt = time.Now()

		_, err := config.MedicineMasterCollection.InsertOne(ctx, master)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				duplicates++
				continue
			}
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to import medicine master"})
			return
		}
		inserted++
	}

	c.JSON(http.StatusOK, gin.H{
		"processed":  processed,
		"inserted":   inserted,
		"duplicates": duplicates,
	})
}
