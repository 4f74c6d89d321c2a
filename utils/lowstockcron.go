package utils

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"backend/config"
	"backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CheckLowStockLevels runs daily from the scheduler. It collects every variant
// at or below its minimum threshold and emails a digest to the pharmacy owner.
// Any failure here is logged and dropped, the sweep never affects sales.
func CheckLowStockLevels() {
	log.Println("Starting low stock sweep")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	filter := bson.M{"$expr": bson.M{"$lte": bson.A{"$quantity", "$minThreshold"}}}
	cursor, err := config.MedicineVariantCollection.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "quantity", Value: 1}}))
	if err != nil {
		log.Printf("Low stock sweep: query failed: %v", err)
		return
	}
	defer cursor.Close(ctx)

	var variants []models.MedicineVariant
	if err = cursor.All(ctx, &variants); err != nil {
		log.Printf("Low stock sweep: decode failed: %v", err)
		return
	}

	if len(variants) == 0 {
		log.Println("Low stock sweep: nothing below threshold")
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d medicines are at or below their minimum stock level:\n\n", len(variants))
	for _, v := range variants {
		fmt.Fprintf(&b, "- %s %s (batch %s): %d left, threshold %d\n",
			v.BrandName, v.Dosage, v.BatchNumber, v.Quantity, v.MinThreshold)
	}

	to := os.Getenv("ALERT_EMAIL_TO")
	if to == "" {
		to = os.Getenv("OWNER_EMAIL")
	}
	if to == "" {
		log.Println("Low stock sweep: no alert recipient configured")
		return
	}

	subject := fmt.Sprintf("Low stock alert: %d medicines need restocking", len(variants))
	if err := SendEmail(to, subject, b.String()); err != nil {
		log.Printf("Low stock sweep: email failed: %v", err)
		return
	}
	log.Printf("Low stock sweep: digest sent to %s (%d items)", to, len(variants))
}
