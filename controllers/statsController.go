package controllers

import (
	"context"
	"net/http"
	"time"

	"backend/config"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
)

// todayRange returns the inclusive bounds of the current calendar day. Day
// boundaries are UTC everywhere, matching the invoice list filter, so the
// stats "today" and a list query for today's date agree regardless of the
// server timezone.
func todayRange(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24*time.Hour - time.Millisecond)
}

// GetStats handles GET /api/stats, the dashboard counters.
func GetStats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	todayStart, todayEnd := todayRange(time.Now())

	totalMedicines, err := config.MedicineCollection.CountDocuments(ctx, bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to fetch stats"})
		return
	}

	invoicesToday, err := config.InvoiceCollection.CountDocuments(ctx, bson.M{
		"invoiceDate": bson.M{"$gte": todayStart, "$lte": todayEnd},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to fetch stats"})
		return
	}

	lowStockCount, err := config.MedicineVariantCollection.CountDocuments(ctx, bson.M{
		"$expr": bson.M{"$lte": bson.A{"$quantity", "$minThreshold"}},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to fetch stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"totalMedicines": totalMedicines,
		"invoicesToday":  invoicesToday,
		"lowStockCount":  lowStockCount,
	})
}
