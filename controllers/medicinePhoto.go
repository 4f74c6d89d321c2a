package controllers

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"backend/config"
	"backend/models"

	"github.com/gin-gonic/gin"
	"github.com/nfnt/resize"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const maxPhotoSize = 5 * 1024 * 1024 // 5MB

// UploadVariantPhoto handles POST /api/stock/variants/:variantId/photo.
// Stores a downscaled copy under ./uploads/medicines and records its URL on
// the variant.
func UploadVariantPhoto(c *gin.Context) {
	variantID, err := primitive.ObjectIDFromHex(c.Param("variantId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid variant ID"})
		return
	}

	file, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "photo file is required"})
		return
	}
	if file.Size > maxPhotoSize {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "file size exceeds the 5MB limit"})
		return
	}

	fileExt := strings.ToLower(filepath.Ext(file.Filename))
	if fileExt != ".jpg" && fileExt != ".jpeg" && fileExt != ".png" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("unsupported file format: %s", fileExt)})
		return
	}

	photoDir := "./uploads/medicines"
	if _, err := os.Stat(photoDir); os.IsNotExist(err) {
		if err := os.MkdirAll(photoDir, os.ModePerm); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to save photo"})
			return
		}
	}

	srcFile, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to open uploaded file"})
		return
	}
	defer srcFile.Close()

	var img image.Image
	if fileExt == ".png" {
		img, err = png.Decode(srcFile)
	} else {
		img, err = jpeg.Decode(srcFile)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Failed to decode image"})
		return
	}

	// Phone photos are huge, 800px wide is plenty for the stock screen.
	scaled := resize.Resize(800, 0, img, resize.Lanczos3)

	filename := fmt.Sprintf("%s_%d.jpg", variantID.Hex(), time.Now().Unix())
	fullPath := filepath.Join(photoDir, filename)

	outFile, err := os.Create(fullPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to save photo"})
		return
	}
	defer outFile.Close()

	if err := jpeg.Encode(outFile, scaled, &jpeg.Options{Quality: 80}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to save photo"})
		return
	}

	photoURL := "/uploads/medicines/" + filename

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var variant models.MedicineVariant
	err = config.MedicineVariantCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": variantID},
		bson.M{"$set": bson.M{"photoUrl": photoURL, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&variant)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Variant not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to update variant photo"})
		}
		return
	}

	c.JSON(http.StatusOK, variant)
}
