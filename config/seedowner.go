package config

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"
)

// SeedOwner creates the single OWNER account if none exists. Credentials come
// from env so they are never committed. When the collection is empty and no
// creds are set, login stays unusable until they are provided.
func SeedOwner() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := OwnerCollection.CountDocuments(ctx, bson.M{})
	if err != nil {
		log.Printf("SeedOwner: count failed: %v", err)
		return
	}
	if count > 0 {
		return
	}

	email := strings.ToLower(strings.TrimSpace(os.Getenv("OWNER_EMAIL")))
	password := os.Getenv("OWNER_PASSWORD")
	if email == "" || password == "" {
		log.Println("SeedOwner: OWNER_EMAIL/OWNER_PASSWORD not set, skipping seed")
		return
	}

	// bcrypt called directly (same cost as utils.HashPassword) to avoid a
	// config -> utils -> config import cycle.
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		log.Printf("SeedOwner: hash failed: %v", err)
		return
	}
	hash := string(hashBytes)

	_, err = OwnerCollection.InsertOne(ctx, models.Owner{
		Email:     email,
		Password:  hash,
		Role:      "OWNER",
		CreatedAt: time.Now(),
	})
	if err != nil {
		log.Printf("SeedOwner: insert failed: %v", err)
		return
	}
	log.Printf("Seeded owner account %s", email)
}
