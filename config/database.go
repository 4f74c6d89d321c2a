package config

import (
	"context"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	Client                         *mongo.Client
	OwnerCollection                *mongo.Collection
	MedicineCollection             *mongo.Collection
	MedicineVariantCollection      *mongo.Collection
	MedicineMasterCollection       *mongo.Collection
	InvoiceCollection              *mongo.Collection
	LowStockNotificationCollection *mongo.Collection
	CounterCollection              *mongo.Collection
)

func ConnectDatabase() {
	client, err := mongo.NewClient(options.Client().ApplyURI(os.Getenv("MONGO_URI")))
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = client.Connect(ctx)
	if err != nil {
		log.Fatal(err)
	}

	err = client.Ping(ctx, nil)
	if err != nil {
		log.Fatal(err)
	}

	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "pharmacy"
	}

	Client = client
	OwnerCollection = client.Database(dbName).Collection("owners")
	MedicineCollection = client.Database(dbName).Collection("medicines")
	MedicineVariantCollection = client.Database(dbName).Collection("medicinevariants")
	MedicineMasterCollection = client.Database(dbName).Collection("medicinemasters")
	InvoiceCollection = client.Database(dbName).Collection("invoices")
	LowStockNotificationCollection = client.Database(dbName).Collection("lowstocknotifications")
	CounterCollection = client.Database(dbName).Collection("counters")

	ensureIndexes(ctx)
	log.Println("Connected to MongoDB")
}

// ensureIndexes creates the indexes the billing flow depends on. The unique
// invoiceNumber index is the backstop that turns a numbering collision into a
// hard insert failure instead of a silent duplicate.
func ensureIndexes(ctx context.Context) {
	_, err := InvoiceCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "invoiceNumber", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		log.Printf("Failed to create invoiceNumber index: %v", err)
	}

	_, err = InvoiceCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "invoiceDate", Value: -1}},
	})
	if err != nil {
		log.Printf("Failed to create invoiceDate index: %v", err)
	}

	// Master catalogue dedupe, same shape the import endpoint relies on.
	_, err = MedicineMasterCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "brandName", Value: 1},
			{Key: "dosage", Value: 1},
			{Key: "form", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		log.Printf("Failed to create medicine master index: %v", err)
	}
}
