package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Medicine is the generic product record. GST rate and HSN code live here,
// variants inherit them at billing time.
type Medicine struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name      string             `bson:"name" json:"name" binding:"required"`
	Category  string             `bson:"category,omitempty" json:"category,omitempty"`
	HSNCode   string             `bson:"hsnCode,omitempty" json:"hsnCode,omitempty"`
	GSTRate   *float64           `bson:"gstRate,omitempty" json:"gstRate,omitempty"`
	CreatedAt time.Time          `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt time.Time          `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// Billing defaults when the parent medicine record carries none.
const (
	DefaultGSTRate = 5.0
	DefaultHSNCode = "3004"
)

// MedicineVariant is one concrete batch on the shelf. Quantity is mutated by
// stock updates and invoice commits and must never go negative.
type MedicineVariant struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Medicine      primitive.ObjectID `bson:"medicine" json:"medicine"`
	BrandName     string             `bson:"brandName" json:"brandName"`
	Dosage        string             `bson:"dosage" json:"dosage"`
	Form          string             `bson:"form" json:"form"` // Tablet, Capsule, Syrup, Injection, Other
	Packing       string             `bson:"packing" json:"packing"`
	BatchNumber   string             `bson:"batchNumber" json:"batchNumber"`
	ExpiryDate    time.Time          `bson:"expiryDate" json:"expiryDate"`
	PurchasePrice float64            `bson:"purchasePrice" json:"purchasePrice"`
	MRP           float64            `bson:"mrp" json:"mrp"`
	SellingPrice  float64            `bson:"sellingPrice" json:"sellingPrice"`
	Quantity      int                `bson:"quantity" json:"quantity"`
	MinThreshold  int                `bson:"minThreshold" json:"minThreshold"`
	PhotoURL      string             `bson:"photoUrl,omitempty" json:"photoUrl,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt     time.Time          `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// AddVariantInput is the request body for adding stock. When a variant with
// the same medicine + batch + expiry day already exists, quantity is added to
// it and prices are optionally refreshed.
type AddVariantInput struct {
	BrandName     string   `json:"brandName"`
	Dosage        string   `json:"dosage"`
	Form          string   `json:"form"`
	Packing       string   `json:"packing"`
	BatchNumber   string   `json:"batchNumber"`
	ExpiryDate    string   `json:"expiryDate"`
	PurchasePrice *float64 `json:"purchasePrice"`
	MRP           *float64 `json:"mrp"`
	SellingPrice  *float64 `json:"sellingPrice"`
	Quantity      *int     `json:"quantity"`
	MinThreshold  *int     `json:"minThreshold"`
}

// MedicineMaster is the imported reference catalogue used for search and
// autocomplete. Unique on brandName+dosage+form.
type MedicineMaster struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	BrandName string             `bson:"brandName" json:"brandName"`
	Dosage    string             `bson:"dosage,omitempty" json:"dosage,omitempty"`
	Form      string             `bson:"form,omitempty" json:"form,omitempty"`
	Packing   string             `bson:"packing,omitempty" json:"packing,omitempty"`
	Category  string             `bson:"category,omitempty" json:"category,omitempty"`
	CreatedAt time.Time          `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
}

// LowStockNotification is written whenever a variant ends up at or below its
// minimum threshold. Creation is best-effort and never blocks the sale.
type LowStockNotification struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	MedicineVariant primitive.ObjectID `bson:"medicineVariant" json:"medicineVariant"`
	BrandName       string             `bson:"brandName,omitempty" json:"brandName,omitempty"`
	Dosage          string             `bson:"dosage,omitempty" json:"dosage,omitempty"`
	Quantity        int                `bson:"quantity" json:"quantity"`
	MinThreshold    int                `bson:"minThreshold" json:"minThreshold"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
}
