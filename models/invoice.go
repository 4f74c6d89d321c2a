package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment modes accepted on invoice creation.
var AllowedPaymentModes = []string{"Cash", "Card", "UPI"}

func IsValidPaymentMode(mode string) bool {
	for _, m := range AllowedPaymentModes {
		if m == mode {
			return true
		}
	}
	return false
}

// CartItem is one requested line of a cart, referencing a stock variant.
type CartItem struct {
	MedicineVariantID string `json:"medicineVariantId"`
	Quantity          int    `json:"quantity"`
}

// CreateInvoiceInput is the commit-endpoint request body.
type CreateInvoiceInput struct {
	Items          []CartItem `json:"items"`
	CustomerName   string     `json:"customerName"`
	DoctorName     string     `json:"doctorName"`
	DiscountAmount float64    `json:"discountAmount"`
	PaymentMode    string     `json:"paymentMode"`
}

// PreviewInvoiceInput is the preview-endpoint request body. No payment mode,
// nothing is persisted.
type PreviewInvoiceInput struct {
	Items          []CartItem `json:"items"`
	DiscountAmount float64    `json:"discountAmount"`
}

// InvoiceItem is a value snapshot of a variant at sale time plus the computed
// tax breakdown. Immutable once the invoice exists; later stock or price
// changes never alter it.
type InvoiceItem struct {
	MedicineVariant primitive.ObjectID `bson:"medicineVariant" json:"medicineVariant"`
	BrandName       string             `bson:"brandName" json:"brandName"`
	HSNCode         string             `bson:"hsnCode" json:"hsnCode"`
	Dosage          string             `bson:"dosage" json:"dosage"`
	BatchNumber     string             `bson:"batchNumber" json:"batchNumber"`
	ExpiryDate      time.Time          `bson:"expiryDate" json:"expiryDate"`
	SellingPrice    float64            `bson:"sellingPrice" json:"sellingPrice"`
	Quantity        int                `bson:"quantity" json:"quantity"`
	LineTotal       float64            `bson:"lineTotal" json:"lineTotal"`
	DiscountAmount  float64            `bson:"discountAmount" json:"discountAmount"`
	TaxableValue    float64            `bson:"taxableValue" json:"taxableValue"`
	GSTRate         float64            `bson:"gstRate" json:"gstRate"`
	CGSTAmount      float64            `bson:"cgstAmount" json:"cgstAmount"`
	SGSTAmount      float64            `bson:"sgstAmount" json:"sgstAmount"`
}

// Invoice is the system of record for a completed sale. Created in one piece
// by the invoice controller, deleted only as compensation when the stock
// decrement half of the commit fails.
type Invoice struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	InvoiceNumber  string             `bson:"invoiceNumber" json:"invoiceNumber"`
	InvoiceDate    time.Time          `bson:"invoiceDate" json:"invoiceDate"`
	CustomerName   string             `bson:"customerName,omitempty" json:"customerName,omitempty"`
	DoctorName     string             `bson:"doctorName,omitempty" json:"doctorName,omitempty"`
	Items          []InvoiceItem      `bson:"items" json:"items"`
	SubTotal       float64            `bson:"subTotal" json:"subTotal"`
	DiscountAmount float64            `bson:"discountAmount" json:"discountAmount"`
	TaxableAmount  float64            `bson:"taxableAmount" json:"taxableAmount"`
	CGST           float64            `bson:"cgst" json:"cgst"`
	SGST           float64            `bson:"sgst" json:"sgst"`
	TotalAmount    float64            `bson:"totalAmount" json:"totalAmount"`
	PaymentMode    string             `bson:"paymentMode" json:"paymentMode"`
	ViewToken      string             `bson:"viewToken,omitempty" json:"viewToken,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// InvoiceSummary is the list-endpoint projection.
type InvoiceSummary struct {
	ID            primitive.ObjectID `bson:"_id" json:"id"`
	InvoiceNumber string             `bson:"invoiceNumber" json:"invoiceNumber"`
	InvoiceDate   time.Time          `bson:"invoiceDate" json:"invoiceDate"`
	CustomerName  string             `bson:"customerName,omitempty" json:"customerName,omitempty"`
	TotalAmount   float64            `bson:"totalAmount" json:"totalAmount"`
	PaymentMode   string             `bson:"paymentMode" json:"paymentMode"`
}

// Counter backs the per-day invoice sequence. One document per calendar day,
// bumped with an atomic $inc.
type Counter struct {
	ID  string `bson:"_id"`
	Seq int    `bson:"seq"`
}
