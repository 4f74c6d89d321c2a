package routes

import (
	"backend/controllers"
	"backend/middleware"

	"github.com/gin-gonic/gin"
)

func InitializeRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	router.POST("/auth/login", controllers.Login)
	router.POST("/api/auth/login", controllers.Login)
	router.Static("/uploads", "./uploads")

	// Tokenized public fetch for shared invoice links.
	router.GET("/invoice/:token", controllers.GetInvoiceByViewToken)

	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware("OWNER"))
	{
		// Inventory
		api.POST("/stock/medicines", controllers.AddOrGetMedicine)
		api.POST("/stock/medicines/:medicineId/variants", controllers.AddMedicineVariant)
		api.GET("/stock/medicines-with-variants", controllers.GetMedicinesWithVariants)
		api.PATCH("/stock/variants/:variantId/quantity", controllers.UpdateStockQuantity)
		api.POST("/stock/variants/:variantId/reduce", controllers.ReduceStockOnSale)
		api.POST("/stock/variants/:variantId/photo", controllers.UploadVariantPhoto)

		// Master catalogue
		api.GET("/medicines/search", controllers.SearchMedicines)
		api.GET("/medicines/low-stock", controllers.GetLowStockMedicines)
		api.POST("/medicines/import", controllers.ImportMedicineMaster)

		// Billing
		api.POST("/invoices", controllers.CreateInvoice)
		api.POST("/invoices/preview", controllers.PreviewInvoice)
		api.GET("/invoices", controllers.ListInvoices)
		api.GET("/invoices/:id", controllers.GetInvoiceByID)

		// Dashboard
		api.GET("/stats", controllers.GetStats)
	}
}
