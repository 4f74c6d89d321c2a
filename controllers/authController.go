package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"backend/config"
	"backend/models"
	"backend/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Login handles POST /auth/login for the pharmacy owner account.
// Success returns {access_token}, the mobile client stores it and sends it as
// a Bearer header on every /api call.
func Login(c *gin.Context) {
	var input models.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Email and password are required"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	email := strings.ToLower(strings.TrimSpace(input.Email))

	var owner models.Owner
	err := config.OwnerCollection.FindOne(ctx, bson.M{"email": email}).Decode(&owner)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid email or password"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		}
		return
	}

	if err := utils.VerifyPassword(owner.Password, input.Password); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid email or password"})
		return
	}

	token, err := utils.GenerateToken(owner.ID.Hex(), owner.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error while generating token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": token})
}
