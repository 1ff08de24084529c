package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/clause"

	"github.com/AbdelrhmanRafat/fast-track-procurement-api/config"
	"github.com/AbdelrhmanRafat/fast-track-procurement-api/models"
)

// RegisterDeviceRequest represents the request body for registering a
// push token
type RegisterDeviceRequest struct {
	Token    string `json:"token" binding:"required"`
	Platform string `json:"platform"`
}

// RegisterDevice handles POST /api/v1/devices - registers an FCM token
// for the current user. Re-registering an existing token reassigns it,
// which covers a device changing hands between accounts.
func RegisterDevice(c *gin.Context) {
	user := getCurrentUser(c)
	if user == nil {
		return
	}

	var req RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	device := models.DeviceToken{
		UserID:   user.ID,
		Token:    req.Token,
		Platform: req.Platform,
	}

	db := config.GetDB()
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "platform", "updated_at"}),
	}).Create(&device).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to register device",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    device,
	})
}

// UnregisterDevice handles DELETE /api/v1/devices/:token - removes one
// of the current user's push tokens
func UnregisterDevice(c *gin.Context) {
	user := getCurrentUser(c)
	if user == nil {
		return
	}

	db := config.GetDB()
	result := db.Where("token = ? AND user_id = ?", c.Param("token"), user.ID).
		Delete(&models.DeviceToken{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to unregister device",
			},
		})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DEVICE_NOT_FOUND",
				"message": "Device token not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"deleted": true},
	})
}
