package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AbdelrhmanRafat/fast-track-procurement-api/config"
	"github.com/AbdelrhmanRafat/fast-track-procurement-api/models"
	"github.com/AbdelrhmanRafat/fast-track-procurement-api/services"
)

// ListNotifications handles GET /api/v1/notifications - lists the
// current user's notifications, newest first
func ListNotifications(c *gin.Context) {
	user := getCurrentUser(c)
	if user == nil {
		return
	}

	db := config.GetDB()
	var notifications []models.Notification
	if err := db.Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Find(&notifications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch notifications",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    notifications,
	})
}

// GetUnreadCount handles GET /api/v1/notifications/unread-count - the
// badge projection clients poll for
func GetUnreadCount(c *gin.Context) {
	user := getCurrentUser(c)
	if user == nil {
		return
	}

	count, err := services.GetNotificationService().UnreadCount(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to count notifications",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"unread": count},
	})
}

// MarkNotificationRead handles PATCH /api/v1/notifications/:id/read
func MarkNotificationRead(c *gin.Context) {
	user := getCurrentUser(c)
	if user == nil {
		return
	}

	db := config.GetDB()
	var notification models.Notification
	if err := db.First(&notification, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOTIFICATION_NOT_FOUND",
				"message": "Notification not found",
			},
		})
		return
	}

	if notification.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You do not have permission to update this notification",
			},
		})
		return
	}

	if err := db.Model(&notification).Update("is_read", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update notification",
			},
		})
		return
	}

	// Reading a notification changes the badge count
	services.GetBadgeBroadcaster().Publish(user.ID)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    notification,
	})
}
