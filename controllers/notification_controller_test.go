package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/AbdelrhmanRafat/fast-track-procurement-api/config"
	"github.com/AbdelrhmanRafat/fast-track-procurement-api/models"
	"github.com/AbdelrhmanRafat/fast-track-procurement-api/services"
)

func notificationRouter(user models.User) *gin.Engine {
	router := setupTestRouter()
	auth := router.Group("/api/v1")
	auth.Use(mockAuthMiddleware(user.Auth0ID, string(user.Role), "mock-token"))
	auth.GET("/notifications", ListNotifications)
	auth.GET("/notifications/unread-count", GetUnreadCount)
	auth.PATCH("/notifications/:id/read", MarkNotificationRead)
	auth.POST("/devices", RegisterDevice)
	auth.DELETE("/devices/:token", UnregisterDevice)
	return router
}

func seedNotification(t *testing.T, db *gorm.DB, userID uint, title string, read bool) models.Notification {
	n := models.Notification{
		UserID:  userID,
		OrderID: 1,
		Title:   title,
		Body:    models.StatusOwnerApproved.Literal(),
		Type:    string(models.StatusOwnerApproved),
		IsRead:  read,
	}
	require.NoError(t, db.Create(&n).Error)
	return n
}

func TestListNotifications(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	alice := createTestUser(t, db, "auth0|alice", "alice", models.RoleSite)
	bob := createTestUser(t, db, "auth0|bob", "bob", models.RoleSite)

	seedNotification(t, db, alice.ID, "Cement order", false)
	seedNotification(t, db, alice.ID, "Rebar order", true)
	seedNotification(t, db, bob.ID, "Paint order", false)

	w, response := doJSON(t, notificationRouter(alice), "GET", "/api/v1/notifications", nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := response["data"].([]interface{})
	require.Len(t, data, 2, "users only see their own notifications")
	for _, raw := range data {
		n := raw.(map[string]interface{})
		assert.NotEqual(t, "Paint order", n["title"])
	}
}

func TestGetUnreadCount(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	alice := createTestUser(t, db, "auth0|alice", "alice", models.RoleSite)
	bob := createTestUser(t, db, "auth0|bob", "bob", models.RoleSite)

	seedNotification(t, db, alice.ID, "Cement order", false)
	seedNotification(t, db, alice.ID, "Rebar order", false)
	seedNotification(t, db, alice.ID, "Old order", true)
	seedNotification(t, db, bob.ID, "Paint order", false)

	w, response := doJSON(t, notificationRouter(alice), "GET", "/api/v1/notifications/unread-count", nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := response["data"].(map[string]interface{})
	assert.EqualValues(t, 2, data["unread"])
}

func TestMarkNotificationRead(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	broadcaster := services.NewBadgeBroadcaster()
	services.SetBadgeBroadcaster(broadcaster)
	badges, unsubscribe := broadcaster.Subscribe()
	defer unsubscribe()

	alice := createTestUser(t, db, "auth0|alice", "alice", models.RoleSite)
	bob := createTestUser(t, db, "auth0|bob", "bob", models.RoleSite)
	n := seedNotification(t, db, alice.ID, "Cement order", false)
	path := fmt.Sprintf("/api/v1/notifications/%d/read", n.ID)

	t.Run("other users cannot mark it", func(t *testing.T) {
		w, response := doJSON(t, notificationRouter(bob), "PATCH", path, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "FORBIDDEN", errorCode(response))
	})

	t.Run("owner marks it and the badge updates", func(t *testing.T) {
		w, _ := doJSON(t, notificationRouter(alice), "PATCH", path, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var persisted models.Notification
		require.NoError(t, db.First(&persisted, n.ID).Error)
		assert.True(t, persisted.IsRead)

		select {
		case userID := <-badges:
			assert.Equal(t, alice.ID, userID)
		default:
			t.Fatal("expected a badge refresh trigger")
		}
	})

	t.Run("unknown notification returns 404", func(t *testing.T) {
		w, response := doJSON(t, notificationRouter(alice), "PATCH", "/api/v1/notifications/9999/read", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "NOTIFICATION_NOT_FOUND", errorCode(response))
	})
}

func TestDeviceRegistration(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	alice := createTestUser(t, db, "auth0|alice", "alice", models.RoleSite)
	bob := createTestUser(t, db, "auth0|bob", "bob", models.RoleSite)

	t.Run("register a token", func(t *testing.T) {
		w, _ := doJSON(t, notificationRouter(alice), "POST", "/api/v1/devices",
			RegisterDeviceRequest{Token: "fcm-token-1", Platform: "android"})
		require.Equal(t, http.StatusCreated, w.Code)

		var device models.DeviceToken
		require.NoError(t, db.Where("token = ?", "fcm-token-1").First(&device).Error)
		assert.Equal(t, alice.ID, device.UserID)
		assert.Equal(t, "android", device.Platform)
	})

	t.Run("re-registering reassigns the token", func(t *testing.T) {
		w, _ := doJSON(t, notificationRouter(bob), "POST", "/api/v1/devices",
			RegisterDeviceRequest{Token: "fcm-token-1", Platform: "ios"})
		require.Equal(t, http.StatusCreated, w.Code)

		var devices []models.DeviceToken
		require.NoError(t, db.Where("token = ?", "fcm-token-1").Find(&devices).Error)
		require.Len(t, devices, 1, "the token row is reassigned, not duplicated")
		assert.Equal(t, bob.ID, devices[0].UserID)
		assert.Equal(t, "ios", devices[0].Platform)
	})

	t.Run("missing token is rejected", func(t *testing.T) {
		w, response := doJSON(t, notificationRouter(alice), "POST", "/api/v1/devices",
			gin.H{"platform": "web"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", errorCode(response))
	})

	t.Run("unregister removes own token only", func(t *testing.T) {
		w, response := doJSON(t, notificationRouter(alice), "DELETE", "/api/v1/devices/fcm-token-1", nil)
		assert.Equal(t, http.StatusNotFound, w.Code, "the token now belongs to another user")
		assert.Equal(t, "DEVICE_NOT_FOUND", errorCode(response))

		w, _ = doJSON(t, notificationRouter(bob), "DELETE", "/api/v1/devices/fcm-token-1", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var count int64
		require.NoError(t, db.Model(&models.DeviceToken{}).
			Where("token = ?", "fcm-token-1").Count(&count).Error)
		assert.EqualValues(t, 0, count)
	})
}
