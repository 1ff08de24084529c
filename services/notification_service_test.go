package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/AbdelrhmanRafat/fast-track-procurement-api/config"
	"github.com/AbdelrhmanRafat/fast-track-procurement-api/models"
	"github.com/AbdelrhmanRafat/fast-track-procurement-api/workflow"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Order{},
		&models.OrderItem{},
		&models.Notification{},
		&models.DeviceToken{},
	); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	config.SetDB(db)
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string, role models.Role) models.User {
	user := models.User{Auth0ID: "auth0|" + name, Name: name, Email: name + "@example.com", Role: role}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func notificationUserIDs(t *testing.T, db *gorm.DB) map[uint]bool {
	var notifications []models.Notification
	require.NoError(t, db.Find(&notifications).Error)
	out := make(map[uint]bool)
	for _, n := range notifications {
		out[n.UserID] = true
	}
	return out
}

func TestDispatchStatusChangeTargets(t *testing.T) {
	tests := []struct {
		name        string
		status      models.OrderStatus
		wantRoles   []models.Role
		wantCreator bool
		wantNobody  bool
	}{
		{
			name:      "created notifies engineering",
			status:    models.StatusOrderCreated,
			wantRoles: []models.Role{models.RoleEngineering},
		},
		{
			name:      "reviewed notifies both admin tiers",
			status:    models.StatusEngineeringReviewed,
			wantRoles: []models.Role{models.RoleAdmin, models.RoleSubAdmin},
		},
		{
			name:       "under review notifies nobody",
			status:     models.StatusUnderAdminReview,
			wantNobody: true,
		},
		{
			name:        "approved notifies purchasing and the creator",
			status:      models.StatusOwnerApproved,
			wantRoles:   []models.Role{models.RolePurchasing},
			wantCreator: true,
		},
		{
			name:        "rejected notifies only the creator",
			status:      models.StatusOwnerRejected,
			wantCreator: true,
		},
		{
			name:        "in progress notifies admins and the creator",
			status:      models.StatusPurchasingInProgress,
			wantRoles:   []models.Role{models.RoleAdmin, models.RoleSubAdmin},
			wantCreator: true,
		},
		{
			name:        "closed notifies admins and the creator",
			status:      models.StatusOrderClosed,
			wantRoles:   []models.Role{models.RoleAdmin, models.RoleSubAdmin},
			wantCreator: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupServiceTestDB(t)
			svc := InitNotificationService(zap.NewNop())
			SetPushService(nil)

			usersByRole := map[models.Role]models.User{
				models.RoleAdmin:       seedUser(t, db, "admin", models.RoleAdmin),
				models.RoleSubAdmin:    seedUser(t, db, "subadmin", models.RoleSubAdmin),
				models.RoleEngineering: seedUser(t, db, "eng", models.RoleEngineering),
				models.RoleSite:        seedUser(t, db, "site", models.RoleSite),
				models.RolePurchasing:  seedUser(t, db, "purchasing", models.RolePurchasing),
			}
			creator := usersByRole[models.RoleSite]
			// The actor holds no targeted role so exclusion is tested
			// separately
			actor := seedUser(t, db, "actor", models.RoleSite)

			order := models.Order{Title: "Cement", Status: tt.status, CreatedByID: creator.ID}
			require.NoError(t, db.Create(&order).Error)

			svc.DispatchStatusChange(context.Background(), &workflow.StatusChanged{
				OrderID: order.ID,
				From:    models.StatusOrderCreated,
				To:      tt.status,
				ActorID: actor.ID,
			})

			got := notificationUserIDs(t, db)
			if tt.wantNobody {
				assert.Empty(t, got)
				return
			}

			want := make(map[uint]bool)
			for _, role := range tt.wantRoles {
				want[usersByRole[role].ID] = true
			}
			if tt.wantCreator {
				want[creator.ID] = true
			}
			assert.Equal(t, want, got)
		})
	}
}

func TestDispatchExcludesActor(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := InitNotificationService(zap.NewNop())
	SetPushService(nil)

	// An admin rejecting an order they created themselves: the actor and
	// the sole target coincide.
	creator := seedUser(t, db, "creator", models.RoleAdmin)
	order := models.Order{Title: "Cement", Status: models.StatusOwnerRejected, CreatedByID: creator.ID}
	require.NoError(t, db.Create(&order).Error)

	svc.DispatchStatusChange(context.Background(), &workflow.StatusChanged{
		OrderID: order.ID,
		From:    models.StatusUnderAdminReview,
		To:      models.StatusOwnerRejected,
		ActorID: creator.ID,
	})

	assert.Empty(t, notificationUserIDs(t, db),
		"the acting user never receives their own notification")
}

func TestDispatchNotificationContent(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := InitNotificationService(zap.NewNop())
	SetPushService(nil)

	creator := seedUser(t, db, "creator", models.RoleSite)
	admin := seedUser(t, db, "admin", models.RoleAdmin)
	order := models.Order{Title: "Cement order", Status: models.StatusOrderClosed, CreatedByID: creator.ID}
	require.NoError(t, db.Create(&order).Error)

	purchasing := seedUser(t, db, "purchasing", models.RolePurchasing)
	svc.DispatchStatusChange(context.Background(), &workflow.StatusChanged{
		OrderID: order.ID,
		From:    models.StatusPurchasingInProgress,
		To:      models.StatusOrderClosed,
		ActorID: purchasing.ID,
	})

	var n models.Notification
	require.NoError(t, db.Where("user_id = ?", admin.ID).First(&n).Error)
	assert.Equal(t, "Cement order", n.Title)
	assert.Equal(t, models.StatusOrderClosed.Literal(), n.Body)
	assert.Equal(t, string(models.StatusOrderClosed), n.Type)
	assert.Equal(t, order.ID, n.OrderID)
	assert.False(t, n.IsRead)
}

func TestDispatchPushDelivery(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := InitNotificationService(zap.NewNop())

	mockPush := NewMockPushService()
	mockPush.SetAsMockForTesting()

	creator := seedUser(t, db, "creator", models.RoleSite)
	eng := seedUser(t, db, "eng", models.RoleEngineering)
	require.NoError(t, db.Create(&models.DeviceToken{UserID: eng.ID, Token: "eng-phone", Platform: "android"}).Error)
	require.NoError(t, db.Create(&models.DeviceToken{UserID: eng.ID, Token: "eng-laptop", Platform: "web"}).Error)

	order := models.Order{Title: "Gravel", Status: models.StatusOrderCreated, CreatedByID: creator.ID}
	require.NoError(t, db.Create(&order).Error)

	// One of the two tokens fails; the notification row and the other
	// delivery must be unaffected
	mockPush.FailToken("eng-phone")

	svc.DispatchStatusChange(context.Background(), &workflow.StatusChanged{
		OrderID: order.ID,
		From:    models.StatusOrderCreated,
		To:      models.StatusOrderCreated,
		ActorID: creator.ID,
	})

	sent := mockPush.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "eng-laptop", sent[0].Token)
	assert.Equal(t, "Gravel", sent[0].Title)
	assert.Equal(t, models.StatusOrderCreated.Literal(), sent[0].Body)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("user_id = ?", eng.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count, "failed push delivery never rolls back the notification")
}

func TestDispatchPublishesBadges(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := InitNotificationService(zap.NewNop())
	SetPushService(nil)

	broadcaster := NewBadgeBroadcaster()
	SetBadgeBroadcaster(broadcaster)
	badges, unsubscribe := broadcaster.Subscribe()
	defer unsubscribe()

	creator := seedUser(t, db, "creator", models.RoleSite)
	eng := seedUser(t, db, "eng", models.RoleEngineering)

	order := models.Order{Title: "Cement", Status: models.StatusOrderCreated, CreatedByID: creator.ID}
	require.NoError(t, db.Create(&order).Error)

	svc.DispatchStatusChange(context.Background(), &workflow.StatusChanged{
		OrderID: order.ID,
		To:      models.StatusOrderCreated,
		ActorID: creator.ID,
	})

	select {
	case userID := <-badges:
		assert.Equal(t, eng.ID, userID)
	default:
		t.Fatal("expected a badge refresh trigger for the recipient")
	}
}

func TestUnreadCount(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := InitNotificationService(zap.NewNop())

	alice := seedUser(t, db, "alice", models.RoleSite)
	bob := seedUser(t, db, "bob", models.RoleSite)

	for i, read := range []bool{false, false, true} {
		require.NoError(t, db.Create(&models.Notification{
			UserID: alice.ID, OrderID: uint(i + 1), Title: "t", Body: "b",
			Type: string(models.StatusOrderCreated), IsRead: read,
		}).Error)
	}
	require.NoError(t, db.Create(&models.Notification{
		UserID: bob.ID, OrderID: 1, Title: "t", Body: "b",
		Type: string(models.StatusOrderCreated),
	}).Error)

	count, err := svc.UnreadCount(alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	count, err = svc.UnreadCount(bob.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}
