package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/AbdelrhmanRafat/fast-track-procurement-api/config"
	"github.com/AbdelrhmanRafat/fast-track-procurement-api/models"
	"github.com/AbdelrhmanRafat/fast-track-procurement-api/workflow"
)

// NotificationTargets describes who a status change notifies.
type NotificationTargets struct {
	Roles          []models.Role
	IncludeCreator bool
}

// notificationTargets is the static status → targets table. A status
// with no entry dispatches to nobody, which is a no-op rather than an
// error. The acting user is always excluded: whoever performed the
// transition does not need to be told about it.
var notificationTargets = map[models.OrderStatus]NotificationTargets{
	models.StatusOrderCreated: {
		Roles: []models.Role{models.RoleEngineering},
	},
	models.StatusEngineeringReviewed: {
		Roles: []models.Role{models.RoleAdmin, models.RoleSubAdmin},
	},
	// StatusUnderAdminReview has no targets: the admin just opened the
	// order themselves.
	models.StatusOwnerApproved: {
		Roles:          []models.Role{models.RolePurchasing},
		IncludeCreator: true,
	},
	models.StatusOwnerRejected: {
		IncludeCreator: true,
	},
	models.StatusPurchasingInProgress: {
		Roles:          []models.Role{models.RoleAdmin, models.RoleSubAdmin},
		IncludeCreator: true,
	},
	models.StatusOrderClosed: {
		Roles:          []models.Role{models.RoleAdmin, models.RoleSubAdmin},
		IncludeCreator: true,
	},
}

// NotificationService maps StatusChanged events to persisted
// notifications and best-effort push deliveries.
type NotificationService struct {
	logger *zap.Logger
}

var notificationServiceInstance *NotificationService

// InitNotificationService wires the notification service
func InitNotificationService(logger *zap.Logger) *NotificationService {
	notificationServiceInstance = &NotificationService{logger: logger}
	return notificationServiceInstance
}

// GetNotificationService returns the notification service, initializing
// a default one if needed
func GetNotificationService() *NotificationService {
	if notificationServiceInstance == nil {
		notificationServiceInstance = &NotificationService{logger: config.GetLogger()}
	}
	return notificationServiceInstance
}

// SetNotificationService sets the service instance (primarily for testing)
func SetNotificationService(s *NotificationService) {
	notificationServiceInstance = s
}

// DispatchStatusChange resolves the recipients for a status change,
// persists one Notification per recipient and attempts push delivery to
// each of their registered device tokens. Everything here is
// best-effort: failures are logged and swallowed, and the triggering
// transition never waits on or rolls back from this path.
func (s *NotificationService) DispatchStatusChange(ctx context.Context, event *workflow.StatusChanged) {
	targets, ok := notificationTargets[event.To]
	if !ok {
		return
	}

	db := config.GetDB()

	var order models.Order
	if err := db.First(&order, event.OrderID).Error; err != nil {
		s.logger.Error("Failed to load order for notification dispatch",
			zap.Uint("order_id", event.OrderID), zap.Error(err))
		return
	}

	// Resolve recipients: users holding a target role, optionally the
	// order's creator, deduplicated, minus the actor.
	recipients := make(map[uint]struct{})
	if len(targets.Roles) > 0 {
		var users []models.User
		if err := db.Where("role IN ?", targets.Roles).Find(&users).Error; err != nil {
			s.logger.Error("Failed to resolve notification recipients",
				zap.Uint("order_id", event.OrderID), zap.Error(err))
		}
		for _, u := range users {
			recipients[u.ID] = struct{}{}
		}
	}
	if targets.IncludeCreator {
		recipients[order.CreatedByID] = struct{}{}
	}
	delete(recipients, event.ActorID)

	title := order.Title
	body := event.To.Literal()
	link := fmt.Sprintf("/orders/%d", order.ID)

	for userID := range recipients {
		notification := models.Notification{
			UserID:  userID,
			OrderID: order.ID,
			Title:   title,
			Body:    body,
			Type:    string(event.To),
		}
		if err := db.Create(&notification).Error; err != nil {
			s.logger.Error("Failed to persist notification",
				zap.Uint("user_id", userID),
				zap.Uint("order_id", order.ID),
				zap.Error(err))
			continue
		}

		GetBadgeBroadcaster().Publish(userID)
		s.pushToUser(ctx, userID, title, body, link)
	}
}

// pushToUser attempts delivery to every registered token of one user.
// One token's failure does not affect the others, and a persisted
// notification is never rolled back on delivery failure.
func (s *NotificationService) pushToUser(ctx context.Context, userID uint, title, body, link string) {
	push := GetPushService()
	if push == nil {
		return
	}

	db := config.GetDB()
	var tokens []models.DeviceToken
	if err := db.Where("user_id = ?", userID).Find(&tokens).Error; err != nil {
		s.logger.Error("Failed to load device tokens",
			zap.Uint("user_id", userID), zap.Error(err))
		return
	}

	for _, t := range tokens {
		if err := push.Send(ctx, t.Token, title, body, link); err != nil {
			s.logger.Warn("Push delivery failed",
				zap.Uint("user_id", userID),
				zap.String("platform", t.Platform),
				zap.Error(err))
		}
	}
}

// UnreadCount returns the badge count for one user.
func (s *NotificationService) UnreadCount(userID uint) (int64, error) {
	db := config.GetDB()
	var count int64
	err := db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}
