package services

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	appConfig "github.com/AbdelrhmanRafat/fast-track-procurement-api/config"
)

// PushInterface defines the interface for push notification delivery
type PushInterface interface {
	Send(ctx context.Context, token, title, body, link string) error
}

// FCMService delivers push notifications through Firebase Cloud Messaging
type FCMService struct {
	client *messaging.Client
}

var pushServiceInstance PushInterface

// InitPushService initializes the FCM client from the configured
// service-account credentials file
func InitPushService(ctx context.Context) (PushInterface, error) {
	cfg := appConfig.GetConfig()

	var opts []option.ClientOption
	if cfg.FCMCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.FCMCredentialsFile))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize FCM client: %w", err)
	}

	pushServiceInstance = &FCMService{client: client}
	return pushServiceInstance, nil
}

// GetPushService returns the initialized push service instance
func GetPushService() PushInterface {
	return pushServiceInstance
}

// SetPushService sets the push service instance (primarily for testing)
func SetPushService(service PushInterface) {
	pushServiceInstance = service
}

// Send delivers one push message to a single registration token
func (s *FCMService) Send(ctx context.Context, token, title, body, link string) error {
	message := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: map[string]string{
			"link": link,
		},
	}

	if _, err := s.client.Send(ctx, message); err != nil {
		return fmt.Errorf("failed to send push message: %w", err)
	}
	return nil
}
