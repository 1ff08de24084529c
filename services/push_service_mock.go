package services

import (
	"context"
	"fmt"
	"sync"
)

// MockPushMessage records one delivery attempt made through the mock
type MockPushMessage struct {
	Token string
	Title string
	Body  string
	Link  string
}

// MockPushService is a mock implementation of PushInterface for testing
type MockPushService struct {
	sent       []MockPushMessage
	failTokens map[string]bool // tokens whose delivery should fail
	mu         sync.RWMutex
}

// NewMockPushService creates a new mock push service
func NewMockPushService() *MockPushService {
	return &MockPushService{
		failTokens: make(map[string]bool),
	}
}

// SetAsMockForTesting sets this mock as the global push service instance for testing
func (m *MockPushService) SetAsMockForTesting() {
	SetPushService(m)
}

// FailToken makes delivery to the given token return an error
func (m *MockPushService) FailToken(token string) {
	m.mu.Lock()
	m.failTokens[token] = true
	m.mu.Unlock()
}

// Send records the delivery attempt, failing for tokens marked with FailToken
func (m *MockPushService) Send(_ context.Context, token, title, body, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failTokens[token] {
		return fmt.Errorf("mock delivery failure for token %s", token)
	}

	m.sent = append(m.sent, MockPushMessage{Token: token, Title: title, Body: body, Link: link})
	return nil
}

// Sent returns a copy of all successfully delivered messages
func (m *MockPushService) Sent() []MockPushMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]MockPushMessage, len(m.sent))
	copy(out, m.sent)
	return out
}
