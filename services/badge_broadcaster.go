package services

import "sync"

// BadgeBroadcaster fans out unread-badge refresh triggers to in-process
// subscribers. Any local notification mutation publishes the affected
// user's id; polling clients and tests subscribe so the refresh trigger
// is an explicit message rather than an ambient global.
type BadgeBroadcaster struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]chan uint
}

var badgeBroadcasterInstance = NewBadgeBroadcaster()

// NewBadgeBroadcaster creates a new broadcaster with no subscribers
func NewBadgeBroadcaster() *BadgeBroadcaster {
	return &BadgeBroadcaster{subs: make(map[int]chan uint)}
}

// GetBadgeBroadcaster returns the shared broadcaster instance
func GetBadgeBroadcaster() *BadgeBroadcaster {
	return badgeBroadcasterInstance
}

// SetBadgeBroadcaster sets the shared broadcaster instance (primarily for testing)
func SetBadgeBroadcaster(b *BadgeBroadcaster) {
	badgeBroadcasterInstance = b
}

// Subscribe registers a subscriber. The returned channel receives the id
// of any user whose badge count may have changed; calling the returned
// function removes the subscription and closes the channel.
func (b *BadgeBroadcaster) Subscribe() (<-chan uint, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++

	// Buffered so a slow subscriber never blocks a publisher.
	ch := make(chan uint, 16)
	b.subs[id] = ch

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, unsubscribe
}

// Publish notifies all subscribers that the given user's badge count may
// have changed. Sends are non-blocking; a subscriber with a full buffer
// misses the trigger and catches up on its next poll.
func (b *BadgeBroadcaster) Publish(userID uint) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- userID:
		default:
		}
	}
}
