package planner

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"drift/autocomplete"
)

const DefaultNotificationTTL = 5 * time.Second

type Notification struct {
	ID        string    `json:"id"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Notifier holds dismissible notifications that expire on their own.
type Notifier struct {
	ttl   time.Duration
	clock autocomplete.Clock

	mu    sync.Mutex
	items []Notification
}

func NewNotifier(ttl time.Duration, clock autocomplete.Clock) *Notifier {
	if ttl <= 0 {
		ttl = DefaultNotificationTTL
	}
	if clock == nil {
		clock = autocomplete.SystemClock{}
	}
	return &Notifier{ttl: ttl, clock: clock}
}

func (n *Notifier) Push(level, message string) Notification {
	now := n.clock.Now()
	item := Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(n.ttl),
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, item)
	return item
}

// Active returns the notifications that have not expired yet, oldest
// first, and forgets the rest.
func (n *Notifier) Active() []Notification {
	now := n.clock.Now()
	n.mu.Lock()
	defer n.mu.Unlock()

	kept := n.items[:0]
	for _, item := range n.items {
		if now.Before(item.ExpiresAt) {
			kept = append(kept, item)
		}
	}
	n.items = kept
	return append([]Notification{}, kept...)
}

func (n *Notifier) Dismiss(id string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, item := range n.items {
		if item.ID == id {
			n.items = append(n.items[:i], n.items[i+1:]...)
			return true
		}
	}
	return false
}
