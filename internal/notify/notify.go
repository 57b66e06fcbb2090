// Package notify keeps the recent outcome notifications shown to operators.
package notify

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

type Notification struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	CreatedAt time.Time `json:"created_at"`
}

const DefaultCapacity = 100

// Center is a bounded history of notifications with fan-out to live
// subscribers. Slow subscribers miss notifications rather than block.
type Center struct {
	mu       sync.Mutex
	capacity int
	items    []Notification
	subs     map[int]chan Notification
	nextSub  int
	now      func() time.Time
}

func NewCenter(capacity int) *Center {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &Center{
		capacity: capacity,
		subs:     make(map[int]chan Notification),
		now:      time.Now,
	}
}

func (c *Center) Notify(title, message string, severity Severity) Notification {
	n := Notification{
		ID:        uuid.New(),
		Title:     title,
		Message:   message,
		Severity:  severity,
		CreatedAt: c.now().UTC(),
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = append(c.items, n)
	if len(c.items) > c.capacity {
		c.items = slices.Clone(c.items[len(c.items)-c.capacity:])
	}

	for _, ch := range c.subs {
		select {
		case ch <- n:
		default:
		}
	}

	return n
}

// List returns up to limit notifications, newest first. A limit of zero or
// less returns everything kept.
func (c *Center) List(limit int) []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := slices.Clone(c.items)
	slices.Reverse(out)

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out
}

// Subscribe streams new notifications until the returned cancel func runs.
func (c *Center) Subscribe() (<-chan Notification, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++

	ch := make(chan Notification, 16)
	c.subs[id] = ch

	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		if _, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(ch)
		}
	}
}
