// Package notify fans out content events to interested users through an
// in-process registry. Notifications are not persisted; a restart clears
// every inbox.
package notify

import (
	"sync"
	"time"

	"github.com/rs/xid"

	"adaptrack-server/internal/model"
)

// Registry holds per-user notification inboxes, newest first.
type Registry struct {
	mu     sync.RWMutex
	byUser map[int64][]model.Notification
}

func NewRegistry() *Registry {
	return &Registry{byUser: make(map[int64][]model.Notification)}
}

func (r *Registry) Add(userID int64, title, message string) model.Notification {
	n := model.Notification{
		ID:        xid.New().String(),
		Title:     title,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
	r.mu.Lock()
	r.byUser[userID] = append([]model.Notification{n}, r.byUser[userID]...)
	r.mu.Unlock()
	return n
}

// ForUser returns a copy of the user's inbox. unreadOnly narrows the copy to
// notifications not yet marked read.
func (r *Registry) ForUser(userID int64, unreadOnly bool) []model.Notification {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Notification, 0, len(r.byUser[userID]))
	for _, n := range r.byUser[userID] {
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, n)
	}
	return out
}

// MarkAllRead flags every notification in the user's inbox and returns how
// many changed state.
func (r *Registry) MarkAllRead(userID int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	var changed int
	inbox := r.byUser[userID]
	for i := range inbox {
		if !inbox[i].Read {
			inbox[i].Read = true
			changed++
		}
	}
	return changed
}

func (r *Registry) UnreadCount(userID int64) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int
	for _, it := range r.byUser[userID] {
		if !it.Read {
			n++
		}
	}
	return n
}
