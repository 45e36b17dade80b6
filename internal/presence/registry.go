package presence

import (
	"sync"
)

// Registry records which users currently have an open socket on which chat.
// It exists only to suppress redundant notifications; it is not access
// control and never outlives the process.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]map[string]struct{} // chatID -> set of userIDs
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]map[string]struct{})}
}

// Join adds userID to the chat's presence set. Joining twice is the same as
// joining once.
func (r *Registry) Join(chatID, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	us, ok := r.rooms[chatID]
	if !ok {
		us = make(map[string]struct{})
		r.rooms[chatID] = us
	}
	us[userID] = struct{}{}
}

// Leave removes userID from the chat's presence set; empty rooms are pruned
// to bound memory. Leaving an absent entry is a no-op.
func (r *Registry) Leave(chatID, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	us, ok := r.rooms[chatID]
	if !ok {
		return
	}
	delete(us, userID)
	if len(us) == 0 {
		delete(r.rooms, chatID)
	}
}

func (r *Registry) IsPresent(chatID, userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	us, ok := r.rooms[chatID]
	if !ok {
		return false
	}
	_, present := us[userID]
	return present
}
