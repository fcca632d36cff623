package bot

import "sync"

// Sessions tracks the sticky category per chat. Empty string means the chat
// searches all categories. State is in-memory only and resets on restart.
type Sessions struct {
	mu   sync.RWMutex
	cats map[int64]string
}

func NewSessions() *Sessions {
	return &Sessions{cats: make(map[int64]string)}
}

// Select pins a chat to one category.
func (s *Sessions) Select(chatID int64, category string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cats[chatID] = category
}

// Reset clears the chat's pinned category.
func (s *Sessions) Reset(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cats, chatID)
}

// Get returns the chat's pinned category, or "" when none is set.
func (s *Sessions) Get(chatID int64) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cats[chatID]
}
