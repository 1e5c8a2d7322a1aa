package store

import "stocksence/models"

// Notifications returns the messages that have not yet expired, oldest first.
func (s *Store) Notifications() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneNotifications()
	out := make([]models.Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}

// DismissNotification removes a message before it expires.
func (s *Store) DismissNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i:i], s.notifications[i+1:]...)
			return
		}
	}
}

func (s *Store) pruneNotifications() int {
	now := s.now()
	kept := s.notifications[:0:0]
	for _, n := range s.notifications {
		if now.Sub(n.CreatedAt) < NotificationTTL {
			kept = append(kept, n)
		}
	}
	removed := len(s.notifications) - len(kept)
	s.notifications = kept
	return removed
}
