package cache

import (
	"github.com/benbjohnson/clock"
)

// evictLocked removes the entry with the oldest lastAccessed. Ties go to the
// entry inserted first. This is a full O(n) scan per eviction, which is fine
// for caches of a few hundred entries; larger caches want a recency list with
// O(1) move-to-front instead.
// Must be called with s.mu held.
func (s *Store) evictLocked() bool {
	var victim *entry
	for _, e := range s.entries {
		if victim == nil ||
			e.lastAccessed.Before(victim.lastAccessed) ||
			(e.lastAccessed.Equal(victim.lastAccessed) && e.seq < victim.seq) {
			victim = e
		}
	}
	if victim == nil {
		return false
	}
	delete(s.entries, victim.key)
	return true
}

// removeExpired deletes every dead entry and returns how many were removed.
func (s *Store) removeExpired() int {
	now := s.clock.Now()

	s.mu.Lock()
	removed := 0
	for key, e := range s.entries {
		if !e.live(now) {
			delete(s.entries, key)
			removed++
		}
	}
	n := len(s.entries)
	s.mu.Unlock()

	if removed > 0 {
		s.metrics.recordExpiration(removed)
		s.metrics.updateSize(n)
		s.logger.Debug("cache sweep removed expired entries", "removed", removed, "remaining", n)
	}
	return removed
}

// cleanupLoop periodically removes expired entries until the Store is closed.
func (s *Store) cleanupLoop(ticker *clock.Ticker) {
	defer s.wg.Done()
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.removeExpired()
		}
	}
}
