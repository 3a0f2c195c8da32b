package cache

import (
	"time"
)

// Stats is a snapshot of the map computed when Stats is called.
type Stats struct {
	Size      int   `json:"size"`
	MaxSize   int   `json:"max_size"`
	TotalSize int64 `json:"total_size"`
	// Expired counts entries past their TTL that have not been swept yet.
	Expired int `json:"expired"`
	// HitRate is the mean access count per entry. It is not a hit/miss ratio;
	// the name is kept because dashboards already read it.
	HitRate float64 `json:"hit_rate"`
	// OldestEntry and NewestEntry are the min and max creation times, zero
	// on an empty store.
	OldestEntry time.Time `json:"oldest_entry"`
	NewestEntry time.Time `json:"newest_entry"`
}

// Stats returns a snapshot of the current map contents.
func (s *Store) Stats() Stats {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{
		Size:    len(s.entries),
		MaxSize: s.cfg.MaxSize,
	}
	if len(s.entries) == 0 {
		return stats
	}

	var accesses int64
	for _, e := range s.entries {
		stats.TotalSize += int64(e.size)
		accesses += e.accessCount
		if !e.live(now) {
			stats.Expired++
		}
		if stats.OldestEntry.IsZero() || e.createdAt.Before(stats.OldestEntry) {
			stats.OldestEntry = e.createdAt
		}
		if e.createdAt.After(stats.NewestEntry) {
			stats.NewestEntry = e.createdAt
		}
	}
	stats.HitRate = float64(accesses) / float64(len(s.entries))
	return stats
}
