// Package stats summarizes site activity for the admin dashboard.
package stats

import (
	"context"
	"time"

	"github.com/hrygo/eventdesk/store"
	"github.com/hrygo/eventdesk/store/cache"
)

// summaryTTL bounds how stale the dashboard may get; contact requests do
// not invalidate it.
const summaryTTL = time.Minute

var summaryKey = cache.Key("stats", "summary")

// Summary represents site statistics.
type Summary struct {
	// Event stats
	TotalEvents     int64 `json:"total_events"`
	PublishedEvents int64 `json:"published_events"`
	UpcomingEvents  int64 `json:"upcoming_events"`
	EventsThisWeek  int64 `json:"events_this_week"`

	TotalClients int64 `json:"total_clients"`

	// Contact stats
	ContactRequestsLastWeek int64     `json:"contact_requests_last_week"`
	LastContactTime         time.Time `json:"last_contact_time"`

	LastUpdated time.Time `json:"last_updated"`
}

// Collector computes the summary from the store and keeps it in the cache.
type Collector struct {
	store *store.Store
	cache *cache.Store
	now   func() time.Time
}

// NewCollector creates a new statistics collector.
func NewCollector(st *store.Store, c *cache.Store) *Collector {
	return &Collector{
		store: st,
		cache: c,
		now:   time.Now,
	}
}

// GetSummary returns the cached summary, recomputing it in the background
// once it gets old.
func (c *Collector) GetSummary(ctx context.Context) (*Summary, error) {
	return cache.MemoizeWithRefreshAs(ctx, c.cache, summaryKey, summaryTTL, 0, c.collect)
}

// collect gathers current statistics from the store.
func (c *Collector) collect(ctx context.Context) (*Summary, error) {
	now := c.now()
	weekAgo := now.AddDate(0, 0, -7)
	thisWeekStart := getWeekStart(now)
	nextWeekStart := thisWeekStart.AddDate(0, 0, 7)

	summary := &Summary{LastUpdated: now}

	events, err := c.store.ListEvents(ctx, &store.FindEvent{})
	if err != nil {
		return nil, err
	}
	summary.TotalEvents = int64(len(events))
	for _, e := range events {
		if e.Published {
			summary.PublishedEvents++
		}
		start := time.Unix(e.StartTs, 0)
		if !start.Before(now) {
			summary.UpcomingEvents++
		}
		if !start.Before(thisWeekStart) && start.Before(nextWeekStart) {
			summary.EventsThisWeek++
		}
	}

	clients, err := c.store.ListClients(ctx)
	if err != nil {
		return nil, err
	}
	summary.TotalClients = int64(len(clients))

	requests, err := c.store.ListContactRequests(ctx, &store.FindContactRequest{})
	if err != nil {
		return nil, err
	}
	for _, r := range requests {
		created := time.Unix(r.CreatedTs, 0)
		if !created.Before(weekAgo) {
			summary.ContactRequestsLastWeek++
		}
		if created.After(summary.LastContactTime) {
			summary.LastContactTime = created
		}
	}

	return summary, nil
}

// getWeekStart returns midnight UTC of the Monday starting t's week.
func getWeekStart(t time.Time) time.Time {
	t = t.UTC()
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return t.Truncate(24*time.Hour).AddDate(0, 0, -weekday+1)
}
