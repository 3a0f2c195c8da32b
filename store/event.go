package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hrygo/eventdesk/store/cache"
)

// Event is the object representing an event listed on the site.
type Event struct {
	UID       string
	CreatedTs int64
	UpdatedTs int64

	Title string
	// Description is markdown.
	Description string
	Location    string
	StartTs     int64
	EndTs       *int64
	Published   bool
}

// FindEvent is the find condition for events.
type FindEvent struct {
	UID       *string
	Published *bool

	// Time range filters on start_ts: FromTs inclusive, ToTs exclusive.
	FromTs *int64
	ToTs   *int64

	Limit *int
}

// UpdateEvent is the update request for an event.
type UpdateEvent struct {
	UID         string
	UpdatedTs   *int64
	Title       *string
	Description *string
	Location    *string
	StartTs     *int64
	EndTs       *int64
	Published   *bool
}

// DeleteEvent is the delete request for an event.
type DeleteEvent struct {
	UID string
}

func eventListKey(find *FindEvent) string {
	return cache.Key(eventNamespace, "filtered", cache.HashKey(find))
}

func eventKey(uid string) string {
	return cache.Key(eventNamespace, "id", uid)
}

// CreateEvent creates a new event. A UID is generated when empty.
func (s *Store) CreateEvent(ctx context.Context, create *Event) (*Event, error) {
	if create.UID == "" {
		create.UID = uuid.NewString()
	}
	event, err := s.driver.CreateEvent(ctx, create)
	if err != nil {
		return nil, err
	}
	s.invalidate(eventNamespace)
	return event, nil
}

// ListEvents lists events matching find. Results are cached per filter and
// refreshed in the background once they get old. The returned slice is
// shared with other callers and must not be modified.
func (s *Store) ListEvents(ctx context.Context, find *FindEvent) ([]*Event, error) {
	if find == nil {
		find = &FindEvent{}
	}
	filter := *find
	return cache.MemoizeWithRefreshAs(ctx, s.cache, eventListKey(&filter), 0, 0, func(ctx context.Context) ([]*Event, error) {
		return s.driver.ListEvents(ctx, &filter)
	})
}

// GetEvent returns the event with uid, or ErrNotFound.
func (s *Store) GetEvent(ctx context.Context, uid string) (*Event, error) {
	return cache.MemoizeAs(ctx, s.cache, eventKey(uid), 0, func(ctx context.Context) (*Event, error) {
		list, err := s.driver.ListEvents(ctx, &FindEvent{UID: &uid})
		if err != nil {
			return nil, err
		}
		if len(list) == 0 {
			return nil, ErrNotFound
		}
		return list[0], nil
	})
}

// UpdateEvent applies update and returns the stored event.
func (s *Store) UpdateEvent(ctx context.Context, update *UpdateEvent) (*Event, error) {
	if update.UpdatedTs == nil {
		now := time.Now().Unix()
		update.UpdatedTs = &now
	}
	event, err := s.driver.UpdateEvent(ctx, update)
	if err != nil {
		return nil, err
	}
	s.invalidate(eventNamespace)
	return event, nil
}

func (s *Store) DeleteEvent(ctx context.Context, delete *DeleteEvent) error {
	if err := s.driver.DeleteEvent(ctx, delete); err != nil {
		return err
	}
	s.invalidate(eventNamespace)
	return nil
}
