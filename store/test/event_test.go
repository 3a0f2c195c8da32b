package test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/eventdesk/store"
	"github.com/hrygo/eventdesk/store/cache"
)

func createEvent(ctx context.Context, t *testing.T, ts *TestingStore, title string, startTs int64, published bool) *store.Event {
	t.Helper()
	event, err := ts.CreateEvent(ctx, &store.Event{
		Title:       title,
		Description: "# " + title,
		Location:    "Hall A",
		StartTs:     startTs,
		Published:   published,
	})
	require.NoError(t, err)
	return event
}

func TestEventStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t, testCacheConfig())

	event := createEvent(ctx, t, ts, "Launch party", 1000, true)
	assert.NotEmpty(t, event.UID)
	assert.NotZero(t, event.CreatedTs)
	createEvent(ctx, t, ts, "Draft", 2000, false)

	published := true
	list, err := ts.ListEvents(ctx, &store.FindEvent{Published: &published})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Launch party", list[0].Title)
	assert.Equal(t, "Hall A", list[0].Location)
	assert.Nil(t, list[0].EndTs)

	all, err := ts.ListEvents(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, []string{"Launch party", "Draft"}, []string{all[0].Title, all[1].Title})

	found, err := ts.GetEvent(ctx, event.UID)
	require.NoError(t, err)
	assert.Equal(t, event.UID, found.UID)
	assert.True(t, found.Published)
}

func TestEventStoreFilters(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t, testCacheConfig())

	for i, start := range []int64{100, 200, 300, 400} {
		createEvent(ctx, t, ts, string(rune('a'+i)), start, true)
	}

	from, to := int64(200), int64(400)
	list, err := ts.ListEvents(ctx, &store.FindEvent{FromTs: &from, ToTs: &to})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(200), list[0].StartTs)
	assert.Equal(t, int64(300), list[1].StartTs)

	limit := 3
	list, err = ts.ListEvents(ctx, &store.FindEvent{Limit: &limit})
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestEventStoreCaching(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t, testCacheConfig())
	createEvent(ctx, t, ts, "First", 100, true)

	published := true
	find := &store.FindEvent{Published: &published}

	_, err := ts.ListEvents(ctx, find)
	require.NoError(t, err)
	_, err = ts.ListEvents(ctx, &store.FindEvent{Published: &published})
	require.NoError(t, err)
	assert.Equal(t, int64(1), ts.Driver.EventLists(), "equal filters share a cache entry")

	createEvent(ctx, t, ts, "Second", 200, true)
	list, err := ts.ListEvents(ctx, find)
	require.NoError(t, err)
	assert.Len(t, list, 2, "writes invalidate cached listings")
	assert.Equal(t, int64(2), ts.Driver.EventLists())
}

func TestEventStoreNotFound(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t, testCacheConfig())

	_, err := ts.GetEvent(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = ts.GetEvent(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, int64(2), ts.Driver.EventLists(), "misses are not cached")

	title := "x"
	_, err = ts.UpdateEvent(ctx, &store.UpdateEvent{UID: "missing", Title: &title})
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = ts.DeleteEvent(ctx, &store.DeleteEvent{UID: "missing"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestEventStoreUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t, testCacheConfig())
	event := createEvent(ctx, t, ts, "Old title", 100, false)

	_, err := ts.GetEvent(ctx, event.UID)
	require.NoError(t, err)

	title, published, end := "New title", true, int64(500)
	updated, err := ts.UpdateEvent(ctx, &store.UpdateEvent{
		UID:       event.UID,
		Title:     &title,
		Published: &published,
		EndTs:     &end,
	})
	require.NoError(t, err)
	assert.Equal(t, "New title", updated.Title)
	assert.Equal(t, "Hall A", updated.Location)
	require.NotNil(t, updated.EndTs)
	assert.Equal(t, int64(500), *updated.EndTs)

	found, err := ts.GetEvent(ctx, event.UID)
	require.NoError(t, err)
	assert.Equal(t, "New title", found.Title)
	assert.True(t, found.Published)

	require.NoError(t, ts.DeleteEvent(ctx, &store.DeleteEvent{UID: event.UID}))
	_, err = ts.GetEvent(ctx, event.UID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestEventStoreRefreshAhead(t *testing.T) {
	ctx := context.Background()
	mock := clock.NewMock()
	ts := NewTestingStore(ctx, t, testCacheConfig(), cache.WithClock(mock))
	createEvent(ctx, t, ts, "First", 100, true)

	list, err := ts.ListEvents(ctx, nil)
	require.NoError(t, err)
	require.Len(t, list, 1)

	// Bypass the store so the cached listing is not invalidated.
	_, err = ts.GetDriver().CreateEvent(ctx, &store.Event{UID: "direct", Title: "Second", StartTs: 200})
	require.NoError(t, err)

	mock.Add(cache.DefaultTTL * 9 / 10)
	list, err = ts.ListEvents(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, list, 1, "stale listing is served while it refreshes")

	require.Eventually(t, func() bool {
		list, err := ts.ListEvents(ctx, nil)
		return err == nil && len(list) == 2
	}, time.Second, 10*time.Millisecond)
}

func TestEventStoreCompressedCache(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t, cache.Config{EnableCompression: true})
	event := createEvent(ctx, t, ts, "Isolated", 100, true)

	first, err := ts.GetEvent(ctx, event.UID)
	require.NoError(t, err)
	first.Title = "mutated by caller"

	second, err := ts.GetEvent(ctx, event.UID)
	require.NoError(t, err)
	assert.Equal(t, "Isolated", second.Title)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			list, err := ts.ListEvents(ctx, nil)
			assert.NoError(t, err)
			assert.Len(t, list, 1)
		}()
	}
	wg.Wait()
}
