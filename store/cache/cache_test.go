package cache

import (
	"reflect"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, cfg Config, opts ...Option) (*Store, *clock.Mock) {
	t.Helper()
	mock := clock.NewMock()
	s, err := New(cfg, append([]Option{WithClock(mock)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, mock
}

type testEvent struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
}

func TestStore_SetAndGet(t *testing.T) {
	s, _ := newTestStore(t, Config{})

	tests := []struct {
		name  string
		value any
	}{
		{"string", "value1"},
		{"int", 42},
		{"struct", testEvent{ID: "e1", Title: "Launch", Tags: []string{"a"}}},
		{"pointer", &testEvent{ID: "e2"}},
		{"map", map[string]int{"a": 1}},
		{"slice", []string{"x", "y"}},
		{"nil", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, s.Set(tt.name, tt.value))

			got, ok, err := s.Get(tt.name)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, tt.value, got)
		})
	}

	t.Run("GetNonExistent", func(t *testing.T) {
		got, ok, err := s.Get("missing")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, got)
	})

	t.Run("LastWriteWins", func(t *testing.T) {
		require.NoError(t, s.Set("k", "original"))
		require.NoError(t, s.Set("k", "updated"))

		got, ok, err := s.Get("k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "updated", got)
	})
}

func TestStore_Expiration(t *testing.T) {
	s, mock := newTestStore(t, Config{DefaultTTL: 1000 * time.Millisecond})

	require.NoError(t, s.Set("k1", "A"))

	mock.Add(500 * time.Millisecond)
	got, ok, err := s.Get("k1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "A", got)

	mock.Add(1000 * time.Millisecond)
	got, ok, err = s.Get("k1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
	assert.False(t, s.Has("k1"))
	assert.Equal(t, 0, s.Len(), "expired entry should be removed on read")
}

func TestStore_ExpirationBoundary(t *testing.T) {
	s, mock := newTestStore(t, Config{DefaultTTL: time.Second})

	require.NoError(t, s.Set("k", "v"))
	mock.Add(time.Second - time.Millisecond)
	assert.True(t, s.Has("k"))

	mock.Add(time.Millisecond)
	assert.False(t, s.Has("k"), "an entry is dead once now reaches expiresAt")
	assert.Equal(t, 0, s.Len())
}

func TestStore_ExplicitTTL(t *testing.T) {
	s, mock := newTestStore(t, Config{DefaultTTL: time.Hour})

	require.NoError(t, s.SetWithTTL("short", "v", 100*time.Millisecond))
	require.NoError(t, s.SetWithTTL("default", "v", 0))

	mock.Add(200 * time.Millisecond)
	assert.False(t, s.Has("short"))
	assert.True(t, s.Has("default"))
}

func TestStore_HasDoesNotTouch(t *testing.T) {
	s, mock := newTestStore(t, Config{})

	start := mock.Now()
	require.NoError(t, s.Set("k", "v"))
	mock.Add(time.Second)
	assert.True(t, s.Has("k"))

	s.mu.Lock()
	e := s.entries["k"]
	assert.Equal(t, int64(0), e.accessCount)
	assert.True(t, e.lastAccessed.Equal(start))
	s.mu.Unlock()

	_, _, _ = s.Get("k")

	s.mu.Lock()
	assert.Equal(t, int64(1), e.accessCount)
	assert.True(t, e.lastAccessed.Equal(mock.Now()))
	s.mu.Unlock()
}

func TestStore_Delete(t *testing.T) {
	s, mock := newTestStore(t, Config{DefaultTTL: time.Second})

	require.NoError(t, s.Set("k", "v"))
	assert.True(t, s.Delete("k"))
	assert.False(t, s.Delete("k"))

	// Delete ignores liveness.
	require.NoError(t, s.Set("dead", "v"))
	mock.Add(2 * time.Second)
	assert.True(t, s.Delete("dead"))
}

func TestStore_Clear(t *testing.T) {
	s, _ := newTestStore(t, Config{})

	require.NoError(t, s.Set("a", 1))
	require.NoError(t, s.Set("b", 2))
	s.Clear()

	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Has("a"))

	// The store stays usable after Clear.
	require.NoError(t, s.Set("c", 3))
	assert.True(t, s.Has("c"))
}

func TestStore_Eviction(t *testing.T) {
	t.Run("LeastRecentlyAccessed", func(t *testing.T) {
		s, mock := newTestStore(t, Config{MaxSize: 2})

		require.NoError(t, s.Set("a", "A")) // t=0
		mock.Add(time.Millisecond)
		require.NoError(t, s.Set("b", "B")) // t=1
		mock.Add(time.Millisecond)
		_, ok, err := s.Get("a") // t=2, a.lastAccessed=2
		require.NoError(t, err)
		require.True(t, ok)
		mock.Add(time.Millisecond)
		require.NoError(t, s.Set("c", "C")) // t=3

		assert.Equal(t, 2, s.Len())
		assert.True(t, s.Has("a"))
		assert.False(t, s.Has("b"))
		assert.True(t, s.Has("c"))
	})

	t.Run("NPlusOneKeys", func(t *testing.T) {
		const n = 5
		s, mock := newTestStore(t, Config{MaxSize: n})

		for i := 0; i <= n; i++ {
			require.NoError(t, s.Set(string(rune('a'+i)), i))
			mock.Add(time.Millisecond)
		}

		assert.Equal(t, n, s.Len())
		assert.False(t, s.Has("a"), "oldest entry should be evicted")
		for i := 1; i <= n; i++ {
			assert.True(t, s.Has(string(rune('a'+i))))
		}
	})

	t.Run("TiesGoToFirstInserted", func(t *testing.T) {
		s, _ := newTestStore(t, Config{MaxSize: 3})

		require.NoError(t, s.Set("x", 1))
		require.NoError(t, s.Set("y", 2))
		require.NoError(t, s.Set("z", 3))
		require.NoError(t, s.Set("w", 4))

		assert.False(t, s.Has("x"))
		assert.True(t, s.Has("y"))
		assert.True(t, s.Has("z"))
		assert.True(t, s.Has("w"))
	})

	t.Run("OverwriteAtCapacityDoesNotEvict", func(t *testing.T) {
		s, _ := newTestStore(t, Config{MaxSize: 2})

		require.NoError(t, s.Set("a", 1))
		require.NoError(t, s.Set("b", 2))
		require.NoError(t, s.Set("a", 3))

		assert.Equal(t, 2, s.Len())
		assert.True(t, s.Has("a"))
		assert.True(t, s.Has("b"))
	})
}

func TestStore_InvalidatePattern(t *testing.T) {
	s, _ := newTestStore(t, Config{})

	require.NoError(t, s.Set("ns:a", 1))
	require.NoError(t, s.Set("ns:b", 2))
	require.NoError(t, s.Set("other:c", 3))

	count, err := s.InvalidatePattern("^ns:")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.True(t, s.Has("other:c"))

	count, err = s.InvalidatePattern("^ns:")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	t.Run("InvalidSyntax", func(t *testing.T) {
		_, err := s.InvalidatePattern("([")
		assert.Error(t, err)
		assert.True(t, s.Has("other:c"))
	})

	t.Run("Namespace", func(t *testing.T) {
		require.NoError(t, s.Set("events:id:1", 1))
		require.NoError(t, s.Set("events:filtered:abc", 2))
		require.NoError(t, s.Set("eventsx:id:1", 3))

		assert.Equal(t, 2, s.InvalidateNamespace("events"))
		assert.True(t, s.Has("eventsx:id:1"))
		assert.Equal(t, 0, s.InvalidateNamespace("events"))
	})
}

func TestStore_Stats(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		s, _ := newTestStore(t, Config{MaxSize: 10})

		stats := s.Stats()
		assert.Equal(t, 0, stats.Size)
		assert.Equal(t, 10, stats.MaxSize)
		assert.Equal(t, int64(0), stats.TotalSize)
		assert.Equal(t, 0, stats.Expired)
		assert.Equal(t, 0.0, stats.HitRate)
		assert.True(t, stats.OldestEntry.IsZero())
		assert.True(t, stats.NewestEntry.IsZero())
	})

	t.Run("Populated", func(t *testing.T) {
		s, mock := newTestStore(t, Config{MaxSize: 10, DefaultTTL: time.Minute})

		start := mock.Now()
		require.NoError(t, s.SetWithTTL("short", "ab", time.Second))
		mock.Add(time.Second)
		require.NoError(t, s.Set("a", "abcd"))
		mock.Add(time.Second)
		require.NoError(t, s.Set("b", 1))

		_, _, _ = s.Get("a")
		_, _, _ = s.Get("a")
		_, _, _ = s.Get("b")
		_, _, _ = s.Get("b")

		stats := s.Stats()
		assert.Equal(t, 3, stats.Size)
		assert.Equal(t, 1, stats.Expired, "short has expired but has not been swept")
		// len(`"ab"`) + len(`"abcd"`) + len(`1`)
		assert.Equal(t, int64(4+6+1), stats.TotalSize)
		assert.InDelta(t, 4.0/3.0, stats.HitRate, 1e-9)
		assert.True(t, stats.OldestEntry.Equal(start))
		assert.True(t, stats.NewestEntry.Equal(start.Add(2*time.Second)))
	})
}

func TestStore_Compression(t *testing.T) {
	t.Run("IsolatesCallers", func(t *testing.T) {
		s, _ := newTestStore(t, Config{EnableCompression: true})

		original := &testEvent{ID: "e1", Title: "Launch", Tags: []string{"a"}}
		require.NoError(t, s.Set("event", original))
		original.Title = "mutated after set"

		got, ok, err := s.Get("event")
		require.NoError(t, err)
		require.True(t, ok)
		ev, isEvent := got.(*testEvent)
		require.True(t, isEvent, "decoded value keeps its dynamic type")
		assert.Equal(t, "Launch", ev.Title)

		ev.Tags[0] = "mutated after get"
		again, _, err := s.Get("event")
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, again.(*testEvent).Tags)
	})

	t.Run("WithoutCompressionSharesValue", func(t *testing.T) {
		s, _ := newTestStore(t, Config{})

		original := &testEvent{ID: "e1", Title: "Launch"}
		require.NoError(t, s.Set("event", original))
		original.Title = "mutated"

		got, _, err := s.Get("event")
		require.NoError(t, err)
		assert.Equal(t, "mutated", got.(*testEvent).Title)
	})

	t.Run("SerializationFailure", func(t *testing.T) {
		s, _ := newTestStore(t, Config{EnableCompression: true})

		err := s.Set("bad", make(chan int))
		assert.Error(t, err)
		assert.False(t, s.Has("bad"))
	})

	t.Run("DeserializationFailure", func(t *testing.T) {
		s, mock := newTestStore(t, Config{EnableCompression: true})

		now := mock.Now()
		s.mu.Lock()
		s.entries["corrupt"] = &entry{
			key:        "corrupt",
			value:      encoded{data: []byte("{"), typ: reflect.TypeOf(map[string]int{})},
			createdAt:  now,
			expiresAt:  now.Add(time.Minute),
			compressed: true,
		}
		s.mu.Unlock()

		got, ok, err := s.Get("corrupt")
		assert.Error(t, err)
		assert.False(t, ok)
		assert.Nil(t, got)
	})

	t.Run("NilValue", func(t *testing.T) {
		s, _ := newTestStore(t, Config{EnableCompression: true})

		require.NoError(t, s.Set("nil", nil))
		got, ok, err := s.Get("nil")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Nil(t, got)
	})
}

func TestStore_CleanupSweep(t *testing.T) {
	s, mock := newTestStore(t, Config{
		DefaultTTL:      500 * time.Millisecond,
		CleanupInterval: time.Second,
	})

	require.NoError(t, s.Set("never-read", "v"))
	require.NoError(t, s.SetWithTTL("long", "v", time.Hour))

	mock.Add(time.Second)

	assert.Eventually(t, func() bool {
		return s.Len() == 1
	}, time.Second, 5*time.Millisecond)
	assert.True(t, s.Has("long"))
}

func TestStore_Close(t *testing.T) {
	mock := clock.NewMock()
	s, err := New(Config{CleanupInterval: time.Second}, WithClock(mock))
	require.NoError(t, err)

	require.NoError(t, s.Set("k", "v"))
	require.NoError(t, s.Close())
	assert.Equal(t, 0, s.Len())

	// Close is idempotent.
	require.NoError(t, s.Close())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"Zero", Config{}, false},
		{"Default", DefaultConfig(), false},
		{"NegativeTTL", Config{DefaultTTL: -time.Second}, true},
		{"NegativeMaxSize", Config{MaxSize: -1}, true},
		{"NegativeCleanup", Config{CleanupInterval: -time.Second}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				_, newErr := New(tt.cfg)
				assert.Error(t, newErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	t.Run("DefaultsApplied", func(t *testing.T) {
		s, _ := newTestStore(t, Config{})
		assert.Equal(t, DefaultTTL, s.Config().DefaultTTL)
		assert.Equal(t, DefaultMaxSize, s.Config().MaxSize)
		assert.Equal(t, time.Duration(0), s.Config().CleanupInterval)
	})
}

func TestStore_Metrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	s, mock := newTestStore(t, Config{MaxSize: 2, DefaultTTL: time.Second}, WithMetrics(registry, "test_cache"))

	require.NoError(t, s.Set("a", 1))
	require.NoError(t, s.Set("b", 2))
	mock.Add(time.Millisecond)
	_, _, _ = s.Get("a")
	_, _, _ = s.Get("missing")
	require.NoError(t, s.Set("c", 3)) // evicts b

	mock.Add(2 * time.Second)
	_, _, _ = s.Get("a") // expired

	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.hits))
	assert.Equal(t, 2.0, testutil.ToFloat64(s.metrics.misses))
	assert.Equal(t, 3.0, testutil.ToFloat64(s.metrics.sets))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.evictions))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.expirations))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.size))

	families, err := registry.Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	assert.True(t, names["eventdesk_cache_hits_total"])
	assert.True(t, names["eventdesk_cache_size"])

	t.Run("DuplicateRegistration", func(t *testing.T) {
		_, err := New(Config{}, WithMetrics(registry, "test_cache"))
		assert.Error(t, err)
	})
}
