package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"boardanalyzer/internal/report"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2023, 1, 12, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestReportStore_PutGet(t *testing.T) {
	clock := newFakeClock()
	s := NewReportStore(Options{TTL: time.Minute, Now: clock.Now}, nil)

	stored := s.Put(Report{
		SourceName: "board.html",
		CardCount:  3,
		Tables:     report.Tables{Scope: []report.ScopeRow{{Scope: "All cards", Count: 3}}},
		Workbook:   []byte("xlsx"),
	})
	require.NotEmpty(t, stored.ID)
	assert.Equal(t, clock.Now(), stored.CreatedAt)
	assert.Equal(t, clock.Now().Add(time.Minute), stored.ExpiresAt)

	got, ok := s.Get(stored.ID)
	require.True(t, ok)
	assert.Equal(t, stored, got)

	_, ok = s.Get("unknown")
	assert.False(t, ok)

	stats := s.Stats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 0.5, stats.HitRatio)
}

func TestReportStore_UniqueIDs(t *testing.T) {
	s := NewReportStore(Options{}, nil)
	a := s.Put(Report{})
	b := s.Put(Report{})
	assert.NotEqual(t, a.ID, b.ID)
}

func TestReportStore_TTL(t *testing.T) {
	clock := newFakeClock()
	s := NewReportStore(Options{TTL: time.Minute, Now: clock.Now}, nil)

	r := s.Put(Report{})
	clock.Advance(59 * time.Second)
	_, ok := s.Get(r.ID)
	assert.True(t, ok)

	clock.Advance(time.Second)
	_, ok = s.Get(r.ID)
	assert.False(t, ok)
	assert.Equal(t, int64(1), s.Stats().Expired)
	assert.Zero(t, s.Stats().Entries)
}

func TestReportStore_EvictsOldest(t *testing.T) {
	clock := newFakeClock()
	s := NewReportStore(Options{TTL: time.Hour, MaxEntries: 2, Now: clock.Now}, nil)

	first := s.Put(Report{SourceName: "first"})
	clock.Advance(time.Second)
	second := s.Put(Report{SourceName: "second"})
	clock.Advance(time.Second)
	third := s.Put(Report{SourceName: "third"})

	_, ok := s.Get(first.ID)
	assert.False(t, ok, "oldest entry should have been evicted")
	_, ok = s.Get(second.ID)
	assert.True(t, ok)
	_, ok = s.Get(third.ID)
	assert.True(t, ok)

	stats := s.Stats()
	assert.Equal(t, 2, stats.Entries)
	assert.Equal(t, int64(1), stats.Evicted)
}

func TestReportStore_Delete(t *testing.T) {
	s := NewReportStore(Options{}, nil)
	r := s.Put(Report{})

	assert.True(t, s.Delete(r.ID))
	assert.False(t, s.Delete(r.ID))
	_, ok := s.Get(r.ID)
	assert.False(t, ok)
}

func TestReportStore_CleanupExpired(t *testing.T) {
	clock := newFakeClock()
	s := NewReportStore(Options{TTL: time.Minute, Now: clock.Now}, nil)

	s.Put(Report{})
	clock.Advance(30 * time.Second)
	keep := s.Put(Report{})
	clock.Advance(45 * time.Second)

	assert.Equal(t, 1, s.CleanupExpired())
	assert.Equal(t, 0, s.CleanupExpired())
	_, ok := s.Get(keep.ID)
	assert.True(t, ok)
}

func TestReportStore_Defaults(t *testing.T) {
	stats := NewReportStore(Options{}, nil).Stats()
	assert.Equal(t, DefaultMaxEntries, stats.MaxEntries)
	assert.Equal(t, DefaultTTL.Seconds(), stats.TTLSeconds)
}

func TestReportStore_RunStopsOnCancel(t *testing.T) {
	clock := newFakeClock()
	s := NewReportStore(Options{
		TTL:             time.Minute,
		CleanupInterval: 5 * time.Millisecond,
		Now:             clock.Now,
	}, nil)
	s.Put(Report{})
	clock.Advance(2 * time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	assert.Eventually(t, func() bool { return s.Stats().Entries == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop after cancel")
	}
}

func TestReportStore_Concurrent(t *testing.T) {
	s := NewReportStore(Options{MaxEntries: 10}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := s.Put(Report{})
			s.Get(r.ID)
			s.Stats()
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, s.Stats().Entries, 10)
}
