package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"boardanalyzer/internal/report"
)

// Defaults applied when Options leaves a field at zero.
const (
	DefaultTTL             = 30 * time.Minute
	DefaultMaxEntries      = 100
	DefaultCleanupInterval = 5 * time.Minute
)

// Report is one analysed upload kept for later download.
type Report struct {
	ID            string        `json:"id"`
	SourceName    string        `json:"source_name"`
	ReferenceDate time.Time     `json:"reference_date"`
	CardCount     int           `json:"card_count"`
	Tables        report.Tables `json:"tables"`
	Workbook      []byte        `json:"-"`
	CreatedAt     time.Time     `json:"created_at"`
	ExpiresAt     time.Time     `json:"expires_at"`
}

// Options configures retention.
type Options struct {
	TTL             time.Duration
	MaxEntries      int
	CleanupInterval time.Duration
	// Now overrides the clock, mainly for tests.
	Now func() time.Time
}

// Stats is a snapshot of store usage.
type Stats struct {
	Entries    int     `json:"entries"`
	MaxEntries int     `json:"max_entries"`
	Hits       int64   `json:"hits"`
	Misses     int64   `json:"misses"`
	Evicted    int64   `json:"evicted"`
	Expired    int64   `json:"expired"`
	HitRatio   float64 `json:"hit_ratio"`
	TTLSeconds float64 `json:"ttl_seconds"`
}

// ReportStore keeps generated reports in memory, keyed by a random id.
// Entries expire after the TTL and the oldest entry is evicted once the store
// is full.
type ReportStore struct {
	mu      sync.RWMutex
	entries map[string]Report
	opts    Options
	logger  *slog.Logger

	hits    int64
	misses  int64
	evicted int64
	expired int64
}

// NewReportStore creates an empty store. Call Run to start expiring entries
// in the background.
func NewReportStore(opts Options, logger *slog.Logger) *ReportStore {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = DefaultMaxEntries
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = DefaultCleanupInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ReportStore{
		entries: make(map[string]Report),
		opts:    opts,
		logger:  logger.With("component", "report_store"),
	}
}

// Put stores r under a fresh id and returns the stored copy.
func (s *ReportStore) Put(r Report) Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.opts.Now()
	r.ID = uuid.New().String()
	r.CreatedAt = now
	r.ExpiresAt = now.Add(s.opts.TTL)

	for len(s.entries) >= s.opts.MaxEntries {
		s.evictOldest()
	}
	s.entries[r.ID] = r

	s.logger.Debug("report stored",
		slog.String("report_id", r.ID),
		slog.Int("entries", len(s.entries)))
	return r
}

// Get returns the report stored under id, unless it has expired.
func (s *ReportStore) Get(id string) (Report, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.entries[id]
	if !ok {
		s.misses++
		return Report{}, false
	}
	if !s.opts.Now().Before(r.ExpiresAt) {
		delete(s.entries, id)
		s.expired++
		s.misses++
		return Report{}, false
	}

	s.hits++
	return r, true
}

// Delete removes id from the store. It reports whether an entry was removed.
func (s *ReportStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return false
	}
	delete(s.entries, id)
	return true
}

// Stats returns current usage counters.
func (s *ReportStore) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		Entries:    len(s.entries),
		MaxEntries: s.opts.MaxEntries,
		Hits:       s.hits,
		Misses:     s.misses,
		Evicted:    s.evicted,
		Expired:    s.expired,
		TTLSeconds: s.opts.TTL.Seconds(),
	}
	if total := s.hits + s.misses; total > 0 {
		stats.HitRatio = float64(s.hits) / float64(total)
	}
	return stats
}

// CleanupExpired drops every expired entry and returns how many were removed.
func (s *ReportStore) CleanupExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.opts.Now()
	removed := 0
	for id, r := range s.entries {
		if !now.Before(r.ExpiresAt) {
			delete(s.entries, id)
			removed++
		}
	}
	s.expired += int64(removed)
	return removed
}

// Run expires entries every cleanup interval until ctx is done.
func (s *ReportStore) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.opts.CleanupInterval)
	defer ticker.Stop()

	s.logger.Info("report store janitor started",
		slog.Duration("interval", s.opts.CleanupInterval),
		slog.Duration("ttl", s.opts.TTL))

	for {
		select {
		case <-ticker.C:
			if n := s.CleanupExpired(); n > 0 {
				s.logger.Debug("expired reports removed", slog.Int("count", n))
			}
		case <-ctx.Done():
			s.logger.Info("report store janitor stopped")
			return nil
		}
	}
}

// evictOldest must be called with the write lock held.
func (s *ReportStore) evictOldest() {
	var (
		oldestID   string
		oldestTime time.Time
	)
	for id, r := range s.entries {
		if oldestID == "" || r.CreatedAt.Before(oldestTime) {
			oldestID = id
			oldestTime = r.CreatedAt
		}
	}
	if oldestID == "" {
		return
	}
	delete(s.entries, oldestID)
	s.evicted++
	s.logger.Debug("report evicted", slog.String("report_id", oldestID))
}
