package store

import (
	"errors"
	"sync"
	"time"

	"github.com/boreal-gis/site-atlas/internal/atlas"
)

var (
	// ErrNotFound is returned when no build snapshot is available.
	ErrNotFound = errors.New("no map snapshot available")
)

// MemoryStore is a concurrency-safe in-memory history of build snapshots.
type MemoryStore struct {
	mu sync.RWMutex

	// time-ordered, oldest first
	snapshots []atlas.Snapshot

	// retention configuration
	maxHistory int           // max number of snapshots kept
	maxAge     time.Duration // optional max age for snapshots
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

// SaveSnapshot appends a new build snapshot and enforces retention.
func (s *MemoryStore) SaveSnapshot(snapshot atlas.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots = append(s.snapshots, snapshot)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(s.snapshots) > s.maxHistory {
		over := len(s.snapshots) - s.maxHistory
		s.snapshots = s.snapshots[over:]
	}

	// Enforce retention by age.
	if s.maxAge > 0 {
		cutoff := time.Now().Add(-s.maxAge)
		i := 0
		for ; i < len(s.snapshots); i++ {
			if s.snapshots[i].GeneratedAt.After(cutoff) || s.snapshots[i].GeneratedAt.Equal(cutoff) {
				break
			}
		}
		if i > 0 && i < len(s.snapshots) {
			s.snapshots = s.snapshots[i:]
		}
	}
}

// Latest returns the most recent build snapshot.
func (s *MemoryStore) Latest() (atlas.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.snapshots) == 0 {
		return atlas.Snapshot{}, ErrNotFound
	}
	return s.snapshots[len(s.snapshots)-1], nil
}

// Range returns all build snapshots between from and to (inclusive).
func (s *MemoryStore) Range(from, to time.Time) ([]atlas.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.snapshots) == 0 {
		return nil, ErrNotFound
	}

	var result []atlas.Snapshot
	for _, snap := range s.snapshots {
		if (snap.GeneratedAt.Equal(from) || snap.GeneratedAt.After(from)) &&
			(snap.GeneratedAt.Equal(to) || snap.GeneratedAt.Before(to)) {
			result = append(result, snap)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}

	return result, nil
}
