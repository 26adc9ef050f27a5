// evictor.go houses the eviction loop for Store.  Every EvictInterval it
// scans the map and removes:
//
//   - forms idle longer than IdleTTL
//   - least-recently-used forms when the map size exceeds MaxEntries
//
// Each eviction event is logged and updates Prometheus counters.
package session

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/cadastro/internal/metrics"
)

func (s *Store) evictLoop(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-s.stop:
			return
		case now := <-t.C:
			s.evict(now)
		}
	}
}

// evict runs one idle pass and one LRU pass.  It returns the number of
// entries removed.
func (s *Store) evict(now time.Time) int {
	removed := 0
	var count int

	// ----------------------------------------------------------------
	// Idle eviction pass
	// ----------------------------------------------------------------
	s.m.Range(func(key, value any) bool {
		e := value.(*Entry)
		idle := now.Sub(time.Unix(0, e.lastSeen.Load()))
		if idle > s.opts.IdleTTL {
			if _, ok := s.m.LoadAndDelete(key); ok {
				zap.S().Debugw("form session evicted", "session", key, "idle", idle.Truncate(time.Second))
				metrics.SessionEvictTotal.WithLabelValues("idle").Inc()
				metrics.ActiveSessions.Dec()
				removed++
			}
			return true
		}
		count++
		return true
	})

	// ----------------------------------------------------------------
	// LRU eviction pass
	// ----------------------------------------------------------------
	if s.opts.MaxEntries > 0 && count > s.opts.MaxEntries {
		type kv struct {
			key string
			at  int64
		}
		all := make([]kv, 0, count)
		s.m.Range(func(key, value any) bool {
			all = append(all, kv{key: key.(string), at: value.(*Entry).lastSeen.Load()})
			return true
		})
		sort.Slice(all, func(i, j int) bool { return all[i].at < all[j].at })
		for i := 0; i < len(all)-s.opts.MaxEntries; i++ {
			if _, ok := s.m.LoadAndDelete(all[i].key); ok {
				zap.S().Debugw("form session evicted (LRU pressure)", "session", all[i].key)
				metrics.SessionEvictTotal.WithLabelValues("lru").Inc()
				metrics.ActiveSessions.Dec()
				removed++
			}
		}
	}
	return removed
}
