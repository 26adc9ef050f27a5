// internal/session/store.go
//
// In-memory store of mounted forms.
//
// Context
// -------
// Each page load mounts a fresh form.Machine under a random session id that
// the browser keeps in a cookie and echoes in event URLs.  The Store keeps
// entries in a sync.Map, evicts them on idle TTL or LRU pressure, and loads
// edit-mode seed data through a singleflight.Group so several tabs opening
// the same record hit the database once.
//
// Notes
// -----
//   - Entries hold no database handles; eviction simply drops them.
//   - Oxford commas, two spaces after periods.
package session

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/yanizio/cadastro/internal/form"
	"github.com/yanizio/cadastro/internal/metrics"
)

// Static defaults used when Options leaves a value zero.
const (
	IdleTTL       = 30 * time.Minute
	MaxEntries    = 10000
	EvictInterval = time.Minute
	EventRate     = 30 // events per second
	EventBurst    = 60
)

var (
	// ErrNotFound is returned for an unknown or evicted session id.
	ErrNotFound = errors.New("form session not found")
	// ErrRateLimited is returned by callers that check Entry.Allow.
	ErrRateLimited = errors.New("too many form events")
)

// Options tunes a Store.
type Options struct {
	IdleTTL       time.Duration
	MaxEntries    int
	EvictInterval time.Duration // < 0 disables the background evictor
	EventRate     float64       // events per second per session
	EventBurst    int
}

func (o *Options) defaults() {
	if o.IdleTTL == 0 {
		o.IdleTTL = IdleTTL
	}
	if o.MaxEntries == 0 {
		o.MaxEntries = MaxEntries
	}
	if o.EvictInterval == 0 {
		o.EvictInterval = EvictInterval
	}
	if o.EventRate == 0 {
		o.EventRate = EventRate
	}
	if o.EventBurst == 0 {
		o.EventBurst = EventBurst
	}
}

// Loader fetches the initial data of the record being edited.
type Loader func(ctx context.Context, recordID int64) (map[string]string, error)

// HostFunc builds the form callbacks for a freshly created entry, so the
// callbacks can reach the entry's dialog queue and record id.
type HostFunc func(*Entry) form.Host

// Store holds every mounted form.
type Store struct {
	opts Options
	sfg  singleflight.Group
	m    sync.Map // id → *Entry

	stop     chan struct{}
	stopOnce sync.Once
}

// New constructs a Store and starts the background evictor.
func New(opts Options) *Store {
	opts.defaults()
	s := &Store{opts: opts, stop: make(chan struct{})}
	if opts.EvictInterval > 0 {
		go s.evictLoop(opts.EvictInterval)
	}
	return s
}

// Close stops the evictor.  The store stays readable.
func (s *Store) Close() { s.stopOnce.Do(func() { close(s.stop) }) }

// Mount creates a create-mode form.
func (s *Store) Mount(host HostFunc, opts ...form.Option) *Entry {
	return s.mount(false, 0, nil, host, opts...)
}

// MountEdit creates an edit-mode form for recordID, seeded by load.
func (s *Store) MountEdit(ctx context.Context, recordID int64, load Loader, host HostFunc, opts ...form.Option) (*Entry, error) {
	v, err, shared := s.sfg.Do(strconv.FormatInt(recordID, 10), func() (any, error) {
		return load(ctx, recordID)
	})
	if err != nil {
		return nil, err
	}
	zap.S().Debugw("edit form seeded", "record", recordID, "shared", shared)
	return s.mount(true, recordID, v.(map[string]string), host, opts...), nil
}

func (s *Store) mount(editing bool, recordID int64, data map[string]string, host HostFunc, opts ...form.Option) *Entry {
	e := &Entry{
		ID:       uuid.NewString(),
		RecordID: recordID,
		limiter:  rate.NewLimiter(rate.Limit(s.opts.EventRate), s.opts.EventBurst),
	}
	var h form.Host
	if host != nil {
		h = host(e)
	}
	e.machine = form.NewMachine(editing, data, h, opts...)
	e.touch()

	s.m.Store(e.ID, e)
	metrics.ActiveSessions.Inc()
	return e
}

// Get returns the entry for id and refreshes its idle timer.
func (s *Store) Get(id string) (*Entry, error) {
	v, ok := s.m.Load(id)
	if !ok {
		return nil, ErrNotFound
	}
	e := v.(*Entry)
	e.touch()
	return e, nil
}

// Remove drops id.  Unknown ids are ignored.
func (s *Store) Remove(id string) {
	if _, ok := s.m.LoadAndDelete(id); ok {
		metrics.ActiveSessions.Dec()
	}
}

// Len reports the number of mounted forms.
func (s *Store) Len() int {
	n := 0
	s.m.Range(func(_, _ any) bool { n++; return true })
	return n
}
