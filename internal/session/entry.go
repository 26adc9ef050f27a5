// internal/session/entry.go
//
// Form session entry.
//
// Context
// -------
// An Entry is one mounted form: the form.Machine, the dialog queue the
// host callbacks write into, the record being edited (zero in create
// mode), a rate limiter, and a `lastSeen` UnixNano timestamp used by the
// evictor for idle and LRU eviction.
//
// Notes
// -----
//   - The machine is single-actor.  Every access goes through Do, which
//     holds the entry mutex, so two requests for the same session never
//     interleave inside a transition.
//   - Oxford commas, two spaces after periods.
package session

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/yanizio/cadastro/internal/form"
	"github.com/yanizio/cadastro/internal/message"
)

// Entry is one mounted form.
type Entry struct {
	ID       string
	RecordID int64 // row being edited, 0 in create mode

	Dialogs message.Queue

	mu       sync.Mutex
	machine  *form.Machine
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // UnixNano
	finished atomic.Bool
}

// Do runs fn with exclusive access to the machine.
func (e *Entry) Do(fn func(m *form.Machine) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()
	return fn(e.machine)
}

// State returns a snapshot of the machine state.
func (e *Entry) State() form.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.machine.State()
}

// Allow consumes one event token.  It returns false when the session is
// sending events faster than the configured rate.
func (e *Entry) Allow() bool {
	if e.limiter == nil {
		return true
	}
	return e.limiter.Allow()
}

// Finish marks the mount as ended, e.g. after its record was deleted.
// Handlers drop finished entries from the Store.
func (e *Entry) Finish() { e.finished.Store(true) }

// Finished reports whether Finish was called.
func (e *Entry) Finished() bool { return e.finished.Load() }

func (e *Entry) touch() { e.lastSeen.Store(time.Now().UnixNano()) }
