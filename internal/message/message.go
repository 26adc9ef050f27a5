// internal/message/message.go
//
// Cadastro – Dialog messages.
//
// Context
//   The form page reports outcomes through modal dialogs: the aggregate
//   "correct the errors" notice, a confirmation after a record is saved or
//   deleted, and failures reported by the persistence callbacks.  Producers
//   push a Dialog onto the Queue owned by the form session; the next render
//   drains it and the page script shows each one in turn.
//
// Style
//   Two-space sentence spacing, Oxford comma, concise inline notes.
//
//------------------------------------------------------------------------------

package message

import (
	"sync"

	"go.uber.org/zap"
)

// Icon names understood by the page script.
const (
	IconSuccess = "success"
	IconError   = "error"
	IconInfo    = "info"
)

// maxQueued caps a queue nobody drains (e.g. a closed tab).
const maxQueued = 16

// Dialog is one modal message.
type Dialog struct {
	Icon  string `json:"icon"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Queue is a FIFO of pending dialogs.  The zero value is ready to use and it
// is safe for concurrent use.
type Queue struct {
	mu    sync.Mutex
	items []Dialog
}

// Push appends d.  When the queue is full the oldest dialog is dropped.
func (q *Queue) Push(d Dialog) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == maxQueued {
		zap.S().Debugw("dialog queue full, dropping oldest", "title", q.items[0].Title)
		q.items = q.items[1:]
	}
	q.items = append(q.items, d)
}

// Drain returns every pending dialog and empties the queue.
func (q *Queue) Drain() []Dialog {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}

// Len reports the number of pending dialogs.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Success builds a confirmation dialog.
func Success(title, text string) Dialog { return Dialog{Icon: IconSuccess, Title: title, Text: text} }

// Error builds a failure dialog.
func Error(title, text string) Dialog { return Dialog{Icon: IconError, Title: title, Text: text} }
