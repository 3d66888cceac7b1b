package report

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Ticket identifies one in-flight request for a key.
type Ticket struct {
	Key string
	ID  uuid.UUID
}

type tracked struct {
	id     uuid.UUID
	cancel context.CancelFunc
}

// Tracker keeps the latest request per key. Beginning a new request cancels
// the previous one, and responses of superseded requests are discarded.
type Tracker struct {
	mu      sync.Mutex
	current map[string]tracked
}

func NewTracker() *Tracker {
	return &Tracker{current: make(map[string]tracked)}
}

// Begin starts a request for key and returns its context and ticket.
func (t *Tracker) Begin(ctx context.Context, key string) (context.Context, Ticket) {
	reqCtx, cancel := context.WithCancel(ctx)
	ticket := Ticket{Key: key, ID: uuid.New()}

	t.mu.Lock()
	if previous, ok := t.current[key]; ok {
		previous.cancel()
	}
	t.current[key] = tracked{id: ticket.ID, cancel: cancel}
	t.mu.Unlock()

	return reqCtx, ticket
}

// Current reports whether ticket is still the latest request for its key.
func (t *Tracker) Current(ticket Ticket) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.current[ticket.Key]
	return ok && entry.id == ticket.ID
}

// Finish releases ticket and reports whether its response should be used.
// A superseded ticket returns false.
func (t *Tracker) Finish(ticket Ticket) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.current[ticket.Key]
	if !ok || entry.id != ticket.ID {
		return false
	}
	entry.cancel()
	delete(t.current, ticket.Key)
	return true
}
