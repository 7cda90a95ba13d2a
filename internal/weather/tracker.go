package weather

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Token identifies one logical lookup within a scope.
type Token struct {
	Scope string
	ID    uuid.UUID
}

type inflight struct {
	id     uuid.UUID
	cancel context.CancelFunc
}

// LookupTracker keeps the newest lookup per scope. Starting a lookup cancels
// the previous one in the same scope, so stale responses can be recognised and dropped.
type LookupTracker struct {
	mu     sync.Mutex
	latest map[string]inflight
}

// NewLookupTracker creates an empty tracker.
func NewLookupTracker() *LookupTracker {
	return &LookupTracker{latest: make(map[string]inflight)}
}

// Begin registers a new lookup for scope and returns a context that is
// cancelled as soon as a newer lookup for the same scope begins.
func (t *LookupTracker) Begin(ctx context.Context, scope string) (context.Context, Token) {
	lookupCtx, cancel := context.WithCancel(ctx)
	tok := Token{Scope: scope, ID: uuid.New()}

	t.mu.Lock()
	if prev, ok := t.latest[scope]; ok {
		prev.cancel()
	}
	t.latest[scope] = inflight{id: tok.ID, cancel: cancel}
	t.mu.Unlock()

	return lookupCtx, tok
}

// Current reports whether tok is still the newest lookup for its scope.
func (t *LookupTracker) Current(tok Token) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur, ok := t.latest[tok.Scope]
	return ok && cur.id == tok.ID
}

// Finish releases tok. Finishing a superseded token is a no-op.
func (t *LookupTracker) Finish(tok Token) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur, ok := t.latest[tok.Scope]
	if !ok || cur.id != tok.ID {
		return
	}
	cur.cancel()
	delete(t.latest, tok.Scope)
}
