package batch

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/samber/lo"
)

// Token is a cooperative cancellation flag for one batch. Its context is
// cancelled together with the flag so long-running transforms can select on it.
type Token struct {
	ctx       context.Context
	cancel    context.CancelFunc
	cancelled atomic.Bool
}

// NewToken creates an unset token
func NewToken() *Token {
	ctx, cancel := context.WithCancel(context.Background())
	return &Token{ctx: ctx, cancel: cancel}
}

// Cancel sets the token. It is safe to call more than once.
func (t *Token) Cancel() {
	t.cancelled.Store(true)
	t.cancel()
}

// IsCancelled reports whether Cancel was called
func (t *Token) IsCancelled() bool {
	return t.cancelled.Load()
}

// Context is cancelled when the token is
func (t *Token) Context() context.Context {
	return t.ctx
}

// Done is closed when the token is cancelled
func (t *Token) Done() <-chan struct{} {
	return t.ctx.Done()
}

// Checkpoint returns ErrCancelled once ctx is done. Multi-step transforms call
// it between pages, frames and ranges.
func Checkpoint(ctx context.Context) error {
	if ctx.Err() != nil {
		return ErrCancelled
	}
	return nil
}

// Tokens tracks the cancellation token of every in-flight batch
type Tokens struct {
	mu     sync.Mutex
	tokens map[string]*Token
}

// NewTokens creates an empty registry
func NewTokens() *Tokens {
	return &Tokens{tokens: make(map[string]*Token)}
}

// New registers a fresh token for batchID
func (r *Tokens) New(batchID string) *Token {
	r.mu.Lock()
	defer r.mu.Unlock()

	token := NewToken()
	r.tokens[batchID] = token
	return token
}

// Get returns the token for batchID
func (r *Tokens) Get(batchID string) (*Token, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.tokens[batchID]
	return token, ok
}

// Cancel cancels one batch and reports whether it was known
func (r *Tokens) Cancel(batchID string) bool {
	token, ok := r.Get(batchID)
	if !ok {
		return false
	}
	token.Cancel()
	return true
}

// CancelAll cancels every registered batch and returns how many there were
func (r *Tokens) CancelAll() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, token := range r.tokens {
		token.Cancel()
	}
	return len(r.tokens)
}

// IsCancelled reports whether batchID was cancelled
func (r *Tokens) IsCancelled(batchID string) bool {
	token, ok := r.Get(batchID)
	return ok && token.IsCancelled()
}

// Release forgets the token of a finished batch
func (r *Tokens) Release(batchID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, batchID)
}

// Active lists the registered batch ids in sorted order
func (r *Tokens) Active() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := lo.Keys(r.tokens)
	sort.Strings(ids)
	return ids
}
