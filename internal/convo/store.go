package convo

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"moneytalk/internal/models"
)

// Store keeps per-user conversation context in memory. Context is
// ephemeral by design: it expires 30 minutes after the last touch and a
// server restart loses it. Everything durable lives in the ledger.
type Store struct {
	cache *cache.Cache
	locks sync.Map // userID -> *sync.Mutex
}

const (
	contextTTL    = 30 * time.Minute
	sweepInterval = 10 * time.Minute

	// maxHistory bounds the rolling transcript
	maxHistory = 20

	// pendingWindow is how long a category confirmation stays answerable
	pendingWindow = 5 * time.Minute

	// continuationWindow is how long a "xem chi tiết" follow-up can reach
	// back to a summarized result
	continuationWindow = 10 * time.Minute
)

// Message is one turn of the rolling transcript.
type Message struct {
	Role    string    `json:"role"` // user | bot
	Content string    `json:"content"`
	Time    time.Time `json:"time"`
}

// PendingInsert is an insert waiting on a category confirmation.
type PendingInsert struct {
	Intent      string    `json:"intent"`
	Amount      int64     `json:"amount"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Suggestions []string  `json:"suggestions,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Context is everything the agent remembers about one user between
// messages.
type Context struct {
	UserID       string                    `json:"user_id"`
	History      []Message                 `json:"history"`
	Pending      *PendingInsert            `json:"pending,omitempty"`
	Continuation *models.QueryContinuation `json:"continuation,omitempty"`
	LastIntent   string                    `json:"last_intent,omitempty"`
	CurrentFlow  string                    `json:"current_flow,omitempty"`
	CurrentStep  int                       `json:"current_step,omitempty"`
	FlowData     map[string]string         `json:"flow_data,omitempty"`
	UpdatedAt    time.Time                 `json:"updated_at"`
}

// StartFlow begins a guided multi-step flow.
func (s *Store) StartFlow(userID, flow string) {
	s.Update(userID, func(ctx *Context) {
		ctx.CurrentFlow = flow
		ctx.CurrentStep = 0
		ctx.FlowData = map[string]string{}
	})
}

// AdvanceFlow records the answer for the current step and moves on.
func (s *Store) AdvanceFlow(userID, stepKey, answer string) {
	s.Update(userID, func(ctx *Context) {
		if ctx.FlowData == nil {
			ctx.FlowData = map[string]string{}
		}
		ctx.FlowData[stepKey] = answer
		ctx.CurrentStep++
	})
}

// EndFlow clears any in-progress flow.
func (s *Store) EndFlow(userID string) {
	s.Update(userID, func(ctx *Context) {
		ctx.CurrentFlow = ""
		ctx.CurrentStep = 0
		ctx.FlowData = nil
	})
}

// NewStore creates the context store with the standard 30-minute TTL.
func NewStore() *Store {
	return newStoreWithTTL(contextTTL, sweepInterval)
}

func newStoreWithTTL(ttl, sweep time.Duration) *Store {
	return &Store{cache: cache.New(ttl, sweep)}
}

func (s *Store) lock(userID string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Get returns a copy of the user's context, or a fresh empty one.
// Readers hold a detached snapshot, so a concurrent Update for the same
// user can never mutate what they are looking at. Mutate through Update.
func (s *Store) Get(userID string) *Context {
	mu := s.lock(userID)
	mu.Lock()
	defer mu.Unlock()
	return s.copyLocked(userID)
}

// copyLocked clones the cached context. Caller holds the user's lock.
func (s *Store) copyLocked(userID string) *Context {
	v, ok := s.cache.Get(userID)
	if !ok {
		return &Context{UserID: userID}
	}

	stored := v.(*Context)
	clone := *stored
	clone.History = append([]Message(nil), stored.History...)
	if stored.Pending != nil {
		pending := *stored.Pending
		clone.Pending = &pending
	}
	if stored.Continuation != nil {
		continuation := *stored.Continuation
		clone.Continuation = &continuation
	}
	if stored.FlowData != nil {
		clone.FlowData = make(map[string]string, len(stored.FlowData))
		for key, value := range stored.FlowData {
			clone.FlowData[key] = value
		}
	}
	return &clone
}

// Update applies fn to a copy of the user's context under the per-user
// lock and stores the result, refreshing the TTL. Every write path goes
// through here.
func (s *Store) Update(userID string, fn func(*Context)) {
	mu := s.lock(userID)
	mu.Lock()
	defer mu.Unlock()

	ctx := s.copyLocked(userID)
	fn(ctx)
	ctx.UpdatedAt = time.Now()
	s.cache.SetDefault(userID, ctx)
}

// AppendExchange records one user/bot turn pair, trimming the transcript
// to the history bound.
func (s *Store) AppendExchange(userID, userMessage, botReply string) {
	now := time.Now()
	s.Update(userID, func(ctx *Context) {
		ctx.History = append(ctx.History,
			Message{Role: "user", Content: userMessage, Time: now},
			Message{Role: "bot", Content: botReply, Time: now},
		)
		if len(ctx.History) > maxHistory {
			ctx.History = ctx.History[len(ctx.History)-maxHistory:]
		}
	})
}

// SetPending parks an insert awaiting category confirmation.
func (s *Store) SetPending(userID string, pending *PendingInsert) {
	pending.CreatedAt = time.Now()
	s.Update(userID, func(ctx *Context) {
		ctx.Pending = pending
	})
}

// TakePending returns and clears the pending insert if it is still
// within the confirmation window. A stale one is dropped silently.
func (s *Store) TakePending(userID string) *PendingInsert {
	var pending *PendingInsert
	s.Update(userID, func(ctx *Context) {
		if ctx.Pending == nil {
			return
		}
		if time.Since(ctx.Pending.CreatedAt) <= pendingWindow {
			pending = ctx.Pending
		}
		ctx.Pending = nil
	})
	return pending
}

// SetContinuation parks the overflow of a summarized query result.
func (s *Store) SetContinuation(userID string, continuation *models.QueryContinuation) {
	s.Update(userID, func(ctx *Context) {
		ctx.Continuation = continuation
	})
}

// TakeContinuation returns and clears the parked continuation if still
// fresh. It is consumed at most once.
func (s *Store) TakeContinuation(userID string) *models.QueryContinuation {
	var continuation *models.QueryContinuation
	s.Update(userID, func(ctx *Context) {
		if ctx.Continuation == nil {
			return
		}
		if time.Since(ctx.Continuation.CreatedAt) <= continuationWindow {
			continuation = ctx.Continuation
		}
		ctx.Continuation = nil
	})
	return continuation
}

// SetLastIntent records the resolved intent for follow-up heuristics.
func (s *Store) SetLastIntent(userID, intent string) {
	s.Update(userID, func(ctx *Context) {
		ctx.LastIntent = intent
	})
}

// Clear drops the user's context entirely.
func (s *Store) Clear(userID string) {
	mu := s.lock(userID)
	mu.Lock()
	defer mu.Unlock()
	s.cache.Delete(userID)
}

// Count reports how many user contexts are live, for the health surface.
func (s *Store) Count() int {
	return s.cache.ItemCount()
}

// Reap evicts expired contexts and drops per-user locks that no longer
// have a live context behind them, then returns the live count. The
// cache janitor also sweeps on its own; Reap exists so the periodic job
// can reclaim the lock map too.
func (s *Store) Reap() int {
	s.cache.DeleteExpired()
	s.locks.Range(func(key, _ any) bool {
		if _, ok := s.cache.Get(key.(string)); !ok {
			s.locks.Delete(key)
		}
		return true
	})
	return s.cache.ItemCount()
}
