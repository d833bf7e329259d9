package convo

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"moneytalk/internal/models"
)

func TestGetReturnsFreshContext(t *testing.T) {
	store := NewStore()

	ctx := store.Get("user-1")
	if ctx.UserID != "user-1" || len(ctx.History) != 0 {
		t.Errorf("fresh context = %+v", ctx)
	}
}

func TestAppendExchangeBoundsHistory(t *testing.T) {
	store := NewStore()

	for i := 0; i < 15; i++ {
		store.AppendExchange("user-1", fmt.Sprintf("msg %d", i), "ok")
	}

	ctx := store.Get("user-1")
	if len(ctx.History) != 20 {
		t.Fatalf("history length = %d, want 20", len(ctx.History))
	}
	// oldest turns were dropped: the first surviving user message is msg 5
	if ctx.History[0].Content != "msg 5" {
		t.Errorf("oldest kept message = %q, want \"msg 5\"", ctx.History[0].Content)
	}
	if ctx.History[19].Role != "bot" {
		t.Errorf("last message role = %q, want bot", ctx.History[19].Role)
	}
}

func TestContextExpires(t *testing.T) {
	store := newStoreWithTTL(30*time.Millisecond, time.Minute)

	store.AppendExchange("user-1", "hello", "hi")
	if len(store.Get("user-1").History) != 2 {
		t.Fatal("context not stored")
	}

	time.Sleep(50 * time.Millisecond)
	if len(store.Get("user-1").History) != 0 {
		t.Error("context survived past its TTL")
	}
}

func TestGetReturnsDetachedCopy(t *testing.T) {
	store := NewStore()
	store.AppendExchange("user-1", "hello", "hi")
	store.SetPending("user-1", &PendingInsert{Amount: 50_000})
	store.StartFlow("user-1", "planning")
	store.AdvanceFlow("user-1", "goal", "mua nhà")

	got := store.Get("user-1")
	got.History[0].Content = "tampered"
	got.Pending.Amount = 0
	got.FlowData["goal"] = "tampered"
	got.CurrentFlow = "tampered"

	fresh := store.Get("user-1")
	if fresh.History[0].Content != "hello" {
		t.Errorf("history leaked through Get: %q", fresh.History[0].Content)
	}
	if fresh.Pending == nil || fresh.Pending.Amount != 50_000 {
		t.Errorf("pending leaked through Get: %+v", fresh.Pending)
	}
	if fresh.FlowData["goal"] != "mua nhà" {
		t.Errorf("flow data leaked through Get: %v", fresh.FlowData)
	}
	if fresh.CurrentFlow != "planning" {
		t.Errorf("CurrentFlow leaked through Get: %q", fresh.CurrentFlow)
	}
}

func TestReapDropsExpiredContextsAndLocks(t *testing.T) {
	store := newStoreWithTTL(30*time.Millisecond, time.Hour)

	store.AppendExchange("user-1", "hello", "hi")
	store.AppendExchange("user-2", "hello", "hi")
	if store.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", store.Count())
	}

	time.Sleep(50 * time.Millisecond)
	if got := store.Reap(); got != 0 {
		t.Errorf("Reap() = %d, want 0", got)
	}
	if _, ok := store.locks.Load("user-1"); ok {
		t.Error("expected lock for expired context to be dropped")
	}
}

func TestPendingConsumedOnce(t *testing.T) {
	store := NewStore()

	store.SetPending("user-1", &PendingInsert{
		Intent: models.IntentInsertExpense,
		Amount: 50_000,
	})

	first := store.TakePending("user-1")
	if first == nil || first.Amount != 50_000 {
		t.Fatalf("TakePending = %+v", first)
	}
	if second := store.TakePending("user-1"); second != nil {
		t.Errorf("pending consumed twice: %+v", second)
	}
}

func TestStalePendingIsDropped(t *testing.T) {
	store := NewStore()

	store.SetPending("user-1", &PendingInsert{Amount: 50_000})
	store.Update("user-1", func(ctx *Context) {
		ctx.Pending.CreatedAt = time.Now().Add(-6 * time.Minute)
	})

	if got := store.TakePending("user-1"); got != nil {
		t.Errorf("stale pending returned: %+v", got)
	}
}

func TestContinuationConsumedOnce(t *testing.T) {
	store := NewStore()

	store.SetContinuation("user-1", &models.QueryContinuation{
		Entity:    "expenses",
		Count:     7,
		CreatedAt: time.Now(),
	})

	first := store.TakeContinuation("user-1")
	if first == nil || first.Count != 7 {
		t.Fatalf("TakeContinuation = %+v", first)
	}
	if second := store.TakeContinuation("user-1"); second != nil {
		t.Errorf("continuation consumed twice: %+v", second)
	}
}

func TestStaleContinuationIsDropped(t *testing.T) {
	store := NewStore()

	store.SetContinuation("user-1", &models.QueryContinuation{
		Entity:    "expenses",
		CreatedAt: time.Now().Add(-11 * time.Minute),
	})

	if got := store.TakeContinuation("user-1"); got != nil {
		t.Errorf("stale continuation returned: %+v", got)
	}
}

func TestClear(t *testing.T) {
	store := NewStore()

	store.AppendExchange("user-1", "hello", "hi")
	store.Clear("user-1")

	if len(store.Get("user-1").History) != 0 {
		t.Error("context survived Clear")
	}
}

func TestConcurrentUpdates(t *testing.T) {
	store := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			store.AppendExchange("user-1", fmt.Sprintf("m%d", n), "ok")
		}(i)
	}
	wg.Wait()

	if got := len(store.Get("user-1").History); got != 20 {
		t.Errorf("history length = %d, want 20", got)
	}
}
