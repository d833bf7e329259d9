package agent

import (
	"context"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"moneytalk/internal/calc"
	"moneytalk/internal/convo"
	"moneytalk/internal/models"
	"moneytalk/internal/query"
	"moneytalk/internal/stats"
	"moneytalk/internal/stock"
)

// Ledger is the slice of the data layer the agent needs. Reads are
// always owner-scoped; writes happen only through the insert handlers.
type Ledger interface {
	Snapshot(ctx context.Context, userID string) (*models.FinancialSnapshot, error)
	Incomes(ctx context.Context, userID string) ([]models.Entry, error)
	Expenses(ctx context.Context, userID string) ([]models.Entry, error)
	Loans(ctx context.Context, userID, status string) ([]models.Loan, error)
	Investments(ctx context.Context, userID, investmentType string) ([]models.Investment, error)
	InsertEntry(ctx context.Context, collection string, entry *models.Entry) error
	InsertLoan(ctx context.Context, loan *models.Loan) error
	InsertInvestment(ctx context.Context, investment *models.Investment) error
}

// QueryRunner executes a composed query descriptor.
type QueryRunner interface {
	Execute(ctx context.Context, userID string, descriptor *models.QueryDescriptor) (*query.Result, error)
}

// Completer is the external text-completion service, already wrapped
// with retry/cache/rate limiting by the llm package.
type Completer interface {
	Generate(ctx context.Context, prompt string, cfg GenOptions) (string, error)
}

// GenOptions mirrors llm.GenConfig without importing it, so fakes stay
// trivial.
type GenOptions struct {
	Temperature float64
	MaxTokens   int
}

// StockProvider answers ticker lookups with a degraded-but-structured
// result on failure.
type StockProvider interface {
	GetPrice(ctx context.Context, symbol string) stock.Quote
}

// Notifier is the fire-and-forget event sink.
type Notifier interface {
	EntryCreated(kind, userID string, amount int64)
}

// Options are per-request switches from the host layer.
type Options struct {
	SessionID string
	AIMode    bool // bypass the resolver entirely
}

// Response is the agent's answer plus optional hints for the caller
// (e.g. which ledger views the UI should refresh after an insert).
type Response struct {
	Message  string                 `json:"message"`
	Intent   string                 `json:"intent,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Agent is the top-level message dispatcher.
type Agent struct {
	ledger      Ledger
	queries     QueryRunner
	coordinator *calc.Coordinator
	statistics  *stats.Engine
	contexts    *convo.Store
	completer   Completer
	stocks      StockProvider
	notifier    Notifier
	rules       []rule
	now         func() time.Time
}

var intentCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "moneytalk_resolved_intents_total",
	Help: "Messages resolved per intent label.",
}, []string{"intent"})

// New wires the agent. All dependencies are required except stocks and
// notifier, which may be nil (degraded and silent respectively).
func New(ledger Ledger, queries QueryRunner, contexts *convo.Store, completer Completer, stocks StockProvider, notifier Notifier) *Agent {
	a := &Agent{
		ledger:      ledger,
		queries:     queries,
		coordinator: calc.NewCoordinator(),
		statistics:  &stats.Engine{},
		contexts:    contexts,
		completer:   completer,
		stocks:      stocks,
		notifier:    notifier,
		now:         time.Now,
	}
	a.rules = a.buildRules()
	return a
}

const (
	maxMessageLen = 1000

	genericApology = "Xin lỗi, mình gặp chút trục trặc khi xử lý tin nhắn này. Bạn thử lại giúp mình nhé."
)

// HandleMessage processes one inbound message end to end. It never
// returns an error: every fault below this boundary becomes the generic
// apology line.
func (a *Agent) HandleMessage(ctx context.Context, userID, message string, opts Options) (response *Response) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("🚨 [AGENT] panic handling message for user %s: %v", userID, r)
			response = &Response{Message: genericApology, Intent: models.IntentUnknown}
		}
	}()

	if trimmed := strings.TrimSpace(message); trimmed == "" {
		return &Response{
			Message: "Bạn chưa nhập gì cả. Bạn muốn hỏi gì về thu chi của mình?",
			Intent:  models.IntentUnknown,
		}
	} else if utf8.RuneCountInString(trimmed) > maxMessageLen {
		return &Response{
			Message: "Tin nhắn của bạn dài quá (tối đa 1000 ký tự). Bạn rút gọn lại giúp mình nhé.",
			Intent:  models.IntentUnknown,
		}
	} else {
		message = trimmed
	}

	if opts.AIMode {
		response = a.handleAIDirect(ctx, userID, message)
	} else {
		response = a.resolve(ctx, userID, message)
	}

	intentCounter.WithLabelValues(response.Intent).Inc()
	a.contexts.AppendExchange(userID, message, response.Message)
	a.contexts.SetLastIntent(userID, response.Intent)
	return response
}

// snapshot loads the financial snapshot, tolerating failure: callers
// render guidance for nil.
func (a *Agent) snapshot(ctx context.Context, userID string) *models.FinancialSnapshot {
	snapshot, err := a.ledger.Snapshot(ctx, userID)
	if err != nil {
		log.Printf("⚠️ [AGENT] snapshot for user %s: %v", userID, err)
		return nil
	}
	return snapshot
}
