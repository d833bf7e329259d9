package agent

import (
	"context"
	"log"
	"strings"

	"moneytalk/internal/models"
	"moneytalk/internal/nlp"
)

// The resolver is an ordered (predicate, handler) rule list, evaluated
// top to bottom with early exit. Precedence is deliberate and fragile:
// context-consuming rules first, then the specialized parsers, then the
// calculation cascade, inserts, chit-chat, the weaker engines, the
// category remap pass, and only then the completion-service fallback.
type rule struct {
	name   string
	match  func(userID, message string) bool
	handle func(ctx context.Context, userID, message string) *Response
}

func (a *Agent) buildRules() []rule {
	return []rule{
		{
			// an active guided flow consumes every message until done
			name: "guided_flow",
			match: func(userID, _ string) bool {
				return a.contexts.Get(userID).CurrentFlow != ""
			},
			handle: a.handleFlowStep,
		},
		{
			// pending category confirmation consumes the next message
			name: "pending_confirmation",
			match: func(userID, _ string) bool {
				pending := a.contexts.Get(userID).Pending
				return pending != nil
			},
			handle: a.handleConfirmation,
		},
		{
			name: "detail_query",
			match: func(_, message string) bool {
				_, ok := nlp.ContainsAny(message, detailCues)
				return ok
			},
			handle: a.handleDetail,
		},
		{
			name: "filter_query",
			match: func(_, message string) bool {
				return nlp.MatchesAdvancedFilter(message)
			},
			handle: a.handleFilterQuery,
		},
		{
			name: "time_query",
			match: func(_, message string) bool {
				return nlp.MatchesTimeQuery(message)
			},
			handle: a.handleTimeQuery,
		},
		{
			name: "calculation",
			match: func(_, message string) bool {
				result := a.coordinator.DetectCalculationType(message)
				return result.IsCalculation && result.Confidence >= 0.5
			},
			handle: a.handleCalculation,
		},
		{
			name:   "insert",
			match:  a.matchesInsert,
			handle: a.handleInsert,
		},
		{
			name: "chitchat",
			match: func(_, message string) bool {
				return chitChatIntent(message) != ""
			},
			handle: a.handleChitChat,
		},
		{
			name: "statistics",
			match: func(_, message string) bool {
				return a.statistics.Detect(message).Matches
			},
			handle: a.handleStatistics,
		},
		{
			name: "stock",
			match: func(_, message string) bool {
				_, ok := nlp.ContainsAny(message, nlp.StockQueryTriggers)
				return ok
			},
			handle: a.handleStock,
		},
		{
			// legacy residue: calculation-ish wording that cleared neither
			// engine threshold still deserves a calculation attempt
			name: "calculation_residue",
			match: func(_, message string) bool {
				_, ok := nlp.ContainsAny(message, []string{"tính", "tính toán", "tính giúp", "calculate"})
				return ok
			},
			handle: a.handleCalculationResidue,
		},
		{
			// flow triggers outrank the remap pass: "tư vấn đầu tư" starts
			// the questionnaire instead of listing investments
			name: "flow_start",
			match: func(_, message string) bool {
				return matchedFlow(message) != ""
			},
			handle: func(_ context.Context, userID, message string) *Response {
				return a.startFlow(userID, matchedFlow(message))
			},
		},
		{
			// second keyword pass: simple read queries should never need
			// the completion service
			name: "category_remap",
			match: func(_, message string) bool {
				return remapCategoryIntent(message) != ""
			},
			handle: func(ctx context.Context, userID, message string) *Response {
				return a.dispatchIntent(ctx, userID, message, remapCategoryIntent(message))
			},
		},
		{
			name:   "llm_classification",
			match:  func(_, _ string) bool { return a.completer != nil },
			handle: a.handleLLMClassification,
		},
	}
}

var detailCues = []string{"xem chi tiết", "chi tiết", "xem thêm", "xem tiếp", "show more", "còn gì nữa"}

// resolve walks the rule list and falls through to the default handler.
func (a *Agent) resolve(ctx context.Context, userID, message string) *Response {
	for _, r := range a.rules {
		if r.match(userID, message) {
			log.Printf("🧭 [AGENT] user %s -> rule %s", userID, r.name)
			return r.handle(ctx, userID, message)
		}
	}
	return a.handleUnknown(ctx, userID, message)
}

// remapCategoryIntent maps recognized category keywords to a query
// intent, specific phrasings first.
func remapCategoryIntent(message string) string {
	for _, r := range nlp.QueryCategoryRules {
		if _, ok := nlp.ContainsAny(message, r.Triggers); ok {
			return r.Intent
		}
	}
	return ""
}

// chitChatIntent returns the conversational intent a message matches.
func chitChatIntent(message string) string {
	for _, intent := range []string{
		models.IntentGreeting, models.IntentFarewell, models.IntentBotIdentity,
		models.IntentTimeOfDay, models.IntentAuth, models.IntentSecurity, models.IntentFunny,
	} {
		if _, ok := nlp.ContainsAny(message, nlp.ChitChat[intent]); ok {
			return intent
		}
	}
	return ""
}

// dispatchIntent routes an already-resolved intent label to its handler.
// Used by the remap pass and the LLM classification fallback.
func (a *Agent) dispatchIntent(ctx context.Context, userID, message, intent string) *Response {
	switch intent {
	case models.IntentInsertExpense, models.IntentInsertIncome,
		models.IntentInsertLoan, models.IntentInsertSavings:
		return a.handleInsertIntent(ctx, userID, message, intent)

	case models.IntentLoanQuery, models.IntentLoanPaidQuery,
		models.IntentLoanOverdueQuery, models.IntentLoanRemainingQuery:
		return a.handleLoanQuery(ctx, userID, intent)

	case models.IntentBalanceQuery:
		return a.handleBalanceQuery(ctx, userID)

	case models.IntentSavingsQuery:
		return a.handleBankSavingsQuery(ctx, userID)

	case models.IntentIncomeQuery, models.IntentExpenseQuery,
		models.IntentSavingsIncomeQuery, models.IntentInvestmentQuery,
		models.IntentGoldQuery, models.IntentRealEstateQuery:
		return a.handleEntityQuery(ctx, userID, message, intent)

	case models.IntentStockQuery:
		return a.handleStock(ctx, userID, message)

	case models.IntentStatisticsQuery:
		return a.handleStatistics(ctx, userID, message)

	case models.IntentFilterQuery:
		return a.handleFilterQuery(ctx, userID, message)

	case models.IntentTimeQuery:
		return a.handleTimeQuery(ctx, userID, message)

	case models.IntentDetailQuery:
		return a.handleDetail(ctx, userID, message)

	case models.IntentGeneralCalc, models.IntentFinancialCalc, models.IntentCalculationQuery:
		return a.handleCalculation(ctx, userID, message)

	case models.IntentAnalyze:
		return a.handleAnalyze(ctx, userID, message)

	case models.IntentAdvice:
		return a.handleAdvice(ctx, userID, message)

	case models.IntentGreeting, models.IntentFarewell, models.IntentBotIdentity,
		models.IntentTimeOfDay, models.IntentAuth, models.IntentSecurity, models.IntentFunny:
		return a.cannedResponse(intent)
	}

	return a.handleUnknown(ctx, userID, message)
}

// handleLLMClassification asks the completion service for a single
// intent label and dispatches it.
func (a *Agent) handleLLMClassification(ctx context.Context, userID, message string) *Response {
	reply, err := a.completer.Generate(ctx, classificationPrompt(message), GenOptions{Temperature: 0.1, MaxTokens: 16})
	if err != nil {
		log.Printf("⚠️ [AGENT] classification fallback failed: %v", err)
		return a.handleUnknown(ctx, userID, message)
	}

	intent := strings.ToLower(strings.TrimSpace(reply))
	intent = strings.Trim(intent, "\"'.`")
	if !knownIntent(intent) {
		return a.handleUnknown(ctx, userID, message)
	}
	return a.dispatchIntent(ctx, userID, message, intent)
}

func knownIntent(intent string) bool {
	switch intent {
	case models.IntentInsertExpense, models.IntentInsertIncome, models.IntentInsertLoan,
		models.IntentInsertSavings, models.IntentIncomeQuery, models.IntentExpenseQuery,
		models.IntentLoanQuery, models.IntentLoanPaidQuery, models.IntentLoanOverdueQuery,
		models.IntentLoanRemainingQuery, models.IntentInvestmentQuery, models.IntentStockQuery,
		models.IntentGoldQuery, models.IntentRealEstateQuery, models.IntentSavingsQuery,
		models.IntentSavingsIncomeQuery, models.IntentBalanceQuery, models.IntentFilterQuery,
		models.IntentTimeQuery, models.IntentDetailQuery, models.IntentStatisticsQuery,
		models.IntentCalculationQuery, models.IntentGeneralCalc, models.IntentFinancialCalc,
		models.IntentAnalyze, models.IntentAdvice, models.IntentGreeting, models.IntentFarewell,
		models.IntentBotIdentity, models.IntentTimeOfDay, models.IntentAuth,
		models.IntentSecurity, models.IntentFunny:
		return true
	}
	return false
}
