package models

// Intent labels produced by the resolver. The string values double as the
// vocabulary of the LLM classification fallback prompt.
const (
	IntentInsertExpense = "insert_expense"
	IntentInsertIncome  = "insert_income"
	IntentInsertLoan    = "insert_loan"
	IntentInsertSavings = "insert_savings"

	IntentIncomeQuery        = "income_query"
	IntentExpenseQuery       = "expense_query"
	IntentLoanQuery          = "loan_query"
	IntentLoanPaidQuery      = "loan_paid_query"
	IntentLoanOverdueQuery   = "loan_overdue_query"
	IntentLoanRemainingQuery = "loan_remaining_query"
	IntentInvestmentQuery    = "investment_query"
	IntentStockQuery         = "stock_query"
	IntentGoldQuery          = "gold_query"
	IntentRealEstateQuery    = "realestate_query"
	IntentSavingsQuery       = "savings_query"
	IntentSavingsIncomeQuery = "savings_income_query"
	IntentBalanceQuery       = "balance_query"

	IntentFilterQuery      = "filter_query"
	IntentTimeQuery        = "time_query"
	IntentDetailQuery      = "detail_query"
	IntentStatisticsQuery  = "statistics_query"
	IntentCalculationQuery = "calculation_query"
	IntentGeneralCalc      = "general_calculation"
	IntentFinancialCalc    = "financial_calculation"

	IntentAnalyze = "analyze"
	IntentAdvice  = "advice"

	IntentGreeting    = "greeting"
	IntentFarewell    = "farewell"
	IntentBotIdentity = "bot_identity"
	IntentTimeOfDay   = "time_of_day"
	IntentAuth        = "auth"
	IntentSecurity    = "security"
	IntentFunny       = "funny"

	IntentUnknown = "unknown"
)

// Classification is the ephemeral per-message resolution result. It is
// produced fresh for every message and never persisted.
type Classification struct {
	RawMessage        string                 `json:"raw_message"`
	NormalizedMessage string                 `json:"normalized_message"`
	Intent            string                 `json:"intent"`
	Confidence        float64                `json:"confidence"`
	Aux               map[string]interface{} `json:"aux,omitempty"`
}

// CalculationResult is the coordinator's verdict on a message.
type CalculationResult struct {
	IsCalculation bool    `json:"is_calculation"`
	Category      string  `json:"category"` // general | financial | none
	Confidence    float64 `json:"confidence"`
	Intent        string  `json:"intent"`
}
