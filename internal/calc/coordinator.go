package calc

import (
	"regexp"

	"moneytalk/internal/models"
	"moneytalk/internal/nlp"
)

// Coordinator arbitrates between the general and financial engines. Both
// detectors are cheap and run unconditionally; the decision rules below
// are applied in a fixed precedence order so classification is
// deterministic for a given message.
type Coordinator struct {
	general   *GeneralEngine
	financial *FinancialEngine
}

// NewCoordinator creates the two engines and their arbiter.
func NewCoordinator() *Coordinator {
	return &Coordinator{
		general:   &GeneralEngine{},
		financial: &FinancialEngine{},
	}
}

// Arbitration constants. The multipliers are tuned values; their relative
// ordering (keyword boost > structural boosts) is what matters.
const (
	noneBand          = 0.3
	clearWinner       = 0.7
	contender         = 0.5
	keywordBoost      = 1.2
	structuralBoost   = 1.1
)

var conditionalFinancialRegex = regexp.MustCompile(
	`(?:neu|sau khi)\s+.*(?:chi|tieu|mua)\s+.*(?:thi|con)`)

// DetectCalculationType runs both engines and applies the precedence:
//  1. both below the none band → not a calculation
//  2. exactly one clear winner (≥0.7) with the other below 0.5 → pick it
//  3. both contenders (≥0.5) → conflict resolution with boosts
//  4. otherwise → higher raw confidence
func (c *Coordinator) DetectCalculationType(message string) models.CalculationResult {
	general := c.general.Detect(message)
	financial := c.financial.Detect(message)

	if general.Confidence < noneBand && financial.Confidence < noneBand {
		return models.CalculationResult{Category: "none"}
	}

	if general.Confidence >= clearWinner && financial.Confidence < contender {
		return generalResult(general.Confidence)
	}
	if financial.Confidence >= clearWinner && general.Confidence < contender {
		return financialResult(financial.Confidence)
	}

	if general.Confidence >= contender && financial.Confidence >= contender {
		return c.resolveConflict(message, general, financial)
	}

	if general.Confidence >= financial.Confidence {
		return generalResult(general.Confidence)
	}
	return financialResult(financial.Confidence)
}

// resolveConflict breaks a tie between two confident engines: explicit
// priority keywords win first (rewarded with the keyword boost), then the
// conditional financial structure, then a bare math expression, then raw
// confidence.
func (c *Coordinator) resolveConflict(message string, general, financial EngineResult) models.CalculationResult {
	_, hasFinancialKeywords := nlp.ContainsAny(message, nlp.FinancialPriorityKeywords)
	_, hasGeneralKeywords := nlp.ContainsAny(message, nlp.GeneralPriorityKeywords)

	if hasFinancialKeywords != hasGeneralKeywords {
		if hasFinancialKeywords {
			return financialResult(cap1(financial.Confidence * keywordBoost))
		}
		return generalResult(cap1(general.Confidence * keywordBoost))
	}

	folded := nlp.Fold(message)
	if conditionalFinancialRegex.MatchString(folded) {
		return financialResult(cap1(financial.Confidence * structuralBoost))
	}
	if mathExprRegex.MatchString(folded) {
		return generalResult(cap1(general.Confidence * structuralBoost))
	}

	if financial.Confidence > general.Confidence {
		return financialResult(financial.Confidence)
	}
	return generalResult(general.Confidence)
}

// ProcessCalculation dispatches to the selected engine. A financial
// calculation without ledger data gets a guidance message, not a failure.
func (c *Coordinator) ProcessCalculation(message, calcType string, snapshot *models.FinancialSnapshot) string {
	switch calcType {
	case "general":
		return c.general.Process(message)
	case "financial":
		if snapshot == nil {
			return "Mình chưa có dữ liệu thu chi của bạn nên chưa tính được. Bạn thêm giao dịch trước nhé."
		}
		return c.financial.Process(message, snapshot)
	}
	return "Mình chưa hiểu phép tính này. Bạn thử lại với ví dụ: \"2 + 3\" hoặc \"tôi có thể chi 500k không?\""
}

func generalResult(confidence float64) models.CalculationResult {
	return models.CalculationResult{
		IsCalculation: true,
		Category:      "general",
		Confidence:    confidence,
		Intent:        models.IntentGeneralCalc,
	}
}

func financialResult(confidence float64) models.CalculationResult {
	return models.CalculationResult{
		IsCalculation: true,
		Category:      "financial",
		Confidence:    confidence,
		Intent:        models.IntentFinancialCalc,
	}
}

func cap1(f float64) float64 {
	if f > 1.0 {
		return 1.0
	}
	return f
}
