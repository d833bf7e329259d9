package calc

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"moneytalk/internal/nlp"
)

// GeneralEngine handles pure arithmetic: direct expressions, percentage
// questions and simple interest. It needs no ledger data.
type GeneralEngine struct{}

// General calculation subtypes
const (
	SubtypeArithmetic = "arithmetic"
	SubtypePercentage = "percentage"
	SubtypeInterest   = "interest"
)

// Detection threshold for the general engine
const generalThreshold = 0.6

// per-check confidence weights, capped at 1.0 when summed
const (
	weightMathExpr   = 0.5
	weightPercentage = 0.5
	weightInterest   = 0.5
	weightCalcWords  = 0.2
	weightBinaryOp   = 0.2
	weightResultCue  = 0.15
)

var (
	mathExprRegex   = regexp.MustCompile(`\d+(?:[.,]\d+)?\s*[+\-*/]\s*[\d(]`)
	binaryOpRegex   = regexp.MustCompile(`\d+(?:[.,]\d+)?\s*[+\-*/]\s*\d+(?:[.,]\d+)?`)
	percentageRegex = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(?:%|phan tram)\s*(?:cua|of)\s+(.+)`)
	interestRegex   = regexp.MustCompile(`lai suat\s*(\d+(?:[.,]\d+)?)\s*(?:%|phan tram)?\s*(?:cua|voi|tren)?\s*(.+?)\s*trong\s*(\d+(?:[.,]\d+)?)\s*(thang|nam)`)
	// Vietnamese operator verbs mapped onto symbols before evaluation
	verbOperatorReplacer = strings.NewReplacer(
		"cong", "+", "tru", "-", "nhan", "*", "chia", "/",
	)
	verbOperatorRegex = regexp.MustCompile(`\d+(?:[.,]\d+)?\s*(?:cong|tru|nhan|chia)\s*\d`)
)

var (
	calcWords  = []string{"tính", "cộng", "trừ", "nhân", "chia", "phần trăm", "lãi suất", "calculate"}
	resultCues = []string{"bằng bao nhiêu", "bằng mấy", "kết quả", "là bao nhiêu", "equals", "= ?", "=?"}
)

// EngineResult is the outcome of an engine's detect pass.
type EngineResult struct {
	Matches    bool
	Confidence float64
	Subtype    string
}

// Detect blends six independent boolean checks into one confidence score.
func (e *GeneralEngine) Detect(message string) EngineResult {
	folded := nlp.Fold(message)

	hasInterest := interestRegex.MatchString(folded)
	hasPercentage := percentageRegex.MatchString(folded)
	hasMathExpr := mathExprRegex.MatchString(folded) || verbOperatorRegex.MatchString(folded)
	hasBinaryOp := binaryOpRegex.MatchString(folded)
	_, hasCalcWords := nlp.ContainsAny(message, calcWords)
	hasResultCue := containsResultCue(folded)

	confidence := 0.0
	if hasMathExpr {
		confidence += weightMathExpr
	}
	if hasPercentage {
		confidence += weightPercentage
	}
	if hasInterest {
		confidence += weightInterest
	}
	if hasCalcWords {
		confidence += weightCalcWords
	}
	if hasBinaryOp {
		confidence += weightBinaryOp
	}
	if hasResultCue {
		confidence += weightResultCue
	}
	if confidence > 1.0 {
		confidence = 1.0
	}

	subtype := ""
	switch {
	case hasInterest:
		subtype = SubtypeInterest
	case hasPercentage:
		subtype = SubtypePercentage
	case hasMathExpr:
		subtype = SubtypeArithmetic
	}

	return EngineResult{
		Matches:    confidence > generalThreshold && subtype != "",
		Confidence: confidence,
		Subtype:    subtype,
	}
}

func containsResultCue(folded string) bool {
	for _, cue := range resultCues {
		if strings.Contains(folded, nlp.Fold(cue)) {
			return true
		}
	}
	return false
}

// Process renders the answer for the detected subtype. Extraction failure
// yields a guidance message with example phrasings, never an error.
func (e *GeneralEngine) Process(message string) string {
	folded := nlp.Fold(message)

	if m := interestRegex.FindStringSubmatch(folded); m != nil {
		return e.processInterest(m)
	}
	if m := percentageRegex.FindStringSubmatch(folded); m != nil {
		return e.processPercentage(m)
	}
	return e.processArithmetic(folded)
}

func (e *GeneralEngine) processArithmetic(folded string) string {
	expr := extractExpression(folded)
	if expr == "" {
		return "Tôi chưa nhận ra phép tính. Bạn thử nhập dạng \"2 + 3\" hoặc \"10 nhân 5\" nhé."
	}

	result, err := Evaluate(expr)
	if err != nil {
		return "Biểu thức chưa hợp lệ. Bạn kiểm tra lại giúp mình, ví dụ: \"(2 + 3) * 4\"."
	}

	return fmt.Sprintf("Kết quả: %s = %s", expr, formatNumber(result))
}

func (e *GeneralEngine) processPercentage(match []string) string {
	percent, err := strconv.ParseFloat(strings.Replace(match[1], ",", ".", 1), 64)
	if err != nil {
		return percentGuidance
	}

	base := nlp.ParseAmount(match[2])
	if base <= 0 {
		return percentGuidance
	}

	result := int64(float64(base) * percent / 100)
	return fmt.Sprintf("%s%% của %s là %s", trimFloat(percent), nlp.FormatVND(base), nlp.FormatVND(result))
}

const percentGuidance = "Bạn hỏi phần trăm của số tiền nào? Ví dụ: \"15% của 1 triệu\"."

func (e *GeneralEngine) processInterest(match []string) string {
	rate, err := strconv.ParseFloat(strings.Replace(match[1], ",", ".", 1), 64)
	if err != nil {
		return interestGuidance
	}

	principal := nlp.ParseAmount(match[2])
	if principal <= 0 {
		return interestGuidance
	}

	duration, err := strconv.ParseFloat(strings.Replace(match[3], ",", ".", 1), 64)
	if err != nil {
		return interestGuidance
	}

	months := duration
	if match[4] == "nam" {
		months = duration * 12
	}

	// simple interest: principal × rate × months / (100 × 12)
	interest := int64(float64(principal) * rate * months / (100 * 12))
	total := principal + interest

	return fmt.Sprintf(
		"Lãi suất %s%%/năm của %s trong %s tháng:\n- Tiền lãi: %s\n- Tổng cả gốc lẫn lãi: %s",
		trimFloat(rate), nlp.FormatVND(principal), trimFloat(months),
		nlp.FormatVND(interest), nlp.FormatVND(total))
}

const interestGuidance = "Bạn cho mình xin đủ thông tin nhé, ví dụ: \"lãi suất 7% của 100 triệu trong 12 tháng\"."

// extractExpression pulls the longest arithmetic substring out of a folded
// message, mapping Vietnamese operator verbs to symbols first.
func extractExpression(folded string) string {
	mapped := verbOperatorReplacer.Replace(folded)

	best := ""
	for _, candidate := range regexp.MustCompile(`[0-9+\-*/(). ]+`).FindAllString(mapped, -1) {
		candidate = strings.TrimSpace(candidate)
		if binaryOpRegex.MatchString(candidate) && len(candidate) > len(best) {
			best = candidate
		}
	}

	return strings.TrimRight(best, "+-*/ ")
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return nlp.FormatNumber(int64(f))
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}

func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
