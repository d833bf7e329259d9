package calc

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// allowedExprPattern restricts arithmetic input to digits, the four
// operators, parentheses, dots and whitespace. The input is end-user
// text: anything outside this set is rejected before evaluation.
var allowedExprPattern = regexp.MustCompile(`^[0-9+\-*/().\s]+$`)

// Evaluate safely evaluates a user-supplied arithmetic expression using a
// recursive descent parser. Only + - * / ( ) and numeric literals are
// accepted.
func Evaluate(expr string) (float64, error) {
	expr = strings.ReplaceAll(expr, " ", "")
	if expr == "" {
		return 0, fmt.Errorf("empty expression")
	}
	if !allowedExprPattern.MatchString(expr) {
		return 0, fmt.Errorf("expression contains invalid characters")
	}
	if !hasBalancedParentheses(expr) {
		return 0, fmt.Errorf("unbalanced parentheses")
	}
	return parseAddSub(expr)
}

func hasBalancedParentheses(expr string) bool {
	count := 0
	for _, char := range expr {
		if char == '(' {
			count++
		} else if char == ')' {
			count--
			if count < 0 {
				return false
			}
		}
	}
	return count == 0
}

// parseAddSub handles addition and subtraction
func parseAddSub(expr string) (float64, error) {
	parenDepth := 0
	for i := len(expr) - 1; i >= 0; i-- {
		char := expr[i]
		if char == ')' {
			parenDepth++
		} else if char == '(' {
			parenDepth--
		} else if parenDepth == 0 && (char == '+' || char == '-') {
			// Leading minus and operator-adjacent minus are signs, not subtraction
			if i == 0 || isOperator(expr[i-1]) {
				continue
			}

			left, err := parseAddSub(expr[:i])
			if err != nil {
				return 0, err
			}

			right, err := parseMulDiv(expr[i+1:])
			if err != nil {
				return 0, err
			}

			if char == '+' {
				return left + right, nil
			}
			return left - right, nil
		}
	}

	return parseMulDiv(expr)
}

// parseMulDiv handles multiplication and division
func parseMulDiv(expr string) (float64, error) {
	parenDepth := 0
	for i := len(expr) - 1; i >= 0; i-- {
		char := expr[i]
		if char == ')' {
			parenDepth++
		} else if char == '(' {
			parenDepth--
		} else if parenDepth == 0 && (char == '*' || char == '/') {
			left, err := parseMulDiv(expr[:i])
			if err != nil {
				return 0, err
			}

			right, err := parseUnary(expr[i+1:])
			if err != nil {
				return 0, err
			}

			if char == '*' {
				return left * right, nil
			}
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			return left / right, nil
		}
	}

	return parseUnary(expr)
}

// parseUnary handles unary signs
func parseUnary(expr string) (float64, error) {
	if strings.HasPrefix(expr, "-") {
		val, err := parseUnary(expr[1:])
		if err != nil {
			return 0, err
		}
		return -val, nil
	}
	if strings.HasPrefix(expr, "+") {
		return parseUnary(expr[1:])
	}
	return parsePrimary(expr)
}

// parsePrimary handles numbers and parentheses
func parsePrimary(expr string) (float64, error) {
	if strings.HasPrefix(expr, "(") && strings.HasSuffix(expr, ")") {
		inner := expr[1 : len(expr)-1]
		if hasBalancedParentheses(inner) {
			return parseAddSub(inner)
		}
	}

	num, err := strconv.ParseFloat(expr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s", expr)
	}
	return num, nil
}

func isOperator(c byte) bool {
	return c == '+' || c == '-' || c == '*' || c == '/' || c == '('
}
