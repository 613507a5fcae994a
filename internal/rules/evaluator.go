package rules

import (
	"strconv"
	"strings"
	"time"

	"github.com/lu-zhengda/mailrules/internal/domain"
)

// Evaluate reports whether a message satisfies a single condition at the
// given evaluation time. It is a total function: unknown fields or
// operators, unparsable day counts, and missing timestamps all evaluate
// to false rather than erroring.
func Evaluate(msg *domain.Message, cond domain.Condition, now time.Time) bool {
	if cond.Field.IsDate() {
		return evaluateAge(msg, cond, now)
	}

	var fieldValue string
	switch cond.Field {
	case domain.FieldFrom:
		fieldValue = msg.Sender
	case domain.FieldSubject:
		fieldValue = msg.Subject
	case domain.FieldMessage:
		fieldValue = msg.Body
	default:
		return false
	}

	// Text comparisons are case-insensitive.
	fieldValue = strings.ToLower(fieldValue)
	value := strings.ToLower(cond.Value)

	switch cond.Operator {
	case domain.OpContains:
		return strings.Contains(fieldValue, value)
	case domain.OpNotContains:
		return !strings.Contains(fieldValue, value)
	case domain.OpEquals:
		return fieldValue == value
	case domain.OpNotEquals:
		return fieldValue != value
	}
	return false
}

func evaluateAge(msg *domain.Message, cond domain.Condition, now time.Time) bool {
	if msg.ReceivedAt.IsZero() {
		return false
	}
	days, err := strconv.Atoi(cond.Value)
	if err != nil {
		return false
	}

	age := msg.AgeDays(now)
	switch cond.Operator {
	case domain.OpLessThan:
		return age < days
	case domain.OpGreaterThan:
		return age > days
	}
	return false
}

// Matches reports whether a rule fires on a message. A rule with no
// conditions never matches: vacuous rules are inert, not universal.
func Matches(msg *domain.Message, rule *domain.Rule, now time.Time) bool {
	if len(rule.Conditions) == 0 {
		return false
	}

	switch rule.MatchMode {
	case domain.MatchAll:
		for _, c := range rule.Conditions {
			if !Evaluate(msg, c, now) {
				return false
			}
		}
		return true
	case domain.MatchAny:
		for _, c := range rule.Conditions {
			if Evaluate(msg, c, now) {
				return true
			}
		}
	}
	return false
}
