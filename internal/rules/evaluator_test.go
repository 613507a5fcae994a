package rules

import (
	"testing"
	"time"

	"github.com/lu-zhengda/mailrules/internal/domain"
)

var evalNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func testMessage() *domain.Message {
	return &domain.Message{
		ID:         "msg-1",
		Subject:    "Your Invoice #1023",
		Sender:     "Billing <billing@example.com>",
		Recipient:  "me@gmail.com",
		Body:       "Your monthly invoice is attached. Thanks!",
		ReceivedAt: evalNow.Add(-5 * 24 * time.Hour),
	}
}

func TestEvaluate_TextConditions(t *testing.T) {
	msg := testMessage()

	tests := []struct {
		name string
		cond domain.Condition
		want bool
	}{
		{"subject contains, case-insensitive", domain.Condition{Field: domain.FieldSubject, Operator: domain.OpContains, Value: "invoice"}, true},
		{"subject contains, no match", domain.Condition{Field: domain.FieldSubject, Operator: domain.OpContains, Value: "meeting"}, false},
		{"subject does not contain", domain.Condition{Field: domain.FieldSubject, Operator: domain.OpNotContains, Value: "meeting"}, true},
		{"sender contains", domain.Condition{Field: domain.FieldFrom, Operator: domain.OpContains, Value: "BILLING@example.com"}, true},
		{"sender equals full string", domain.Condition{Field: domain.FieldFrom, Operator: domain.OpEquals, Value: "billing <billing@example.com>"}, true},
		{"sender equals partial", domain.Condition{Field: domain.FieldFrom, Operator: domain.OpEquals, Value: "billing@example.com"}, false},
		{"sender does not equal", domain.Condition{Field: domain.FieldFrom, Operator: domain.OpNotEquals, Value: "boss@example.com"}, true},
		{"body contains", domain.Condition{Field: domain.FieldMessage, Operator: domain.OpContains, Value: "monthly invoice"}, true},
		{"unknown field is false", domain.Condition{Field: "Attachment", Operator: domain.OpContains, Value: "pdf"}, false},
		{"unknown operator is false", domain.Condition{Field: domain.FieldSubject, Operator: "matches regex", Value: ".*"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(msg, tt.cond, evalNow); got != tt.want {
				t.Errorf("Evaluate(%+v) = %v, want %v", tt.cond, got, tt.want)
			}
		})
	}
}

func TestEvaluate_DateConditions(t *testing.T) {
	msg := testMessage() // received 5 days before evalNow

	tests := []struct {
		name string
		cond domain.Condition
		want bool
	}{
		{"less than 10 days old", domain.Condition{Field: domain.FieldDateReceived, Operator: domain.OpLessThan, Value: "10"}, true},
		{"greater than 10 days old", domain.Condition{Field: domain.FieldDateReceived, Operator: domain.OpGreaterThan, Value: "10"}, false},
		{"greater than 3 days old", domain.Condition{Field: domain.FieldDateReceived, Operator: domain.OpGreaterThan, Value: "3"}, true},
		{"exactly 5 is not less than 5", domain.Condition{Field: domain.FieldDateReceived, Operator: domain.OpLessThan, Value: "5"}, false},
		{"exactly 5 is not greater than 5", domain.Condition{Field: domain.FieldDateReceived, Operator: domain.OpGreaterThan, Value: "5"}, false},
		{"non-numeric day count is false", domain.Condition{Field: domain.FieldDateReceived, Operator: domain.OpLessThan, Value: "soon"}, false},
		{"text operator on date field is false", domain.Condition{Field: domain.FieldDateReceived, Operator: domain.OpContains, Value: "5"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(msg, tt.cond, evalNow); got != tt.want {
				t.Errorf("Evaluate(%+v) = %v, want %v", tt.cond, got, tt.want)
			}
		})
	}

	t.Run("missing timestamp is false", func(t *testing.T) {
		blank := &domain.Message{Subject: "no date"}
		cond := domain.Condition{Field: domain.FieldDateReceived, Operator: domain.OpLessThan, Value: "10"}
		if Evaluate(blank, cond, evalNow) {
			t.Error("Evaluate() with zero ReceivedAt = true, want false")
		}
	})
}

func TestMatches_EmptyConditionsNeverMatch(t *testing.T) {
	msg := testMessage()
	for _, mode := range []domain.MatchMode{domain.MatchAll, domain.MatchAny} {
		rule := &domain.Rule{Name: "vacuous", MatchMode: mode}
		if Matches(msg, rule, evalNow) {
			t.Errorf("Matches() with no conditions and mode %q = true, want false", mode)
		}
	}
}

func TestMatches_AllMode(t *testing.T) {
	msg := testMessage()
	trueCond := domain.Condition{Field: domain.FieldSubject, Operator: domain.OpContains, Value: "invoice"}
	falseCond := domain.Condition{Field: domain.FieldFrom, Operator: domain.OpContains, Value: "boss"}

	rule := &domain.Rule{
		MatchMode:  domain.MatchAll,
		Conditions: []domain.Condition{trueCond, {Field: domain.FieldDateReceived, Operator: domain.OpLessThan, Value: "10"}},
	}
	if !Matches(msg, rule, evalNow) {
		t.Error("Matches(ALL, all true) = false, want true")
	}

	// A single false condition flips the result.
	rule.Conditions = append(rule.Conditions, falseCond)
	if Matches(msg, rule, evalNow) {
		t.Error("Matches(ALL, one false) = true, want false")
	}
}

func TestMatches_AnyMode(t *testing.T) {
	msg := testMessage()
	trueCond := domain.Condition{Field: domain.FieldSubject, Operator: domain.OpContains, Value: "invoice"}
	falseCond := domain.Condition{Field: domain.FieldFrom, Operator: domain.OpContains, Value: "boss"}

	rule := &domain.Rule{
		MatchMode:  domain.MatchAny,
		Conditions: []domain.Condition{falseCond, trueCond},
	}
	if !Matches(msg, rule, evalNow) {
		t.Error("Matches(ANY, one true) = false, want true")
	}

	rule.Conditions = []domain.Condition{falseCond, falseCond}
	if Matches(msg, rule, evalNow) {
		t.Error("Matches(ANY, all false) = true, want false")
	}
}
