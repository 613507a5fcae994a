package cli

import (
	"testing"

	"github.com/lu-zhengda/mailrules/internal/domain"
)

func TestParseConditionFlag(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    domain.Condition
		wantErr bool
	}{
		{
			name:  "text condition",
			input: "Subject|contains|invoice",
			want: domain.Condition{
				Field:    domain.FieldSubject,
				Operator: domain.OpContains,
				Value:    "invoice",
			},
		},
		{
			name:  "date condition with spaces",
			input: "Date received | is greater than | 30",
			want: domain.Condition{
				Field:    domain.FieldDateReceived,
				Operator: domain.OpGreaterThan,
				Value:    "30",
			},
		},
		{
			name:  "value may contain pipes",
			input: "From|equals|a|b@example.com",
			want: domain.Condition{
				Field:    domain.FieldFrom,
				Operator: domain.OpEquals,
				Value:    "a|b@example.com",
			},
		},
		{
			name:    "missing parts",
			input:   "Subject|contains",
			wantErr: true,
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseConditionFlag(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseConditionFlag(%q) = %+v, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseConditionFlag(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("parseConditionFlag(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseActionFlag(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    domain.Action
		wantErr bool
	}{
		{
			name:  "mark read",
			input: "mark-read",
			want:  domain.Action{Kind: domain.ActionMarkRead},
		},
		{
			name:  "mark unread uppercase",
			input: "MARK-UNREAD",
			want:  domain.Action{Kind: domain.ActionMarkUnread},
		},
		{
			name:  "move keeps folder casing",
			input: "move:Trash",
			want:  domain.Action{Kind: domain.ActionMove, Value: "Trash"},
		},
		{
			name:    "move without folder rejected by validation later",
			input:   "move:",
			want:    domain.Action{Kind: domain.ActionMove, Value: ""},
			wantErr: false,
		},
		{
			name:    "unknown token",
			input:   "delete",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseActionFlag(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseActionFlag(%q) = %+v, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseActionFlag(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("parseActionFlag(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatConditions(t *testing.T) {
	conds := []domain.Condition{
		{Field: domain.FieldFrom, Operator: domain.OpContains, Value: "newsletter"},
		{Field: domain.FieldDateReceived, Operator: domain.OpLessThan, Value: "2"},
	}
	got := formatConditions(conds)
	want := `From contains "newsletter"; Date received is less than "2"`
	if got != want {
		t.Errorf("formatConditions() = %q, want %q", got, want)
	}

	if got := formatConditions(nil); got != "-" {
		t.Errorf("formatConditions(nil) = %q, want %q", got, "-")
	}
}

func TestFormatActions(t *testing.T) {
	actions := []domain.Action{
		{Kind: domain.ActionMove, Value: "Spam"},
		{Kind: domain.ActionMarkRead},
	}
	got := formatActions(actions)
	want := "Move Message (Spam); Mark as Read"
	if got != want {
		t.Errorf("formatActions() = %q, want %q", got, want)
	}
}
