package domain

import (
	"fmt"
	"strconv"
	"time"
)

// Field identifies the message attribute a condition inspects.
type Field string

const (
	FieldFrom         Field = "From"
	FieldSubject      Field = "Subject"
	FieldMessage      Field = "Message"
	FieldDateReceived Field = "Date received"
)

// IsDate reports whether the field compares by message age instead of text.
func (f Field) IsDate() bool {
	return f == FieldDateReceived
}

func (f Field) Valid() bool {
	switch f {
	case FieldFrom, FieldSubject, FieldMessage, FieldDateReceived:
		return true
	}
	return false
}

// Operator is a comparison applied between a message field and a
// condition value.
type Operator string

const (
	OpContains    Operator = "contains"
	OpNotContains Operator = "does not contain"
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "does not equal"
	OpLessThan    Operator = "is less than"
	OpGreaterThan Operator = "is greater than"
)

// ValidFor reports whether the operator applies to the given field.
// Text fields take the contains/equals family; the date field takes
// the age comparisons.
func (o Operator) ValidFor(f Field) bool {
	if f.IsDate() {
		return o == OpLessThan || o == OpGreaterThan
	}
	switch o {
	case OpContains, OpNotContains, OpEquals, OpNotEquals:
		return true
	}
	return false
}

// MatchMode selects how a rule combines its condition results.
type MatchMode string

const (
	MatchAll MatchMode = "all"
	MatchAny MatchMode = "any"
)

func (m MatchMode) Valid() bool {
	return m == MatchAll || m == MatchAny
}

// ActionKind identifies a side-effecting operation on a matched message.
type ActionKind string

const (
	ActionMove       ActionKind = "Move Message"
	ActionMarkRead   ActionKind = "Mark as Read"
	ActionMarkUnread ActionKind = "Mark as Unread"
)

// Folder is a move destination.
type Folder string

const (
	FolderInbox   Folder = "Inbox"
	FolderSpam    Folder = "Spam"
	FolderTrash   Folder = "Trash"
	FolderArchive Folder = "Archive"
)

func (f Folder) Valid() bool {
	switch f {
	case FolderInbox, FolderSpam, FolderTrash, FolderArchive:
		return true
	}
	return false
}

// Label returns the mailbox label a message carries after being moved to
// the folder. Archive has no label of its own.
func (f Folder) Label() string {
	switch f {
	case FolderInbox:
		return LabelInbox
	case FolderSpam:
		return LabelSpam
	case FolderTrash:
		return LabelTrash
	}
	return ""
}

// Condition is a single field/operator/value predicate over a message.
type Condition struct {
	Field    Field    `json:"field"`
	Operator Operator `json:"operator"`
	Value    string   `json:"value"`
}

// Validate checks the condition against the closed field and operator
// vocabularies. Date conditions must carry an integer day count.
func (c Condition) Validate() error {
	if !c.Field.Valid() {
		return fmt.Errorf("unknown field %q", c.Field)
	}
	if !c.Operator.ValidFor(c.Field) {
		return fmt.Errorf("operator %q does not apply to field %q", c.Operator, c.Field)
	}
	if c.Field.IsDate() {
		if _, err := strconv.Atoi(c.Value); err != nil {
			return fmt.Errorf("date condition value %q is not a day count", c.Value)
		}
	}
	return nil
}

// Action is a side-effecting operation applied to a matched message.
// Value names the destination folder for move actions and is empty
// otherwise.
type Action struct {
	Kind  ActionKind `json:"type"`
	Value string     `json:"value,omitempty"`
}

func (a Action) Validate() error {
	switch a.Kind {
	case ActionMove:
		if !Folder(a.Value).Valid() {
			return fmt.Errorf("unknown move destination %q", a.Value)
		}
	case ActionMarkRead, ActionMarkUnread:
	default:
		return fmt.Errorf("unknown action %q", a.Kind)
	}
	return nil
}

// Rule is a named triage rule: a match mode, an ordered condition list,
// and an ordered action list. Condition order is cosmetic; action order
// is significant because later actions see the state earlier ones left.
type Rule struct {
	ID         int64
	Name       string
	MatchMode  MatchMode
	Conditions []Condition
	Actions    []Action
	CreatedAt  time.Time
}

// Validate checks the rule's vocabulary once, at creation time, so the
// evaluator never has to re-check it per message.
func (r *Rule) Validate() error {
	if !r.MatchMode.Valid() {
		return fmt.Errorf("unknown match mode %q", r.MatchMode)
	}
	for i, c := range r.Conditions {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("condition %d: %w", i+1, err)
		}
	}
	if len(r.Actions) == 0 {
		return fmt.Errorf("rule has no actions")
	}
	for i, a := range r.Actions {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("action %d: %w", i+1, err)
		}
	}
	return nil
}
