package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lu-zhengda/mailrules/internal/domain"
)

func newRuleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rule",
		Short: "Manage triage rules",
	}
	cmd.AddCommand(newRuleAddCmd())
	cmd.AddCommand(newRuleListCmd())
	cmd.AddCommand(newRuleDeleteCmd())
	return cmd
}

func newRuleAddCmd() *cobra.Command {
	var nameFlag, matchFlag string
	var whenFlags, thenFlags []string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a triage rule",
		Long: "Create a triage rule from conditions and actions.\n\n" +
			"Conditions use the form 'Field|operator|value', for example:\n" +
			"  --when 'Subject|contains|invoice'\n" +
			"  --when 'Date received|is greater than|30'\n\n" +
			"Actions are 'mark-read', 'mark-unread', or 'move:<Folder>' where\n" +
			"Folder is one of Inbox, Spam, Trash, Archive.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if nameFlag == "" {
				return fmt.Errorf("--name is required")
			}
			if len(thenFlags) == 0 {
				return fmt.Errorf("at least one --then action is required")
			}

			conditions := make([]domain.Condition, 0, len(whenFlags))
			for _, w := range whenFlags {
				c, err := parseConditionFlag(w)
				if err != nil {
					return err
				}
				conditions = append(conditions, c)
			}

			actions := make([]domain.Action, 0, len(thenFlags))
			for _, t := range thenFlags {
				a, err := parseActionFlag(t)
				if err != nil {
					return err
				}
				actions = append(actions, a)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			db, err := openDB(cfg, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			rule := &domain.Rule{
				Name:       nameFlag,
				MatchMode:  domain.MatchMode(strings.ToLower(matchFlag)),
				Conditions: conditions,
				Actions:    actions,
			}
			if err := db.CreateRule(cmd.Context(), rule); err != nil {
				return fmt.Errorf("failed to create rule: %w", err)
			}

			if jsonFlag {
				return printJSON(toJSONRule(rule))
			}
			fmt.Printf("Created rule %d (%s).\n", rule.ID, rule.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&nameFlag, "name", "", "rule name")
	cmd.Flags().StringVar(&matchFlag, "match", "all", "match mode: all or any")
	cmd.Flags().StringArrayVar(&whenFlags, "when", nil, "condition as 'Field|operator|value' (repeatable)")
	cmd.Flags().StringArrayVar(&thenFlags, "then", nil, "action: mark-read, mark-unread, or move:<Folder> (repeatable)")
	return cmd
}

func newRuleListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List triage rules, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			db, err := openDB(cfg, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			rules, err := db.ListRules(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list rules: %w", err)
			}

			if jsonFlag {
				return printJSON(toJSONRules(rules))
			}

			if len(rules) == 0 {
				fmt.Println("No rules defined. Run 'mailrules rule add' first.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tMATCH\tCONDITIONS\tACTIONS\tCREATED")
			for _, r := range rules {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
					r.ID, r.Name, r.MatchMode,
					formatConditions(r.Conditions),
					formatActions(r.Actions),
					r.CreatedAt.Format("Jan 2, 2006"),
				)
			}
			return w.Flush()
		},
	}
}

func newRuleDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <rule-id>",
		Short: "Delete a triage rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid rule id %q", args[0])
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			db, err := openDB(cfg, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.DeleteRule(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to delete rule: %w", err)
			}

			fmt.Printf("Deleted rule %d.\n", id)
			return nil
		},
	}
}

// parseConditionFlag parses 'Field|operator|value' into a Condition.
// Full validation against the vocabulary happens at rule creation.
func parseConditionFlag(s string) (domain.Condition, error) {
	parts := strings.SplitN(s, "|", 3)
	if len(parts) != 3 {
		return domain.Condition{}, fmt.Errorf("condition %q must have the form 'Field|operator|value'", s)
	}
	return domain.Condition{
		Field:    domain.Field(strings.TrimSpace(parts[0])),
		Operator: domain.Operator(strings.TrimSpace(parts[1])),
		Value:    strings.TrimSpace(parts[2]),
	}, nil
}

// parseActionFlag parses an action token: mark-read, mark-unread, or
// move:<Folder>.
func parseActionFlag(s string) (domain.Action, error) {
	token := strings.TrimSpace(s)
	switch strings.ToLower(token) {
	case "mark-read":
		return domain.Action{Kind: domain.ActionMarkRead}, nil
	case "mark-unread":
		return domain.Action{Kind: domain.ActionMarkUnread}, nil
	}
	if folder, ok := strings.CutPrefix(token, "move:"); ok {
		return domain.Action{
			Kind:  domain.ActionMove,
			Value: strings.TrimSpace(folder),
		}, nil
	}
	return domain.Action{}, fmt.Errorf("unknown action %q (use mark-read, mark-unread, or move:<Folder>)", s)
}

func formatConditions(conds []domain.Condition) string {
	if len(conds) == 0 {
		return "-"
	}
	parts := make([]string, len(conds))
	for i, c := range conds {
		parts[i] = fmt.Sprintf("%s %s %q", c.Field, c.Operator, c.Value)
	}
	return strings.Join(parts, "; ")
}

func formatActions(actions []domain.Action) string {
	parts := make([]string, len(actions))
	for i, a := range actions {
		if a.Kind == domain.ActionMove {
			parts[i] = fmt.Sprintf("%s (%s)", a.Kind, a.Value)
		} else {
			parts[i] = string(a.Kind)
		}
	}
	return strings.Join(parts, "; ")
}
