package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lu-zhengda/mailrules/internal/app"
	"github.com/lu-zhengda/mailrules/internal/store"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Apply all rules to all stored messages",
		Long: "Apply every stored rule to every stored message and print an\n" +
			"audit log of the actions that took effect. Messages no rule\n" +
			"changed are omitted.",
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

			client, err := setupClient(cfg)
			if err != nil {
				return err
			}

			svc := app.NewTriageService(db, client, logger)
			results, err := svc.ProcessAll(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to run rules: %w", err)
			}

			// Report in stored-message order so output is stable.
			msgs, err := db.ListMessages(cmd.Context(), store.ListMessageOptions{})
			if err != nil {
				return fmt.Errorf("failed to list messages: %w", err)
			}

			if jsonFlag {
				return printJSON(toJSONOutcomes(msgs, results))
			}

			if len(results) == 0 {
				fmt.Println("No messages changed.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "MESSAGE_ID\tSUBJECT\tACTIONS")
			for _, m := range msgs {
				outcomes, ok := results[m.ID]
				if !ok {
					continue
				}
				subject := m.Subject
				if len(subject) > 50 {
					subject = subject[:47] + "..."
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", m.ID, subject, strings.Join(outcomes, "; "))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Printf("\n%d messages changed.\n", len(results))
			return nil
		},
	}
}
