package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lu-zhengda/mailrules/internal/app"
	"github.com/lu-zhengda/mailrules/internal/store"
)

func newFetchCmd() *cobra.Command {
	var maxFlag int

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch recent inbox messages into the local store",
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

			max := maxFlag
			if max <= 0 {
				max = cfg.Fetch.MaxMessages
			}

			svc := app.NewTriageService(db, client, logger)
			stored, err := svc.FetchAndStore(cmd.Context(), max)
			if err != nil {
				return fmt.Errorf("failed to fetch messages: %w", err)
			}

			if jsonFlag {
				return printJSON(map[string]int{"stored": stored})
			}
			fmt.Printf("Fetched %d messages.\n", stored)
			return nil
		},
	}

	cmd.Flags().IntVar(&maxFlag, "max", 0, "maximum messages to fetch (defaults to config)")
	return cmd
}

func newMessagesCmd() *cobra.Command {
	var limitFlag int
	var unreadFlag bool

	cmd := &cobra.Command{
		Use:   "messages",
		Short: "List stored messages",
		Long:  "List stored messages, most recently received first.",
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

			msgs, err := db.ListMessages(cmd.Context(), store.ListMessageOptions{
				Limit:      limitFlag,
				UnreadOnly: unreadFlag,
			})
			if err != nil {
				return fmt.Errorf("failed to list messages: %w", err)
			}

			if jsonFlag {
				return printJSON(toJSONMessages(msgs))
			}

			if len(msgs) == 0 {
				fmt.Println("No messages stored. Run 'mailrules fetch' first.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "UNREAD\tFROM\tSUBJECT\tRECEIVED\tMESSAGE_ID")
			for _, m := range msgs {
				unread := " "
				if !m.IsRead {
					unread = "*"
				}
				from := m.Sender
				if len(from) > 30 {
					from = from[:27] + "..."
				}
				subject := m.Subject
				if len(subject) > 50 {
					subject = subject[:47] + "..."
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					unread, from, subject,
					m.ReceivedAt.Format("Jan 2, 2006"), m.ID,
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limitFlag, "limit", 0, "maximum messages to show (0 = all)")
	cmd.Flags().BoolVar(&unreadFlag, "unread", false, "show only unread messages")
	return cmd
}
