package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lu-zhengda/mailrules/internal/config"
	"github.com/lu-zhengda/mailrules/internal/logging"
	"github.com/lu-zhengda/mailrules/internal/provider/gmail"
	"github.com/lu-zhengda/mailrules/internal/store"
	"github.com/lu-zhengda/mailrules/internal/store/sqlite"
)

// keyring entry for the single Gmail account.
const gmailAccount = "gmail"

var (
	// version is set via ldflags at build time.
	version = "dev"
	cfgFile string

	// jsonFlag enables JSON output for all commands.
	jsonFlag bool

	// logLevelFlag overrides the configured log level.
	logLevelFlag string
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mailrules",
		Short: "Rule-based Gmail inbox triage",
		Long: "Fetch Gmail messages into a local store and triage them with\n" +
			"user-defined rules that move messages and change read state.",
		Version: version,
	}
	root.SetVersionTemplate(fmt.Sprintf("mailrules %s\n", version))
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	root.PersistentFlags().BoolVar(&jsonFlag, "json", false, "output in JSON format")
	root.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level (debug, info, warn, error)")
	root.AddCommand(newAuthCmd())
	root.AddCommand(newFetchCmd())
	root.AddCommand(newMessagesCmd())
	root.AddCommand(newRuleCmd())
	root.AddCommand(newRunCmd())
	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig loads the application configuration from the config file.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = filepath.Join(config.ConfigDir(), "config.toml")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the logger components receive. The --log-level flag
// wins over the configured level.
func newLogger(cfg *config.Config) *slog.Logger {
	level := cfg.Logging.Level
	if logLevelFlag != "" {
		level = logLevelFlag
	}
	return logging.New(level, cfg.Logging.Format, os.Stderr)
}

// openDB opens the SQLite database, creating the data directory when the
// configured path falls inside it.
func openDB(cfg *config.Config, logger *slog.Logger) (*sqlite.DB, error) {
	dbPath := cfg.Database.Path
	if dbPath == "" {
		dataDir := config.DataDir()
		if err := os.MkdirAll(dataDir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		dbPath = filepath.Join(dataDir, "mailrules.db")
	}

	db, err := sqlite.New(dbPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// resolveGmailCredentials sets Gmail OAuth credentials using the first
// available source: config file, then environment variables.
func resolveGmailCredentials(cfg *config.Config) error {
	if cfg.Gmail.ClientID != "" && cfg.Gmail.ClientSecret != "" {
		gmail.SetCredentials(cfg.Gmail.ClientID, cfg.Gmail.ClientSecret)
		return nil
	}

	clientID := os.Getenv("GMAIL_CLIENT_ID")
	clientSecret := os.Getenv("GMAIL_CLIENT_SECRET")
	if clientID != "" && clientSecret != "" {
		gmail.SetCredentials(clientID, clientSecret)
		return nil
	}

	return gmail.EnsureCredentials()
}

// setupClient creates a Gmail client with credentials resolved.
func setupClient(cfg *config.Config) (*gmail.Client, error) {
	if err := resolveGmailCredentials(cfg); err != nil {
		return nil, err
	}
	tokenStore := store.NewKeyringTokenStore()
	return gmail.New(gmailAccount, tokenStore), nil
}
