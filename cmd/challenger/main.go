// Package main provides the CLI entrypoint for challenger.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/challenger/internal/api"
	"github.com/verte-zerg/challenger/internal/config"
	"github.com/verte-zerg/challenger/internal/logger"
	"github.com/verte-zerg/challenger/internal/service"
	"github.com/verte-zerg/challenger/internal/session"
	"github.com/verte-zerg/challenger/internal/store"
	"github.com/verte-zerg/challenger/internal/tui"
	"github.com/verte-zerg/challenger/internal/viewmodel"
)

var (
	flagBaseURL string
	flagTimeout time.Duration
	flagConfig  string

	newTitle       string
	newDescription string
	newDays        string

	completeRetrospection string

	showShare bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "challenger",
		Short:         "Terminal client for personal challenges",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTUICmd,
	}

	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", config.DefaultBaseURL, "backend base URL")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", config.DefaultTimeout, "request timeout")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", config.DefaultConfigPath(), "config file path")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newNewCmd())
	rootCmd.AddCommand(newPauseCmd())
	rootCmd.AddCommand(newCompleteCmd())

	return rootCmd
}

// app holds everything a command needs once configuration is resolved.
type app struct {
	settings   config.Settings
	store      *store.Store
	session    *session.Session
	users      *service.UserService
	challenges *service.ChallengeService
	history    *service.LastChallengeService
	closeLog   func()
}

func openApp(cmd *cobra.Command) (*app, error) {
	settings, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "base-url", &flagBaseURL, &settings.BaseURL)
	applyDurationConfig(cmd, "timeout", &flagTimeout, &settings.Timeout)
	settings.BaseURL = flagBaseURL
	settings.Timeout = flagTimeout
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	closeLog, err := logger.Init(logger.Options{
		Level:     settings.LogLevel,
		Path:      settings.LogPath,
		SentryDSN: settings.SentryDSN,
	})
	if err != nil {
		return nil, err
	}

	client, err := api.New(settings.BaseURL, &http.Client{Timeout: settings.Timeout})
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("invalid --base-url %q: %w", settings.BaseURL, err)
	}
	slog.Debug("api client ready", "base_url", client.BaseURL(), "timeout", settings.Timeout)

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	sess, err := st.LoadSession(context.Background())
	if err != nil {
		logErrf("failed to load session: %v\n", err)
		sess = session.Session{}
	}

	return &app{
		settings:   settings,
		store:      st,
		session:    &sess,
		users:      service.NewUserService(client),
		challenges: service.NewChallengeService(client),
		history:    service.NewLastChallengeService(client),
		closeLog:   closeLog,
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		logErrf("failed to close db: %v\n", err)
	}
	a.closeLog()
}

func (a *app) challengeCache() viewmodel.ChallengeCache {
	if !a.settings.CacheEnabled {
		return nil
	}
	return a.store
}

func (a *app) historyCache() viewmodel.HistoryCache {
	if !a.settings.CacheEnabled {
		return nil
	}
	return a.store
}

func (a *app) requireLogin() error {
	if !a.session.LoggedIn() {
		return fmt.Errorf("not logged in; run `challenger login <nickname>` first")
	}
	return nil
}

func runTUICmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	model := tui.NewModel(tui.Deps{
		Session:        a.session,
		Users:          a.users,
		Challenges:     a.challenges,
		History:        a.history,
		SessionStore:   a.store,
		ChallengeCache: a.challengeCache(),
		HistoryCache:   a.historyCache(),
	})
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := flagConfig
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyDurationConfig(cmd *cobra.Command, name string, target, value *time.Duration) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# challenger configuration
# Uncomment a value to enable it. Environment variables override the file,
# CLI flags override both.

[server]
# base-url = %q   # Backend origin (CHALLENGER_BASE_URL)
# timeout = %q              # Request timeout (CHALLENGER_TIMEOUT)

[cache]
# enabled = false             # Show the last fetched lists while loading (CHALLENGER_CACHE)

[log]
# level = %q                # debug, info, warn, error (CHALLENGER_LOG_LEVEL)
# path = %q
# sentry-dsn = ""             # Forward errors to Sentry (SENTRY_DSN)
`,
		config.DefaultBaseURL,
		config.DefaultTimeout.String(),
		config.DefaultLogLevel,
		config.DefaultLogPath(),
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
