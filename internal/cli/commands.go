package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dyike/WealthGo/config"
	"github.com/dyike/WealthGo/internal/display"
)

// Version is overridden at build time with -ldflags.
var Version = "v0.1.0"

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wealthgo",
		Short: "WealthGo - wealth advisory assistant",
		Long: `WealthGo is a terminal client for the wealth advisory backend.
Chat with the advisory assistant, review and save client advisories, and browse
news, financials, insights, clients and compliance alerts.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default behavior: start the chat TUI
			return runChatTUI(cmd)
		},
	}

	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newAskCmd())
	rootCmd.AddCommand(newSessionCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newArticlesCmd())
	rootCmd.AddCommand(newHNWICmd())
	rootCmd.AddCommand(newFinancialsCmd())
	rootCmd.AddCommand(newInsightsCmd())
	rootCmd.AddCommand(newClientsCmd())
	rootCmd.AddCommand(newAlertsCmd())
	rootCmd.AddCommand(newNotificationsCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	// Global flags
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("config", "", "Configuration file path")
	rootCmd.PersistentFlags().String("backend", "", "Override backend_url for this run")

	return rootCmd
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "WealthGo %s\n", Version)
			fmt.Fprintln(out, tagline)
		},
	}
}

// newConfigCmd creates the config command
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "Show, validate and change the persisted WealthGo configuration",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd, appOptions{})
			if err != nil {
				return err
			}
			defer app.Close()
			showConfig(app.Out, app.Manager.Path(), app.Config)
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and check the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd, appOptions{})
			if err != nil {
				return err
			}
			defer app.Close()
			return validateConfig(cmd, app)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Update one configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd, appOptions{})
			if err != nil {
				return err
			}
			defer app.Close()
			if err := app.Manager.Set(args[0], args[1]); err != nil {
				return fmt.Errorf("set %s: %w", args[0], err)
			}
			display.DisplaySuccess(fmt.Sprintf("%s updated", args[0]))
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd, appOptions{})
			if err != nil {
				return err
			}
			defer app.Close()
			fmt.Fprintln(app.Out, app.Manager.Path())
			return nil
		},
	})

	return configCmd
}

// showConfig displays the current configuration
func showConfig(w io.Writer, path string, cfg config.Config) {
	fmt.Fprintln(w, "📋 Current WealthGo Configuration:")
	fmt.Fprintln(w, "═══════════════════════════════════════")
	fmt.Fprintf(w, "Config File:          %s\n", path)
	fmt.Fprintf(w, "Data Directory:       %s\n", cfg.DataDir)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Backend URL:          %s\n", cfg.BackendURL)
	fmt.Fprintf(w, "Client ID:            %s\n", cfg.ClientID)
	fmt.Fprintf(w, "Request Timeout:      %s\n", cfg.RequestTimeout())
	fmt.Fprintf(w, "Notification Poll:    %s\n", cfg.NotificationInterval())
	fmt.Fprintf(w, "Search Debounce:      %s\n", cfg.SearchDebounce())
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Articles Page Size:   %d\n", cfg.ArticlesPageSize)
	fmt.Fprintf(w, "Dashboard Page Size:  %d\n", cfg.DashboardPageSize)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "History Enabled:      %t\n", cfg.HistoryEnabled)
	if cfg.HistoryEnabled {
		fmt.Fprintf(w, "History Database:     %s\n", cfg.HistoryDBPath)
	}
	fmt.Fprintf(w, "Log Level:            %s (%s)\n", cfg.LogLevel, cfg.LogFormat)
	fmt.Fprintf(w, "Log File (TUI):       %s\n", cfg.LogFile())
	fmt.Fprintf(w, "Debug Mode:           %t\n", cfg.Debug)
}

// validateConfig validates the configuration and checks the backend answers
func validateConfig(cmd *cobra.Command, app *App) error {
	w := app.Out
	cfg := app.Config
	fmt.Fprintln(w, "🔍 Validating WealthGo Configuration...")
	fmt.Fprintln(w, "═══════════════════════════════════════")

	fmt.Fprint(w, "📁 Checking directories... ")
	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Fprintln(w, "❌")
		return fmt.Errorf("directory validation failed: %w", err)
	}
	fmt.Fprintln(w, "✅")

	fmt.Fprint(w, "⚙️  Checking configuration values... ")
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(w, "❌")
		return err
	}
	fmt.Fprintln(w, "✅")

	fmt.Fprint(w, "🌐 Reaching backend... ")
	if _, err := app.API.ListFinancials(commandContext(cmd)); err != nil {
		fmt.Fprintln(w, "⚠️")
		fmt.Fprintf(w, "  ⚠️  %s did not answer: %v\n", cfg.BackendURL, err)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "⚠️  Configuration is valid but the backend is unreachable.")
		return nil
	}
	fmt.Fprintln(w, "✅")

	fmt.Fprintln(w)
	fmt.Fprintln(w, "✅ Configuration validation completed successfully!")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "💡 Tips:")
	fmt.Fprintln(w, "  • Set WEALTHGO_API_URL to point at another backend")
	fmt.Fprintln(w, "  • Use 'wealthgo config set history_enabled true' to keep a local transcript")
	return nil
}
