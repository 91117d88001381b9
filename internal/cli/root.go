package cli

import (
	"context"
	"fmt"

	"github.com/existflow/neocount/internal/config"
	"github.com/existflow/neocount/internal/eventlist"
	"github.com/existflow/neocount/internal/logger"
	"github.com/existflow/neocount/internal/tui"
	"github.com/spf13/cobra"
)

var (
	logLevel   string
	logFile    string
	logConsole bool
	storage    string

	// cfg is loaded before every command runs
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "neocount",
	Short: "NeoCount - Brutally honest countdowns",
	Long: `NeoCount tracks countdowns to the events you care about, with notes,
daily reminders and an optional hosted account.

Run 'neocount' without arguments to launch the interactive TUI.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load config from file (or defaults if not exists)
		loaded, err := config.Load()
		if err != nil {
			logger.Warn("Failed to load config, using defaults", logger.F("error", err))
			loaded = config.DefaultConfig()
		}
		cfg = loaded

		// Override with CLI flags if provided
		configChanged := false
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
			configChanged = true
		}
		if cmd.Flags().Changed("log-file") {
			cfg.LogFile = logFile
			configChanged = true
		}
		if cmd.Flags().Changed("log-console") {
			cfg.LogConsole = logConsole
			configChanged = true
		}
		if cmd.Flags().Changed("storage") {
			cfg.Storage = storage
			if err := cfg.Validate(); err != nil {
				return err
			}
			configChanged = true
		}

		// Save config if changed via CLI flags
		if configChanged {
			if err := cfg.Save(); err != nil {
				logger.Warn("Failed to save config", logger.F("error", err))
			}
		}

		logConfig := logger.Config{
			Level:      logger.ParseLevel(cfg.LogLevel),
			FilePath:   cfg.LogFile,
			MaxSize:    10 * 1024 * 1024, // 10MB
			MaxAge:     7,
			MaxBackups: 5,
			Console:    cfg.LogConsole,
		}

		if err := logger.Init(logConfig); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		logger.Info("NeoCount started", logger.F("command", cmd.Name()), logger.F("storage", cfg.Storage))
		return nil
	},

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		rt, err := openRuntime(cfg)
		if err != nil {
			logger.Error("Failed to open runtime", logger.F("error", err))
			return err
		}
		defer rt.Close()

		opts := tui.Options{
			Events:        eventlist.New(nil),
			ConfirmDelete: cfg.ConfirmDelete,
			RedirectURL:   cfg.Identity.RedirectURL,
			OpenStore:     rt.openStore,
		}

		if cfg.IsRemote() {
			if rt.gate == nil {
				return errIdentityNotConfigured
			}
			opts.Gate = rt.gate
		} else {
			s, err := rt.openStore(ctx, nil)
			if err != nil {
				return err
			}
			opts.Events.SetStore(s)
		}

		if cfg.Notify.Enabled {
			poller, err := rt.newPoller(opts.Events.Events)
			if err != nil {
				logger.Warn("Reminders disabled", logger.F("error", err))
			} else if err := poller.Start(ctx); err != nil {
				logger.Warn("Failed to start reminders", logger.F("error", err))
			} else {
				defer poller.Stop()
			}
		}

		logger.Info("Launching TUI")
		return tui.Run(opts)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Info("NeoCount exiting", logger.F("command", cmd.Name()))
		logger.Close()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add logging flags
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Path to log file")
	rootCmd.PersistentFlags().BoolVar(&logConsole, "log-console", false, "Enable console logging")
	rootCmd.PersistentFlags().StringVar(&storage, "storage", "", "Where events live: local or remote")

	// Add subcommands
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(noteCmd)
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(notifyCmd)
	rootCmd.AddCommand(exportCmd)
}
